package client

import (
	"net"
	"testing"
	"time"

	"github.com/MatthiasValvekens/vusbip/usbip"
)

// fakeServer answers exactly one request on conn using the supplied
// handler and closes the connection.
func fakeServer(t *testing.T, conn net.Conn, handle func(usbip.Packet) usbip.Packet) {
	t.Helper()
	go func() {
		defer func() { _ = conn.Close() }()
		pkt, err := usbip.ReadPacket(conn)
		if err != nil {
			t.Errorf("server decode failed: %v", err)
			return
		}
		if reply := handle(pkt); reply != nil {
			if err := usbip.WritePacket(conn, reply); err != nil {
				t.Errorf("server encode failed: %v", err)
			}
		}
	}()
}

func testConnection(t *testing.T) (*Connection, net.Conn) {
	t.Helper()
	clientEnd, serverEnd := net.Pipe()
	_ = clientEnd.SetDeadline(time.Now().Add(5 * time.Second))
	c := newConnection(Target{Host: "localhost", Port: 3240}, clientEnd)
	t.Cleanup(c.Close)
	return c, serverEnd
}

func TestList(t *testing.T) {
	c, serverEnd := testConnection(t)
	fakeServer(t, serverEnd, func(pkt usbip.Packet) usbip.Packet {
		if _, ok := pkt.(*usbip.ReqDevList); !ok {
			t.Errorf("got %T; want *usbip.ReqDevList", pkt)
		}
		return &usbip.RepDevList{
			Status: 0,
			Devices: []usbip.DeviceDescriptor{
				{Path: "/foo/bar", BusID: "3-2", Vendor: 0x0403, Product: 0x6001},
			},
		}
	})

	devices, err := c.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(devices) != 1 || devices[0].BusID != "3-2" {
		t.Errorf("unexpected device list: %#v", devices)
	}
}

func TestListErrorStatus(t *testing.T) {
	c, serverEnd := testConnection(t)
	fakeServer(t, serverEnd, func(usbip.Packet) usbip.Packet {
		return &usbip.RepDevList{Status: 1}
	})

	if _, err := c.List(); err == nil {
		t.Error("non-zero devlist status must surface as an error")
	}
}

func TestImport(t *testing.T) {
	c, serverEnd := testConnection(t)
	fakeServer(t, serverEnd, func(pkt usbip.Packet) usbip.Packet {
		req, ok := pkt.(*usbip.ReqImport)
		if !ok {
			t.Errorf("got %T; want *usbip.ReqImport", pkt)
			return &usbip.RepImport{Status: 1}
		}
		return &usbip.RepImport{
			Status: 0,
			Path:   "/foo/bar",
			BusID:  req.BusID,
			BusNum: 3,
			DevNum: 2,
			Speed:  2,
		}
	})

	rep, err := c.Import("3-2")
	if err != nil {
		t.Fatal(err)
	}
	if rep.BusID != "3-2" || rep.BusNum != 3 {
		t.Errorf("unexpected import reply: %#v", rep)
	}
}

func TestImportRejected(t *testing.T) {
	c, serverEnd := testConnection(t)
	fakeServer(t, serverEnd, func(usbip.Packet) usbip.Packet {
		return &usbip.RepImport{Status: 1}
	})

	if _, err := c.Import("3-2"); err == nil {
		t.Error("non-zero import status must surface as an error")
	}
}

func TestImportBusIDMismatch(t *testing.T) {
	c, serverEnd := testConnection(t)
	fakeServer(t, serverEnd, func(usbip.Packet) usbip.Packet {
		return &usbip.RepImport{Status: 0, BusID: "1-1"}
	})

	if _, err := c.Import("3-2"); err == nil {
		t.Error("mismatched bus ID in import reply must surface as an error")
	}
}
