// Package server implements a demo USB/IP server answering enumeration and
// import requests with a configured set of exported devices. It exercises
// the wire codec end to end; it does not export real hardware.
package server

import (
	"net"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/MatthiasValvekens/vusbip/usbip"
)

type Server struct {
	logger  log.Logger
	devices []usbip.DeviceDescriptor

	connectionsTotal    prometheus.Counter
	packetsTotal        *prometheus.CounterVec
	protocolErrorsTotal prometheus.Counter
}

func New(devices []usbip.DeviceDescriptor, logger log.Logger, reg prometheus.Registerer) *Server {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	s := &Server{
		logger:  logger,
		devices: devices,
		connectionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "usbip_server_connections_total",
			Help: "The total number of accepted client connections.",
		}),
		packetsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "usbip_server_packets_total",
			Help: "The total number of packets decoded, by operation.",
		}, []string{"op"}),
		protocolErrorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "usbip_server_protocol_errors_total",
			Help: "The total number of malformed packets received.",
		}),
	}
	if reg != nil {
		reg.MustRegister(s.connectionsTotal, s.packetsTotal, s.protocolErrorsTotal)
	}
	return s
}

// Serve accepts connections on l until the listener is closed, handling
// each connection on its own goroutine.
func (s *Server) Serve(l net.Listener) error {
	for {
		conn, err := l.Accept()
		if err != nil {
			return err
		}
		s.connectionsTotal.Inc()
		go s.Handle(conn)
	}
}

// Handle runs the decode, react, encode loop for one connection and closes
// it when done. Protocol errors are logged and the loop continues with the
// next packet; transport errors end the connection.
func (s *Server) Handle(conn net.Conn) {
	defer func() { _ = conn.Close() }()

	logger := log.With(s.logger, "peer", conn.RemoteAddr())
	_ = level.Info(logger).Log("msg", "client connected")

	dec := usbip.NewDecoder(conn).WithLogger(logger)
	enc := usbip.NewEncoder(conn)
	for {
		pkt, err := dec.Decode()
		if err != nil {
			if usbip.IsProtocolError(err) {
				s.protocolErrorsTotal.Inc()
				_ = level.Warn(logger).Log("msg", "invalid packet received", "err", err)
				continue
			}
			_ = level.Info(logger).Log("msg", "closing connection", "err", err)
			return
		}
		s.packetsTotal.WithLabelValues(pkt.Op().String()).Inc()

		var reply usbip.Packet
		switch req := pkt.(type) {
		case *usbip.ReqDevList:
			reply = &usbip.RepDevList{Status: 0, Devices: s.devices}
		case *usbip.ReqImport:
			reply = s.importReply(req.BusID)
		default:
			_ = level.Warn(logger).Log("msg", "unhandled packet received", "op", pkt.Op())
			continue
		}

		if err := enc.Encode(reply); err != nil {
			_ = level.Warn(logger).Log("msg", "failed to write reply; closing connection", "err", err)
			return
		}
	}
}

func (s *Server) importReply(busID string) usbip.Packet {
	for _, dev := range s.devices {
		if dev.BusID != busID {
			continue
		}
		return &usbip.RepImport{
			Status:             0,
			Path:               dev.Path,
			BusID:              dev.BusID,
			BusNum:             dev.BusNum,
			DevNum:             dev.DevNum,
			Speed:              dev.Speed,
			Vendor:             dev.Vendor,
			Product:            dev.Product,
			BCDDevice:          dev.BCDDevice,
			DeviceClass:        dev.DeviceClass,
			DeviceSubclass:     dev.DeviceSubclass,
			DeviceProtocol:     dev.DeviceProtocol,
			ConfigurationValue: dev.ConfigurationValue,
			NumConfigurations:  dev.NumConfigurations,
			NumInterfaces:      uint8(len(dev.Interfaces)),
		}
	}
	// unknown bus ID: short error reply
	return &usbip.RepImport{Status: 1}
}
