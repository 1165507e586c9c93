// Package client implements the client side of the USB/IP protocol:
// enumerating and importing devices exported by a remote server.
package client

import (
	"net"
	"strconv"
	"time"

	"github.com/efficientgo/core/errors"
)

const requestTimeout = 5 * time.Second

// Target identifies a USB/IP server.
type Target struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// Connection is an open byte stream to a USB/IP server. It is not safe for
// concurrent use; requests must not interleave on the same stream.
type Connection struct {
	target Target
	conn   net.Conn
}

func (t Target) Dial() (*Connection, error) {
	targetString := t.Host + ":" + strconv.Itoa(t.Port)
	conn, err := net.Dial("tcp", targetString)
	if err != nil {
		return nil, errors.Wrap(
			err,
			"Failed to connect to USB/IP target at "+targetString,
		)
	}
	return newConnection(t, conn), nil
}

func newConnection(t Target, conn net.Conn) *Connection {
	return &Connection{target: t, conn: conn}
}

func (c *Connection) GetTarget() Target {
	return c.target
}

func (c *Connection) Close() {
	_ = c.conn.Close()
}

func (c *Connection) armDeadline() error {
	return c.conn.SetReadDeadline(time.Now().Add(requestTimeout))
}
