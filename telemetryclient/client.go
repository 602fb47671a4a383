// Package telemetryclient joins the pad server's multicast telemetry group
// and renders every received record as a human-readable line (spec §4.7).
//
// Grounded on giesekow-go-netdicom's PDU reader loop (read header, dispatch
// on subtype, read body) generalized from one TCP stream to datagram
// boundaries, plus golang.org/x/net/ipv4 for the multicast group join that
// a plain net.ListenMulticastUDP cannot express (interface selection,
// loopback control).
package telemetryclient

import (
	"context"
	"fmt"
	"net"

	"golang.org/x/net/ipv4"

	"github.com/carletonu/hysim-go/packet"
)

// Client owns one multicast UDP socket and renders every datagram it
// receives into decoded records passed to a Handler.
type Client struct {
	conn      *net.UDPConn
	pconn     *ipv4.PacketConn
	groupAddr *net.UDPAddr
}

// Handler is invoked once per decoded record in arrival order.
type Handler func(packet.Message)

// Join opens a UDP socket bound to port with SO_REUSEPORT/SO_REUSEADDR set
// before bind (spec §4.7), so more than one telemetry client can bind the
// same port on one host, and joins the multicast group at addr (IP only;
// port is taken from the same socket). iface may be empty to let the kernel
// choose the default multicast interface.
func Join(addr string, port int, iface string) (*Client, error) {
	group := net.ParseIP(addr)
	if group == nil {
		return nil, fmt.Errorf("telemetryclient: invalid multicast address %q", addr)
	}

	lc := net.ListenConfig{Control: controlReusePort}
	pc, err := lc.ListenPacket(context.Background(), "udp4", fmt.Sprintf(":%d", port))
	if err != nil {
		return nil, fmt.Errorf("telemetryclient: listen :%d: %w", port, err)
	}
	conn := pc.(*net.UDPConn)

	pconn := ipv4.NewPacketConn(conn)

	var ifi *net.Interface
	if iface != "" {
		ifi, err = net.InterfaceByName(iface)
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("telemetryclient: interface %s: %w", iface, err)
		}
	}

	groupAddr := &net.UDPAddr{IP: group, Port: port}
	if err := pconn.JoinGroup(ifi, groupAddr); err != nil {
		conn.Close()
		return nil, fmt.Errorf("telemetryclient: join group %s: %w", addr, err)
	}

	return &Client{conn: conn, pconn: pconn, groupAddr: groupAddr}, nil
}

// Close leaves the multicast group and releases the socket.
func (c *Client) Close() error {
	c.pconn.LeaveGroup(nil, c.groupAddr)
	return c.conn.Close()
}

// Run receives datagrams forever, decoding every concatenated record in
// each and invoking handle for each one in order, until a read error (most
// commonly Close being called from another goroutine) or a malformed
// datagram ends the loop. Records decoded before the malformed one in that
// datagram are still passed to handle.
func (c *Client) Run(handle Handler) error {
	buf := make([]byte, 65507) // max UDP payload
	for {
		n, _, err := c.conn.ReadFromUDP(buf)
		if err != nil {
			return fmt.Errorf("telemetryclient: read: %w", err)
		}
		msgs, err := packet.DecodeDatagram(buf[:n])
		for _, m := range msgs {
			handle(m)
		}
		if err != nil {
			return fmt.Errorf("telemetryclient: decode datagram: %w", err)
		}
	}
}

// Render formats a decoded record the way the operator console prints it
// (spec §4.7 "human-readable lines per record type"); it is just m.String()
// today but kept as a named seam so cmd/telemetry-client can add per-type
// coloring or filtering without touching the receive loop.
func Render(m packet.Message) string {
	return m.String()
}
