//go:build !linux

package padserver

import (
	"fmt"
	"net"
	"time"
)

// tuneKeepAlive falls back to net.TCPConn's portable keep-alive controls on
// non-Linux platforms, where TCP_KEEPIDLE/KEEPINTVL/KEEPCNT are not
// available via a uniform syscall surface.
func tuneKeepAlive(conn *net.TCPConn, idle, _ time.Duration, _ int) error {
	if err := conn.SetKeepAlive(true); err != nil {
		return fmt.Errorf("padserver: enable keepalive: %w", err)
	}
	if err := conn.SetKeepAlivePeriod(idle); err != nil {
		return fmt.Errorf("padserver: set keepalive period: %w", err)
	}
	return nil
}
