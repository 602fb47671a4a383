//go:build linux

package padserver

import (
	"fmt"
	"net"
	"time"

	"golang.org/x/sys/unix"
)

// tuneKeepAlive applies SO_KEEPALIVE plus the TCP_KEEPIDLE/KEEPINTVL/KEEPCNT
// tuning spec §4.4 requires, bounding how long a dead link takes to detect.
// golang.org/x/sys/unix is reached for here because net.TCPConn's portable
// API (SetKeepAlivePeriod) only controls the idle interval, not the probe
// interval or count.
func tuneKeepAlive(conn *net.TCPConn, idle, interval time.Duration, count int) error {
	if err := conn.SetKeepAlive(true); err != nil {
		return fmt.Errorf("padserver: enable keepalive: %w", err)
	}
	rawConn, err := conn.SyscallConn()
	if err != nil {
		return fmt.Errorf("padserver: syscall conn: %w", err)
	}
	var sockErr error
	err = rawConn.Control(func(fd uintptr) {
		if sockErr = unix.SetsockoptInt(int(fd), unix.IPPROTO_TCP, unix.TCP_KEEPIDLE, int(idle.Seconds())); sockErr != nil {
			return
		}
		if sockErr = unix.SetsockoptInt(int(fd), unix.IPPROTO_TCP, unix.TCP_KEEPINTVL, int(interval.Seconds())); sockErr != nil {
			return
		}
		sockErr = unix.SetsockoptInt(int(fd), unix.IPPROTO_TCP, unix.TCP_KEEPCNT, count)
	})
	if err != nil {
		return fmt.Errorf("padserver: control conn: %w", err)
	}
	if sockErr != nil {
		return fmt.Errorf("padserver: set keepalive options: %w", sockErr)
	}
	return nil
}
