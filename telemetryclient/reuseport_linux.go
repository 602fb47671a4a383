//go:build linux

package telemetryclient

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// controlReusePort sets SO_REUSEPORT (and SO_REUSEADDR) on the listening
// socket before bind, so more than one telemetry client on the same host
// can join the same multicast port (spec §4.7, §1's multi-subscriber case).
// golang.org/x/sys/unix is reached for here the same way padserver's
// keepalive_linux.go does: net's portable API has no knob for this.
func controlReusePort(_, _ string, c syscall.RawConn) error {
	var sockErr error
	err := c.Control(func(fd uintptr) {
		if sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEPORT, 1); sockErr != nil {
			return
		}
		sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
	})
	if err != nil {
		return err
	}
	return sockErr
}
