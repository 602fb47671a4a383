//go:build !linux

package telemetryclient

import "syscall"

// controlReusePort is a no-op on platforms without a uniform SO_REUSEPORT
// syscall surface; a second telemetry client on the same host must pick a
// different port there.
func controlReusePort(_, _ string, _ syscall.RawConn) error {
	return nil
}
