package padserver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"time"

	"github.com/carletonu/hysim-go/hysimerr"
	"github.com/carletonu/hysim-go/packet"
)

// RunController is the controller task (spec §4.4): accept loop, single-
// client invariant, bounded re-accept wait after a connection loss, ABORT
// on re-accept timeout. It returns hysimerr.ErrAborted (wrapped) when the
// re-accept wait elapses without a reconnect; the caller treats that as
// fatal (spec §7 "Fatal").
func (s *Server) RunController(ctx context.Context) error {
	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", s.controllerAddr)
	if err != nil {
		return fmt.Errorf("padserver: listen %s: %w", s.controllerAddr, err)
	}
	defer ln.Close()
	tcpLn := ln.(*net.TCPListener)

	s.log.Info("controller listening", slog.String("addr", s.controllerAddr))

	acceptTimeout := time.Duration(0) // first accept of the process is unbounded
	for {
		conn, acceptErr := acceptWithDeadline(ctx, tcpLn, acceptTimeout)
		if acceptErr != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.state.SetConnStatus(packet.ConnDisconnected)
			if s.metrics != nil {
				s.metrics.ObserveConn(packet.ConnDisconnected)
			}
			return fmt.Errorf("padserver: re-accept within %s: %w: %w", acceptTimeout, acceptErr, hysimerr.ErrAborted)
		}

		if err := s.configureConn(conn); err != nil {
			s.log.Error("configure connection", slog.Any("err", err))
			conn.Close()
			s.state.SetConnStatus(packet.ConnDisconnected)
			if s.metrics != nil {
				s.metrics.ObserveConn(packet.ConnDisconnected)
			}
			return fmt.Errorf("padserver: %w", hysimerr.ErrAborted)
		}

		s.state.SetConnStatus(packet.ConnConnected)
		if s.metrics != nil {
			s.metrics.ObserveConn(packet.ConnConnected)
		}
		s.log.Info("controller connected", slog.String("remote", conn.RemoteAddr().String()))

		err = s.handleConn(ctx, conn)
		conn.Close()

		if ctx.Err() != nil {
			return ctx.Err()
		}

		s.log.Warn("control connection lost", slog.Any("err", err))
		s.state.SetConnStatus(packet.ConnReconnecting)
		if s.metrics != nil {
			s.metrics.ObserveConn(packet.ConnReconnecting)
		}

		// Every accept after the first must complete within the
		// configured abort timeout (spec §4.4); exceeding it is fatal.
		acceptTimeout = s.tuning.AbortTimeout
	}
}

func (s *Server) configureConn(conn *net.TCPConn) error {
	if err := conn.SetNoDelay(true); err != nil {
		return err
	}
	return tuneKeepAlive(conn, s.tuning.TCPKeepIdle, s.tuning.TCPKeepInterval, s.tuning.TCPKeepCount)
}

// acceptWithDeadline accepts one connection, bounding the wait to timeout
// (0 means unbounded). It clears any deadline it set before returning.
func acceptWithDeadline(ctx context.Context, ln *net.TCPListener, timeout time.Duration) (*net.TCPConn, error) {
	if timeout > 0 {
		if err := ln.SetDeadline(time.Now().Add(timeout)); err != nil {
			return nil, err
		}
		defer ln.SetDeadline(time.Time{})
	}
	type result struct {
		conn *net.TCPConn
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		c, err := ln.AcceptTCP()
		ch <- result{c, err}
	}()
	select {
	case <-ctx.Done():
		ln.SetDeadline(time.Now())
		<-ch
		return nil, ctx.Err()
	case r := <-ch:
		return r.conn, r.err
	}
}

// handleConn services one connected controller: read request, dispatch,
// write ack, repeat, until the connection fails or a protocol violation
// occurs (spec §4.4).
func (s *Server) handleConn(ctx context.Context, conn *net.TCPConn) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		msg, err := packet.DecodeControl(conn)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return err
			}
			return fmt.Errorf("padserver: decode request: %w", err)
		}

		ack, err := s.dispatch(ctx, msg)
		if err != nil {
			return fmt.Errorf("padserver: dispatch: %w", err)
		}

		if err := ack.Encode(conn); err != nil {
			return fmt.Errorf("padserver: write ack: %w", err)
		}
	}
}

// dispatch applies one decoded control request to pad state and returns the
// matching ack message. ACK subtypes arriving here are a protocol violation
// (a client must never send an ACK) and drop the connection.
func (s *Server) dispatch(ctx context.Context, msg packet.Message) (packet.Message, error) {
	switch m := msg.(type) {
	case packet.ActReq:
		status, err := s.state.TryActuate(ctx, m.ID, m.State)
		if err != nil {
			if errors.Is(err, hysimerr.ErrHardware) {
				// Spec §7: a hardware errno always yields an ACK, never a
				// dropped request. No wire status exists for "hardware
				// failure" beyond OK/DENIED/DNE/INV, so reuse ActDenied.
				s.log.Error("actuate hardware error", slog.String("actuator", m.ID.Name()), slog.Any("err", err))
				return packet.ActAck{ID: m.ID, Status: packet.ActDenied}, nil
			}
			s.log.Error("actuate hardware error", slog.String("actuator", m.ID.Name()), slog.Any("err", err))
			return nil, err
		}
		if s.metrics != nil && status == packet.ActOK {
			on, getErr := s.state.GetActuator(m.ID)
			if getErr == nil {
				s.metrics.ObserveActuator(m.ID, on)
			}
			// QUICK_DISCONNECT and IGNITER actuations can move the arm level.
			s.metrics.ObserveArm(s.state.GetArm())
		}
		return packet.ActAck{ID: m.ID, Status: status}, nil
	case packet.ArmReq:
		status := s.state.TrySetArm(m.Level)
		if s.metrics != nil && status == packet.ArmOK {
			s.metrics.ObserveArm(s.state.GetArm())
		}
		return packet.ArmAck{Status: status}, nil
	case packet.ActAck, packet.ArmAck:
		return nil, fmt.Errorf("padserver: received ack %s from client: %w", msg, hysimerr.ErrProtocolViolation)
	default:
		return nil, fmt.Errorf("padserver: unexpected message %s: %w", msg, hysimerr.ErrProtocolViolation)
	}
}
