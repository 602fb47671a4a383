// Package controlclient is the operator station's half of the control
// channel (spec §4.6): it owns exactly one TCP socket to the pad server,
// turns physical switch events into request/ack round trips, and enforces
// the privilege-escalation guard that keeps an unkeyed abort from silently
// retreating the arming state.
//
// Grounded on giesekow-go-netdicom's association/request client pattern
// (dial, then a synchronous send-request/await-response loop over one
// connection) generalized to a forever-retry dial loop, which the teacher
// does not need (DICOM associations are not long-lived operator stations).
package controlclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"syscall"
	"time"

	"github.com/carletonu/hysim-go/packet"
)

// errInputExhausted signals that the InputSource has no more events (e.g.
// stdin closed); the client shuts down cleanly instead of busy-reconnecting.
var errInputExhausted = errors.New("input source exhausted")

// SwitchEvent is one observed operator-input transition: switch i moved to
// newState. ActuatorEvent events carry an ActuatorID; ArmEvent events carry
// an ArmLevel in ArmLevel and ignore ID/NewState.
type SwitchEvent struct {
	Kind     EventKind
	ID       packet.ActuatorID
	NewState bool
	ArmLevel packet.ArmLevel
}

// EventKind distinguishes an actuator toggle from an arm-rotary move.
type EventKind int

const (
	ActuatorEvent EventKind = iota
	ArmEvent
)

// InputSource yields operator input events; Next blocks until one arrives
// or ctx is cancelled. Implementations bind this to GPIO-line signals (with
// the two-read ~30ms debounce spec §4.6 requires) on target, or to a
// terminal on desktop.
type InputSource interface {
	Next(ctx context.Context) (SwitchEvent, error)
}

// ArmingKeyGuard reports whether the physical arming-key switch is
// currently in the keyed position. The privilege-escalation guard (spec
// §4.6) consults this before forwarding an ARMED_IGNITION->off edge.
type ArmingKeyGuard interface {
	Keyed() bool
}

// Client drives one control connection's lifetime: connect, forward
// events, reconnect on connection loss, forever.
type Client struct {
	addr    string
	backoff time.Duration
	log     *slog.Logger
	input   InputSource
	guard   ArmingKeyGuard

	mu          sync.Mutex
	switchState map[packet.ActuatorID]bool
	armState    packet.ArmLevel
}

// New builds a Client dialing addr (host:port), consuming events from
// input, and consulting guard before forwarding de-arming edges. guard may
// be nil, in which case the guard never blocks (desktop bring-up without a
// physical key).
func New(addr string, backoff time.Duration, logger *slog.Logger, input InputSource, guard ArmingKeyGuard) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		addr:        addr,
		backoff:     backoff,
		log:         logger,
		input:       input,
		guard:       guard,
		switchState: make(map[packet.ActuatorID]bool),
	}
}

// Run connects and services input events until ctx is cancelled, retrying
// the dial forever on connection-refused-class errors (spec §4.6).
func (c *Client) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		conn, err := c.dial(ctx)
		if err != nil {
			return err // ctx cancelled mid-retry
		}

		c.log.Info("connected to pad", slog.String("addr", c.addr))
		err = c.serve(ctx, conn)
		conn.Close()

		if ctx.Err() != nil {
			return ctx.Err()
		}
		if errors.Is(err, errInputExhausted) {
			return nil
		}
		if !isReconnectable(err) {
			return fmt.Errorf("controlclient: unrecoverable: %w", err)
		}
		c.log.Warn("control connection lost, reconnecting", slog.Any("err", err))
	}
}

// dial retries forever on ECONNREFUSED/ETIMEDOUT/ENOTCONN/ENETUNREACH,
// returning only on success or ctx cancellation.
func (c *Client) dial(ctx context.Context) (net.Conn, error) {
	for {
		var d net.Dialer
		conn, err := d.DialContext(ctx, "tcp", c.addr)
		if err == nil {
			return conn, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !isDialRetryable(err) {
			c.log.Error("dial failed, retrying anyway per policy", slog.Any("err", err))
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.backoff):
		}
	}
}

// serve runs the synchronous request/ack loop over one live connection.
func (c *Client) serve(ctx context.Context, conn net.Conn) error {
	for {
		ev, err := c.input.Next(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return fmt.Errorf("controlclient: input source exhausted: %w", errInputExhausted)
			}
			return err
		}

		req, ok := c.buildRequest(ev)
		if !ok {
			continue // privilege-escalation guard dropped the edge
		}

		if err := req.Encode(conn); err != nil {
			return fmt.Errorf("controlclient: send request: %w", err)
		}
		c.applyOptimisticState(ev)

		ack, err := packet.DecodeControl(conn)
		if err != nil {
			return fmt.Errorf("controlclient: read ack: %w", err)
		}
		c.logAck(ev, ack)
	}
}

// buildRequest turns an input event into a wire request, applying the
// privilege-escalation guard: an explicit abort back to ARMED_VALVES from
// ARMED_IGNITION or above, without the arming key present, is silently
// dropped (spec §4.2 rule 3, §4.6) rather than forwarded. No actuation side
// effect ever retreats arming to ARMED_VALVES, so every other edge is
// forwarded unconditionally.
func (c *Client) buildRequest(ev SwitchEvent) (packet.Message, bool) {
	if ev.Kind == ArmEvent {
		if ev.ArmLevel == packet.ArmedValves && c.guard != nil && !c.guard.Keyed() {
			c.mu.Lock()
			cur := c.armState
			c.mu.Unlock()
			if cur >= packet.ArmedIgnition {
				c.log.Warn("dropped arm-abort edge: arming key not present")
				return nil, false
			}
		}
		return packet.ArmReq{Level: ev.ArmLevel}, true
	}

	state := packet.RawState(0)
	if ev.NewState {
		state = 1
	}
	return packet.ActReq{ID: ev.ID, State: state}, true
}

func (c *Client) applyOptimisticState(ev SwitchEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ev.Kind == ArmEvent {
		c.armState = ev.ArmLevel
		return
	}
	c.switchState[ev.ID] = ev.NewState
}

func (c *Client) logAck(ev SwitchEvent, ack packet.Message) {
	switch a := ack.(type) {
	case packet.ActAck:
		if a.Status != packet.ActOK {
			c.log.Warn("actuation rejected", slog.String("actuator", a.ID.Name()), slog.String("status", a.Status.String()))
			c.mu.Lock()
			delete(c.switchState, a.ID)
			c.mu.Unlock()
		}
	case packet.ArmAck:
		if a.Status != packet.ArmOK {
			c.log.Warn("arm request rejected", slog.String("status", a.Status.String()))
		}
	default:
		c.log.Error("unexpected ack type", slog.String("ack", ack.String()))
	}
	_ = ev
}

func isDialRetryable(err error) bool {
	return errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ETIMEDOUT) ||
		errors.Is(err, syscall.ENOTCONN) ||
		errors.Is(err, syscall.ENETUNREACH)
}

func isReconnectable(err error) bool {
	return errors.Is(err, syscall.ENOTCONN) ||
		errors.Is(err, syscall.ECONNABORTED) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, net.ErrClosed)
}
