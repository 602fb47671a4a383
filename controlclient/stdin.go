package controlclient

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/carletonu/hysim-go/packet"
)

// StdinSource is a desktop-bringup InputSource: operator types commands of
// the form "xv1 on", "xv1 off", "igniter on", "quick_disconnect off", or
// "arm 2" on stdin, one per line, instead of toggling physical switches.
type StdinSource struct {
	sc *bufio.Scanner
}

// NewStdinSource wraps r (typically os.Stdin) as an InputSource.
func NewStdinSource(r io.Reader) *StdinSource {
	return &StdinSource{sc: bufio.NewScanner(r)}
}

var stdinActuatorNames = map[string]packet.ActuatorID{
	"xv1": packet.ActuatorXV1, "xv2": packet.ActuatorXV2, "xv3": packet.ActuatorXV3,
	"xv4": packet.ActuatorXV4, "xv5": packet.ActuatorXV5, "fire_valve": packet.ActuatorFireValve,
	"xv6": packet.ActuatorXV6, "xv7": packet.ActuatorXV7, "xv8": packet.ActuatorXV8,
	"xv9": packet.ActuatorXV9, "xv10": packet.ActuatorXV10, "xv11": packet.ActuatorXV11,
	"xv12": packet.ActuatorXV12, "quick_disconnect": packet.ActuatorQuickDisconnect,
	"igniter": packet.ActuatorIgniter, "dump": packet.ActuatorDump,
}

// Next blocks for the next typed line and parses it into a SwitchEvent.
// ctx cancellation does not interrupt an in-flight line read (os.Stdin has
// no deadline support); it is checked between lines.
func (s *StdinSource) Next(ctx context.Context) (SwitchEvent, error) {
	if ctx.Err() != nil {
		return SwitchEvent{}, ctx.Err()
	}
	for s.sc.Scan() {
		line := strings.TrimSpace(s.sc.Text())
		if line == "" {
			continue
		}
		ev, err := parseStdinLine(line)
		if err != nil {
			fmt.Println(err)
			continue
		}
		return ev, nil
	}
	if err := s.sc.Err(); err != nil {
		return SwitchEvent{}, err
	}
	return SwitchEvent{}, io.EOF
}

func parseStdinLine(line string) (SwitchEvent, error) {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return SwitchEvent{}, fmt.Errorf("controlclient: expected '<switch> <state>', got %q", line)
	}
	if fields[0] == "arm" {
		level, err := strconv.ParseUint(fields[1], 10, 8)
		if err != nil {
			return SwitchEvent{}, fmt.Errorf("controlclient: invalid arm level %q: %w", fields[1], err)
		}
		return SwitchEvent{Kind: ArmEvent, ArmLevel: packet.ArmLevel(level)}, nil
	}
	id, ok := stdinActuatorNames[fields[0]]
	if !ok {
		return SwitchEvent{}, fmt.Errorf("controlclient: unknown switch %q", fields[0])
	}
	var state bool
	switch fields[1] {
	case "on", "1":
		state = true
	case "off", "0":
		state = false
	default:
		return SwitchEvent{}, fmt.Errorf("controlclient: invalid state %q", fields[1])
	}
	return SwitchEvent{Kind: ActuatorEvent, ID: id, NewState: state}, nil
}
