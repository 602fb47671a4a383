// Package mockfile parses the pad server's optional mock-data replay file
// (-f flag, spec §6), letting the telemetry task emit a scripted sequence of
// telemetry records instead of sampling live SensorSources. This is the
// Go-native replacement for the "mock-data file parsing" shell spec.md
// names as external/platform work (spec §1).
//
// Format: one record per line, blank lines and lines starting with '#'
// ignored.
//
//	<delay-ms> <record-type> field=value field=value ...
//
// record-type is one of: temp pressure mass thrust arm act warn cont conn.
// delay-ms is how long to sleep, relative to the previous line, before
// emitting this record.
package mockfile

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/carletonu/hysim-go/packet"
)

// Record is one scripted emission: wait Delay, then send Message.
type Record struct {
	Delay   time.Duration
	Message packet.Message
}

// Parse reads a full mock-data script from r.
func Parse(r io.Reader) ([]Record, error) {
	var out []Record
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		rec, err := parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("mockfile: line %d: %w", lineNo, err)
		}
		out = append(out, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("mockfile: %w", err)
	}
	return out, nil
}

func parseLine(line string) (Record, error) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return Record{}, fmt.Errorf("expected at least '<delay-ms> <type>', got %q", line)
	}
	delayMs, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return Record{}, fmt.Errorf("invalid delay %q: %w", fields[0], err)
	}
	kv := map[string]string{}
	for _, kvField := range fields[2:] {
		parts := strings.SplitN(kvField, "=", 2)
		if len(parts) != 2 {
			return Record{}, fmt.Errorf("invalid field %q, want key=value", kvField)
		}
		kv[parts[0]] = parts[1]
	}
	msg, err := buildMessage(fields[1], kv)
	if err != nil {
		return Record{}, err
	}
	return Record{Delay: time.Duration(delayMs) * time.Millisecond, Message: msg}, nil
}

func u32(kv map[string]string, key string) (uint32, error) {
	v, err := strconv.ParseUint(kv[key], 10, 32)
	if err != nil {
		return 0, fmt.Errorf("field %q: %w", key, err)
	}
	return uint32(v), nil
}

// u32Default parses key if present, or returns def if the field was never
// set (as opposed to set to an unparseable value, which is still an error).
func u32Default(kv map[string]string, key string, def uint32) (uint32, error) {
	if _, present := kv[key]; !present {
		return def, nil
	}
	return u32(kv, key)
}

func i32(kv map[string]string, key string) (int32, error) {
	v, err := strconv.ParseInt(kv[key], 10, 32)
	if err != nil {
		return 0, fmt.Errorf("field %q: %w", key, err)
	}
	return int32(v), nil
}

func u8(kv map[string]string, key string) (uint8, error) {
	v, err := strconv.ParseUint(kv[key], 10, 8)
	if err != nil {
		return 0, fmt.Errorf("field %q: %w", key, err)
	}
	return uint8(v), nil
}

func boolField(kv map[string]string, key string) (bool, error) {
	switch kv[key] {
	case "0", "false", "":
		return false, nil
	case "1", "true":
		return true, nil
	default:
		return false, fmt.Errorf("field %q: invalid bool %q", key, kv[key])
	}
}

func buildMessage(kind string, kv map[string]string) (packet.Message, error) {
	t, err := u32Default(kv, "time", 0)
	if err != nil {
		return nil, err
	}
	switch kind {
	case "temp":
		v, err := i32(kv, "value")
		if err != nil {
			return nil, err
		}
		id, err := u8(kv, "id")
		if err != nil {
			return nil, err
		}
		return packet.Temp{Time: t, Temperature: v, ID: id}, nil
	case "pressure":
		v, err := i32(kv, "value")
		if err != nil {
			return nil, err
		}
		id, err := u8(kv, "id")
		if err != nil {
			return nil, err
		}
		return packet.Pressure{Time: t, Pressure: v, ID: id}, nil
	case "mass":
		v, err := i32(kv, "value")
		if err != nil {
			return nil, err
		}
		id, err := u8(kv, "id")
		if err != nil {
			return nil, err
		}
		return packet.Mass{Time: t, Mass: v, ID: id}, nil
	case "thrust":
		v, err := u32(kv, "value")
		if err != nil {
			return nil, err
		}
		return packet.Thrust{Time: t, Thrust: v}, nil
	case "arm":
		v, err := u8(kv, "state")
		if err != nil {
			return nil, err
		}
		return packet.ArmState{Time: t, State: packet.ArmLevel(v)}, nil
	case "act":
		id, err := u8(kv, "id")
		if err != nil {
			return nil, err
		}
		state, err := boolField(kv, "state")
		if err != nil {
			return nil, err
		}
		return packet.ActState{Time: t, ID: packet.ActuatorID(id), State: state}, nil
	case "warn":
		v, err := u8(kv, "type")
		if err != nil {
			return nil, err
		}
		return packet.Warn{Time: t, Type: packet.WarnType(v)}, nil
	case "cont":
		state, err := boolField(kv, "state")
		if err != nil {
			return nil, err
		}
		return packet.Cont{Time: t, State: state}, nil
	case "conn":
		v, err := u8(kv, "status")
		if err != nil {
			return nil, err
		}
		return packet.Conn{Time: t, Status: packet.ConnStatus(v)}, nil
	default:
		return nil, fmt.Errorf("unknown record type %q", kind)
	}
}
