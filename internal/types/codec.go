package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

var ErrMalformedFrame = errors.New("malformed frame")

// Decode turns one text frame into an Inbound variant. Frames that are not
// valid JSON, or whose payload does not fit the tag, yield ErrMalformedFrame.
// Unrecognized tags decode to Unknown, never to an error.
func Decode(data []byte) (Inbound, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrMalformedFrame
	}
	tag := gjson.GetBytes(data, "type").String()

	switch tag {
	case "players":
		var m Players
		if err := unmarshal(data, &m); err != nil {
			return nil, err
		}
		return m, nil

	case "playerJoined":
		var m PlayerJoined
		if err := unmarshal(data, &m); err != nil {
			return nil, err
		}
		return m, nil

	case "playerLeft":
		var m PlayerLeft
		if err := unmarshal(data, &m); err != nil {
			return nil, err
		}
		return m, nil

	case "yourTurn":
		var m YourTurn
		if err := unmarshal(data, &m); err != nil {
			return nil, err
		}
		return m, nil

	case "event", "log", "serverLog":
		m := LogLine{Kind: tag}
		if err := unmarshal(data, &m); err != nil {
			return nil, err
		}
		return m, nil

	case "move":
		var m Move
		if err := unmarshal(data, &m); err != nil {
			return nil, err
		}
		v, err := versionOf(data)
		if err != nil {
			return nil, err
		}
		m.Version = v
		return m, nil

	case "state":
		var m State
		if err := unmarshal(data, &m); err != nil {
			return nil, err
		}
		v, err := versionOf(data)
		if err != nil {
			return nil, err
		}
		m.Version = v
		return m, nil

	case "drawPrompt":
		var m DrawPrompt
		if err := unmarshal(data, &m); err != nil {
			return nil, err
		}
		return m, nil

	case "card":
		var m Card
		if err := unmarshal(data, &m); err != nil {
			return nil, err
		}
		return m, nil

	default:
		raw := make([]byte, len(data))
		copy(raw, data)
		return Unknown{Type: tag, Raw: raw}, nil
	}
}

// VersionOf reports the ordering stamp of a decoded message, if it has one.
func VersionOf(m Inbound) (Version, bool) {
	switch msg := m.(type) {
	case Move:
		return msg.Version, msg.Version.Set
	case State:
		return msg.Version, msg.Version.Set
	}
	return Version{}, false
}

// Encode serializes an outbound message with its "type" tag.
func Encode(m Outbound) ([]byte, error) {
	payload, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", m.Type(), err)
	}
	out, err := sjson.SetBytes(payload, "type", m.Type())
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", m.Type(), err)
	}
	return out, nil
}

func unmarshal(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}
	return nil
}

// versionOf only honors numeric stamps; a string or null version counts as
// absent. A numeric stamp that is not a whole int64 makes the frame malformed.
func versionOf(data []byte) (Version, error) {
	v := gjson.GetBytes(data, "version")
	if v.Type != gjson.Number {
		return Version{}, nil
	}
	n, err := wholeNumber(v.Raw)
	if err != nil {
		return Version{}, fmt.Errorf("%w: version %v", ErrMalformedFrame, err)
	}
	return Version{N: n, Set: true}, nil
}

// wholeNumber accepts any spelling of an integral JSON number (3, 3.0, 3e0).
func wholeNumber(raw string) (int64, error) {
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, fmt.Errorf("%s is not a whole number", raw)
	}
	return int64(f), nil
}

func (m *Move) UnmarshalJSON(data []byte) error {
	var raw struct {
		PlayerID string       `json:"playerId"`
		To       *json.Number `json:"to"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	m.PlayerID, m.To = raw.PlayerID, nil
	if raw.To != nil {
		n, err := wholeNumber(raw.To.String())
		if err != nil {
			return fmt.Errorf("to: %w", err)
		}
		to := int(n)
		m.To = &to
	}
	return nil
}

func (m *State) UnmarshalJSON(data []byte) error {
	var raw struct {
		Positions map[string]json.Number `json:"positions"`
		Turn      string                 `json:"turn"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	m.Turn, m.Positions = raw.Turn, nil
	if raw.Positions != nil {
		m.Positions = make(map[string]int, len(raw.Positions))
	}
	for id, num := range raw.Positions {
		n, err := wholeNumber(num.String())
		if err != nil {
			return fmt.Errorf("positions.%s: %w", id, err)
		}
		m.Positions[id] = int(n)
	}
	return nil
}
