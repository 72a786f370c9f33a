// Package alexa models the skill request event and response envelope.
//
// Every field of an incoming event may be absent. Nested objects are pointers
// and scalar fields that carry meaning when missing are pointers too, so
// accessors can tell "absent" from "zero".
package alexa

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Event is an incoming skill request.
type Event struct {
	Version string   `json:"version,omitempty"`
	Context *Context `json:"context,omitempty"`
	Request *Request `json:"request,omitempty"`
}

type Context struct {
	System   *System   `json:"System,omitempty"`
	Viewport *Viewport `json:"Viewport,omitempty"`
}

type System struct {
	Device         *Device `json:"device,omitempty"`
	User           *User   `json:"user,omitempty"`
	APIEndpoint    string  `json:"apiEndpoint,omitempty"`
	APIAccessToken string  `json:"apiAccessToken,omitempty"`
}

type Device struct {
	DeviceID            string                `json:"deviceId,omitempty"`
	SupportedInterfaces map[string]*Interface `json:"supportedInterfaces,omitempty"`
}

// Interface is one entry of a device's supported interfaces. Only the APL
// runtime version is read.
type Interface struct {
	Runtime *Runtime `json:"runtime,omitempty"`
}

type Runtime struct {
	MaxVersion *string `json:"maxVersion,omitempty"`
}

type User struct {
	UserID      string         `json:"userId,omitempty"`
	Permissions map[string]any `json:"permissions,omitempty"`
}

type Viewport struct {
	Shape       *string `json:"shape,omitempty"`
	PixelWidth  *int    `json:"pixelWidth,omitempty"`
	PixelHeight *int    `json:"pixelHeight,omitempty"`
}

type Request struct {
	Type      string  `json:"type,omitempty"`
	RequestID string  `json:"requestId,omitempty"`
	Timestamp string  `json:"timestamp,omitempty"`
	Locale    string  `json:"locale,omitempty"`
	Intent    *Intent `json:"intent,omitempty"`
}

type Intent struct {
	Name  string   `json:"name,omitempty"`
	Slots RawSlots `json:"slots,omitempty"`
}

// RawSlot is a slot as it appears on the wire.
type RawSlot struct {
	Name  string  `json:"name,omitempty"`
	Value *string `json:"value,omitempty"`
}

// RawSlots keeps intent slots in the order they appear in the event's JSON
// object.
type RawSlots []RawSlot

// UnmarshalJSON decodes a slot object, using each key as the slot name when
// the slot omits one.
func (s *RawSlots) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("decode slots: %w", err)
	}
	if tok == nil {
		*s = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("decode slots: expected object, got %v", tok)
	}

	var out RawSlots
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("decode slots: %w", err)
		}
		key, _ := keyTok.(string)

		var slot RawSlot
		if err := dec.Decode(&slot); err != nil {
			return fmt.Errorf("decode slot %q: %w", key, err)
		}
		if slot.Name == "" {
			slot.Name = key
		}
		out = append(out, slot)
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("decode slots: %w", err)
	}
	*s = out
	return nil
}

// MarshalJSON encodes slots back into a keyed object, preserving order.
func (s RawSlots) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, slot := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(slot.Name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(slot)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ParseEvent decodes a raw event.
func ParseEvent(data []byte) (*Event, error) {
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}
	return &ev, nil
}

func (e *Event) system() *System {
	if e == nil || e.Context == nil {
		return nil
	}
	return e.Context.System
}

func (e *Event) device() *Device {
	if s := e.system(); s != nil {
		return s.Device
	}
	return nil
}
