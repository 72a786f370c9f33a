package alexa

import (
	"strings"

	"github.com/couchcryptid/snow-emergency-skill/internal/domain"
)

// Slot names used by the location intent.
const (
	SlotCity  = "cityName"
	SlotState = "stateName"
)

// Slot is a named utterance value. The raw value is stored lowercased.
// Key and Display are nil exactly when the raw value is nil.
type Slot struct {
	Name     string
	value    *string
	override *string
}

// NewSlot builds a slot from its wire value.
func NewSlot(name string, value *string) Slot {
	s := Slot{Name: name}
	if value != nil {
		v := strings.ToLower(*value)
		s.value = &v
	}
	return s
}

// RawValue returns the lowercased slot value, or nil.
func (s Slot) RawValue() *string {
	return s.value
}

// Key is the lookup form: lowercased with spaces removed.
func (s Slot) Key() *string {
	if s.value == nil {
		return nil
	}
	k := domain.NormalizeKey(*s.value)
	return &k
}

// Display is the spoken form with each word capitalized, unless overridden.
func (s Slot) Display() *string {
	if s.value == nil {
		return nil
	}
	if s.override != nil {
		return s.override
	}
	d := domain.DisplayName(*s.value)
	return &d
}

// SetDisplay overrides the spoken form. It has no effect on a nil slot.
func (s *Slot) SetDisplay(display string) {
	if s.value == nil {
		return
	}
	s.override = &display
}

// IsUSState reports whether the slot names a US state.
func (s Slot) IsUSState() bool {
	return s.value != nil && domain.IsUSState(*s.value)
}

// Slots is an ordered set of slots.
type Slots []Slot

// Get returns the slot with the given name. A missing slot is returned as a
// nil-valued slot with ok false.
func (ss Slots) Get(name string) (Slot, bool) {
	for _, s := range ss {
		if s.Name == name {
			return s, true
		}
	}
	return Slot{Name: name}, false
}

// ExtractSlots reads intent slots from an event. Missing request, intent, or
// slots yield an empty set.
func ExtractSlots(e *Event) Slots {
	if e == nil || e.Request == nil || e.Request.Intent == nil {
		return Slots{}
	}
	out := make(Slots, 0, len(e.Request.Intent.Slots))
	for _, raw := range e.Request.Intent.Slots {
		out = append(out, NewSlot(raw.Name, raw.Value))
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
