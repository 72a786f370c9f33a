package alexa

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/couchcryptid/snow-emergency-skill/internal/domain"
	"github.com/google/uuid"
)

// Request types and built-in intents the skill routes on.
const (
	IntentRequest       = "IntentRequest"
	LocationRequest     = "LocationRequest"
	LaunchRequest       = "LaunchRequest"
	SessionEndedRequest = "SessionEndedRequest"
	HelpIntent          = "HelpIntent"
	StopIntent          = "StopIntent"
	CancelIntent        = "CancelIntent"
	FallbackIntent      = "FallbackIntent"
	CitiesIntent        = "CitiesIntent"
)

// builtinIntents maps intent names that arrive inside an IntentRequest to
// the type the router handles them as.
var builtinIntents = map[string]string{
	"AMAZON.HelpIntent":     HelpIntent,
	"AMAZON.StopIntent":     StopIntent,
	"AMAZON.CancelIntent":   CancelIntent,
	"AMAZON.FallbackIntent": FallbackIntent,
	CitiesIntent:            CitiesIntent,
}

var errNoAddressFetcher = errors.New("address lookup not configured")

// AddressFetcher retrieves a device's address from the device settings API.
type AddressFetcher interface {
	FetchAddress(ctx context.Context, url, token string) (*domain.Address, error)
}

// RequestContext is a read-only view over one event. The device address is
// fetched at most once, on first use.
type RequestContext struct {
	event     *Event
	slots     Slots
	device    DeviceProfile
	requestID string
	addresses AddressFetcher

	addressLoaded bool
	address       *domain.Address
	addressErr    error
}

// NewRequestContext wraps an event. addresses may be nil when address
// lookup is not available.
func NewRequestContext(e *Event, addresses AddressFetcher) *RequestContext {
	rc := &RequestContext{
		event:     e,
		slots:     ExtractSlots(e),
		device:    NewDeviceProfile(e),
		addresses: addresses,
	}
	if e != nil && e.Request != nil {
		rc.requestID = e.Request.RequestID
	}
	if rc.requestID == "" {
		rc.requestID = "local." + uuid.NewString()
	}
	return rc
}

// IntentType is the request type, with built-in intents delivered inside an
// IntentRequest unwrapped to their bare names.
func (rc *RequestContext) IntentType() string {
	if rc.event == nil || rc.event.Request == nil {
		return ""
	}
	req := rc.event.Request
	if req.Type == IntentRequest && req.Intent != nil {
		if t, ok := builtinIntents[req.Intent.Name]; ok {
			return t
		}
	}
	return req.Type
}

// IntentName is the raw intent name, if any.
func (rc *RequestContext) IntentName() string {
	if rc.event == nil || rc.event.Request == nil || rc.event.Request.Intent == nil {
		return ""
	}
	return rc.event.Request.Intent.Name
}

// RequestID returns the event's request id, or a generated one when absent.
func (rc *RequestContext) RequestID() string { return rc.requestID }

func (rc *RequestContext) DeviceID() string {
	if d := rc.event.device(); d != nil {
		return d.DeviceID
	}
	return ""
}

func (rc *RequestContext) APIAccessToken() string {
	if s := rc.event.system(); s != nil {
		return s.APIAccessToken
	}
	return ""
}

// APIEndpoint returns the device API base URL, always over https.
func (rc *RequestContext) APIEndpoint() string {
	s := rc.event.system()
	if s == nil {
		return ""
	}
	return strings.ReplaceAll(s.APIEndpoint, "http://", "https://")
}

// HasDevicePermission reports whether the user granted any permissions.
func (rc *RequestContext) HasDevicePermission() bool {
	s := rc.event.system()
	return s != nil && s.User != nil && len(s.User.Permissions) > 0
}

// DeviceAddressURL is the settings API URL for this device's address.
func (rc *RequestContext) DeviceAddressURL() string {
	return fmt.Sprintf("%s/v1/devices/%s/settings/address", rc.APIEndpoint(), rc.DeviceID())
}

// Address returns the device address. It fails with
// domain.ErrAddressPermission when the user has not granted access.
func (rc *RequestContext) Address(ctx context.Context) (*domain.Address, error) {
	if !rc.HasDevicePermission() {
		return nil, domain.ErrAddressPermission
	}
	if rc.addressLoaded {
		return rc.address, rc.addressErr
	}
	rc.addressLoaded = true
	if rc.addresses == nil {
		rc.addressErr = errNoAddressFetcher
		return nil, rc.addressErr
	}
	rc.address, rc.addressErr = rc.addresses.FetchAddress(ctx, rc.DeviceAddressURL(), rc.APIAccessToken())
	return rc.address, rc.addressErr
}

func (rc *RequestContext) Slots() Slots          { return rc.slots }
func (rc *RequestContext) Device() DeviceProfile { return rc.device }

// City returns the city slot. Its value is nil when absent.
func (rc *RequestContext) City() Slot {
	s, _ := rc.slots.Get(SlotCity)
	return s
}

// State returns the state slot. Its value is nil when absent.
func (rc *RequestContext) State() Slot {
	s, _ := rc.slots.Get(SlotState)
	return s
}

// RecombinedKey joins the city and state slot keys for names the speech
// model split in two ("brooklyn" + "park"). Nil unless both are present and
// the state slot is not an actual US state.
func (rc *RequestContext) RecombinedKey() *string {
	city, state := rc.City().Key(), rc.State().Key()
	if city == nil || state == nil || rc.State().IsUSState() {
		return nil
	}
	k := *city + *state
	return &k
}

// UseRecombinedCity makes the city slot speak as the joined city and state,
// for when the recombined key is the one that matched.
func (rc *RequestContext) UseRecombinedCity() {
	display := rc.RecombinedDisplay()
	for i := range rc.slots {
		if rc.slots[i].Name == SlotCity {
			rc.slots[i].SetDisplay(display)
			return
		}
	}
}

// RecombinedDisplay joins the city and state display forms.
func (rc *RequestContext) RecombinedDisplay() string {
	return strings.TrimSpace(deref(rc.City().Display()) + " " + deref(rc.State().Display()))
}

// EndsSession reports whether a reply to intentType should close the session.
func EndsSession(intentType string) bool {
	switch intentType {
	case StopIntent, CancelIntent, SessionEndedRequest:
		return true
	default:
		return false
	}
}
