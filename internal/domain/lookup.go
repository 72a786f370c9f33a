package domain

import "time"

// LookupEvent records one city lookup for downstream analytics.
type LookupEvent struct {
	RequestID  string    `json:"request_id"`
	DeviceID   string    `json:"device_id,omitempty"`
	City       string    `json:"city"`
	CityKey    string    `json:"city_key"`
	Found      bool      `json:"found"`
	Recombined bool      `json:"recombined"`
	Outcome    Outcome   `json:"outcome,omitempty"`
	Source     string    `json:"source"` // slot or address
	Timestamp  time.Time `json:"timestamp"`
}

// NewLookupEvent stamps a lookup event with the package clock.
func NewLookupEvent(requestID, deviceID, city, cityKey string) LookupEvent {
	return LookupEvent{
		RequestID: requestID,
		DeviceID:  deviceID,
		City:      city,
		CityKey:   cityKey,
		Source:    "slot",
		Timestamp: clock.Now().UTC(),
	}
}
