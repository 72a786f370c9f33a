package alexa

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadEvent(t *testing.T, name string) *Event {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	ev, err := ParseEvent(data)
	require.NoError(t, err)
	return ev
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestParseEvent_Fixture(t *testing.T) {
	ev := loadEvent(t, "location_request.json")

	require.NotNil(t, ev.Request)
	assert.Equal(t, "LocationRequest", ev.Request.Type)
	assert.Equal(t, "amzn1.echo-api.request.888888", ev.Request.RequestID)
	require.NotNil(t, ev.Request.Intent)
	require.Len(t, ev.Request.Intent.Slots, 2)
	assert.Equal(t, "cityName", ev.Request.Intent.Slots[0].Name)
	assert.Equal(t, "Saint Paul", *ev.Request.Intent.Slots[0].Value)
	assert.Nil(t, ev.Request.Intent.Slots[1].Value)
}

func TestParseEvent_Invalid(t *testing.T) {
	_, err := ParseEvent([]byte(`{"request":`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode event")
}

func TestRawSlots_PreservesOrderAndFillsNames(t *testing.T) {
	var intent Intent
	require.NoError(t, json.Unmarshal([]byte(`{
		"name": "LocationIntent",
		"slots": {
			"zeta": {"value": "last"},
			"alpha": {"name": "alpha", "value": "first"},
			"mid": {"name": "mid"}
		}
	}`), &intent))

	require.Len(t, intent.Slots, 3)
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, []string{intent.Slots[0].Name, intent.Slots[1].Name, intent.Slots[2].Name})
	assert.Equal(t, "last", *intent.Slots[0].Value)
	assert.Nil(t, intent.Slots[2].Value)
}

func TestRawSlots_Null(t *testing.T) {
	var intent Intent
	require.NoError(t, json.Unmarshal([]byte(`{"name":"X","slots":null}`), &intent))
	assert.Empty(t, intent.Slots)
}

func TestRawSlots_NotAnObject(t *testing.T) {
	var intent Intent
	err := json.Unmarshal([]byte(`{"slots":["cityName"]}`), &intent)
	require.Error(t, err)
}

func TestRawSlots_MarshalKeyed(t *testing.T) {
	slots := RawSlots{
		{Name: "cityName", Value: strPtr("brooklyn")},
		{Name: "stateName", Value: strPtr("park")},
	}
	b, err := json.Marshal(slots)
	require.NoError(t, err)
	assert.Equal(t, `{"cityName":{"name":"cityName","value":"brooklyn"},"stateName":{"name":"stateName","value":"park"}}`, string(b))

	var back RawSlots
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, slots, back)
}
