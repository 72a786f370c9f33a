package skill_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/couchcryptid/snow-emergency-skill/internal/alexa"
	"github.com/couchcryptid/snow-emergency-skill/internal/apl"
	"github.com/couchcryptid/snow-emergency-skill/internal/domain"
	"github.com/couchcryptid/snow-emergency-skill/internal/observability"
	"github.com/couchcryptid/snow-emergency-skill/internal/skill"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockFetcher struct {
	page    string
	err     error
	explode bool
	calls   int
}

func (m *mockFetcher) FetchPage(_ context.Context, _ string) (string, error) {
	m.calls++
	if m.explode {
		panic("fetch exploded")
	}
	return m.page, m.err
}

type mockAddresses struct {
	addr *domain.Address
	err  error
}

func (m *mockAddresses) FetchAddress(_ context.Context, _, _ string) (*domain.Address, error) {
	return m.addr, m.err
}

type mockGeocoder struct {
	result domain.GeocodingResult
	err    error
	query  string
}

func (m *mockGeocoder) ForwardGeocode(_ context.Context, query, _ string) (domain.GeocodingResult, error) {
	m.query = query
	return m.result, m.err
}

type mockPublisher struct {
	mu     sync.Mutex
	events []domain.LookupEvent
	err    error
}

func (m *mockPublisher) Publish(_ context.Context, e domain.LookupEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
	return m.err
}

// --- fixtures ---

const minneapolisPolicy = "Minneapolis declares snow emergencies after significant snowfall."

func testCities() *domain.CityTable {
	return domain.NewCityTable(map[string]domain.LocationRecord{
		"minneapolis": {
			Name:         "Minneapolis",
			Site:         "http://www2.minneapolismn.gov/snow/index.htm",
			YesCondition: []string{"a snow emergency has been declared"},
			NoCondition:  []string{"no snow emergency"},
			Policy:       minneapolisPolicy,
		},
		"brooklynpark": {
			Name:   "Brooklyn Park",
			Site:   "https://www.brooklynpark.org/snow",
			Policy: "Brooklyn Park plows all streets after 2 inches of snow.",
		},
		"saintpaul": {
			Name:         "Saint Paul",
			Site:         "https://www.stpaul.gov/snow",
			YesCondition: []string{"snow emergency declared"},
			NoCondition:  []string{"no snow emergency in effect"},
			Policy:       "Saint Paul plows night routes first, then day routes.",
		},
	})
}

type deps struct {
	fetcher   *mockFetcher
	addresses *mockAddresses
	geocoder  *mockGeocoder
	publisher *mockPublisher
	metrics   *observability.Metrics
}

func newRouter(d *deps) *skill.Router {
	if d.fetcher == nil {
		d.fetcher = &mockFetcher{}
	}
	if d.addresses == nil {
		d.addresses = &mockAddresses{}
	}
	if d.geocoder == nil {
		d.geocoder = &mockGeocoder{}
	}
	if d.publisher == nil {
		d.publisher = &mockPublisher{}
	}
	d.metrics = observability.NewMetricsForTesting()
	builder := apl.NewBuilder("Snow Emergency", "https://example.com/logo.png")
	return skill.NewRouter(skill.RouterConfig{
		Cities:    testCities(),
		Fetcher:   d.fetcher,
		Addresses: d.addresses,
		Geocoder:  d.geocoder,
		Publisher: d.publisher,
		Composer:  skill.NewComposer(builder, true),
		Builder:   builder,
		Metrics:   d.metrics,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func strPtr(s string) *string { return &s }

type eventOpt func(*alexa.Event)

func withAPL(shape alexa.Shape, width, height int) eventOpt {
	return func(e *alexa.Event) {
		e.Context.System.Device.SupportedInterfaces = map[string]*alexa.Interface{
			alexa.APLInterface: {Runtime: &alexa.Runtime{MaxVersion: strPtr("1.5")}},
		}
		s := string(shape)
		e.Context.Viewport = &alexa.Viewport{Shape: &s, PixelWidth: intPtr(width), PixelHeight: intPtr(height)}
	}
}

func withPermission() eventOpt {
	return func(e *alexa.Event) {
		e.Context.System.User.Permissions = map[string]any{"consentToken": "eyJ0eXA"}
	}
}

func newEvent(reqType, intentName string, slots alexa.RawSlots, opts ...eventOpt) *alexa.Event {
	e := &alexa.Event{
		Version: "1.0",
		Context: &alexa.Context{System: &alexa.System{
			Device:         &alexa.Device{DeviceID: "amzn1.ask.device.AEGXGYKTLQ"},
			User:           &alexa.User{UserID: "amzn1.ask.account.XYZ"},
			APIEndpoint:    "https://api.amazonalexa.com",
			APIAccessToken: "eyJ0eXA",
		}},
		Request: &alexa.Request{
			Type:      reqType,
			RequestID: "amzn1.echo-api.request.888888",
			Intent:    &alexa.Intent{Name: intentName, Slots: slots},
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func cityEvent(city string, opts ...eventOpt) *alexa.Event {
	return newEvent(alexa.LocationRequest, "LocationIntent",
		alexa.RawSlots{{Name: alexa.SlotCity, Value: strPtr(city)}}, opts...)
}

// --- tests ---

func TestHandle_FixedReplies(t *testing.T) {
	tests := []struct {
		name       string
		event      *alexa.Event
		speech     string
		endSession bool
	}{
		{"launch", newEvent(alexa.LaunchRequest, "", nil), "<speak>" + skill.MsgHelp + "</speak>", false},
		{"help", newEvent(alexa.IntentRequest, "AMAZON.HelpIntent", nil), "<speak>" + skill.MsgHelp + "</speak>", false},
		{"stop", newEvent(alexa.IntentRequest, "AMAZON.StopIntent", nil), "<speak>Bye!</speak>", true},
		{"cancel", newEvent(alexa.IntentRequest, "AMAZON.CancelIntent", nil), "", true},
		{"session ended", newEvent(alexa.SessionEndedRequest, "", nil), "", true},
		{"fallback", newEvent(alexa.IntentRequest, "AMAZON.FallbackIntent", nil), "<speak>I'm sorry, I don't understand.</speak>", false},
		{"unknown type", newEvent("Display.ElementSelected", "", nil), "<speak>I'm sorry, I don't understand.</speak>", false},
		{"no request", &alexa.Event{}, "<speak>I'm sorry, I don't understand.</speak>", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRouter(&deps{})
			env := r.Handle(context.Background(), tt.event)

			assert.Equal(t, "1.0", env.Version)
			assert.Equal(t, tt.speech, env.Response.OutputSpeech.SSML)
			assert.Equal(t, tt.endSession, env.Response.ShouldEndSession)
			assert.Empty(t, env.Response.Directives)
		})
	}
}

func TestHandle_UnknownCity(t *testing.T) {
	d := &deps{}
	env := newRouter(d).Handle(context.Background(), cityEvent("Fargo"))

	assert.Equal(t,
		"<speak>I don't have information for Fargo. Request another Minnesota city and I'll get snow emergency info for you!</speak>",
		env.Response.OutputSpeech.SSML)
	assert.Empty(t, env.Response.Directives)
	assert.False(t, env.Response.ShouldEndSession)
	assert.Equal(t, 0, d.fetcher.calls)

	require.Len(t, d.publisher.events, 1)
	assert.False(t, d.publisher.events[0].Found)
	assert.Equal(t, "fargo", d.publisher.events[0].CityKey)
}

func TestHandle_DeclaredEmergencyWithoutScreen(t *testing.T) {
	d := &deps{fetcher: &mockFetcher{page: "<p>A snow emergency has been declared</p>"}}
	env := newRouter(d).Handle(context.Background(), cityEvent("Minneapolis"))

	assert.Equal(t, "<speak>Minneapolis has declared a snow emergency</speak>", env.Response.OutputSpeech.SSML)
	assert.Empty(t, env.Response.Directives)
	assert.Equal(t, 1, d.fetcher.calls)
}

func TestHandle_NoEmergencyOnRectangle(t *testing.T) {
	d := &deps{fetcher: &mockFetcher{page: "No snow emergency in effect"}}
	env := newRouter(d).Handle(context.Background(), cityEvent("saint paul", withAPL(alexa.ShapeRectangle, 1024, 600)))

	assert.Equal(t, "<speak>There is not a snow emergency in Saint Paul</speak>", env.Response.OutputSpeech.SSML)
	require.Len(t, env.Response.Directives, 1)
	color, theme := headerStyle(t, &env.Response.Directives[0])
	assert.Equal(t, "green", color)
	assert.Equal(t, "dark", theme)

	props := datasource(t, &env.Response.Directives[0])["longTextTemplateData"].(map[string]any)["properties"].(map[string]any)
	body := props["textContent"].(map[string]any)["primaryText"].(map[string]any)
	assert.Equal(t, "Saint Paul plows night routes first, then day routes.", body["text"])
}

func TestHandle_RoundDevice(t *testing.T) {
	d := &deps{fetcher: &mockFetcher{page: "A snow emergency has been declared"}}
	env := newRouter(d).Handle(context.Background(), cityEvent("Minneapolis", withAPL(alexa.ShapeRound, 480, 480)))

	require.Len(t, env.Response.Directives, 1)
	props := datasource(t, &env.Response.Directives[0])["roundTextTemplateData"].(map[string]any)["properties"].(map[string]any)
	assert.Equal(t, "YES", props["text"])
}

func TestHandle_UnreachableSite(t *testing.T) {
	tests := []struct {
		name    string
		fetcher *mockFetcher
	}{
		{"fetch error", &mockFetcher{err: errors.New("connection refused")}},
		{"error sentinel", &mockFetcher{page: domain.FetchErrorSentinel}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newRouter(&deps{fetcher: tt.fetcher}).Handle(context.Background(), cityEvent("Minneapolis"))
			assert.Equal(t,
				"<speak>The website for Minneapolis is not responding. "+minneapolisPolicy+"</speak>",
				env.Response.OutputSpeech.SSML)
		})
	}
}

func TestHandle_RecombinedCity(t *testing.T) {
	d := &deps{}
	ev := newEvent(alexa.LocationRequest, "LocationIntent", alexa.RawSlots{
		{Name: alexa.SlotCity, Value: strPtr("brooklyn")},
		{Name: alexa.SlotState, Value: strPtr("park")},
	})

	env := newRouter(d).Handle(context.Background(), ev)

	assert.Equal(t,
		"<speak>Brooklyn Park doesn't post snow emergencies. Brooklyn Park plows all streets after 2 inches of snow.</speak>",
		env.Response.OutputSpeech.SSML)
	assert.Equal(t, 0, d.fetcher.calls, "records without yes conditions are not fetched")

	require.Len(t, d.publisher.events, 1)
	got := d.publisher.events[0]
	want := domain.LookupEvent{
		RequestID:  "amzn1.echo-api.request.888888",
		DeviceID:   "amzn1.ask.device.AEGXGYKTLQ",
		City:       "Brooklyn Park",
		CityKey:    "brooklyn",
		Found:      true,
		Recombined: true,
		Outcome:    domain.OutcomeMaybe,
		Source:     "slot",
	}
	if diff := cmp.Diff(want, got, cmpopts.IgnoreFields(domain.LookupEvent{}, "Timestamp")); diff != "" {
		t.Errorf("lookup event mismatch (-want +got):\n%s", diff)
	}
}

func TestHandle_MissingCityWithoutPermission(t *testing.T) {
	ev := newEvent(alexa.IntentRequest, "LocationIntent", nil)

	env := newRouter(&deps{}).Handle(context.Background(), ev)

	assert.Equal(t, "<speak>"+skill.MsgPermission+"</speak>", env.Response.OutputSpeech.SSML)
	assert.False(t, env.Response.ShouldEndSession)
}

func TestHandle_CityFromDeviceAddress(t *testing.T) {
	d := &deps{
		addresses: &mockAddresses{addr: &domain.Address{City: "Minneapolis", StateOrRegion: "MN"}},
		fetcher:   &mockFetcher{page: "no snow emergency"},
	}
	ev := newEvent(alexa.IntentRequest, "LocationIntent", nil, withPermission())

	env := newRouter(d).Handle(context.Background(), ev)

	assert.Equal(t, "<speak>There is not a snow emergency in Minneapolis</speak>", env.Response.OutputSpeech.SSML)
	require.Len(t, d.publisher.events, 1)
	assert.Equal(t, "address", d.publisher.events[0].Source)
}

func TestHandle_CityFromPostalCode(t *testing.T) {
	d := &deps{
		addresses: &mockAddresses{addr: &domain.Address{PostalCode: "55104", StateOrRegion: "MN"}},
		geocoder:  &mockGeocoder{result: domain.GeocodingResult{PlaceName: "Saint Paul"}},
		fetcher:   &mockFetcher{page: "Snow emergency declared tonight"},
	}
	ev := newEvent(alexa.IntentRequest, "LocationIntent", nil, withPermission())

	env := newRouter(d).Handle(context.Background(), ev)

	assert.Equal(t, "55104", d.geocoder.query)
	assert.Equal(t, "<speak>Saint Paul has declared a snow emergency</speak>", env.Response.OutputSpeech.SSML)
}

func TestHandle_AddressWithoutCity(t *testing.T) {
	d := &deps{
		addresses: &mockAddresses{addr: &domain.Address{PostalCode: "55104"}},
		geocoder:  &mockGeocoder{err: errors.New("mapbox unavailable")},
	}
	ev := newEvent(alexa.IntentRequest, "LocationIntent", nil, withPermission())

	env := newRouter(d).Handle(context.Background(), ev)

	assert.Equal(t, "<speak>"+skill.MsgNoAddressCity+"</speak>", env.Response.OutputSpeech.SSML)
}

func TestHandle_AddressLookupFails(t *testing.T) {
	d := &deps{addresses: &mockAddresses{err: errors.New("status 500")}}
	ev := newEvent(alexa.IntentRequest, "LocationIntent", nil, withPermission())

	env := newRouter(d).Handle(context.Background(), ev)

	assert.Equal(t, "<speak>"+skill.MsgGenericError+"</speak>", env.Response.OutputSpeech.SSML)
}

func TestHandle_AddressPermissionRevoked(t *testing.T) {
	d := &deps{addresses: &mockAddresses{err: domain.ErrAddressPermission}}
	ev := newEvent(alexa.IntentRequest, "LocationIntent", nil, withPermission())

	env := newRouter(d).Handle(context.Background(), ev)

	assert.Equal(t, "<speak>"+skill.MsgPermission+"</speak>", env.Response.OutputSpeech.SSML)
}

func TestHandle_PanicBecomesGenericError(t *testing.T) {
	d := &deps{fetcher: &mockFetcher{explode: true}}

	env := newRouter(d).Handle(context.Background(), cityEvent("Minneapolis"))

	assert.Equal(t, "<speak>I'm having issues, please try again later</speak>", env.Response.OutputSpeech.SSML)
	assert.Empty(t, env.Response.Directives)
}

func TestHandle_PublishFailureIgnored(t *testing.T) {
	d := &deps{
		fetcher:   &mockFetcher{page: "a snow emergency has been declared"},
		publisher: &mockPublisher{err: errors.New("broker down")},
	}

	env := newRouter(d).Handle(context.Background(), cityEvent("Minneapolis"))

	assert.Equal(t, "<speak>Minneapolis has declared a snow emergency</speak>", env.Response.OutputSpeech.SSML)
}

func TestHandle_CitiesIntent(t *testing.T) {
	ev := newEvent(alexa.IntentRequest, "CitiesIntent", nil, withAPL(alexa.ShapeRectangle, 1024, 600))

	env := newRouter(&deps{}).Handle(context.Background(), ev)

	assert.Equal(t,
		"<speak>I have snow emergency info for Brooklyn Park, Minneapolis, and Saint Paul.</speak>",
		env.Response.OutputSpeech.SSML)
	require.Len(t, env.Response.Directives, 1)

	data := datasource(t, &env.Response.Directives[0])["listTemplate1ListData"].(map[string]any)
	assert.InDelta(t, 3, data["totalNumberOfItems"], 0)
	items := data["listPage"].(map[string]any)["listItems"].([]any)
	first := items[0].(map[string]any)
	assert.Equal(t, "brooklynpark", first["listItemIdentifier"])
	assert.Equal(t, "Policy only", first["textContent"].(map[string]any)["secondaryText"].(map[string]any)["text"])
}

func TestHandle_CitiesIntentWithoutScreen(t *testing.T) {
	env := newRouter(&deps{}).Handle(context.Background(), newEvent(alexa.IntentRequest, "CitiesIntent", nil))
	assert.Empty(t, env.Response.Directives)
}

func TestRouter_CheckReadiness(t *testing.T) {
	require.NoError(t, newRouter(&deps{}).CheckReadiness(context.Background()))

	empty := skill.NewRouter(skill.RouterConfig{Cities: domain.NewCityTable(nil)})
	require.Error(t, empty.CheckReadiness(context.Background()))
}

func TestRouter_NilCollaborators(t *testing.T) {
	r := skill.NewRouter(skill.RouterConfig{Cities: testCities()})

	env := r.Handle(context.Background(), cityEvent("Minneapolis"))

	assert.Contains(t, env.Response.OutputSpeech.SSML, "The website for Minneapolis is not responding.")
}
