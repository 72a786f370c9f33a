// Package skill routes voice requests to replies.
//
// The Router is the single recovery boundary: whatever goes wrong while
// answering a request, the caller receives a well-formed reply.
package skill

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/couchcryptid/snow-emergency-skill/internal/alexa"
	"github.com/couchcryptid/snow-emergency-skill/internal/apl"
	"github.com/couchcryptid/snow-emergency-skill/internal/domain"
	"github.com/couchcryptid/snow-emergency-skill/internal/observability"
)

// LookupPublisher records city lookups for analytics.
type LookupPublisher interface {
	Publish(ctx context.Context, event domain.LookupEvent) error
}

// RouterConfig holds a Router's collaborators. Fetcher, Addresses, Geocoder
// and Publisher are optional.
type RouterConfig struct {
	Cities    *domain.CityTable
	Fetcher   domain.PageFetcher
	Addresses alexa.AddressFetcher
	Geocoder  domain.Geocoder
	Publisher LookupPublisher
	Composer  *Composer
	Builder   *apl.Builder
	Metrics   *observability.Metrics
	Logger    *slog.Logger
}

// Router answers one request at a time. It holds no per-request state and is
// safe for concurrent use.
type Router struct {
	cities    *domain.CityTable
	fetcher   domain.PageFetcher
	addresses alexa.AddressFetcher
	geocoder  domain.Geocoder
	publisher LookupPublisher
	composer  *Composer
	builder   *apl.Builder
	metrics   *observability.Metrics
	logger    *slog.Logger
}

func NewRouter(cfg RouterConfig) *Router {
	r := &Router{
		cities:    cfg.Cities,
		fetcher:   cfg.Fetcher,
		addresses: cfg.Addresses,
		geocoder:  cfg.Geocoder,
		publisher: cfg.Publisher,
		composer:  cfg.Composer,
		builder:   cfg.Builder,
		metrics:   cfg.Metrics,
		logger:    cfg.Logger,
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	if r.metrics == nil {
		r.metrics = observability.NewMetricsForTesting()
	}
	if r.builder == nil {
		r.builder = apl.NewBuilder("", "")
	}
	if r.composer == nil {
		r.composer = NewComposer(r.builder, true)
	}
	return r
}

// CheckReadiness reports an error until a non-empty city table is loaded.
func (r *Router) CheckReadiness(_ context.Context) error {
	if r.cities.Len() == 0 {
		return errors.New("city table is empty")
	}
	return nil
}

// Handle routes a decoded event and wraps the reply in a response envelope.
func (r *Router) Handle(ctx context.Context, ev *alexa.Event) alexa.ResponseEnvelope {
	rc := alexa.NewRequestContext(ev, r.addresses)
	reply := r.Route(ctx, rc)
	return alexa.NewEnvelope(reply.Speech, reply.Directive, alexa.EndsSession(rc.IntentType()))
}

// Route answers a request. It never fails: a missing address permission
// becomes a permission prompt and any other error or panic becomes a
// generic apology.
func (r *Router) Route(ctx context.Context, rc *alexa.RequestContext) (reply Reply) {
	start := time.Now()
	intent := rc.IntentType()
	logger := r.logger.With("request_id", rc.RequestID(), "intent", intent)

	defer func() {
		if p := recover(); p != nil {
			logger.Error("panic while routing request", "panic", fmt.Sprint(p))
			r.metrics.RouteErrors.WithLabelValues("panic").Inc()
			reply = speechReply(MsgGenericError)
		}
	}()

	r.metrics.Requests.WithLabelValues(intentLabel(intent)).Inc()

	reply, err := r.dispatch(ctx, rc, intent, logger)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrAddressPermission):
		logger.Info("device address permission missing")
		r.metrics.RouteErrors.WithLabelValues("permission").Inc()
		reply = speechReply(MsgPermission)
	default:
		logger.Error("route request failed", "error", err)
		r.metrics.RouteErrors.WithLabelValues("internal").Inc()
		reply = speechReply(MsgGenericError)
	}

	logger.Info("request routed",
		"intent_name", rc.IntentName(),
		"has_directive", reply.Directive != nil,
		"duration", time.Since(start),
	)
	return reply
}

func (r *Router) dispatch(ctx context.Context, rc *alexa.RequestContext, intent string, logger *slog.Logger) (Reply, error) {
	switch intent {
	case alexa.IntentRequest, alexa.LocationRequest:
		return r.location(ctx, rc, logger)
	case alexa.LaunchRequest, alexa.HelpIntent:
		return speechReply(MsgHelp), nil
	case alexa.StopIntent:
		return speechReply(MsgGoodbye), nil
	case alexa.CancelIntent, alexa.SessionEndedRequest:
		return Reply{}, nil
	case alexa.CitiesIntent:
		return r.listCities(rc)
	default:
		return speechReply(MsgFallback), nil
	}
}

// location answers "is there a snow emergency in X". Without a city slot the
// device address decides the city.
func (r *Router) location(ctx context.Context, rc *alexa.RequestContext, logger *slog.Logger) (Reply, error) {
	key := rc.City().Key()
	display := deref(rc.City().Display())
	source := "slot"

	if key == nil {
		addr, err := rc.Address(ctx)
		if err != nil {
			return Reply{}, err
		}
		city := domain.CityFromAddress(ctx, addr, r.geocoder, logger)
		if city == "" {
			return speechReply(MsgNoAddressCity), nil
		}
		k := domain.NormalizeKey(city)
		key = &k
		display = domain.DisplayName(city)
		source = "address"
	}

	rec, recombined, ok := r.cities.Resolve(key, rc.RecombinedKey())
	if recombined {
		rc.UseRecombinedCity()
		display = deref(rc.City().Display())
	}

	event := domain.NewLookupEvent(rc.RequestID(), rc.DeviceID(), display, *key)
	event.Source = source
	event.Found = ok
	event.Recombined = recombined

	if !ok {
		logger.Info("unknown city", "city", display, "city_key", *key)
		r.metrics.UnknownCities.Inc()
		r.publish(ctx, event, logger)
		return speechReply(fmt.Sprintf(MsgUnknownCity, display)), nil
	}

	cl := domain.Classify(ctx, rec, display, r.fetcher, logger)
	r.metrics.Classifications.WithLabelValues(string(cl.Outcome)).Inc()
	logger.Info("city classified", "city", display, "outcome", cl.Outcome, "recombined", recombined)

	event.Outcome = cl.Outcome
	r.publish(ctx, event, logger)

	return r.composer.Compose(cl, rc.Device(), rec)
}

// listCities names every supported city, with a list screen on APL devices.
func (r *Router) listCities(rc *alexa.RequestContext) (Reply, error) {
	keys := r.cities.Keys()
	names := make([]string, 0, len(keys))
	entries := make([]apl.ListEntry, 0, len(keys))
	for _, k := range keys {
		rec, _ := r.cities.Lookup(k)
		name := rec.Name
		if name == "" {
			name = domain.DisplayName(k)
		}
		names = append(names, name)

		secondary := msgPolicyOnly
		if rec.PostsEmergencies() {
			secondary = msgPostsEmergency
		}
		entries = append(entries, apl.ListEntry{Name: name, Secondary: secondary, Tertiary: rec.Site})
	}
	if len(names) == 0 {
		return speechReply(MsgHelp), nil
	}

	reply := speechReply(MsgCitiesPrefix + joinNames(names) + ".")
	if !rc.Device().APL {
		return reply, nil
	}
	d, err := r.builder.List(entries)
	if err != nil {
		return Reply{}, err
	}
	reply.Directive = &d
	return reply, nil
}

func (r *Router) publish(ctx context.Context, event domain.LookupEvent, logger *slog.Logger) {
	if r.publisher == nil {
		return
	}
	if err := r.publisher.Publish(ctx, event); err != nil {
		logger.Warn("publish lookup event failed", "error", err)
	}
}

func speechReply(text string) Reply {
	return Reply{Speech: Speak(text)}
}

// joinNames renders "a", "a and b", or "a, b, and c".
func joinNames(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	case 2:
		return names[0] + " and " + names[1]
	default:
		return strings.Join(names[:len(names)-1], ", ") + ", and " + names[len(names)-1]
	}
}

// intentLabel bounds the metric label set to the types the router knows.
func intentLabel(intent string) string {
	switch intent {
	case alexa.IntentRequest, alexa.LocationRequest, alexa.LaunchRequest,
		alexa.HelpIntent, alexa.StopIntent, alexa.CancelIntent,
		alexa.SessionEndedRequest, alexa.CitiesIntent, alexa.FallbackIntent:
		return intent
	default:
		return "unknown"
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
