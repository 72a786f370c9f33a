// Command validate lints a city database before it is deployed. It checks
// each record for problems that would produce a wrong or broken answer,
// renders every reply the skill could give for each city, and, with -live,
// fetches each city's page and reports the outcome the skill would speak.
//
// Usage:
//
//	go run ./cmd/validate -db internal/adapter/citydb/city_map.json
//	go run ./cmd/validate -db cities.yaml -live
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/couchcryptid/snow-emergency-skill/internal/adapter/citydb"
	"github.com/couchcryptid/snow-emergency-skill/internal/adapter/web"
	"github.com/couchcryptid/snow-emergency-skill/internal/alexa"
	"github.com/couchcryptid/snow-emergency-skill/internal/apl"
	"github.com/couchcryptid/snow-emergency-skill/internal/domain"
	"github.com/couchcryptid/snow-emergency-skill/internal/observability"
	"github.com/couchcryptid/snow-emergency-skill/internal/skill"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	dbPath := flag.String("db", "", "path to a JSON or YAML city database (default: embedded)")
	live := flag.Bool("live", false, "fetch each city's page and classify it")
	timeout := flag.Duration("timeout", 5*time.Second, "per-page fetch timeout for -live")
	flag.Parse()

	if code := run(os.Stdout, *dbPath, *live, *timeout); code != 0 {
		os.Exit(code)
	}
}

func run(out io.Writer, dbPath string, live bool, timeout time.Duration) int {
	fmt.Fprintln(out, "=== City Database Validation ===")
	fmt.Fprintln(out)

	recs, err := loadRecords(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load city database: %v\n", err)
		return 1
	}
	table := domain.NewCityTable(recs)

	phases := []*phase{
		validateRecords(recs),
		validateReplies(table),
	}
	if live {
		phases = append(phases, validateLive(out, table, timeout))
	}

	fmt.Fprintln(out)
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(out, "  %-42s %s\n", p.name, status)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Cities: %d\n", table.Len())

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(out, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(out, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(out, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(out, "\nValidation FAILED.")
	return 1
}

func loadRecords(path string) (citydb.Records, error) {
	if path == "" {
		table, err := citydb.LoadDefault()
		if err != nil {
			return nil, err
		}
		recs := make(citydb.Records, table.Len())
		for _, k := range table.Keys() {
			recs[k], _ = table.Lookup(k)
		}
		return recs, nil
	}
	return citydb.ReadFile(path)
}

// ── Phase 1: record integrity ──

func validateRecords(recs citydb.Records) *phase {
	p := &phase{name: "Phase 1: Record integrity"}
	for _, problem := range citydb.Validate(recs) {
		p.errorf("%s", problem)
	}
	return p
}

// ── Phase 2: reply rendering ──

var outcomes = []domain.Outcome{
	domain.OutcomeYes,
	domain.OutcomeNo,
	domain.OutcomeMaybe,
	domain.OutcomeUnreachable,
}

func validateReplies(table *domain.CityTable) *phase {
	p := &phase{name: "Phase 2: Reply rendering"}
	composer := skill.NewComposer(apl.NewBuilder("Snow Emergency", ""), true)

	w, h := 1024, 600
	devices := map[string]alexa.DeviceProfile{
		"voice":     {},
		"rectangle": {Shape: alexa.ShapeRectangle, Width: &w, Height: &h, APL: true},
		"round":     {Shape: alexa.ShapeRound, Width: &h, Height: &h, APL: true},
	}

	for _, key := range table.Keys() {
		rec, _ := table.Lookup(key)
		name := rec.Name
		if name == "" {
			name = domain.DisplayName(key)
		}
		for _, o := range outcomes {
			cl := domain.Classification{Outcome: o, Sentence: fmt.Sprintf("%s check for %s", o, name)}
			for dev, profile := range devices {
				reply, err := composer.Compose(cl, profile, rec)
				if err != nil {
					p.errorf("%s/%s/%s: compose: %v", key, o, dev, err)
					continue
				}
				checkReply(p, fmt.Sprintf("%s/%s/%s", key, o, dev), reply, profile)
			}
		}
	}
	return p
}

func checkReply(p *phase, label string, reply skill.Reply, profile alexa.DeviceProfile) {
	if !strings.HasPrefix(reply.Speech, "<speak>") || !strings.HasSuffix(reply.Speech, "</speak>") {
		p.errorf("%s: speech is not wrapped in <speak>", label)
	}
	if strings.Contains(reply.Speech, "&") {
		p.errorf("%s: speech contains a raw ampersand", label)
	}
	if profile.APL && reply.Directive == nil {
		p.errorf("%s: screen device got no directive", label)
	}
	if !profile.APL && reply.Directive != nil {
		p.errorf("%s: voice-only device got a directive", label)
	}
}

// ── Phase 3: live classification ──

func validateLive(out io.Writer, table *domain.CityTable, timeout time.Duration) *phase {
	p := &phase{name: "Phase 3: Live classification"}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	fetcher := web.NewClient(timeout, observability.NewMetrics(), logger)

	fmt.Fprintln(out, "Live outcomes:")
	for _, key := range table.Keys() {
		rec, _ := table.Lookup(key)
		if !rec.PostsEmergencies() {
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		cl := domain.Classify(ctx, rec, domain.DisplayName(key), fetcher, logger)
		cancel()

		fmt.Fprintf(out, "  %-20s %s\n", key, cl.Outcome)
		if cl.Outcome == domain.OutcomeUnreachable {
			p.errorf("%s: %s is unreachable", key, rec.Site)
		}
	}
	return p
}
