package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// FetchErrorSentinel is the page text some fetchers return instead of an error.
const FetchErrorSentinel = "ERROR"

var errNoFetcher = errors.New("no page fetcher configured")

// Outcome is the result of checking a city's snow emergency status.
type Outcome string

const (
	OutcomeYes         Outcome = "yes"
	OutcomeNo          Outcome = "no"
	OutcomeMaybe       Outcome = "maybe"
	OutcomeUnreachable Outcome = "unreachable"
)

// PageFetcher retrieves the text behind a URL.
type PageFetcher interface {
	FetchPage(ctx context.Context, url string) (string, error)
}

// Classification pairs an outcome with the sentence that announces it.
type Classification struct {
	Outcome  Outcome
	Sentence string
}

// Classify fetches the record's page and decides whether city has declared a
// snow emergency. It never returns an error: fetch failures become
// OutcomeUnreachable.
func Classify(ctx context.Context, rec LocationRecord, city string, fetcher PageFetcher, logger *slog.Logger) Classification {
	page, fetched := "", false
	if rec.PostsEmergencies() {
		text, err := fetchText(ctx, rec, fetcher)
		if err != nil {
			logger.Warn("page fetch failed", "site", rec.Site, "city", city, "error", err)
			return Classification{
				Outcome:  OutcomeUnreachable,
				Sentence: fmt.Sprintf("The website for %s is not responding. %s", city, rec.Policy),
			}
		}
		page = strings.ToLower(text)
		fetched = page != "" || rec.PageFormat() == FormatNotices
	}

	switch {
	case containsAny(page, rec.YesCondition):
		return Classification{Outcome: OutcomeYes, Sentence: fmt.Sprintf("%s has declared a snow emergency", city)}
	case containsAny(page, rec.NoCondition) || fetched:
		return Classification{Outcome: OutcomeNo, Sentence: fmt.Sprintf("There is not a snow emergency in %s", city)}
	default:
		return Classification{Outcome: OutcomeMaybe, Sentence: fmt.Sprintf("%s doesn't post snow emergencies.", city)}
	}
}

func fetchText(ctx context.Context, rec LocationRecord, fetcher PageFetcher) (string, error) {
	if fetcher == nil {
		return "", errNoFetcher
	}
	text, err := fetcher.FetchPage(ctx, rec.Site)
	if err != nil {
		return "", err
	}
	if text == FetchErrorSentinel {
		return "", fmt.Errorf("fetch %s: upstream reported error", rec.Site)
	}
	if rec.PageFormat() == FormatNotices {
		html, _, err := ActiveNotice([]byte(text))
		return html, err
	}
	return text, nil
}

func containsAny(page string, phrases []string) bool {
	if page == "" {
		return false
	}
	for _, p := range phrases {
		if p != "" && strings.Contains(page, strings.ToLower(p)) {
			return true
		}
	}
	return false
}

// ColorPicker maps an outcome to the header color shown on screen devices.
func ColorPicker(o Outcome) string {
	switch o {
	case OutcomeYes:
		return "red"
	case OutcomeNo:
		return "green"
	default:
		return "yellow"
	}
}
