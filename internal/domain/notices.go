package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

type noticeFeed struct {
	Notices []notice `json:"notices"`
}

type notice struct {
	PublishDate string `json:"publishDate"`
	ExpireDate  string `json:"expireDate"`
	HTML        string `json:"html"`
}

// noticeLayouts are tried in order when parsing feed dates.
var noticeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ActiveNotice returns the html of the first notice in a JSON feed that was
// published before now and expires after now. found is false when no notice
// is active. Notices with a missing or unparseable date are skipped.
func ActiveNotice(feed []byte) (html string, found bool, err error) {
	var f noticeFeed
	if err := json.Unmarshal(feed, &f); err != nil {
		return "", false, fmt.Errorf("decode notice feed: %w", err)
	}

	now := clock.Now()
	for _, n := range f.Notices {
		published, ok := parseNoticeDate(n.PublishDate)
		if !ok || !published.Before(now) {
			continue
		}
		expires, ok := parseNoticeDate(n.ExpireDate)
		if !ok || !expires.After(now) {
			continue
		}
		return n.HTML, true, nil
	}
	return "", false, nil
}

func parseNoticeDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range noticeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
