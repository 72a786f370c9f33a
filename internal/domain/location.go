package domain

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Page formats understood by the classifier.
const (
	FormatHTML    = "html"
	FormatNotices = "notices"
)

// LocationRecord describes where and how to check one city's snow emergency status.
type LocationRecord struct {
	Name         string   `json:"name,omitempty" yaml:"name,omitempty"`
	Site         string   `json:"site" yaml:"site"`
	YesCondition []string `json:"yesCondition" yaml:"yesCondition"`
	NoCondition  []string `json:"noCondition" yaml:"noCondition"`
	Policy       string   `json:"policy" yaml:"policy"`
	Format       string   `json:"format,omitempty" yaml:"format,omitempty"`
}

// PageFormat returns the record's format, defaulting to html.
func (r LocationRecord) PageFormat() string {
	if r.Format == "" {
		return FormatHTML
	}
	return r.Format
}

// PostsEmergencies reports whether the city publishes emergency declarations
// that can be matched, as opposed to only a written policy.
func (r LocationRecord) PostsEmergencies() bool {
	return len(r.YesCondition) > 0
}

// CityTable is a read-only lookup of location records by normalized city key.
// It is safe for concurrent use once built.
type CityTable struct {
	records map[string]LocationRecord
	keys    []string
}

// NewCityTable copies records into a table. Keys are normalized on the way in.
func NewCityTable(records map[string]LocationRecord) *CityTable {
	t := &CityTable{records: make(map[string]LocationRecord, len(records))}
	for k, rec := range records {
		t.records[NormalizeKey(k)] = rec
	}
	t.keys = make([]string, 0, len(t.records))
	for k := range t.records {
		t.keys = append(t.keys, k)
	}
	sort.Strings(t.keys)
	return t
}

// Lookup returns the record stored under key.
func (t *CityTable) Lookup(key string) (LocationRecord, bool) {
	if t == nil || key == "" {
		return LocationRecord{}, false
	}
	rec, ok := t.records[key]
	return rec, ok
}

// Resolve looks up cityKey, then falls back to recombinedKey (city and state
// slots joined) when the direct lookup misses. usedRecombined is true only
// when the fallback produced the record, in which case callers should speak
// the joined display name instead of the city slot's.
func (t *CityTable) Resolve(cityKey, recombinedKey *string) (rec LocationRecord, usedRecombined, ok bool) {
	if cityKey == nil {
		return LocationRecord{}, false, false
	}
	if rec, ok := t.Lookup(*cityKey); ok {
		return rec, false, true
	}
	if recombinedKey == nil {
		return LocationRecord{}, false, false
	}
	if rec, ok := t.Lookup(NormalizeKey(*recombinedKey)); ok {
		return rec, true, true
	}
	return LocationRecord{}, false, false
}

// Keys returns the normalized city keys in sorted order.
func (t *CityTable) Keys() []string {
	if t == nil {
		return nil
	}
	out := make([]string, len(t.keys))
	copy(out, t.keys)
	return out
}

// Len returns the number of cities in the table.
func (t *CityTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.records)
}

// NormalizeKey lowercases s and strips spaces.
func NormalizeKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(s), " ", "")
}

// DisplayName capitalizes each space-separated word of s.
func DisplayName(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}
