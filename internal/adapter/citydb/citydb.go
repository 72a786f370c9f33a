// Package citydb loads the static table of supported cities.
//
// The table is a JSON or YAML object keyed by city. Keys are normalized
// (lowercased, spaces removed) when the table is built.
package citydb

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/couchcryptid/snow-emergency-skill/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed city_map.json
var defaultCityMap []byte

// Records maps a raw city key to its record, before normalization.
type Records map[string]domain.LocationRecord

// LoadDefault returns the embedded city table.
func LoadDefault() (*domain.CityTable, error) {
	recs, err := Parse(defaultCityMap, ".json")
	if err != nil {
		return nil, fmt.Errorf("embedded city map: %w", err)
	}
	return domain.NewCityTable(recs), nil
}

// Load reads the city table at path. An empty path loads the embedded table.
func Load(path string) (*domain.CityTable, error) {
	if path == "" {
		return LoadDefault()
	}
	recs, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	return domain.NewCityTable(recs), nil
}

// ReadFile parses the records at path, choosing the format by extension.
func ReadFile(path string) (Records, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read city map: %w", err)
	}
	recs, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return recs, nil
}

// Parse decodes records. ext selects YAML for ".yaml" or ".yml" and JSON
// otherwise.
func Parse(data []byte, ext string) (Records, error) {
	var recs Records
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &recs); err != nil {
			return nil, fmt.Errorf("decode yaml city map: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &recs); err != nil {
			return nil, fmt.Errorf("decode json city map: %w", err)
		}
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("city map has no cities")
	}
	return recs, nil
}

// Validate lists problems that would make a city answer badly. The result is
// sorted and empty when the records are sound.
func Validate(recs Records) []string {
	var problems []string
	seen := make(map[string]string, len(recs))
	for key, rec := range recs {
		norm := domain.NormalizeKey(key)
		if other, dup := seen[norm]; dup {
			problems = append(problems, fmt.Sprintf("%s: collides with %q after normalization", key, other))
		}
		seen[norm] = key
		problems = append(problems, validateRecord(key, rec)...)
	}
	sort.Strings(problems)
	return problems
}

func validateRecord(key string, rec domain.LocationRecord) []string {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, key+": "+fmt.Sprintf(format, args...))
	}

	if rec.PostsEmergencies() {
		if u, err := url.Parse(rec.Site); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			add("site %q is not an http(s) URL", rec.Site)
		}
	}
	if !rec.PostsEmergencies() && len(rec.NoCondition) > 0 {
		add("noCondition is never checked without a yesCondition")
	}
	if strings.TrimSpace(rec.Policy) == "" {
		add("policy is empty")
	}
	switch rec.PageFormat() {
	case domain.FormatHTML, domain.FormatNotices:
	default:
		add("unknown format %q", rec.Format)
	}
	for _, phrase := range append(append([]string{}, rec.YesCondition...), rec.NoCondition...) {
		if strings.TrimSpace(phrase) == "" {
			add("empty condition phrase")
		}
	}
	return problems
}
