package domain

import "strings"

var usStates = map[string]struct{}{
	"alabama": {}, "alaska": {}, "arizona": {}, "arkansas": {}, "california": {},
	"colorado": {}, "connecticut": {}, "delaware": {}, "florida": {}, "georgia": {},
	"hawaii": {}, "idaho": {}, "illinois": {}, "indiana": {}, "iowa": {},
	"kansas": {}, "kentucky": {}, "louisiana": {}, "maine": {}, "maryland": {},
	"massachusetts": {}, "michigan": {}, "minnesota": {}, "mississippi": {}, "missouri": {},
	"montana": {}, "nebraska": {}, "nevada": {}, "new hampshire": {}, "new jersey": {},
	"new mexico": {}, "new york": {}, "north carolina": {}, "north dakota": {}, "ohio": {},
	"oklahoma": {}, "oregon": {}, "pennsylvania": {}, "rhode island": {}, "south carolina": {},
	"south dakota": {}, "tennessee": {}, "texas": {}, "utah": {}, "vermont": {},
	"virginia": {}, "washington": {}, "west virginia": {}, "wisconsin": {}, "wyoming": {},
}

// IsUSState reports whether name is one of the 50 US states, ignoring case
// and surrounding whitespace.
func IsUSState(name string) bool {
	_, ok := usStates[strings.ToLower(strings.Join(strings.Fields(name), " "))]
	return ok
}
