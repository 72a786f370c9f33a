// Package domain models municipal snow emergency lookups.
//
// # City Database
//
// Each supported city is stored under a normalized key: the spoken city name
// lowercased with spaces removed ("Saint Paul" becomes "saintpaul"). A record
// carries the municipal page to read, the phrases that indicate a declared
// emergency ("yes conditions"), the phrases that indicate there is none
// ("no conditions"), and the city's written snow policy.
//
// Cities that only publish a policy have no yes conditions. Their page is never
// fetched and the lookup reports that the city doesn't post emergencies.
//
// # Page Formats
//
//	html     the page body is matched as-is (default)
//	notices  a JSON feed of the form {"notices":[{publishDate, expireDate, html}]};
//	         only the html of the notice active right now is matched
//
// # Classification
//
// Outcomes are checked in a fixed order:
//
//	unreachable  the page could not be fetched
//	yes          a yes condition appears in the lowercased page text
//	no           a no condition appears, or the page has any text at all
//	maybe        nothing to go on
//
// A yes match always wins over a no match.
package domain
