/*
Package normalize implements the value corrections applied to address and
phone tags.

All rules are pure string transformations. Values that do not match the
expected format are returned unchanged, a rule never fails.
*/
package normalize

import (
	"regexp"
	"strings"

	"github.com/omniscale/osmwrangle/mapping"
)

// Rules applies the street name and house number corrections of a set of
// normalization maps. Rules is safe for concurrent use.
type Rules struct {
	maps     *mapping.Maps
	dispatch []dispatchRule
}

func New(maps *mapping.Maps) *Rules {
	r := &Rules{maps: maps}
	r.dispatch = []dispatchRule{
		{keyIs("addr:street"), r.StreetName},
		{keyIs("addr:housenumber"), r.HouseNumber},
		{keyIs("phone", "contact:phone", "contact:mobile"), Phone},
	}
	return r
}

var firstToken = regexp.MustCompile(`^[^\s\v]+`)

// FirstToken returns the leading non-whitespace part of value.
func FirstToken(value string) (string, bool) {
	tok := firstToken.FindString(value)
	return tok, tok != ""
}

// StreetName replaces the street type at the start of value with its
// canonical form, e.g. "avenue Foch" -> "Avenue Foch".
func (r *Rules) StreetName(value string) string {
	tok, ok := FirstToken(value)
	if !ok {
		return value
	}
	canonical, ok := r.maps.StreetType(tok)
	if !ok {
		return value
	}
	return canonical + value[len(tok):]
}

var (
	houseNumberSep = regexp.MustCompile(`[,;\-]+`)
	houseNumber    = regexp.MustCompile(`([0-9]+)(\s*)([A-Za-z]*)`)
)

// SplitHouseNumbers splits a list of house numbers separated by comma,
// semicolon or hyphen. Empty parts are dropped.
func SplitHouseNumbers(value string) []string {
	parts := houseNumberSep.Split(value, -1)
	numbers := parts[:0]
	for _, p := range parts {
		if p != "" {
			numbers = append(numbers, p)
		}
	}
	return numbers
}

// HouseNumberSuffix returns the digits and the letters that follow the
// first number of value.
func HouseNumberSuffix(value string) (number, suffix string, ok bool) {
	m := houseNumber.FindStringSubmatch(value)
	if m == nil {
		return "", "", false
	}
	return m[1], m[3], true
}

// HouseNumber normalizes the suffixes of all house numbers in value, e.g.
// "5,7B" -> "5;7 bis". The numbers are always joined with a semicolon.
func (r *Rules) HouseNumber(value string) string {
	numbers := SplitHouseNumbers(value)
	for i, nb := range numbers {
		numbers[i] = r.houseNumber(nb)
	}
	return strings.Join(numbers, ";")
}

func (r *Rules) houseNumber(nb string) string {
	number, suffix, ok := HouseNumberSuffix(nb)
	if !ok {
		return nb
	}
	canonical, ok := r.maps.HouseNumberSuffix(suffix)
	if !ok {
		return nb
	}
	return number + " " + canonical
}

// Phone reformats all semicolon separated phone numbers of value to the
// international French format, e.g. "01 23 45 67 89" -> "+33 1 23 45 67 89".
func Phone(value string) string {
	numbers := strings.Split(value, ";")
	for i, nb := range numbers {
		numbers[i] = phoneNumber(nb)
	}
	return strings.Join(numbers, ";")
}

// phone number groups after the country prefix
var phoneGroups = [][2]int{{0, 3}, {3, 4}, {4, 6}, {6, 8}, {8, 10}, {10, 12}}

func phoneNumber(nb string) string {
	clean := CleanPhone(nb)
	if strings.HasPrefix(clean, "0033") {
		clean = "+33" + clean[4:]
	} else if strings.HasPrefix(clean, "0") {
		clean = "+33" + clean[1:]
	}

	// special numbers like 3949
	if len(clean) == 4 {
		return clean
	}

	// digits beyond the last group are dropped
	parts := make([]string, len(phoneGroups))
	for i, g := range phoneGroups {
		parts[i] = substr(clean, g[0], g[1])
	}
	return strings.Join(parts, " ")
}

// CleanPhone removes all characters except ASCII letters, digits, '+' and
// ';' from nb.
func CleanPhone(nb string) string {
	b := strings.Builder{}
	for _, c := range nb {
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '+' || c == ';' {
			b.WriteRune(c)
		}
	}
	return b.String()
}

func substr(s string, start, end int) string {
	if start > len(s) {
		return ""
	}
	if end > len(s) {
		end = len(s)
	}
	return s[start:end]
}
