// Package location turns free-text location strings into structured,
// queryable location data. All matching happens on a lower-cased
// "comparison form" so the raw display string is never mutated for output.
package location

import (
	"regexp"
	"strings"

	"github.com/Ubaidofficial/six-figure-jobs-sub002/internal/model"
)

var (
	whitespaceRE = regexp.MustCompile(`\s+`)
	dashRE       = regexp.MustCompile("[–—]") // en/em dash
	// Everything outside letters, digits and the separator set is noise.
	// Separators are preserved verbatim so boundary matching works.
	noiseRE = regexp.MustCompile(`[^a-z0-9,;|/ ]`)
)

// NormalizeRaw produces the comparison form of a raw location string:
// lower-cased, whitespace collapsed, en/em dashes folded to hyphen, bullet
// characters treated as list separators equivalent to a pipe, and all other
// characters outside letters/digits/`, ; | /` replaced with spaces.
func NormalizeRaw(raw string) string {
	s := strings.ToLower(raw)
	s = dashRE.ReplaceAllString(s, "-")
	s = strings.ReplaceAll(s, "•", "|")
	s = noiseRE.ReplaceAllString(s, " ")
	s = whitespaceRE.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Kind token tables, matched with precedence hybrid > onsite > remote.
var (
	hybridTokens = []string{"hybrid", "remote and onsite", "onsite and remote", "remote and on site", "on site and remote"}
	onsiteTokens = []string{"onsite", "on site", "in office", "in person"}
	remoteTokens = []string{"remote", "telecommute", "work from home", "wfh", "anywhere", "global"}
)

var kindRegexps = map[model.LocationKind][]*regexp.Regexp{
	model.LocationHybrid: compileTokens(hybridTokens),
	model.LocationOnsite: compileTokens(onsiteTokens),
	model.LocationRemote: compileTokens(remoteTokens),
}

// compileTokens builds boundary-aware matchers: a token counts only when
// delimited by start/end-of-string, a separator, or whitespace.
func compileTokens(tokens []string) []*regexp.Regexp {
	res := make([]*regexp.Regexp, 0, len(tokens))
	for _, t := range tokens {
		res = append(res, regexp.MustCompile(`(?:^|[,;|/\s])`+regexp.QuoteMeta(t)+`(?:[,;|/\s]|$)`))
	}
	return res
}

// classifyKind matches the comparison form against the kind token tables.
func classifyKind(cmp string) model.LocationKind {
	for _, kind := range []model.LocationKind{model.LocationHybrid, model.LocationOnsite, model.LocationRemote} {
		for _, re := range kindRegexps[kind] {
			if re.MatchString(cmp) {
				return kind
			}
		}
	}
	return model.LocationUnknown
}

var multiLocationPhrases = []string{"multiple locations", "various locations", "any of"}

// HasMultiLocationSignals reports whether the string names more than one
// location: a known multi-location phrase, a pipe/semicolon/slash separator,
// or four or more comma-separated segments. The comma threshold deliberately
// lets the common "City, Region, Country" triple through.
func HasMultiLocationSignals(raw string) bool {
	cmp := NormalizeRaw(raw)
	for _, p := range multiLocationPhrases {
		if strings.Contains(cmp, p) {
			return true
		}
	}
	if strings.ContainsAny(cmp, "|;/") {
		return true
	}
	return strings.Count(cmp, ",") >= 3
}

// trailing remote/hybrid/onsite qualifiers, parenthetical or suffix form
var (
	parenQualifierRE  = regexp.MustCompile(`(?i)\s*\((?:remote|hybrid|onsite|on-?site|work from home|wfh)\)\s*$`)
	suffixQualifierRE = regexp.MustCompile(`(?i)[\s,-]+(?:remote|hybrid|onsite|on-?site)\s*$`)
	prefixQualifierRE = regexp.MustCompile(`(?i)^(?:remote|hybrid|onsite|on-?site)[\s,-]+`)
)

// Normalize classifies a raw free-text location string. Empty or
// unparseable input returns a fully-null result rather than a guess.
func Normalize(raw string) model.NormalizedLocation {
	out := model.NormalizedLocation{Kind: model.LocationUnknown}

	cmp := NormalizeRaw(raw)
	if cmp == "" {
		return out
	}

	out.Kind = classifyKind(cmp)
	out.IsRemote = out.Kind == model.LocationRemote
	out.MultiLocation = HasMultiLocationSignals(raw)

	if out.MultiLocation {
		// Ambiguous which segment is which; extraction would guess.
		return out
	}

	display := whitespaceRE.ReplaceAllString(dashRE.ReplaceAllString(raw, "-"), " ")
	display = strings.TrimSpace(display)
	display = parenQualifierRE.ReplaceAllString(display, "")
	display = suffixQualifierRE.ReplaceAllString(display, "")
	display = prefixQualifierRE.ReplaceAllString(display, "")

	segments := splitSegments(display)
	if len(segments) == 0 {
		return out
	}

	assignSegments(&out, segments)

	if out.IsRemote {
		if out.Country != "" {
			out.RemoteRegion = out.Country
		} else if label, ok := regionalLabels[strings.ToLower(segments[len(segments)-1])]; ok {
			out.RemoteRegion = label
		}
	}

	return out
}

func splitSegments(display string) []string {
	parts := strings.Split(display, ",")
	segments := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		// Drop segments that are purely a kind qualifier ("Remote, US").
		if classifyKind(NormalizeRaw(p)) != model.LocationUnknown && len(strings.Fields(p)) == 1 {
			continue
		}
		segments = append(segments, p)
	}
	return segments
}

// assignSegments maps 1–3 comma segments onto city/region/country using the
// position of the recognized country token. An unrecognized sole segment is
// treated as a bare city name.
func assignSegments(out *model.NormalizedLocation, segments []string) {
	last := segments[len(segments)-1]

	switch len(segments) {
	case 1:
		if code, ok := lookupCountry(last); ok {
			out.Country = code
			return
		}
		if _, ok := regionalLabels[strings.ToLower(last)]; ok {
			// EMEA/APAC-style labels are regions, never countries or cities.
			return
		}
		out.City = last
	case 2:
		if code, ok := lookupCountry(last); ok {
			out.City = segments[0]
			out.Country = code
			return
		}
		if code, ok := lookupCountry(segments[0]); ok {
			out.Country = code
			out.City = segments[1]
			return
		}
		out.City = segments[0]
		out.Region = segments[1]
	default:
		out.City = segments[0]
		out.Region = segments[1]
		if code, ok := lookupCountry(last); ok {
			out.Country = code
		}
	}
}
