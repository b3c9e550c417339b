// Package company sanitizes raw board-supplied company strings and resolves
// them into canonical Company records.
package company

import (
	"regexp"
	"strings"
)

// boardNames are aggregator/board identities that upstream sources sometimes
// report as the employer. Exact matches are rejected outright, as are bare
// location qualifiers that boards emit in the company field.
var boardNames = map[string]bool{
	"linkedin": true, "indeed": true, "glassdoor": true, "ziprecruiter": true,
	"remoteok": true, "remote ok": true, "we work remotely": true,
	"weworkremotely": true, "wellfound": true, "angellist": true,
	"hacker news": true, "monster": true, "dice": true, "simplyhired": true,
	"lever": true, "greenhouse": true, "ashby": true, "workday": true,
	"remote": true, "hybrid": true, "onsite": true, "anywhere": true,
	"worldwide": true, "multiple locations": true, "confidential": true,
	"n/a": true, "unknown": true,
}

// titleVocabulary flags strings that look like job titles, not employers.
var titleVocabulary = map[string]bool{
	"engineer": true, "developer": true, "manager": true, "director": true,
	"designer": true, "analyst": true, "scientist": true, "recruiter": true,
	"sales": true, "marketing": true, "intern": true, "architect": true,
	"consultant": true, "specialist": true, "coordinator": true,
	"accountant": true, "representative": true, "technician": true,
	"administrator": true, "senior": true, "junior": true, "writer": true,
}

var titlePhrases = []string{"head of", "vp of", "product owner"}

// legalSuffixes mark a legal entity; their presence overrides the job-title
// vocabulary guard ("Sales Inc" is a company, "Sales Manager" is not).
var legalSuffixes = []string{
	"inc", "inc.", "llc", "ltd", "ltd.", "limited", "gmbh", "corp", "corp.",
	"co", "co.", "plc", "llp", "pty", "ag", "sa", "s.a.", "bv", "b.v.",
	"ab", "oy", "aps", "as", "kk", "srl", "sarl",
}

var (
	atSuffixRE        = regexp.MustCompile(`(?i)^(.+?)\s+at\s+.+$`)
	qualifierSuffixRE = regexp.MustCompile(`(?i)\s*[-–—]\s*(remote|hybrid|onsite|on-?site|full[\s-]?time|part[\s-]?time|contract|contractor|internship|freelance|temporary)\s*$`)
	parentheticalRE   = regexp.MustCompile(`\s*\([^)]*\)\s*$`)
	currencyShapeRE   = regexp.MustCompile(`(?i)[$\x{20ac}\x{00a3}\x{20b9}\x{00a5}]|\d+(\.\d+)?\s*k\b|\d{1,3}(,\d{3})+|\b(usd|eur|gbp|cad|aud|inr)\b`)
	letterRE          = regexp.MustCompile(`[a-zA-Z]`)
)

const maxNameLength = 80

// Clean runs the sanitization pipeline over a raw company string. It returns
// the cleaned name, or ok=false when the string cannot be a company name.
// Each step only runs if the previous one did not already reject.
func Clean(raw string) (string, bool) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", false
	}

	if boardNames[strings.ToLower(name)] {
		return "", false
	}

	// Currency/salary-shaped strings with no residual letters are salary
	// captions that leaked into the company field.
	if currencyShapeRE.MatchString(name) {
		stripped := currencyShapeRE.ReplaceAllString(name, "")
		stripped = strings.Map(func(r rune) rune {
			if r >= '0' && r <= '9' {
				return -1
			}
			return r
		}, stripped)
		if !letterRE.MatchString(stripped) {
			return "", false
		}
	}

	if m := atSuffixRE.FindStringSubmatch(name); m != nil {
		name = strings.TrimSpace(m[1])
	}
	if m := qualifierSuffixRE.FindStringSubmatchIndex(name); m != nil {
		name = strings.TrimSpace(name[:m[0]])
	}

	name = strings.TrimSpace(parentheticalRE.ReplaceAllString(name, ""))

	if looksLikeJobTitle(name) && !hasLegalSuffix(name) {
		return "", false
	}

	if len(name) < 2 || !letterRE.MatchString(name) {
		return "", false
	}
	if len(name) > maxNameLength {
		head, _, found := strings.Cut(name, " - ")
		head = strings.TrimSpace(head)
		if !found || len(head) < 2 || len(head) > maxNameLength {
			return "", false
		}
		name = head
	}

	return name, true
}

func looksLikeJobTitle(name string) bool {
	lower := strings.ToLower(name)
	for _, word := range strings.Fields(lower) {
		if titleVocabulary[strings.Trim(word, ",.")] {
			return true
		}
	}
	for _, p := range titlePhrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

func hasLegalSuffix(name string) bool {
	fields := strings.Fields(strings.ToLower(name))
	if len(fields) == 0 {
		return false
	}
	last := strings.Trim(fields[len(fields)-1], ",")
	for _, s := range legalSuffixes {
		if last == s {
			return true
		}
	}
	return false
}
