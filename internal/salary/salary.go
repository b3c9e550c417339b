// Package salary parses free-text and structured compensation data into an
// annualized range with an explicit, auditable parse reason.
package salary

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/Ubaidofficial/six-figure-jobs-sub002/internal/model"
)

// Pay-interval annualization factors.
const (
	hoursPerYear  = 2080
	daysPerYear   = 260
	weeksPerYear  = 52
	monthsPerYear = 12
)

// Values below this are treated as noise, not salaries.
const noiseFloor = 1000

// annualCeiling is the maximum plausible annual salary per currency.
// Low-value currencies get much higher ceilings. Values above the ceiling
// are rejected with a reason, never silently capped. Empirically tuned.
var annualCeiling = map[string]float64{
	"USD": 2_000_000,
	"EUR": 2_000_000,
	"GBP": 2_000_000,
	"CHF": 2_500_000,
	"CAD": 3_000_000,
	"AUD": 3_000_000,
	"NZD": 3_000_000,
	"SGD": 3_000_000,
	"BRL": 10_000_000,
	"PLN": 8_000_000,
	"MXN": 40_000_000,
	"SEK": 20_000_000,
	"NOK": 20_000_000,
	"DKK": 15_000_000,
	"INR": 200_000_000,
	"JPY": 300_000_000,
}

const defaultCeiling = 2_000_000

var (
	currencyCodeRE = regexp.MustCompile(`\b(USD|EUR|GBP|CHF|CAD|AUD|NZD|SGD|BRL|PLN|MXN|SEK|NOK|DKK|INR|JPY)\b`)
	kSuffixRE      = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*k\b`)
	groupedRE      = regexp.MustCompile(`\d{1,3}(?:,\d{3})+(?:\.\d+)?|\d{4,}(?:\.\d+)?`)
	// "401(k)" reads as a 401k-dollar salary to the k-suffix rule.
	retirementRE = regexp.MustCompile(`(?i)401\s*\(?k\)?`)
)

var currencySymbols = map[string]string{
	"$":      "USD", // ambiguous, defaults to USD
	"€": "EUR",
	"£": "GBP",
	"₹": "INR",
	"¥": "JPY",
	"C$":     "CAD",
	"A$":     "AUD",
	"CA$":    "CAD",
	"AU$":    "AUD",
}

// detectCurrency returns the currency and a confidence level: explicit codes
// beat symbol inference, the dollar sign defaults to USD.
func detectCurrency(raw string) (currency, confidence string) {
	if m := currencyCodeRE.FindString(strings.ToUpper(raw)); m != "" {
		return m, "high"
	}
	// Multi-char symbols first so "C$" does not fall through to "$".
	for _, sym := range []string{"CA$", "AU$", "C$", "A$"} {
		if strings.Contains(raw, sym) {
			return currencySymbols[sym], "medium"
		}
	}
	for sym, code := range currencySymbols {
		if len(sym) > 1 {
			continue
		}
		if strings.Contains(raw, sym) {
			return code, "medium"
		}
	}
	return "", "low"
}

// detectInterval matches pay-period keywords; yearly is the default.
func detectInterval(raw string) string {
	lower := strings.ToLower(raw)
	switch {
	case strings.Contains(lower, "/hour") || strings.Contains(lower, "/hr") ||
		strings.Contains(lower, "per hour") || strings.Contains(lower, "hourly"):
		return "hour"
	case strings.Contains(lower, "/day") || strings.Contains(lower, "per day") ||
		strings.Contains(lower, "daily"):
		return "day"
	case strings.Contains(lower, "/week") || strings.Contains(lower, "per week") ||
		strings.Contains(lower, "weekly"):
		return "week"
	case strings.Contains(lower, "/month") || strings.Contains(lower, "/mo") ||
		strings.Contains(lower, "per month") || strings.Contains(lower, "monthly"):
		return "month"
	default:
		return "year"
	}
}

// extractValues pulls k-suffixed and grouped-digit number literals, dedupes
// them and discards sub-noise values. Returned sorted ascending.
func extractValues(raw string) []float64 {
	raw = retirementRE.ReplaceAllString(raw, " ")

	seen := make(map[float64]bool)
	var values []float64

	add := func(v float64) {
		if v < noiseFloor || seen[v] {
			return
		}
		seen[v] = true
		values = append(values, v)
	}

	for _, m := range kSuffixRE.FindAllStringSubmatch(raw, -1) {
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		add(v * 1000)
	}

	// Strip k-suffixed literals so "120k" is not re-read as "120".
	remainder := kSuffixRE.ReplaceAllString(raw, " ")
	for _, m := range groupedRE.FindAllString(remainder, -1) {
		v, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", ""), 64)
		if err != nil {
			continue
		}
		add(v)
	}

	sort.Float64s(values)
	return values
}

func annualFactor(interval string) float64 {
	switch interval {
	case "hour":
		return hoursPerYear
	case "day":
		return daysPerYear
	case "week":
		return weeksPerYear
	case "month":
		return monthsPerYear
	default:
		return 1
	}
}

func ceilingFor(currency string) float64 {
	if c, ok := annualCeiling[currency]; ok {
		return c
	}
	return defaultCeiling
}

// Parse classifies a free-text salary mention. Nothing is guessed: inputs
// with no salary-shaped numbers return a null result with a recorded reason.
func Parse(raw string) model.SalaryResult {
	if strings.TrimSpace(raw) == "" {
		return model.SalaryResult{Reason: model.SalaryBelowThreshold, Confidence: "none"}
	}

	currency, confidence := detectCurrency(raw)
	interval := detectInterval(raw)

	values := extractValues(raw)
	if len(values) == 0 {
		return model.SalaryResult{
			Currency:   currency,
			Interval:   interval,
			Reason:     model.SalaryBelowThreshold,
			Confidence: "none",
		}
	}

	min := values[0]
	max := values[len(values)-1]
	return finalize(min, max, interval, currency, confidence)
}

// FromRange normalizes structured min/max figures (e.g. an ATS compensation
// object) through the same ceiling and annualization rules as free text.
func FromRange(min, max float64, interval, currency string) model.SalaryResult {
	if interval == "" {
		interval = "year"
	}
	confidence := "high"
	if currency == "" {
		confidence = "low"
	}
	if max == 0 && min > 0 {
		max = min
	}
	if min == 0 && max == 0 {
		return model.SalaryResult{
			Currency:   currency,
			Interval:   interval,
			Reason:     model.SalaryBelowThreshold,
			Confidence: "none",
		}
	}
	if min > max {
		return model.SalaryResult{
			Currency:   currency,
			Interval:   interval,
			Reason:     model.SalaryBadRange,
			Confidence: "none",
		}
	}
	return finalize(min, max, interval, currency, confidence)
}

// finalize annualizes the range and applies the outlier policy: values over
// the currency ceiling are rejected unless dividing by 100 relocates the
// whole range into the plausible band, which indicates the known
// "compensation stored ×100" provider defect.
func finalize(min, max float64, interval, currency string, confidence string) model.SalaryResult {
	factor := annualFactor(interval)
	annualMin := min * factor
	annualMax := max * factor

	ceiling := ceilingFor(currency)

	if annualMax > ceiling {
		// Cents band: above the normal ceiling but within 100x of it, and
		// plausible again once divided.
		if annualMax <= ceiling*100 && annualMax/100 >= noiseFloor {
			min /= 100
			max /= 100
			annualMin /= 100
			annualMax /= 100
		} else {
			return model.SalaryResult{
				Currency:   currency,
				Interval:   interval,
				Reason:     model.SalaryTooHigh,
				Confidence: "none",
			}
		}
	}

	reason := model.SalaryOK
	if currency == "" {
		reason = model.SalaryUnknownCurrency
	}

	return model.SalaryResult{
		Min:        &min,
		Max:        &max,
		Currency:   currency,
		Interval:   interval,
		AnnualMin:  &annualMin,
		AnnualMax:  &annualMax,
		Confidence: confidence,
		Reason:     reason,
	}
}
