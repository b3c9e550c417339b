package salary

import (
	"testing"

	"github.com/Ubaidofficial/six-figure-jobs-sub002/internal/model"
)

func TestParse_USDRange(t *testing.T) {
	got := Parse("$120,000 - $150,000")
	if got.Reason != model.SalaryOK {
		t.Fatalf("expected ok, got %s", got.Reason)
	}
	if got.Min == nil || *got.Min != 120000 {
		t.Errorf("expected min 120000, got %v", got.Min)
	}
	if got.Max == nil || *got.Max != 150000 {
		t.Errorf("expected max 150000, got %v", got.Max)
	}
	if got.Currency != "USD" {
		t.Errorf("expected USD, got %q", got.Currency)
	}
	if got.Interval != "year" {
		t.Errorf("expected year interval, got %q", got.Interval)
	}
	if got.AnnualMin == nil || *got.AnnualMin != 120000 {
		t.Errorf("expected annual min 120000, got %v", got.AnnualMin)
	}
}

func TestParse_KSuffix(t *testing.T) {
	got := Parse("$120k – $150k USD")
	if got.Min == nil || *got.Min != 120000 || got.Max == nil || *got.Max != 150000 {
		t.Fatalf("expected 120000-150000, got %v-%v", got.Min, got.Max)
	}
	if got.Confidence != "high" {
		t.Errorf("explicit code should be high confidence, got %q", got.Confidence)
	}
}

func TestParse_HourlyAnnualized(t *testing.T) {
	// Hourly figures below the noise floor are still salaries once
	// annualized, so callers pass them through FromRange; free text below
	// the floor is discarded.
	got := FromRange(60, 80, "hour", "USD")
	if got.AnnualMin == nil || *got.AnnualMin != 60*2080 {
		t.Errorf("expected annual min %d, got %v", 60*2080, got.AnnualMin)
	}
	if got.AnnualMax == nil || *got.AnnualMax != 80*2080 {
		t.Errorf("expected annual max %d, got %v", 80*2080, got.AnnualMax)
	}
}

func TestParse_MonthlyKeyword(t *testing.T) {
	got := Parse("€5,000 per month")
	if got.Interval != "month" {
		t.Fatalf("expected month, got %q", got.Interval)
	}
	if got.Currency != "EUR" {
		t.Errorf("expected EUR, got %q", got.Currency)
	}
	if got.AnnualMin == nil || *got.AnnualMin != 60000 {
		t.Errorf("expected annual 60000, got %v", got.AnnualMin)
	}
}

func TestParse_NoiseDiscarded(t *testing.T) {
	got := Parse("401k match and $500 signing bonus")
	if got.Reason != model.SalaryBelowThreshold {
		t.Errorf("expected below_threshold, got %s", got.Reason)
	}
	if got.Min != nil || got.Max != nil {
		t.Errorf("expected null values, got %v-%v", got.Min, got.Max)
	}
}

func TestParse_UnknownCurrency(t *testing.T) {
	got := Parse("120,000 - 150,000")
	if got.Reason != model.SalaryUnknownCurrency {
		t.Fatalf("expected unknown_currency, got %s", got.Reason)
	}
	if got.Min == nil || *got.Min != 120000 {
		t.Errorf("values should still be extracted, got %v", got.Min)
	}
}

func TestFromRange_CentsCorrection(t *testing.T) {
	// 100x the plausible band: dividing by 100 relocates it, so the
	// provider unit bug is corrected instead of rejected.
	got := FromRange(15_000_000, 19_000_000, "year", "USD")
	if got.Reason != model.SalaryOK {
		t.Fatalf("expected ok after cents correction, got %s", got.Reason)
	}
	if got.AnnualMin == nil || *got.AnnualMin != 150000 {
		t.Errorf("expected corrected annual min 150000, got %v", got.AnnualMin)
	}
	if got.AnnualMax == nil || *got.AnnualMax != 190000 {
		t.Errorf("expected corrected annual max 190000, got %v", got.AnnualMax)
	}
}

func TestFromRange_TooHigh(t *testing.T) {
	// Beyond even the cents band: reject with a reason, never cap.
	got := FromRange(900_000_000, 950_000_000, "year", "USD")
	if got.Reason != model.SalaryTooHigh {
		t.Fatalf("expected too_high, got %s", got.Reason)
	}
	if got.AnnualMax != nil {
		t.Errorf("rejected values must be null, got %v", got.AnnualMax)
	}
}

func TestFromRange_BadRange(t *testing.T) {
	got := FromRange(150000, 120000, "year", "USD")
	if got.Reason != model.SalaryBadRange {
		t.Fatalf("expected bad_range, got %s", got.Reason)
	}
}

func TestFromRange_SingleValue(t *testing.T) {
	got := FromRange(130000, 0, "year", "USD")
	if got.Reason != model.SalaryOK {
		t.Fatalf("expected ok, got %s", got.Reason)
	}
	if got.Max == nil || *got.Max != 130000 {
		t.Errorf("expected max backfilled from min, got %v", got.Max)
	}
}

func TestParse_HighCeilingCurrency(t *testing.T) {
	// INR ceilings are far higher; a figure too_high for USD is plausible.
	got := Parse("INR 5,000,000 - 7,000,000")
	if got.Reason != model.SalaryOK {
		t.Fatalf("expected ok for INR, got %s", got.Reason)
	}
}

func TestParse_Empty(t *testing.T) {
	got := Parse("")
	if got.Reason != model.SalaryBelowThreshold || got.Min != nil {
		t.Errorf("expected null below_threshold result, got %+v", got)
	}
}
