package analyzer

import (
	"math"
	"testing"

	"github.com/ludo-technologies/greenscan/domain"
	"github.com/ludo-technologies/greenscan/internal/config"
)

func defaultEstimator() *CarbonEstimator {
	return NewCarbonEstimator(config.DefaultConfig().Carbon)
}

func TestEstimateEmptyUnit(t *testing.T) {
	report := defaultEstimator().Estimate(domain.MetricSet{}, nil)

	if report.Estimate.EnergyMicroJoules != 0 {
		t.Errorf("Expected zero energy, got %f", report.Estimate.EnergyMicroJoules)
	}
	if report.Estimate.CO2Grams != 0 {
		t.Errorf("Expected zero CO2, got %f", report.Estimate.CO2Grams)
	}
	if report.Rating != "A++" {
		t.Errorf("Expected A++ rating, got %s", report.Rating)
	}
}

func TestEstimateStructuralCosts(t *testing.T) {
	metrics := domain.MetricSet{
		LineCount:      10,
		FunctionCount:  2,
		WhileLoopCount: 1,
		ForLoopCount:   2,
		ImportCount:    3,
	}

	report := defaultEstimator().Estimate(metrics, nil)

	// 10*0.1 + 2*0.5 + 1*2.0*10 + 2*1.5*10 + 3*0.3 = 52.9
	if math.Abs(report.Estimate.EnergyMicroJoules-52.9) > 1e-9 {
		t.Errorf("Energy = %f, expected 52.9", report.Estimate.EnergyMicroJoules)
	}
	if report.Estimate.CO2Grams <= 0 {
		t.Errorf("Expected positive CO2, got %f", report.Estimate.CO2Grams)
	}
	if math.Abs(report.Estimate.EnergyPerLine-5.29) > 1e-9 {
		t.Errorf("EnergyPerLine = %f, expected 5.29", report.Estimate.EnergyPerLine)
	}
	if report.Rating != "C" {
		t.Errorf("Expected C rating for 5.29 uJ/line, got %s", report.Rating)
	}
}

func TestIssueSurcharges(t *testing.T) {
	metrics := domain.MetricSet{LineCount: 10}
	issues := []domain.Issue{
		{RuleID: "while-loop-as-counter"},
		{RuleID: "string-concat-in-loop"},
		{RuleID: "not-an-energy-rule"},
	}

	clean := defaultEstimator().Estimate(metrics, nil)
	dirty := defaultEstimator().Estimate(metrics, issues)

	diff := dirty.Estimate.EnergyMicroJoules - clean.Estimate.EnergyMicroJoules
	if math.Abs(diff-8.0) > 1e-9 {
		t.Errorf("Issue surcharge = %f, expected 8.0", diff)
	}
}

func TestRatingBands(t *testing.T) {
	tests := []struct {
		perLine  float64
		expected string
	}{
		{0.5, "A++"},
		{1.5, "A+"},
		{2.5, "A"},
		{4.0, "B"},
		{7.0, "C"},
		{10.0, "D"},
		{15.0, "E"},
		{25.0, "F"},
	}

	for _, tc := range tests {
		if got := rateEnergyPerLine(tc.perLine); got != tc.expected {
			t.Errorf("rateEnergyPerLine(%f) = %s, expected %s", tc.perLine, got, tc.expected)
		}
	}
}

func TestEquivalentsArePresent(t *testing.T) {
	metrics := domain.MetricSet{LineCount: 100, ForLoopCount: 5}

	report := defaultEstimator().Estimate(metrics, nil)

	if len(report.Equivalents) != 2 {
		t.Fatalf("Expected 2 equivalents, got %d", len(report.Equivalents))
	}
	for _, eq := range report.Equivalents {
		if eq == "" {
			t.Error("Expected non-empty equivalent")
		}
	}
}
