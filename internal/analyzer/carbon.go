package analyzer

import (
	"fmt"

	"github.com/ludo-technologies/greenscan/domain"
	"github.com/ludo-technologies/greenscan/internal/config"
)

// microJoulesToKWh converts the modeled energy into kWh for the carbon
// figure. The model exaggerates scale so single-file results stay readable.
const microJoulesToKWh = 2.78e-13

// issueEnergyPenalties adds modeled energy per detected inefficiency
var issueEnergyPenalties = map[string]float64{
	"while-loop-as-counter": 5.0,
	"string-concat-in-loop": 3.0,
	"range-len":             2.0,
	"list-range":            1.0,
	"unused-import":         0.5,
}

// CarbonEstimator models the energy and carbon cost of running a unit
type CarbonEstimator struct {
	cfg config.CarbonConfig
}

// NewCarbonEstimator creates an estimator with the given model parameters
func NewCarbonEstimator(cfg config.CarbonConfig) *CarbonEstimator {
	return &CarbonEstimator{cfg: cfg}
}

// Estimate models one execution of the unit from its structural metrics,
// with per-issue surcharges for detected inefficiencies
func (e *CarbonEstimator) Estimate(metrics domain.MetricSet, issues []domain.Issue) *domain.CarbonReport {
	iterations := float64(e.cfg.AssumedIterations)

	energy := float64(metrics.LineCount) * e.cfg.BaseLineCost
	energy += float64(metrics.FunctionCount) * e.cfg.FunctionCallCost
	energy += float64(metrics.WhileLoopCount) * e.cfg.WhileIterationCost * iterations
	energy += float64(metrics.ForLoopCount) * e.cfg.ForIterationCost * iterations
	energy += float64(metrics.ImportCount) * e.cfg.ImportCost

	for _, issue := range issues {
		energy += issueEnergyPenalties[issue.RuleID]
	}

	co2 := energy * microJoulesToKWh * e.cfg.CarbonIntensity

	perLine := 0.0
	if metrics.LineCount > 0 {
		perLine = energy / float64(metrics.LineCount)
	}

	return &domain.CarbonReport{
		Estimate: domain.EnergyEstimate{
			EnergyMicroJoules: energy,
			CO2Grams:          co2,
			EnergyPerLine:     perLine,
		},
		Rating:      rateEnergyPerLine(perLine),
		Equivalents: carbonEquivalents(energy),
	}
}

// rateEnergyPerLine buckets the normalized energy into a letter grade
func rateEnergyPerLine(perLine float64) string {
	switch {
	case perLine <= 1.0:
		return "A++"
	case perLine <= 2.0:
		return "A+"
	case perLine <= 3.0:
		return "A"
	case perLine <= 5.0:
		return "B"
	case perLine <= 8.0:
		return "C"
	case perLine <= 12.0:
		return "D"
	case perLine <= 20.0:
		return "E"
	default:
		return "F"
	}
}

// carbonEquivalents renders the footprint in everyday terms, scaled to a
// million executions so the comparisons stay meaningful
func carbonEquivalents(energyMicroJoules float64) []string {
	perMillionJoules := energyMicroJoules // 1e6 runs x 1e-6 J per uJ

	// An LED bulb draws about 10 W
	ledSeconds := perMillionJoules / 10.0

	// A smartphone charge stores about 40 kJ
	phoneCharges := perMillionJoules / 40000.0

	return []string{
		fmt.Sprintf("%.1f seconds of LED light per million runs", ledSeconds),
		fmt.Sprintf("%.4f smartphone charges per million runs", phoneCharges),
	}
}
