package analyzer

import (
	"math"

	"github.com/ludo-technologies/greenscan/domain"
	"github.com/ludo-technologies/greenscan/internal/config"
)

// ScoreReducer turns metrics and issues into the weighted score breakdown
type ScoreReducer struct {
	cfg config.ScoringConfig
}

// NewScoreReducer creates a reducer with the given scoring parameters
func NewScoreReducer(cfg config.ScoringConfig) *ScoreReducer {
	return &ScoreReducer{cfg: cfg}
}

// Reduce computes the four sub-scores and the weighted green score. Each
// sub-score starts at 100, accumulates its deductions and bonuses, and is
// clamped to [0, 100] once at the end. The security pool only sees
// security issues and uses its own steeper penalty scale.
func (r *ScoreReducer) Reduce(metrics domain.MetricSet, issues []domain.Issue, securityIssues []domain.Issue) domain.ScoreBreakdown {
	efficiency := 100.0
	resource := 100.0
	quality := 100.0
	security := 100.0

	for _, issue := range issues {
		penalty := r.cfg.GeneralPenalties.For(string(issue.Severity))
		switch issue.Category {
		case domain.CategoryEfficiency:
			efficiency -= penalty
		case domain.CategoryResource:
			resource -= penalty
		case domain.CategoryQuality:
			quality -= penalty
		}
	}

	// Manual while iteration beyond the first loop suggests work a for
	// loop or comprehension would do cheaper
	if metrics.WhileLoopCount > 1 {
		efficiency -= float64(metrics.WhileLoopCount-1) * r.cfg.WhileLoopPenalty
	}

	// Nesting hits the resource pool as well as the quality rule: deep
	// structures hold more live state per iteration
	if metrics.MaxNestingDepth > r.cfg.NestingThreshold {
		resource -= float64(metrics.MaxNestingDepth-r.cfg.NestingThreshold) * r.cfg.NestingPenalty
	}

	if metrics.CommentRatio >= r.cfg.CommentRatioTarget {
		quality += r.cfg.CommentBonus
	}
	if metrics.FunctionCount == 0 && metrics.LineCount > r.cfg.FlatScriptLineLimit {
		quality -= r.cfg.FlatScriptPenalty
	}

	for _, issue := range securityIssues {
		security -= r.cfg.SecurityPenalties.For(string(issue.Severity))
	}

	breakdown := domain.ScoreBreakdown{
		Efficiency:         clampScore(efficiency),
		ResourceManagement: clampScore(resource),
		Quality:            clampScore(quality),
		Security:           clampScore(security),
	}

	w := r.cfg.Weights
	green := w.Efficiency*breakdown.Efficiency +
		w.ResourceManagement*breakdown.ResourceManagement +
		w.Quality*breakdown.Quality +
		w.Security*breakdown.Security
	breakdown.GreenScore = clampScore(math.Round(green))

	return breakdown
}

// clampScore bounds a score to [0, 100]
func clampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
