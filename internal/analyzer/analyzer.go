package analyzer

import (
	"context"

	"github.com/ludo-technologies/greenscan/domain"
	"github.com/ludo-technologies/greenscan/internal/config"
	"github.com/ludo-technologies/greenscan/internal/parser"
)

// Analyzer runs the full sustainability pipeline: parse, collect metrics,
// detect patterns and security findings, reduce to scores. Each Analyze
// call operates on its own source unit, so one Analyzer may be shared
// across goroutines.
type Analyzer struct {
	cfg      *config.Config
	metrics  *MetricsCollector
	patterns *RuleEngine
	security *RuleEngine
	reducer  *ScoreReducer
	carbon   *CarbonEstimator
}

// New creates an analyzer. A nil config uses the defaults.
func New(cfg *config.Config) *Analyzer {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Analyzer{
		cfg:      cfg,
		metrics:  NewMetricsCollector(),
		patterns: NewRuleEngine(),
		security: NewSecurityEngine(),
		reducer:  NewScoreReducer(cfg.Scoring),
		carbon:   NewCarbonEstimator(cfg.Carbon),
	}
}

// SetFaultHook forwards skipped-rule notifications from both engines to
// the hook, letting the host log rule faults without failing the run
func (a *Analyzer) SetFaultHook(hook FaultHook) {
	a.patterns.SetFaultHook(hook)
	a.security.SetFaultHook(hook)
}

// Analyze runs the pipeline over one source text. It never returns an
// error: a parse failure produces a result with ParseError set, empty
// metrics and issues, and every score at 0.
func (a *Analyzer) Analyze(ctx context.Context, source string) *domain.AnalysisResult {
	return a.AnalyzeFile(ctx, "<input>", source)
}

// AnalyzeFile is Analyze with an explicit file path recorded in the result
func (a *Analyzer) AnalyzeFile(ctx context.Context, filePath string, source string) *domain.AnalysisResult {
	result := &domain.AnalysisResult{
		FilePath: filePath,
		Issues:   []domain.Issue{},
	}

	p := parser.NewParser()
	defer p.Close()

	unit, err := p.ParseFile(ctx, filePath, []byte(source))
	if err != nil {
		result.ParseError = err.Error()
		return result
	}
	if unit.Failed() {
		result.ParseError = unit.ParseError
		return result
	}

	result.Metrics = a.metrics.Collect(unit)

	rc := NewRuleContext(unit, result.Metrics, &a.cfg.Scoring)
	patternIssues := a.patterns.Detect(rc)
	securityIssues := a.security.Detect(rc)

	result.Issues = append(result.Issues, patternIssues...)
	result.Issues = append(result.Issues, securityIssues...)
	result.Scores = a.reducer.Reduce(result.Metrics, patternIssues, securityIssues)
	result.Recommendations = RecommendAll(result.Issues)

	if a.cfg.Carbon.Enabled {
		result.Carbon = a.carbon.Estimate(result.Metrics, result.Issues)
	}

	return result
}
