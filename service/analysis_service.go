package service

import (
	"context"
	goerrors "errors"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/ludo-technologies/greenscan/domain"
	"github.com/ludo-technologies/greenscan/internal/analyzer"
	"github.com/ludo-technologies/greenscan/internal/config"
	"github.com/ludo-technologies/greenscan/internal/version"
)

// AnalysisServiceImpl implements the AnalysisService interface
type AnalysisServiceImpl struct {
	config   *config.Config
	analyzer *analyzer.Analyzer
	progress domain.ProgressManager
}

// NewAnalysisService creates a new analysis service implementation
func NewAnalysisService(cfg *config.Config) *AnalysisServiceImpl {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	a := analyzer.New(cfg)
	a.SetFaultHook(func(ruleID string, recovered interface{}) {
		fmt.Fprintf(os.Stderr, "warning: rule %s skipped: %v\n", ruleID, recovered)
	})
	return &AnalysisServiceImpl{
		config:   cfg,
		analyzer: a,
	}
}

// NewAnalysisServiceWithProgress creates a new analysis service with progress reporting
func NewAnalysisServiceWithProgress(cfg *config.Config, pm domain.ProgressManager) *AnalysisServiceImpl {
	s := NewAnalysisService(cfg)
	s.progress = pm
	return s
}

// Analyze performs sustainability analysis on multiple files
func (s *AnalysisServiceImpl) Analyze(ctx context.Context, req domain.AnalyzeRequest) (*domain.AnalyzeResponse, error) {
	var results []domain.AnalysisResult
	var warnings []string
	var errors []string

	if len(req.Paths) == 0 {
		return nil, domain.NewInvalidInputError("no files to analyze", nil)
	}

	// One task per file; slots are index-addressed so parallel execution
	// cannot reorder results
	slots := make([]*domain.AnalysisResult, len(req.Paths))
	tasks := make([]domain.ExecutableTask, len(req.Paths))
	for i, filePath := range req.Paths {
		tasks[i] = &fileAnalysisTask{
			filePath: filePath,
			analyzer: s.analyzer,
			slot:     &slots[i],
		}
	}

	executor := NewParallelExecutorWithProgress(&s.config.Performance, s.progress)
	if err := executor.Execute(ctx, tasks); err != nil {
		var aggregated *AggregatedError
		if goerrors.As(err, &aggregated) {
			for _, taskErr := range aggregated.Errors {
				errors = append(errors, taskErr.Error())
			}
		} else {
			return nil, fmt.Errorf("analysis cancelled: %w", err)
		}
	}

	for _, result := range slots {
		if result == nil {
			continue
		}
		if result.ParseError != "" {
			warnings = append(warnings, fmt.Sprintf("[%s] %s", result.FilePath, result.ParseError))
		}
		results = append(results, *result)
	}

	if len(results) == 0 {
		return nil, domain.NewAnalysisError("no files could be analyzed", nil)
	}

	filtered := s.filterIssues(results, req.MinSeverity)
	sorted := s.sortResults(filtered, req.SortBy)
	summary := s.generateSummary(sorted)

	return &domain.AnalyzeResponse{
		Files:       sorted,
		Summary:     summary,
		Warnings:    warnings,
		Errors:      errors,
		GeneratedAt: time.Now().Format(time.RFC3339),
		Version:     version.Version,
		Config:      s.buildConfigForResponse(req),
	}, nil
}

// AnalyzeSource analyzes a single Python source text
func (s *AnalysisServiceImpl) AnalyzeSource(ctx context.Context, filePath string, source string) (*domain.AnalysisResult, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("analysis cancelled: %w", ctx.Err())
	default:
	}
	return s.analyzer.AnalyzeFile(ctx, filePath, source), nil
}

// filterIssues drops issues below the minimum severity. Scores are left
// untouched: filtering is a display concern, not a scoring one.
func (s *AnalysisServiceImpl) filterIssues(results []domain.AnalysisResult, minSeverity domain.Severity) []domain.AnalysisResult {
	minRank := minSeverity.Rank()
	if minRank <= 1 {
		return results
	}

	filtered := make([]domain.AnalysisResult, len(results))
	copy(filtered, results)
	for i := range filtered {
		var kept []domain.Issue
		for _, issue := range filtered[i].Issues {
			if issue.Severity.Rank() >= minRank {
				kept = append(kept, issue)
			}
		}
		filtered[i].Issues = kept
	}
	return filtered
}

// sortResults sorts file results based on the specified criteria
func (s *AnalysisServiceImpl) sortResults(results []domain.AnalysisResult, sortBy domain.SortCriteria) []domain.AnalysisResult {
	sorted := make([]domain.AnalysisResult, len(results))
	copy(sorted, results)

	switch sortBy {
	case domain.SortByName:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].FilePath < sorted[j].FilePath
		})
	case domain.SortByIssues:
		sort.SliceStable(sorted, func(i, j int) bool {
			return len(sorted[i].Issues) > len(sorted[j].Issues)
		})
	case domain.SortBySeverity:
		sort.SliceStable(sorted, func(i, j int) bool {
			return maxSeverityRank(sorted[i].Issues) > maxSeverityRank(sorted[j].Issues)
		})
	default:
		// Default: worst green score first
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Scores.GreenScore < sorted[j].Scores.GreenScore
		})
	}

	return sorted
}

func maxSeverityRank(issues []domain.Issue) int {
	max := 0
	for _, issue := range issues {
		if r := issue.Severity.Rank(); r > max {
			max = r
		}
	}
	return max
}

// generateSummary generates aggregate statistics over the file results
func (s *AnalysisServiceImpl) generateSummary(results []domain.AnalysisResult) domain.AnalyzeSummary {
	summary := domain.AnalyzeSummary{
		IssuesByCategory: map[string]int{},
		IssuesBySeverity: map[string]int{},
	}

	total := 0.0
	analyzed := 0
	for _, result := range results {
		if result.ParseError != "" {
			summary.FilesFailed++
			continue
		}
		analyzed++
		total += result.Scores.GreenScore

		if analyzed == 1 {
			summary.BestGreenScore = result.Scores.GreenScore
			summary.WorstGreenScore = result.Scores.GreenScore
		}
		if result.Scores.GreenScore > summary.BestGreenScore {
			summary.BestGreenScore = result.Scores.GreenScore
		}
		if result.Scores.GreenScore < summary.WorstGreenScore {
			summary.WorstGreenScore = result.Scores.GreenScore
		}

		switch result.Scores.RiskLevel() {
		case domain.RiskLevelHigh:
			summary.HighRiskFiles++
		case domain.RiskLevelMedium:
			summary.MediumRiskFiles++
		case domain.RiskLevelLow:
			summary.LowRiskFiles++
		}

		for _, issue := range result.Issues {
			summary.TotalIssues++
			summary.IssuesByCategory[string(issue.Category)]++
			summary.IssuesBySeverity[string(issue.Severity)]++
		}
	}

	summary.FilesAnalyzed = analyzed
	if analyzed > 0 {
		summary.AverageGreenScore = total / float64(analyzed)
	}

	return summary
}

// fileAnalysisTask analyzes one file and stores the result in its slot
type fileAnalysisTask struct {
	filePath string
	analyzer *analyzer.Analyzer
	slot     **domain.AnalysisResult
}

// Name identifies the task in error reports
func (t *fileAnalysisTask) Name() string {
	return t.filePath
}

// Execute reads and analyzes the file, storing the result in the slot
func (t *fileAnalysisTask) Execute(ctx context.Context) error {
	content, err := os.ReadFile(t.filePath)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}
	*t.slot = t.analyzer.AnalyzeFile(ctx, t.filePath, string(content))
	return nil
}

// buildConfigForResponse builds the configuration section for the response
func (s *AnalysisServiceImpl) buildConfigForResponse(req domain.AnalyzeRequest) map[string]interface{} {
	return map[string]interface{}{
		"nesting_threshold": s.config.Scoring.NestingThreshold,
		"comment_target":    s.config.Scoring.CommentRatioTarget,
		"carbon_enabled":    s.config.Carbon.Enabled,
		"sort_by":           req.SortBy,
		"min_severity":      req.MinSeverity,
	}
}
