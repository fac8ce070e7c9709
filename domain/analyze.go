package domain

import (
	"context"
	"io"
)

// OutputFormat represents the supported output formats
type OutputFormat string

const (
	OutputFormatText OutputFormat = "text"
	OutputFormatJSON OutputFormat = "json"
	OutputFormatYAML OutputFormat = "yaml"
	OutputFormatCSV  OutputFormat = "csv"
	OutputFormatHTML OutputFormat = "html"
)

// SortCriteria represents the criteria for sorting results
type SortCriteria string

const (
	SortByScore    SortCriteria = "score"
	SortByName     SortCriteria = "name"
	SortByIssues   SortCriteria = "issues"
	SortBySeverity SortCriteria = "severity"
)

// IssueCategory classifies an issue into one of the four score pools
type IssueCategory string

const (
	CategoryEfficiency IssueCategory = "efficiency"
	CategoryResource   IssueCategory = "resource"
	CategoryQuality    IssueCategory = "quality"
	CategorySecurity   IssueCategory = "security"
)

// Severity represents how serious an issue is
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Rank returns an ordering value for severity comparison, higher is worse
func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	case SeverityCritical:
		return 4
	default:
		return 0
	}
}

// RiskLevel represents the sustainability risk of a file
type RiskLevel string

const (
	RiskLevelLow    RiskLevel = "low"
	RiskLevelMedium RiskLevel = "medium"
	RiskLevelHigh   RiskLevel = "high"
)

// Issue represents a single detected pattern occurrence
type Issue struct {
	// RuleID is the stable identifier of the rule that fired
	RuleID string `json:"rule_id" yaml:"rule_id"`

	// Category determines which score pool the issue penalizes
	Category IssueCategory `json:"category" yaml:"category"`

	// Severity of the occurrence
	Severity Severity `json:"severity" yaml:"severity"`

	// Line is the 1-based source line, 0 for file-level findings
	Line int `json:"line" yaml:"line"`

	// Message is a human-readable description of the finding
	Message string `json:"message" yaml:"message"`
}

// Recommendation is actionable guidance attached to an issue
type Recommendation struct {
	RuleID     string `json:"rule_id" yaml:"rule_id"`
	Summary    string `json:"summary" yaml:"summary"`
	Suggestion string `json:"suggestion" yaml:"suggestion"`
}

// MetricSet holds the structural metrics collected from one source unit
type MetricSet struct {
	FunctionCount   int     `json:"function_count" yaml:"function_count"`
	ClassCount      int     `json:"class_count" yaml:"class_count"`
	ImportCount     int     `json:"import_count" yaml:"import_count"`
	LoopCount       int     `json:"loop_count" yaml:"loop_count"`
	WhileLoopCount  int     `json:"while_loop_count" yaml:"while_loop_count"`
	ForLoopCount    int     `json:"for_loop_count" yaml:"for_loop_count"`
	MaxNestingDepth int     `json:"max_nesting_depth" yaml:"max_nesting_depth"`
	LineCount       int     `json:"line_count" yaml:"line_count"`
	CommentRatio    float64 `json:"comment_ratio" yaml:"comment_ratio"`
}

// ScoreBreakdown holds the four category scores and the weighted total.
// All values are in [0, 100].
type ScoreBreakdown struct {
	Efficiency         float64 `json:"efficiency" yaml:"efficiency"`
	ResourceManagement float64 `json:"resource_management" yaml:"resource_management"`
	Quality            float64 `json:"quality" yaml:"quality"`
	Security           float64 `json:"security" yaml:"security"`
	GreenScore         float64 `json:"green_score" yaml:"green_score"`
}

// RiskLevel buckets the green score for summary reporting
func (s ScoreBreakdown) RiskLevel() RiskLevel {
	switch {
	case s.GreenScore >= 70:
		return RiskLevelLow
	case s.GreenScore >= 40:
		return RiskLevelMedium
	default:
		return RiskLevelHigh
	}
}

// EnergyEstimate is the modeled energy cost of running a source unit
type EnergyEstimate struct {
	// EnergyMicroJoules is the modeled energy per execution
	EnergyMicroJoules float64 `json:"energy_micro_joules" yaml:"energy_micro_joules"`

	// CO2Grams is the modeled carbon footprint per execution
	CO2Grams float64 `json:"co2_grams" yaml:"co2_grams"`

	// EnergyPerLine is the energy normalized by line count
	EnergyPerLine float64 `json:"energy_per_line" yaml:"energy_per_line"`
}

// CarbonReport carries the energy model output with a letter rating
type CarbonReport struct {
	Estimate EnergyEstimate `json:"estimate" yaml:"estimate"`

	// Rating is a letter grade from A++ down to F
	Rating string `json:"rating" yaml:"rating"`

	// Equivalents express the footprint in everyday terms
	Equivalents []string `json:"equivalents,omitempty" yaml:"equivalents,omitempty"`
}

// AnalysisResult is the complete analysis output for one source unit.
// When ParseError is non-empty the metrics are zeroed, the issue list is
// empty and every score is 0.
type AnalysisResult struct {
	FilePath        string           `json:"file_path" yaml:"file_path"`
	Metrics         MetricSet        `json:"metrics" yaml:"metrics"`
	Issues          []Issue          `json:"issues" yaml:"issues"`
	Scores          ScoreBreakdown   `json:"scores" yaml:"scores"`
	Recommendations []Recommendation `json:"recommendations,omitempty" yaml:"recommendations,omitempty"`
	Carbon          *CarbonReport    `json:"carbon,omitempty" yaml:"carbon,omitempty"`
	ParseError      string           `json:"parse_error,omitempty" yaml:"parse_error,omitempty"`
}

// AnalyzeRequest represents a request for sustainability analysis
type AnalyzeRequest struct {
	// Input files or directories to analyze
	Paths []string

	// Output configuration
	OutputFormat OutputFormat
	OutputWriter io.Writer
	OutputPath   string // Path to save output file (for HTML format)
	NoOpen       bool   // Don't auto-open HTML in browser
	ShowDetails  bool

	// Filtering and sorting
	MinSeverity Severity
	SortBy      SortCriteria

	// Feature toggles
	ShowRecommendations bool
	ShowCarbon          bool

	// Configuration
	ConfigPath string

	// Analysis options
	Recursive       bool
	IncludePatterns []string
	ExcludePatterns []string
}

// AnalyzeSummary represents aggregate statistics across analyzed files
type AnalyzeSummary struct {
	FilesAnalyzed     int     `json:"files_analyzed" yaml:"files_analyzed"`
	FilesFailed       int     `json:"files_failed" yaml:"files_failed"`
	TotalIssues       int     `json:"total_issues" yaml:"total_issues"`
	AverageGreenScore float64 `json:"average_green_score" yaml:"average_green_score"`
	BestGreenScore    float64 `json:"best_green_score" yaml:"best_green_score"`
	WorstGreenScore   float64 `json:"worst_green_score" yaml:"worst_green_score"`

	// Risk distribution
	LowRiskFiles    int `json:"low_risk_files" yaml:"low_risk_files"`
	MediumRiskFiles int `json:"medium_risk_files" yaml:"medium_risk_files"`
	HighRiskFiles   int `json:"high_risk_files" yaml:"high_risk_files"`

	// Issue distribution
	IssuesByCategory map[string]int `json:"issues_by_category,omitempty" yaml:"issues_by_category,omitempty"`
	IssuesBySeverity map[string]int `json:"issues_by_severity,omitempty" yaml:"issues_by_severity,omitempty"`
}

// AnalyzeResponse represents the complete analysis result
type AnalyzeResponse struct {
	// Analysis results
	Files   []AnalysisResult `json:"files" yaml:"files"`
	Summary AnalyzeSummary   `json:"summary" yaml:"summary"`

	// Warnings and issues
	Warnings []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Errors   []string `json:"errors,omitempty" yaml:"errors,omitempty"`

	// Metadata
	GeneratedAt string      `json:"generated_at" yaml:"generated_at"`
	Version     string      `json:"version" yaml:"version"`
	Config      interface{} `json:"config,omitempty" yaml:"config,omitempty"`
}

// AnalysisService defines the core business logic for sustainability analysis
type AnalysisService interface {
	// Analyze performs sustainability analysis on the given request
	Analyze(ctx context.Context, req AnalyzeRequest) (*AnalyzeResponse, error)

	// AnalyzeSource analyzes a single Python source text
	AnalyzeSource(ctx context.Context, filePath string, source string) (*AnalysisResult, error)
}

// FileReader defines the interface for reading and collecting files
type FileReader interface {
	// CollectPythonFiles recursively finds all Python files in the given paths
	CollectPythonFiles(paths []string, recursive bool, includePatterns, excludePatterns []string) ([]string, error)

	// ReadFile reads the content of a file
	ReadFile(path string) ([]byte, error)

	// IsValidPythonFile checks if a file is a valid Python file
	IsValidPythonFile(path string) bool

	// FileExists checks if a file exists and returns an error if not
	FileExists(path string) (bool, error)
}

// OutputFormatter defines the interface for formatting analysis results
type OutputFormatter interface {
	// Format formats the analysis response according to the specified format
	Format(response *AnalyzeResponse, format OutputFormat) (string, error)

	// Write writes the formatted output to the writer
	Write(response *AnalyzeResponse, format OutputFormat, writer io.Writer) error
}

// ConfigurationLoader defines the interface for loading configuration
type ConfigurationLoader interface {
	// LoadConfig loads configuration from the specified path
	LoadConfig(path string) (*AnalyzeRequest, error)

	// LoadDefaultConfig loads the default configuration
	LoadDefaultConfig() *AnalyzeRequest

	// MergeConfig merges CLI flags with configuration file
	MergeConfig(base *AnalyzeRequest, override *AnalyzeRequest) *AnalyzeRequest
}

// ProgressManager coordinates progress reporting for long-running analyses
type ProgressManager interface {
	// StartTask creates a new progress task with a description and total count
	StartTask(description string, total int) TaskProgress

	// IsInteractive reports whether progress output is rendered
	IsInteractive() bool

	// Close cleans up all tasks
	Close()
}

// TaskProgress tracks the progress of a single task
type TaskProgress interface {
	// Increment adds n to the current progress
	Increment(n int)

	// Describe updates the current item description
	Describe(description string)

	// Complete marks the task as finished
	Complete()
}

// ExecutableTask is a named unit of work runnable by a ParallelExecutor.
// Tasks deliver their results through their own state; Execute returns
// only the failure.
type ExecutableTask interface {
	// Name identifies the task in error reports
	Name() string

	// Execute runs the task
	Execute(ctx context.Context) error
}

// ParallelExecutor runs tasks concurrently with bounded parallelism
type ParallelExecutor interface {
	Execute(ctx context.Context, tasks []ExecutableTask) error
}
