package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/ludo-technologies/greenscan/app"
	"github.com/ludo-technologies/greenscan/domain"
	"github.com/ludo-technologies/greenscan/internal/config"
	"github.com/ludo-technologies/greenscan/internal/version"
	"github.com/ludo-technologies/greenscan/service"
	"github.com/spf13/cobra"
)

// CheckExitError is a custom error type for check command exit codes
type CheckExitError struct {
	Code    int
	Message string
}

func (e *CheckExitError) Error() string {
	return e.Message
}

// CheckViolation describes a single failed threshold
type CheckViolation struct {
	Category  string `json:"category"`
	Rule      string `json:"rule"`
	Severity  string `json:"severity"`
	Message   string `json:"message"`
	Location  string `json:"location,omitempty"`
	Actual    string `json:"actual,omitempty"`
	Threshold string `json:"threshold,omitempty"`
}

// CheckSummary aggregates check statistics
type CheckSummary struct {
	FilesAnalyzed   int     `json:"files_analyzed"`
	AverageScore    float64 `json:"average_score"`
	WorstScore      float64 `json:"worst_score"`
	SecurityIssues  int     `json:"security_issues"`
	CriticalIssues  int     `json:"critical_issues"`
	ParseFailures   int     `json:"parse_failures"`
	TotalViolations int     `json:"total_violations"`
}

// CheckResult is the machine-readable outcome of a check run
type CheckResult struct {
	Passed      bool             `json:"passed"`
	ExitCode    int              `json:"exit_code"`
	Violations  []CheckViolation `json:"violations"`
	Summary     CheckSummary     `json:"summary"`
	Duration    int64            `json:"duration_ms"`
	GeneratedAt string           `json:"generated_at"`
	Version     string           `json:"version"`
}

var (
	checkMinScore      int
	checkAllowSecurity bool
	checkAllowCritical bool
	checkVerbose       bool
	checkJSON          bool
	checkConfigPath    string
)

func checkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [path...]",
		Short: "Fast sustainability gate for CI/CD pipelines",
		Long: `Run the Green Score against configurable thresholds for CI/CD integration.

Exit codes:
  0 - All checks pass
  1 - Score or security threshold(s) violated
  2 - Analysis error (file not found, parse error, etc.)

Examples:
  # Fail the build when any file scores below 70
  greenscan check --min-score 70 src/

  # Allow security findings, gate on score only
  greenscan check --allow-security src/

  # JSON output for machine parsing
  greenscan check --json src/`,
		RunE:          runCheck,
		SilenceUsage:  true, // Don't print usage on errors (we handle our own output)
		SilenceErrors: true, // Don't print error messages (we handle our own output)
	}

	cmd.Flags().IntVar(&checkMinScore, "min-score", 60,
		"Minimum allowed Green Score per file")
	cmd.Flags().BoolVar(&checkAllowSecurity, "allow-security", false,
		"Allow security findings without failing")
	cmd.Flags().BoolVar(&checkAllowCritical, "allow-critical", false,
		"Allow critical-severity issues without failing")
	cmd.Flags().BoolVarP(&checkVerbose, "verbose", "v", false,
		"Show detailed output")
	cmd.Flags().BoolVar(&checkJSON, "json", false,
		"Output results as JSON")
	cmd.Flags().StringVarP(&checkConfigPath, "config", "c", "",
		"Path to config file")

	return cmd
}

func runCheck(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return &CheckExitError{Code: 2, Message: "no paths specified"}
	}

	startTime := time.Now()

	cfg, err := config.LoadConfigWithTarget(checkConfigPath, args[0])
	if err != nil {
		return &CheckExitError{Code: 2, Message: fmt.Sprintf("failed to load configuration: %v", err)}
	}

	pm := service.NewProgressManager(!checkJSON)
	defer pm.Close()

	svc := service.NewAnalysisServiceWithProgress(cfg, pm)
	formatter := service.NewReportFormatter()
	uc := app.NewAnalyzeUseCase(svc, formatter, nil)

	req := domain.AnalyzeRequest{
		Paths:           args,
		OutputFormat:    domain.OutputFormatText,
		SortBy:          domain.SortByScore,
		MinSeverity:     domain.SeverityLow,
		Recursive:       true,
		ExcludePatterns: cfg.Analysis.ExcludePatterns,
	}

	response, err := uc.Analyze(context.Background(), req)
	if err != nil {
		return &CheckExitError{Code: 2, Message: err.Error()}
	}

	result := &CheckResult{
		Passed:     true,
		Violations: []CheckViolation{},
		Summary: CheckSummary{
			FilesAnalyzed: response.Summary.FilesAnalyzed,
			AverageScore:  response.Summary.AverageGreenScore,
			WorstScore:    response.Summary.WorstGreenScore,
			ParseFailures: response.Summary.FilesFailed,
		},
	}

	for _, file := range response.Files {
		if file.ParseError != "" {
			result.Passed = false
			result.Violations = append(result.Violations, CheckViolation{
				Category: "parse",
				Rule:     "syntax-error",
				Severity: "error",
				Message:  fmt.Sprintf("File %s could not be parsed: %s", file.FilePath, file.ParseError),
				Location: file.FilePath,
			})
			continue
		}

		if file.Scores.GreenScore < float64(checkMinScore) {
			result.Passed = false
			result.Violations = append(result.Violations, CheckViolation{
				Category:  "score",
				Rule:      "min-score",
				Severity:  "error",
				Message:   fmt.Sprintf("File %s has Green Score %.0f", file.FilePath, file.Scores.GreenScore),
				Location:  file.FilePath,
				Actual:    strconv.Itoa(int(file.Scores.GreenScore)),
				Threshold: strconv.Itoa(checkMinScore),
			})
		}

		for _, issue := range file.Issues {
			if issue.Category == domain.CategorySecurity {
				result.Summary.SecurityIssues++
				if !checkAllowSecurity {
					result.Passed = false
					result.Violations = append(result.Violations, CheckViolation{
						Category: "security",
						Rule:     issue.RuleID,
						Severity: string(issue.Severity),
						Message:  issue.Message,
						Location: fmt.Sprintf("%s:%d", file.FilePath, issue.Line),
					})
				}
				continue
			}
			if issue.Severity == domain.SeverityCritical {
				result.Summary.CriticalIssues++
				if !checkAllowCritical {
					result.Passed = false
					result.Violations = append(result.Violations, CheckViolation{
						Category: string(issue.Category),
						Rule:     issue.RuleID,
						Severity: string(issue.Severity),
						Message:  issue.Message,
						Location: fmt.Sprintf("%s:%d", file.FilePath, issue.Line),
					})
				}
			}
		}
	}

	return outputCheckResult(result, startTime)
}

func outputCheckResult(result *CheckResult, startTime time.Time) error {
	result.Duration = time.Since(startTime).Milliseconds()
	result.GeneratedAt = time.Now().Format(time.RFC3339)
	result.Version = version.Version
	result.ExitCode = 0
	if !result.Passed {
		result.ExitCode = 1
	}
	result.Summary.TotalViolations = len(result.Violations)

	if checkJSON {
		return outputCheckJSON(result)
	}

	return outputCheckText(result)
}

func outputCheckText(result *CheckResult) error {
	if result.Passed {
		fmt.Println("PASS: All sustainability checks passed")
		if checkVerbose {
			fmt.Printf("  Files analyzed: %d\n", result.Summary.FilesAnalyzed)
			fmt.Printf("  Average score: %.1f\n", result.Summary.AverageScore)
			fmt.Printf("  Worst score: %.0f (min: %d)\n", result.Summary.WorstScore, checkMinScore)
			fmt.Printf("  Duration: %dms\n", result.Duration)
		}
		return nil
	}

	fmt.Println("FAIL: Sustainability check failed")
	fmt.Printf("  Violations: %d\n", result.Summary.TotalViolations)

	for _, v := range result.Violations {
		severity := "ERROR"
		if v.Severity == "warning" || v.Severity == "low" || v.Severity == "medium" {
			severity = "WARN"
		}
		fmt.Printf("  [%s] %s: %s\n", severity, v.Category, v.Message)
		if checkVerbose && v.Location != "" {
			fmt.Printf("         at %s\n", v.Location)
		}
	}

	if checkVerbose {
		fmt.Printf("\nSummary:\n")
		fmt.Printf("  Files: %d\n", result.Summary.FilesAnalyzed)
		fmt.Printf("  Average score: %.1f\n", result.Summary.AverageScore)
		fmt.Printf("  Security issues: %d\n", result.Summary.SecurityIssues)
		fmt.Printf("  Parse failures: %d\n", result.Summary.ParseFailures)
		fmt.Printf("  Duration: %dms\n", result.Duration)
	}

	return &CheckExitError{Code: 1, Message: ""}
}

func outputCheckJSON(result *CheckResult) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(result); err != nil {
		return &CheckExitError{Code: 2, Message: fmt.Sprintf("failed to encode JSON: %v", err)}
	}

	if !result.Passed {
		return &CheckExitError{Code: 1, Message: ""}
	}
	return nil
}
