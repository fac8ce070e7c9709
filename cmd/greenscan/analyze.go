package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ludo-technologies/greenscan/app"
	"github.com/ludo-technologies/greenscan/domain"
	"github.com/ludo-technologies/greenscan/internal/config"
	"github.com/ludo-technologies/greenscan/service"
	"github.com/spf13/cobra"
)

var (
	analyzeFormat          string
	analyzeJSONOutput      bool
	analyzeHTMLOutput      bool
	analyzeNoOpen          bool
	analyzeOutputPath      string
	analyzeConfigPath      string
	analyzeMinSeverity     string
	analyzeSortBy          string
	analyzeShowDetails     bool
	analyzeRecommendations bool
	analyzeCarbon          bool
	analyzeNoRecursive     bool
	analyzeExcludes        []string
)

func analyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [path...]",
		Short: "Analyze Python files for sustainability issues",
		Long: `Analyze Python files and compute a Green Score for each one.

The score combines efficiency, resource management, quality and security
findings into a single 0-100 value.

Examples:
  greenscan analyze src/
  greenscan analyze --json src/
  greenscan analyze --min-severity high --details src/
  greenscan analyze --carbon --format html -o report.html src/
  cat script.py | greenscan analyze -`,
		RunE: runAnalyze,
	}

	cmd.Flags().StringVarP(&analyzeFormat, "format", "f", "text",
		"Output format: text, json, yaml, csv, html")
	cmd.Flags().BoolVar(&analyzeJSONOutput, "json", false,
		"Output results as JSON (shorthand for --format json)")
	cmd.Flags().BoolVar(&analyzeHTMLOutput, "html", false,
		"Output results as HTML (shorthand for --format html)")
	cmd.Flags().BoolVar(&analyzeNoOpen, "no-open", false,
		"Don't auto-open HTML report in browser")
	cmd.Flags().StringVarP(&analyzeOutputPath, "output", "o", "",
		"Output file path (default: greenscan-report.html for HTML)")
	cmd.Flags().StringVarP(&analyzeConfigPath, "config", "c", "",
		"Path to config file")
	cmd.Flags().StringVar(&analyzeMinSeverity, "min-severity", "low",
		"Minimum issue severity to report: low, medium, high, critical")
	cmd.Flags().StringVar(&analyzeSortBy, "sort", "score",
		"Sort results by: score, name, issues, severity")
	cmd.Flags().BoolVar(&analyzeShowDetails, "details", false,
		"Show per-issue breakdown for every file")
	cmd.Flags().BoolVar(&analyzeRecommendations, "recommendations", false,
		"Show remediation suggestions for detected issues")
	cmd.Flags().BoolVar(&analyzeCarbon, "carbon", false,
		"Include carbon footprint estimation")
	cmd.Flags().BoolVar(&analyzeNoRecursive, "no-recursive", false,
		"Don't descend into subdirectories")
	cmd.Flags().StringSliceVar(&analyzeExcludes, "exclude", nil,
		"Additional exclude patterns")

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("no paths specified")
	}

	format := domain.OutputFormat(analyzeFormat)
	if analyzeJSONOutput {
		format = domain.OutputFormatJSON
	} else if analyzeHTMLOutput {
		format = domain.OutputFormatHTML
	}

	// Load configuration
	cfg, err := config.LoadConfigWithTarget(analyzeConfigPath, args[0])
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if analyzeCarbon {
		cfg.Carbon.Enabled = true
	}

	// "-" reads a single source from stdin
	if len(args) == 1 && args[0] == "-" {
		return analyzeStdin(cfg, format)
	}

	// Progress bars only make sense for human-readable terminal output
	pm := service.NewProgressManager(format == domain.OutputFormatText && analyzeOutputPath == "")
	defer pm.Close()

	svc := service.NewAnalysisServiceWithProgress(cfg, pm)
	formatter := service.NewReportFormatter()
	loader := service.NewConfigurationLoader()
	uc := app.NewAnalyzeUseCase(svc, formatter, loader)

	req := domain.AnalyzeRequest{
		Paths:               args,
		OutputFormat:        format,
		OutputPath:          analyzeOutputPath,
		NoOpen:              analyzeNoOpen,
		ShowDetails:         analyzeShowDetails,
		ShowRecommendations: analyzeRecommendations,
		ShowCarbon:          analyzeCarbon || cfg.Carbon.Enabled,
		MinSeverity:         domain.Severity(analyzeMinSeverity),
		SortBy:              domain.SortCriteria(analyzeSortBy),
		ConfigPath:          analyzeConfigPath,
		Recursive:           !analyzeNoRecursive,
		ExcludePatterns:     append(append([]string{}, cfg.Analysis.ExcludePatterns...), analyzeExcludes...),
	}

	// HTML reports default to a file so they can be opened in a browser
	if format == domain.OutputFormatHTML && req.OutputPath == "" {
		req.OutputPath = "greenscan-report.html"
	}

	if err := uc.Execute(context.Background(), req); err != nil {
		return err
	}

	if format == domain.OutputFormatHTML && req.OutputPath != "" {
		absPath, _ := filepath.Abs(req.OutputPath)
		fmt.Printf("HTML report saved to: %s\n", absPath)
		if !req.NoOpen {
			if err := openBrowser("file://" + absPath); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: Could not open browser: %v\n", err)
			}
		}
	}

	return nil
}

// analyzeStdin analyzes one source read from standard input
func analyzeStdin(cfg *config.Config, format domain.OutputFormat) error {
	source, err := io.ReadAll(os.Stdin)
	if err != nil {
		return fmt.Errorf("failed to read stdin: %w", err)
	}

	svc := service.NewAnalysisService(cfg)
	result, err := svc.AnalyzeSource(context.Background(), "<stdin>", string(source))
	if err != nil {
		return err
	}

	response := &domain.AnalyzeResponse{
		Files: []domain.AnalysisResult{*result},
		Summary: domain.AnalyzeSummary{
			FilesAnalyzed:     1,
			TotalIssues:       len(result.Issues),
			AverageGreenScore: result.Scores.GreenScore,
			BestGreenScore:    result.Scores.GreenScore,
			WorstGreenScore:   result.Scores.GreenScore,
		},
	}
	if result.ParseError != "" {
		response.Summary.FilesAnalyzed = 0
		response.Summary.FilesFailed = 1
	}

	formatter := service.NewReportFormatter()
	return formatter.Write(response, format, os.Stdout)
}
