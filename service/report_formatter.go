package service

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"strconv"
	"strings"

	"github.com/ludo-technologies/greenscan/domain"
	"github.com/ludo-technologies/greenscan/internal/version"
	"gopkg.in/yaml.v3"
)

// ReportFormatterImpl implements the OutputFormatter interface
type ReportFormatterImpl struct{}

// NewReportFormatter creates a new report formatter
func NewReportFormatter() *ReportFormatterImpl {
	return &ReportFormatterImpl{}
}

// WriteJSON writes data as JSON to the writer
func WriteJSON(writer io.Writer, data interface{}) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// AnalyzeResponseJSON wraps AnalyzeResponse with JSON metadata
type AnalyzeResponseJSON struct {
	Version     string                  `json:"version"`
	GeneratedAt string                  `json:"generated_at"`
	Files       []domain.AnalysisResult `json:"files"`
	Summary     domain.AnalyzeSummary   `json:"summary"`
	Warnings    []string                `json:"warnings,omitempty"`
	Errors      []string                `json:"errors,omitempty"`
	Config      interface{}             `json:"config,omitempty"`
}

// Format formats the analysis response as a string
func (f *ReportFormatterImpl) Format(response *domain.AnalyzeResponse, format domain.OutputFormat) (string, error) {
	var sb strings.Builder
	if err := f.Write(response, format, &sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// Write writes the analysis response in the specified format
func (f *ReportFormatterImpl) Write(response *domain.AnalyzeResponse, format domain.OutputFormat, writer io.Writer) error {
	switch format {
	case domain.OutputFormatJSON:
		return f.writeJSON(response, writer)
	case domain.OutputFormatYAML:
		return f.writeYAML(response, writer)
	case domain.OutputFormatCSV:
		return f.writeCSV(response, writer)
	case domain.OutputFormatHTML:
		return f.writeHTML(response, writer)
	case domain.OutputFormatText:
		return f.writeText(response, writer)
	default:
		return domain.NewUnsupportedFormatError(string(format))
	}
}

// writeJSON writes the response as indented JSON
func (f *ReportFormatterImpl) writeJSON(response *domain.AnalyzeResponse, writer io.Writer) error {
	jsonResponse := AnalyzeResponseJSON{
		Version:     version.Version,
		GeneratedAt: response.GeneratedAt,
		Files:       response.Files,
		Summary:     response.Summary,
		Warnings:    response.Warnings,
		Errors:      response.Errors,
		Config:      response.Config,
	}
	return WriteJSON(writer, jsonResponse)
}

// writeYAML writes the response as YAML
func (f *ReportFormatterImpl) writeYAML(response *domain.AnalyzeResponse, writer io.Writer) error {
	encoder := yaml.NewEncoder(writer)
	defer encoder.Close()
	return encoder.Encode(response)
}

// writeCSV writes one row per issue plus a per-file score row
func (f *ReportFormatterImpl) writeCSV(response *domain.AnalyzeResponse, writer io.Writer) error {
	w := csv.NewWriter(writer)
	defer w.Flush()

	header := []string{"file", "green_score", "efficiency", "resource_management", "quality", "security", "rule_id", "category", "severity", "line", "message"}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, file := range response.Files {
		scoreRow := []string{
			file.FilePath,
			formatScore(file.Scores.GreenScore),
			formatScore(file.Scores.Efficiency),
			formatScore(file.Scores.ResourceManagement),
			formatScore(file.Scores.Quality),
			formatScore(file.Scores.Security),
			"", "", "", "", "",
		}
		if err := w.Write(scoreRow); err != nil {
			return err
		}
		for _, issue := range file.Issues {
			row := []string{
				file.FilePath,
				"", "", "", "", "",
				issue.RuleID,
				string(issue.Category),
				string(issue.Severity),
				strconv.Itoa(issue.Line),
				issue.Message,
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}
	return nil
}

// writeText writes the response as plain text
func (f *ReportFormatterImpl) writeText(response *domain.AnalyzeResponse, writer io.Writer) error {
	fmt.Fprintf(writer, "\n=== Green Score Analysis ===\n\n")
	fmt.Fprintf(writer, "Generated: %s\n", response.GeneratedAt)
	fmt.Fprintf(writer, "Version: %s\n\n", response.Version)

	// Summary
	fmt.Fprintf(writer, "Summary:\n")
	fmt.Fprintf(writer, "  Files analyzed: %d\n", response.Summary.FilesAnalyzed)
	if response.Summary.FilesFailed > 0 {
		fmt.Fprintf(writer, "  Files failed to parse: %d\n", response.Summary.FilesFailed)
	}
	fmt.Fprintf(writer, "  Total issues: %d\n", response.Summary.TotalIssues)
	fmt.Fprintf(writer, "  Average green score: %.0f\n", response.Summary.AverageGreenScore)
	fmt.Fprintf(writer, "  Best green score: %.0f\n", response.Summary.BestGreenScore)
	fmt.Fprintf(writer, "  Worst green score: %.0f\n", response.Summary.WorstGreenScore)
	fmt.Fprintf(writer, "\n")

	// Risk distribution
	fmt.Fprintf(writer, "Risk Distribution:\n")
	fmt.Fprintf(writer, "  High risk: %d\n", response.Summary.HighRiskFiles)
	fmt.Fprintf(writer, "  Medium risk: %d\n", response.Summary.MediumRiskFiles)
	fmt.Fprintf(writer, "  Low risk: %d\n", response.Summary.LowRiskFiles)
	fmt.Fprintf(writer, "\n")

	// File details
	for _, file := range response.Files {
		if file.ParseError != "" {
			fmt.Fprintf(writer, "%s: PARSE ERROR (%s)\n", file.FilePath, file.ParseError)
			continue
		}

		fmt.Fprintf(writer, "%s: %.0f [%s]\n", file.FilePath, file.Scores.GreenScore, riskIndicator(file.Scores.RiskLevel()))
		fmt.Fprintf(writer, "  Efficiency: %.0f  Resources: %.0f  Quality: %.0f  Security: %.0f\n",
			file.Scores.Efficiency, file.Scores.ResourceManagement, file.Scores.Quality, file.Scores.Security)

		if file.Carbon != nil {
			fmt.Fprintf(writer, "  Carbon: %s (%.1f uJ, %.2e gCO2 per run)\n",
				file.Carbon.Rating, file.Carbon.Estimate.EnergyMicroJoules, file.Carbon.Estimate.CO2Grams)
		}

		for _, issue := range file.Issues {
			location := "file"
			if issue.Line > 0 {
				location = fmt.Sprintf("line %d", issue.Line)
			}
			fmt.Fprintf(writer, "  [%s] %s (%s, %s): %s\n",
				strings.ToUpper(string(issue.Severity)), issue.RuleID, issue.Category, location, issue.Message)
		}

		for _, rec := range file.Recommendations {
			fmt.Fprintf(writer, "  -> %s: %s\n", rec.Summary, rec.Suggestion)
		}
		fmt.Fprintf(writer, "\n")
	}

	// Warnings
	if len(response.Warnings) > 0 {
		fmt.Fprintf(writer, "Warnings:\n")
		for _, w := range response.Warnings {
			fmt.Fprintf(writer, "  - %s\n", w)
		}
	}

	// Errors
	if len(response.Errors) > 0 {
		fmt.Fprintf(writer, "Errors:\n")
		for _, e := range response.Errors {
			fmt.Fprintf(writer, "  - %s\n", e)
		}
	}

	return nil
}

var htmlReportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>greenscan report</title>
<style>
body { font-family: sans-serif; margin: 2em; color: #1b3022; }
h1 { color: #2e7d32; }
table { border-collapse: collapse; margin-bottom: 2em; }
th, td { border: 1px solid #c8e6c9; padding: 0.4em 0.8em; text-align: left; }
th { background: #e8f5e9; }
.score-low { color: #c62828; font-weight: bold; }
.score-medium { color: #ef6c00; font-weight: bold; }
.score-high { color: #2e7d32; font-weight: bold; }
.severity-critical { color: #c62828; }
.severity-high { color: #ef6c00; }
</style>
</head>
<body>
<h1>Green Score Report</h1>
<p>Generated {{.GeneratedAt}} by greenscan {{.Version}}</p>
<table>
<tr><th>File</th><th>Green Score</th><th>Efficiency</th><th>Resources</th><th>Quality</th><th>Security</th><th>Issues</th></tr>
{{range .Files}}
<tr>
<td>{{.FilePath}}</td>
{{if .ParseError}}<td colspan="6">parse error: {{.ParseError}}</td>{{else}}
<td>{{printf "%.0f" .Scores.GreenScore}}</td>
<td>{{printf "%.0f" .Scores.Efficiency}}</td>
<td>{{printf "%.0f" .Scores.ResourceManagement}}</td>
<td>{{printf "%.0f" .Scores.Quality}}</td>
<td>{{printf "%.0f" .Scores.Security}}</td>
<td>{{len .Issues}}</td>
{{end}}
</tr>
{{end}}
</table>
{{range .Files}}{{if .Issues}}
<h2>{{.FilePath}}</h2>
<table>
<tr><th>Rule</th><th>Category</th><th>Severity</th><th>Line</th><th>Message</th></tr>
{{range .Issues}}
<tr class="severity-{{.Severity}}"><td>{{.RuleID}}</td><td>{{.Category}}</td><td>{{.Severity}}</td><td>{{.Line}}</td><td>{{.Message}}</td></tr>
{{end}}
</table>
{{end}}{{end}}
</body>
</html>
`))

// writeHTML writes the response as a standalone HTML report
func (f *ReportFormatterImpl) writeHTML(response *domain.AnalyzeResponse, writer io.Writer) error {
	return htmlReportTemplate.Execute(writer, response)
}

func formatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', 0, 64)
}

func riskIndicator(level domain.RiskLevel) string {
	switch level {
	case domain.RiskLevelHigh:
		return "HIGH RISK"
	case domain.RiskLevelMedium:
		return "MEDIUM RISK"
	default:
		return "LOW RISK"
	}
}
