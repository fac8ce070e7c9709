package service

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ludo-technologies/greenscan/domain"
)

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "greenscan.yaml")
	content := `output:
  format: json
  sort_by: name
  min_severity: medium
carbon:
  enabled: true
analysis:
  recursive: false
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	req, err := NewConfigurationLoader().LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if req.OutputFormat != domain.OutputFormatJSON {
		t.Errorf("OutputFormat = %s, expected json", req.OutputFormat)
	}
	if req.SortBy != domain.SortByName {
		t.Errorf("SortBy = %s, expected name", req.SortBy)
	}
	if req.MinSeverity != domain.SeverityMedium {
		t.Errorf("MinSeverity = %s, expected medium", req.MinSeverity)
	}
	if !req.ShowCarbon {
		t.Error("ShowCarbon should reflect carbon.enabled")
	}
	if req.Recursive {
		t.Error("Recursive should reflect analysis.recursive")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := NewConfigurationLoader().LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("Expected an error for a missing config file")
	}

	var domainErr domain.DomainError
	if !errors.As(err, &domainErr) {
		t.Fatalf("Expected a DomainError, got %T", err)
	}
	if domainErr.Code != domain.ErrCodeConfigError {
		t.Errorf("Code = %q, expected %q", domainErr.Code, domain.ErrCodeConfigError)
	}
}

func TestLoadDefaultConfig(t *testing.T) {
	req := NewConfigurationLoader().LoadDefaultConfig()

	if req.OutputFormat != domain.OutputFormatText {
		t.Errorf("OutputFormat = %s, expected text", req.OutputFormat)
	}
	if req.SortBy != domain.SortByScore {
		t.Errorf("SortBy = %s, expected score", req.SortBy)
	}
	if req.MinSeverity != domain.SeverityLow {
		t.Errorf("MinSeverity = %s, expected low", req.MinSeverity)
	}
	if !req.Recursive {
		t.Error("Recursive should default to true")
	}
	if len(req.ExcludePatterns) == 0 {
		t.Error("Default exclude patterns should not be empty")
	}
}

func TestMergeConfig(t *testing.T) {
	loader := NewConfigurationLoader()
	base := loader.LoadDefaultConfig()

	override := &domain.AnalyzeRequest{
		Paths:        []string{"src/"},
		OutputFormat: domain.OutputFormatYAML,
		MinSeverity:  domain.SeverityHigh,
		SortBy:       domain.SortByIssues,
		ShowDetails:  true,
		ConfigPath:   "custom.yaml",
	}

	merged := loader.MergeConfig(base, override)

	if len(merged.Paths) != 1 || merged.Paths[0] != "src/" {
		t.Errorf("Paths = %v, expected [src/]", merged.Paths)
	}
	if merged.OutputFormat != domain.OutputFormatYAML {
		t.Errorf("OutputFormat = %s, expected yaml", merged.OutputFormat)
	}
	if merged.MinSeverity != domain.SeverityHigh {
		t.Errorf("MinSeverity = %s, expected high", merged.MinSeverity)
	}
	if merged.SortBy != domain.SortByIssues {
		t.Errorf("SortBy = %s, expected issues", merged.SortBy)
	}
	if !merged.ShowDetails {
		t.Error("ShowDetails should come from the override")
	}
	if merged.ConfigPath != "custom.yaml" {
		t.Errorf("ConfigPath = %q, expected custom.yaml", merged.ConfigPath)
	}
}

func TestMergeConfigKeepsBaseDefaults(t *testing.T) {
	loader := NewConfigurationLoader()

	base := &domain.AnalyzeRequest{
		OutputFormat: domain.OutputFormatJSON,
		MinSeverity:  domain.SeverityMedium,
		SortBy:       domain.SortByName,
	}

	// Default-valued override fields must not clobber the base.
	merged := loader.MergeConfig(base, &domain.AnalyzeRequest{
		MinSeverity: domain.SeverityLow,
		SortBy:      domain.SortByScore,
	})

	if merged.OutputFormat != domain.OutputFormatJSON {
		t.Errorf("OutputFormat = %s, expected json from base", merged.OutputFormat)
	}
	if merged.MinSeverity != domain.SeverityMedium {
		t.Errorf("MinSeverity = %s, expected medium from base", merged.MinSeverity)
	}
	if merged.SortBy != domain.SortByName {
		t.Errorf("SortBy = %s, expected name from base", merged.SortBy)
	}
}

func TestValidateConfig(t *testing.T) {
	loader := NewConfigurationLoader()

	valid := &domain.AnalyzeRequest{
		OutputFormat: domain.OutputFormatText,
		MinSeverity:  domain.SeverityLow,
		SortBy:       domain.SortByScore,
	}
	if err := loader.ValidateConfig(valid); err != nil {
		t.Errorf("Valid request rejected: %v", err)
	}

	tests := []struct {
		name string
		req  *domain.AnalyzeRequest
	}{
		{
			name: "invalid format",
			req:  &domain.AnalyzeRequest{OutputFormat: "xml"},
		},
		{
			name: "invalid severity",
			req:  &domain.AnalyzeRequest{OutputFormat: domain.OutputFormatText, MinSeverity: "urgent"},
		},
		{
			name: "invalid sort",
			req:  &domain.AnalyzeRequest{OutputFormat: domain.OutputFormatText, SortBy: "size"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := loader.ValidateConfig(tt.req); err == nil {
				t.Error("Expected a validation error")
			}
		})
	}
}
