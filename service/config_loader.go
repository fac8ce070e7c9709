package service

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ludo-technologies/greenscan/domain"
	"github.com/ludo-technologies/greenscan/internal/config"
	"github.com/ludo-technologies/greenscan/internal/constants"
)

// ConfigurationLoaderImpl implements the ConfigurationLoader interface
type ConfigurationLoaderImpl struct{}

// NewConfigurationLoader creates a new configuration loader service
func NewConfigurationLoader() *ConfigurationLoaderImpl {
	return &ConfigurationLoaderImpl{}
}

// LoadConfig loads configuration from the specified path
func (c *ConfigurationLoaderImpl) LoadConfig(path string) (*domain.AnalyzeRequest, error) {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, domain.NewConfigError("failed to load configuration file", err)
	}

	return c.convertToAnalyzeRequest(cfg), nil
}

// LoadDefaultConfig loads the default configuration, discovering a config
// file near the working directory when one exists
func (c *ConfigurationLoaderImpl) LoadDefaultConfig() *domain.AnalyzeRequest {
	cfg, err := config.LoadConfigWithTarget("", "")
	if err == nil {
		return c.convertToAnalyzeRequest(cfg)
	}

	// Fall back to hardcoded default configuration
	cfg = config.DefaultConfig()
	return c.convertToAnalyzeRequest(cfg)
}

// FindDefaultConfigFile searches for a default configuration file
func (c *ConfigurationLoaderImpl) FindDefaultConfigFile() string {
	configFiles := constants.ConfigFileCandidates

	// Check current directory
	for _, file := range configFiles {
		if _, err := os.Stat(file); err == nil {
			return file
		}
	}

	// Check parent directories up to root
	currentDir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		for _, file := range configFiles {
			configPath := filepath.Join(currentDir, file)
			if _, err := os.Stat(configPath); err == nil {
				return configPath
			}
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			break
		}
		currentDir = parentDir
	}

	return ""
}

// MergeConfig merges CLI flags with configuration file
func (c *ConfigurationLoaderImpl) MergeConfig(base *domain.AnalyzeRequest, override *domain.AnalyzeRequest) *domain.AnalyzeRequest {
	// Start with base configuration
	merged := *base

	// Always override paths as they come from command arguments
	if len(override.Paths) > 0 {
		merged.Paths = override.Paths
	}

	// Output configuration
	if override.OutputFormat != "" {
		merged.OutputFormat = override.OutputFormat
	}

	if override.OutputWriter != nil {
		merged.OutputWriter = override.OutputWriter
	}

	if override.OutputPath != "" {
		merged.OutputPath = override.OutputPath
	}

	if override.ShowDetails {
		merged.ShowDetails = override.ShowDetails
	}

	if override.ShowRecommendations {
		merged.ShowRecommendations = override.ShowRecommendations
	}

	if override.ShowCarbon {
		merged.ShowCarbon = override.ShowCarbon
	}

	// Filtering and sorting, override if non-default
	if override.MinSeverity != "" && override.MinSeverity != domain.SeverityLow {
		merged.MinSeverity = override.MinSeverity
	}

	if override.SortBy != "" && override.SortBy != domain.SortByScore {
		merged.SortBy = override.SortBy
	}

	// Config path is always from override if provided
	if override.ConfigPath != "" {
		merged.ConfigPath = override.ConfigPath
	}

	if len(override.IncludePatterns) > 0 {
		merged.IncludePatterns = override.IncludePatterns
	}

	if len(override.ExcludePatterns) > 0 {
		merged.ExcludePatterns = override.ExcludePatterns
	}

	return &merged
}

// convertToAnalyzeRequest converts a Config to AnalyzeRequest
func (c *ConfigurationLoaderImpl) convertToAnalyzeRequest(cfg *config.Config) *domain.AnalyzeRequest {
	return &domain.AnalyzeRequest{
		// Paths are set by the caller, not from config
		Paths: []string{},

		// Output settings
		OutputFormat: domain.OutputFormat(cfg.Output.Format),
		ShowDetails:  cfg.Output.ShowDetails,
		SortBy:       domain.SortCriteria(cfg.Output.SortBy),
		MinSeverity:  domain.Severity(cfg.Output.MinSeverity),

		// Feature toggles
		ShowCarbon: cfg.Carbon.Enabled,

		// Analysis settings
		Recursive:       cfg.Analysis.Recursive,
		IncludePatterns: cfg.Analysis.IncludePatterns,
		ExcludePatterns: cfg.Analysis.ExcludePatterns,
	}
}

// ValidateConfig validates the configuration
func (c *ConfigurationLoaderImpl) ValidateConfig(req *domain.AnalyzeRequest) error {
	// Validate output format
	validFormats := map[domain.OutputFormat]bool{
		domain.OutputFormatText: true,
		domain.OutputFormatJSON: true,
		domain.OutputFormatYAML: true,
		domain.OutputFormatCSV:  true,
		domain.OutputFormatHTML: true,
	}
	if !validFormats[req.OutputFormat] {
		return fmt.Errorf("invalid output format: %s (must be one of: text, json, yaml, csv, html)",
			req.OutputFormat)
	}

	// Validate severity filter
	if req.MinSeverity != "" && req.MinSeverity.Rank() == 0 {
		return fmt.Errorf("invalid min severity: %s (must be one of: low, medium, high, critical)",
			req.MinSeverity)
	}

	// Validate sort criteria
	validSortBy := map[domain.SortCriteria]bool{
		domain.SortByScore:    true,
		domain.SortByName:     true,
		domain.SortByIssues:   true,
		domain.SortBySeverity: true,
	}
	if req.SortBy != "" && !validSortBy[req.SortBy] {
		return fmt.Errorf("invalid sort criteria: %s (must be one of: score, name, issues, severity)",
			req.SortBy)
	}

	return nil
}
