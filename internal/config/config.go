package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ludo-technologies/greenscan/internal/constants"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Default category weights for the green score. The four weights always
// sum to 1.0.
const (
	DefaultEfficiencyWeight = 0.40
	DefaultResourceWeight   = 0.25
	DefaultQualityWeight    = 0.20
	DefaultSecurityWeight   = 0.15
)

// Default structural scoring parameters
const (
	// DefaultNestingThreshold is the deepest nesting that carries no penalty
	DefaultNestingThreshold = 4

	// DefaultNestingPenalty is deducted per nesting level beyond the threshold
	DefaultNestingPenalty = 10.0

	// DefaultWhileLoopPenalty is deducted per while loop beyond the first
	DefaultWhileLoopPenalty = 10.0

	// DefaultCommentBonus is the maximum bonus for a well-commented file
	DefaultCommentBonus = 5.0

	// DefaultCommentRatioTarget is the comment ratio that earns the full bonus
	DefaultCommentRatioTarget = 0.1

	// DefaultFlatScriptPenalty is deducted when a non-trivial file defines
	// no functions at all
	DefaultFlatScriptPenalty = 10.0

	// DefaultFlatScriptLineLimit is the line count above which a file with
	// no functions is penalized
	DefaultFlatScriptLineLimit = 20
)

// Default carbon model parameters, modeled per executed construct
const (
	// DefaultCarbonIntensity is the grid carbon intensity in gCO2 per kWh
	DefaultCarbonIntensity = 500.0

	// DefaultAssumedIterations is the iteration count assumed per loop
	DefaultAssumedIterations = 10
)

// Config represents the main configuration structure
type Config struct {
	// Scoring holds green score calculation parameters
	Scoring ScoringConfig `json:"scoring" mapstructure:"scoring" yaml:"scoring"`

	// Carbon holds the energy and carbon model configuration
	Carbon CarbonConfig `json:"carbon" mapstructure:"carbon" yaml:"carbon"`

	// Output holds output formatting configuration
	Output OutputConfig `json:"output" mapstructure:"output" yaml:"output"`

	// Analysis holds general analysis configuration
	Analysis AnalysisConfig `json:"analysis,omitempty" mapstructure:"analysis" yaml:"analysis"`

	// Performance holds parallel execution configuration
	Performance PerformanceConfig `json:"performance,omitempty" mapstructure:"performance" yaml:"performance"`
}

// SeverityPenalties maps issue severities to score deductions
type SeverityPenalties struct {
	Low      float64 `json:"low" mapstructure:"low" yaml:"low"`
	Medium   float64 `json:"medium" mapstructure:"medium" yaml:"medium"`
	High     float64 `json:"high" mapstructure:"high" yaml:"high"`
	Critical float64 `json:"critical" mapstructure:"critical" yaml:"critical"`
}

// For returns the penalty for a severity name, 0 for unknown names
func (p SeverityPenalties) For(severity string) float64 {
	switch severity {
	case "low":
		return p.Low
	case "medium":
		return p.Medium
	case "high":
		return p.High
	case "critical":
		return p.Critical
	default:
		return 0
	}
}

// CategoryWeights holds the relative weight of each score pool
type CategoryWeights struct {
	Efficiency         float64 `json:"efficiency" mapstructure:"efficiency" yaml:"efficiency"`
	ResourceManagement float64 `json:"resource_management" mapstructure:"resource_management" yaml:"resource_management"`
	Quality            float64 `json:"quality" mapstructure:"quality" yaml:"quality"`
	Security           float64 `json:"security" mapstructure:"security" yaml:"security"`
}

// ScoringConfig holds configuration for green score calculation
type ScoringConfig struct {
	// Weights are the category weights for the final green score
	Weights CategoryWeights `json:"weights" mapstructure:"weights" yaml:"weights"`

	// GeneralPenalties are the per-issue deductions for the efficiency,
	// resource management and quality pools
	GeneralPenalties SeverityPenalties `json:"general_penalties" mapstructure:"general_penalties" yaml:"general_penalties"`

	// SecurityPenalties are the per-issue deductions for the security pool
	SecurityPenalties SeverityPenalties `json:"security_penalties" mapstructure:"security_penalties" yaml:"security_penalties"`

	// NestingThreshold is the deepest nesting that carries no penalty
	NestingThreshold int `json:"nesting_threshold" mapstructure:"nesting_threshold" yaml:"nesting_threshold"`

	// NestingPenalty is deducted per level beyond the threshold
	NestingPenalty float64 `json:"nesting_penalty" mapstructure:"nesting_penalty" yaml:"nesting_penalty"`

	// WhileLoopPenalty is deducted per while loop beyond the first
	WhileLoopPenalty float64 `json:"while_loop_penalty" mapstructure:"while_loop_penalty" yaml:"while_loop_penalty"`

	// CommentBonus is the maximum bonus for a well-commented file
	CommentBonus float64 `json:"comment_bonus" mapstructure:"comment_bonus" yaml:"comment_bonus"`

	// CommentRatioTarget is the comment ratio that earns the full bonus
	CommentRatioTarget float64 `json:"comment_ratio_target" mapstructure:"comment_ratio_target" yaml:"comment_ratio_target"`

	// FlatScriptPenalty is deducted when a file above FlatScriptLineLimit
	// lines defines no functions
	FlatScriptPenalty float64 `json:"flat_script_penalty" mapstructure:"flat_script_penalty" yaml:"flat_script_penalty"`

	// FlatScriptLineLimit is the line count above which the flat script
	// penalty applies
	FlatScriptLineLimit int `json:"flat_script_line_limit" mapstructure:"flat_script_line_limit" yaml:"flat_script_line_limit"`
}

// CarbonConfig holds configuration for the energy and carbon model
type CarbonConfig struct {
	// Enabled controls whether carbon estimation is performed
	Enabled bool `json:"enabled" mapstructure:"enabled" yaml:"enabled"`

	// CarbonIntensity is the grid carbon intensity in gCO2 per kWh
	CarbonIntensity float64 `json:"carbon_intensity" mapstructure:"carbon_intensity" yaml:"carbon_intensity"`

	// AssumedIterations is the iteration count assumed per loop
	AssumedIterations int `json:"assumed_iterations" mapstructure:"assumed_iterations" yaml:"assumed_iterations"`

	// Per-construct energy costs in microjoules
	FunctionCallCost   float64 `json:"function_call_cost" mapstructure:"function_call_cost" yaml:"function_call_cost"`
	WhileIterationCost float64 `json:"while_iteration_cost" mapstructure:"while_iteration_cost" yaml:"while_iteration_cost"`
	ForIterationCost   float64 `json:"for_iteration_cost" mapstructure:"for_iteration_cost" yaml:"for_iteration_cost"`
	ImportCost         float64 `json:"import_cost" mapstructure:"import_cost" yaml:"import_cost"`
	BaseLineCost       float64 `json:"base_line_cost" mapstructure:"base_line_cost" yaml:"base_line_cost"`
}

// OutputConfig holds configuration for output formatting
type OutputConfig struct {
	// Format specifies the output format: text, json, yaml, csv, html
	Format string `json:"format" mapstructure:"format" yaml:"format"`

	// ShowDetails controls whether to show the per-issue breakdown
	ShowDetails bool `json:"show_details" mapstructure:"show_details" yaml:"show_details"`

	// SortBy specifies how to sort results: score, name, issues, severity
	SortBy string `json:"sort_by" mapstructure:"sort_by" yaml:"sort_by"`

	// MinSeverity is the minimum severity to report
	MinSeverity string `json:"min_severity" mapstructure:"min_severity" yaml:"min_severity"`

	// Directory specifies the output directory for HTML reports
	Directory string `json:"directory" mapstructure:"directory" yaml:"directory"`
}

// AnalysisConfig holds general analysis configuration
type AnalysisConfig struct {
	// IncludePatterns specifies file patterns to include
	IncludePatterns []string `json:"include_patterns" mapstructure:"include_patterns" yaml:"include_patterns"`

	// ExcludePatterns specifies file patterns to exclude
	ExcludePatterns []string `json:"exclude_patterns" mapstructure:"exclude_patterns" yaml:"exclude_patterns"`

	// Recursive controls whether to analyze directories recursively
	Recursive bool `json:"recursive" mapstructure:"recursive" yaml:"recursive"`

	// FollowSymlinks controls whether to follow symbolic links
	FollowSymlinks bool `json:"follow_symlinks" mapstructure:"follow_symlinks" yaml:"follow_symlinks"`

	// RespectGitignore controls whether .gitignore rules filter collection
	RespectGitignore bool `json:"respect_gitignore" mapstructure:"respect_gitignore" yaml:"respect_gitignore"`
}

// PerformanceConfig holds parallel execution configuration
type PerformanceConfig struct {
	// MaxGoroutines limits concurrent file analyses, 0 uses the CPU count
	MaxGoroutines int `json:"max_goroutines" mapstructure:"max_goroutines" yaml:"max_goroutines"`

	// TimeoutSeconds bounds a whole analysis run, 0 uses the default
	TimeoutSeconds int `json:"timeout_seconds" mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Scoring: ScoringConfig{
			Weights: CategoryWeights{
				Efficiency:         DefaultEfficiencyWeight,
				ResourceManagement: DefaultResourceWeight,
				Quality:            DefaultQualityWeight,
				Security:           DefaultSecurityWeight,
			},
			GeneralPenalties: SeverityPenalties{
				Low:      15,
				Medium:   30,
				High:     40,
				Critical: 50,
			},
			SecurityPenalties: SeverityPenalties{
				Low:      5,
				Medium:   15,
				High:     30,
				Critical: 45,
			},
			NestingThreshold:    DefaultNestingThreshold,
			NestingPenalty:      DefaultNestingPenalty,
			WhileLoopPenalty:    DefaultWhileLoopPenalty,
			CommentBonus:        DefaultCommentBonus,
			CommentRatioTarget:  DefaultCommentRatioTarget,
			FlatScriptPenalty:   DefaultFlatScriptPenalty,
			FlatScriptLineLimit: DefaultFlatScriptLineLimit,
		},
		Carbon: CarbonConfig{
			Enabled:            true,
			CarbonIntensity:    DefaultCarbonIntensity,
			AssumedIterations:  DefaultAssumedIterations,
			FunctionCallCost:   0.5,
			WhileIterationCost: 2.0,
			ForIterationCost:   1.5,
			ImportCost:         0.3,
			BaseLineCost:       0.1,
		},
		Output: OutputConfig{
			Format:      "text",
			ShowDetails: false,
			SortBy:      "score",
			MinSeverity: "low",
		},
		Analysis: AnalysisConfig{
			IncludePatterns: []string{"**/*.py"},
			ExcludePatterns: []string{
				// Virtual environments and dependencies
				"venv",
				".venv",
				"env",
				"site-packages",
				// Caches
				"__pycache__",
				".mypy_cache",
				".pytest_cache",
				".tox",
				".cache",
				// Build outputs
				"build",
				"dist",
				"*.egg-info",
				// Version control
				".git",
			},
			Recursive:        true,
			FollowSymlinks:   false,
			RespectGitignore: true,
		},
		Performance: PerformanceConfig{
			MaxGoroutines:  0,
			TimeoutSeconds: 0,
		},
	}
}

// LoadConfig loads configuration from file or returns default config
func LoadConfig(configPath string) (*Config, error) {
	return LoadConfigWithTarget(configPath, "")
}

// LoadConfigWithTarget loads configuration with target path context
func LoadConfigWithTarget(configPath string, targetPath string) (*Config, error) {
	if configPath == "" {
		configPath = findDefaultConfig(targetPath)
	}
	return loadConfigFromFile(configPath)
}

// loadConfigFromFile reads and parses a configuration file
func loadConfigFromFile(configPath string) (*Config, error) {
	if configPath == "" {
		return DefaultConfig(), nil
	}

	// Create a new viper instance to avoid race conditions
	v := viper.New()
	config := DefaultConfig()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// searchConfigInDirectory searches for configuration files in a specific directory
func searchConfigInDirectory(dir string, candidates []string) string {
	for _, candidate := range candidates {
		path := filepath.Join(dir, candidate)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// findDefaultConfig looks for default configuration files in common locations.
// targetPath is the path being analyzed (a Python file or directory).
func findDefaultConfig(targetPath string) string {
	candidates := constants.ConfigFileCandidates

	// If targetPath is provided, search from there upward
	if targetPath != "" {
		absPath, err := filepath.Abs(targetPath)
		if err == nil {
			info, err := os.Stat(absPath)
			if err == nil && !info.IsDir() {
				absPath = filepath.Dir(absPath)
			}

			volume := filepath.VolumeName(absPath)
			for dir := absPath; ; dir = filepath.Dir(dir) {
				if config := searchConfigInDirectory(dir, candidates); config != "" {
					return config
				}

				parent := filepath.Dir(dir)
				if parent == dir ||
					dir == volume ||
					(volume != "" && dir == volume+string(filepath.Separator)) {
					break
				}
			}
		}
	}

	// Fallback to current directory
	if config := searchConfigInDirectory(".", candidates); config != "" {
		return config
	}

	// Check XDG config directory (Linux/Mac standard)
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		if config := searchConfigInDirectory(filepath.Join(xdgConfig, constants.ToolName), candidates); config != "" {
			return config
		}
	}

	// Check ~/.config/greenscan/ (XDG default)
	if home, err := os.UserHomeDir(); err == nil {
		configDir := filepath.Join(home, ".config", constants.ToolName)
		if config := searchConfigInDirectory(configDir, candidates); config != "" {
			return config
		}

		if config := searchConfigInDirectory(home, candidates); config != "" {
			return config
		}
	}

	// Check GREENSCAN_CONFIG environment variable as fallback
	if envConfig := os.Getenv(constants.ConfigEnvVar); envConfig != "" {
		if _, err := os.Stat(envConfig); err == nil {
			return envConfig
		}
	}

	return ""
}

// Validate validates the configuration values
func (c *Config) Validate() error {
	w := c.Scoring.Weights
	sum := w.Efficiency + w.ResourceManagement + w.Quality + w.Security
	if sum < 0.999 || sum > 1.001 {
		return fmt.Errorf("scoring.weights must sum to 1.0, got %.3f", sum)
	}
	if w.Efficiency < 0 || w.ResourceManagement < 0 || w.Quality < 0 || w.Security < 0 {
		return fmt.Errorf("scoring.weights must be non-negative")
	}

	if c.Scoring.NestingThreshold < 1 {
		return fmt.Errorf("scoring.nesting_threshold must be >= 1, got %d", c.Scoring.NestingThreshold)
	}

	if c.Scoring.CommentRatioTarget <= 0 || c.Scoring.CommentRatioTarget > 1 {
		return fmt.Errorf("scoring.comment_ratio_target must be in (0, 1], got %.3f", c.Scoring.CommentRatioTarget)
	}

	if c.Carbon.CarbonIntensity <= 0 {
		return fmt.Errorf("carbon.carbon_intensity must be > 0, got %.1f", c.Carbon.CarbonIntensity)
	}

	if c.Carbon.AssumedIterations < 1 {
		return fmt.Errorf("carbon.assumed_iterations must be >= 1, got %d", c.Carbon.AssumedIterations)
	}

	// Validate output format
	validFormats := map[string]bool{
		"text": true,
		"json": true,
		"yaml": true,
		"csv":  true,
		"html": true,
	}
	if !validFormats[c.Output.Format] {
		return fmt.Errorf("invalid output.format '%s', must be one of: text, json, yaml, csv, html", c.Output.Format)
	}

	// Validate sort options
	validSortBy := map[string]bool{
		"score":    true,
		"name":     true,
		"issues":   true,
		"severity": true,
	}
	if !validSortBy[c.Output.SortBy] {
		return fmt.Errorf("invalid output.sort_by '%s', must be one of: score, name, issues, severity", c.Output.SortBy)
	}

	validSeverity := map[string]bool{
		"low":      true,
		"medium":   true,
		"high":     true,
		"critical": true,
	}
	if !validSeverity[c.Output.MinSeverity] {
		return fmt.Errorf("invalid output.min_severity '%s', must be one of: low, medium, high, critical", c.Output.MinSeverity)
	}

	return nil
}

// SaveConfig writes a configuration to a YAML file
func SaveConfig(config *Config, path string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}

	return nil
}
