package app

import (
	"context"
	"fmt"
	"os"

	"github.com/ludo-technologies/greenscan/domain"
)

// AnalyzeUseCase orchestrates the sustainability analysis workflow
type AnalyzeUseCase struct {
	service      domain.AnalysisService
	formatter    domain.OutputFormatter
	configLoader domain.ConfigurationLoader
	fileHelper   *FileHelper
}

// NewAnalyzeUseCase creates a new analyze use case
func NewAnalyzeUseCase(
	service domain.AnalysisService,
	formatter domain.OutputFormatter,
	configLoader domain.ConfigurationLoader,
) *AnalyzeUseCase {
	return &AnalyzeUseCase{
		service:      service,
		formatter:    formatter,
		configLoader: configLoader,
		fileHelper:   NewFileHelper(),
	}
}

// Execute performs the complete analysis workflow
func (uc *AnalyzeUseCase) Execute(ctx context.Context, req domain.AnalyzeRequest) error {
	// Validate input
	if err := uc.validateRequest(req); err != nil {
		return domain.NewInvalidInputError("invalid request", err)
	}

	// Load and merge configuration
	req = uc.resolveConfig(req)

	// Resolve file paths
	files, err := ResolveFilePaths(
		uc.fileHelper,
		req.Paths,
		req.Recursive,
		req.IncludePatterns,
		req.ExcludePatterns,
	)
	if err != nil {
		return domain.NewFileNotFoundError("failed to collect files", err)
	}

	if len(files) == 0 {
		return domain.NewInvalidInputError("no Python files found in the specified paths", nil)
	}

	// Update request with collected files
	req.Paths = files

	// Perform analysis
	response, err := uc.service.Analyze(ctx, req)
	if err != nil {
		return domain.NewAnalysisError("analysis failed", err)
	}

	// Write output
	writer := req.OutputWriter
	if req.OutputPath != "" {
		f, err := os.Create(req.OutputPath)
		if err != nil {
			return domain.NewOutputError("failed to create output file", err)
		}
		defer f.Close()
		writer = f
	}
	if writer == nil {
		writer = os.Stdout
	}

	if err := uc.formatter.Write(response, req.OutputFormat, writer); err != nil {
		return domain.NewOutputError("failed to write output", err)
	}

	return nil
}

// Analyze runs the analysis without writing output, returning the response
// for callers that post-process results (for example threshold checks).
func (uc *AnalyzeUseCase) Analyze(ctx context.Context, req domain.AnalyzeRequest) (*domain.AnalyzeResponse, error) {
	if err := uc.validateRequest(req); err != nil {
		return nil, domain.NewInvalidInputError("invalid request", err)
	}

	req = uc.resolveConfig(req)

	files, err := ResolveFilePaths(
		uc.fileHelper,
		req.Paths,
		req.Recursive,
		req.IncludePatterns,
		req.ExcludePatterns,
	)
	if err != nil {
		return nil, domain.NewFileNotFoundError("failed to collect files", err)
	}
	if len(files) == 0 {
		return nil, domain.NewInvalidInputError("no Python files found in the specified paths", nil)
	}
	req.Paths = files

	return uc.service.Analyze(ctx, req)
}

// AnalyzeFile analyzes a single file
func (uc *AnalyzeUseCase) AnalyzeFile(ctx context.Context, filePath string, req domain.AnalyzeRequest) (*domain.AnalyzeResponse, error) {
	// Validate file
	if !uc.fileHelper.IsValidPythonFile(filePath) {
		return nil, domain.NewInvalidInputError(fmt.Sprintf("not a valid Python file: %s", filePath), nil)
	}

	// Check if file exists
	exists, err := uc.fileHelper.FileExists(filePath)
	if err != nil {
		return nil, domain.NewFileNotFoundError(filePath, err)
	}
	if !exists {
		return nil, domain.NewFileNotFoundError(filePath, fmt.Errorf("file does not exist"))
	}

	// Update request with single file path
	req.Paths = []string{filePath}

	return uc.service.Analyze(ctx, req)
}

// resolveConfig layers the request on top of file configuration when a
// configuration loader is available.
func (uc *AnalyzeUseCase) resolveConfig(req domain.AnalyzeRequest) domain.AnalyzeRequest {
	if uc.configLoader == nil {
		return req
	}

	var base *domain.AnalyzeRequest
	if req.ConfigPath != "" {
		loaded, err := uc.configLoader.LoadConfig(req.ConfigPath)
		if err == nil {
			base = loaded
		}
	}
	if base == nil {
		base = uc.configLoader.LoadDefaultConfig()
	}
	if base == nil {
		return req
	}

	merged := uc.configLoader.MergeConfig(base, &req)
	if merged == nil {
		return req
	}
	return *merged
}

// validateRequest validates the analyze request
func (uc *AnalyzeUseCase) validateRequest(req domain.AnalyzeRequest) error {
	if len(req.Paths) == 0 {
		return fmt.Errorf("no input paths specified")
	}

	switch req.OutputFormat {
	case "", domain.OutputFormatText, domain.OutputFormatJSON, domain.OutputFormatYAML,
		domain.OutputFormatCSV, domain.OutputFormatHTML:
	default:
		return fmt.Errorf("unsupported output format: %s", req.OutputFormat)
	}

	if req.MinSeverity != "" && req.MinSeverity.Rank() == 0 {
		return fmt.Errorf("unknown severity: %s", req.MinSeverity)
	}

	return nil
}

// AnalyzeUseCaseBuilder provides a builder pattern for creating AnalyzeUseCase
type AnalyzeUseCaseBuilder struct {
	service      domain.AnalysisService
	formatter    domain.OutputFormatter
	configLoader domain.ConfigurationLoader
	fileHelper   *FileHelper
}

// NewAnalyzeUseCaseBuilder creates a new builder
func NewAnalyzeUseCaseBuilder() *AnalyzeUseCaseBuilder {
	return &AnalyzeUseCaseBuilder{}
}

// WithService sets the analysis service
func (b *AnalyzeUseCaseBuilder) WithService(service domain.AnalysisService) *AnalyzeUseCaseBuilder {
	b.service = service
	return b
}

// WithFormatter sets the output formatter
func (b *AnalyzeUseCaseBuilder) WithFormatter(formatter domain.OutputFormatter) *AnalyzeUseCaseBuilder {
	b.formatter = formatter
	return b
}

// WithConfigLoader sets the configuration loader
func (b *AnalyzeUseCaseBuilder) WithConfigLoader(loader domain.ConfigurationLoader) *AnalyzeUseCaseBuilder {
	b.configLoader = loader
	return b
}

// WithFileHelper sets the file helper
func (b *AnalyzeUseCaseBuilder) WithFileHelper(fh *FileHelper) *AnalyzeUseCaseBuilder {
	b.fileHelper = fh
	return b
}

// Build creates the AnalyzeUseCase with the configured dependencies
func (b *AnalyzeUseCaseBuilder) Build() (*AnalyzeUseCase, error) {
	if b.service == nil {
		return nil, fmt.Errorf("analysis service is required")
	}
	if b.formatter == nil {
		return nil, fmt.Errorf("output formatter is required")
	}

	uc := &AnalyzeUseCase{
		service:      b.service,
		formatter:    b.formatter,
		configLoader: b.configLoader,
		fileHelper:   b.fileHelper,
	}

	if uc.fileHelper == nil {
		uc.fileHelper = NewFileHelper()
	}

	return uc, nil
}
