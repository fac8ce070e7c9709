package app

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/ludo-technologies/greenscan/domain"
)

// stubAnalysisService records the request it receives and returns a canned
// response
type stubAnalysisService struct {
	lastRequest domain.AnalyzeRequest
	response    *domain.AnalyzeResponse
	err         error
}

func (s *stubAnalysisService) Analyze(ctx context.Context, req domain.AnalyzeRequest) (*domain.AnalyzeResponse, error) {
	s.lastRequest = req
	if s.err != nil {
		return nil, s.err
	}
	if s.response != nil {
		return s.response, nil
	}
	return &domain.AnalyzeResponse{
		Summary: domain.AnalyzeSummary{FilesAnalyzed: len(req.Paths)},
	}, nil
}

func (s *stubAnalysisService) AnalyzeSource(ctx context.Context, filePath string, source string) (*domain.AnalysisResult, error) {
	return &domain.AnalysisResult{FilePath: filePath}, nil
}

// stubFormatter writes a fixed marker so tests can observe the write path
type stubFormatter struct {
	lastFormat domain.OutputFormat
	err        error
}

func (f *stubFormatter) Format(response *domain.AnalyzeResponse, format domain.OutputFormat) (string, error) {
	return "formatted", f.err
}

func (f *stubFormatter) Write(response *domain.AnalyzeResponse, format domain.OutputFormat, writer io.Writer) error {
	f.lastFormat = format
	if f.err != nil {
		return f.err
	}
	_, err := writer.Write([]byte("formatted\n"))
	return err
}

func newTestUseCase(service domain.AnalysisService, formatter domain.OutputFormatter) *AnalyzeUseCase {
	return NewAnalyzeUseCase(service, formatter, nil)
}

func TestExecuteWritesOutput(t *testing.T) {
	dir := t.TempDir()
	populateTree(t, dir, map[string]string{"a.py": "x = 1\n", "b.py": "y = 2\n"})

	service := &stubAnalysisService{}
	formatter := &stubFormatter{}
	var out bytes.Buffer

	err := newTestUseCase(service, formatter).Execute(context.Background(), domain.AnalyzeRequest{
		Paths:        []string{dir},
		OutputFormat: domain.OutputFormatJSON,
		OutputWriter: &out,
		Recursive:    true,
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if len(service.lastRequest.Paths) != 2 {
		t.Errorf("Service received %d paths, expected 2", len(service.lastRequest.Paths))
	}
	if formatter.lastFormat != domain.OutputFormatJSON {
		t.Errorf("Formatter received format %s, expected json", formatter.lastFormat)
	}
	if out.String() != "formatted\n" {
		t.Errorf("Output = %q, expected the formatted marker", out.String())
	}
}

func TestExecuteWritesToOutputPath(t *testing.T) {
	dir := t.TempDir()
	populateTree(t, dir, map[string]string{"a.py": "x = 1\n"})
	outPath := filepath.Join(dir, "report.html")

	err := newTestUseCase(&stubAnalysisService{}, &stubFormatter{}).Execute(context.Background(), domain.AnalyzeRequest{
		Paths:        []string{filepath.Join(dir, "a.py")},
		OutputFormat: domain.OutputFormatHTML,
		OutputPath:   outPath,
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	content, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("Output file not written: %v", err)
	}
	if string(content) != "formatted\n" {
		t.Errorf("Output file content = %q", string(content))
	}
}

func TestExecuteValidation(t *testing.T) {
	uc := newTestUseCase(&stubAnalysisService{}, &stubFormatter{})

	tests := []struct {
		name string
		req  domain.AnalyzeRequest
	}{
		{
			name: "no paths",
			req:  domain.AnalyzeRequest{OutputFormat: domain.OutputFormatText},
		},
		{
			name: "bad format",
			req:  domain.AnalyzeRequest{Paths: []string{"a.py"}, OutputFormat: "xml"},
		},
		{
			name: "bad severity",
			req: domain.AnalyzeRequest{
				Paths:        []string{"a.py"},
				OutputFormat: domain.OutputFormatText,
				MinSeverity:  "urgent",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := uc.Execute(context.Background(), tt.req)
			if err == nil {
				t.Fatal("Expected a validation error")
			}
			var domainErr domain.DomainError
			if !errors.As(err, &domainErr) || domainErr.Code != domain.ErrCodeInvalidInput {
				t.Errorf("Expected INVALID_INPUT, got %v", err)
			}
		})
	}
}

func TestExecuteNoPythonFiles(t *testing.T) {
	dir := t.TempDir()
	populateTree(t, dir, map[string]string{"notes.txt": "not python\n"})

	err := newTestUseCase(&stubAnalysisService{}, &stubFormatter{}).Execute(context.Background(), domain.AnalyzeRequest{
		Paths:        []string{dir},
		OutputFormat: domain.OutputFormatText,
		Recursive:    true,
	})
	if err == nil {
		t.Fatal("Expected an error when no Python files are found")
	}

	var domainErr domain.DomainError
	if !errors.As(err, &domainErr) || domainErr.Code != domain.ErrCodeInvalidInput {
		t.Errorf("Expected INVALID_INPUT, got %v", err)
	}
}

func TestExecuteServiceFailure(t *testing.T) {
	dir := t.TempDir()
	populateTree(t, dir, map[string]string{"a.py": "x = 1\n"})

	service := &stubAnalysisService{err: errors.New("backend down")}
	err := newTestUseCase(service, &stubFormatter{}).Execute(context.Background(), domain.AnalyzeRequest{
		Paths:        []string{filepath.Join(dir, "a.py")},
		OutputFormat: domain.OutputFormatText,
	})
	if err == nil {
		t.Fatal("Expected the service error to propagate")
	}

	var domainErr domain.DomainError
	if !errors.As(err, &domainErr) || domainErr.Code != domain.ErrCodeAnalysisError {
		t.Errorf("Expected ANALYSIS_ERROR, got %v", err)
	}
}

func TestAnalyzeReturnsResponseWithoutWriting(t *testing.T) {
	dir := t.TempDir()
	populateTree(t, dir, map[string]string{"a.py": "x = 1\n"})

	resp, err := newTestUseCase(&stubAnalysisService{}, &stubFormatter{}).Analyze(context.Background(), domain.AnalyzeRequest{
		Paths:        []string{filepath.Join(dir, "a.py")},
		OutputFormat: domain.OutputFormatText,
	})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if resp.Summary.FilesAnalyzed != 1 {
		t.Errorf("FilesAnalyzed = %d, expected 1", resp.Summary.FilesAnalyzed)
	}
}

func TestAnalyzeFileRejectsNonPython(t *testing.T) {
	uc := newTestUseCase(&stubAnalysisService{}, &stubFormatter{})

	_, err := uc.AnalyzeFile(context.Background(), "script.sh", domain.AnalyzeRequest{})
	if err == nil {
		t.Fatal("Expected an error for a non-Python file")
	}

	var domainErr domain.DomainError
	if !errors.As(err, &domainErr) || domainErr.Code != domain.ErrCodeInvalidInput {
		t.Errorf("Expected INVALID_INPUT, got %v", err)
	}
}

func TestAnalyzeFileMissing(t *testing.T) {
	uc := newTestUseCase(&stubAnalysisService{}, &stubFormatter{})

	_, err := uc.AnalyzeFile(context.Background(), filepath.Join(t.TempDir(), "gone.py"), domain.AnalyzeRequest{})
	if err == nil {
		t.Fatal("Expected an error for a missing file")
	}

	var domainErr domain.DomainError
	if !errors.As(err, &domainErr) || domainErr.Code != domain.ErrCodeFileNotFound {
		t.Errorf("Expected FILE_NOT_FOUND, got %v", err)
	}
}

func TestBuilderRequiresServiceAndFormatter(t *testing.T) {
	if _, err := NewAnalyzeUseCaseBuilder().Build(); err == nil {
		t.Error("Build without a service should fail")
	}

	if _, err := NewAnalyzeUseCaseBuilder().WithService(&stubAnalysisService{}).Build(); err == nil {
		t.Error("Build without a formatter should fail")
	}

	uc, err := NewAnalyzeUseCaseBuilder().
		WithService(&stubAnalysisService{}).
		WithFormatter(&stubFormatter{}).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if uc.fileHelper == nil {
		t.Error("Build should supply a default file helper")
	}
}
