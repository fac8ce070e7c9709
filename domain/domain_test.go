package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestDomainErrorFormat(t *testing.T) {
	cause := fmt.Errorf("underlying failure")

	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "with cause",
			err:      NewDomainError(ErrCodeParseError, "failed to parse: main.py", cause),
			expected: "[PARSE_ERROR] failed to parse: main.py: underlying failure",
		},
		{
			name:     "without cause",
			err:      NewValidationError("no input files"),
			expected: "[INVALID_INPUT] no input files",
		},
		{
			name:     "unsupported format",
			err:      NewUnsupportedFormatError("xml"),
			expected: "[UNSUPPORTED_FORMAT] unsupported format: xml",
		},
		{
			name:     "file not found",
			err:      NewFileNotFoundError("missing.py", nil),
			expected: "[FILE_NOT_FOUND] file not found: missing.py",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Error() != tt.expected {
				t.Errorf("Error() = %q, expected %q", tt.err.Error(), tt.expected)
			}
		})
	}
}

func TestDomainErrorUnwrap(t *testing.T) {
	cause := fmt.Errorf("disk error")
	err := NewOutputError("cannot write report", cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}

	var domainErr DomainError
	if !errors.As(err, &domainErr) {
		t.Fatal("errors.As should extract DomainError")
	}
	if domainErr.Code != ErrCodeOutputError {
		t.Errorf("Code = %q, expected %q", domainErr.Code, ErrCodeOutputError)
	}
}

func TestSeverityRank(t *testing.T) {
	ordered := []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}
	for i := 1; i < len(ordered); i++ {
		if ordered[i].Rank() <= ordered[i-1].Rank() {
			t.Errorf("Rank(%s) = %d should exceed Rank(%s) = %d",
				ordered[i], ordered[i].Rank(), ordered[i-1], ordered[i-1].Rank())
		}
	}

	if Severity("bogus").Rank() != 0 {
		t.Errorf("Unknown severity should rank 0, got %d", Severity("bogus").Rank())
	}
}

func TestScoreRiskLevel(t *testing.T) {
	tests := []struct {
		score    float64
		expected RiskLevel
	}{
		{100, RiskLevelLow},
		{70, RiskLevelLow},
		{69, RiskLevelMedium},
		{40, RiskLevelMedium},
		{39, RiskLevelHigh},
		{0, RiskLevelHigh},
	}

	for _, tt := range tests {
		s := ScoreBreakdown{GreenScore: tt.score}
		if s.RiskLevel() != tt.expected {
			t.Errorf("RiskLevel(%v) = %s, expected %s", tt.score, s.RiskLevel(), tt.expected)
		}
	}
}
