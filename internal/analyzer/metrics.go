package analyzer

import (
	"strings"

	"github.com/ludo-technologies/greenscan/domain"
	"github.com/ludo-technologies/greenscan/internal/parser"
)

// MetricsCollector computes structural metrics from a parsed source unit
type MetricsCollector struct{}

// NewMetricsCollector creates a new metrics collector
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{}
}

// Collect walks the AST and the raw source and returns the metric set.
// A nil AST yields the zero MetricSet.
func (c *MetricsCollector) Collect(unit *parser.SourceUnit) domain.MetricSet {
	var m domain.MetricSet
	if unit == nil || unit.AST == nil {
		return m
	}

	c.collectASTMetrics(unit.AST, &m)
	c.collectLineMetrics(unit.Source, &m)
	m.MaxNestingDepth = maxNestingDepth(unit.AST, 0)

	return m
}

func (c *MetricsCollector) collectASTMetrics(root *parser.Node, m *domain.MetricSet) {
	root.Walk(func(n *parser.Node) bool {
		switch n.Type {
		case parser.NodeFunctionDef, parser.NodeAsyncFunctionDef:
			m.FunctionCount++
		case parser.NodeClassDef:
			m.ClassCount++
		case parser.NodeImport, parser.NodeImportFrom:
			m.ImportCount += len(n.Names)
		case parser.NodeFor:
			m.ForLoopCount++
			m.LoopCount++
		case parser.NodeWhile:
			m.WhileLoopCount++
			m.LoopCount++
		}
		return true
	})
}

// collectLineMetrics counts source lines and the share of comment-only
// lines among all lines
func (c *MetricsCollector) collectLineMetrics(source string, m *domain.MetricSet) {
	lines := strings.Split(source, "\n")

	// A trailing newline produces one empty trailing element, not a line
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	m.LineCount = len(lines)

	comments := 0
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			comments++
		}
	}
	if m.LineCount > 0 {
		m.CommentRatio = float64(comments) / float64(m.LineCount)
	}
}

// maxNestingDepth returns the deepest chain of nested compound statements.
// The module itself does not count as a level.
func maxNestingDepth(n *parser.Node, depth int) int {
	if n == nil {
		return depth
	}

	current := depth
	if n.IsCompoundBlock() {
		current = depth + 1
	}

	deepest := current
	visit := func(child *parser.Node) {
		if d := maxNestingDepth(child, current); d > deepest {
			deepest = d
		}
	}

	for _, child := range n.Body {
		visit(child)
	}
	for _, child := range n.OrElse {
		visit(child)
	}
	for _, child := range n.Handlers {
		visit(child)
	}
	for _, child := range n.FinalBody {
		visit(child)
	}
	for _, child := range n.Children {
		visit(child)
	}

	return deepest
}
