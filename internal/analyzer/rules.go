package analyzer

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/ludo-technologies/greenscan/domain"
	"github.com/ludo-technologies/greenscan/internal/config"
	"github.com/ludo-technologies/greenscan/internal/parser"
)

// RuleContext carries everything a rule predicate may inspect. All fields
// are read-only during rule evaluation.
type RuleContext struct {
	Unit    *parser.SourceUnit
	AST     *parser.Node
	Lines   []string
	Metrics domain.MetricSet
	Scoring *config.ScoringConfig
}

// NewRuleContext prepares a rule context for one source unit
func NewRuleContext(unit *parser.SourceUnit, metrics domain.MetricSet, scoring *config.ScoringConfig) *RuleContext {
	return &RuleContext{
		Unit:    unit,
		AST:     unit.AST,
		Lines:   strings.Split(unit.Source, "\n"),
		Metrics: metrics,
		Scoring: scoring,
	}
}

// Finding is a single rule hit before it is stamped into an Issue
type Finding struct {
	// Line is the 1-based source line, 0 for file-level findings
	Line int

	// Message describes this specific occurrence
	Message string
}

// Rule is one entry in the detection catalog. Detect inspects the context
// and returns zero or more findings; it must not mutate the context.
type Rule struct {
	ID       string
	Category domain.IssueCategory
	Severity domain.Severity
	Detect   func(rc *RuleContext) []Finding
}

// FaultHook is invoked when a rule panics during evaluation. The rule is
// skipped for the run and contributes no issues.
type FaultHook func(ruleID string, recovered interface{})

// RuleEngine applies an ordered, read-only rule catalog to a source unit
type RuleEngine struct {
	rules []Rule
	fault FaultHook
}

// NewRuleEngine creates an engine with the default pattern rule catalog
func NewRuleEngine() *RuleEngine {
	return &RuleEngine{rules: PatternRules()}
}

// NewRuleEngineWithRules creates an engine with a custom catalog
func NewRuleEngineWithRules(rules []Rule) *RuleEngine {
	return &RuleEngine{rules: rules}
}

// SetFaultHook installs a hook observing skipped rules
func (e *RuleEngine) SetFaultHook(hook FaultHook) {
	e.fault = hook
}

// Detect runs every rule in catalog order and returns the stamped issues.
// Within one rule, issues are ordered by ascending line. A panicking rule
// is isolated: it is skipped and the remaining rules still run.
func (e *RuleEngine) Detect(rc *RuleContext) []domain.Issue {
	issues := []domain.Issue{}
	for _, rule := range e.rules {
		findings := e.evaluate(rule, rc)
		sort.SliceStable(findings, func(i, j int) bool {
			return findings[i].Line < findings[j].Line
		})
		for _, f := range findings {
			issues = append(issues, domain.Issue{
				RuleID:   rule.ID,
				Category: rule.Category,
				Severity: rule.Severity,
				Line:     f.Line,
				Message:  f.Message,
			})
		}
	}
	return issues
}

// evaluate runs a single rule with panic isolation
func (e *RuleEngine) evaluate(rule Rule, rc *RuleContext) (findings []Finding) {
	defer func() {
		if r := recover(); r != nil {
			findings = nil
			if e.fault != nil {
				e.fault(rule.ID, r)
			}
		}
	}()
	return rule.Detect(rc)
}

// Textual rule patterns
var (
	rangeLenPattern   = regexp.MustCompile(`for\s+\w+\s+in\s+range\s*\(\s*len\s*\(`)
	listRangePattern  = regexp.MustCompile(`list\s*\(\s*range\s*\(`)
	importLinePattern = regexp.MustCompile(`^\s*(import|from)\s`)
)

// PatternRules returns the pattern rule catalog. The slice order is the
// evaluation order and part of the output contract; append new rules at
// the end.
func PatternRules() []Rule {
	return []Rule{
		{
			ID:       "range-len",
			Category: domain.CategoryEfficiency,
			Severity: domain.SeverityMedium,
			Detect:   detectRangeLen,
		},
		{
			ID:       "unused-import",
			Category: domain.CategoryQuality,
			Severity: domain.SeverityLow,
			Detect:   detectUnusedImports,
		},
		{
			ID:       "while-loop-as-counter",
			Category: domain.CategoryEfficiency,
			Severity: domain.SeverityLow,
			Detect:   detectWhileAsCounter,
		},
		{
			ID:       "string-concat-in-loop",
			Category: domain.CategoryEfficiency,
			Severity: domain.SeverityMedium,
			Detect:   detectStringConcatInLoop,
		},
		{
			ID:       "deep-nesting",
			Category: domain.CategoryQuality,
			Severity: domain.SeverityMedium,
			Detect:   detectDeepNesting,
		},
		{
			ID:       "bare-except",
			Category: domain.CategoryQuality,
			Severity: domain.SeverityMedium,
			Detect:   detectBareExcept,
		},
		{
			ID:       "global-mutation",
			Category: domain.CategoryResource,
			Severity: domain.SeverityLow,
			Detect:   detectGlobalMutation,
		},
		{
			ID:       "repeated-attribute-lookup",
			Category: domain.CategoryResource,
			Severity: domain.SeverityLow,
			Detect:   detectRepeatedAttributeLookup,
		},
		{
			ID:       "list-range",
			Category: domain.CategoryEfficiency,
			Severity: domain.SeverityLow,
			Detect:   detectListRange,
		},
		{
			ID:       "open-without-with",
			Category: domain.CategoryResource,
			Severity: domain.SeverityMedium,
			Detect:   detectOpenWithoutWith,
		},
	}
}

// detectRangeLen flags loops written as "for i in range(len(x))"
func detectRangeLen(rc *RuleContext) []Finding {
	var findings []Finding
	for i, line := range rc.Lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") {
			continue
		}
		if rangeLenPattern.MatchString(line) {
			findings = append(findings, Finding{
				Line:    i + 1,
				Message: "loop iterates over range(len(...)), iterate the sequence directly or use enumerate()",
			})
		}
	}
	return findings
}

// detectListRange flags eager materialization of ranges via list(range(...))
func detectListRange(rc *RuleContext) []Finding {
	var findings []Finding
	for i, line := range rc.Lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") {
			continue
		}
		if listRangePattern.MatchString(line) {
			findings = append(findings, Finding{
				Line:    i + 1,
				Message: "list(range(...)) materializes the whole range, iterate the range lazily",
			})
		}
	}
	return findings
}

// detectUnusedImports flags imported names never referenced outside import
// statements
func detectUnusedImports(rc *RuleContext) []Finding {
	if rc.AST == nil {
		return nil
	}

	var imports []parser.ImportedName
	rc.AST.Walk(func(n *parser.Node) bool {
		if n.Type == parser.NodeImport || n.Type == parser.NodeImportFrom {
			for _, imp := range n.Names {
				if imp.Name == "*" {
					continue
				}
				imports = append(imports, imp)
			}
		}
		return true
	})
	if len(imports) == 0 {
		return nil
	}

	// Scan only non-import lines so the import itself does not count as a use
	var codeLines []string
	for _, line := range rc.Lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") || importLinePattern.MatchString(line) {
			continue
		}
		codeLines = append(codeLines, line)
	}

	var findings []Finding
	for _, imp := range imports {
		local := imp.Local()
		if local == "" {
			continue
		}
		usage := regexp.MustCompile(`\b` + regexp.QuoteMeta(local) + `\b`)
		used := false
		for _, line := range codeLines {
			if usage.MatchString(line) {
				used = true
				break
			}
		}
		if !used {
			findings = append(findings, Finding{
				Line:    imp.Line,
				Message: fmt.Sprintf("imported name %q is never used", local),
			})
		}
	}
	return findings
}

// detectWhileAsCounter flags while loops that compare a counter variable
// and manually increment it in the body
func detectWhileAsCounter(rc *RuleContext) []Finding {
	if rc.AST == nil {
		return nil
	}

	var findings []Finding
	rc.AST.Walk(func(n *parser.Node) bool {
		if n.Type != parser.NodeWhile || n.Test == nil {
			return true
		}
		counter := comparedName(n.Test)
		if counter == "" {
			return true
		}
		if incrementsName(n.Body, counter) {
			findings = append(findings, Finding{
				Line:    n.Location.StartLine,
				Message: fmt.Sprintf("while loop counts %q manually, a for loop over a range or iterator is cheaper", counter),
			})
		}
		return true
	})
	return findings
}

// comparedName returns the variable name when the condition is a simple
// comparison with a name on the left, "" otherwise
func comparedName(test *parser.Node) string {
	if test.Type == parser.NodeCompare && test.Left != nil && test.Left.Type == parser.NodeName {
		return test.Left.Name
	}
	return ""
}

// incrementsName reports whether any statement in the body increments the
// named variable, either via "+=" or "name = name + ..."
func incrementsName(body []*parser.Node, name string) bool {
	for _, stmt := range body {
		switch stmt.Type {
		case parser.NodeAugAssign:
			if stmt.Operator == "+=" && stmt.Target != nil &&
				stmt.Target.Type == parser.NodeName && stmt.Target.Name == name {
				return true
			}
		case parser.NodeAssign:
			if stmt.Target != nil && stmt.Target.Type == parser.NodeName && stmt.Target.Name == name &&
				stmt.Value != nil && stmt.Value.Type == parser.NodeBinOp &&
				stmt.Value.Operator == "+" &&
				stmt.Value.Left != nil && stmt.Value.Left.Type == parser.NodeName &&
				stmt.Value.Left.Name == name {
				return true
			}
		}
	}
	return false
}

// detectStringConcatInLoop flags "+=" string accumulation inside loop bodies
func detectStringConcatInLoop(rc *RuleContext) []Finding {
	if rc.AST == nil {
		return nil
	}

	var findings []Finding
	rc.AST.Walk(func(n *parser.Node) bool {
		if !n.IsLoop() {
			return true
		}
		for _, stmt := range loopBodyStatements(n) {
			if stmt.Type != parser.NodeAugAssign || stmt.Operator != "+=" {
				continue
			}
			if stmt.Value != nil && containsStringLiteral(stmt.Value) {
				findings = append(findings, Finding{
					Line:    stmt.Location.StartLine,
					Message: "string built up with += inside a loop, collect parts and join once",
				})
			}
		}
		return true
	})
	return findings
}

// loopBodyStatements flattens a loop body including nested non-loop blocks,
// stopping at nested loops so each loop reports its own body
func loopBodyStatements(loop *parser.Node) []*parser.Node {
	var stmts []*parser.Node
	var visit func(nodes []*parser.Node)
	visit = func(nodes []*parser.Node) {
		for _, stmt := range nodes {
			if stmt == nil || stmt.IsLoop() {
				continue
			}
			stmts = append(stmts, stmt)
			visit(stmt.Body)
			visit(stmt.OrElse)
			visit(stmt.Handlers)
			visit(stmt.FinalBody)
		}
	}
	visit(loop.Body)
	return stmts
}

// containsStringLiteral reports whether the expression subtree carries a
// string literal operand
func containsStringLiteral(n *parser.Node) bool {
	if n == nil {
		return false
	}
	found := false
	n.Walk(func(node *parser.Node) bool {
		if node.IsStringLiteral() {
			found = true
			return false
		}
		return true
	})
	return found
}

// detectDeepNesting reports a single file-level finding when the maximum
// nesting depth exceeds the configured threshold
func detectDeepNesting(rc *RuleContext) []Finding {
	threshold := config.DefaultNestingThreshold
	if rc.Scoring != nil && rc.Scoring.NestingThreshold > 0 {
		threshold = rc.Scoring.NestingThreshold
	}
	if rc.Metrics.MaxNestingDepth <= threshold {
		return nil
	}
	return []Finding{{
		Line:    0,
		Message: fmt.Sprintf("maximum nesting depth %d exceeds %d, extract helper functions", rc.Metrics.MaxNestingDepth, threshold),
	}}
}

// detectBareExcept flags exception handlers without a type filter
func detectBareExcept(rc *RuleContext) []Finding {
	if rc.AST == nil {
		return nil
	}

	var findings []Finding
	rc.AST.Walk(func(n *parser.Node) bool {
		if n.Type == parser.NodeExcept && n.Test == nil {
			findings = append(findings, Finding{
				Line:    n.Location.StartLine,
				Message: "bare except swallows every exception, catch specific exception types",
			})
		}
		return true
	})
	return findings
}

// detectGlobalMutation flags assignments to names declared global inside a
// function body
func detectGlobalMutation(rc *RuleContext) []Finding {
	if rc.AST == nil {
		return nil
	}

	var findings []Finding
	rc.AST.Walk(func(n *parser.Node) bool {
		if !n.IsFunction() {
			return true
		}

		declared := map[string]bool{}
		for _, stmt := range n.Body {
			if stmt.Type == parser.NodeGlobal {
				for _, name := range stmt.Names {
					declared[name.Name] = true
				}
			}
		}
		if len(declared) == 0 {
			return true
		}

		for _, stmt := range functionStatements(n) {
			if stmt.Type != parser.NodeAssign && stmt.Type != parser.NodeAugAssign && stmt.Type != parser.NodeAnnAssign {
				continue
			}
			if stmt.Target != nil && stmt.Target.Type == parser.NodeName && declared[stmt.Target.Name] {
				findings = append(findings, Finding{
					Line:    stmt.Location.StartLine,
					Message: fmt.Sprintf("global %q is mutated inside a function, pass state explicitly", stmt.Target.Name),
				})
			}
		}
		return true
	})
	return findings
}

// functionStatements flattens a function body, stopping at nested function
// definitions
func functionStatements(fn *parser.Node) []*parser.Node {
	var stmts []*parser.Node
	var visit func(nodes []*parser.Node)
	visit = func(nodes []*parser.Node) {
		for _, stmt := range nodes {
			if stmt == nil || stmt.IsFunction() {
				continue
			}
			stmts = append(stmts, stmt)
			visit(stmt.Body)
			visit(stmt.OrElse)
			visit(stmt.Handlers)
			visit(stmt.FinalBody)
		}
	}
	visit(fn.Body)
	return stmts
}

// detectRepeatedAttributeLookup flags a dotted path evaluated more than
// once inside the same loop body
func detectRepeatedAttributeLookup(rc *RuleContext) []Finding {
	if rc.AST == nil {
		return nil
	}

	var findings []Finding
	rc.AST.Walk(func(n *parser.Node) bool {
		if !n.IsLoop() {
			return true
		}

		counts := map[string]int{}
		for _, stmt := range n.Body {
			stmt.Walk(func(node *parser.Node) bool {
				// Nested loops report their own bodies
				if node.IsLoop() {
					return false
				}
				if node.Type == parser.NodeAttribute {
					if path, ok := node.DottedPath(); ok {
						counts[path]++
						// Do not double-count the inner path of a.b.c
						return false
					}
				}
				return true
			})
		}

		var repeated []string
		for path, count := range counts {
			if count >= 2 {
				repeated = append(repeated, path)
			}
		}
		sort.Strings(repeated)
		for _, path := range repeated {
			findings = append(findings, Finding{
				Line:    n.Location.StartLine,
				Message: fmt.Sprintf("%s is looked up on every iteration, hoist it before the loop", path),
			})
		}
		return true
	})
	return findings
}

// detectOpenWithoutWith flags open() calls whose handle is not managed by
// a with statement
func detectOpenWithoutWith(rc *RuleContext) []Finding {
	if rc.AST == nil {
		return nil
	}

	// Collect open() calls that appear inside a with clause; those are
	// managed and must not be flagged
	managed := map[parser.Location]bool{}
	rc.AST.Walk(func(n *parser.Node) bool {
		if n.Type != parser.NodeWith {
			return true
		}
		for _, clause := range n.Children {
			clause.Walk(func(node *parser.Node) bool {
				if isOpenCall(node) {
					managed[node.Location] = true
				}
				return true
			})
		}
		return true
	})

	var findings []Finding
	rc.AST.Walk(func(n *parser.Node) bool {
		if isOpenCall(n) && !managed[n.Location] {
			findings = append(findings, Finding{
				Line:    n.Location.StartLine,
				Message: "open() without a with statement risks leaking the file handle",
			})
		}
		return true
	})
	return findings
}

func isOpenCall(n *parser.Node) bool {
	return n != nil && n.Type == parser.NodeCall &&
		n.Func != nil && n.Func.Type == parser.NodeName && n.Func.Name == "open"
}
