package analyzer

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ludo-technologies/greenscan/domain"
	"github.com/ludo-technologies/greenscan/internal/parser"
)

// NewSecurityEngine creates an engine with the security rule catalog. The
// engine shares the pattern engine plumbing but feeds the isolated
// security score pool.
func NewSecurityEngine() *RuleEngine {
	return &RuleEngine{rules: SecurityRules()}
}

var (
	credentialNamePattern = regexp.MustCompile(`(?i)(password|passwd|secret|token|api_?key|private_?key)`)
	sqlExecutePattern     = regexp.MustCompile(`execute\s*\(`)
	sqlDynamicPattern     = regexp.MustCompile(`%s|%d|\.format\s*\(|f["']`)
	debugModePattern      = regexp.MustCompile(`\bdebug\s*=\s*True\b`)
	weakRandomPattern     = regexp.MustCompile(`\brandom\.(random|randint|choice|randrange|getrandbits)\s*\(`)
)

// shellSinks are dotted call paths that hand a string to a shell
var shellSinks = map[string]bool{
	"os.system":               true,
	"os.popen":                true,
	"subprocess.run":          true,
	"subprocess.call":         true,
	"subprocess.check_call":   true,
	"subprocess.check_output": true,
	"subprocess.Popen":        true,
}

// deserializationSinks are dotted call paths that deserialize arbitrary
// object graphs
var deserializationSinks = map[string]bool{
	"pickle.load":      true,
	"pickle.loads":     true,
	"marshal.load":     true,
	"marshal.loads":    true,
	"shelve.open":      true,
	"yaml.load":        true,
	"yaml.unsafe_load": true,
}

// SecurityRules returns the security rule catalog. The slice order is the
// evaluation order, matching the pattern engine contract.
func SecurityRules() []Rule {
	return []Rule{
		{
			ID:       "eval-exec",
			Category: domain.CategorySecurity,
			Severity: domain.SeverityCritical,
			Detect:   detectEvalExec,
		},
		{
			ID:       "shell-injection",
			Category: domain.CategorySecurity,
			Severity: domain.SeverityCritical,
			Detect:   detectShellInjection,
		},
		{
			ID:       "hardcoded-credential",
			Category: domain.CategorySecurity,
			Severity: domain.SeverityHigh,
			Detect:   detectHardcodedCredential,
		},
		{
			ID:       "unsanitized-input",
			Category: domain.CategorySecurity,
			Severity: domain.SeverityCritical,
			Detect:   detectUnsanitizedInput,
		},
		{
			ID:       "insecure-deserialization",
			Category: domain.CategorySecurity,
			Severity: domain.SeverityHigh,
			Detect:   detectInsecureDeserialization,
		},
		{
			ID:       "path-traversal",
			Category: domain.CategorySecurity,
			Severity: domain.SeverityMedium,
			Detect:   detectPathTraversal,
		},
		{
			ID:       "sql-format-string",
			Category: domain.CategorySecurity,
			Severity: domain.SeverityHigh,
			Detect:   detectSQLFormatString,
		},
		{
			ID:       "weak-random-secret",
			Category: domain.CategorySecurity,
			Severity: domain.SeverityLow,
			Detect:   detectWeakRandomSecret,
		},
		{
			ID:       "debug-mode",
			Category: domain.CategorySecurity,
			Severity: domain.SeverityLow,
			Detect:   detectDebugMode,
		},
	}
}

// detectEvalExec flags calls to the dynamic code execution builtins
func detectEvalExec(rc *RuleContext) []Finding {
	if rc.AST == nil {
		return nil
	}

	var findings []Finding
	rc.AST.Walk(func(n *parser.Node) bool {
		if n.Type != parser.NodeCall || n.Func == nil {
			return true
		}
		if n.Func.Type == parser.NodeName && (n.Func.Name == "eval" || n.Func.Name == "exec") {
			findings = append(findings, Finding{
				Line:    n.Location.StartLine,
				Message: fmt.Sprintf("%s() executes arbitrary code, remove it or parse the input explicitly", n.Func.Name),
			})
		}
		return true
	})
	return findings
}

// detectShellInjection flags shell-sink calls with shell=True and a
// non-literal command argument
func detectShellInjection(rc *RuleContext) []Finding {
	if rc.AST == nil {
		return nil
	}

	var findings []Finding
	rc.AST.Walk(func(n *parser.Node) bool {
		if n.Type != parser.NodeCall || n.Func == nil {
			return true
		}

		path, ok := n.Func.DottedPath()
		if !ok || !shellSinks[path] {
			return true
		}

		// os.system and os.popen always go through the shell
		shell := path == "os.system" || path == "os.popen"
		for _, kw := range n.Keywords {
			if kw.Name == "shell" && kw.Value != nil &&
				kw.Value.Type == parser.NodeConstant && kw.Value.Raw == "True" {
				shell = true
			}
		}
		if !shell || len(n.Arguments) == 0 {
			return true
		}

		if !isLiteralExpression(n.Arguments[0]) {
			findings = append(findings, Finding{
				Line:    n.Location.StartLine,
				Message: fmt.Sprintf("%s runs a dynamically built command through the shell", path),
			})
		}
		return true
	})
	return findings
}

// isLiteralExpression reports whether the expression is a constant or a
// container of constants
func isLiteralExpression(n *parser.Node) bool {
	if n == nil {
		return false
	}
	switch n.Type {
	case parser.NodeConstant:
		return true
	case parser.NodeList, parser.NodeTuple:
		for _, child := range n.Children {
			if !isLiteralExpression(child) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// detectHardcodedCredential flags credential-named variables bound to
// string literals
func detectHardcodedCredential(rc *RuleContext) []Finding {
	if rc.AST == nil {
		return nil
	}

	var findings []Finding
	rc.AST.Walk(func(n *parser.Node) bool {
		if n.Type != parser.NodeAssign && n.Type != parser.NodeAnnAssign {
			return true
		}
		if n.Target == nil || n.Target.Type != parser.NodeName || n.Value == nil {
			return true
		}
		if !credentialNamePattern.MatchString(n.Target.Name) {
			return true
		}
		if n.Value.IsStringLiteral() && len(strings.Trim(n.Value.Raw, `"'`)) > 0 {
			findings = append(findings, Finding{
				Line:    n.Location.StartLine,
				Message: fmt.Sprintf("%q is assigned a literal value, load credentials from the environment or a secret store", n.Target.Name),
			})
		}
		return true
	})
	return findings
}

// detectUnsanitizedInput flags interactively sourced values flowing into
// eval/exec or shell sinks
func detectUnsanitizedInput(rc *RuleContext) []Finding {
	if rc.AST == nil {
		return nil
	}
	tainted := collectTaintedNames(rc.AST)

	var findings []Finding
	rc.AST.Walk(func(n *parser.Node) bool {
		if n.Type != parser.NodeCall || n.Func == nil {
			return true
		}

		sink := ""
		if n.Func.Type == parser.NodeName && (n.Func.Name == "eval" || n.Func.Name == "exec") {
			sink = n.Func.Name
		} else if path, ok := n.Func.DottedPath(); ok && shellSinks[path] {
			sink = path
		}
		if sink == "" {
			return true
		}

		for _, arg := range n.Arguments {
			if isInputCall(arg) || referencesTaintedName(arg, tainted) {
				findings = append(findings, Finding{
					Line:    n.Location.StartLine,
					Message: fmt.Sprintf("user input reaches %s without sanitization", sink),
				})
				break
			}
		}
		return true
	})
	return findings
}

// collectTaintedNames gathers names assigned from input() either directly
// or through a reassignment chain
func collectTaintedNames(root *parser.Node) map[string]bool {
	tainted := map[string]bool{}

	// Direct assignments first, then propagate through simple copies until
	// the set stops growing
	for {
		grew := false
		root.Walk(func(n *parser.Node) bool {
			if n.Type != parser.NodeAssign || n.Target == nil || n.Target.Type != parser.NodeName || n.Value == nil {
				return true
			}
			name := n.Target.Name
			if tainted[name] {
				return true
			}
			if isInputCall(n.Value) || referencesTaintedName(n.Value, tainted) {
				tainted[name] = true
				grew = true
			}
			return true
		})
		if !grew {
			break
		}
	}
	return tainted
}

func isInputCall(n *parser.Node) bool {
	if n == nil {
		return false
	}
	found := false
	n.Walk(func(node *parser.Node) bool {
		if node.Type == parser.NodeCall && node.Func != nil &&
			node.Func.Type == parser.NodeName && node.Func.Name == "input" {
			found = true
			return false
		}
		return true
	})
	return found
}

func referencesTaintedName(n *parser.Node, tainted map[string]bool) bool {
	if n == nil || len(tainted) == 0 {
		return false
	}
	found := false
	n.Walk(func(node *parser.Node) bool {
		if node.Type == parser.NodeName && tainted[node.Name] {
			found = true
			return false
		}
		return true
	})
	return found
}

// detectInsecureDeserialization flags unsafe deserialization calls on
// non-literal data
func detectInsecureDeserialization(rc *RuleContext) []Finding {
	if rc.AST == nil {
		return nil
	}

	var findings []Finding
	rc.AST.Walk(func(n *parser.Node) bool {
		if n.Type != parser.NodeCall || n.Func == nil {
			return true
		}
		path, ok := n.Func.DottedPath()
		if !ok || !deserializationSinks[path] {
			return true
		}
		if len(n.Arguments) > 0 && isLiteralExpression(n.Arguments[0]) {
			return true
		}
		findings = append(findings, Finding{
			Line:    n.Location.StartLine,
			Message: fmt.Sprintf("%s deserializes untrusted data, use a safe loader or a schema-checked format", path),
		})
		return true
	})
	return findings
}

// detectPathTraversal flags file paths built by concatenating an
// externally sourced value
func detectPathTraversal(rc *RuleContext) []Finding {
	if rc.AST == nil {
		return nil
	}
	tainted := collectTaintedNames(rc.AST)
	if len(tainted) == 0 {
		return nil
	}

	var findings []Finding
	rc.AST.Walk(func(n *parser.Node) bool {
		if !isOpenCall(n) || len(n.Arguments) == 0 {
			return true
		}
		arg := n.Arguments[0]
		if arg.Type == parser.NodeBinOp && arg.Operator == "+" && referencesTaintedName(arg, tainted) {
			findings = append(findings, Finding{
				Line:    n.Location.StartLine,
				Message: "file path is concatenated from user input, validate it against a base directory",
			})
		}
		return true
	})
	return findings
}

// detectSQLFormatString flags execute() calls whose statement is built
// with string formatting
func detectSQLFormatString(rc *RuleContext) []Finding {
	var findings []Finding
	for i, line := range rc.Lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") {
			continue
		}
		if sqlExecutePattern.MatchString(line) && sqlDynamicPattern.MatchString(line) {
			findings = append(findings, Finding{
				Line:    i + 1,
				Message: "SQL statement is built with string formatting, use parameterized queries",
			})
		}
	}
	return findings
}

// detectWeakRandomSecret flags the non-cryptographic random module feeding
// credential-named variables
func detectWeakRandomSecret(rc *RuleContext) []Finding {
	var findings []Finding
	for i, line := range rc.Lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") {
			continue
		}
		if weakRandomPattern.MatchString(line) && credentialNamePattern.MatchString(line) {
			findings = append(findings, Finding{
				Line:    i + 1,
				Message: "random is not cryptographically secure, use the secrets module for tokens",
			})
		}
	}
	return findings
}

// detectDebugMode flags debug=True left enabled
func detectDebugMode(rc *RuleContext) []Finding {
	var findings []Finding
	for i, line := range rc.Lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") {
			continue
		}
		if debugModePattern.MatchString(line) {
			findings = append(findings, Finding{
				Line:    i + 1,
				Message: "debug mode is enabled, disable it outside development",
			})
		}
	}
	return findings
}
