package analyzer

import "github.com/ludo-technologies/greenscan/domain"

// suggestion is the advisory text attached to a rule's findings
type suggestion struct {
	summary    string
	suggestion string
}

// suggestionCatalog maps rule IDs to fix advice. The catalog is purely
// editorial: it is never consulted for scoring.
var suggestionCatalog = map[string]suggestion{
	"range-len": {
		summary:    "Iterate sequences directly",
		suggestion: "Replace `for i in range(len(items))` with `for item in items`, or `for i, item in enumerate(items)` when the index is needed. Direct iteration avoids a redundant index lookup per element.",
	},
	"list-range": {
		summary:    "Keep ranges lazy",
		suggestion: "Drop the `list(...)` wrapper and iterate the range object itself. Materializing a range allocates the whole sequence up front for no benefit.",
	},
	"unused-import": {
		summary:    "Remove unused imports",
		suggestion: "Delete imports that are never referenced. Every import costs load time and memory on each interpreter start.",
	},
	"while-loop-as-counter": {
		summary:    "Prefer for loops over manual counters",
		suggestion: "Rewrite counter-driven while loops as `for i in range(n)` or iterate the collection directly. The for form is faster and cannot loop forever on a missed increment.",
	},
	"string-concat-in-loop": {
		summary:    "Join strings once",
		suggestion: "Collect the parts in a list and call `\"\".join(parts)` after the loop. Repeated `+=` copies the whole accumulated string on every iteration.",
	},
	"deep-nesting": {
		summary:    "Flatten deeply nested blocks",
		suggestion: "Extract inner blocks into helper functions or use early returns. Shallow code is easier to read and keeps less state live per iteration.",
	},
	"bare-except": {
		summary:    "Catch specific exceptions",
		suggestion: "Name the exception types you expect, such as `except ValueError:`. A bare `except:` hides programming errors and keyboard interrupts alike.",
	},
	"global-mutation": {
		summary:    "Pass state explicitly",
		suggestion: "Return the new value or move the state into a class instead of mutating a global. Functions without hidden writes are simpler to test and parallelize.",
	},
	"repeated-attribute-lookup": {
		summary:    "Hoist loop-invariant lookups",
		suggestion: "Bind the dotted expression to a local variable before the loop. Attribute resolution runs on every iteration otherwise.",
	},
	"open-without-with": {
		summary:    "Manage files with a with statement",
		suggestion: "Open files as `with open(path) as f:` so the handle is released even when the body raises.",
	},
	"eval-exec": {
		summary:    "Avoid dynamic code execution",
		suggestion: "Replace eval/exec with explicit parsing, `ast.literal_eval` for literals, or a dispatch table. Executing constructed strings lets any input become code.",
	},
	"shell-injection": {
		summary:    "Avoid shell=True with dynamic commands",
		suggestion: "Pass the command as an argument list without `shell=True`, for example `subprocess.run([\"ls\", \"-l\", path])`. The shell interprets metacharacters in any interpolated value.",
	},
	"hardcoded-credential": {
		summary:    "Keep credentials out of source",
		suggestion: "Read secrets from environment variables or a secret manager instead of string literals. Committed literals live forever in version history.",
	},
	"unsanitized-input": {
		summary:    "Validate user input before dangerous calls",
		suggestion: "Never pass raw `input()` values to eval, exec or a shell. Validate against an allowlist or use APIs that take structured arguments.",
	},
	"insecure-deserialization": {
		summary:    "Deserialize with safe loaders",
		suggestion: "Use `yaml.safe_load`, JSON, or another schema-checked format. pickle and marshal can execute arbitrary code while loading.",
	},
	"path-traversal": {
		summary:    "Resolve paths against a base directory",
		suggestion: "Join user-supplied names with `os.path.join` and verify the resolved path stays inside the intended directory before opening it.",
	},
	"sql-format-string": {
		summary:    "Use parameterized queries",
		suggestion: "Pass values through the driver's placeholder syntax, such as `cursor.execute(\"... WHERE id = ?\", (user_id,))`, instead of formatting them into the statement.",
	},
	"weak-random-secret": {
		summary:    "Generate tokens with the secrets module",
		suggestion: "Use `secrets.token_hex()` or `secrets.token_urlsafe()` for anything security-sensitive. The random module is predictable by design.",
	},
	"debug-mode": {
		summary:    "Disable debug mode outside development",
		suggestion: "Drive the debug flag from configuration and keep it off by default. Debug handlers can expose internals and remote execution consoles.",
	},
}

// Recommend maps an issue to its fix advice. Unknown rule IDs get a
// generic fallback so new rules degrade gracefully.
func Recommend(issue domain.Issue) domain.Recommendation {
	if s, ok := suggestionCatalog[issue.RuleID]; ok {
		return domain.Recommendation{
			RuleID:     issue.RuleID,
			Summary:    s.summary,
			Suggestion: s.suggestion,
		}
	}
	return domain.Recommendation{
		RuleID:     issue.RuleID,
		Summary:    "Review this finding",
		Suggestion: "Review the flagged line and consider a more efficient or safer construct.",
	}
}

// RecommendAll maps each issue to advice, deduplicating by rule ID while
// preserving first-seen order
func RecommendAll(issues []domain.Issue) []domain.Recommendation {
	seen := map[string]bool{}
	var recs []domain.Recommendation
	for _, issue := range issues {
		if seen[issue.RuleID] {
			continue
		}
		seen[issue.RuleID] = true
		recs = append(recs, Recommend(issue))
	}
	return recs
}
