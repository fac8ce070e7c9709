package analyzer

import (
	"testing"

	"github.com/ludo-technologies/greenscan/domain"
)

func securityIssues(t *testing.T, code string) []domain.Issue {
	t.Helper()
	return NewSecurityEngine().Detect(ruleContext(t, code))
}

func TestDetectEvalExec(t *testing.T) {
	code := `expr = "1 + 1"
result = eval(expr)
exec("print(1)")
`

	issues := securityIssues(t, code)
	matched := issuesForRule(issues, "eval-exec")

	if len(matched) != 2 {
		t.Fatalf("Expected 2 eval-exec issues, got %d", len(matched))
	}
	if matched[0].Line != 2 || matched[1].Line != 3 {
		t.Errorf("Expected lines 2 and 3, got %d and %d", matched[0].Line, matched[1].Line)
	}
	if matched[0].Severity != domain.SeverityCritical {
		t.Errorf("Expected critical severity, got %s", matched[0].Severity)
	}
	if matched[0].Category != domain.CategorySecurity {
		t.Errorf("Expected security category, got %s", matched[0].Category)
	}
}

func TestDetectShellInjection(t *testing.T) {
	code := `import subprocess

cmd = build_command()
subprocess.run(cmd, shell=True)
subprocess.run(["ls", "-l"])
`

	issues := securityIssues(t, code)
	matched := issuesForRule(issues, "shell-injection")

	if len(matched) != 1 {
		t.Fatalf("Expected 1 shell-injection issue, got %d: %+v", len(matched), matched)
	}
	if matched[0].Line != 4 {
		t.Errorf("Expected issue at line 4, got %d", matched[0].Line)
	}
}

func TestOSSystemAlwaysShell(t *testing.T) {
	code := `import os

os.system(command)
`

	issues := securityIssues(t, code)
	if matched := issuesForRule(issues, "shell-injection"); len(matched) != 1 {
		t.Errorf("Expected os.system with dynamic command to be flagged, got %+v", matched)
	}
}

func TestLiteralShellCommandNotFlagged(t *testing.T) {
	code := `import subprocess

subprocess.run("ls -l", shell=True)
`

	issues := securityIssues(t, code)
	if matched := issuesForRule(issues, "shell-injection"); len(matched) != 0 {
		t.Errorf("Expected literal command to be allowed, got %+v", matched)
	}
}

func TestDetectHardcodedCredential(t *testing.T) {
	code := `password = "hunter2"
api_key = "sk-123456"
password = os.environ["PASSWORD"]
name = "alice"
`

	issues := securityIssues(t, code)
	matched := issuesForRule(issues, "hardcoded-credential")

	if len(matched) != 2 {
		t.Fatalf("Expected 2 hardcoded-credential issues, got %d: %+v", len(matched), matched)
	}
	if matched[0].Line != 1 || matched[1].Line != 2 {
		t.Errorf("Expected lines 1 and 2, got %d and %d", matched[0].Line, matched[1].Line)
	}
	if matched[0].Severity != domain.SeverityHigh {
		t.Errorf("Expected high severity, got %s", matched[0].Severity)
	}
}

func TestDetectUnsanitizedInput(t *testing.T) {
	code := `user_cmd = input("command: ")
os.system(user_cmd)
`

	issues := securityIssues(t, code)
	matched := issuesForRule(issues, "unsanitized-input")

	if len(matched) != 1 {
		t.Fatalf("Expected 1 unsanitized-input issue, got %d: %+v", len(matched), matched)
	}
	if matched[0].Line != 2 {
		t.Errorf("Expected issue at line 2, got %d", matched[0].Line)
	}
}

func TestDetectUnsanitizedInputDirect(t *testing.T) {
	code := `eval(input("expr: "))
`

	issues := securityIssues(t, code)
	if matched := issuesForRule(issues, "unsanitized-input"); len(matched) != 1 {
		t.Errorf("Expected eval(input()) to be flagged, got %+v", matched)
	}
}

func TestTaintPropagatesThroughCopies(t *testing.T) {
	code := `raw = input("cmd: ")
cleaned = raw
os.system(cleaned)
`

	issues := securityIssues(t, code)
	if matched := issuesForRule(issues, "unsanitized-input"); len(matched) != 1 {
		t.Errorf("Expected taint to propagate through copy, got %+v", matched)
	}
}

func TestDetectInsecureDeserialization(t *testing.T) {
	code := `import pickle

data = pickle.loads(blob)
cfg = yaml.load(stream)
`

	issues := securityIssues(t, code)
	matched := issuesForRule(issues, "insecure-deserialization")

	if len(matched) != 2 {
		t.Fatalf("Expected 2 insecure-deserialization issues, got %d", len(matched))
	}
	if matched[0].Line != 3 || matched[1].Line != 4 {
		t.Errorf("Expected lines 3 and 4, got %d and %d", matched[0].Line, matched[1].Line)
	}
}

func TestDetectPathTraversal(t *testing.T) {
	code := `name = input("file: ")
f = open("/data/" + name)
`

	issues := securityIssues(t, code)
	matched := issuesForRule(issues, "path-traversal")

	if len(matched) != 1 {
		t.Fatalf("Expected 1 path-traversal issue, got %d: %+v", len(matched), matched)
	}
	if matched[0].Line != 2 {
		t.Errorf("Expected issue at line 2, got %d", matched[0].Line)
	}
}

func TestDetectSQLFormatString(t *testing.T) {
	code := `cursor.execute("SELECT * FROM users WHERE id = %s" % user_id)
cursor.execute("SELECT * FROM users WHERE id = ?", (user_id,))
`

	issues := securityIssues(t, code)
	matched := issuesForRule(issues, "sql-format-string")

	if len(matched) != 1 {
		t.Fatalf("Expected 1 sql-format-string issue, got %d: %+v", len(matched), matched)
	}
	if matched[0].Line != 1 {
		t.Errorf("Expected issue at line 1, got %d", matched[0].Line)
	}
}

func TestDetectWeakRandomSecret(t *testing.T) {
	code := `import random

token = random.randint(0, 999999)
roll = random.randint(1, 6)
`

	issues := securityIssues(t, code)
	matched := issuesForRule(issues, "weak-random-secret")

	if len(matched) != 1 {
		t.Fatalf("Expected 1 weak-random-secret issue, got %d: %+v", len(matched), matched)
	}
	if matched[0].Line != 3 {
		t.Errorf("Expected issue at line 3, got %d", matched[0].Line)
	}
}

func TestDetectDebugMode(t *testing.T) {
	code := `app.run(debug=True)
`

	issues := securityIssues(t, code)
	if matched := issuesForRule(issues, "debug-mode"); len(matched) != 1 {
		t.Errorf("Expected debug-mode issue, got %+v", matched)
	}
}

func TestCleanScriptHasNoSecurityIssues(t *testing.T) {
	code := `import secrets

token = secrets.token_hex(32)
with open("config.yaml") as f:
    data = f.read()
`

	issues := securityIssues(t, code)
	if len(issues) != 0 {
		t.Errorf("Expected no security issues, got %+v", issues)
	}
}
