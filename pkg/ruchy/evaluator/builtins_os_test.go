package evaluator

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEnvBuiltins(t *testing.T) {
	t.Setenv("RUCHY_TEST_VAR", "forty-two")

	testStringObject(t, testEval(t, `env_get("RUCHY_TEST_VAR")`), "forty-two")
	testBooleanObject(t, testEval(t, `env_has("RUCHY_TEST_VAR")`), true)
	testBooleanObject(t, testEval(t, `env_has("RUCHY_TEST_MISSING")`), false)

	if result := testEval(t, `env_get("RUCHY_TEST_MISSING")`); result != NULL {
		t.Errorf("missing variable should be null, got %s", result.Inspect())
	}
	testStringObject(t, testEval(t, `env_get("RUCHY_TEST_MISSING", "fallback")`), "fallback")

	testEval(t, `env_set("RUCHY_TEST_SET", "written")`)
	if got := os.Getenv("RUCHY_TEST_SET"); got != "written" {
		t.Errorf("env_set wrote %q, want %q", got, "written")
	}
	defer os.Unsetenv("RUCHY_TEST_SET")

	testEval(t, `env_unset("RUCHY_TEST_SET")`)
	if _, found := os.LookupEnv("RUCHY_TEST_SET"); found {
		t.Error("env_unset left the variable set")
	}
}

func TestPathBuiltins(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`path_join("a", "b", "c.txt")`, filepath.Join("a", "b", "c.txt")},
		{`path_base("/srv/data/report.csv")`, "report.csv"},
		{`path_dir("/srv/data/report.csv")`, filepath.FromSlash("/srv/data")},
		{`path_ext("report.csv")`, ".csv"},
		{`path_clean("a//b/../c")`, filepath.Join("a", "c")},
	}
	for _, tt := range tests {
		testStringObject(t, testEval(t, tt.input), tt.expected)
	}

	testBooleanObject(t, testEval(t, `path_is_abs("/etc/hosts")`), true)
	testBooleanObject(t, testEval(t, `path_is_abs("relative/path")`), false)
}

func TestRegexBuiltins(t *testing.T) {
	testBooleanObject(t, testEval(t, `regex_match("^h.llo$", "hello")`), true)
	testBooleanObject(t, testEval(t, `regex_match("^h.llo$", "goodbye")`), false)

	testStringObject(t, testEval(t, `regex_find("[0-9]+", "order 1234 shipped")`), "1234")
	if result := testEval(t, `regex_find("[0-9]+", "no digits here")`); result != NULL {
		t.Errorf("no match should be null, got %s", result.Inspect())
	}

	testInspect(t, testEval(t, `regex_find_all("[a-z]+", "one 2 three 4 five")`),
		`["one", "three", "five"]`)

	testInspect(t, testEval(t, `regex_captures("(\\w+)@(\\w+)", "ada@lovelace")`),
		`["ada@lovelace", "ada", "lovelace"]`)
	if result := testEval(t, `regex_captures("(\\d+)", "none")`); result != NULL {
		t.Errorf("no captures should be null, got %s", result.Inspect())
	}

	testStringObject(t, testEval(t, `regex_replace("\\s+", "too   many spaces", " ")`),
		"too many spaces")

	testInspect(t, testEval(t, `regex_split(",\\s*", "a, b,c")`), `["a", "b", "c"]`)
}

func TestRegexInvalidPattern(t *testing.T) {
	testErrorCode(t, testEval(t, `regex_match("(unclosed", "x")`), "FORMAT-0001")
	testErrorCode(t, testEval(t, `regex_match(42, "x")`), "FORMAT-0001")
}

func TestLogBuiltins(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "logs", "session.db")
	in := New()

	script := `
log_open("` + dbPath + `")
log_info("starting", "run")
log_warn("low disk")
log_error("failed to connect")
log_recent(2)
`
	result := testEvalInterp(t, script, in)
	testInspect(t, result, `["[WARN] low disk", "[ERROR] failed to connect"]`)

	if in.selog == nil {
		t.Fatal("session log should stay open")
	}
	entries, err := in.selog.Recent(10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].Level != "INFO" || entries[0].Message != "starting run" {
		t.Errorf("first entry = %s %q", entries[0].Level, entries[0].Message)
	}
	in.selog.Close()
}

func TestLogRecentWithoutOpen(t *testing.T) {
	testErrorCode(t, testEval(t, `log_recent(5)`), "IO-0001")
}
