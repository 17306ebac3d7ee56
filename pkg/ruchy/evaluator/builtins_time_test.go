package evaluator

import "testing"

func TestTimeFormat(t *testing.T) {
	testStringObject(t, testEval(t, `time_format(0, "2006-01-02")`), "1970-01-01")
	testErrorCode(t, testEval(t, `time_format("0", "2006-01-02")`), "OP-0004")
}

func TestTimeFormatLocale(t *testing.T) {
	testStringObject(t, testEval(t, `time_format(0, "January", "en_US")`), "January")
	testStringObject(t, testEval(t, `time_format(0, "January", "fr_FR")`), "janvier")
}

func TestTimeParse(t *testing.T) {
	testInspect(t, testEval(t, `time_parse("1970-01-01")`), "Ok(0)")
	result := testEval(t, `time_parse("not a date")`)
	ev, ok := result.(*EnumVariant)
	if !ok || ev.Variant != "Err" {
		t.Fatalf("expected Err variant, got %s", result.Inspect())
	}
}
