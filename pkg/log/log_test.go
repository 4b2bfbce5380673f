package log

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestForServiceMemoizes(t *testing.T) {
	a := ForService("storage")
	b := ForService("storage")
	if a != b {
		t.Fatal("expected the same logger instance for the same service name")
	}
}

func TestPrefixAndLevels(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)

	l := ForService("websearch")
	l.Infof("hello %s", "world")
	l.Warnf("careful")
	l.Errorf("boom")

	out := buf.String()
	for _, want := range []string{"INFO [websearch>] hello world", "WARN [websearch>] careful", "ERROR [websearch>] boom"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestDebugGating(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)

	l := ForService("debugsvc")
	l.Debugf("hidden")
	if strings.Contains(buf.String(), "hidden") {
		t.Fatal("debug message emitted while debug disabled")
	}

	EnableDebugFor("debugsvc")
	l.Debugf("visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Fatal("debug message missing after EnableDebugFor")
	}
}
