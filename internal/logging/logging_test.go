package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestLevelFiltering(t *testing.T) {
	tests := []struct {
		name      string
		level     LogLevel
		logAt     LogLevel
		wantWrite bool
	}{
		{"debug passes at debug", DebugLevel, DebugLevel, true},
		{"debug filtered at info", InfoLevel, DebugLevel, false},
		{"warn passes at info", InfoLevel, WarnLevel, true},
		{"info filtered at error", ErrorLevel, InfoLevel, false},
		{"error always passes", ErrorLevel, ErrorLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l := NewLogger(Config{Format: HumanFormat, Level: tt.level, Output: &buf})
			l.log(tt.logAt, "msg", nil)
			if got := buf.Len() > 0; got != tt.wantWrite {
				t.Errorf("wrote=%v, want %v", got, tt.wantWrite)
			}
		})
	}
}

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(Config{Format: JSONFormat, Level: DebugLevel, Output: &buf})
	l.Info("hello", map[string]interface{}{"round": 3})

	var e entry
	if err := json.Unmarshal(buf.Bytes(), &e); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if e.Message != "hello" || e.Level != "info" {
		t.Errorf("unexpected entry: %+v", e)
	}
	if e.Fields["round"] != float64(3) {
		t.Errorf("field round = %v", e.Fields["round"])
	}
}

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(Config{Format: HumanFormat, Level: DebugLevel, Output: &buf})
	child := l.With(map[string]interface{}{"session": "s-1"})
	child.Info("round applied", map[string]interface{}{"round": 1})

	out := buf.String()
	if !strings.Contains(out, "session=s-1") || !strings.Contains(out, "round=1") {
		t.Errorf("missing fields in output: %q", out)
	}
}

func TestHumanOutputStableOrder(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(Config{Format: HumanFormat, Level: DebugLevel, Output: &buf})
	l.Info("msg", map[string]interface{}{"b": 2, "a": 1, "c": 3})
	out := buf.String()
	if strings.Index(out, "a=1") > strings.Index(out, "b=2") {
		t.Errorf("fields not in stable order: %q", out)
	}
}
