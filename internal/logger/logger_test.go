package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"bogus":   zapcore.InfoLevel,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestHelpersAreSafeBeforeInit(t *testing.T) {
	S = nil
	InfoObj("msg", "k", 1)
	ErrorObj("msg", "k", 1)
	if err := Close(); err != nil {
		t.Fatalf("Close before Init: %v", err)
	}
}

func TestEnsureFallsBackToNop(t *testing.T) {
	if _, ok := Ensure(nil).(*NopLogger); !ok {
		t.Fatalf("expected NopLogger for nil input")
	}
	var zl ZapLogger
	if got := Ensure(zl); got != Logger(zl) {
		t.Fatalf("expected Ensure to keep a non-nil logger")
	}
}

func TestObjHelpersWriteKeyedField(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	S = zap.New(core).Sugar()
	t.Cleanup(func() { S = nil })

	ZapLogger{}.InfoObj("report archived", "report_meta", map[string]any{"score": 5})
	DebugObj("dropped below level", "k", 1)

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Message != "report archived" {
		t.Fatalf("unexpected message %q", entries[0].Message)
	}
	if _, ok := entries[0].ContextMap()["report_meta"]; !ok {
		t.Fatalf("report_meta field missing: %v", entries[0].ContextMap())
	}
}
