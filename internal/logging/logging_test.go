package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		log, err := New(level, false)
		if err != nil {
			t.Fatalf("New(%q): %v", level, err)
		}
		want, _ := zapcore.ParseLevel(level)
		if !log.Core().Enabled(want) {
			t.Errorf("level %s not enabled", level)
		}
	}
	log, err := New("warn", true)
	if err != nil {
		t.Fatal(err)
	}
	if log.Core().Enabled(zapcore.InfoLevel) {
		t.Error("info enabled on a warn logger")
	}
	if _, err := New("loud", false); err == nil {
		t.Error("expected an error for an unknown level")
	}
}
