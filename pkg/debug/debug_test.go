package debug

import (
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestDisabledIsNoop(t *testing.T) {
	SetEnabled(false)
	defer SetEnabled(false)

	if Enabled() {
		t.Fatal("expected debug to be disabled")
	}
	if Logger() == nil {
		t.Fatal("Logger must never be nil")
	}
	// Must not panic.
	Log("value %d", 1)
	LogTiming("op", time.Millisecond)
	LogEnterExit("fn")()
}

func TestHelpersWriteToLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	SetLogger(zap.New(core))
	defer SetEnabled(false)

	Log("loaded %d tours", 3)
	LogTiming("load", 2*time.Millisecond)
	LogEnterExit("start")()
	Named("tour").Info("named")

	if n := logs.FilterMessage("loaded 3 tours").Len(); n != 1 {
		t.Errorf("expected formatted message, got %d entries", n)
	}
	if n := logs.FilterMessage("timing").Len(); n != 1 {
		t.Errorf("expected timing entry, got %d", n)
	}
	if n := logs.FilterMessage("-> start").Len(); n != 1 {
		t.Errorf("expected enter entry, got %d", n)
	}
	if n := logs.FilterMessage("<- start").Len(); n != 1 {
		t.Errorf("expected exit entry, got %d", n)
	}
	named := logs.FilterMessage("named").All()
	if len(named) != 1 || named[0].LoggerName != "tour" {
		t.Errorf("expected named logger entry, got %+v", named)
	}
}

func TestSetLoggerNil(t *testing.T) {
	SetLogger(nil)
	defer SetEnabled(false)
	if Logger() == nil {
		t.Fatal("nil logger should be replaced with a no-op")
	}
}
