package zap

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/unkn0wn-root/cachecall"
)

func TestZapLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := ZapLogger{L: zap.New(core)}

	l.Debug("caching enabled", cachecall.Fields{"key": "k", "lifetime": 60})
	l.Info("request item", nil)
	l.Warn("store get failed", cachecall.Fields{"key": "k"})
	l.Error("boom", nil)

	all := logs.All()
	if len(all) != 4 {
		t.Fatalf("got %d entries, want 4", len(all))
	}
	wantLevels := []zapcore.Level{zapcore.DebugLevel, zapcore.InfoLevel, zapcore.WarnLevel, zapcore.ErrorLevel}
	for i, e := range all {
		if e.Level != wantLevels[i] {
			t.Fatalf("entry %d level=%v want %v", i, e.Level, wantLevels[i])
		}
	}
	ctx := all[0].ContextMap()
	if ctx["key"] != "k" || ctx["lifetime"] != int64(60) {
		t.Fatalf("fields not carried: %v", ctx)
	}
	if n := logs.FilterMessage("store get failed").FilterField(zap.String("key", "k")).Len(); n != 1 {
		t.Fatalf("warn entry not found with its key field")
	}
}
