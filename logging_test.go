package lodkit

import (
	"path/filepath"
	"testing"
)

func TestZapLoggerDebugToggle(t *testing.T) {
	log := NewZapLogger("lod", false, LogFileConfig{})
	defer log.Sync()

	if log.DebugEnabled() {
		t.Error("debug must be off by default")
	}
	log.SetDebug(true)
	if !log.DebugEnabled() {
		t.Error("SetDebug(true) must enable debug")
	}
	log.SetDebug(false)
	if log.DebugEnabled() {
		t.Error("SetDebug(false) must disable debug")
	}
}

func TestZapLoggerFileTee(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lod.log")
	log := NewZapLogger("lod", true, DefaultLogFileConfig(path))

	log.Infof("pipeline ready: %d levels", 5)
	log.Debugf("frame %d", 1)
	log.Sync()
}

func TestNopLogger(t *testing.T) {
	log := NewNopLogger()
	if log.DebugEnabled() {
		t.Error("nop logger must never claim debug")
	}
	log.SetDebug(true)
	if log.DebugEnabled() {
		t.Error("nop logger ignores SetDebug")
	}
	log.Debugf("dropped %d", 1)
	log.Infof("dropped")
	log.Warnf("dropped")
	log.Errorf("dropped")
}
