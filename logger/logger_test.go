package logger

import (
	"testing"

	"github.com/sirupsen/logrus"
)

func TestLoggerFunctions(t *testing.T) {
	Init("invalid") // should default to info
	if log == nil {
		t.Fatal("log not initialized")
	}
	if log.GetLevel() != logrus.InfoLevel {
		t.Fatalf("unexpected fallback level: %v", log.GetLevel())
	}
	// Avoid os.Exit on Fatal
	log.ExitFunc = func(int) {}

	Debug("debug")
	Info("info")
	Warn("warn")
	Error("error")
	Debugf("%s", "debugf")
	Infof("%s", "infof")
	Warnf("%s", "warnf")
	Errorf("%s", "errorf")
	Fatal("fatal")
	Fatalf("%s", "fatalf")
}

func TestLoggerLevelParsing(t *testing.T) {
	Init("debug")
	if log.GetLevel() != logrus.DebugLevel {
		t.Fatalf("unexpected level: %v", log.GetLevel())
	}
	Init("error")
	if log.GetLevel() != logrus.ErrorLevel {
		t.Fatalf("unexpected level: %v", log.GetLevel())
	}
}
