package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSetupWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	if err := Setup(LogConfig{Level: "debug", Format: "json", Output: path}); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = Setup(DefaultConfig()) })

	l := WithComponent("settings")
	l.Info().Str("path", "x.json").Msg("loaded")

	blob, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	got := string(blob)
	if !strings.Contains(got, `"component":"settings"`) || !strings.Contains(got, `"message":"loaded"`) {
		t.Fatalf("log=%s", got)
	}
}

func TestSetupRejectsBadLevel(t *testing.T) {
	if err := Setup(LogConfig{Level: "loud"}); err == nil {
		t.Fatal("expected error")
	}
}
