package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func resetState() {
	CloseAll()
	settingsMu.Lock()
	settings = Settings{}
	logLevel = LevelInfo
	settingsMu.Unlock()
}

func TestDisabledByDefault(t *testing.T) {
	resetState()
	defer resetState()

	if err := Initialize(Settings{DebugMode: false}); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	l := Get(CategoryDeploy)
	if l.logger != nil {
		t.Error("expected no-op logger when debug mode is off")
	}
	// Must not panic
	l.Info("ignored")
	Deploy("ignored")
}

func TestWritesToCategoryFile(t *testing.T) {
	resetState()
	defer resetState()

	dir := t.TempDir()
	if err := Initialize(Settings{DebugMode: true, Level: "info", Dir: dir}); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	Deploy("install step finished with exit code %d", 0)
	CloseAll()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}

	var found bool
	for _, e := range entries {
		if strings.Contains(e.Name(), "_deploy.log") {
			found = true
			data, err := os.ReadFile(filepath.Join(dir, e.Name()))
			if err != nil {
				t.Fatalf("ReadFile failed: %v", err)
			}
			if !strings.Contains(string(data), "install step finished with exit code 0") {
				t.Errorf("log file missing expected entry, got: %s", data)
			}
		}
	}
	if !found {
		t.Error("no deploy log file created")
	}
}

func TestCategoryFilter(t *testing.T) {
	resetState()
	defer resetState()

	dir := t.TempDir()
	err := Initialize(Settings{
		DebugMode:  true,
		Level:      "info",
		Dir:        dir,
		Categories: map[string]bool{"tracking": false},
	})
	if err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	if IsCategoryEnabled(CategoryTracking) {
		t.Error("tracking category should be disabled")
	}
	if !IsCategoryEnabled(CategoryChat) {
		t.Error("unlisted categories default to enabled")
	}
}

func TestLevelFiltering(t *testing.T) {
	resetState()
	defer resetState()

	dir := t.TempDir()
	if err := Initialize(Settings{DebugMode: true, Level: "error", Dir: dir}); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	l := Get(CategoryRAG)
	l.Info("should be filtered")
	l.Error("should appear")
	CloseAll()

	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if strings.Contains(e.Name(), "_rag.log") {
			data, _ := os.ReadFile(filepath.Join(dir, e.Name()))
			if strings.Contains(string(data), "should be filtered") {
				t.Error("info entry written despite error level")
			}
			if !strings.Contains(string(data), "should appear") {
				t.Error("error entry missing")
			}
		}
	}
}
