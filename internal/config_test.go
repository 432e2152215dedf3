package internal

import "testing"

func TestDefaultConfigValid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should pass: %v", err)
	}
	if cfg.Archive.Path == "" || cfg.Archive.IndexFile == "" {
		t.Errorf("defaults incomplete: %+v", cfg.Archive)
	}
}

func TestArchiveConfig_PathRequired(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Archive.Path = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("empty archive path should fail validation")
	}
}

func TestArchiveConfig_IndexFileRequired(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Archive.IndexFile = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("empty index file should fail validation")
	}
}

func TestNew_RequiresConfig(t *testing.T) {
	if _, err := New(); err == nil {
		t.Fatal("New without config should fail")
	}
}

func TestNew_CreatesArchiveDir(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Archive.Path = t.TempDir() + "/decisions"
	app, err := New(WithConfig(cfg))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if app.Store == nil || app.Engine == nil || app.Validator == nil {
		t.Error("app not fully wired")
	}
}
