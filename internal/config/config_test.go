package config

import (
	"errors"
	"os"
	"testing"

	"pgregory.net/rapid"
)

func TestConfigMergePrecedence(t *testing.T) {
	nonEmptyString := rapid.StringMatching(`[a-zA-Z0-9/_.-]{1,20}`)

	configGen := rapid.Custom(func(t *rapid.T) *Config {
		cfg := &Config{}
		if rapid.Bool().Draw(t, "hasLayout") {
			cfg.Layout = StorageLayout(nonEmptyString.Draw(t, "layout"))
		}
		if rapid.Bool().Draw(t, "hasPollMS") {
			cfg.ClipboardPollMS = rapid.IntRange(1, 10000).Draw(t, "pollMS")
		}
		return cfg
	})

	rapid.Check(t, func(t *rapid.T) {
		global := configGen.Draw(t, "global")
		project := configGen.Draw(t, "project")

		merged := Merge(global, project)
		defaults := Defaults()

		checkStringField(t, "Layout",
			string(global.Layout), string(project.Layout), string(defaults.Layout),
			string(merged.Layout))

		checkIntField(t, "ClipboardPollMS",
			global.ClipboardPollMS, project.ClipboardPollMS, defaults.ClipboardPollMS,
			merged.ClipboardPollMS)
	})
}

func checkStringField(t *rapid.T, name, globalVal, projectVal, defaultVal, mergedVal string) {
	t.Helper()
	switch {
	case projectVal != "":
		if mergedVal != projectVal {
			t.Fatalf("%s: both set — expected project value %q, got %q", name, projectVal, mergedVal)
		}
	case globalVal != "":
		if mergedVal != globalVal {
			t.Fatalf("%s: only global set — expected global value %q, got %q", name, globalVal, mergedVal)
		}
	default:
		if mergedVal != defaultVal {
			t.Fatalf("%s: neither set — expected default %q, got %q", name, defaultVal, mergedVal)
		}
	}
}

func checkIntField(t *rapid.T, name string, globalVal, projectVal, defaultVal, mergedVal int) {
	t.Helper()
	switch {
	case projectVal > 0:
		if mergedVal != projectVal {
			t.Fatalf("%s: both set — expected project value %d, got %d", name, projectVal, mergedVal)
		}
	case globalVal > 0:
		if mergedVal != globalVal {
			t.Fatalf("%s: only global set — expected global value %d, got %d", name, globalVal, mergedVal)
		}
	default:
		if mergedVal != defaultVal {
			t.Fatalf("%s: neither set — expected default %d, got %d", name, defaultVal, mergedVal)
		}
	}
}

func TestDefaultsValues(t *testing.T) {
	d := Defaults()
	if d.Layout != LayoutRepository {
		t.Errorf("Layout: want %q, got %q", LayoutRepository, d.Layout)
	}
	if d.ClipboardPollMS != 500 {
		t.Errorf("ClipboardPollMS: want 500, got %d", d.ClipboardPollMS)
	}
	if d.IgnorePatterns == nil || len(d.IgnorePatterns) != 0 {
		t.Errorf("IgnorePatterns: want empty slice, got %v", d.IgnorePatterns)
	}
}

func TestLoadGlobalMissingFileReturnsDefaults(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("HOME", tmp)

	cfg, err := LoadGlobal()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg == nil {
		t.Fatal("expected non-nil config, got nil")
	}
	defaults := Defaults()
	if cfg.Layout != defaults.Layout {
		t.Errorf("Layout: want %q, got %q", defaults.Layout, cfg.Layout)
	}
}

func TestLoadProjectMissingFileReturnsNil(t *testing.T) {
	tmp := t.TempDir()
	orig, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(tmp); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(orig) })

	cfg, err := LoadProject()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg != nil {
		t.Errorf("expected nil config, got %+v", cfg)
	}
}

func TestLoadGlobalParseError(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("HOME", tmp)

	cfgDir := tmp + "/.config/tabd"
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(cfgDir+"/config.yaml", []byte("layout: [invalid"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadGlobal()
	if err == nil {
		t.Fatal("expected an error for invalid YAML, got nil")
	}
	if msg := err.Error(); len(msg) == 0 {
		t.Error("expected a descriptive error message, got empty string")
	}
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Errorf("expected *ParseError, got %T: %v", err, err)
	}
}
