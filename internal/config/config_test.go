package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
}

func TestLoad_DefaultWhenMissing(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	def := DefaultConfig()
	if cfg.PageSize != def.PageSize || cfg.RelatedLimit != def.RelatedLimit || cfg.ProgressBackend != BackendSQLite {
		t.Fatalf("cfg = %+v, want defaults", cfg)
	}
}

func TestLoad_OverridesFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, filepath.Join(tmpDir, "config.json"), `{"page_size": 6, "progress_backend": "file"}`)

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.PageSize != 6 {
		t.Errorf("PageSize = %d, want 6", cfg.PageSize)
	}
	if cfg.ProgressBackend != BackendFile {
		t.Errorf("ProgressBackend = %q, want file", cfg.ProgressBackend)
	}
	if cfg.RelatedLimit != 3 {
		t.Errorf("RelatedLimit = %d, want default 3", cfg.RelatedLimit)
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, filepath.Join(tmpDir, "config.json"), `{not json}`)

	if _, err := Load(tmpDir); err == nil {
		t.Fatalf("Load() expected error, got nil")
	}
}

func TestLoad_UnknownBackend(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, filepath.Join(tmpDir, "config.json"), `{"progress_backend": "redis"}`)

	if _, err := Load(tmpDir); err == nil {
		t.Fatalf("Load() expected error for unknown backend")
	}
}

func TestLoadWithRepo_BothPresent(t *testing.T) {
	globalDir := t.TempDir()
	repoDir := t.TempDir()

	writeConfig(t, filepath.Join(globalDir, "config.json"), `{"page_size": 20, "disabled_tools": ["tutorial_search"]}`)
	writeConfig(t, filepath.Join(repoDir, ".tutorhub", "config.json"), `{"page_size": 8, "disabled_tools": ["category_list", "tutorial_search"]}`)

	cfg, err := LoadWithRepo(globalDir, repoDir)
	if err != nil {
		t.Fatalf("LoadWithRepo() error = %v", err)
	}
	if cfg.PageSize != 8 {
		t.Errorf("PageSize = %d, want 8 (repo wins)", cfg.PageSize)
	}
	if len(cfg.DisabledTools) != 2 {
		t.Errorf("DisabledTools = %v, want 2 merged entries", cfg.DisabledTools)
	}
}

func TestLoadWithRepo_NeitherPresent(t *testing.T) {
	cfg, err := LoadWithRepo(t.TempDir(), t.TempDir())
	if err != nil {
		t.Fatalf("LoadWithRepo() error = %v", err)
	}
	if cfg.PageSize != 12 {
		t.Errorf("PageSize = %d, want 12", cfg.PageSize)
	}
}

func TestLoadWithRepo_WalksUpward(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, filepath.Join(root, ".tutorhub", "config.json"), `{"related_limit": 5}`)

	nested := filepath.Join(root, "a", "b", "c")
	if err := os.MkdirAll(nested, 0700); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}

	cfg, err := LoadWithRepo(t.TempDir(), nested)
	if err != nil {
		t.Fatalf("LoadWithRepo() error = %v", err)
	}
	if cfg.RelatedLimit != 5 {
		t.Errorf("RelatedLimit = %d, want 5", cfg.RelatedLimit)
	}
}

func TestFindRepoConfig_NotFound(t *testing.T) {
	if got := FindRepoConfig(t.TempDir()); got != "" {
		// A .tutorhub directory above the temp dir would be found; tolerate only that.
		if filepath.Base(filepath.Dir(got)) != ".tutorhub" {
			t.Errorf("FindRepoConfig() = %q, want empty", got)
		}
	}
}

func TestMerge_ScalarOverride(t *testing.T) {
	base := &Config{PageSize: 12, LogLevel: "info"}
	overlay := &Config{PageSize: 4}

	got := Merge(base, overlay)
	if got.PageSize != 4 {
		t.Errorf("PageSize = %d, want 4", got.PageSize)
	}
	if got.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", got.LogLevel)
	}
}

func TestMerge_ArrayMergeDedup(t *testing.T) {
	base := &Config{DisabledTools: []string{"a", " b "}}
	overlay := &Config{DisabledTools: []string{"b", "c", ""}}

	got := Merge(base, overlay)
	want := []string{"a", "b", "c"}
	if len(got.DisabledTools) != len(want) {
		t.Fatalf("DisabledTools = %v, want %v", got.DisabledTools, want)
	}
	for i := range want {
		if got.DisabledTools[i] != want[i] {
			t.Errorf("DisabledTools[%d] = %q, want %q", i, got.DisabledTools[i], want[i])
		}
	}
}

func TestMerge_AllowedPaths(t *testing.T) {
	base := &Config{AllowedPaths: []string{"/srv/catalogs"}}
	overlay := &Config{AllowedPaths: []string{"/tmp/exports"}, AllowUnsafePaths: true}

	got := Merge(base, overlay)
	if len(got.AllowedPaths) != 2 {
		t.Errorf("AllowedPaths = %v, want 2 entries", got.AllowedPaths)
	}
	if !got.AllowUnsafePaths {
		t.Error("AllowUnsafePaths = false, want true")
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvPageSize, "5")
	t.Setenv(EnvLogLevel, "debug")
	t.Setenv(EnvProgressBackend, "memory")

	cfg := DefaultConfig()
	if err := ApplyEnv(cfg, filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("ApplyEnv() error = %v", err)
	}
	if cfg.PageSize != 5 || cfg.LogLevel != "debug" || cfg.ProgressBackend != BackendMemory {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestApplyEnv_DotEnvFile(t *testing.T) {
	t.Setenv(EnvPageSize, "")
	envFile := filepath.Join(t.TempDir(), ".env")
	writeConfig(t, envFile, "TUTORHUB_PAGE_SIZE=9\n")
	// godotenv.Load does not override variables that are already set.
	os.Unsetenv(EnvPageSize)
	t.Cleanup(func() { os.Unsetenv(EnvPageSize) })

	cfg := DefaultConfig()
	if err := ApplyEnv(cfg, envFile); err != nil {
		t.Fatalf("ApplyEnv() error = %v", err)
	}
	if cfg.PageSize != 9 {
		t.Errorf("PageSize = %d, want 9", cfg.PageSize)
	}
}

func TestApplyEnv_InvalidPageSize(t *testing.T) {
	t.Setenv(EnvPageSize, "zero")

	if err := ApplyEnv(DefaultConfig(), ""); err == nil {
		t.Fatal("ApplyEnv() expected error")
	}
}
