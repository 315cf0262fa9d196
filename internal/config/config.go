package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Progress store backends.
const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendNone   = "none"
)

// Environment variables applied by ApplyEnv.
const (
	EnvPageSize        = "TUTORHUB_PAGE_SIZE"
	EnvLogLevel        = "TUTORHUB_LOG_LEVEL"
	EnvProgressBackend = "TUTORHUB_PROGRESS_BACKEND"
)

// Config holds application configuration.
type Config struct {
	// PageSize is the number of tutorials per listing page
	PageSize int `json:"page_size"`

	// RelatedLimit caps the related tutorials shown on a detail page
	RelatedLimit int `json:"related_limit"`

	// ExcerptChars is the card description length before truncation
	ExcerptChars int `json:"excerpt_chars"`

	// ProgressBackend selects where reading history and bookmarks live:
	// "sqlite" (default), "file", "memory" or "none".
	ProgressBackend string `json:"progress_backend,omitempty"`

	// ProgressQuotaBytes caps the file backend's size. Writes past it are dropped.
	// 0 means unlimited.
	ProgressQuotaBytes int `json:"progress_quota_bytes,omitempty"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// 0 means use sql.DB default (unlimited).
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`

	// AllowedPaths lists extra directories that catalog import and export may use
	// besides ~/.tutorhub/exports. Only absolute paths are honored.
	AllowedPaths []string `json:"allowed_paths,omitempty"`

	// AllowUnsafePaths lifts the directory restriction on import and export.
	AllowUnsafePaths bool `json:"allow_unsafe_paths,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	DisabledTools []string `json:"disabled_tools,omitempty"`

	// LogLevel is a zerolog level name
	LogLevel string `json:"log_level,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		PageSize:        12,
		RelatedLimit:    3,
		ExcerptChars:    150,
		ProgressBackend: BackendSQLite,
		LogLevel:        "info",
	}
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
func Load(baseDir string) (*Config, error) {
	return loadFile(filepath.Join(baseDir, "config.json"))
}

// LoadWithRepo loads configuration from both global (~/.tutorhub) and repo
// (.tutorhub) directories. Repo config is found by walking upward from startDir.
// Repo config takes precedence for scalar values; arrays are merged (deduplicated).
func LoadWithRepo(globalDir, startDir string) (*Config, error) {
	global, err := loadFileRaw(filepath.Join(globalDir, "config.json"))
	if err != nil {
		return nil, err
	}

	repo, err := loadFileRaw(FindRepoConfig(startDir))
	if err != nil {
		return nil, err
	}

	return Merge(Merge(DefaultConfig(), global), repo), nil
}

// FindRepoConfig walks upward from startDir to find the nearest .tutorhub/config.json.
// Returns the path if found, or empty string if not found.
func FindRepoConfig(startDir string) string {
	dir := startDir
	for {
		configPath := filepath.Join(dir, ".tutorhub", "config.json")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// ApplyEnv loads envFile (if present) into the environment and applies
// TUTORHUB_* overrides to cfg. A missing envFile is not an error.
func ApplyEnv(cfg *Config, envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	if v := strings.TrimSpace(os.Getenv(EnvPageSize)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return fmt.Errorf("%s must be a positive integer, got %q", EnvPageSize, v)
		}
		cfg.PageSize = n
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.LogLevel = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvProgressBackend)); v != "" {
		cfg.ProgressBackend = v
	}

	return Validate(cfg)
}

// Validate checks that enumerated settings hold known values.
func Validate(cfg *Config) error {
	switch cfg.ProgressBackend {
	case "", BackendSQLite, BackendFile, BackendMemory, BackendNone:
	default:
		return fmt.Errorf("unknown progress_backend %q", cfg.ProgressBackend)
	}
	if cfg.PageSize < 0 || cfg.RelatedLimit < 0 || cfg.ExcerptChars < 0 {
		return errors.New("page_size, related_limit and excerpt_chars must not be negative")
	}
	return nil
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	if configPath == "" {
		return &Config{}, nil
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", configPath, err)
	}

	return cfg, nil
}

// loadFile loads configuration from a specific file path.
// Returns default config if the file doesn't exist.
func loadFile(configPath string) (*Config, error) {
	cfg, err := loadFileRaw(configPath)
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{
		PageSize:           firstNonZero(overlay.PageSize, base.PageSize),
		RelatedLimit:       firstNonZero(overlay.RelatedLimit, base.RelatedLimit),
		ExcerptChars:       firstNonZero(overlay.ExcerptChars, base.ExcerptChars),
		ProgressQuotaBytes: firstNonZero(overlay.ProgressQuotaBytes, base.ProgressQuotaBytes),
		DBMaxOpenConns:     firstNonZero(overlay.DBMaxOpenConns, base.DBMaxOpenConns),
		DBMaxIdleConns:     firstNonZero(overlay.DBMaxIdleConns, base.DBMaxIdleConns),
		ProgressBackend:    firstNonZero(overlay.ProgressBackend, base.ProgressBackend),
		LogLevel:           firstNonZero(overlay.LogLevel, base.LogLevel),
		AllowUnsafePaths:   overlay.AllowUnsafePaths || base.AllowUnsafePaths,
	}

	result.AllowedPaths = mergeStringSlice(base.AllowedPaths, overlay.AllowedPaths)
	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)

	return result
}

func firstNonZero[T comparable](a, b T) T {
	var zero T
	if a != zero {
		return a
	}
	return b
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range append(append([]string{}, a...), b...) {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
