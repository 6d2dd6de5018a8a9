package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/brogergvhs/ficpub/internal/extract"
)

type Config struct {
	Output    string `yaml:"output"`
	Format    string `yaml:"format"`
	Language  string `yaml:"language"`
	Overwrite bool   `yaml:"overwrite"`
	Debug     bool   `yaml:"debug"`

	StoryIDs     []string `yaml:"story_ids"`
	ProfileIDs   []string `yaml:"profile_ids"`
	SelectorIDs  []string `yaml:"selector_ids"`
	ChapterParam string   `yaml:"chapter_param"`

	Listen      string `yaml:"listen"`
	MaxUploadMB int    `yaml:"max_upload_mb"`

	FetchWorkers int    `yaml:"fetch_workers"`
	Cookie       string `yaml:"cookie"`
	CookieFile   string `yaml:"cookie_file"`
	UserAgent    string `yaml:"user_agent"`
}

type Options struct {
	IgnoreConfig bool
	Debug        bool
	Output       string
	Format       string
	Language     string
	Overwrite    bool
	Listen       string
	FetchWorkers int
	Cookie       string
	CookieFile   string
	UserAgent    string
}

func DefaultConfig() *Config {
	layout := extract.DefaultLayout()

	return &Config{
		Output:       ".",
		Format:       "epub",
		Language:     "en",
		Overwrite:    false,
		Debug:        false,
		StoryIDs:     layout.StoryIDs,
		ProfileIDs:   layout.ProfileIDs,
		SelectorIDs:  layout.SelectorIDs,
		ChapterParam: layout.ChapterParam,
		Listen:       "127.0.0.1:8080",
		MaxUploadMB:  32,
		FetchWorkers: 1,
		Cookie:       "",
		CookieFile:   "",
		UserAgent:    "",
	}
}

// Layout returns the extraction layout described by the config.
func (c *Config) Layout() extract.Layout {
	return extract.Layout{
		StoryIDs:     c.StoryIDs,
		ProfileIDs:   c.ProfileIDs,
		SelectorIDs:  c.SelectorIDs,
		ChapterParam: c.ChapterParam,
	}.WithDefaults()
}

func SaveYAML(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

func loadYAML(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	c := DefaultConfig()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, err
	}

	return c, nil
}

// LoadMerged resolves the effective config: defaults, then the active
// profile, then FICPUB_* environment variables (a .env file in the working
// directory is honoured), then the explicit options.
func LoadMerged(opts Options) (*Config, string, error) {
	_ = godotenv.Load()

	if opts.IgnoreConfig {
		cfg := DefaultConfig()
		mergeEnv(cfg)
		mergeConfig(cfg, opts)
		normalizeDefaults(cfg)
		return cfg, "(ignored config)", nil
	}

	activePath, err := ActiveConfigPath()
	if err == ErrNoConfig || activePath == "" {
		cfg := DefaultConfig()
		mergeEnv(cfg)
		mergeConfig(cfg, opts)
		normalizeDefaults(cfg)
		return cfg, "(default config in memory)\nRun `ficpub config init` to create an actual config\n", nil
	}
	if err != nil {
		return nil, "", err
	}

	cfg, err := loadYAML(activePath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load config %s: %w", activePath, err)
	}

	mergeEnv(cfg)
	mergeConfig(cfg, opts)
	normalizeDefaults(cfg)

	return cfg, activePath, nil
}

func mergeEnv(c *Config) {
	if v := os.Getenv("FICPUB_OUTPUT"); v != "" {
		c.Output = v
	}
	if v := os.Getenv("FICPUB_FORMAT"); v != "" {
		c.Format = v
	}
	if v := os.Getenv("FICPUB_LANGUAGE"); v != "" {
		c.Language = v
	}
	if v := os.Getenv("FICPUB_LISTEN"); v != "" {
		c.Listen = v
	}
	if v := os.Getenv("FICPUB_MAX_UPLOAD_MB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxUploadMB = n
		}
	}
	if v := os.Getenv("FICPUB_DEBUG"); v != "" {
		c.Debug = envBool(v)
	}
	if v := os.Getenv("FICPUB_USER_AGENT"); v != "" {
		c.UserAgent = v
	}
	if v := os.Getenv("FICPUB_COOKIE"); v != "" {
		c.Cookie = v
	}
	if v := os.Getenv("FICPUB_COOKIE_FILE"); v != "" {
		c.CookieFile = v
	}
	if v := os.Getenv("FICPUB_FETCH_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.FetchWorkers = n
		}
	}
	if v := os.Getenv("FICPUB_OVERWRITE"); v != "" {
		c.Overwrite = envBool(v)
	}
}

func envBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

func mergeConfig(c *Config, o Options) {
	if o.Output != "" {
		c.Output = o.Output
	}
	if o.Format != "" {
		c.Format = o.Format
	}
	if o.Language != "" {
		c.Language = o.Language
	}
	if o.Overwrite {
		c.Overwrite = true
	}
	if o.Debug {
		c.Debug = true
	}
	if o.Listen != "" {
		c.Listen = o.Listen
	}
	if o.FetchWorkers != 0 {
		c.FetchWorkers = o.FetchWorkers
	}
	if o.Cookie != "" {
		c.Cookie = o.Cookie
	}
	if o.CookieFile != "" {
		c.CookieFile = o.CookieFile
	}
	if o.UserAgent != "" {
		c.UserAgent = o.UserAgent
	}
}

func normalizeDefaults(c *Config) {
	if c.Output == "" {
		c.Output = "."
	}
	if c.Format == "" {
		c.Format = "epub"
	}
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8080"
	}
	if c.MaxUploadMB <= 0 {
		c.MaxUploadMB = 32
	}
	if c.FetchWorkers <= 0 {
		c.FetchWorkers = 1
	}
}

func (c *Config) Print() {
	if c.Output != "" {
		fmt.Printf(" -output: %s\n", c.Output)
	}
	fmt.Printf(" -format: %s\n", c.Format)
	if c.Language != "" {
		fmt.Printf(" -language: %s\n", c.Language)
	}
	if c.Overwrite {
		fmt.Printf(" -overwrite: %t\n", c.Overwrite)
	}
	if c.Debug {
		fmt.Printf(" -debug: %t\n", c.Debug)
	}
	if len(c.StoryIDs) > 0 {
		fmt.Printf(" -story_ids: %s\n", strings.Join(c.StoryIDs, ", "))
	}
	if len(c.ProfileIDs) > 0 {
		fmt.Printf(" -profile_ids: %s\n", strings.Join(c.ProfileIDs, ", "))
	}
	if len(c.SelectorIDs) > 0 {
		fmt.Printf(" -selector_ids: %s\n", strings.Join(c.SelectorIDs, ", "))
	}
	if c.ChapterParam != "" {
		fmt.Printf(" -chapter_param: %s\n", c.ChapterParam)
	}
	fmt.Printf(" -listen: %s\n", c.Listen)
	fmt.Printf(" -max_upload_mb: %d\n", c.MaxUploadMB)
	fmt.Printf(" -fetch_workers: %d\n", c.FetchWorkers)
	if c.CookieFile != "" {
		fmt.Printf(" -cookie_file: %s\n", c.CookieFile)
	}
	if c.UserAgent != "" {
		fmt.Printf(" -user_agent: %s\n", c.UserAgent)
	}
}
