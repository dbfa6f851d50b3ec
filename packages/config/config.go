package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultPath is used when no config file is given on the command line or in DEVFLOW_CONFIG.
const DefaultPath = "config/development.yaml"

// Config represents the application configuration
type Config struct {
	Enhancer EnhancerConfig `yaml:"enhancer"`
	Issues   IssuesConfig   `yaml:"issues"`
	Reports  ReportsConfig  `yaml:"reports"`
	AI       AIConfig       `yaml:"ai"`
	Bot      BotConfig      `yaml:"bot"`
	Debug    DebugConfig    `yaml:"debug"`
}

// EnhancerConfig controls which files get an AGENT_* header
type EnhancerConfig struct {
	SourceDirs    []string `yaml:"source_dirs"`
	SourcePattern string   `yaml:"source_pattern"`
	ConfigDirs    []string `yaml:"config_dirs"`
	ConfigPattern string   `yaml:"config_pattern"`
	IgnoreDirs    []string `yaml:"ignore_dirs"`
}

// IssuesConfig contains issue tracker configuration
type IssuesConfig struct {
	Repository         string `yaml:"repository"`
	FallbackRepository string `yaml:"fallback_repository"`
	APIBaseURL         string `yaml:"api_base_url"`
	PerPage            int    `yaml:"per_page"`
	Token              string `yaml:"-"`
}

// ReportsConfig contains output locations for generated documents
type ReportsConfig struct {
	OutputDir      string `yaml:"output_dir"`
	ContextMapFile string `yaml:"context_map_file"`
	GuideFile      string `yaml:"guide_file"`
	ReportFile     string `yaml:"report_file"`
}

// AIConfig contains AI-related configuration
type AIConfig struct {
	Enabled         bool    `yaml:"enabled"`
	Model           string  `yaml:"model"`
	Temperature     float32 `yaml:"temperature"`
	TopK            int32   `yaml:"top_k"`
	TopP            float32 `yaml:"top_p"`
	MaxOutputTokens int32   `yaml:"max_output_tokens"`
	APIKey          string  `yaml:"-"`
}

// BotConfig contains webhook bot configuration
type BotConfig struct {
	ReadyLabel      string `yaml:"ready_label"`
	ReadyLabelColor string `yaml:"ready_label_color"`
}

// DebugConfig contains debug-related configuration
type DebugConfig struct {
	Enabled   bool   `yaml:"enabled"`
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// MaxPerPage is the page size ceiling for the issue listing request.
const MaxPerPage = 50

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Enhancer: EnhancerConfig{
			SourceDirs:    []string{"app"},
			SourcePattern: "*.php",
			ConfigDirs:    []string{"config"},
			ConfigPattern: "*.php",
			IgnoreDirs:    []string{"vendor", "node_modules", ".git", "storage"},
		},
		Issues: IssuesConfig{
			FallbackRepository: "otpplus/securify",
			PerPage:            MaxPerPage,
		},
		Reports: ReportsConfig{
			OutputDir:      ".ai-enhanced",
			ContextMapFile: "docs/ai_context_map.json",
			GuideFile:      "docs/AI_AGENT_GUIDE.md",
			ReportFile:     "reports/enhancement_report.json",
		},
		AI: AIConfig{
			Model:           "gemini-2.5-flash",
			Temperature:     0.4,
			TopK:            40,
			TopP:            0.95,
			MaxOutputTokens: 2048,
		},
		Bot: BotConfig{
			ReadyLabel:      "devflow-ready",
			ReadyLabelColor: "0e8a16",
		},
		Debug: DebugConfig{
			LogLevel:  "info",
			LogFormat: "text",
		},
	}
}

// LoadConfig loads configuration from the specified file on top of Default.
// An empty path falls back to DefaultPath, which may be absent.
func LoadConfig(configPath string) (*Config, error) {
	cfg := Default()

	explicit := configPath != ""
	if !explicit {
		configPath = DefaultPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			cfg.applyEnv()
			return cfg, nil
		}
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config file not found: %s", configPath)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyEnv()
	cfg.normalize()
	return cfg, nil
}

// applyEnv pulls credentials and overrides from the environment.
func (c *Config) applyEnv() {
	c.Issues.Token = os.Getenv("GITHUB_TOKEN")
	c.AI.APIKey = os.Getenv("GEMINI_API_KEY")
	if repo := os.Getenv("DEVFLOW_REPOSITORY"); repo != "" {
		c.Issues.Repository = repo
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.Debug.LogLevel = level
	}
}

func (c *Config) normalize() {
	if c.Issues.PerPage <= 0 || c.Issues.PerPage > MaxPerPage {
		c.Issues.PerPage = MaxPerPage
	}
	if c.Issues.FallbackRepository == "" {
		c.Issues.FallbackRepository = Default().Issues.FallbackRepository
	}
	if c.Reports.OutputDir == "" {
		c.Reports.OutputDir = Default().Reports.OutputDir
	}
	if c.Enhancer.SourcePattern == "" {
		c.Enhancer.SourcePattern = "*.php"
	}
	if c.Enhancer.ConfigPattern == "" {
		c.Enhancer.ConfigPattern = "*.php"
	}
	if c.Bot.ReadyLabel == "" {
		c.Bot.ReadyLabel = Default().Bot.ReadyLabel
	}
}

// GetReportPath returns the full path to a generated report file
func (c *Config) GetReportPath(workspace, fileName string) string {
	return filepath.Join(workspace, c.Reports.OutputDir, fileName)
}
