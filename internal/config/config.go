package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	OpenAI     OpenAIConfig     `yaml:"openai" mapstructure:"openai"`
	Data       DataConfig       `yaml:"data" mapstructure:"data"`
	Retrieval  RetrievalConfig  `yaml:"retrieval" mapstructure:"retrieval"`
	Extraction ExtractionConfig `yaml:"extraction" mapstructure:"extraction"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// OpenAIConfig holds chat-completion API settings.
type OpenAIConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	Model   string `yaml:"model" mapstructure:"model"`
}

// DataConfig locates benchmark inputs and outputs on disk.
type DataConfig struct {
	DocumentsDir           string   `yaml:"documents_dir" mapstructure:"documents_dir"`
	GroundTruthsDir        string   `yaml:"ground_truths_dir" mapstructure:"ground_truths_dir"`
	OutputDir              string   `yaml:"output_dir" mapstructure:"output_dir"`
	RetrievalInstructions  string   `yaml:"retrieval_instructions" mapstructure:"retrieval_instructions"`
	ExtractionInstructions string   `yaml:"extraction_instructions" mapstructure:"extraction_instructions"`
	Docs                   []string `yaml:"docs" mapstructure:"docs"`
}

// RetrievalConfig configures the retrieval stage.
type RetrievalConfig struct {
	Jobs             int     `yaml:"jobs" mapstructure:"jobs"`
	MaxTokens        int     `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature      float64 `yaml:"temperature" mapstructure:"temperature"`
	SectionBatchSize int     `yaml:"section_batch_size" mapstructure:"section_batch_size"`
	SectionMaxTokens int     `yaml:"section_max_tokens" mapstructure:"section_max_tokens"`
}

// ExtractionConfig configures the extraction stage.
type ExtractionConfig struct {
	Jobs           int    `yaml:"jobs" mapstructure:"jobs"`
	Mode           string `yaml:"mode" mapstructure:"mode"`
	ReasoningModel bool   `yaml:"reasoning_model" mapstructure:"reasoning_model"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// defaultDocs is the benchmark document set.
var defaultDocs = []string{
	"adventis",
	"ancora_heart",
	"andrian",
	"anomali",
	"at_bay",
	"bitgo",
	"corium",
	"gardner",
	"jfrog",
	"park_place",
	"people_ai",
	"sprout",
	"standard_biotools",
	"sylabs",
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("POLICYBENCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("openai.model", "gpt-4.1")
	v.SetDefault("data.documents_dir", "raw_data/outputs")
	v.SetDefault("data.ground_truths_dir", "raw_data/ground_truths")
	v.SetDefault("data.output_dir", "processed_data")
	v.SetDefault("data.retrieval_instructions", "raw_data/retrieval_instructions.json")
	v.SetDefault("data.extraction_instructions", "raw_data/extraction_instructions.json")
	v.SetDefault("data.docs", defaultDocs)
	v.SetDefault("retrieval.jobs", 16)
	v.SetDefault("retrieval.max_tokens", 5000)
	v.SetDefault("retrieval.temperature", 0.0)
	v.SetDefault("retrieval.section_batch_size", 10)
	v.SetDefault("retrieval.section_max_tokens", 10000)
	v.SetDefault("extraction.jobs", 16)
	v.SetDefault("extraction.mode", "retrieved")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the fields required by the given command mode.
func (c *Config) Validate(mode string) error {
	switch mode {
	case "retrieve", "extract":
		if c.OpenAI.Key == "" {
			return eris.New("config: openai.key is required")
		}
		if c.OpenAI.Model == "" {
			return eris.New("config: openai.model is required")
		}
	case "evaluate":
		// Evaluation reads persisted generations only.
	default:
		return eris.Errorf("config: unknown validation mode %q", mode)
	}

	if mode == "extract" {
		m := c.Extraction.Mode
		if m != "retrieved" && m != "full" {
			return eris.Errorf("config: extraction.mode must be retrieved or full, got %q", m)
		}
	}

	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
