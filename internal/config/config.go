// Package config manages application configuration from files and environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mapforge/hlockit/internal/presets"
)

// Config holds the application configuration. Values become the defaults for
// the corresponding command flags; flags always win.
type Config struct {
	Python   string `mapstructure:"python"`
	Pipeline struct {
		Feature        string `mapstructure:"feature"`
		Matcher        string `mapstructure:"matcher"`
		MatcherWeights string `mapstructure:"matcher_weights"`
		Pairing        string `mapstructure:"pairing"`
		Retrieval      string `mapstructure:"retrieval"`
		TopK           int    `mapstructure:"top_k"`
		CameraModel    string `mapstructure:"camera_model"`
		SingleCamera   bool   `mapstructure:"single_camera"`
	} `mapstructure:"pipeline"`
	Output struct {
		Color    bool `mapstructure:"color"`
		Progress bool `mapstructure:"progress"`
	} `mapstructure:"output"`
}

// Load reads the configuration from ~/.hlockit/config.yaml and environment
// variables (HLOCKIT_ prefix).
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(Dir())

	viper.SetDefault("python", "python3")
	viper.SetDefault("pipeline.feature", presets.DefaultFeature)
	viper.SetDefault("pipeline.matcher", presets.DefaultMatcher)
	viper.SetDefault("pipeline.matcher_weights", presets.DefaultMatcherWeights)
	viper.SetDefault("pipeline.pairing", presets.DefaultPairing)
	viper.SetDefault("pipeline.retrieval", presets.DefaultRetrieval)
	viper.SetDefault("pipeline.top_k", presets.DefaultTopK)
	viper.SetDefault("pipeline.camera_model", presets.DefaultCameraModel)
	viper.SetDefault("pipeline.single_camera", true)
	viper.SetDefault("output.color", true)
	viper.SetDefault("output.progress", true)

	viper.SetEnvPrefix("HLOCKIT")
	viper.AutomaticEnv()

	// Missing config file is fine; defaults apply.
	_ = viper.ReadInConfig()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Dir returns the configuration directory (~/.hlockit).
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".hlockit"
	}
	return filepath.Join(home, ".hlockit")
}

// Path returns the config file path.
func Path() string {
	return filepath.Join(Dir(), "config.yaml")
}

// Init writes a commented default config file. Fails if one already exists
// unless force is set.
func Init(force bool) (string, error) {
	path := Path()
	if !force {
		if _, err := os.Stat(path); err == nil {
			return path, fmt.Errorf("config file already exists at %s — use --force to overwrite", path)
		}
	}
	if err := os.MkdirAll(Dir(), 0755); err != nil {
		return path, fmt.Errorf("could not create config directory: %w", err)
	}

	content := fmt.Sprintf(`# hlockit configuration
# Values here become flag defaults; flags always take precedence.

# Python interpreter with hloc and pycolmap installed.
python: python3

pipeline:
  feature: %s
  matcher: %s
  matcher_weights: %s
  pairing: %s
  retrieval: %s
  top_k: %d
  camera_model: %s
  single_camera: true

output:
  color: true
  progress: true
`, presets.DefaultFeature, presets.DefaultMatcher, presets.DefaultMatcherWeights,
		presets.DefaultPairing, presets.DefaultRetrieval, presets.DefaultTopK,
		presets.DefaultCameraModel)

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return path, fmt.Errorf("could not write config file: %w", err)
	}
	return path, nil
}

// Issue is a problem found while validating the configuration.
type Issue struct {
	Key      string `json:"key"`
	Severity string `json:"severity"` // "error" or "warning"
	Message  string `json:"message"`
}

// Validate checks the loaded configuration against the preset schema.
func Validate(cfg *Config) []Issue {
	var issues []Issue

	if _, err := presets.FeatureByName(cfg.Pipeline.Feature); err != nil {
		issues = append(issues, Issue{Key: "pipeline.feature", Severity: "error", Message: err.Error()})
	}
	if _, err := presets.MatcherByName(cfg.Pipeline.Matcher); err != nil {
		issues = append(issues, Issue{Key: "pipeline.matcher", Severity: "error", Message: err.Error()})
	}
	if _, err := presets.RetrievalByName(cfg.Pipeline.Retrieval); err != nil {
		issues = append(issues, Issue{Key: "pipeline.retrieval", Severity: "error", Message: err.Error()})
	}
	if err := presets.ValidPairing(cfg.Pipeline.Pairing); err != nil {
		issues = append(issues, Issue{Key: "pipeline.pairing", Severity: "error", Message: err.Error()})
	}
	if err := presets.ValidCameraModel(cfg.Pipeline.CameraModel); err != nil {
		issues = append(issues, Issue{Key: "pipeline.camera_model", Severity: "error", Message: err.Error()})
	}
	if err := presets.ValidMatcherWeights(cfg.Pipeline.MatcherWeights); err != nil {
		issues = append(issues, Issue{Key: "pipeline.matcher_weights", Severity: "error", Message: err.Error()})
	}
	if err := presets.CheckCompatible(cfg.Pipeline.Feature, cfg.Pipeline.Matcher); err != nil {
		issues = append(issues, Issue{Key: "pipeline.matcher", Severity: "error", Message: err.Error()})
	}
	if cfg.Pipeline.TopK < 1 {
		issues = append(issues, Issue{Key: "pipeline.top_k", Severity: "error",
			Message: fmt.Sprintf("top_k must be positive, got %d", cfg.Pipeline.TopK)})
	}
	if cfg.Python == "" {
		issues = append(issues, Issue{Key: "python", Severity: "warning",
			Message: "no python interpreter configured — falling back to python3"})
	}
	return issues
}

// Dump renders the configuration as YAML for 'hlockit config show'.
func Dump(cfg *Config) (string, error) {
	out := map[string]any{
		"python": cfg.Python,
		"pipeline": map[string]any{
			"feature":         cfg.Pipeline.Feature,
			"matcher":         cfg.Pipeline.Matcher,
			"matcher_weights": cfg.Pipeline.MatcherWeights,
			"pairing":         cfg.Pipeline.Pairing,
			"retrieval":       cfg.Pipeline.Retrieval,
			"top_k":           cfg.Pipeline.TopK,
			"camera_model":    cfg.Pipeline.CameraModel,
			"single_camera":   cfg.Pipeline.SingleCamera,
		},
		"output": map[string]any{
			"color":    cfg.Output.Color,
			"progress": cfg.Output.Progress,
		},
	}
	data, err := yaml.Marshal(out)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
