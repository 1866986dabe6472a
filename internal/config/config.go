package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/linkeddata/internal/utils"
)

// Global configuration structure.
type Global struct {
	// Pipeline files
	InputPath  string `mapstructure:"input_path" yaml:"input_path"`
	OutputPath string `mapstructure:"output_path" yaml:"output_path"`
	PlotPath   string `mapstructure:"plot_path" yaml:"plot_path"`
	LabelsPath string `mapstructure:"labels_path" yaml:"labels_path"`
	Delimiter  string `mapstructure:"delimiter" yaml:"delimiter"`

	// Clustering
	Clusters       int    `mapstructure:"clusters" yaml:"clusters"`
	Seed           int64  `mapstructure:"seed" yaml:"seed"`
	MaxIter        int    `mapstructure:"max_iter" yaml:"max_iter"`
	NInit          int    `mapstructure:"n_init" yaml:"n_init"`
	LeadingMissing string `mapstructure:"leading_missing" yaml:"leading_missing"`
	ReuseLabels    bool   `mapstructure:"reuse_labels" yaml:"reuse_labels"`
	PlotTitle      string `mapstructure:"plot_title" yaml:"plot_title"`

	// HTTP service
	ListenHost   string `mapstructure:"listen_host" yaml:"listen_host"`
	Port         int    `mapstructure:"port" yaml:"port"`
	ExampleLimit int    `mapstructure:"example_limit" yaml:"example_limit"`
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.linkeddata/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		dir, err := configDir()
		if err != nil {
			return err
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := utils.SafeWriteFile(path, b); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("LINKEDDATA")
	v.AutomaticEnv()
	// PORT is what hosting platforms inject
	_ = v.BindEnv("port", "LINKEDDATA_PORT", "PORT")

	// Defaults
	v.SetDefault("input_path", "ISOFV163_A8_Anexo.csv")
	v.SetDefault("output_path", "dataset_procesado.csv")
	v.SetDefault("plot_path", filepath.Join("static", "clusters.png"))
	v.SetDefault("labels_path", "dataset_procesado.labels.yaml")
	v.SetDefault("delimiter", "")
	v.SetDefault("clusters", 3)
	v.SetDefault("seed", 42)
	v.SetDefault("max_iter", 300)
	v.SetDefault("n_init", 10)
	v.SetDefault("leading_missing", "zero")
	v.SetDefault("reuse_labels", false)
	v.SetDefault("plot_title", "Patrones de comportamiento (K-Means)")
	v.SetDefault("listen_host", "0.0.0.0")
	v.SetDefault("port", 5000)
	v.SetDefault("example_limit", 10)

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := configDir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate rejects values the pipeline or server cannot work with.
func (c *Global) Validate() error {
	if c.Clusters < 1 {
		return fmt.Errorf("invalid clusters: %d (must be >= 1)", c.Clusters)
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if _, err := ParseDelimiter(c.Delimiter); err != nil {
		return err
	}
	return nil
}

// ParseDelimiter maps the configured delimiter to a rune. Empty means
// auto-detect from the file name.
func ParseDelimiter(s string) (rune, error) {
	switch s {
	case "":
		return 0, nil
	case ",":
		return ',', nil
	case ";":
		return ';', nil
	case "\t", "tab", `\t`:
		return '\t', nil
	case "|":
		return '|', nil
	}
	return 0, fmt.Errorf("unsupported delimiter: %q (use , ; tab |)", s)
}

// Addr returns the host:port the HTTP server listens on.
func (c *Global) Addr() string {
	return fmt.Sprintf("%s:%d", c.ListenHost, c.Port)
}

func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".linkeddata"), nil
}
