package watch

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const defaultInterval = 5 * time.Minute

// Repo identifies one repository to watch.
type Repo struct {
	Owner string `yaml:"owner"`
	Repo  string `yaml:"repo"`
}

// Config is the watch-mode configuration file.
type Config struct {
	Repos    []Repo   `yaml:"repos"`
	Interval Duration `yaml:"interval"`
}

// Duration decodes YAML duration strings like "5m" or "90s".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration '%s': %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// LoadConfig reads and validates a watch configuration file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	if len(cfg.Repos) == 0 {
		return Config{}, fmt.Errorf("config file lists no repositories")
	}
	for i, repo := range cfg.Repos {
		if repo.Owner == "" || repo.Repo == "" {
			return Config{}, fmt.Errorf("repo entry %d is missing owner or repo", i)
		}
	}
	if cfg.Interval == 0 {
		cfg.Interval = Duration(defaultInterval)
	}

	return cfg, nil
}
