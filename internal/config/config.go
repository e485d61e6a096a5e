package config

import (
	"fmt"
	"os"
	"time"

	"clarity-score-service/internal/domain"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port           string   `yaml:"port"`
		PublicHost     string   `yaml:"public_host"`
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"server"`
	Log struct {
		Level string `yaml:"level"`
		File  string `yaml:"file"`
	} `yaml:"log"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Questionnaire struct {
		ID         string                `yaml:"id"`
		TTL        string                `yaml:"ttl"`
		Definition *domain.Questionnaire `yaml:"definition"`
	} `yaml:"questionnaire"`
	Quiz struct {
		ResultsPath string `yaml:"results_path"`
		Countdown   int    `yaml:"countdown"`
	} `yaml:"quiz"`
	Share struct {
		EmailMessage   string `yaml:"email_message"`
		ExportFilename string `yaml:"export_filename"`
	} `yaml:"share"`
}

// Load reads YAML config from path.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// QuestionnaireID returns the configured questionnaire, or the built-in one.
func (c Config) QuestionnaireID() string {
	if c.Questionnaire.ID != "" {
		return c.Questionnaire.ID
	}
	if c.Questionnaire.Definition != nil && c.Questionnaire.Definition.ID != "" {
		return c.Questionnaire.Definition.ID
	}
	return domain.DefaultQuestionnaireID
}

// Questionnaires returns the questionnaires served without a database: the
// built-in layout plus the configured definition, which replaces it when the
// IDs match.
func (c Config) Questionnaires() (map[string]domain.Questionnaire, error) {
	def := domain.DefaultQuestionnaire()
	out := map[string]domain.Questionnaire{def.ID: def}
	if d := c.Questionnaire.Definition; d != nil {
		q := *d
		if q.ID == "" {
			q.ID = c.QuestionnaireID()
		}
		if len(q.Groups) == 0 {
			q.Groups = domain.DefaultGroups()
		}
		if err := q.Validate(); err != nil {
			return nil, fmt.Errorf("questionnaire %q: %w", q.ID, err)
		}
		out[q.ID] = q
	}
	return out, nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
