// Package config holds all configuration for the trigger pipeline service.
// Values come from a YAML file with environment variable overrides; every
// scoring coefficient lives here rather than in the scoring code.
package config

import (
	"time"
)

// Default configuration values.
const (
	defaultServiceName     = "triggerd"
	defaultServiceVersion  = "1.0.0"
	defaultServicePort     = 8074
	defaultConcurrency     = 4
	defaultBatchSize       = 100
	defaultPollIntervalSec = 60
	defaultRatePerSecond   = 25
	defaultDBPath          = "triggers.db"
	defaultLogLevel        = "info"
	defaultLogFormat       = "json"
	defaultDedupBucket     = "week"

	defaultCategoryBase   = 2.0
	defaultCategoryRepeat = 1.0
	defaultCategoryCap    = 2
	defaultStaleBonus     = 0.5

	defaultScaleMedium     = 10_000
	defaultScaleLarge      = 100_000
	defaultScaleEnterprise = 1_000_000

	defaultPositiveThreshold = 0.1
	defaultNegativeThreshold = -0.1
)

// Config holds all configuration for the triggerd service.
type Config struct {
	Service   ServiceConfig   `yaml:"service"`
	Database  DatabaseConfig  `yaml:"database"`
	Logging   LoggingConfig   `yaml:"logging"`
	Taxonomy  Taxonomy        `yaml:"taxonomy"`
	Sentiment SentimentConfig `yaml:"sentiment"`
	Quantity  QuantityConfig  `yaml:"quantity"`
	Scoring   ScoringConfig   `yaml:"scoring"`
	Dedup     DedupConfig     `yaml:"dedup"`
}

// ServiceConfig holds service-level configuration.
type ServiceConfig struct {
	Name         string        `yaml:"name"`
	Version      string        `yaml:"version"`
	Port         int           `yaml:"port"`
	Debug        bool          `yaml:"debug"`
	Concurrency  int           `yaml:"concurrency"`
	BatchSize    int           `yaml:"batch_size"`
	PollInterval time.Duration `yaml:"poll_interval"`
	// SpoolDir, when set, is drained on each poll: monitors drop JSONL
	// files of raw items there and the runner ingests them.
	SpoolDir      string  `yaml:"spool_dir"`
	RatePerSecond float64 `yaml:"rate_per_second"`
}

// DatabaseConfig holds sqlite storage configuration.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Taxonomy maps a trigger category to its curated phrase list.
type Taxonomy map[string][]string

// SentimentConfig holds the offline sentiment lexicons and label thresholds.
type SentimentConfig struct {
	Positive          []string `yaml:"positive"`
	Negative          []string `yaml:"negative"`
	PositiveThreshold float64  `yaml:"positive_threshold"`
	NegativeThreshold float64  `yaml:"negative_threshold"`
}

// QuantityConfig holds the magnitude bands for recognized quantities.
// A quantity's normalized value is compared against these thresholds.
type QuantityConfig struct {
	ScaleMedium     float64 `yaml:"scale_medium"`
	ScaleLarge      float64 `yaml:"scale_large"`
	ScaleEnterprise float64 `yaml:"scale_enterprise"`
}

// RecencyStep is one band of the recency bonus step decay.
type RecencyStep struct {
	MaxAgeDays int     `yaml:"max_age_days"`
	Bonus      float64 `yaml:"bonus"`
}

// ScoringConfig holds every coefficient of the trigger score formula.
// The formula's invariants (bounded range, monotonicity) are code; the
// coefficients are data.
type ScoringConfig struct {
	CategoryBase   float64            `yaml:"category_base"`   // first phrase of a category
	CategoryRepeat float64            `yaml:"category_repeat"` // second phrase of the same category
	CategoryCap    int                `yaml:"category_cap"`    // phrases per category that count
	QuantityBonus  map[string]float64 `yaml:"quantity_bonus"`  // scale band -> bonus
	RecencySteps   []RecencyStep      `yaml:"recency_steps"`
	StaleBonus     float64            `yaml:"stale_bonus"`
	SourceWeights  map[string]float64 `yaml:"source_weights"`
}

// DedupConfig holds deduplication settings.
type DedupConfig struct {
	Bucket string `yaml:"bucket"` // day, week, or month
}

// SetDefaults applies default values to the config.
func (c *Config) SetDefaults() {
	setServiceDefaults(&c.Service)
	if c.Database.Path == "" {
		c.Database.Path = defaultDBPath
	}
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	if len(c.Taxonomy) == 0 {
		c.Taxonomy = DefaultTaxonomy()
	}
	setSentimentDefaults(&c.Sentiment)
	setQuantityDefaults(&c.Quantity)
	setScoringDefaults(&c.Scoring)
	if c.Dedup.Bucket == "" {
		c.Dedup.Bucket = defaultDedupBucket
	}
}

func setServiceDefaults(s *ServiceConfig) {
	if s.Name == "" {
		s.Name = defaultServiceName
	}
	if s.Version == "" {
		s.Version = defaultServiceVersion
	}
	if s.Port == 0 {
		s.Port = defaultServicePort
	}
	if s.Concurrency == 0 {
		s.Concurrency = defaultConcurrency
	}
	if s.BatchSize == 0 {
		s.BatchSize = defaultBatchSize
	}
	if s.PollInterval == 0 {
		s.PollInterval = defaultPollIntervalSec * time.Second
	}
	if s.RatePerSecond == 0 {
		s.RatePerSecond = defaultRatePerSecond
	}
}

func setSentimentDefaults(s *SentimentConfig) {
	if len(s.Positive) == 0 {
		s.Positive = DefaultPositiveWords()
	}
	if len(s.Negative) == 0 {
		s.Negative = DefaultNegativeWords()
	}
	if s.PositiveThreshold == 0 {
		s.PositiveThreshold = defaultPositiveThreshold
	}
	if s.NegativeThreshold == 0 {
		s.NegativeThreshold = defaultNegativeThreshold
	}
}

func setQuantityDefaults(q *QuantityConfig) {
	if q.ScaleMedium == 0 {
		q.ScaleMedium = defaultScaleMedium
	}
	if q.ScaleLarge == 0 {
		q.ScaleLarge = defaultScaleLarge
	}
	if q.ScaleEnterprise == 0 {
		q.ScaleEnterprise = defaultScaleEnterprise
	}
}

func setScoringDefaults(s *ScoringConfig) {
	if s.CategoryBase == 0 {
		s.CategoryBase = defaultCategoryBase
	}
	if s.CategoryRepeat == 0 {
		s.CategoryRepeat = defaultCategoryRepeat
	}
	if s.CategoryCap == 0 {
		s.CategoryCap = defaultCategoryCap
	}
	if len(s.QuantityBonus) == 0 {
		s.QuantityBonus = map[string]float64{
			"small":      0.5,
			"medium":     1.0,
			"large":      2.0,
			"enterprise": 2.5,
		}
	}
	if len(s.RecencySteps) == 0 {
		s.RecencySteps = []RecencyStep{
			{MaxAgeDays: 1, Bonus: 2.0},
			{MaxAgeDays: 7, Bonus: 1.5},
			{MaxAgeDays: 30, Bonus: 1.0},
		}
	}
	if s.StaleBonus == 0 {
		s.StaleBonus = defaultStaleBonus
	}
	if len(s.SourceWeights) == 0 {
		s.SourceWeights = map[string]float64{
			"news":       1.0,
			"financial":  1.5,
			"tender":     2.0,
			"regulatory": 2.0,
		}
	}
}
