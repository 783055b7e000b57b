// Package config loads run configuration from YAML with environment
// overrides, on top of defaults, and validates the result.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"searchkit/internal/evo"
	"searchkit/internal/pipeline"
	"searchkit/internal/scape"
	"searchkit/internal/stats"
	"searchkit/internal/storage"
)

var ErrInvalid = errors.New("invalid config")

var validate = validator.New(validator.WithRequiredStructEnabled())

type Config struct {
	Problem     string `yaml:"problem" validate:"required"`
	Seed        int64  `yaml:"seed"`
	NumToSearch int    `yaml:"num_to_search" validate:"gte=0"`

	Random    RandomConfig    `yaml:"random"`
	HillClimb HillClimbConfig `yaml:"hill_climb"`
	Pipeline  PipelineConfig  `yaml:"pipeline"`
	Integer   IntegerConfig   `yaml:"integer"`
	CountOnes CountOnesConfig `yaml:"count_ones"`
	Store     StoreConfig     `yaml:"store"`
	Log       LogConfig       `yaml:"log"`
}

type RandomConfig struct {
	Parallel  bool `yaml:"parallel"`
	ChunkSize int  `yaml:"chunk_size" validate:"gte=1"`
	// Workers <= 0 means one per CPU.
	Workers int `yaml:"workers"`
}

type HillClimbConfig struct {
	ChildrenPerStep int  `yaml:"children_per_step" validate:"gte=1"`
	AlwaysReplace   bool `yaml:"always_replace"`
	Workers         int  `yaml:"workers" validate:"gte=0"`
}

type PipelineConfig struct {
	// UseQueue runs processors on a consumer worker behind a bounded queue
	// instead of calling them from the engine.
	UseQueue         bool          `yaml:"use_queue"`
	QueueCapacity    int           `yaml:"queue_capacity" validate:"gte=1"`
	ProgressInterval time.Duration `yaml:"progress_interval" validate:"gte=0"`
	PlotPath         string        `yaml:"plot_path"`
}

type IntegerConfig struct {
	Target  int64 `yaml:"target"`
	Range   int64 `yaml:"range" validate:"gt=0"`
	MaxStep int64 `yaml:"max_step" validate:"gt=0"`
}

type CountOnesConfig struct {
	Bits int `yaml:"bits" validate:"gt=0,lte=1048576"`
}

type StoreConfig struct {
	Kind string `yaml:"kind" validate:"oneof=memory sqlite"`
	Path string `yaml:"path" validate:"required_if=Kind sqlite"`
}

type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=auto text json"`
}

func Default() Config {
	integer := scape.DefaultIntegerConfig()
	return Config{
		Problem:     scape.NameInteger,
		Seed:        1,
		NumToSearch: 1000,
		Random: RandomConfig{
			Parallel:  true,
			ChunkSize: evo.DefaultChunkSize,
		},
		HillClimb: HillClimbConfig{
			ChildrenPerStep: 1,
			Workers:         1,
		},
		Pipeline: PipelineConfig{
			UseQueue:         true,
			QueueCapacity:    pipeline.DefaultCapacity,
			ProgressInterval: stats.DefaultProgressInterval,
		},
		Integer: IntegerConfig{
			Target:  integer.Target,
			Range:   integer.Range,
			MaxStep: integer.MaxStep,
		},
		CountOnes: CountOnesConfig{Bits: scape.DefaultCountOnesConfig().Bits},
		Store:     StoreConfig{Kind: storage.DefaultStoreKind},
		Log:       LogConfig{Level: "info", Format: "auto"},
	}
}

// Load returns defaults overlaid with the YAML file at path (when path is not
// empty) and then with SEARCHKIT_* environment variables, validated.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := decode(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	applyEnv(&cfg, os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// applyEnv overrides the settings an operator most often changes per host.
func applyEnv(cfg *Config, lookup func(string) (string, bool)) {
	if v, ok := lookup("SEARCHKIT_LOG_LEVEL"); ok && v != "" {
		cfg.Log.Level = v
	}
	if v, ok := lookup("SEARCHKIT_LOG_FORMAT"); ok && v != "" {
		cfg.Log.Format = v
	}
	if v, ok := lookup("SEARCHKIT_STORE"); ok && v != "" {
		cfg.Store.Kind = v
	}
	if v, ok := lookup("SEARCHKIT_DB_PATH"); ok && v != "" {
		cfg.Store.Path = v
	}
	if v, ok := lookup("SEARCHKIT_SEED"); ok {
		if seed, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Seed = seed
		}
	}
}

func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if _, err := scape.Resolve(c.Problem); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}
