package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/baderkha/sql2doc/pkg/conditional"
	"github.com/baderkha/sql2doc/pkg/migrate/config/targetcfg"
	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"
)

// DefaultMaxConcurrency : worker cap used when the job does not set one
const DefaultMaxConcurrency = 8

// Config : configuration for the job
type Config[S any, T any] struct {
	MaxConcurrency int `json:"max_concurrency" yaml:"max_concurrency"`
	// Tables : explicit subset, nil means discover every table in the source
	Tables []string `json:"tables" yaml:"tables"`
	// TableTimeout : upper bound for one table's read -> import pipeline, 0 disables it
	TableTimeout time.Duration       `json:"table_timeout" yaml:"table_timeout"`
	TmpDir       string              `json:"tmp_dir" yaml:"tmp_dir"`
	SourceConfig S                   `json:"source" yaml:"source"`
	Target       T                   `json:"target" yaml:"target"`
	Archive      targetcfg.S3Options `json:"archive" yaml:"archive"`
	// Transform : optional per table hook, only settable from code
	Transform TransformFunc `json:"-" yaml:"-"`
}

// New : config with defaults filled in, decode on top of this
func New[S any, T any]() Config[S, T] {
	return Config[S, T]{
		MaxConcurrency: DefaultMaxConcurrency,
		TmpDir:         conditional.Coalesce(os.Getenv("WRITE_DIR"), os.TempDir()),
	}
}

var envRef = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnv : replaces ${NAME} with its environment value, any other $ is kept as written
func expandEnv(s string) string {
	return envRef.ReplaceAllStringFunc(s, func(ref string) string {
		return os.Getenv(ref[2 : len(ref)-1])
	})
}

// Load : reads a yaml or json job file, ${VAR} references are expanded from the environment
func Load[S any, T any](path string) (Config[S, T], error) {
	cfg := New[S, T]()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("could not read job file %s : %w", path, err)
	}
	if err := yaml.Unmarshal([]byte(expandEnv(string(b))), &cfg); err != nil {
		return cfg, fmt.Errorf("could not parse job file %s : %w", path, err)
	}
	return cfg, nil
}

type validator interface {
	Validate() error
}

// Validate : collects every problem with the job instead of stopping at the first
func (c *Config[S, T]) Validate() error {
	var result error
	if c.MaxConcurrency <= 0 {
		result = multierror.Append(result, fmt.Errorf("max_concurrency must be positive, got %d", c.MaxConcurrency))
	}
	if c.TableTimeout < 0 {
		result = multierror.Append(result, fmt.Errorf("table_timeout must not be negative, got %s", c.TableTimeout))
	}
	if c.TmpDir == "" {
		result = multierror.Append(result, errors.New("tmp_dir is required"))
	}
	if v, ok := any(c.SourceConfig).(validator); ok {
		if err := v.Validate(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	if v, ok := any(c.Target).(validator); ok {
		if err := v.Validate(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result
}
