// Package config loads runtime settings from the environment, an optional
// config file and command-line flags.
package config

import (
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Keys double as environment variable names once upper-cased.
const (
	KeyTableName            = "todo_table_name"
	KeyRegion               = "aws_region"
	KeyStatusIndex          = "status_date_index"
	KeyEndpoint             = "dynamodb_endpoint"
	KeyLogLevel             = "log_level"
	KeyListenAddr           = "listen_addr"
	KeySkipSchemaValidation = "skip_schema_validation"
	KeyCORSAllowOrigins     = "cors_allow_origins"
)

// Config holds the settings shared by every entry point.
type Config struct {
	TableName            string
	Region               string
	StatusIndex          string
	Endpoint             string
	LogLevel             string
	ListenAddr           string
	SkipSchemaValidation bool

	// AllowOrigins lists the CORS origins, parsed from a comma-separated value.
	AllowOrigins []string
}

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"table":                  KeyTableName,
	"region":                 KeyRegion,
	"status-index":           KeyStatusIndex,
	"endpoint":               KeyEndpoint,
	"log-level":              KeyLogLevel,
	"listen-addr":            KeyListenAddr,
	"skip-schema-validation": KeySkipSchemaValidation,
	"cors-allow-origins":     KeyCORSAllowOrigins,
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyTableName, "flask-todo-dev")
	v.SetDefault(KeyRegion, "us-east-1")
	v.SetDefault(KeyStatusIndex, "StatusDateIndex")
	v.SetDefault(KeyEndpoint, "")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyListenAddr, ":8080")
	v.SetDefault(KeySkipSchemaValidation, false)
	v.SetDefault(KeyCORSAllowOrigins, "*")
}

// RegisterFlags adds the config flags to fs. Flags that are set take
// precedence over the environment.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "path to a config file (json, yaml or toml)")
	fs.String("table", "", "DynamoDB table name")
	fs.String("region", "", "AWS region")
	fs.String("status-index", "", "name of the status/created_at index")
	fs.String("endpoint", "", "DynamoDB endpoint override, e.g. http://localhost:8000")
	fs.String("log-level", "", "log level (debug, info, warn, error)")
	fs.String("listen-addr", "", "listen address for the local server")
	fs.Bool("skip-schema-validation", false, "skip the startup table schema check")
	fs.String("cors-allow-origins", "", "comma-separated CORS origins")
}

// Load reads the configuration. fs may be nil.
func Load(fs *pflag.FlagSet) (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
		if f := fs.Lookup("config"); f != nil && f.Value.String() != "" {
			v.SetConfigFile(f.Value.String())
			if err := v.ReadInConfig(); err != nil {
				return Config{}, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	cfg := Config{
		TableName:            strings.TrimSpace(v.GetString(KeyTableName)),
		Region:               strings.TrimSpace(v.GetString(KeyRegion)),
		StatusIndex:          strings.TrimSpace(v.GetString(KeyStatusIndex)),
		Endpoint:             strings.TrimSpace(v.GetString(KeyEndpoint)),
		LogLevel:             strings.TrimSpace(v.GetString(KeyLogLevel)),
		ListenAddr:           strings.TrimSpace(v.GetString(KeyListenAddr)),
		SkipSchemaValidation: v.GetBool(KeySkipSchemaValidation),
		AllowOrigins:         splitList(v.GetString(KeyCORSAllowOrigins)),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.TableName == "" {
		return errors.New("config: table name is required")
	}
	if c.StatusIndex == "" {
		return errors.New("config: status index name is required")
	}
	if c.Region == "" {
		return errors.New("config: AWS region is required")
	}
	if len(c.AllowOrigins) == 0 {
		return errors.New("config: at least one CORS origin is required")
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Level returns the configured log level, falling back to info.
func (c Config) Level() log.Level {
	lvl, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
