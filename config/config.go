package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	BackendKV       = "kv"
	BackendPostgres = "postgres"
	BackendMongo    = "mongo"
)

var ErrUnknownBackend = errors.New("unknown backend")

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	Backend        string
	StateFile      string
	PGDSN          string
	MongoURL       string
	MongoDatabase  string
	RPCEndpoint    string
	FactoryAddress string
}

// Load merges config file, environment variables, and flags into Config.
// Flags win over environment, which wins over the file and the defaults.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("PCSPRICING")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("backend", BackendKV)
	v.SetDefault("state-file", "./localdata/graph.json")
	v.SetDefault("mongo-url", "mongodb://localhost:27017")
	v.SetDefault("mongo-database", "pcs")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("pcs-pricing")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := Config{
		Backend:        strings.ToLower(strings.TrimSpace(v.GetString("backend"))),
		StateFile:      v.GetString("state-file"),
		PGDSN:          v.GetString("pg-dsn"),
		MongoURL:       v.GetString("mongo-url"),
		MongoDatabase:  v.GetString("mongo-database"),
		RPCEndpoint:    v.GetString("rpc-endpoint"),
		FactoryAddress: v.GetString("factory-address"),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Backend {
	case BackendKV:
		if c.StateFile == "" {
			return fmt.Errorf("state-file is required with the %s backend", BackendKV)
		}
	case BackendPostgres:
		if c.PGDSN == "" {
			return fmt.Errorf("pg-dsn is required with the %s backend", BackendPostgres)
		}
	case BackendMongo:
		if c.MongoURL == "" || c.MongoDatabase == "" {
			return fmt.Errorf("mongo-url and mongo-database are required with the %s backend", BackendMongo)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, c.Backend)
	}

	if c.RPCEndpoint != "" && c.FactoryAddress == "" {
		return fmt.Errorf("factory-address is required when rpc-endpoint is set")
	}
	return nil
}

// UsesChainLocator tells if pair lookups go to the factory contract instead
// of the store index.
func (c Config) UsesChainLocator() bool {
	return c.RPCEndpoint != ""
}
