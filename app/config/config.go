package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config is the process configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Storage StorageConfig `mapstructure:"storage"`
	Neo4j   Neo4jConfig   `mapstructure:"neo4j"`
	MySQL   MySQLConfig   `mapstructure:"mysql"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// StorageConfig selects the key-value backend the task list persists to.
type StorageConfig struct {
	// Backend: "file" | "memory" | "neo4j" | "mysql"
	Backend string `mapstructure:"backend"`
	DataDir string `mapstructure:"data_dir"`
	// OnCorrupt: "reset" | "fail"
	OnCorrupt string `mapstructure:"on_corrupt"`
}

type Neo4jConfig struct {
	URI      string `mapstructure:"uri"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type MySQLConfig struct {
	DSN string `mapstructure:"dsn"`
}

const EnvPrefix = "TASKLIST"

var defaults = map[string]any{
	"server.addr":        ":8080",
	"storage.backend":    "file",
	"storage.data_dir":   "data",
	"storage.on_corrupt": "reset",
	"neo4j.uri":          "neo4j://localhost:7687",
	"neo4j.username":     "neo4j",
	"neo4j.password":     "password",
	"mysql.dsn":          "root:123456@tcp(127.0.0.1:3306)/tasklist",
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg, _ := load(newViper())
	return cfg
}

// Load reads defaults, then the optional YAML file at path, then TASKLIST_* env overrides.
func Load(path string) (*Config, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	return load(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.Storage.Backend = strings.ToLower(strings.TrimSpace(cfg.Storage.Backend))
	cfg.Storage.OnCorrupt = strings.ToLower(strings.TrimSpace(cfg.Storage.OnCorrupt))
	return &cfg, nil
}
