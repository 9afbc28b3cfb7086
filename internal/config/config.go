package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds everything the server needs at startup.
type Config struct {
	Addr       string
	DSN        string
	SessionKey string
	FeedLimit  int
}

// Load reads config.yaml from configPath, with WARREN_-prefixed
// environment variables overriding file values. A missing file is not
// an error; defaults plus env are enough to run.
func Load(configPath string) (Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AutomaticEnv()
	v.SetEnvPrefix("WARREN")

	v.SetDefault("addr", ":8080")
	v.SetDefault("dsn", "warren.db")
	v.SetDefault("session_key", "")
	v.SetDefault("feed_limit", 25)

	v.BindEnv("addr")
	v.BindEnv("dsn")
	v.BindEnv("session_key")
	v.BindEnv("feed_limit")

	if err := v.ReadInConfig(); err != nil {
		log.Println("no config.yaml found, using defaults and env vars")
	}

	return Config{
		Addr:       v.GetString("addr"),
		DSN:        v.GetString("dsn"),
		SessionKey: v.GetString("session_key"),
		FeedLimit:  v.GetInt("feed_limit"),
	}, nil
}
