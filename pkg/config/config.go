package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server ServerConfig
	DB     DBConfig
	CF     CFConfig
	Poller PollerConfig
}

type ServerConfig struct {
	Address string
}

type DBConfig struct {
	Host     string
	User     string
	Password string
	Name     string
	Port     int
}

// CFConfig covers the external judge API and the problem-list cache.
type CFConfig struct {
	BaseURL         string
	TimeoutSeconds  int
	CacheTTLMinutes int
}

type PollerConfig struct {
	IntervalSeconds int
	InitialDelayMs  int
	ProblemDelayMs  int
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./pkg/config")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	viper.SetDefault("server.address", ":5177")
	viper.SetDefault("cf.baseurl", "https://codeforces.com/api")
	viper.SetDefault("cf.timeoutseconds", 15)
	viper.SetDefault("cf.cachettlminutes", 10)
	viper.SetDefault("poller.intervalseconds", 5)
	viper.SetDefault("poller.initialdelayms", 500)
	viper.SetDefault("poller.problemdelayms", 400)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *CFConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func (c *CFConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLMinutes) * time.Minute
}

func (c *PollerConfig) Interval() time.Duration {
	return time.Duration(c.IntervalSeconds) * time.Second
}

func (c *PollerConfig) InitialDelay() time.Duration {
	return time.Duration(c.InitialDelayMs) * time.Millisecond
}

func (c *PollerConfig) ProblemDelay() time.Duration {
	return time.Duration(c.ProblemDelayMs) * time.Millisecond
}
