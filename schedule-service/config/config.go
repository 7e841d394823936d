package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Port           string   `yaml:"port" env:"PORT" env-default:"8081"`
	JWTSecret      string   `yaml:"jwt_secret" env:"JWT_SECRET" env-required:"true"`
	UseMemoryStore bool     `yaml:"use_memory_store" env:"USE_MEMORY_STORE" env-default:"false"`
	SeedOnStart    bool     `yaml:"seed_on_start" env:"SEED_ON_START" env-default:"true"`
	Database       Database `yaml:"database"`
	Redis          Redis    `yaml:"redis"`
}

type Database struct {
	User         string `yaml:"user" env:"DB_USER" env-default:"schedule_user"`
	Password     string `yaml:"password" env:"DB_PASSWORD" env-default:"schedule_password"`
	DatabaseName string `yaml:"database_name" env:"DB_NAME" env-default:"schedule_db"`
	Host         string `yaml:"host" env:"DB_HOST" env-default:"localhost"`
	Port         string `yaml:"port" env:"DB_PORT" env-default:"5432"`
	SSLMode      string `yaml:"ssl_mode" env:"DB_SSL_MODE" env-default:"disable"`

	// Connection Pool Settings
	MaxOpenConns    int `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS" env-default:"25"`
	MaxIdleConns    int `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS" env-default:"10"`
	ConnMaxLifetime int `yaml:"conn_max_lifetime_minutes" env:"DB_CONN_MAX_LIFETIME" env-default:"30"`
}

func (d *Database) GetDatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DatabaseName, d.SSLMode)
}

type Redis struct {
	Host     string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port     string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD" env-default:""`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

func (r *Redis) GetRedisURL() string {
	return fmt.Sprintf("%s:%s", r.Host, r.Port)
}

func Initialise(configPath string, useEnv bool) (*Config, error) {
	cfg := &Config{}

	if useEnv {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment variables: %w", err)
		}
		return cfg, nil
	}

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			if err := cleanenv.ReadConfig(configPath, cfg); err != nil {
				return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
			}
			return cfg, nil
		}
	}

	// Fallback to environment variables
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment variables: %w", err)
	}

	return cfg, nil
}
