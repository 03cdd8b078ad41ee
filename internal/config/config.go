// Package config carga la configuración desde config.yaml y variables de
// entorno con prefijo PET_.
package config

import (
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Database DatabaseConfig `mapstructure:"database"`
	Clock    ClockConfig    `mapstructure:"clock"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // dev | release
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Output string `mapstructure:"output"` // stdout | file
	File   string `mapstructure:"file"`
}

type DatabaseConfig struct {
	// DSN opcional: si está presente, los flags y el historial se persisten
	// en Postgres; si no, todo queda en memoria.
	DSN string `mapstructure:"dsn"`
}

type ClockConfig struct {
	// DebugToday fija "hoy" a una fecha YYYY-MM-DD para pruebas manuales.
	DebugToday string `mapstructure:"debug_today"`
}

func (c ServerConfig) IsDev() bool {
	return strings.ToLower(c.Mode) != "release"
}

// Load lee config.yaml (si existe) y el entorno. Nunca falla por archivo
// ausente: los defaults cubren el modo dev.
func Load() (Config, error) {
	v := viper.New()

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "dev")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.output", "stdout")
	v.SetDefault("log.file", "logs/pet-reminder.log")
	v.SetDefault("database.dsn", "")
	v.SetDefault("clock.debug_today", "")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("PET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
