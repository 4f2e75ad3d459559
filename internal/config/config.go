package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"citykiller/internal/engine"
)

// EnvPrefix prefixes environment overrides, e.g. CITYKILLER_SERVER_PORT.
const EnvPrefix = "CITYKILLER"

type Config struct {
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
	Game   GameConfig   `yaml:"game" mapstructure:"game"`
}

type ServerConfig struct {
	Host              string  `yaml:"host" mapstructure:"host"`
	Port              int     `yaml:"port" mapstructure:"port"`
	PublicURL         string  `yaml:"public_url" mapstructure:"public_url"` // base URL printed in QR codes; request host when empty
	MessagesPerSecond float64 `yaml:"messages_per_second" mapstructure:"messages_per_second"`
	Burst             int     `yaml:"burst" mapstructure:"burst"`
}

type LogConfig struct {
	FileDir    string `yaml:"file_dir" mapstructure:"file_dir"`
	MaxSize    int    `yaml:"max_size" mapstructure:"max_size"` // MB
	MaxBackups int    `yaml:"max_backups" mapstructure:"max_backups"`
	MaxAge     int    `yaml:"max_age" mapstructure:"max_age"` // days
	Compress   bool   `yaml:"compress" mapstructure:"compress"`
	Level      string `yaml:"level" mapstructure:"level"` // debug/info/warn/error
	Dev        bool   `yaml:"dev" mapstructure:"dev"`
}

type GameConfig struct {
	Seed             uint64 `yaml:"seed" mapstructure:"seed"` // 0 seeds from the clock
	MaxCitizens      int    `yaml:"max_citizens" mapstructure:"max_citizens"`
	CitizenAttempts  int    `yaml:"citizen_attempts" mapstructure:"citizen_attempts"`
	BuildingAttempts int    `yaml:"building_attempts" mapstructure:"building_attempts"`
	BuildingsPerType int    `yaml:"buildings_per_type" mapstructure:"buildings_per_type"`
	StrictPlacement  bool   `yaml:"strict_placement" mapstructure:"strict_placement"`
	CitizensFile     string `yaml:"citizens_file" mapstructure:"citizens_file"` // embedded deck when empty
	GroupsFile       string `yaml:"groups_file" mapstructure:"groups_file"`     // built-in table when empty
}

// Placement converts the game section into engine placement rules.
func (g GameConfig) Placement() engine.PlacementConfig {
	p := engine.DefaultPlacementConfig()
	p.MaxCitizens = g.MaxCitizens
	p.CitizenAttempts = g.CitizenAttempts
	p.BuildingAttempts = g.BuildingAttempts
	p.BuildingsPerType = g.BuildingsPerType
	return p
}

// Addr is the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

func setDefaults(v *viper.Viper) {
	placement := engine.DefaultPlacementConfig()

	v.SetDefault("server.host", "")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.public_url", "")
	v.SetDefault("server.messages_per_second", 10.0)
	v.SetDefault("server.burst", 20)

	v.SetDefault("log.file_dir", "")
	v.SetDefault("log.max_size", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age", 7)
	v.SetDefault("log.compress", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.dev", false)

	v.SetDefault("game.seed", 0)
	v.SetDefault("game.max_citizens", placement.MaxCitizens)
	v.SetDefault("game.citizen_attempts", placement.CitizenAttempts)
	v.SetDefault("game.building_attempts", placement.BuildingAttempts)
	v.SetDefault("game.buildings_per_type", placement.BuildingsPerType)
	v.SetDefault("game.strict_placement", false)
	v.SetDefault("game.citizens_file", "")
	v.SetDefault("game.groups_file", "")
}

// Load reads the config file at path (optional) and applies environment
// overrides on top of the defaults.
func Load(path string) (Config, error) {
	var conf Config

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return conf, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if err := v.Unmarshal(&conf); err != nil {
		return conf, fmt.Errorf("decode config: %w", err)
	}
	if err := conf.validate(); err != nil {
		return conf, err
	}
	return conf, nil
}

func (c Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Server.MessagesPerSecond <= 0 {
		return errors.New("server.messages_per_second must be positive")
	}
	if c.Server.Burst < 1 {
		return errors.New("server.burst must be at least 1")
	}
	if c.Game.MaxCitizens < 0 || c.Game.CitizenAttempts < 0 || c.Game.BuildingAttempts < 0 || c.Game.BuildingsPerType < 0 {
		return errors.New("game placement limits must not be negative")
	}
	return nil
}
