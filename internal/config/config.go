package config

import (
	"log"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`

	// Service-role credentials used by the cascade deleter and the
	// deadline sweeper. Never handed to user-facing code paths.
	ServiceUser     string `yaml:"service_user"`
	ServicePassword string `yaml:"service_password"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type MQConfig struct {
	URL string `yaml:"url"`
}

type JWTConfig struct {
	Secret string `yaml:"secret"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
}

type SweeperConfig struct {
	// Shared secret for the trigger endpoint. Empty disables the check.
	CronSecret string `yaml:"cron_secret"`
	Timezone   string `yaml:"timezone"`
	// Day offsets before target_date to notify on. Defaults to 7,3,1,0.
	Offsets []int `yaml:"offsets"`
}

type Config struct {
	DB      DBConfig      `yaml:"db"`
	Redis   RedisConfig   `yaml:"redis"`
	MQ      MQConfig      `yaml:"mq"`
	JWT     JWTConfig     `yaml:"jwt"`
	Server  ServerConfig  `yaml:"server"`
	Sweeper SweeperConfig `yaml:"sweeper"`
}

func Load() *Config {
	f, err := os.Open("config.yaml")
	if err != nil {
		log.Fatalf("failed to open config.yaml: %v", err)
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		log.Fatalf("failed to decode config.yaml: %v", err)
	}

	overrideFromEnv(&cfg)
	applyDefaults(&cfg)

	return &cfg
}

func overrideFromEnv(cfg *Config) {
	if host := os.Getenv("DB_HOST"); host != "" {
		cfg.DB.Host = host
	}
	if port := os.Getenv("DB_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.DB.Port = p
		}
	}
	if user := os.Getenv("DB_USER"); user != "" {
		cfg.DB.User = user
	}
	if password := os.Getenv("DB_PASSWORD"); password != "" {
		cfg.DB.Password = password
	}
	if name := os.Getenv("DB_NAME"); name != "" {
		cfg.DB.Name = name
	}
	if user := os.Getenv("DB_SERVICE_USER"); user != "" {
		cfg.DB.ServiceUser = user
	}
	if password := os.Getenv("DB_SERVICE_PASSWORD"); password != "" {
		cfg.DB.ServicePassword = password
	}

	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Redis.Addr = addr
	}
	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		cfg.Redis.Password = password
	}

	if url := os.Getenv("MQ_URL"); url != "" {
		cfg.MQ.URL = url
	}

	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		cfg.JWT.Secret = secret
	}

	if port := os.Getenv("SERVER_PORT"); port != "" {
		cfg.Server.Port = port
	}

	if secret := os.Getenv("CRON_SECRET"); secret != "" {
		cfg.Sweeper.CronSecret = secret
	}
	if tz := os.Getenv("SWEEPER_TIMEZONE"); tz != "" {
		cfg.Sweeper.Timezone = tz
	}
}

func applyDefaults(cfg *Config) {
	if len(cfg.Sweeper.Offsets) == 0 {
		cfg.Sweeper.Offsets = []int{7, 3, 1, 0}
	}
	if cfg.Sweeper.Timezone == "" {
		cfg.Sweeper.Timezone = "UTC"
	}
	// Service role falls back to the ordinary credentials in dev setups.
	if cfg.DB.ServiceUser == "" {
		cfg.DB.ServiceUser = cfg.DB.User
		cfg.DB.ServicePassword = cfg.DB.Password
	}
}
