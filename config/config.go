package config

import (
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config defines the app configuration.
type Config struct {
	Server struct {
		Port int    `yaml:"port" env:"PORT" env-default:"4000"`
		Env  string `yaml:"env" env:"ENV" env-default:"development"`
	} `yaml:"server"`
	Database struct {
		DSN          string `yaml:"dsn" env:"DSN"`
		MaxOpenConns int    `yaml:"max_open_conns" env:"MAXOPENCONNS" env-default:"25"`
		MaxIdleConns int    `yaml:"max_idle_conns" env:"MAXIDLECONNS" env-default:"25"`
		MaxIdleTime  string `yaml:"max_idle_time" env:"MAXIDLETIME" env-default:"15m"`
	} `yaml:"database"`
	Auth struct {
		Secret         string `yaml:"secret" env:"AUTHSECRET"`
		CodeTTL        string `yaml:"code_ttl" env:"CODETTL" env-default:"30m"`
		AccessTokenTTL string `yaml:"access_token_ttl" env:"ACCESSTOKENTTL" env-default:"24h"`
	} `yaml:"auth"`
	SMTP struct {
		Host     string `yaml:"host" env:"SMTPHOST"`
		Port     int    `yaml:"port" env:"SMTPPORT" env-default:"25"`
		Username string `yaml:"username" env:"SMTPUSERNAME"`
		Password string `yaml:"password" env:"SMTPPASSWORD"`
		Sender   string `yaml:"sender" env:"SMTPSENDER"`
	} `yaml:"smtp"`
	Limiter struct {
		RPS     float64 `yaml:"rps" env:"RPS" env-default:"2"`
		Burst   int     `yaml:"burst" env:"BURST" env-default:"4"`
		Enabled bool    `yaml:"enabled" env:"LENABLED" env-default:"true"`
	} `yaml:"limiter"`
	Cors struct {
		TrustedOrigins []string `yaml:"trusted_origins" env:"TRUSTEDORIGINS"`
	} `yaml:"cors"`
	Metrics struct {
		Enabled bool `yaml:"enabled" env:"MENABLED" env-default:"false"`
	} `yaml:"metrics"`
	BasicAuth struct {
		Username string `yaml:"username" env:"USERNAME"`
		Password string `yaml:"password" env:"PASSWORD"`
	} `yaml:"basic_auth"`
}

// Decode reads the configuration from the YAML file named by CONFIG_PATH
// (when set and present) and then applies environment variable overrides.
func Decode() (Config, error) {
	var cfg Config
	path := os.Getenv("CONFIG_PATH")
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			err = cleanenv.ReadConfig(path, &cfg)
			return cfg, err
		}
	}
	err := cleanenv.ReadEnv(&cfg)
	return cfg, err
}
