package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type ReconConfig struct {
	Env          string `yaml:"env" env-default:"local"`
	HTTPServer   `yaml:"http_server"`
	ReconDB      `yaml:"recon_db"`
	LogConfig    `yaml:"log_config"`
	KafkaService `yaml:"kafka-service"`
	TelegramBot  `yaml:"telegram-bot"`
	Sync         SyncConfig     `yaml:"sync"`
	Casinos      []CasinoConfig `yaml:"casinos"`
}

type HTTPServer struct {
	Host string `yaml:"host" env-default:"0.0.0.0"`
	Port string `yaml:"port" env-default:"8080"`
}

type ReconDB struct {
	Dsn            string `yaml:"dsn" env:"RECON_DB_DSN"`
	MigrationsPath string `yaml:"migrations_path"`
}

type LogConfig struct {
	LogLevel  string `yaml:"log_level" env-default:"info"`
	LogFormat string `yaml:"log_format" env-default:"json"`
	LogOutput string `yaml:"log_output" env-default:"stdout"`
}

type KafkaService struct {
	Host  string `yaml:"host"`
	Port  string `yaml:"port"`
	Topic string `yaml:"topic" env-default:"recon-events"`
}

type TelegramBot struct {
	Token string `yaml:"token" env:"BOT_TOKEN"`
}

type SyncConfig struct {
	Interval          time.Duration `yaml:"interval" env-default:"5m"`
	CasinoTimeout     time.Duration `yaml:"casino_timeout" env-default:"10s"`
	DepositTTL        time.Duration `yaml:"deposit_ttl" env-default:"5m"`
	AutoExpireEvery   time.Duration `yaml:"auto_expire_every" env-default:"30s"`
	AutoMatchEvery    time.Duration `yaml:"auto_match_every" env-default:"1s"`
	AutoMatchEnabled  bool          `yaml:"auto_match_enabled" env-default:"true"`
	PaymentLookbehind time.Duration `yaml:"payment_lookbehind" env-default:"10m"`
}

// CasinoConfig - креды cashdesk-кассы одного казино.
type CasinoConfig struct {
	Key         string `yaml:"key"`
	BaseURL     string `yaml:"base_url"`
	Hash        string `yaml:"hash"`
	Cashierpass string `yaml:"cashierpass"`
	Login       string `yaml:"login"`
	CashdeskID  int64  `yaml:"cashdesk_id"`
}

func MustLoad() *ReconConfig {

	// Processing env config variable and file
	configPath := os.Getenv("RECON_CONFIG_PATH")

	if configPath == "" {
		log.Fatalf("RECON_CONFIG_PATH was not found\n")
	}

	if _, err := os.Stat(configPath); err != nil {
		log.Fatalf("failed to find config file: %v\n", err)
	}

	// YAML to struct object
	var cfg ReconConfig
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("failed to read config file: %v", err)
	}

	return &cfg
}
