package config

import (
	"flag"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env         string        `yaml:"env" env-default:"local"`
	DSN         string        `yaml:"dsn" env:"DSN" env-required:"true"`
	TokenSecret string        `yaml:"token_secret" env:"TOKEN_SECRET" env-required:"true"`
	TokenTTL    time.Duration `yaml:"token_ttl" env-default:"1h"`
	HTTP        HTTPConfig    `yaml:"http"`
	Storage     StorageConfig `yaml:"object_storage"`
	Derive      DeriveConfig  `yaml:"derive"`
	Redis       RedisConf     `yaml:"redis"`
}

type HTTPConfig struct {
	Host          string `yaml:"host"`
	Port          string `yaml:"port" env-default:"8080"`
	SessionSecret string `yaml:"session_secret" env:"SESSION_SECRET" env-default:"lensdrop-session"`
}

// StorageConfig describes the S3-compatible bucket (R2, MinIO, AWS).
// PublicBaseURL is the origin serving bucket objects publicly; original
// object URLs are built from it at reserve time.
type StorageConfig struct {
	Region          string        `yaml:"region" env:"STORAGE_REGION" env-default:"auto"`
	Bucket          string        `yaml:"bucket" env:"STORAGE_BUCKET" env-required:"true"`
	Endpoint        string        `yaml:"endpoint" env:"STORAGE_ENDPOINT"`
	AccessKeyID     string        `yaml:"access_key_id" env:"STORAGE_ACCESS_KEY_ID"`
	SecretAccessKey string        `yaml:"secret_access_key" env:"STORAGE_SECRET_ACCESS_KEY"`
	PublicBaseURL   string        `yaml:"public_base_url" env:"STORAGE_PUBLIC_BASE_URL" env-required:"true"`
	UploadTTL       time.Duration `yaml:"upload_url_ttl" env-default:"1h"`
	DownloadTTL     time.Duration `yaml:"download_url_ttl" env-default:"24h"`
}

type DeriveConfig struct {
	SweepInterval time.Duration `yaml:"sweep_interval" env-default:"5m"`
	SweepWorkers  int           `yaml:"sweep_workers" env-default:"2"`
	MaxAttempts   int           `yaml:"max_attempts" env-default:"3"`
}

type RedisConf struct {
	RedisAddr     string `yaml:"redis_addr" env:"REDIS_ADDR"`
	RedisPassword string `yaml:"redis_password" env:"REDIS_PASSWORD"`
	RedisDB       int    `yaml:"redis_db" env-default:"0"`
}

func MustLoad() *Config {
	path := fetchConfigPath()
	if path == "" {
		panic("config path is empty")
	}

	return MustLoadPath(path)
}

func MustLoadPath(configPath string) *Config {
	// check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		panic("cannot read config: " + err.Error())
	}

	return &cfg
}

func fetchConfigPath() string {
	var res string

	// --config="path/to/config.yaml"
	flag.StringVar(&res, "config", "", "path to config file")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}

	return res
}
