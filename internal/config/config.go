package config

import (
	"flag"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env         string            `yaml:"env" env-default:"local"`
	DSN         string            `yaml:"dsn" env:"DSN" env-required:"true"`
	HTTP        HTTPConfig        `yaml:"http"`
	ObjectStore ObjectStoreConfig `yaml:"object_store"`
	Redis       RedisConfig       `yaml:"redis"`
	Signing     SigningConfig     `yaml:"signing"`
	Pipeline    PipelineConfig    `yaml:"pipeline"`
	Checkout    CheckoutConfig    `yaml:"checkout"`
}

type HTTPConfig struct {
	Host          string `yaml:"host"`
	Port          string `yaml:"port" env-default:"8080"`
	PublicBaseURL string `yaml:"public_base_url" env-default:"http://localhost:8080"`
	OperatorToken string `yaml:"operator_token" env:"OPERATOR_TOKEN_SECRET" env-required:"true"`
	SessionSecret string `yaml:"session_secret" env:"SESSION_SECRET" env-required:"true"`
}

type ObjectStoreConfig struct {
	BaseDir string `yaml:"base_dir" env-default:"./objects"`
}

type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int           `yaml:"db"`
	CacheTTL time.Duration `yaml:"cache_ttl" env-default:"5m"`
}

type SigningConfig struct {
	Secret string        `yaml:"secret" env:"SIGNING_SECRET" env-required:"true"`
	URLTTL time.Duration `yaml:"url_ttl" env-default:"1h"`
}

type PipelineConfig struct {
	MaxUploadSize int64  `yaml:"max_upload_size" env-default:"52428800"`
	WatermarkText string `yaml:"watermark_text" env-default:"FITFOCUS MEDIA"`
}

type CheckoutConfig struct {
	Endpoint string        `yaml:"endpoint" env:"CHECKOUT_ENDPOINT" env-required:"true"`
	Timeout  time.Duration `yaml:"timeout" env-default:"30s"`
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
