package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type Config struct {
	Port            string
	LogLevel        string
	DatabaseURL     string
	ShutdownTimeout time.Duration

	Auth    AuthConfig
	Storage StorageConfig
	Kafka   KafkaConfig
}

type AuthConfig struct {
	JWTSecret     string
	TokenTTL      time.Duration
	AdminEmail    string
	AdminPassword string
}

// StorageConfig points at the S3-compatible bucket holding photo images.
// An empty Endpoint disables uploads.
type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
	URLExpiry time.Duration
}

// KafkaConfig describes where contact requests are published. An empty Broker
// keeps them in the application log.
type KafkaConfig struct {
	Broker       string
	ContactTopic string
}

func (c Config) String() string {
	return fmt.Sprintf(
		"Port: %s | LogLevel: %s | Storage: %s/%s | Kafka: %s/%s",
		c.Port,
		c.LogLevel,
		c.Storage.Endpoint,
		c.Storage.Bucket,
		c.Kafka.Broker,
		c.Kafka.ContactTopic,
	)
}

const configFileName = "config"

// Load reads .env (when present), then an optional config.yaml, then the
// environment. Environment variables win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName(configFileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errors.Wrapf(err, "failed to read %s.yaml", configFileName)
		}
	}

	cfg := &Config{
		Port:            v.GetString("APP_PORT"),
		LogLevel:        v.GetString("LOG_LEVEL"),
		DatabaseURL:     v.GetString("DATABASE_URL"),
		ShutdownTimeout: v.GetDuration("SHUTDOWN_TIMEOUT"),
		Auth: AuthConfig{
			JWTSecret:     v.GetString("JWT_SECRET"),
			TokenTTL:      v.GetDuration("JWT_TTL"),
			AdminEmail:    v.GetString("ADMIN_EMAIL"),
			AdminPassword: v.GetString("ADMIN_PASSWORD"),
		},
		Storage: StorageConfig{
			Endpoint:  v.GetString("MINIO_ENDPOINT"),
			AccessKey: v.GetString("MINIO_ACCESS_KEY"),
			SecretKey: v.GetString("MINIO_SECRET_KEY"),
			UseSSL:    v.GetBool("MINIO_USE_SSL"),
			Bucket:    v.GetString("MINIO_BUCKET"),
			URLExpiry: v.GetDuration("MINIO_URL_EXPIRY"),
		},
		Kafka: KafkaConfig{
			Broker:       v.GetString("KAFKA_BROKER"),
			ContactTopic: v.GetString("KAFKA_CONTACT_TOPIC"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SHUTDOWN_TIMEOUT", 10*time.Second)
	v.SetDefault("JWT_TTL", 24*time.Hour)
	v.SetDefault("MINIO_BUCKET", "directory-photos")
	v.SetDefault("MINIO_URL_EXPIRY", 15*time.Minute)
	v.SetDefault("KAFKA_CONTACT_TOPIC", "contact-requests")
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL must be set")
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET must be set")
	}
	if c.Storage.Endpoint != "" && (c.Storage.AccessKey == "" || c.Storage.SecretKey == "") {
		return errors.New("MINIO_ACCESS_KEY and MINIO_SECRET_KEY must be set when MINIO_ENDPOINT is")
	}
	return nil
}
