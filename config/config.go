package config

import (
	"errors"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	ServicePort      string
	MetricsPort      string
	FrontendURL      string
	JWTSecret        string
	PostgreSQLConfig PostgreSQLConfig
	VNPayConfig      VNPayConfig
	KafkaConfig      KafkaConfig
	SMTPConfig       SMTPConfig
	BookServiceHost  string
	UserServiceHost  string
	TracingConfig    TracingConfig
}

type PostgreSQLConfig struct {
	DBHost     string
	DBName     string
	DBPort     string
	DBUsername string
	DBPassword string
}

type VNPayConfig struct {
	TmnCode    string
	HashSecret string
	PayURL     string
	ReturnURL  string
	APIURL     string
}

type KafkaConfig struct {
	BrokerAddress   string
	BrokerTopic     string
	BrokerPartition int
}

type SMTPConfig struct {
	Host     string
	Port     int
	Sender   string
	Password string
}

type TracingConfig struct {
	CollectorHost string
}

func CreateNewConfig() *Config {
	godotenv.Load(".env")

	smtpPort, _ := strconv.Atoi(os.Getenv("SMTP_PORT"))
	brokerPartition, _ := strconv.Atoi(os.Getenv("BROKER_PARTITION"))

	conf := Config{
		ServicePort: os.Getenv("SERVICE_PORT"),
		MetricsPort: os.Getenv("METRICS_PORT"),
		FrontendURL: os.Getenv("FRONTEND_URL"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		PostgreSQLConfig: PostgreSQLConfig{
			DBHost:     os.Getenv("DB_HOST"),
			DBName:     os.Getenv("DB_NAME"),
			DBPort:     os.Getenv("DB_PORT"),
			DBUsername: os.Getenv("DB_USERNAME"),
			DBPassword: os.Getenv("DB_PASSWORD"),
		},
		VNPayConfig: VNPayConfig{
			TmnCode:    os.Getenv("VNP_TMNCODE"),
			HashSecret: os.Getenv("VNP_HASHSECRET"),
			PayURL:     os.Getenv("VNP_URL"),
			ReturnURL:  os.Getenv("VNP_RETURNURL"),
			APIURL:     os.Getenv("VNP_API"),
		},
		KafkaConfig: KafkaConfig{
			BrokerAddress:   os.Getenv("BROKER_ADDRESS"),
			BrokerTopic:     os.Getenv("BROKER_TOPIC"),
			BrokerPartition: brokerPartition,
		},
		SMTPConfig: SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     smtpPort,
			Sender:   os.Getenv("SMTP_SENDER"),
			Password: os.Getenv("SMTP_PASSWORD"),
		},
		BookServiceHost: os.Getenv("BOOK_SERVICE_HOST"),
		UserServiceHost: os.Getenv("USER_SERVICE_HOST"),
		TracingConfig: TracingConfig{
			CollectorHost: os.Getenv("COLLECTOR_HOST"),
		},
	}

	return &conf
}

// Validate fails fast on startup when the gateway or auth configuration is
// incomplete, instead of failing per-request.
func (c *Config) Validate() error {
	if c.VNPayConfig.TmnCode == "" || c.VNPayConfig.HashSecret == "" ||
		c.VNPayConfig.PayURL == "" || c.VNPayConfig.ReturnURL == "" {
		return errors.New("incomplete VNPay configuration: VNP_TMNCODE, VNP_HASHSECRET, VNP_URL and VNP_RETURNURL are required")
	}

	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}

	return nil
}
