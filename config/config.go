package config

import (
	"log"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	HttpServer      HttpServerConfig      `envconfig:"HTTP_SERVER"`
	Database        DatabaseConfig        `envconfig:"DATABASE"`
	Redis           RedisConfig           `envconfig:"REDIS"`
	HttpClient      HttpClientConfig      `envconfig:"HTTP_CLIENT"`
	MessageStream   MessageStreamConfig   `envconfig:"MESSAGE_STREAM"`
	UserService     UserServiceConfig     `envconfig:"USER_SERVICE"`
	PaymentProvider PaymentProviderConfig `envconfig:"PAYMENT_PROVIDER"`
	Booking         BookingConfig         `envconfig:"BOOKING"`
}

type HttpServerConfig struct {
	Port string `envconfig:"PORT" default:"3000"`
}

type DatabaseConfig struct {
	Host     string `envconfig:"HOST" default:"localhost"`
	Port     string `envconfig:"PORT" default:"5432"`
	Username string `envconfig:"USERNAME" default:"postgres"`
	Password string `envconfig:"PASSWORD" default:"postgres"`
	Name     string `envconfig:"NAME" default:"staygo"`
	SSLMode  string `envconfig:"SSL_MODE" default:"disable"`
	MaxConn  int    `envconfig:"MAX_CONN" default:"20"`
	IdleConn int    `envconfig:"IDLE_CONN" default:"5"`
}

type RedisConfig struct {
	Host     string `envconfig:"HOST" default:"localhost"`
	Port     string `envconfig:"PORT" default:"6379"`
	Password string `envconfig:"PASSWORD" default:""`
	DB       int    `envconfig:"DB" default:"0"`
}

type HttpClientConfig struct {
	Type                string `envconfig:"TYPE" default:"consecutive"`
	Threshold           int64  `envconfig:"THRESHOLD" default:"5"`
	TimeoutSecond       int    `envconfig:"TIMEOUT_SECOND" default:"10"`
	WindowTimeSecond    int    `envconfig:"WINDOW_TIME_SECOND" default:"60"`
	ErrorRatePercentage float64 `envconfig:"ERROR_RATE_PERCENTAGE" default:"0.65"`
}

type MessageStreamConfig struct {
	Host     string `envconfig:"HOST" default:"localhost"`
	Port     string `envconfig:"PORT" default:"5672"`
	Username string `envconfig:"USERNAME" default:"guest"`
	Password string `envconfig:"PASSWORD" default:"guest"`
}

type UserServiceConfig struct {
	Host string `envconfig:"HOST" default:"localhost"`
	Port string `envconfig:"PORT" default:"8081"`
}

type PaymentProviderConfig struct {
	Host          string `envconfig:"HOST" default:"localhost"`
	Port          string `envconfig:"PORT" default:"8082"`
	SuccessURL    string `envconfig:"SUCCESS_URL" default:"http://localhost:3000/payment/success"`
	FailureURL    string `envconfig:"FAILURE_URL" default:"http://localhost:3000/payment/failure"`
	PendingURL    string `envconfig:"PENDING_URL" default:"http://localhost:3000/payment/pending"`
	TimeoutSecond int    `envconfig:"TIMEOUT_SECOND" default:"10"`
}

type BookingConfig struct {
	// EnforceAvailabilityBlocks switches availability blocks from advisory
	// (calendar display only) to authoritative: reservations may only be
	// created inside an open block.
	EnforceAvailabilityBlocks bool   `envconfig:"ENFORCE_AVAILABILITY_BLOCKS" default:"false"`
	DefaultCurrency           string `envconfig:"DEFAULT_CURRENCY" default:"USD"`
	LockExpirySecond          int    `envconfig:"LOCK_EXPIRY_SECOND" default:"8"`
}

func InitConfig() *Config {
	var cfg Config
	err := envconfig.Process("staygo", &cfg)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return &cfg
}
