package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment.
type Config struct {
	DB struct {
		DSN string
	}
	Kafka struct {
		Broker  string
		Topic   string
		GroupID string
	}
	Email struct {
		SMTPServer  string
		SMTPPort    int
		Username    string
		Password    string
		FromAddress string
		FromName    string
	}
	SMS struct {
		AccountSID string
		AuthToken  string
		FromNumber string
	}
	API struct {
		Port     string
		BasePath string
	}
	Dispatch struct {
		QueueSize     int
		MaxWorkers    int
		PollInterval  time.Duration
		WebhookPerSec int
		RetryBackoff  time.Duration
	}
	Sweep struct {
		Interval             time.Duration
		Reminder3DayTemplate string
		Reminder1DayTemplate string
	}
	Integration struct {
		APIKeys     []string
		HourlyLimit int
	}
	Logging struct {
		Dir   string
		Level string
	}
}

// Load reads environment variables, applies defaults, and returns a Config.
func Load() (Config, error) {
	// Load .env if present
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("failed to load .env file: %w", err)
	}

	var cfg Config

	cfg.DB.DSN = os.Getenv("DB_DSN")

	// Kafka settings; event intake is disabled when no broker is configured
	cfg.Kafka.Broker = os.Getenv("KAFKA_BROKER")
	cfg.Kafka.Topic = os.Getenv("KAFKA_TOPIC")
	cfg.Kafka.GroupID = os.Getenv("KAFKA_GROUP_ID")

	// Email settings
	cfg.Email.SMTPServer = os.Getenv("EMAIL_SMTP_SERVER")
	if p, err := strconv.Atoi(os.Getenv("EMAIL_SMTP_PORT")); err == nil {
		cfg.Email.SMTPPort = p
	}
	cfg.Email.Username = os.Getenv("EMAIL_USERNAME")
	cfg.Email.Password = os.Getenv("EMAIL_PASSWORD")
	cfg.Email.FromAddress = os.Getenv("EMAIL_FROM_ADDRESS")
	cfg.Email.FromName = os.Getenv("EMAIL_FROM_NAME")

	// Twilio SMS settings
	cfg.SMS.AccountSID = os.Getenv("SMS_ACCOUNT_SID")
	cfg.SMS.AuthToken = os.Getenv("SMS_AUTH_TOKEN")
	cfg.SMS.FromNumber = os.Getenv("SMS_FROM_NUMBER")

	// API settings
	cfg.API.Port = os.Getenv("API_PORT")
	cfg.API.BasePath = os.Getenv("API_BASE_PATH")

	// Dispatch and outbox worker settings
	if qs, err := strconv.Atoi(os.Getenv("DISPATCH_QUEUE_SIZE")); err == nil {
		cfg.Dispatch.QueueSize = qs
	}
	if mw, err := strconv.Atoi(os.Getenv("DISPATCH_MAX_WORKERS")); err == nil {
		cfg.Dispatch.MaxWorkers = mw
	}
	if d, err := time.ParseDuration(os.Getenv("DISPATCH_POLL_INTERVAL")); err == nil {
		cfg.Dispatch.PollInterval = d
	}
	if rps, err := strconv.Atoi(os.Getenv("DISPATCH_WEBHOOK_PER_SEC")); err == nil {
		cfg.Dispatch.WebhookPerSec = rps
	}
	if d, err := time.ParseDuration(os.Getenv("DISPATCH_RETRY_BACKOFF")); err == nil {
		cfg.Dispatch.RetryBackoff = d
	}

	// Signature sweep settings
	if d, err := time.ParseDuration(os.Getenv("SWEEP_INTERVAL")); err == nil {
		cfg.Sweep.Interval = d
	}
	cfg.Sweep.Reminder3DayTemplate = os.Getenv("SWEEP_REMINDER_3DAY_TEMPLATE")
	cfg.Sweep.Reminder1DayTemplate = os.Getenv("SWEEP_REMINDER_1DAY_TEMPLATE")

	// Integration API keys (comma separated)
	if keys := os.Getenv("INTEGRATION_API_KEYS"); keys != "" {
		for _, k := range strings.Split(keys, ",") {
			if k = strings.TrimSpace(k); k != "" {
				cfg.Integration.APIKeys = append(cfg.Integration.APIKeys, k)
			}
		}
	}
	if l, err := strconv.Atoi(os.Getenv("INTEGRATION_HOURLY_LIMIT")); err == nil {
		cfg.Integration.HourlyLimit = l
	}

	cfg.Logging.Dir = os.Getenv("LOG_DIR")
	cfg.Logging.Level = os.Getenv("LOG_LEVEL")

	// Validate required settings
	missing := []string{}
	if cfg.DB.DSN == "" {
		missing = append(missing, "DB_DSN")
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required configurations: %v", missing)
	}

	// Apply defaults
	if cfg.Kafka.Topic == "" {
		cfg.Kafka.Topic = "trigger-events"
	}
	if cfg.Kafka.GroupID == "" {
		cfg.Kafka.GroupID = "backoffice-dispatch"
	}
	if cfg.API.Port == "" {
		cfg.API.Port = ":8080"
	}
	if cfg.API.BasePath == "" {
		cfg.API.BasePath = "/api/v1"
	}
	if cfg.Dispatch.QueueSize == 0 {
		cfg.Dispatch.QueueSize = 500
	}
	if cfg.Dispatch.MaxWorkers == 0 {
		cfg.Dispatch.MaxWorkers = 10
	}
	if cfg.Dispatch.PollInterval == 0 {
		cfg.Dispatch.PollInterval = 15 * time.Second
	}
	if cfg.Dispatch.WebhookPerSec == 0 {
		cfg.Dispatch.WebhookPerSec = 5
	}
	if cfg.Dispatch.RetryBackoff == 0 {
		cfg.Dispatch.RetryBackoff = time.Minute
	}
	if cfg.Sweep.Interval == 0 {
		cfg.Sweep.Interval = 6 * time.Hour
	}
	if cfg.Sweep.Reminder3DayTemplate == "" {
		cfg.Sweep.Reminder3DayTemplate = "signature_reminder_3day"
	}
	if cfg.Sweep.Reminder1DayTemplate == "" {
		cfg.Sweep.Reminder1DayTemplate = "signature_reminder_1day"
	}
	if cfg.Integration.HourlyLimit == 0 {
		cfg.Integration.HourlyLimit = 100
	}
	if cfg.Logging.Dir == "" {
		cfg.Logging.Dir = "logs"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}

	return cfg, nil
}
