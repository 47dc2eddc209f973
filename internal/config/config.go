package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Configはアプリ全体の設定
type Config struct {
	Port string // サーバーポート（8080）

	DatabaseURL      string // あれば最優先
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresHost     string
	PostgresPort     int
	PostgresSSLMode  string

	JWTSecret string        // JWT署名シークレット
	JWTTTL    time.Duration // アクセストークンの有効期間

	GoEnv       string // development/production
	LogLevel    string
	FrontendURL string // メール内リンクとCORSで使う

	SMTP SMTPConfig

	KafkaBrokers []string // 空ならプロセス内ディスパッチャ
	KafkaTopic   string
	KafkaGroupID string

	ElasticsearchURLs  []string // 空ならDB検索
	ElasticsearchIndex string

	NotifyWorkers    int
	NotifyQueueSize  int
	PasswordResetTTL time.Duration
}

// SMTPの接続情報（Hostが空ならログに出すだけ）
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	FromName string
}

func (c Config) IsDevelopment() bool {
	return c.GoEnv == "development"
}

// Loadは環境変数
func Load() (Config, error) {
	pgPort, err := atoiDefault("POSTGRES_PORT", 5432)
	if err != nil {
		return Config{}, err
	}
	smtpPort, err := atoiDefault("SMTP_PORT", 587)
	if err != nil {
		return Config{}, err
	}
	workers, err := atoiDefault("NOTIFY_WORKERS", 2)
	if err != nil {
		return Config{}, err
	}
	queueSize, err := atoiDefault("NOTIFY_QUEUE_SIZE", 100)
	if err != nil {
		return Config{}, err
	}
	jwtTTL, err := durationDefault("JWT_TTL", 24*time.Hour)
	if err != nil {
		return Config{}, err
	}
	resetTTL, err := durationDefault("PASSWORD_RESET_TTL", time.Hour)
	if err != nil {
		return Config{}, err
	}

	smtpUser := os.Getenv("SMTP_USER")

	cfg := Config{
		Port: getenv("PORT", "8080"),

		DatabaseURL:      os.Getenv("DATABASE_URL"),
		PostgresUser:     getenv("POSTGRES_USER", "postgres"),
		PostgresPassword: getenv("POSTGRES_PASSWORD", "postgres"),
		PostgresDB:       getenv("POSTGRES_DB", "app"),
		PostgresHost:     getenv("POSTGRES_HOST", "localhost"),
		PostgresPort:     pgPort,
		PostgresSSLMode:  getenv("POSTGRES_SSLMODE", "disable"),

		JWTSecret: os.Getenv("JWT_SECRET"),
		JWTTTL:    jwtTTL,

		GoEnv:       getenv("GO_ENV", "development"),
		LogLevel:    getenv("LOG_LEVEL", "info"),
		FrontendURL: strings.TrimRight(getenv("FRONTEND_URL", "http://localhost:5173"), "/"),

		SMTP: SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     smtpPort,
			User:     smtpUser,
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     getenv("EMAIL_FROM", smtpUser),
			FromName: getenv("EMAIL_FROM_NAME", "Sushi & Ramen"),
		},

		KafkaBrokers: splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   getenv("KAFKA_TOPIC", "shop.notifications"),
		KafkaGroupID: getenv("KAFKA_GROUP_ID", "shop-notifier"),

		ElasticsearchURLs:  splitList(os.Getenv("ELASTICSEARCH_URL")),
		ElasticsearchIndex: getenv("ELASTICSEARCH_INDEX", "products"),

		NotifyWorkers:    workers,
		NotifyQueueSize:  queueSize,
		PasswordResetTTL: resetTTL,
	}

	//必須チェック
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.NotifyWorkers < 1 {
		return Config{}, fmt.Errorf("NOTIFY_WORKERS must be >= 1")
	}
	if cfg.NotifyQueueSize < 1 {
		return Config{}, fmt.Errorf("NOTIFY_QUEUE_SIZE must be >= 1")
	}

	return cfg, nil
}

// PostgresDSN はgorm postgres用のDSNを返す
func (c Config) PostgresDSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgresHost, c.PostgresPort, c.PostgresUser, c.PostgresPassword, c.PostgresDB, c.PostgresSSLMode,
	)
}

func atoiDefault(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}

func durationDefault(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be duration: %w", key, err)
	}
	return d, nil
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func splitList(v string) []string {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
