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
	PostgresUser     string // DBユーザー
	PostgresPassword string // DBパスワード
	PostgresDB       string // DB名
	PostgresHost     string // DBホスト（localhost）
	PostgresPort     int    // DBポート（5432）
	PostgresSSLMode  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	StorageBackend string // local / s3
	UploadDir      string // localの保存先
	PublicBaseURL  string // /uploads を配信するURL
	S3             S3Config

	JWTSecret  string        // JWT署名シークレット
	SessionTTL time.Duration // Redisのセッション有効期限

	GoEnv    string // dev/prod
	FEURL    string // フロントURL（CORS）
	LogLevel string
	LogFmt   string

	// 開発専用。GO_ENV=dev のときだけ有効
	DevAdminOverride bool
}

// S3互換ストレージ（AWS / MinIO など）
type S3Config struct {
	Endpoint     string
	Region       string
	Bucket       string
	AccessKey    string
	SecretKey    string
	UsePathStyle bool
	PresignTTL   time.Duration
}

const (
	EnvDev  = "dev"
	EnvProd = "prod"
)

// Loadは環境変数
func Load() (Config, error) {
	pgPort, err := atoiDefault("POSTGRES_PORT", 5432)
	if err != nil {
		return Config{}, err
	}
	redisDB, err := atoiDefault("REDIS_DB", 0)
	if err != nil {
		return Config{}, err
	}
	sessionTTL, err := durationDefault("SESSION_TTL", 12*time.Hour)
	if err != nil {
		return Config{}, err
	}
	presignTTL, err := durationDefault("S3_PRESIGN_TTL", 7*24*time.Hour)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port: os.Getenv("PORT"),

		DatabaseURL:      os.Getenv("DATABASE_URL"),
		PostgresUser:     getenv("POSTGRES_USER", "postgres"),
		PostgresPassword: getenv("POSTGRES_PASSWORD", "postgres"),
		PostgresDB:       getenv("POSTGRES_DB", "woodify"),
		PostgresHost:     getenv("POSTGRES_HOST", "localhost"),
		PostgresPort:     pgPort,
		PostgresSSLMode:  getenv("POSTGRES_SSLMODE", "disable"),

		RedisAddr:     getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       redisDB,

		StorageBackend: strings.ToLower(getenv("STORAGE_BACKEND", "local")),
		UploadDir:      getenv("UPLOAD_DIR", "./uploads"),
		PublicBaseURL:  strings.TrimRight(os.Getenv("PUBLIC_BASE_URL"), "/"),
		S3: S3Config{
			Endpoint:     os.Getenv("S3_ENDPOINT"),
			Region:       getenv("S3_REGION", "us-east-1"),
			Bucket:       os.Getenv("S3_BUCKET"),
			AccessKey:    os.Getenv("S3_ACCESS_KEY"),
			SecretKey:    os.Getenv("S3_SECRET_KEY"),
			UsePathStyle: envBool("S3_USE_PATH_STYLE", true),
			PresignTTL:   presignTTL,
		},

		JWTSecret:  os.Getenv("JWT_SECRET"),
		SessionTTL: sessionTTL,

		GoEnv:    os.Getenv("GO_ENV"),
		FEURL:    os.Getenv("FE_URL"),
		LogLevel: getenv("LOG_LEVEL", "info"),
		LogFmt:   getenv("LOG_FORMAT", "json"),

		DevAdminOverride: envBool("DEV_ADMIN_OVERRIDE", false),
	}

	//必須チェック
	if cfg.Port == "" {
		return Config{}, fmt.Errorf("PORT is required")
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.GoEnv == "" {
		return Config{}, fmt.Errorf("GO_ENV is required")
	}
	if cfg.GoEnv != EnvDev && cfg.GoEnv != EnvProd {
		return Config{}, fmt.Errorf("GO_ENV must be dev or prod")
	}
	if cfg.FEURL == "" {
		return Config{}, fmt.Errorf("FE_URL is required")
	}
	switch cfg.StorageBackend {
	case "local":
	case "s3":
		if cfg.S3.Bucket == "" {
			return Config{}, fmt.Errorf("S3_BUCKET is required")
		}
	default:
		return Config{}, fmt.Errorf("STORAGE_BACKEND must be local or s3")
	}

	//本番ではoverrideを強制的に無効
	if cfg.GoEnv != EnvDev {
		cfg.DevAdminOverride = false
	}

	return cfg, nil
}

// DevOverrideEnabled は開発用の管理画面バイパスが使えるか
func (c Config) DevOverrideEnabled() bool {
	return c.GoEnv == EnvDev && c.DevAdminOverride
}

// Addr は echo に渡す listen アドレス
func (c Config) Addr() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

// PostgresDSN は DATABASE_URL が無いときに組み立てる
func (c Config) PostgresDSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgresHost, c.PostgresPort, c.PostgresUser, c.PostgresPassword, c.PostgresDB, c.PostgresSSLMode,
	)
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
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

func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	switch v {
	case "1", "true", "TRUE", "True":
		return true
	case "0", "false", "FALSE", "False":
		return false
	default:
		return def
	}
}
