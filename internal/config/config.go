package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Configはapiサーバーの設定
type Config struct {
	Port string // サーバーポート（8080）

	DatabaseURL string // あればPOSTGRES_*より優先

	PostgresUser     string // DBユーザー
	PostgresPassword string // DBパスワード
	PostgresDB       string // DB名
	PostgresHost     string // DBホスト（localhost）
	PostgresPort     int    // DBポート（5432）
	PostgresSSLMode  string

	JWTSecret string // JWT署名シークレット

	GoEnv string // dev/prod
	FEURL string // フロントURL（CORSで使う）

	SalesTaxRate    decimal.Decimal // 0.08 なら 8%
	LoginRatePerMin int             // /auth/login の1分あたり上限
}

// Loadは環境変数
func Load() (Config, error) {
	cfg := Config{
		Port:        os.Getenv("PORT"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		PostgresUser:     os.Getenv("POSTGRES_USER"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       os.Getenv("POSTGRES_DB"),
		PostgresHost:     os.Getenv("POSTGRES_HOST"),
		PostgresSSLMode:  getenv("POSTGRES_SSLMODE", "disable"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		GoEnv: os.Getenv("GO_ENV"),
		FEURL: os.Getenv("FE_URL"),
	}

	//必須チェック
	if cfg.Port == "" {
		return Config{}, fmt.Errorf("PORT is required")
	}

	//DATABASE_URLが無いときだけPOSTGRES_*を要求する
	if cfg.DatabaseURL == "" {
		pgPort, err := mustAtoi("POSTGRES_PORT")
		if err != nil {
			return Config{}, err
		}
		cfg.PostgresPort = pgPort

		if cfg.PostgresUser == "" {
			return Config{}, fmt.Errorf("POSTGRES_USER is required")
		}
		if cfg.PostgresPassword == "" {
			return Config{}, fmt.Errorf("POSTGRES_PASSWORD is required")
		}
		if cfg.PostgresDB == "" {
			return Config{}, fmt.Errorf("POSTGRES_DB is required")
		}
		if cfg.PostgresHost == "" {
			return Config{}, fmt.Errorf("POSTGRES_HOST is required")
		}
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.GoEnv == "" {
		return Config{}, fmt.Errorf("GO_ENV is required")
	}
	if cfg.FEURL == "" {
		return Config{}, fmt.Errorf("FE_URL is required")
	}

	//税率（未設定は0）
	rate, err := decimal.NewFromString(getenv("SALES_TAX_RATE", "0"))
	if err != nil {
		return Config{}, fmt.Errorf("SALES_TAX_RATE must be decimal: %w", err)
	}
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return Config{}, fmt.Errorf("SALES_TAX_RATE must be between 0 and 1")
	}
	cfg.SalesTaxRate = rate

	loginRate, err := atoiDefault("LOGIN_RATE_PER_MIN", 10)
	if err != nil {
		return Config{}, err
	}
	cfg.LoginRatePerMin = loginRate

	return cfg, nil
}

// ShopConfigはshop CLIの設定
type ShopConfig struct {
	APIBaseURL     string // apiサーバーのURL
	DataDir        string // ゲストカート等の保存先
	RedisAddr      string // あればローカル保存をredisにする
	RedisPassword  string
	RequestTimeout time.Duration // 1リクエストの上限
	GoEnv          string
}

// LoadShopは環境変数からshop CLIの設定を読む
func LoadShop() (ShopConfig, error) {
	cfg := ShopConfig{
		APIBaseURL:    getenv("API_BASE_URL", "http://localhost:8080"),
		DataDir:       os.Getenv("SHOP_DATA_DIR"),
		RedisAddr:     os.Getenv("SHOP_REDIS_ADDR"),
		RedisPassword: os.Getenv("SHOP_REDIS_PASSWORD"),
		GoEnv:         getenv("GO_ENV", "dev"),
	}

	if cfg.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ShopConfig{}, fmt.Errorf("SHOP_DATA_DIR is required: %w", err)
		}
		cfg.DataDir = home + string(os.PathSeparator) + ".bookstore"
	}

	timeout, err := time.ParseDuration(getenv("SHOP_REQUEST_TIMEOUT", "10s"))
	if err != nil {
		return ShopConfig{}, fmt.Errorf("SHOP_REQUEST_TIMEOUT must be duration: %w", err)
	}
	if timeout <= 0 {
		return ShopConfig{}, fmt.Errorf("SHOP_REQUEST_TIMEOUT must be positive")
	}
	cfg.RequestTimeout = timeout

	return cfg, nil
}

func mustAtoi(key string) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return 0, fmt.Errorf("%s is required", key)
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
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

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}
