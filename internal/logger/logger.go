package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// GO_ENV=prodならJSON、それ以外は人が読む形式
func New(env string) (*zap.Logger, error) {
	if env == "prod" {
		return zap.NewProduction()
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return cfg.Build()
}

// CLI用。標準出力を汚さないようにstderrへ、warn以上だけ出す
func NewCLI(env string) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	if env == "prod" {
		cfg = zap.NewProductionConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	return cfg.Build()
}
