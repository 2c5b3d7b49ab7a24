package observ

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the process logger. Production mode emits JSON to stdout,
// development mode emits colored console output.
func New(isProd bool) (*zap.Logger, func() error) {
	var logger *zap.Logger

	if isProd {
		logger = zap.Must(zap.NewProduction())
	} else {
		config := zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		logger = zap.Must(config.Build())
	}

	return logger, logger.Sync
}
