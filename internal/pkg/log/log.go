package log

import (
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Setup builds the production zap logger wrapped with otelzap so log lines
// carry the active trace context.
func Setup() *otelzap.Logger {
	zapLogger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	return otelzap.New(zapLogger, otelzap.WithMinLevel(zap.InfoLevel))
}
