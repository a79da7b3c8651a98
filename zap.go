package persist

import "go.uber.org/zap"

// ZapLogger writes plugin and evaluator events to a zap.Logger.
type ZapLogger struct {
	logger *zap.Logger
}

// NewZapLogger wraps logger. A nil logger discards everything.
func NewZapLogger(logger *zap.Logger) *ZapLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapLogger{logger: logger.Named("persist")}
}

// Log implements Logger. Failed operations are logged as warnings.
func (l *ZapLogger) Log(event LogEvent) {
	fields := []zap.Field{
		zap.String("op", event.Op),
		zap.Duration("duration", event.Duration),
	}
	if event.Group != "" {
		fields = append(fields, zap.String("group", event.Group))
	}
	if event.StorageKey != "" {
		fields = append(fields, zap.String("storage_key", event.StorageKey))
	}
	if event.MutationType != "" {
		fields = append(fields, zap.String("mutation", event.MutationType))
	}
	if event.Err != nil {
		l.logger.Warn("State "+event.Op+" failed", append(fields, zap.Error(event.Err))...)
		return
	}
	l.logger.Debug("State "+event.Op, fields...)
}

// LogEvaluation implements EvaluatorLogger.
func (l *ZapLogger) LogEvaluation(event EvaluatorLogEvent) {
	fields := []zap.Field{
		zap.String("engine", event.Engine),
		zap.String("expr", event.Expr),
		zap.String("label", event.Label),
		zap.Duration("duration", event.Duration),
	}
	if event.Err != nil {
		l.logger.Warn("Filter evaluation failed", append(fields, zap.Error(event.Err))...)
		return
	}
	l.logger.Debug("Filter evaluated", fields...)
}
