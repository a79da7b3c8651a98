package persist

import "time"

// Operation names reported in LogEvent.Op.
const (
	OpRestore = "restore"
	OpPersist = "persist"
	OpRemove  = "remove"
	OpReset   = "reset"
	OpFilter  = "filter"
	OpNotify  = "notify"
)

// LogEvent describes one storage or lifecycle step of the plugin.
type LogEvent struct {
	Op           string
	Group        string
	StorageKey   string
	MutationType string
	Duration     time.Duration
	Err          error
}

// Logger records plugin events.
type Logger interface {
	Log(LogEvent)
}

// LoggerFunc adapts a function to Logger.
type LoggerFunc func(LogEvent)

// Log implements Logger.
func (f LoggerFunc) Log(event LogEvent) {
	if f != nil {
		f(event)
	}
}

type noopLogger struct{}

func (noopLogger) Log(LogEvent) {}

// EvaluatorLogEvent describes an evaluation attempt for logging.
type EvaluatorLogEvent struct {
	Engine   string
	Expr     string
	Label    string
	Duration time.Duration
	Err      error
}

// EvaluatorLogger records evaluator events.
type EvaluatorLogger interface {
	LogEvaluation(EvaluatorLogEvent)
}

// EvaluatorLoggerFunc adapts a function to EvaluatorLogger.
type EvaluatorLoggerFunc func(EvaluatorLogEvent)

// LogEvaluation implements EvaluatorLogger.
func (f EvaluatorLoggerFunc) LogEvaluation(event EvaluatorLogEvent) {
	if f != nil {
		f(event)
	}
}

type noopEvaluatorLogger struct{}

func (noopEvaluatorLogger) LogEvaluation(EvaluatorLogEvent) {}

// WithEvaluatorLogger attaches an evaluator logger. When unset, a Logger that
// also implements EvaluatorLogger receives evaluation events.
func WithEvaluatorLogger(logger EvaluatorLogger) Option {
	return func(cfg *pluginConfig) {
		if logger == nil {
			cfg.evaluatorLogger = noopEvaluatorLogger{}
			return
		}
		cfg.evaluatorLogger = logger
	}
}
