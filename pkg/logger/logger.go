package logger

// Backend is a destination that log records are dispatched to. Every
// package-level call fans out to all registered backends, so a process
// can log to the console and an aggregator at the same time.
type Backend interface {
	Log(message string, keyvals ...any)
	Debug(message string, keyvals ...any)
	Info(message string, keyvals ...any)
	Warn(message string, keyvals ...any)
	Error(message string, keyvals ...any)
	Fatal(message string, keyvals ...any)
}

var backends []Backend

// Init registers the process-wide logging backends. Call it once during
// startup; calls issued before Init (or with no backends) are dropped.
func Init(instances ...Backend) {
	backends = instances
}

func dispatch(fn func(Backend)) {
	for _, b := range backends {
		fn(b)
	}
}

// Log writes a message at the backend's default level.
func Log(message string, keyvals ...any) {
	dispatch(func(b Backend) { b.Log(message, keyvals...) })
}

// Debug writes a message at DEBUG level.
func Debug(message string, keyvals ...any) {
	dispatch(func(b Backend) { b.Debug(message, keyvals...) })
}

// Info writes a message at INFO level.
func Info(message string, keyvals ...any) {
	dispatch(func(b Backend) { b.Info(message, keyvals...) })
}

// Warn writes a message at WARN level.
func Warn(message string, keyvals ...any) {
	dispatch(func(b Backend) { b.Warn(message, keyvals...) })
}

// Error writes a message at ERROR level.
func Error(message string, keyvals ...any) {
	dispatch(func(b Backend) { b.Error(message, keyvals...) })
}

// Fatal writes a message at FATAL level; backends are expected to
// terminate the process.
func Fatal(message string, keyvals ...any) {
	dispatch(func(b Backend) { b.Fatal(message, keyvals...) })
}
