package core

// Logger is implemented by the logging services.
// args may hold errors, map[string]interface{} fields and at most one user.User
// identifying the person the entry is about.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
