package i

// Logger is the logging surface shared by the server components.
type Logger interface {
	Info(msg string)
	Warning(msg string)
	Error(msg string)
}
