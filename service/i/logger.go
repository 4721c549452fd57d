package i

// Logger is the leveled logger every component is wired with.
type Logger interface {
	Debug(string)
	Info(string)
	Warning(string)
	Error(string)
}
