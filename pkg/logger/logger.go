package logger

type Logger interface {
	Log(format string, v ...interface{})
	Debug(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
	SetPrefix(prefix string)
	// WithPrefix возвращает дочерний логгер с тем же выводом.
	WithPrefix(prefix string) Logger
}
