package logs

import "net/http"

// RespLogger captures status and bytes written for access logs and metrics.
type RespLogger struct {
	http.ResponseWriter
	Status int
	Bytes  int
}

func NewRespLogger(w http.ResponseWriter) *RespLogger {
	return &RespLogger{ResponseWriter: w, Status: http.StatusOK}
}

func (l *RespLogger) WriteHeader(code int) {
	l.Status = code
	l.ResponseWriter.WriteHeader(code)
}

func (l *RespLogger) Write(b []byte) (int, error) {
	n, err := l.ResponseWriter.Write(b)
	l.Bytes += n
	return n, err
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (l *RespLogger) Unwrap() http.ResponseWriter { return l.ResponseWriter }
