// Package logging writes one JSON object per line through a std *log.Logger.
package logging

import (
	"encoding/json"
	"io"
	"log"
	"time"
)

// New returns a logger with no prefix or flags; every line is a complete JSON document.
func New(w io.Writer) *log.Logger {
	return log.New(w, "", 0)
}

// JSON logs msg at level with the given fields. A nil logger falls back to log.Default().
func JSON(logger *log.Logger, level, msg string, fields map[string]any) {
	if logger == nil {
		logger = log.Default()
	}
	payload := make(map[string]any, len(fields)+3)
	for k, v := range fields {
		payload[k] = v
	}
	payload["ts"] = time.Now().UTC().Format(time.RFC3339Nano)
	payload["level"] = level
	payload["msg"] = msg

	b, err := json.Marshal(payload)
	if err != nil {
		logger.Printf(`{"level":"error","msg":"log_marshal_failed","error":%q}`, err.Error())
		return
	}
	logger.Print(string(b))
}

func Info(logger *log.Logger, msg string, fields map[string]any) {
	JSON(logger, "info", msg, fields)
}

func Warn(logger *log.Logger, msg string, fields map[string]any) {
	JSON(logger, "warn", msg, fields)
}

func Error(logger *log.Logger, msg string, fields map[string]any) {
	JSON(logger, "error", msg, fields)
}
