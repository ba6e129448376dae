package config

import (
	"os"
	"strings"

	"github.com/gookit/slog"
	"github.com/gookit/slog/handler"
)

// AppLogger 는 애플리케이션 전역에서 사용하는 최소 로거 인터페이스다.
type AppLogger interface {
	Debug(args ...any)
	Info(args ...any)
	Warn(args ...any)
	Error(args ...any)
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// Fields 는 구조화 로그를 위한 공통 필드 타입이다.
type Fields map[string]any

// Logger 는 전역 로거 인스턴스다. InitLogger 전에도 info 레벨로 동작한다.
var Logger AppLogger = NewLogger("info")

// InitLogger 는 설정의 로그 레벨로 전역 로거를 교체한다.
func InitLogger(cfg LoggingConfig) {
	level := strings.ToLower(cfg.Level)
	if level == "" {
		level = "info"
	}
	Logger = NewLogger(level)
}

// NewLogger 는 주어진 레벨로 gookit/slog 기반 JSON 로거를 생성한다.
func NewLogger(level string) *slog.Logger {
	logLevel := slog.LevelByName(level)

	var levels slog.Levels
	for _, lv := range slog.AllLevels {
		if lv <= logLevel {
			levels = append(levels, lv)
		}
	}

	h := handler.NewConsoleHandler(levels)
	formatter := slog.NewJSONFormatter(func(f *slog.JSONFormatter) {
		f.Fields = []string{
			slog.FieldKeyDatetime,
			slog.FieldKeyLevel,
			slog.FieldKeyMessage,
		}
		f.Aliases = slog.StringMap{
			slog.FieldKeyDatetime: "datetime",
			slog.FieldKeyLevel:    "level",
			slog.FieldKeyMessage:  "message",
		}
		f.TimeFormat = "2006-01-02T15:04:05"
	})
	h.SetFormatter(formatter)

	return slog.NewWithHandlers(h)
}

// withServiceName 은 service_name 필드가 없으면 SERVICE_NAME 환경변수로 채운다.
func withServiceName(fields Fields) Fields {
	out := make(Fields, len(fields)+1)
	for k, v := range fields {
		out[k] = v
	}
	if _, ok := out["service_name"]; !ok {
		if sn := os.Getenv("SERVICE_NAME"); sn != "" {
			out["service_name"] = sn
		}
	}
	return out
}

// leveled 는 gookit/slog Record 와 AppLogger 가 공유하는 최소 메서드 집합이다.
type leveled interface {
	Debug(args ...any)
	Info(args ...any)
	Warn(args ...any)
	Error(args ...any)
}

// logWithFields 는 gookit/slog 로거일 때만 필드를 싣고, 다른 AppLogger 는 메시지만 남긴다.
func logWithFields(level slog.Level, msg string, fields Fields) {
	var out leveled = Logger
	if lg, ok := Logger.(*slog.Logger); ok {
		out = lg.WithFields(slog.M(withServiceName(fields)))
	}
	switch level {
	case slog.DebugLevel:
		out.Debug(msg)
	case slog.WarnLevel:
		out.Warn(msg)
	case slog.ErrorLevel:
		out.Error(msg)
	default:
		out.Info(msg)
	}
}

func DebugWithFields(msg string, fields Fields) { logWithFields(slog.DebugLevel, msg, fields) }
func InfoWithFields(msg string, fields Fields)  { logWithFields(slog.InfoLevel, msg, fields) }
func WarnWithFields(msg string, fields Fields)  { logWithFields(slog.WarnLevel, msg, fields) }
func ErrorWithFields(msg string, fields Fields) { logWithFields(slog.ErrorLevel, msg, fields) }
