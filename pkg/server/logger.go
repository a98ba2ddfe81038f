package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// newErrorLog adapts the context logger for http.Server.ErrorLog.
func newErrorLog(logger *zap.SugaredLogger, prefix string) *log.Logger {
	return log.New(logWriter{logger}, prefix, 0)
}

type logWriter struct {
	logger *zap.SugaredLogger
}

var _ io.Writer = logWriter{}

func (w logWriter) Write(message []byte) (int, error) {
	size := len(message)
	if size != 0 && message[size-1] == '\n' {
		message = message[:size-1]
	}

	w.logger.Errorf("%s.", message)
	return size, nil
}

type prometheusLogger struct {
	logger *zap.SugaredLogger
}

func newPrometheusLogger(logger *zap.SugaredLogger) prometheusLogger {
	return prometheusLogger{logger}
}

var _ promhttp.Logger = prometheusLogger{}

// Println demotes client-side disconnects: a scraper that hangs up mid-read
// is not our error.
func (l prometheusLogger) Println(v ...any) {
	level := zapcore.ErrorLevel

	for _, value := range v {
		if err, ok := value.(error); ok {
			var netErr *net.OpError
			if errors.As(err, &netErr) && netErr.Op == "write" &&
				(netErr.Timeout() || errors.Is(netErr.Err, syscall.EPIPE)) || errors.Is(err, context.Canceled) {
				level = zap.DebugLevel
			}
			break
		}
	}

	l.logger.Logf(level, "Prometheus: %s.", strings.TrimRight(fmt.Sprintf("%v", v), "\n"))
}
