package api

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/fulldump/box"
	"go.uber.org/zap"
)

// RecoverFromPanic turns a panic in a handler (a broken column renderer,
// typically) into a 500 response.
func RecoverFromPanic(logger *zap.Logger) box.I {
	return func(next box.H) box.H {
		return func(ctx context.Context) {
			defer func() {
				if err := recover(); err != nil {
					r := box.GetRequest(ctx)
					logger.Error("panic",
						zap.String("method", r.Method),
						zap.String("url", r.URL.String()),
						zap.Any("recovered", err),
						zap.StackSkip("stack", 2))
					w := box.GetResponse(ctx)
					w.WriteHeader(http.StatusInternalServerError)
					PrettyError{
						Message:     fmt.Sprint(err),
						Description: "Unexpected error",
					}.MarshalTo(w)
				}
			}()
			next(ctx)
		}
	}
}

func AccessLog(l *log.Logger) box.I {
	return func(next box.H) box.H {
		return func(ctx context.Context) {
			r := box.GetRequest(ctx)
			now := time.Now()
			defer func() {
				l.Println(now.UTC().Format(time.RFC3339Nano), formatRemoteAddr(r), r.Method, r.URL.String(), time.Since(now))
			}()

			next(ctx)
		}
	}
}

func formatRemoteAddr(r *http.Request) string {
	xorigin := strings.TrimSpace(strings.Split(
		r.Header.Get("X-Forwarded-For"), ",")[0])
	if xorigin != "" {
		return xorigin
	}

	i := strings.LastIndex(r.RemoteAddr, ":")
	if i < 0 {
		return r.RemoteAddr
	}
	return r.RemoteAddr[:i]
}
