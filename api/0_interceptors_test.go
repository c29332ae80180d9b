package api

import (
	"net/http"
	"testing"

	"github.com/fulldump/apitest"
	"github.com/fulldump/biff"
	"github.com/fulldump/box"
	"go.uber.org/zap"
)

func TestRecoverFromPanic(t *testing.T) {

	b := box.NewBox()
	b.WithInterceptors(RecoverFromPanic(zap.NewNop()))
	b.Resource("/broken").WithActions(box.Get(func() string {
		panic("broken column")
	}))

	resp := apitest.NewWithHandler(b).Request("GET", "/broken").Do()

	biff.AssertEqual(resp.StatusCode, http.StatusInternalServerError)
	biff.AssertEqualJson(resp.BodyJson(), map[string]interface{}{
		"error": map[string]interface{}{
			"message":     "broken column",
			"description": "Unexpected error",
		},
	})
}

func TestFormatRemoteAddr(t *testing.T) {

	r, _ := http.NewRequest("GET", "/", nil)
	r.RemoteAddr = "10.0.0.1:5555"
	biff.AssertEqual(formatRemoteAddr(r), "10.0.0.1")

	r.Header.Set("X-Forwarded-For", "1.2.3.4, 10.0.0.1")
	biff.AssertEqual(formatRemoteAddr(r), "1.2.3.4")
}
