package bootstrap

import (
	"testing"

	. "github.com/fulldump/biff"
	"go.uber.org/zap"
)

func TestNewLogger(t *testing.T) {

	Alternative("Valid level", func(a *A) {
		logger, err := NewLogger("warn")
		AssertNil(err)
		AssertFalse(logger.Core().Enabled(zap.InfoLevel))
		AssertTrue(logger.Core().Enabled(zap.WarnLevel))
	})

	Alternative("Unknown level", func(a *A) {
		_, err := NewLogger("loud")
		AssertNotNil(err)
	})
}
