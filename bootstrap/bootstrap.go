package bootstrap

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/fulldump/box"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/fulldump/inceptioncrm/api"
	"github.com/fulldump/inceptioncrm/configuration"
	"github.com/fulldump/inceptioncrm/database"
	"github.com/fulldump/inceptioncrm/service"
	"github.com/fulldump/inceptioncrm/viewdef"
)

var VERSION = "dev"

// NewLogger builds the production logger at the given level.
func NewLogger(level string) (*zap.Logger, error) {
	l, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(l)
	return config.Build()
}

func Bootstrap(c *configuration.Configuration, logger *zap.Logger) (start, stop func()) {

	db := database.NewDatabase(&database.Config{
		Dir: c.Dir,
	}, logger.Named("database"))

	s := service.NewService(db, logger.Named("service"), c.PageSize)
	loadViews(c.Views, s, logger)

	b := api.Build(s, c.Statics, VERSION)
	if c.EnableCompression {
		b.WithInterceptors(api.Compression)
	}
	b.WithInterceptors(
		api.AccessLog(zap.NewStdLog(logger.Named("access"))),
		api.PrettyErrorInterceptor,
		api.InterceptorUnavailable(db),
		api.RecoverFromPanic(logger.Named("panic")),
	)

	server := &http.Server{
		Addr:     c.HttpAddr,
		Handler:  box.Box2Http(b),
		ErrorLog: zap.NewStdLog(logger.Named("http")),
	}

	ln, err := net.Listen("tcp", c.HttpAddr)
	if err != nil {
		logger.Fatal("listen", zap.String("addr", c.HttpAddr), zap.Error(err))
	}
	logger.Info("listening", zap.String("addr", c.HttpAddr))

	ctx, cancel := context.WithCancel(context.Background())

	stopOnce := &sync.Once{}
	stop = func() {
		stopOnce.Do(func() {
			cancel()
			s.Close()
			db.Stop()
			server.Shutdown(context.Background())
		})
	}

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		sig := <-signalChan
		logger.Info("signal received", zap.String("signal", sig.String()))
		stop()
	}()

	start = func() {

		wg := &sync.WaitGroup{}

		wg.Add(1)
		go func() {
			defer wg.Done()
			err := db.Start()
			if err != nil {
				logger.Error("database", zap.Error(err))
			}
		}()

		wg.Add(1)
		go func() {
			defer wg.Done()
			err := server.Serve(ln)
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("http server", zap.Error(err))
			}
		}()

		if c.Views != "" {
			wg.Add(1)
			go func() {
				defer wg.Done()
				err := viewdef.Watch(ctx, c.Views, logger.Named("viewdef"), s.SetDefinitions)
				if err != nil {
					logger.Warn("view definitions are not watched", zap.Error(err))
				}
			}()
		}

		wg.Wait()
	}

	return
}

// loadViews reads the view definitions file. A missing file leaves the
// service without definitions; views can still be created inline.
func loadViews(filename string, s *service.Service, logger *zap.Logger) {
	if filename == "" {
		return
	}
	definitions, err := viewdef.Load(filename)
	if errors.Is(err, os.ErrNotExist) {
		logger.Warn("no view definitions", zap.String("file", filename))
		return
	}
	if err != nil {
		logger.Error("load view definitions", zap.String("file", filename), zap.Error(err))
		return
	}
	logger.Info("view definitions loaded", zap.String("file", filename), zap.Int("views", len(definitions)))
	s.SetDefinitions(definitions)
}
