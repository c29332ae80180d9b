package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fulldump/goconfig"
	"go.uber.org/zap"

	"github.com/fulldump/inceptioncrm/database"
	"github.com/fulldump/inceptioncrm/service"
	"github.com/fulldump/inceptioncrm/tui"
	"github.com/fulldump/inceptioncrm/viewdef"
)

type Config struct {
	Dir      string `usage:"data directory"`
	Views    string `usage:"view definitions file (yaml)"`
	View     string `usage:"name of the view to open"`
	PageSize int    `usage:"default page size"`
	LogFile  string `usage:"write logs to this file, none when empty"`
}

func main() {

	c := Config{
		Dir:      "data",
		Views:    "views.yaml",
		View:     "contacts",
		PageSize: service.DefaultPageSize,
	}
	goconfig.Read(&c)

	err := run(c)
	if err != nil {
		fmt.Fprintln(os.Stderr, "ERROR:", err.Error())
		os.Exit(-1)
	}
}

func run(c Config) error {

	logger := zap.NewNop()
	if c.LogFile != "" {
		config := zap.NewDevelopmentConfig()
		config.OutputPaths = []string{c.LogFile}
		config.ErrorOutputPaths = []string{c.LogFile}
		l, err := config.Build()
		if err != nil {
			return fmt.Errorf("logger: %w", err)
		}
		logger = l
		defer logger.Sync()
	}

	definitions, err := viewdef.Load(c.Views)
	if err != nil {
		return fmt.Errorf("view definitions: %w", err)
	}
	def, err := definitions.Get(c.View)
	if err != nil {
		return err
	}

	db := database.NewDatabase(&database.Config{Dir: c.Dir}, logger.Named("database"))
	err = db.Load()
	if err != nil {
		return fmt.Errorf("load database: %w", err)
	}
	defer db.Stop()

	s := service.NewService(db, logger.Named("service"), c.PageSize)
	defer s.Close()
	s.SetDefinitions(definitions)

	view, err := s.CreateView(def)
	if err != nil {
		return fmt.Errorf("open view '%s': %w", c.View, err)
	}

	title := fmt.Sprintf("%s (%s)", def.Name, def.Collection)
	_, err = tea.NewProgram(tui.New(title, view.Engine, def.Viewport), tea.WithAltScreen()).Run()
	return err
}
