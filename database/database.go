package database

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fulldump/inceptioncrm/collection"
)

const (
	StatusOpening   = "opening"
	StatusOperating = "operating"
	StatusClosing   = "closing"
)

var (
	ErrorCollectionNotFound      = errors.New("collection not found")
	ErrorCollectionAlreadyExists = errors.New("collection already exists")
	ErrorInvalidCollectionName   = errors.New("invalid collection name")
)

var validName = regexp.MustCompile(`^[a-zA-Z0-9_\-]+$`)

type Config struct {
	Dir string
}

type Database struct {
	Config      *Config
	logger      *zap.Logger
	mutex       sync.RWMutex
	status      string
	collections map[string]*collection.Collection
	exit        chan struct{}
}

func NewDatabase(config *Config, logger *zap.Logger) *Database {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Database{
		Config:      config,
		logger:      logger,
		status:      StatusOpening,
		collections: map[string]*collection.Collection{},
		exit:        make(chan struct{}),
	}
}

func (db *Database) GetStatus() string {
	db.mutex.RLock()
	defer db.mutex.RUnlock()
	return db.status
}

func (db *Database) setStatus(status string) {
	db.mutex.Lock()
	db.status = status
	db.mutex.Unlock()
}

func (db *Database) CreateCollection(name string) (*collection.Collection, error) {

	if !validName.MatchString(name) {
		return nil, fmt.Errorf("%w '%s'", ErrorInvalidCollectionName, name)
	}

	db.mutex.Lock()
	defer db.mutex.Unlock()

	if _, exists := db.collections[name]; exists {
		return nil, fmt.Errorf("%w: '%s'", ErrorCollectionAlreadyExists, name)
	}

	filename := path.Join(db.Config.Dir, name)
	col, err := collection.OpenCollection(filename)
	if err != nil {
		return nil, err
	}

	db.collections[name] = col
	db.logger.Info("collection created", zap.String("collection", name))

	return col, nil
}

func (db *Database) GetCollection(name string) (*collection.Collection, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	col, exists := db.collections[name]
	if !exists {
		return nil, fmt.Errorf("%w: '%s'", ErrorCollectionNotFound, name)
	}
	return col, nil
}

// ListCollections returns collection names sorted.
func (db *Database) ListCollections() []string {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	names := make([]string, 0, len(db.collections))
	for name := range db.collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (db *Database) DropCollection(name string) error {

	db.mutex.Lock()
	defer db.mutex.Unlock()

	col, exists := db.collections[name]
	if !exists {
		return fmt.Errorf("%w: '%s'", ErrorCollectionNotFound, name)
	}

	err := col.Drop()
	if err != nil {
		return fmt.Errorf("drop '%s': %w", name, err)
	}

	delete(db.collections, name)
	db.logger.Info("collection dropped", zap.String("collection", name))

	return nil
}

func (db *Database) Load() error {

	db.logger.Info("loading database", zap.String("dir", db.Config.Dir))
	dir := db.Config.Dir
	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return err
	}

	err = filepath.WalkDir(dir, func(filename string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		name := filename
		name = strings.TrimPrefix(name, dir)
		name = strings.TrimPrefix(name, "/")

		t0 := time.Now()
		col, err := collection.OpenCollection(filename)
		if err != nil {
			db.logger.Error("open collection", zap.String("filename", filename), zap.Error(err))
			return err
		}
		db.logger.Info("collection loaded",
			zap.String("collection", name),
			zap.Int("rows", col.Len()),
			zap.Duration("took", time.Since(t0)))

		db.mutex.Lock()
		db.collections[name] = col
		db.mutex.Unlock()

		return nil
	})

	if err != nil {
		db.setStatus(StatusClosing)
		return err
	}

	db.setStatus(StatusOperating)

	return nil
}

// Start loads the database and blocks until Stop is called.
func (db *Database) Start() error {

	err := db.Load()
	if err != nil {
		return err
	}

	<-db.exit

	return nil
}

func (db *Database) Stop() error {

	defer close(db.exit)

	db.setStatus(StatusClosing)

	db.mutex.Lock()
	defer db.mutex.Unlock()

	var lastErr error
	for name, col := range db.collections {
		db.logger.Info("closing collection", zap.String("collection", name))
		err := col.Close()
		if err != nil {
			db.logger.Error("close collection", zap.String("collection", name), zap.Error(err))
			lastErr = err
		}
	}

	return lastErr
}
