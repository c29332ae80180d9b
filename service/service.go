package service

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fulldump/inceptioncrm/collection"
	"github.com/fulldump/inceptioncrm/database"
	"github.com/fulldump/inceptioncrm/listview"
	"github.com/fulldump/inceptioncrm/viewdef"
)

var (
	ErrorCollectionNotFound      = database.ErrorCollectionNotFound
	ErrorCollectionAlreadyExists = database.ErrorCollectionAlreadyExists
	ErrorViewNotFound            = errors.New("view not found")
)

type Service struct {
	db       *database.Database
	logger   *zap.Logger
	pageSize int

	mutex       sync.RWMutex
	views       map[string]*View
	definitions viewdef.Definitions
}

func NewService(db *database.Database, logger *zap.Logger, pageSize int) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		db:          db,
		logger:      logger,
		pageSize:    pageSize,
		views:       map[string]*View{},
		definitions: viewdef.Definitions{},
	}
}

func (s *Service) CreateCollection(name string) (*collection.Collection, error) {
	return s.db.CreateCollection(name)
}

func (s *Service) GetCollection(name string) (*collection.Collection, error) {
	return s.db.GetCollection(name)
}

func (s *Service) ListCollections() []string {
	return s.db.ListCollections()
}

// DeleteCollection closes every view over the collection and drops it.
func (s *Service) DeleteCollection(name string) error {

	for _, view := range s.viewsOf(name) {
		err := s.CloseView(view.Id)
		if err != nil && !errors.Is(err, ErrorViewNotFound) {
			return err
		}
	}

	return s.db.DropCollection(name)
}

func (s *Service) Insert(collectionName string, item interface{}) (*collection.Row, error) {

	col, err := s.db.GetCollection(collectionName)
	if err != nil {
		return nil, err
	}

	row, err := col.Insert(item)
	if err != nil {
		return nil, err
	}

	s.refresh(collectionName)
	return row, nil
}

func (s *Service) Patch(collectionName, id string, patch interface{}) (*collection.Row, error) {

	col, err := s.db.GetCollection(collectionName)
	if err != nil {
		return nil, err
	}

	row, err := col.Get(id)
	if err != nil {
		return nil, err
	}

	err = col.Patch(row, patch)
	if err != nil {
		return nil, err
	}

	s.refresh(collectionName)
	return row, nil
}

func (s *Service) Remove(collectionName, id string) (*collection.Row, error) {

	col, err := s.db.GetCollection(collectionName)
	if err != nil {
		return nil, err
	}

	row, err := col.Get(id)
	if err != nil {
		return nil, err
	}

	err = col.Remove(row)
	if err != nil {
		return nil, err
	}

	s.refresh(collectionName)
	return row, nil
}

// refresh pushes fresh data into every view over the collection.
func (s *Service) refresh(collectionName string) {
	for _, view := range s.viewsOf(collectionName) {
		view.Refresh()
	}
}

func (s *Service) viewsOf(collectionName string) []*View {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	result := []*View{}
	for _, view := range s.views {
		if view.Definition.Collection == collectionName {
			result = append(result, view)
		}
	}
	return result
}

func (s *Service) Definitions() viewdef.Definitions {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.definitions
}

// SetDefinitions replaces the known definitions. Live views created from a
// definition with the same name get its new filter definitions.
func (s *Service) SetDefinitions(definitions viewdef.Definitions) {
	s.mutex.Lock()
	s.definitions = definitions
	views := make([]*View, 0, len(s.views))
	for _, view := range s.views {
		views = append(views, view)
	}
	s.mutex.Unlock()

	for _, view := range views {
		def, ok := definitions[view.Definition.Name]
		if !ok {
			continue
		}
		view.Engine.SetFilterDefinitions(def.Filters)
	}
}

func (s *Service) CreateView(def *viewdef.Definition) (*View, error) {

	err := def.Validate()
	if err != nil {
		return nil, err
	}

	col, err := s.db.GetCollection(def.Collection)
	if err != nil {
		return nil, err
	}

	id := uuid.New().String()
	logger := s.logger.With(zap.String("view", id), zap.String("collection", def.Collection))

	options := def.Options(logger)
	if options.PageSize <= 0 {
		options.PageSize = s.pageSize
	}
	engine, err := listview.New(options)
	if err != nil {
		return nil, fmt.Errorf("new engine: %w", err)
	}
	engine.SetFilterDefinitions(def.Filters)

	view := &View{
		Id:         id,
		Definition: def,
		Engine:     engine,
		Created:    time.Now(),
		feeder:     NewFeeder(engine, col, def.Local, options.PageSize, logger),
	}
	engine.Subscribe(view.record)
	view.feeder.Start()

	s.mutex.Lock()
	s.views[id] = view
	s.mutex.Unlock()

	logger.Info("view created", zap.String("definition", def.Name))

	return view, nil
}

func (s *Service) GetView(id string) (*View, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	view, ok := s.views[id]
	if !ok {
		return nil, fmt.Errorf("%w: '%s'", ErrorViewNotFound, id)
	}
	return view, nil
}

// ListViews returns live views, oldest first.
func (s *Service) ListViews() []*View {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	result := make([]*View, 0, len(s.views))
	for _, view := range s.views {
		result = append(result, view)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Created.Before(result[j].Created)
	})
	return result
}

func (s *Service) CloseView(id string) error {
	s.mutex.Lock()
	view, ok := s.views[id]
	delete(s.views, id)
	s.mutex.Unlock()

	if !ok {
		return fmt.Errorf("%w: '%s'", ErrorViewNotFound, id)
	}

	s.logger.Info("view closed", zap.String("view", id))
	return view.close()
}

// Close releases every live view.
func (s *Service) Close() {
	for _, view := range s.ListViews() {
		s.CloseView(view.Id)
	}
}
