package service

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/fulldump/inceptioncrm/collection"
	"github.com/fulldump/inceptioncrm/listview"
)

const DefaultPageSize = 20

// Feeder is the data collaborator of one engine: it turns fetch intents into
// collection queries and pushes the results back. Fetches are serialized, so
// pages are pushed in the order they were asked for.
type Feeder struct {
	mutex      sync.Mutex
	engine     *listview.Engine
	collection *collection.Collection
	local      bool
	pageSize   int
	logger     *zap.Logger

	unsubscribe func()
	last        listview.Query
	stopped     bool
}

func NewFeeder(engine *listview.Engine, col *collection.Collection, local bool, pageSize int, logger *zap.Logger) *Feeder {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Feeder{
		engine:     engine,
		collection: col,
		local:      local,
		pageSize:   pageSize,
		logger:     logger,
		last:       listview.Query{Page: 1, PageSize: pageSize},
	}
}

// Start subscribes to the engine and pushes the first page (or the whole
// collection for local views).
func (f *Feeder) Start() {
	f.unsubscribe = f.engine.Subscribe(f.handle)
	f.Refresh()
}

func (f *Feeder) Stop() {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	f.stopped = true
	if f.unsubscribe != nil {
		f.unsubscribe()
	}
}

func (f *Feeder) handle(e listview.Event) {
	query, ok := e.Query()
	if !ok || f.local {
		return
	}

	f.mutex.Lock()
	defer f.mutex.Unlock()

	if f.stopped {
		return
	}
	f.fetch(query)
}

// Refresh pushes the current data again, after the collection changed.
// Infinite views reload every page already shown.
func (f *Feeder) Refresh() {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	if f.stopped {
		return
	}

	if f.local {
		f.loadAll()
		return
	}

	if f.engine.Mode() != listview.ModeInfinite {
		f.fetch(f.last)
		return
	}

	last := f.last.Page
	for page := 1; page <= max(last, 1); page++ {
		query := f.last
		query.Page = page
		if !f.fetch(query) {
			break
		}
	}
}

func (f *Feeder) loadAll() {
	f.engine.SetLoading(true)
	defer f.engine.SetLoading(false)

	payloads := []json.RawMessage{}
	f.collection.Traverse(func(row *collection.Row) bool {
		payloads = append(payloads, row.Payload)
		return true
	})

	f.engine.Load(listview.NewEntities(f.engine.IdentityPath(), payloads), nil)
}

// fetch runs query and pushes the page. It reports whether more pages exist.
func (f *Feeder) fetch(query listview.Query) bool {

	pageSize := query.PageSize
	if pageSize <= 0 {
		pageSize = f.pageSize
	}
	page := max(query.Page, 1)

	f.engine.SetLoading(true)
	defer f.engine.SetLoading(false)

	rows, total, err := f.collection.Find(collection.Query{
		Filters: query.Filters,
		Search:  query.Search,
		Sort:    query.Sort.Key,
		Reverse: query.Sort.Direction == listview.Desc,
		Skip:    (page - 1) * pageSize,
		Limit:   pageSize,
	})
	if err != nil {
		f.logger.Error("fetch page", zap.Int("page", page), zap.Error(err))
		return false
	}

	payloads := make([]json.RawMessage, 0, len(rows))
	for _, row := range rows {
		payloads = append(payloads, row.Payload)
	}

	pagination := listview.NewPagination(page, pageSize, total)
	f.engine.Load(listview.NewEntities(f.engine.IdentityPath(), payloads), pagination)

	query.Page = page
	query.PageSize = pageSize
	f.last = query

	f.logger.Debug("page pushed",
		zap.Int("page", page),
		zap.Int("items", len(rows)),
		zap.Int("total", total))

	return pagination.HasNextPage
}
