// Package listview implements a headless entity list/grid view: selection,
// sort/filter/search, paged or infinite buffering, virtual windowing and
// text rendering. It never fetches data; it emits intents and waits for a
// collaborator to push items back.
package listview

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	ErrInvalidMode     = errors.New("invalid pagination mode")
	ErrInvalidViewMode = errors.New("invalid view mode")
)

type Options struct {
	Columns      Columns
	Card         CardFunc
	IdentityPath string
	MultiSelect  bool
	Mode         Mode
	ViewMode     ViewMode
	PageSize     int
	GridColumns  int
	Viewport     Viewport
	Threshold    int
	SearchDelay  time.Duration
	ScrollDelay  time.Duration
	Scheduler    Scheduler
	Styles       *Styles
	Logger       *zap.Logger
}

func (o *Options) setDefaults() {
	if o.IdentityPath == "" {
		o.IdentityPath = DefaultIdentityPath
	}
	if o.Mode == "" {
		o.Mode = ModePaged
	}
	if o.ViewMode == "" {
		o.ViewMode = ViewList
	}
	if o.Threshold <= 0 {
		o.Threshold = DefaultThreshold
	}
	if o.SearchDelay <= 0 {
		o.SearchDelay = DefaultSearchDelay
	}
	if o.ScrollDelay <= 0 {
		o.ScrollDelay = DefaultScrollDelay
	}
	if o.Scheduler == nil {
		o.Scheduler = realScheduler{}
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
}

type Engine struct {
	mu      sync.Mutex
	options Options
	logger  *zap.Logger

	selection  *Selection
	controller *Controller
	buffer     *Buffer
	trigger    *Trigger
	renderer   *Renderer
	scroll     *Debouncer

	pagination        *Pagination // nil means local mode
	loading           bool
	loaded            bool
	viewMode          ViewMode
	filterDefinitions []FilterDefinition
	page              int // local page
	offset            int // scroll offset
	requested         int // page asked by infinite scroll and not received yet

	// computed view, rebuilt when dirty
	dirty     bool
	displayed []Entity
	matching  int
	localPage *Pagination

	listeners    []listener
	lastListener int
	pending      []Event
	closed       bool
}

func New(options Options) (*Engine, error) {

	options.setDefaults()

	if err := options.Columns.Validate(); err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}
	if err := options.Mode.Validate(); err != nil {
		return nil, err
	}
	if err := options.ViewMode.Validate(); err != nil {
		return nil, err
	}

	styles := DefaultStyles()
	if options.Styles != nil {
		styles = *options.Styles
	}

	e := &Engine{
		options:    options,
		logger:     options.Logger,
		controller: NewController(options.Columns, options.SearchDelay, options.Scheduler),
		buffer:     NewBuffer(options.Mode),
		trigger:    NewTrigger(options.Threshold),
		scroll:     NewDebouncer(options.ScrollDelay, options.Scheduler),
		renderer: &Renderer{
			Columns:     options.Columns,
			Card:        options.Card,
			GridColumns: options.GridColumns,
			Styles:      styles,
		},
		viewMode: options.ViewMode,
		page:     1,
		dirty:    true,
	}
	e.selection = NewSelection(options.MultiSelect, func(keys []string) {
		e.emit(Event{Type: EventSelect, Data: SelectionChange{Keys: keys}})
	})

	return e, nil
}

func (e *Engine) IdentityPath() string {
	return e.options.IdentityPath
}

func (e *Engine) Mode() Mode {
	return e.options.Mode
}

// Subscribe registers fn for every event. Listeners run after the engine
// state is released, so they may push data back synchronously.
func (e *Engine) Subscribe(fn func(Event)) (cancel func()) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return func() {}
	}

	e.lastListener++
	id := e.lastListener
	e.listeners = append(e.listeners, listener{id: id, fn: fn})

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		e.listeners = slices.DeleteFunc(e.listeners, func(l listener) bool {
			return l.id == id
		})
	}
}

// Inputs

// Load pushes items and their pagination. A nil pagination means the items
// are the whole collection and transformations happen locally.
func (e *Engine) Load(items []Entity, pagination *Pagination) {
	e.do(func() {
		previous := e.pagination

		if !e.buffer.Push(items, pagination) {
			e.logger.Warn("discarded page outside the current session",
				zap.Int("page", pagination.Page),
				zap.Int("buffered", e.buffer.Page()))
			return
		}

		e.requested = 0
		e.pagination = pagination.clone()
		e.loaded = true
		if e.options.Mode == ModePaged && pagination != nil && (previous == nil || previous.Page != pagination.Page) {
			e.offset = 0
		}
		e.invalidate()
	})
}

func (e *Engine) SetLoading(loading bool) {
	e.do(func() {
		e.loading = loading
	})
}

func (e *Engine) SetFilterDefinitions(definitions []FilterDefinition) {
	e.do(func() {
		e.filterDefinitions = slices.Clone(definitions)
	})
}

func (e *Engine) SetViewMode(mode ViewMode) error {
	if err := mode.Validate(); err != nil {
		return err
	}
	e.do(func() {
		e.viewMode = mode
	})
	return nil
}

func (e *Engine) ToggleViewMode() {
	e.do(func() {
		if e.viewMode == ViewGrid {
			e.viewMode = ViewList
		} else {
			e.viewMode = ViewGrid
		}
	})
}

// Selection

// Toggle selects or deselects the visible entity identified by key.
// Keys outside the visible window are ignored.
func (e *Engine) Toggle(key string) {
	e.do(func() {
		for _, entity := range e.windowLocked() {
			if entity.ID == key {
				e.selection.Toggle(entity)
				return
			}
		}
	})
}

func (e *Engine) SelectAll() {
	e.do(func() {
		e.selection.SelectAll(e.windowLocked())
	})
}

func (e *Engine) ClearSelection() {
	e.do(func() {
		e.selection.Clear()
	})
}

func (e *Engine) Selected() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selection.Keys()
}

func (e *Engine) IsSelected(key string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selection.Has(key)
}

// Sort, filter, search

func (e *Engine) Sort(key string) {
	e.do(func() {
		if !e.controller.SetSort(key) {
			return
		}
		page := max(e.currentPage(), 1)
		if e.options.Mode == ModeInfinite {
			e.restart()
			page = 1
		}
		e.invalidate()
		e.emit(e.fetchEvent(EventSort, page))
	})
}

// Search commits term after the search delay. Calls arriving before the
// delay expires replace the pending term.
func (e *Engine) Search(term string) {
	e.do(func() {
		e.controller.SetSearchTerm(term, e.commitSearch)
	})
}

// FlushSearch commits a pending search term without waiting.
func (e *Engine) FlushSearch() bool {
	if e.isClosed() {
		return false
	}
	return e.controller.FlushSearch()
}

func (e *Engine) commitSearch(term string) {
	e.do(func() {
		if !e.controller.CommitSearch(term) {
			return
		}
		e.restart()
		e.emit(e.fetchEvent(EventSearch, 1))
	})
}

func (e *Engine) Filter(key, value string) {
	e.do(func() {
		if !e.controller.SetFilter(key, value) {
			return
		}
		e.restart()
		e.emit(e.fetchEvent(EventFilter, 1))
	})
}

// Pagination and scrolling

func (e *Engine) PageChange(page int) {
	e.do(func() {
		if e.options.Mode != ModePaged {
			return
		}
		e.materialize()
		p := e.currentPagination()
		if p == nil || page < 1 || page > p.TotalPages || page == p.Page {
			return
		}
		if e.pagination == nil {
			e.page = page
			e.offset = 0
			e.invalidate()
		}
		e.emit(e.fetchEvent(EventPage, page))
	})
}

func (e *Engine) NextPage() {
	e.PageChange(e.CurrentPage() + 1)
}

func (e *Engine) PreviousPage() {
	e.PageChange(e.CurrentPage() - 1)
}

func (e *Engine) CurrentPage() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.currentPage()
}

// Scroll moves the window at once; the fetch check waits for scrolling to settle.
func (e *Engine) Scroll(offset int) {
	e.do(func() {
		total := len(e.materialize())
		e.offset = min(max(offset, 0), e.options.Viewport.MaxOffset(total))
		e.scroll.Debounce(e.checkScroll)
	})
}

func (e *Engine) checkScroll() {
	e.do(func() {
		if !e.infiniteSession() || e.requested != 0 {
			return
		}
		items := e.materialize()
		_, end := e.options.Viewport.Range(e.offset, len(items))
		if !e.trigger.Check(end, len(items), e.pagination.HasNextPage) {
			return
		}
		e.requestNext()
	})
}

// LoadMore asks for the next infinite scroll page regardless of the window.
func (e *Engine) LoadMore() {
	e.do(func() {
		if !e.infiniteSession() || e.requested != 0 || !e.pagination.HasNextPage {
			return
		}
		e.requestNext()
	})
}

func (e *Engine) infiniteSession() bool {
	return e.options.Mode == ModeInfinite && e.pagination != nil
}

func (e *Engine) requestNext() {
	next := e.pagination.Page + 1
	e.requested = next
	e.emit(e.fetchEvent(EventInfiniteScroll, next))
}

// Output

type Snapshot struct {
	State             State              `json:"state"`
	ViewMode          ViewMode           `json:"viewMode"`
	Mode              Mode               `json:"mode"`
	Local             bool               `json:"local"`
	Items             []Entity           `json:"items"`
	Start             int                `json:"start"`
	Total             int                `json:"total"`
	Buffered          int                `json:"buffered"`
	Offset            int                `json:"offset"`
	Selected          []string           `json:"selected"`
	AllSelected       bool               `json:"allSelected"`
	SomeSelected      bool               `json:"someSelected"`
	Sort              SortState          `json:"sort"`
	Search            string             `json:"search"`
	Filters           map[string]string  `json:"filters"`
	FilterDefinitions []FilterDefinition `json:"filterDefinitions"`
	Pagination        *Pagination        `json:"pagination"`
	Summary           string             `json:"summary"`
	Columns           Columns            `json:"columns"`
}

func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	items := e.materialize()
	start, end := e.options.Viewport.Range(e.offset, len(items))
	window := items[start:end]

	filterDefinitions := e.filterDefinitions
	if filterDefinitions == nil {
		filterDefinitions = []FilterDefinition{}
	}

	return Snapshot{
		State:             e.state(),
		ViewMode:          e.viewMode,
		Mode:              e.options.Mode,
		Local:             e.pagination == nil,
		Items:             slices.Clone(window),
		Start:             start,
		Total:             len(items),
		Buffered:          e.buffer.Len(),
		Offset:            e.offset,
		Selected:          e.selection.Keys(),
		AllSelected:       e.selection.IsAllSelected(window),
		SomeSelected:      e.selection.IsSomeSelected(window),
		Sort:              e.controller.Sort(),
		Search:            e.controller.Search(),
		Filters:           e.controller.Filters(),
		FilterDefinitions: slices.Clone(filterDefinitions),
		Pagination:        e.currentPagination().clone(),
		Summary:           e.summary(),
		Columns:           e.options.Columns,
	}
}

func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state()
}

// Render draws the current window. A panicking render function propagates.
func (e *Engine) Render() string {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.renderer.Render(Frame{
		State:    e.state(),
		Mode:     e.viewMode,
		Entities: e.windowLocked(),
		Selected: e.selection.IsSelected,
		Sort:     e.controller.Sort(),
		Summary:  e.summary(),
	})
}

// Close releases the search and scroll timers and drops every listener.
// Any later operation is a no-op.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.listeners = nil
	e.pending = nil
	e.mu.Unlock()

	e.controller.Close()
	e.scroll.Cancel()

	return nil
}

// Internals, all called with e.mu held

func (e *Engine) do(f func()) {
	events, listeners := e.locked(f)
	for _, event := range events {
		e.logger.Debug("listview event", zap.String("type", string(event.Type)))
		for _, l := range listeners {
			l.fn(event)
		}
	}
}

func (e *Engine) locked(f func()) ([]Event, []listener) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil, nil
	}

	f()

	events := e.pending
	e.pending = nil
	return events, slices.Clone(e.listeners)
}

func (e *Engine) isClosed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

func (e *Engine) emit(event Event) {
	e.pending = append(e.pending, event)
}

func (e *Engine) fetchEvent(t EventType, page int) Event {
	pageSize := e.options.PageSize
	if e.pagination != nil && e.pagination.PageSize > 0 {
		pageSize = e.pagination.PageSize
	}
	return Event{
		Type: t,
		Data: Query{
			Page:     page,
			PageSize: pageSize,
			Search:   e.controller.Search(),
			Filters:  e.controller.Filters(),
			Sort:     e.controller.Sort(),
		},
	}
}

// restart begins a new session after search or filter (or sort when
// infinite) changed: back to page 1, top of the list, empty infinite buffer.
func (e *Engine) restart() {
	e.page = 1
	e.offset = 0
	e.requested = 0
	e.trigger.Reset()
	if e.infiniteSession() {
		// the caller emits the fetch for page 1, nothing else is asked until it arrives
		e.buffer.Reset()
		e.pagination = NewPagination(1, e.pagination.PageSize, e.pagination.TotalItems)
		e.requested = 1
	}
	e.invalidate()
}

func (e *Engine) invalidate() {
	e.dirty = true
}

func (e *Engine) materialize() []Entity {
	if !e.dirty {
		return e.displayed
	}

	local := e.pagination == nil
	items := e.controller.Apply(e.buffer.Items(), local)
	e.matching = len(items)
	e.localPage = nil

	if local && e.options.Mode == ModePaged && e.options.PageSize > 0 {
		p := NewPagination(e.page, e.options.PageSize, e.matching)
		if p.TotalPages > 0 && e.page > p.TotalPages {
			e.page = p.TotalPages
			p = NewPagination(e.page, e.options.PageSize, e.matching)
		}
		e.localPage = p
		from, to := p.Range()
		if to == 0 {
			items = nil
		} else {
			items = items[from-1 : to]
		}
	}

	e.displayed = items
	e.dirty = false
	return items
}

func (e *Engine) currentPagination() *Pagination {
	if e.pagination != nil {
		return e.pagination
	}
	e.materialize()
	return e.localPage
}

func (e *Engine) currentPage() int {
	if e.pagination != nil {
		return e.pagination.Page
	}
	e.materialize()
	return e.page
}

func (e *Engine) windowLocked() []Entity {
	items := e.materialize()
	start, end := e.options.Viewport.Range(e.offset, len(items))
	return items[start:end]
}

func (e *Engine) state() State {
	if e.loading {
		return StateLoading
	}
	if !e.loaded {
		return StateIdle
	}
	if len(e.materialize()) == 0 {
		return StateEmpty
	}
	return StatePopulated
}

func (e *Engine) summary() string {
	items := e.materialize()

	if e.pagination != nil {
		if e.options.Mode == ModeInfinite {
			return summary(1, e.buffer.Len(), e.pagination.TotalItems)
		}
		from, to := e.pagination.Range()
		return summary(from, to, e.pagination.TotalItems)
	}

	if e.localPage != nil {
		from, to := e.localPage.Range()
		return summary(from, to, e.localPage.TotalItems)
	}

	return summary(1, len(items), len(items))
}
