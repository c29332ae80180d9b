package listview

type EventType string

const (
	EventSelect         EventType = "select"
	EventSort           EventType = "sort"
	EventSearch         EventType = "search"
	EventFilter         EventType = "filter"
	EventPage           EventType = "page"
	EventInfiniteScroll EventType = "infinite-scroll"
)

// IsFetch reports whether the consumer is expected to fetch and push new data.
func (t EventType) IsFetch() bool {
	switch t {
	case EventSort, EventSearch, EventFilter, EventPage, EventInfiniteScroll:
		return true
	}
	return false
}

type Event struct {
	Type EventType   `json:"type"`
	Data interface{} `json:"data"`
}

// Query is the payload of every fetch intent, complete enough to run the
// fetch without any other state.
type Query struct {
	Page     int               `json:"page"`
	PageSize int               `json:"pageSize"`
	Search   string            `json:"search"`
	Filters  map[string]string `json:"filters"`
	Sort     SortState         `json:"sort"`
}

type SelectionChange struct {
	Keys []string `json:"keys"`
}

func (e Event) Query() (Query, bool) {
	q, ok := e.Data.(Query)
	return q, ok && e.Type.IsFetch()
}

func (e Event) Selection() (SelectionChange, bool) {
	s, ok := e.Data.(SelectionChange)
	return s, ok
}

type listener struct {
	id int
	fn func(Event)
}
