package listview

import (
	"encoding/json"
	"strconv"
	"sync"
	"time"
)

type manualTimer struct {
	duration time.Duration
	f        func()
	stopped  bool
}

func (t *manualTimer) Stop() bool {
	active := !t.stopped
	t.stopped = true
	return active
}

// manualScheduler never fires by itself; Fire runs the live timers.
type manualScheduler struct {
	mu     sync.Mutex
	timers []*manualTimer
}

func (s *manualScheduler) AfterFunc(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &manualTimer{duration: d, f: f}
	s.timers = append(s.timers, t)
	return t
}

func (s *manualScheduler) Fire() int {
	s.mu.Lock()
	timers := s.timers
	s.timers = nil
	s.mu.Unlock()

	fired := 0
	for _, t := range timers {
		if t.stopped {
			continue
		}
		t.stopped = true
		t.f()
		fired++
	}
	return fired
}

func (s *manualScheduler) Live() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	live := 0
	for _, t := range s.timers {
		if !t.stopped {
			live++
		}
	}
	return live
}

func entities(payloads ...string) []Entity {
	result := make([]Entity, 0, len(payloads))
	for _, payload := range payloads {
		result = append(result, NewEntity(DefaultIdentityPath, json.RawMessage(payload)))
	}
	return result
}

func people(n, from int) []Entity {
	result := make([]Entity, 0, n)
	for i := 0; i < n; i++ {
		id := from + i
		payload, _ := json.Marshal(map[string]interface{}{
			"id":   "p" + strconv.Itoa(id),
			"name": "person " + strconv.Itoa(id),
		})
		result = append(result, NewEntity(DefaultIdentityPath, payload))
	}
	return result
}

func ids(items []Entity) []string {
	result := make([]string, 0, len(items))
	for _, item := range items {
		result = append(result, item.ID)
	}
	return result
}

var testColumns = Columns{
	{Key: "id", Label: "Id"},
	{Key: "name", Label: "Name", Sortable: true},
	{Key: "status", Label: "Status", Sortable: true},
}

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) record(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) ofType(t EventType) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := []Event{}
	for _, e := range r.events {
		if e.Type == t {
			result = append(result, e)
		}
	}
	return result
}

func (r *recorder) all() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event{}, r.events...)
}

func newTestEngine(options Options) (*Engine, *manualScheduler, *recorder) {
	scheduler := &manualScheduler{}
	options.Scheduler = scheduler
	if options.Columns == nil {
		options.Columns = testColumns
	}
	engine, err := New(options)
	if err != nil {
		panic(err)
	}
	r := &recorder{}
	engine.Subscribe(r.record)
	return engine, scheduler, r
}
