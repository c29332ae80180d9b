package service

import (
	"sync"
	"time"

	"github.com/fulldump/inceptioncrm/listview"
	"github.com/fulldump/inceptioncrm/viewdef"
)

const eventHistory = 50

// View is a live list engine over one collection, fed by its own Feeder.
type View struct {
	Id         string
	Definition *viewdef.Definition
	Engine     *listview.Engine
	Created    time.Time

	feeder      *Feeder
	eventsMutex sync.Mutex
	events      []listview.Event
}

func (v *View) record(e listview.Event) {
	v.eventsMutex.Lock()
	defer v.eventsMutex.Unlock()

	v.events = append(v.events, e)
	if len(v.events) > eventHistory {
		v.events = v.events[len(v.events)-eventHistory:]
	}
}

// Events returns the most recent engine events, oldest first.
func (v *View) Events() []listview.Event {
	v.eventsMutex.Lock()
	defer v.eventsMutex.Unlock()

	result := make([]listview.Event, len(v.events))
	copy(result, v.events)
	return result
}

func (v *View) Refresh() {
	v.feeder.Refresh()
}

func (v *View) close() error {
	v.feeder.Stop()
	return v.Engine.Close()
}
