package service

import (
	"github.com/fulldump/inceptioncrm/collection"
	"github.com/fulldump/inceptioncrm/viewdef"
)

type Servicer interface {
	CreateCollection(name string) (*collection.Collection, error)
	GetCollection(name string) (*collection.Collection, error)
	ListCollections() []string
	DeleteCollection(name string) error

	Insert(collectionName string, item interface{}) (*collection.Row, error)
	Patch(collectionName, id string, patch interface{}) (*collection.Row, error)
	Remove(collectionName, id string) (*collection.Row, error)

	Definitions() viewdef.Definitions
	SetDefinitions(definitions viewdef.Definitions)

	CreateView(def *viewdef.Definition) (*View, error)
	GetView(id string) (*View, error)
	ListViews() []*View
	CloseView(id string) error
	Close()
}
