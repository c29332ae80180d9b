package main

import (
	"fmt"
	"math/rand"
	"sync/atomic"
	"time"
)

// TestView drives one live view with page, sort, filter and search actions.
// Every action is answered after the view got its data back.
func TestView(c Config) {

	collection := CreateCollection(c.Base)
	fmt.Println("Preload contacts...")
	Preload(c.Base, collection, c.N)

	viewURL := c.Base + "/v1/views/" + CreateView(c.Base, collection)
	statuses := []string{"", "active", "lead", "inactive"}

	ops := c.Ops
	t0 := time.Now()
	Parallel(c.Workers, func() {
		for atomic.AddInt64(&ops, -1) >= 0 {
			switch rand.Intn(4) {
			case 0:
				Post(viewURL+":page", JSON{"page": 1 + rand.Intn(10)})
			case 1:
				Post(viewURL+":sort", JSON{"key": "name"})
			case 2:
				Post(viewURL+":filter", JSON{"key": "status", "value": statuses[rand.Intn(len(statuses))]})
			case 3:
				Post(viewURL+":search", JSON{"term": fmt.Sprintf("contact %d", rand.Intn(100))})
				Post(viewURL+":flush", nil)
			}
		}
	})

	Report("view", c.Ops, time.Since(t0))
}
