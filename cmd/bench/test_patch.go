package main

import (
	"fmt"
	"math/rand"
	"strconv"
	"sync/atomic"
	"time"
)

// TestPatch patches contacts while a view over them is open, so every patch
// also refreshes the view.
func TestPatch(c Config) {

	collection := CreateCollection(c.Base)
	fmt.Println("Preload contacts...")
	Preload(c.Base, collection, c.N)
	CreateView(c.Base, collection)

	patchURL := c.Base + "/v1/collections/" + collection + ":patch"

	var failed int64
	ops := c.Ops
	t0 := time.Now()
	Parallel(c.Workers, func() {
		for atomic.AddInt64(&ops, -1) >= 0 {
			id := strconv.FormatInt(rand.Int63n(c.N), 10)
			_, status := Post(patchURL, JSON{
				"id":    id,
				"patch": JSON{"touched": time.Now().UnixNano()},
			})
			if status != 200 {
				atomic.AddInt64(&failed, 1)
			}
		}
	})

	Report("patch", c.Ops, time.Since(t0))
	fmt.Println("patch failed:", failed)
}
