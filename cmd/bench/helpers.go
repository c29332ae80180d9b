package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fulldump/inceptioncrm/bootstrap"
	"github.com/fulldump/inceptioncrm/configuration"
)

type JSON = map[string]any

var client = &http.Client{
	Transport: &http.Transport{
		MaxConnsPerHost:     1024,
		MaxIdleConnsPerHost: 1024,
		MaxIdleConns:        1024,
	},
	Timeout: 30 * time.Second,
}

func Parallel(workers int, f func()) {
	wg := &sync.WaitGroup{}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f()
		}()
	}
	wg.Wait()
}

func TempDir() (string, func()) {
	dir, err := os.MkdirTemp("", "inceptioncrm_bench_*")
	if err != nil {
		panic("Could not create temp directory: " + err.Error())
	}

	cleanup := func() {
		os.RemoveAll(dir)
	}

	return dir, cleanup
}

func CreateServer(c *Config) (start, stop func()) {
	dir, cleanup := TempDir()
	cleanups = append(cleanups, cleanup)

	conf := configuration.Default()
	conf.Dir = dir
	conf.Views = ""
	conf.ShowBanner = false
	c.Base = "http://" + conf.HttpAddr

	return bootstrap.Bootstrap(&conf, zap.NewNop())
}

// WaitReady blocks until the database finished loading.
func WaitReady(base string) {
	for {
		resp, err := client.Get(base + "/v1/collections")
		if err == nil {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}
}

func Post(url string, body any) (JSON, int) {
	payload, _ := json.Marshal(body)
	resp, err := client.Post(url, "application/json", bytes.NewReader(payload))
	if err != nil {
		fmt.Println("ERROR: do request:", err.Error())
		os.Exit(4)
	}
	defer resp.Body.Close()

	result := JSON{}
	json.NewDecoder(resp.Body).Decode(&result)
	return result, resp.StatusCode
}

func CreateCollection(base string) string {

	name := "contacts-" + strconv.FormatInt(time.Now().UnixNano(), 10)
	Post(base+"/v1/collections", JSON{"name": name})

	return name
}

func Contact(n int64) JSON {
	statuses := []string{"active", "lead", "inactive"}
	return JSON{
		"id":     strconv.FormatInt(n, 10),
		"name":   fmt.Sprintf("contact %07d", n),
		"status": statuses[n%int64(len(statuses))],
	}
}

// Preload streams n contacts into the collection in one request.
func Preload(base, collection string, n int64) {
	r, w := io.Pipe()
	go func() {
		e := json.NewEncoder(w)
		for i := int64(0); i < n; i++ {
			e.Encode(Contact(i))
		}
		w.Close()
	}()

	resp, err := client.Post(base+"/v1/collections/"+collection+":insert", "application/json", r)
	if err != nil {
		fmt.Println("ERROR: preload:", err.Error())
		os.Exit(3)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}

func CreateView(base, collection string) string {
	view, status := Post(base+"/v1/views", JSON{"view": JSON{
		"name":        "bench",
		"collection":  collection,
		"mode":        "paged",
		"multiSelect": true,
		"pageSize":    50,
		"columns": []JSON{
			{"key": "name", "label": "Name", "sortable": true},
			{"key": "status", "label": "Status", "sortable": true},
		},
	}})
	if status != http.StatusCreated {
		fmt.Println("ERROR: create view:", view)
		os.Exit(5)
	}
	return view["id"].(string)
}

func Report(name string, n int64, took time.Duration) {
	fmt.Println(name, "sent:", n)
	fmt.Println(name, "took:", took)
	fmt.Printf("%s throughput: %.2f ops/sec\n", name, float64(n)/took.Seconds())
}
