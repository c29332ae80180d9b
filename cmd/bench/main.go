package main

import (
	"fmt"
	"log"
	"strings"

	"github.com/fulldump/goconfig"
)

type Config struct {
	Test    string `usage:"name of the test: ALL | INSERT | VIEW | PATCH"`
	Base    string `usage:"base URL, a temporary server is started when empty"`
	N       int64  `usage:"number of contacts"`
	Ops     int64  `usage:"number of view actions or patches"`
	Workers int    `usage:"number of workers"`
}

var cleanups []func()

func main() {

	defer func() {
		fmt.Println("Cleaning up...")
		for _, cleanup := range cleanups {
			cleanup()
		}
	}()

	c := Config{
		Test:    "view",
		Base:    "",
		N:       100_000,
		Ops:     10_000,
		Workers: 16,
	}
	goconfig.Read(&c)

	if c.Base == "" {
		start, stop := CreateServer(&c)
		defer stop()
		go start()
		WaitReady(c.Base)
	}

	switch strings.ToUpper(c.Test) {
	case "ALL":
		TestInsert(c)
		TestView(c)
		TestPatch(c)
	case "INSERT":
		TestInsert(c)
	case "VIEW":
		TestView(c)
	case "PATCH":
		TestPatch(c)
	default:
		log.Fatalf("Unknown test %s", c.Test)
	}

}
