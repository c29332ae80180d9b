package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync/atomic"
	"time"
)

func TestInsert(c Config) {

	collection := CreateCollection(c.Base)

	items := c.N

	t0 := time.Now()
	Parallel(c.Workers, func() {

		r, w := io.Pipe()

		wb := bufio.NewWriterSize(w, 1*1024*1024)

		go func() {
			e := json.NewEncoder(wb)
			for {
				n := atomic.AddInt64(&items, -1)
				if n < 0 {
					break
				}
				e.Encode(Contact(n))
			}
			wb.Flush()
			w.Close()
		}()

		req, err := http.NewRequest("POST", c.Base+"/v1/collections/"+collection+":insert", r)
		if err != nil {
			fmt.Println("ERROR: new request:", err.Error())
			os.Exit(3)
		}

		resp, err := client.Do(req)
		if err != nil {
			fmt.Println("ERROR: do request:", err.Error())
			os.Exit(4)
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	})

	Report("insert", c.N, time.Since(t0))
}
