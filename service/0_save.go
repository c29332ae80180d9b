package service

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/fulldump/apitest"
)

// Save writes a markdown example of the exchange into API_EXAMPLES_PATH,
// when set. Acceptance scenarios double as API documentation.
func Save(response *apitest.Response, title, description string) {

	examplesPath := os.Getenv("API_EXAMPLES_PATH")
	if examplesPath == "" {
		return
	}

	request := response.Request
	query := ""
	if request.URL.RawQuery != "" {
		query = "?" + request.URL.RawQuery
	}
	requestBody := formatJSON(response.BodyRequestString())

	md := &strings.Builder{}
	fmt.Fprintf(md, "# %s\n%s\n", title, cropTabs(description))

	md.WriteString("Curl example:\n\n```sh\ncurl ")
	if request.Method != "GET" {
		md.WriteString("-X " + request.Method + " ")
	}
	fmt.Fprintf(md, "\"https://example.com%s%s\"", request.URL.Path, query)
	for _, k := range sortedKeys(request.Header) {
		for _, v := range request.Header[k] {
			fmt.Fprintf(md, " \\\n-H \"%s: %s\"", k, v)
		}
	}
	if requestBody != "" {
		fmt.Fprintf(md, " \\\n-d '%s'", requestBody)
	}
	md.WriteString("\n```\n\n\nHTTP request/response example:\n\n```http\n")

	fmt.Fprintf(md, "%s %s%s %s\nHost: example.com\n", request.Method, request.URL.Path, query, request.Proto)
	for _, k := range sortedKeys(request.Header) {
		for _, v := range request.Header[k] {
			fmt.Fprintf(md, "%s: %s\n", k, v)
		}
	}
	fmt.Fprintf(md, "\n%s\n\n", requestBody)

	fmt.Fprintf(md, "%s %s\n", response.Proto, response.Status)
	for _, k := range sortedKeys(response.Header) {
		if k == "Date" {
			md.WriteString("Date: Mon, 15 Aug 2022 02:08:13 GMT\n")
			continue
		}
		for _, v := range response.Header[k] {
			fmt.Fprintf(md, "%s: %s\n", k, v)
		}
	}
	fmt.Fprintf(md, "\n%s\n```\n\n\n", formatJSON(response.BodyString()))

	filename := strings.ReplaceAll(strings.ToLower(title), " ", "_") + ".md"
	p := path.Join(examplesPath, path.Clean(filename))
	err := os.WriteFile(p, []byte(md.String()), 0666)
	if err != nil {
		fmt.Println("Saving err:", err)
	}
}

func sortedKeys(header map[string][]string) []string {
	keys := make([]string, 0, len(header))
	for k := range header {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func formatJSON(body string) string {

	var i interface{}
	err := json.Unmarshal([]byte(body), &i)
	if err != nil {
		return body
	}

	formatted, err := json.MarshalIndent(i, "", "    ")
	if err != nil {
		return body
	}

	return string(formatted)
}

// cropTabs removes the indentation shared by all the lines of d.
func cropTabs(d string) string {
	lines := strings.Split(d, "\n")

	shared := -1
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		tabs := len(line) - len(strings.TrimLeft(line, "\t"))
		if shared < 0 || tabs < shared {
			shared = tabs
		}
	}
	if shared <= 0 {
		return d
	}

	prefix := strings.Repeat("\t", shared)
	for i, line := range lines {
		lines[i] = strings.TrimPrefix(line, prefix)
	}

	return strings.Join(lines, "\n")
}
