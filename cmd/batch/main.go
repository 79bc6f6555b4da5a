// Command batch replays the storage webhook for a fixed list of documents,
// one call at a time with a delay between calls. It is a driver for bulk
// re-ingestion and smoke testing, not part of the pipeline itself.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"
)

type docRef struct {
	ID       string `json:"id"`
	FilePath string `json:"file_path"`
}

func main() {
	var (
		file    = flag.String("file", "docs.json", "JSON file with an array of {id, file_path} pairs")
		url     = flag.String("url", "http://127.0.0.1:8080/process", "webhook endpoint")
		delay   = flag.Duration("delay", 2*time.Second, "pause between calls")
		timeout = flag.Duration("timeout", 10*time.Minute, "per-call timeout")
	)
	flag.Parse()

	raw, err := os.ReadFile(*file)
	if err != nil {
		log.Fatalf("read %s: %v", *file, err)
	}

	var docs []docRef
	if err := json.Unmarshal(raw, &docs); err != nil {
		log.Fatalf("parse %s: %v", *file, err)
	}

	client := &http.Client{Timeout: *timeout}
	log.Printf("processing %d documents via %s", len(docs), *url)

	failed := 0
	for n, doc := range docs {
		log.Printf("[%d/%d] %s (%s)", n+1, len(docs), doc.ID, doc.FilePath)

		if err := processOne(client, *url, doc); err != nil {
			log.Printf("FAILED: %v", err)
			failed++
		}

		if n < len(docs)-1 {
			time.Sleep(*delay)
		}
	}

	if failed > 0 {
		log.Fatalf("done with %d failures", failed)
	}
	log.Println("done")
}

func processOne(client *http.Client, url string, doc docRef) error {
	payload := map[string]docRef{"record": doc}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	resp, err := client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%d: %s", resp.StatusCode, respBody)
	}

	log.Printf("SUCCESS: %s", respBody)
	return nil
}
