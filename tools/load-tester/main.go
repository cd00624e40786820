package main

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"math/rand"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	flag "github.com/spf13/pflag"
	"golang.org/x/time/rate"
)

var eventTypes = []string{"Session.Start", "File.Edit", "Compile", "Run.Program", "Session.End"}

// editEvent builds a payload shaped like the ones the editor plugin sends.
func editEvent(subjectID string, workerID int) ([]byte, error) {
	metadata, err := json.Marshal(map[string]any{
		"worker":    workerID,
		"sessionId": subjectID,
	})
	if err != nil {
		return nil, err
	}
	return json.Marshal(map[string]string{
		"EventType":        eventTypes[rand.Intn(len(eventTypes))],
		"EventID":          uuid.NewString(),
		"SubjectID":        subjectID,
		"AssignmentID":     "load-test",
		"InsertText":       "for i in range(10):\n    print(\"i, \", i)",
		"SourceLocation":   "42",
		"ClientTimestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		"CodeStateSection": "main.py",
		"EditType":         "Insert",
		"X-Compilable":     "true",
		// The plugin sends metadata as a JSON-encoded string.
		"X-Metadata": string(metadata),
	})
}

func main() {
	targetURL := flag.String("url", "http://localhost:5000/log", "Target URL for ingestion")
	apiKey := flag.String("api-key", "supersecretkey", "API key sent as a bearer token")
	concurrency := flag.IntP("concurrency", "c", 10, "Number of concurrent workers")
	duration := flag.DurationP("duration", "d", 30*time.Second, "Duration of the load test")
	rps := flag.Int("rps", 1000, "Requests per second limit")
	flag.Parse()

	log.Printf("Starting load test on %s", *targetURL)
	log.Printf("Concurrency: %d, Duration: %s, RPS: %d", *concurrency, *duration, *rps)

	var wg sync.WaitGroup
	var successCount, errorCount atomic.Int64
	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	limiter := rate.NewLimiter(rate.Limit(*rps), 100) // Allow bursts up to 100

	for i := 0; i < *concurrency; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			client := &http.Client{
				Timeout: 5 * time.Second,
			}
			subjectID := uuid.NewString()

			for {
				if err := limiter.Wait(ctx); err != nil {
					return
				}

				payload, err := editEvent(subjectID, workerID)
				if err != nil {
					errorCount.Add(1)
					continue
				}

				req, err := http.NewRequestWithContext(ctx, http.MethodPost, *targetURL, bytes.NewReader(payload))
				if err != nil {
					continue
				}
				req.Header.Set("Content-Type", "application/json")
				req.Header.Set("Authorization", "Bearer "+*apiKey)

				resp, err := client.Do(req)
				if err != nil {
					if ctx.Err() != nil {
						return
					}
					errorCount.Add(1)
					continue
				}

				if resp.StatusCode == http.StatusOK {
					successCount.Add(1)
				} else {
					errorCount.Add(1)
				}
				resp.Body.Close()
			}
		}(i)
	}

	wg.Wait()

	totalRequests := successCount.Load() + errorCount.Load()
	actualRPS := float64(totalRequests) / duration.Seconds()

	log.Println("Load test finished.")
	log.Printf("Total Requests: %d", totalRequests)
	log.Printf("Successful (200 Logged): %d", successCount.Load())
	log.Printf("Errors: %d", errorCount.Load())
	log.Printf("Actual RPS: %.2f", actualRPS)
}
