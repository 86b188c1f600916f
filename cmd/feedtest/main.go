// Package main provides a stress testing tool for the live feed WebSocket.
//
// It registers one poster and a number of watchers, has every watcher follow the
// poster and open /ws, then publishes posts at a fixed rate and reports how many
// new_post events arrived and how long delivery took.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"sort"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
)

// Metrics tracks the test results
type Metrics struct {
	ConnectionsAttempted int64
	ConnectionsSuccess   int64
	ConnectionsFailed    int64
	PostsSent            int64
	EventsReceived       int64
	Errors               int64

	mu        sync.Mutex
	latencies []time.Duration
}

func (m *Metrics) observe(d time.Duration) {
	m.mu.Lock()
	m.latencies = append(m.latencies, d)
	m.mu.Unlock()
}

var metrics Metrics

const password = "feedtest-password"

func main() {
	host := flag.String("host", "localhost:8375", "API server host")
	clients := flag.Int("clients", 20, "Number of watching users")
	interval := flag.Duration("interval", time.Second, "Time between posts")
	duration := flag.Duration("duration", 30*time.Second, "Test duration")
	flag.Parse()

	log.Printf("🚀 Starting Live Feed Stress Test")
	log.Printf("Target: %s", *host)
	log.Printf("Clients: %d", *clients)
	log.Printf("Duration: %v", *duration)

	api := &apiClient{base: "http://" + *host, http: &http.Client{Timeout: 5 * time.Second}}
	run := time.Now().Unix()

	poster := fmt.Sprintf("feedtest_%d_poster", run)
	posterToken, err := api.signup(poster)
	if err != nil {
		log.Fatalf("❌ Poster signup failed: %v", err)
	}
	log.Printf("✅ Poster %s ready", poster)

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	var wg sync.WaitGroup
	stopChan := make(chan struct{})

	for i := 0; i < *clients; i++ {
		wg.Add(1)
		go runWatcher(api, *host, fmt.Sprintf("feedtest_%d_%d", run, i), poster, stopChan, &wg)
		time.Sleep(50 * time.Millisecond)
	}

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()
	deadline := time.After(*duration)

loop:
	for n := 1; ; n++ {
		select {
		case <-deadline:
			log.Println("⏱️  Test duration reached")
			break loop
		case <-interrupt:
			log.Println("🛑 Interrupted by user")
			break loop
		case <-ticker.C:
			if err := api.post(posterToken, fmt.Sprintf("stress post %d", n)); err != nil {
				atomic.AddInt64(&metrics.Errors, 1)
				continue
			}
			atomic.AddInt64(&metrics.PostsSent, 1)
		}
	}

	// Leave in-flight events time to arrive.
	time.Sleep(time.Second)
	close(stopChan)
	log.Println("Waiting for clients to disconnect...")
	wg.Wait()

	printMetrics(*clients)
}

type apiClient struct {
	base string
	http *http.Client
}

func (a *apiClient) do(method, path, token string, payload any, out any) error {
	var body bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&body).Encode(payload); err != nil {
			return err
		}
	}
	req, err := http.NewRequest(method, a.base+path, &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := a.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("%s %s failed with status %d", method, path, resp.StatusCode)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// signup registers username and returns a session token for it.
func (a *apiClient) signup(username string) (string, error) {
	err := a.do(http.MethodPost, "/register", "", map[string]string{
		"username":  username,
		"email":     username + "@feedtest.invalid",
		"password":  password,
		"password2": password,
	}, nil)
	if err != nil {
		return "", err
	}

	var result struct {
		Token string `json:"token"`
	}
	err = a.do(http.MethodPost, "/login", "", map[string]string{
		"username": username,
		"password": password,
	}, &result)
	return result.Token, err
}

func (a *apiClient) post(token, body string) error {
	return a.do(http.MethodPost, "/index", token, map[string]string{"post": body}, nil)
}

func runWatcher(api *apiClient, host, username, poster string, stopChan <-chan struct{}, wg *sync.WaitGroup) {
	defer wg.Done()
	atomic.AddInt64(&metrics.ConnectionsAttempted, 1)

	token, err := api.signup(username)
	if err == nil {
		err = api.do(http.MethodPost, "/follow/"+url.PathEscape(poster), token, nil, nil)
	}
	if err != nil {
		atomic.AddInt64(&metrics.ConnectionsFailed, 1)
		atomic.AddInt64(&metrics.Errors, 1)
		return
	}

	u := url.URL{Scheme: "ws", Host: host, Path: "/ws"}
	header := http.Header{"Authorization": {"Bearer " + token}}

	c, resp, err := websocket.DefaultDialer.Dial(u.String(), header)
	if err != nil {
		atomic.AddInt64(&metrics.ConnectionsFailed, 1)
		atomic.AddInt64(&metrics.Errors, 1)
		return
	}
	if resp != nil && resp.Body != nil {
		defer func() { _ = resp.Body.Close() }()
	}
	defer func() { _ = c.Close() }()

	atomic.AddInt64(&metrics.ConnectionsSuccess, 1)

	go func() {
		for {
			_, raw, err := c.ReadMessage()
			if err != nil {
				return
			}
			var event struct {
				Type    string `json:"type"`
				Payload struct {
					Timestamp time.Time `json:"timestamp"`
				} `json:"payload"`
			}
			if json.Unmarshal(raw, &event) != nil || event.Type != "new_post" {
				continue
			}
			atomic.AddInt64(&metrics.EventsReceived, 1)
			metrics.observe(time.Since(event.Payload.Timestamp))
		}
	}()

	<-stopChan
	_ = c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func printMetrics(clients int) {
	log.Println("==================================================")
	log.Println("📊 TEST RESULTS")
	log.Println("==================================================")
	log.Printf("Connections Attempted: %d", atomic.LoadInt64(&metrics.ConnectionsAttempted))
	log.Printf("Connections Success:   %d", atomic.LoadInt64(&metrics.ConnectionsSuccess))
	log.Printf("Connections Failed:    %d", atomic.LoadInt64(&metrics.ConnectionsFailed))
	log.Printf("Posts Sent:            %d", atomic.LoadInt64(&metrics.PostsSent))
	log.Printf("Events Received:       %d (expected %d)",
		atomic.LoadInt64(&metrics.EventsReceived),
		atomic.LoadInt64(&metrics.PostsSent)*atomic.LoadInt64(&metrics.ConnectionsSuccess))
	log.Printf("Total Errors:          %d", atomic.LoadInt64(&metrics.Errors))

	metrics.mu.Lock()
	defer metrics.mu.Unlock()
	if len(metrics.latencies) == 0 {
		return
	}
	sort.Slice(metrics.latencies, func(i, j int) bool { return metrics.latencies[i] < metrics.latencies[j] })
	pct := func(p float64) time.Duration {
		return metrics.latencies[int(p*float64(len(metrics.latencies)-1))]
	}
	log.Printf("Delivery p50: %v  p95: %v  max: %v  (%d watchers)",
		pct(0.50), pct(0.95), metrics.latencies[len(metrics.latencies)-1], clients)
}
