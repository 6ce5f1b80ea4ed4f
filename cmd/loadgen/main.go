package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

const (
	defaultBaseURL = "http://localhost:8080"
	totalRequests  = 50
)

type response struct {
	Success bool            `json:"success"`
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type client struct {
	base string
	http *http.Client
}

func (c *client) call(method, path string, body interface{}, headers map[string]string) (int, response, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return 0, response{}, err
		}
	}

	req, err := http.NewRequest(method, c.base+path, &buf)
	if err != nil {
		return 0, response{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return 0, response{}, err
	}
	defer res.Body.Close()

	var out response
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return res.StatusCode, response{}, fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return res.StatusCode, out, nil
}

func (c *client) must(method, path string, body interface{}, want int) response {
	code, resp, err := c.call(method, path, body, nil)
	if err != nil {
		log.Fatalf("%s %s: %v", method, path, err)
	}
	if code != want {
		log.Fatalf("%s %s: expected %d, got %d (%s %s)", method, path, want, code, resp.Code, resp.Message)
	}
	return resp
}

// burst fires totalRequests concurrent checkouts and counts outcome codes.
func (c *client) burst(key func(i int) string) (map[string]int, time.Duration) {
	var mu sync.Mutex
	counts := make(map[string]int)
	var transportErrors atomic.Int32
	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, resp, err := c.call(http.MethodPost, "/api/checkout", nil, map[string]string{"Idempotency-Key": key(i)})
			if err != nil {
				transportErrors.Add(1)
				return
			}
			mu.Lock()
			counts[resp.Code]++
			mu.Unlock()
		}(i)
	}

	wg.Wait()
	if n := transportErrors.Load(); n > 0 {
		counts["TRANSPORT_ERROR"] = int(n)
	}
	return counts, time.Since(start)
}

func main() {
	base := os.Getenv("LOADGEN_BASE_URL")
	if base == "" {
		base = defaultBaseURL
	}
	c := &client{base: base, http: &http.Client{Timeout: 10 * time.Second}}

	// Setup: fresh buyer with one item in the cart
	email := fmt.Sprintf("loadgen-%s@ecofinds.test", uuid.NewString()[:8])
	c.must(http.MethodPost, "/api/signup", map[string]string{"username": "Load Gen", "email": email, "password": "loadgen1"}, http.StatusCreated)

	product := c.must(http.MethodPost, "/api/products", map[string]interface{}{
		"title":      "Load Test Item",
		"price":      "1.00",
		"category":   "Hobbies",
		"image_urls": []string{"https://picsum.photos/seed/loadgen/600/400"},
		"quantity":   1,
	}, http.StatusCreated)
	var p struct {
		ID string `json:"id"`
	}
	json.Unmarshal(product.Data, &p)
	c.must(http.MethodPost, "/api/cart/"+p.ID, nil, http.StatusOK)

	// Round 1: one key, many callers
	sameKey := uuid.NewString()
	dupes, elapsed := c.burst(func(int) string { return sameKey })

	fmt.Println("========== CHECKOUT LOAD RESULTS ==========")
	fmt.Printf("Total Requests:    %d\n", totalRequests)
	fmt.Printf("Same key:          %v in %v\n", dupes, elapsed)

	// Round 2: distinct keys against the now empty cart
	empties, elapsed := c.burst(func(i int) string { return fmt.Sprintf("%s-%d", sameKey, i) })
	fmt.Printf("Distinct keys:     %v in %v\n", empties, elapsed)
	fmt.Println("============================================")

	if dupes["SUCCESS"] == 1 && dupes["DUPLICATE_REQUEST"] == totalRequests-1 {
		fmt.Println("PASS: exactly 1 checkout succeeded for a repeated key")
	} else {
		fmt.Printf("FAIL: expected 1 success and %d duplicates\n", totalRequests-1)
	}

	if empties["EMPTY_CART"] == totalRequests {
		fmt.Println("PASS: checkout cleared the cart")
	} else {
		fmt.Printf("FAIL: expected %d EMPTY_CART, got %v\n", totalRequests, empties)
	}
}
