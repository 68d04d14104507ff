// Package main provides a health check for container health checks
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"
)

const (
	exitCodeSuccess = 0
	exitCodeFailure = 1
	exitCodeError   = 2
)

// Config holds command-line configuration
type Config struct {
	URL           string
	Timeout       time.Duration
	AllowDegraded bool
	RetryCount    int
	RetryDelay    time.Duration
	Verbose       bool
}

type healthResponse struct {
	Status string `json:"status"`
	Checks []struct {
		Name    string `json:"name"`
		Status  string `json:"status"`
		Message string `json:"message"`
	} `json:"checks"`
}

func main() {
	os.Exit(run(parseFlags()))
}

func parseFlags() Config {
	cfg := Config{}

	flag.StringVar(&cfg.URL, "url", envOr("HEALTH_CHECK_URL", "http://localhost:8080/health"), "Health check endpoint URL")
	flag.DurationVar(&cfg.Timeout, "timeout", 5*time.Second, "Request timeout")
	flag.BoolVar(&cfg.AllowDegraded, "allow-degraded", true, "Treat degraded as passing")
	flag.IntVar(&cfg.RetryCount, "retry", 0, "Number of retries on failure")
	flag.DurationVar(&cfg.RetryDelay, "retry-delay", time.Second, "Delay between retries")
	flag.BoolVar(&cfg.Verbose, "verbose", false, "Print every check")
	flag.Parse()

	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func run(cfg Config) int {
	client := &http.Client{Timeout: cfg.Timeout}

	var lastErr error
	for attempt := 0; attempt <= cfg.RetryCount; attempt++ {
		if attempt > 0 {
			time.Sleep(cfg.RetryDelay)
		}

		resp, err := checkHealth(client, cfg.URL)
		if err != nil {
			lastErr = err
			continue
		}

		if cfg.Verbose {
			for _, c := range resp.Checks {
				fmt.Printf("%-10s %-10s %s\n", c.Name, c.Status, c.Message)
			}
		}
		fmt.Printf("status: %s\n", resp.Status)

		switch resp.Status {
		case "healthy":
			return exitCodeSuccess
		case "degraded":
			if cfg.AllowDegraded {
				return exitCodeSuccess
			}
		}
		return exitCodeFailure
	}

	fmt.Fprintf(os.Stderr, "health check failed after %d attempts: %v\n", cfg.RetryCount+1, lastErr)
	return exitCodeError
}

func checkHealth(client *http.Client, url string) (*healthResponse, error) {
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	res, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	var body healthResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode response (HTTP %d): %w", res.StatusCode, err)
	}
	return &body, nil
}
