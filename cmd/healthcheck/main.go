// Package main provides a standalone health probe for container health checks
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/planifia/planner/internal/infrastructure/config"
	"github.com/planifia/planner/pkg/logger"
)

const (
	exitCodeSuccess = 0
	exitCodeFailure = 1
	exitCodeError   = 2
)

// Config holds command-line configuration
type Config struct {
	URL        string
	ConfigPath string
	Timeout    time.Duration
	Verbose    bool
	RetryCount int
	RetryDelay time.Duration
}

// healthResponse mirrors the body served on /health
type healthResponse struct {
	Status  string            `json:"status"`
	Service string            `json:"service"`
	Version string            `json:"version"`
	Checks  map[string]string `json:"checks"`
}

func main() {
	os.Exit(start(parseFlags()))
}

// start builds the logger, resolves the URL and runs the probe
func start(config Config) int {
	level := "warn"
	if config.Verbose {
		level = "debug"
	}
	log, err := logger.New(logger.Config{Level: level, Format: "console", OutputPaths: []string{"stderr"}})
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		return exitCodeError
	}
	defer func() { _ = log.Sync() }()

	if config.URL == "" {
		config.URL, err = detectHealthURL(config.ConfigPath)
		if err != nil {
			log.Error("Failed to load configuration", zap.Error(err))
			return exitCodeError
		}
	}

	return run(config, log)
}

func parseFlags() Config {
	config := Config{}

	flag.StringVar(&config.URL, "url", "", "Health endpoint URL (defaults to $HEALTH_CHECK_URL, then the configured server port and path)")
	flag.StringVar(&config.ConfigPath, "config", "", "Configuration file path")
	flag.DurationVar(&config.Timeout, "timeout", 5*time.Second, "Request timeout")
	flag.BoolVar(&config.Verbose, "verbose", false, "Print every check")
	flag.IntVar(&config.RetryCount, "retry", 0, "Number of retries on failure")
	flag.DurationVar(&config.RetryDelay, "retry-delay", time.Second, "Delay between retries")
	flag.Parse()

	if config.URL == "" {
		config.URL = os.Getenv("HEALTH_CHECK_URL")
	}
	return config
}

// detectHealthURL builds the local health URL from the service configuration
func detectHealthURL(configPath string) (string, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return "", err
	}
	return healthURL(cfg), nil
}

func healthURL(cfg *config.Config) string {
	host := cfg.Server.Host
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	path := cfg.Monitoring.HealthCheckPath
	if path == "" {
		path = "/health"
	}
	return "http://" + net.JoinHostPort(host, strconv.Itoa(cfg.Server.Port)) + path
}

func run(config Config, log *zap.Logger) int {
	client := &http.Client{Timeout: config.Timeout}
	log = log.With(zap.String("url", config.URL))

	var lastErr error
	for attempt := 0; attempt <= config.RetryCount; attempt++ {
		if attempt > 0 {
			time.Sleep(config.RetryDelay)
		}

		resp, err := probe(context.Background(), client, config.URL)
		if err != nil {
			lastErr = err
			log.Debug("Health probe attempt failed", zap.Int("attempt", attempt+1), zap.Error(err))
			continue
		}

		fmt.Printf("Status: %s (%s %s)\n", resp.Status, resp.Service, resp.Version)
		if config.Verbose {
			for name, result := range resp.Checks {
				fmt.Printf("  %s: %s\n", name, result)
			}
		}
		if resp.Status != "healthy" {
			return exitCodeFailure
		}
		return exitCodeSuccess
	}

	log.Error("Health check failed", zap.Int("attempts", config.RetryCount+1), zap.Error(lastErr))
	return exitCodeError
}

// probe fetches and decodes the health body. A 503 still carries a body and
// is reported through its status field.
func probe(ctx context.Context, client *http.Client, url string) (*healthResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusServiceUnavailable {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var body healthResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &body, nil
}
