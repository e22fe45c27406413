package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/wingmate/wingmate/internal/seed"
	"github.com/wingmate/wingmate/pkg/logger"
)

// Default configuration constants.
const (
	defaultUsers      = 25
	defaultDays       = 14
	defaultTimeout    = 30 * time.Second
	defaultRunTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL = flag.String("url", "http://localhost:9090", "Base URL of the service")
		secret  = flag.String("secret", "", "HS256 secret matching the service auth_secret")
		users   = flag.Int("users", defaultUsers, "Number of users to onboard")
		days    = flag.Int("days", defaultDays, "Days of history to generate per user")
		workers = flag.Int("workers", runtime.NumCPU()*2, "Number of concurrent workers")
		timeout = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		verbose = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}

	if *secret == "" {
		os.Stderr.WriteString("missing -secret; it must match the service auth_secret\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	cfg := &seed.Config{
		BaseURL:    *baseURL,
		AuthSecret: *secret,
		Users:      *users,
		Days:       *days,
		Workers:    *workers,
		Timeout:    *timeout,
		Verbose:    *verbose,
	}

	if _, err := seed.Run(ctx, cfg); err != nil {
		os.Stderr.WriteString("seed run failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
