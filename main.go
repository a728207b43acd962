package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

var (
	httpPort        = flag.Int("port", 8080, "HTTP port")
	shutdownTimeout = flag.Duration("shutdown_timeout", 10*time.Second, "HTTP server shutdown timeout")
	fps             = flag.Int("fps", 60, "Animation frames per second")
	step            = flag.Float64("step", DefaultStep, "Leg progress added per frame, in (0, 1]")
	publishInterval = flag.Duration("publish_interval", 100*time.Millisecond, "Snapshot broadcast interval")
	routesFile      = flag.String("routes_file", "", "YAML routes file (built-in routes when empty)")
	redisURL        = flag.String("redis_url", "", "Redis URL for the snapshot mirror (disabled when empty)")
	redisChannel    = flag.String("redis_channel", "logistics-hub:trucks", "Redis channel for snapshots")
	logFormat       = flag.String("log_format", "console", "Log format: console, json or ecs")
	logLevel        = flag.String("log_level", "info", "Log level")
	staticDir       = flag.String("static_dir", "./static", "Directory served at / (disabled when empty)")
)

func main() {
	// .env is optional; real environment variables win over it.
	_ = godotenv.Load()
	envDefaults()
	flag.Parse()

	logger, err := newLogger(*logFormat, *logLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := validateFlags(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	routes, err := LoadRoutes(*routesFile)
	if err != nil {
		logger.Fatal("failed to load routes", zap.String("file", *routesFile), zap.Error(err))
	}

	clock := NewFrameClock(*fps, logger.Named("frames"))
	sim, err := NewSimulation(routes, *step, clock, logger.Named("sim"))
	if err != nil {
		logger.Fatal("failed to build simulation", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var sinks []SnapshotSink
	mirror, err := newRedisSink(ctx, *redisURL, *redisChannel, time.Minute, logger)
	if err != nil {
		logger.Fatal("redis mirror", zap.Error(err))
	}
	if mirror != nil {
		defer mirror.Close()
		sinks = append(sinks, mirror)
	}

	hub := newHub(logger.Named("ws"))
	poll := newPoller(sim, hub, *publishInterval, logger.Named("poller"), sinks...)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", *httpPort),
		Handler:           newServer(sim, hub, poll, *staticDir, logger.Named("http")).routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("server starting", zap.String("url", fmt.Sprintf("http://localhost:%d/", *httpPort)))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	go clock.Run(ctx)
	sim.Start()
	go poll.run(ctx)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info("shutdown initiated")

	sim.Stop()
	cancel()
	hub.closeAll()

	sctx, scancel := context.WithTimeout(context.Background(), *shutdownTimeout)
	defer scancel()
	if err := srv.Shutdown(sctx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	} else {
		logger.Info("HTTP server shut down successfully")
	}
}

// envDefaults lets the environment (or .env) supply defaults for flags that
// are commonly set per deployment.
func envDefaults() {
	for env, name := range map[string]string{
		"REDIS_URL":   "redis_url",
		"ROUTES_FILE": "routes_file",
		"LOG_LEVEL":   "log_level",
		"LOG_FORMAT":  "log_format",
	} {
		if v := os.Getenv(env); v != "" {
			_ = flag.Set(name, v)
		}
	}
}

func validateFlags() error {
	if *fps <= 0 {
		return fmt.Errorf("fps must be positive, got %d", *fps)
	}
	if err := ValidateStep(*step); err != nil {
		return err
	}
	if *publishInterval <= 0 {
		return fmt.Errorf("publish_interval must be positive, got %s", *publishInterval)
	}
	return nil
}
