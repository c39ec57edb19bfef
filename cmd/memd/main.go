package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"memd/internal/cache"
	"memd/internal/common/fsutil"
	"memd/internal/config"
	"memd/internal/httpapi"
	"memd/internal/registry"
	"memd/internal/resource"
	"memd/pkg/types"
)

func main() {
	// Flags with environment variable defaults
	defaultAddr := ":8080"
	if v := os.Getenv("MEMD_ADDR"); v != "" {
		defaultAddr = v
	}
	addr := flag.String("addr", defaultAddr, "HTTP listen address, e.g. :8080")
	cfgPath := flag.String("config", "", "Optional config file (.yaml/.json/.toml); explicit flags override it")
	maxMemoryMB := flag.Int("max-memory-mb", 1024, "Memory ceiling in MB for all reservations")
	cacheMaxMB := flag.Int("cache-mb", 256, "Smart cache capacity in MB")
	gcThreshold := flag.Float64("gc-threshold", 0, "Admission threshold as a fraction of the ceiling (0=default 0.85)")
	emergencyThreshold := flag.Float64("emergency-threshold", 0, "Emergency cleanup threshold (0=default 0.95)")
	componentsFile := flag.String("components", "", "Component manifest to pre-allocate at startup")
	statePath := flag.String("state", "", "Path for persisting allocation metadata across restarts")
	optimizeInterval := flag.Int("optimize-interval-s", 30, "Seconds between predictive optimization ticks (0=off)")
	corsOrigins := flag.String("cors-origins", "", "Comma-separated allowed CORS origins (empty disables CORS)")
	flag.Parse()

	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if *cfgPath != "" {
		fileCfg, err := config.Load(*cfgPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
		if !set["addr"] && fileCfg.Addr != "" {
			*addr = fileCfg.Addr
		}
		if !set["max-memory-mb"] && fileCfg.MaxMemoryMB > 0 {
			*maxMemoryMB = fileCfg.MaxMemoryMB
		}
		if !set["cache-mb"] && fileCfg.CacheMaxMB > 0 {
			*cacheMaxMB = fileCfg.CacheMaxMB
		}
		if !set["gc-threshold"] && fileCfg.GCThreshold > 0 {
			*gcThreshold = fileCfg.GCThreshold
		}
		if !set["emergency-threshold"] && fileCfg.EmergencyThreshold > 0 {
			*emergencyThreshold = fileCfg.EmergencyThreshold
		}
		if !set["components"] && fileCfg.ComponentsFile != "" {
			*componentsFile = fileCfg.ComponentsFile
		}
		if !set["state"] && fileCfg.StatePath != "" {
			*statePath = fileCfg.StatePath
		}
		if !set["optimize-interval-s"] && fileCfg.OptimizeIntervalS > 0 {
			*optimizeInterval = fileCfg.OptimizeIntervalS
		}
	}

	zl := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	httpapi.SetLogger(zl)
	if *corsOrigins != "" {
		httpapi.SetCORSOptions(true, splitCSV(*corsOrigins), []string{"GET", "POST", "PUT"}, nil)
	}

	components, err := loadComponents(*componentsFile)
	if err != nil {
		log.Fatalf("failed to load component manifest: %v", err)
	}

	state, err := fsutil.ExpandHome(*statePath)
	if err != nil {
		log.Fatalf("failed to resolve state path: %v", err)
	}

	mgr := resource.NewWithConfig(resource.ManagerConfig{
		MaxMemoryBytes:     int64(*maxMemoryMB) << 20,
		GCThreshold:        *gcThreshold,
		EmergencyThreshold: *emergencyThreshold,
		Cache:              cache.New(cache.Config{MaxSizeBytes: int64(*cacheMaxMB) << 20}),
		Components:         components,
		StatePath:          state,
	})
	if err := mgr.RestoreState(); err != nil {
		log.Printf("state restore failed, starting empty: %v", err)
	}
	for _, c := range components {
		if err := mgr.Allocate(c.ID, c.ReserveBytes, c.Priority); err != nil {
			log.Printf("manifest pre-allocation failed component=%q: %v", c.ID, err)
		}
	}

	mux := httpapi.NewMux(mgr)
	srv := &http.Server{Addr: *addr, Handler: mux}

	go func() {
		log.Printf("memd listening on %s (ceiling: %dMB, cache: %dMB)", *addr, *maxMemoryMB, *cacheMaxMB)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// The composition root owns the optimization timer; the manager only
	// exposes the hook.
	tickerDone := make(chan struct{})
	if *optimizeInterval > 0 {
		ticker := time.NewTicker(time.Duration(*optimizeInterval) * time.Second)
		go func() {
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					mgr.PredictiveOptimization()
				case <-tickerDone:
					return
				}
			}
		}()
	}

	// Graceful shutdown (Ctrl+C / SIGTERM)
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	close(tickerDone)
	if err := mgr.SaveState(); err != nil {
		log.Printf("state save error: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("graceful shutdown error: %v", err)
	}
}

func loadComponents(path string) ([]types.Component, error) {
	if path == "" {
		return nil, nil
	}
	return registry.LoadFile(path)
}
