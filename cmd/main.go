package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dga_gateway/internal/adapters/dga"
	"dga_gateway/internal/adapters/objectstore"
	"dga_gateway/internal/adapters/tokencache"
	"dga_gateway/internal/config"
	"dga_gateway/internal/handlers"
	"dga_gateway/internal/metrics"
	"dga_gateway/internal/ports"
	"dga_gateway/internal/repository/citizens"
	"dga_gateway/internal/server"
	"dga_gateway/internal/services/export"
	"dga_gateway/internal/services/pipeline"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type store interface {
	ports.RecordStore
	EnsureSchema(ctx context.Context) error
}

func main() {
	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	setupCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cfg := config.Init(setupCtx)
	defer cfg.Close(context.Background())
	fmt.Println("✅ All connections successfully established!")

	if err := cfg.CheckConnections(setupCtx); err != nil {
		log.Fatalf("❌ Connection check failed: %v", err)
	}
	fmt.Println("🟢 All connections OK")

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	var st store
	switch cfg.StoreDriver {
	case config.StorePostgres:
		st = citizens.NewPostgresStore(cfg.Postgres)
	case config.StoreMemory:
		log.Printf("[MAIN][WARN] STORE_DRIVER=memory, records are lost on restart")
		st = citizens.NewMemoryStore()
	default:
		st = citizens.NewMongoStore(cfg.Mongo)
	}
	if err := st.EnsureSchema(setupCtx); err != nil {
		log.Fatalf("❌ Store schema: %v", err)
	}

	httpClient := dga.NewHTTPClient(cfg.DGA.Timeout)
	broker := dga.NewTokenClient(cfg.DGA, httpClient, m)

	deps := pipeline.Deps{
		Broker:   broker,
		Citizens: dga.NewCitizenClient(cfg.DGA, httpClient, m),
		Notifier: dga.NewNotifyClient(cfg.DGA, httpClient, m),
		Store:    st,
		Metrics:  m,
	}
	checks := map[string]handlers.Pinger{"store": st}

	if cfg.Redis != nil && cfg.TokenCacheTTL > 0 {
		deps.Cache = tokencache.NewRedisCache(cfg.Redis.Client, broker.AgentID(), cfg.TokenCacheTTL)
		checks["redis"] = cfg.Redis
		log.Printf("[MAIN] token cache enabled ttl=%s", cfg.TokenCacheTTL)
	}

	var exp *export.Service
	if cfg.ExportEnabled {
		exp = export.NewService(st, objectstore.NewS3Uploader(cfg.S3.Client, cfg.S3.Bucket))
		checks["s3"] = cfg.S3
		log.Printf("[MAIN] export enabled bucket=%q", cfg.S3.Bucket)
	}

	h := handlers.New(pipeline.NewService(deps), exp, cfg.DGA.ConsumerKey, checks)
	srv := server.NewServer(server.Options{
		Port:         cfg.Port,
		APIPrefix:    cfg.APIPrefix,
		AdminKeyHash: cfg.AdminKeyHash,
		Metrics:      promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	}, h)

	log.Printf("[MAIN] listening on :%s prefix=%q store=%s contract=%s", cfg.Port, cfg.APIPrefix, cfg.StoreDriver, cfg.DGA.Contract.Version)
	if err := srv.Run(runCtx); err != nil {
		log.Fatal(err)
	}
}
