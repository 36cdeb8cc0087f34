// Package server wires the chi router and runs the HTTP server with
// graceful shutdown.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/tycoonteritory/AutoCut/internal/config"
	"github.com/tycoonteritory/AutoCut/internal/db"
	"github.com/tycoonteritory/AutoCut/internal/handler/health"
	jobhandler "github.com/tycoonteritory/AutoCut/internal/handler/job"
	uploadhandler "github.com/tycoonteritory/AutoCut/internal/handler/upload"
	"github.com/tycoonteritory/AutoCut/internal/janitor"
	"github.com/tycoonteritory/AutoCut/internal/logging"
	"github.com/tycoonteritory/AutoCut/internal/model"
	"github.com/tycoonteritory/AutoCut/internal/orchestrator"
	"github.com/tycoonteritory/AutoCut/internal/probe"
	"github.com/tycoonteritory/AutoCut/internal/realtime"
	"github.com/tycoonteritory/AutoCut/internal/svc"
	"github.com/tycoonteritory/AutoCut/internal/transcribe"
	"github.com/tycoonteritory/AutoCut/internal/upload"
)

// pipeline bundles the collaborators shared by the HTTP server and the
// headless worker: persistence, the bounded analysis pool, and the
// retention janitor.
type pipeline struct {
	svcCtx *svc.ServiceContext
	jan    *janitor.Janitor
}

func newPipeline(ctx context.Context, c config.Config) (*pipeline, error) {
	store, err := db.NewSQLite(c.Database.SQLitePath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	hubs := realtime.NewRegistry()
	admitter := upload.NewAdmitter(c.UploadRoot, c.MaxUploadBytes)

	var transcriber transcribe.Provider
	if c.TranscriptionHTTPURL != "" {
		transcriber = transcribe.NewHTTP(c.TranscriptionHTTPURL)
	} else if c.TranscriptionModelDir != "" {
		transcriber = transcribe.NewNative(c.TranscriptionModelDir)
	}

	orch := orchestrator.New(orchestrator.Deps{
		Store:       store,
		Hubs:        hubs,
		Prober:      &probe.Prober{ProbeBinary: c.ProbeBinary},
		Decoder:     &probe.Decoder{DecoderBinary: c.DecoderBinary},
		Transcriber: transcriber,
	}, c.MaxConcurrentAnalyses)

	if err := orch.RecoverInterrupted(ctx); err != nil {
		logging.Errorf("recover interrupted jobs: %v", err)
	}

	jan := janitor.New(store, time.Duration(c.Retention.JobTTLHours)*time.Hour, "")
	if err := jan.Start(); err != nil {
		store.Close()
		return nil, fmt.Errorf("start janitor: %w", err)
	}

	return &pipeline{svcCtx: svc.New(c, store, orch, hubs, admitter), jan: jan}, nil
}

func (p *pipeline) Close() {
	p.jan.Stop()
	p.svcCtx.Close()
}

// Run starts AutoCut's HTTP server and blocks until ctx is cancelled or an
// unrecoverable error occurs.
func Run(ctx context.Context, c config.Config) error {
	p, err := newPipeline(ctx, c)
	if err != nil {
		return err
	}
	defer p.Close()

	svcCtx := p.svcCtx
	r := newRouter(svcCtx)

	addr := fmt.Sprintf("%s:%d", c.Host, c.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute, // long enough for a full analysis download
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Infof("autocut listening on %s", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logging.Infof("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

// RunWorker runs the analysis pipeline and retention janitor with no HTTP
// front door, polling the store for uploaded jobs instead of receiving
// them directly from a handler. It lets ingestion (serve) and processing
// (worker) scale independently behind a shared database.
func RunWorker(ctx context.Context, c config.Config, pollInterval time.Duration) error {
	p, err := newPipeline(ctx, c)
	if err != nil {
		return err
	}
	defer p.Close()

	if pollInterval <= 0 {
		pollInterval = 2 * time.Second
	}
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	logging.Infof("autocut worker polling every %s", pollInterval)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := submitPending(ctx, p.svcCtx); err != nil {
				logging.Errorf("worker: poll for pending jobs: %v", err)
			}
		}
	}
}

// submitPending hands every job left in StatusUploaded to the orchestrator,
// skipping any already running in this process so a slower poll tick never
// double-submits one still in flight.
func submitPending(ctx context.Context, svcCtx *svc.ServiceContext) error {
	jobs, err := svcCtx.Store.Queries.ListJobsByStatus(ctx, model.StatusUploaded)
	if err != nil {
		return err
	}
	for _, j := range jobs {
		if svcCtx.Orchestrator.IsRunning(j.ID) {
			continue
		}
		svcCtx.Orchestrator.Submit(j)
	}
	return nil
}

func newRouter(svcCtx *svc.ServiceContext) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(10 * time.Minute))

	r.Get("/healthz", health.Handler(svcCtx))

	r.Route("/jobs", func(r chi.Router) {
		r.Post("/", uploadhandler.CreateJobHandler(svcCtx))
		r.Get("/", jobhandler.ListJobsHandler(svcCtx))
		r.Get("/{id}", jobhandler.GetJobHandler(svcCtx))
		r.Post("/{id}/cancel", jobhandler.CancelJobHandler(svcCtx))
		r.Get("/{id}/subscribe", jobhandler.SubscribeHandler(svcCtx))
		r.Get("/{id}/download/{artifact}", jobhandler.DownloadHandler(svcCtx))
	})

	return r
}
