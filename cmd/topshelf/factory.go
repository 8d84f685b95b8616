package main

import (
	"context"
	"fmt"
	"log"

	"github.com/ShayCichocki/topshelf/internal/api"
	"github.com/ShayCichocki/topshelf/internal/config"
	"github.com/ShayCichocki/topshelf/internal/crawl"
	"github.com/ShayCichocki/topshelf/internal/deploy"
	"github.com/ShayCichocki/topshelf/internal/hydrate"
	"github.com/ShayCichocki/topshelf/internal/imagegen"
	"github.com/ShayCichocki/topshelf/internal/orchestrator"
	"github.com/ShayCichocki/topshelf/internal/session"
	"github.com/ShayCichocki/topshelf/internal/state"
)

// buildOrchestrator wires the full stack from configuration: the
// assistant client, the image generation batcher, the deployer, and
// (optionally) the persisted session store. outDir overrides the
// configured output directory when non-empty.
func buildOrchestrator(resume, persist bool, outDir string) (*orchestrator.Orchestrator, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	anthropicKey, err := cfg.APIKey(config.ServiceAnthropic)
	if err != nil {
		return nil, nil, err
	}
	client, err := api.NewClient(cfg.Anthropic, anthropicKey)
	if err != nil {
		return nil, nil, fmt.Errorf("creating assistant client: %w", err)
	}

	// Image generation degrades to placeholders when unconfigured, so a
	// missing key is not fatal here.
	var gen imagegen.Generator
	if wavespeedKey, err := cfg.APIKey(config.ServiceWavespeed); err == nil {
		gen = imagegen.NewClient(wavespeedKey, cfg.Wavespeed.BaseURL, cfg.Hydration.RequestTimeout)
	} else {
		log.Printf("[topshelf] %v; generated stores will use placeholder images", err)
		gen = unconfiguredGenerator{}
	}

	batcher := hydrate.NewBatcher(gen,
		hydrate.WithBatchSize(cfg.Hydration.BatchSize),
		hydrate.WithBatchDelay(cfg.Hydration.BatchDelay),
	)

	// The deploy client validates its own key on Deploy, so a missing
	// key only fails the deploy step, not startup.
	zeaburKey, _ := cfg.APIKey(config.ServiceZeabur)
	deployer := deploy.NewClient(zeaburKey)

	var extractor crawl.Extractor
	if firecrawlKey, err := cfg.APIKey(config.ServiceFirecrawl); err == nil {
		extractor = crawl.NewClient(firecrawlKey, cfg.Firecrawl.BaseURL, cfg.Hydration.RequestTimeout)
	}

	var db *state.DB
	cleanup := func() {}
	if persist {
		db = openStore()
		if db != nil {
			cleanup = func() { db.Close() }
		}
	}

	sess, err := loadSession(db, resume)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	opts := []orchestrator.Option{
		orchestrator.WithTokenTracker(client.Tracker()),
	}
	if db != nil {
		opts = append(opts, orchestrator.WithStore(db))
	}
	if extractor != nil {
		opts = append(opts, orchestrator.WithExtractor(extractor))
	}
	if outDir == "" {
		outDir = cfg.Output.Dir
	}
	if outDir != "" {
		opts = append(opts, orchestrator.WithOutputDir(outDir))
	}
	orch := orchestrator.New(sess, client, client, batcher, deployer, opts...)

	return orch, func() {
		orch.Close()
		cleanup()
	}, nil
}

// openStore opens and migrates the session database. Persistence is a
// convenience, not a requirement: on any failure the chat degrades to
// in-memory-only operation and returns nil.
func openStore() *state.DB {
	db, err := state.OpenDefault()
	if err != nil {
		log.Printf("[topshelf] session persistence unavailable: %v", err)
		return nil
	}
	if err := db.Migrate(); err != nil {
		log.Printf("[topshelf] session persistence unavailable: %v", err)
		db.Close()
		return nil
	}
	return db
}

// unconfiguredGenerator stands in when no image service key is set.
// Every product falls through to the placeholder fallback.
type unconfiguredGenerator struct{}

func (unconfiguredGenerator) Generate(_ context.Context, _ string) (string, error) {
	return "", config.ErrNotConfigured
}

// loadSession restores the latest persisted session when resuming, or
// starts a fresh one.
func loadSession(db *state.DB, resume bool) (*session.Session, error) {
	if !resume || db == nil {
		return session.New(), nil
	}

	rec, err := db.LatestSession()
	if err != nil {
		return nil, fmt.Errorf("loading previous session: %w", err)
	}
	if rec == nil {
		log.Printf("[topshelf] no previous session found, starting fresh")
		return session.New(), nil
	}

	transcript, err := db.GetTranscript(rec.ID)
	if err != nil {
		return nil, fmt.Errorf("loading transcript for session %s: %w", rec.ID, err)
	}

	return session.Restore(rec.ID, rec.Brand, rec.Products, rec.Status, rec.CSVPath, transcript), nil
}
