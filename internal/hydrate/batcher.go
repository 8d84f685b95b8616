// Package hydrate resolves missing or placeholder product images through
// the image generation service, in rate-limited batches.
package hydrate

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/ShayCichocki/topshelf/internal/imagegen"
	"github.com/ShayCichocki/topshelf/pkg/models"
)

const (
	// DefaultBatchSize is how many products are hydrated concurrently.
	DefaultBatchSize = 5
	// DefaultBatchDelay is the pause between batches, respecting the
	// image service's rate limit.
	DefaultBatchDelay = 10 * time.Second
)

// BatchEvent reports one completed batch. Products holds copies of the
// batch's records after hydration; Offset is their position in the full
// list.
type BatchEvent struct {
	// Index is the 0-based batch number.
	Index int
	// Total is the total number of batches in this run.
	Total int
	// Offset is the position of the batch's first product in the input.
	Offset int
	// Products are the batch's records after hydration.
	Products []models.Product
	// Requested is how many products in this batch needed enrichment.
	Requested int
	// Failed is how many enrichment requests failed. Failures leave the
	// product's existing image untouched.
	Failed int
}

// Batcher partitions a product list into fixed-size batches and resolves
// images concurrently within each batch, sequentially across batches.
type Batcher struct {
	gen       imagegen.Generator
	batchSize int
	delay     time.Duration

	// sleep is swappable so tests don't wait out real inter-batch delays.
	sleep func(ctx context.Context, d time.Duration) error
}

// Option configures a Batcher.
type Option func(*Batcher)

// WithBatchSize overrides the number of concurrent requests per batch.
func WithBatchSize(n int) Option {
	return func(b *Batcher) {
		if n > 0 {
			b.batchSize = n
		}
	}
}

// WithBatchDelay overrides the inter-batch delay.
func WithBatchDelay(d time.Duration) Option {
	return func(b *Batcher) {
		if d >= 0 {
			b.delay = d
		}
	}
}

// WithSleeper substitutes the inter-batch sleep function (for tests).
func WithSleeper(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(b *Batcher) {
		b.sleep = sleep
	}
}

// NewBatcher creates a Batcher backed by the given image generator.
func NewBatcher(gen imagegen.Generator, opts ...Option) *Batcher {
	b := &Batcher{
		gen:       gen,
		batchSize: DefaultBatchSize,
		delay:     DefaultBatchDelay,
		sleep:     sleepContext,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Run hydrates the product list. The output has the same length and order
// as the input; only the image field of products needing enrichment may
// change, and a failed request leaves that product's image untouched.
// onBatch, if non-nil, is invoked after each batch completes, giving the
// caller incremental visibility.
//
// Cancellation is honored between batches and passed to each in-flight
// request; on cancellation Run returns the list hydrated so far along
// with the context error.
func (b *Batcher) Run(ctx context.Context, products []models.Product, onBatch func(BatchEvent)) ([]models.Product, error) {
	out := make([]models.Product, len(products))
	copy(out, products)

	if len(out) == 0 {
		return out, nil
	}

	total := (len(out) + b.batchSize - 1) / b.batchSize

	for batchIdx := 0; batchIdx < total; batchIdx++ {
		if err := ctx.Err(); err != nil {
			return out, err
		}

		start := batchIdx * b.batchSize
		end := start + b.batchSize
		if end > len(out) {
			end = len(out)
		}

		requested, failed := b.runBatch(ctx, out[start:end], start)

		if onBatch != nil {
			batch := make([]models.Product, end-start)
			copy(batch, out[start:end])
			onBatch(BatchEvent{
				Index:     batchIdx,
				Total:     total,
				Offset:    start,
				Products:  batch,
				Requested: requested,
				Failed:    failed,
			})
		}

		// Rate-limit gap between batches, but never after the last one.
		if batchIdx < total-1 {
			if err := b.sleep(ctx, b.delay); err != nil {
				return out, err
			}
		}
	}

	return out, nil
}

// runBatch issues one concurrent request per product needing enrichment
// and writes successes back in place. Each goroutine owns a distinct
// index, so no locking is needed around the slice.
func (b *Batcher) runBatch(ctx context.Context, batch []models.Product, offset int) (requested, failed int) {
	var wg sync.WaitGroup
	var failures sync.Map

	for i := range batch {
		if !NeedsImage(batch[i].Image) {
			continue
		}
		requested++

		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			url, err := b.gen.Generate(ctx, batch[i].Name)
			if err != nil {
				// Graceful degradation: keep whatever image the product
				// already had and let the batch finish.
				log.Printf("[hydrate] image for %q (position %d) failed: %v", batch[i].Name, offset+i, err)
				failures.Store(i, struct{}{})
				return
			}
			batch[i].Image = url
		}(i)
	}

	wg.Wait()

	failures.Range(func(_, _ interface{}) bool {
		failed++
		return true
	})
	return requested, failed
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
