// Package orchestrator coordinates the storefront synthesis pipeline:
// decoding assistant actions, running the branding and hydration stages,
// and assembling the final payload.
package orchestrator

import (
	"time"

	"github.com/ShayCichocki/topshelf/pkg/models"
)

// EventType represents the type of orchestrator event.
type EventType string

const (
	// EventMessage indicates a new transcript entry was appended.
	EventMessage EventType = "message"
	// EventStatusChanged indicates the pipeline status moved.
	EventStatusChanged EventType = "status_changed"
	// EventBrandUpdated indicates the brand context changed.
	EventBrandUpdated EventType = "brand_updated"
	// EventProductsLoaded indicates a catalog was parsed and attached.
	EventProductsLoaded EventType = "products_loaded"
	// EventBatchHydrated provides incremental hydration progress.
	EventBatchHydrated EventType = "batch_hydrated"
	// EventPayloadReady indicates the synthesis payload is assembled.
	EventPayloadReady EventType = "payload_ready"
	// EventDeployed indicates a deployment finished.
	EventDeployed EventType = "deployed"
	// EventError indicates a stage failed.
	EventError EventType = "error"
)

// Event is emitted by the orchestrator as the pipeline progresses. The
// TUI subscribes to these to update the view.
type Event struct {
	// Type is the kind of event.
	Type EventType
	// Message is the transcript entry, for message events.
	Message models.Message
	// Status is the new pipeline status, for status events.
	Status models.PipelineStatus
	// Brand is the merged brand context, for brand events.
	Brand models.BrandContext
	// BatchIndex and BatchTotal report hydration progress.
	BatchIndex int
	BatchTotal int
	// ProductCount is how many products are attached, for catalog events.
	ProductCount int
	// URL is the deployment URL, for deploy events.
	URL string
	// Error contains error details for failure events.
	Error error
	// Timestamp is when the event occurred.
	Timestamp time.Time
}
