package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/ShayCichocki/topshelf/internal/api"
	"github.com/ShayCichocki/topshelf/internal/catalog"
	"github.com/ShayCichocki/topshelf/internal/crawl"
	"github.com/ShayCichocki/topshelf/internal/deploy"
	"github.com/ShayCichocki/topshelf/internal/hydrate"
	"github.com/ShayCichocki/topshelf/internal/session"
	"github.com/ShayCichocki/topshelf/internal/state"
	"github.com/ShayCichocki/topshelf/pkg/models"
)

// ErrLaunchInProgress is returned when a launch is requested while a
// previous run is still executing.
var ErrLaunchInProgress = errors.New("a storefront launch is already in progress")

// ErrNoPayload is returned when a deploy is requested before any launch
// has produced a payload.
var ErrNoPayload = errors.New("no storefront payload yet; launch the store first")

// ErrNoExtractor is returned when site import is requested without a
// configured extraction service.
var ErrNoExtractor = errors.New("site import is not configured")

// Orchestrator ties the assistant brain, the synthesis pipeline, and the
// session state together. The TUI (or a one-shot command) feeds it user
// turns; it emits events as work progresses.
type Orchestrator struct {
	sess      *session.Session
	brain     api.AssistantBrain
	synth     api.BrandingSynthesizer
	batcher   *hydrate.Batcher
	deployer  deploy.Deployer
	extractor crawl.Extractor
	emitter   *EventEmitter
	store     *state.DB
	usage     *api.TokenTracker
	outDir    string

	// seed feeds the stock randomizer; swappable for reproducible tests.
	seed func() int64

	running atomic.Bool
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithStore enables session persistence.
func WithStore(db *state.DB) Option {
	return func(o *Orchestrator) { o.store = db }
}

// WithExtractor enables importing brand inspiration from an existing
// website.
func WithExtractor(ex crawl.Extractor) Option {
	return func(o *Orchestrator) { o.extractor = ex }
}

// WithOutputDir makes every successful launch write the payload's files
// under dir.
func WithOutputDir(dir string) Option {
	return func(o *Orchestrator) { o.outDir = dir }
}

// WithTokenTracker attaches the assistant client's usage counters so
// callers can report token consumption after a run.
func WithTokenTracker(t *api.TokenTracker) Option {
	return func(o *Orchestrator) { o.usage = t }
}

// WithSeedSource substitutes the stock randomizer seed (for tests).
func WithSeedSource(seed func() int64) Option {
	return func(o *Orchestrator) { o.seed = seed }
}

// WithEmitterBuffer overrides the event channel capacity.
func WithEmitterBuffer(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.emitter = NewEventEmitter(n)
		}
	}
}

// New creates an Orchestrator around an existing session.
func New(sess *session.Session, brain api.AssistantBrain, synth api.BrandingSynthesizer, batcher *hydrate.Batcher, deployer deploy.Deployer, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		sess:     sess,
		brain:    brain,
		synth:    synth,
		batcher:  batcher,
		deployer: deployer,
		emitter:  NewEventEmitter(64),
		seed:     func() int64 { return time.Now().UnixNano() },
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Session returns the underlying session.
func (o *Orchestrator) Session() *session.Session {
	return o.sess
}

// Usage returns the attached token tracker, or nil when none was wired.
func (o *Orchestrator) Usage() *api.TokenTracker {
	return o.usage
}

// Events returns the subscriber channel.
func (o *Orchestrator) Events() <-chan Event {
	return o.emitter.Events()
}

// Close shuts down the event channel.
func (o *Orchestrator) Close() {
	o.emitter.Close()
}

// HandleUserMessage records one user turn, asks the brain for actions,
// and dispatches them in order. A brain failure is surfaced in the
// transcript rather than returned, so the conversation can continue.
func (o *Orchestrator) HandleUserMessage(ctx context.Context, text string) error {
	// Capture the history before appending the turn; the brain receives
	// the message separately.
	history := o.sess.Transcript()
	o.appendMessage(models.RoleUser, text, models.MessageText, "")

	snap := o.sess.Snapshot()
	actions, err := o.brain.Decide(ctx, api.DecideRequest{
		Message:  text,
		History:  history,
		Brand:    snap.Brand,
		Products: snap.Products,
	})
	if err != nil {
		log.Printf("[orchestrator] assistant call failed: %v", err)
		o.appendMessage(models.RoleAssistant, "I hit a snag reaching my reasoning engine. Please try again.", models.MessageStatus, "")
		o.emitter.Emit(Event{Type: EventError, Error: err})
		return err
	}

	o.Dispatch(ctx, actions)
	return nil
}

// Dispatch executes a decoded action list in order. Branding updates take
// effect before any launch later in the same list, so "make it pink and
// launch" builds a pink store.
func (o *Orchestrator) Dispatch(ctx context.Context, actions []models.Action) {
	for _, action := range actions {
		switch action.Type {
		case models.ActionSetBranding:
			brand := o.sess.ApplyBranding(action.BrandingPayload())
			o.emitter.Emit(Event{Type: EventBrandUpdated, Brand: brand})
			o.persist()

		case models.ActionChat:
			if text := action.ChatPayload(); text != "" {
				o.appendMessage(models.RoleAssistant, text, models.MessageText, "")
			}

		case models.ActionAcknowledgeProducts:
			count := len(o.sess.Products())
			o.appendMessage(models.RoleAssistant,
				fmt.Sprintf("Catalog confirmed: %d products ready for synthesis.", count),
				models.MessageStatus, "")

		case models.ActionTriggerLaunch:
			if err := o.Launch(ctx); err != nil && !errors.Is(err, ErrLaunchInProgress) {
				log.Printf("[orchestrator] launch failed: %v", err)
			}

		case models.ActionTriggerDeploy:
			if err := o.Deploy(ctx); err != nil {
				log.Printf("[orchestrator] deploy failed: %v", err)
			}

		default:
			log.Printf("[orchestrator] skipping unknown action type %q", action.Type)
		}
	}
}

// AttachCatalog parses a CSV file and loads its products into the
// session.
func (o *Orchestrator) AttachCatalog(path string) error {
	products, err := catalog.ParseFile(path)
	if err != nil {
		o.appendMessage(models.RoleAssistant, fmt.Sprintf("I couldn't read that catalog: %v", err), models.MessageStatus, "")
		o.emitter.Emit(Event{Type: EventError, Error: err})
		return err
	}

	o.sess.ReplaceProducts(products)
	o.sess.SetCSVPath(path)
	o.appendMessage(models.RoleUser, fmt.Sprintf("Attached catalog with %d products.", len(products)), models.MessageFile, path)
	o.emitter.Emit(Event{Type: EventProductsLoaded, ProductCount: len(products)})
	o.persist()
	return nil
}

// RefreshCatalog re-parses the attached CSV in place; the file watcher
// calls this when the file changes on disk. Unlike AttachCatalog it does
// not add a transcript attachment entry.
func (o *Orchestrator) RefreshCatalog() error {
	path := o.sess.CSVPath()
	if path == "" {
		return nil
	}
	products, err := catalog.ParseFile(path)
	if err != nil {
		return fmt.Errorf("refreshing catalog: %w", err)
	}
	o.sess.ReplaceProducts(products)
	o.appendMessage(models.RoleAssistant, fmt.Sprintf("Catalog updated on disk: now tracking %d products.", len(products)), models.MessageStatus, "")
	o.emitter.Emit(Event{Type: EventProductsLoaded, ProductCount: len(products)})
	o.persist()
	return nil
}

// importContentLimit caps how much scraped text reaches the brain.
const importContentLimit = 4000

// ImportSite scrapes an existing website and hands its content to the
// brain as brand inspiration. The brain typically responds with a
// set_branding action derived from the site.
func (o *Orchestrator) ImportSite(ctx context.Context, url string) error {
	if o.extractor == nil {
		o.appendMessage(models.RoleAssistant, "Site import isn't configured. Set FIRECRAWL_API_KEY to enable it.", models.MessageStatus, "")
		return ErrNoExtractor
	}

	o.appendMessage(models.RoleAssistant, fmt.Sprintf("Reading %s...", url), models.MessageStatus, "")

	ext, err := o.extractor.Extract(ctx, url)
	if err != nil {
		o.appendMessage(models.RoleAssistant, fmt.Sprintf("I couldn't read that site: %v", err), models.MessageStatus, "")
		o.emitter.Emit(Event{Type: EventError, Error: err})
		return err
	}

	content := ext.Content
	if len(content) > importContentLimit {
		content = content[:importContentLimit]
	}

	prompt := fmt.Sprintf(
		"I imported my existing site %s (title: %q). Derive my brand identity from it and update the branding accordingly.\n\n%s",
		url, ext.Title, content,
	)
	return o.HandleUserMessage(ctx, prompt)
}

// Launch runs the full synthesis pipeline: branding, image hydration,
// finalization, and payload assembly. Only one launch runs at a time; a
// second request while one is executing is rejected with a transcript
// note instead of starting a parallel run.
func (o *Orchestrator) Launch(ctx context.Context) error {
	if !o.running.CompareAndSwap(false, true) {
		o.appendMessage(models.RoleAssistant, "A launch is already in progress. Hold tight.", models.MessageStatus, "")
		return ErrLaunchInProgress
	}
	defer o.running.Store(false)

	o.setStatus(models.StatusParsing)

	products := o.sess.Products()
	if len(products) == 0 {
		err := catalog.ErrNoProducts
		o.fail(fmt.Errorf("validating catalog: %w", err))
		o.appendMessage(models.RoleAssistant, "I need a product catalog before I can build the store. Attach a CSV first.", models.MessageStatus, "")
		return err
	}

	brand := o.sess.Brand()
	o.setStatus(models.StatusGenerating)

	files, err := o.synth.Synthesize(ctx, brand, products)
	if err != nil {
		o.fail(fmt.Errorf("branding synthesis: %w", err))
		return err
	}

	hydrated, err := o.batcher.Run(ctx, products, func(e hydrate.BatchEvent) {
		o.sess.UpdateProductRange(e.Offset, e.Products)
		o.emitter.Emit(Event{Type: EventBatchHydrated, BatchIndex: e.Index, BatchTotal: e.Total})
	})
	if err != nil {
		o.fail(fmt.Errorf("image hydration: %w", err))
		return err
	}
	o.sess.ReplaceProducts(hydrated)

	finalized := hydrate.FinalizeSeeded(hydrated, o.seed())
	payload, err := AssemblePayload(files, finalized)
	if err != nil {
		o.fail(fmt.Errorf("assembling payload: %w", err))
		return err
	}

	o.sess.SetPayload(payload)

	if o.outDir != "" {
		if err := WritePayload(o.outDir, payload); err != nil {
			o.fail(fmt.Errorf("writing storefront files: %w", err))
			return err
		}
		o.appendMessage(models.RoleAssistant, fmt.Sprintf("Storefront files written to %s.", o.outDir), models.MessageStatus, "")
	}

	o.setStatus(models.StatusSuccess)
	o.appendMessage(models.RoleAssistant,
		fmt.Sprintf("Your %s storefront is ready: %d products, fully branded. Say \"deploy\" when you want it live.",
			displayName(brand), len(finalized)),
		models.MessageText, "")
	o.emitter.Emit(Event{Type: EventPayloadReady})
	o.persist()
	return nil
}

// Deploy publishes the last assembled payload.
func (o *Orchestrator) Deploy(ctx context.Context) error {
	// A resumed session carries its success status but not the payload
	// bytes, which deployment doesn't need.
	if o.sess.Payload() == nil && o.sess.Status() != models.StatusSuccess {
		o.appendMessage(models.RoleAssistant, "There's nothing to deploy yet. Launch the store first.", models.MessageStatus, "")
		return ErrNoPayload
	}

	brand := o.sess.Brand()
	o.appendMessage(models.RoleAssistant, "Deploying your storefront...", models.MessageStatus, "")

	dep, err := o.deployer.Deploy(ctx, brand.CompanyName)
	if err != nil {
		o.appendMessage(models.RoleAssistant, fmt.Sprintf("Deployment failed: %v", err), models.MessageStatus, "")
		o.emitter.Emit(Event{Type: EventError, Error: err})
		return err
	}

	o.sess.SetDeployURL(dep.URL)
	o.appendMessage(models.RoleAssistant, fmt.Sprintf("Your store is live at %s", dep.URL), models.MessageText, "")
	o.emitter.Emit(Event{Type: EventDeployed, URL: dep.URL})
	o.persist()
	return nil
}

func (o *Orchestrator) setStatus(status models.PipelineStatus) {
	o.sess.SetStatus(status)
	o.emitter.Emit(Event{Type: EventStatusChanged, Status: status})
}

// fail moves the pipeline to the error state and surfaces the cause.
func (o *Orchestrator) fail(err error) {
	log.Printf("[orchestrator] pipeline error: %v", err)
	o.sess.SetStatus(models.StatusError)
	o.emitter.Emit(Event{Type: EventStatusChanged, Status: models.StatusError})
	o.emitter.Emit(Event{Type: EventError, Error: err})
	o.appendMessage(models.RoleAssistant, fmt.Sprintf("Synthesis failed: %v", err), models.MessageStatus, "")
	o.persist()
}

func (o *Orchestrator) appendMessage(role models.MessageRole, content string, typ models.MessageType, fileName string) {
	msg := o.sess.AppendMessage(role, content, typ, fileName)
	o.emitter.Emit(Event{Type: EventMessage, Message: msg})
	if o.store != nil {
		if err := o.store.AppendMessage(o.sess.ID(), msg); err != nil {
			log.Printf("[orchestrator] persisting message: %v", err)
		}
	}
}

// persist writes the current session snapshot through the store, if one
// is configured.
func (o *Orchestrator) persist() {
	if o.store == nil {
		return
	}
	snap := o.sess.Snapshot()
	rec := &state.SessionRecord{
		ID:        o.sess.ID(),
		Brand:     snap.Brand,
		Status:    snap.Status,
		CSVPath:   snap.CSVPath,
		Products:  snap.Products,
		DeployURL: snap.DeployURL,
	}
	if err := o.store.SaveSession(rec); err != nil {
		log.Printf("[orchestrator] persisting session: %v", err)
	}
}

func displayName(brand models.BrandContext) string {
	if brand.CompanyName != "" {
		return brand.CompanyName
	}
	return "new"
}
