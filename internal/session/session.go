// Package session holds the conversational state for one storefront run:
// brand context, product list, pipeline status, and the transcript. All
// mutation goes through named operations so the pipeline can be tested
// without a rendering layer.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ShayCichocki/topshelf/pkg/models"
)

// WelcomeMessage seeds every new transcript.
const WelcomeMessage = "Welcome to TopShelf AI. I'm your Lead Architect. Ready to synthesize your premium storefront. What's the name of your brand?"

// Session owns the brand context, product list, status flag, and
// transcript. It is safe for the TUI goroutine and a pipeline goroutine
// to use concurrently.
type Session struct {
	id string

	mu         sync.RWMutex
	brand      models.BrandContext
	products   []models.Product
	status     models.PipelineStatus
	transcript []models.Message
	payload    map[string]string
	deployURL  string
	csvPath    string
}

// New creates a session with the default palette, idle status, and the
// welcome message in the transcript.
func New() *Session {
	s := &Session{
		id:     uuid.New().String()[:8],
		brand:  models.DefaultBrandContext(),
		status: models.StatusIdle,
	}
	s.AppendMessage(models.RoleAssistant, WelcomeMessage, models.MessageText, "")
	return s
}

// Restore rebuilds a session from persisted state. The transcript may be
// nil; a restored session with no messages re-seeds the welcome line.
func Restore(id string, brand models.BrandContext, products []models.Product, status models.PipelineStatus, csvPath string, transcript []models.Message) *Session {
	s := &Session{
		id:       id,
		brand:    models.DefaultBrandContext().Merge(brand),
		products: cloneProducts(products),
		status:   status,
		csvPath:  csvPath,
	}
	// A session persisted mid-pipeline has no run backing it anymore;
	// only terminal statuses survive a restore.
	if !status.Valid() || (status != models.StatusIdle && !status.Terminal()) {
		s.status = models.StatusIdle
	}
	if len(transcript) > 0 {
		s.transcript = append(s.transcript, transcript...)
	} else {
		s.AppendMessage(models.RoleAssistant, WelcomeMessage, models.MessageText, "")
	}
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Snapshot is a point-in-time copy of the session state.
type Snapshot struct {
	Brand     models.BrandContext
	Products  []models.Product
	Status    models.PipelineStatus
	DeployURL string
	CSVPath   string
}

// Snapshot returns a copy of the current state. The product slice is
// cloned; callers may not mutate shared state through it.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Brand:     s.brand,
		Products:  cloneProducts(s.products),
		Status:    s.status,
		DeployURL: s.deployURL,
		CSVPath:   s.csvPath,
	}
}

// Brand returns the current brand context.
func (s *Session) Brand() models.BrandContext {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.brand
}

// ApplyBranding shallow-merges a patch into the brand context and returns
// the result.
func (s *Session) ApplyBranding(patch models.BrandContext) models.BrandContext {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.brand = s.brand.Merge(patch)
	return s.brand
}

// Products returns a copy of the current product list.
func (s *Session) Products() []models.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneProducts(s.products)
}

// ReplaceProducts swaps in a whole new product list.
func (s *Session) ReplaceProducts(products []models.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = cloneProducts(products)
}

// UpdateProductRange overwrites products starting at offset. Used by the
// hydration batcher to publish one batch's results without touching the
// rest of the list. Out-of-range elements are ignored.
func (s *Session) UpdateProductRange(offset int, batch []models.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range batch {
		idx := offset + i
		if idx < 0 || idx >= len(s.products) {
			continue
		}
		s.products[idx] = p
	}
}

// Status returns the current pipeline status.
func (s *Session) Status() models.PipelineStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// SetStatus updates the pipeline status.
func (s *Session) SetStatus(status models.PipelineStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
}

// AppendMessage adds a transcript entry and returns it.
func (s *Session) AppendMessage(role models.MessageRole, content string, typ models.MessageType, fileName string) models.Message {
	msg := models.Message{
		ID:        uuid.New().String(),
		Role:      role,
		Content:   content,
		Type:      typ,
		FileName:  fileName,
		CreatedAt: time.Now(),
	}
	s.mu.Lock()
	s.transcript = append(s.transcript, msg)
	s.mu.Unlock()
	return msg
}

// Transcript returns a copy of the conversation so far.
func (s *Session) Transcript() []models.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Message, len(s.transcript))
	copy(out, s.transcript)
	return out
}

// SetPayload stores the final synthesis payload for this run.
func (s *Session) SetPayload(payload map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payload = make(map[string]string, len(payload))
	for k, v := range payload {
		s.payload[k] = v
	}
}

// Payload returns a copy of the last synthesis payload, or nil if no run
// has completed.
func (s *Session) Payload() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.payload == nil {
		return nil
	}
	out := make(map[string]string, len(s.payload))
	for k, v := range s.payload {
		out[k] = v
	}
	return out
}

// SetDeployURL records the URL of the last successful deployment.
func (s *Session) SetDeployURL(url string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deployURL = url
}

// SetCSVPath records the path of the attached catalog file, for the
// file watcher.
func (s *Session) SetCSVPath(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.csvPath = path
}

// CSVPath returns the attached catalog path, if any.
func (s *Session) CSVPath() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.csvPath
}

func cloneProducts(in []models.Product) []models.Product {
	if in == nil {
		return nil
	}
	out := make([]models.Product, len(in))
	copy(out, in)
	return out
}
