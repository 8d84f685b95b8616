package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ShayCichocki/topshelf/internal/api"
	"github.com/ShayCichocki/topshelf/internal/config"
	"github.com/ShayCichocki/topshelf/internal/deploy"
	"github.com/ShayCichocki/topshelf/internal/hydrate"
	"github.com/ShayCichocki/topshelf/internal/session"
	"github.com/ShayCichocki/topshelf/pkg/models"
)

type fakeBrain struct {
	mu      sync.Mutex
	actions []models.Action
	err     error
	calls   int
}

func (f *fakeBrain) Decide(_ context.Context, _ api.DecideRequest) ([]models.Action, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.actions, f.err
}

type fakeSynth struct {
	mu    sync.Mutex
	files map[string]string
	err   error
	brand models.BrandContext
	block chan struct{} // if non-nil, Synthesize waits on it
}

func (f *fakeSynth) Synthesize(_ context.Context, brand models.BrandContext, _ []models.Product) (map[string]string, error) {
	f.mu.Lock()
	f.brand = brand
	block := f.block
	f.mu.Unlock()
	if block != nil {
		<-block
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.files, nil
}

func (f *fakeSynth) seenBrand() models.BrandContext {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.brand
}

type fakeImageGen struct{}

func (fakeImageGen) Generate(_ context.Context, name string) (string, error) {
	return "https://cdn.example/" + strings.ReplaceAll(name, " ", "-") + ".png", nil
}

type fakeDeployer struct {
	err error
}

func (f *fakeDeployer) Deploy(_ context.Context, companyName string) (*deploy.Deployment, error) {
	if f.err != nil {
		return nil, f.err
	}
	if companyName == "" {
		return nil, deploy.ErrNoCompanyName
	}
	return &deploy.Deployment{
		ProjectID: "test1234",
		URL:       "https://" + deploy.Slug(companyName) + ".zeabur.app",
		Message:   "Successfully deployed " + companyName + " to the Zeabur Cloud.",
	}, nil
}

func noSleep(ctx context.Context, _ time.Duration) error { return ctx.Err() }

func testOrchestrator(t *testing.T, brain *fakeBrain, synth *fakeSynth) *Orchestrator {
	t.Helper()
	batcher := hydrate.NewBatcher(fakeImageGen{}, hydrate.WithSleeper(noSleep))
	o := New(session.New(), brain, synth, batcher, &fakeDeployer{},
		WithSeedSource(func() int64 { return 1 }))
	t.Cleanup(o.Close)
	return o
}

func seedProducts(o *Orchestrator, n int) {
	products := make([]models.Product, n)
	for i := range products {
		products[i] = models.Product{Name: "Item", Price: 1, Description: "d", Category: "General"}
	}
	o.Session().ReplaceProducts(products)
}

func rawJSON(t *testing.T, v interface{}) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return b
}

func TestDispatchOrdering(t *testing.T) {
	// set_branding before trigger_launch in the same action list must
	// take effect before the synthesis call.
	brain := &fakeBrain{}
	synth := &fakeSynth{files: map[string]string{api.ThemeFilePath: "{}"}}
	o := testOrchestrator(t, brain, synth)
	seedProducts(o, 2)

	actions := []models.Action{
		{Type: models.ActionSetBranding, Payload: rawJSON(t, map[string]string{
			"companyName":  "Lumen",
			"primaryColor": "#ff00aa",
		})},
		{Type: models.ActionTriggerLaunch},
	}
	o.Dispatch(context.Background(), actions)

	if got := synth.seenBrand(); got.CompanyName != "Lumen" || got.PrimaryColor != "#ff00aa" {
		t.Errorf("synthesis saw stale brand: %+v", got)
	}
	if status := o.Session().Status(); status != models.StatusSuccess {
		t.Errorf("status = %s, want success", status)
	}
}

func TestDispatchChatAndUnknown(t *testing.T) {
	brain := &fakeBrain{}
	o := testOrchestrator(t, brain, &fakeSynth{})

	actions := []models.Action{
		{Type: models.ActionChat, Payload: rawJSON(t, "Certainly.")},
		{Type: "order_pizza"},
	}
	o.Dispatch(context.Background(), actions)

	transcript := o.Session().Transcript()
	last := transcript[len(transcript)-1]
	if last.Role != models.RoleAssistant || last.Content != "Certainly." {
		t.Errorf("last message = %+v", last)
	}
	// Unknown action is skipped, not fatal.
	if status := o.Session().Status(); status != models.StatusIdle {
		t.Errorf("unknown action changed status to %s", status)
	}
}

func TestLaunchWithoutProducts(t *testing.T) {
	o := testOrchestrator(t, &fakeBrain{}, &fakeSynth{})

	err := o.Launch(context.Background())
	if err == nil {
		t.Fatal("expected error launching with empty catalog")
	}
	if status := o.Session().Status(); status != models.StatusError {
		t.Errorf("status = %s, want error", status)
	}
}

func TestLaunchSynthesisFailure(t *testing.T) {
	synth := &fakeSynth{err: errors.New("model unavailable")}
	o := testOrchestrator(t, &fakeBrain{}, synth)
	seedProducts(o, 1)

	if err := o.Launch(context.Background()); err == nil {
		t.Fatal("expected synthesis error")
	}
	if status := o.Session().Status(); status != models.StatusError {
		t.Errorf("status = %s, want error", status)
	}
	// A failed run must not leave a stale payload behind.
	if o.Session().Payload() != nil {
		t.Error("payload set despite failure")
	}
}

func TestLaunchProducesPayload(t *testing.T) {
	synth := &fakeSynth{files: map[string]string{
		api.ThemeFilePath:  `{"colors":{}}`,
		api.FooterFilePath: "export const Footer = () => null;",
	}}
	o := testOrchestrator(t, &fakeBrain{}, synth)
	o.Session().ApplyBranding(models.BrandContext{CompanyName: "Atelier"})
	seedProducts(o, 7)

	if err := o.Launch(context.Background()); err != nil {
		t.Fatalf("Launch failed: %v", err)
	}

	payload := o.Session().Payload()
	if payload == nil {
		t.Fatal("no payload after successful launch")
	}
	for _, path := range []string{api.ThemeFilePath, api.FooterFilePath, api.ProductsFilePath} {
		if _, ok := payload[path]; !ok {
			t.Errorf("payload missing %s", path)
		}
	}
	if !strings.HasPrefix(payload[api.ProductsFilePath], "export const products = [") {
		t.Errorf("products file has wrong shape: %.60s", payload[api.ProductsFilePath])
	}
	if status := o.Session().Status(); status != models.StatusSuccess {
		t.Errorf("status = %s, want success", status)
	}
}

func TestLaunchRejectsConcurrentRun(t *testing.T) {
	block := make(chan struct{})
	synth := &fakeSynth{block: block, files: map[string]string{api.ThemeFilePath: "{}"}}
	o := testOrchestrator(t, &fakeBrain{}, synth)
	seedProducts(o, 1)

	done := make(chan error, 1)
	go func() { done <- o.Launch(context.Background()) }()

	// Wait until the first launch holds the running flag.
	deadline := time.After(2 * time.Second)
	for {
		if o.running.Load() {
			break
		}
		select {
		case <-deadline:
			t.Fatal("first launch never started")
		case <-time.After(time.Millisecond):
		}
	}

	if err := o.Launch(context.Background()); !errors.Is(err, ErrLaunchInProgress) {
		t.Fatalf("second launch error = %v, want ErrLaunchInProgress", err)
	}

	close(block)
	if err := <-done; err != nil {
		t.Fatalf("first launch failed: %v", err)
	}
}

func TestDeployRequiresPayload(t *testing.T) {
	o := testOrchestrator(t, &fakeBrain{}, &fakeSynth{})
	if err := o.Deploy(context.Background()); !errors.Is(err, ErrNoPayload) {
		t.Fatalf("error = %v, want ErrNoPayload", err)
	}
}

func TestDeployAfterLaunch(t *testing.T) {
	synth := &fakeSynth{files: map[string]string{api.ThemeFilePath: "{}"}}
	o := testOrchestrator(t, &fakeBrain{}, synth)
	o.Session().ApplyBranding(models.BrandContext{CompanyName: "Maison Vert"})
	seedProducts(o, 1)

	if err := o.Launch(context.Background()); err != nil {
		t.Fatalf("Launch failed: %v", err)
	}
	if err := o.Deploy(context.Background()); err != nil {
		t.Fatalf("Deploy failed: %v", err)
	}

	snap := o.Session().Snapshot()
	if snap.DeployURL != "https://maison-vert.zeabur.app" {
		t.Errorf("deploy URL = %q", snap.DeployURL)
	}
}

func TestDeployUnconfiguredKeySurfacesHint(t *testing.T) {
	batcher := hydrate.NewBatcher(fakeImageGen{}, hydrate.WithSleeper(noSleep))
	synth := &fakeSynth{files: map[string]string{api.ThemeFilePath: "{}"}}
	notConfigured := config.ValidateKey(config.ServiceZeabur, "")
	o := New(session.New(), &fakeBrain{}, synth, batcher, &fakeDeployer{err: notConfigured},
		WithSeedSource(func() int64 { return 1 }))
	t.Cleanup(o.Close)

	o.Session().ApplyBranding(models.BrandContext{CompanyName: "Acme"})
	seedProducts(o, 1)
	if err := o.Launch(context.Background()); err != nil {
		t.Fatalf("Launch failed: %v", err)
	}

	err := o.Deploy(context.Background())
	if !errors.Is(err, config.ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}

	// The remediation hint reaches the transcript.
	transcript := o.Session().Transcript()
	last := transcript[len(transcript)-1]
	if !strings.Contains(last.Content, "ZEABUR_API_KEY") {
		t.Errorf("transcript message %q should name the env var to set", last.Content)
	}
	if o.Session().Snapshot().DeployURL != "" {
		t.Error("failed deploy must not record a URL")
	}
}

func TestUsageTracker(t *testing.T) {
	tracker := api.NewTokenTracker()
	batcher := hydrate.NewBatcher(fakeImageGen{}, hydrate.WithSleeper(noSleep))
	o := New(session.New(), &fakeBrain{}, &fakeSynth{}, batcher, &fakeDeployer{},
		WithTokenTracker(tracker))
	t.Cleanup(o.Close)

	if o.Usage() != tracker {
		t.Fatal("Usage() should expose the wired tracker")
	}
	tracker.Add(120, 40)
	in, out := o.Usage().Total()
	if in != 120 || out != 40 || o.Usage().Calls() != 1 {
		t.Errorf("usage = %d in / %d out / %d calls", in, out, o.Usage().Calls())
	}
}

func TestHandleUserMessageBrainFailure(t *testing.T) {
	brain := &fakeBrain{err: errors.New("overloaded")}
	o := testOrchestrator(t, brain, &fakeSynth{})

	if err := o.HandleUserMessage(context.Background(), "hello"); err == nil {
		t.Fatal("expected brain error")
	}

	// The failure is surfaced in the transcript; the session stays usable.
	transcript := o.Session().Transcript()
	last := transcript[len(transcript)-1]
	if last.Type != models.MessageStatus {
		t.Errorf("expected a status message, got %+v", last)
	}
	if status := o.Session().Status(); status != models.StatusIdle {
		t.Errorf("brain failure changed pipeline status to %s", status)
	}
}
