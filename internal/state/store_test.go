package state

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ShayCichocki/topshelf/pkg/models"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := db.Migrate(); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSaveAndGetSession(t *testing.T) {
	db := setupTestDB(t)

	rec := &SessionRecord{
		ID: "sess-001",
		Brand: models.BrandContext{
			CompanyName:  "Acme",
			PrimaryColor: "#111",
		},
		Status:  models.StatusIdle,
		CSVPath: "/tmp/products.csv",
		Products: []models.Product{
			{Name: "Widget", Price: 9.99, Description: "A widget", Category: "General"},
		},
	}

	if err := db.SaveSession(rec); err != nil {
		t.Fatalf("SaveSession failed: %v", err)
	}

	got, err := db.GetSession("sess-001")
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if got == nil {
		t.Fatal("GetSession returned nil")
	}
	if got.Brand.CompanyName != "Acme" || got.CSVPath != "/tmp/products.csv" {
		t.Errorf("session mismatch: %+v", got)
	}
	if len(got.Products) != 1 || got.Products[0].Name != "Widget" {
		t.Errorf("products mismatch: %+v", got.Products)
	}
}

func TestSaveSessionUpsert(t *testing.T) {
	db := setupTestDB(t)

	rec := &SessionRecord{ID: "sess-002", Status: models.StatusIdle}
	if err := db.SaveSession(rec); err != nil {
		t.Fatalf("first save failed: %v", err)
	}

	rec.Status = models.StatusSuccess
	rec.DeployURL = "https://acme.zeabur.app"
	if err := db.SaveSession(rec); err != nil {
		t.Fatalf("second save failed: %v", err)
	}

	got, err := db.GetSession("sess-002")
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if got.Status != models.StatusSuccess || got.DeployURL != "https://acme.zeabur.app" {
		t.Errorf("upsert missed: %+v", got)
	}
}

func TestGetSessionMissing(t *testing.T) {
	db := setupTestDB(t)

	got, err := db.GetSession("nope")
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for missing session, got %+v", got)
	}
}

func TestLatestSession(t *testing.T) {
	db := setupTestDB(t)

	if got, err := db.LatestSession(); err != nil || got != nil {
		t.Fatalf("empty store: got %+v, err %v", got, err)
	}

	older := &SessionRecord{ID: "older"}
	if err := db.SaveSession(older); err != nil {
		t.Fatalf("save older: %v", err)
	}
	// Ensure distinct updated_at values
	time.Sleep(10 * time.Millisecond)
	newer := &SessionRecord{ID: "newer"}
	if err := db.SaveSession(newer); err != nil {
		t.Fatalf("save newer: %v", err)
	}

	got, err := db.LatestSession()
	if err != nil {
		t.Fatalf("LatestSession failed: %v", err)
	}
	if got == nil || got.ID != "newer" {
		t.Errorf("latest = %+v, want newer", got)
	}
}

func TestTranscript(t *testing.T) {
	db := setupTestDB(t)

	if err := db.SaveSession(&SessionRecord{ID: "sess-003"}); err != nil {
		t.Fatalf("save session: %v", err)
	}

	base := time.Now().UTC().Truncate(time.Millisecond)
	msgs := []models.Message{
		{ID: uuid.New().String(), Role: models.RoleAssistant, Content: "welcome", Type: models.MessageText, CreatedAt: base},
		{ID: uuid.New().String(), Role: models.RoleUser, Content: "hi", Type: models.MessageText, CreatedAt: base.Add(time.Second)},
		{ID: uuid.New().String(), Role: models.RoleUser, Content: "products.csv", Type: models.MessageFile, FileName: "products.csv", CreatedAt: base.Add(2 * time.Second)},
	}
	for _, m := range msgs {
		if err := db.AppendMessage("sess-003", m); err != nil {
			t.Fatalf("AppendMessage failed: %v", err)
		}
	}

	got, err := db.GetTranscript("sess-003")
	if err != nil {
		t.Fatalf("GetTranscript failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("transcript length = %d, want 3", len(got))
	}
	if got[0].Content != "welcome" || got[2].FileName != "products.csv" {
		t.Errorf("transcript order/content wrong: %+v", got)
	}
}
