package state

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ShayCichocki/topshelf/pkg/models"
)

// SessionRecord is the persisted form of a session.
type SessionRecord struct {
	ID        string                `json:"id"`
	Brand     models.BrandContext   `json:"brand"`
	Status    models.PipelineStatus `json:"status"`
	CSVPath   string                `json:"csv_path"`
	Products  []models.Product      `json:"products"`
	DeployURL string                `json:"deploy_url"`
	CreatedAt time.Time             `json:"created_at"`
	UpdatedAt time.Time             `json:"updated_at"`
}

// SaveSession inserts or updates a session record.
func (db *DB) SaveSession(rec *SessionRecord) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	productsJSON, err := json.Marshal(rec.Products)
	if err != nil {
		return fmt.Errorf("encode products: %w", err)
	}

	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now

	_, err = db.conn.Exec(`
		INSERT INTO sessions (id, company_name, primary_color, secondary_color, status, csv_path, products_json, deploy_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			company_name = excluded.company_name,
			primary_color = excluded.primary_color,
			secondary_color = excluded.secondary_color,
			status = excluded.status,
			csv_path = excluded.csv_path,
			products_json = excluded.products_json,
			deploy_url = excluded.deploy_url,
			updated_at = excluded.updated_at
	`,
		rec.ID, rec.Brand.CompanyName, rec.Brand.PrimaryColor, rec.Brand.SecondaryColor,
		string(rec.Status), rec.CSVPath, string(productsJSON), rec.DeployURL,
		rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save session %s: %w", rec.ID, err)
	}
	return nil
}

// GetSession loads one session by ID. Returns nil without error when the
// session does not exist.
func (db *DB) GetSession(id string) (*SessionRecord, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	row := db.conn.QueryRow(`
		SELECT id, company_name, primary_color, secondary_color, status, csv_path, products_json, deploy_url, created_at, updated_at
		FROM sessions WHERE id = ?
	`, id)

	return scanSession(row)
}

// LatestSession returns the most recently updated session, or nil when
// the store is empty.
func (db *DB) LatestSession() (*SessionRecord, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	row := db.conn.QueryRow(`
		SELECT id, company_name, primary_color, secondary_color, status, csv_path, products_json, deploy_url, created_at, updated_at
		FROM sessions ORDER BY updated_at DESC LIMIT 1
	`)

	return scanSession(row)
}

func scanSession(row *sql.Row) (*SessionRecord, error) {
	var rec SessionRecord
	var status, productsJSON string
	err := row.Scan(
		&rec.ID, &rec.Brand.CompanyName, &rec.Brand.PrimaryColor, &rec.Brand.SecondaryColor,
		&status, &rec.CSVPath, &productsJSON, &rec.DeployURL, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan session: %w", err)
	}

	rec.Status = models.PipelineStatus(status)
	if err := json.Unmarshal([]byte(productsJSON), &rec.Products); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	return &rec, nil
}

// AppendMessage persists one transcript entry for a session.
func (db *DB) AppendMessage(sessionID string, msg models.Message) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	_, err := db.conn.Exec(`
		INSERT INTO messages (id, session_id, role, content, type, file_name, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, msg.ID, sessionID, string(msg.Role), msg.Content, string(msg.Type), msg.FileName, msg.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("append message to %s: %w", sessionID, err)
	}
	return nil
}

// GetTranscript loads all messages for a session in order.
func (db *DB) GetTranscript(sessionID string) ([]models.Message, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	rows, err := db.conn.Query(`
		SELECT id, role, content, type, file_name, created_at
		FROM messages WHERE session_id = ? ORDER BY created_at, id
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query transcript for %s: %w", sessionID, err)
	}
	defer rows.Close()

	var out []models.Message
	for rows.Next() {
		var msg models.Message
		var role, typ string
		if err := rows.Scan(&msg.ID, &role, &msg.Content, &typ, &msg.FileName, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		msg.Role = models.MessageRole(role)
		msg.Type = models.MessageType(typ)
		out = append(out, msg)
	}
	return out, rows.Err()
}
