package db

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/courseloop/support-backend/internal/models"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

type Store struct {
	Pool *pgxpool.Pool
	url  string
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Store{Pool: pool, url: databaseURL}, nil
}

func (s *Store) Close() {
	s.Pool.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.Pool.Ping(ctx)
}

func (s *Store) Migrate() error {
	src, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, s.url)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	srcErr, dbErr := m.Close()
	if srcErr != nil {
		return srcErr
	}
	return dbErr
}

const caseColumns = `id, channel, external_id, user_ref, display_name, case_type, priority, status, persona, summary, created_at, updated_at`

func scanCase(row pgx.Row) (models.SupportCase, error) {
	var (
		c        models.SupportCase
		caseType *string
	)
	err := row.Scan(&c.ID, &c.Channel, &c.ExternalID, &c.UserRef, &c.DisplayName, &caseType, &c.Priority, &c.Status, &c.Persona, &c.Summary, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return models.SupportCase{}, err
	}
	if caseType != nil {
		c.CaseType = models.CaseType(*caseType)
	}
	return c, nil
}

// FindOpenCase returns the most recently created case for the identity whose
// status is still active or escalated. The bool reports whether one exists.
func (s *Store) FindOpenCase(ctx context.Context, channel models.Channel, externalID string) (models.SupportCase, bool, error) {
	row := s.Pool.QueryRow(ctx, `
		SELECT `+caseColumns+` FROM cases
		WHERE channel = $1 AND external_id = $2 AND status IN ('active', 'escalated')
		ORDER BY created_at DESC
		LIMIT 1
	`, channel, externalID)
	c, err := scanCase(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.SupportCase{}, false, nil
	}
	if err != nil {
		return models.SupportCase{}, false, err
	}
	return c, true, nil
}

func (s *Store) CreateCase(ctx context.Context, channel models.Channel, externalID, displayName string) (models.SupportCase, error) {
	now := time.Now().UTC()
	c := models.SupportCase{
		ID:          uuid.NewString(),
		Channel:     channel,
		ExternalID:  externalID,
		DisplayName: displayName,
		Priority:    models.PriorityNormal,
		Status:      models.StatusActive,
		Persona:     models.PersonaSage,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO cases (id, channel, external_id, display_name, priority, status, persona, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, c.ID, c.Channel, c.ExternalID, c.DisplayName, c.Priority, c.Status, c.Persona, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return models.SupportCase{}, err
	}
	return c, nil
}

func (s *Store) GetCase(ctx context.Context, caseID string) (models.SupportCase, error) {
	row := s.Pool.QueryRow(ctx, `SELECT `+caseColumns+` FROM cases WHERE id = $1`, caseID)
	return scanCase(row)
}

// UpdateCaseRouting commits a routing transition. Single-row update, idempotent.
func (s *Store) UpdateCaseRouting(ctx context.Context, caseID string, status models.Status, persona models.Persona) error {
	_, err := s.Pool.Exec(ctx, `
		UPDATE cases SET status = $1, persona = $2, updated_at = NOW() WHERE id = $3
	`, status, persona, caseID)
	return err
}

// SetCaseType tags the case with a classified type only when none is set yet.
func (s *Store) SetCaseType(ctx context.Context, caseID string, caseType models.CaseType) error {
	_, err := s.Pool.Exec(ctx, `
		UPDATE cases SET case_type = $1, updated_at = NOW() WHERE id = $2 AND case_type IS NULL
	`, caseType, caseID)
	return err
}

func (s *Store) TouchCase(ctx context.Context, caseID string) error {
	_, err := s.Pool.Exec(ctx, `UPDATE cases SET updated_at = NOW() WHERE id = $1`, caseID)
	return err
}

func (s *Store) InsertMessage(ctx context.Context, m models.CaseMessage) (models.CaseMessage, error) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO case_messages (id, case_id, sender, content, native_message_id, message_type, metadata, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, m.ID, m.CaseID, m.Sender, m.Content, m.NativeMessageID, m.MessageType, m.Metadata, m.CreatedAt)
	if err != nil {
		return models.CaseMessage{}, err
	}
	return m, nil
}

// ListRecentMessages returns the latest messages of a case in chronological order.
func (s *Store) ListRecentMessages(ctx context.Context, caseID string, limit int) ([]models.CaseMessage, error) {
	if limit <= 0 || limit > 20 {
		limit = 20
	}
	rows, err := s.Pool.Query(ctx, `
		SELECT id, case_id, sender, content, native_message_id, message_type, metadata, created_at
		FROM (
			SELECT id, case_id, sender, content, native_message_id, message_type, metadata, created_at
			FROM case_messages WHERE case_id = $1
			ORDER BY created_at DESC LIMIT $2
		) recent
		ORDER BY created_at ASC
	`, caseID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.CaseMessage
	for rows.Next() {
		var m models.CaseMessage
		if err := rows.Scan(&m.ID, &m.CaseID, &m.Sender, &m.Content, &m.NativeMessageID, &m.MessageType, &m.Metadata, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *Store) InsertTelemetry(ctx context.Context, e models.TelemetryEvent) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO telemetry_events (id, source, level, event_key, payload, case_id, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, e.ID, e.Source, e.Level, e.EventKey, e.Payload, e.CaseID, e.CreatedAt)
	return err
}

func (s *Store) ListCases(ctx context.Context, channel, status, caseType, q string, limit, offset int) ([]models.SupportCase, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	query := `SELECT ` + caseColumns + ` FROM cases`
	var args []any
	var wheres []string
	if channel != "" {
		args = append(args, channel)
		wheres = append(wheres, fmt.Sprintf("channel = $%d", len(args)))
	}
	if status != "" {
		args = append(args, status)
		wheres = append(wheres, fmt.Sprintf("status = $%d", len(args)))
	}
	if caseType != "" {
		args = append(args, caseType)
		wheres = append(wheres, fmt.Sprintf("case_type = $%d", len(args)))
	}
	if q != "" {
		args = append(args, "%"+q+"%")
		wheres = append(wheres, fmt.Sprintf("(external_id ILIKE $%d OR display_name ILIKE $%d OR summary ILIKE $%d)", len(args), len(args), len(args)))
	}
	if len(wheres) > 0 {
		query += " WHERE " + strings.Join(wheres, " AND ")
	}
	query += " ORDER BY created_at DESC LIMIT $" + fmt.Sprint(len(args)+1) + " OFFSET $" + fmt.Sprint(len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.SupportCase
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) GetCaseDetails(ctx context.Context, caseID string) (map[string]any, error) {
	c, err := s.GetCase(ctx, caseID)
	if err != nil {
		return nil, err
	}

	rows, err := s.Pool.Query(ctx, `
		SELECT id, case_id, sender, content, native_message_id, message_type, metadata, created_at
		FROM case_messages WHERE case_id = $1 ORDER BY created_at ASC
	`, caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := []models.CaseMessage{}
	for rows.Next() {
		var m models.CaseMessage
		if err := rows.Scan(&m.ID, &m.CaseID, &m.Sender, &m.Content, &m.NativeMessageID, &m.MessageType, &m.Metadata, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return map[string]any{
		"case":     c,
		"messages": messages,
	}, nil
}

func (s *Store) ListTelemetry(ctx context.Context, source, level string, limit int) ([]models.TelemetryEvent, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	query := `SELECT id, source, level, event_key, payload, case_id, created_at FROM telemetry_events`
	var args []any
	var wheres []string
	if source != "" {
		args = append(args, source)
		wheres = append(wheres, fmt.Sprintf("source = $%d", len(args)))
	}
	if level != "" {
		args = append(args, level)
		wheres = append(wheres, fmt.Sprintf("level = $%d", len(args)))
	}
	if len(wheres) > 0 {
		query += " WHERE " + strings.Join(wheres, " AND ")
	}
	query += " ORDER BY created_at DESC LIMIT $" + fmt.Sprint(len(args)+1)
	args = append(args, limit)

	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.TelemetryEvent
	for rows.Next() {
		var e models.TelemetryEvent
		var payload []byte
		if err := rows.Scan(&e.ID, &e.Source, &e.Level, &e.EventKey, &payload, &e.CaseID, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Payload = json.RawMessage(payload)
		out = append(out, e)
	}
	return out, rows.Err()
}
