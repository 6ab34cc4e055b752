package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/cuongbtq/translate-queue/internal/api/domain"
	"github.com/cuongbtq/translate-queue/internal/api/model"
)

const translationColumns = `
	request_id, text, source_lang, target_lang, status,
	translated_text, error_message, error_code, retry_count,
	queued_at, created_at, updated_at`

type Storage struct {
	db *sqlx.DB
}

func NewStorage(db *sqlx.DB) *Storage {
	return &Storage{db: db}
}

func (s *Storage) CreateTranslation(ctx context.Context, t *model.Translation) error {
	query := `
		INSERT INTO translations (` + translationColumns + `)
		VALUES (
			:request_id, :text, :source_lang, :target_lang, :status,
			:translated_text, :error_message, :error_code, :retry_count,
			:queued_at, :created_at, :updated_at
		)`

	if _, err := s.db.NamedExecContext(ctx, query, t); err != nil {
		return fmt.Errorf("failed to create translation: %w", err)
	}
	return nil
}

func (s *Storage) GetTranslation(ctx context.Context, requestID string) (*model.Translation, error) {
	var t model.Translation
	query := `SELECT ` + translationColumns + ` FROM translations WHERE request_id = $1`

	if err := s.db.GetContext(ctx, &t, query, requestID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get translation: %w", err)
	}
	return &t, nil
}

type TranslationFilter struct {
	Status     string
	SourceLang string
	TargetLang string
	PageSize   int
	Cursor     *Cursor
}

// Cursor is the keyset position of the last row of the previous page.
type Cursor struct {
	CreatedAt time.Time
	RequestID string
}

func buildListQuery(filter TranslationFilter) (string, []any) {
	query := `SELECT ` + translationColumns + ` FROM translations WHERE 1=1`
	args := []any{}
	argIdx := 1

	addEq := func(column, value string) {
		if value == "" {
			return
		}
		query += fmt.Sprintf(" AND %s = $%d", column, argIdx)
		args = append(args, value)
		argIdx++
	}
	addEq("status", filter.Status)
	addEq("source_lang", filter.SourceLang)
	addEq("target_lang", filter.TargetLang)

	if filter.Cursor != nil {
		query += fmt.Sprintf(" AND (created_at, request_id) < ($%d, $%d)", argIdx, argIdx+1)
		args = append(args, filter.Cursor.CreatedAt, filter.Cursor.RequestID)
		argIdx += 2
	}

	query += " ORDER BY created_at DESC, request_id DESC"

	// One extra row tells the caller whether another page exists.
	query += fmt.Sprintf(" LIMIT $%d", argIdx)
	args = append(args, filter.PageSize+1)

	return query, args
}

// ListTranslations returns up to PageSize+1 rows, newest first.
func (s *Storage) ListTranslations(ctx context.Context, filter TranslationFilter) ([]model.Translation, error) {
	query, args := buildListQuery(filter)

	var rows []model.Translation
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list translations: %w", err)
	}
	return rows, nil
}

func buildUpdateQuery(requestID string, u domain.StatusUpdate, now time.Time) (string, []any) {
	sources := make([]string, 0, len(u.Sources()))
	for _, st := range u.Sources() {
		sources = append(sources, string(st))
	}

	var (
		set  string
		args []any
	)
	switch p := u.(type) {
	case domain.ProcessingUpdate:
		set = `status = $1, updated_at = $2`
		args = []any{string(p.Target()), now}
	case domain.CompletedPayload:
		set = `status = $1, updated_at = $2, translated_text = $3, error_message = NULL, error_code = NULL`
		args = []any{string(p.Target()), now, p.TranslatedText}
	case domain.FailedPayload:
		set = `status = $1, updated_at = $2, error_message = $3, error_code = $4, retry_count = retry_count + 1`
		args = []any{string(p.Target()), now, p.ErrorMessage, p.ErrorCode}
	case domain.QueueFailure:
		set = `status = $1, updated_at = $2, error_message = $3, error_code = $4`
		args = []any{string(p.Target()), now, domain.QueueErrorMessage, domain.ErrorCodeQueue}
	}

	n := len(args)
	query := fmt.Sprintf(
		`UPDATE translations SET %s WHERE request_id = $%d AND status = ANY($%d) RETURNING %s`,
		set, n+1, n+2, translationColumns,
	)
	args = append(args, requestID, pq.Array(sources))
	return query, args
}

// ApplyStatusUpdate performs u as one conditional UPDATE, so of two racing
// updates for the same request only one can match the expected source status.
func (s *Storage) ApplyStatusUpdate(ctx context.Context, requestID string, u domain.StatusUpdate, now time.Time) (*model.Translation, error) {
	query, args := buildUpdateQuery(requestID, u, now)

	var t model.Translation
	err := s.db.GetContext(ctx, &t, query, args...)
	if err == nil {
		return &t, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to update translation status: %w", err)
	}

	current, err := s.GetTranslation(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if err := domain.CheckTransition(domain.Status(current.Status), u); err != nil {
		return nil, err
	}
	// The row moved between the UPDATE and the lookup.
	return nil, &domain.TransitionError{From: domain.Status(current.Status), To: u.Target()}
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
