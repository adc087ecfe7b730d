package store

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"briefroom.app/relay/core/db"
	"briefroom.app/relay/internal/lifecycle"
	"briefroom.app/relay/internal/model"
)

//go:embed postgres_schema.sql
var postgresSchema string

// PostgresStore keeps the session document in a JSONB column. status and
// synthesis_version are mirrored into columns so guards are plain WHERE clauses.
type PostgresStore struct {
	db *db.DB
}

func NewPostgresStore(database *db.DB) *PostgresStore {
	return &PostgresStore{db: database}
}

func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool().Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) pool() *pgxpool.Pool {
	return s.db.Pool()
}

func (s *PostgresStore) Create(ctx context.Context, session *model.Session) error {
	normalize(session)
	doc, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	_, err = s.pool().Exec(ctx,
		`INSERT INTO decision_sessions (id, status, synthesis_version, doc, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		session.ID, string(session.Status), session.SynthesisVersion, doc, session.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetByID(ctx context.Context, id string) (*model.Session, error) {
	var doc []byte
	err := s.pool().QueryRow(ctx, `SELECT doc FROM decision_sessions WHERE id = $1`, id).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	var session model.Session
	if err := json.Unmarshal(doc, &session); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &session, nil
}

func (s *PostgresStore) AppendSubmission(ctx context.Context, id string, sub model.Submission) error {
	normalizeSubmission(&sub)
	return s.appendTo(ctx, id, "submissions", sub)
}

func (s *PostgresStore) AppendReview(ctx context.Context, id string, review model.Review) error {
	return s.appendTo(ctx, id, "synthesisReviews", review)
}

// appendTo appends one element to a top-level array in a single UPDATE; the
// row lock serializes concurrent appenders.
func (s *PostgresStore) appendTo(ctx context.Context, id, field string, v any) error {
	elem, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", field, err)
	}
	tag, err := s.pool().Exec(ctx,
		`UPDATE decision_sessions
		    SET doc = jsonb_set(doc, ARRAY[$2::text], COALESCE(doc->($2::text), '[]'::jsonb) || jsonb_build_array($3::jsonb)),
		        updated_at = now()
		  WHERE id = $1 AND status = 'active'`,
		id, field, elem)
	if err != nil {
		return fmt.Errorf("append %s: %w", field, err)
	}
	return s.checkAffected(ctx, id, tag.RowsAffected())
}

func (s *PostgresStore) SetSynthesis(ctx context.Context, id string, text string, at time.Time) error {
	patch, err := json.Marshal(map[string]any{
		"synthesis":            text,
		"synthesisVersion":     1,
		"synthesisGeneratedAt": at,
	})
	if err != nil {
		return fmt.Errorf("encode synthesis: %w", err)
	}
	tag, err := s.pool().Exec(ctx,
		`UPDATE decision_sessions
		    SET doc = doc || $2::jsonb, synthesis_version = 1, updated_at = now()
		  WHERE id = $1 AND status = 'active'`,
		id, patch)
	if err != nil {
		return fmt.Errorf("set synthesis: %w", err)
	}
	return s.checkAffected(ctx, id, tag.RowsAffected())
}

// ApplyRevision locks the row, trims history in Go and writes back, all in one
// transaction guarded on status and version.
func (s *PostgresStore) ApplyRevision(ctx context.Context, id string, expectedVersion int, update RevisionUpdate) error {
	return s.db.WithTx(ctx, func(tx pgx.Tx) error {
		var doc []byte
		err := tx.QueryRow(ctx,
			`SELECT doc FROM decision_sessions
			  WHERE id = $1 AND status = 'active' AND GREATEST(synthesis_version, 1) = $2
			  FOR UPDATE`,
			id, expectedVersion).Scan(&doc)
		if errors.Is(err, pgx.ErrNoRows) {
			return s.missOrConflict(ctx, tx, id)
		}
		if err != nil {
			return fmt.Errorf("lock session: %w", err)
		}

		var session model.Session
		if err := json.Unmarshal(doc, &session); err != nil {
			return fmt.Errorf("decode session: %w", err)
		}

		patch, err := json.Marshal(map[string]any{
			"synthesis":            update.Synthesis,
			"synthesisVersion":     update.Version,
			"synthesisGeneratedAt": update.RevisedAt,
			"synthesisReviews":     []model.Review{},
			"versionHistory":       lifecycle.PushHistory(session.VersionHistory, update.Snapshot),
		})
		if err != nil {
			return fmt.Errorf("encode revision: %w", err)
		}

		_, err = tx.Exec(ctx,
			`UPDATE decision_sessions
			    SET doc = doc || $2::jsonb, synthesis_version = $3, updated_at = now()
			  WHERE id = $1`,
			id, patch, update.Version)
		if err != nil {
			return fmt.Errorf("apply revision: %w", err)
		}
		return nil
	})
}

func (s *PostgresStore) Finalize(ctx context.Context, id string, f Finalization) error {
	patch, err := json.Marshal(map[string]any{
		"status":        model.SessionStatusFinalized,
		"finalizedAt":   f.FinalizedAt,
		"finalizedBy":   f.FinalizedBy,
		"finalDecision": f.FinalDecision,
	})
	if err != nil {
		return fmt.Errorf("encode finalization: %w", err)
	}
	tag, err := s.pool().Exec(ctx,
		`UPDATE decision_sessions
		    SET doc = doc || $2::jsonb, status = 'finalized', updated_at = now()
		  WHERE id = $1 AND status = 'active'`,
		id, patch)
	if err != nil {
		return fmt.Errorf("finalize session: %w", err)
	}
	return s.checkAffected(ctx, id, tag.RowsAffected())
}

func (s *PostgresStore) checkAffected(ctx context.Context, id string, rows int64) error {
	if rows > 0 {
		return nil
	}
	return s.missOrConflict(ctx, s.pool(), id)
}

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (s *PostgresStore) missOrConflict(ctx context.Context, q querier, id string) error {
	var exists bool
	if err := q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM decision_sessions WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("check session: %w", err)
	}
	if !exists {
		return ErrNotFound
	}
	return ErrConditionFailed
}
