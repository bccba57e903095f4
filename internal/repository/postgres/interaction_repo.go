// internal/repository/postgres/interaction_repo.go
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"leadscope-service/internal/domain/insight"
	"leadscope-service/internal/domain/interaction"
	xerrors "leadscope-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type InteractionRepository struct {
	db *pgxpool.Pool
}

func NewInteractionRepository(db *pgxpool.Pool) *InteractionRepository {
	return &InteractionRepository{db: db}
}

const interactionColumns = `
	id, customer_id, agent_id, channel, direction,
	subject, content, summary, transcript,
	call_duration_sec, outcome, intent, keywords, objections,
	follow_up_required, follow_up_date, follow_up_completed,
	points_to_remember, do_not_repeat, notes,
	occurred_at, created_at
`

// Create appends a new interaction. Records are immutable afterwards
// except for follow-up completion and appended notes.
func (r *InteractionRepository) Create(ctx context.Context, rec *interaction.Interaction) error {
	query := `
		INSERT INTO interactions (
			customer_id, agent_id, channel, direction,
			subject, content, summary, transcript,
			call_duration_sec, outcome, intent, keywords, objections,
			follow_up_required, follow_up_date, follow_up_completed,
			points_to_remember, do_not_repeat, notes, occurred_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		RETURNING id, created_at
	`

	transcript, notes, err := marshalInteractionJSON(rec)
	if err != nil {
		return err
	}

	if rec.OccurredAt.IsZero() {
		rec.OccurredAt = time.Now()
	}

	err = r.db.QueryRow(ctx, query,
		rec.CustomerID, rec.AgentID, string(rec.Channel), string(rec.Direction),
		rec.Subject, rec.Content, rec.Summary, transcript,
		rec.CallDurationSec, string(rec.Outcome), string(rec.Intent), rec.Keywords, rec.Objections,
		rec.FollowUpRequired, rec.FollowUpDate, rec.FollowUpCompleted,
		rec.PointsToRemember, rec.DoNotRepeat, notes, rec.OccurredAt,
	).Scan(&rec.ID, &rec.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create interaction: %w", err)
	}
	return nil
}

func (r *InteractionRepository) FindByID(ctx context.Context, id int64) (*interaction.Interaction, error) {
	query := `SELECT ` + interactionColumns + ` FROM interactions WHERE id = $1`
	rec, err := scanInteraction(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, xerrors.ErrNotFound
		}
		return nil, err
	}
	return rec, nil
}

// ListRecentByCustomer returns the newest interactions first, which is the
// ordering the classifier's recency weighting depends on.
func (r *InteractionRepository) ListRecentByCustomer(ctx context.Context, customerID int64, limit int) ([]*interaction.Interaction, error) {
	query := `SELECT ` + interactionColumns + ` FROM interactions
		WHERE customer_id = $1 ORDER BY occurred_at DESC, id DESC LIMIT $2`

	rows, err := r.db.Query(ctx, query, customerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list interactions: %w", err)
	}
	defer rows.Close()

	var out []*interaction.Interaction
	for rows.Next() {
		rec, err := scanInteraction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read interactions: %w", err)
	}
	return out, nil
}

// SetFollowUpCompleted flips the only mutable flag on the record.
func (r *InteractionRepository) SetFollowUpCompleted(ctx context.Context, id int64, completed bool) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE interactions SET follow_up_completed = $2 WHERE id = $1 AND follow_up_required`,
		id, completed)
	if err != nil {
		return fmt.Errorf("failed to update follow-up: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

// AppendNote adds one note to the record's note list.
func (r *InteractionRepository) AppendNote(ctx context.Context, id int64, note interaction.Note) error {
	raw, err := json.Marshal(note)
	if err != nil {
		return fmt.Errorf("failed to marshal note: %w", err)
	}

	tag, err := r.db.Exec(ctx,
		`UPDATE interactions SET notes = coalesce(notes, '[]'::jsonb) || $2::jsonb WHERE id = $1`,
		id, raw)
	if err != nil {
		return fmt.Errorf("failed to append note: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

// RepointCustomer moves every interaction from one customer to another;
// used only by the merge operation.
func (r *InteractionRepository) RepointCustomer(ctx context.Context, fromCustomerID, toCustomerID int64) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE interactions SET customer_id = $2 WHERE customer_id = $1`,
		fromCustomerID, toCustomerID)
	if err != nil {
		return 0, fmt.Errorf("failed to repoint interactions: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanInteraction(row rowScanner) (*interaction.Interaction, error) {
	var rec interaction.Interaction
	var transcript, notes []byte
	var channel, direction, outcome, intent string

	err := row.Scan(
		&rec.ID, &rec.CustomerID, &rec.AgentID, &channel, &direction,
		&rec.Subject, &rec.Content, &rec.Summary, &transcript,
		&rec.CallDurationSec, &outcome, &intent, &rec.Keywords, &rec.Objections,
		&rec.FollowUpRequired, &rec.FollowUpDate, &rec.FollowUpCompleted,
		&rec.PointsToRemember, &rec.DoNotRepeat, &notes,
		&rec.OccurredAt, &rec.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan interaction: %w", err)
	}

	rec.Channel = insight.Channel(channel)
	rec.Direction = insight.Direction(direction)
	rec.Outcome = interaction.Outcome(outcome)
	rec.Intent = insight.Intent(intent)

	if len(transcript) > 0 {
		if err := json.Unmarshal(transcript, &rec.Transcript); err != nil {
			return nil, fmt.Errorf("failed to decode transcript: %w", err)
		}
	}
	if len(notes) > 0 {
		if err := json.Unmarshal(notes, &rec.Notes); err != nil {
			return nil, fmt.Errorf("failed to decode notes: %w", err)
		}
	}
	return &rec, nil
}

func marshalInteractionJSON(rec *interaction.Interaction) (transcript, notes []byte, err error) {
	t := rec.Transcript
	if t == nil {
		t = []interaction.TranscriptSegment{}
	}
	if transcript, err = json.Marshal(t); err != nil {
		return nil, nil, fmt.Errorf("failed to marshal transcript: %w", err)
	}
	n := rec.Notes
	if n == nil {
		n = []interaction.Note{}
	}
	if notes, err = json.Marshal(n); err != nil {
		return nil, nil, fmt.Errorf("failed to marshal notes: %w", err)
	}
	return transcript, notes, nil
}
