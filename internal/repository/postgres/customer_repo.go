// internal/repository/postgres/customer_repo.go
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"leadscope-service/internal/domain/customer"
	"leadscope-service/internal/domain/insight"
	xerrors "leadscope-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CustomerRepository struct {
	db *pgxpool.Pool
}

func NewCustomerRepository(db *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{db: db}
}

const customerColumns = `
	id, reference, name, phone, email, company,
	preferences, keywords,
	current_intent, intent_confidence, intent_explanation,
	potential_level, potential_score, score_breakdown,
	interaction_count, first_interaction, last_interaction, channel_counts,
	feedback_history, tags, status, created_at, updated_at
`

// Create inserts a new customer. A unique violation on phone or email is
// mapped to ErrConflict so the resolver can retry its lookup.
func (r *CustomerRepository) Create(ctx context.Context, c *customer.Customer) error {
	query := `
		INSERT INTO customers (
			reference, name, phone, email, company,
			preferences, keywords,
			current_intent, intent_confidence, intent_explanation,
			potential_level, potential_score, score_breakdown,
			interaction_count, first_interaction, last_interaction, channel_counts,
			feedback_history, tags, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		RETURNING id, created_at, updated_at
	`

	prefs, keywords, breakdown, channels, feedback, err := marshalCustomerJSON(c)
	if err != nil {
		return err
	}

	err = r.db.QueryRow(ctx, query,
		c.Reference, c.Name, c.Phone, c.Email, c.Company,
		prefs, keywords,
		nullableString(string(c.CurrentIntent)), c.IntentConfidence, c.IntentExplanation,
		nullableString(string(c.PotentialLevel)), c.PotentialScore, breakdown,
		c.InteractionCount, c.FirstInteraction, c.LastInteraction, channels,
		feedback, c.Tags, string(c.Status),
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return xerrors.ErrConflict
		}
		return fmt.Errorf("failed to create customer: %w", err)
	}
	return nil
}

func (r *CustomerRepository) FindByID(ctx context.Context, id int64) (*customer.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`
	return r.scanOne(r.db.QueryRow(ctx, query, id))
}

func (r *CustomerRepository) FindByReference(ctx context.Context, reference string) (*customer.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE reference = $1`
	return r.scanOne(r.db.QueryRow(ctx, query, reference))
}

// FindByEmail matches only non-closed customers: a closed record frees its
// contact keys for a fresh identity.
func (r *CustomerRepository) FindByEmail(ctx context.Context, email string) (*customer.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE lower(email) = lower($1) AND status != 'closed'`
	return r.scanOne(r.db.QueryRow(ctx, query, email))
}

func (r *CustomerRepository) FindByPhone(ctx context.Context, phone string) (*customer.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE phone = $1 AND status != 'closed'`
	return r.scanOne(r.db.QueryRow(ctx, query, phone))
}

// Update writes all mutable fields back.
func (r *CustomerRepository) Update(ctx context.Context, c *customer.Customer) error {
	query := `
		UPDATE customers SET
			name = $2, phone = $3, email = $4, company = $5,
			preferences = $6, keywords = $7,
			current_intent = $8, intent_confidence = $9, intent_explanation = $10,
			potential_level = $11, potential_score = $12, score_breakdown = $13,
			interaction_count = $14, first_interaction = $15, last_interaction = $16,
			channel_counts = $17, feedback_history = $18, tags = $19, status = $20,
			updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`

	prefs, keywords, breakdown, channels, feedback, err := marshalCustomerJSON(c)
	if err != nil {
		return err
	}

	err = r.db.QueryRow(ctx, query,
		c.ID, c.Name, c.Phone, c.Email, c.Company,
		prefs, keywords,
		nullableString(string(c.CurrentIntent)), c.IntentConfidence, c.IntentExplanation,
		nullableString(string(c.PotentialLevel)), c.PotentialScore, breakdown,
		c.InteractionCount, c.FirstInteraction, c.LastInteraction,
		channels, feedback, c.Tags, string(c.Status),
	).Scan(&c.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return xerrors.ErrNotFound
		}
		if isUniqueViolation(err) {
			return xerrors.ErrConflict
		}
		return fmt.Errorf("failed to update customer: %w", err)
	}
	return nil
}

// Delete physically removes a record. Only the merge operation uses this;
// lifecycle "deletion" is otherwise the closed status.
func (r *CustomerRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete customer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

// List returns a filtered, paginated page of customers.
func (r *CustomerRepository) List(ctx context.Context, f *customer.ListFilters) ([]customer.Customer, int64, error) {
	var conds []string
	var args []interface{}

	if f.Status != "" {
		args = append(args, f.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.Level != "" {
		args = append(args, f.Level)
		conds = append(conds, fmt.Sprintf("potential_level = $%d", len(args)))
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf("(name ILIKE $%d OR phone ILIKE $%d OR email ILIKE $%d)", n, n, n))
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM customers`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count customers: %w", err)
	}

	sortBy := f.SortBy
	if sortBy == "" {
		sortBy = "created_at"
	}
	order := "DESC"
	if strings.EqualFold(f.SortOrder, "asc") {
		order = "ASC"
	}

	args = append(args, f.PageSize, (f.Page-1)*f.PageSize)
	query := fmt.Sprintf(`SELECT %s FROM customers%s ORDER BY %s %s NULLS LAST LIMIT $%d OFFSET $%d`,
		customerColumns, where, sortBy, order, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list customers: %w", err)
	}
	defer rows.Close()

	var out []customer.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read customers: %w", err)
	}
	return out, total, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *CustomerRepository) scanOne(row pgx.Row) (*customer.Customer, error) {
	c, err := scanCustomer(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, xerrors.ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func scanCustomer(row rowScanner) (*customer.Customer, error) {
	var c customer.Customer
	var prefs, keywords, breakdown, channels, feedback []byte
	var currentIntent, potentialLevel *string

	err := row.Scan(
		&c.ID, &c.Reference, &c.Name, &c.Phone, &c.Email, &c.Company,
		&prefs, &keywords,
		&currentIntent, &c.IntentConfidence, &c.IntentExplanation,
		&potentialLevel, &c.PotentialScore, &breakdown,
		&c.InteractionCount, &c.FirstInteraction, &c.LastInteraction, &channels,
		&feedback, &c.Tags, &c.Status, &c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan customer: %w", err)
	}

	if currentIntent != nil {
		c.CurrentIntent = insight.Intent(*currentIntent)
	}
	if potentialLevel != nil {
		c.PotentialLevel = insight.PotentialLevel(*potentialLevel)
	}

	for _, pair := range []struct {
		raw []byte
		dst interface{}
	}{
		{prefs, &c.Preferences},
		{keywords, &c.Keywords},
		{breakdown, &c.ScoreBreakdown},
		{channels, &c.ChannelCounts},
		{feedback, &c.FeedbackHistory},
	} {
		if len(pair.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(pair.raw, pair.dst); err != nil {
			return nil, fmt.Errorf("failed to decode customer field: %w", err)
		}
	}
	if c.ChannelCounts == nil {
		c.ChannelCounts = map[string]int{}
	}
	return &c, nil
}

func marshalCustomerJSON(c *customer.Customer) (prefs, keywords, breakdown, channels, feedback []byte, err error) {
	if prefs, err = json.Marshal(c.Preferences); err != nil {
		return nil, nil, nil, nil, nil, fmt.Errorf("failed to marshal preferences: %w", err)
	}
	kw := c.Keywords
	if kw == nil {
		kw = []customer.TaggedKeyword{}
	}
	if keywords, err = json.Marshal(kw); err != nil {
		return nil, nil, nil, nil, nil, fmt.Errorf("failed to marshal keywords: %w", err)
	}
	factors := c.ScoreBreakdown
	if factors == nil {
		factors = []insight.ScoreFactor{}
	}
	if breakdown, err = json.Marshal(factors); err != nil {
		return nil, nil, nil, nil, nil, fmt.Errorf("failed to marshal score breakdown: %w", err)
	}
	if c.ChannelCounts == nil {
		c.ChannelCounts = map[string]int{}
	}
	if channels, err = json.Marshal(c.ChannelCounts); err != nil {
		return nil, nil, nil, nil, nil, fmt.Errorf("failed to marshal channel counts: %w", err)
	}
	fb := c.FeedbackHistory
	if fb == nil {
		fb = []customer.FeedbackEntry{}
	}
	if feedback, err = json.Marshal(fb); err != nil {
		return nil, nil, nil, nil, nil, fmt.Errorf("failed to marshal feedback history: %w", err)
	}
	return prefs, keywords, breakdown, channels, feedback, nil
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
