// internal/service/identity/resolver.go
package identity

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"leadscope-service/internal/domain/customer"
	xerrors "leadscope-service/internal/pkg/errors"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// CustomerStore is the slice of persistence the resolver needs.
type CustomerStore interface {
	FindByID(ctx context.Context, id int64) (*customer.Customer, error)
	FindByEmail(ctx context.Context, email string) (*customer.Customer, error)
	FindByPhone(ctx context.Context, phone string) (*customer.Customer, error)
	Create(ctx context.Context, c *customer.Customer) error
	Update(ctx context.Context, c *customer.Customer) error
	Delete(ctx context.Context, id int64) error
}

// InteractionStore is the slice the merge operation needs.
type InteractionStore interface {
	RepointCustomer(ctx context.Context, fromCustomerID, toCustomerID int64) (int64, error)
}

var (
	autoNamedRe  = regexp.MustCompile(`^Customer \d+$`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

const placeholderPhonePrefix = "pending-"

// Resolver deduplicates raw contact info into one logical customer.
// Find-or-create runs under a per-identity lock plus a retry on the
// store's uniqueness conflict, so concurrent events for the same person
// cannot mint two records.
type Resolver struct {
	customers    CustomerStore
	interactions InteractionStore
	logger       *zap.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewResolver(customers CustomerStore, interactions InteractionStore, logger *zap.Logger) *Resolver {
	return &Resolver{
		customers:    customers,
		interactions: interactions,
		logger:       logger,
		locks:        make(map[string]*sync.Mutex),
	}
}

// Resolve finds or creates the customer for the given contact info.
// Requires at least one of email/phone. When updateIfFound is set, missing
// contact fields are backfilled and placeholder names upgraded on the
// matched record.
func (r *Resolver) Resolve(ctx context.Context, email, phone, name string, updateIfFound bool) (*customer.Customer, bool, error) {
	email = NormalizeEmail(email)
	phone = NormalizePhone(phone)
	name = strings.TrimSpace(name)

	if email == "" && phone == "" {
		return nil, false, xerrors.ErrIdentity
	}

	unlock := r.lockIdentity(email, phone)
	defer unlock()

	found, err := r.lookup(ctx, email, phone)
	if err != nil {
		return nil, false, err
	}
	if found != nil {
		if updateIfFound {
			if err := r.backfill(ctx, found, email, phone, name); err != nil {
				return nil, false, err
			}
		}
		return found, false, nil
	}

	created, err := r.create(ctx, email, phone, name)
	if err == nil {
		return created, true, nil
	}

	// A concurrent resolve can win the race on the uniqueness constraint;
	// in that case the record now exists, so look it up again.
	if xerrors.Is(err, xerrors.ErrConflict) {
		found, lookupErr := r.lookup(ctx, email, phone)
		if lookupErr != nil {
			return nil, false, lookupErr
		}
		if found != nil {
			return found, false, nil
		}
	}
	return nil, false, err
}

func (r *Resolver) lookup(ctx context.Context, email, phone string) (*customer.Customer, error) {
	if email != "" {
		c, err := r.customers.FindByEmail(ctx, email)
		if err != nil && !xerrors.Is(err, xerrors.ErrNotFound) {
			return nil, err
		}
		if c != nil {
			return c, nil
		}
	}
	if phone != "" {
		c, err := r.customers.FindByPhone(ctx, phone)
		if err != nil && !xerrors.Is(err, xerrors.ErrNotFound) {
			return nil, err
		}
		if c != nil {
			return c, nil
		}
	}
	return nil, nil
}

// backfill fills missing contact fields and upgrades placeholder names.
// It never overwrites a real name or real contact info.
func (r *Resolver) backfill(ctx context.Context, c *customer.Customer, email, phone, name string) error {
	changed := false

	if email != "" && !c.Email.Valid {
		c.Email.String = email
		c.Email.Valid = true
		changed = true
	}
	if phone != "" && IsPlaceholderPhone(c.Phone) {
		c.Phone = phone
		changed = true
	}
	if name != "" && IsPlaceholderName(c.Name, c.Email.String) && !IsPlaceholderName(name, "") {
		c.Name = name
		changed = true
	}

	if !changed {
		return nil
	}
	if err := r.customers.Update(ctx, c); err != nil {
		return fmt.Errorf("failed to backfill customer %d: %w", c.ID, err)
	}
	r.logger.Info("customer identity backfilled", zap.Int64("customer_id", c.ID))
	return nil
}

func (r *Resolver) create(ctx context.Context, email, phone, name string) (*customer.Customer, error) {
	c := &customer.Customer{
		Reference: ulid.Make().String(),
		Name:      SynthesizeName(name, email, phone),
		Phone:     phone,
		Status:    customer.StatusActive,
		Preferences: customer.Preferences{
			BudgetTier: customer.BudgetUnspecified,
		},
		ChannelCounts: map[string]int{},
	}
	if email != "" {
		c.Email.String = email
		c.Email.Valid = true
	}
	if phone == "" {
		// The store enforces phone uniqueness, so an absent phone gets a
		// globally unique synthetic value instead of an empty string.
		c.Phone = placeholderPhonePrefix + ulid.Make().String()
	}

	if err := r.customers.Create(ctx, c); err != nil {
		return nil, err
	}
	r.logger.Info("customer created",
		zap.Int64("customer_id", c.ID),
		zap.String("reference", c.Reference),
	)
	return c, nil
}

// Merge re-points all interactions from a duplicate identity onto the
// primary, unions missing fields, sums counters and deletes the duplicate.
// Admin-triggered only; never automatic.
func (r *Resolver) Merge(ctx context.Context, primaryID, duplicateID int64) (*customer.Customer, error) {
	if primaryID == duplicateID {
		return nil, fmt.Errorf("%w: cannot merge a customer into itself", xerrors.ErrInvalidInput)
	}

	primary, err := r.customers.FindByID(ctx, primaryID)
	if err != nil {
		return nil, fmt.Errorf("primary customer: %w", err)
	}
	duplicate, err := r.customers.FindByID(ctx, duplicateID)
	if err != nil {
		return nil, fmt.Errorf("duplicate customer: %w", err)
	}

	moved, err := r.interactions.RepointCustomer(ctx, duplicateID, primaryID)
	if err != nil {
		return nil, fmt.Errorf("failed to repoint interactions: %w", err)
	}

	if !primary.Email.Valid && duplicate.Email.Valid {
		primary.Email = duplicate.Email
	}
	if IsPlaceholderPhone(primary.Phone) && !IsPlaceholderPhone(duplicate.Phone) {
		primary.Phone = duplicate.Phone
	}
	if !primary.Company.Valid && duplicate.Company.Valid {
		primary.Company = duplicate.Company
	}
	if IsPlaceholderName(primary.Name, primary.Email.String) && !IsPlaceholderName(duplicate.Name, duplicate.Email.String) {
		primary.Name = duplicate.Name
	}

	primary.InteractionCount += duplicate.InteractionCount
	if duplicate.FirstInteraction.Valid &&
		(!primary.FirstInteraction.Valid || duplicate.FirstInteraction.Time.Before(primary.FirstInteraction.Time)) {
		primary.FirstInteraction = duplicate.FirstInteraction
	}
	if duplicate.LastInteraction.Valid &&
		(!primary.LastInteraction.Valid || duplicate.LastInteraction.Time.After(primary.LastInteraction.Time)) {
		primary.LastInteraction = duplicate.LastInteraction
	}
	if primary.ChannelCounts == nil {
		primary.ChannelCounts = map[string]int{}
	}
	for ch, n := range duplicate.ChannelCounts {
		primary.ChannelCounts[ch] += n
	}
	primary.Keywords = append(primary.Keywords, duplicate.Keywords...)
	primary.FeedbackHistory = append(primary.FeedbackHistory, duplicate.FeedbackHistory...)

	// Free the duplicate's contact keys before updating the primary so the
	// uniqueness constraints cannot collide.
	if err := r.customers.Delete(ctx, duplicateID); err != nil {
		return nil, fmt.Errorf("failed to delete duplicate: %w", err)
	}
	if err := r.customers.Update(ctx, primary); err != nil {
		return nil, fmt.Errorf("failed to update primary: %w", err)
	}

	r.logger.Info("customers merged",
		zap.Int64("primary_id", primaryID),
		zap.Int64("duplicate_id", duplicateID),
		zap.Int64("interactions_moved", moved),
	)
	return primary, nil
}

// lockIdentity serializes find-or-create per normalized identity key.
func (r *Resolver) lockIdentity(email, phone string) func() {
	key := "email:" + email
	if email == "" {
		key = "phone:" + phone
	}

	r.mu.Lock()
	lock, ok := r.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[key] = lock
	}
	r.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// NormalizeEmail lowercases and trims.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizePhone strips all whitespace.
func NormalizePhone(phone string) string {
	return whitespaceRe.ReplaceAllString(phone, "")
}

// IsPlaceholderName reports whether a stored name was synthesized rather
// than supplied by a human: auto-numbered, "Unknown", or just the email
// local part.
func IsPlaceholderName(name, email string) bool {
	name = strings.TrimSpace(name)
	if name == "" || name == "Unknown" {
		return true
	}
	if autoNamedRe.MatchString(name) {
		return true
	}
	if email != "" {
		if at := strings.IndexByte(email, '@'); at > 0 && strings.EqualFold(name, email[:at]) {
			return true
		}
	}
	return false
}

// IsPlaceholderPhone reports whether the phone was synthesized to satisfy
// the uniqueness constraint.
func IsPlaceholderPhone(phone string) bool {
	return phone == "" || strings.HasPrefix(phone, placeholderPhonePrefix)
}

// SynthesizeName picks the best available display name: explicit name,
// then email local part, then "Customer" + last 4 phone digits, then
// "Unknown".
func SynthesizeName(name, email, phone string) string {
	if name != "" {
		return name
	}
	if email != "" {
		if at := strings.IndexByte(email, '@'); at > 0 {
			return email[:at]
		}
	}
	if digits := lastDigits(phone, 4); digits != "" {
		return "Customer " + digits
	}
	return "Unknown"
}

func lastDigits(phone string, n int) string {
	var digits []byte
	for i := 0; i < len(phone); i++ {
		if phone[i] >= '0' && phone[i] <= '9' {
			digits = append(digits, phone[i])
		}
	}
	if len(digits) < n {
		return ""
	}
	return string(digits[len(digits)-n:])
}
