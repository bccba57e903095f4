// internal/domain/interaction/entity.go
package interaction

import (
	"database/sql"
	"time"

	"leadscope-service/internal/domain/insight"

	"github.com/lib/pq"
)

type Outcome string

const (
	OutcomeInterested    Outcome = "interested"
	OutcomeNotInterested Outcome = "not_interested"
	OutcomeCallback      Outcome = "callback"
	OutcomeConverted     Outcome = "converted"
	OutcomeNoAnswer      Outcome = "no_answer"
	OutcomeResolved      Outcome = "resolved"
	OutcomeEscalated     Outcome = "escalated"
	OutcomeUnknown       Outcome = "unknown"
)

// TranscriptSegment is one speaker turn of a call transcript, ordered by
// offset from call start.
type TranscriptSegment struct {
	Speaker   string  `json:"speaker"`
	Text      string  `json:"text"`
	OffsetSec float64 `json:"offset_sec"`
}

// Note is appended by agents after the fact; the rest of the record stays
// immutable once written.
type Note struct {
	Text    string    `json:"text"`
	AgentID int64     `json:"agent_id"`
	AddedAt time.Time `json:"added_at"`
}

// Interaction is one exchange with a customer. After creation only the
// follow-up completion fields and the notes list may change.
type Interaction struct {
	ID         int64         `json:"id" db:"id"`
	CustomerID int64         `json:"customer_id" db:"customer_id"`
	AgentID    sql.NullInt64 `json:"agent_id,omitempty" db:"agent_id"`

	Channel   insight.Channel   `json:"channel" db:"channel"`
	Direction insight.Direction `json:"direction" db:"direction"`

	Subject    string              `json:"subject,omitempty" db:"subject"`
	Content    string              `json:"content" db:"content"`
	Summary    string              `json:"summary,omitempty" db:"summary"`
	Transcript []TranscriptSegment `json:"transcript,omitempty" db:"transcript"`

	CallDurationSec int     `json:"call_duration_sec,omitempty" db:"call_duration_sec"`
	Outcome         Outcome `json:"outcome" db:"outcome"`

	Intent     insight.Intent `json:"intent" db:"intent"`
	Keywords   pq.StringArray `json:"keywords" db:"keywords"`
	Objections pq.StringArray `json:"objections" db:"objections"`

	FollowUpRequired  bool         `json:"follow_up_required" db:"follow_up_required"`
	FollowUpDate      sql.NullTime `json:"follow_up_date,omitempty" db:"follow_up_date"`
	FollowUpCompleted bool         `json:"follow_up_completed" db:"follow_up_completed"`

	PointsToRemember pq.StringArray `json:"points_to_remember" db:"points_to_remember"`
	DoNotRepeat      pq.StringArray `json:"do_not_repeat" db:"do_not_repeat"`
	Notes            []Note         `json:"notes" db:"notes"`

	OccurredAt time.Time `json:"occurred_at" db:"occurred_at"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// HasConfirmedIntent reports whether this record carries an intent settled
// by an agent or post-call summary rather than left unknown.
func (i *Interaction) HasConfirmedIntent() bool {
	return i.Intent != "" && i.Intent != insight.IntentUnknown
}
