// internal/domain/interaction/dto.go
package interaction

type CreateRequest struct {
	// Contact info for identity resolution; at least one of email/phone.
	Email string `json:"email" binding:"omitempty,email,max=255"`
	Phone string `json:"phone" binding:"omitempty,max=20"`
	Name  string `json:"name" binding:"max=255"`

	Channel   string `json:"channel" binding:"required,oneof=email phone chat"`
	Direction string `json:"direction" binding:"required,oneof=inbound outbound"`

	Subject string `json:"subject" binding:"max=500"`
	Content string `json:"content" binding:"required"`

	Keywords   []string `json:"keywords"`
	Objections []string `json:"objections"`

	FollowUpRequired bool   `json:"follow_up_required"`
	FollowUpDate     string `json:"follow_up_date" binding:"omitempty,datetime=2006-01-02"`
}

type SegmentInput struct {
	Speaker   string  `json:"speaker" binding:"required,max=100"`
	Text      string  `json:"text" binding:"required"`
	OffsetSec float64 `json:"offset_sec" binding:"min=0"`
}

// CallSummary is the structured post-call form an agent submits; it becomes
// a phone interaction.
type CallSummary struct {
	Email string `json:"email" binding:"omitempty,email,max=255"`
	Phone string `json:"phone" binding:"omitempty,max=20"`
	Name  string `json:"name" binding:"max=255"`

	Summary          string         `json:"summary" binding:"required"`
	Transcript       []SegmentInput `json:"transcript"`
	CallDurationSec  int            `json:"call_duration_sec" binding:"min=0"`
	Outcome          string         `json:"outcome" binding:"omitempty,oneof=interested not_interested callback converted no_answer resolved escalated unknown"`
	Intent           string         `json:"intent" binding:"omitempty,oneof=purchase inquiry support complaint follow_up unknown"`
	Keywords         []string       `json:"keywords"`
	Objections       []string       `json:"objections"`
	PointsToRemember []string       `json:"points_to_remember"`
	DoNotRepeat      []string       `json:"do_not_repeat"`
	FollowUpRequired bool           `json:"follow_up_required"`
	FollowUpDate     string         `json:"follow_up_date" binding:"omitempty,datetime=2006-01-02"`
}

type AddNoteRequest struct {
	Text string `json:"text" binding:"required,max=2000"`
}

type CompleteFollowUpRequest struct {
	Completed bool `json:"completed"`
}
