package notification

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gridledger/billing/internal/domain/identity"
	"github.com/gridledger/billing/internal/domain/shared"
)

// Kind is the category of a notice
type Kind string

const (
	KindReading Kind = "READING" // Abnormal consumption reading
	KindPayment Kind = "PAYMENT" // Debt left after a payment
)

// IsValid reports whether the kind is known
func (k Kind) IsValid() bool {
	return k == KindReading || k == KindPayment
}

// ParseKind converts a case-insensitive kind name into a Kind
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToUpper(strings.TrimSpace(s)))
	if !k.IsValid() {
		return "", shared.NewValidationError("kind", "must be READING or PAYMENT")
	}
	return k, nil
}

// MaxNoteLength is the longest note a notice can carry
const MaxNoteLength = 500

// Notification is an alert raised for operators. Review is one-way.
type Notification struct {
	shared.BaseAggregateRoot
	Kind       Kind
	ReadingID  *uuid.UUID // Set for READING notices
	PaymentID  *uuid.UUID // Set for PAYMENT notices
	Note       string
	Reviewed   bool
	ReviewedAt *time.Time
	ReviewedBy *uuid.UUID
}

// New creates an unreviewed notice of kind referencing refID
func New(kind Kind, refID uuid.UUID, note string) (*Notification, error) {
	if !kind.IsValid() {
		return nil, shared.NewValidationError("kind", "must be READING or PAYMENT")
	}
	if refID == uuid.Nil {
		return nil, shared.NewValidationError("reference_id", "cannot be empty")
	}
	note = strings.TrimSpace(note)
	if note == "" {
		return nil, shared.NewValidationError("note", "cannot be empty")
	}
	if len(note) > MaxNoteLength {
		return nil, shared.NewValidationError("note", "cannot exceed 500 characters")
	}

	n := &Notification{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Kind:              kind,
		Note:              note,
	}
	ref := refID
	switch kind {
	case KindReading:
		n.ReadingID = &ref
	case KindPayment:
		n.PaymentID = &ref
	}

	n.AddDomainEvent(NewNotificationRaisedEvent(n))

	return n, nil
}

// ReferenceID returns the reading or payment the notice is about
func (n *Notification) ReferenceID() uuid.UUID {
	if n.ReadingID != nil {
		return *n.ReadingID
	}
	if n.PaymentID != nil {
		return *n.PaymentID
	}
	return uuid.Nil
}

// MarkReviewed acknowledges the notice on behalf of actor. It reports
// whether the state changed; a notice already reviewed is left untouched.
func (n *Notification) MarkReviewed(actor identity.Actor, now time.Time) (bool, error) {
	if !CanReview(actor.Role, n.Kind) {
		return false, shared.NewPermissionDeniedError(
			"role " + actor.Role.String() + " cannot review " + string(n.Kind) + " notifications")
	}
	if n.Reviewed {
		return false, nil
	}

	n.Reviewed = true
	n.ReviewedAt = &now
	if actor.UserID != uuid.Nil {
		by := actor.UserID
		n.ReviewedBy = &by
	}
	n.UpdatedAt = now
	n.IncrementVersion()

	n.AddDomainEvent(NewNotificationReviewedEvent(n))

	return true, nil
}
