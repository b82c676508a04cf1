package domain

import (
	"errors"
	"fmt"
	"time"
)

// DraftState is the one-way lifecycle marker of a draft.
type DraftState string

const (
	DraftStateUnsent DraftState = "UNSENT"
	DraftStateSent   DraftState = "SENT"
)

const (
	MaxTitleLength = 30
	MaxBodyLength  = 250
)

// ErrDraftAlreadySent is returned by transitions attempted on a sent draft.
var ErrDraftAlreadySent = errors.New("draft already sent")

// DraftStateFromSent maps the persisted sent flag onto a state.
func DraftStateFromSent(sent bool) DraftState {
	if sent {
		return DraftStateSent
	}
	return DraftStateUnsent
}

// Draft is a message being composed by a sender.
type Draft struct {
	ID         int64
	SenderID   int64
	ComposedAt time.Time
	Title      string
	Body       string
	State      DraftState
}

// IsSent reports whether the draft is frozen.
func (d *Draft) IsSent() bool {
	return d.State == DraftStateSent
}

// Edit applies the present fields. Sent drafts are immutable.
func (d *Draft) Edit(title, body *string) error {
	if err := d.ensureUnsent(); err != nil {
		return err
	}
	if title != nil {
		d.Title = *title
	}
	if body != nil {
		d.Body = *body
	}
	return nil
}

// MarkSent moves the draft from UNSENT to SENT.
func (d *Draft) MarkSent() error {
	if err := d.ensureUnsent(); err != nil {
		return err
	}
	d.State = DraftStateSent
	return nil
}

func (d *Draft) ensureUnsent() error {
	switch d.State {
	case DraftStateUnsent:
		return nil
	case DraftStateSent:
		return ErrDraftAlreadySent
	default:
		return fmt.Errorf("draft %d: unknown state %q", d.ID, d.State)
	}
}
