// Package models defines analytics events. Each event references exactly
// one parent entity; the ParentRef constructors make anything else
// unrepresentable, which is the whole point of the type.
package models

import (
	"time"

	"github.com/google/uuid"

	"linkdeck/internal/clientcontext"
)

// EventKind is the closed set of tracked interactions.
type EventKind string

const (
	KindClick       EventKind = "click"
	KindPageView    EventKind = "pageview"
	KindButtonClick EventKind = "buttonclick"
	KindProfileView EventKind = "profileview"
)

// ParseKind validates a wire-format kind.
func ParseKind(s string) (EventKind, bool) {
	switch EventKind(s) {
	case KindClick, KindPageView, KindButtonClick, KindProfileView:
		return EventKind(s), true
	default:
		return "", false
	}
}

// ParentRef is the single parent entity an event references. Construct one
// with the Kind-specific helpers; the zero value is invalid.
type ParentRef struct {
	kind EventKind
	id   uuid.UUID
}

func ClickParent(linkID uuid.UUID) ParentRef {
	return ParentRef{kind: KindClick, id: linkID}
}

func PageParent(pageID uuid.UUID) ParentRef {
	return ParentRef{kind: KindPageView, id: pageID}
}

func ButtonParent(buttonID uuid.UUID) ParentRef {
	return ParentRef{kind: KindButtonClick, id: buttonID}
}

func ProfileParent(profileID uuid.UUID) ParentRef {
	return ParentRef{kind: KindProfileView, id: profileID}
}

// Kind returns the event kind this parent belongs to.
func (p ParentRef) Kind() EventKind { return p.kind }

// ID returns the parent entity ID.
func (p ParentRef) ID() uuid.UUID { return p.id }

// Valid reports whether the ref was built by a constructor with a real ID.
func (p ParentRef) Valid() bool {
	return p.kind != "" && p.id != uuid.Nil
}

// MaxFieldLen caps free-text fields before persistence.
const MaxFieldLen = 2048

// Event is one recorded interaction. Created exactly once, never mutated.
type Event struct {
	ID        uuid.UUID
	Kind      EventKind
	ParentID  uuid.UUID
	Country   string // 2-letter code, empty when unknown
	Device    clientcontext.DeviceType
	Referrer  string
	Platform  string
	UserAgent string
	UTMSource string
	UTMMedium string
	UTMName   string
	Timestamp time.Time
}

// NewEvent builds an event from a parent ref and the resolved visitor
// context, truncating long fields.
func NewEvent(parent ParentRef, visitor clientcontext.Context, now time.Time) *Event {
	return &Event{
		ID:        uuid.New(),
		Kind:      parent.Kind(),
		ParentID:  parent.ID(),
		Country:   visitor.Country,
		Device:    visitor.Device,
		Referrer:  Truncate(visitor.Referrer),
		Platform:  visitor.ReferrerPlatform,
		UserAgent: Truncate(visitor.UserAgent),
		UTMSource: visitor.UTM.Source,
		UTMMedium: visitor.UTM.Medium,
		UTMName:   visitor.UTM.Campaign,
		Timestamp: now,
	}
}

// Truncate enforces MaxFieldLen on free-text fields.
func Truncate(s string) string {
	if len(s) > MaxFieldLen {
		return s[:MaxFieldLen]
	}
	return s
}
