package wishlist

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

var (
	// ErrUnauthenticated is returned when a mutation or hydrate runs without a signed in user.
	ErrUnauthenticated = errors.New("no authenticated user")
	// ErrRemoteFailure means the remote store rejected or could not be reached.
	// The optimistic change has been rolled back when this is returned from a mutation.
	ErrRemoteFailure = errors.New("remote wishlist store failed")
	// ErrStaleMutation marks a rollback that was discarded because the set was
	// cleared (sign-out or user switch) while the remote call was in flight.
	ErrStaleMutation = errors.New("mutation outlived its wishlist state")
	// ErrPendingChange is returned when the caller gave up waiting for an
	// earlier change of the same item to resolve.
	ErrPendingChange = errors.New("item has a pending change")
	ErrInvalidItem   = errors.New("invalid item id")
)

// reservedIDs collide with fixed routes under /wishlist.
var reservedIDs = []string{"items", "events", "refresh"}

// ChangeKind names what happened to the membership set.
type ChangeKind string

const (
	ChangeHydrated   ChangeKind = "hydrated"
	ChangeAdded      ChangeKind = "added"
	ChangeRemoved    ChangeKind = "removed"
	ChangeRolledBack ChangeKind = "rolled_back"
	ChangeCleared    ChangeKind = "cleared"
)

// Change is delivered to observers after the membership set changed.
// Observers re-read the store instead of keeping their own copy; Member is
// the membership of ItemID right after the change, for convenience.
type Change struct {
	Kind   ChangeKind `json:"kind"`
	ItemID string     `json:"item_id,omitzero"`
	Member bool       `json:"member"`
}

func (c Change) String() string {
	if c.ItemID == "" {
		return string(c.Kind)
	}
	return fmt.Sprintf("%s %s (member=%t)", c.Kind, c.ItemID, c.Member)
}

// ValidateItemID rejects ids the remote store could never hold.
func ValidateItemID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidItem)
	}
	if len(id) > 128 {
		return fmt.Errorf("%w: id is too long", ErrInvalidItem)
	}
	if slices.Contains(reservedIDs, id) {
		return fmt.Errorf("%w: %q is reserved", ErrInvalidItem, id)
	}
	return nil
}

type EventType string

const (
	EventItemAdded   EventType = "wishlist.item_added"
	EventItemRemoved EventType = "wishlist.item_removed"
)

// Event is the confirmed, remote-acknowledged counterpart of a Change,
// published for other services.
type Event struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	UserID     string    `json:"user_id"`
	ItemID     string    `json:"item_id"`
	OccurredAt time.Time `json:"occurred_at"`
}
