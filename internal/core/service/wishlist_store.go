package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"

	"go-wishlist-app/internal/core/domain/catalog"
	"go-wishlist-app/internal/core/domain/wishlist"
	"go-wishlist-app/internal/core/ports"
	"go-wishlist-app/internal/observability"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const DefaultRemoteTimeout = 10 * time.Second

type StoreOptions struct {
	// RemoteTimeout bounds every gateway call. Zero means DefaultRemoteTimeout.
	RemoteTimeout time.Duration
}

// WishlistStore owns the membership set of one signed in user.
//
// Add and Remove apply their change locally first and confirm it with the
// gateway afterwards. Mutations on the same item run one at a time in
// arrival order, so a later call always sees the resolved outcome of an
// earlier one. Changes still awaiting confirmation survive a Hydrate; a
// failed confirmation is reverted unless the set was cleared meanwhile.
type WishlistStore struct {
	gateway ports.WishlistGateway
	session ports.SessionProvider
	logger  *slog.Logger
	timeout time.Duration

	locks *itemLocks

	mu       sync.RWMutex
	owner    string
	hydrated bool
	epoch    uint64
	members  map[string]struct{}
	versions map[string]uint64
	// pending holds transitions applied locally but not yet confirmed.
	pending map[string]transition

	obsMu     sync.Mutex
	observers map[*Subscription]struct{}
}

func NewWishlistStore(gateway ports.WishlistGateway, session ports.SessionProvider, logger *slog.Logger, opts StoreOptions) *WishlistStore {
	if opts.RemoteTimeout <= 0 {
		opts.RemoteTimeout = DefaultRemoteTimeout
	}
	return &WishlistStore{
		gateway:   gateway,
		session:   session,
		logger:    logger,
		timeout:   opts.RemoteTimeout,
		locks:     newItemLocks(),
		members:   make(map[string]struct{}),
		versions:  make(map[string]uint64),
		pending:   make(map[string]transition),
		observers: make(map[*Subscription]struct{}),
	}
}

// transition sets the membership of one item.
type transition struct {
	itemID string
	member bool
}

func (t transition) inverse() transition {
	return transition{itemID: t.itemID, member: !t.member}
}

// stamp identifies the state an optimistic transition was applied to.
// Only Clear and a change of owner move the epoch.
type stamp struct {
	epoch   uint64
	version uint64
}

// Hydrate replaces the set with the remote contents for the current user,
// with changes still awaiting confirmation laid on top. On failure only
// those changes remain and the error wraps ErrRemoteFailure.
func (s *WishlistStore) Hydrate(ctx context.Context) error {
	userID, ok := s.session.CurrentUser(ctx)
	if !ok {
		return wishlist.ErrUnauthenticated
	}
	return s.hydrate(ctx, userID)
}

func (s *WishlistStore) hydrate(ctx context.Context, userID string) error {
	ctx, span := tracer.Start(ctx, "WishlistStore.Hydrate", trace.WithAttributes(
		attribute.String("user.id", userID),
	))
	defer span.End()

	rctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	ids, err := s.gateway.ItemIDs(rctx, userID)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.owner != userID {
		s.epoch++
		s.pending = make(map[string]transition)
	}
	s.owner = userID
	s.members = make(map[string]struct{}, len(ids))
	for _, id := range ids {
		s.members[id] = struct{}{}
	}
	s.overlayPending()
	if err != nil {
		s.hydrated = false
		s.broadcast(wishlist.Change{Kind: wishlist.ChangeHydrated})
		span.RecordError(err)
		span.SetStatus(codes.Error, "hydrate failed")
		s.logger.ErrorContext(ctx, "failed to hydrate wishlist", "user_id", userID, "error", err)
		return fmt.Errorf("%w: hydrate: %w", wishlist.ErrRemoteFailure, err)
	}
	s.hydrated = true
	s.broadcast(wishlist.Change{Kind: wishlist.ChangeHydrated})
	s.logger.InfoContext(ctx, "wishlist hydrated", "user_id", userID, "count", len(ids))
	return nil
}

// overlayPending reapplies unconfirmed transitions on top of freshly loaded
// members. Their versions are kept so the pending resolution still matches.
func (s *WishlistStore) overlayPending() {
	versions := make(map[string]uint64, len(s.pending))
	for id, t := range s.pending {
		versions[id] = s.versions[id]
		if t.member {
			s.members[id] = struct{}{}
		} else {
			delete(s.members, id)
		}
	}
	s.versions = versions
}

// IsMember reports the current, possibly optimistic, membership of itemID.
func (s *WishlistStore) IsMember(itemID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.members[itemID]
	return ok
}

// Members returns the current item ids, sorted.
func (s *WishlistStore) Members() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.members))
	for id := range s.members {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Owner returns the user the set belongs to, or "" when signed out.
func (s *WishlistStore) Owner() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.owner
}

func (s *WishlistStore) Add(ctx context.Context, itemID string) error {
	_, err := s.mutate(ctx, transition{itemID: itemID, member: true})
	return err
}

func (s *WishlistStore) Remove(ctx context.Context, itemID string) error {
	_, err := s.mutate(ctx, transition{itemID: itemID, member: false})
	return err
}

// Clear forgets the set and its owner.
func (s *WishlistStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.epoch++
	s.owner = ""
	s.hydrated = false
	s.members = make(map[string]struct{})
	s.versions = make(map[string]uint64)
	s.pending = make(map[string]transition)
	s.broadcast(wishlist.Change{Kind: wishlist.ChangeCleared})
}

// SyncSession follows the session provider: a new user is hydrated, a
// signed out user is cleared, and a switch of user does both. A set whose
// last hydrate failed is hydrated again.
func (s *WishlistStore) SyncSession(ctx context.Context) error {
	userID, ok := s.session.CurrentUser(ctx)

	s.mu.RLock()
	owner, hydrated := s.owner, s.hydrated
	s.mu.RUnlock()

	switch {
	case !ok && owner == "":
		return nil
	case !ok:
		s.logger.InfoContext(ctx, "session ended, clearing wishlist", "user_id", owner)
		s.Clear()
		return nil
	case userID == owner && hydrated:
		return nil
	case owner != "" && userID != owner:
		s.logger.InfoContext(ctx, "session user changed, reloading wishlist", "from", owner, "to", userID)
		s.Clear()
	}
	return s.hydrate(ctx, userID)
}

// mutate reports whether the remote store confirmed a change of membership.
func (s *WishlistStore) mutate(ctx context.Context, t transition) (bool, error) {
	op := "remove"
	if t.member {
		op = "add"
	}
	if err := wishlist.ValidateItemID(t.itemID); err != nil {
		return false, err
	}

	userID, ok := s.session.CurrentUser(ctx)
	if !ok {
		observability.RecordMutation(op, "unauthenticated")
		return false, wishlist.ErrUnauthenticated
	}
	if userID != s.Owner() {
		if err := s.SyncSession(ctx); err != nil {
			s.logger.WarnContext(ctx, "continuing mutation without hydrated wishlist", "user_id", userID, "error", err)
		}
	}

	ctx, span := tracer.Start(ctx, "WishlistStore."+op, trace.WithAttributes(
		attribute.String("user.id", userID),
		attribute.String("item.id", t.itemID),
	))
	defer span.End()

	release, err := s.locks.acquire(ctx, t.itemID)
	if err != nil {
		observability.RecordMutation(op, "canceled")
		return false, fmt.Errorf("%w on %s: %w", wishlist.ErrPendingChange, t.itemID, err)
	}
	defer release()

	st, changed, err := s.apply(userID, t)
	if err != nil {
		observability.RecordMutation(op, "unauthenticated")
		return false, err
	}
	if !changed {
		observability.RecordMutation(op, "noop")
		return false, nil
	}

	// The confirmation outlives the caller so the optimistic change is
	// always resolved.
	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()
	if t.member {
		err = s.gateway.Insert(rctx, userID, t.itemID)
	} else {
		err = s.gateway.Delete(rctx, userID, t.itemID)
	}
	if err == nil {
		s.confirm(t, st)
		observability.RecordMutation(op, "ok")
		return true, nil
	}

	// The remote store is healthy but has no such item.
	if errors.Is(err, catalog.ErrNotFound) {
		observability.RecordMutation(op, "not_found")
		observability.RecordRollback(s.rollback(t.inverse(), st))
		return false, fmt.Errorf("%s %s: %w", op, t.itemID, err)
	}

	observability.RecordMutation(op, "remote_failure")
	span.RecordError(err)
	span.SetStatus(codes.Error, "remote confirmation failed")

	if !s.rollback(t.inverse(), st) {
		observability.RecordRollback(false)
		s.logger.WarnContext(ctx, "discarding stale rollback", "op", op, "item_id", t.itemID, "error", err)
		return false, fmt.Errorf("%w: %w: %s %s: %w", wishlist.ErrRemoteFailure, wishlist.ErrStaleMutation, op, t.itemID, err)
	}
	observability.RecordRollback(true)
	s.logger.WarnContext(ctx, "remote wishlist change failed, rolled back", "op", op, "item_id", t.itemID, "error", err)
	return false, fmt.Errorf("%w: %s %s: %w", wishlist.ErrRemoteFailure, op, t.itemID, err)
}

// apply performs t for userID and reports whether membership changed.
func (s *WishlistStore) apply(userID string, t transition) (stamp, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.owner != userID {
		return stamp{}, false, fmt.Errorf("%w: session changed", wishlist.ErrUnauthenticated)
	}
	if _, member := s.members[t.itemID]; member == t.member {
		return stamp{}, false, nil
	}
	s.set(t)
	s.pending[t.itemID] = t
	s.broadcast(changeFor(t, false))
	return stamp{epoch: s.epoch, version: s.versions[t.itemID]}, true, nil
}

// confirm settles a pending transition the remote store accepted.
func (s *WishlistStore) confirm(t transition, st stamp) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.epoch == st.epoch {
		delete(s.pending, t.itemID)
	}
}

// rollback applies t only if the item is still in the state stamped by st.
func (s *WishlistStore) rollback(t transition, st stamp) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.epoch != st.epoch {
		return false
	}
	delete(s.pending, t.itemID)
	if s.versions[t.itemID] != st.version {
		return false
	}
	s.set(t)
	s.broadcast(changeFor(t, true))
	return true
}

func (s *WishlistStore) set(t transition) {
	if t.member {
		s.members[t.itemID] = struct{}{}
	} else {
		delete(s.members, t.itemID)
	}
	s.versions[t.itemID]++
}

func changeFor(t transition, rolledBack bool) wishlist.Change {
	kind := wishlist.ChangeRemoved
	switch {
	case rolledBack:
		kind = wishlist.ChangeRolledBack
	case t.member:
		kind = wishlist.ChangeAdded
	}
	return wishlist.Change{Kind: kind, ItemID: t.itemID, Member: t.member}
}

// Subscription receives changes of a WishlistStore until closed.
type Subscription struct {
	ch    chan wishlist.Change
	store *WishlistStore
	once  sync.Once
}

func (sub *Subscription) C() <-chan wishlist.Change {
	return sub.ch
}

func (sub *Subscription) Close() {
	sub.once.Do(func() {
		sub.store.obsMu.Lock()
		delete(sub.store.observers, sub)
		sub.store.obsMu.Unlock()
		close(sub.ch)
	})
}

// Subscribe registers an observer. Delivery never blocks the store: when
// the buffer is full the change is dropped, so observers should re-read
// IsMember or Members instead of replaying changes.
func (s *WishlistStore) Subscribe(buffer int) *Subscription {
	if buffer < 1 {
		buffer = 1
	}
	sub := &Subscription{ch: make(chan wishlist.Change, buffer), store: s}
	s.obsMu.Lock()
	s.observers[sub] = struct{}{}
	s.obsMu.Unlock()
	return sub
}

// closeObservers ends every subscription.
func (s *WishlistStore) closeObservers() {
	s.obsMu.Lock()
	subs := slices.Collect(maps.Keys(s.observers))
	s.obsMu.Unlock()
	for _, sub := range subs {
		sub.Close()
	}
}

// broadcast must be called with s.mu held so notifications follow state order.
func (s *WishlistStore) broadcast(c wishlist.Change) {
	s.obsMu.Lock()
	defer s.obsMu.Unlock()
	for sub := range s.observers {
		select {
		case sub.ch <- c:
		default:
			observability.RecordObserverDrop()
		}
	}
}
