// Package store is the local echo of the sheet: JSON collections of leads,
// follow-ups and enquiries plus the signed-in user, kept in Redis or memory.
//
// Every mutation is a read-modify-write of one JSON value, so all writes
// across all collections go through a single mutex. There is no transaction
// spanning collections.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/jordanlanch/leadtoorder/pkg/cache"
	"github.com/jordanlanch/leadtoorder/pkg/domain"
	"github.com/jordanlanch/leadtoorder/pkg/logger"
	"github.com/jordanlanch/leadtoorder/pkg/models"
)

// Key namespace
const (
	KeyPrefix    = "lead_to_order_"
	KeyLeads     = KeyPrefix + "leads"
	KeyFollowUps = KeyPrefix + "follow_ups"
	KeyEnquiries = KeyPrefix + "enquiries"
	KeyUser      = KeyPrefix + "user"
)

// Store holds the echo collections
type Store struct {
	kv  domain.CacheRepository
	log logger.Logger
	mu  sync.Mutex

	Leads     *Collection[models.Lead]
	FollowUps *Collection[models.FollowUp]
	Enquiries *Collection[models.Enquiry]
	User      *UserStore
}

// New creates a store on top of kv
func New(kv domain.CacheRepository, log logger.Logger) *Store {
	if log == nil {
		log = logger.Default()
	}
	s := &Store{kv: kv, log: log.With("component", "store")}
	s.Leads = &Collection[models.Lead]{s: s, key: KeyLeads, id: func(l models.Lead) string { return l.ID }}
	s.FollowUps = &Collection[models.FollowUp]{s: s, key: KeyFollowUps, id: func(f models.FollowUp) string { return f.ID }}
	s.Enquiries = &Collection[models.Enquiry]{s: s, key: KeyEnquiries, id: func(e models.Enquiry) string { return e.ID }}
	s.User = &UserStore{s: s}
	return s
}

// NewMemory creates a store backed by an in-process map
func NewMemory(log logger.Logger) *Store {
	return New(cache.NewMemory(), log)
}

// Ping checks the backing key-value store
func (s *Store) Ping(ctx context.Context) error {
	return s.kv.Ping(ctx)
}

// ClearAll removes every key in the namespace, the user included. Revoked
// tokens live outside it and survive.
func (s *Store) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.kv.DeletePattern(ctx, KeyPrefix+"*"); err != nil {
		return fmt.Errorf("failed to clear local data: %w", err)
	}
	return nil
}

// load decodes key into dst. A missing key leaves dst untouched; a corrupt
// value is logged and treated as missing.
func (s *Store) load(ctx context.Context, key string, dst any) (bool, error) {
	raw, err := s.kv.Get(ctx, key)
	if errors.Is(err, cache.ErrCacheMiss) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		s.log.Warn("discarding unreadable local value", "key", key, "error", err)
		return false, nil
	}
	return true, nil
}

func (s *Store) save(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := s.kv.Set(ctx, key, data, 0); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// Collection is one JSON array in the store
type Collection[T any] struct {
	s   *Store
	key string
	id  func(T) string
}

// GetAll returns the records in insertion order
func (c *Collection[T]) GetAll(ctx context.Context) ([]T, error) {
	var out []T
	if _, err := c.s.load(ctx, c.key, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

// GetByID returns the first record with id
func (c *Collection[T]) GetByID(ctx context.Context, id string) (T, bool, error) {
	var zero T
	all, err := c.GetAll(ctx)
	if err != nil {
		return zero, false, err
	}
	for _, rec := range all {
		if c.id(rec) == id {
			return rec, true, nil
		}
	}
	return zero, false, nil
}

// Find returns the records matching pred
func (c *Collection[T]) Find(ctx context.Context, pred func(T) bool) ([]T, error) {
	all, err := c.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0)
	for _, rec := range all {
		if pred(rec) {
			out = append(out, rec)
		}
	}
	return out, nil
}

// Add appends rec
func (c *Collection[T]) Add(ctx context.Context, rec T) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	all, err := c.GetAll(ctx)
	if err != nil {
		return err
	}
	return c.s.save(ctx, c.key, append(all, rec))
}

// Update merges patch into the record with id. patch must encode to a JSON
// object; only the keys it carries are replaced. It reports whether a record
// matched; no match is not an error.
func (c *Collection[T]) Update(ctx context.Context, id string, patch any) (bool, error) {
	fields, err := json.Marshal(patch)
	if err != nil {
		return false, fmt.Errorf("failed to encode patch: %w", err)
	}

	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	all, err := c.GetAll(ctx)
	if err != nil {
		return false, err
	}
	for i, rec := range all {
		if c.id(rec) != id {
			continue
		}
		merged, err := mergeJSON(rec, fields)
		if err != nil {
			return false, err
		}
		all[i] = merged
		return true, c.s.save(ctx, c.key, all)
	}
	return false, nil
}

// Delete removes every record with id and returns how many were removed
func (c *Collection[T]) Delete(ctx context.Context, id string) (int, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	all, err := c.GetAll(ctx)
	if err != nil {
		return 0, err
	}
	kept := all[:0]
	for _, rec := range all {
		if c.id(rec) != id {
			kept = append(kept, rec)
		}
	}
	removed := len(all) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	return removed, c.s.save(ctx, c.key, kept)
}

// Replace overwrites the whole collection
func (c *Collection[T]) Replace(ctx context.Context, recs []T) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	if recs == nil {
		recs = []T{}
	}
	return c.s.save(ctx, c.key, recs)
}

func mergeJSON[T any](rec T, patch []byte) (T, error) {
	var zero T
	base, err := json.Marshal(rec)
	if err != nil {
		return zero, fmt.Errorf("failed to encode record: %w", err)
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(base, &obj); err != nil {
		return zero, fmt.Errorf("record is not an object: %w", err)
	}
	var p map[string]json.RawMessage
	if err := json.Unmarshal(patch, &p); err != nil {
		return zero, fmt.Errorf("patch is not an object: %w", err)
	}
	for k, v := range p {
		obj[k] = v
	}
	merged, err := json.Marshal(obj)
	if err != nil {
		return zero, err
	}
	var out T
	if err := json.Unmarshal(merged, &out); err != nil {
		return zero, fmt.Errorf("failed to decode merged record: %w", err)
	}
	return out, nil
}

// UserStore holds the signed-in user singleton
type UserStore struct {
	s *Store
}

// Get returns the user, or nil when nobody is signed in
func (u *UserStore) Get(ctx context.Context) (*models.User, error) {
	var user models.User
	ok, err := u.s.load(ctx, KeyUser, &user)
	if err != nil || !ok {
		return nil, err
	}
	return &user, nil
}

// Set stores the user
func (u *UserStore) Set(ctx context.Context, user models.User) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	return u.s.save(ctx, KeyUser, user)
}

// Clear removes the user
func (u *UserStore) Clear(ctx context.Context) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	return u.s.kv.Delete(ctx, KeyUser)
}

// LeadByNo returns the first stored lead with the given lead number
func (s *Store) LeadByNo(ctx context.Context, leadNo string) (models.Lead, bool, error) {
	found, err := s.Leads.Find(ctx, func(l models.Lead) bool { return l.LeadNo == leadNo })
	if err != nil || len(found) == 0 {
		return models.Lead{}, false, err
	}
	return found[0], true, nil
}

// FollowUpsByLeadNo returns the stored follow-ups of a lead in insertion order
func (s *Store) FollowUpsByLeadNo(ctx context.Context, leadNo string) ([]models.FollowUp, error) {
	return s.FollowUps.Find(ctx, func(f models.FollowUp) bool { return f.LeadNo == leadNo })
}
