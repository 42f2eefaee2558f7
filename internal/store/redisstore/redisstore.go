// Package redisstore is a Redis-backed store.Repository for sharing history
// between machines.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/verte-zerg/flowread/internal/model"
	"github.com/verte-zerg/flowread/internal/store"
)

// DefaultPrefix namespaces every key.
const DefaultPrefix = "flowread"

// Store keeps JSON records in plain keys and orders them with sorted sets
// scored by unix milliseconds.
type Store struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

// Option customizes a Store.
type Option func(*Store)

// WithClock overrides the time source used for record dates.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New wraps an existing client.
func New(client *redis.Client, prefix string, opts ...Option) *Store {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	s := &Store{client: client, prefix: prefix, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dial connects and pings the server.
func Dial(ctx context.Context, addr, password string, db int, prefix string, opts ...Option) (*Store, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	if err := client.Ping(ctx).Err(); err != nil {
		if cerr := client.Close(); cerr != nil {
			// Best-effort close on failed ping.
			_ = cerr
		}
		return nil, fmt.Errorf("failed to reach redis at %s: %w", addr, err)
	}
	return New(client, prefix, opts...), nil
}

// Close closes the client.
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) key(parts ...string) string {
	k := s.prefix
	for _, p := range parts {
		k += ":" + p
	}
	return k
}

func score(t time.Time) float64 {
	return float64(t.UnixMilli())
}

func limitStop(limit int) int64 {
	if limit <= 0 {
		return -1
	}
	return int64(limit - 1)
}

// SaveText writes the record first and then claims its hash, so a hash
// never points at a missing text.
func (s *Store) SaveText(ctx context.Context, title, content string) (model.Text, error) {
	t := store.NewText(title, content, s.now())
	hashKey := s.key("text", "hash", t.Hash)
	if id, err := s.client.Get(ctx, hashKey).Result(); err == nil {
		return s.GetText(ctx, id)
	} else if !errors.Is(err, redis.Nil) {
		return model.Text{}, fmt.Errorf("failed to look up text hash: %w", err)
	}

	data, err := json.Marshal(t)
	if err != nil {
		return model.Text{}, fmt.Errorf("failed to encode text: %w", err)
	}
	if err := s.client.Set(ctx, s.key("text", t.ID), data, 0).Err(); err != nil {
		return model.Text{}, fmt.Errorf("failed to write text: %w", err)
	}
	claimed, err := s.client.SetNX(ctx, hashKey, t.ID, 0).Result()
	if err != nil {
		return model.Text{}, fmt.Errorf("failed to claim text hash: %w", err)
	}
	if !claimed {
		if derr := s.client.Del(ctx, s.key("text", t.ID)).Err(); derr != nil {
			// Best-effort cleanup of the losing write.
			_ = derr
		}
		id, err := s.client.Get(ctx, hashKey).Result()
		if err != nil {
			return model.Text{}, fmt.Errorf("failed to look up text hash: %w", err)
		}
		return s.GetText(ctx, id)
	}
	if err := s.client.ZAdd(ctx, s.key("texts"), redis.Z{Score: score(t.CreatedAt), Member: t.ID}).Err(); err != nil {
		return model.Text{}, fmt.Errorf("failed to index text: %w", err)
	}
	return t, nil
}

// GetText returns the text with id.
func (s *Store) GetText(ctx context.Context, id string) (model.Text, error) {
	var t model.Text
	if err := s.getJSON(ctx, s.key("text", id), &t); err != nil {
		return model.Text{}, err
	}
	return t, nil
}

func (s *Store) getJSON(ctx context.Context, key string, v any) error {
	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return store.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", key, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return nil
}

// ListTexts returns texts newest first. limit <= 0 means all.
func (s *Store) ListTexts(ctx context.Context, limit int) ([]model.Text, error) {
	ids, err := s.client.ZRevRange(ctx, s.key("texts"), 0, limitStop(limit)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list texts: %w", err)
	}
	return loadAll[model.Text](ctx, s, ids, func(id string) string { return s.key("text", id) })
}

// loadAll fetches JSON records for ids in order, skipping missing keys.
func loadAll[T any](ctx context.Context, s *Store, ids []string, keyFor func(string) string) ([]T, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = keyFor(id)
	}
	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read records: %w", err)
	}
	out := make([]T, 0, len(vals))
	for i, v := range vals {
		str, ok := v.(string)
		if !ok {
			continue
		}
		var rec T
		if err := json.Unmarshal([]byte(str), &rec); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", keys[i], err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// SaveSession appends a session, assigning its id and date.
func (s *Store) SaveSession(ctx context.Context, sess model.Session) (model.Session, error) {
	sess.ID, sess.Date = store.Stamp(s.now())
	data, err := json.Marshal(sess)
	if err != nil {
		return model.Session{}, fmt.Errorf("failed to encode session: %w", err)
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.key("session", sess.ID), data, 0)
		pipe.ZAdd(ctx, s.key("sessions"), redis.Z{Score: score(sess.Date), Member: sess.ID})
		return nil
	})
	if err != nil {
		return model.Session{}, fmt.Errorf("failed to write session: %w", err)
	}
	return sess, nil
}

// RecentSessions returns sessions newest first. limit <= 0 means all.
func (s *Store) RecentSessions(ctx context.Context, limit int) ([]model.Session, error) {
	ids, err := s.client.ZRevRange(ctx, s.key("sessions"), 0, limitStop(limit)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return loadAll[model.Session](ctx, s, ids, func(id string) string { return s.key("session", id) })
}

// DeleteSession removes a session and its quiz result.
func (s *Store) DeleteSession(ctx context.Context, id string) error {
	n, err := s.client.Del(ctx, s.key("session", id)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRem(ctx, s.key("sessions"), id)
		pipe.Del(ctx, s.key("comprehension", id))
		pipe.ZRem(ctx, s.key("comprehensions"), id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete session indexes: %w", err)
	}
	return nil
}

// SaveComprehension records the quiz result of a session once.
func (s *Store) SaveComprehension(ctx context.Context, sessionID string, questions, correct int) (model.Comprehension, error) {
	c := store.NewComprehension(sessionID, questions, correct, s.now())
	data, err := json.Marshal(c)
	if err != nil {
		return model.Comprehension{}, fmt.Errorf("failed to encode comprehension: %w", err)
	}
	ok, err := s.client.SetNX(ctx, s.key("comprehension", sessionID), data, 0).Result()
	if err != nil {
		return model.Comprehension{}, fmt.Errorf("failed to write comprehension: %w", err)
	}
	if !ok {
		return model.Comprehension{}, store.ErrDuplicate
	}
	if err := s.client.ZAdd(ctx, s.key("comprehensions"), redis.Z{Score: score(c.Date), Member: sessionID}).Err(); err != nil {
		return model.Comprehension{}, fmt.Errorf("failed to index comprehension: %w", err)
	}
	return c, nil
}

// AllComprehension returns every quiz result, oldest first.
func (s *Store) AllComprehension(ctx context.Context) ([]model.Comprehension, error) {
	ids, err := s.client.ZRange(ctx, s.key("comprehensions"), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list comprehension: %w", err)
	}
	return loadAll[model.Comprehension](ctx, s, ids, func(id string) string { return s.key("comprehension", id) })
}

// SaveDrill appends a drill result, assigning its id and date.
func (s *Store) SaveDrill(ctx context.Context, d model.Drill) (model.Drill, error) {
	d.ID, d.Date = store.Stamp(s.now())
	data, err := json.Marshal(d)
	if err != nil {
		return model.Drill{}, fmt.Errorf("failed to encode drill: %w", err)
	}
	z := redis.Z{Score: score(d.Date), Member: d.ID}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.key("drill", d.ID), data, 0)
		pipe.ZAdd(ctx, s.key("drills"), z)
		pipe.ZAdd(ctx, s.key("drills", string(d.Type)), z)
		return nil
	})
	if err != nil {
		return model.Drill{}, fmt.Errorf("failed to write drill: %w", err)
	}
	return d, nil
}

// ListDrills returns drills newest first, optionally of one kind.
func (s *Store) ListDrills(ctx context.Context, kind model.DrillType, limit int) ([]model.Drill, error) {
	index := s.key("drills")
	if kind != "" {
		index = s.key("drills", string(kind))
	}
	ids, err := s.client.ZRevRange(ctx, index, 0, limitStop(limit)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list drills: %w", err)
	}
	return loadAll[model.Drill](ctx, s, ids, func(id string) string { return s.key("drill", id) })
}

var _ store.Repository = (*Store)(nil)
