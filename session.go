package xtid

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// sessionState is the immutable outcome of one successful initialization.
// Generate reads it without locking beyond the pointer load.
type sessionState struct {
	key          string
	keyBytes     []byte
	indices      indexSet
	animationKey string
}

// Session derives transaction ids from one page context. Initialize resolves
// and caches the verification key, the script indices and the animation key;
// Generate then produces a fresh identifier per request. Safe for concurrent
// use.
type Session struct {
	doc   Document
	fetch Fetcher

	now      func() time.Time
	randByte func() byte

	init singleflight.Group

	mu sync.RWMutex
	st *sessionState
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithFetcher replaces the fetcher used for the ondemand script.
func WithFetcher(f Fetcher) SessionOption {
	return func(s *Session) { s.fetch = f }
}

// WithClock replaces the wall clock, for deterministic tests.
func WithClock(now func() time.Time) SessionOption {
	return func(s *Session) { s.now = now }
}

// WithRandomByte replaces the mask-byte source, for deterministic tests.
func WithRandomByte(r func() byte) SessionOption {
	return func(s *Session) { s.randByte = r }
}

// NewSession creates an uninitialized session over the given document.
func NewSession(doc Document, opts ...SessionOption) *Session {
	s := &Session{
		doc:      doc,
		fetch:    NewHTTPFetcher(),
		now:      time.Now,
		randByte: func() byte { return byte(rand.Intn(256)) },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ready reports whether initialization has completed.
func (s *Session) Ready() bool {
	return s.state() != nil
}

// AnimationKey returns the cached animation key, empty until Ready.
func (s *Session) AnimationKey() string {
	if st := s.state(); st != nil {
		return st.animationKey
	}
	return ""
}

func (s *Session) state() *sessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st
}

// Initialize runs the one-time extraction chain: verification key, script
// indices, animation key. It is idempotent once successful, concurrent
// callers share a single in-flight attempt, and a failed attempt may be
// retried. Cancelling ctx releases the caller and aborts the attempt it
// started.
func (s *Session) Initialize(ctx context.Context) error {
	if s.Ready() {
		return nil
	}

	ch := s.init.DoChan("init", func() (any, error) {
		if st := s.state(); st != nil {
			return st, nil
		}
		st, err := deriveState(ctx, s.fetch, s.doc)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInitializationFailed, err)
		}
		s.mu.Lock()
		s.st = st
		s.mu.Unlock()
		return st, nil
	})

	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-ch:
		return res.Err
	}
}

// deriveState performs the full extraction chain against a document. Any
// failure aborts the chain; no partial state is kept.
func deriveState(ctx context.Context, fetch Fetcher, doc Document) (*sessionState, error) {
	key, err := verificationKey(doc)
	if err != nil {
		return nil, err
	}
	keyBytes, err := decodeKey(key)
	if err != nil {
		return nil, err
	}
	indices, err := resolveIndices(ctx, fetch, doc)
	if err != nil {
		return nil, err
	}
	animKey, err := deriveAnimationKey(keyBytes, indices, doc)
	if err != nil {
		return nil, err
	}
	return &sessionState{
		key:          key,
		keyBytes:     keyBytes,
		indices:      indices,
		animationKey: animKey,
	}, nil
}

// GenerateOption overrides one input of a single Generate call. Overrides
// never write back into the session cache.
type GenerateOption func(*generateOptions)

type generateOptions struct {
	timeNow      *int64
	key          string
	animationKey string
	doc          Document
}

// WithTimeNow fixes the epoch-relative second count instead of reading the
// clock.
func WithTimeNow(t int64) GenerateOption {
	return func(o *generateOptions) { o.timeNow = &t }
}

// WithKey supplies a raw verification key for this call only.
func WithKey(key string) GenerateOption {
	return func(o *generateOptions) { o.key = key }
}

// WithAnimationKey supplies a precomputed animation key for this call only.
func WithAnimationKey(key string) GenerateOption {
	return func(o *generateOptions) { o.animationKey = key }
}

// WithDocument bypasses the session cache for this call: key and animation
// key are re-derived from this document unless explicitly overridden.
func WithDocument(doc Document) GenerateOption {
	return func(o *generateOptions) { o.doc = doc }
}

// Generate derives a transaction id for one request. The key and animation
// key resolve per call: explicit override first, then re-derivation when a
// document override is present, then the session cache. The query string
// never participates in the hash.
func (s *Session) Generate(method, path string, opts ...GenerateOption) (string, error) {
	st := s.state()
	if st == nil {
		return "", ErrNotInitialized
	}

	var o generateOptions
	for _, opt := range opts {
		opt(&o)
	}

	if i := strings.Index(path, "?"); i >= 0 {
		path = path[:i]
	}

	var timeNow int64
	if o.timeNow != nil {
		timeNow = *o.timeNow
	} else {
		timeNow = (s.now().UnixMilli() - epochOffsetMillis) / 1000
	}

	keyBytes := st.keyBytes
	switch {
	case o.key != "":
		b, err := decodeKey(o.key)
		if err != nil {
			return "", err
		}
		keyBytes = b
	case o.doc != nil:
		key, err := verificationKey(o.doc)
		if err != nil {
			return "", err
		}
		b, err := decodeKey(key)
		if err != nil {
			return "", err
		}
		keyBytes = b
	}

	animKey := st.animationKey
	switch {
	case o.animationKey != "":
		animKey = o.animationKey
	case o.doc != nil:
		k, err := deriveAnimationKey(keyBytes, st.indices, o.doc)
		if err != nil {
			return "", err
		}
		animKey = k
	}

	return buildTransactionID(method, path, timeNow, keyBytes, animKey, s.randByte()), nil
}
