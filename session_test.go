package xtid

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestSession(t *testing.T, fetcher *fakeFetcher) *Session {
	t.Helper()
	return NewSession(testDocument(),
		WithFetcher(fetcher),
		WithRandomByte(fixedByte(0x42)),
	)
}

func TestSessionGenerateGolden(t *testing.T) {
	sess := newTestSession(t, newFakeFetcher())

	_, err := sess.Generate("GET", "/1.1/jot/client_event.json")
	require.ErrorIs(t, err, ErrNotInitialized)

	require.NoError(t, sess.Initialize(context.Background()))
	require.True(t, sess.Ready())
	require.Equal(t, goldenAnimationKey, sess.AnimationKey())

	id, err := sess.Generate("GET", "/1.1/jot/client_event.json", WithTimeNow(1000))
	require.NoError(t, err)
	require.Equal(t, goldenTransactionID, id)
}

func TestSessionGenerateStripsQuery(t *testing.T) {
	sess := newTestSession(t, newFakeFetcher())
	require.NoError(t, sess.Initialize(context.Background()))

	plain, err := sess.Generate("GET", "/1.1/jot/client_event.json", WithTimeNow(1000))
	require.NoError(t, err)
	withQuery, err := sess.Generate("GET", "/1.1/jot/client_event.json?foo=bar", WithTimeNow(1000))
	require.NoError(t, err)
	require.Equal(t, plain, withQuery)
}

func TestSessionGenerateUsesClock(t *testing.T) {
	fixed := time.UnixMilli(epochOffsetMillis + 1000*1000)
	sess := NewSession(testDocument(),
		WithFetcher(newFakeFetcher()),
		WithRandomByte(fixedByte(0x42)),
		WithClock(func() time.Time { return fixed }),
	)
	require.NoError(t, sess.Initialize(context.Background()))

	id, err := sess.Generate("GET", "/1.1/jot/client_event.json")
	require.NoError(t, err)
	require.Equal(t, goldenTransactionID, id)
}

func TestSessionInitializeIdempotent(t *testing.T) {
	fetcher := newFakeFetcher()
	sess := newTestSession(t, fetcher)

	require.NoError(t, sess.Initialize(context.Background()))
	require.NoError(t, sess.Initialize(context.Background()))
	require.Equal(t, 1, fetcher.fetchCount())
}

func TestSessionInitializeConcurrent(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.delay = 20 * time.Millisecond
	sess := newTestSession(t, fetcher)

	var wg sync.WaitGroup
	errs := make([]error, 16)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = sess.Initialize(context.Background())
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	// Concurrent callers share a single in-flight extraction.
	require.Equal(t, 1, fetcher.fetchCount())
}

func TestSessionInitializeFailureAndRetry(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.setErr(errors.New("dial tcp: connection refused"))
	sess := newTestSession(t, fetcher)

	err := sess.Initialize(context.Background())
	require.ErrorIs(t, err, ErrInitializationFailed)
	require.ErrorIs(t, err, ErrIndicesNotFound)
	require.False(t, sess.Ready())

	_, err = sess.Generate("GET", "/home")
	require.ErrorIs(t, err, ErrNotInitialized)

	// The session stays usable for a fresh attempt.
	fetcher.setErr(nil)
	require.NoError(t, sess.Initialize(context.Background()))
	require.True(t, sess.Ready())
}

func TestSessionInitializeCancelled(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.delay = time.Second
	sess := newTestSession(t, fetcher)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := sess.Initialize(ctx)
	require.Error(t, err)
	require.False(t, sess.Ready())
}

func TestSessionGenerateOverrides(t *testing.T) {
	sess := newTestSession(t, newFakeFetcher())
	require.NoError(t, sess.Initialize(context.Background()))

	// An explicit key override replaces the cached key bytes.
	otherKey := "//79/Pv6+fj39vX08/Lx8A==" // 16 bytes, distinct from the fixture
	otherBytes, err := decodeKey(otherKey)
	require.NoError(t, err)

	id, err := sess.Generate("GET", "/home", WithTimeNow(1000), WithKey(otherKey))
	require.NoError(t, err)
	require.Equal(t, buildTransactionID("GET", "/home", 1000, otherBytes, goldenAnimationKey, 0x42), id)

	// An explicit animation key override bypasses the cached value.
	id, err = sess.Generate("GET", "/home", WithTimeNow(1000), WithAnimationKey("deadbeef00"))
	require.NoError(t, err)
	keyBytes := mustDecodeKey(t, testVerificationKey)
	require.Equal(t, buildTransactionID("GET", "/home", 1000, keyBytes, "deadbeef00", 0x42), id)

	// A bad override key propagates the decode failure.
	_, err = sess.Generate("GET", "/home", WithKey("not*base64!"))
	require.Error(t, err)
}

func TestSessionGenerateDocumentOverride(t *testing.T) {
	sess := newTestSession(t, newFakeFetcher())
	require.NoError(t, sess.Initialize(context.Background()))

	// A document override recomputes key and animation key from the fresh
	// page without touching the session cache.
	altPage := `<!DOCTYPE html><html><head>` +
		`<meta name="twitter-site-verification" content="` + testVerificationKey + `"/>` +
		`</head><body>` +
		`<svg id="loading-x-anim-0"><g><path d="M0 0h2v2z"/><path d="M0 0h2v2z90,80,70 60,50,40 128 5,6 7 8"/></g></svg>` +
		`<svg id="loading-x-anim-1"><g><path d="M0 0h2v2z"/><path d="M0 0h2v2z90,80,70 60,50,40 128 5,6 7 8"/></g></svg>` +
		`<svg id="loading-x-anim-2"><g><path d="M0 0h2v2z"/><path d="M0 0h2v2z90,80,70 60,50,40 128 5,6 7 8"/></g></svg>` +
		`<svg id="loading-x-anim-3"><g><path d="M0 0h2v2z"/><path d="M0 0h2v2z90,80,70 60,50,40 128 5,6 7 8"/></g></svg>` +
		`</body></html>`
	altDoc, err := ParseDocument(altPage)
	require.NoError(t, err)

	id, err := sess.Generate("GET", "/home", WithTimeNow(1000), WithDocument(altDoc))
	require.NoError(t, err)

	keyBytes := mustDecodeKey(t, testVerificationKey)
	altAnimKey, err := deriveAnimationKey(keyBytes, indexSet{rowIndex: 0, keyByteIndices: []int{1, 2}}, altDoc)
	require.NoError(t, err)
	require.NotEqual(t, goldenAnimationKey, altAnimKey)
	require.Equal(t, buildTransactionID("GET", "/home", 1000, keyBytes, altAnimKey, 0x42), id)

	// The cache is untouched.
	require.Equal(t, goldenAnimationKey, sess.AnimationKey())
}
