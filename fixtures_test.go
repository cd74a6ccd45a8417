package xtid

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Shared page fixture: verification key 00..0f, four animation frames whose
// tables hold a single synthetic row, and an ondemand script yielding row
// offset 0 and key byte offsets 1 and 2. With that key, frame 1 is selected
// (keyBytes[5]%4), row 0 within it, and the frame time folds to 0.
const (
	testVerificationKey = "AAECAwQFBgcICQoLDA0ODw=="
	testPathData        = "M0 0h2v2z10,20,30 40,50,60 128 5,6 7 8"
	testOndemandJS      = `(function(){var f=function(n,k){return x(k[0], 16)%16+x(k[1], 16)*x(k[2], 16)};})();`
	testOndemandURL     = onDemandURLPrefix + "abc123" + onDemandURLSuffix

	goldenAnimationKey  = "a141e100100"
	goldenTransactionID = "QkJDQEFGR0RFSktISU5PTE2qQUJCHY4bHdMO9M421H5K37QSCEE"
)

func testHomePage() string {
	var sb strings.Builder
	sb.WriteString(`<!DOCTYPE html><html><head><meta charset="utf-8"/>`)
	sb.WriteString(`<meta name="twitter-site-verification" content="` + testVerificationKey + `"/>`)
	sb.WriteString(`</head><body>`)
	for i := 0; i < 4; i++ {
		fmt.Fprintf(&sb, `<svg id="loading-x-anim-%d" viewBox="0 0 100 100"><g><path d="M0 0h2v2z"/><path d="%s" fill="#1d9bf008"/></g></svg>`, i, testPathData)
	}
	sb.WriteString(`<script>{"ondemand.s":"abc123"}</script>`)
	sb.WriteString(`</body></html>`)
	return sb.String()
}

func testDocument() *HTMLDocument {
	doc, err := ParseDocument(testHomePage())
	if err != nil {
		panic(err)
	}
	return doc
}

// fakeFetcher serves canned pages by URL and counts calls.
type fakeFetcher struct {
	mu    sync.Mutex
	calls int
	pages map[string]string
	err   error
	delay time.Duration
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		pages: map[string]string{
			homePageURL:     testHomePage(),
			testOndemandURL: testOndemandJS,
		},
	}
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) (string, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	page, ok := f.pages[url]
	if !ok {
		return "", fmt.Errorf("unexpected url %s", url)
	}
	return page, nil
}

func (f *fakeFetcher) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeFetcher) setErr(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

func fixedByte(b byte) func() byte {
	return func() byte { return b }
}
