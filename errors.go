package xtid

import "errors"

// Extraction and generation failures surface as one of these sentinels,
// matched with errors.Is.
var (
	// ErrIndicesNotFound means the ondemand.s marker was absent from the
	// markup, the script fetch failed, or the script carried no index
	// literals.
	ErrIndicesNotFound = errors.New("xtid: key indices not found")

	// ErrKeyNotFound means the twitter-site-verification element is absent
	// or its content is empty.
	ErrKeyNotFound = errors.New("xtid: verification key not found")

	// ErrInvalidFrameData means the loading-animation frames or the selected
	// frame row could not be extracted from the page.
	ErrInvalidFrameData = errors.New("xtid: invalid animation frame data")

	// ErrNotInitialized means Generate was called before a successful
	// Initialize.
	ErrNotInitialized = errors.New("xtid: session not initialized")

	// ErrInitializationFailed wraps the root cause of a failed Initialize.
	ErrInitializationFailed = errors.New("xtid: initialization failed")
)
