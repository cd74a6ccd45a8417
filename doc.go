// Package xtid derives the x-client-transaction-id request header used by
// X (Twitter) web clients.
//
// A session extracts three signals from the x.com home page: the
// twitter-site-verification key, the numeric offsets embedded in the
// ondemand.s script, and the loading-animation SVG path data. From these it
// derives an "animation key", then produces a per-request transaction id by
// hashing method, path and time together with that key, XOR-masking the
// payload with a fresh random byte and base64-encoding the result.
//
// Algorithm reverse-engineered from Twitter's web app:
//   - https://github.com/iSarabjitDhiman/XClientTransaction (Python original, MIT)
//   - https://antibot.blog/posts/1741552025433 (analysis)
package xtid
