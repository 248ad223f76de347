// Package ratelimit throttles outbound API calls with a sliding window.
//
// The CoinGecko demo tier allows roughly 30 calls per minute; the default
// window (1 call per 2s) stays well under it so 429s are the exception.
package ratelimit
