// Package spotify is the outbound boundary to the Spotify Web API.
//
// [Gateway] owns request construction, bearer authorization, client-side
// pacing, and the retry policy (exponential backoff on transient failures,
// exact Retry-After honoring on rate limits, a single forced token refresh
// on authorization rejection). The endpoint files (player.go, queue.go,
// library.go, search.go) translate between wire payloads and the immutable
// records in [vibes/internal/models]; nothing above this package sees raw
// API JSON.
package spotify
