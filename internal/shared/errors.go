package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	// ErrAuthExpired marks an authorization failure that survived one forced
	// token refresh. The caller must re-authenticate.
	ErrAuthExpired = fmt.Errorf("authorization expired")
	// ErrAuthInvalid marks an irrecoverable credential (refresh token revoked
	// or rejected). The cached credential is discarded and the full browser
	// flow runs again.
	ErrAuthInvalid = fmt.Errorf("authorization invalid")
	ErrAuthTimeout = fmt.Errorf("timed out waiting for authorization callback")

	// API errors
	ErrRateLimited = fmt.Errorf("rate limited")
	// ErrNoActiveDevice is surfaced verbatim: the remote service accepts
	// playback commands only while some client session is active. Not
	// retryable here; the user has to open a player first.
	ErrNoActiveDevice    = fmt.Errorf("no active Spotify device")
	ErrRetriesExhausted  = fmt.Errorf("retries exhausted")
	ErrAPIRequest        = fmt.Errorf("API request failed")
	ErrTrackNotFound     = fmt.Errorf("track not found")
	ErrPlaylistNotFound  = fmt.Errorf("playlist not found")
	ErrNothingPlaying    = fmt.Errorf("nothing playing")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
