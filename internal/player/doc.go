// Package player is the playback engine: an optimistic local belief about
// playback state, reconciled against periodic remote polls.
//
// All state lives behind a single-writer event loop ([Dispatcher]); commands,
// poll results, and command completions are serialized onto it, so the
// [Machine] itself needs no locking. User actions mutate the belief
// immediately and are confirmed or reverted when the remote catches up.
package player
