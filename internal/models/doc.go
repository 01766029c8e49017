// package models defines the data model for the playback client.
//
// Everything here is a value record: tracks, playlists, and snapshots are
// fetched from the Spotify API and never mutated in place; the credential is
// owned exclusively by the credential repository.
package models
