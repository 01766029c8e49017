// package repositories provides the persistence layer for the credential
// cache.
//
// The cache is a small sqlite key-value table: the OAuth credential is stored
// JSON-serialized under a fixed namespace key so it survives restarts.
package repositories
