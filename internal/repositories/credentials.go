package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"vibes/internal/models"
)

// CredentialKey is the fixed namespace under which the Spotify credential is
// cached.
const CredentialKey = "vibes:spotify"

// CredentialRepository persists [models.Credential] records in a sqlite
// key-value table. It is the exclusive owner of the cached credential.
type CredentialRepository struct {
	db *sql.DB
}

// NewCredentialRepository creates a new [CredentialRepository] with the given database connection.
func NewCredentialRepository(db *sql.DB) *CredentialRepository {
	return &CredentialRepository{db: db}
}

// Get retrieves the credential stored under key. Returns (nil, nil) when no
// credential is cached.
func (r *CredentialRepository) Get(key string) (*models.Credential, error) {
	var value string
	err := r.db.QueryRow("SELECT value FROM credentials WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query credential: %w", err)
	}

	var cred models.Credential
	if err := json.Unmarshal([]byte(value), &cred); err != nil {
		return nil, fmt.Errorf("failed to decode credential: %w", err)
	}

	return &cred, nil
}

// Set stores the credential under key, overwriting any previous value.
func (r *CredentialRepository) Set(key string, cred models.Credential) error {
	value, err := json.Marshal(cred)
	if err != nil {
		return fmt.Errorf("failed to encode credential: %w", err)
	}

	query := `
		INSERT INTO credentials (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`

	if _, err := r.db.Exec(query, key, string(value), time.Now()); err != nil {
		return fmt.Errorf("failed to store credential: %w", err)
	}

	return nil
}

// Delete removes the credential stored under key. Deleting an absent key is
// not an error.
func (r *CredentialRepository) Delete(key string) error {
	if _, err := r.db.Exec("DELETE FROM credentials WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to delete credential: %w", err)
	}
	return nil
}
