package repositories

import (
	"testing"
	"time"

	"vibes/internal/models"
	"vibes/internal/shared"
)

func setupTestDB(t *testing.T) *CredentialRepository {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return NewCredentialRepository(db)
}

func TestCredentialRepository(t *testing.T) {
	repo := setupTestDB(t)

	cred := models.Credential{
		AccessToken:  "access-abc",
		RefreshToken: "refresh-xyz",
		ExpiresAt:    time.Now().Add(time.Hour).UTC().Truncate(time.Second),
		Scopes:       []string{"user-read-playback-state", "user-modify-playback-state"},
	}

	t.Run("Get returns nil for absent key", func(t *testing.T) {
		got, err := repo.Get(CredentialKey)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != nil {
			t.Errorf("expected nil credential, got %+v", got)
		}
	})

	t.Run("Set then Get round-trips", func(t *testing.T) {
		if err := repo.Set(CredentialKey, cred); err != nil {
			t.Fatalf("failed to set credential: %v", err)
		}

		got, err := repo.Get(CredentialKey)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got == nil {
			t.Fatal("expected credential, got nil")
		}
		if got.AccessToken != cred.AccessToken || got.RefreshToken != cred.RefreshToken {
			t.Errorf("tokens mismatch: got %+v", got)
		}
		if !got.ExpiresAt.Equal(cred.ExpiresAt) {
			t.Errorf("expiry mismatch: got %v want %v", got.ExpiresAt, cred.ExpiresAt)
		}
		if len(got.Scopes) != 2 {
			t.Errorf("scopes mismatch: got %v", got.Scopes)
		}
	})

	t.Run("Set overwrites in place", func(t *testing.T) {
		refreshed := cred
		refreshed.AccessToken = "access-def"

		if err := repo.Set(CredentialKey, refreshed); err != nil {
			t.Fatalf("failed to overwrite credential: %v", err)
		}

		got, err := repo.Get(CredentialKey)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.AccessToken != "access-def" {
			t.Errorf("expected overwritten token, got %s", got.AccessToken)
		}
		if got.RefreshToken != cred.RefreshToken {
			t.Errorf("refresh token should survive overwrite, got %s", got.RefreshToken)
		}
	})

	t.Run("Delete removes the credential", func(t *testing.T) {
		if err := repo.Delete(CredentialKey); err != nil {
			t.Fatalf("failed to delete credential: %v", err)
		}

		got, err := repo.Get(CredentialKey)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != nil {
			t.Errorf("expected nil after delete, got %+v", got)
		}
	})

	t.Run("Delete on absent key is a no-op", func(t *testing.T) {
		if err := repo.Delete(CredentialKey); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestRunMigrationsIdempotent(t *testing.T) {
	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	for i := 0; i < 3; i++ {
		if err := RunMigrations(db); err != nil {
			t.Fatalf("migration pass %d failed: %v", i, err)
		}
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil {
		t.Fatalf("failed to count migrations: %v", err)
	}
	if count != len(migrations) {
		t.Errorf("expected %d applied migrations, got %d", len(migrations), count)
	}
}
