package main

import (
	"context"
	"time"

	"github.com/urfave/cli/v3"

	"vibes/internal/repositories"
)

func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage Spotify authorization",
		Commands: []*cli.Command{
			{
				Name:   "login",
				Usage:  "Authorize via the browser (no-op when a valid credential is cached)",
				Action: r.AuthLogin,
			},
			{
				Name:   "status",
				Usage:  "Show the cached credential's state",
				Flags:  []cli.Flag{&cli.BoolFlag{Name: "json", Usage: "Output as JSON"}},
				Action: r.AuthStatus,
			},
			{
				Name:   "logout",
				Usage:  "Discard the cached credential",
				Action: r.AuthLogout,
			},
		},
	}
}

// AuthLogin acquires a credential, running the browser redirect flow when no
// usable cached credential exists.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	sess, err := r.openSession(ctx, false)
	if err != nil {
		return err
	}
	defer sess.Close()

	cred, err := sess.manager.Acquire(ctx)
	if err != nil {
		return err
	}

	return r.writePlain("✓ Authenticated (token valid until %s)\n", cred.ExpiresAt.Format(time.RFC1123))
}

// AuthStatus reports the cached credential without touching the network.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	sess, err := r.openSession(ctx, false)
	if err != nil {
		return err
	}
	defer sess.Close()

	cred, err := sess.store.Get(repositories.CredentialKey)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		status := map[string]any{"authenticated": cred != nil}
		if cred != nil {
			status["expires_at"] = cred.ExpiresAt
			status["fresh"] = cred.Fresh(0, time.Now())
			status["scopes"] = cred.Scopes
		}
		return r.writeJSON(status, true)
	}

	if cred == nil {
		return r.writePlain("✗ Not authenticated — run `vibes auth login`\n")
	}

	r.writePlain("✓ Credential cached\n")
	if cred.Fresh(0, time.Now()) {
		r.writePlain("Access token: valid until %s\n", cred.ExpiresAt.Format(time.RFC1123))
	} else {
		r.writePlain("Access token: expired (will refresh on next use)\n")
	}
	return nil
}

// AuthLogout removes the cached credential.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	sess, err := r.openSession(ctx, false)
	if err != nil {
		return err
	}
	defer sess.Close()

	if err := sess.manager.Logout(); err != nil {
		return err
	}

	r.logger.Info("credential cache cleared")
	return r.writePlain("✓ Logged out\n")
}
