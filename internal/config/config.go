// Package config resolves the four X API secrets from the process
// environment, once, at startup. The resulting Credentials value is passed
// explicitly to everything that signs requests; nothing else in the tree
// reads the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"

	"github.com/AaronFaby/openclaw-skills/internal/oauth1"
)

// Environment variables, in reporting order.
var requiredVars = []string{
	"TWITTER_API_KEY",
	"TWITTER_API_SECRET",
	"TWITTER_ACCESS_TOKEN",
	"TWITTER_ACCESS_SECRET",
}

// MissingVarsError names the absent credential variables. It carries the
// variable names only — secret values are never echoed anywhere.
type MissingVarsError struct {
	Vars []string
}

func (e *MissingVarsError) Error() string {
	return fmt.Sprintf("missing environment variables: %s (load with: source ~/.openclaw/.env)",
		strings.Join(e.Vars, ", "))
}

// Load reads credentials from the environment. A ~/.openclaw/.env file, if
// present, is merged first without overriding variables already set in the
// process environment.
func Load() (oauth1.Credentials, error) {
	if home, err := os.UserHomeDir(); err == nil {
		// Best effort; a missing file is the normal case.
		_ = godotenv.Load(filepath.Join(home, ".openclaw", ".env"))
	}

	k := koanf.New(".")
	if err := k.Load(env.Provider("TWITTER_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "TWITTER_")), "_", ".")
	}), nil); err != nil {
		return oauth1.Credentials{}, fmt.Errorf("reading environment: %w", err)
	}

	creds := oauth1.Credentials{
		ConsumerKey:    k.String("api.key"),
		ConsumerSecret: k.String("api.secret"),
		AccessToken:    k.String("access.token"),
		AccessSecret:   k.String("access.secret"),
	}

	var missing []string
	for i, v := range []string{creds.ConsumerKey, creds.ConsumerSecret, creds.AccessToken, creds.AccessSecret} {
		if v == "" {
			missing = append(missing, requiredVars[i])
		}
	}
	if len(missing) > 0 {
		return oauth1.Credentials{}, &MissingVarsError{Vars: missing}
	}
	return creds, nil
}
