package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/posy/internal/keyring"
	"github.com/julianstephens/posy/internal/storage/postgres"
)

const (
	secretAPIKey           = "api-key"
	secretConnectionString = "connection-string"
)

// KeyringSetCmd stores a secret in the OS keyring
type KeyringSetCmd struct {
	Secret string `arg:"" enum:"api-key,connection-string" help:"Which secret: api-key or connection-string."`
	Value  string `arg:"" help:"Value to store."`
}

func (cmd *KeyringSetCmd) Run(ctx *Context) error {
	switch cmd.Secret {
	case secretAPIKey:
		if strings.TrimSpace(cmd.Value) == "" {
			return errors.New("API key cannot be empty")
		}
		if err := keyring.SetAPIKey(strings.TrimSpace(cmd.Value)); err != nil {
			return fmt.Errorf("failed to store API key in keyring: %w", err)
		}
		ctx.println("✓ API key stored successfully in OS keyring")
		return nil

	case secretConnectionString:
		if !postgres.IsConnString(cmd.Value) && !strings.Contains(cmd.Value, "host=") {
			return errors.New("connection string must be a valid PostgreSQL connection string")
		}
		if err := postgres.ValidateConnString(cmd.Value); err != nil {
			if !errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return fmt.Errorf("invalid connection string: %w", err)
			}
			ctx.println("⚠️  Warning: Connection string contains embedded credentials.")
			ctx.println("   It will be stored as-is in the encrypted OS keyring.")
		}
		if err := keyring.SetConnectionString(cmd.Value); err != nil {
			return fmt.Errorf("failed to store connection string in keyring: %w", err)
		}
		ctx.println("✓ Connection string stored successfully in OS keyring")
		ctx.println("  posy will use it when --config is left at its default")
		return nil
	}
	return fmt.Errorf("unknown secret: %s", cmd.Secret)
}

// KeyringGetCmd shows a stored secret with its sensitive part masked
type KeyringGetCmd struct {
	Secret string `arg:"" enum:"api-key,connection-string" help:"Which secret: api-key or connection-string."`
}

func (cmd *KeyringGetCmd) Run(ctx *Context) error {
	var (
		value string
		err   error
	)
	if cmd.Secret == secretAPIKey {
		value, err = keyring.GetAPIKey()
	} else {
		value, err = keyring.GetConnectionString()
	}
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("no %s found in keyring. Use 'posy keyring set %s' to store one", cmd.Secret, cmd.Secret)
		}
		return fmt.Errorf("failed to retrieve %s from keyring: %w", cmd.Secret, err)
	}

	if cmd.Secret == secretAPIKey {
		ctx.println(maskKey(value))
	} else {
		ctx.println(maskPassword(value))
	}
	return nil
}

// KeyringDeleteCmd removes a secret from the OS keyring
type KeyringDeleteCmd struct {
	Secret string `arg:"" enum:"api-key,connection-string" help:"Which secret: api-key or connection-string."`
}

func (cmd *KeyringDeleteCmd) Run(ctx *Context) error {
	var err error
	if cmd.Secret == secretAPIKey {
		err = keyring.DeleteAPIKey()
	} else {
		err = keyring.DeleteConnectionString()
	}
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("no %s found in keyring", cmd.Secret)
		}
		return fmt.Errorf("failed to delete %s from keyring: %w", cmd.Secret, err)
	}
	ctx.printf("✓ %s deleted from OS keyring\n", cmd.Secret)
	return nil
}

// KeyringStatusCmd checks the availability of the OS keyring
type KeyringStatusCmd struct{}

func (cmd *KeyringStatusCmd) Run(ctx *Context) error {
	if !keyring.IsAvailable() {
		ctx.println("❌ OS keyring is not available on this system")
		return errors.New("keyring unavailable")
	}
	ctx.println("✓ OS keyring is available")
	if _, err := keyring.GetAPIKey(); err == nil {
		ctx.println("✓ API key is stored in keyring")
	} else {
		ctx.println("ℹ No API key stored in keyring")
	}
	if _, err := keyring.GetConnectionString(); err == nil {
		ctx.println("✓ Connection string is stored in keyring")
	} else {
		ctx.println("ℹ No connection string stored in keyring")
	}
	return nil
}

func maskKey(key string) string {
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", len(key)-8) + key[len(key)-4:]
}

// maskPassword masks passwords in connection strings for display
func maskPassword(connStr string) string {
	if postgres.IsConnString(connStr) {
		if idx := strings.Index(connStr, "://"); idx != -1 {
			remaining := connStr[idx+3:]
			if atIdx := strings.LastIndex(remaining, "@"); atIdx != -1 {
				userInfo := remaining[:atIdx]
				if colonIdx := strings.Index(userInfo, ":"); colonIdx != -1 {
					return connStr[:idx+3] + userInfo[:colonIdx] + ":****" + connStr[idx+3+atIdx:]
				}
			}
		}
	}

	if strings.Contains(connStr, "password=") {
		parts := strings.Fields(connStr)
		for i, part := range parts {
			if strings.HasPrefix(part, "password=") {
				parts[i] = "password=****"
			}
		}
		return strings.Join(parts, " ")
	}
	return connStr
}
