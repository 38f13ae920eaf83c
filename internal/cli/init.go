package cli

import (
	"fmt"
	"os"

	"github.com/julianstephens/posy/internal/storage/postgres"
)

type InitCmd struct {
	Force bool `help:"Delete an existing file store before initializing."`
}

func (c *InitCmd) Run(ctx *Context) error {
	return ctx.WithWriteLock(func() error {
		if c.Force {
			path := ctx.Store.GetConfigPath()
			if postgres.IsConnString(path) || path == "postgresql" {
				return fmt.Errorf("--force is only supported for file stores")
			}
			if _, err := os.Stat(path); err == nil {
				if mgr := ctx.Backups(); mgr != nil && ctx.Store.Load() == nil {
					if _, err := mgr.Snapshot("before init --force"); err != nil {
						ctx.printf("Warning: could not back up existing store: %v\n", err)
					}
				}
				if err := ctx.Store.Close(); err != nil {
					return fmt.Errorf("failed to close existing store: %w", err)
				}
				if err := os.Remove(path); err != nil {
					return fmt.Errorf("failed to delete existing store: %w", err)
				}
				ctx.printf("Deleted existing store at: %s\n", path)
			} else if !os.IsNotExist(err) {
				return fmt.Errorf("failed to access existing store: %w", err)
			}
		}

		if err := ctx.Store.Init(); err != nil {
			return err
		}
		ctx.printf("Initialized posy storage at: %s\n", ctx.Store.GetConfigPath())
		return nil
	})
}
