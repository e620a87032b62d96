package main

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"podium/internal/adminapi"
	"podium/internal/config"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) tokenStore() (*adminapi.FileTokenStore, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return adminapi.NewFileTokenStore(adminapi.DefaultTokenPath(cfg.Paths.StateDir)), nil
}

// adminClient builds an authenticated client from the stored session.
func (c *commandContext) adminClient() (*adminapi.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	store, err := c.tokenStore()
	if err != nil {
		return nil, err
	}
	token, _, err := adminapi.LoadToken(store)
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, errors.New("not logged in; run `podium-admin login` first")
	}
	timeout := time.Duration(cfg.Server.RequestTimeout) * time.Second
	return adminapi.New(cfg.Server.BaseURL, token, timeout)
}

// anonymousClient builds an unauthenticated client, used only for login.
func (c *commandContext) anonymousClient() (*adminapi.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	timeout := time.Duration(cfg.Server.RequestTimeout) * time.Second
	return adminapi.New(cfg.Server.BaseURL, "", timeout)
}

// describeAuthError maps a 401 onto an actionable message. The stored
// session is cleared so the next command prompts for a fresh login instead
// of retrying a dead token.
func (c *commandContext) describeAuthError(err error) error {
	if errors.Is(err, adminapi.ErrUnauthorized) {
		if store, storeErr := c.tokenStore(); storeErr == nil {
			_ = store.Clear()
		}
		return fmt.Errorf("session expired; run `podium-admin login` again: %w", err)
	}
	return err
}
