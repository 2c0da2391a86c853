package config

import (
	"github.com/garyjia/surat-menyurat/internal/container"
)

// ToContainerConfig converts the file/env Config into container.Config,
// resolving the credentials file on the way.
func (c *Config) ToContainerConfig() (*container.Config, error) {
	creds, err := c.Store.CredentialsJSON()
	if err != nil {
		return nil, err
	}

	return &container.Config{
		Store: container.StoreConfig{
			Driver:          c.Store.Driver,
			SpreadsheetID:   c.Store.SpreadsheetID,
			CredentialsJSON: creds,
			Concurrency:     c.Store.Concurrency,
			MetadataTTL:     c.Store.MetadataTTL,
			ReadTTL:         c.Store.ReadTTL,
			SQLitePath:      c.Store.SQLitePath,
			Bootstrap:       c.Store.Bootstrap,
		},
		Auth: container.AuthConfig{
			JWTSecret:     c.Auth.JWTSecret,
			TokenTTL:      c.Auth.TokenTTL,
			AdminEmail:    c.Auth.AdminEmail,
			AdminPassword: c.Auth.AdminPassword,
			BcryptCost:    c.Auth.BcryptCost,

			GoogleClientID: c.Auth.GoogleClientID,
		},
	}, nil
}
