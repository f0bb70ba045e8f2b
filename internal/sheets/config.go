// Package sheets exports result graphs to Google Sheets.
package sheets

import (
	"errors"
	"fmt"
	"time"
	_ "time/tzdata" // time zones must resolve on hosts without a zoneinfo database

	"github.com/Veraticus/grantflow/internal/common"
)

// DefaultSpreadsheetName is used when no spreadsheet id or name is configured.
const DefaultSpreadsheetName = "Grant Network"

// Authentication methods.
const (
	AuthOAuth2         = "oauth2"
	AuthServiceAccount = "service_account"
)

// Config holds the configuration for the Google Sheets writer.
type Config struct {
	ClientID           string
	ClientSecret       string
	RefreshToken       string
	ServiceAccountPath string
	SpreadsheetID      string
	SpreadsheetName    string
	TimeZone           string
	BatchSize          int
	RetryAttempts      int
	RetryDelay         time.Duration
	EnableFormatting   bool
}

// DefaultConfig returns the writer defaults; credentials are left empty.
func DefaultConfig() Config {
	return Config{
		SpreadsheetName:  DefaultSpreadsheetName,
		EnableFormatting: true,
		TimeZone:         "America/New_York",
		BatchSize:        1000,
		RetryAttempts:    3,
		RetryDelay:       time.Second,
	}
}

// AuthMethod names the configured credentials, or "" when there are none.
func (c *Config) AuthMethod() string {
	switch {
	case c.ServiceAccountPath != "":
		return AuthServiceAccount
	case c.ClientID != "" && c.ClientSecret != "" && c.RefreshToken != "":
		return AuthOAuth2
	}
	return ""
}

// Validate checks that exactly one authentication method is configured and
// that the writer limits are usable.
func (c *Config) Validate() error {
	hasOAuth := c.ClientID != "" && c.ClientSecret != "" && c.RefreshToken != ""
	hasServiceAccount := c.ServiceAccountPath != ""

	if !hasOAuth && !hasServiceAccount {
		return fmt.Errorf("%w: no authentication method configured", common.ErrMissingConfig)
	}
	if hasOAuth && hasServiceAccount {
		return fmt.Errorf("%w: multiple authentication methods configured; use either OAuth2 or service account", common.ErrInvalidConfig)
	}

	var problems []error
	if c.BatchSize <= 0 {
		problems = append(problems, errors.New("batch size must be positive"))
	}
	if c.RetryAttempts < 0 {
		problems = append(problems, errors.New("retry attempts cannot be negative"))
	}
	if c.RetryDelay < 0 {
		problems = append(problems, errors.New("retry delay cannot be negative"))
	}
	if c.TimeZone != "" {
		if _, err := time.LoadLocation(c.TimeZone); err != nil {
			problems = append(problems, fmt.Errorf("unknown time zone %q", c.TimeZone))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %w", common.ErrInvalidConfig, errors.Join(problems...))
	}
	return nil
}
