package config

import (
	"os"

	"github.com/Veraticus/grantflow/internal/sheets"
	"github.com/spf13/viper"
)

// sheetsSource maps one Sheets setting to its viper key and its
// GOOGLE_SHEETS_* fallback.
type sheetsSource struct {
	key    string
	env    string
	target func(*sheets.Config) *string
	path   bool
}

var sheetsSources = []sheetsSource{
	{key: "sheets.service_account_path", env: "GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH", path: true,
		target: func(c *sheets.Config) *string { return &c.ServiceAccountPath }},
	{key: "sheets.client_id", env: "GOOGLE_SHEETS_CLIENT_ID",
		target: func(c *sheets.Config) *string { return &c.ClientID }},
	{key: "sheets.client_secret", env: "GOOGLE_SHEETS_CLIENT_SECRET",
		target: func(c *sheets.Config) *string { return &c.ClientSecret }},
	{key: "sheets.refresh_token", env: "GOOGLE_SHEETS_REFRESH_TOKEN",
		target: func(c *sheets.Config) *string { return &c.RefreshToken }},
	{key: "sheets.spreadsheet_id", env: "GOOGLE_SHEETS_SPREADSHEET_ID",
		target: func(c *sheets.Config) *string { return &c.SpreadsheetID }},
	{key: "sheets.spreadsheet_name", env: "GOOGLE_SHEETS_SPREADSHEET_NAME",
		target: func(c *sheets.Config) *string { return &c.SpreadsheetName }},
	{key: "sheets.time_zone", env: "GOOGLE_SHEETS_TIME_ZONE",
		target: func(c *sheets.Config) *string { return &c.TimeZone }},
}

// LoadSheetsConfig builds the export configuration. Each setting comes from
// viper (config file or GRANTFLOW_SHEETS_* variables) first, then from the
// matching GOOGLE_SHEETS_* variable, then from sheets.DefaultConfig.
func LoadSheetsConfig() (*sheets.Config, error) {
	config := sheets.DefaultConfig()

	for _, src := range sheetsSources {
		v := viper.GetString(src.key)
		if v == "" {
			v = os.Getenv(src.env)
		}
		if v == "" {
			continue
		}
		if src.path {
			v = ExpandPath(v)
		}
		*src.target(&config) = v
	}

	if viper.IsSet("sheets.batch_size") {
		config.BatchSize = viper.GetInt("sheets.batch_size")
	}
	if viper.IsSet("sheets.retry_attempts") {
		config.RetryAttempts = viper.GetInt("sheets.retry_attempts")
	}
	if viper.IsSet("sheets.formatting") {
		config.EnableFormatting = viper.GetBool("sheets.formatting")
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}
