package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/grantflow/internal/common"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// DefaultDatabasePath is where imported datasets live when data.database is unset.
const DefaultDatabasePath = "$HOME/.local/share/grantflow/grantflow.db"

var validate = validator.New(validator.WithRequiredStructEnabled())

// Settings are the dataset and query defaults shared by every command.
type Settings struct {
	Registry   string  `validate:"required_with=Ledger"`
	Ledger     string  `validate:"required_with=Registry"`
	Database   string  `validate:"required"`
	Duplicates string  `validate:"oneof=first last"`
	Years      []int   `validate:"dive,gte=1000,lte=9999"`
	MinAmount  float64 `validate:"gte=0"`
	Depth      int     `validate:"gte=0"`
	MaxOrgs    int     `validate:"gte=0"`
}

// UsesFiles reports whether datasets come from files rather than the store.
func (s Settings) UsesFiles() bool {
	return s.Registry != "" && s.Ledger != ""
}

// LoadSettings reads data.*, index.* and query.* keys from Viper and
// validates them.
func LoadSettings() (*Settings, error) {
	s := &Settings{
		Registry:   viper.GetString("data.registry"),
		Ledger:     viper.GetString("data.ledger"),
		Database:   viper.GetString("data.database"),
		Duplicates: strings.ToLower(viper.GetString("index.duplicates")),
		Years:      viper.GetIntSlice("query.years"),
		MinAmount:  viper.GetFloat64("query.min_amount"),
		Depth:      viper.GetInt("query.depth"),
		MaxOrgs:    viper.GetInt("query.max_orgs"),
	}
	if s.Database == "" {
		s.Database = DefaultDatabasePath
	}
	if s.Duplicates == "" {
		s.Duplicates = "first"
	}
	if s.Registry != "" {
		s.Registry = ExpandPath(s.Registry)
	}
	if s.Ledger != "" {
		s.Ledger = ExpandPath(s.Ledger)
	}
	s.Database = DatabasePath(s.Database)

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks the settings and reports every invalid field at once.
func (s *Settings) Validate() error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %w", common.ErrInvalidConfig, err)
	}
	problems := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		problems = append(problems, describe(fe))
	}
	return fmt.Errorf("%w: %s", common.ErrInvalidConfig, strings.Join(problems, "; "))
}

func describe(fe validator.FieldError) string {
	name, _, _ := strings.Cut(fe.StructField(), "[")
	field := settingKeys[name]
	if field == "" {
		field = fe.Namespace()
	}
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "required_with":
		return field + " must be set together with " + settingKeys[fe.Param()]
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", field, fe.Param(), fe.Value())
	case "gte":
		return fmt.Sprintf("%s must be >= %s, got %v", field, fe.Param(), fe.Value())
	case "lte":
		return fmt.Sprintf("%s must be <= %s, got %v", field, fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}

var settingKeys = map[string]string{
	"Registry":   "data.registry",
	"Ledger":     "data.ledger",
	"Database":   "data.database",
	"Duplicates": "index.duplicates",
	"Years":      "query.years",
	"MinAmount":  "query.min_amount",
	"Depth":      "query.depth",
	"MaxOrgs":    "query.max_orgs",
}
