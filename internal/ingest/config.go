package ingest

import (
	"errors"
	"fmt"
	"strings"

	"github.com/franz/pgn-loader/internal/report"
	"github.com/franz/pgn-loader/internal/store"
	"github.com/franz/pgn-loader/internal/util"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"
)

// DefaultExtension is the file suffix imported when none is configured
const DefaultExtension = ".pgn"

var validate = validator.New()

// Config holds importer configuration
type Config struct {
	Store     *store.Store  `validate:"required"`
	Source    string        `validate:"required"`
	Extension string        `validate:"required,startswith=."`
	Schema    store.Variant `validate:"required,oneof=minimal extended"`

	Fs       afero.Fs // OS filesystem when nil
	Logger   *report.EventLogger
	Retry    *util.RetryConfig
	Progress bool
}

// Validate fills defaults and checks the configuration
func (c *Config) Validate() error {
	if c.Extension == "" {
		c.Extension = DefaultExtension
	}
	if c.Schema == "" && c.Store != nil {
		c.Schema = c.Store.Variant()
	}

	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("%w: %v", util.ErrInvalidConfig, err)
		}

		details := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			switch fe.Tag() {
			case "required":
				details = append(details, fmt.Sprintf("%s is required", strings.ToLower(fe.Field())))
			case "oneof":
				details = append(details, fmt.Sprintf("%s must be one of [%s]", strings.ToLower(fe.Field()), fe.Param()))
			case "startswith":
				details = append(details, fmt.Sprintf("%s must start with %q", strings.ToLower(fe.Field()), fe.Param()))
			default:
				details = append(details, fmt.Sprintf("%s failed %s", strings.ToLower(fe.Field()), fe.Tag()))
			}
		}
		return fmt.Errorf("%w: %s", util.ErrInvalidConfig, strings.Join(details, "; "))
	}

	if c.Schema != c.Store.Variant() {
		return fmt.Errorf("%w: schema %s does not match database variant %s",
			util.ErrInvalidConfig, c.Schema, c.Store.Variant())
	}

	if c.Fs == nil {
		c.Fs = afero.NewOsFs()
		if c.Retry == nil {
			c.Retry = util.RetryConfigForPath(c.Source)
		}
	}
	if c.Retry == nil {
		c.Retry = util.DefaultRetryConfig()
	}
	if c.Retry.MaxAttempts < 1 {
		retry := *c.Retry
		retry.MaxAttempts = 1
		c.Retry = &retry
	}
	return nil
}
