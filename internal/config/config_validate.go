// Intrasync - 42 Intra project catalog sync to Anytype
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/intrasync

package config

import (
	"strings"

	"github.com/tomtom215/intrasync/internal/apierr"
	"github.com/tomtom215/intrasync/internal/validation"
)

// Validate checks field ranges and formats. It does not require any
// credentials, since show-cache and plan need none.
func (c *Config) Validate() error {
	if verr := validation.ValidateStruct(c); verr != nil {
		return apierr.New(apierr.KindConfiguration, "validate config", verr)
	}

	if err := c.validateURLs(); err != nil {
		return err
	}

	return c.validateDelays()
}

func (c *Config) validateURLs() error {
	if err := validateHTTPURL(c.FortyTwo.APIURL, "FORTYTWO_API_URL"); err != nil {
		return apierr.New(apierr.KindConfiguration, "validate config", err)
	}
	if err := validateHTTPURL(c.Anytype.APIURL, "ANYTYPE_API_URL"); err != nil {
		return apierr.New(apierr.KindConfiguration, "validate config", err)
	}
	return nil
}

func (c *Config) validateDelays() error {
	switch {
	case c.HTTP.BaseDelay <= 0:
		return apierr.Newf(apierr.KindConfiguration, "validate config", "BASE_DELAY must be positive, got %s", c.HTTP.BaseDelay)
	case c.HTTP.MaxDelay < c.HTTP.BaseDelay:
		return apierr.Newf(apierr.KindConfiguration, "validate config",
			"MAX_DELAY (%s) must not be less than BASE_DELAY (%s)", c.HTTP.MaxDelay, c.HTTP.BaseDelay)
	case c.HTTP.Timeout <= 0:
		return apierr.Newf(apierr.KindConfiguration, "validate config", "HTTP_TIMEOUT must be positive, got %s", c.HTTP.Timeout)
	}
	return nil
}

// RequireFortyTwo checks the credentials needed to call the 42 API.
func (c *Config) RequireFortyTwo() error {
	var missing []string
	if c.FortyTwo.ClientID == "" {
		missing = append(missing, "FT_UID")
	}
	if c.FortyTwo.ClientSecret == "" {
		missing = append(missing, "FT_SECRET")
	}
	return missingError(missing)
}

// RequireAnytype checks the settings needed to write to Anytype.
func (c *Config) RequireAnytype() error {
	var missing []string
	if c.Anytype.APIKey == "" {
		missing = append(missing, "ANYTYPE_API_KEY")
	}
	if c.Anytype.SpaceID == "" {
		missing = append(missing, "ANYTYPE_SPACE_ID")
	}
	return missingError(missing)
}

func missingError(missing []string) error {
	if len(missing) == 0 {
		return nil
	}
	return apierr.Newf(apierr.KindConfiguration, "validate config", "%s not set", strings.Join(missing, ", "))
}
