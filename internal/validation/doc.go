// Intrasync - 42 Intra project catalog sync to Anytype
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/intrasync

// Package validation validates configuration structs with
// go-playground/validator v10.
//
// Field names in messages come from the koanf tag, joined by dots from the
// outermost struct, so a failure reads the way the setting is written in
// the config file:
//
//	type Config struct {
//	    Sync struct {
//	        BatchSize int `koanf:"batch_size" validate:"min=1,max=1000"`
//	    } `koanf:"sync"`
//	}
//
//	// sync.batch_size must be at least 1
//
// # Common Validation Tags
//
//   - required: field must not be empty
//   - min=n, max=n: length for strings, value for numbers
//   - gte=n, lte=n, gt=n, lt=n: numeric bounds
//   - oneof=a b c: enumerations (log level, cache backend)
//   - url: absolute URL
//
// # Error Types
//
// ValidateStruct returns *RequestValidationError, which lists every failing
// field as a ValidationError with its path, tag, parameter and value.
package validation
