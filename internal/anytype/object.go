// Intrasync - 42 Intra project catalog sync to Anytype
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/intrasync

package anytype

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

// Icon is an object icon.
type Icon struct {
	Emoji  string `json:"emoji"`
	Format string `json:"format"`
}

// Property is one typed object property. Exactly one value field is set;
// a property whose source value is unknown carries only its key.
type Property struct {
	Key      string   `json:"key"`
	Text     *string  `json:"text,omitempty"`
	Number   *float64 `json:"number,omitempty"`
	Checkbox *bool    `json:"checkbox,omitempty"`
}

// Object is the create/update payload.
type Object struct {
	Name       string     `json:"name"`
	Body       string     `json:"body"`
	TypeKey    string     `json:"type_key"`
	Icon       Icon       `json:"icon"`
	Properties []Property `json:"properties"`
}

// Property returns the property with key, if present.
func (o Object) Property(key string) (Property, bool) {
	for _, p := range o.Properties {
		if p.Key == key {
			return p, true
		}
	}
	return Property{}, false
}

// Result is the outcome of one object in a create or update response.
type Result struct {
	ID string
	// Error is set when the response marked this object as failed.
	Error string
}

// Failed reports whether the response marked this object as failed.
func (r Result) Failed() bool {
	return r.Error != ""
}

// UnmarshalJSON reads the id from "id" or "object_id" and any "error" key.
func (r *Result) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = Result{}

	for _, key := range []string{"id", "object_id"} {
		if v, ok := raw[key]; ok {
			var id string
			if err := json.Unmarshal(v, &id); err == nil && id != "" {
				r.ID = id
				break
			}
		}
	}

	if v, ok := raw["error"]; ok {
		r.Error = errorText(v)
	}
	return nil
}

// errorText renders an "error" value: strings as-is, objects by their
// message field, anything else as compact JSON.
func errorText(v json.RawMessage) string {
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		if s == "" {
			return "unspecified error"
		}
		return s
	}
	var obj struct {
		Message string `json:"message"`
		Code    any    `json:"code"`
	}
	if err := json.Unmarshal(v, &obj); err == nil && obj.Message != "" {
		if obj.Code != nil {
			return fmt.Sprintf("%v: %s", obj.Code, obj.Message)
		}
		return obj.Message
	}
	text := strings.TrimSpace(string(v))
	if text == "" || text == "null" {
		return "unspecified error"
	}
	return text
}
