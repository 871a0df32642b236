// Package optparse decodes a URL's query component into a driver-specific
// options struct, given a schema and a URL-shaped string, the way a
// configuration package decodes weakly-typed input with mapstructure.
package optparse

import (
	"fmt"
	"net/url"
	"reflect"

	"github.com/mitchellh/mapstructure"
)

// Parse decodes u's query parameters into a new value of the same type as
// schema (schema is used only as a type template; pass a zero value of the
// target struct, e.g. &S3Options{}). Field matching is case-insensitive and
// uses the "opt" struct tag when present, matching mapstructure convention.
func Parse(rawURL string, schema interface{}) (interface{}, error) {
	if schema == nil {
		return nil, nil
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("optparse: invalid url %q: %w", rawURL, err)
	}

	raw := map[string]interface{}{}
	for k, v := range u.Query() {
		if len(v) == 1 {
			raw[k] = v[0]
		} else {
			raw[k] = v
		}
	}

	result := schema
	if t := reflect.TypeOf(schema); t.Kind() == reflect.Ptr {
		result = reflect.New(t.Elem()).Interface()
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "opt",
		WeaklyTypedInput: true,
		Result:           result,
	})
	if err != nil {
		return nil, fmt.Errorf("optparse: building decoder: %w", err)
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("optparse: decoding options for %q: %w", rawURL, err)
	}
	return result, nil
}
