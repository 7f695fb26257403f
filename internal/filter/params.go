// Package filter binds item listing query parameters into a typed record.
package filter

import (
	"errors"
	"net/url"
	"slices"
	"strconv"
)

// Query keys recognized by Bind.
const (
	KeyLimit      = "limit"
	KeyOffset     = "offset"
	KeyQuery      = "q"
	KeyCategories = "categories"
)

// Default values applied when a key is absent.
const (
	DefaultLimit  = 100
	DefaultOffset = 0
)

// Params is the bound form of an item listing query.
// Limit and Offset are accepted as given, including zero and negative values.
type Params struct {
	Limit      int      `json:"limit"      doc:"Maximum number of items to return" example:"100"`
	Offset     int      `json:"offset"     doc:"Number of items to skip"           example:"0"`
	Q          *string  `json:"q"          doc:"Search keyword, null when absent"`
	Categories []string `json:"categories" doc:"Category filters in request order"`
}

// Defaults returns Params populated with the documented defaults.
func Defaults() Params {
	return Params{
		Limit:      DefaultLimit,
		Offset:     DefaultOffset,
		Q:          nil,
		Categories: []string{},
	}
}

// Bind maps decoded query values onto Params. Absent keys keep their
// defaults, unknown keys are ignored. Scalar keys use the last value when
// repeated. Limit and offset must fit in an int; larger magnitudes fail with
// strconv.ErrRange. Every integer coercion failure is reported in a
// *ValidationError and no partial Params is returned.
func Bind(values url.Values) (Params, error) {
	p := Defaults()
	var verr ValidationError

	if raw, ok := last(values, KeyLimit); ok {
		n, err := parseInt(KeyLimit, raw)
		if err != nil {
			verr.Errors = append(verr.Errors, err)
		}
		p.Limit = n
	}
	if raw, ok := last(values, KeyOffset); ok {
		n, err := parseInt(KeyOffset, raw)
		if err != nil {
			verr.Errors = append(verr.Errors, err)
		}
		p.Offset = n
	}
	if len(verr.Errors) > 0 {
		return Params{}, &verr
	}

	if raw, ok := last(values, KeyQuery); ok {
		q := raw
		p.Q = &q
	}
	if cats := values[KeyCategories]; len(cats) > 0 {
		p.Categories = slices.Clone(cats)
	}
	return p, nil
}

// HasQuery reports whether a search keyword was supplied.
func (p Params) HasQuery() bool {
	return p.Q != nil
}

func last(values url.Values, key string) (string, bool) {
	vs, ok := values[key]
	if !ok || len(vs) == 0 {
		return "", false
	}
	return vs[len(vs)-1], true
}

func parseInt(field, raw string) (int, *CoercionError) {
	n, err := strconv.Atoi(raw)
	if err != nil {
		var cause error = strconv.ErrSyntax
		var ne *strconv.NumError
		if errors.As(err, &ne) {
			cause = ne.Err
		}
		return 0, &CoercionError{Field: field, Value: raw, Err: cause}
	}
	return n, nil
}
