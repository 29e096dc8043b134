package form

import (
	"errors"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Errors maps a form field name to its messages.
// It is returned as an error by services so handlers can re-render the form.
type Errors map[string][]string

// Add appends msg to field, skipping exact duplicates.
func (e Errors) Add(field, msg string) {
	for _, existing := range e[field] {
		if existing == msg {
			return
		}
	}
	e[field] = append(e[field], msg)
}

func (e Errors) Has(field string) bool {
	return len(e[field]) > 0
}

// Err returns e as an error, or nil when there is nothing to report.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+strings.Join(e[f], "; "))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// FromValidation converts the result of validation.ValidateStruct.
// Internal (non-validation) errors are returned unchanged in the second value.
func FromValidation(err error) (Errors, error) {
	out := Errors{}
	if err == nil {
		return out, nil
	}

	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		return out, err
	}
	for field, ferr := range verrs {
		if ferr == nil {
			continue
		}
		out.Add(field, ferr.Error())
	}
	return out, nil
}

// As extracts form errors from err.
func As(err error) (Errors, bool) {
	var fe Errors
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}
