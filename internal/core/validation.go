package core

// validation.go checks submitted records against the configured Limits.
//
// Every rule is evaluated, so a single ValidationErrors value lists all the
// problems with a record rather than only the first. Accepted records are
// normalized: the name is trimmed and the height rounded to centimeters.

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"
)

// Constraint names reported in ValidationError.Constraint.
const (
	ConstraintRequired  = "required"
	ConstraintMinLength = "min_length"
	ConstraintMaxLength = "max_length"
	ConstraintInteger   = "integer"
	ConstraintMin       = "min"
	ConstraintMax       = "max"
)

// ValidationError represents a single violated rule.
type ValidationError struct {
	Field      string `json:"field"`
	Constraint string `json:"constraint"`
	Value      any    `json:"value,omitempty"`
	Message    string `json:"message"`
}

func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// ValidationErrors lists every rule a record violated.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	parts := make([]string, len(e))
	for i, ve := range e {
		parts[i] = ve.Error()
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Fields returns the names of the offending fields in report order.
func (e ValidationErrors) Fields() []string {
	out := make([]string, 0, len(e))
	for _, ve := range e {
		out = append(out, ve.Field)
	}
	return out
}

// newlines folds CRLF and lone CR to LF; the CSV reader drops a CR that
// precedes LF even inside quoted fields.
var newlines = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// Validate checks in against l and returns the normalized Person.
// On failure the error is a ValidationErrors.
func (l Limits) Validate(in PersonInput) (Person, error) {
	var (
		p    Person
		errs ValidationErrors
	)

	// Name
	switch {
	case in.Name == nil:
		errs = append(errs, ValidationError{Field: "name", Constraint: ConstraintRequired, Message: "field is required"})
	default:
		name := newlines.Replace(strings.TrimSpace(*in.Name))
		n := utf8.RuneCountInString(name)
		switch {
		case name == "":
			errs = append(errs, ValidationError{Field: "name", Constraint: ConstraintRequired, Value: *in.Name,
				Message: "must not be empty"})
		case n < l.NameMinLen:
			errs = append(errs, ValidationError{Field: "name", Constraint: ConstraintMinLength, Value: name,
				Message: fmt.Sprintf("must be at least %d characters", l.NameMinLen)})
		case n > l.NameMaxLen:
			errs = append(errs, ValidationError{Field: "name", Constraint: ConstraintMaxLength, Value: name,
				Message: fmt.Sprintf("must be at most %d characters", l.NameMaxLen)})
		default:
			p.Name = name
		}
	}

	// Age
	switch {
	case in.Age == nil:
		errs = append(errs, ValidationError{Field: "age", Constraint: ConstraintRequired, Message: "field is required"})
	case *in.Age != math.Trunc(*in.Age) || math.IsInf(*in.Age, 0):
		errs = append(errs, ValidationError{Field: "age", Constraint: ConstraintInteger, Value: *in.Age,
			Message: "must be an integer"})
	case *in.Age < float64(l.AgeMin):
		errs = append(errs, ValidationError{Field: "age", Constraint: ConstraintMin, Value: *in.Age,
			Message: fmt.Sprintf("must be at least %d", l.AgeMin)})
	case *in.Age > float64(l.AgeMax):
		errs = append(errs, ValidationError{Field: "age", Constraint: ConstraintMax, Value: *in.Age,
			Message: fmt.Sprintf("must be at most %d", l.AgeMax)})
	default:
		p.Age = int(*in.Age)
	}

	// Height
	switch {
	case in.Height == nil:
		errs = append(errs, ValidationError{Field: "height", Constraint: ConstraintRequired, Message: "field is required"})
	case math.IsNaN(*in.Height) || *in.Height < l.HeightMin:
		errs = append(errs, ValidationError{Field: "height", Constraint: ConstraintMin, Value: *in.Height,
			Message: fmt.Sprintf("must be at least %g meters", l.HeightMin)})
	case *in.Height > l.HeightMax:
		errs = append(errs, ValidationError{Field: "height", Constraint: ConstraintMax, Value: *in.Height,
			Message: fmt.Sprintf("must be at most %g meters", l.HeightMax)})
	default:
		p.Height = RoundHeight(*in.Height)
	}

	if len(errs) > 0 {
		return Person{}, errs
	}
	return p, nil
}

// RoundHeight rounds meters to two decimal places.
func RoundHeight(h float64) float64 {
	return math.Round(h*100) / 100
}
