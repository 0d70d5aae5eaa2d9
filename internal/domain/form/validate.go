// Package form validates the contact form and tracks its submit status.
package form

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/h2hmarketing/site/internal/domain/model"
)

// Field names in display order.
const (
	FieldName    = "name"
	FieldEmail   = "email"
	FieldBudget  = "budget"
	FieldMessage = "message"
)

// Code classifies a validation failure.
type Code string

const (
	CodeRequired      Code = "required"
	CodeTooShort      Code = "too_short"
	CodeInvalidFormat Code = "invalid_format"
)

const (
	minNameLen    = 2
	minMessageLen = 10
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Fields lists every form field in the order errors are reported.
var Fields = []string{FieldName, FieldEmail, FieldBudget, FieldMessage}

// Contact is the form payload.
type Contact struct {
	Name    string `json:"name" jsonschema:"required,description=Visitor name"`
	Email   string `json:"email" jsonschema:"required,description=Reply address"`
	Company string `json:"company,omitempty"`
	Service string `json:"service,omitempty"`
	Budget  string `json:"budget,omitempty" jsonschema:"description=Optional budget band"`
	Message string `json:"message" jsonschema:"required,description=Project details"`
}

// Value returns the raw value of a named field.
func (c Contact) Value(field string) string {
	switch field {
	case FieldName:
		return c.Name
	case FieldEmail:
		return c.Email
	case FieldBudget:
		return c.Budget
	case FieldMessage:
		return c.Message
	}
	return ""
}

// Trimmed returns a copy with surrounding whitespace removed from every field.
func (c Contact) Trimmed() Contact {
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.TrimSpace(c.Email)
	c.Company = strings.TrimSpace(c.Company)
	c.Service = strings.TrimSpace(c.Service)
	c.Budget = strings.TrimSpace(c.Budget)
	c.Message = strings.TrimSpace(c.Message)
	return c
}

// Record converts the form to a new contact_submissions row. Blank
// optional fields become nulls.
func (c Contact) Record() model.ContactSubmission {
	c = c.Trimmed()
	return model.ContactSubmission{
		Name:    c.Name,
		Email:   c.Email,
		Company: model.OptionalString(c.Company),
		Service: model.OptionalString(c.Service),
		Budget:  model.OptionalString(c.Budget),
		Message: c.Message,
		Status:  model.StatusNew,
	}
}

// FieldError is one inline error.
type FieldError struct {
	Field   string `json:"field"`
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

func (e *FieldError) Error() string { return e.Field + ": " + e.Message }

// Errors is every failing field, in field order.
type Errors []*FieldError

func (e Errors) Error() string {
	parts := make([]string, len(e))
	for i, fe := range e {
		parts[i] = fe.Error()
	}
	return strings.Join(parts, "; ")
}

// ByField indexes errors by field name.
func (e Errors) ByField() map[string]*FieldError {
	out := make(map[string]*FieldError, len(e))
	for _, fe := range e {
		out[fe.Field] = fe
	}
	return out
}

// ValidateField checks one field the way blur validation does. Unknown
// fields and the budget never fail.
func ValidateField(field, value string) *FieldError {
	v := strings.TrimSpace(value)
	switch field {
	case FieldName:
		if v == "" {
			return &FieldError{Field: field, Code: CodeRequired, Message: "Name is required"}
		}
		if utf8.RuneCountInString(v) < minNameLen {
			return &FieldError{Field: field, Code: CodeTooShort, Message: "Name must be at least 2 characters"}
		}
	case FieldEmail:
		if v == "" {
			return &FieldError{Field: field, Code: CodeRequired, Message: "Email is required"}
		}
		if !emailPattern.MatchString(v) {
			return &FieldError{Field: field, Code: CodeInvalidFormat, Message: "Please enter a valid email"}
		}
	case FieldMessage:
		if v == "" {
			return &FieldError{Field: field, Code: CodeRequired, Message: "Message is required"}
		}
		if utf8.RuneCountInString(v) < minMessageLen {
			return &FieldError{Field: field, Code: CodeTooShort, Message: "Message must be at least 10 characters"}
		}
	}
	return nil
}

// Validate checks every field and reports all failures together. It
// returns nil when the form may be submitted.
func Validate(c Contact) Errors {
	var errs Errors
	for _, f := range Fields {
		if fe := ValidateField(f, c.Value(f)); fe != nil {
			errs = append(errs, fe)
		}
	}
	return errs
}
