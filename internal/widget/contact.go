package widget

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/h2hmarketing/site/internal/domain/form"
	"github.com/h2hmarketing/site/internal/frame"
)

// Submitter hands a validated contact to the record store.
type Submitter interface {
	SubmitContact(ctx context.Context, c form.Contact) (string, error)
}

// SubmitterFunc adapts a function to Submitter.
type SubmitterFunc func(ctx context.Context, c form.Contact) (string, error)

// SubmitContact implements Submitter.
func (f SubmitterFunc) SubmitContact(ctx context.Context, c form.Contact) (string, error) {
	return f(ctx, c)
}

// ContactForm holds field values, inline errors and the submit banner.
type ContactForm struct {
	submitter Submitter

	mu     sync.RWMutex
	values form.Contact
	errors map[string]*form.FieldError
	status *form.StatusTracker

	lifecycle
}

// NewContactForm creates an empty form.
func NewContactForm(sub Submitter) *ContactForm {
	return &ContactForm{submitter: sub, errors: make(map[string]*form.FieldError)}
}

// Mount attaches the banner timer to s.
func (c *ContactForm) Mount(s frame.Scheduler) error {
	return c.MountWithDismiss(s, form.DefaultDismiss)
}

// MountWithDismiss is Mount with a custom banner lifetime.
func (c *ContactForm) MountWithDismiss(s frame.Scheduler, dismiss time.Duration) error {
	td, err := c.begin()
	if err != nil {
		return err
	}
	st := form.NewStatusTracker(s, dismiss)
	c.mu.Lock()
	c.status = st
	c.mu.Unlock()
	td.Add(st.Stop)
	td.Add(func() {
		c.mu.Lock()
		c.status = nil
		c.mu.Unlock()
	})
	return nil
}

// Unmount cancels any pending banner dismissal. Submits after it fail with
// ErrNotMounted.
func (c *ContactForm) Unmount() { c.end() }

// Set updates one field value.
func (c *ContactForm) Set(field, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch field {
	case form.FieldName:
		c.values.Name = value
	case form.FieldEmail:
		c.values.Email = value
	case form.FieldBudget:
		c.values.Budget = value
	case form.FieldMessage:
		c.values.Message = value
	case "company":
		c.values.Company = value
	case "service":
		c.values.Service = value
	}
}

// Blur validates one field and updates its inline error.
func (c *ContactForm) Blur(field string) *form.FieldError {
	c.mu.Lock()
	defer c.mu.Unlock()
	fe := form.ValidateField(field, c.values.Value(field))
	if fe == nil {
		delete(c.errors, field)
	} else {
		c.errors[field] = fe
	}
	return fe
}

// Submit validates every field and, when clean, issues exactly one insert.
// Validation failures are returned as form.Errors. Store failures show the
// error banner, keep the values and return form.ErrSubmitFailed.
func (c *ContactForm) Submit(ctx context.Context) (string, error) {
	c.mu.Lock()
	st := c.status
	if st == nil {
		c.mu.Unlock()
		return "", ErrNotMounted
	}
	errs := form.Validate(c.values)
	c.errors = errs.ByField()
	values := c.values.Trimmed()
	c.mu.Unlock()
	if len(errs) > 0 {
		return "", errs
	}
	if !st.Begin() {
		return "", ErrSubmitInFlight
	}

	id, err := c.submitter.SubmitContact(ctx, values)
	c.mu.Lock()
	mounted := c.status == st
	if err == nil && mounted {
		c.values = form.Contact{}
	}
	c.mu.Unlock()
	// Unmounted mid-flight: report the outcome but schedule nothing.
	if mounted {
		if err != nil {
			st.Fail()
		} else {
			st.Succeed()
		}
	}
	if err != nil {
		return "", fmt.Errorf("%w: %w", form.ErrSubmitFailed, err)
	}
	return id, nil
}

// Values returns the current field values.
func (c *ContactForm) Values() form.Contact {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.values
}

// Errors returns the inline errors in field order.
func (c *ContactForm) Errors() form.Errors {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out form.Errors
	for _, f := range form.Fields {
		if fe, ok := c.errors[f]; ok {
			out = append(out, fe)
		}
	}
	return out
}

// Status returns the banner state; idle before mount.
func (c *ContactForm) Status() form.Status {
	c.mu.RLock()
	st := c.status
	c.mu.RUnlock()
	if st == nil {
		return form.StatusIdle
	}
	return st.Status()
}
