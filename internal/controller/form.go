package controller

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"taskboard/internal/service"
)

var validate = validator.New()

// Form is the create/edit form. Field tags serve both gorilla/schema
// decoding and validation.
type Form struct {
	ID          string `schema:"id"`
	Title       string `schema:"title" validate:"required"`
	Description string `schema:"description"`
	Status      string `schema:"status" validate:"required,oneof=PENDING IN_PROGRESS DONE"`
	Priority    string `schema:"priority" validate:"required,oneof=LOW MEDIUM HIGH"`
	Assignee    string `schema:"assignee"`
	DueDate     string `schema:"dueDate" validate:"omitempty,datetime=2006-01-02"`
}

// IsEdit reports whether submitting the form updates an existing task.
func (f Form) IsEdit() bool { return f.ID != "" }

// Normalize trims text fields and canonicalises enum spellings. Empty enums
// take their defaults.
func (f Form) Normalize() Form {
	f.ID = strings.TrimSpace(f.ID)
	f.Title = strings.TrimSpace(f.Title)
	f.Description = strings.TrimSpace(f.Description)
	f.Assignee = strings.TrimSpace(f.Assignee)
	f.DueDate = strings.TrimSpace(f.DueDate)

	if strings.TrimSpace(f.Status) == "" {
		f.Status = string(service.StatusPending)
	} else if st, ok := service.ParseStatus(f.Status); ok {
		f.Status = string(st)
	}
	if strings.TrimSpace(f.Priority) == "" {
		f.Priority = string(service.PriorityMedium)
	} else if p, ok := service.ParsePriority(f.Priority); ok {
		f.Priority = string(p)
	}
	return f
}

// Validate checks the normalized form. Failures are *service.ValidationError.
func (f Form) Validate() error {
	err := validate.Struct(f)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &service.ValidationError{}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, service.FieldError{
			Field:   fieldName(fe.Field()),
			Message: fieldMessage(fe),
		})
	}
	return out
}

// Task converts the form into a canonical task. Call after Normalize.
func (f Form) Task() service.Task {
	return service.Task{
		ID:          f.ID,
		Title:       f.Title,
		Description: f.Description,
		Status:      service.Status(f.Status),
		Priority:    service.Priority(f.Priority),
		Assignee:    f.Assignee,
		DueDate:     f.DueDate,
	}
}

// FormFor pre-fills a form from an existing task.
func FormFor(t service.Task) Form {
	return Form{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		Assignee:    t.Assignee,
		DueDate:     t.DueDate,
	}
}

// NewForm returns the defaults for a new task due on today.
func NewForm(today time.Time) Form {
	return Form{
		Status:   string(service.StatusPending),
		Priority: string(service.PriorityMedium),
		DueDate:  today.Format(time.DateOnly),
	}
}

func fieldName(structField string) string {
	switch structField {
	case "DueDate":
		return "dueDate"
	default:
		return strings.ToLower(structField)
	}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "oneof":
		return "must be one of " + fe.Param()
	case "datetime":
		return "must be a date (YYYY-MM-DD)"
	default:
		return "invalid value"
	}
}
