package controller

import "taskboard/internal/service"

// Phase is the state of the edit session.
type Phase int

const (
	Closed Phase = iota
	OpenForCreate
	OpenForEdit
	Submitting
)

func (p Phase) String() string {
	switch p {
	case OpenForCreate:
		return "open-for-create"
	case OpenForEdit:
		return "open-for-edit"
	case Submitting:
		return "submitting"
	default:
		return "closed"
	}
}

// Session is the create/edit dialog. Err holds the last validation failure
// while the form is open.
type Session struct {
	Phase Phase
	Form  Form
	Err   *service.ValidationError
}

// Open reports whether a form is shown.
func (s Session) Open() bool { return s.Phase != Closed }
