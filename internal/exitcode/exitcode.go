// Package exitcode defines exit codes for the CLI.
package exitcode

const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a user error (bad args, invalid fields, unknown task).
	UserError = 1

	// AuthError indicates the service rejected our credentials, or none are
	// configured.
	AuthError = 2

	// BackendError indicates a network failure or an error response from the
	// task service.
	BackendError = 3
)
