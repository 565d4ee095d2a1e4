// Package services provides shared error classification helpers used by the
// merge pipeline and the external tool clients.
//
// Errors are tagged with sentinel markers (ErrExternalTool, ErrValidation,
// ErrConfiguration, ErrNotFound, ErrTransient) so callers can classify a
// failure with errors.Is without parsing message text.
package services
