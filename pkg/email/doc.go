// Package email provides a provider-agnostic interface for sending
// transactional emails, with a Postmark implementation for production
// and a log-only sender for development.
//
// The notification engine's email channel delegates to an EmailSender;
// swapping providers requires no change to application code.
package email
