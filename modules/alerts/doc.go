// Package alerts exposes the notification engine over HTTP and provides
// the channel sender adapters the dispatcher plugs in.
//
// The router covers submission, listing, read/dismiss state changes,
// clearing, and the digest trigger. EmailSender bridges the dispatcher's
// email channel onto a pkg/email provider; LogPushSender stands in for a
// push gateway until one is integrated.
package alerts
