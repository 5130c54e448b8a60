// Package mongo provides connection helpers for the MongoDB document
// store used by the finance module: env-tagged configuration, retrying
// connect, and a ping-based healthcheck.
package mongo
