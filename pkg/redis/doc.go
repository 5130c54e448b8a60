// Package redis provides connection helpers for the Redis server
// backing the shared delivery-history window.
package redis
