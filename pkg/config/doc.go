// Package config loads typed configuration structs from environment
// variables (caarlos0/env tags), with optional .env file support via
// godotenv. Missing .env files are ignored; parse failures are hard
// errors so misconfigured deployments fail at startup.
package config
