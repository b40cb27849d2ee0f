// Package config handles configuration for the server component,
// including defaults, JSON overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings for the Secret Santa server.
//
// Fields:
//   - HTTPAddress / GRPCAddress: bind addresses of the two transports.
//   - DatabaseDSN: PostgreSQL DSN (pgx). Empty means the in-memory store.
//   - SecretKey: HMAC secret for signing user tokens (HS256).
//   - UserTokenValidityDuration: lifetime of a login token.
//   - SendGridAPIKey / MailFrom / MailFromName: e-mail delivery. Without an
//     API key notifications are only logged.
//   - NotificationTimeout / NotificationConcurrency: batch dispatch limits.
//   - SuggestedGiftValue: printed in the draw e-mail when set.
//   - RejectDuplicateEmails: refuse a second participant with the same e-mail.
//   - S3RootUser / S3RootPassword / S3Bucket / S3Region / S3BaseEndpoint:
//     draw archive storage. Empty bucket disables the archive.
//   - ImportFile: legacy data file imported on startup.
type Config struct {
	HTTPAddress               string
	GRPCAddress               string
	DatabaseDSN               string
	SecretKey                 string
	UserTokenValidityDuration time.Duration
	SendGridAPIKey            string
	MailFrom                  string
	MailFromName              string
	NotificationTimeout       time.Duration
	NotificationConcurrency   int
	SuggestedGiftValue        string
	RejectDuplicateEmails     bool
	S3RootUser                string
	S3RootPassword            string
	S3Bucket                  string
	S3Region                  string
	S3BaseEndpoint            string
	ImportFile                string
	Debug                     bool
}

// LoadDefaults populates Config with development defaults.
// NOTE: the secret key must be overridden in production.
func (c *Config) LoadDefaults() {
	c.HTTPAddress = ":8080"
	c.GRPCAddress = ":50051"
	c.DatabaseDSN = ""
	c.SecretKey = "secretKey"
	c.UserTokenValidityDuration = 30 * 24 * time.Hour
	c.MailFrom = "santa@example.com"
	c.MailFromName = "Secret Santa"
	c.NotificationTimeout = 30 * time.Second
	c.NotificationConcurrency = 8
	c.S3Region = "us-east-1"
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
