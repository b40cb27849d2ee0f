package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/secretsanta/internal/flagx"
	"github.com/dmitrijs2005/secretsanta/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Durations use
// timex.Duration so both "30s" and integer nanoseconds are accepted.
// Pointers distinguish "absent" from "zero" for scalar fields.
type JsonConfig struct {
	HTTPAddress               string         `json:"http_address"`
	GRPCAddress               string         `json:"grpc_address"`
	DatabaseDSN               string         `json:"database_dsn"`
	SecretKey                 string         `json:"secret_key"`
	UserTokenValidityDuration timex.Duration `json:"user_token_validity_duration"`
	SendGridAPIKey            string         `json:"sendgrid_api_key"`
	MailFrom                  string         `json:"mail_from"`
	MailFromName              string         `json:"mail_from_name"`
	NotificationTimeout       timex.Duration `json:"notification_timeout"`
	NotificationConcurrency   int            `json:"notification_concurrency"`
	SuggestedGiftValue        string         `json:"suggested_gift_value"`
	RejectDuplicateEmails     *bool          `json:"reject_duplicate_emails"`
	S3RootUser                string         `json:"s3_root_user"`
	S3RootPassword            string         `json:"s3_root_password"`
	S3Bucket                  string         `json:"s3_bucket"`
	S3Region                  string         `json:"s3_region"`
	S3BaseEndpoint            string         `json:"s3_base_endpoint"`
	ImportFile                string         `json:"import_file"`
	Debug                     *bool          `json:"debug"`
}

// parseJson overlays values from the file named by -c/-config onto config.
// Fields missing from the file keep their current values. An unreadable
// file or invalid JSON panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.ConfigFileFlag()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.HTTPAddress, c.HTTPAddress)
	setString(&config.GRPCAddress, c.GRPCAddress)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	if c.UserTokenValidityDuration.Duration > 0 {
		config.UserTokenValidityDuration = c.UserTokenValidityDuration.Duration
	}
	setString(&config.SendGridAPIKey, c.SendGridAPIKey)
	setString(&config.MailFrom, c.MailFrom)
	setString(&config.MailFromName, c.MailFromName)
	if c.NotificationTimeout.Duration > 0 {
		config.NotificationTimeout = c.NotificationTimeout.Duration
	}
	if c.NotificationConcurrency > 0 {
		config.NotificationConcurrency = c.NotificationConcurrency
	}
	setString(&config.SuggestedGiftValue, c.SuggestedGiftValue)
	if c.RejectDuplicateEmails != nil {
		config.RejectDuplicateEmails = *c.RejectDuplicateEmails
	}
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.ImportFile, c.ImportFile)
	if c.Debug != nil {
		config.Debug = *c.Debug
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
