package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/secretsanta/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
// Supported flags:
//
//	-a string    HTTP bind address (e.g., ":8080")
//	-g string    gRPC bind address (e.g., ":50051")
//	-d string    PostgreSQL DSN, empty for the in-memory store
//	-s string    user token HMAC secret
//	-t int       user token validity, hours
//	-k string    SendGrid API key
//	-f string    sender e-mail address
//	-n string    sender display name
//	-w int       notification batch timeout, seconds
//	-l int       notification concurrency
//	-v string    suggested gift value
//	-x bool      reject duplicate participant e-mails (use -x=true)
//	-u string    S3 root user
//	-p string    S3 root password
//	-b string    S3 bucket, empty disables the draw archive
//	-r string    S3 region
//	-e string    S3 base endpoint
//	-i string    legacy data file to import on startup
//	-debug bool  verbose logging (use -debug=true)
//
// os.Args is filtered with flagx.FilterArgs first so -c/-config never reach
// this flag set.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{
		"-a", "-g", "-d", "-s", "-t", "-k", "-f", "-n", "-w", "-l", "-v", "-x",
		"-u", "-p", "-b", "-r", "-e", "-i", "-debug",
	})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.HTTPAddress, "a", config.HTTPAddress, "HTTP address and port to run server")
	fs.StringVar(&config.GRPCAddress, "g", config.GRPCAddress, "gRPC address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	tokenValidity := fs.Int("t", int(config.UserTokenValidityDuration.Hours()), "user token validity (in hours)")

	fs.StringVar(&config.SendGridAPIKey, "k", config.SendGridAPIKey, "SendGrid API key")
	fs.StringVar(&config.MailFrom, "f", config.MailFrom, "sender e-mail address")
	fs.StringVar(&config.MailFromName, "n", config.MailFromName, "sender name")
	notificationTimeout := fs.Int("w", int(config.NotificationTimeout.Seconds()), "notification batch timeout (in seconds)")
	fs.IntVar(&config.NotificationConcurrency, "l", config.NotificationConcurrency, "concurrent notifications")
	fs.StringVar(&config.SuggestedGiftValue, "v", config.SuggestedGiftValue, "suggested gift value")
	fs.BoolVar(&config.RejectDuplicateEmails, "x", config.RejectDuplicateEmails, "reject duplicate participant e-mails")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "r", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	fs.StringVar(&config.ImportFile, "i", config.ImportFile, "legacy data file to import")
	fs.BoolVar(&config.Debug, "debug", config.Debug, "debug logging")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.UserTokenValidityDuration = time.Duration(*tokenValidity) * time.Hour
	config.NotificationTimeout = time.Duration(*notificationTimeout) * time.Second
}
