// Package common contains shared constants and sentinel errors used across
// the Secret Santa service components.
package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the user
// identity token on inbound requests.
const AccessTokenHeaderName = "access_token"

// UserTokenHTTPHeader is the HTTP header carrying the user identity token.
const UserTokenHTTPHeader = "X-User-Token"

// MinParticipants is the smallest list size a draw is allowed to run on.
const MinParticipants = 3
