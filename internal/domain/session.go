package domain

import "time"

// Session is the persisted part of the authentication state: the principal
// record stored beside the access token. The token itself lives in the
// secret store, never in the session file.
type Session struct {
	User       User
	LoggedInAt time.Time
}
