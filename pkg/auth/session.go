package auth

import (
	"crypto/sha256"
	"net/http"

	"github.com/gorilla/sessions"
)

// Store is the global session store for consultation chats. It keeps the
// conversation ID so a patient's chat survives across requests without the
// client managing it.
var Store *sessions.CookieStore

// SessionName is the name of the consultation session cookie.
const SessionName = "consultation-session"

// Session value keys.
const (
	SessionKeyConversationID = "conversation_id"
)

// InitSessionStore initializes the cookie-based session store.
//
// The secret can be any passphrase; it is SHA-256 hashed to derive a
// 32-byte signing key. It must be consistent across restarts and across
// servers in a load-balanced deployment.
func InitSessionStore(secret string, secure bool) {
	key := sha256.Sum256([]byte(secret))

	Store = sessions.NewCookieStore(key[:])
	Store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400, // consultation sessions last a day
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	}
}

// GetSession retrieves the consultation session from the request.
// Creates a new session if one doesn't exist.
func GetSession(r *http.Request) (*sessions.Session, error) {
	return Store.Get(r, SessionName)
}

// SaveSession saves the session to the response.
func SaveSession(r *http.Request, w http.ResponseWriter, session *sessions.Session) error {
	return session.Save(r, w)
}
