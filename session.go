package main

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
)

const sessionName = "session"

func newSessionStore(cfg *Config) *sessions.CookieStore {
	s := sessions.NewCookieStore([]byte(cfg.SecretKey))
	s.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		MaxAge:   cfg.SessionMaxAge,
	}
	return s
}

// startSession binds the cookie to the authenticated user. Each login gets a
// fresh sid so log lines from one browser session correlate.
func (app *App) startSession(w http.ResponseWriter, r *http.Request, userID int64, username string) error {
	session, _ := app.sessions.Get(r, sessionName)
	session.Values["user_id"] = userID
	session.Values["username"] = username
	session.Values["sid"] = uuid.NewString()
	return session.Save(r, w)
}

// identify resolves the session cookie to an Identity. Returns nil when the
// cookie is missing, malformed or expired.
func (app *App) identify(r *http.Request) *Identity {
	session, _ := app.sessions.Get(r, sessionName)
	userID, ok := session.Values["user_id"].(int64)
	if !ok {
		return nil
	}
	username, _ := session.Values["username"].(string)
	sid, _ := session.Values["sid"].(string)
	return &Identity{UserID: userID, Username: username, SID: sid}
}

// destroySession drops the bound identity so the cookie no longer resolves.
// Destroying an already-invalid session is not an error. The cookie itself is
// kept alive so a logout flash can still ride it.
func (app *App) destroySession(w http.ResponseWriter, r *http.Request) {
	session, _ := app.sessions.Get(r, sessionName)
	delete(session.Values, "user_id")
	delete(session.Values, "username")
	delete(session.Values, "sid")
	session.Save(r, w)
}

func (app *App) addFlash(w http.ResponseWriter, r *http.Request, message string) {
	session, _ := app.sessions.Get(r, sessionName)
	session.AddFlash(message)
	session.Save(r, w)
}

func (app *App) getFlashes(w http.ResponseWriter, r *http.Request) []interface{} {
	session, _ := app.sessions.Get(r, sessionName)
	flashes := session.Flashes()
	session.Save(r, w)
	return flashes
}
