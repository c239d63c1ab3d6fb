package main

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// GET / — the journal page (redirect to /login if not logged in)
func (app *App) journalPage(w http.ResponseWriter, r *http.Request) {
	id := app.identify(r)
	if id == nil {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	entries, err := app.entries.ListByUser(r.Context(), id.UserID)
	if err != nil {
		app.httpError(w, r, err)
		return
	}

	app.render(w, r, "journal.html", map[string]interface{}{
		"entries":      entries,
		"current_user": id,
	})
}

// GET /login
func (app *App) loginPage(w http.ResponseWriter, r *http.Request) {
	if app.identify(r) != nil {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	app.render(w, r, "login.html", map[string]interface{}{"error": ""})
}

// POST /login
func (app *App) login(w http.ResponseWriter, r *http.Request) {
	if app.identify(r) != nil {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	username := r.FormValue("username")
	password := r.FormValue("password")

	userID, err := app.creds.Verify(r.Context(), username, password)
	if err != nil {
		if isKind(err, errUnauthorized) {
			app.renderStatus(w, r, http.StatusUnauthorized, "login.html", map[string]interface{}{
				"error": errorMessage(err),
			})
			return
		}
		app.httpError(w, r, err)
		return
	}

	if err := app.startSession(w, r, userID, username); err != nil {
		app.httpError(w, r, storeErr("starting session failed", err))
		return
	}
	app.log.WithFields(logrus.Fields{"user": username}).Info("login")
	app.addFlash(w, r, "You were logged in")
	http.Redirect(w, r, "/", http.StatusFound)
}

// GET /register
func (app *App) registerPage(w http.ResponseWriter, r *http.Request) {
	if app.identify(r) != nil {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	app.render(w, r, "register.html", map[string]interface{}{"error": ""})
}

// POST /register
func (app *App) register(w http.ResponseWriter, r *http.Request) {
	if app.identify(r) != nil {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	username := r.FormValue("username")
	password := r.FormValue("password")

	userID, err := app.creds.Register(r.Context(), username, password)
	if err != nil {
		if isKind(err, errInvalidInput) || isKind(err, errConflict) {
			app.renderStatus(w, r, http.StatusBadRequest, "register.html", map[string]interface{}{
				"error": errorMessage(err),
			})
			return
		}
		app.httpError(w, r, err)
		return
	}

	app.log.WithFields(logrus.Fields{"user": username, "user_id": userID}).Info("user registered")
	app.addFlash(w, r, "You were successfully registered and can log in now")
	http.Redirect(w, r, "/login", http.StatusFound)
}

// GET + POST /logout — a no-op when there is no session
func (app *App) logout(w http.ResponseWriter, r *http.Request) {
	if id := app.identify(r); id != nil {
		app.log.WithFields(logrus.Fields{"user": id.Username, "sid": id.SID}).Info("logout")
	}
	app.destroySession(w, r)
	app.addFlash(w, r, "You were logged out")
	http.Redirect(w, r, "/login", http.StatusFound)
}

// POST /entry
func (app *App) addEntry(w http.ResponseWriter, r *http.Request) {
	id := app.identify(r)
	if id == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	entry, err := app.entries.Create(r.Context(), id.UserID, r.FormValue("content"))
	if err != nil {
		app.httpError(w, r, err)
		return
	}

	app.log.WithFields(logrus.Fields{"user": id.Username, "sid": id.SID, "entry_id": entry.ID}).Info("entry created")
	app.addFlash(w, r, "Your entry was recorded")
	http.Redirect(w, r, "/", http.StatusFound)
}

// GET /entries — JSON list of the caller's entries, newest first
func (app *App) listEntries(w http.ResponseWriter, r *http.Request) {
	id := app.identify(r)
	if id == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	entries, err := app.entries.ListByUser(r.Context(), id.UserID)
	if err != nil {
		app.httpError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(entries)
}

// GET /edit/{id}
func (app *App) editPage(w http.ResponseWriter, r *http.Request) {
	id := app.identify(r)
	if id == nil {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	entryID, err := entryIDVar(r)
	if err != nil {
		app.httpError(w, r, err)
		return
	}

	entry, err := app.entries.GetByID(r.Context(), entryID, id.UserID)
	if err != nil {
		app.httpError(w, r, err)
		return
	}

	app.render(w, r, "edit.html", map[string]interface{}{
		"entry":        entry,
		"current_user": id,
	})
}

// POST /edit/{id}
func (app *App) editEntry(w http.ResponseWriter, r *http.Request) {
	id := app.identify(r)
	if id == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	entryID, err := entryIDVar(r)
	if err != nil {
		app.httpError(w, r, err)
		return
	}

	if err := app.entries.Update(r.Context(), entryID, id.UserID, r.FormValue("content")); err != nil {
		app.httpError(w, r, err)
		return
	}

	app.log.WithFields(logrus.Fields{"user": id.Username, "sid": id.SID, "entry_id": entryID}).Info("entry updated")
	app.addFlash(w, r, "Your entry was updated")
	http.Redirect(w, r, "/", http.StatusFound)
}

// POST /entry/delete/{id}
func (app *App) deleteEntry(w http.ResponseWriter, r *http.Request) {
	id := app.identify(r)
	if id == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	entryID, err := entryIDVar(r)
	if err != nil {
		app.httpError(w, r, err)
		return
	}

	if err := app.entries.Delete(r.Context(), entryID, id.UserID); err != nil {
		app.httpError(w, r, err)
		return
	}

	app.log.WithFields(logrus.Fields{"user": id.Username, "sid": id.SID, "entry_id": entryID}).Info("entry deleted")
	app.addFlash(w, r, "Your entry was deleted")
	http.Redirect(w, r, "/", http.StatusFound)
}

func entryIDVar(r *http.Request) (int64, error) {
	entryID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		return 0, notFoundErr("Entry not found or access denied")
	}
	return entryID, nil
}
