package main

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// App wires the stores, session manager and logger together. Handlers hang
// off it so tests can inject a fake store or a temp database.
type App struct {
	cfg      *Config
	creds    CredentialStore
	entries  EntryStore
	sessions *sessions.CookieStore
	log      *logrus.Logger
}

func newApp(cfg *Config, creds CredentialStore, entries EntryStore, log *logrus.Logger) *App {
	return &App{
		cfg:      cfg,
		creds:    creds,
		entries:  entries,
		sessions: newSessionStore(cfg),
		log:      log,
	}
}

func (app *App) routes() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/", app.journalPage).Methods("GET")
	r.HandleFunc("/login", app.loginPage).Methods("GET")
	r.HandleFunc("/login", app.login).Methods("POST")
	r.HandleFunc("/register", app.registerPage).Methods("GET")
	r.HandleFunc("/register", app.register).Methods("POST")
	r.HandleFunc("/logout", app.logout).Methods("GET", "POST")

	r.HandleFunc("/entry", app.addEntry).Methods("POST")
	r.HandleFunc("/entries", app.listEntries).Methods("GET")
	r.HandleFunc("/edit/{id}", app.editPage).Methods("GET")
	r.HandleFunc("/edit/{id}", app.editEntry).Methods("POST")
	r.HandleFunc("/entry/delete/{id}", app.deleteEntry).Methods("POST")

	fs := http.FileServer(http.Dir(app.cfg.StaticDir))
	r.PathPrefix("/static/").Handler(http.StripPrefix("/static/", fs))

	return r
}

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if err := godotenv.Load(); err != nil {
		log.WithError(err).Debug("no .env file loaded")
	}

	cfg, err := loadConfig()
	if err != nil {
		log.Fatal(err)
	}

	db, err := openDB(cfg.DatabasePath)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := ensureSchema(db); err != nil {
		log.Fatalf("schema migration failed: %v", err)
	}

	app := newApp(cfg, newCredentialStore(db), newEntryStore(db), log)

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      loggingMiddleware(log)(app.routes()),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.WithField("addr", cfg.Addr).Info("journal app listening")
	if err := srv.ListenAndServe(); err != nil {
		log.Fatal(err)
	}
}
