package main

import (
	"net/http"
	"path/filepath"
	"time"

	"github.com/nikolalohinski/gonja/v2"
	"github.com/nikolalohinski/gonja/v2/exec"
	"github.com/sirupsen/logrus"
)

// render executes a gonja template from the template dir. CurrentUser and
// Flashes are filled in unless the caller already set them.
func (app *App) render(w http.ResponseWriter, r *http.Request, templateFile string, data map[string]interface{}) {
	app.renderStatus(w, r, http.StatusOK, templateFile, data)
}

func (app *App) renderStatus(w http.ResponseWriter, r *http.Request, status int, templateFile string, data map[string]interface{}) {
	if _, ok := data["current_user"]; !ok {
		data["current_user"] = app.identify(r)
	}
	if _, ok := data["flashes"]; !ok {
		data["flashes"] = app.getFlashes(w, r)
	}

	tmpl, err := gonja.FromFile(filepath.Join(app.cfg.TemplateDir, templateFile))
	if err != nil {
		app.log.WithError(err).WithField("template", templateFile).Error("template parse failed")
		http.Error(w, "Something went wrong", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tmpl.Execute(w, exec.NewContext(data)); err != nil {
		app.log.WithError(err).WithField("template", templateFile).Error("template render failed")
	}
}

// httpError converts any failure into a status plus a short message at the
// request boundary. Store failures are logged with their cause and surfaced
// as a generic 500; one request's failure never affects others.
func (app *App) httpError(w http.ResponseWriter, r *http.Request, err error) {
	status := errorStatus(err)
	if status >= http.StatusInternalServerError {
		app.log.WithError(err).WithFields(logrus.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
		}).Error("request failed")
	}
	http.Error(w, errorMessage(err), status)
}

func loggingMiddleware(log *logrus.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			log.WithFields(logrus.Fields{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start).String(),
			}).Info("request")
		})
	}
}
