// Package prediction contains the HTTP handlers for the readmission form.
//
// Handlers are built with the closure / factory pattern: each exported
// function takes its dependencies once at startup and returns the
// http.HandlerFunc the router calls on every request.
//
// Every browser gets a session (a uuid in the "session" cookie). The session
// owns the status panel the page shows and the Controller that renders into
// it.
package prediction

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/aanand-mishra/readmission-client/internal/controller"
	"github.com/aanand-mishra/readmission-client/internal/form"
	"github.com/aanand-mishra/readmission-client/internal/render"
	"github.com/aanand-mishra/readmission-client/internal/storage"
	"github.com/aanand-mishra/readmission-client/internal/utils/response"
)

// CookieName is the session cookie.
const CookieName = "session"

//go:embed templates/index.html
var templates embed.FS

var page = template.Must(template.ParseFS(templates, "templates/index.html"))

// Register mounts every route on r.
//
//	GET  /            → the form page
//	POST /submit      → run a submission, re-render the page
//	POST /api/submit  → run a submission, answer with JSON
//	GET  /api/panel   → the session's panel as JSON
//	POST /reset       → forget the session, back to an empty form
//	GET  /healthz     → liveness
func Register(r chi.Router, store storage.Storage) {
	r.Get("/", Index(store))
	r.Post("/submit", Submit(store))
	r.Post("/reset", Reset(store))
	r.Post("/api/submit", SubmitJSON(store))
	r.Get("/api/panel", Panel(store))
	r.Get("/healthz", Health())
}

// ─────────────────────────────────────────────────────────────────────────────
// Index handles GET /
// Renders the empty form and whatever the session's panel currently shows.
// ─────────────────────────────────────────────────────────────────────────────
func Index(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := session(w, r, store)
		if err != nil {
			slog.Error("error opening session", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
			return
		}

		writePage(w, http.StatusOK, url.Values{}, sess.Panel.Snapshot())
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Submit handles POST /submit
// Request body: application/x-www-form-urlencoded, one key per form field.
//
// The page is always re-rendered with 200: validation errors and backend
// failures are panel content, not HTTP errors. Submitted values are echoed
// back into the widgets.
// ─────────────────────────────────────────────────────────────────────────────
func Submit(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := session(w, r, store)
		if err != nil {
			slog.Error("error opening session", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
			return
		}

		if err := r.ParseForm(); err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		out := sess.Controller.Submit(detach(r), r.PostForm)
		logOutcome(sess.ID, out)

		writePage(w, http.StatusOK, r.PostForm, sess.Panel.Snapshot())
	}
}

// submitResponse is the body of POST /api/submit.
type submitResponse struct {
	Status     string          `json:"status"`
	Submission string          `json:"submission"`
	State      string          `json:"state"`
	Stale      bool            `json:"stale,omitempty"`
	Panel      render.Snapshot `json:"panel"`
}

// ─────────────────────────────────────────────────────────────────────────────
// SubmitJSON handles POST /api/submit
// Same input as /submit. Responses:
//
//	200 OK           prediction rendered (or dropped as stale)
//	400 Bad Request  unparsable body or failed validation
//	502 Bad Gateway  the backend failed or answered with an error
//
// ─────────────────────────────────────────────────────────────────────────────
func SubmitJSON(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := session(w, r, store)
		if err != nil {
			slog.Error("error opening session", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
			return
		}

		if err := r.ParseForm(); err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		out := sess.Controller.Submit(detach(r), r.PostForm)
		logOutcome(sess.ID, out)

		if len(out.Errors) > 0 {
			response.WriteJSON(w, http.StatusBadRequest, response.ValidationError(out.Errors))
			return
		}
		if out.Result.Failure != nil {
			response.WriteJSON(w, http.StatusBadGateway, response.Response{
				Status: response.StatusError,
				Error:  out.Result.Failure.Message,
			})
			return
		}

		response.WriteJSON(w, http.StatusOK, submitResponse{
			Status:     response.StatusOK,
			Submission: out.ID.String(),
			State:      out.State.String(),
			Stale:      out.Stale,
			Panel:      sess.Panel.Snapshot(),
		})
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Panel handles GET /api/panel
// Returns the session's panel snapshot:
//
//	{ "content": { "lines": [...], ... }, "style": { ... }, "version": 4 }
//
// ─────────────────────────────────────────────────────────────────────────────
func Panel(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := session(w, r, store)
		if err != nil {
			slog.Error("error opening session", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
			return
		}

		response.WriteJSON(w, http.StatusOK, sess.Panel.Snapshot())
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Reset handles POST /reset
// Drops the caller's session (panel included), expires the cookie and
// redirects to the empty form. Without a valid cookie it only redirects.
// ─────────────────────────────────────────────────────────────────────────────
func Reset(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie(CookieName); err == nil {
			if id, err := uuid.Parse(c.Value); err == nil {
				if err := store.DeleteSession(id); err != nil {
					slog.Error("error deleting session",
						slog.String("session", id.String()),
						slog.String("error", err.Error()))
					response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
					return
				}
				slog.Info("session reset", slog.String("session", id.String()))
			}
		}

		http.SetCookie(w, &http.Cookie{
			Name:     CookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

// Health handles GET /healthz.
func Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.WriteJSON(w, http.StatusOK, response.OK())
	}
}

// session returns the caller's session, starting a new one (and setting the
// cookie) when the cookie is missing, malformed, or refers to a session the
// store no longer has.
func session(w http.ResponseWriter, r *http.Request, store storage.Storage) (*storage.Session, error) {
	if c, err := r.Cookie(CookieName); err == nil {
		if id, err := uuid.Parse(c.Value); err == nil {
			sess, err := store.GetSession(id)
			if err == nil {
				return sess, nil
			}
			if !errors.Is(err, storage.ErrNotFound) {
				return nil, err
			}
		}
	}

	sess, err := store.CreateSession()
	if err != nil {
		return nil, err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    sess.ID.String(),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	slog.Info("session started", slog.String("session", sess.ID.String()))
	return sess, nil
}

// detach keeps the request's values but not its cancellation: a browser
// that navigates away must not abort the backend exchange, whose outcome
// still lands on the session's panel.
func detach(r *http.Request) context.Context {
	return context.WithoutCancel(r.Context())
}

func logOutcome(session uuid.UUID, out controller.Outcome) {
	attrs := []any{
		slog.String("session", session.String()),
		slog.String("submission", out.ID.String()),
		slog.String("state", out.State.String()),
	}
	if out.Stale {
		attrs = append(attrs, slog.Bool("stale", true))
	}
	slog.Info("submission finished", attrs...)
}

// widget is one form input as the template sees it.
type widget struct {
	form.Field
	Value     string
	InputType string
	Step      string
}

type pageData struct {
	Widgets []widget
	Panel   render.Snapshot
}

func widgets(values url.Values) []widget {
	out := make([]widget, 0, len(form.Fields))
	for _, f := range form.Fields {
		w := widget{Field: f, Value: values.Get(f.ID), InputType: "text"}
		switch f.Kind {
		case form.KindInteger:
			w.InputType = "number"
		case form.KindReal:
			w.InputType = "number"
			w.Step = "any"
		}
		out = append(out, w)
	}
	return out
}

func writePage(w http.ResponseWriter, status int, values url.Values, snap render.Snapshot) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := page.Execute(w, pageData{Widgets: widgets(values), Panel: snap}); err != nil {
		slog.Error("error rendering page", slog.String("error", err.Error()))
	}
}
