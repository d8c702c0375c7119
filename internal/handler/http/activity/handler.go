package activity

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"activity-feed/internal/common/pagination"
	"activity-feed/internal/domain/entity"
	"activity-feed/internal/handler/http/pathutil"
	"activity-feed/internal/handler/http/requestid"
	"activity-feed/internal/handler/http/respond"
	"activity-feed/internal/observability/logging"
	"activity-feed/internal/service/session"
	activityUC "activity-feed/internal/usecase/activity"
)

// Sessions is the session registry used by the handlers.
type Sessions interface {
	Create(postType entity.PostType) (session.Session, error)
	Get(id uuid.UUID) (session.Session, error)
	Delete(id uuid.UUID) error
}

// Handler serves the session endpoints.
type Handler struct {
	Sessions Sessions
	Logger   *slog.Logger
}

// Register mounts the session routes on r.
func Register(r chi.Router, h Handler) {
	if h.Logger == nil {
		h.Logger = slog.Default()
	}
	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", h.createSession)
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Delete("/", h.deleteSession)
			r.Put("/activity", h.setCategory)
			r.Get("/activity", h.getState)
			r.Get("/activity/pages/{page}", h.goToPage)
		})
	})
}

func (h Handler) createSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := decodeJSON(r, &req, true); err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	postType, err := entity.ParsePostType(req.PostType)
	if err != nil {
		respond.Fail(w, err)
		return
	}

	s, err := h.Sessions.Create(postType)
	if err != nil {
		logging.WithRequestID(r.Context(), h.Logger).Warn("failed to open session", slog.Any("error", err))
		respond.Fail(w, err)
		return
	}
	w.Header().Set("Location", "/sessions/"+s.ID.String())
	respond.JSON(w, http.StatusCreated, toSessionDTO(s))
}

func (h Handler) deleteSession(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ParseSessionID(chi.URLParam(r, "sessionID"))
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.Sessions.Delete(id); err != nil {
		respond.Fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h Handler) setCategory(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req SetCategoryRequest
	if err := decodeJSON(r, &req, false); err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	category, err := entity.ParseCategory(req.Category)
	if err != nil {
		pagination.RecordError("validation")
		respond.Fail(w, err)
		return
	}

	start := time.Now()
	logger := logging.WithRequestID(r.Context(), h.Logger)
	pagination.LogRequest(logger, requestid.FromContext(r.Context()), req.UserID, string(category), 1)

	state, err := s.Pager.SetActiveCategory(r.Context(), req.UserID, category)
	h.writeState(w, r, s, state, err, start)
}

func (h Handler) getState(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	respond.JSON(w, http.StatusOK, toStateDTO(s.ID.String(), s.Pager.State()))
}

func (h Handler) goToPage(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	page, err := pagination.ParsePage(chi.URLParam(r, "page"))
	if err != nil {
		pagination.RecordError("validation")
		respond.Fail(w, fmt.Errorf("%w: %v", activityUC.ErrInvalidPage, err))
		return
	}

	start := time.Now()
	logger := logging.WithRequestID(r.Context(), h.Logger)
	current := s.Pager.State()
	pagination.LogRequest(logger, requestid.FromContext(r.Context()), current.UserID, string(current.Category), page)

	state, err := s.Pager.GoToPage(r.Context(), page)
	h.writeState(w, r, s, state, err, start)
}

func (h Handler) writeState(w http.ResponseWriter, r *http.Request, s session.Session, state activityUC.State, err error, start time.Time) {
	reqID := requestid.FromContext(r.Context())
	logger := logging.WithRequestID(r.Context(), h.Logger)
	if err != nil {
		appErr := respond.FromError(err)
		if appErr.Code >= http.StatusInternalServerError {
			pagination.LogError(logger, reqID, state.Page, err, "store")
		}
		pagination.RecordRequest(appErr.Code, state.Page)
		respond.SafeErrorV2(w, appErr.Code, appErr)
		return
	}

	duration := time.Since(start)
	pagination.RecordRequest(http.StatusOK, state.Page)
	pagination.RecordDuration("handler", duration.Seconds())
	pagination.LogResponse(logger, reqID, state.Page, state.TotalPages, len(state.Rows), duration, http.StatusOK)
	respond.JSON(w, http.StatusOK, toStateDTO(s.ID.String(), state))
}

func (h Handler) session(w http.ResponseWriter, r *http.Request) (session.Session, bool) {
	id, err := pathutil.ParseSessionID(chi.URLParam(r, "sessionID"))
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return session.Session{}, false
	}
	s, err := h.Sessions.Get(id)
	if err != nil {
		respond.Fail(w, err)
		return session.Session{}, false
	}
	return s, true
}

// decodeJSON decodes the request body into v. Unknown fields are rejected.
// An empty body is accepted when optional is set.
func decodeJSON(r *http.Request, v any, optional bool) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	err := dec.Decode(v)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, io.EOF) && optional:
		return nil
	case errors.Is(err, io.EOF):
		return errors.New("request body is required")
	}
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return fmt.Errorf("request body must not exceed %d bytes", maxErr.Limit)
	}
	return fmt.Errorf("invalid request body: %v", err)
}
