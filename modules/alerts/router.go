package alerts

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/finbuddy/backend/pkg/notify"
	"github.com/finbuddy/backend/pkg/respond"
)

// Router mounts the notification HTTP surface on top of the engine.
func Router(engine *notify.Engine) chi.Router {
	h := &handlers{engine: engine}

	r := chi.NewRouter()
	r.Post("/", h.submit)
	r.Get("/", h.list)
	r.Get("/unread-count", h.unreadCount)
	r.Post("/digest", h.digest)
	r.Delete("/", h.clearAll)
	r.Post("/{id}/read", h.markRead)
	r.Post("/{id}/dismiss", h.dismiss)
	return r
}

type handlers struct {
	engine *notify.Engine
}

func (h *handlers) submit(w http.ResponseWriter, r *http.Request) {
	var req notify.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	n, err := h.engine.Submit(r.Context(), userID(r), req)
	if err != nil {
		if errors.Is(err, notify.ErrInvalidUrgency) {
			respond.ErrorDetail(w, http.StatusUnprocessableEntity, "invalid urgency", err.Error())
			return
		}
		respond.Error(w, http.StatusInternalServerError, "failed to submit notification")
		return
	}
	respond.JSON(w, http.StatusCreated, n)
}

func (h *handlers) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := notify.ListOptions{
		UnreadOnly: q.Get("unread_only") == "true",
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			respond.Error(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		opts.Limit = limit
	}

	notifications, err := h.engine.List(r.Context(), opts)
	if err != nil {
		respond.Error(w, http.StatusInternalServerError, "failed to list notifications")
		return
	}
	if notifications == nil {
		notifications = []notify.Notification{}
	}
	respond.JSON(w, http.StatusOK, notifications)
}

func (h *handlers) unreadCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.engine.CountUnread(r.Context())
	if err != nil {
		respond.Error(w, http.StatusInternalServerError, "failed to count notifications")
		return
	}
	respond.OK(w, map[string]any{"unread_count": count})
}

func (h *handlers) markRead(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.MarkRead(r.Context(), chi.URLParam(r, "id")); err != nil {
		respond.Error(w, http.StatusInternalServerError, "failed to mark notification read")
		return
	}
	respond.OK(w, nil)
}

func (h *handlers) dismiss(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.Dismiss(r.Context(), chi.URLParam(r, "id")); err != nil {
		respond.Error(w, http.StatusInternalServerError, "failed to dismiss notification")
		return
	}
	respond.OK(w, nil)
}

func (h *handlers) clearAll(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.ClearAll(r.Context(), userID(r)); err != nil {
		respond.Error(w, http.StatusInternalServerError, "failed to clear notifications")
		return
	}
	respond.OK(w, map[string]any{"message": "all notifications cleared"})
}

func (h *handlers) digest(w http.ResponseWriter, r *http.Request) {
	digest, err := h.engine.Digest(r.Context(), userID(r))
	if err != nil {
		respond.Error(w, http.StatusInternalServerError, "failed to generate digest")
		return
	}
	if digest == nil {
		respond.OK(w, map[string]any{"message": "no unread notifications"})
		return
	}
	respond.JSON(w, http.StatusCreated, digest)
}

func userID(r *http.Request) string {
	if id := r.URL.Query().Get("user_id"); id != "" {
		return id
	}
	return "default_user"
}
