package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"smartstore/internal/user/models"
	"smartstore/pkg/platform/httputil"
	"smartstore/pkg/requestcontext"
)

type Service interface {
	Register(ctx context.Context, email, password, name string) (*models.User, error)
	Get(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	Update(ctx context.Context, email, password, name string) (*models.User, error)
	Delete(ctx context.Context, email string) error
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
}

// Handler wires user endpoints to the user service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts user endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/users", func(r chi.Router) {
		r.Get("/", h.HandleList)
		r.Post("/", h.HandleRegister)
		r.Get("/{email}", h.HandleGet)
		r.Put("/{email}", h.HandleUpdate)
		r.Delete("/{email}", h.HandleDelete)
		r.Post("/{email}/authenticate", h.HandleAuthenticate)
	})
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type UpdateRequest struct {
	Password string `json:"password"`
	Name     string `json:"name"`
}

type AuthenticateRequest struct {
	Password string `json:"password"`
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	ctx := r.Context()
	h.logger.InfoContext(ctx, msg,
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	)
	httputil.WriteError(w, err)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.List(r.Context())
	if err != nil {
		h.fail(w, r, "list users failed", err)
		return
	}
	out := make([]models.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, u.Response())
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.DecodeAndPrepare[RegisterRequest](w, r, h.logger)
	if !ok {
		return
	}
	u, err := h.service.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		h.fail(w, r, "register user failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, u.Response())
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	u, err := h.service.Get(r.Context(), chi.URLParam(r, "email"))
	if err != nil {
		h.fail(w, r, "get user failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, u.Response())
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.DecodeAndPrepare[UpdateRequest](w, r, h.logger)
	if !ok {
		return
	}
	u, err := h.service.Update(r.Context(), chi.URLParam(r, "email"), req.Password, req.Name)
	if err != nil {
		h.fail(w, r, "update user failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, u.Response())
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "email")); err != nil {
		h.fail(w, r, "delete user failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleAuthenticate(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.DecodeAndPrepare[AuthenticateRequest](w, r, h.logger)
	if !ok {
		return
	}
	u, err := h.service.Authenticate(r.Context(), chi.URLParam(r, "email"), req.Password)
	if err != nil {
		h.fail(w, r, "authenticate user failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, u.Response())
}
