package users

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/user/foodgram-go/apperror"
	"github.com/user/foodgram-go/auth"
	"github.com/user/foodgram-go/pagination"
)

// Handlers exposes the user endpoints over HTTP.
type Handlers struct {
	service *Service
	baseURL string
}

// NewHandlers creates user Handlers. baseURL feeds pagination links.
func NewHandlers(service *Service, baseURL string) *Handlers {
	return &Handlers{service: service, baseURL: baseURL}
}

// urlID parses the {id} route parameter.
func urlID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.NewNotFoundError("user not found", nil)
	}
	return id, nil
}

// viewerID returns the authenticated user's ID or 0 for anonymous requests.
func viewerID(r *http.Request) int64 {
	id, _ := auth.UserIDFromContext(r.Context())
	return id
}

// HandleRegister godoc
// @Summary Register a new user
// @Tags users
// @Accept json
// @Produce json
// @Param registerBody body users.RegisterRequest true "Registration details"
// @Success 201 {object} users.RegisterResponse
// @Failure 400 {object} apperror.ErrorResponse
// @Router /api/users/ [post]
func (h *Handlers) HandleRegister() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			auth.WriteError(w, r, apperror.NewBadRequestError("invalid request body", err))
			return
		}
		defer r.Body.Close()

		user, err := h.service.Register(r.Context(), req)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusCreated, user)
	}
}

// HandleList godoc
// @Summary List users
// @Tags users
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} pagination.Page
// @Router /api/users/ [get]
func (h *Handlers) HandleList() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := pagination.ParseParams(r)
		results, total, err := h.service.List(r.Context(), viewerID(r), p)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		page := pagination.NewPage(results, total, p, pagination.RequestURL(h.baseURL, r))
		auth.WriteJSON(w, http.StatusOK, page)
	}
}

// HandleRetrieve godoc
// @Summary Get a user's profile
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} users.UserResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Router /api/users/{id}/ [get]
func (h *Handlers) HandleRetrieve() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		user, err := h.service.GetByID(r.Context(), viewerID(r), id)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, user)
	}
}

// HandleMe godoc
// @Summary Get the current user's profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} users.UserResponse
// @Failure 401 {object} apperror.ErrorResponse
// @Router /api/users/me/ [get]
func (h *Handlers) HandleMe() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			auth.WriteError(w, r, apperror.NewAuthError("authentication required", nil))
			return
		}
		user, err := h.service.GetByID(r.Context(), userID, userID)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, user)
	}
}

// HandleUpdateAvatar godoc
// @Summary Set the current user's avatar
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param avatarBody body users.AvatarRequest true "Base64 data-URI image"
// @Success 200 {object} users.AvatarResponse
// @Failure 400 {object} apperror.ErrorResponse
// @Failure 401 {object} apperror.ErrorResponse
// @Router /api/users/me/avatar/ [put]
func (h *Handlers) HandleUpdateAvatar() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			auth.WriteError(w, r, apperror.NewAuthError("authentication required", nil))
			return
		}

		var req AvatarRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			auth.WriteError(w, r, apperror.NewBadRequestError("invalid request body", err))
			return
		}
		defer r.Body.Close()

		resp, err := h.service.UpdateAvatar(r.Context(), userID, req.Avatar)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, resp)
	}
}

// HandleDeleteAvatar godoc
// @Summary Remove the current user's avatar
// @Tags users
// @Security BearerAuth
// @Success 204 "No Content"
// @Failure 401 {object} apperror.ErrorResponse
// @Router /api/users/me/avatar/ [delete]
func (h *Handlers) HandleDeleteAvatar() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			auth.WriteError(w, r, apperror.NewAuthError("authentication required", nil))
			return
		}
		if err := h.service.DeleteAvatar(r.Context(), userID); err != nil {
			auth.WriteError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// HandleSetPassword godoc
// @Summary Change the current user's password
// @Tags users
// @Accept json
// @Security BearerAuth
// @Param passwordBody body users.SetPasswordRequest true "Current and new password"
// @Success 204 "No Content"
// @Failure 400 {object} apperror.ErrorResponse
// @Failure 401 {object} apperror.ErrorResponse
// @Router /api/users/set_password/ [post]
func (h *Handlers) HandleSetPassword() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			auth.WriteError(w, r, apperror.NewAuthError("authentication required", nil))
			return
		}

		var req SetPasswordRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			auth.WriteError(w, r, apperror.NewBadRequestError("invalid request body", err))
			return
		}
		defer r.Body.Close()

		if err := h.service.SetPassword(r.Context(), userID, req); err != nil {
			auth.WriteError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// recipesLimit parses the optional ?recipes_limit= parameter; 0 means no cap.
func recipesLimit(r *http.Request) int {
	raw := r.URL.Query().Get("recipes_limit")
	if raw == "" {
		return 0
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0
	}
	return limit
}

// HandleSubscribe godoc
// @Summary Subscribe to an author
// @Tags subscriptions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Author ID"
// @Param recipes_limit query int false "Cap on the recipe preview"
// @Success 201 {object} users.SubscriptionResponse
// @Failure 400 {object} apperror.ErrorResponse
// @Failure 401 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Router /api/users/{id}/subscribe/ [post]
func (h *Handlers) HandleSubscribe() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			auth.WriteError(w, r, apperror.NewAuthError("authentication required", nil))
			return
		}
		authorID, err := urlID(r)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		sub, err := h.service.Subscribe(r.Context(), userID, authorID, recipesLimit(r))
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusCreated, sub)
	}
}

// HandleUnsubscribe godoc
// @Summary Unsubscribe from an author
// @Tags subscriptions
// @Security BearerAuth
// @Param id path int true "Author ID"
// @Success 204 "No Content"
// @Failure 400 {object} apperror.ErrorResponse
// @Failure 401 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Router /api/users/{id}/subscribe/ [delete]
func (h *Handlers) HandleUnsubscribe() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			auth.WriteError(w, r, apperror.NewAuthError("authentication required", nil))
			return
		}
		authorID, err := urlID(r)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		if err := h.service.Unsubscribe(r.Context(), userID, authorID); err != nil {
			auth.WriteError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// HandleSubscriptions godoc
// @Summary List the current user's subscriptions
// @Tags subscriptions
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Param recipes_limit query int false "Cap on each recipe preview"
// @Success 200 {object} pagination.Page
// @Failure 401 {object} apperror.ErrorResponse
// @Router /api/users/subscriptions/ [get]
func (h *Handlers) HandleSubscriptions() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			auth.WriteError(w, r, apperror.NewAuthError("authentication required", nil))
			return
		}

		p := pagination.ParseParams(r)
		results, total, err := h.service.Subscriptions(r.Context(), userID, p, recipesLimit(r))
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		page := pagination.NewPage(results, total, p, pagination.RequestURL(h.baseURL, r))
		auth.WriteJSON(w, http.StatusOK, page)
	}
}
