package recipes

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/user/foodgram-go/apperror"
	"github.com/user/foodgram-go/auth"
	"github.com/user/foodgram-go/pagination"
)

// Handlers exposes the recipe endpoints over HTTP.
type Handlers struct {
	service *Service
	baseURL string
}

func NewHandlers(service *Service, baseURL string) *Handlers {
	return &Handlers{service: service, baseURL: baseURL}
}

func urlID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.NewNotFoundError("recipe not found", nil)
	}
	return id, nil
}

func viewerID(r *http.Request) int64 {
	id, _ := auth.UserIDFromContext(r.Context())
	return id
}

func requireUser(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		auth.WriteError(w, r, apperror.NewAuthError("authentication required", nil))
		return 0, false
	}
	return userID, true
}

// parseFilters reads the recipe list query parameters. The boolean flags
// accept "1" and "true".
func parseFilters(r *http.Request) ListFilters {
	q := r.URL.Query()
	var f ListFilters
	if raw := q.Get("author"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil && id > 0 {
			f.AuthorID = id
		}
	}
	if tags, ok := q["tags"]; ok {
		f.TagSlugs = tags
	}
	f.IsFavorited = isTruthy(q.Get("is_favorited"))
	f.IsInShoppingCart = isTruthy(q.Get("is_in_shopping_cart"))
	return f
}

func isTruthy(raw string) bool {
	return raw == "1" || strings.EqualFold(raw, "true")
}

// HandleList godoc
// @Summary List recipes
// @Tags recipes
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Param author query int false "Author ID"
// @Param tags query []string false "Tag slugs" collectionFormat(multi)
// @Param is_favorited query int false "Only favorites (authenticated)"
// @Param is_in_shopping_cart query int false "Only basket recipes (authenticated)"
// @Success 200 {object} pagination.Page
// @Router /api/recipes/ [get]
func (h *Handlers) HandleList() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := pagination.ParseParams(r)
		results, total, err := h.service.List(r.Context(), viewerID(r), parseFilters(r), p)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		page := pagination.NewPage(results, total, p, pagination.RequestURL(h.baseURL, r))
		auth.WriteJSON(w, http.StatusOK, page)
	}
}

// HandleGet godoc
// @Summary Get a recipe
// @Tags recipes
// @Produce json
// @Param id path int true "Recipe ID"
// @Success 200 {object} recipes.Response
// @Failure 404 {object} apperror.ErrorResponse
// @Router /api/recipes/{id}/ [get]
func (h *Handlers) HandleGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		recipe, err := h.service.Get(r.Context(), viewerID(r), id)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, recipe)
	}
}

// HandleCreate godoc
// @Summary Create a recipe
// @Tags recipes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param recipeBody body recipes.WriteRequest true "Recipe"
// @Success 201 {object} recipes.Response
// @Failure 400 {object} apperror.ErrorResponse
// @Failure 401 {object} apperror.ErrorResponse
// @Router /api/recipes/ [post]
func (h *Handlers) HandleCreate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		var req WriteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			auth.WriteError(w, r, apperror.NewBadRequestError("invalid request body", err))
			return
		}
		defer r.Body.Close()

		recipe, err := h.service.Create(r.Context(), userID, req)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusCreated, recipe)
	}
}

// HandleUpdate godoc
// @Summary Update a recipe
// @Tags recipes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Recipe ID"
// @Param recipeBody body recipes.WriteRequest true "Recipe"
// @Success 200 {object} recipes.Response
// @Failure 400 {object} apperror.ErrorResponse
// @Failure 401 {object} apperror.ErrorResponse
// @Failure 403 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Router /api/recipes/{id}/ [patch]
func (h *Handlers) HandleUpdate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		id, err := urlID(r)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		var req WriteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			auth.WriteError(w, r, apperror.NewBadRequestError("invalid request body", err))
			return
		}
		defer r.Body.Close()

		recipe, err := h.service.Update(r.Context(), userID, id, req)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, recipe)
	}
}

// HandleDelete godoc
// @Summary Delete a recipe
// @Tags recipes
// @Security BearerAuth
// @Param id path int true "Recipe ID"
// @Success 204 "No Content"
// @Failure 401 {object} apperror.ErrorResponse
// @Failure 403 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Router /api/recipes/{id}/ [delete]
func (h *Handlers) HandleDelete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		id, err := urlID(r)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		if err := h.service.Delete(r.Context(), userID, id); err != nil {
			auth.WriteError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// HandleFavorite godoc
// @Summary Add a recipe to favorites
// @Tags recipes
// @Produce json
// @Security BearerAuth
// @Param id path int true "Recipe ID"
// @Success 201 {object} users.RecipeShort
// @Failure 400 {object} apperror.ErrorResponse
// @Failure 401 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Router /api/recipes/{id}/favorite/ [post]
func (h *Handlers) HandleFavorite() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		id, err := urlID(r)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		short, err := h.service.Favorite(r.Context(), userID, id)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusCreated, short)
	}
}

// HandleUnfavorite godoc
// @Summary Remove a recipe from favorites
// @Tags recipes
// @Security BearerAuth
// @Param id path int true "Recipe ID"
// @Success 204 "No Content"
// @Failure 400 {object} apperror.ErrorResponse
// @Failure 401 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Router /api/recipes/{id}/favorite/ [delete]
func (h *Handlers) HandleUnfavorite() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		id, err := urlID(r)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		if err := h.service.Unfavorite(r.Context(), userID, id); err != nil {
			auth.WriteError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// HandleAddToBasket godoc
// @Summary Add a recipe to the shopping basket
// @Tags shopping
// @Produce json
// @Security BearerAuth
// @Param id path int true "Recipe ID"
// @Success 201 {object} users.RecipeShort
// @Failure 400 {object} apperror.ErrorResponse
// @Failure 401 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Router /api/recipes/{id}/shopping_cart/ [post]
func (h *Handlers) HandleAddToBasket() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		id, err := urlID(r)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		short, err := h.service.AddToBasket(r.Context(), userID, id)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusCreated, short)
	}
}

// HandleRemoveFromBasket godoc
// @Summary Remove a recipe from the shopping basket
// @Tags shopping
// @Security BearerAuth
// @Param id path int true "Recipe ID"
// @Success 204 "No Content"
// @Failure 400 {object} apperror.ErrorResponse
// @Failure 401 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Router /api/recipes/{id}/shopping_cart/ [delete]
func (h *Handlers) HandleRemoveFromBasket() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		id, err := urlID(r)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		if err := h.service.RemoveFromBasket(r.Context(), userID, id); err != nil {
			auth.WriteError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// HandleDownloadShoppingList godoc
// @Summary Download the aggregated shopping list
// @Tags shopping
// @Produce plain
// @Security BearerAuth
// @Success 200 {string} string "Plain-text shopping list"
// @Failure 401 {object} apperror.ErrorResponse
// @Router /api/recipes/download_shopping_cart/ [get]
func (h *Handlers) HandleDownloadShoppingList() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		items, err := h.service.ShoppingList(r.Context(), userID)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		body := RenderShoppingList(items)
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="shopping_list.txt"`)
		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		fmt.Fprint(w, body)
	}
}

// HandleGetLink godoc
// @Summary Get a recipe's short link
// @Tags recipes
// @Produce json
// @Param id path int true "Recipe ID"
// @Success 200 {object} recipes.ShortLinkResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Router /api/recipes/{id}/get-link/ [get]
func (h *Handlers) HandleGetLink() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		link, err := h.service.ShortLink(r.Context(), id)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, link)
	}
}
