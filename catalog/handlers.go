package catalog

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/user/foodgram-go/apperror"
	"github.com/user/foodgram-go/auth"
)

// Handlers serves the public tag and ingredient endpoints. Neither list is
// paginated.
type Handlers struct {
	service *Service
}

func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

func urlID(r *http.Request, missing string) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.NewNotFoundError(missing, nil)
	}
	return id, nil
}

// HandleListTags godoc
// @Summary List all tags
// @Tags catalog
// @Produce json
// @Success 200 {array} catalog.Tag
// @Router /api/tags/ [get]
func (h *Handlers) HandleListTags() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tags, err := h.service.ListTags(r.Context())
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, tags)
	}
}

// HandleGetTag godoc
// @Summary Get a tag
// @Tags catalog
// @Produce json
// @Param id path int true "Tag ID"
// @Success 200 {object} catalog.Tag
// @Failure 404 {object} apperror.ErrorResponse
// @Router /api/tags/{id}/ [get]
func (h *Handlers) HandleGetTag() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "tag not found")
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		tag, err := h.service.GetTag(r.Context(), id)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, tag)
	}
}

// HandleListIngredients godoc
// @Summary List ingredients
// @Tags catalog
// @Produce json
// @Param name query string false "Case-insensitive name prefix"
// @Success 200 {array} catalog.Ingredient
// @Router /api/ingredients/ [get]
func (h *Handlers) HandleListIngredients() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ingredients, err := h.service.ListIngredients(r.Context(), r.URL.Query().Get("name"))
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, ingredients)
	}
}

// HandleGetIngredient godoc
// @Summary Get an ingredient
// @Tags catalog
// @Produce json
// @Param id path int true "Ingredient ID"
// @Success 200 {object} catalog.Ingredient
// @Failure 404 {object} apperror.ErrorResponse
// @Router /api/ingredients/{id}/ [get]
func (h *Handlers) HandleGetIngredient() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "ingredient not found")
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		ingredient, err := h.service.GetIngredient(r.Context(), id)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, ingredient)
	}
}
