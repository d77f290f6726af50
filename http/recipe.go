package http

import (
	"net/http"

	"github.com/fwojciec/cookbook"
)

type createRecipeRequest struct {
	Title              string   `json:"title" validate:"notblank,max=200"`
	Description        string   `json:"description" validate:"max=2000"`
	Ingredients        []string `json:"ingredients" validate:"required,min=1,dive,notblank"`
	Steps              []string `json:"steps" validate:"required,min=1,dive,notblank"`
	Image              *string  `json:"image" validate:"omitempty,http_url"`
	Cuisine            string   `json:"cuisine" validate:"max=100"`
	Category           string   `json:"category" validate:"max=100"`
	CategorySource     string   `json:"categorySource" validate:"omitempty,oneof=PREDEFINED AI_GENERATED USER_CREATED"`
	CategoryConfidence *float64 `json:"categoryConfidence" validate:"omitempty,gte=0,lte=1"`
	PrepTime           string   `json:"prepTime" validate:"max=100"`
	CleanupTime        string   `json:"cleanupTime" validate:"max=100"`
	SourceURL          string   `json:"sourceUrl" validate:"omitempty,http_url"`
	MetricID           string   `json:"metricId" validate:"max=64"`
}

type updateRecipeRequest struct {
	ID          string   `json:"id" validate:"notblank"`
	Title       *string  `json:"title" validate:"omitempty,notblank,max=200"`
	Description *string  `json:"description" validate:"omitempty,max=2000"`
	Ingredients []string `json:"ingredients" validate:"omitempty,min=1,dive,notblank"`
	Steps       []string `json:"steps" validate:"omitempty,min=1,dive,notblank"`
	Image       *string  `json:"image" validate:"omitempty,http_url"`
	Cuisine     *string  `json:"cuisine" validate:"omitempty,max=100"`
	Category    *string  `json:"category" validate:"omitempty,max=100"`
	PrepTime    *string  `json:"prepTime" validate:"omitempty,max=100"`
	CleanupTime *string  `json:"cleanupTime" validate:"omitempty,max=100"`
}

func (req *updateRecipeRequest) empty() bool {
	return req.Title == nil && req.Description == nil && req.Ingredients == nil &&
		req.Steps == nil && req.Image == nil && req.Cuisine == nil &&
		req.Category == nil && req.PrepTime == nil && req.CleanupTime == nil
}

type messageResponse struct {
	Message string `json:"message"`
}

func (s *Server) handleCreateRecipe(w http.ResponseWriter, r *http.Request) {
	var req createRecipeRequest
	if !s.decode(w, r, &req) {
		return
	}

	recipe := &cookbook.Recipe{
		OwnerID:        userID(r),
		Title:          req.Title,
		Description:    req.Description,
		Ingredients:    req.Ingredients,
		Steps:          req.Steps,
		Image:          req.Image,
		Cuisine:        req.Cuisine,
		Category:       req.Category,
		CategorySource: cookbook.CategorySource(req.CategorySource),
		PrepTime:       req.PrepTime,
		CleanupTime:    req.CleanupTime,
		SourceURL:      req.SourceURL,
	}
	switch {
	case req.CategoryConfidence != nil:
		recipe.CategoryConfidence = *req.CategoryConfidence
	case recipe.CategorySource == "" || recipe.CategorySource == cookbook.CategorySourceUserCreated:
		recipe.CategoryConfidence = 1.0
	}

	if err := s.RecipeService.CreateRecipe(r.Context(), recipe); err != nil {
		s.Error(w, r, err)
		return
	}
	if req.MetricID != "" && s.MetricService != nil {
		if err := s.MetricService.LinkRecipe(r.Context(), req.MetricID, recipe.ID); err != nil {
			s.Logger.Warn("link extraction metric", "metric", req.MetricID, "recipe", recipe.ID, "err", err)
		}
	}
	writeJSON(w, http.StatusCreated, recipe)
}

func (s *Server) handleListRecipes(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 0, 0, 1000)
	if err != nil {
		s.Error(w, r, err)
		return
	}
	offset, err := queryInt(r, "offset", 0, 0, 1<<30)
	if err != nil {
		s.Error(w, r, err)
		return
	}

	owner := userID(r)
	filter := cookbook.RecipeFilter{OwnerID: &owner, Limit: limit, Offset: offset}
	if c := r.URL.Query().Get("category"); c != "" {
		filter.Category = &c
	}

	recipes, err := s.RecipeService.FindRecipes(r.Context(), filter)
	if err != nil {
		s.Error(w, r, err)
		return
	}
	if recipes == nil {
		recipes = []*cookbook.Recipe{}
	}
	writeJSON(w, http.StatusOK, recipes)
}

func (s *Server) handleUpdateRecipe(w http.ResponseWriter, r *http.Request) {
	var req updateRecipeRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.empty() {
		s.Error(w, r, cookbook.Errorf(cookbook.EINVALID, "No update data provided"))
		return
	}

	if _, err := s.ownRecipe(r, req.ID); err != nil {
		s.Error(w, r, err)
		return
	}

	recipe, err := s.RecipeService.UpdateRecipe(r.Context(), req.ID, cookbook.RecipeUpdate{
		Title:       req.Title,
		Description: req.Description,
		Ingredients: req.Ingredients,
		Steps:       req.Steps,
		Image:       req.Image,
		Cuisine:     req.Cuisine,
		Category:    req.Category,
		PrepTime:    req.PrepTime,
		CleanupTime: req.CleanupTime,
	})
	if err != nil {
		s.Error(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recipe)
}

func (s *Server) handleDeleteRecipe(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		s.Error(w, r, cookbook.Errorf(cookbook.EINVALID, "Recipe ID is required"))
		return
	}

	if _, err := s.ownRecipe(r, id); err != nil {
		s.Error(w, r, err)
		return
	}
	if err := s.RecipeService.DeleteRecipe(r.Context(), id); err != nil {
		s.Error(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Recipe deleted successfully"})
}

// ownRecipe loads a recipe of the requesting user. Recipes of other users
// are reported as missing.
func (s *Server) ownRecipe(r *http.Request, id string) (*cookbook.Recipe, error) {
	recipe, err := s.RecipeService.FindRecipeByID(r.Context(), id)
	if err != nil {
		return nil, err
	}
	if recipe.OwnerID != userID(r) {
		return nil, cookbook.Errorf(cookbook.ENOTFOUND, "recipe not found")
	}
	return recipe, nil
}
