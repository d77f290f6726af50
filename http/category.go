package http

import (
	"fmt"
	"net/http"

	"github.com/fwojciec/cookbook"
)

type renameCategoryRequest struct {
	OldName string `json:"oldName" validate:"notblank"`
	NewName string `json:"newName" validate:"notblank"`
}

type mergeCategoriesRequest struct {
	SourceCategories []string `json:"sourceCategories" validate:"required,min=1,dive,notblank"`
	TargetCategory   string   `json:"targetCategory" validate:"notblank"`
}

type deleteCategoryRequest struct {
	CategoryName   string `json:"categoryName" validate:"notblank"`
	MoveToCategory string `json:"moveToCategory"`
	ForceDelete    bool   `json:"forceDelete"`
}

type suggestCategoriesRequest struct {
	Title                 string   `json:"title" validate:"notblank,max=200"`
	Description           string   `json:"description"`
	Ingredients           []string `json:"ingredients"`
	Instructions          []string `json:"instructions"`
	MaxSuggestions        *int     `json:"maxSuggestions" validate:"omitempty,min=1,max=10"`
	MinConfidence         *float64 `json:"minConfidence" validate:"omitempty,gte=0,lte=1"`
	IncludeUserCategories *bool    `json:"includeUserCategories"`
}

type categoryChangeResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	*cookbook.CategoryChange
}

type suggestionsResponse struct {
	Success     bool                  `json:"success"`
	Suggestions []cookbook.Suggestion `json:"suggestions"`
	Metadata    suggestionsMetadata   `json:"metadata"`
}

type suggestionsMetadata struct {
	TotalSuggestions int `json:"totalSuggestions"`
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.CategoryManager.ListCategories(r.Context(), userID(r))
	if err != nil {
		s.categoryError(w, r, err)
		return
	}
	if cats == nil {
		cats = []*cookbook.Category{}
	}
	writeJSON(w, http.StatusOK, cats)
}

func (s *Server) handleRenameCategory(w http.ResponseWriter, r *http.Request) {
	var req renameCategoryRequest
	if !s.decode(w, r, &req) {
		return
	}

	change, err := s.CategoryManager.RenameCategory(r.Context(), userID(r), req.OldName, req.NewName)
	if err != nil {
		s.categoryError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, categoryChangeResponse{
		Success:        true,
		Message:        fmt.Sprintf("Renamed %q to %q (%d recipes updated)", req.OldName, change.Target, change.AffectedRecipes),
		CategoryChange: change,
	})
}

func (s *Server) handleMergeCategories(w http.ResponseWriter, r *http.Request) {
	var req mergeCategoriesRequest
	if !s.decode(w, r, &req) {
		return
	}

	change, err := s.CategoryManager.MergeCategories(r.Context(), userID(r), req.SourceCategories, req.TargetCategory)
	if err != nil {
		s.categoryError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, categoryChangeResponse{
		Success:        true,
		Message:        fmt.Sprintf("Merged %d categories into %q (%d recipes moved)", len(req.SourceCategories), change.Target, change.AffectedRecipes),
		CategoryChange: change,
	})
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	var req deleteCategoryRequest
	if !s.decode(w, r, &req) {
		return
	}

	change, err := s.CategoryManager.DeleteCategory(r.Context(), userID(r), req.CategoryName, cookbook.DeleteCategoryOptions{
		MoveTo: req.MoveToCategory,
		Force:  req.ForceDelete,
	})
	if err != nil {
		s.categoryError(w, r, err)
		return
	}

	var msg string
	switch change.Action {
	case cookbook.CategoryActionDeleteWithMigration:
		msg = fmt.Sprintf("Deleted %q and moved %d recipes to %q", req.CategoryName, change.AffectedRecipes, change.Target)
	case cookbook.CategoryActionForceDelete:
		msg = fmt.Sprintf("Deleted %q and %d recipes", req.CategoryName, change.AffectedRecipes)
	default:
		msg = fmt.Sprintf("Deleted empty category %q", req.CategoryName)
	}
	writeJSON(w, http.StatusOK, categoryChangeResponse{Success: true, Message: msg, CategoryChange: change})
}

func (s *Server) handleSuggestCategories(w http.ResponseWriter, r *http.Request) {
	var req suggestCategoriesRequest
	if !s.decode(w, r, &req) {
		return
	}

	opts := cookbook.SuggestOptions{
		MaxSuggestions: cookbook.DefaultMaxSuggestions,
		MinConfidence:  cookbook.DefaultMinConfidence,
	}
	if req.MaxSuggestions != nil {
		opts.MaxSuggestions = *req.MaxSuggestions
	}
	if req.MinConfidence != nil {
		opts.MinConfidence = *req.MinConfidence
	}
	if req.IncludeUserCategories != nil && !*req.IncludeUserCategories {
		opts.UserCategories = []string{}
	}

	suggestions, err := s.CategoryManager.SuggestCategories(r.Context(), userID(r), cookbook.RecipeContent{
		Title:       req.Title,
		Description: req.Description,
		Ingredients: req.Ingredients,
		Steps:       req.Instructions,
	}, opts)
	if err != nil {
		s.categoryError(w, r, err)
		return
	}
	if suggestions == nil {
		suggestions = []cookbook.Suggestion{}
	}
	writeJSON(w, http.StatusOK, suggestionsResponse{
		Success:     true,
		Suggestions: suggestions,
		Metadata:    suggestionsMetadata{TotalSuggestions: len(suggestions)},
	})
}
