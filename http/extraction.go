package http

import (
	"net/http"
	"time"

	"github.com/fwojciec/cookbook"
)

type fetchRecipeRequest struct {
	URL            string `json:"url" validate:"required,http_url"`
	ForceStrategy  string `json:"forceStrategy"`
	GeminiProvider string `json:"geminiProvider"`
	OpenAIProvider string `json:"openaiProvider"`
}

type fetchRecipeResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	*cookbook.Extraction
}

type guestRecipe struct {
	*cookbook.RecipeDraft
	SourceURL string    `json:"sourceUrl"`
	IsGuest   bool      `json:"isGuest"`
	CreatedAt time.Time `json:"createdAt"`
}

type guestFetchRecipeResponse struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Recipe    guestRecipe `json:"recipe"`
	GuestMode bool        `json:"guestMode"`
}

func (s *Server) handleFetchRecipe(w http.ResponseWriter, r *http.Request) {
	req, opts, ok := s.decodeFetch(w, r)
	if !ok {
		return
	}
	opts.UserID = userID(r)

	x, err := s.RecipeExtractor.Extract(r.Context(), req.URL, opts)
	if err != nil {
		s.Error(w, r, err)
		return
	}

	msg := "Recipe extracted from the page URL"
	if x.Strategy == cookbook.StrategyHTMLFallback {
		msg = "Recipe extracted from the page HTML"
	}
	writeJSON(w, http.StatusOK, fetchRecipeResponse{Success: true, Message: msg, Extraction: x})
}

// handleGuestFetchRecipe extracts a recipe without an account. Nothing is
// saved; the client keeps the recipe until the user signs up.
func (s *Server) handleGuestFetchRecipe(w http.ResponseWriter, r *http.Request) {
	req, opts, ok := s.decodeFetch(w, r)
	if !ok {
		return
	}

	x, err := s.RecipeExtractor.Extract(r.Context(), req.URL, opts)
	if err != nil {
		s.Error(w, r, err)
		return
	}

	draft := *x.Draft
	if draft.Category == "" {
		draft.Category = cookbook.Uncategorized
	}
	writeJSON(w, http.StatusOK, guestFetchRecipeResponse{
		Success: true,
		Message: "Recipe extracted successfully! Sign up to save it permanently.",
		Recipe: guestRecipe{
			RecipeDraft: &draft,
			SourceURL:   req.URL,
			IsGuest:     true,
			CreatedAt:   time.Now().UTC(),
		},
		GuestMode: true,
	})
}

// decodeFetch reads a fetch request and the extraction options it asks for.
func (s *Server) decodeFetch(w http.ResponseWriter, r *http.Request) (fetchRecipeRequest, cookbook.ExtractOptions, bool) {
	var req fetchRecipeRequest
	var opts cookbook.ExtractOptions
	if !s.decode(w, r, &req) {
		return req, opts, false
	}

	var err error
	if opts.Strategy, err = cookbook.ParseStrategy(req.ForceStrategy); err != nil {
		s.Error(w, r, err)
		return req, opts, false
	}
	if opts.URLProvider, err = cookbook.ParseProvider(req.GeminiProvider); err != nil {
		s.Error(w, r, err)
		return req, opts, false
	}
	if opts.HTMLProvider, err = cookbook.ParseProvider(req.OpenAIProvider); err != nil {
		s.Error(w, r, err)
		return req, opts, false
	}
	return req, opts, true
}
