package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/cookbook"
	cookbookprom "github.com/fwojciec/cookbook/prometheus"
	"github.com/fwojciec/cookbook/sqlite"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx        context.Context
	Stdout     io.Writer
	Stderr     io.Writer
	Logger     *slog.Logger
	DB         *sqlite.DB
	Recipes    cookbook.RecipeService
	Categories cookbook.CategoryManager
	Metrics    cookbook.MetricService
	Extractor  cookbook.RecipeExtractor
	Prometheus *cookbookprom.Metrics
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	DB       string `name:"db" env:"COOKBOOK_DB" help:"SQLite database path"`
	LogLevel string `env:"COOKBOOK_LOG_LEVEL" default:"info" enum:"debug,info,warn,error" help:"Log level"`

	AI AIConfig `embed:""`

	Serve      ServeCmd      `cmd:"" help:"Run the recipe API server"`
	Extract    ExtractCmd    `cmd:"" help:"Extract a recipe from a URL and print it as JSON"`
	Import     ImportCmd     `cmd:"" help:"Extract and save recipes for a user"`
	Export     ExportCmd     `cmd:"" help:"Write a user's recipes as markdown files"`
	Categories CategoriesCmd `cmd:"" help:"List a user's categories with recipe counts"`
}

// AIConfig selects the model providers and tunes extraction.
type AIConfig struct {
	GeminiAPIKey     string             `env:"GEMINI_API_KEY" help:"Gemini API key, enables URL_DIRECT extraction"`
	GeminiModel      string             `env:"GEMINI_MAIN_MODEL" default:"gemini-2.5-flash" help:"Gemini model (gemini-main)"`
	GeminiProModel   string             `env:"GEMINI_PRO_MODEL" default:"gemini-2.5-pro" help:"Gemini model (gemini-pro)"`
	GeminiFlashModel string             `env:"GEMINI_FLASH_MODEL" default:"gemini-2.5-flash-lite" help:"Gemini model (gemini-flash)"`
	OpenAIAPIKey     string             `name:"openai-api-key" env:"OPENAI_API_KEY" help:"OpenAI API key"`
	OpenAIBaseURL    string             `name:"openai-base-url" env:"OPENAI_BASE_URL" help:"OpenAI-compatible endpoint"`
	OpenAIModel      string             `name:"openai-model" env:"OPENAI_MAIN_MODEL" default:"gpt-4.1-mini-2025-04-14" help:"OpenAI model (openai-main)"`
	OpenAIMiniModel  string             `name:"openai-mini-model" env:"OPENAI_MINI_MODEL" default:"gpt-4o-mini" help:"OpenAI model (openai-mini)"`
	AnthropicAPIKey  string             `env:"ANTHROPIC_API_KEY" help:"Anthropic API key"`
	AnthropicModel   string             `env:"ANTHROPIC_MODEL" default:"claude-haiku-4-5" help:"Anthropic model (anthropic-haiku)"`
	Fallback         string             `env:"COOKBOOK_FALLBACK_PROVIDER" default:"openai" enum:"openai,anthropic,gemini" help:"Default provider for HTML_FALLBACK extraction"`
	Content          string             `env:"COOKBOOK_CONTENT_EXTRACTOR" default:"trafilatura" enum:"trafilatura,readability" help:"Main content extractor for oversized pages"`
	Render           bool               `env:"COOKBOOK_RENDER_JS" help:"Fetch pages with headless Chrome"`
	KnownGoodOnly    bool               `env:"COOKBOOK_KNOWN_GOOD_ONLY" help:"Use URL_DIRECT only for known recipe sites"`
	DomainRate       float64            `env:"COOKBOOK_DOMAIN_RPS" default:"1" help:"Page fetches per second per domain"`
	DomainBurst      int                `env:"COOKBOOK_DOMAIN_BURST" default:"1" help:"Page fetches allowed in a burst per domain"`
	DomainRates      map[string]float64 `env:"COOKBOOK_DOMAIN_RATES" help:"Per-site fetch rates, e.g. allrecipes.com=0.5;food.com=2"`
	Timeout          time.Duration      `env:"COOKBOOK_EXTRACT_TIMEOUT" default:"45s" help:"Timeout per extraction strategy"`
}

// ServeCmd is the "serve" subcommand.
type ServeCmd struct {
	Addr       string `env:"COOKBOOK_ADDR" default:":8080" help:"Listen address"`
	Production bool   `env:"COOKBOOK_PRODUCTION" help:"Hide internal error details"`
}

// ExtractCmd is the "extract" subcommand.
type ExtractCmd struct {
	URL          string `arg:"" help:"Recipe page URL"`
	Strategy     string `short:"s" help:"Force a strategy (url_direct or html_fallback)"`
	URLProvider  string `help:"Model for URL_DIRECT (gemini-main, gemini-pro, gemini-flash)"`
	HTMLProvider string `help:"Model for HTML_FALLBACK (openai-main, openai-mini, anthropic-haiku, gemini-*)"`
	User         string `short:"u" help:"Record the extraction for this user"`
}

// ImportCmd is the "import" subcommand.
type ImportCmd struct {
	User        string   `short:"u" required:"" help:"Owner of the imported recipes"`
	URLs        []string `arg:"" name:"url" help:"Recipe page URLs"`
	Strategy    string   `short:"s" help:"Force a strategy (url_direct or html_fallback)"`
	Concurrency int      `short:"c" default:"4" help:"Concurrent extraction limit"`
}

// ExportCmd is the "export" subcommand.
type ExportCmd struct {
	User     string `short:"u" required:"" help:"Owner of the exported recipes"`
	Dir      string `short:"d" required:"" type:"path" help:"Export directory"`
	Category string `help:"Only export this category"`
}

// CategoriesCmd is the "categories" subcommand.
type CategoriesCmd struct {
	User string `short:"u" required:"" help:"Category owner"`
}
