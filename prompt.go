package cookbook

import "strings"

// ExtractionSystemPrompt is the system instruction shared by all extraction
// models.
const ExtractionSystemPrompt = "You extract structured recipe data from web pages. Respond with a single JSON object and nothing else."

const draftSchema = `{
  "title": "recipe name",
  "ingredients": ["ingredient 1", "ingredient 2"],
  "steps": ["step 1", "step 2"],
  "image": "image_url_or_null",
  "description": "brief description",
  "cuisine": "cuisine type",
  "category": "recipe category",
  "prepTime": "prep time",
  "cleanupTime": "cleanup time"
}`

// URLExtractionPrompt asks a model with web access to read pageURL itself.
func URLExtractionPrompt(pageURL string) string {
	var b strings.Builder
	b.WriteString("Please visit this URL and extract recipe information: ")
	b.WriteString(pageURL)
	b.WriteString("\n\nIMPORTANT: Visit the actual webpage and analyze the complete content to extract recipe details.")
	b.WriteString("\n\nReturn ONLY a valid JSON object with these exact fields (no additional text or formatting):\n")
	b.WriteString(draftSchema)
	b.WriteString("\n\nIf you cannot access the URL or it doesn't contain a recipe, return an empty object: {}")
	return b.String()
}

// HTMLExtractionPrompt asks a model to extract a recipe from page content.
func HTMLExtractionPrompt(content string) string {
	var b strings.Builder
	b.WriteString("Extract recipe information from this HTML and return ONLY a JSON object with these exact fields:\n")
	b.WriteString(draftSchema)
	b.WriteString("\n\nIf the content does not contain a recipe, return an empty object: {}")
	b.WriteString("\n\nHTML content:\n")
	b.WriteString(content)
	return b.String()
}
