package cookbook

// Converter converts HTML to Markdown.
type Converter interface {
	// Convert transforms HTML content into Markdown, which is far more
	// compact than the markup it came from.
	Convert(html string) (string, error)
}
