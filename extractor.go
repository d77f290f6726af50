package cookbook

// PageContent holds the main content and metadata isolated from a page.
type PageContent struct {
	// Title is the page title extracted from metadata.
	Title string

	// Description is the page summary from metadata.
	Description string

	// Image is the lead image URL from metadata, if any.
	Image string

	// ContentHTML is the main content as clean HTML with boilerplate removed.
	ContentHTML string
}

// ContentExtractor isolates the main content of an HTML page.
type ContentExtractor interface {
	// Extract processes raw HTML and returns the main content and metadata.
	Extract(html string) (*PageContent, error)
}
