package export

// Dataset defines tabular export content. Rows are keyed by header name so
// renderers stay independent of column order in the source query.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
}

// Renderer converts a dataset into a downloadable document.
type Renderer interface {
	Render(data Dataset, title string) ([]byte, error)
	ContentType() string
}
