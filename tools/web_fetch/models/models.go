package models

type Result struct {
	URL      string `json:"url"`
	Title    string `json:"title"`
	Byline   string `json:"byline"`
	Text     string `json:"text"`
	Status   int    `json:"status"`
	RenderMS int    `json:"render_ms"`
}

// Ok reports whether the fetch produced usable text.
func (r Result) Ok() bool {
	return r.Text != ""
}
