package detect

// Document is a named piece of plain text. Names are unique within a run.
// The engine never modifies a Document.
type Document struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}
