package commands

// ResultKind discriminates the variants of Result.
type ResultKind int

const (
	ResultOutput ResultKind = iota
	ResultEditor
)

// EditorRequest asks the host to open an edit surface for a file.
// The host hands the edited text back through Set.CommitEdit.
type EditorRequest struct {
	// Filename is the path as the user typed it.
	Filename string
	// Path is the absolute path resolved when the editor was opened.
	Path string
	// Content is the current file content, empty for a new file.
	Content string
}

// Result is the outcome of running a command: output text or an editor request.
type Result struct {
	kind   ResultKind
	text   string
	editor EditorRequest
}

// Output returns a Result carrying terminal output.
func Output(text string) Result {
	return Result{kind: ResultOutput, text: text}
}

// Edit returns a Result asking the host to open an editor.
func Edit(req EditorRequest) Result {
	return Result{kind: ResultEditor, editor: req}
}

// Kind reports which variant r holds.
func (r Result) Kind() ResultKind {
	return r.kind
}

// Text returns the output text. It is empty for editor requests.
func (r Result) Text() string {
	return r.text
}

// Editor returns the editor request and whether r holds one.
func (r Result) Editor() (EditorRequest, bool) {
	return r.editor, r.kind == ResultEditor
}
