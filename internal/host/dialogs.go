package host

// Dialogs is the modal-prompt surface of the embedding editor. Calls
// block until the user answers.
type Dialogs interface {
	// AskRestart shows the engine-failure dialog and reports whether
	// the user chose to restart. The bridge raises it at most once per
	// failure.
	AskRestart(reason string) bool

	// AskReload asks whether to reload path after it changed on disk
	// while the widget held unsaved edits.
	AskReload(path string) bool
}
