package host

// Actions is the editor-level operation surface the bridge invokes on
// behalf of the input router. These are the operations a modal command
// resolves to when it is handled by the host instead of the engine.
type Actions interface {
	// OpenFile opens path in the editor, creating a tab or focusing an
	// existing one.
	OpenFile(path string)

	// OpenURL opens url with the system handler.
	OpenURL(url string)

	// QuickOpen raises the editor's fuzzy file picker.
	QuickOpen()

	// Save writes the current file to disk.
	Save()

	// SaveAll writes every modified open file.
	SaveAll()

	// CloseTab closes the current tab. force skips the unsaved-changes
	// prompt.
	CloseTab(force bool)

	// CloseAllTabs closes every tab of the editor's script view.
	CloseAllTabs(force bool)

	// NextTab and PrevTab cycle through open tabs, wrapping at the
	// ends.
	NextTab()
	PrevTab()

	// Tabs returns the display names of the open tabs in order.
	Tabs() []string

	// CurrentFile returns the display name of the focused file, or ""
	// for an unsaved buffer.
	CurrentFile() string

	// ReloadFromDisk discards widget content in favor of the on-disk
	// file.
	ReloadFromDisk()

	// ShowHelp opens the editor's help for topic. An empty topic opens
	// the help landing page.
	ShowHelp(topic string)

	// Echo shows msg in the editor's status area.
	Echo(msg string)

	// Print appends one line to the editor's output log. Multi-line
	// listings arrive as repeated calls.
	Print(msg string)
}
