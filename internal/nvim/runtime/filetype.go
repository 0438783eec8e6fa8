package runtime

import (
	"path/filepath"
	"strings"
)

// filetypes maps host file extensions to engine filetype names. Anything
// unlisted is treated as plain text rather than left to the engine's
// own detection, which sees no real file behind most host documents.
var filetypes = map[string]string{
	"gd":       "gdscript",
	"gdshader": "gdshader",
	"shader":   "gdshader",
	"txt":      "text",
	"log":      "text",
	"md":       "markdown",
	"json":     "json",
	"cfg":      "dosini",
	"ini":      "dosini",
	"yaml":     "yaml",
	"yml":      "yaml",
	"toml":     "toml",
	"xml":      "xml",
	"cs":       "cs",
}

// FiletypeFor returns the engine filetype for a host document path.
func FiletypeFor(path string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if ft, ok := filetypes[ext]; ok {
		return ft
	}
	return "text"
}
