package runtime

import "testing"

func TestFiletypeFor(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"res://player.gd", "gdscript"},
		{"water.gdshader", "gdshader"},
		{"old_style.shader", "gdshader"},
		{"notes.txt", "text"},
		{"godot.log", "text"},
		{"README.md", "markdown"},
		{"project.json", "json"},
		{"override.cfg", "dosini"},
		{"export.ini", "dosini"},
		{"ci.yaml", "yaml"},
		{"ci.yml", "yaml"},
		{"config.toml", "toml"},
		{"scene.xml", "xml"},
		{"Player.cs", "cs"},
		{"Player.GD", "gdscript"},
		{"no_extension", "text"},
		{"weird.xyz", "text"},
		{"", "text"},
	}
	for _, tt := range tests {
		if got := FiletypeFor(tt.path); got != tt.want {
			t.Errorf("FiletypeFor(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
