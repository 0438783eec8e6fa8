package bridge

import (
	"context"
	"errors"
	"testing"

	"gdnvim/internal/nvim/runtime"
)

// stubResolver answers definition and hover lookups from fixed fields.
type stubResolver struct {
	defFile  string
	defLine  int
	defCol   int
	defErr   error
	topic    string
	topicErr error

	defCalls int
	docCalls int
	lastWord string
}

func (s *stubResolver) Definition(_ context.Context, path string, line, col int) (string, int, int, error) {
	s.defCalls++
	return s.defFile, s.defLine, s.defCol, s.defErr
}

func (s *stubResolver) Documentation(_ context.Context, path string, line, col int, word string) (string, error) {
	s.docCalls++
	s.lastWord = word
	return s.topic, s.topicErr
}

func TestGotoDefinitionWithoutResolver(t *testing.T) {
	r := newRig(t, "move()")

	r.b.GotoDefinition()

	if got := r.actions.lastEcho(); got != "No language server available" {
		t.Errorf("echo = %q, want missing-server notice", got)
	}
}

func TestGotoDefinitionSameFile(t *testing.T) {
	r := newRig(t, "func jump():", "\tpass", "jump()")
	if err := r.b.SwitchBuffer("res://player.gd"); err != nil {
		t.Fatalf("SwitchBuffer() error: %v", err)
	}
	r.b.SetResolver(&stubResolver{defFile: "res://player.gd", defLine: 0, defCol: 5})
	r.widget.SetCaret(2, 0)
	before := len(r.fake.CallsOf("nvim_win_set_cursor"))

	r.b.GotoDefinition()

	if line, col := r.widget.Caret(); line != 0 || col != 5 {
		t.Errorf("caret = (%d,%d), want the definition (0,5)", line, col)
	}
	if got := len(r.fake.CallsOf("nvim_win_set_cursor")); got != before+1 {
		t.Errorf("cursor pushes = %d, want %d", got, before+1)
	}
	if len(r.actions.opened) != 0 {
		t.Errorf("opened %v, want no file open for a same-file hit", r.actions.opened)
	}
}

func TestGotoDefinitionCrossFile(t *testing.T) {
	r := newRig(t, "var e = Enemy.new()")
	r.b.SetResolver(&stubResolver{defFile: "res://enemy.gd", defLine: 3, defCol: 6})

	r.b.GotoDefinition()

	if len(r.actions.opened) != 1 || r.actions.opened[0] != "res://enemy.gd" {
		t.Fatalf("opened %v, want the definition file", r.actions.opened)
	}
	if line, col := r.widget.Caret(); line != 0 || col != 0 {
		t.Errorf("caret = (%d,%d), want unchanged until the file binds", line, col)
	}

	// The host finishes opening the file; the deferred jump lands.
	r.widget.SetText("l0\nl1\nl2\nl3 body")
	if err := r.b.SwitchBuffer("res://enemy.gd"); err != nil {
		t.Fatalf("SwitchBuffer() error: %v", err)
	}
	if line, col := r.widget.Caret(); line != 3 || col != 6 {
		t.Errorf("caret = (%d,%d), want the jump target (3,6)", line, col)
	}
}

func TestGotoDefinitionNotFound(t *testing.T) {
	tests := []struct {
		name     string
		resolver *stubResolver
	}{
		{"empty result", &stubResolver{}},
		{"lookup error", &stubResolver{defErr: errors.New("server gone")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRig(t, "move()")
			r.b.SetResolver(tt.resolver)

			r.b.GotoDefinition()

			if got := r.actions.lastEcho(); got != "No definition found" {
				t.Errorf("echo = %q, want %q", got, "No definition found")
			}
			if len(r.actions.opened) != 0 {
				t.Errorf("opened %v, want nothing", r.actions.opened)
			}
		})
	}
}

func TestShowDocumentationClassName(t *testing.T) {
	r := newRig(t, "var v = Vector2.ZERO")
	res := &stubResolver{}
	r.b.SetResolver(res)

	r.b.ShowDocumentation("Vector2")

	if len(r.actions.helps) != 1 || r.actions.helps[0] != "Vector2" {
		t.Errorf("helps = %v, want the class page", r.actions.helps)
	}
	if res.docCalls != 0 {
		t.Errorf("hover lookups = %d, want 0 for a class name", res.docCalls)
	}
}

func TestShowDocumentationHover(t *testing.T) {
	r := newRig(t, "move_and_slide()")
	res := &stubResolver{topic: "CharacterBody2D.move_and_slide"}
	r.b.SetResolver(res)

	r.b.ShowDocumentation("move_and_slide")

	if len(r.actions.helps) != 1 || r.actions.helps[0] != "CharacterBody2D.move_and_slide" {
		t.Errorf("helps = %v, want the hover topic", r.actions.helps)
	}
	if res.lastWord != "move_and_slide" {
		t.Errorf("hover word = %q, want the caret word", res.lastWord)
	}
}

func TestShowDocumentationMisses(t *testing.T) {
	t.Run("no topic", func(t *testing.T) {
		r := newRig(t, "foo()")
		r.b.SetResolver(&stubResolver{})
		r.b.ShowDocumentation("foo")
		if got := r.actions.lastEcho(); got != "No documentation for foo" {
			t.Errorf("echo = %q, want the miss notice", got)
		}
	})
	t.Run("no resolver", func(t *testing.T) {
		r := newRig(t, "foo()")
		r.b.ShowDocumentation("foo")
		if got := r.actions.lastEcho(); got != "No documentation for foo" {
			t.Errorf("echo = %q, want the miss notice", got)
		}
	})
	t.Run("empty word", func(t *testing.T) {
		r := newRig(t, "foo()")
		r.b.ShowDocumentation("")
		if len(r.actions.echoes)+len(r.actions.helps) != 0 {
			t.Error("empty word reached the help surfaces")
		}
	})
}

func TestVersionLine(t *testing.T) {
	r := newRig(t, "abc")
	if got := r.b.VersionLine(); got != "gdnvim 0.1.0 (nvim 0.11.2)" {
		t.Errorf("VersionLine() = %q, want host and engine versions", got)
	}
}

func TestVersionLineBeforeStart(t *testing.T) {
	b := New(DefaultConfig(), newStubWidget(""), &stubActions{}, &stubDialogs{})
	if got := b.VersionLine(); got != "gdnvim 0.1.0" {
		t.Errorf("VersionLine() = %q, want host version only", got)
	}
}

func TestOptionValueFormats(t *testing.T) {
	r := newRig(t, "abc")
	r.script.setOption("expandtab", true)
	r.script.setOption("list", false)
	r.script.setOption("mouse", "a")
	r.script.setOption("shiftwidth", int64(4))

	tests := []struct {
		name string
		want string
	}{
		{"expandtab", "1"},
		{"list", "0"},
		{"mouse", "a"},
		{"shiftwidth", "4"},
	}
	for _, tt := range tests {
		got, err := r.b.OptionValue(tt.name)
		if err != nil {
			t.Errorf("OptionValue(%q) error: %v", tt.name, err)
			continue
		}
		if got != tt.want {
			t.Errorf("OptionValue(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}

	if _, err := r.b.OptionValue("nosuch"); err == nil {
		t.Error("OptionValue(nosuch) error = nil, want engine error")
	}
}

func TestOptionValueDisconnected(t *testing.T) {
	r := newRig(t, "abc")
	r.b.closeSession()

	if _, err := r.b.OptionValue("mouse"); !errors.Is(err, ErrNotConnected) {
		t.Errorf("error = %v, want ErrNotConnected", err)
	}
}

func TestRegisterContents(t *testing.T) {
	r := newRig(t, "abc")
	r.script.setRegister("a", "yanked text")

	got, err := r.b.RegisterContents("a")
	if err != nil {
		t.Fatalf("RegisterContents() error: %v", err)
	}
	if got != "yanked text" {
		t.Errorf("RegisterContents(a) = %q, want %q", got, "yanked text")
	}

	empty, err := r.b.RegisterContents("z")
	if err != nil {
		t.Fatalf("RegisterContents(z) error: %v", err)
	}
	if empty != "" {
		t.Errorf("RegisterContents(z) = %q, want empty", empty)
	}
}

func TestCloseTabRunsCloseHandshake(t *testing.T) {
	r := newRig(t, "abc")

	r.b.CloseTab(true)

	if got := len(wipeoutCalls(r.fake)); got != 1 {
		t.Errorf("wipeout calls = %d, want the close handshake", got)
	}
	if len(r.actions.closes) != 1 || !r.actions.closes[0] {
		t.Errorf("host closes = %v, want one forced close", r.actions.closes)
	}
}

func TestReloadFromDiskReloadsBothSides(t *testing.T) {
	r := newRig(t, "stale")
	r.script.setReloadResult(map[string]any{
		"lines": []any{"from disk"}, "tick": int64(7),
		"attached": true, "cursor": []any{int64(1), int64(0)},
	})

	r.b.ReloadFromDisk()

	if r.actions.reloads != 1 {
		t.Errorf("host reloads = %d, want 1", r.actions.reloads)
	}
	if got := len(r.luaCalls(runtime.FnReloadBuffer)); got != 1 {
		t.Errorf("engine reloads = %d, want 1", got)
	}
	if got := r.widget.Text(); got != "from disk" {
		t.Errorf("widget text = %q, want the disk content", got)
	}
}

func TestJoinNoSpace(t *testing.T) {
	r := newRig(t, "one", "two")

	r.b.JoinNoSpace()

	if got := len(r.luaCalls(runtime.FnJoinNoSpace)); got != 1 {
		t.Errorf("join_no_space calls = %d, want 1", got)
	}
}
