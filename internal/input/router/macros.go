package router

// macroState holds recorded key sequences by register. Playback runs
// through the same send path as typed keys, with recording suspended
// so a macro cannot capture itself.
type macroState struct {
	recording rune
	playing   bool
	buf       []string
	store     map[rune][]string
	last      rune
}

func newMacroState() macroState {
	return macroState{store: make(map[rune][]string)}
}

// record appends keys to the take while recording.
func (m *macroState) record(keys string) {
	if m.recording != 0 && !m.playing {
		m.buf = append(m.buf, keys)
	}
}

// startRecording begins capturing into reg (q{reg}).
func (r *Router) startRecording(reg rune) {
	r.macros.recording = reg
	r.macros.buf = nil
	r.local("record-start")
}

// stopRecording stores the take. An empty take leaves the register
// untouched.
func (r *Router) stopRecording() {
	m := &r.macros
	if m.recording == 0 {
		return
	}
	reg := m.recording
	m.recording = 0
	if len(m.buf) > 0 {
		m.store[reg] = m.buf
	}
	m.buf = nil
	r.local("record-stop")
}

// playMacro replays the take stored in reg.
func (r *Router) playMacro(reg rune) {
	m := &r.macros
	keys, ok := m.store[reg]
	if !ok || len(keys) == 0 {
		return
	}
	m.last = reg
	m.playing = true
	for _, k := range keys {
		r.send(k)
	}
	m.playing = false
	r.local("play-macro")
}

// replayLastMacro implements @@.
func (r *Router) replayLastMacro() {
	if r.macros.last != 0 {
		r.playMacro(r.macros.last)
	}
}
