package keymap

import (
	lua "github.com/yuin/gopher-lua"
)

// register installs the gdnvim table a keymap script programs against.
// Called before the executor starts, while the state is still
// single-owner.
func (k *Keymap) register(l *lua.LState) {
	mod := l.NewTable()
	l.SetField(mod, "map", l.NewFunction(k.luaMap))
	l.SetField(mod, "unmap", l.NewFunction(k.luaUnmap))
	l.SetField(mod, "action", l.NewFunction(k.luaAction))
	l.SetField(mod, "send", l.NewFunction(k.luaSend))
	l.SetField(mod, "mode", l.NewFunction(k.luaMode))
	l.SetField(mod, "pending", l.NewFunction(k.luaPending))
	l.SetField(mod, "count", l.NewFunction(k.luaCount))
	l.SetGlobal("gdnvim", mod)
}

// map(notation, action)
// Binds a key to a named action, or to "keys:{notation}" to forward a
// keystream.
func (k *Keymap) luaMap(l *lua.LState) int {
	notation := l.CheckString(1)
	action := l.CheckString(2)
	if notation == "" {
		l.ArgError(1, "notation cannot be empty")
		return 0
	}
	if action == "" {
		l.ArgError(2, "action cannot be empty")
		return 0
	}

	if err := k.binder.Bind(notation, action); err != nil {
		l.RaiseError("map(%s, %s): %v", notation, action, err)
		return 0
	}
	k.recordBinding(notation)
	return 0
}

// unmap(notation)
// Removes a binding this script made.
func (k *Keymap) luaUnmap(l *lua.LState) int {
	notation := l.CheckString(1)
	if notation == "" {
		l.ArgError(1, "notation cannot be empty")
		return 0
	}

	if err := k.binder.Unbind(notation); err != nil {
		l.RaiseError("unmap(%s): %v", notation, err)
		return 0
	}
	k.forgetBinding(notation)
	return 0
}

// action(name)
// Runs a named action immediately.
func (k *Keymap) luaAction(l *lua.LState) int {
	name := l.CheckString(1)
	if err := k.binder.Do(name); err != nil {
		l.RaiseError("action(%s): %v", name, err)
	}
	return 0
}

// send(keys)
// Forwards a keystream in engine notation.
func (k *Keymap) luaSend(l *lua.LState) int {
	keys := l.CheckString(1)
	if keys == "" {
		l.ArgError(1, "keys cannot be empty")
		return 0
	}
	if err := k.binder.Do("keys:" + keys); err != nil {
		l.RaiseError("send(%s): %v", keys, err)
	}
	return 0
}

// mode() -> string
func (k *Keymap) luaMode(l *lua.LState) int {
	l.Push(lua.LString(k.binder.Mode()))
	return 1
}

// pending() -> string
// The multi-key prefix waiting for its continuation.
func (k *Keymap) luaPending(l *lua.LState) int {
	l.Push(lua.LString(k.binder.Chord()))
	return 1
}

// count() -> string
// The digits of a typed count prefix.
func (k *Keymap) luaCount(l *lua.LState) int {
	l.Push(lua.LString(k.binder.CountBuffer()))
	return 1
}
