package macro

import (
	"fmt"
	"os"
	"strings"

	lua "github.com/yuin/gopher-lua"
)

// registerAPI installs the `zcc` Lua module and a handful of built-in
// declaration-macro generators, mirroring
// pkg/meta.LuaEvaluator.createMinzModule's shape: code-generation
// helpers that return generated source text rather than executing
// anything themselves, plus save_bin/load_bin for macros that stage
// compile-time binary data (e.g. a font or tile table baked in as a
// byte array).
func (e *Expander) registerAPI() {
	L := e.L

	mod := L.NewTable()
	L.SetField(mod, "enum", L.NewFunction(luaGenEnum))
	L.SetField(mod, "struct_array", L.NewFunction(luaGenConstArray))
	L.SetField(mod, "save_bin", L.NewFunction(luaSaveBin))
	L.SetField(mod, "load_bin", L.NewFunction(luaLoadBin))
	L.SetGlobal("zcc", mod)

	L.SetGlobal("CONST_ARRAY", L.NewFunction(luaGenConstArray))
	L.SetGlobal("ENUM", L.NewFunction(luaGenEnum))
}

// luaGenEnum implements the ENUM(name, v1, v2, ...) declaration macro:
// ENUM("Color", "RED", "GREEN", "BLUE") generates an enum declaration
// whose members are assigned ascending values starting at 0.
func luaGenEnum(L *lua.LState) int {
	name := L.CheckString(1)
	var variants []string
	for i := 2; i <= L.GetTop(); i++ {
		variants = append(variants, L.CheckString(i))
	}
	var b strings.Builder
	fmt.Fprintf(&b, "enum %s { ", name)
	b.WriteString(strings.Join(variants, ", "))
	b.WriteString(" };\n")
	L.Push(lua.LString(b.String()))
	return 1
}

// luaGenConstArray implements CONST_ARRAY(name, type, v1, v2, ...),
// generating a static const array initializer -- the shape the
// original source's table-driven dispatch macros expand to.
func luaGenConstArray(L *lua.LState) int {
	name := L.CheckString(1)
	typ := L.CheckString(2)
	var elems []string
	for i := 3; i <= L.GetTop(); i++ {
		elems = append(elems, L.ToStringMeta(L.Get(i)).String())
	}
	code := fmt.Sprintf("static const %s %s[%d] = { %s };\n", typ, name, len(elems), strings.Join(elems, ", "))
	L.Push(lua.LString(code))
	return 1
}

// luaSaveBin writes compile-time-generated binary data to a file.
// Usage from a macro generator: zcc.save_bin(filename, data), where
// data is a string of raw bytes or a table of byte values.
func luaSaveBin(L *lua.LState) int {
	filename := L.CheckString(1)
	val := L.Get(2)

	var data []byte
	switch v := val.(type) {
	case lua.LString:
		data = []byte(string(v))
	case *lua.LTable:
		n := v.Len()
		data = make([]byte, 0, n)
		for i := 1; i <= n; i++ {
			num, ok := v.RawGetInt(i).(lua.LNumber)
			if !ok {
				L.RaiseError("save_bin: table must contain only byte values")
				return 0
			}
			data = append(data, byte(int(num)))
		}
	default:
		L.RaiseError("save_bin: data must be a string or table")
		return 0
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		L.RaiseError("save_bin: %v", err)
		return 0
	}
	L.Push(lua.LNumber(len(data)))
	return 1
}

// luaLoadBin reads a file's raw bytes into a Lua string.
func luaLoadBin(L *lua.LState) int {
	filename := L.CheckString(1)
	data, err := os.ReadFile(filename)
	if err != nil {
		L.RaiseError("load_bin: %v", err)
		return 0
	}
	L.Push(lua.LString(string(data)))
	return 1
}
