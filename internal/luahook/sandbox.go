// Package luahook runs document transforms written in Lua inside a
// restricted interpreter.
package luahook

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"
)

const defaultTimeout = time.Second

// ErrTimeout is returned when a script exceeds its time budget.
var ErrTimeout = errors.New("lua transform: sandbox timeout")

// Sandbox configures the interpreter. Only the base, string, table and math
// libraries are opened; io, os and package are never available.
type Sandbox struct {
	Timeout time.Duration
}

func (s Sandbox) newState() *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true, RegistrySize: 256, RegistryMaxSize: 4096})
	for _, lib := range []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		L.Push(L.NewFunction(lib.fn))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}
	// Base opens loaders that reach the filesystem.
	for _, name := range []string{"dofile", "loadfile", "require"} {
		L.SetGlobal(name, lua.LNil)
	}
	return L
}

// Transform runs code with the global `doc` bound to a copy of doc. The
// script may mutate `doc` in place or return a replacement table; returning
// nothing keeps the (possibly mutated) `doc`.
func (s Sandbox) Transform(ctx context.Context, name, code string, doc map[string]any) (map[string]any, error) {
	if strings.TrimSpace(code) == "" {
		return doc, nil
	}
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	L := s.newState()
	defer L.Close()
	L.SetContext(ctx)

	L.SetGlobal("doc", toLValue(L, doc))
	fn, err := L.LoadString(code)
	if err != nil {
		return nil, fmt.Errorf("lua transform %s: %v", name, err)
	}
	L.Push(fn)
	if err := L.PCall(0, 1, nil); err != nil {
		if ctx.Err() != nil {
			return nil, ErrTimeout
		}
		return nil, fmt.Errorf("lua transform %s: %v", name, err)
	}
	ret := L.Get(-1)
	L.Pop(1)
	if ret == lua.LNil {
		ret = L.GetGlobal("doc")
	}
	out, ok := fromLValue(ret).(map[string]any)
	if !ok {
		return nil, fmt.Errorf("lua transform %s: expected a table result", name)
	}
	return out, nil
}

func toLValue(L *lua.LState, v any) lua.LValue {
	switch x := v.(type) {
	case nil:
		return lua.LNil
	case string:
		return lua.LString(x)
	case bool:
		return lua.LBool(x)
	case int:
		return lua.LNumber(float64(x))
	case int64:
		return lua.LNumber(float64(x))
	case float64:
		return lua.LNumber(x)
	case map[string]any:
		tbl := L.NewTable()
		for k, v2 := range x {
			tbl.RawSetString(k, toLValue(L, v2))
		}
		if len(x) == 0 {
			// Keeps empty objects distinguishable from empty lists.
			L.SetMetatable(tbl, objectMarker(L))
		}
		return tbl
	case []any:
		tbl := L.NewTable()
		for i, v2 := range x {
			tbl.RawSetInt(i+1, toLValue(L, v2))
		}
		return tbl
	default:
		return lua.LString(fmt.Sprint(x))
	}
}

const objectMarkerKey = "__bdct_object"

func objectMarker(L *lua.LState) *lua.LTable {
	mt := L.NewTable()
	mt.RawSetString(objectMarkerKey, lua.LTrue)
	return mt
}

func fromLValue(v lua.LValue) any {
	switch v.Type() {
	case lua.LTNil:
		return nil
	case lua.LTBool:
		return lua.LVAsBool(v)
	case lua.LTNumber:
		f := float64(v.(lua.LNumber))
		if f == float64(int64(f)) {
			return int(f)
		}
		return f
	case lua.LTString:
		return v.String()
	case lua.LTTable:
		t := v.(*lua.LTable)
		if isMarkedObject(t) {
			return tableToMap(t)
		}
		arr := []any{}
		isArray := true
		t.ForEach(func(k, val lua.LValue) {
			if !isArray {
				return
			}
			if lk, ok := k.(lua.LNumber); ok && int(lk) == len(arr)+1 {
				arr = append(arr, fromLValue(val))
			} else {
				isArray = false
			}
		})
		if isArray {
			return arr
		}
		return tableToMap(t)
	default:
		return nil
	}
}

func isMarkedObject(t *lua.LTable) bool {
	mt, ok := t.Metatable.(*lua.LTable)
	return ok && mt.RawGetString(objectMarkerKey) == lua.LTrue
}

func tableToMap(t *lua.LTable) map[string]any {
	obj := map[string]any{}
	t.ForEach(func(k, val lua.LValue) {
		obj[k.String()] = fromLValue(val)
	})
	return obj
}
