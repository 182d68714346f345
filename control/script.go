package control

import (
	"github.com/pkg/errors"
	lua "github.com/yuin/gopher-lua"

	"github.com/porres/blit"
)

// Script compiles the Lua source src, which must define a global function control(t), and
// returns a Streamer calling it once per frame with t the time in seconds at rate sr. The
// control ends when the function returns nil.
//
// Only the base, math and string libraries are available to the script. Close releases the
// interpreter.
func Script(src string, sr blit.SampleRate) (blit.StreamCloser, error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	for _, lib := range []struct {
		name string
		open lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.MathLibName, lua.OpenMath},
		{lua.StringLibName, lua.OpenString},
	} {
		if err := L.CallByParam(lua.P{Fn: L.NewFunction(lib.open), NRet: 0, Protect: true}, lua.LString(lib.name)); err != nil {
			L.Close()
			return nil, errors.Wrapf(err, "control: script: open %s", lib.name)
		}
	}

	if err := L.DoString(src); err != nil {
		L.Close()
		return nil, errors.Wrap(err, "control: script")
	}
	fn := L.GetGlobal("control")
	if fn.Type() != lua.LTFunction {
		L.Close()
		return nil, errors.New("control: script does not define function control(t)")
	}
	return &script{L: L, fn: fn, period: sr.Period()}, nil
}

type script struct {
	L      *lua.LState
	fn     lua.LValue
	period float64
	pos    int
	done   bool
	err    error
}

func (s *script) Stream(samples [][2]float64) (n int, ok bool) {
	if s.done || s.err != nil {
		return 0, false
	}
	for i := range samples {
		t := float64(s.pos) * s.period
		if err := s.L.CallByParam(lua.P{Fn: s.fn, NRet: 1, Protect: true}, lua.LNumber(t)); err != nil {
			s.err = errors.Wrap(err, "control: script")
			break
		}
		ret := s.L.Get(-1)
		s.L.Pop(1)
		if ret == lua.LNil {
			s.done = true
			break
		}
		v, isNum := ret.(lua.LNumber)
		if !isNum {
			s.err = errors.Errorf("control: script returned %s, want a number", ret.Type())
			break
		}
		samples[i] = [2]float64{float64(v), float64(v)}
		s.pos++
		n++
	}
	return n, n > 0
}

func (s *script) Err() error {
	return s.err
}

func (s *script) Close() error {
	s.L.Close()
	return nil
}
