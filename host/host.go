// Package host defines the abstract syscall receiver and the
// system-parameter scope the interpreter reads and writes through, per
// spec.md §6's host syscall contract and §3's "system-parameter scope sits
// below the program root and is owned by the host".
//
// Grounded on the teacher's Machine/engine split in engine.go (a Machine
// interface the engine drives, engine itself owning mutable position
// state) and on parameters.go's predefined numbered-parameter constants
// (home/second/work offsets, current coordinate system, the nine
// coordinate-system parameter blocks) — generalised from the teacher's
// fixed X/Y/Z machine-position model into the dialect-agnostic
// (kind, value, scratch) syscall shape spec.md §6 specifies.
package host

import (
	"github.com/dfinlay/gcodelib/ir"
	"github.com/dfinlay/gcodelib/runtime"
)

// Scratch is the immutable letter→value view of one block's words, handed
// to the host alongside each syscall.
type Scratch interface {
	Get(letter byte) (runtime.Value, bool)
	Letters() []byte
}

// Machine is the abstract syscall receiver a host implements. Syscall is
// called once per executed Command; kind identifies the syscall family,
// value is the command's principal value, and scratch exposes every word
// in the block by letter.
type Machine interface {
	Syscall(kind ir.SyscallKind, value runtime.Value, scratch Scratch) error
}

// Predefined system-parameter numbers, carried from the teacher's
// parameters.go. Nine coordinate systems follow CoordSysBase at a stride
// of CoordSysStride (X, Y, Z per system).
const (
	ParamHomeX   = 5161
	ParamHomeY   = 5162
	ParamHomeZ   = 5163
	ParamSecondX = 5181
	ParamSecondY = 5182
	ParamSecondZ = 5183

	ParamWorkEnabled = 5210
	ParamWorkX       = 5211
	ParamWorkY       = 5212
	ParamWorkZ       = 5213

	ParamCurrentCoordSys = 5220
	CoordSysBase         = 5221
	CoordSysStride       = 20
	CoordSysCount        = 9
)

// Position is a three-axis offset, the unit the teacher's homePos/
// secondPos/workPos/coordSysPos fields used.
type Position struct{ X, Y, Z float64 }

// SystemScope is the host-owned parameter scope every numbered/named
// lookup falls through to when unbound in the program's own scopes. It
// generalises the teacher's scattered engine fields (homePos, secondPos,
// workPos, useWorkPos, curCoordSys, coordSysPos, numParams, nameParams)
// into one addressable block, read and written exclusively by the host
// between interpreter runs (spec.md §5's "only the host may mutate the
// system scope").
type SystemScope struct {
	Home       Position
	Second     Position
	Work       Position
	WorkActive bool
	CoordSys   int // 0-based; #5220 reports CoordSys+1
	CoordSyses [CoordSysCount]Position

	numbered map[uint16]runtime.Value
	named    map[string]runtime.Value
}

func NewSystemScope() *SystemScope {
	return &SystemScope{numbered: map[uint16]runtime.Value{}, named: map[string]runtime.Value{}}
}

// Profile is the decoded shape of a host machine profile, the config
// package's CUE-validated output. NewSystemScopeFromProfile turns it into
// the SystemScope that interp.New takes alongside a compiled Module.
type Profile struct {
	Home       Position `json:"home"`
	Second     Position `json:"second"`
	Work       Position `json:"work"`
	WorkActive bool     `json:"workActive"`
	CoordSys   int      `json:"coordSys"`
	Units      string   `json:"units"`      // "mm" or "in"
	SpindleRPM float64  `json:"spindleRPM"` // default spindle speed, named param #<_spindle_rpm>
}

// NewSystemScopeFromProfile builds the initial system scope a fresh
// interpreter run starts from, per a decoded host Profile.
func NewSystemScopeFromProfile(p Profile) *SystemScope {
	s := NewSystemScope()
	s.Home = p.Home
	s.Second = p.Second
	s.Work = p.Work
	s.WorkActive = p.WorkActive
	s.CoordSys = p.CoordSys
	s.StoreNamed("_units", runtime.Str(p.Units))
	s.StoreNamed("_spindle_rpm", runtime.Float(p.SpindleRPM))
	return s
}

func (s *SystemScope) LookupNumbered(key uint16) (runtime.Value, bool) {
	switch key {
	case ParamHomeX:
		return runtime.Float(s.Home.X), true
	case ParamHomeY:
		return runtime.Float(s.Home.Y), true
	case ParamHomeZ:
		return runtime.Float(s.Home.Z), true
	case ParamSecondX:
		return runtime.Float(s.Second.X), true
	case ParamSecondY:
		return runtime.Float(s.Second.Y), true
	case ParamSecondZ:
		return runtime.Float(s.Second.Z), true
	case ParamWorkEnabled:
		return runtime.Logical(s.WorkActive), true
	case ParamWorkX:
		return runtime.Float(s.Work.X), true
	case ParamWorkY:
		return runtime.Float(s.Work.Y), true
	case ParamWorkZ:
		return runtime.Float(s.Work.Z), true
	case ParamCurrentCoordSys:
		return runtime.Integer(int64(s.CoordSys + 1)), true
	}
	if idx, axis, ok := coordSysIndex(key); ok {
		p := s.CoordSyses[idx]
		switch axis {
		case 0:
			return runtime.Float(p.X), true
		case 1:
			return runtime.Float(p.Y), true
		default:
			return runtime.Float(p.Z), true
		}
	}
	v, ok := s.numbered[key]
	return v, ok
}

func (s *SystemScope) StoreNumbered(key uint16, v runtime.Value) {
	f, _ := v.AsFloat()
	switch key {
	case ParamHomeX:
		s.Home.X = f
		return
	case ParamHomeY:
		s.Home.Y = f
		return
	case ParamHomeZ:
		s.Home.Z = f
		return
	case ParamSecondX:
		s.Second.X = f
		return
	case ParamSecondY:
		s.Second.Y = f
		return
	case ParamSecondZ:
		s.Second.Z = f
		return
	case ParamWorkEnabled:
		b, _ := v.AsBool()
		s.WorkActive = b
		return
	case ParamWorkX:
		s.Work.X = f
		return
	case ParamWorkY:
		s.Work.Y = f
		return
	case ParamWorkZ:
		s.Work.Z = f
		return
	case ParamCurrentCoordSys:
		s.CoordSys = int(f) - 1
		return
	}
	if idx, axis, ok := coordSysIndex(key); ok {
		switch axis {
		case 0:
			s.CoordSyses[idx].X = f
		case 1:
			s.CoordSyses[idx].Y = f
		default:
			s.CoordSyses[idx].Z = f
		}
		return
	}
	s.numbered[key] = v
}

func coordSysIndex(key uint16) (idx, axis int, ok bool) {
	if key < CoordSysBase {
		return 0, 0, false
	}
	offset := int(key) - CoordSysBase
	idx = offset / CoordSysStride
	if idx >= CoordSysCount {
		return 0, 0, false
	}
	axis = offset % CoordSysStride
	if axis > 2 {
		return 0, 0, false
	}
	return idx, axis, true
}

func (s *SystemScope) LookupNamed(key string) (runtime.Value, bool) {
	v, ok := s.named[key]
	return v, ok
}

func (s *SystemScope) StoreNamed(key string, v runtime.Value) {
	s.named[key] = v
}
