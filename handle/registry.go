package handle

import (
	"cmp"
	"slices"

	"github.com/skyframe-dev/xplm-sdk/domain/entities"
	"github.com/skyframe-dev/xplm-sdk/domain/ports"
)

type slot struct {
	release ReleaseFunc
	kind    string
	raw     ports.RawHandle
	seq     uint64
	gen     uint32
	scope   entities.Scope
	live    bool
}

// Registry is the arena of live host handles.
type Registry struct {
	slots    []slot
	freeList []uint32
	scope    entities.Scope
	seq      uint64
	live     int
}

// NewRegistry creates an empty registry acquiring into ScopeNone.
func NewRegistry() *Registry {
	// Slot 0 is reserved so the zero Handle never matches.
	return &Registry{slots: make([]slot, 1, 64)}
}

// BeginScope sets the scope new acquisitions belong to and returns the
// previous one.
func (r *Registry) BeginScope(scope entities.Scope) entities.Scope {
	prev := r.scope
	r.scope = scope
	return prev
}

// Scope returns the scope new acquisitions belong to.
func (r *Registry) Scope() entities.Scope { return r.scope }

// Live returns the number of live handles.
func (r *Registry) Live() int { return r.live }

// LiveIn returns the number of live handles in scope.
func (r *Registry) LiveIn(scope entities.Scope) int {
	n := 0
	for i := 1; i < len(r.slots); i++ {
		if r.slots[i].live && r.slots[i].scope == scope {
			n++
		}
	}
	return n
}

// ReleaseScope releases every live handle in scope, most recently acquired
// first, and returns how many were released. Release functions may release
// other handles; those are skipped when their turn comes.
func (r *Registry) ReleaseScope(scope entities.Scope) int {
	type pending struct {
		seq   uint64
		index uint32
		gen   uint32
	}
	var order []pending
	for i := 1; i < len(r.slots); i++ {
		s := &r.slots[i]
		if s.live && s.scope == scope {
			order = append(order, pending{seq: s.seq, index: uint32(i), gen: s.gen})
		}
	}
	slices.SortFunc(order, func(a, b pending) int { return cmp.Compare(b.seq, a.seq) })

	released := 0
	for _, p := range order {
		s := &r.slots[p.index]
		if !s.live || s.gen != p.gen {
			continue
		}
		r.free(p.index, true)
		released++
	}
	return released
}

func (r *Registry) insert(kind string, raw ports.RawHandle, release ReleaseFunc) (uint32, uint32) {
	var index uint32
	if n := len(r.freeList); n > 0 {
		index = r.freeList[n-1]
		r.freeList = r.freeList[:n-1]
	} else {
		r.slots = append(r.slots, slot{})
		index = uint32(len(r.slots) - 1)
	}

	r.seq++
	s := &r.slots[index]
	if s.gen == 0 {
		s.gen = 1
	}
	s.kind = kind
	s.raw = raw
	s.release = release
	s.scope = r.scope
	s.seq = r.seq
	s.live = true
	r.live++
	return index, s.gen
}

func (r *Registry) lookup(kind string, index, gen uint32) *slot {
	if index == 0 || int(index) >= len(r.slots) {
		return nil
	}
	s := &r.slots[index]
	if !s.live || s.gen != gen || s.kind != kind {
		return nil
	}
	return s
}

// free retires the slot before running its release function, so a release
// function that re-enters the registry sees the handle as gone.
func (r *Registry) free(index uint32, runRelease bool) {
	s := &r.slots[index]
	raw, release := s.raw, s.release

	s.live = false
	s.raw = 0
	s.release = nil
	s.gen++
	if s.gen == 0 {
		s.gen = 1
	}
	r.live--
	r.freeList = append(r.freeList, index)

	if runRelease && release != nil {
		release(raw)
	}
}
