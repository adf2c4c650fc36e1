package host

import (
	"github.com/skyframe-dev/xplm-sdk/domain/entities"
	"github.com/skyframe-dev/xplm-sdk/domain/ports"
)

// simDataRef is one dataref. Scalars keep a single float64 and convert on
// access, the way the host exposes multi-typed datarefs.
type simDataRef struct {
	name     string
	floats   []float32
	ints     []int32
	bytes    []byte
	num      float64
	kinds    entities.ValueKinds
	refcon   ports.Refcon
	writable bool
	owned    bool
	gone     bool
}

// DefineDataRef adds or replaces a host dataref. The initial value's kind
// must be in kinds; arrays take their length from it.
func (s *Simulator) DefineDataRef(name string, kinds entities.ValueKinds, writable bool, initial entities.Value) {
	raw, ok := s.datarefIDs[name]
	if !ok {
		raw = s.alloc()
		s.datarefIDs[name] = raw
	}
	d := &simDataRef{name: name, kinds: kinds, writable: writable}
	d.store(initial)
	s.datarefs[raw] = d
}

// SetValue changes a host dataref as the host itself would (ignoring
// writability). It reports false for unknown or plugin-owned names.
func (s *Simulator) SetValue(name string, v entities.Value) bool {
	d := s.byName(name)
	if d == nil || d.owned {
		return false
	}
	d.store(v)
	return true
}

// Value returns a dataref's current value in its most precise kind.
// Plugin-owned datarefs are read through the plugin.
func (s *Simulator) Value(name string) (entities.Value, bool) {
	raw, ok := s.datarefIDs[name]
	if !ok {
		return entities.Value{}, false
	}
	d := s.datarefs[raw]
	kind := d.kinds.Preferred()
	if d.owned {
		return s.requireSink().ReadData(d.refcon, kind), true
	}
	switch kind {
	case entities.KindFloatArray:
		return entities.FloatArrayValue(append([]float32(nil), d.floats...)), true
	case entities.KindIntArray:
		return entities.IntArrayValue(append([]int32(nil), d.ints...)), true
	case entities.KindBytes:
		return entities.BytesValue(append([]byte(nil), d.bytes...)), true
	default:
		return scalarValue(kind, d.num), true
	}
}

func (s *Simulator) byName(name string) *simDataRef {
	raw, ok := s.datarefIDs[name]
	if !ok {
		return nil
	}
	return s.datarefs[raw]
}

func (d *simDataRef) store(v entities.Value) {
	switch v.Kind {
	case entities.KindInt:
		d.num = float64(v.Int)
	case entities.KindFloat:
		d.num = float64(v.Float)
	case entities.KindDouble:
		d.num = v.Double
	case entities.KindFloatArray:
		d.floats = append([]float32(nil), v.Floats...)
	case entities.KindIntArray:
		d.ints = append([]int32(nil), v.Ints...)
	case entities.KindBytes:
		d.bytes = append([]byte(nil), v.Bytes...)
	}
}

func scalarValue(kind entities.ValueKind, num float64) entities.Value {
	switch kind {
	case entities.KindInt:
		return entities.IntValue(int32(num))
	case entities.KindFloat:
		return entities.FloatValue(float32(num))
	default:
		return entities.DoubleValue(num)
	}
}

func scalarOf(v entities.Value) float64 {
	switch v.Kind {
	case entities.KindInt:
		return float64(v.Int)
	case entities.KindFloat:
		return float64(v.Float)
	case entities.KindDouble:
		return v.Double
	default:
		return 0
	}
}

// FindDataRef implements ports.Host.
func (s *Simulator) FindDataRef(name string) ports.RawHandle {
	raw, ok := s.datarefIDs[name]
	if !ok || s.datarefs[raw].gone {
		return 0
	}
	return raw
}

// CanWriteDataRef implements ports.Host.
func (s *Simulator) CanWriteDataRef(ref ports.RawHandle) bool {
	d, ok := s.datarefs[ref]
	return ok && d.writable
}

// IsDataRefGood implements ports.Host.
func (s *Simulator) IsDataRefGood(ref ports.RawHandle) bool {
	d, ok := s.datarefs[ref]
	return ok && !d.gone
}

// GetDataRefTypes implements ports.Host.
func (s *Simulator) GetDataRefTypes(ref ports.RawHandle) entities.ValueKinds {
	if d, ok := s.datarefs[ref]; ok {
		return d.kinds
	}
	return 0
}

func (s *Simulator) getScalar(ref ports.RawHandle, kind entities.ValueKind) float64 {
	d, ok := s.datarefs[ref]
	if !ok || d.gone || !d.kinds.Has(kind) {
		return 0
	}
	if d.owned {
		return scalarOf(s.requireSink().ReadData(d.refcon, kind))
	}
	return d.num
}

func (s *Simulator) setScalar(ref ports.RawHandle, v entities.Value) {
	d, ok := s.datarefs[ref]
	if !ok || d.gone || !d.writable || !d.kinds.Has(v.Kind) {
		return
	}
	if d.owned {
		s.requireSink().WriteData(d.refcon, v)
		return
	}
	d.store(v)
}

// GetDatai implements ports.Host.
func (s *Simulator) GetDatai(ref ports.RawHandle) int32 {
	return int32(s.getScalar(ref, entities.KindInt))
}

// SetDatai implements ports.Host.
func (s *Simulator) SetDatai(ref ports.RawHandle, v int32) {
	s.setScalar(ref, entities.IntValue(v))
}

// GetDataf implements ports.Host.
func (s *Simulator) GetDataf(ref ports.RawHandle) float32 {
	return float32(s.getScalar(ref, entities.KindFloat))
}

// SetDataf implements ports.Host.
func (s *Simulator) SetDataf(ref ports.RawHandle, v float32) {
	s.setScalar(ref, entities.FloatValue(v))
}

// GetDatad implements ports.Host.
func (s *Simulator) GetDatad(ref ports.RawHandle) float64 {
	return s.getScalar(ref, entities.KindDouble)
}

// SetDatad implements ports.Host.
func (s *Simulator) SetDatad(ref ports.RawHandle, v float64) {
	s.setScalar(ref, entities.DoubleValue(v))
}

// arrayCopy implements the host's array read contract on a backing slice.
func arrayCopy[T any](src, out []T, offset int) int {
	if out == nil {
		return len(src)
	}
	if offset < 0 || offset >= len(src) {
		return 0
	}
	return copy(out, src[offset:])
}

// arrayWrite copies in into dst at offset, clipping at the end like the host.
func arrayWrite[T any](dst, in []T, offset int) {
	if offset < 0 || offset >= len(dst) {
		return
	}
	copy(dst[offset:], in)
}

func (s *Simulator) array(ref ports.RawHandle, kind entities.ValueKind, write bool) *simDataRef {
	d, ok := s.datarefs[ref]
	if !ok || d.gone || d.owned || !d.kinds.Has(kind) {
		return nil
	}
	if write && !d.writable {
		return nil
	}
	return d
}

// GetDatavi implements ports.Host.
func (s *Simulator) GetDatavi(ref ports.RawHandle, out []int32, offset int) int {
	if d := s.array(ref, entities.KindIntArray, false); d != nil {
		return arrayCopy(d.ints, out, offset)
	}
	return 0
}

// SetDatavi implements ports.Host.
func (s *Simulator) SetDatavi(ref ports.RawHandle, in []int32, offset int) {
	if d := s.array(ref, entities.KindIntArray, true); d != nil {
		arrayWrite(d.ints, in, offset)
	}
}

// GetDatavf implements ports.Host.
func (s *Simulator) GetDatavf(ref ports.RawHandle, out []float32, offset int) int {
	if d := s.array(ref, entities.KindFloatArray, false); d != nil {
		return arrayCopy(d.floats, out, offset)
	}
	return 0
}

// SetDatavf implements ports.Host.
func (s *Simulator) SetDatavf(ref ports.RawHandle, in []float32, offset int) {
	if d := s.array(ref, entities.KindFloatArray, true); d != nil {
		arrayWrite(d.floats, in, offset)
	}
}

// GetDatab implements ports.Host.
func (s *Simulator) GetDatab(ref ports.RawHandle, out []byte, offset int) int {
	if d := s.array(ref, entities.KindBytes, false); d != nil {
		return arrayCopy(d.bytes, out, offset)
	}
	return 0
}

// SetDatab implements ports.Host.
func (s *Simulator) SetDatab(ref ports.RawHandle, in []byte, offset int) {
	if d := s.array(ref, entities.KindBytes, true); d != nil {
		arrayWrite(d.bytes, in, offset)
	}
}

// RegisterDataAccessor implements ports.Host. A name already taken by a
// live dataref cannot be registered again.
func (s *Simulator) RegisterDataAccessor(name string, kinds entities.ValueKinds, writable bool, refcon ports.Refcon) ports.RawHandle {
	if raw, ok := s.datarefIDs[name]; ok && !s.datarefs[raw].gone {
		return 0
	}
	raw := s.alloc()
	s.datarefIDs[name] = raw
	s.datarefs[raw] = &simDataRef{name: name, kinds: kinds, writable: writable, owned: true, refcon: refcon}
	return raw
}

// UnregisterDataAccessor implements ports.Host. Existing handles stay
// resolvable but read as zero and report not good.
func (s *Simulator) UnregisterDataAccessor(ref ports.RawHandle) {
	d, ok := s.datarefs[ref]
	if !ok || !d.owned {
		return
	}
	d.gone = true
	if s.datarefIDs[d.name] == ref {
		delete(s.datarefIDs, d.name)
	}
}
