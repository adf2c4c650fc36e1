package dataref

import (
	"github.com/skyframe-dev/xplm-sdk/domain/entities"
	"github.com/skyframe-dev/xplm-sdk/domain/errors"
	"github.com/skyframe-dev/xplm-sdk/domain/ports"
)

// Len returns the element count of an array dataref, or 1 for scalars.
func (a *Access) Len(d DataRef) (int, error) {
	kind := d.kinds.Preferred()
	raw, err := a.readable("dataref.len", d, kind)
	if err != nil {
		return 0, err
	}
	return a.length(raw, d.kinds), nil
}

func (a *Access) length(raw ports.RawHandle, kinds entities.ValueKinds) int {
	switch {
	case kinds.Has(entities.KindFloatArray):
		return a.host.GetDatavf(raw, nil, 0)
	case kinds.Has(entities.KindIntArray):
		return a.host.GetDatavi(raw, nil, 0)
	case kinds.Has(entities.KindBytes):
		return a.host.GetDatab(raw, nil, 0)
	default:
		return 1
	}
}

// checkRange rejects any range that does not fit [0, length).
func checkRange(name string, offset, count, length int) error {
	if offset < 0 || count < 0 || offset+count > length {
		return &errors.RangeError{Target: name, Offset: offset, Count: count, Length: length}
	}
	return nil
}

// GetFloatArray reads count elements starting at offset.
func (a *Access) GetFloatArray(d DataRef, offset, count int) ([]float32, error) {
	raw, err := a.readable("dataref.get_float_array", d, entities.KindFloatArray)
	if err != nil {
		return nil, err
	}
	if err := checkRange(d.name, offset, count, a.host.GetDatavf(raw, nil, 0)); err != nil {
		return nil, err
	}
	out := make([]float32, count)
	n := a.host.GetDatavf(raw, out, offset)
	return out[:n], nil
}

// SetFloatArray writes values starting at offset.
func (a *Access) SetFloatArray(d DataRef, offset int, values []float32) error {
	raw, err := a.writable("dataref.set_float_array", d, entities.KindFloatArray)
	if err != nil {
		return err
	}
	if err := checkRange(d.name, offset, len(values), a.host.GetDatavf(raw, nil, 0)); err != nil {
		return err
	}
	a.host.SetDatavf(raw, values, offset)
	return nil
}

// GetIntArray reads count elements starting at offset.
func (a *Access) GetIntArray(d DataRef, offset, count int) ([]int32, error) {
	raw, err := a.readable("dataref.get_int_array", d, entities.KindIntArray)
	if err != nil {
		return nil, err
	}
	if err := checkRange(d.name, offset, count, a.host.GetDatavi(raw, nil, 0)); err != nil {
		return nil, err
	}
	out := make([]int32, count)
	n := a.host.GetDatavi(raw, out, offset)
	return out[:n], nil
}

// SetIntArray writes values starting at offset.
func (a *Access) SetIntArray(d DataRef, offset int, values []int32) error {
	raw, err := a.writable("dataref.set_int_array", d, entities.KindIntArray)
	if err != nil {
		return err
	}
	if err := checkRange(d.name, offset, len(values), a.host.GetDatavi(raw, nil, 0)); err != nil {
		return err
	}
	a.host.SetDatavi(raw, values, offset)
	return nil
}

// GetBytes reads count bytes starting at offset.
func (a *Access) GetBytes(d DataRef, offset, count int) ([]byte, error) {
	raw, err := a.readable("dataref.get_bytes", d, entities.KindBytes)
	if err != nil {
		return nil, err
	}
	if err := checkRange(d.name, offset, count, a.host.GetDatab(raw, nil, 0)); err != nil {
		return nil, err
	}
	out := make([]byte, count)
	n := a.host.GetDatab(raw, out, offset)
	return out[:n], nil
}

// SetBytes writes data starting at offset.
func (a *Access) SetBytes(d DataRef, offset int, data []byte) error {
	raw, err := a.writable("dataref.set_bytes", d, entities.KindBytes)
	if err != nil {
		return err
	}
	if err := checkRange(d.name, offset, len(data), a.host.GetDatab(raw, nil, 0)); err != nil {
		return err
	}
	a.host.SetDatab(raw, data, offset)
	return nil
}

// GetString reads a byte dataref as a NUL-terminated string.
func (a *Access) GetString(d DataRef) (string, error) {
	n, err := a.Len(d)
	if err != nil {
		return "", err
	}
	b, err := a.GetBytes(d, 0, n)
	if err != nil {
		return "", err
	}
	for i, c := range b {
		if c == 0 {
			return string(b[:i]), nil
		}
	}
	return string(b), nil
}
