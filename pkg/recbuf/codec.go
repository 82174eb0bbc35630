package recbuf

import (
	"encoding/binary"
	"math"
)

// FITS stores numeric data big-endian. The shims below convert through
// [binary.BigEndian], which is the identity on big-endian hosts and a
// byte swap everywhere else. Writes encode into a scratch buffer so the
// caller's values are never mutated.

// FloatCodec converts between the IEEE bit patterns stored in files and
// the host float representation, applied value-wise after decoding and
// before encoding. On IEEE hosts every direction is the identity and the
// zero value is used. Non-IEEE hosts install in-place transforms.
type FloatCodec struct {
	DecodeFloat32 func([]float32)
	EncodeFloat32 func([]float32)
	DecodeFloat64 func([]float64)
	EncodeFloat64 func([]float64)
}

// readRaw fetches len(raw) bytes of nvals values of the given width
// starting at byteloc, stride bytes between value starts.
//
// Contiguous reads below MinDirect go through the pool; at or above it
// they bypass the pool, parking the byte cursor at byteloc for the
// duration and restoring it after. Strided reads always go through the
// grouped path.
func (f *File) readRaw(byteloc, stride, width int64, raw []byte) error {
	if stride == width {
		if int64(len(raw)) < f.eng.minDirect {
			if err := f.seekTo(byteloc, ReportEOF); err != nil {
				return err
			}

			return f.getBuffered(raw)
		}

		pos := f.bytepos
		f.bytepos = byteloc
		err := f.getDirect(raw)
		f.bytepos = pos

		return err
	}

	if err := f.seekTo(byteloc, ReportEOF); err != nil {
		return err
	}

	return f.getGrouped(width, int64(len(raw))/width, stride-width, raw)
}

// writeRaw stores len(raw) bytes of values of the given width at the
// current byte position, stride bytes between value starts.
func (f *File) writeRaw(stride, width int64, raw []byte) error {
	if stride == width {
		return f.putBytes(raw)
	}

	return f.putGrouped(width, int64(len(raw))/width, stride-width, raw)
}

// ReadUint8s reads len(vals) bytes starting at byteloc, stride bytes
// apart (stride 1 means contiguous).
func (f *File) ReadUint8s(byteloc, stride int64, vals []uint8) error {
	f.eng.mu.Lock()
	defer f.eng.mu.Unlock()

	if err := f.enter(); err != nil {
		return err
	}

	return f.readRaw(byteloc, stride, 1, vals)
}

// WriteUint8s writes len(vals) bytes at the current byte position, stride
// bytes apart.
func (f *File) WriteUint8s(stride int64, vals []uint8) error {
	f.eng.mu.Lock()
	defer f.eng.mu.Unlock()

	if err := f.enter(); err != nil {
		return err
	}

	return f.writeRaw(stride, 1, vals)
}

// ReadInt16s reads len(vals) big-endian 16-bit integers starting at
// byteloc, stride bytes apart (stride 2 means contiguous).
func (f *File) ReadInt16s(byteloc, stride int64, vals []int16) error {
	f.eng.mu.Lock()
	defer f.eng.mu.Unlock()

	if err := f.enter(); err != nil {
		return err
	}

	raw := make([]byte, 2*len(vals))
	if err := f.readRaw(byteloc, stride, 2, raw); err != nil {
		return err
	}

	for i := range vals {
		vals[i] = int16(binary.BigEndian.Uint16(raw[2*i:]))
	}

	return nil
}

// WriteInt16s writes len(vals) big-endian 16-bit integers at the current
// byte position, stride bytes apart.
func (f *File) WriteInt16s(stride int64, vals []int16) error {
	f.eng.mu.Lock()
	defer f.eng.mu.Unlock()

	if err := f.enter(); err != nil {
		return err
	}

	raw := make([]byte, 2*len(vals))
	for i, v := range vals {
		binary.BigEndian.PutUint16(raw[2*i:], uint16(v))
	}

	return f.writeRaw(stride, 2, raw)
}

// ReadInt32s reads len(vals) big-endian 32-bit integers starting at
// byteloc, stride bytes apart (stride 4 means contiguous).
func (f *File) ReadInt32s(byteloc, stride int64, vals []int32) error {
	f.eng.mu.Lock()
	defer f.eng.mu.Unlock()

	if err := f.enter(); err != nil {
		return err
	}

	raw := make([]byte, 4*len(vals))
	if err := f.readRaw(byteloc, stride, 4, raw); err != nil {
		return err
	}

	for i := range vals {
		vals[i] = int32(binary.BigEndian.Uint32(raw[4*i:]))
	}

	return nil
}

// WriteInt32s writes len(vals) big-endian 32-bit integers at the current
// byte position, stride bytes apart.
func (f *File) WriteInt32s(stride int64, vals []int32) error {
	f.eng.mu.Lock()
	defer f.eng.mu.Unlock()

	if err := f.enter(); err != nil {
		return err
	}

	raw := make([]byte, 4*len(vals))
	for i, v := range vals {
		binary.BigEndian.PutUint32(raw[4*i:], uint32(v))
	}

	return f.writeRaw(stride, 4, raw)
}

// ReadInt64s reads len(vals) big-endian 64-bit integers starting at
// byteloc, stride bytes apart (stride 8 means contiguous).
func (f *File) ReadInt64s(byteloc, stride int64, vals []int64) error {
	f.eng.mu.Lock()
	defer f.eng.mu.Unlock()

	if err := f.enter(); err != nil {
		return err
	}

	raw := make([]byte, 8*len(vals))
	if err := f.readRaw(byteloc, stride, 8, raw); err != nil {
		return err
	}

	for i := range vals {
		vals[i] = int64(binary.BigEndian.Uint64(raw[8*i:]))
	}

	return nil
}

// WriteInt64s writes len(vals) big-endian 64-bit integers at the current
// byte position, stride bytes apart.
func (f *File) WriteInt64s(stride int64, vals []int64) error {
	f.eng.mu.Lock()
	defer f.eng.mu.Unlock()

	if err := f.enter(); err != nil {
		return err
	}

	raw := make([]byte, 8*len(vals))
	for i, v := range vals {
		binary.BigEndian.PutUint64(raw[8*i:], uint64(v))
	}

	return f.writeRaw(stride, 8, raw)
}

// ReadFloat32s reads len(vals) big-endian 32-bit floats starting at
// byteloc, stride bytes apart, applying the engine's float codec.
func (f *File) ReadFloat32s(byteloc, stride int64, vals []float32) error {
	f.eng.mu.Lock()
	defer f.eng.mu.Unlock()

	if err := f.enter(); err != nil {
		return err
	}

	raw := make([]byte, 4*len(vals))
	if err := f.readRaw(byteloc, stride, 4, raw); err != nil {
		return err
	}

	for i := range vals {
		vals[i] = math.Float32frombits(binary.BigEndian.Uint32(raw[4*i:]))
	}

	if fn := f.eng.floats.DecodeFloat32; fn != nil {
		fn(vals)
	}

	return nil
}

// WriteFloat32s writes len(vals) big-endian 32-bit floats at the current
// byte position, stride bytes apart, applying the engine's float codec.
func (f *File) WriteFloat32s(stride int64, vals []float32) error {
	f.eng.mu.Lock()
	defer f.eng.mu.Unlock()

	if err := f.enter(); err != nil {
		return err
	}

	if fn := f.eng.floats.EncodeFloat32; fn != nil {
		tmp := make([]float32, len(vals))
		copy(tmp, vals)
		fn(tmp)
		vals = tmp
	}

	raw := make([]byte, 4*len(vals))
	for i, v := range vals {
		binary.BigEndian.PutUint32(raw[4*i:], math.Float32bits(v))
	}

	return f.writeRaw(stride, 4, raw)
}

// ReadFloat64s reads len(vals) big-endian 64-bit floats starting at
// byteloc, stride bytes apart, applying the engine's float codec.
func (f *File) ReadFloat64s(byteloc, stride int64, vals []float64) error {
	f.eng.mu.Lock()
	defer f.eng.mu.Unlock()

	if err := f.enter(); err != nil {
		return err
	}

	raw := make([]byte, 8*len(vals))
	if err := f.readRaw(byteloc, stride, 8, raw); err != nil {
		return err
	}

	for i := range vals {
		vals[i] = math.Float64frombits(binary.BigEndian.Uint64(raw[8*i:]))
	}

	if fn := f.eng.floats.DecodeFloat64; fn != nil {
		fn(vals)
	}

	return nil
}

// WriteFloat64s writes len(vals) big-endian 64-bit floats at the current
// byte position, stride bytes apart, applying the engine's float codec.
func (f *File) WriteFloat64s(stride int64, vals []float64) error {
	f.eng.mu.Lock()
	defer f.eng.mu.Unlock()

	if err := f.enter(); err != nil {
		return err
	}

	if fn := f.eng.floats.EncodeFloat64; fn != nil {
		tmp := make([]float64, len(vals))
		copy(tmp, vals)
		fn(tmp)
		vals = tmp
	}

	raw := make([]byte, 8*len(vals))
	for i, v := range vals {
		binary.BigEndian.PutUint64(raw[8*i:], math.Float64bits(v))
	}

	return f.writeRaw(stride, 8, raw)
}
