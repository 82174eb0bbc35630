package recbuf

// EOFMode selects how positioning and loading treat the region at or
// beyond the logical end of file.
type EOFMode int

const (
	// ReportEOF fails the operation with [ErrEndOfFile].
	ReportEOF EOFMode = iota

	// IgnoreEOF succeeds; the record is initialized with the HDU's fill
	// byte as if the file were zero-extended, and is flushed on
	// write-back.
	IgnoreEOF
)

// Seek moves the logical byte cursor to pos, loading the record covering
// pos into the pool if it is not already this file's current record.
// When writing, pos may lie beyond the current EOF; mode determines
// whether that is an error or a fill-extension.
func (f *File) Seek(pos int64, mode EOFMode) error {
	f.eng.mu.Lock()
	defer f.eng.mu.Unlock()

	if err := f.enter(); err != nil {
		return err
	}

	return f.seekTo(pos, mode)
}

func (f *File) seekTo(pos int64, mode EOFMode) error {
	if pos < 0 {
		return ErrNegativePos
	}

	record := pos / RecordLen

	if !f.currentIs(record) {
		if err := f.loadRecord(record, mode); err != nil {
			return err
		}
	}

	f.bytepos = pos

	return nil
}

// currentIs reports whether this file's current buffer holds record.
func (f *File) currentIs(record int64) bool {
	if f.curbuf < 0 {
		return false
	}

	s := &f.eng.slots[f.curbuf]

	return s.owner == f && s.record == record
}

// ensureCurrent makes sure the file holds a current buffer whose record
// covers bytepos. A flush with clear, a drop past EOF, or a direct typed
// transfer can leave the pinned buffer unbound or pointing elsewhere; the
// record is reloaded on demand.
func (f *File) ensureCurrent(mode EOFMode) error {
	if f.curbuf >= 0 {
		s := &f.eng.slots[f.curbuf]
		if s.owner == f {
			off := f.bytepos - s.record*RecordLen
			if off >= 0 && off <= RecordLen {
				return nil
			}
		}
	}

	return f.loadRecord(f.bytepos/RecordLen, mode)
}

// loadRecord ensures (f, record) is resident in some slot and makes that
// slot the file's current buffer.
//
// On a hit the slot is promoted to youngest. On a miss a victim is chosen
// and flushed if dirty; the record is then either read from storage or,
// when it lies at or beyond EOF, initialized with fill bytes and marked
// dirty so that a later flush extends the file.
func (f *File) loadRecord(record int64, mode EOFMode) error {
	e := f.eng

	// Hit search runs youngest to oldest: recently used records are the
	// likely targets.
	for i := len(e.age) - 1; i >= 0; i-- {
		n := e.age[i]

		s := &e.slots[n]
		if s.owner == f && s.record == record {
			f.curbuf = n
			e.promoteAt(i)

			return nil
		}
	}

	rstart := record * RecordLen

	if mode == ReportEOF && rstart >= f.logfilesize {
		return ErrEndOfFile
	}

	n, err := e.chooseVictim(f)
	if err != nil {
		return err
	}

	s := &e.slots[n]

	if s.dirty {
		if err := e.flushSlot(n); err != nil {
			return err
		}
	}

	if rstart >= f.filesize {
		fillRecord(s.buf[:], f.fill())

		f.logfilesize = max(f.logfilesize, rstart+RecordLen)
		s.dirty = true
	} else {
		if f.iopos != rstart {
			if err := f.seekDriver(rstart); err != nil {
				return err
			}
		}

		if err := f.readDriver(s.buf[:]); err != nil {
			// Don't publish a half-read record.
			s.owner = nil
			return err
		}

		s.dirty = false
	}

	s.owner = f
	s.record = record
	f.curbuf = n
	e.promote(n)

	return nil
}
