package recbuf

// PutBytes writes src at the current byte position. Writes below the
// engine's MinDirect threshold go through the record pool; larger writes
// go directly to storage after flushing and unbinding every cached record
// they overlap, so the direct write is not shadowed by stale copies.
func (f *File) PutBytes(src []byte) error {
	f.eng.mu.Lock()
	defer f.eng.mu.Unlock()

	if err := f.enter(); err != nil {
		return err
	}

	return f.putBytes(src)
}

func (f *File) putBytes(src []byte) error {
	if len(src) == 0 {
		return nil
	}

	if int64(len(src)) >= f.eng.minDirect {
		return f.putDirect(src)
	}

	return f.putBuffered(src)
}

// putBuffered copies src into the current record, loading successor
// records as the copy crosses record boundaries. Never touches storage
// directly.
func (f *File) putBuffered(src []byte) error {
	if err := f.ensureCurrent(IgnoreEOF); err != nil {
		return err
	}

	e := f.eng

	for len(src) > 0 {
		s := &e.slots[f.curbuf]
		bufpos := f.bytepos - s.record*RecordLen

		n := min(int64(len(src)), RecordLen-bufpos)
		if n > 0 {
			copy(s.buf[bufpos:], src[:n])

			src = src[n:]
			f.bytepos += n
			s.dirty = true
		}

		if len(src) > 0 {
			if err := f.loadRecord(f.bytepos/RecordLen, IgnoreEOF); err != nil {
				return err
			}
		}
	}

	return nil
}

// putDirect writes src straight to storage. The current record is topped
// up first, every overlapping cached record is flushed and unbound, all
// whole records except the last are written in one storage call, and the
// trailing partial record is staged in the (re-bound) current buffer.
func (f *File) putDirect(src []byte) error {
	if err := f.ensureCurrent(IgnoreEOF); err != nil {
		return err
	}

	e := f.eng
	nbuff := f.curbuf
	filepos := f.bytepos

	recstart := e.slots[nbuff].record
	recend := (filepos + int64(len(src)) - 1) / RecordLen

	bufpos := filepos - recstart*RecordLen
	nspace := RecordLen - bufpos

	if nspace > 0 {
		// Fill the remainder of the current record. MinDirect >= 2 records
		// guarantees src extends past it.
		copy(e.slots[nbuff].buf[bufpos:], src[:nspace])

		src = src[nspace:]
		filepos += nspace
		e.slots[nbuff].dirty = true
	}

	for i := range e.slots {
		s := &e.slots[i]
		if s.owner == f && s.record >= recstart && s.record <= recend {
			if s.dirty {
				if err := e.flushSlot(i); err != nil {
					return err
				}
			}

			s.owner = nil
		}
	}

	if f.iopos != filepos {
		if err := f.seekDriver(filepos); err != nil {
			return err
		}
	}

	// All whole records except the one holding the tail.
	nwrite := (int64(len(src)) - 1) / RecordLen * RecordLen

	if err := f.writeDriver(src[:nwrite]); err != nil {
		return err
	}

	src = src[nwrite:]

	s := &e.slots[nbuff]

	if f.iopos >= f.filesize {
		f.filesize = f.iopos

		// The tail record is past EOF: the bytes after the tail stay
		// filled rather than carrying whatever the slot last held.
		fillRecord(s.buf[:], f.fill())
	} else {
		// The tail record exists on disk: preserve the bytes the caller
		// is not overwriting.
		if err := f.readDriver(s.buf[:]); err != nil {
			return err
		}
	}

	copy(s.buf[:], src)

	s.dirty = true
	s.record = recend
	s.owner = f
	f.curbuf = nbuff

	f.logfilesize = max(f.logfilesize, (recend+1)*RecordLen)
	f.bytepos = filepos + nwrite + int64(len(src))

	return nil
}

// GetBytes reads len(dst) bytes at the current byte position. Reads below
// MinDirect go through the record pool; larger reads flush any
// overlapping dirty records (keeping them cached) and then read directly
// from storage.
func (f *File) GetBytes(dst []byte) error {
	f.eng.mu.Lock()
	defer f.eng.mu.Unlock()

	if err := f.enter(); err != nil {
		return err
	}

	return f.getBytes(dst)
}

func (f *File) getBytes(dst []byte) error {
	if len(dst) == 0 {
		return nil
	}

	if int64(len(dst)) >= f.eng.minDirect {
		return f.getDirect(dst)
	}

	return f.getBuffered(dst)
}

// getBuffered copies out of the current record, loading successor records
// as the copy crosses record boundaries.
func (f *File) getBuffered(dst []byte) error {
	if err := f.ensureCurrent(ReportEOF); err != nil {
		return err
	}

	e := f.eng

	for len(dst) > 0 {
		s := &e.slots[f.curbuf]
		bufpos := f.bytepos - s.record*RecordLen

		n := min(int64(len(dst)), RecordLen-bufpos)
		if n > 0 {
			copy(dst[:n], s.buf[bufpos:])

			dst = dst[n:]
			f.bytepos += n
		}

		if len(dst) > 0 {
			if err := f.loadRecord(f.bytepos/RecordLen, ReportEOF); err != nil {
				return err
			}
		}
	}

	return nil
}

// getDirect reads straight from storage. Overlapping dirty records are
// flushed first but stay cached; they may still serve later small reads.
// The byte cursor is left where it was: direct-read callers save and
// restore the position themselves.
func (f *File) getDirect(dst []byte) error {
	if err := f.ensureCurrent(ReportEOF); err != nil {
		return err
	}

	e := f.eng
	filepos := f.bytepos

	recstart := e.slots[f.curbuf].record
	recend := (filepos + int64(len(dst)) - 1) / RecordLen

	for i := range e.slots {
		s := &e.slots[i]
		if s.dirty && s.owner == f && s.record >= recstart && s.record <= recend {
			if err := e.flushSlot(i); err != nil {
				return err
			}
		}
	}

	if f.iopos != filepos {
		if err := f.seekDriver(filepos); err != nil {
			return err
		}
	}

	return f.readDriver(dst)
}
