package recbuf

// Grouped transfers move ngroups groups of gsize bytes each, skipping
// offset bytes between groups, through the record pool. They combine a
// seek per group with the copy for column-oriented access in row-major
// table files: group i lands at bytepos + i*(gsize+offset).
//
// A group may split across one record boundary, so gsize is capped at
// RecordLen. The gap may span any number of records.

// PutBytesOff writes ngroups groups of gsize bytes from src, offset bytes
// apart, starting at the current byte position. On return the cursor sits
// after the last group: bytepos + ngroups*gsize + (ngroups-1)*offset.
func (f *File) PutBytesOff(gsize, ngroups, offset int64, src []byte) error {
	f.eng.mu.Lock()
	defer f.eng.mu.Unlock()

	if err := f.enter(); err != nil {
		return err
	}

	return f.putGrouped(gsize, ngroups, offset, src)
}

func (f *File) putGrouped(gsize, ngroups, offset int64, src []byte) error {
	if ngroups <= 0 || gsize <= 0 {
		return nil
	}

	if gsize > RecordLen || offset < 0 {
		return ErrBadElemNum
	}

	if err := f.ensureCurrent(IgnoreEOF); err != nil {
		return err
	}

	e := f.eng
	bcur := f.curbuf
	record := e.slots[bcur].record

	bufpos := f.bytepos - record*RecordLen
	nspace := RecordLen - bufpos
	ioptr := bufpos
	cptr := int64(0)

	// The cursor may rest exactly on a record boundary; start in the next
	// record then.
	if nspace == 0 {
		record++

		if err := f.loadRecord(record, IgnoreEOF); err != nil {
			return err
		}

		bcur = f.curbuf
		ioptr = 0
		nspace = RecordLen
	}

	// All but the last group: copy, advance past the gap, and reload when
	// the intra-record cursor leaves the current record.
	for ii := int64(1); ii < ngroups; ii++ {
		nwrite := min(gsize, nspace)
		copy(e.slots[bcur].buf[ioptr:ioptr+nwrite], src[cptr:cptr+nwrite])
		cptr += nwrite

		if nwrite < gsize {
			// The group split across the record boundary.
			e.slots[bcur].dirty = true
			record++

			if err := f.loadRecord(record, IgnoreEOF); err != nil {
				return err
			}

			bcur = f.curbuf

			rest := gsize - nwrite
			copy(e.slots[bcur].buf[:rest], src[cptr:cptr+rest])
			cptr += rest

			ioptr = offset + rest
			nspace = RecordLen - offset - rest
		} else {
			ioptr += offset + nwrite
			nspace -= offset + nwrite
		}

		if nspace <= 0 {
			// The gap carried the cursor beyond the current record.
			e.slots[bcur].dirty = true
			record += (RecordLen - nspace) / RecordLen

			if err := f.loadRecord(record, IgnoreEOF); err != nil {
				return err
			}

			bcur = f.curbuf
			bufpos = -nspace % RecordLen
			nspace = RecordLen - bufpos
			ioptr = bufpos
		}
	}

	// The last group: no gap follows it.
	nwrite := min(gsize, nspace)
	copy(e.slots[bcur].buf[ioptr:ioptr+nwrite], src[cptr:cptr+nwrite])
	cptr += nwrite

	if nwrite < gsize {
		e.slots[bcur].dirty = true
		record++

		if err := f.loadRecord(record, IgnoreEOF); err != nil {
			return err
		}

		bcur = f.curbuf

		rest := gsize - nwrite
		copy(e.slots[bcur].buf[:rest], src[cptr:cptr+rest])
	}

	e.slots[bcur].dirty = true

	f.bytepos += ngroups*gsize + (ngroups-1)*offset

	return nil
}

// GetBytesOff reads ngroups groups of gsize bytes into dst, offset bytes
// apart, starting at the current byte position. On return the cursor sits
// after the last group.
func (f *File) GetBytesOff(gsize, ngroups, offset int64, dst []byte) error {
	f.eng.mu.Lock()
	defer f.eng.mu.Unlock()

	if err := f.enter(); err != nil {
		return err
	}

	return f.getGrouped(gsize, ngroups, offset, dst)
}

func (f *File) getGrouped(gsize, ngroups, offset int64, dst []byte) error {
	if ngroups <= 0 || gsize <= 0 {
		return nil
	}

	if gsize > RecordLen || offset < 0 {
		return ErrBadElemNum
	}

	if err := f.ensureCurrent(ReportEOF); err != nil {
		return err
	}

	e := f.eng
	bcur := f.curbuf
	record := e.slots[bcur].record

	bufpos := f.bytepos - record*RecordLen
	nspace := RecordLen - bufpos
	ioptr := bufpos
	cptr := int64(0)

	if nspace == 0 {
		record++

		if err := f.loadRecord(record, ReportEOF); err != nil {
			return err
		}

		bcur = f.curbuf
		ioptr = 0
		nspace = RecordLen
	}

	for ii := int64(1); ii < ngroups; ii++ {
		nread := min(gsize, nspace)
		copy(dst[cptr:cptr+nread], e.slots[bcur].buf[ioptr:ioptr+nread])
		cptr += nread

		if nread < gsize {
			record++

			if err := f.loadRecord(record, ReportEOF); err != nil {
				return err
			}

			bcur = f.curbuf

			rest := gsize - nread
			copy(dst[cptr:cptr+rest], e.slots[bcur].buf[:rest])
			cptr += rest

			ioptr = offset + rest
			nspace = RecordLen - offset - rest
		} else {
			ioptr += offset + nread
			nspace -= offset + nread
		}

		if nspace <= 0 {
			record += (RecordLen - nspace) / RecordLen

			if err := f.loadRecord(record, ReportEOF); err != nil {
				return err
			}

			bcur = f.curbuf
			bufpos = -nspace % RecordLen
			nspace = RecordLen - bufpos
			ioptr = bufpos
		}
	}

	nread := min(gsize, nspace)
	copy(dst[cptr:cptr+nread], e.slots[bcur].buf[ioptr:ioptr+nread])
	cptr += nread

	if nread < gsize {
		record++

		if err := f.loadRecord(record, ReportEOF); err != nil {
			return err
		}

		bcur = f.curbuf

		rest := gsize - nread
		copy(dst[cptr:cptr+rest], e.slots[bcur].buf[:rest])
	}

	f.bytepos += ngroups*gsize + (ngroups-1)*offset

	return nil
}
