package recbuf

import "fmt"

// tablePos validates a (row, char) table coordinate against the current
// HDU and returns the absolute byte position and the last row the access
// touches. Rows and chars are 1-based.
func (f *File) tablePos(firstRow, firstChar, nchars int64) (pos, endRow int64, err error) {
	if firstRow < 1 {
		return 0, 0, ErrBadRowNum
	}

	if firstChar < 1 {
		return 0, 0, ErrBadElemNum
	}

	rowlen := f.hdu.RowLength
	if rowlen < 1 {
		return 0, 0, fmt.Errorf("%w: table has no row length", ErrBadElemNum)
	}

	endRow = (firstChar+nchars-2)/rowlen + firstRow
	pos = f.hdu.DataStart + (firstRow-1)*rowlen + firstChar - 1

	return pos, endRow, nil
}

// ReadTableBytes reads len(dst) consecutive bytes from an ASCII or binary
// table, starting at the 1-based (firstRow, firstChar) coordinate. The
// read spans multiple rows when it extends past the end of a row, and
// fails with [ErrBadRowNum] when it would run past the last row.
func (f *File) ReadTableBytes(firstRow, firstChar int64, dst []byte) error {
	f.eng.mu.Lock()
	defer f.eng.mu.Unlock()

	if err := f.enter(); err != nil {
		return err
	}

	if len(dst) == 0 {
		return nil
	}

	pos, endRow, err := f.tablePos(firstRow, firstChar, int64(len(dst)))
	if err != nil {
		return err
	}

	if endRow > f.hdu.NumRows {
		return fmt.Errorf("%w: read past end of table (row %d of %d)",
			ErrBadRowNum, endRow, f.hdu.NumRows)
	}

	if err := f.seekTo(pos, ReportEOF); err != nil {
		return err
	}

	return f.getBytes(dst)
}

// WriteTableBytes writes len(src) consecutive bytes into an ASCII or
// binary table, starting at the 1-based (firstRow, firstChar) coordinate.
// A write landing past the last row grows the HDU's row count to the last
// row written.
func (f *File) WriteTableBytes(firstRow, firstChar int64, src []byte) error {
	f.eng.mu.Lock()
	defer f.eng.mu.Unlock()

	if err := f.enter(); err != nil {
		return err
	}

	if len(src) == 0 {
		return nil
	}

	pos, endRow, err := f.tablePos(firstRow, firstChar, int64(len(src)))
	if err != nil {
		return err
	}

	if err := f.seekTo(pos, IgnoreEOF); err != nil {
		return err
	}

	if err := f.putBytes(src); err != nil {
		return err
	}

	if endRow > f.hdu.NumRows {
		f.hdu.NumRows = endRow
	}

	return nil
}
