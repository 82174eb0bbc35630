package recbuf

import (
	"sync"
)

const (
	// RecordLen is the size of one FITS record in bytes. FITS files are
	// aligned to multiples of this size and all buffered IO happens in
	// units of it.
	RecordLen = 2880

	// DefaultNBuf is the default number of record buffers in the pool.
	DefaultNBuf = 40

	// DefaultMinDirect is the default transfer size at or above which
	// reads and writes bypass the pool and go directly to storage.
	DefaultMinDirect = 3 * RecordLen
)

// Options configure an [Engine].
type Options struct {
	// NBuf is the number of record buffers in the pool, shared across all
	// files opened on the engine. Defaults to [DefaultNBuf]. Each active
	// file keeps one buffer pinned, so NBuf bounds the number of files
	// that can be active at once.
	NBuf int

	// MinDirect is the transfer size at or above which reads and writes
	// bypass the pool. Defaults to [DefaultMinDirect]. Values below
	// 2*RecordLen are raised to that minimum: the direct write path needs
	// at least one whole record left over after topping up the current
	// buffer.
	MinDirect int64

	// Floats converts between stored IEEE floats and the host float
	// format. The zero value is the identity and is correct on IEEE
	// hosts.
	Floats FloatCodec
}

// slot is one buffer-pool entry.
type slot struct {
	buf    [RecordLen]byte
	owner  *File // nil when unbound
	record int64 // record number held; meaningful only when owner != nil
	dirty  bool  // buf differs from on-disk content at record*RecordLen
}

// Engine owns the record buffer pool and the LRU age index.
//
// All files opened on an engine share its pool. A single mutex serializes
// every operation on every file; see the package documentation.
type Engine struct {
	mu        sync.Mutex
	slots     []slot
	age       []int // permutation of slot indices, oldest first
	minDirect int64
	floats    FloatCodec
}

// New constructs an Engine. Zero-value fields of opts take their defaults.
func New(opts Options) *Engine {
	nbuf := opts.NBuf
	if nbuf < 1 {
		nbuf = DefaultNBuf
	}

	minDirect := opts.MinDirect
	if minDirect == 0 {
		minDirect = DefaultMinDirect
	}

	if minDirect < 2*RecordLen {
		minDirect = 2 * RecordLen
	}

	e := &Engine{
		slots:     make([]slot, nbuf),
		age:       make([]int, nbuf),
		minDirect: minDirect,
		floats:    opts.Floats,
	}

	for i := range e.age {
		e.age[i] = i
	}

	return e
}

// NBuf returns the number of buffers in the pool.
func (e *Engine) NBuf() int {
	return len(e.slots)
}

// MinDirect returns the direct-IO threshold in bytes.
func (e *Engine) MinDirect() int64 {
	return e.minDirect
}

// NumOpenFiles returns the number of distinct files that currently hold at
// least one buffer in the pool.
func (e *Engine) NumOpenFiles() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.numOpenFiles()
}

func (e *Engine) numOpenFiles() int {
	nfiles := 0

	for i := range e.slots {
		if e.slots[i].owner == nil {
			continue
		}

		unique := true

		for j := range i {
			if e.slots[j].owner == e.slots[i].owner {
				unique = false
				break
			}
		}

		if unique {
			nfiles++
		}
	}

	return nfiles
}

// chooseVictim picks the slot to reuse for a new record: the oldest slot
// that is unbound or not pinned as its owner's current buffer. When every
// slot is pinned the caller's own current buffer is the only legal reuse;
// if the caller has none, the pool is exhausted.
func (e *Engine) chooseVictim(f *File) (int, error) {
	for _, n := range e.age {
		s := &e.slots[n]
		if s.owner == nil || s.owner.curbuf != n {
			return n, nil
		}
	}

	if f.curbuf >= 0 && e.slots[f.curbuf].owner == f {
		return f.curbuf, nil
	}

	return 0, ErrTooManyFiles
}

// promote moves slot n to the youngest position of the age index.
func (e *Engine) promote(n int) {
	for i, m := range e.age {
		if m == n {
			e.promoteAt(i)
			return
		}
	}
}

// promoteAt moves the slot at age position i to the youngest position.
func (e *Engine) promoteAt(i int) {
	n := e.age[i]
	copy(e.age[i:], e.age[i+1:])
	e.age[len(e.age)-1] = n
}
