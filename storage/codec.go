package storage

import (
	"fmt"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// recordWriter writes fields with mus-go serializers. With sizing set it only
// accumulates the encoded size, so one field list drives both passes.
type recordWriter struct {
	bs     []byte
	n      int
	sizing bool
}

func (w *recordWriter) str(v string) {
	if w.sizing {
		w.n += ord.String.Size(v)
		return
	}
	w.n += ord.String.Marshal(v, w.bs[w.n:])
}

func (w *recordWriter) boolean(v bool) {
	if w.sizing {
		w.n += ord.Bool.Size(v)
		return
	}
	w.n += ord.Bool.Marshal(v, w.bs[w.n:])
}

func (w *recordWriter) integer(v int) {
	if w.sizing {
		w.n += varint.Int.Size(v)
		return
	}
	w.n += varint.Int.Marshal(v, w.bs[w.n:])
}

func (w *recordWriter) uint64(v uint64) {
	if w.sizing {
		w.n += varint.Uint64.Size(v)
		return
	}
	w.n += varint.Uint64.Marshal(v, w.bs[w.n:])
}

func (w *recordWriter) int64(v int64) {
	if w.sizing {
		w.n += varint.Int64.Size(v)
		return
	}
	w.n += varint.Int64.Marshal(v, w.bs[w.n:])
}

func (w *recordWriter) time(v time.Time) {
	w.int64(v.UnixMicro())
}

func (w *recordWriter) optionalTime(v *time.Time) {
	w.boolean(v != nil)
	if v != nil {
		w.time(*v)
	}
}

func (w *recordWriter) strings(v []string) {
	w.integer(len(v))
	for _, s := range v {
		w.str(s)
	}
}

func (w *recordWriter) vector(v []float32) {
	w.integer(len(v))
	for _, f := range v {
		if w.sizing {
			w.n += raw.Float32.Size(f)
			continue
		}
		w.n += raw.Float32.Marshal(f, w.bs[w.n:])
	}
}

// encode runs fields twice: once to size the buffer, once to fill it.
func encode(fields func(w *recordWriter)) []byte {
	sizer := &recordWriter{sizing: true}
	fields(sizer)
	w := &recordWriter{bs: make([]byte, sizer.n)}
	fields(w)
	return w.bs
}

// recordReader reads fields in the order recordWriter wrote them.
// The first failure sticks; later reads return zero values.
type recordReader struct {
	bs  []byte
	n   int
	err error
}

func (r *recordReader) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

func (r *recordReader) remaining() int {
	return len(r.bs) - r.n
}

func (r *recordReader) str() string {
	if r.err != nil {
		return ""
	}
	v, n, err := ord.String.Unmarshal(r.bs[r.n:])
	if err != nil {
		r.fail(err)
		return ""
	}
	r.n += n
	return v
}

func (r *recordReader) boolean() bool {
	if r.err != nil {
		return false
	}
	v, n, err := ord.Bool.Unmarshal(r.bs[r.n:])
	if err != nil {
		r.fail(err)
		return false
	}
	r.n += n
	return v
}

func (r *recordReader) integer() int {
	if r.err != nil {
		return 0
	}
	v, n, err := varint.Int.Unmarshal(r.bs[r.n:])
	if err != nil {
		r.fail(err)
		return 0
	}
	r.n += n
	return v
}

func (r *recordReader) uint64() uint64 {
	if r.err != nil {
		return 0
	}
	v, n, err := varint.Uint64.Unmarshal(r.bs[r.n:])
	if err != nil {
		r.fail(err)
		return 0
	}
	r.n += n
	return v
}

func (r *recordReader) int64() int64 {
	if r.err != nil {
		return 0
	}
	v, n, err := varint.Int64.Unmarshal(r.bs[r.n:])
	if err != nil {
		r.fail(err)
		return 0
	}
	r.n += n
	return v
}

func (r *recordReader) time() time.Time {
	micros := r.int64()
	if r.err != nil {
		return time.Time{}
	}
	return time.UnixMicro(micros).UTC()
}

func (r *recordReader) optionalTime() *time.Time {
	if !r.boolean() {
		return nil
	}
	t := r.time()
	if r.err != nil {
		return nil
	}
	return &t
}

// count reads a slice length and checks it against the bytes left, assuming
// each element takes at least minSize bytes.
func (r *recordReader) count(minSize int) int {
	l := r.integer()
	if r.err != nil {
		return 0
	}
	if l < 0 || l*minSize > r.remaining() {
		r.fail(fmt.Errorf("%w: length %d exceeds %d remaining bytes", ErrTruncatedData, l, r.remaining()))
		return 0
	}
	return l
}

func (r *recordReader) strings() []string {
	l := r.count(1)
	if l == 0 {
		return nil
	}
	v := make([]string, l)
	for i := range v {
		v[i] = r.str()
	}
	return v
}

func (r *recordReader) vector() []float32 {
	l := r.count(4)
	if l == 0 {
		return nil
	}
	v := make([]float32, l)
	for i := range v {
		if r.err != nil {
			return nil
		}
		f, n, err := raw.Float32.Unmarshal(r.bs[r.n:])
		if err != nil {
			r.fail(err)
			return nil
		}
		r.n += n
		v[i] = f
	}
	return v
}

// finish reports the first read error, wrapped as a serialization failure.
func (r *recordReader) finish() error {
	if r.err == nil && r.n != len(r.bs) {
		r.err = fmt.Errorf("%d trailing bytes", len(r.bs)-r.n)
	}
	if r.err != nil {
		return fmt.Errorf("%w: %w", ErrSerializationFailed, r.err)
	}
	return nil
}
