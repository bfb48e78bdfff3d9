package fixstream

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"
)

// Trace is a recorded fix sequence, stored as zstd-compressed msgpack
// (conventionally *.msgpack.zst).
type Trace struct {
	Recorded time.Time     `msgpack:"recorded"`
	Source   string        `msgpack:"source,omitempty"`
	Fixes    []PositionFix `msgpack:"fixes"`
}

// WriteTrace encodes t to w.
func WriteTrace(w io.Writer, t Trace) error {
	zw, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("failed to create trace encoder: %w", err)
	}
	if err := msgpack.NewEncoder(zw).Encode(&t); err != nil {
		_ = zw.Close()
		return fmt.Errorf("failed to encode trace: %w", err)
	}
	return zw.Close()
}

// ReadTrace decodes a trace written by WriteTrace.
func ReadTrace(r io.Reader) (Trace, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return Trace{}, fmt.Errorf("failed to create trace decoder: %w", err)
	}
	defer zr.Close()

	var t Trace
	if err := msgpack.NewDecoder(zr).Decode(&t); err != nil {
		return Trace{}, fmt.Errorf("failed to decode trace: %w", err)
	}
	return t, nil
}

// SaveTrace writes t to path.
func SaveTrace(path string, t Trace) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteTrace(f, t); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// LoadTrace reads a trace file.
func LoadTrace(path string) (Trace, error) {
	f, err := os.Open(path)
	if err != nil {
		return Trace{}, err
	}
	defer func() { _ = f.Close() }()
	return ReadTrace(f)
}

// Recorder wraps a Source and keeps every fix delivered to its
// subscribers.
type Recorder struct {
	src  Source
	name string

	mu    sync.Mutex
	start time.Time
	fixes []PositionFix
}

// NewRecorder records fixes flowing out of src. name is stored as the
// trace source.
func NewRecorder(src Source, name string) *Recorder {
	return &Recorder{src: src, name: name}
}

func (r *Recorder) Subscribe(profile Profile, h Handler) (Subscription, error) {
	inner := h.OnFix
	h.OnFix = func(f PositionFix) {
		r.mu.Lock()
		if r.start.IsZero() {
			r.start = time.Now()
		}
		r.fixes = append(r.fixes, f)
		r.mu.Unlock()
		if inner != nil {
			inner(f)
		}
	}
	return r.src.Subscribe(profile, h)
}

// Trace returns a copy of what was recorded so far.
func (r *Recorder) Trace() Trace {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Trace{
		Recorded: r.start,
		Source:   r.name,
		Fixes:    append([]PositionFix(nil), r.fixes...),
	}
}
