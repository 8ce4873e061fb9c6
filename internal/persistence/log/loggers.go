package log

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/klauspost/compress/zstd"

	"skirmish.ai/internal/sim/world"
)

// JSONLZstdWriter appends JSON lines to zstd-compressed segment files. The
// caller names the segment; a new name closes the old file and opens the
// next one.
type JSONLZstdWriter struct {
	baseDir string
	prefix  string

	mu     sync.Mutex
	curSeg string
	f      *os.File
	enc    *zstd.Encoder
	w      *bufio.Writer
}

func NewJSONLZstdWriter(baseDir, prefix string) *JSONLZstdWriter {
	return &JSONLZstdWriter{
		baseDir: baseDir,
		prefix:  prefix,
	}
}

func (w *JSONLZstdWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closeLocked()
}

func (w *JSONLZstdWriter) Write(segment string, v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if segment != w.curSeg || w.w == nil {
		if err := w.rotateLocked(segment); err != nil {
			return err
		}
	}

	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := w.w.Write(b); err != nil {
		return err
	}
	return w.w.WriteByte('\n')
}

// Flush pushes buffered lines into the compressor and out to the file.
func (w *JSONLZstdWriter) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.w == nil {
		return nil
	}
	if err := w.w.Flush(); err != nil {
		return err
	}
	return w.enc.Flush()
}

func (w *JSONLZstdWriter) rotateLocked(segment string) error {
	if err := w.closeLocked(); err != nil {
		return err
	}
	if err := os.MkdirAll(w.baseDir, 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(w.pathFor(segment), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return err
	}
	w.f = f
	w.enc = enc
	w.w = bufio.NewWriterSize(enc, 128*1024)
	w.curSeg = segment
	return nil
}

func (w *JSONLZstdWriter) closeLocked() error {
	var err1 error
	if w.w != nil {
		err1 = w.w.Flush()
	}
	if w.enc != nil {
		err1 = errors.Join(err1, w.enc.Close())
		w.enc = nil
	}
	if w.f != nil {
		err1 = errors.Join(err1, w.f.Close())
		w.f = nil
	}
	w.w = nil
	return err1
}

func (w *JSONLZstdWriter) pathFor(segment string) string {
	return filepath.Join(w.baseDir, fmt.Sprintf("%s-%s.jsonl.zst", w.prefix, segment))
}

// DefaultSegmentTicks is one minute of play at 20 Hz.
const DefaultSegmentTicks = 1200

// TickLogger writes one JSONL entry per tick, one file per SegmentTicks
// ticks.
type TickLogger struct {
	w            *JSONLZstdWriter
	SegmentTicks uint64
}

func NewTickLogger(matchDir string) *TickLogger {
	return &TickLogger{
		w:            NewJSONLZstdWriter(filepath.Join(matchDir, "ticks"), "ticks"),
		SegmentTicks: DefaultSegmentTicks,
	}
}

func (l *TickLogger) WriteTick(e world.TickLogEntry) error {
	seg := l.SegmentTicks
	if seg == 0 {
		seg = DefaultSegmentTicks
	}
	return l.w.Write(fmt.Sprintf("%012d", e.Tick/seg*seg), e)
}

func (l *TickLogger) Flush() error { return l.w.Flush() }
func (l *TickLogger) Close() error { return l.w.Close() }

// ReadTicks decodes every entry of one segment file in order.
func ReadTicks(path string) ([]world.TickLogEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	var out []world.TickLogEntry
	jd := json.NewDecoder(bufio.NewReader(dec))
	for {
		var e world.TickLogEntry
		if err := jd.Decode(&e); err != nil {
			if errors.Is(err, io.EOF) {
				return out, nil
			}
			return out, err
		}
		out = append(out, e)
	}
}

// Segments lists the tick segment files under matchDir, oldest first.
func Segments(matchDir string) ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(matchDir, "ticks", "ticks-*.jsonl.zst"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}

// MultiTickLogger fans one entry out to several sinks and keeps going past
// a failing one.
type MultiTickLogger []world.TickLogger

func (m MultiTickLogger) WriteTick(e world.TickLogEntry) error {
	var errs []error
	for _, l := range m {
		if l == nil {
			continue
		}
		if err := l.WriteTick(e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
