package patch

import (
	"compress/bzip2"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/icepatch2/client/internal/filesystem"
	"github.com/icepatch2/client/internal/logging"
)

// decompressSink is the shared state between the producer (downloadFiles)
// and the single background decompression worker, guarded by one mutex
// paired with one condition variable (spec §5): decompress_queue,
// decompress_active, and decompress_error, plus every write to the update
// log (spec §3 Patcher state, §5 "Shared state").
//
// The mutex is never held across a network call, a disk write of file
// payload, or a decompression operation (spec §5): enqueue only appends to
// the queue and signals; the worker releases the lock before performing
// the actual decompression and re-acquires it only to pop the next item or
// to journal a completed one.
type decompressSink struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queue  []FileInfo
	active bool
	err    error

	dataDir string
	log     *UpdateLog
	logger  *logging.Logger

	// done is set by the worker goroutine just before it returns, so that
	// shutdown can distinguish "queue drained, still running" from
	// "goroutine has actually exited" using the same condition variable
	// (no second synchronization primitive needed).
	done bool
}

// newDecompressSink constructs a sink bound to dataDir and log. The worker
// is not started until Start is called.
func newDecompressSink(dataDir string, log *UpdateLog, logger *logging.Logger) *decompressSink {
	s := &decompressSink{dataDir: dataDir, log: log, logger: logger}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// enqueue pushes a completed download onto the queue under the lock. If a
// sticky decompress_error is already set, it is surfaced to the caller
// immediately instead of enqueuing further work (spec §4.6 "if
// decompress_error is set, surface it and abort").
func (s *decompressSink) enqueue(info FileInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return s.err
	}

	s.queue = append(s.queue, info)
	s.cond.Signal()
	return nil
}

// journalDirectory appends a directory entry to the update log under the
// sink's lock, so that a producer-thread directory commit can never
// interleave with the worker's own journal writes mid-entry (spec §5: "a
// single mutex paired with a condition variable ... and every write to
// update_log"). Unlike enqueue, a sticky decompress_error does not block
// this call: the caller (downloadFiles) still needs the directory created
// and journalled regardless of whether the worker has since failed.
func (s *decompressSink) journalDirectory(info FileInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.log.Append(info)
}

// start marks the sink active and launches the single consumer goroutine
// (spec §4.8 update_files "starts the worker (setting decompress_active =
// true)").
func (s *decompressSink) start() {
	s.mu.Lock()
	s.active = true
	s.mu.Unlock()

	go s.run()
}

// run is the body of the single background consumer (spec §4.7).
func (s *decompressSink) run() {
	for {
		s.mu.Lock()
		for s.active && len(s.queue) == 0 {
			s.cond.Wait()
		}
		if len(s.queue) == 0 {
			s.done = true
			s.cond.Broadcast()
			s.mu.Unlock()
			return
		}
		info := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()

		if err := s.decompressOne(info); err != nil {
			s.mu.Lock()
			if s.err == nil {
				s.err = err
			}
			s.done = true
			s.cond.Broadcast()
			s.mu.Unlock()
			return
		}

		s.mu.Lock()
		if s.err == nil {
			if err := s.log.Append(info); err != nil {
				s.err = err
				s.done = true
				s.cond.Broadcast()
				s.mu.Unlock()
				return
			}
		}
		s.mu.Unlock()
	}
}

// decompressOne decompresses a single sidecar into place and removes it
// (spec §4.7). It never holds the sink's mutex.
func (s *decompressSink) decompressOne(info FileInfo) error {
	sidecar := sidecarPath(s.dataDir, info.Path)
	target := filesystem.Join(s.dataDir, info.Path)

	if err := decompressStream(sidecar, target, info.Executable); err != nil {
		return &DecompressionFailureError{Path: info.Path, Reason: err}
	}

	if err := os.Remove(sidecar); err != nil && !os.IsNotExist(err) {
		return &IOFailureError{Path: info.Path, Reason: err}
	}

	return nil
}

// shutdown signals the worker to exit once the queue drains and blocks
// until it does, then returns any sticky decompress_error (spec §4.8
// update_files "signals shutdown ... joins the worker, checks
// decompress_error").
func (s *decompressSink) shutdown() error {
	s.mu.Lock()
	s.active = false
	s.cond.Broadcast()
	for !s.done {
		s.cond.Wait()
	}
	err := s.err
	s.mu.Unlock()

	return err
}

// pending reports the number of items still waiting in the queue (an item
// the worker has already popped and is decompressing is not counted), for
// the invariant in spec §8 ("size(decompress_queue) <= |update_set so far|
// - |journalled so far|").
func (s *decompressSink) pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// decompressStream decompresses the bzip2 file at srcPath into destPath,
// applying the executable hint to the destination's mode, and is the concrete backing
// for spec §4.7's decompress_stream primitive (documented as opaque/out of
// scope in spec §1). compress/bzip2 from the standard library is
// decompression-only, which is exactly the capability required here; see
// DESIGN.md for why no pack dependency is used instead.
func decompressStream(srcPath, destPath string, executable bool) error {
	srcInfo, err := os.Stat(srcPath)
	if err != nil {
		return fmt.Errorf("unable to stat sidecar: %w", err)
	}

	if err := filesystem.MkdirAll(parentDirOf(destPath)); err != nil {
		return fmt.Errorf("unable to create parent directory: %w", err)
	}

	mode := os.FileMode(0644)
	if executable {
		mode = 0755
	}

	dest, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("unable to create destination file: %w", err)
	}
	// OpenFile's mode only applies when it creates the file; set it
	// explicitly so an existing destination also receives the hint.
	if err := dest.Chmod(mode); err != nil {
		dest.Close()
		return fmt.Errorf("unable to set destination file mode: %w", err)
	}

	// A zero-byte source is a file whose content was never downloaded
	// (info.Size == 0 means downloadOneFile's chunk loop never runs), not
	// bzip2-compressed data; bzip2.NewReader would fail on it looking for
	// a header that was never written. Spec §8's boundary case ("a size-0
	// sidecar decompresses to an empty file") is satisfied directly.
	if srcInfo.Size() == 0 {
		if err := dest.Close(); err != nil {
			return fmt.Errorf("unable to close destination file: %w", err)
		}
		return nil
	}

	src, err := os.Open(srcPath)
	if err != nil {
		dest.Close()
		return fmt.Errorf("unable to open sidecar: %w", err)
	}
	defer src.Close()

	reader := bzip2.NewReader(src)
	if _, err := io.Copy(dest, reader); err != nil {
		dest.Close()
		return fmt.Errorf("unable to decompress: %w", err)
	}

	if err := dest.Close(); err != nil {
		return fmt.Errorf("unable to close destination file: %w", err)
	}

	return nil
}

// parentDirOf returns the parent directory of an absolute, native-separator
// path.
func parentDirOf(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if os.IsPathSeparator(path[i]) {
			return path[:i]
		}
	}
	return "."
}
