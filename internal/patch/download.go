package patch

import (
	"context"
	"os"

	"github.com/icepatch2/client/internal/filesystem"
)

// sidecarSuffix is the extension used for transient compressed downloads
// (spec §6 "Filesystem layout": "<data_dir>/<path>.bz2").
const sidecarSuffix = ".bz2"

// sidecarPath returns the sidecar path for a manifest-relative path.
func sidecarPath(dataDir, relative string) string {
	return filesystem.Join(dataDir, relative) + sidecarSuffix
}

// downloadState carries the shared state a download pass needs beyond what
// fits comfortably as parameters: the running "updated" counter and the
// fixed "total" denominator used in feedback calls (spec §4.6).
type downloadState struct {
	updated int64
	total   int64
}

// totalBytes sums the positive sizes in updateSet, used as the "total"
// feedback denominator (spec §4.6).
func totalBytes(updateSet FileInfoSeq) int64 {
	var total int64
	for _, info := range updateSet {
		if info.Size > 0 {
			total += info.Size
		}
	}
	return total
}

// downloadFiles streams each entry in updateSet from server, writing
// directories directly and regular files into .bz2 sidecars that are
// handed off to the decompression worker via sink (spec §4.6). It returns
// ok=false without error if feedback requested cancellation, and returns
// completedDirectories (the directory entries it has processed, in order);
// regular files handed to the worker are not included, so the caller
// derives those from updateSet itself once the worker has drained them.
//
// chunkSize is clamped to at least 1 (spec §8 "chunk_size = 0 is clamped to
// 1"); callers are expected to have already clamped it at configuration
// time, but downloadFiles re-clamps defensively since it is the last place
// a zero value could cause an infinite request loop.
func downloadFiles(
	ctx context.Context,
	dataDir string,
	updateSet FileInfoSeq,
	server FileServer,
	feedback Feedback,
	dryRun bool,
	chunkSize int64,
	sink *decompressSink,
) (completedDirectories FileInfoSeq, ok bool, err error) {
	if chunkSize < 1 {
		chunkSize = 1
	}

	state := &downloadState{total: totalBytes(updateSet)}

	for _, info := range updateSet {
		if info.IsDirectory() {
			if !dryRun {
				if err := filesystem.MkdirAll(filesystem.Join(dataDir, info.Path)); err != nil {
					return completedDirectories, false, &IOFailureError{Path: info.Path, Reason: err}
				}
				// Journaled through sink, not log.Append directly: the
				// worker goroutine also appends to this same log, and only
				// the sink's mutex serializes the two (spec §5).
				if err := sink.journalDirectory(info); err != nil {
					return completedDirectories, false, err
				}
			}
			completedDirectories = append(completedDirectories, info)
			continue
		}

		if !feedback.PatchStart(info.Path, info.Size, state.updated, state.total) {
			return completedDirectories, false, nil
		}

		ok, err := downloadOneFile(ctx, dataDir, info, server, feedback, dryRun, chunkSize, state, sink)
		if err != nil {
			return completedDirectories, false, err
		}
		if !ok {
			return completedDirectories, false, nil
		}

		if !feedback.PatchEnd() {
			return completedDirectories, false, nil
		}
	}

	return completedDirectories, true, nil
}

// downloadOneFile performs the chunked download of a single regular file
// (spec §4.6).
func downloadOneFile(
	ctx context.Context,
	dataDir string,
	info FileInfo,
	server FileServer,
	feedback Feedback,
	dryRun bool,
	chunkSize int64,
	state *downloadState,
	sink *decompressSink,
) (bool, error) {
	sidecar := sidecarPath(dataDir, info.Path)

	if dryRun {
		// Dry runs still exercise the feedback contract and progress math
		// but perform no filesystem mutation and never touch the worker
		// (spec §8 scenario 5).
		state.updated += info.Size
		return true, nil
	}

	if err := filesystem.MkdirAll(filesystem.Join(dataDir, parentOf(info.Path))); err != nil {
		return false, &IOFailureError{Path: info.Path, Reason: err}
	}
	if err := os.Remove(sidecar); err != nil && !os.IsNotExist(err) {
		return false, &IOFailureError{Path: info.Path, Reason: err}
	}

	file, err := os.OpenFile(sidecar, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return false, &IOFailureError{Path: info.Path, Reason: err}
	}

	var pos int64
	for pos < info.Size {
		chunk, err := server.GetFileCompressed(ctx, info.Path, pos, chunkSize)
		if err != nil {
			file.Close()
			return false, &ServerError{Path: info.Path, Reason: err}
		}
		if len(chunk) == 0 {
			file.Close()
			return false, &SizeMismatchError{Path: info.Path, ExpectedSize: info.Size, ReceivedSize: pos}
		}

		if _, err := file.Write(chunk); err != nil {
			file.Close()
			return false, &IOFailureError{Path: info.Path, Reason: err}
		}
		pos += int64(len(chunk))
		state.updated += int64(len(chunk))

		if !feedback.PatchProgress(pos, info.Size, state.updated, state.total) {
			file.Close()
			return false, nil
		}
	}

	if err := file.Close(); err != nil {
		return false, &IOFailureError{Path: info.Path, Reason: err}
	}

	if err := sink.enqueue(info); err != nil {
		return false, err
	}

	return true, nil
}

// parentOf returns the parent directory of a manifest-relative path, or ""
// for a top-level entry.
func parentOf(relative string) string {
	for i := len(relative) - 1; i >= 0; i-- {
		if relative[i] == '/' {
			return relative[:i]
		}
	}
	return ""
}
