package patch

import (
	"context"
	"sort"

	"github.com/icepatch2/client/internal/filesystem"
	"github.com/icepatch2/client/internal/logging"
)

// Configuration holds the orchestrator's immutable settings (spec §3
// "Patcher state", §6).
type Configuration struct {
	// Thorough forces a full rescan even if a local manifest exists.
	Thorough bool
	// DryRun disables all filesystem mutation and worker activity;
	// reconciliation still runs.
	DryRun bool
	// ChunkSize is the max bytes per compressed chunk request, clamped to
	// at least 1 by New.
	ChunkSize int64
	// IgnorePatterns excludes matching paths from scanning and
	// reconciliation (SPEC_FULL.md §4.X).
	IgnorePatterns []string
}

// Patcher is the orchestrator: it holds configuration, owns the components
// described in spec §2, and drives prepare() and patch() (spec §3, §4.8).
//
// A Patcher is constructed, runs Prepare once, then Patch once, then should
// be discarded (spec §3 "Lifecycle"). It is not safe for concurrent use by
// multiple goroutines calling Prepare/Patch (spec §1 Non-goals "concurrent
// patching by multiple clients into the same directory" extends to a
// single process too).
type Patcher struct {
	dataDir string
	config  Configuration
	server  FileServer
	feedback Feedback
	logger  *logging.Logger

	localFiles   FileInfoSeq
	removeFiles  FileInfoSeq
	updateFiles  FileInfoSeq

	// decompressActive mirrors spec §3's destructor invariant: it must be
	// false whenever no update_files call is in flight. It is only ever
	// true during the body of Patch's update phase.
	decompressActive bool
}

// New constructs a Patcher rooted at dataDir (resolved against the current
// working directory, spec §9 "Globals"), talking to server, reporting
// through feedback. It returns a ConfigurationError if dataDir cannot be
// resolved (spec §7 taxonomy item 1).
func New(dataDir string, config Configuration, server FileServer, feedback Feedback, logger *logging.Logger) (*Patcher, error) {
	resolved, err := filesystem.ResolveDataDirectory(dataDir)
	if err != nil {
		return nil, &ConfigurationError{Reason: err.Error()}
	}

	if config.ChunkSize < 1 {
		config.ChunkSize = 1
	}

	return &Patcher{
		dataDir:  resolved,
		config:   config,
		server:   server,
		feedback: feedback,
		logger:   logger,
	}, nil
}

// DataDirectory returns the resolved, absolute data directory this Patcher
// operates on, for callers that need to address sibling paths (e.g. the
// update log) after Patch returns.
func (p *Patcher) DataDirectory() string {
	return p.dataDir
}

// Close asserts the destructor invariant from spec §3: decompressActive
// must be false. Violating it is a programming error, so Close panics
// rather than returning an error, matching the C++ original's assert.
func (p *Patcher) Close() {
	if p.decompressActive {
		panic("patch: Patcher closed while decompression worker still active")
	}
}

// Prepare implements spec §4.8 prepare(). It returns ok=false if feedback
// requested cancellation, and a non-nil error for any hard failure other
// than a recoverable ManifestUnavailableError (which is resolved internally
// via feedback.NoFileSummary).
func (p *Patcher) Prepare(ctx context.Context) (ok bool, err error) {
	p.localFiles = nil
	p.removeFiles = nil
	p.updateFiles = nil

	thorough := p.config.Thorough

	if !thorough {
		seq, loadErr := LoadManifest(p.dataDir)
		if loadErr != nil {
			if !p.feedback.NoFileSummary(loadErr) {
				return false, nil
			}
			thorough = true
		} else {
			p.localFiles = seq
		}
	}

	if thorough {
		seq, scanErr := ScanTree(p.dataDir, ScanTreeOptions{
			IgnorePatterns: p.config.IgnorePatterns,
			Warn: func(format string, args ...interface{}) {
				p.logger.Warnf(format, args...)
			},
		})
		if scanErr != nil {
			return false, scanErr
		}
		p.localFiles = seq
		if !p.config.DryRun {
			if err := SaveManifest(p.dataDir, p.localFiles, p.logger); err != nil {
				return false, err
			}
		}
	}

	tree := BuildTree0(p.localFiles)

	rootChecksum, err := p.server.GetRootChecksum(ctx)
	if err != nil {
		return false, &ServerError{Reason: err}
	}
	if bytesEqual(tree.Checksum, rootChecksum) {
		return true, nil
	}

	if !p.feedback.FileListStart() {
		return false, nil
	}

	removeSet, updateSet, ok, err := Reconcile(ctx, tree, p.server, p.feedback, ReconcileOptions{
		IgnorePatterns: p.config.IgnorePatterns,
	})
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}

	if !p.feedback.FileListEnd() {
		return false, nil
	}

	p.removeFiles = removeSet
	p.updateFiles = updateSet

	return true, nil
}

// Patch implements spec §4.8 patch(): removes first, then updates.
func (p *Patcher) Patch(ctx context.Context) (ok bool, err error) {
	if len(p.removeFiles) > 0 {
		removed, err := p.removeFilesPhase()
		if err != nil {
			return false, err
		}
		p.localFiles = subtract(p.localFiles, removed)
		p.removeFiles = subtract(p.removeFiles, removed)
		if !p.config.DryRun {
			if err := SaveManifest(p.dataDir, p.localFiles, p.logger); err != nil {
				return false, err
			}
		}
	}

	if len(p.updateFiles) > 0 {
		updated, ok, err := p.updateFilesPhase(ctx)
		if err != nil {
			return false, err
		}
		p.localFiles = mergeSorted(p.localFiles, updated)
		p.updateFiles = subtract(p.updateFiles, updated)
		if !p.config.DryRun {
			if err := SaveManifest(p.dataDir, p.localFiles, p.logger); err != nil {
				return false, err
			}
		}
		if !ok {
			return false, nil
		}
	}

	return true, nil
}

// removeFilesPhase walks removeFiles in sorted order and deletes each path
// recursively, skipping descendants of an already-deleted directory in one
// pass (spec §4.8 "remove_files walks remove_set ... skipped in one pass
// using a path + '/' prefix test").
func (p *Patcher) removeFilesPhase() (FileInfoSeq, error) {
	paths := make([]string, len(p.removeFiles))
	for i, info := range p.removeFiles {
		paths[i] = info.Path
	}
	collapsed := filesystem.CollapseDescendants(paths)

	if !p.config.DryRun {
		for _, path := range collapsed {
			if err := filesystem.RemoveAll(filesystem.Join(p.dataDir, path)); err != nil {
				return nil, &IOFailureError{Path: path, Reason: err}
			}
		}
	}

	// Every entry in removeFiles is gone once its topmost ancestor (or
	// itself, if it has none within the set) has been removed
	// recursively, so the full set is reported as removed.
	return p.removeFiles, nil
}

// updateFilesPhase implements spec §4.8's update_files: opens the update
// log, starts the worker, runs the download pipeline, then unconditionally
// tears down (the hard invariant from spec §4.8's last paragraph) before
// returning.
func (p *Patcher) updateFilesPhase(ctx context.Context) (updated FileInfoSeq, ok bool, err error) {
	if p.config.DryRun {
		// Dry runs never open the log or start the worker (spec §8
		// scenario 5), but still exercise per-file feedback and report the
		// correct sets.
		completed, ok, err := downloadFiles(ctx, p.dataDir, p.updateFiles, p.server, p.feedback, true, p.config.ChunkSize, nil)
		return completed, ok, err
	}

	log, err := OpenUpdateLog(p.dataDir)
	if err != nil {
		return nil, false, err
	}

	sink := newDecompressSink(p.dataDir, log, p.logger)
	sink.start()
	p.decompressActive = true

	completedDirectories, downloadOK, downloadErr := downloadFiles(
		ctx, p.dataDir, p.updateFiles, p.server, p.feedback, false, p.config.ChunkSize, sink,
	)

	// Teardown always runs, on every exit path, matching spec §4.8's hard
	// invariant ("On any thrown error the worker is still signalled and
	// joined before the error propagates").
	shutdownErr := sink.shutdown()
	p.decompressActive = false

	if closeErr := log.Close(); closeErr != nil && downloadErr == nil && shutdownErr == nil {
		downloadErr = closeErr
	}

	if downloadErr != nil {
		return nil, false, downloadErr
	}
	if shutdownErr != nil {
		return nil, false, shutdownErr
	}
	if !downloadOK {
		return completedDirectories, false, nil
	}

	// The log is left on disk as a diagnostic record of this run (spec §9
	// second open question: treated as diagnostic-only, not consumed by any
	// recovery pass), so it is not removed here; see RemoveUpdateLog for
	// the separate, caller-invoked cleanup path.
	regularFiles := make(FileInfoSeq, 0, len(p.updateFiles))
	for _, info := range p.updateFiles {
		if !info.IsDirectory() {
			regularFiles = append(regularFiles, info)
		}
	}

	updated = append(completedDirectories, regularFiles...)
	updated = updated.Normalize()

	return updated, true, nil
}

// subtract returns the elements of seq whose paths are not present in
// remove, preserving seq's order.
func subtract(seq, remove FileInfoSeq) FileInfoSeq {
	if len(remove) == 0 {
		return seq
	}
	removed := make(map[string]bool, len(remove))
	for _, info := range remove {
		removed[info.Path] = true
	}
	var result FileInfoSeq
	for _, info := range seq {
		if !removed[info.Path] {
			result = append(result, info)
		}
	}
	return result
}

// mergeSorted merges addition into base, replacing any existing entry with
// the same path, and returns a sorted result.
func mergeSorted(base, addition FileInfoSeq) FileInfoSeq {
	byPath := make(map[string]FileInfo, len(base)+len(addition))
	for _, info := range base {
		byPath[info.Path] = info
	}
	for _, info := range addition {
		byPath[info.Path] = info
	}
	result := make(FileInfoSeq, 0, len(byPath))
	for _, info := range byPath {
		result = append(result, info)
	}
	sort.Sort(result)
	return result
}
