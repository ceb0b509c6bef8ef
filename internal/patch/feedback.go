package patch

// Feedback is the caller-supplied progress/cancellation interface (spec §6
// "Feedback interface"). All methods are called synchronously and only
// from the producer thread (spec §5), so implementations need not be
// reentrant.
type Feedback interface {
	// NoFileSummary is invoked when the local manifest cannot be loaded. A
	// true return escalates to a thorough scan; false aborts prepare().
	NoFileSummary(reason error) bool

	// FileListStart, FileListProgress, and FileListEnd report reconciliation
	// progress. FileListProgress receives a percentage in [0, 100].
	// A false return from FileListStart or FileListProgress requests
	// cancellation.
	FileListStart() bool
	FileListProgress(percent int) bool
	FileListEnd() bool

	// PatchStart, PatchProgress, and PatchEnd report per-file download
	// progress. updated and total are both byte counts; updated advances by
	// compressed bytes transferred (SPEC_FULL.md §4.6). A false return from
	// PatchStart or PatchProgress requests cancellation.
	PatchStart(path string, fileSize, updated, total int64) bool
	PatchProgress(pos, fileSize, updated, total int64) bool
	PatchEnd() bool
}

// NoopFeedback implements Feedback by approving every operation and
// reporting nothing, useful as a base for test doubles that only care about
// overriding specific callbacks.
type NoopFeedback struct{}

func (NoopFeedback) NoFileSummary(error) bool                          { return true }
func (NoopFeedback) FileListStart() bool                                { return true }
func (NoopFeedback) FileListProgress(int) bool                          { return true }
func (NoopFeedback) FileListEnd() bool                                  { return true }
func (NoopFeedback) PatchStart(string, int64, int64, int64) bool        { return true }
func (NoopFeedback) PatchProgress(int64, int64, int64, int64) bool      { return true }
func (NoopFeedback) PatchEnd() bool                                     { return true }
