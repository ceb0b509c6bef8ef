package patch

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
)

// CLIFeedback is a Feedback implementation that prints human-readable
// progress to an io.Writer, used by cmd/icepatch2client. It approves every
// operation unconditionally except where the embedded Cancel function (if
// set) returns true.
type CLIFeedback struct {
	Output io.Writer
	// Cancel, if non-nil, is polled at every cancellation point (spec §6);
	// a true return requests cancellation. The default (nil) never
	// cancels.
	Cancel func() bool
}

func (f *CLIFeedback) cancelled() bool {
	return f.Cancel != nil && f.Cancel()
}

// NoFileSummary implements Feedback.
func (f *CLIFeedback) NoFileSummary(reason error) bool {
	fmt.Fprintf(f.Output, "no usable local file summary (%v); performing a thorough scan\n", reason)
	return true
}

// FileListStart implements Feedback.
func (f *CLIFeedback) FileListStart() bool {
	fmt.Fprintln(f.Output, "comparing local and remote file trees")
	return !f.cancelled()
}

// FileListProgress implements Feedback.
func (f *CLIFeedback) FileListProgress(percent int) bool {
	fmt.Fprintf(f.Output, "\rcomparing: %3d%%", percent)
	return !f.cancelled()
}

// FileListEnd implements Feedback.
func (f *CLIFeedback) FileListEnd() bool {
	fmt.Fprintln(f.Output)
	return !f.cancelled()
}

// PatchStart implements Feedback.
func (f *CLIFeedback) PatchStart(path string, fileSize, updated, total int64) bool {
	fmt.Fprintf(f.Output, "patching %s (%s)\n", path, humanize.Bytes(uint64(fileSize)))
	return !f.cancelled()
}

// PatchProgress implements Feedback. Per SPEC_FULL.md §4.6, updated counts
// compressed bytes against an uncompressed total, so the displayed
// percentage is clamped at 100 for readability without altering the
// underlying counters.
func (f *CLIFeedback) PatchProgress(pos, fileSize, updated, total int64) bool {
	percent := 100
	if total > 0 {
		if p := int(updated * 100 / total); p < 100 {
			percent = p
		}
	}
	fmt.Fprintf(f.Output, "\r  %s / %s overall (%d%%)", humanize.Bytes(uint64(updated)), humanize.Bytes(uint64(total)), percent)
	return !f.cancelled()
}

// PatchEnd implements Feedback.
func (f *CLIFeedback) PatchEnd() bool {
	fmt.Fprintln(f.Output)
	return !f.cancelled()
}
