package patch

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// updateLogSuffix is appended to the data directory's own name to produce
// the update log path (spec §6 "Filesystem layout": "<data_dir>.log").
const updateLogSuffix = ".log"

// UpdateLog is the append-only journal of committed directory creations and
// decompressed files for the current update_files phase (spec §3, §4.7,
// §4.8). Each entry is one multi-line YAML document (a manifestEntry)
// preceded by a "---" separator line.
//
// Per spec §9's second open question, this client treats the log as
// diagnostic only: no recovery pass consumes it on startup. That choice is
// recorded in DESIGN.md.
type UpdateLog struct {
	file *os.File
	// RunID is a short, filesystem-safe tag identifying this invocation of
	// update_files, written once as a header comment so that operators can
	// correlate log spans across repeated runs against the same directory.
	RunID string
}

// updateLogPath returns the path to the update log for dataDir.
func updateLogPath(dataDir string) string {
	return dataDir + updateLogSuffix
}

// OpenUpdateLog opens (creating if necessary) the update log for dataDir in
// append mode and writes a run header.
func OpenUpdateLog(dataDir string) (*UpdateLog, error) {
	file, err := os.OpenFile(updateLogPath(dataDir), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, &IOFailureError{Path: updateLogPath(dataDir), Reason: err}
	}

	runID := EncodeRunID(uuid.New())
	if _, err := fmt.Fprintf(file, "# run %s\n", runID); err != nil {
		file.Close()
		return nil, &IOFailureError{Path: updateLogPath(dataDir), Reason: err}
	}

	return &UpdateLog{file: file, RunID: runID}, nil
}

// Append journals the commit of a single FileInfo (spec §4.7 "appends the
// FileInfo line to update_log"). It is called only while the producer/
// consumer mutex is held (spec §5).
func (l *UpdateLog) Append(info FileInfo) error {
	entry := toManifestEntry(info)
	data, err := yaml.Marshal(entry)
	if err != nil {
		return fmt.Errorf("unable to marshal update log entry: %w", err)
	}
	if _, err := l.file.WriteString("---\n"); err != nil {
		return &IOFailureError{Path: l.file.Name(), Reason: err}
	}
	if _, err := l.file.Write(data); err != nil {
		return &IOFailureError{Path: l.file.Name(), Reason: err}
	}
	return nil
}

// Close closes the update log file.
func (l *UpdateLog) Close() error {
	if err := l.file.Close(); err != nil {
		return &IOFailureError{Path: l.file.Name(), Reason: err}
	}
	return nil
}

// RemoveUpdateLog deletes the update log for dataDir. The patcher never
// calls it; it is the explicit cleanup path behind the CLI's --clean-log
// flag.
func RemoveUpdateLog(dataDir string) error {
	path := updateLogPath(dataDir)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return &IOFailureError{Path: path, Reason: err}
	}
	return nil
}
