// Package must provides small helpers for operations whose errors should be
// logged as warnings rather than propagated, typically because they occur
// during best-effort cleanup on an already-failing path (closing a file
// after a write error, removing a stale temporary file, and so on).
package must

import (
	"io"
	"os"

	"github.com/icepatch2/client/internal/logging"
)

// Close closes c, logging any error as a warning.
func Close(c io.Closer, logger *logging.Logger) {
	if err := c.Close(); err != nil {
		logger.Warnf("unable to close: %v", err)
	}
}

// OSRemove removes the file at path, logging any error as a warning.
func OSRemove(path string, logger *logging.Logger) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logger.Warnf("unable to remove %q: %v", path, err)
	}
}
