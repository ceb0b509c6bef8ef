package filesystem

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/icepatch2/client/internal/logging"
	"github.com/icepatch2/client/internal/must"
)

// atomicWriteTemporaryNamePrefix is the file name prefix used for the
// intermediate temporary file in WriteFileAtomic.
const atomicWriteTemporaryNamePrefix = ".icepatch2-atomic-write-"

// WriteFileAtomic writes data to path by way of a temporary file in the
// same directory, renamed into place, so that readers never observe a
// truncated or partially written file. This is used for manifest
// persistence (spec §4.2).
func WriteFileAtomic(path string, data []byte, permissions os.FileMode, logger *logging.Logger) error {
	directory := filepath.Dir(path)
	temporary, err := os.CreateTemp(directory, atomicWriteTemporaryNamePrefix)
	if err != nil {
		return fmt.Errorf("unable to create temporary file: %w", err)
	}

	if _, err = temporary.Write(data); err != nil {
		must.Close(temporary, logger)
		must.OSRemove(temporary.Name(), logger)
		return fmt.Errorf("unable to write data to temporary file: %w", err)
	}

	if err = temporary.Close(); err != nil {
		must.OSRemove(temporary.Name(), logger)
		return fmt.Errorf("unable to close temporary file: %w", err)
	}

	if err = os.Chmod(temporary.Name(), permissions); err != nil {
		must.OSRemove(temporary.Name(), logger)
		return fmt.Errorf("unable to change file permissions: %w", err)
	}

	if err = os.Rename(temporary.Name(), path); err != nil {
		must.OSRemove(temporary.Name(), logger)
		return fmt.Errorf("unable to rename temporary file into place: %w", err)
	}

	return nil
}
