package patch

import (
	"context"
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
)

// ReconcileOptions configures Reconcile.
type ReconcileOptions struct {
	// IgnorePatterns excludes server-advertised paths matching any pattern
	// from the resulting update set (SPEC_FULL.md §4.X).
	IgnorePatterns []string
}

// Reconcile compares the local tree to the server's tree using the bucketed
// digests and produces (remove_set, update_set), each sorted by path and
// disjoint (spec §4.4, §8). It returns ok=false without error if feedback
// requested cancellation.
func Reconcile(ctx context.Context, local FileTree0, server FileServer, feedback Feedback, options ReconcileOptions) (removeSet, updateSet FileInfoSeq, ok bool, err error) {
	serverChecksums, err := server.GetBucketChecksums(ctx)
	if err != nil {
		return nil, nil, false, &ServerError{Reason: err}
	}
	if len(serverChecksums) != BucketCount {
		return nil, nil, false, &ProtocolViolationError{
			Reason: fmt.Sprintf("get_bucket_checksums returned %d entries, expected %d", len(serverChecksums), BucketCount),
		}
	}

	ignored := func(path string) bool {
		for _, pattern := range options.IgnorePatterns {
			if match, _ := doublestar.Match(pattern, path); match {
				return true
			}
		}
		return false
	}

	for bucket := 0; bucket < BucketCount; bucket++ {
		if local.Nodes[bucket].Checksum != serverChecksums[bucket] {
			remoteFiles, err := server.GetBucketFiles(ctx, byte(bucket))
			if err != nil {
				return nil, nil, false, &ServerError{Reason: err}
			}
			remoteFiles = remoteFiles.Normalize()

			var filteredRemote FileInfoSeq
			for _, info := range remoteFiles {
				if !ignored(info.Path) {
					filteredRemote = append(filteredRemote, info)
				}
			}

			localFiles := local.Nodes[bucket].Files

			removeSet = append(removeSet, localFiles.Difference(filteredRemote)...)
			updateSet = append(updateSet, filteredRemote.Difference(localFiles)...)
		}

		if !feedback.FileListProgress((bucket + 1) * 100 / BucketCount) {
			return nil, nil, false, nil
		}
	}

	removeSet = removeSet.Normalize()
	updateSet = updateSet.Normalize()

	return removeSet, updateSet, true, nil
}
