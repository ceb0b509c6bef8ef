package patch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type recordingFeedback struct {
	NoopFeedback
	progress []int
}

func (f *recordingFeedback) FileListProgress(percent int) bool {
	f.progress = append(f.progress, percent)
	return true
}

func TestReconcileEmptyLocalSingleRemoteFile(t *testing.T) {
	// Spec §8 scenario 1: empty local tree, single remote file.
	remote := FileInfoSeq{{Path: "readme.txt", Size: 11, Checksum: HashBytes([]byte("hello world"))}}
	server := newFakeServer(remote, nil)

	local := BuildTree0(nil)
	feedback := &recordingFeedback{}

	removeSet, updateSet, ok, err := Reconcile(context.Background(), local, server, feedback, ReconcileOptions{})
	require.NoError(t, err)
	require.True(t, ok)
	require.Empty(t, removeSet)
	require.Equal(t, remote, updateSet)
	require.Len(t, feedback.progress, BucketCount)
	require.Equal(t, 100, feedback.progress[len(feedback.progress)-1])
}

func TestReconcileStaleFile(t *testing.T) {
	// Spec §8 scenario 2: local has a/b.bin with one digest, server has it
	// with another.
	local := FileInfoSeq{{Path: "a/b.bin", Size: 4, Checksum: Digest{1}}}
	remote := FileInfoSeq{{Path: "a/b.bin", Size: 4, Checksum: Digest{2}}}
	server := newFakeServer(remote, nil)

	tree := BuildTree0(local)
	removeSet, updateSet, ok, err := Reconcile(context.Background(), tree, server, NoopFeedback{}, ReconcileOptions{})
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, local, removeSet)
	require.Equal(t, remote, updateSet)
}

func TestReconcileFileToRemove(t *testing.T) {
	// Spec §8 scenario 3: local has old.dat, server does not.
	local := FileInfoSeq{{Path: "old.dat", Size: 3, Checksum: Digest{5}}}
	server := newFakeServer(nil, nil)

	tree := BuildTree0(local)
	removeSet, updateSet, ok, err := Reconcile(context.Background(), tree, server, NoopFeedback{}, ReconcileOptions{})
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, local, removeSet)
	require.Empty(t, updateSet)
}

func TestReconcileNoDifference(t *testing.T) {
	seq := FileInfoSeq{{Path: "a.txt", Size: 1, Checksum: Digest{1}}}
	server := newFakeServer(seq, nil)
	tree := BuildTree0(seq)

	removeSet, updateSet, ok, err := Reconcile(context.Background(), tree, server, NoopFeedback{}, ReconcileOptions{})
	require.NoError(t, err)
	require.True(t, ok)
	require.Empty(t, removeSet)
	require.Empty(t, updateSet)
}

func TestReconcileCancellation(t *testing.T) {
	local := FileInfoSeq{{Path: "a.txt", Size: 1, Checksum: Digest{1}}}
	remote := FileInfoSeq{{Path: "a.txt", Size: 1, Checksum: Digest{2}}}
	server := newFakeServer(remote, nil)
	tree := BuildTree0(local)

	feedback := &cancelOnFirstProgress{}
	_, _, ok, err := Reconcile(context.Background(), tree, server, feedback, ReconcileOptions{})
	require.NoError(t, err)
	require.False(t, ok)
}

type cancelOnFirstProgress struct {
	NoopFeedback
	calls int
}

func (f *cancelOnFirstProgress) FileListProgress(int) bool {
	f.calls++
	return false
}

func TestReconcileRejectsWrongBucketChecksumCount(t *testing.T) {
	// Spec §4.4 / §7 taxonomy item 2: a get_bucket_checksums response of
	// any length other than BucketCount is a protocol violation, not a
	// silently-accepted short or long response.
	remote := FileInfoSeq{{Path: "a.txt", Size: 1, Checksum: Digest{1}}}
	server := newFakeServer(remote, nil)
	server.truncateBucketChecksums = BucketCount - 1

	tree := BuildTree0(nil)
	removeSet, updateSet, ok, err := Reconcile(context.Background(), tree, server, NoopFeedback{}, ReconcileOptions{})
	require.Error(t, err)
	require.False(t, ok)
	require.Empty(t, removeSet)
	require.Empty(t, updateSet)

	var protocolErr *ProtocolViolationError
	require.ErrorAs(t, err, &protocolErr)
}

func TestReconcileIgnoresPatterns(t *testing.T) {
	remote := FileInfoSeq{
		{Path: "keep.txt", Size: 1, Checksum: Digest{1}},
		{Path: "build/output.bin", Size: 2, Checksum: Digest{2}},
	}
	server := newFakeServer(remote, nil)

	tree := BuildTree0(nil)
	_, updateSet, ok, err := Reconcile(context.Background(), tree, server, NoopFeedback{}, ReconcileOptions{
		IgnorePatterns: []string{"build/**"},
	})
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []string{"keep.txt"}, pathsOf(updateSet))
}
