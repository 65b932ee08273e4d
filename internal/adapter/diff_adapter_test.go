package adapter

import (
	"context"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func requireDiff(t *testing.T) {
	t.Helper()

	if _, err := exec.LookPath("diff"); err != nil {
		t.Skip("diff not installed")
	}
}

func TestDiffSizeIdenticalFilesIsZero(t *testing.T) {
	requireDiff(t)

	workdir := NewLocalWorkdirAdapter()
	dir := t.TempDir()

	a := filepath.Join(dir, "a.c")
	b := filepath.Join(dir, "b.c")

	require.NoError(t, workdir.WriteFile(a, []byte("int x;\n")))
	require.NoError(t, workdir.WriteFile(b, []byte("int x;\n")))

	size, err := NewLocalDiffAdapter().DiffSize(context.Background(), a, b)
	require.NoError(t, err)
	require.Equal(t, 0, size)
}

func TestDiffSizeGrowsWithChanges(t *testing.T) {
	requireDiff(t)

	workdir := NewLocalWorkdirAdapter()
	dir := t.TempDir()

	baseline := filepath.Join(dir, "baseline.c")
	small := filepath.Join(dir, "small.c")
	large := filepath.Join(dir, "large.c")

	require.NoError(t, workdir.WriteFile(baseline, []byte("a\nb\nc\nd\n")))
	require.NoError(t, workdir.WriteFile(small, []byte("a\nb\nc\nX\n")))
	require.NoError(t, workdir.WriteFile(large, []byte("X\nY\nZ\nW\n")))

	smallSize, err := NewLocalDiffAdapter().DiffSize(context.Background(), small, baseline)
	require.NoError(t, err)
	require.Greater(t, smallSize, 0)

	largeSize, err := NewLocalDiffAdapter().DiffSize(context.Background(), large, baseline)
	require.NoError(t, err)
	require.Greater(t, largeSize, smallSize)
}
