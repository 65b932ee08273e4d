package pkg

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type record struct {
	Serial  int
	Fitness float64
}

func TestSpoolAppendAndRange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.evals")

	spool, err := NewSpool[record](path)
	require.NoError(t, err)

	defer func() { _ = spool.Close() }()

	require.NoError(t, spool.Append(record{Serial: 1, Fitness: 2.5}))
	require.NoError(t, spool.Append(record{Serial: 2, Fitness: 0}))
	require.Equal(t, uint64(2), spool.Len())
	require.Equal(t, path, spool.Path())

	var got []record

	require.NoError(t, spool.Range(func(index uint64, item record) error {
		require.Equal(t, uint64(len(got)), index)
		got = append(got, item)

		return nil
	}))

	require.Equal(t, []record{{Serial: 1, Fitness: 2.5}, {Serial: 2, Fitness: 0}}, got)
}

func TestRangeSpoolReadsFinishedRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.evals")

	spool, err := NewSpool[record](path)
	require.NoError(t, err)
	require.NoError(t, spool.Append(record{Serial: 7}))
	require.NoError(t, spool.Close())

	count := 0

	require.NoError(t, RangeSpool(path, func(_ uint64, item record) error {
		require.Equal(t, 7, item.Serial)
		count++

		return nil
	}))

	require.Equal(t, 1, count)
}

func TestSpoolCloseIsIdempotent(t *testing.T) {
	spool, err := NewSpool[record](filepath.Join(t.TempDir(), "run.evals"))
	require.NoError(t, err)

	require.NoError(t, spool.Close())
	require.NoError(t, spool.Close())
}
