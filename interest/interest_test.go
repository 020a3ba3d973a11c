package interest

import (
	"testing"

	"github.com/duskwave/replicore/transport"
	"github.com/stretchr/testify/require"
)

func TestStaticObservesEveryConnectionTheSame(t *testing.T) {
	mgr := NewStatic([]uint64{1, 2, 3})

	var gotA, gotB []uint64
	for id := range mgr.Observed(transport.ConnID(1)) {
		gotA = append(gotA, id)
	}
	for id := range mgr.Observed(transport.ConnID(2)) {
		gotB = append(gotB, id)
	}

	require.Equal(t, []uint64{1, 2, 3}, gotA)
	require.Equal(t, gotA, gotB)
}

func TestStaticObservedStopsEarly(t *testing.T) {
	mgr := NewStatic([]uint64{1, 2, 3})

	var got []uint64
	for id := range mgr.Observed(transport.ConnID(1)) {
		got = append(got, id)
		if len(got) == 2 {
			break
		}
	}

	require.Equal(t, []uint64{1, 2}, got)
}
