package message

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMinterAssignsMonotonicUniqIDs(t *testing.T) {
	var m Minter

	first := NewWakeup(&m)
	second := NewWakeup(&m)

	require.NotZero(t, first.UniqID())
	require.Greater(t, second.UniqID(), first.UniqID())
}

func TestKindStringCoversEveryVariant(t *testing.T) {
	for k := KindWakeup; k <= KindOrderReplaced; k++ {
		require.NotEqual(t, "Unknown", k.String(), "kind %d has no String() case", int(k))
	}
}

func TestKindStringUnknownForOutOfRangeValue(t *testing.T) {
	require.Equal(t, "Unknown", Kind(9999).String())
}

func TestEveryVariantReportsItsOwnKind(t *testing.T) {
	var m Minter
	require.Equal(t, KindWakeup, NewWakeup(&m).Kind())
	require.Equal(t, KindMarketHoursRequest, NewMarketHoursRequest(&m).Kind())
	require.Equal(t, KindMarketClosed, NewMarketClosed(&m).Kind())
}
