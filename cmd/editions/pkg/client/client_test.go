package client_test

import (
	"testing"

	"github.com/Arkiv-Network/editions/cmd/editions/pkg/client"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	for in, want := range map[string]*uint256.Int{
		"1":        uint256.NewInt(1),
		"1000wei":  uint256.NewInt(1000),
		"2gwei":    uint256.NewInt(2_000_000_000),
		"0.5eth":   uint256.NewInt(500_000_000_000_000_000),
		" 1.5ETH ": uint256.NewInt(1_500_000_000_000_000_000),
	} {
		got, err := client.ParseAmount(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}

	for _, in := range []string{"", "abc", "-1", "0.5", "1e-30eth"} {
		_, err := client.ParseAmount(in)
		require.Error(t, err, in)
	}
}

func TestParseID(t *testing.T) {
	id, err := client.ParseID("42")
	require.NoError(t, err)
	require.Equal(t, uint256.NewInt(42), id)

	id, err = client.ParseID("0x2a")
	require.NoError(t, err)
	require.Equal(t, uint256.NewInt(42), id)

	_, err = client.ParseID("forty-two")
	require.Error(t, err)
}
