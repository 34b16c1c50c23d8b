package output_test

import (
	"bytes"
	"testing"

	"github.com/Arkiv-Network/editions/cmd/editions/pkg/output"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func TestEther(t *testing.T) {
	require.Equal(t, "1.5 ETH (1,500,000,000,000,000,000 wei)", output.Ether(uint256.NewInt(1_500_000_000_000_000_000)))
	require.Equal(t, "0 ETH (0 wei)", output.Ether(nil))
}

func TestTable(t *testing.T) {
	var buf bytes.Buffer
	output.Table(&buf, []string{"id", "sold"}, [][]string{{"1", "3"}, {"2", "0"}})

	require.Contains(t, buf.String(), "ID")
	require.Contains(t, buf.String(), "SOLD")
	require.Contains(t, buf.String(), "3")
}
