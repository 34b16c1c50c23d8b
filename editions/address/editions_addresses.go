package address

import "github.com/ethereum/go-ethereum/common"

var (
	// EditionsProcessorAddress holds the ledger state slots and the escrowed sale proceeds.
	EditionsProcessorAddress = common.HexToAddress("0x00000000000000000000000065646974696f6e73")
)
