package editionstore

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Edition is a fixed-supply sale of copies of one media item.
type Edition struct {
	ID           *uint256.Int   `json:"id"`
	Supply       *uint256.Int   `json:"supply"`
	Sold         *uint256.Int   `json:"sold"`
	Price        *uint256.Int   `json:"price"`
	FundsAddress common.Address `json:"fundsAddress"`
	MediaID      *uint256.Int   `json:"mediaId"`
	Withdrawn    *uint256.Int   `json:"withdrawn"`
	Escrowed     *uint256.Int   `json:"escrowed"`
	Creator      common.Address `json:"creator"`
}

func (e *Edition) SoldOut() bool {
	return !e.Sold.Lt(e.Supply)
}

func (e *Edition) Remaining() *uint256.Int {
	return new(uint256.Int).Sub(e.Supply, e.Sold)
}

// Revenue is what the creator is entitled to in total: sold * price.
// Creation guarantees supply * price fits in 256 bits.
func (e *Edition) Revenue() *uint256.Int {
	return new(uint256.Int).Mul(e.Sold, e.Price)
}

// Claimable is the revenue not yet withdrawn.
func (e *Edition) Claimable() *uint256.Int {
	return new(uint256.Int).Sub(e.Revenue(), e.Withdrawn)
}

// EscrowBalance is what the ledger still holds for this edition,
// overpayment included.
func (e *Edition) EscrowBalance() *uint256.Int {
	return new(uint256.Int).Sub(e.Escrowed, e.Withdrawn)
}

// Stranded is the overpayment that no operation can release.
func (e *Edition) Stranded() *uint256.Int {
	return new(uint256.Int).Sub(e.Escrowed, e.Revenue())
}

func (e *Edition) Copy() *Edition {
	cp := *e
	cp.ID = new(uint256.Int).Set(e.ID)
	cp.Supply = new(uint256.Int).Set(e.Supply)
	cp.Sold = new(uint256.Int).Set(e.Sold)
	cp.Price = new(uint256.Int).Set(e.Price)
	cp.MediaID = new(uint256.Int).Set(e.MediaID)
	cp.Withdrawn = new(uint256.Int).Set(e.Withdrawn)
	cp.Escrowed = new(uint256.Int).Set(e.Escrowed)
	return &cp
}
