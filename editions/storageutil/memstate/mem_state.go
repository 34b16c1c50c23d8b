// Package memstate is an in-memory, journaled implementation of
// storageutil.StateDB. It backs the ledger daemon and the tests.
//
// State is not safe for concurrent mutation; callers serialise writers.
package memstate

import (
	"fmt"
	"maps"
	"slices"

	"github.com/Arkiv-Network/editions/editions/storageutil"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/tracing"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/holiman/uint256"
)

var _ storageutil.StateDB = (*State)(nil)

type undo func(*State)

type State struct {
	storage  map[common.Address]map[common.Hash]common.Hash
	balances map[common.Address]*uint256.Int
	logs     []*types.Log

	journal   []undo
	revisions []int

	dirtySlots    map[common.Address]map[common.Hash]struct{}
	dirtyBalances map[common.Address]struct{}
}

func New() *State {
	return &State{
		storage:       make(map[common.Address]map[common.Hash]common.Hash),
		balances:      make(map[common.Address]*uint256.Int),
		dirtySlots:    make(map[common.Address]map[common.Hash]struct{}),
		dirtyBalances: make(map[common.Address]struct{}),
	}
}

func (s *State) GetState(addr common.Address, key common.Hash) common.Hash {
	return s.storage[addr][key]
}

func (s *State) SetState(addr common.Address, key common.Hash, value common.Hash) common.Hash {
	prev := s.GetState(addr, key)
	if prev == value {
		return prev
	}

	s.journal = append(s.journal, func(s *State) { s.write(addr, key, prev) })
	s.write(addr, key, value)
	s.markSlot(addr, key)

	return prev
}

// write stores value without journaling. Zero values delete the slot.
func (s *State) write(addr common.Address, key common.Hash, value common.Hash) {
	if value == (common.Hash{}) {
		if slots, ok := s.storage[addr]; ok {
			delete(slots, key)
			if len(slots) == 0 {
				delete(s.storage, addr)
			}
		}
		return
	}

	if s.storage[addr] == nil {
		s.storage[addr] = make(map[common.Hash]common.Hash)
	}
	s.storage[addr][key] = value
}

func (s *State) markSlot(addr common.Address, key common.Hash) {
	if s.dirtySlots[addr] == nil {
		s.dirtySlots[addr] = make(map[common.Hash]struct{})
	}
	s.dirtySlots[addr][key] = struct{}{}
}

func (s *State) GetBalance(addr common.Address) *uint256.Int {
	if b, ok := s.balances[addr]; ok {
		return new(uint256.Int).Set(b)
	}
	return new(uint256.Int)
}

func (s *State) setBalance(addr common.Address, amount *uint256.Int) {
	if amount.IsZero() {
		delete(s.balances, addr)
		return
	}
	s.balances[addr] = amount
}

func (s *State) AddBalance(addr common.Address, amount *uint256.Int, _ tracing.BalanceChangeReason) uint256.Int {
	prev := s.GetBalance(addr)
	if amount.IsZero() {
		return *prev
	}

	next, overflow := new(uint256.Int).AddOverflow(prev, amount)
	if overflow {
		panic(fmt.Sprintf("memstate: balance overflow for %s", addr.Hex()))
	}

	s.journal = append(s.journal, func(s *State) { s.setBalance(addr, prev) })
	s.setBalance(addr, next)
	s.dirtyBalances[addr] = struct{}{}

	return *prev
}

func (s *State) SubBalance(addr common.Address, amount *uint256.Int, _ tracing.BalanceChangeReason) uint256.Int {
	prev := s.GetBalance(addr)
	if amount.IsZero() {
		return *prev
	}

	next, underflow := new(uint256.Int).SubOverflow(prev, amount)
	if underflow {
		panic(fmt.Sprintf("memstate: balance underflow for %s", addr.Hex()))
	}

	s.journal = append(s.journal, func(s *State) { s.setBalance(addr, prev) })
	s.setBalance(addr, next)
	s.dirtyBalances[addr] = struct{}{}

	return *prev
}

func (s *State) AddLog(l *types.Log) {
	l.Index = uint(len(s.logs))
	s.logs = append(s.logs, l)
	s.journal = append(s.journal, func(s *State) { s.logs = s.logs[:len(s.logs)-1] })
}

// Logs returns the logs added since the last Finalise.
func (s *State) Logs() []*types.Log {
	return slices.Clone(s.logs)
}

func (s *State) Snapshot() int {
	id := len(s.revisions)
	s.revisions = append(s.revisions, len(s.journal))
	return id
}

func (s *State) RevertToSnapshot(id int) {
	if id < 0 || id >= len(s.revisions) {
		panic(fmt.Sprintf("memstate: revision id %d cannot be reverted", id))
	}

	mark := s.revisions[id]
	for i := len(s.journal) - 1; i >= mark; i-- {
		s.journal[i](s)
	}
	s.journal = s.journal[:mark]
	s.revisions = s.revisions[:id]
}

// Slot is a single changed storage slot.
type Slot struct {
	Address common.Address
	Key     common.Hash
	Value   common.Hash
}

// Balance is a single changed account balance.
type Balance struct {
	Address common.Address
	Amount  *uint256.Int
}

// Changes is everything written since the previous Finalise, with the
// current values.
type Changes struct {
	Slots    []Slot
	Balances []Balance
	Logs     []*types.Log
}

func (c *Changes) Empty() bool {
	return len(c.Slots) == 0 && len(c.Balances) == 0 && len(c.Logs) == 0
}

// Finalise drops the journal, making the current state permanent, and
// returns the slots, balances and logs touched since the previous call.
func (s *State) Finalise() *Changes {
	c := &Changes{Logs: s.logs}

	for _, addr := range slices.SortedFunc(maps.Keys(s.dirtySlots), common.Address.Cmp) {
		for _, key := range slices.SortedFunc(maps.Keys(s.dirtySlots[addr]), common.Hash.Cmp) {
			c.Slots = append(c.Slots, Slot{Address: addr, Key: key, Value: s.GetState(addr, key)})
		}
	}

	for _, addr := range slices.SortedFunc(maps.Keys(s.dirtyBalances), common.Address.Cmp) {
		c.Balances = append(c.Balances, Balance{Address: addr, Amount: s.GetBalance(addr)})
	}

	s.logs = nil
	s.journal = nil
	s.revisions = nil
	s.dirtySlots = make(map[common.Address]map[common.Hash]struct{})
	s.dirtyBalances = make(map[common.Address]struct{})

	return c
}

// Restore loads a persisted slot without journaling or marking it dirty.
func (s *State) Restore(addr common.Address, key common.Hash, value common.Hash) {
	s.write(addr, key, value)
}

// RestoreBalance loads a persisted balance without journaling or marking it dirty.
func (s *State) RestoreBalance(addr common.Address, amount *uint256.Int) {
	s.setBalance(addr, new(uint256.Int).Set(amount))
}

// NumberOfSlots returns how many non-zero slots addr holds.
func (s *State) NumberOfSlots(addr common.Address) int {
	return len(s.storage[addr])
}
