// Package state provides an in-memory journaled StateDB used as the module
// test harness and as the reference implementation of the vm.StateDB
// contract.
package state

import (
	"math/big"

	"github.com/curio-network/gcurio/common"
)

type account struct {
	balance *big.Int
	storage map[common.Hash]common.Hash
}

// StateDB is an in-memory account and storage store with snapshot/revert.
// All mutations append an undo entry to the journal; RevertToSnapshot
// replays undo entries in reverse until the journal shrinks back to the
// snapshot point.
type StateDB struct {
	accounts map[common.Address]*account
	journal  []func()
}

// New creates an empty StateDB.
func New() *StateDB {
	return &StateDB{accounts: make(map[common.Address]*account)}
}

func (s *StateDB) getAccount(addr common.Address) *account {
	return s.accounts[addr]
}

func (s *StateDB) getOrNewAccount(addr common.Address) *account {
	if acc := s.accounts[addr]; acc != nil {
		return acc
	}
	s.CreateAccount(addr)
	return s.accounts[addr]
}

// CreateAccount makes addr exist with a zero balance and empty storage.
func (s *StateDB) CreateAccount(addr common.Address) {
	if s.accounts[addr] != nil {
		return
	}
	s.accounts[addr] = &account{balance: new(big.Int), storage: make(map[common.Hash]common.Hash)}
	s.journal = append(s.journal, func() { delete(s.accounts, addr) })
}

// Exist reports whether addr has been touched by a balance or storage write.
func (s *StateDB) Exist(addr common.Address) bool {
	return s.accounts[addr] != nil
}

// GetBalance returns the balance of addr, zero for untouched accounts.
func (s *StateDB) GetBalance(addr common.Address) *big.Int {
	if acc := s.getAccount(addr); acc != nil {
		return new(big.Int).Set(acc.balance)
	}
	return new(big.Int)
}

// AddBalance adds amount to the balance of addr.
func (s *StateDB) AddBalance(addr common.Address, amount *big.Int) {
	if amount == nil || amount.Sign() == 0 {
		s.getOrNewAccount(addr)
		return
	}
	acc := s.getOrNewAccount(addr)
	prev := new(big.Int).Set(acc.balance)
	acc.balance = new(big.Int).Add(acc.balance, amount)
	s.journal = append(s.journal, func() { acc.balance = prev })
}

// SubBalance subtracts amount from the balance of addr.
func (s *StateDB) SubBalance(addr common.Address, amount *big.Int) {
	if amount == nil || amount.Sign() == 0 {
		return
	}
	acc := s.getOrNewAccount(addr)
	prev := new(big.Int).Set(acc.balance)
	acc.balance = new(big.Int).Sub(acc.balance, amount)
	s.journal = append(s.journal, func() { acc.balance = prev })
}

// GetState returns the storage value of addr at key.
func (s *StateDB) GetState(addr common.Address, key common.Hash) common.Hash {
	if acc := s.getAccount(addr); acc != nil {
		return acc.storage[key]
	}
	return common.Hash{}
}

// SetState writes the storage value of addr at key.
func (s *StateDB) SetState(addr common.Address, key, value common.Hash) {
	acc := s.getOrNewAccount(addr)
	prev, hadPrev := acc.storage[key]
	acc.storage[key] = value
	s.journal = append(s.journal, func() {
		if hadPrev {
			acc.storage[key] = prev
		} else {
			delete(acc.storage, key)
		}
	})
}

// Snapshot returns an identifier for the current journal position.
func (s *StateDB) Snapshot() int {
	return len(s.journal)
}

// RevertToSnapshot undoes all mutations recorded after the given snapshot.
func (s *StateDB) RevertToSnapshot(id int) {
	if id < 0 || id > len(s.journal) {
		panic("state: invalid snapshot id")
	}
	for i := len(s.journal) - 1; i >= id; i-- {
		s.journal[i]()
	}
	s.journal = s.journal[:id]
}
