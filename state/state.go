package state

import (
	"crypto"
	_ "crypto/sha256"
	_ "crypto/sha512"
	"fmt"
	"sync"

	"github.com/alphabill-org/auctionhouse/types"
	"github.com/alphabill-org/auctionhouse/util"
)

type (
	/*
	State keeps track of the ledger accounts.

	State can be changed by calling Apply function with one or more Action function. Savepoint method can be used
	to add a special marker to the state that allows all actions that are executed after savepoint was established
	to be rolled back. Calling a Commit method commits and releases all savepoints.

	Every State is an independent ledger, there is no shared global instance.
	*/
	State struct {
		mutex         sync.RWMutex
		hashAlgorithm crypto.Hash
		committed     accounts

		// savepoint is a special marker that allows all actions that are executed after it was established to
		// be rolled back, restoring the state to what it was at the time of the savepoint.
		savepoints []accounts
	}

	// Visitor is called for every account by Traverse, in address order.
	Visitor func(addr types.Address, acc *Account) error
)

func NewEmptyState(opts ...Option) *State {
	options := loadOptions(opts...)
	committed := make(accounts, len(options.genesis))
	for addr, acc := range options.genesis {
		committed[addr] = acc
	}
	return &State{
		hashAlgorithm: options.hashAlgorithm,
		committed:     committed,
		savepoints:    []accounts{committed.clone()},
	}
}

// Clone returns a clone of the state. The original state and the cloned state can be used by different goroutines but
// can never be merged. The cloned state is usually used by read only operations (e.g. explorer API).
func (s *State) Clone() *State {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return &State{
		hashAlgorithm: s.hashAlgorithm,
		committed:     s.committed.clone(),
		savepoints:    []accounts{s.latestSavepoint().clone()},
	}
}

// GetAccount returns a copy of the account. When committed is true the last
// committed version is returned, otherwise the one in the latest savepoint.
func (s *State) GetAccount(addr types.Address, committed bool) (*Account, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	var acc *Account
	var err error
	if committed {
		acc, err = s.committed.Get(addr)
	} else {
		acc, err = s.latestSavepoint().Get(addr)
	}
	if err != nil {
		return nil, err
	}
	return acc.Clone(), nil
}

/*
GetAccountBefore returns a copy of the account as it was when the savepoint
"id" was created, ie ignoring everything done after it.
*/
func (s *State) GetAccountBefore(id int, addr types.Address) (*Account, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if id <= 0 || id > len(s.savepoints) {
		return nil, fmt.Errorf("invalid savepoint id %d", id)
	}
	acc, err := s.savepoints[id-1].Get(addr)
	if err != nil {
		return nil, err
	}
	return acc.Clone(), nil
}

// Apply applies given actions to the state. All Action functions are executed together as a single atomic operation. If
// any of the Action functions returns an error all previous state changes made by any of the action function will be
// reverted.
func (s *State) Apply(actions ...Action) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	id := s.createSavepoint()
	for _, action := range actions {
		if err := action(s.latestSavepoint()); err != nil {
			s.rollbackToSavepoint(id)
			return err
		}
	}
	s.releaseToSavepoint(id)
	return nil
}

// Commit makes the changes in the latest savepoint permanent.
func (s *State) Commit() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	sp := s.latestSavepoint()
	s.committed = sp.clone()
	s.savepoints = []accounts{sp}
}

// Revert rolls back all changes made to the state since the last commit.
func (s *State) Revert() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.savepoints = []accounts{s.committed.clone()}
}

// Savepoint creates a new savepoint and returns an id of the savepoint. Use RollbackToSavepoint to roll back all
// changes made after calling Savepoint method. Use ReleaseToSavepoint to save all changes made to the state.
func (s *State) Savepoint() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.createSavepoint()
}

// RollbackToSavepoint destroys savepoints without keeping the changes in the state. All actions that were executed
// after the savepoint was established are rolled back, restoring the state to what it was at the time of the savepoint.
func (s *State) RollbackToSavepoint(id int) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.rollbackToSavepoint(id)
}

// ReleaseToSavepoint destroys all savepoints, keeping all state changes after it was created. If a savepoint with given
// id does not exist then this method does nothing.
func (s *State) ReleaseToSavepoint(id int) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.releaseToSavepoint(id)
}

// IsCommitted returns true when there are no changes since the last commit.
func (s *State) IsCommitted() bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if len(s.savepoints) != 1 {
		return false
	}
	return hashAccounts(s.hashAlgorithm, s.latestSavepoint()) == hashAccounts(s.hashAlgorithm, s.committed)
}

// Traverse calls visitor for every account in address order.
func (s *State) Traverse(committed bool, visitor Visitor) error {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	m := s.committed
	if !committed {
		m = s.latestSavepoint()
	}
	for _, addr := range m.sortedAddresses() {
		if err := visitor(addr, m[addr].Clone()); err != nil {
			return err
		}
	}
	return nil
}

/*
Hash returns the hash of the uncommitted state. Two states with the same
accounts (same lamports, owner and data) have the same hash.
*/
func (s *State) Hash() []byte {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	h := hashAccounts(s.hashAlgorithm, s.latestSavepoint())
	return []byte(h)
}

func (s *State) HashAlgorithm() crypto.Hash {
	return s.hashAlgorithm
}

func (s *State) latestSavepoint() accounts {
	return s.savepoints[len(s.savepoints)-1]
}

func (s *State) createSavepoint() int {
	s.savepoints = append(s.savepoints, s.latestSavepoint().clone())
	return len(s.savepoints) - 1
}

func (s *State) rollbackToSavepoint(id int) {
	if id <= 0 || id >= len(s.savepoints) {
		return
	}
	s.savepoints = s.savepoints[:id]
}

func (s *State) releaseToSavepoint(id int) {
	if id <= 0 || id >= len(s.savepoints) {
		return
	}
	s.savepoints[id-1] = s.latestSavepoint()
	s.savepoints = s.savepoints[:id]
}

func hashAccounts(algorithm crypto.Hash, m accounts) string {
	hasher := algorithm.New()
	for _, addr := range m.sortedAddresses() {
		acc := m[addr]
		hasher.Write(addr[:])
		hasher.Write(util.Uint64ToBytes(acc.Lamports))
		hasher.Write(acc.Owner[:])
		hasher.Write(util.Uint64ToBytes(uint64(len(acc.Data))))
		hasher.Write(acc.Data)
	}
	return string(hasher.Sum(nil))
}
