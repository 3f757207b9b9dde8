// Package mempool maintains the mempool for the blockchain.
package mempool

import (
	"sync"

	"github.com/meshledger/meshledger/foundation/blockchain/database"
)

// Mempool represents the ordered set of transactions waiting to be sealed
// into the next block. Transactions are kept in submission order and are not
// deduplicated.
type Mempool struct {
	mu   sync.RWMutex
	pool []database.Tx
}

// New constructs a new mempool.
func New() *Mempool {
	return &Mempool{
		pool: []database.Tx{},
	}
}

// Count returns the current number of transaction in the pool.
func (mp *Mempool) Count() int {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return len(mp.pool)
}

// Add appends a transaction to the mempool and returns the new size.
func (mp *Mempool) Add(tx database.Tx) int {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool = append(mp.pool, tx)

	return len(mp.pool)
}

// DrainAll returns every transaction in the pool and leaves the pool empty.
func (mp *Mempool) DrainAll() []database.Tx {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	trans := mp.pool
	mp.pool = []database.Tx{}

	return trans
}

// Copy returns a copy of the transactions in the pool.
func (mp *Mempool) Copy() []database.Tx {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	cpy := make([]database.Tx, len(mp.pool))
	copy(cpy, mp.pool)

	return cpy
}

// Truncate clears all the transactions from the pool.
func (mp *Mempool) Truncate() {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool = []database.Tx{}
}
