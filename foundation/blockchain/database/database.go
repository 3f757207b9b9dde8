// Package database maintains the blockchain in memory. It provides the block
// and transaction types, the proof of work puzzle and chain validation.
package database

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/meshledger/meshledger/foundation/blockchain/genesis"
)

// Storage interface represents the behavior required to be implemented by any
// package providing support for storing and reading the blockchain.
type Storage interface {
	Write(block Block) error
	GetBlock(index uint64) (Block, error)
	ForEach() Iterator
	Close() error
	Reset() error
}

// Iterator interface represents the behavior required to be implemented by any
// package providing support to iterate over the blocks.
type Iterator interface {
	Next() (Block, error)
	Done() bool
}

// =============================================================================

// Database manages the chain of blocks. The chain is never empty once the
// database is constructed.
type Database struct {
	mu sync.RWMutex

	genesis     genesis.Genesis
	latestBlock Block
	length      int

	storage Storage
}

// New constructs a new database. The blocks already held by the storage are
// validated and loaded. If the storage is empty, the genesis block is written.
func New(gen genesis.Genesis, storage Storage) (*Database, error) {
	db := Database{
		genesis: gen,
		storage: storage,
	}

	var blocks []Block

	iter := db.storage.ForEach()
	for block, err := iter.Next(); !iter.Done(); block, err = iter.Next() {
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, block)
	}

	if len(blocks) == 0 {
		block := Block{
			Index:        1,
			TimeStamp:    Now(),
			Transactions: []Tx{},
			Proof:        gen.Proof,
			PreviousHash: gen.PreviousHash,
		}

		if err := db.storage.Write(block); err != nil {
			return nil, fmt.Errorf("writing genesis block: %w", err)
		}
		blocks = append(blocks, block)
	}

	if err := ValidateChain(blocks); err != nil {
		return nil, err
	}

	db.latestBlock = blocks[len(blocks)-1]
	db.length = len(blocks)

	return &db, nil
}

// Close closes the storage.
func (db *Database) Close() {
	db.storage.Close()
}

// Genesis returns the genesis values this database was seeded with.
func (db *Database) Genesis() genesis.Genesis {
	return db.genesis
}

// LatestBlock returns the head of the chain.
func (db *Database) LatestBlock() Block {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.latestBlock.Clone()
}

// Length returns the number of blocks in the chain.
func (db *Database) Length() int {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.length
}

// GetBlock returns the block at the specified index.
func (db *Database) GetBlock(index uint64) (Block, error) {
	block, err := db.storage.GetBlock(index)
	if err != nil {
		return Block{}, err
	}

	return block.Clone(), nil
}

// Copy returns the full chain.
func (db *Database) Copy() []Block {
	db.mu.RLock()
	defer db.mu.RUnlock()

	blocks := make([]Block, 0, db.length)

	iter := db.storage.ForEach()
	for block, err := iter.Next(); !iter.Done(); block, err = iter.Next() {
		if err != nil {
			break
		}
		blocks = append(blocks, block.Clone())
	}

	return blocks
}

// Append builds the next block from the specified proof and transactions and
// adds it to the chain. If previousHash is empty, the hash of the current
// head is used. The proof must solve the puzzle for the current head.
func (db *Database) Append(proof uint64, trans []Tx, previousHash string) (Block, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, tx := range trans {
		if err := tx.Validate(); err != nil {
			return Block{}, fmt.Errorf("block %d: %w", db.length+1, err)
		}
	}

	headHash, err := db.latestBlock.Hash()
	if err != nil {
		return Block{}, err
	}

	if !VerifyProof(db.latestBlock.Proof, proof, headHash) {
		return Block{}, fmt.Errorf("block %d: %w", db.length+1, ErrInvalidProof)
	}

	if previousHash == "" {
		previousHash = headHash
	}

	if trans == nil {
		trans = []Tx{}
	}

	block := Block{
		Index:        uint64(db.length) + 1,
		TimeStamp:    Now(),
		Transactions: trans,
		Proof:        proof,
		PreviousHash: previousHash,
	}

	if err := db.storage.Write(block); err != nil {
		return Block{}, err
	}

	db.latestBlock = block
	db.length++

	return block.Clone(), nil
}

// Replace substitutes the entire chain with the specified blocks. The blocks
// must pass validation.
func (db *Database) Replace(blocks []Block) error {
	if err := ValidateChain(blocks); err != nil {
		return err
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	if err := db.storage.Reset(); err != nil {
		return err
	}

	for _, block := range blocks {
		if err := db.storage.Write(block.Clone()); err != nil {
			return errors.Join(fmt.Errorf("replacing chain at block %d", block.Index), err)
		}
	}

	db.latestBlock = blocks[len(blocks)-1].Clone()
	db.length = len(blocks)

	return nil
}

// =============================================================================

// Now returns the current time as seconds since the epoch.
func Now() float64 {
	return float64(time.Now().UTC().UnixNano()) / float64(time.Second)
}
