package database

import (
	"fmt"

	"github.com/meshledger/meshledger/foundation/blockchain/hashing"
)

// Block represents a group of transactions sealed together by a proof of
// work. Blocks are values and are never modified once they are part of a
// chain. The field order is part of the canonical hash.
type Block struct {
	Index        uint64  `json:"index"`         // Position in the chain starting at 1.
	TimeStamp    float64 `json:"timestamp"`     // Seconds since the epoch when the block was created.
	Transactions []Tx    `json:"transactions"`  // Transactions sealed into this block.
	Proof        uint64  `json:"proof"`         // Solution of the proof of work puzzle.
	PreviousHash string  `json:"previous_hash"` // Hash of the previous block or the genesis sentinel.
}

// Hash returns the canonical hash for the Block. A block without
// transactions hashes the same whether the slice is nil or empty. A block
// holding a non-finite timestamp can't be hashed.
func (b Block) Hash() (string, error) {
	if b.Transactions == nil {
		b.Transactions = []Tx{}
	}

	hash, err := hashing.Hash(b)
	if err != nil {
		return "", fmt.Errorf("block %d: %w", b.Index, err)
	}

	return hash, nil
}

// Clone returns a copy of the block that doesn't share the transactions
// backing array.
func (b Block) Clone() Block {
	trans := make([]Tx, len(b.Transactions))
	copy(trans, b.Transactions)
	b.Transactions = trans

	return b
}
