package database

import (
	"errors"
	"fmt"
)

// ErrValidationFailure is returned when a chain doesn't pass validation.
var ErrValidationFailure = errors.New("chain validation failure")

// ErrInvalidProof is returned when a proof doesn't solve the puzzle for the
// latest block in the chain.
var ErrInvalidProof = errors.New("proof does not solve the puzzle")

// =============================================================================

// ValidateChain re-derives the links and the proof of work for every pair of
// adjacent blocks. The genesis block is never checked against a predecessor.
// The blocks are not modified, so this is safe to call with chains received
// from peers.
func ValidateChain(blocks []Block) error {
	if len(blocks) == 0 {
		return fmt.Errorf("%w: chain is empty", ErrValidationFailure)
	}

	if blocks[0].Index != 1 {
		return fmt.Errorf("%w: genesis block index is %d", ErrValidationFailure, blocks[0].Index)
	}

	for _, block := range blocks {
		if err := validateContent(block); err != nil {
			return err
		}
	}

	for i := 1; i < len(blocks); i++ {
		if err := validateNext(blocks[i-1], blocks[i]); err != nil {
			return err
		}
	}

	return nil
}

// validateNext checks that block follows previous in the chain.
func validateNext(previous Block, block Block) error {
	if block.Index != previous.Index+1 {
		return fmt.Errorf("%w: block %d follows block %d", ErrValidationFailure, block.Index, previous.Index)
	}

	prevHash, err := previous.Hash()
	if err != nil {
		return fmt.Errorf("%w: %s", ErrValidationFailure, err)
	}

	if block.PreviousHash != prevHash {
		return fmt.Errorf("%w: block %d previous hash doesn't match, got %s, exp %s", ErrValidationFailure, block.Index, block.PreviousHash, prevHash)
	}

	if !VerifyProof(previous.Proof, block.Proof, prevHash) {
		return fmt.Errorf("%w: block %d proof %d doesn't solve the puzzle", ErrValidationFailure, block.Index, block.Proof)
	}

	return nil
}

// validateContent checks every value in the block can be hashed canonically.
func validateContent(block Block) error {
	if !finite(block.TimeStamp) {
		return fmt.Errorf("%w: block %d timestamp is not a finite number", ErrValidationFailure, block.Index)
	}

	for i, tx := range block.Transactions {
		if err := tx.Validate(); err != nil {
			return fmt.Errorf("%w: block %d transaction %d: %s", ErrValidationFailure, block.Index, i, err)
		}
	}

	return nil
}
