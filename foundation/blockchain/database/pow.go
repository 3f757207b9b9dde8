package database

import (
	"context"
	"strconv"

	"github.com/meshledger/meshledger/foundation/blockchain/hashing"
)

// Difficulty is the number of leading zero hex digits the puzzle hash must
// have. There is no difficulty adjustment.
const Difficulty = 4

// attemptsReport is how often the search reports progress.
const attemptsReport = 100_000

// =============================================================================

// SearchProof performs the proof of work. It starts at zero and returns the
// first proof that solves the puzzle for the specified previous proof and
// previous block hash. The context is checked on every attempt so the search
// can be cancelled.
func SearchProof(ctx context.Context, lastProof uint64, lastHash string, ev func(v string, args ...any)) (uint64, error) {
	ev("database: SearchProof: MINING: started: lastProof[%d]", lastProof)
	defer ev("database: SearchProof: MINING: completed")

	var proof uint64
	for {
		if ctx.Err() != nil {
			ev("database: SearchProof: MINING: CANCELLED: attempts[%d]", proof)
			return 0, ctx.Err()
		}

		if VerifyProof(lastProof, proof, lastHash) {
			ev("database: SearchProof: MINING: SOLVED: proof[%d]", proof)
			return proof, nil
		}

		proof++
		if proof%attemptsReport == 0 {
			ev("database: SearchProof: MINING: attempts[%d]", proof)
		}
	}
}

// VerifyProof checks the puzzle. The decimal forms of both proofs and the
// previous block hash are concatenated without separators and hashed. The
// proof is valid if the hash starts with Difficulty zeros.
func VerifyProof(lastProof uint64, proof uint64, lastHash string) bool {
	const match = "0000000000000000"

	guess := strconv.FormatUint(lastProof, 10) + strconv.FormatUint(proof, 10) + lastHash
	hash := hashing.Digest([]byte(guess))

	return hashing.Prefix(hash, Difficulty) == match[:Difficulty]
}
