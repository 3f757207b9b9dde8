// Package genesis maintains the conventions used to seed the first block of
// the blockchain.
package genesis

// Conventional values for the genesis block.
const (
	Proof        uint64 = 100
	PreviousHash string = "1"
)

// Genesis represents the values used to construct the genesis block.
type Genesis struct {
	Proof        uint64 `json:"proof"`         // Proof used by the first mined block as the previous proof.
	PreviousHash string `json:"previous_hash"` // Sentinel in place of a previous block hash.
}

// =============================================================================

// Default returns the conventional genesis values.
func Default() Genesis {
	return Genesis{
		Proof:        Proof,
		PreviousHash: PreviousHash,
	}
}
