package state

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/meshledger/meshledger/foundation/blockchain/database"
)

// errHeadChanged is returned when the chain head moved while a proof was
// being searched for.
var errHeadChanged = errors.New("chain head changed")

// =============================================================================

// MineNextBlock solves the proof of work puzzle against the current head and
// seals a new block holding every pending transaction plus a marker
// transaction recording this node as the miner.
func (s *State) MineNextBlock(ctx context.Context) (database.Block, error) {
	for {
		head := s.RetrieveLatestBlock()

		headHash, err := head.Hash()
		if err != nil {
			return database.Block{}, err
		}

		s.evHandler("state: MineNextBlock: MINING: perform POW: head[%d]", head.Index)

		// The search runs without holding the lock so transactions can
		// keep arriving. This can be cancelled.
		proof, err := database.SearchProof(ctx, head.Proof, headHash, s.evHandler)
		if err != nil {
			return database.Block{}, err
		}

		block, err := s.sealBlock(headHash, proof)
		switch {
		case errors.Is(err, errHeadChanged):
			s.evHandler("state: MineNextBlock: MINING: head changed, restart search")
			continue

		case err != nil:
			return database.Block{}, err
		}

		s.blockEvent(block)

		return block, nil
	}
}

// sealBlock drains the mempool into a new block on top of the head the
// proof was found for. That head must still be the latest block.
func (s *State) sealBlock(headHash string, proof uint64) (database.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	latestHash, err := s.db.LatestBlock().Hash()
	if err != nil {
		return database.Block{}, err
	}

	if latestHash != headHash {
		return database.Block{}, errHeadChanged
	}

	s.evHandler("state: MineNextBlock: MINING: drain mempool")

	s.mempool.Add(database.NewTx(s.nodeID, "", "", database.Now()))
	trans := s.mempool.DrainAll()

	block, err := s.db.Append(proof, trans, headHash)
	if err != nil {

		// Put the submitted transactions back, leaving out the marker.
		for _, tx := range trans[:len(trans)-1] {
			s.mempool.Add(tx)
		}
		return database.Block{}, err
	}

	s.evHandler("state: MineNextBlock: MINING: block[%d]: trans[%d]", block.Index, len(block.Transactions))

	return block, nil
}

// blockEvent provides a specific event about a new block in the chain for
// application specific support.
func (s *State) blockEvent(block database.Block) {
	hash, err := block.Hash()
	if err != nil {
		s.evHandler("state: blockEvent: ERROR: %s", err)
		return
	}

	data, err := json.Marshal(block)
	if err != nil {
		s.evHandler("state: blockEvent: ERROR: %s", err)
		return
	}

	s.evHandler(`viewer: block: {"hash":%q,"block":%s}`, hash, string(data))
}
