package state

import (
	"context"
	"fmt"

	"github.com/meshledger/meshledger/foundation/blockchain/database"
	"github.com/meshledger/meshledger/foundation/blockchain/peer"
	"golang.org/x/sync/errgroup"
)

// candidate is a chain reported by a peer that is longer than the local
// chain and passed validation.
type candidate struct {
	peer  peer.Peer
	chain []database.Block
}

// ResolveConsensus asks every known peer for its chain and replaces the
// local chain with the longest valid chain that is strictly longer than it.
// Peers that can't be reached or report an invalid chain are skipped. The
// bool reports whether the local chain was replaced and the returned blocks
// are the local chain after resolution.
func (s *State) ResolveConsensus(ctx context.Context) (bool, []database.Block, error) {
	s.evHandler("state: ResolveConsensus: started")
	defer s.evHandler("state: ResolveConsensus: completed")

	peers := s.RetrieveKnownPeers()
	localLength := s.db.Length()

	// Peers are fetched in host order and a slot is kept per peer so equal
	// length candidates are decided by that order.
	candidates := make([]*candidate, len(peers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrentFetch)

	for i, pr := range peers {
		g.Go(func() error {
			cand, err := s.fetchCandidate(gctx, pr, localLength)
			if err != nil {
				s.evHandler("state: ResolveConsensus: WARNING: %s", err)
				return nil
			}
			candidates[i] = cand
			return nil
		})
	}

	// Each goroutine records its peer failure and returns nil.
	if err := g.Wait(); err != nil {
		return false, nil, err
	}

	if err := ctx.Err(); err != nil {
		return false, nil, err
	}

	var best *candidate
	for _, cand := range candidates {
		if cand == nil {
			continue
		}
		if best == nil || len(cand.chain) > len(best.chain) {
			best = cand
		}
	}

	if best == nil {
		s.evHandler("state: ResolveConsensus: local chain is authoritative: length[%d]", localLength)
		return false, s.db.Copy(), nil
	}

	replaced, err := s.replaceChain(best)
	if err != nil {
		return false, nil, err
	}

	return replaced, s.db.Copy(), nil
}

// fetchCandidate requests the chain of the specified peer. A nil candidate
// is returned when the chain is not longer than the local length.
func (s *State) fetchCandidate(ctx context.Context, pr peer.Peer, localLength int) (*candidate, error) {
	ctx, cancel := context.WithTimeout(ctx, s.peerTimeout)
	defer cancel()

	pc, err := s.NetRequestPeerChain(ctx, pr)
	if err != nil {
		return nil, err
	}

	if pc.Length != len(pc.Chain) {
		return nil, fmt.Errorf("%w: peer[%s]: reported length %d, received %d blocks", database.ErrValidationFailure, pr, pc.Length, len(pc.Chain))
	}

	if pc.Length <= localLength {
		return nil, nil
	}

	if err := database.ValidateChain(pc.Chain); err != nil {
		return nil, fmt.Errorf("peer[%s]: %w", pr, err)
	}

	return &candidate{peer: pr, chain: pc.Chain}, nil
}

// replaceChain swaps the local chain for the candidate if the candidate is
// still strictly longer than the local chain.
func (s *State) replaceChain(best *candidate) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(best.chain) <= s.db.Length() {
		s.evHandler("state: ResolveConsensus: local chain grew, candidate from peer[%s] discarded", best.peer)
		return false, nil
	}

	if err := s.db.Replace(best.chain); err != nil {
		return false, err
	}

	s.evHandler("state: ResolveConsensus: chain replaced: peer[%s]: length[%d]", best.peer, len(best.chain))

	// Any proof being searched for is now against a stale head.
	s.Worker.SignalCancelMining()

	return true, nil
}
