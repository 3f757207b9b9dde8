package state

import (
	"github.com/meshledger/meshledger/foundation/blockchain/peer"
)

// RegisterNode parses the address and adds the peer to the known peers.
// Registering a known peer again is not an error.
func (s *State) RegisterNode(address string) (peer.Peer, error) {
	pr, added, err := s.knownPeers.Register(address)
	if err != nil {
		return peer.Peer{}, err
	}

	s.evHandler("state: RegisterNode: peer[%s]: added[%t]", pr, added)

	return pr, nil
}
