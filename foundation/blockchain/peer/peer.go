// Package peer maintains the peer related information such as the set
// of known peers and the chain they report.
package peer

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"

	"github.com/meshledger/meshledger/foundation/blockchain/database"
)

// ErrInvalidAddress is returned when a peer address has neither a network
// location nor a plain host token.
var ErrInvalidAddress = errors.New("invalid peer address")

// =============================================================================

// Peer represents information about a Node in the network.
type Peer struct {
	Host string
}

// New contructs a new info value.
func New(host string) Peer {
	return Peer{
		Host: host,
	}
}

// Parse normalizes an address into a peer. A URL such as
// http://10.0.0.2:5000 is reduced to its network location. An address
// without a scheme such as 10.0.0.2:5000 is used as is.
func Parse(address string) (Peer, error) {
	address = strings.TrimSpace(address)

	if strings.Contains(address, "://") || strings.HasPrefix(address, "//") {
		u, err := url.Parse(address)
		if err != nil {
			return Peer{}, fmt.Errorf("%w: %q: %s", ErrInvalidAddress, address, err)
		}

		if u.Host != "" {
			return New(u.Host), nil
		}

		address = u.Path
	}

	host := strings.Trim(address, "/")
	if host == "" || strings.ContainsAny(host, " \t\r\n") {
		return Peer{}, fmt.Errorf("%w: %q", ErrInvalidAddress, address)
	}

	return New(host), nil
}

// Match validates if the specified host matches this node.
func (p Peer) Match(host string) bool {
	return p.Host == host
}

// String implements the fmt.Stringer interface.
func (p Peer) String() string {
	return p.Host
}

// =============================================================================

// PeerChain represents the chain reported by a peer.
type PeerChain struct {
	Chain  []database.Block `json:"chain"`
	Length int              `json:"length"`
}

// =============================================================================

// PeerSet represents the data representation to maintain a set of known peers.
type PeerSet struct {
	mu  sync.RWMutex
	set map[Peer]struct{}
}

// NewPeerSet constructs a new info set to manage node peer information.
func NewPeerSet() *PeerSet {
	return &PeerSet{
		set: make(map[Peer]struct{}),
	}
}

// Register parses the address and adds the peer to the set. The bool is
// false when the peer was already known.
func (ps *PeerSet) Register(address string) (Peer, bool, error) {
	peer, err := Parse(address)
	if err != nil {
		return Peer{}, false, err
	}

	return peer, ps.Add(peer), nil
}

// Add adds a new node to the set.
func (ps *PeerSet) Add(peer Peer) bool {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	_, exists := ps.set[peer]
	if !exists {
		ps.set[peer] = struct{}{}
		return true
	}

	return false
}

// Remove removes a node from the set.
func (ps *PeerSet) Remove(peer Peer) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	delete(ps.set, peer)
}

// Count returns the number of known peers.
func (ps *PeerSet) Count() int {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	return len(ps.set)
}

// Copy returns a list of the known peers sorted by host, leaving out the
// specified host.
func (ps *PeerSet) Copy(host string) []Peer {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	var peers []Peer
	for peer := range ps.set {
		if !peer.Match(host) {
			peers = append(peers, peer)
		}
	}

	sort.Slice(peers, func(i, j int) bool {
		return peers[i].Host < peers[j].Host
	})

	return peers
}
