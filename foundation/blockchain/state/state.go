// Package state is the core API for the blockchain and implements all the
// business rules and processing.
package state

import (
	"fmt"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/meshledger/meshledger/foundation/blockchain/database"
	"github.com/meshledger/meshledger/foundation/blockchain/genesis"
	"github.com/meshledger/meshledger/foundation/blockchain/mempool"
	"github.com/meshledger/meshledger/foundation/blockchain/peer"
	"github.com/meshledger/meshledger/foundation/httpclient"
)

// =============================================================================

// EventHandler defines a function that is called when events
// occur in the processing of persisting blocks.
type EventHandler func(v string, args ...any)

// Worker interface represents the behavior required to be implemented by any
// package providing support for mining and consensus.
type Worker interface {
	Shutdown()
	SignalStartMining()
	SignalCancelMining()
}

// DefaultMaxChainBytes is the largest chain document accepted from a peer
// when no limit is configured.
const DefaultMaxChainBytes int64 = 32 << 20

// =============================================================================

// Config represents the configuration required to start
// the blockchain node.
type Config struct {
	NodeID             string
	Host               string
	Genesis            genesis.Genesis
	Storage            database.Storage
	KnownPeers         *peer.PeerSet
	PeerClient         *retryablehttp.Client
	PeerTimeout        time.Duration
	PeerRetries        int
	MaxConcurrentFetch int
	MaxChainBytes      int64
	EvHandler          EventHandler
}

// State manages the blockchain database.
type State struct {
	nodeID             string
	host               string
	evHandler          EventHandler
	peerTimeout        time.Duration
	maxConcurrentFetch int
	maxChainBytes      int64

	// mu serializes every mutation of the chain and the draining of the
	// mempool into a new block.
	mu sync.Mutex

	knownPeers *peer.PeerSet
	client     *retryablehttp.Client
	mempool    *mempool.Mempool
	db         *database.Database

	Worker Worker
}

// New constructs a new blockchain for data management.
func New(cfg Config) (*State, error) {
	if cfg.NodeID == "" {
		return nil, fmt.Errorf("node id is required")
	}

	if !utf8.ValidString(cfg.NodeID) {
		return nil, fmt.Errorf("node id %q is not valid UTF-8", cfg.NodeID)
	}

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	gen := cfg.Genesis
	if gen == (genesis.Genesis{}) {
		gen = genesis.Default()
	}

	// Access the storage for the blockchain.
	db, err := database.New(gen, cfg.Storage)
	if err != nil {
		return nil, err
	}

	knownPeers := cfg.KnownPeers
	if knownPeers == nil {
		knownPeers = peer.NewPeerSet()
	}

	peerTimeout := cfg.PeerTimeout
	if peerTimeout <= 0 {
		peerTimeout = 5 * time.Second
	}

	maxConcurrentFetch := cfg.MaxConcurrentFetch
	if maxConcurrentFetch <= 0 {
		maxConcurrentFetch = 8
	}

	maxChainBytes := cfg.MaxChainBytes
	if maxChainBytes <= 0 {
		maxChainBytes = DefaultMaxChainBytes
	}

	client := cfg.PeerClient
	if client == nil {
		client = httpclient.New(
			httpclient.WithTimeout(peerTimeout),
			httpclient.WithRetryMax(cfg.PeerRetries),
		)
	}

	// Create the State to provide support for managing the blockchain.
	state := State{
		nodeID:             cfg.NodeID,
		host:               cfg.Host,
		evHandler:          ev,
		peerTimeout:        peerTimeout,
		maxConcurrentFetch: maxConcurrentFetch,
		maxChainBytes:      maxChainBytes,

		knownPeers: knownPeers,
		client:     client,
		mempool:    mempool.New(),
		db:         db,

		Worker: idleWorker{},
	}

	// The Worker is replaced by the call to worker.Run which will assign
	// itself and start everything up and running for the node.

	ev("state: New: node[%s]: chain length[%d]", cfg.NodeID, db.Length())

	return &state, nil
}

// Shutdown cleanly brings the node down.
func (s *State) Shutdown() error {

	// Make sure the storage is properly closed.
	defer func() {
		s.db.Close()
	}()

	// Stop all blockchain writing activity.
	s.Worker.Shutdown()

	return nil
}

// =============================================================================

// idleWorker is used until a worker is attached to the state.
type idleWorker struct{}

func (idleWorker) Shutdown()           {}
func (idleWorker) SignalStartMining()  {}
func (idleWorker) SignalCancelMining() {}
