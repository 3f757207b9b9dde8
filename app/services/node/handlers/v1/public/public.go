// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/meshledger/meshledger/business/web/errs"
	"github.com/meshledger/meshledger/foundation/blockchain/database"
	"github.com/meshledger/meshledger/foundation/blockchain/peer"
	"github.com/meshledger/meshledger/foundation/blockchain/state"
	"github.com/meshledger/meshledger/foundation/events"
	"github.com/meshledger/meshledger/foundation/validate"
	"github.com/meshledger/meshledger/foundation/web"
	"go.uber.org/zap"
)

// Handlers manages the set of node endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
	WS    websocket.Upgrader
	Evts  *events.Events
}

// SubmitTransaction adds a new transaction to the mempool.
func (h Handlers) SubmitTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var ntx state.NewTx
	if err := web.Decode(r, &ntx); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	index, err := h.State.SubmitTransaction(ntx)
	if err != nil {
		if errors.Is(err, state.ErrMissingFields) || errors.Is(err, database.ErrInvalidTx) {
			return errs.NewTrusted(err, http.StatusBadRequest)
		}
		return err
	}

	h.Log.Infow("submit tran", "traceid", v.TraceID, "index", index)

	resp := submitted{
		Message: fmt.Sprintf("transaction will be added to block %d", index),
		Index:   index,
	}

	return web.Respond(ctx, w, resp, http.StatusCreated)
}

// Mine solves the proof of work for the next block and adds it to the chain.
func (h Handlers) Mine(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	block, err := h.State.MineNextBlock(ctx)
	if err != nil {
		return fmt.Errorf("mining block: %w", err)
	}

	resp := mined{
		Message:      "new block forged",
		Index:        block.Index,
		Transactions: block.Transactions,
		Proof:        block.Proof,
		PreviousHash: block.PreviousHash,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Chain returns the full chain and its length.
func (h Handlers) Chain(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	blocks := h.State.RetrieveChain()

	resp := peer.PeerChain{
		Chain:  blocks,
		Length: len(blocks),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// RegisterNode adds a peer to the set of known peers.
func (h Handlers) RegisterNode(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var reg Registration
	if err := web.Decode(r, &reg); err != nil {
		if validate.IsFieldErrors(err) {
			return err
		}
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	if _, err := h.State.RegisterNode(reg.Node); err != nil {
		if errors.Is(err, peer.ErrInvalidAddress) {
			return errs.NewTrusted(err, http.StatusBadRequest)
		}
		return err
	}

	resp := registered{
		Message: "new nodes have been added",
		Nodes:   hosts(h.State.RetrieveKnownPeers()),
	}

	return web.Respond(ctx, w, resp, http.StatusCreated)
}

// ResolveConsensus replaces the chain with the longest valid chain held by
// the known peers.
func (h Handlers) ResolveConsensus(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	replaced, blocks, err := h.State.ResolveConsensus(ctx)
	if err != nil {
		return fmt.Errorf("resolving consensus: %w", err)
	}

	resp := resolved{
		Message:  "our chain is authoritative",
		Replaced: replaced,
		Chain:    blocks,
	}
	if replaced {
		resp.Message = "our chain was replaced"
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// KnownPeers returns the set of known peers.
func (h Handlers) KnownPeers(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, hosts(h.State.RetrieveKnownPeers()), http.StatusOK)
}

// Mempool returns the set of uncommitted transactions.
func (h Handlers) Mempool(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.RetrieveMempool(), http.StatusOK)
}

// Events streams node activity over a websocket. The optional filter query
// parameter limits the stream to events starting with that prefix, such as
// "viewer: block: " for new blocks.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	ch, err := h.Evts.Subscribe(v.TraceID, r.URL.Query().Get("filter"))
	if err != nil {
		return errs.NewTrusted(err, http.StatusServiceUnavailable)
	}
	defer func() {
		dropped, _ := h.Evts.Unsubscribe(v.TraceID)
		h.Log.Infow("events", "traceid", v.TraceID, "dropped", dropped)
	}()

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	web.SetStatusCode(ctx, http.StatusSwitchingProtocols)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return nil
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// =============================================================================

func hosts(peers []peer.Peer) []string {
	nodes := make([]string, len(peers))
	for i, pr := range peers {
		nodes[i] = pr.Host
	}
	return nodes
}
