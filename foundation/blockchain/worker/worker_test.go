package worker_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/meshledger/meshledger/foundation/blockchain/database"
	"github.com/meshledger/meshledger/foundation/blockchain/peer"
	"github.com/meshledger/meshledger/foundation/blockchain/state"
	"github.com/meshledger/meshledger/foundation/blockchain/storage/memory"
	"github.com/meshledger/meshledger/foundation/blockchain/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newNode(t *testing.T, nodeID string) *state.State {
	t.Helper()

	strg, err := memory.New()
	require.NoError(t, err)

	st, err := state.New(state.Config{
		NodeID:      nodeID,
		Host:        nodeID + ".local:8080",
		Storage:     strg,
		KnownPeers:  peer.NewPeerSet(),
		PeerTimeout: 500 * time.Millisecond,
	})
	require.NoError(t, err)

	return st
}

func submit(t *testing.T, st *state.State, payload string) {
	t.Helper()

	id, channel, ts := "alice", "general", database.Now()
	_, err := st.SubmitTransaction(state.NewTx{ID: &id, Channel: &channel, Payload: &payload, TimeStamp: &ts})
	require.NoError(t, err)
}

func Test_AutoMine(t *testing.T) {
	st := newNode(t, "node-a")
	worker.Run(st, worker.Config{AutoMine: true}, nil)
	defer st.Shutdown()

	submit(t, st, "hi")
	submit(t, st, "yo")

	require.Eventually(t, func() bool {
		return st.QueryMempoolLength() == 0 && len(st.RetrieveChain()) >= 2
	}, 10*time.Second, 10*time.Millisecond)

	var found int
	for _, block := range st.RetrieveChain() {
		for _, tx := range block.Transactions {
			if tx.ID == "alice" {
				found++
			}
		}
	}
	assert.Equal(t, 2, found)
	assert.NoError(t, database.ValidateChain(st.RetrieveChain()))
}

func Test_ManualMineOnly(t *testing.T) {
	st := newNode(t, "node-a")
	worker.Run(st, worker.Config{}, nil)
	defer st.Shutdown()

	submit(t, st, "hi")

	time.Sleep(100 * time.Millisecond)
	assert.Len(t, st.RetrieveChain(), 1, "nothing is mined without a request")
	assert.Equal(t, 1, st.QueryMempoolLength())

	block, err := st.MineNextBlock(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(2), block.Index)
}

func Test_PeriodicConsensus(t *testing.T) {
	a := newNode(t, "node-a")
	for range 2 {
		_, err := a.MineNextBlock(context.Background())
		require.NoError(t, err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		blocks := a.RetrieveChain()
		json.NewEncoder(w).Encode(peer.PeerChain{Chain: blocks, Length: len(blocks)})
	}))
	defer srv.Close()

	b := newNode(t, "node-b")
	_, err := b.RegisterNode(strings.TrimPrefix(srv.URL, "http://"))
	require.NoError(t, err)

	worker.Run(b, worker.Config{ResolveInterval: 20 * time.Millisecond}, nil)
	defer b.Shutdown()

	require.Eventually(t, func() bool {
		return len(b.RetrieveChain()) == 3
	}, 5*time.Second, 10*time.Millisecond)

	assert.Equal(t, a.RetrieveChain(), b.RetrieveChain())
}

func Test_CancelledMiningResumes(t *testing.T) {
	st := newNode(t, "node-a")
	worker.Run(st, worker.Config{AutoMine: true}, nil)
	defer st.Shutdown()

	// Interrupt whatever search is running while transactions arrive.
	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				st.Worker.SignalCancelMining()
			}
		}
	}()

	const sent = 5
	for i := range sent {
		submit(t, st, strings.Repeat("x", i+1))
	}

	time.Sleep(50 * time.Millisecond)
	close(stop)
	<-done

	payloads := make(map[string]int)
	require.Eventually(t, func() bool {
		clear(payloads)
		for _, block := range st.RetrieveChain() {
			for _, tx := range block.Transactions {
				if tx.ID == "alice" {
					payloads[tx.Payload]++
				}
			}
		}
		return len(payloads) == sent
	}, 10*time.Second, 10*time.Millisecond)

	assert.Zero(t, st.QueryMempoolLength())
	for payload, n := range payloads {
		assert.Equal(t, 1, n, payload)
	}
	assert.NoError(t, database.ValidateChain(st.RetrieveChain()))
}
