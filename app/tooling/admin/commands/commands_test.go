package commands_test

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/meshledger/meshledger/app/services/node/handlers"
	"github.com/meshledger/meshledger/app/tooling/admin/commands"
	"github.com/meshledger/meshledger/business/sys/metrics"
	"github.com/meshledger/meshledger/foundation/blockchain/peer"
	"github.com/meshledger/meshledger/foundation/blockchain/state"
	"github.com/meshledger/meshledger/foundation/blockchain/storage/memory"
	"github.com/meshledger/meshledger/foundation/events"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func executeCommand(root *cobra.Command, args ...string) (output string, err error) {
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)

	_, err = root.ExecuteC()
	return buf.String(), err
}

func newRoot() *cobra.Command {
	return commands.NewRootCmd("test", zap.NewNop().Sugar())
}

func newNode(t *testing.T, nodeID string) *httptest.Server {
	t.Helper()

	strg, err := memory.New()
	require.NoError(t, err)

	st, err := state.New(state.Config{
		NodeID:      nodeID,
		Storage:     strg,
		KnownPeers:  peer.NewPeerSet(),
		PeerTimeout: time.Second,
	})
	require.NoError(t, err)

	srv := httptest.NewServer(handlers.PublicMux(handlers.MuxConfig{
		Shutdown: make(chan os.Signal, 1),
		Log:      zap.NewNop().Sugar(),
		State:    st,
		Evts:     events.New(),
		Metrics:  metrics.New(),
	}))
	t.Cleanup(srv.Close)

	return srv
}

func TestRootCmd(t *testing.T) {
	output, err := executeCommand(newRoot())
	assert.NoError(t, err)
	assert.Contains(t, output, "admin submits transactions, mines blocks and manages the peers of a meshledger node.")

	_, err = executeCommand(newRoot(), "chain", "--config", "/does/not/exist.yaml")
	assert.ErrorContains(t, err, "reading config")
}

func TestSubmitAndMine(t *testing.T) {
	srv := newNode(t, "node-a")

	output, err := executeCommand(newRoot(), "--node", srv.URL, "submit", "--id", "alice", "--channel", "general", "--payload", "hi")
	require.NoError(t, err)

	var submitted commands.Submitted
	require.NoError(t, json.Unmarshal([]byte(output), &submitted))
	assert.Equal(t, uint64(2), submitted.Index)

	_, err = executeCommand(newRoot(), "--node", srv.URL, "submit", "--channel", "general")
	assert.ErrorContains(t, err, "id")

	output, err = executeCommand(newRoot(), "--node", srv.URL, "pool")
	require.NoError(t, err)
	assert.Contains(t, output, `"alice"`)

	output, err = executeCommand(newRoot(), "--node", srv.URL, "mine")
	require.NoError(t, err)

	var mined commands.Mined
	require.NoError(t, json.Unmarshal([]byte(output), &mined))
	assert.Equal(t, uint64(2), mined.Index)
	require.Len(t, mined.Transactions, 2)
	assert.Equal(t, "node-a", mined.Transactions[1].ID)

	output, err = executeCommand(newRoot(), "--node", srv.URL, "chain", "--verify")
	require.NoError(t, err)
	assert.Contains(t, output, "chain of 2 blocks is valid")
}

func TestNodeFromEnvironment(t *testing.T) {
	srv := newNode(t, "node-a")
	t.Setenv("MESHLEDGER_NODE", srv.URL)

	output, err := executeCommand(newRoot(), "chain")
	require.NoError(t, err)

	var pc peer.PeerChain
	require.NoError(t, json.Unmarshal([]byte(output), &pc))
	assert.Equal(t, 1, pc.Length)
}

func TestRegisterAndResolve(t *testing.T) {
	a := newNode(t, "node-a")
	b := newNode(t, "node-b")

	for range 2 {
		_, err := executeCommand(newRoot(), "--node", a.URL, "mine")
		require.NoError(t, err)
	}

	_, err := executeCommand(newRoot(), "--node", b.URL, "register", "http://")
	assert.ErrorContains(t, err, "400")

	output, err := executeCommand(newRoot(), "--node", b.URL, "register", a.URL)
	require.NoError(t, err)

	var registered commands.Registered
	require.NoError(t, json.Unmarshal([]byte(output), &registered))
	assert.Len(t, registered.Nodes, 1)

	output, err = executeCommand(newRoot(), "--node", b.URL, "peers")
	require.NoError(t, err)
	assert.Contains(t, output, registered.Nodes[0])

	output, err = executeCommand(newRoot(), "--node", b.URL, "resolve")
	require.NoError(t, err)
	assert.Contains(t, output, "our chain was replaced: length 3")

	output, err = executeCommand(newRoot(), "--node", b.URL, "resolve")
	require.NoError(t, err)
	assert.Contains(t, output, "our chain is authoritative: length 3")
}
