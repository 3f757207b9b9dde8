package peer_test

import (
	"testing"

	"github.com/meshledger/meshledger/foundation/blockchain/peer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_CRUD(t *testing.T) {
	type table struct {
		name  string
		peers []peer.Peer
	}

	tt := []table{
		{
			name:  "basic",
			peers: []peer.Peer{{Host: "host3"}, {Host: "host1"}, {Host: "host2"}},
		},
	}

	for _, tst := range tt {
		f := func(t *testing.T) {
			ps := peer.NewPeerSet()

			for _, peer := range tst.peers {
				assert.True(t, ps.Add(peer))
			}
			assert.False(t, ps.Add(tst.peers[0]))

			peers := ps.Copy("")
			require.Len(t, peers, len(tst.peers))
			assert.Equal(t, []peer.Peer{{Host: "host1"}, {Host: "host2"}, {Host: "host3"}}, peers)

			peers = ps.Copy("host2")
			assert.Len(t, peers, len(tst.peers)-1)

			ps.Remove(tst.peers[0])
			assert.Equal(t, len(tst.peers)-1, ps.Count())
		}

		t.Run(tst.name, f)
	}
}

func Test_Parse(t *testing.T) {
	tests := []struct {
		name    string
		address string
		host    string
		wantErr bool
	}{
		{name: "url", address: "http://10.0.0.2:5000", host: "10.0.0.2:5000"},
		{name: "url with path", address: "http://10.0.0.2:5000/chain", host: "10.0.0.2:5000"},
		{name: "scheme relative", address: "//node-a:5000", host: "node-a:5000"},
		{name: "host port", address: "10.0.0.2:5000", host: "10.0.0.2:5000"},
		{name: "plain token", address: "node-a", host: "node-a"},
		{name: "trailing slash", address: " localhost:5001/ ", host: "localhost:5001"},
		{name: "empty", address: "", wantErr: true},
		{name: "blank", address: "   ", wantErr: true},
		{name: "scheme only", address: "http://", wantErr: true},
		{name: "whitespace inside", address: "node a", wantErr: true},
		{name: "bad url", address: "http://[::1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := peer.Parse(tt.address)
			if tt.wantErr {
				assert.ErrorIs(t, err, peer.ErrInvalidAddress)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.host, p.Host)
		})
	}
}

func Test_Register(t *testing.T) {
	ps := peer.NewPeerSet()

	p, added, err := ps.Register("http://10.0.0.2:5000")
	require.NoError(t, err)
	assert.True(t, added)
	assert.Equal(t, "10.0.0.2:5000", p.Host)

	_, added, err = ps.Register("10.0.0.2:5000")
	require.NoError(t, err)
	assert.False(t, added, "re-registering the same location is a no-op")

	_, _, err = ps.Register("")
	assert.ErrorIs(t, err, peer.ErrInvalidAddress)
	assert.Equal(t, 1, ps.Count())
}
