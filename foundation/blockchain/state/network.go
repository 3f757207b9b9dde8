package state

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/meshledger/meshledger/foundation/blockchain/peer"
)

// ErrPeerUnavailable is returned when a peer can't be reached or answers
// with something other than its chain.
var ErrPeerUnavailable = errors.New("peer unavailable")

const baseURL = "http://%s/v1"

// NetRequestPeerChain asks the peer for its full chain.
func (s *State) NetRequestPeerChain(ctx context.Context, pr peer.Peer) (peer.PeerChain, error) {
	s.evHandler("state: NetRequestPeerChain: started: %s", pr)
	defer s.evHandler("state: NetRequestPeerChain: completed: %s", pr)

	url := fmt.Sprintf("%s/chain", fmt.Sprintf(baseURL, pr.Host))

	var pc peer.PeerChain
	if err := s.send(ctx, http.MethodGet, url, nil, &pc); err != nil {
		return peer.PeerChain{}, fmt.Errorf("%w: %s: %s", ErrPeerUnavailable, pr, err)
	}

	s.evHandler("state: NetRequestPeerChain: peer-node[%s]: length[%d]", pr, pc.Length)

	return pc, nil
}

// =============================================================================

// send is a helper function to send an HTTP request to a node.
func (s *State) send(ctx context.Context, method string, url string, dataSend any, dataRecv any) error {
	var body any
	if dataSend != nil {
		data, err := json.Marshal(dataSend)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if resp.StatusCode != http.StatusOK {
		msg, err := io.ReadAll(io.LimitReader(resp.Body, 1024))
		if err != nil {
			return err
		}
		return fmt.Errorf("status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	if dataRecv != nil {

		// The chain document is bounded by maxChainBytes.
		body := http.MaxBytesReader(nil, resp.Body, s.maxChainBytes)

		if err := json.NewDecoder(body).Decode(dataRecv); err != nil {
			var mbe *http.MaxBytesError
			if errors.As(err, &mbe) {
				return fmt.Errorf("response exceeds %d bytes", mbe.Limit)
			}
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}
