package events_test

import (
	"fmt"
	"testing"

	"github.com/meshledger/meshledger/foundation/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Subscribe(t *testing.T) {
	evts := events.New()

	all, err := evts.Subscribe("trace-1", "")
	require.NoError(t, err)

	blocks, err := evts.Subscribe("trace-2", "viewer: block: ")
	require.NoError(t, err)

	_, err = evts.Subscribe("trace-1", "")
	assert.Error(t, err, "an id subscribes once")
	assert.Equal(t, 2, evts.Subscribers())

	assert.Equal(t, 1, evts.Publish("state: MineNextBlock: MINING: drain mempool"))
	assert.Equal(t, 2, evts.Publish(`viewer: block: {"hash":"0x01"}`))

	assert.Equal(t, "state: MineNextBlock: MINING: drain mempool", <-all)
	assert.Equal(t, `viewer: block: {"hash":"0x01"}`, <-all)
	assert.Equal(t, `viewer: block: {"hash":"0x01"}`, <-blocks)

	dropped, err := evts.Unsubscribe("trace-1")
	require.NoError(t, err)
	assert.Zero(t, dropped)

	_, open := <-all
	assert.False(t, open)

	_, err = evts.Unsubscribe("trace-1")
	assert.Error(t, err)

	evts.Shutdown()
	_, open = <-blocks
	assert.False(t, open)
	assert.Zero(t, evts.Subscribers())

	_, err = evts.Subscribe("trace-3", "")
	assert.ErrorIs(t, err, events.ErrClosed)
}

func Test_PublishDropsForSlowSubscribers(t *testing.T) {
	evts := events.New()

	_, err := evts.Subscribe("slow", "")
	require.NoError(t, err)

	const sent = 150
	var delivered int
	for i := range sent {
		delivered += evts.Publish(fmt.Sprintf("event %d", i))
	}

	dropped, err := evts.Unsubscribe("slow")
	require.NoError(t, err)

	assert.Less(t, delivered, sent)
	assert.Equal(t, uint64(sent-delivered), dropped)
}
