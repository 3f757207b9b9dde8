package worker

import (
	"context"
	"errors"
	"time"
)

// miningOperations mines a block each time mining is signalled.
func (w *Worker) miningOperations() {
	w.evHandler("worker: miningOperations: G started")
	defer w.evHandler("worker: miningOperations: G completed")

	for {
		select {
		case <-w.startMining:
			if !w.isShutdown() {
				w.runMiningOperation()
			}
		case <-w.shut:
			w.evHandler("worker: miningOperations: received shut signal")
			return
		}
	}
}

// runMiningOperation seals every pending transaction into a new block. The
// background worker only mines when something is pending. A chain
// replacement cancels the search and the transactions stay pending for the
// next attempt on the new head.
func (w *Worker) runMiningOperation() {
	w.evHandler("worker: runMiningOperation: MINING: started")
	defer w.evHandler("worker: runMiningOperation: MINING: completed")

	pending := w.state.QueryMempoolLength()
	if pending == 0 {
		w.evHandler("worker: runMiningOperation: MINING: mempool empty")
		return
	}

	// A cancel signalled while no search was running is stale.
	select {
	case <-w.cancelMining:
		w.evHandler("worker: runMiningOperation: MINING: stale cancel discarded")
	default:
	}

	ctx, cancel := context.WithCancel(w.ctx)
	stop := w.watchCancel(ctx, cancel)

	start := time.Now()
	block, err := w.state.MineNextBlock(ctx)
	elapsed := time.Since(start)

	stop()

	switch {
	case errors.Is(err, context.Canceled):
		w.evHandler("worker: runMiningOperation: MINING: CANCEL: pending[%d]: after[%v]", pending, elapsed)

	case err != nil:
		w.evHandler("worker: runMiningOperation: MINING: ERROR: %s", err)

	default:
		w.evHandler("worker: runMiningOperation: MINING: block[%d]: trans[%d]: took[%v]", block.Index, len(block.Transactions), elapsed)
	}

	// Transactions submitted during the search, or left behind by a cancel,
	// go into the next block.
	if n := w.state.QueryMempoolLength(); n > 0 && !w.isShutdown() {
		w.evHandler("worker: runMiningOperation: MINING: pending[%d]: signal again", n)
		w.SignalStartMining()
	}
}

// watchCancel cancels the search context when a cancel mining signal
// arrives. The returned function ends the search context and waits for the
// watcher to exit.
func (w *Worker) watchCancel(ctx context.Context, cancel context.CancelFunc) func() {
	done := make(chan struct{})

	go func() {
		defer close(done)

		select {
		case <-w.cancelMining:
			w.evHandler("worker: runMiningOperation: MINING: CANCEL: requested")
			cancel()
		case <-ctx.Done():
		}
	}()

	return func() {
		cancel()
		<-done
	}
}
