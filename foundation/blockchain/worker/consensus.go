package worker

// consensusOperations resolves consensus with the known peers on startup
// and then on every tick.
func (w *Worker) consensusOperations() {
	w.evHandler("worker: consensusOperations: G started")
	defer w.evHandler("worker: consensusOperations: G completed")

	if w.ticker == nil {
		<-w.shut
		w.evHandler("worker: consensusOperations: received shut signal")
		return
	}

	w.runConsensusOperation()

	for {
		select {
		case <-w.ticker.C:
			if !w.isShutdown() {
				w.runConsensusOperation()
			}
		case <-w.shut:
			w.evHandler("worker: consensusOperations: received shut signal")
			return
		}
	}
}

// runConsensusOperation replaces the local chain with a longer valid chain
// from the known peers if one exists.
func (w *Worker) runConsensusOperation() {
	w.evHandler("worker: runConsensusOperation: started")
	defer w.evHandler("worker: runConsensusOperation: completed")

	if len(w.state.RetrieveKnownPeers()) == 0 {
		return
	}

	replaced, chain, err := w.state.ResolveConsensus(w.ctx)
	if err != nil {
		w.evHandler("worker: runConsensusOperation: ERROR: %s", err)
		return
	}

	w.evHandler("worker: runConsensusOperation: replaced[%t]: length[%d]", replaced, len(chain))
}
