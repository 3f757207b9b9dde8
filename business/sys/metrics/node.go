package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Node is the behavior required to report on the state of a node.
type Node interface {
	QueryChainLength() int
	QueryMempoolLength() int
	QueryKnownPeersLength() int
}

// NodeCollector reports the chain length, the pending transactions and the
// number of known peers each time the metrics are scraped.
type NodeCollector struct {
	node          Node
	chainLength   *prometheus.Desc
	mempoolLength *prometheus.Desc
	knownPeers    *prometheus.Desc
}

// NewNodeCollector constructs a collector for the specified node.
func NewNodeCollector(node Node, nodeID string) *NodeCollector {
	labels := prometheus.Labels{"node": nodeID}

	return &NodeCollector{
		node: node,
		chainLength: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "chain", "length"),
			"Number of blocks in the local chain.",
			nil,
			labels,
		),
		mempoolLength: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "mempool", "transactions"),
			"Number of transactions waiting to be mined.",
			nil,
			labels,
		),
		knownPeers: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "peers", "known"),
			"Number of registered peers.",
			nil,
			labels,
		),
	}
}

// Describe implements the prometheus.Collector interface.
func (c *NodeCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.chainLength
	ch <- c.mempoolLength
	ch <- c.knownPeers
}

// Collect implements the prometheus.Collector interface.
func (c *NodeCollector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.chainLength, prometheus.GaugeValue, float64(c.node.QueryChainLength()))
	ch <- prometheus.MustNewConstMetric(c.mempoolLength, prometheus.GaugeValue, float64(c.node.QueryMempoolLength()))
	ch <- prometheus.MustNewConstMetric(c.knownPeers, prometheus.GaugeValue, float64(c.node.QueryKnownPeersLength()))
}
