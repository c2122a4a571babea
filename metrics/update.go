package metrics

import "sync/atomic"

// IngestMetrics - счетчики одного прогона, дублирующие Prometheus для итогового лога.
type IngestMetrics struct {
	PagesFetched    atomic.Int32
	ProductsWritten atomic.Int32
	ProductsFailed  atomic.Int32
	FetchErrors     atomic.Int32
}

type IngestSummary struct {
	PagesFetched    int32
	ProductsWritten int32
	ProductsFailed  int32
	FetchErrors     int32
}

func (m *IngestMetrics) Snapshot() IngestSummary {
	return IngestSummary{
		PagesFetched:    m.PagesFetched.Load(),
		ProductsWritten: m.ProductsWritten.Load(),
		ProductsFailed:  m.ProductsFailed.Load(),
		FetchErrors:     m.FetchErrors.Load(),
	}
}
