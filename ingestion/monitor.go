package ingestion

// Monitor observes an Ingest call. DocumentDone and DocumentFailed are
// called from worker goroutines and must be safe for concurrent use.
type Monitor interface {
	Start(documents int)
	DocumentDone(report Report)
	DocumentFailed(doc Document, err error)
	Finish()
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (noopMonitor) Start(int)                      {}
func (noopMonitor) DocumentDone(Report)            {}
func (noopMonitor) DocumentFailed(Document, error) {}
func (noopMonitor) Finish()                        {}
