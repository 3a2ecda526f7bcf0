// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ingestion

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// ProgressTracker is a Monitor that prints a running count of processed
// documents and vector records.
type ProgressTracker struct {
	writer    io.Writer
	total     int
	done      int
	failed    int
	records   int
	startTime time.Time
	started   bool
	mu        sync.Mutex
}

var _ Monitor = (*ProgressTracker)(nil)

// NewProgressTracker creates a tracker writing to writer (typically os.Stderr).
func NewProgressTracker(writer io.Writer) *ProgressTracker {
	return &ProgressTracker{writer: writer}
}

// Start begins tracking an ingestion of documents.
func (p *ProgressTracker) Start(documents int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.total = documents
	p.done = 0
	p.failed = 0
	p.records = 0
	p.startTime = time.Now()
	p.started = true
}

// DocumentDone records a successful document.
func (p *ProgressTracker) DocumentDone(report Report) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}
	p.done++
	p.records += report.Records
	p.report()
}

// DocumentFailed records a failed document.
func (p *ProgressTracker) DocumentFailed(Document, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}
	p.failed++
	p.report()
}

// Finish prints the final line.
func (p *ProgressTracker) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}
	p.report()
	fmt.Fprintln(p.writer)
	p.started = false
}

// Counts returns processed, failed and record totals.
func (p *ProgressTracker) Counts() (done, failed, records int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done, p.failed, p.records
}

// report prints the current progress. Must be called with lock held.
func (p *ProgressTracker) report() {
	processed := p.done + p.failed

	percentage := 0.0
	if p.total > 0 {
		percentage = float64(processed) / float64(p.total) * 100.0
	}

	rate := 0.0
	if elapsed := time.Since(p.startTime).Seconds(); elapsed > 0 {
		rate = float64(processed) / elapsed
	}

	fmt.Fprintf(p.writer, "\rIngested: %d/%d (%.1f%%), %d failed, %d records - %.1f docs/s",
		processed, p.total, percentage, p.failed, p.records, rate)
}
