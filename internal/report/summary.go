package report

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
)

// Summary accumulates run-wide counters across file pipelines. Safe for
// concurrent Add when files are processed in parallel.
type Summary struct {
	mu      sync.Mutex
	counts  map[Status]int
	files   int
	bytes   uint64
	started time.Time
}

// NewSummary starts an empty summary clocked from now.
func NewSummary() *Summary {
	return &Summary{
		counts:  make(map[Status]int),
		started: time.Now(),
	}
}

// Add folds one finished record and its source size into the totals.
func (s *Summary) Add(r *Record, size int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts[r.Status]++
	s.files++
	if size > 0 {
		s.bytes += uint64(size)
	}
}

// Count returns the number of records with the given status.
func (s *Summary) Count(st Status) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[st]
}

// Files returns the total number of processed files.
func (s *Summary) Files() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.files
}

// FormatText renders the end-of-run report, including the status legend so
// log readers do not need the source to decode the column.
func (s *Summary) FormatText() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var b strings.Builder
	elapsed := time.Since(s.started).Round(time.Second)

	fmt.Fprintf(&b, "Processed %s file", humanize.Comma(int64(s.files)))
	if s.files != 1 {
		b.WriteString("s")
	}
	fmt.Fprintf(&b, " (%s) in %s\n\n", humanize.Bytes(s.bytes), elapsed)

	for _, st := range Statuses {
		fmt.Fprintf(&b, "  %-16s %6s  %s\n",
			st.Status, humanize.Comma(int64(s.counts[st.Status])), st.Meaning)
	}
	return b.String()
}
