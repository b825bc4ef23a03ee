package models

import (
	"fmt"
	"strings"
)

// Origin records which path produced a print job.
type Origin string

const (
	OriginPush   Origin = "push"   // live socket event
	OriginPoll   Origin = "poll"   // backlog fetch
	OriginManual Origin = "manual" // operator test print
)

// OrderLine is one item to print. Immutable once constructed.
type OrderLine struct {
	Name     string
	Quantity int
	Options  string
	Note     string
	SourceID string
}

// PrintJob is one unit of print work. Created by normalization on ingest,
// consumed exactly once by the queue drainer; never re-enqueued.
type PrintJob struct {
	// IDs holds every backend identifier this job represents, so a
	// single mark-printed call can cover all of them.
	IDs   []string
	Table string

	// Lines is the structured item list; LegacyText is the free-text
	// fallback older producers send. One of the two carries the content.
	Lines      []OrderLine
	LegacyText string

	Timestamp       string
	Sender          string
	DeliveryAddress string
	Deadline        string
	Operator        string

	ShouldMarkPrinted bool
	Origin            Origin
}

// HasContent reports whether the job has anything renderable.
func (j PrintJob) HasContent() bool {
	return len(j.Lines) > 0 || strings.TrimSpace(j.LegacyText) != ""
}

// Summary renders a short "2x Caipirinha, 1x Chopp" description for logs.
func (j PrintJob) Summary() string {
	if len(j.Lines) == 0 {
		if j.LegacyText != "" {
			return "texto livre"
		}
		return ""
	}
	parts := make([]string, 0, len(j.Lines))
	for _, line := range j.Lines {
		qty := line.Quantity
		if qty < 1 {
			qty = 1
		}
		parts = append(parts, strings.TrimSpace(fmt.Sprintf("%dx %s", qty, line.Name)))
	}
	return strings.Join(parts, ", ")
}
