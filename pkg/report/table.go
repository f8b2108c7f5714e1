// Package report collects and formats simulation results: a run's final
// signal values, or a bench's per-configuration timings. Adapted from
// z80-optimizer's pkg/result.Table — Add/Rules becomes Add/Entries,
// and rendering moves from plain text to jedib0t/go-pretty so hdlsim's
// output reads like a real table instead of hand-aligned columns.
package report

import (
	"encoding/json"
	"io"
	"os"
	"sort"
	"sync"

	"github.com/jedib0t/go-pretty/v6/table"
)

// Entry is a single reported row: a signal's name and its value, rendered
// as a string so the table doesn't need to be generic over logic4.Value vs.
// fixed.Fixed vs. a derived bus reading.
type Entry struct {
	Signal string `json:"signal"`
	Value  string `json:"value"`
}

// Table accumulates Entries the same way z80-optimizer's result.Table
// accumulated optimization Rules: safe for concurrent Add,
// read back with a stable, sorted Entries().
type Table struct {
	mu      sync.Mutex
	entries []Entry
}

// NewTable returns an empty Table.
func NewTable() *Table {
	return &Table{}
}

// Add inserts e into the table.
func (t *Table) Add(e Entry) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = append(t.entries, e)
}

// Entries returns a copy of every recorded entry, sorted by signal name.
func (t *Table) Entries() []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	sort.Slice(out, func(i, j int) bool { return out[i].Signal < out[j].Signal })
	return out
}

// Len returns the number of recorded entries.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// WriteJSON encodes t's entries as JSON to path.
func (t *Table) WriteJSON(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(t.Entries())
}

// ReadJSON decodes entries previously written by WriteJSON back into a new
// Table.
func ReadJSON(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var entries []Entry
	if err := json.NewDecoder(f).Decode(&entries); err != nil {
		return nil, err
	}
	t := NewTable()
	t.entries = entries
	return t, nil
}

// WriteTable renders t as an ASCII table to w, titled with title.
func WriteTable(w io.Writer, title string, t *Table) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	if title != "" {
		tw.SetTitle(title)
	}
	tw.AppendHeader(table.Row{"Signal", "Value"})
	for _, e := range t.Entries() {
		tw.AppendRow(table.Row{e.Signal, e.Value})
	}
	tw.Render()
}

// BenchEntry is a single bench configuration's timing result.
type BenchEntry struct {
	Workers    int     `json:"workers"`
	Ticks      uint64  `json:"ticks"`
	Elapsed    string  `json:"elapsed"`
	TicksPerUS float64 `json:"ticks_per_us"`
}

// WriteBenchTable renders a slice of BenchEntry as an ASCII table to w.
func WriteBenchTable(w io.Writer, title string, entries []BenchEntry) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	if title != "" {
		tw.SetTitle(title)
	}
	tw.AppendHeader(table.Row{"Workers", "Ticks", "Elapsed", "Ticks/us"})
	for _, e := range entries {
		tw.AppendRow(table.Row{e.Workers, e.Ticks, e.Elapsed, e.TicksPerUS})
	}
	tw.Render()
}
