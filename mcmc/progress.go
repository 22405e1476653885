package mcmc

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/pterm/pterm"
)

// ProgressEmitter receives sampling progress events. Implementations must be
// safe for concurrent use: chains report from their own goroutines.
//
// Implementations include:
// - CLIEmitter: terminal output with a pterm progress bar
// - JSONEmitter: structured JSON lines for machine consumption
// - NopEmitter: discards everything (the default)
type ProgressEmitter interface {
	// EmitStage announces the start of a run phase.
	EmitStage(stage string, message string)

	// EmitChainProgress reports how far one chain has advanced through a
	// phase ("warmup" or "sample"), in completed iterations out of total.
	EmitChainProgress(chain int, phase string, completed, total int)

	// EmitComplete announces successful completion with summary values.
	EmitComplete(summary map[string]interface{})

	// EmitWarning surfaces a sampler-health finding that does not abort
	// the run, such as an acceptance rate far from target.
	EmitWarning(message string)
}

// TotalTracker is an optional interface for emitters that render overall
// progress and need the full iteration count up front. Sample calls SetTotal
// before launching chains when the emitter implements it.
type TotalTracker interface {
	SetTotal(total int)
}

// ProgressEvent is one structured JSON progress event.
type ProgressEvent struct {
	Type      string                 `json:"type"`      // "stage", "chain", "complete", "warning"
	Timestamp time.Time              `json:"timestamp"` // when this event occurred
	Data      map[string]interface{} `json:"data"`      // event-specific payload
}

// CLIEmitter prints progress to the terminal using pterm. A single bar
// tracks total iterations across all chains.
type CLIEmitter struct {
	mu    sync.Mutex
	total int
	bar   *pterm.ProgressbarPrinter
	seen  map[string]int // chain/phase -> completed iterations
}

// NewCLIEmitter creates a terminal progress emitter.
func NewCLIEmitter() *CLIEmitter {
	return &CLIEmitter{seen: make(map[string]int)}
}

// SetTotal implements TotalTracker.
func (e *CLIEmitter) SetTotal(total int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.total = total
}

// EmitStage prints a stage announcement.
func (e *CLIEmitter) EmitStage(stage string, message string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	pterm.Printf("%s %s\n", pterm.LightCyan(stage+":"), message)
}

// EmitChainProgress advances the shared bar by this chain's delta.
func (e *CLIEmitter) EmitChainProgress(chain int, phase string, completed, total int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.bar == nil && e.total > 0 {
		e.bar, _ = pterm.DefaultProgressbar.WithTotal(e.total).WithTitle("sampling").Start()
	}
	key := fmt.Sprintf("%d/%s", chain, phase)
	delta := completed - e.seen[key]
	e.seen[key] = completed
	if e.bar != nil && delta > 0 {
		e.bar.Add(delta)
	}
}

// EmitComplete stops the bar and prints the summary.
func (e *CLIEmitter) EmitComplete(summary map[string]interface{}) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.bar != nil {
		e.bar.Stop()
		e.bar = nil
	}
	pterm.Success.Println("sampling complete")
	for key, value := range summary {
		pterm.Printf("  %s: %v\n", key, value)
	}
}

// EmitWarning prints a warning without stopping the bar.
func (e *CLIEmitter) EmitWarning(message string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	pterm.Warning.Println(message)
}

// JSONEmitter writes structured JSON events to stdout, one per line.
type JSONEmitter struct {
	mu      sync.Mutex
	encoder *json.Encoder
}

// NewJSONEmitter creates a JSON progress emitter.
func NewJSONEmitter() *JSONEmitter {
	return &JSONEmitter{encoder: json.NewEncoder(os.Stdout)}
}

func (e *JSONEmitter) emit(event ProgressEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.encoder.Encode(event)
}

// EmitStage emits a stage event.
func (e *JSONEmitter) EmitStage(stage string, message string) {
	e.emit(ProgressEvent{
		Type:      "stage",
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"stage":   stage,
			"message": message,
		},
	})
}

// EmitChainProgress emits a chain progress event.
func (e *JSONEmitter) EmitChainProgress(chain int, phase string, completed, total int) {
	e.emit(ProgressEvent{
		Type:      "chain",
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"chain":     chain,
			"phase":     phase,
			"completed": completed,
			"total":     total,
		},
	})
}

// EmitComplete emits a completion event.
func (e *JSONEmitter) EmitComplete(summary map[string]interface{}) {
	e.emit(ProgressEvent{
		Type:      "complete",
		Timestamp: time.Now(),
		Data:      summary,
	})
}

// EmitWarning emits a warning event.
func (e *JSONEmitter) EmitWarning(message string) {
	e.emit(ProgressEvent{
		Type:      "warning",
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"message": message,
		},
	})
}

// NopEmitter discards all events.
type NopEmitter struct{}

func (NopEmitter) EmitStage(string, string)                {}
func (NopEmitter) EmitChainProgress(int, string, int, int) {}
func (NopEmitter) EmitComplete(map[string]interface{})     {}
func (NopEmitter) EmitWarning(string)                      {}
