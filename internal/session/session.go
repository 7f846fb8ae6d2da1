// Package session runs the per-session command pipeline: raw text
// through classification, extraction, the confidence gate, and either
// the clarification dialogue or execution and the command log. Turns
// are strictly sequential; a new submission cancels the previous turn's
// in-flight model call. Every turn ends in a well-formed result.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"stockhand/internal/catalog"
	"stockhand/internal/clarify"
	"stockhand/internal/command"
	"stockhand/internal/executor"
	"stockhand/internal/gate"
	"stockhand/internal/history"
	"stockhand/internal/interpret"
)

// TurnType is the shape of a turn result.
type TurnType string

const (
	TurnExecuted TurnType = "executed"
	TurnClarify  TurnType = "clarify"
	TurnRejected TurnType = "rejected"
)

// TurnResult is the outcome of one submitted utterance, handed to the
// rendering collaborator.
type TurnResult struct {
	Type TurnType `json:"type"`

	// Executed turns.
	Result   *command.ExecutionResult `json:"result,omitempty"`
	LogEntry *history.Entry           `json:"log_entry,omitempty"`

	// Clarify turns.
	Prompt          string         `json:"prompt,omitempty"`
	MissingFields   []string       `json:"missing_fields,omitempty"`
	KnownParameters map[string]any `json:"known_parameters,omitempty"`

	// Rejected turns.
	Reason string `json:"reason,omitempty"`

	Debug *DebugInfo `json:"debug,omitempty"`
}

// DebugInfo is a read-only diagnostic projection of one turn.
type DebugInfo struct {
	Stage1         interpret.ClassificationResult `json:"stage1"`
	Stage2         *interpret.ExtractionResult    `json:"stage2,omitempty"`
	UsedFallback   bool                           `json:"used_fallback"`
	FallbackReason string                         `json:"fallback_reason,omitempty"`
	RawCommand     string                         `json:"raw_command"`
}

// Params wires a session.
type Params struct {
	Catalog         *catalog.Catalog
	Classifier      *interpret.Classifier
	Extractor       *interpret.Extractor
	Executor        *executor.Executor
	Thresholds      gate.Thresholds
	MaxExchanges    int
	ClarifyMaxTurns int
	ClarifyMaxAge   time.Duration
}

// Session owns one user's pipeline state: the pending command, the
// command log, and bounded conversation context.
type Session struct {
	catalog    *catalog.Catalog
	classifier *interpret.Classifier
	extractor  *interpret.Extractor
	exec       *executor.Executor
	thresholds gate.Thresholds
	clar       *clarify.Manager
	log        *history.Log

	maxExchanges int
	exchanges    []interpret.Exchange

	mu sync.Mutex

	cancelMu sync.Mutex
	cancel   context.CancelFunc
}

// New builds a session.
func New(p Params) *Session {
	maxExchanges := p.MaxExchanges
	if maxExchanges <= 0 {
		maxExchanges = 5
	}
	return &Session{
		catalog:      p.Catalog,
		classifier:   p.Classifier,
		extractor:    p.Extractor,
		exec:         p.Executor,
		thresholds:   p.Thresholds,
		clar:         clarify.NewManager(p.ClarifyMaxTurns, p.ClarifyMaxAge),
		log:          history.NewLog(),
		maxExchanges: maxExchanges,
	}
}

// Submit processes one raw utterance to a terminal outcome. A
// submission arriving while a model call is in flight cancels that
// call; turns themselves never interleave.
func (s *Session) Submit(ctx context.Context, text string) TurnResult {
	s.cancelMu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.cancelMu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	turnCtx, cancel := context.WithCancel(ctx)
	s.cancelMu.Lock()
	s.cancel = cancel
	s.cancelMu.Unlock()
	defer func() {
		cancel()
		s.cancelMu.Lock()
		s.cancel = nil
		s.cancelMu.Unlock()
	}()

	result := s.processTurn(turnCtx, strings.TrimSpace(text))
	s.remember(text, result)
	return result
}

func (s *Session) processTurn(ctx context.Context, text string) TurnResult {
	if text == "" {
		return TurnResult{Type: TurnRejected, Reason: "empty command"}
	}

	if s.clar.Pending() != nil && s.clar.Expired() {
		log.Debug().Msg("session: pending command expired, abandoning")
		s.clar.Abandon()
	}

	stage1 := s.classifier.Classify(ctx, text, s.exchanges)
	debug := &DebugInfo{
		Stage1:         stage1,
		UsedFallback:   stage1.UsedFallback,
		FallbackReason: stage1.FallbackReason,
		RawCommand:     text,
	}
	if superseded(ctx) {
		return TurnResult{Type: TurnRejected, Reason: "superseded by a newer command", Debug: debug}
	}

	if pending := s.clar.Pending(); pending != nil {
		if s.supersedes(stage1, pending) {
			log.Debug().Str("pending", pending.Action).Str("new", stage1.Action).
				Msg("session: pending command superseded")
			s.clar.Abandon()
		} else {
			return s.continuePending(ctx, text, pending, debug)
		}
	}

	return s.freshCommand(ctx, text, stage1, debug)
}

// supersedes reports whether stage1 confidently names a different
// operation than the open dialogue. The user changed their mind, so
// merging would cross-contaminate unrelated commands.
func (s *Session) supersedes(stage1 interpret.ClassificationResult, pending *clarify.PendingCommand) bool {
	if stage1.Action == interpret.ActionNone || stage1.Action == interpret.ActionClarify {
		return false
	}
	return stage1.Action != pending.Action && stage1.Confidence >= s.thresholds.Stage1
}

func (s *Session) freshCommand(ctx context.Context, text string, stage1 interpret.ClassificationResult, debug *DebugInfo) TurnResult {
	var stage2 interpret.ExtractionResult
	spec, isTool := s.catalog.Lookup(stage1.Action)
	if isTool {
		stage2 = s.extractor.Extract(ctx, text, spec, nil)
		debug.Stage2 = &stage2
		if stage2.UsedFallback {
			debug.UsedFallback = true
			debug.FallbackReason = stage2.FallbackReason
		}
		if superseded(ctx) {
			return TurnResult{Type: TurnRejected, Reason: "superseded by a newer command", Debug: debug}
		}
	}

	decision := gate.Decide(s.thresholds, stage1, stage2)
	switch decision.Route {
	case gate.RouteExecute:
		return s.execute(ctx, text, command.ToolCall{Action: stage1.Action, Parameters: stage2.Parameters}, debug)
	case gate.RouteClarify:
		if !isTool {
			// Nothing to collect yet; ask the user to restate.
			return TurnResult{Type: TurnClarify, Prompt: decision.Reason, Debug: debug}
		}
		p := s.clar.Begin(stage1.Action, stage2.Parameters, stage2.MissingRequired)
		return TurnResult{
			Type:            TurnClarify,
			Prompt:          clarify.Prompt(spec, p.Collected, p.MissingRequired),
			MissingFields:   p.MissingRequired,
			KnownParameters: p.Collected,
			Debug:           debug,
		}
	default:
		return TurnResult{Type: TurnRejected, Reason: decision.Reason, Debug: debug}
	}
}

// continuePending treats the utterance as an answer to the open
// clarification question and merges it into the pending command.
func (s *Session) continuePending(ctx context.Context, text string, pending *clarify.PendingCommand, debug *DebugInfo) TurnResult {
	spec, ok := s.catalog.Lookup(pending.Action)
	if !ok {
		s.clar.Abandon()
		return TurnResult{Type: TurnRejected, Reason: "pending command no longer valid", Debug: debug}
	}

	stage2 := s.extractor.Extract(ctx, text, spec, pending.Collected)
	debug.Stage2 = &stage2
	if stage2.UsedFallback {
		debug.UsedFallback = true
		debug.FallbackReason = stage2.FallbackReason
	}
	if superseded(ctx) {
		return TurnResult{Type: TurnRejected, Reason: "superseded by a newer command", Debug: debug}
	}

	p := s.clar.Merge(stage2.Parameters, stage2.MissingRequired)

	if !stage2.UsedFallback && len(stage2.MissingRequired) == 0 && stage2.Confidence >= s.thresholds.Stage2 {
		done := s.clar.Complete()
		return s.execute(ctx, text, command.ToolCall{Action: done.Action, Parameters: done.Collected}, debug)
	}

	if s.clar.Expired() {
		s.clar.Abandon()
		return TurnResult{
			Type:   TurnRejected,
			Reason: "clarification abandoned; please restate the full command",
			Debug:  debug,
		}
	}

	return TurnResult{
		Type:            TurnClarify,
		Prompt:          clarify.Prompt(spec, p.Collected, p.MissingRequired),
		MissingFields:   p.MissingRequired,
		KnownParameters: p.Collected,
		Debug:           debug,
	}
}

func (s *Session) execute(ctx context.Context, raw string, call command.ToolCall, debug *DebugInfo) TurnResult {
	out := s.exec.Execute(ctx, call)
	entry := history.NewEntry(raw, call, out)
	s.log.Append(entry)

	if !out.Result.Success {
		return TurnResult{
			Type:     TurnRejected,
			Reason:   out.Result.Message,
			Result:   &out.Result,
			LogEntry: &entry,
			Debug:    debug,
		}
	}
	return TurnResult{
		Type:     TurnExecuted,
		Result:   &out.Result,
		LogEntry: &entry,
		Debug:    debug,
	}
}

// Undo reverts the most recent reversible command as a new turn.
func (s *Session) Undo(ctx context.Context) TurnResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, err := s.log.UndoLast(ctx, s.exec)
	if errors.Is(err, history.ErrNothingToUndo) {
		return TurnResult{Type: TurnRejected, Reason: "nothing to undo"}
	}
	result := command.ExecutionResult{Success: entry.Success, Message: entry.ResultSummary}
	if !entry.Success {
		result.ErrorKind = command.KindExecution
		return TurnResult{Type: TurnRejected, Reason: entry.ResultSummary, Result: &result, LogEntry: &entry}
	}
	return TurnResult{Type: TurnExecuted, Result: &result, LogEntry: &entry}
}

// History returns the session's command log, oldest first.
func (s *Session) History() []history.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.log.Entries()
}

func superseded(ctx context.Context) bool {
	return errors.Is(ctx.Err(), context.Canceled)
}

// remember appends the turn to the bounded conversation context used
// for reference resolution in later classifications.
func (s *Session) remember(text string, result TurnResult) {
	var outcome string
	switch result.Type {
	case TurnExecuted:
		outcome = fmt.Sprintf("executed %s: %s", result.LogEntry.Action, result.Result.Message)
	case TurnClarify:
		outcome = "asked: " + result.Prompt
	default:
		outcome = "rejected: " + result.Reason
	}
	s.exchanges = append(s.exchanges, interpret.Exchange{UserText: text, Outcome: outcome})
	if len(s.exchanges) > s.maxExchanges {
		s.exchanges = s.exchanges[len(s.exchanges)-s.maxExchanges:]
	}
}
