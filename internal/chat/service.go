package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"

	"github.com/olsonja88/ICS499-Bears/internal/auth"
	"github.com/olsonja88/ICS499-Bears/internal/metrics"
	"github.com/olsonja88/ICS499-Bears/internal/mutation"
)

// ErrEmptyMessage is returned when a request carries no user message.
var ErrEmptyMessage = errors.New("empty message")

// ProviderUnavailableReply is the degraded answer when the completion
// provider cannot be reached. The conversation stays usable; the turn is
// still recorded.
const ProviderUnavailableReply = "I'm having trouble reaching my knowledge source right now. Please try again in a moment."

// Completer produces an assistant reply for an assembled prompt.
type Completer interface {
	Complete(ctx context.Context, messages []llms.MessageContent) (string, error)
}

// StatementExecutor applies an ordered mutation plan to the store.
type StatementExecutor interface {
	Execute(ctx context.Context, statements []mutation.Statement) []mutation.Outcome
}

// Service runs the conversation pipeline for a single ask: assemble the
// prompt, obtain a completion, extract and gate mutations, execute them,
// and compose the reply.
type Service struct {
	completer Completer
	executor  StatementExecutor
	sessions  *SessionStore
	metrics   *metrics.Collector
	timeout   time.Duration
	logger    *slog.Logger
}

func NewService(
	completer Completer,
	executor StatementExecutor,
	sessions *SessionStore,
	collector *metrics.Collector,
	timeout time.Duration,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		completer: completer,
		executor:  executor,
		sessions:  sessions,
		metrics:   collector,
		timeout:   timeout,
		logger:    logger,
	}
}

// AskInput is one conversational request.
type AskInput struct {
	Identity   auth.Identity
	SessionKey string
	Message    string

	// History, when non-nil, is the client-supplied conversation and is
	// used instead of the server-side session. Clients that manage their
	// own history keep working without sessions.
	History []Turn
}

// AskOutput is the composed result of one ask.
type AskOutput struct {
	Reply    string
	History  []Turn
	Outcomes []mutation.Outcome
}

// Ask runs one turn of the conversation. Provider failures degrade to a
// textual reply rather than an error; only an empty message is rejected.
func (s *Service) Ask(ctx context.Context, in AskInput) (AskOutput, error) {
	message := strings.TrimSpace(in.Message)
	if message == "" {
		return AskOutput{}, ErrEmptyMessage
	}

	history := in.History
	if history == nil {
		history = s.sessions.History(in.SessionKey)
	}

	reply := s.complete(ctx, in.Identity.Role, history, message)

	var outcomes []mutation.Outcome
	statements := mutation.Extract(reply)
	if mutation.HasExecutable(statements) {
		if in.Identity.Role != auth.RoleAdmin {
			s.logger.Warn("non-admin reply contained executable statements, refusing",
				"subject", in.Identity.Subject, "statements", len(statements))
			reply = RefusalMutation
		} else {
			outcomes = s.execute(ctx, statements)
			reply = composeReply(reply, outcomes)
		}
	}

	turns := []Turn{
		{Speaker: SpeakerUser, Text: message},
		{Speaker: SpeakerAssistant, Text: reply},
	}
	// Inline history bypasses the store for reads only. A request that
	// names a session still gets its exchange recorded, so the session
	// survives a client restart.
	if in.SessionKey != "" {
		s.sessions.Append(in.SessionKey, turns...)
	}

	return AskOutput{
		Reply:    reply,
		History:  append(history, turns...),
		Outcomes: outcomes,
	}, nil
}

func (s *Service) complete(ctx context.Context, role auth.Role, history []Turn, message string) string {
	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	reply, err := s.completer.Complete(cctx, AssemblePrompt(role, history, message))
	if s.metrics != nil {
		s.metrics.RecordTiming(metrics.OpCompletion, time.Since(start), err != nil)
	}
	if err != nil {
		s.logger.Error("completion failed", "error", err)
		return ProviderUnavailableReply
	}
	return reply
}

func (s *Service) execute(ctx context.Context, statements []mutation.Statement) []mutation.Outcome {
	start := time.Now()
	outcomes := s.executor.Execute(ctx, mutation.Plan(statements))

	var executed, skipped, failed int64
	for _, o := range outcomes {
		switch o.Status {
		case mutation.StatusExecuted:
			executed++
		case mutation.StatusSkippedDuplicate:
			skipped++
		case mutation.StatusFailed:
			failed++
		}
	}
	if s.metrics != nil {
		s.metrics.RecordTiming(metrics.OpMutation, time.Since(start), failed > 0)
		s.metrics.RecordStatements(executed, skipped, failed)
	}
	return outcomes
}

// composeReply appends a summary of what actually happened to each
// statement to the assistant reply. The reply keeps the generated SQL so
// the admin can see exactly what ran.
func composeReply(raw string, outcomes []mutation.Outcome) string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(raw))
	b.WriteString("\n\nDatabase changes:")
	for _, o := range outcomes {
		b.WriteString("\n- ")
		b.WriteString(summarizeOutcome(o))
	}
	return b.String()
}

func summarizeOutcome(o mutation.Outcome) string {
	label := statementLabel(o.Statement)
	switch o.Status {
	case mutation.StatusExecuted:
		if o.Detail == "already present" {
			return label + ": already present"
		}
		return label + ": inserted"
	case mutation.StatusSkippedDuplicate:
		return fmt.Sprintf("%s: skipped, %s", label, o.Detail)
	default:
		return fmt.Sprintf("%s: failed, %s", label, o.Detail)
	}
}

func statementLabel(stmt mutation.Statement) string {
	switch stmt.Kind {
	case mutation.KindCategoryInsert:
		return "category"
	case mutation.KindCountryInsert:
		return "country"
	case mutation.KindDanceInsert:
		if stmt.SemanticKey != "" {
			return fmt.Sprintf("dance %q", stmt.SemanticKey)
		}
		return "dance"
	default:
		return "statement"
	}
}
