package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/randalmurphal/researchflow/pkg/workflow"
	"github.com/randalmurphal/researchflow/pkg/workflow/checkpoint"
	"github.com/randalmurphal/researchflow/pkg/workflow/llm"
	"github.com/randalmurphal/researchflow/pkg/workflow/registry"
)

// Run statuses reported to callers.
const (
	StatusInterrupted = "interrupted"
	StatusCompleted   = "completed"
)

// ErrUnknownThread is returned when a resume names a thread with no
// stored checkpoints.
var ErrUnknownThread = errors.New("unknown or expired thread")

// Result is the transport-neutral outcome of a start or resume call.
// Interrupted runs carry the approval request; completed runs carry the
// report and the full analysis transcript.
type Result struct {
	ThreadID         string            `json:"thread_id"`
	Status           string            `json:"status"`
	Interrupt        *ApprovalRequest  `json:"interrupt,omitempty"`
	Report           string            `json:"report,omitempty"`
	AnalysisMessages []AnalysisMessage `json:"analysis_messages,omitempty"`
}

// AnalysisMessage is a serialized analysis turn.
type AnalysisMessage struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// Service maps external start/resume requests onto durable workflow runs.
// A thread id names one run; the checkpoint store makes the approval gate
// survive process restarts.
type Service struct {
	graph  *workflow.CompiledGraph[State]
	store  checkpoint.Store
	logger *slog.Logger

	// threads serializes runs per thread id. A run is a read-modify-write
	// cycle against the checkpoint store; two racing resumes would both
	// load the same pending checkpoint and consume the one approval cycle
	// twice.
	threads *registry.Registry[string, *sync.Mutex]
}

// NewService compiles the workflow for the given agent.
func NewService(a *Agent, store checkpoint.Store, logger *slog.Logger) (*Service, error) {
	graph, err := BuildGraph(a)
	if err != nil {
		return nil, fmt.Errorf("build graph: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		graph:   graph,
		store:   store,
		logger:  logger,
		threads: registry.New[string, *sync.Mutex](),
	}, nil
}

// lockThread takes the mutex for a thread id, creating it on first use,
// and returns the unlock.
func (s *Service) lockThread(threadID string) func() {
	mu := s.threads.GetOrCreate(threadID, func() *sync.Mutex { return new(sync.Mutex) })
	mu.Lock()
	return mu.Unlock
}

// NewThreadID mints a fresh thread identifier.
func NewThreadID() string {
	return uuid.New().String()
}

// Start begins a new research run for the theme under the given thread id.
// The call blocks until the run reaches the approval gate (the normal
// case), completes, or fails.
func (s *Service) Start(ctx context.Context, theme, threadID string) (*Result, error) {
	defer s.lockThread(threadID)()

	initial := State{
		ResearchMessages: []llm.Message{
			{Role: llm.RoleUser, Content: "Theme: " + theme},
		},
		LoopCount: 0,
	}

	final, err := s.graph.Run(s.workflowContext(ctx, threadID), initial,
		workflow.WithCheckpointing(s.store),
		workflow.WithRunID(threadID),
		workflow.WithRunLogger(s.logger),
	)
	return s.buildResult(threadID, final, err)
}

// Resume delivers the human decision to a suspended run and drives it
// onward. The decision is normalized here as well as in the approval
// node; both ends fail closed.
func (s *Service) Resume(ctx context.Context, decision, threadID string) (*Result, error) {
	defer s.lockThread(threadID)()

	normalized := strings.ToLower(strings.TrimSpace(decision))

	final, err := s.graph.ResumeWithValue(s.workflowContext(ctx, threadID), s.store, threadID, normalized,
		workflow.WithRunLogger(s.logger),
	)
	if errors.Is(err, workflow.ErrNoCheckpoints) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownThread, threadID)
	}
	return s.buildResult(threadID, final, err)
}

// workflowContext wraps the request context for the engine.
func (s *Service) workflowContext(ctx context.Context, threadID string) workflow.Context {
	return workflow.NewContext(ctx,
		workflow.WithLogger(s.logger),
		workflow.WithContextRunID(threadID),
	)
}

// buildResult translates a run outcome into a Result. A suspension is a
// successful outcome carrying the interrupt payload.
func (s *Service) buildResult(threadID string, final State, err error) (*Result, error) {
	if err != nil {
		var susp *workflow.Suspension
		if errors.As(err, &susp) {
			req, ok := susp.Payload.(ApprovalRequest)
			if !ok {
				return nil, fmt.Errorf("unexpected interrupt payload type %T", susp.Payload)
			}
			return &Result{
				ThreadID:  threadID,
				Status:    StatusInterrupted,
				Interrupt: &req,
			}, nil
		}
		return nil, err
	}

	analysis := make([]AnalysisMessage, 0, len(final.AnalysisMessages))
	for _, m := range final.AnalysisMessages {
		analysis = append(analysis, AnalysisMessage{Type: string(m.Role), Content: m.Content})
	}

	return &Result{
		ThreadID:         threadID,
		Status:           StatusCompleted,
		Report:           final.FinalReport,
		AnalysisMessages: analysis,
	}, nil
}
