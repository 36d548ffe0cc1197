package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/theodesde/retrohunt-app/internal/domain"
)

var (
	// ErrSuggestionInvalid indicates required suggestion fields are missing.
	ErrSuggestionInvalid = errors.New("suggestion: invalid input")
	// ErrSuggestionInFlight indicates a submission is already pending.
	ErrSuggestionInFlight = errors.New("suggestion: submission in flight")
	// ErrSuggestionRelayFailed indicates the mail relay rejected the send.
	ErrSuggestionRelayFailed = errors.New("suggestion: relay failed")
)

// SuggestionServiceDeps bundles collaborators required to construct a suggestion service.
type SuggestionServiceDeps struct {
	Relay       MailRelay
	HomeCountry string
	// ResetDelay is how long the success state is shown before the
	// lifecycle returns to idle.
	ResetDelay time.Duration
	// Schedule runs fn after d. Defaults to time.AfterFunc; tests inject a
	// synchronous hook.
	Schedule func(d time.Duration, fn func())
	Clock    func() time.Time
	Logger   LogFunc
}

const defaultSuggestionResetDelay = 2500 * time.Millisecond

type suggestionService struct {
	relay       MailRelay
	homeCountry string
	resetDelay  time.Duration
	schedule    func(time.Duration, func())
	clock       func() time.Time
	logger      LogFunc

	mu      sync.Mutex
	state   SubmissionState
	entropy *rand.Rand
}

// NewSuggestionService constructs the submission lifecycle on top of a mail relay.
func NewSuggestionService(deps SuggestionServiceDeps) (SuggestionService, error) {
	if deps.Relay == nil {
		return nil, errors.New("suggestion service: relay is required")
	}
	resetDelay := deps.ResetDelay
	if resetDelay <= 0 {
		resetDelay = defaultSuggestionResetDelay
	}
	schedule := deps.Schedule
	if schedule == nil {
		schedule = func(d time.Duration, fn func()) { time.AfterFunc(d, fn) }
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	return &suggestionService{
		relay:       deps.Relay,
		homeCountry: strings.ToUpper(strings.TrimSpace(deps.HomeCountry)),
		resetDelay:  resetDelay,
		schedule:    schedule,
		clock:       clock,
		logger:      logger,
		state:       domain.SubmissionIdle,
		entropy:     rand.New(rand.NewSource(clock().UnixNano())),
	}, nil
}

func (s *suggestionService) State() SubmissionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Submit validates the suggestion, runs the relay while the lifecycle is
// pending, and settles into success or error. Success auto-resets to idle
// after the configured delay; a relay failure resets immediately once the
// error has been returned to the caller.
func (s *suggestionService) Submit(ctx context.Context, sug Suggestion) (SubmissionReceipt, error) {
	if err := validateSuggestion(sug); err != nil {
		return SubmissionReceipt{}, err
	}

	s.mu.Lock()
	if s.state == domain.SubmissionPending {
		s.mu.Unlock()
		return SubmissionReceipt{}, ErrSuggestionInFlight
	}
	s.state = domain.SubmissionPending
	id := ulid.MustNew(ulid.Timestamp(s.clock()), s.entropy).String()
	s.mu.Unlock()

	msg := SuggestionMessage{
		Name:    strings.TrimSpace(sug.Name),
		City:    strings.TrimSpace(sug.City),
		Address: strings.TrimSpace(sug.Address),
		Tags:    strings.Join(sug.Tags, ", "),
		Note:    strings.TrimSpace(sug.Note),
		Country: s.homeCountry,
	}

	if err := s.relay.Send(ctx, msg); err != nil {
		s.mu.Lock()
		s.state = domain.SubmissionError
		s.mu.Unlock()
		s.logger(ctx, "suggestion.relay.failed", map[string]any{
			"suggestion_id": id,
			"error":         err.Error(),
		})
		s.mu.Lock()
		s.state = domain.SubmissionIdle
		s.mu.Unlock()
		return SubmissionReceipt{ID: id, State: domain.SubmissionError},
			fmt.Errorf("%w: %v", ErrSuggestionRelayFailed, err)
	}

	s.mu.Lock()
	s.state = domain.SubmissionSuccess
	s.mu.Unlock()
	s.logger(ctx, "suggestion.accepted", map[string]any{"suggestion_id": id})

	s.schedule(s.resetDelay, func() {
		s.mu.Lock()
		if s.state == domain.SubmissionSuccess {
			s.state = domain.SubmissionIdle
		}
		s.mu.Unlock()
	})

	return SubmissionReceipt{ID: id, State: domain.SubmissionSuccess}, nil
}

func validateSuggestion(sug Suggestion) error {
	missing := make([]string, 0, 3)
	if strings.TrimSpace(sug.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(sug.City) == "" {
		missing = append(missing, "city")
	}
	if strings.TrimSpace(sug.Address) == "" {
		missing = append(missing, "address")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrSuggestionInvalid, strings.Join(missing, ", "))
	}
	return nil
}
