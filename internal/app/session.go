package app

import (
	"sync"

	"clarity-score-service/internal/domain"
	"clarity-score-service/internal/flow"
	"clarity-score-service/internal/scoring"
)

// Session is one respondent's in-memory quiz state. Answers never leave it;
// only the navigation URL built from them is published.
type Session struct {
	id              string
	questionnaireID string

	mu          sync.Mutex
	collector   *scoring.Collector
	stepper     *flow.Stepper
	clients     int
	latest      domain.Navigation
	subscribers map[chan domain.Navigation]struct{}
}

// NewSession is exported for infrastructure layers that create sessions on demand.
func NewSession(id string, q domain.Questionnaire, resultsPath string) *Session {
	s := &Session{
		id:              id,
		questionnaireID: q.ID,
		collector:       scoring.NewCollector(resultsPath, q.Questions),
		stepper:         flow.NewStepper(q.StepCount()),
		subscribers:     make(map[chan domain.Navigation]struct{}),
	}
	s.collector.OnChange(func(nav domain.Navigation) {
		nav.SessionID = s.id
		s.latest = nav
		s.broadcastLocked(nav)
	})
	s.latest = s.collector.Navigation()
	s.latest.SessionID = id
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// QuestionnaireID returns the questionnaire the session was started with.
func (s *Session) QuestionnaireID() string {
	return s.questionnaireID
}

// IsEmpty reports whether no client is attached.
func (s *Session) IsEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clients == 0
}

func (s *Session) join() (domain.Navigation, domain.StepState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients++
	return s.latest, s.stepper.State()
}

func (s *Session) leave() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.clients > 0 {
		s.clients--
	}
}

func (s *Session) recordAnswer(a domain.Answer) (domain.Navigation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.collector.RecordAnswer(a.Category, a.QuestionIndex, a.Yes); err != nil {
		return domain.Navigation{}, err
	}
	return s.latest, nil
}

func (s *Session) setName(name string) domain.Navigation {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.collector.Name() != name {
		s.collector.SetName(name)
	}
	return s.latest
}

func (s *Session) step(forward bool) domain.StepState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if forward {
		return s.stepper.Next()
	}
	return s.stepper.Prev()
}

func (s *Session) navigation() domain.Navigation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest
}

func (s *Session) subscribe() (<-chan domain.Navigation, func()) {
	ch := make(chan domain.Navigation, 8)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	initial := s.latest
	s.mu.Unlock()

	ch <- initial

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *Session) broadcastLocked(nav domain.Navigation) {
	for ch := range s.subscribers {
		select {
		case ch <- nav:
		default:
			// Drop the stale update so a slow reader never blocks answer recording.
			select {
			case <-ch:
			default:
			}
			ch <- nav
		}
	}
}
