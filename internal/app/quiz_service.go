package app

import (
	"context"

	"clarity-score-service/internal/domain"
	"clarity-score-service/internal/flow"
	"clarity-score-service/internal/scoring"
	"clarity-score-service/internal/share"
	"go.uber.org/zap"
)

// SessionRepository abstracts how collector sessions are held (in-memory, Redis, etc).
type SessionRepository interface {
	GetOrCreate(sessionID string, create func(id string) *Session) *Session
	Get(sessionID string) (*Session, bool)
	DeleteIfEmpty(sessionID string)
}

// QuestionnaireRepository loads questionnaire layouts (from cache/backing store).
type QuestionnaireRepository interface {
	GetQuestionnaire(ctx context.Context, questionnaireID string) (domain.Questionnaire, error)
}

// DefaultExportFilename names the screenshot the results page downloads.
const DefaultExportFilename = "ClarityScore Report"

// Options tunes the service; zero values fall back to the deployed defaults.
type Options struct {
	ResultsPath    string
	PublicHost     string
	Countdown      flow.Countdown
	Share          *share.Builder
	ExportFilename string
	RingRadius     float64
	Rand           scoring.Intner
	Logger         *zap.Logger
}

// QuizService contains the quiz and results use cases.
type QuizService struct {
	sessions       SessionRepository
	questionnaires QuestionnaireRepository
	opts           Options
	logger         *zap.Logger
}

func NewQuizService(sessions SessionRepository, questionnaires QuestionnaireRepository, opts Options) *QuizService {
	if opts.ResultsPath == "" {
		opts.ResultsPath = scoring.DefaultResultsPath
	}
	if opts.Countdown.From <= 0 || opts.Countdown.Interval <= 0 {
		opts.Countdown = flow.NewCountdown(opts.Countdown.From, opts.Countdown.Interval)
	}
	if opts.Share == nil {
		opts.Share = share.NewBuilder("")
	}
	if opts.ExportFilename == "" {
		opts.ExportFilename = DefaultExportFilename
	}
	if opts.RingRadius <= 0 {
		opts.RingRadius = scoring.DefaultRingRadius
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &QuizService{
		sessions:       sessions,
		questionnaires: questionnaires,
		opts:           opts,
		logger:         opts.Logger,
	}
}

// Questionnaire returns the layout the quiz front end renders.
func (s *QuizService) Questionnaire(ctx context.Context, questionnaireID string) (domain.Questionnaire, error) {
	return s.questionnaires.GetQuestionnaire(ctx, questionnaireID)
}

// Start attaches a client to a session, creating it on first use.
func (s *QuizService) Start(ctx context.Context, questionnaireID, sessionID string) (domain.Navigation, domain.StepState, error) {
	q, err := s.questionnaires.GetQuestionnaire(ctx, questionnaireID)
	if err != nil {
		return domain.Navigation{}, domain.StepState{}, err
	}

	session := s.sessions.GetOrCreate(sessionID, func(id string) *Session {
		return NewSession(id, q, s.opts.ResultsPath)
	})
	nav, step := session.join()
	return s.withLink(nav), step, nil
}

// RecordAnswer stores a yes/no answer and returns the republished navigation.
func (s *QuizService) RecordAnswer(_ context.Context, sessionID string, answer domain.Answer) (domain.Navigation, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.Navigation{}, domain.ErrSessionNotFound
	}
	nav, err := session.recordAnswer(answer)
	if err != nil {
		return domain.Navigation{}, err
	}
	s.warnUnclamped(nav)
	return s.withLink(nav), nil
}

// SetName stores the respondent name.
func (s *QuizService) SetName(_ context.Context, sessionID, name string) (domain.Navigation, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.Navigation{}, domain.ErrSessionNotFound
	}
	return s.withLink(session.setName(name)), nil
}

// Step moves the respondent one step forward or back.
func (s *QuizService) Step(_ context.Context, sessionID string, forward bool) (domain.StepState, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.StepState{}, domain.ErrSessionNotFound
	}
	return session.step(forward), nil
}

// ValidateContact checks the lead form; the name field doubles as the respondent name.
func (s *QuizService) ValidateContact(_ context.Context, sessionID string, form flow.ContactForm) (flow.Validation, domain.Navigation, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return flow.Validation{}, domain.Navigation{}, domain.ErrSessionNotFound
	}
	nav := session.setName(form.Name)
	return form.Validate(), s.withLink(nav), nil
}

// Subscribe returns a channel that receives navigation updates for a session.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *QuizService) Subscribe(_ context.Context, sessionID string) (<-chan domain.Navigation, func(), error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, nil, domain.ErrSessionNotFound
	}
	ch, cancel := session.subscribe()
	return ch, cancel, nil
}

// Submit runs the redirect countdown and returns the final navigation target.
// Cancelling ctx stops the countdown and returns its error.
func (s *QuizService) Submit(ctx context.Context, sessionID string, tick func(remaining int, label string)) (domain.Navigation, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.Navigation{}, domain.ErrSessionNotFound
	}
	if err := s.opts.Countdown.Run(ctx, tick); err != nil {
		return domain.Navigation{}, err
	}
	nav := s.withLink(session.navigation())
	s.logger.Info("quiz submitted",
		zap.String("session", sessionID),
		zap.String("questionnaire", session.QuestionnaireID()),
		zap.String("url", nav.URL),
	)
	return nav, nil
}

// Leave detaches a client and drops the session once nobody is attached.
func (s *QuizService) Leave(_ context.Context, sessionID string) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return
	}
	session.leave()
	if session.IsEmpty() {
		s.sessions.DeleteIfEmpty(sessionID)
	}
}

// Navigate runs a one-off collector over answers without keeping a session.
func (s *QuizService) Navigate(ctx context.Context, questionnaireID, name string, answers []domain.Answer) (domain.Navigation, error) {
	q, err := s.questionnaires.GetQuestionnaire(ctx, questionnaireID)
	if err != nil {
		return domain.Navigation{}, err
	}
	c := scoring.NewCollector(s.opts.ResultsPath, q.Questions)
	for _, a := range answers {
		if err := c.RecordAnswer(a.Category, a.QuestionIndex, a.Yes); err != nil {
			return domain.Navigation{}, err
		}
	}
	c.SetName(name)
	nav := c.Navigation()
	s.warnUnclamped(nav)
	return s.withLink(nav), nil
}

// Results decodes a results query into every view the results page renders.
// base is the scheme, host and path the share URL is built on.
func (s *QuizService) Results(ctx context.Context, questionnaireID, base, rawQuery string) (domain.Results, error) {
	q, err := s.questionnaires.GetQuestionnaire(ctx, questionnaireID)
	if err != nil {
		return domain.Results{}, err
	}

	decoderOpts := []scoring.Option{scoring.WithLogger(s.logger)}
	if s.opts.Rand != nil {
		decoderOpts = append(decoderOpts, scoring.WithRand(s.opts.Rand))
	}
	snapshot := scoring.NewDecoder(q.Categories, decoderOpts...).ParseSnapshot(rawQuery)

	aggregates := scoring.SubCategoryAggregates(snapshot, q.Groups)
	overall := scoring.OverallPercentage(snapshot)
	shareURL := scoring.BuildShareURL(base, rawQuery, snapshot)

	return domain.Results{
		QuestionnaireID: q.ID,
		Snapshot:        snapshot,
		SubCategories:   aggregates,
		Overall:         overall,
		DialRotation:    scoring.DialRotation(overall),
		Rings:           scoring.Rings(aggregates, s.opts.RingRadius),
		ServiceCards:    scoring.ServiceCards(snapshot),
		Chart:           scoring.Chart(snapshot),
		ShareURL:        shareURL,
		ShareLinks:      s.opts.Share.Links(shareURL),
		Export:          domain.Export{Filename: s.opts.ExportFilename},
	}, nil
}

// ShareLink builds a single share target for an already formed results URL.
func (s *QuizService) ShareLink(platform, url string) (domain.ShareLink, error) {
	return s.opts.Share.Link(platform, url)
}

// ResultsBase returns the absolute results page URL when a public host is configured.
func (s *QuizService) ResultsBase() string {
	if s.opts.PublicHost == "" {
		return s.opts.ResultsPath
	}
	return "https://" + s.opts.PublicHost + s.opts.ResultsPath
}

func (s *QuizService) withLink(nav domain.Navigation) domain.Navigation {
	if s.opts.PublicHost != "" {
		nav.Link = "https://" + s.opts.PublicHost + nav.URL
	}
	return nav
}

// warnUnclamped flags totals the results page will clamp on read; the collector
// emits them unclamped.
func (s *QuizService) warnUnclamped(nav domain.Navigation) {
	for _, t := range nav.Totals {
		if t.Score > scoring.MaxCategoryScore {
			s.logger.Warn("category total exceeds results range",
				zap.String("category", string(t.Category)),
				zap.Int("total", t.Score),
				zap.Int("max", scoring.MaxCategoryScore),
			)
		}
	}
}
