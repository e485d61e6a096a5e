package http

import (
	"net/http"
	"testing"
	"time"

	"clarity-score-service/internal/app"
	"clarity-score-service/internal/domain"
	"clarity-score-service/internal/flow"
	"clarity-score-service/internal/infra/memory"
	"go.uber.org/zap"
)

type fixedRand int

func (f fixedRand) Intn(n int) int { return int(f) % n }

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := zap.NewNop()
	quizRepo := memory.NewQuestionnaireRepository(memory.NewStaticLoader(map[string]domain.Questionnaire{
		domain.DefaultQuestionnaireID: domain.DefaultQuestionnaire(),
	}), time.Minute)
	sessions := memory.NewSessionStore()
	service := app.NewQuizService(sessions, quizRepo, app.Options{
		PublicHost: "quiz.example.com",
		Countdown:  flow.NewCountdown(2, time.Millisecond),
		Rand:       fixedRand(1),
		Logger:     logger,
	})
	api := NewAPI(service, RouterConfig{Sessions: sessions}, logger)
	return NewRouter(api, NewWSHandler(service, "", logger))
}
