package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"clarity-score-service/internal/domain"
)

func TestQuestionnaireRepositoryCaches(t *testing.T) {
	loader := &countingLoader{
		QuestionnaireLoader: NewStaticLoader(map[string]domain.Questionnaire{
			domain.DefaultQuestionnaireID: domain.DefaultQuestionnaire(),
		}),
	}
	repo := NewQuestionnaireRepository(loader, time.Minute)

	q, err := repo.GetQuestionnaire(context.Background(), domain.DefaultQuestionnaireID)
	if err != nil {
		t.Fatalf("get questionnaire: %v", err)
	}
	if len(q.Categories) != 8 {
		t.Fatalf("unexpected questionnaire %+v", q)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls)
	}

	if _, err := repo.GetQuestionnaire(context.Background(), domain.DefaultQuestionnaireID); err != nil {
		t.Fatalf("get questionnaire 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls)
	}
}

func TestQuestionnaireRepositoryExpires(t *testing.T) {
	loader := &countingLoader{
		QuestionnaireLoader: NewStaticLoader(map[string]domain.Questionnaire{
			domain.DefaultQuestionnaireID: domain.DefaultQuestionnaire(),
		}),
	}
	repo := NewQuestionnaireRepository(loader, time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.clock = func() time.Time { return now }

	_, _ = repo.GetQuestionnaire(context.Background(), domain.DefaultQuestionnaireID)
	now = now.Add(2 * time.Minute)
	_, _ = repo.GetQuestionnaire(context.Background(), domain.DefaultQuestionnaireID)
	if loader.calls != 2 {
		t.Fatalf("expected reload after expiry, loader calls %d", loader.calls)
	}
}

func TestQuestionnaireRepositoryNotFound(t *testing.T) {
	repo := NewQuestionnaireRepository(NewStaticLoader(nil), time.Minute)
	if _, err := repo.GetQuestionnaire(context.Background(), "missing"); !errors.Is(err, domain.ErrQuestionnaireNotFound) {
		t.Fatalf("expected ErrQuestionnaireNotFound, got %v", err)
	}
}

type countingLoader struct {
	QuestionnaireLoader
	calls int
}

func (l *countingLoader) LoadQuestionnaire(ctx context.Context, questionnaireID string) (domain.Questionnaire, error) {
	l.calls++
	return l.QuestionnaireLoader.LoadQuestionnaire(ctx, questionnaireID)
}
