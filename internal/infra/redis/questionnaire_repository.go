package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"clarity-score-service/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// QuestionnaireLoader fetches questionnaire layouts from a backing store (e.g., Postgres).
type QuestionnaireLoader interface {
	LoadQuestionnaire(ctx context.Context, questionnaireID string) (domain.Questionnaire, error)
}

// QuestionnaireRepository caches questionnaire layouts in a Redis hash and falls back to a loader on cache miss.
// Layout is stored as: HSET questionnaire:{id} categories '["SEO","Social"]'
// questions '[{"category":"SEO","index":1}]' groups '[{"label":"Reach","members":["SEO"]}]' steps 3
type QuestionnaireRepository struct {
	client *redis.Client
	loader QuestionnaireLoader
	ttl    time.Duration
	sf     singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewQuestionnaireRepository(client *redis.Client, loader QuestionnaireLoader, ttl time.Duration) *QuestionnaireRepository {
	return &QuestionnaireRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *QuestionnaireRepository) GetQuestionnaire(ctx context.Context, questionnaireID string) (domain.Questionnaire, error) {
	key := r.key(questionnaireID)

	if fields, err := r.client.HGetAll(ctx, key).Result(); err == nil && len(fields) > 0 {
		if q, ok := buildQuestionnaireFromCache(questionnaireID, fields); ok {
			return q, nil
		}
	}

	result, err, _ := r.sf.Do(questionnaireID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if fields, err := r.client.HGetAll(ctx, key).Result(); err == nil && len(fields) > 0 {
			if q, ok := buildQuestionnaireFromCache(questionnaireID, fields); ok {
				return q, nil
			}
		}

		q, err := r.loader.LoadQuestionnaire(ctx, questionnaireID)
		if err != nil {
			return domain.Questionnaire{}, err
		}

		fields, err := layoutFields(q)
		if err != nil {
			return q, nil
		}
		ttl := r.ttlWithJitter()
		pipe := r.client.Pipeline()
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, fields)
		if ttl > 0 {
			pipe.Expire(ctx, key, ttl)
		}
		_, _ = pipe.Exec(ctx)

		return q, nil
	})
	if err != nil {
		return domain.Questionnaire{}, err
	}
	return result.(domain.Questionnaire), nil
}

func (r *QuestionnaireRepository) key(questionnaireID string) string {
	return "questionnaire:" + questionnaireID
}

func layoutFields(q domain.Questionnaire) (map[string]interface{}, error) {
	fields := map[string]interface{}{"steps": q.Steps}
	for name, v := range map[string]interface{}{
		"categories": q.Categories,
		"questions":  q.Questions,
		"groups":     q.Groups,
	} {
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", name, err)
		}
		fields[name] = string(data)
	}
	return fields, nil
}

// buildQuestionnaireFromCache restores the layout. A hash that does not decode
// into a valid questionnaire is reported as a miss so the loader repopulates it.
func buildQuestionnaireFromCache(questionnaireID string, fields map[string]string) (domain.Questionnaire, bool) {
	q := domain.Questionnaire{ID: questionnaireID}
	if err := json.Unmarshal([]byte(fields["categories"]), &q.Categories); err != nil {
		return domain.Questionnaire{}, false
	}
	if err := json.Unmarshal([]byte(fields["questions"]), &q.Questions); err != nil {
		return domain.Questionnaire{}, false
	}
	if err := json.Unmarshal([]byte(fields["groups"]), &q.Groups); err != nil {
		return domain.Questionnaire{}, false
	}
	if steps, err := strconv.Atoi(fields["steps"]); err == nil {
		q.Steps = steps
	}
	if q.Validate() != nil {
		return domain.Questionnaire{}, false
	}
	return q, true
}

func (r *QuestionnaireRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
