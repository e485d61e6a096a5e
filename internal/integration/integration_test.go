package integration

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	"clarity-score-service/internal/app"
	"clarity-score-service/internal/domain"
	"clarity-score-service/internal/flow"
	pgloader "clarity-score-service/internal/infra/postgres"
	pgmigrations "clarity-score-service/internal/infra/postgres/migrations"
	infraredis "clarity-score-service/internal/infra/redis"
	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
)

func TestResultsRoundTripAgainstPostgresAndRedis(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	migrateAndSeed(t, ctx, pgURL, domain.DefaultQuestionnaire())

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	loader := pgloader.NewQuestionnaireLoader(pool)

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()
	questionnaires := infraredis.NewQuestionnaireRepository(redisClient, loader, 5*time.Minute)
	sessions := infraredis.NewSessionStore(redisClient, 5*time.Minute)
	service := app.NewQuizService(sessions, questionnaires, app.Options{
		PublicHost: "quiz.example.com",
		Countdown:  flow.NewCountdown(1, time.Millisecond),
	})

	if _, _, err := service.Start(ctx, domain.DefaultQuestionnaireID, "s1"); err != nil {
		t.Fatalf("start: %v", err)
	}
	for _, c := range []domain.Category{"Strategy", "Operations", "Advertising", "SEO"} {
		if _, err := service.RecordAnswer(ctx, "s1", domain.Answer{Category: c, QuestionIndex: 1, Yes: true}); err != nil {
			t.Fatalf("record %s: %v", c, err)
		}
	}
	if _, err := service.SetName(ctx, "s1", "Jane Doe"); err != nil {
		t.Fatalf("set name: %v", err)
	}
	if active, err := sessions.ActiveSessions(ctx); err != nil || active != 1 {
		t.Fatalf("expected one active session, got %d (%v)", active, err)
	}

	nav, err := service.Submit(ctx, "s1", func(int, string) {})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	results, err := service.Results(ctx, domain.DefaultQuestionnaireID, "https://quiz.example.com/results", nav.Link)
	if err != nil {
		t.Fatalf("results: %v", err)
	}
	if results.Overall != 25 || results.Snapshot.Name != "Jane Doe" {
		t.Fatalf("unexpected results overall=%d name=%q", results.Overall, results.Snapshot.Name)
	}
	if len(results.SubCategories) != 3 || results.SubCategories[2].Percent != 50 {
		t.Fatalf("expected retention at 50%%, got %+v", results.SubCategories)
	}

	service.Leave(ctx, "s1")
	if active, err := sessions.ActiveSessions(ctx); err != nil || active != 0 {
		t.Fatalf("expected session marker removed, got %d (%v)", active, err)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "clarity", "POSTGRES_PASSWORD": "claritypass", "POSTGRES_DB": "clarity"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://clarity:claritypass@%s:%s/clarity?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func migrateAndSeed(t *testing.T, ctx context.Context, dsn string, questionnaires ...domain.Questionnaire) {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := pgloader.Seed(ctx, db, questionnaires...); err != nil {
		t.Fatalf("seed: %v", err)
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
