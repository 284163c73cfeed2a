package pyq_test

import (
	"errors"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/pyq-ai/pyq-assistant/internal/platform/database"
	"github.com/pyq-ai/pyq-assistant/internal/pyq"
)

// startPostgres spins up a throwaway Postgres and returns a migrated pool.
func startPostgres(t *testing.T) *database.DB {
	t.Helper()
	ctx := t.Context()

	ctr, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("pyq"),
		tcpostgres.WithUsername("pyq"),
		tcpostgres.WithPassword("pyq"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	testcontainers.CleanupContainer(t, ctr)
	if err != nil {
		t.Fatalf("starting postgres container: %v", err)
	}

	url, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("connection string: %v", err)
	}

	db, err := database.Connect(ctx, database.Config{URL: url, MaxConns: 5, MinConns: 1})
	if err != nil {
		t.Fatalf("connecting: %v", err)
	}
	t.Cleanup(db.Close)
	return db
}

func TestPostgresStore_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	db := startPostgres(t)
	store, err := pyq.NewPostgresStore(db.Pool)
	if err != nil {
		t.Fatalf("NewPostgresStore() error = %v", err)
	}

	id, err := store.Create(pyq.Question{
		ExamID:  "gate-cs",
		Subject: "Algorithms",
		Topic:   "Sorting",
		Year:    2023,
		Body:    "What is the worst-case complexity of Quicksort?",
		Options: []string{"O(n)", "O(n^2)"},
		Answer:  "O(n^2)",
		Marks:   2,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := store.Get(id)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Subject != "Algorithms" || len(got.Options) != 2 {
		t.Errorf("Get() = %+v", got)
	}

	if _, err := store.Create(pyq.Question{
		ExamID: "gate-cs", Subject: "Operating Systems", Year: 2021,
		Body: "Define thrashing.",
	}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// Normalized text search matches regardless of case.
	res, err := store.Search(pyq.SearchQuery{ExamID: "gate-cs", Text: "QUICKSORT"})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if res.Total != 1 {
		t.Errorf("Search() Total = %d, want 1", res.Total)
	}

	// LIKE metacharacters in the query match literally, as in MemoryStore.
	if _, err := store.Create(pyq.Question{
		ExamID: "gate-cs", Subject: "Databases", Year: 2022,
		Body: "A query returning 100% of rows uses snake_case aliases.",
	}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	for text, want := range map[string]int{"100%": 1, "snake_case": 1, "100%x": 0} {
		res, err := store.Search(pyq.SearchQuery{ExamID: "gate-cs", Text: text})
		if err != nil {
			t.Fatalf("Search(%q) error = %v", text, err)
		}
		if res.Total != want {
			t.Errorf("Search(%q) Total = %d, want %d", text, res.Total, want)
		}
	}

	stats, err := store.Stats("gate-cs")
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.Total != 3 || stats.BySubject["Algorithms"] != 1 {
		t.Errorf("Stats() = %+v", stats)
	}

	got.Body = "Updated body"
	if err := store.Update(*got); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if err := store.Delete(id); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := store.Get(id); !errors.Is(err, pyq.ErrNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrNotFound", err)
	}
}
