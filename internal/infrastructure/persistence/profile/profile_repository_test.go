package profile

import (
	"path/filepath"
	"testing"

	"github.com/AtRiskMedia/cutout-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/cutout-go/internal/infrastructure/persistence/database"
)

func newRepo(t *testing.T) *SQLProfileRepository {
	t.Helper()
	logger := logging.NewDiscardLogger()
	db, err := database.Open(database.Options{
		Driver: database.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "profiles.db"),
	}, logger)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewSQLProfileRepository(db, logger)
}

func TestFindByIDMissing(t *testing.T) {
	repo := newRepo(t)
	p, err := repo.FindByID("nobody")
	if err != nil || p != nil {
		t.Fatalf("FindByID = %v, %v; want nil, nil", p, err)
	}
}

func TestEnsureIsIdempotent(t *testing.T) {
	repo := newRepo(t)

	first, err := repo.Ensure("p1")
	if err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	if first.ImagesGenerated != 0 || first.Paid {
		t.Fatalf("new profile = %+v", first)
	}

	if err := repo.IncrementImagesGenerated("p1"); err != nil {
		t.Fatalf("Increment: %v", err)
	}
	again, err := repo.Ensure("p1")
	if err != nil {
		t.Fatalf("Ensure again: %v", err)
	}
	if again.ImagesGenerated != 1 {
		t.Fatalf("Ensure reset the counter: %+v", again)
	}
	if _, err := repo.Ensure(""); err == nil {
		t.Fatalf("empty id accepted")
	}
}

func TestQuotaLifecycle(t *testing.T) {
	repo := newRepo(t)
	if _, err := repo.Ensure("p1"); err != nil {
		t.Fatalf("Ensure: %v", err)
	}

	for i := 0; i < 2; i++ {
		p, _ := repo.FindByID("p1")
		if !p.CanGenerate(2) {
			t.Fatalf("removal %d refused", i+1)
		}
		if err := repo.IncrementImagesGenerated("p1"); err != nil {
			t.Fatalf("Increment: %v", err)
		}
	}

	p, _ := repo.FindByID("p1")
	if p.CanGenerate(2) {
		t.Fatalf("third removal allowed without payment: %+v", p)
	}

	if err := repo.SetPaid("p1", true); err != nil {
		t.Fatalf("SetPaid: %v", err)
	}
	p, _ = repo.FindByID("p1")
	if !p.Paid || !p.CanGenerate(2) {
		t.Fatalf("paid profile refused: %+v", p)
	}
}

func TestUpdatesOnMissingProfileFail(t *testing.T) {
	repo := newRepo(t)
	if err := repo.IncrementImagesGenerated("ghost"); err == nil {
		t.Fatalf("increment on missing profile succeeded")
	}
	if err := repo.SetPaid("ghost", true); err == nil {
		t.Fatalf("SetPaid on missing profile succeeded")
	}
}
