package ledger

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"anekdot-bot/internal/domain"
	"anekdot-bot/internal/infra/storage"
)

func newTestLedger(t *testing.T) (*Service, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "user_data.json")
	return NewService(storage.NewDocuments(zerolog.Nop()), path, zerolog.Nop()), path
}

func TestRecordInteractionCreatesRecord(t *testing.T) {
	svc, _ := newTestLedger(t)

	svc.RecordInteraction(42)

	rec, ok := svc.Record(42)
	if !ok {
		t.Fatal("ожидали запись пользователя после первого обращения")
	}
	if rec.AdOffset < 0 || rec.AdOffset > 4 {
		t.Fatalf("смещение должно лежать в [0,4], получили %d", rec.AdOffset)
	}
	if rec.LastInteraction.IsZero() {
		t.Fatal("время взаимодействия не заполнено")
	}

	svc.RecordInteraction(42)
	after, _ := svc.Record(42)
	if after.AdOffset != rec.AdOffset {
		t.Fatalf("смещение назначается один раз: было %d, стало %d", rec.AdOffset, after.AdOffset)
	}
}

func TestRecordDeliveredIdempotent(t *testing.T) {
	svc, _ := newTestLedger(t)

	svc.RecordDelivered(42, "joke-1")
	svc.RecordDelivered(42, "joke-1")
	svc.RecordDelivered(42, "joke-2")

	seen := svc.SeenSet(42)
	if len(seen) != 2 {
		t.Fatalf("ожидали 2 просмотренных id, получили %d", len(seen))
	}
	if _, ok := seen["joke-1"]; !ok {
		t.Fatal("joke-1 должен быть отмечен просмотренным")
	}
}

func TestPromotionCadence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "user_data.json")
	docs := storage.NewDocuments(zerolog.Nop())
	seed := map[string]domain.UserRecord{
		"42": {SeenJokes: []string{"a", "b", "c"}, AdOffset: 2},
	}
	if err := docs.Save(path, seed); err != nil {
		t.Fatalf("подготовка документа: %v", err)
	}

	svc := NewService(docs, path, zerolog.Nop())
	svc.Load()

	// (3 + 2) % 5 == 0 — промо пора.
	if !svc.ShouldInsertPromotion(42) {
		t.Fatal("при 3 просмотренных и смещении 2 промо должно вставляться")
	}

	svc.RecordDelivered(42, "d")
	// (4 + 2) % 5 != 0 — промо не пора.
	if svc.ShouldInsertPromotion(42) {
		t.Fatal("при 4 просмотренных и смещении 2 промо вставляться не должно")
	}
}

func TestPersistAndReload(t *testing.T) {
	svc, path := newTestLedger(t)
	svc.RecordInteraction(7)
	svc.RecordDelivered(7, "joke-1")

	reloaded := NewService(storage.NewDocuments(zerolog.Nop()), path, zerolog.Nop())
	reloaded.Load()
	rec, ok := reloaded.Record(7)
	if !ok {
		t.Fatal("ожидали запись после перезагрузки")
	}
	if !rec.HasSeen("joke-1") {
		t.Fatal("история просмотров потерялась при перезагрузке")
	}
}
