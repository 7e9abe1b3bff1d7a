package pick

import (
	"context"
	"errors"
	"path/filepath"
	"sort"
	"testing"

	"github.com/rs/zerolog"

	"anekdot-bot/internal/infra/storage"
	"anekdot-bot/internal/usecase/jokes"
	"anekdot-bot/internal/usecase/ledger"
)

type stubRefiller struct {
	store *jokes.Store
	texts []string
	calls int
}

func (r *stubRefiller) Run(context.Context) ([]string, error) {
	r.calls++
	var added []string
	for _, text := range r.texts {
		if _, isNew := r.store.Upsert(text); isNew {
			added = append(added, text)
		}
	}
	r.texts = nil
	return added, nil
}

func newFixture(t *testing.T) (*Service, *jokes.Store, *ledger.Service, *stubRefiller) {
	t.Helper()
	dir := t.TempDir()
	docs := storage.NewDocuments(zerolog.Nop())
	store := jokes.NewStore(docs, filepath.Join(dir, "jokes.json"), zerolog.Nop())
	users := ledger.NewService(docs, filepath.Join(dir, "user_data.json"), zerolog.Nop())
	refill := &stubRefiller{store: store}
	return NewService(store, users, refill, zerolog.Nop()), store, users, refill
}

func TestNoRepeatUntilExhausted(t *testing.T) {
	svc, store, users, refill := newFixture(t)
	store.Upsert("Первый анекдот")
	store.Upsert("Второй анекдот")
	store.Upsert("Третий анекдот")

	seen := make(map[string]struct{})
	for i := 0; i < 3; i++ {
		id, _, err := svc.SelectNovel(context.Background(), 42)
		if err != nil {
			t.Fatalf("не ожидали ошибку на шаге %d: %v", i, err)
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("анекдот %s выдан повторно", id)
		}
		seen[id] = struct{}{}
		users.RecordDelivered(42, id)
	}

	// База исчерпана: пополнение запускается, но ничего не приносит.
	_, _, err := svc.SelectNovel(context.Background(), 42)
	if !errors.Is(err, ErrExhausted) {
		t.Fatalf("ожидали ErrExhausted, получили %v", err)
	}
	if refill.calls != 1 {
		t.Fatalf("ожидали ровно один запуск пополнения, получили %d", refill.calls)
	}
}

func TestRefillProvidesNewJoke(t *testing.T) {
	svc, store, users, refill := newFixture(t)
	store.Upsert("Старый анекдот")
	id, _, _ := svc.SelectNovel(context.Background(), 42)
	users.RecordDelivered(42, id)

	refill.texts = []string{"Свежий анекдот из источника"}

	freshID, joke, err := svc.SelectNovel(context.Background(), 42)
	if err != nil {
		t.Fatalf("не ожидали ошибку после пополнения: %v", err)
	}
	if freshID == id {
		t.Fatal("ожидали анекдот из пополнения, а не уже просмотренный")
	}
	if joke.Text != "Свежий анекдот из источника" {
		t.Fatalf("неожиданный текст: %q", joke.Text)
	}
}

func TestSelectBestPrefersRating(t *testing.T) {
	svc, store, _, _ := newFixture(t)
	low, _ := store.Upsert("Слабый анекдот")
	top, _ := store.Upsert("Сильный анекдот")
	store.Rate(top, 5)

	id, joke, err := svc.SelectBest(context.Background(), 42)
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if id != top {
		t.Fatalf("ожидали анекдот с рейтингом 5, получили %s (рейтинг %d, слабый был %s)", id, joke.Rating, low)
	}
}

func TestSelectBestTieBreaksByLowestID(t *testing.T) {
	svc, store, _, _ := newFixture(t)
	first, _ := store.Upsert("Кандидат номер один")
	second, _ := store.Upsert("Кандидат номер два")
	store.Rate(first, 7)
	store.Rate(second, 7)

	ids := []string{first, second}
	sort.Strings(ids)

	for i := 0; i < 3; i++ {
		id, _, err := svc.SelectBest(context.Background(), 42)
		if err != nil {
			t.Fatalf("не ожидали ошибку: %v", err)
		}
		if id != ids[0] {
			t.Fatalf("при равных рейтингах ожидали наименьший id %s, получили %s", ids[0], id)
		}
	}
}

func TestSelectDoesNotMutateLedger(t *testing.T) {
	svc, store, users, _ := newFixture(t)
	store.Upsert("Анекдот без отметки")

	if _, _, err := svc.SelectNovel(context.Background(), 42); err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if len(users.SeenSet(42)) != 0 {
		t.Fatal("селектор не должен отмечать просмотр — это дело вызывающего")
	}
}
