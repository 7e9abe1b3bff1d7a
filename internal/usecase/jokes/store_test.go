package jokes

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"anekdot-bot/internal/infra/storage"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "jokes.json")
	return NewStore(storage.NewDocuments(zerolog.Nop()), path, zerolog.Nop())
}

func TestUpsertIdempotent(t *testing.T) {
	store := newTestStore(t)

	first, isNew := store.Upsert("<div> Колобок повесился. </div>")
	if !isNew {
		t.Fatal("ожидали новый анекдот при первой загрузке")
	}
	second, isNew := store.Upsert("Колобок повесился.")
	if isNew {
		t.Fatal("повторная загрузка того же текста не должна добавлять запись")
	}
	if first != second {
		t.Fatalf("ожидали одинаковый id, получили %s и %s", first, second)
	}
	if store.Len() != 1 {
		t.Fatalf("ожидали 1 запись, получили %d", store.Len())
	}

	joke, ok := store.Get(first)
	if !ok {
		t.Fatal("анекдот не найден по id")
	}
	if joke.Text != "Колобок повесился." {
		t.Fatalf("текст не нормализован: %q", joke.Text)
	}
	if joke.Rating != 0 {
		t.Fatalf("новый анекдот должен иметь рейтинг 0, получили %d", joke.Rating)
	}
}

func TestUpsertEmptyAfterNormalize(t *testing.T) {
	store := newTestStore(t)
	id, isNew := store.Upsert("<br/>  \n ")
	if isNew || id != "" {
		t.Fatalf("пустой текст не должен попадать в базу: id=%q isNew=%v", id, isNew)
	}
}

func TestRateRoundTrip(t *testing.T) {
	store := newTestStore(t)
	id, _ := store.Upsert("Штирлиц шёл по лесу.")

	store.Rate(id, 1)
	store.Rate(id, -1)

	joke, _ := store.Get(id)
	if joke.Rating != 0 {
		t.Fatalf("ожидали возврат рейтинга к 0, получили %d", joke.Rating)
	}
}

func TestRateUnknownIDNoop(t *testing.T) {
	store := newTestStore(t)
	store.Upsert("Единственный анекдот")

	store.Rate("нет такого id", 5)

	for _, joke := range store.All() {
		if joke.Rating != 0 {
			t.Fatalf("рейтинг не должен был измениться, получили %d", joke.Rating)
		}
	}
}

func TestPersistAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jokes.json")
	docs := storage.NewDocuments(zerolog.Nop())

	store := NewStore(docs, path, zerolog.Nop())
	id, _ := store.Upsert("Анекдот для перезагрузки")
	store.Rate(id, 3)

	reloaded := NewStore(docs, path, zerolog.Nop())
	reloaded.Load()
	joke, ok := reloaded.Get(id)
	if !ok {
		t.Fatal("ожидали анекдот после перезагрузки")
	}
	if joke.Rating != 3 {
		t.Fatalf("ожидали рейтинг 3, получили %d", joke.Rating)
	}
}

func TestLoadCorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jokes.json")
	if err := os.WriteFile(path, []byte("{битый json"), 0o644); err != nil {
		t.Fatalf("подготовка файла: %v", err)
	}

	store := NewStore(storage.NewDocuments(zerolog.Nop()), path, zerolog.Nop())
	store.Load()
	if store.Len() != 0 {
		t.Fatalf("повреждённый файл должен давать пустую базу, получили %d записей", store.Len())
	}
}

func TestNormalizeKeepsEntities(t *testing.T) {
	// HTML-сущности остаются как есть: так генерировались id в уже
	// накопленных базах, и они не должны «поехать».
	text := Normalize("<b>Кто&nbsp;там?</b>")
	if text != "Кто&nbsp;там?" {
		t.Fatalf("сущности не должны раскрываться, получили %q", text)
	}
	if id := Fingerprint(text); id != "ee477f1de36ec55654857ae738fb1e8e" {
		t.Fatalf("отпечаток разошёлся со старыми базами: %s", id)
	}
}

func TestFingerprintStable(t *testing.T) {
	a := Fingerprint("один и тот же текст")
	b := Fingerprint("один и тот же текст")
	if a != b {
		t.Fatalf("отпечаток должен быть детерминированным: %s != %s", a, b)
	}
	if len(a) != 32 {
		t.Fatalf("ожидали md5 hex из 32 символов, получили %d", len(a))
	}
}
