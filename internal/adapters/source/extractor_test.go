package source

import "testing"

func TestExtractFindsJokeBlocks(t *testing.T) {
	page := `<html><body>
	<div class="topicbox">
		<div class="text">Первый анекдот.<br>Вторая строка.</div>
	</div>
	<div class="topicbox">
		<div class="text">  Второй анекдот. </div>
	</div>
	<div class="sidebar">реклама</div>
	</body></html>`

	texts := NewHTMLExtractor().Extract(page)
	if len(texts) != 2 {
		t.Fatalf("ожидали 2 блока, получили %d: %v", len(texts), texts)
	}
	if texts[1] != "Второй анекдот." {
		t.Fatalf("текст не очищен от пробелов: %q", texts[1])
	}
}

func TestExtractEmptyPage(t *testing.T) {
	if texts := NewHTMLExtractor().Extract("<html><body>ничего</body></html>"); len(texts) != 0 {
		t.Fatalf("ожидали пустой результат, получили %v", texts)
	}
}

func TestExtractFragment(t *testing.T) {
	// Обрезанная страница без закрывающих тегов документа.
	fragment := `<div class="text">Анекдот из фрагмента</div>`
	texts := NewHTMLExtractor().Extract(fragment)
	if len(texts) != 1 {
		t.Fatalf("ожидали 1 блок, получили %d", len(texts))
	}
	if texts[0] != "Анекдот из фрагмента" {
		t.Fatalf("неожиданный текст: %q", texts[0])
	}
}
