package source

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var jokeBlockPattern = regexp.MustCompile(`(?s)<div class="text">(.*?)</div>`)

// HTMLExtractor выделяет блоки с текстом анекдота из HTML страницы.
// Верстка источников различается, поэтому извлечение best-effort:
// пустой результат — это не ошибка, страницу просто пропустят.
type HTMLExtractor struct{}

// NewHTMLExtractor создаёт экстрактор.
func NewHTMLExtractor() *HTMLExtractor {
	return &HTMLExtractor{}
}

// Extract возвращает сырые тексты-кандидаты. Сначала пробует
// полноценный разбор документа, затем откатывается на поиск
// блоков div.text регулярным выражением.
func (e *HTMLExtractor) Extract(rawHTML string) []string {
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML)); err == nil {
		var out []string
		doc.Find("div.text").Each(func(_ int, sel *goquery.Selection) {
			if text := strings.TrimSpace(sel.Text()); text != "" {
				out = append(out, text)
			}
		})
		if len(out) > 0 {
			return out
		}
	}

	matches := jokeBlockPattern.FindAllStringSubmatch(rawHTML, -1)
	out := make([]string, 0, len(matches))
	for _, match := range matches {
		if text := strings.TrimSpace(match[1]); text != "" {
			out = append(out, text)
		}
	}
	return out
}
