package telegram

import "strings"

const messageLimit = 4096

// SplitMessage разбивает текст на части, укладывающиеся в лимит
// Telegram. Анекдоты многострочные, поэтому разрез предпочитает
// границы абзацев, затем строк, и лишь затем режет по лимиту.
func SplitMessage(text string) []string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}

	runes := []rune(trimmed)
	if len(runes) <= messageLimit {
		return []string{trimmed}
	}

	var parts []string
	for len(runes) > 0 {
		if len(runes) <= messageLimit {
			if chunk := strings.TrimSpace(string(runes)); chunk != "" {
				parts = append(parts, chunk)
			}
			break
		}

		cut := lastBreak(runes[:messageLimit], "\n\n")
		if cut <= 0 {
			cut = lastBreak(runes[:messageLimit], "\n")
		}
		if cut <= 0 {
			cut = messageLimit
		}

		if chunk := strings.TrimSpace(string(runes[:cut])); chunk != "" {
			parts = append(parts, chunk)
		}
		runes = runes[cut:]
	}

	if len(parts) == 0 {
		return []string{trimmed}
	}
	return parts
}

// lastBreak ищет конец последнего вхождения разделителя.
func lastBreak(runes []rune, sep string) int {
	idx := strings.LastIndex(string(runes), sep)
	if idx < 0 {
		return -1
	}
	return len([]rune(string(runes)[:idx])) + len([]rune(sep))
}
