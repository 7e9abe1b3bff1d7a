package telegram

import "strings"

// Префиксы callback-данных голосования. Формат like_<id>/dislike_<id>
// сохранён от предыдущей версии бота: старые сообщения с кнопками
// продолжают работать после перезапуска.
const (
	likePrefix    = "like_"
	dislikePrefix = "dislike_"
)

// LikeAction возвращает callback-данные голоса «за».
func LikeAction(jokeID string) string {
	return likePrefix + jokeID
}

// DislikeAction возвращает callback-данные голоса «против».
func DislikeAction(jokeID string) string {
	return dislikePrefix + jokeID
}

// ParseVote разбирает callback-данные. delta равен +1 или -1.
func ParseVote(data string) (jokeID string, delta int, ok bool) {
	switch {
	case strings.HasPrefix(data, likePrefix):
		return strings.TrimPrefix(data, likePrefix), 1, true
	case strings.HasPrefix(data, dislikePrefix):
		return strings.TrimPrefix(data, dislikePrefix), -1, true
	default:
		return "", 0, false
	}
}
