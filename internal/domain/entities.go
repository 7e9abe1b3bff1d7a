package domain

import "time"

// Joke описывает один анекдот в базе. Ключом служит отпечаток
// нормализованного текста, поэтому id в структуре не хранится.
type Joke struct {
	Text   string `json:"text"`
	Rating int    `json:"rating"`
}

// UserRecord хранит состояние пользователя бота. Имена JSON-полей
// совпадают с форматом документа user_data.json, накопленного ранее.
type UserRecord struct {
	SeenJokes       []string  `json:"jokes_seen"`
	AdOffset        int       `json:"ad_offset"`
	LastInteraction time.Time `json:"last_interaction"`
}

// HasSeen сообщает, показывали ли пользователю анекдот.
func (r UserRecord) HasSeen(jokeID string) bool {
	for _, id := range r.SeenJokes {
		if id == jokeID {
			return true
		}
	}
	return false
}

// Choice — кнопка с произвольным действием, прикрепляемая к сообщению.
type Choice struct {
	Label  string
	Action string
}
