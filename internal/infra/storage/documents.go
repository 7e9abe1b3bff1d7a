package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// Documents читает и пишет JSON-документы состояния целиком.
// Отсутствующий или повреждённый файл означает пустое состояние:
// первый запуск и испорченный диск не должны останавливать бота.
type Documents struct {
	log zerolog.Logger
}

// NewDocuments создаёт хранилище документов.
func NewDocuments(logger zerolog.Logger) *Documents {
	return &Documents{log: logger}
}

// Load загружает документ в v. Возврат всегда успешный: проблемы
// чтения и разбора логируются, v остаётся нетронутым.
func (d *Documents) Load(path string, v any) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			d.log.Warn().Err(err).Str("path", path).Msg("не удалось прочитать документ, начинаем с пустого состояния")
		}
		return
	}
	if err := json.Unmarshal(raw, v); err != nil {
		d.log.Warn().Err(err).Str("path", path).Msg("документ повреждён, начинаем с пустого состояния")
	}
}

// Save атомарно записывает документ: сначала во временный файл,
// затем rename поверх текущего.
func (d *Documents) Save(path string, v any) error {
	raw, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Errorf("сериализация документа: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("каталог документа: %w", err)
	}
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("запись документа: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("подмена документа: %w", err)
	}
	return nil
}
