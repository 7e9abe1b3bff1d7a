package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"anekdot-bot/internal/infra/metrics"
)

// HTTPFetcher загружает страницы источников обычным HTTP-клиентом.
type HTTPFetcher struct {
	client *http.Client
}

// NewHTTPFetcher создаёт клиент с общим таймаутом на запрос.
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &HTTPFetcher{client: &http.Client{Timeout: timeout}}
}

// FetchPage возвращает тело страницы. Любой статус кроме 200 — ошибка.
func (f *HTTPFetcher) FetchPage(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("формирование запроса: %w", err)
	}
	req.Header.Set("User-Agent", "anekdot-bot/1.0")

	start := time.Now()
	resp, err := f.client.Do(req)
	metrics.ObserveNetworkRequest("source", "fetch_page", hostOf(pageURL), start, err)
	if err != nil {
		return "", fmt.Errorf("запрос страницы: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("источник вернул %s", resp.Status)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("чтение ответа: %w", err)
	}
	return string(raw), nil
}

func hostOf(pageURL string) string {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}
	return parsed.Host
}
