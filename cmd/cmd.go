package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/nvkalinin/week-of-month/log"
)

// adminClient вызывает /api/admin/* запущенного сервера от имени пользователя admin.
type adminClient struct {
	serverUrl string
	passwd    string
	timeout   time.Duration
}

// do выполняет запрос и возвращает ответ только со статусом 200.
// Для остальных статусов тело ответа читается и превращается в ошибку.
func (c adminClient) do(method, path, contentType string, body io.Reader) (*http.Response, error) {
	url := strings.TrimRight(c.serverUrl, "/") + path
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return nil, fmt.Errorf("cannot create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.SetBasicAuth("admin", c.passwd)
	log.Printf("[DEBUG] admin request: %s %s", method, url)

	client := &http.Client{Timeout: c.timeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cannot make request: %w", err)
	}
	if resp.StatusCode == http.StatusOK {
		return resp, nil
	}

	defer closeBody(resp)
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("cannot read error response (status %d): %w", resp.StatusCode, err)
	}
	return nil, readJsonError(resp.StatusCode, respBody)
}

// readJsonError достает msg из ответа вида {"msg": "..."}. У ответов без JSON (например, 401
// от basic auth) вместо msg берется текст статуса.
func readJsonError(status int, body []byte) error {
	restErr := &struct {
		Msg string `json:"msg"`
	}{}
	if err := json.Unmarshal(body, restErr); err != nil || restErr.Msg == "" {
		return fmt.Errorf("status %d: %s", status, http.StatusText(status))
	}
	return fmt.Errorf("status %d: %s", status, restErr.Msg)
}

func closeBody(resp *http.Response) {
	if err := resp.Body.Close(); err != nil {
		log.Printf("[WARN] cannot close response body: %v", err)
	}
}
