// Package remote — клиент внешнего auth-бэкенда (Supabase-совместимый
// REST). Не сконфигурирован — клиента нет, вызывающий код работает с
// локальным хранилищем.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 10 * time.Second

type Client struct {
	baseURL string
	anonKey string
	http    *http.Client
}

// New возвращает nil, если адрес или ключ не заданы — это штатный режим
// "внешний бэкенд недоступен", не ошибка.
func New(baseURL, anonKey string) *Client {
	if baseURL == "" || anonKey == "" {
		return nil
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		anonKey: anonKey,
		http:    &http.Client{Timeout: defaultTimeout},
	}
}

type AuthUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type authResponse struct {
	User *AuthUser `json:"user"`
	// при sign-up без подтверждения почты Supabase кладёт поля прямо в корень
	ID    string `json:"id"`
	Email string `json:"email"`
}

func (c *Client) SignIn(ctx context.Context, email, password string) (*AuthUser, error) {
	return c.authCall(ctx, "/auth/v1/token?grant_type=password", email, password)
}

func (c *Client) SignUp(ctx context.Context, email, password string) (*AuthUser, error) {
	return c.authCall(ctx, "/auth/v1/signup", email, password)
}

func (c *Client) authCall(ctx context.Context, path, email, password string) (*AuthUser, error) {
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return nil, err
	}
	raw, err := c.do(ctx, path, body, nil)
	if err != nil {
		return nil, err
	}
	var resp authResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("%s: разбор ответа: %w", path, err)
	}
	if resp.User != nil {
		return resp.User, nil
	}
	if resp.ID != "" {
		return &AuthUser{ID: resp.ID, Email: resp.Email}, nil
	}
	return nil, fmt.Errorf("%s: в ответе нет пользователя", path)
}

// InsertProfile пишет профиль в таблицу users внешнего бэкенда.
func (c *Client) InsertProfile(ctx context.Context, fields map[string]any) error {
	body, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	_, err = c.do(ctx, "/rest/v1/users", body, map[string]string{"Prefer": "return=minimal"})
	return err
}

func (c *Client) do(ctx context.Context, path string, body []byte, extra map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Authorization", "Bearer "+c.anonKey)
	for k, v := range extra {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("%s: http %d: %s", path, resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	return raw, nil
}
