package gpai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/teamturing/competition-api/internal/pkg/errors"
)

// SessionCookieName — имя куки провайдерской сессии.
const SessionCookieName = "sessionId"

// Identity — нормализованный аутентифицированный пользователь провайдера.
// Данные принадлежат провайдеру, локально только читаются.
type Identity struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	IsGuest   bool      `json:"isGuest"`
	CreatedAt time.Time `json:"createdAt"`
}

// LoginResult — результат парольного входа: identity + провайдерская
// сессионная кука для ретрансляции в браузер.
type LoginResult struct {
	Identity      *Identity
	SessionCookie *http.Cookie
}

// ErrUnauthenticated возвращается при любой невалидной сессии: отсутствие куки,
// истечение, отзыв, не-2xx ответ провайдера, сетевая ошибка или таймаут.
// Причины не различаются — гейт всегда закрывается одинаково (fail closed).
var ErrUnauthenticated = errors.New("gpai: not authenticated")

// ErrInvalidCredentials возвращается при неудачном парольном входе.
// "Аккаунт не найден" и "неверный пароль" намеренно не различаются.
var ErrInvalidCredentials = errors.New("gpai: invalid credentials")

// Client — HTTP-клиент identity-провайдера (who-am-I, парольный вход, выход).
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient создает клиент провайдера. Таймаут консервативный и применяется
// ко всем исходящим вызовам.
func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("gpai base URL is required")
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// Me проверяет сессию у провайдера и возвращает Identity.
// Пустой sessionID — сразу ErrUnauthenticated, без сетевого вызова.
// Любая ошибка провайдера или сети тоже сводится к ErrUnauthenticated:
// сессии без живого подтверждения не доверяем.
func (c *Client) Me(ctx context.Context, sessionID string) (*Identity, error) {
	if sessionID == "" {
		return nil, ErrUnauthenticated
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/auth/me", nil)
	if err != nil {
		return nil, ErrUnauthenticated
	}
	req.Header.Set("Accept", "application/json")
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: sessionID})

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("[GpaiClient] Ошибка запроса /api/auth/me: %v", err)
		return nil, ErrUnauthenticated
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, ErrUnauthenticated
	}

	identity, err := decodeIdentity(resp.Body)
	if err != nil {
		log.Printf("[GpaiClient] Некорректный ответ /api/auth/me: %v", err)
		return nil, ErrUnauthenticated
	}
	return identity, nil
}

// LoginPassword выполняет парольный вход у провайдера.
// 401 (неверный пароль) и 404 (аккаунт не найден) схлопываются в одну
// ошибку ErrInvalidCredentials — существование аккаунта не раскрывается.
func (c *Client) LoginPassword(ctx context.Context, email, password string) (*LoginResult, error) {
	payload, err := json.Marshal(map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode login payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/auth/login/password", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("[GpaiClient] Ошибка запроса парольного входа: %v", err)
		return nil, fmt.Errorf("%w: identity provider request failed", apperrors.ErrUpstream)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// ok
	case http.StatusUnauthorized, http.StatusNotFound:
		return nil, ErrInvalidCredentials
	default:
		log.Printf("[GpaiClient] Неожиданный статус парольного входа: %d", resp.StatusCode)
		return nil, fmt.Errorf("%w: identity provider returned %d", apperrors.ErrUpstream, resp.StatusCode)
	}

	identity, err := decodeIdentity(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid identity provider response", apperrors.ErrUpstream)
	}

	result := &LoginResult{Identity: identity}
	for _, cookie := range resp.Cookies() {
		if cookie.Name == SessionCookieName {
			result.SessionCookie = cookie
			break
		}
	}
	if result.SessionCookie == nil {
		log.Printf("[GpaiClient] Провайдер не вернул сессионную куку после входа")
		return nil, fmt.Errorf("%w: identity provider did not issue a session", apperrors.ErrUpstream)
	}
	return result, nil
}

// Logout завершает сессию на стороне провайдера. Ошибка не фатальна для
// клиента — локальная кука все равно сбрасывается вызывающей стороной.
func (c *Client) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/auth/logout", bytes.NewReader([]byte("{}")))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: sessionID})

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: logout request failed", apperrors.ErrUpstream)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: logout returned %d", apperrors.ErrUpstream, resp.StatusCode)
	}
	return nil
}

// decodeIdentity разбирает ответ провайдера. Некоторые endpoint'ы
// оборачивают пользователя в {"user": {...}}, некоторые отдают объект напрямую.
func decodeIdentity(r io.Reader) (*Identity, error) {
	body, err := io.ReadAll(io.LimitReader(r, 1<<20))
	if err != nil {
		return nil, err
	}

	var wrapped struct {
		User *Identity `json:"user"`
	}
	if err := json.Unmarshal(body, &wrapped); err == nil && wrapped.User != nil && wrapped.User.ID != "" {
		return wrapped.User, nil
	}

	var identity Identity
	if err := json.Unmarshal(body, &identity); err != nil {
		return nil, err
	}
	if identity.ID == "" {
		return nil, fmt.Errorf("identity response missing id")
	}
	return &identity, nil
}
