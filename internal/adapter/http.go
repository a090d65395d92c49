package adapter

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/MKhiriev/go-study-sync/internal/config"
	"github.com/MKhiriev/go-study-sync/internal/logger"
	"github.com/MKhiriev/go-study-sync/internal/utils"
	"github.com/go-resty/resty/v2"
)

// HashHeader carries the hex HMAC-SHA256 of the request body.
const HashHeader = "HashSHA256"

// HTTPServerAdapter is the shared REST connection to the server.
type HTTPServerAdapter struct {
	client  *utils.HTTPClient
	baseURL string

	hashKey string

	mu    sync.RWMutex
	token string

	logger *logger.Logger
}

// NewHTTPServerAdapter normalises and validates the base URL from
// adapterCfg.HTTPAddress, configures the underlying HTTP client with the
// resolved base URL and request timeout, stores the bearer token from appCfg
// and initialises the HMAC hasher pool used for request integrity hashes.
//
// Returns an error if adapterCfg.HTTPAddress is empty or cannot be parsed as a
// valid URL.
func NewHTTPServerAdapter(adapterCfg config.ClientAdapter, appCfg config.ClientApp, log *logger.Logger) (*HTTPServerAdapter, error) {
	baseURL, err := normalizeBaseURL(adapterCfg.HTTPAddress)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}

	client := utils.NewHTTPClient(baseURL, adapterCfg.RequestTimeout)

	if appCfg.HashKey != "" {
		utils.InitHasherPool(appCfg.HashKey)
	}

	a := &HTTPServerAdapter{
		client:  client,
		baseURL: baseURL,
		hashKey: appCfg.HashKey,
		logger:  log,
	}
	a.SetToken(appCfg.Token)

	return a, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// SetToken implements [ServerAdapter].
func (h *HTTPServerAdapter) SetToken(token string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.token = strings.TrimSpace(token)
}

// Token implements [ServerAdapter].
func (h *HTTPServerAdapter) Token() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token
}

// Ping implements [ServerAdapter] by calling GET /api/health.
func (h *HTTPServerAdapter) Ping(ctx context.Context) error {
	resp, err := h.client.R().SetContext(ctx).Get("/api/health")
	if err != nil {
		return mapTransportError("ping", err)
	}

	return mapHTTPError(resp)
}

// authedRequest returns a request with the bearer token attached.
func (h *HTTPServerAdapter) authedRequest(ctx context.Context) *resty.Request {
	req := h.client.R().SetContext(ctx)
	if token := h.Token(); token != "" {
		req.SetHeader("Authorization", "Bearer "+token)
	}
	return req
}

// jsonRequest marshals body once so the integrity hash covers exactly the
// bytes that are sent.
func (h *HTTPServerAdapter) jsonRequest(ctx context.Context, body any) (*resty.Request, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request body: %w", err)
	}

	req := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(payload)
	if h.hashKey != "" {
		req.SetHeader(HashHeader, hex.EncodeToString(utils.Hash(payload)))
	}

	return req, nil
}

// websocketURL converts the REST base URL into a ws:// or wss:// URL for path.
func (h *HTTPServerAdapter) websocketURL(path string) string {
	switch {
	case strings.HasPrefix(h.baseURL, "https://"):
		return "wss://" + strings.TrimPrefix(h.baseURL, "https://") + path
	case strings.HasPrefix(h.baseURL, "http://"):
		return "ws://" + strings.TrimPrefix(h.baseURL, "http://") + path
	default:
		return h.baseURL + path
	}
}
