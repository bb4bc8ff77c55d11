// Package backend is the HTTP client for the master-data / simulation REST
// backend. All POS-front network traffic funnels through here so that error
// extraction, CSRF and payload decoding stay in one place.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/rs/zerolog/log"

	"posfront/internal/infra"
	"posfront/internal/model"
)

// Client talks to the remote POS backend. The zero http.Client carries no
// timeout on purpose: the original front relied on the platform default and
// the simulation pipeline already discards superseded responses, so a slow
// reply is dropped rather than raced.
type Client struct {
	baseURL    string
	csrfToken  func() string
	httpClient *http.Client
	breaker    *infra.CircuitBreaker
}

// New builds a Client. csrfToken may be nil when the backend does not
// require the header; breaker may be nil to disable fast-fail.
func New(baseURL string, csrfToken func() string, breaker *infra.CircuitBreaker) *Client {
	return &Client{
		baseURL:    baseURL,
		csrfToken:  csrfToken,
		httpClient: &http.Client{},
		breaker:    breaker,
	}
}

// MastersPayload is the masters section of the boot payload, including the
// optional cross-index maps.
type MastersPayload struct {
	model.MasterData
	BrandBanks     map[string][]string `json:"brand_banks"`
	BankBrands     map[string][]string `json:"bank_brands"`
	BrandAcquirers map[string][]string `json:"brand_acquirers"`
}

// PlansPreload is the optional bulk plan preload delivered at boot.
// Index: brand → method code → enabled. Rates: plan id → raw plan.
type PlansPreload struct {
	Index map[string]map[string]bool `json:"index"`
	Rates map[string]map[string]any  `json:"rates"`
}

// BootPayload is the decoded GET /boot response. Masters is always non-nil
// after Boot returns successfully.
type BootPayload struct {
	Masters *MastersPayload `json:"masters"`
	Plans   *PlansPreload   `json:"plans"`
}

// Boot fetches the preferred boot payload and falls back to the legacy
// masters-only endpoint when it fails. A root payload without a "masters"
// wrapper is accepted as the masters object itself.
func (c *Client) Boot(ctx context.Context) (*BootPayload, error) {
	raw, err := c.getRaw(ctx, "/api/simulador/boot")
	if err != nil {
		log.Warn().Err(err).Msg("boot endpoint failed, falling back to masters")
		raw, err = c.getRaw(ctx, "/api/simulador/masters")
		if err != nil {
			return nil, err
		}
	}

	var payload BootPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("backend: decode boot payload: %w", err)
	}
	if payload.Masters == nil {
		var masters MastersPayload
		if err := json.Unmarshal(raw, &masters); err != nil {
			return nil, fmt.Errorf("backend: decode masters payload: %w", err)
		}
		payload.Masters = &masters
	}
	return &payload, nil
}

// PlansByBrand fetches the raw plan list for one brand. Rows come back raw
// so the plan catalog can normalize them with brand defaults.
func (c *Client) PlansByBrand(ctx context.Context, brand string) ([]map[string]any, error) {
	endpoint := "/api/simulador/plans?" + url.Values{"brand": {brand}}.Encode()
	raw, err := c.getRaw(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	var rows []map[string]any
	if err := json.Unmarshal(raw, &rows); err != nil {
		// Not an array — treat as empty rather than failing the caller.
		return nil, nil
	}
	return rows, nil
}

// Simulate posts the payment simulation request.
func (c *Client) Simulate(ctx context.Context, payload model.SimulationPayload) (*model.SimulationResult, error) {
	raw, err := c.postRaw(ctx, "/api/simulador/simulate", payload)
	if err != nil {
		return nil, err
	}
	var result model.SimulationResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("backend: decode simulation result: %w", err)
	}
	return &result, nil
}

// FetchUserCart retrieves the remote cart snapshot as raw JSON; callers run
// it through cart.DeserializeSnapshot.
func (c *Client) FetchUserCart(ctx context.Context) (json.RawMessage, error) {
	return c.getRaw(ctx, "/api/get_user_cart")
}

// SaveUserCart persists the cart snapshot remotely.
func (c *Client) SaveUserCart(ctx context.Context, userID string, snapshot model.CartSnapshot, timestamp string) error {
	body := map[string]any{
		"userId":    userID,
		"cart":      snapshot,
		"timestamp": timestamp,
	}
	_, err := c.postRaw(ctx, "/api/save_user_cart", body)
	return err
}

// SearchClients returns raw client rows for a free-text query.
func (c *Client) SearchClients(ctx context.Context, query string) ([]map[string]any, error) {
	if query == "" {
		return nil, nil
	}
	endpoint := "/api/clientes/search?" + url.Values{"query": {query}}.Encode()
	raw, err := c.getRaw(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	var rows []map[string]any
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, nil
	}
	return rows, nil
}

// CreateClient creates a client. Validation failures decode into
// *FieldErrors so the handler can surface them per field.
func (c *Client) CreateClient(ctx context.Context, payload map[string]any) (map[string]any, error) {
	raw, err := c.postRaw(ctx, "/api/clientes/create", payload)
	if err != nil {
		if apiErr, ok := err.(*APIError); ok {
			if fieldErr := decodeFieldErrors(apiErr); fieldErr != nil {
				return nil, fieldErr
			}
		}
		return nil, err
	}
	var row map[string]any
	if err := json.Unmarshal(raw, &row); err != nil {
		return nil, fmt.Errorf("backend: decode client: %w", err)
	}
	return row, nil
}

// SearchProducts returns raw product rows; the filters map travels as query
// parameters untouched.
func (c *Client) SearchProducts(ctx context.Context, filters url.Values) ([]map[string]any, error) {
	endpoint := "/api/productos/search"
	if len(filters) > 0 {
		endpoint += "?" + filters.Encode()
	}
	raw, err := c.getRaw(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	var rows []map[string]any
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, nil
	}
	return rows, nil
}

// StockByProduct returns raw per-store stock rows for a product.
func (c *Client) StockByProduct(ctx context.Context, productID string) ([]map[string]any, error) {
	endpoint := "/api/stock/" + url.PathEscape(productID)
	raw, err := c.getRaw(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	var rows []map[string]any
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, nil
	}
	return rows, nil
}

// ── transport ─────────────────────────────────────────────────────────────────

func (c *Client) getRaw(ctx context.Context, endpoint string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("backend: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	return c.do(req)
}

func (c *Client) postRaw(ctx context.Context, endpoint string, body any) (json.RawMessage, error) {
	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("backend: marshal body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("backend: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	if c.csrfToken != nil {
		if token := c.csrfToken(); token != "" {
			req.Header.Set("X-CSRFToken", token)
		}
	}
	return c.do(req)
}

func (c *Client) do(req *http.Request) (json.RawMessage, error) {
	var resp *http.Response
	send := func() error {
		var err error
		resp, err = c.httpClient.Do(req)
		return err
	}
	// Only transport failures count against the breaker; HTTP error
	// statuses are the backend answering.
	var err error
	if c.breaker != nil {
		err = c.breaker.Execute(send)
	} else {
		err = send()
	}
	if err == infra.ErrCircuitOpen {
		return nil, &APIError{Status: 0, Message: "Backend temporalmente no disponible. Reintentá en unos segundos."}
	}
	if err != nil {
		return nil, &APIError{Status: 0, Message: "No se pudo conectar con el backend. Verificá que el servicio esté disponible."}
	}
	defer resp.Body.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, &APIError{Status: resp.StatusCode, Message: err.Error()}
	}
	payload := buf.Bytes()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		message := fmt.Sprintf("%d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
		var envelope struct {
			Error string `json:"error"`
		}
		if err := json.Unmarshal(payload, &envelope); err == nil && envelope.Error != "" {
			message = envelope.Error
		}
		return nil, &APIError{Status: resp.StatusCode, Message: message, Payload: append(json.RawMessage(nil), payload...)}
	}
	return append(json.RawMessage(nil), payload...), nil
}
