// Package client is a typed adapter over the storefront's JSON endpoints.
// Callers depend on this contract instead of internal service types.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	cartResponse "github.com/prasetya/phoneshop/cart/pkg/response"
	catalogResponse "github.com/prasetya/phoneshop/catalog/pkg/response"
	inErrors "github.com/prasetya/phoneshop/internal/errors"
	inHttp "github.com/prasetya/phoneshop/internal/http"
)

type Config struct {
	BaseURL      string
	SessionToken string
	CSRFToken    string
	HTTPClient   *http.Client
}

type Client struct {
	baseURL      string
	sessionToken string
	csrfToken    string
	httpClient   *http.Client
}

func NewClient(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   10 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	return &Client{
		baseURL:      cfg.BaseURL,
		sessionToken: cfg.SessionToken,
		csrfToken:    cfg.CSRFToken,
		httpClient:   httpClient,
	}
}

type envelope struct {
	Status     string          `json:"status"`
	StatusCode int             `json:"statusCode"`
	Message    string          `json:"message"`
	ErrorKind  string          `json:"errorKind"`
	Data       json.RawMessage `json:"data"`
}

func (t *Client) AddToCart(
	c context.Context,
	productId uuid.UUID,
	quantity int32,
) (cartResponse.CartSummary, error) {
	body := map[string]interface{}{"product_id": productId, "quantity": quantity}
	data := struct {
		Cart cartResponse.CartSummary `json:"cart"`
	}{}
	err := t.do(c, http.MethodPost, "/cart/add", nil, body, &data)
	if err != nil {
		return cartResponse.CartSummary{}, err
	}
	return data.Cart, nil
}

func (t *Client) UpdateQuantity(
	c context.Context,
	entryId uuid.UUID,
	quantity int32,
) (cartResponse.CartSummary, error) {
	body := map[string]interface{}{"entry_id": entryId, "quantity": quantity}
	data := struct {
		Cart cartResponse.CartSummary `json:"cart"`
	}{}
	err := t.do(c, http.MethodPost, "/cart/update", nil, body, &data)
	if err != nil {
		return cartResponse.CartSummary{}, err
	}
	return data.Cart, nil
}

func (t *Client) RemoveItem(
	c context.Context,
	entryId uuid.UUID,
) (cartResponse.CartSummary, error) {
	body := map[string]interface{}{"entry_id": entryId}
	data := struct {
		Cart cartResponse.CartSummary `json:"cart"`
	}{}
	err := t.do(c, http.MethodPost, "/cart/remove", nil, body, &data)
	if err != nil {
		return cartResponse.CartSummary{}, err
	}
	return data.Cart, nil
}

func (t *Client) GetCart(c context.Context) (cartResponse.CartSummary, error) {
	data := struct {
		Cart cartResponse.CartSummary `json:"cart"`
	}{}
	err := t.do(c, http.MethodGet, "/cart", nil, nil, &data)
	if err != nil {
		return cartResponse.CartSummary{}, err
	}
	return data.Cart, nil
}

func (t *Client) CartCount(c context.Context) (int32, error) {
	data := struct {
		Count int32 `json:"count"`
	}{}
	err := t.do(c, http.MethodGet, "/cart/count", nil, nil, &data)
	if err != nil {
		return 0, err
	}
	return data.Count, nil
}

func (t *Client) ToggleWishlist(
	c context.Context,
	productId uuid.UUID,
) (catalogResponse.Toggle, error) {
	body := map[string]interface{}{"product_id": productId}
	data := struct {
		Toggle catalogResponse.Toggle `json:"toggle"`
	}{}
	err := t.do(c, http.MethodPost, "/wishlist/add", nil, body, &data)
	if err != nil {
		return catalogResponse.Toggle{}, err
	}
	return data.Toggle, nil
}

func (t *Client) ToggleCompare(
	c context.Context,
	productId uuid.UUID,
) (catalogResponse.Toggle, error) {
	body := map[string]interface{}{"product_id": productId}
	data := struct {
		Toggle catalogResponse.Toggle `json:"toggle"`
	}{}
	err := t.do(c, http.MethodPost, "/compare/add", nil, body, &data)
	if err != nil {
		return catalogResponse.Toggle{}, err
	}
	return data.Toggle, nil
}

func (t *Client) Suggest(
	c context.Context,
	query string,
) ([]catalogResponse.Suggestion, error) {
	data := struct {
		Suggestions []catalogResponse.Suggestion `json:"suggestions"`
	}{}
	err := t.do(c, http.MethodGet, "/search/suggest", url.Values{"q": {query}}, nil, &data)
	if err != nil {
		return nil, err
	}
	return data.Suggestions, nil
}

func (t *Client) do(
	c context.Context,
	method string,
	path string,
	query url.Values,
	body interface{},
	out interface{},
) error {
	endpoint := t.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reqBody *bytes.Buffer
	if body != nil {
		reqBody = &bytes.Buffer{}
		if err := json.NewEncoder(reqBody).Encode(body); err != nil {
			return fmt.Errorf("failed encoding request body with error=%w", err)
		}
	}

	var req *http.Request
	var err error
	if reqBody != nil {
		req, err = http.NewRequestWithContext(c, method, endpoint, reqBody)
	} else {
		req, err = http.NewRequestWithContext(c, method, endpoint, nil)
	}
	if err != nil {
		return fmt.Errorf("failed initializing request with error=%w", err)
	}
	req.Header.Set(inHttp.HeaderContentType, inHttp.HeaderValueJson)
	if t.sessionToken != "" {
		req.Header.Set("Authorization", "Bearer "+t.sessionToken)
	}
	if t.csrfToken != "" {
		req.Header.Set(inHttp.KEY_HEADER_CSRF_TOKEN, t.csrfToken)
	}

	res, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed calling %s %s with error=%w", method, path, err)
	}
	defer res.Body.Close()

	wire := envelope{}
	if err := json.NewDecoder(res.Body).Decode(&wire); err != nil {
		return fmt.Errorf(
			"failed decoding response of %s %s with error=%w",
			method,
			path,
			err,
		)
	}

	if wire.Status != "success" {
		if sentinel := inErrors.FromKind(wire.ErrorKind); sentinel != nil {
			return fmt.Errorf("%s %s failed: %s: %w", method, path, wire.Message, sentinel)
		}
		return fmt.Errorf(
			"%s %s failed with status=%s message=%s",
			method,
			path,
			strconv.Itoa(wire.StatusCode),
			wire.Message,
		)
	}

	if out != nil && len(wire.Data) > 0 {
		if err := json.Unmarshal(wire.Data, out); err != nil {
			return fmt.Errorf(
				"failed decoding data of %s %s with error=%w",
				method,
				path,
				err,
			)
		}
	}

	return nil
}
