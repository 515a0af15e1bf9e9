package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"photo_commerce/internal/domain/models"
)

// Client talks to the external payment provider that hosts the actual
// checkout page. This service never sees card data; it submits the order
// intent and redirects the shopper to the URL the provider returns.
type Client interface {
	CreateCheckout(ctx context.Context, intent models.OrderIntent, successURL, cancelURL string) (string, error)
}

type clientImpl struct {
	httpClient *http.Client
	endpoint   string
}

func NewClient(endpoint string, timeout time.Duration) Client {
	return &clientImpl{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		endpoint: endpoint,
	}
}

type createRequest struct {
	GallerySlug  string   `json:"gallery_slug"`
	Email        string   `json:"email"`
	CustomerName string   `json:"customer_name,omitempty"`
	PhotoIDs     []string `json:"photo_ids"`
	IsPackage    bool     `json:"is_package"`
	TotalCents   int64    `json:"total_cents"`
	Currency     string   `json:"currency"`
	SuccessURL   string   `json:"success_url"`
	CancelURL    string   `json:"cancel_url"`
}

type createResponse struct {
	CheckoutURL string `json:"checkout_url"`
}

func (c *clientImpl) CreateCheckout(ctx context.Context, intent models.OrderIntent, successURL, cancelURL string) (string, error) {
	photoIDs := make([]string, 0, len(intent.PhotoIDs))
	for _, id := range intent.PhotoIDs {
		photoIDs = append(photoIDs, id.String())
	}

	body, err := json.Marshal(createRequest{
		GallerySlug:  intent.GallerySlug,
		Email:        intent.Email,
		CustomerName: intent.CustomerName,
		PhotoIDs:     photoIDs,
		IsPackage:    intent.IsPackage,
		TotalCents:   intent.TotalCents,
		Currency:     "EUR",
		SuccessURL:   successURL,
		CancelURL:    cancelURL,
	})
	if err != nil {
		return "", fmt.Errorf("marshal checkout request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("checkout provider returned status %d", resp.StatusCode)
	}

	var res createResponse
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return "", fmt.Errorf("decode checkout response: %w", err)
	}
	if res.CheckoutURL == "" {
		return "", fmt.Errorf("checkout provider returned no checkout URL")
	}

	return res.CheckoutURL, nil
}
