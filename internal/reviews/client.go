// Package reviews proxies the agency's Google Places reviews so the site can
// show them next to manually entered testimonials.
package reviews

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const httpTimeout = 10 * time.Second

const placeDetailsDefaultURL = "https://maps.googleapis.com/maps/api/place/details/json"

// Review is one Google review mapped onto the testimonial wire shape.
type Review struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Content    string `json:"content"`
	StarRating int    `json:"starRating"`
	Type       string `json:"type"`
}

// Client fetches place reviews from the Google Places Details API.
type Client struct {
	apiKey  string
	placeID string
	baseURL string
	client  *http.Client
}

// NewClient constructs a Client for the given API key and place id.
func NewClient(apiKey, placeID string) *Client {
	return &Client{
		apiKey:  apiKey,
		placeID: placeID,
		baseURL: placeDetailsDefaultURL,
		client:  &http.Client{Timeout: httpTimeout},
	}
}

// NewClientWithURL constructs a Client pointing at a custom base URL (for tests).
func NewClientWithURL(baseURL, apiKey, placeID string) *Client {
	c := NewClient(apiKey, placeID)
	c.baseURL = baseURL
	return c
}

type placeDetailsResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Result       struct {
		Reviews []struct {
			AuthorURL  string `json:"author_url"`
			AuthorName string `json:"author_name"`
			Text       string `json:"text"`
			Rating     int    `json:"rating"`
		} `json:"reviews"`
	} `json:"result"`
}

// Fetch retrieves the place's reviews in pt-BR. A non-OK Places status is an
// error; the response body's error_message is included when present.
func (c *Client) Fetch(ctx context.Context) ([]Review, error) {
	endpoint := c.baseURL + "?place_id=" + url.QueryEscape(c.placeID) +
		"&fields=reviews&language=pt-BR&key=" + url.QueryEscape(c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating place details request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET place details: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("place details returned status %d", resp.StatusCode)
	}

	var raw placeDetailsResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding place details response: %w", err)
	}

	if raw.Status != "OK" {
		if raw.ErrorMessage != "" {
			return nil, fmt.Errorf("place details status %s: %s", raw.Status, raw.ErrorMessage)
		}
		return nil, fmt.Errorf("place details status %s", raw.Status)
	}

	out := make([]Review, 0, len(raw.Result.Reviews))
	for _, rv := range raw.Result.Reviews {
		out = append(out, Review{
			ID:         rv.AuthorURL,
			Name:       rv.AuthorName,
			Content:    rv.Text,
			StarRating: rv.Rating,
			Type:       "text",
		})
	}
	return out, nil
}
