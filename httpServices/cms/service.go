package cms

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// ErrClassNotFound is returned when the CMS has no class with the given id.
var ErrClassNotFound = errors.New("class not found")

type Client struct {
	httpClient *http.Client
	baseURL    string
	apiToken   string
}

func NewClient(baseURL, apiToken string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL:  baseURL,
		apiToken: apiToken,
	}
}

// ListClasses returns the classes of one category (all categories when empty).
func (c *Client) ListClasses(ctx context.Context, category string) ([]Class, error) {
	endpoint := c.baseURL + "/api/classes"
	if category != "" {
		endpoint += "?category=" + url.QueryEscape(category)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, err
	}
	c.setHeaders(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.New("CMS API returned non-OK status: " + resp.Status)
	}

	var apiResp classListResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, err
	}

	return apiResp.Data, nil
}

// GetClass fetches a single class by id.
func (c *Client) GetClass(ctx context.Context, id string) (*Class, error) {
	httpReq, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/api/classes/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	c.setHeaders(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrClassNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.New("CMS API returned non-OK status: " + resp.Status)
	}

	var apiResp classResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, err
	}

	return &apiResp.Data, nil
}

// DecrementSpots reduces the remaining capacity of a class by n seats.
func (c *Client) DecrementSpots(ctx context.Context, id string, n int) error {
	if n <= 0 {
		return fmt.Errorf("invalid seat count: %d", n)
	}

	body, err := json.Marshal(spotsUpdateRequest{Delta: -n})
	if err != nil {
		return err
	}

	httpReq, err := http.NewRequestWithContext(ctx, "PATCH", c.baseURL+"/api/classes/"+url.PathEscape(id)+"/spots", bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	c.setHeaders(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrClassNotFound
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return errors.New("CMS API returned non-OK status: " + resp.Status)
	}

	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if c.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiToken)
	}
}
