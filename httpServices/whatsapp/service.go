package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"culinary-booking/logger"
	botTypes "culinary-booking/types/bot"
)

const graphAPIBase = "https://graph.facebook.com/v19.0"

type Client struct {
	httpClient    *http.Client
	accessToken   string
	phoneNumberID string
}

func NewClient(accessToken, phoneNumberID string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		accessToken:   accessToken,
		phoneNumberID: phoneNumberID,
	}
}

// SendResponse maps a bot response onto the Cloud API schema and delivers
// it. Failures are logged, never retried; the bool is the success flag.
func (c *Client) SendResponse(ctx context.Context, to string, resp botTypes.Response) bool {
	var payload interface{}

	switch {
	case resp.HasButtons():
		buttons := make([]interactiveButton, 0, len(resp.Buttons))
		for _, b := range resp.Buttons {
			buttons = append(buttons, interactiveButton{
				Type:  "reply",
				Reply: buttonReply{ID: b.ID, Title: b.Title},
			})
		}
		payload = interactiveMessage{
			MessagingProduct: "whatsapp",
			To:               to,
			Type:             "interactive",
			Interactive: interactiveBody{
				Type:   "button",
				Body:   textBody{Body: resp.Text},
				Action: &interactiveAction{Buttons: buttons},
			},
		}
	case resp.HasList():
		rows := make([]listRow, 0, len(resp.List))
		for _, item := range resp.List {
			rows = append(rows, listRow{ID: item.ID, Title: item.Title, Description: item.Description})
		}
		payload = interactiveMessage{
			MessagingProduct: "whatsapp",
			To:               to,
			Type:             "interactive",
			Interactive: interactiveBody{
				Type: "list",
				Body: textBody{Body: resp.Text},
				Action: &interactiveAction{
					Button:   "View options",
					Sections: []listSection{{Title: resp.ListTitle, Rows: rows}},
				},
			},
		}
	default:
		payload = textMessage{
			MessagingProduct: "whatsapp",
			To:               to,
			Type:             "text",
			Text:             textBody{Body: resp.Text},
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Failed to marshal WhatsApp message", err)
		return false
	}

	endpoint := fmt.Sprintf("%s/%s/messages", graphAPIBase, c.phoneNumberID)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewBuffer(body))
	if err != nil {
		logger.Error("Failed to build WhatsApp request", err)
		return false
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.accessToken)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		logger.Error("Failed to send WhatsApp message", err)
		return false
	}
	defer httpResp.Body.Close()

	var apiResp sendResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&apiResp); err != nil {
		logger.Error("Failed to decode WhatsApp send response", err)
		return false
	}

	if httpResp.StatusCode != http.StatusOK || apiResp.Error != nil {
		msg := httpResp.Status
		if apiResp.Error != nil {
			msg = fmt.Sprintf("%s (code %d)", apiResp.Error.Message, apiResp.Error.Code)
		}
		logger.Error("WhatsApp API rejected message: "+msg, nil)
		return false
	}

	return true
}
