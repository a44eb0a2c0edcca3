package notify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	sc "github.com/svalekar/voterreg/internal/server/config"
)

// WhatsAppClient posts messages to a WhatsApp business API gateway using
// form-encoded requests authenticated by account id + token.
type WhatsAppClient struct {
	baseURL   string
	accountID string
	authToken string
	sender    string
	client    *http.Client
}

func NewWhatsAppClient(config *sc.Config) *WhatsAppClient {
	return &WhatsAppClient{
		baseURL:   strings.TrimRight(config.WhatsAppBaseURL, "/"),
		accountID: config.WhatsAppAccountID,
		authToken: config.WhatsAppAuthToken,
		sender:    config.WhatsAppSender,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *WhatsAppClient) Send(ctx context.Context, phone, message string) error {

	form := url.Values{}
	form.Set("From", "whatsapp:"+c.sender)
	form.Set("To", "whatsapp:+91"+phone)
	form.Set("Body", message)

	endpoint := fmt.Sprintf("%s/accounts/%s/messages", c.baseURL, c.accountID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("notification error: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.accountID, c.authToken)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("notification error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("notification error: gateway returned %d", resp.StatusCode)
	}

	return nil
}
