package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"merchant-backoffice/internal/config"
	"merchant-backoffice/internal/models"
)

var smsClient = &http.Client{Timeout: 15 * time.Second}

// SendSMS delivers a text message through the Twilio REST API.
func SendSMS(ctx context.Context, msg models.Message, cfg config.Config) error {
	if !strings.HasPrefix(msg.Recipient, "+") {
		return fmt.Errorf("invalid phone number: %s", msg.Recipient)
	}

	accountSID := cfg.SMS.AccountSID
	authToken := cfg.SMS.AuthToken
	fromNumber := cfg.SMS.FromNumber
	if accountSID == "" || authToken == "" || fromNumber == "" {
		return fmt.Errorf("missing SMS configuration: AccountSID, AuthToken, or FromNumber is empty")
	}

	urlStr := fmt.Sprintf("https://api.twilio.com/2010-04-01/Accounts/%s/Messages.json", accountSID)
	msgData := url.Values{}
	msgData.Set("To", msg.Recipient)
	msgData.Set("From", fromNumber)
	msgData.Set("Body", msg.Body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, urlStr, strings.NewReader(msgData.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create SMS request for %s: %w", msg.Recipient, err)
	}
	req.SetBasicAuth(accountSID, authToken)
	req.Header.Add("Accept", "application/json")
	req.Header.Add("Content-Type", "application/x-www-form-urlencoded")

	resp, err := smsClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send SMS to %s: %w", msg.Recipient, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("Twilio API returned status %d for %s", resp.StatusCode, msg.Recipient)
	}
	return nil
}
