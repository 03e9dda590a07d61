package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bp4sp4/NMS-System-sub001/internal/domain/notify"

	"github.com/google/uuid"
)

// SMSChannel posts through an Aligo-style SMS gateway (form-encoded,
// JSON response with result_code "1" on success).
type SMSChannel struct {
	client *http.Client
	apiURL string
	apiKey string
	sender string
	lookup ContactLookup
}

func NewSMSChannel(apiURL, apiKey, sender string, lookup ContactLookup) *SMSChannel {
	return &SMSChannel{
		client: &http.Client{Timeout: 5 * time.Second},
		apiURL: apiURL,
		apiKey: apiKey,
		sender: sender,
		lookup: lookup,
	}
}

func (c *SMSChannel) Name() string { return "sms" }

func (c *SMSChannel) Send(ctx context.Context, n notify.Notification) error {
	phone, err := c.lookup(ctx, n.UserID)
	if err != nil {
		return fmt.Errorf("contact lookup: %w", err)
	}
	if phone == "" {
		return nil // no contact on file
	}

	form := url.Values{}
	form.Set("key", c.apiKey)
	form.Set("sender", c.sender)
	form.Set("receiver", phone)
	form.Set("msg", messageBody(n))
	form.Set("msg_type", "SMS")
	form.Set("cust_ref", uuid.NewString()) // per-message trace id

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("sms gateway returned status %d: %s", resp.StatusCode, body)
	}

	// The gateway reports errors inside a 200 body.
	var out struct {
		ResultCode json.Number `json:"result_code"`
		Message    string      `json:"message"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if out.ResultCode.String() != "1" {
		return fmt.Errorf("sms gateway error code %s: %s", out.ResultCode, out.Message)
	}
	return nil
}
