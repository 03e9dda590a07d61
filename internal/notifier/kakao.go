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
)

// KakaoChannel posts AlimTalk messages. Same gateway family as the SMS
// channel but a different endpoint, key names, and success code (0).
type KakaoChannel struct {
	client    *http.Client
	apiURL    string
	apiKey    string
	senderKey string
	lookup    ContactLookup
}

func NewKakaoChannel(apiURL, apiKey, senderKey string, lookup ContactLookup) *KakaoChannel {
	return &KakaoChannel{
		client:    &http.Client{Timeout: 5 * time.Second},
		apiURL:    apiURL,
		apiKey:    apiKey,
		senderKey: senderKey,
		lookup:    lookup,
	}
}

func (c *KakaoChannel) Name() string { return "kakao" }

// templateFor maps a document event to the registered AlimTalk template.
func templateFor(event notify.EventKind) string {
	switch event {
	case notify.EventApprovalRequested:
		return "APV_REQ_01"
	case notify.EventEscalated:
		return "APV_ESC_01"
	default:
		return "APV_RES_01"
	}
}

func (c *KakaoChannel) Send(ctx context.Context, n notify.Notification) error {
	phone, err := c.lookup(ctx, n.UserID)
	if err != nil {
		return fmt.Errorf("contact lookup: %w", err)
	}
	if phone == "" {
		return nil
	}

	form := url.Values{}
	form.Set("apikey", c.apiKey)
	form.Set("senderkey", c.senderKey)
	form.Set("tpl_code", templateFor(n.Event))
	form.Set("receiver_1", phone)
	form.Set("subject_1", n.Title)
	form.Set("message_1", messageBody(n))

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
		return fmt.Errorf("alimtalk gateway returned status %d: %s", resp.StatusCode, body)
	}

	var out struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if out.Code != 0 {
		return fmt.Errorf("alimtalk gateway error code %d: %s", out.Code, out.Message)
	}
	return nil
}
