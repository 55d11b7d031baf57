package sms

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// Result reports the outcome of a send attempt. Delivery failure is never
// fatal for callers: OTP flows fall back to a low-trust channel and visit
// alerts are dropped silently.
type Result struct {
	Delivered bool
	Reference string
	Reason    string
}

// Sender delivers a text message to a phone number.
type Sender interface {
	Send(ctx context.Context, to, body string) Result
}

const (
	twilioBaseURL  = "https://api.twilio.com"
	requestTimeout = 5 * time.Second
)

// TwilioSender sends messages through the Twilio Messages REST API.
type TwilioSender struct {
	accountSID string
	authToken  string
	from       string
	baseURL    string
	client     *http.Client
}

// NewTwilioSender creates a sender with a time-bounded HTTP client.
func NewTwilioSender(accountSID, authToken, from string) *TwilioSender {
	return &TwilioSender{
		accountSID: accountSID,
		authToken:  authToken,
		from:       from,
		baseURL:    twilioBaseURL,
		client:     &http.Client{Timeout: requestTimeout},
	}
}

func (s *TwilioSender) Send(ctx context.Context, to, body string) Result {
	form := url.Values{
		"To":   {WithCallPrefix(to)},
		"From": {s.from},
		"Body": {body},
	}

	endpoint := s.baseURL + "/2010-04-01/Accounts/" + s.accountSID + "/Messages.json"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return Result{Reason: err.Error()}
	}
	req.SetBasicAuth(s.accountSID, s.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return Result{Reason: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return Result{Reason: fmt.Sprintf("provider returned status %d", resp.StatusCode)}
	}

	var payload struct {
		Sid string `json:"sid"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Result{Reason: "failed to decode provider response: " + err.Error()}
	}

	log.Printf("SMS sent to %s (sid %s)", WithCallPrefix(to), payload.Sid)
	return Result{Delivered: true, Reference: payload.Sid}
}

// LogSender is the fallback when no provider credentials are configured. It
// writes the message to the server log and reports the send as undelivered.
type LogSender struct{}

func (LogSender) Send(_ context.Context, to, body string) Result {
	log.Printf("SMS NOT SENT (provider not configured) to=%s body=%q", WithCallPrefix(to), body)
	return Result{Reason: "sms provider not configured"}
}

// NewSenderFromEnv returns a TwilioSender when TWILIO_ACCOUNT_SID,
// TWILIO_AUTH_TOKEN and TWILIO_PHONE_NUMBER are all set, otherwise a LogSender.
func NewSenderFromEnv() Sender {
	sid := os.Getenv("TWILIO_ACCOUNT_SID")
	token := os.Getenv("TWILIO_AUTH_TOKEN")
	from := os.Getenv("TWILIO_PHONE_NUMBER")

	if sid == "" || token == "" || from == "" {
		log.Println("Twilio credentials not configured, SMS delivery degrades to server log")
		return LogSender{}
	}
	return NewTwilioSender(sid, token, from)
}

// WithCallPrefix ensures the number carries a leading international-call prefix.
func WithCallPrefix(number string) string {
	if strings.HasPrefix(number, "+") {
		return number
	}
	return "+" + number
}
