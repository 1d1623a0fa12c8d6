// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package twilio provides a client for sending SMS messages through the
// Twilio Messages API.
package twilio

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"tweetwatch/internal/request"
)

const defaultAPI = "https://api.twilio.com/2010-04-01"

// Client represents a Twilio Messages API client.
type Client struct {
	// AccountSID and AuthToken are the Twilio API credentials.
	AccountSID string
	AuthToken  string
	// From and To are the sending and receiving phone numbers.
	From string
	To   string
	// BaseURL overrides the API base URL. If empty, the production API is used.
	BaseURL string
	// HTTPClient is an optional custom HTTP client object to use for requests.
	// If not provided, request.DefaultClient will be used.
	HTTPClient *http.Client
	// Scrubber is an optional strings.Replacer that scrubs unwanted data from
	// error messages.
	Scrubber *strings.Replacer
}

// Message holds the delivery receipt Twilio returns for an accepted message.
type Message struct {
	SID    string `json:"sid"`
	Status string `json:"status"`
}

// Send sends an SMS with the given body and returns the delivery receipt.
func (c *Client) Send(ctx context.Context, body string) (*Message, error) {
	api := defaultAPI
	if c.BaseURL != "" {
		api = c.BaseURL
	}

	msg, err := request.Make[*Message](ctx, request.Params{
		Method: http.MethodPost,
		URL:    api + "/Accounts/" + url.PathEscape(c.AccountSID) + "/Messages.json",
		Form: url.Values{
			"From": {c.From},
			"To":   {c.To},
			"Body": {body},
		},
		BasicAuth:  [2]string{c.AccountSID, c.AuthToken},
		HTTPClient: c.HTTPClient,
		Scrubber:   c.Scrubber,
	})
	if err != nil {
		return nil, fmt.Errorf("sending SMS: %w", err)
	}
	return msg, nil
}
