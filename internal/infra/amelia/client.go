package amelia

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"

	"class-sync/internal/pkg/config"
	"class-sync/internal/pkg/errs"
	"class-sync/internal/usecase/commands"
)

// Client registers bookings through the booking plugin's admin-ajax API.
// The endpoint is the WordPress admin-ajax URL; the route is selected with
// the action/call query parameters and the token travels in the Amelia header.
type Client struct {
	endpoint string
	apiToken string
	timeZone string
	locale   string
	http     *http.Client
}

func NewClient(cfg config.Config) *Client {
	return &Client{
		endpoint: cfg.Amelia.Endpoint,
		apiToken: cfg.Amelia.APIToken,
		timeZone: cfg.Amelia.TimeZone,
		locale:   cfg.Amelia.Locale,
		http:     &http.Client{Timeout: cfg.Amelia.Timeout},
	}
}

type bookingRequest struct {
	Type               string         `json:"type"`
	EventID            int64          `json:"eventId"`
	EventPeriodID      *int64         `json:"eventPeriodId,omitempty"`
	Bookings           []bookingEntry `json:"bookings"`
	Payment            paymentEntry   `json:"payment"`
	Locale             string         `json:"locale"`
	TimeZone           string         `json:"timeZone"`
	NotifyParticipants int            `json:"notifyParticipants"`
}

type bookingEntry struct {
	Customer     customerEntry     `json:"customer"`
	CustomFields map[string]custom `json:"customFields"`
	Persons      int               `json:"persons"`
}

type customerEntry struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
}

type custom struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type paymentEntry struct {
	Gateway  string `json:"gateway"`
	Currency string `json:"currency"`
	Amount   int64  `json:"amount"`
}

func (c *Client) Register(ctx context.Context, reg commands.BookingRegistration) error {
	body := bookingRequest{
		Type:          "event",
		EventID:       reg.EventID,
		EventPeriodID: reg.EventPeriodID,
		Bookings: []bookingEntry{{
			Customer: customerEntry{
				Email:     reg.Email,
				FirstName: reg.FirstName,
				LastName:  reg.LastName,
				Phone:     reg.Phone,
			},
			CustomFields: map[string]custom{
				"1": {Label: "Formule", Value: reg.Formula},
				"2": {Label: "Plan de paiement", Value: reg.PlanName},
				"3": {Label: "Abonnement", Value: reg.SubscriptionID},
			},
			Persons: 1,
		}},
		Payment: paymentEntry{
			Gateway:  "onSite",
			Currency: "EUR",
			Amount:   reg.AmountCents,
		},
		Locale:             c.locale,
		TimeZone:           c.timeZone,
		NotifyParticipants: 1,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return errs.Wrap(err, "failed to encode booking payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.bookingURL(), bytes.NewReader(payload))
	if err != nil {
		return errs.Wrap(err, "failed to build booking request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Amelia", c.apiToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return errs.Wrap(err, "booking request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return errs.Newf("booking api returned %d: %s", resp.StatusCode, string(snippet))
	}
	return nil
}

func (c *Client) bookingURL() string {
	q := url.Values{}
	q.Set("action", "wpamelia_api")
	q.Set("call", "/api/v1/bookings")
	return c.endpoint + "?" + q.Encode()
}
