package pandora

import (
	"context"
	"encoding/json"
	"net/url"
)

// AccountService reads billing and account details.
type AccountService struct {
	client *Client
}

// Info returns the billing summary of the account.
func (s *AccountService) Info(ctx context.Context) (*BillingInfo, error) {
	return restCall[BillingInfo](ctx, s.client, "/api/v1/billing/infoV2", nil)
}

// AvailableProducts returns the subscription products offered to the account.
func (s *AccountService) AvailableProducts(ctx context.Context) (*Products, error) {
	return restCall[Products](ctx, s.client, "/api/v2/charon/getAvailableProducts", nil)
}

// CreditCard returns the stored payment card as raw JSON. Its shape varies
// by payment provider.
func (s *AccountService) CreditCard(ctx context.Context) (json.RawMessage, error) {
	var out json.RawMessage
	if err := s.client.Request(ctx, "/api/v1/billing/getCreditCardV2", nil, nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SSO signs the session into the community site. The server only sets
// cookies, which land in the client's jar.
func (s *AccountService) SSO(ctx context.Context) error {
	headers := map[string]string{"Content-Type": "application/x-www-form-urlencoded"}
	query := url.Values{"auth_token": {s.client.auth.Token()}}
	return s.client.Request(ctx, "/community/sso", nil, headers, query, nil)
}
