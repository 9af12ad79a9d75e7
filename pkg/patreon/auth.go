package patreon

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"patreonscraper/pkg/errors"
)

type authRequest struct {
	Data authData `json:"data"`
}

type authData struct {
	Type       string         `json:"type"`
	Attributes authAttributes `json:"attributes"`
}

type authAttributes struct {
	PatreonAuth patreonAuth `json:"patreon_auth"`
	AuthContext string      `json:"auth_context"`
}

type patreonAuth struct {
	RedirectTarget       string `json:"redirect_target"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	AllowAccountCreation bool   `json:"allow_account_creation"`
}

// Login authenticates the session with an email and password.
// Only a 200 response counts as success; there is no retry.
func (c *Client) Login(ctx context.Context, email, password string) error {
	payload, err := json.Marshal(authRequest{
		Data: authData{
			Type: "genericPatreonApi",
			Attributes: authAttributes{
				PatreonAuth: patreonAuth{
					RedirectTarget:       HomeURL(c.baseURL),
					Email:                email,
					Password:             password,
					AllowAccountCreation: false,
				},
				AuthContext: "auth",
			},
		},
	})
	if err != nil {
		return errors.Wrap(errors.ErrorTypeProcessing, err, "failed to encode login payload")
	}

	ctx, cancel := c.apiContext(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, BuildURL(c.baseURL, AuthEndpoint, AuthParams()), bytes.NewReader(payload))
	if err != nil {
		return errors.Wrap(errors.ErrorTypeNetwork, err, "failed to create login request")
	}
	req.Header.Set("Content-Type", JSONAPIContentType)

	c.logger.DebugWithFields("logging in", map[string]interface{}{
		"email": email,
	})

	resp, err := c.doRequest(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkResponseStatus(resp); err != nil {
		return err
	}

	var doc Document
	if err := c.decodeBody(resp, &doc); err != nil {
		return err
	}

	fields := map[string]interface{}{"email": email}
	if len(doc.Data) > 0 {
		fields["user_id"] = doc.Data[0].ID
	}
	c.logger.InfoWithFields("login successful", fields)
	return nil
}
