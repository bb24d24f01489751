package api

import "context"

// TokenAuthPath exchanges a username and password for a credential.
const TokenAuthPath = "/token-auth/"

// TokenRequest is the credential exchange body.
type TokenRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenResponse is the credential exchange result.
type TokenResponse struct {
	Token string `json:"token"`
}

// ObtainToken posts the credentials to TokenAuthPath and returns the token.
// It does not interpret an empty token; callers decide.
func (c *Client) ObtainToken(ctx context.Context, username, password string) (string, error) {
	var resp TokenResponse
	if err := c.Post(ctx, TokenAuthPath, TokenRequest{Username: username, Password: password}, &resp); err != nil {
		return "", err
	}
	return resp.Token, nil
}
