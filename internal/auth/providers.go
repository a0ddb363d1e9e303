package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/facebook"
	"google.golang.org/api/idtoken"
)

// ErrProviderRejected means the provider did not accept the credential.
var ErrProviderRejected = errors.New("provider rejected the credential")

// Account is the profile a provider returns for a credential.
type Account struct {
	ID    string
	Name  string
	Email string
	// Raw is the full provider profile, stored alongside the user.
	Raw map[string]any
}

// FacebookVerifier exchanges a Facebook access token for the account's profile.
type FacebookVerifier struct {
	GraphURL string
	Client   *http.Client
}

func NewFacebookVerifier(graphURL string) *FacebookVerifier {
	return &FacebookVerifier{
		GraphURL: strings.TrimRight(graphURL, "/"),
		Client:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (f *FacebookVerifier) Verify(ctx context.Context, accessToken string) (*Account, error) {
	if accessToken == "" {
		return nil, ErrProviderRejected
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, f.Client)
	conf := &oauth2.Config{Endpoint: facebook.Endpoint}
	client := conf.Client(ctx, &oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.GraphURL+"/me?fields=id,name,email", nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("facebook graph: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized {
		io.Copy(io.Discard, resp.Body)
		return nil, ErrProviderRejected
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("facebook graph: status %d: %s", resp.StatusCode, body)
	}

	var raw map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("facebook graph: decode: %w", err)
	}
	account := &Account{Raw: raw}
	account.ID, _ = raw["id"].(string)
	account.Name, _ = raw["name"].(string)
	account.Email, _ = raw["email"].(string)
	if account.ID == "" {
		return nil, ErrProviderRejected
	}
	return account, nil
}

// GoogleVerifier validates Google ID tokens issued for one client id.
type GoogleVerifier struct {
	ClientID string
	validate func(ctx context.Context, token, audience string) (*idtoken.Payload, error)
}

func NewGoogleVerifier(clientID string) *GoogleVerifier {
	return &GoogleVerifier{ClientID: clientID, validate: idtoken.Validate}
}

func (g *GoogleVerifier) Verify(ctx context.Context, idToken string) (*Account, error) {
	if idToken == "" {
		return nil, ErrProviderRejected
	}
	payload, err := g.validate(ctx, idToken, g.ClientID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderRejected, err)
	}

	raw := make(map[string]any, len(payload.Claims))
	for k, v := range payload.Claims {
		raw[k] = v
	}
	account := &Account{ID: payload.Subject, Raw: raw}
	account.Name, _ = payload.Claims["name"].(string)
	account.Email, _ = payload.Claims["email"].(string)
	return account, nil
}
