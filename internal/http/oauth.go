package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
	"golang.org/x/oauth2/google"

	"github.com/akapochi/event-management/internal/application"
)

// ProfileFetcher retrieves the authenticated user's profile from an identity
// provider using an OAuth-authorized HTTP client.
type ProfileFetcher func(ctx context.Context, client *http.Client) (application.UserProfile, error)

// OAuthProvider bundles a provider's oauth2 configuration with the profile
// fetch that completes its login.
type OAuthProvider struct {
	Name         string
	Config       *oauth2.Config
	FetchProfile ProfileFetcher
}

// Overridable in tests that stand in for the provider APIs.
var (
	githubUserURL       = "https://api.github.com/user"
	githubUserEmailsURL = "https://api.github.com/user/emails"
	googleUserInfoURL   = "https://www.googleapis.com/oauth2/v2/userinfo"
)

// NewGitHubProvider builds the GitHub login provider.
func NewGitHubProvider(clientID, clientSecret, redirectURL string) OAuthProvider {
	return OAuthProvider{
		Name: "github",
		Config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"user:email"},
			Endpoint:     github.Endpoint,
		},
		FetchProfile: fetchGitHubProfile,
	}
}

// NewGoogleProvider builds the Google login provider.
func NewGoogleProvider(clientID, clientSecret, redirectURL string) OAuthProvider {
	return OAuthProvider{
		Name: "google",
		Config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"openid", "profile", "email"},
			Endpoint:     google.Endpoint,
		},
		FetchProfile: fetchGoogleProfile,
	}
}

func fetchGitHubProfile(ctx context.Context, client *http.Client) (application.UserProfile, error) {
	var payload struct {
		ID    int64  `json:"id"`
		Login string `json:"login"`
		Email string `json:"email"`
	}
	if err := fetchJSON(ctx, client, githubUserURL, &payload); err != nil {
		return application.UserProfile{}, fmt.Errorf("failed to fetch github user: %w", err)
	}
	if payload.ID == 0 {
		return application.UserProfile{}, fmt.Errorf("github user payload is missing an id")
	}

	email := payload.Email
	if email == "" {
		// The /user endpoint omits the email unless it is public; fall back
		// to the primary verified address.
		var emails []struct {
			Email    string `json:"email"`
			Primary  bool   `json:"primary"`
			Verified bool   `json:"verified"`
		}
		if err := fetchJSON(ctx, client, githubUserEmailsURL, &emails); err == nil {
			for _, entry := range emails {
				if entry.Primary && entry.Verified {
					email = entry.Email
					break
				}
			}
		}
	}

	return application.UserProfile{
		UserID:      strconv.FormatInt(payload.ID, 10),
		Username:    payload.Login,
		MailAddress: email,
	}, nil
}

func fetchGoogleProfile(ctx context.Context, client *http.Client) (application.UserProfile, error) {
	var payload struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := fetchJSON(ctx, client, googleUserInfoURL, &payload); err != nil {
		return application.UserProfile{}, fmt.Errorf("failed to fetch google userinfo: %w", err)
	}
	if payload.ID == "" {
		return application.UserProfile{}, fmt.Errorf("google userinfo payload is missing an id")
	}

	username := payload.Name
	if username == "" {
		username = payload.Email
	}

	return application.UserProfile{
		UserID:      payload.ID,
		Username:    username,
		MailAddress: payload.Email,
	}, nil
}

func fetchJSON(ctx context.Context, client *http.Client, url string, out any) error {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
