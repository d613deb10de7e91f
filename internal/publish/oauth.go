package publish

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"
)

const (
	authURL  = "https://www.linkedin.com/oauth/v2/authorization"
	tokenURL = "https://www.linkedin.com/oauth/v2/accessToken"
)

// Scopes requested by the authorization flow
var Scopes = []string{"openid", "profile", "email", "w_member_social"}

// OAuthFlow runs the authorization-code flow against a local callback listener.
type OAuthFlow struct {
	Config *oauth2.Config
	now    func() time.Time
}

// NewOAuthFlow configures the flow for a LinkedIn app.
func NewOAuthFlow(clientID, clientSecret, redirectURI string) (*OAuthFlow, error) {
	if clientID == "" || clientSecret == "" {
		return nil, fmt.Errorf("%w: LINKEDIN_CLIENT_ID and LINKEDIN_CLIENT_SECRET are required", ErrNoCredential)
	}
	if _, err := url.Parse(redirectURI); err != nil {
		return nil, fmt.Errorf("invalid redirect URI: %w", err)
	}
	return &OAuthFlow{
		Config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURI,
			Scopes:       Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   authURL,
				TokenURL:  tokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		now: time.Now,
	}, nil
}

// NewState returns a random state value
func NewState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

type callbackResult struct {
	code string
	err  error
}

// Run calls show with the authorization URL, then waits for the callback on
// the redirect URI's host:port. A callback whose state does not match is rejected.
func (f *OAuthFlow) Run(ctx context.Context, show func(authURL string)) (*Token, error) {
	redirect, err := url.Parse(f.Config.RedirectURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redirect URI: %w", err)
	}
	state, err := NewState()
	if err != nil {
		return nil, err
	}

	listener, err := net.Listen("tcp", redirect.Host)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", redirect.Host, err)
	}

	results := make(chan callbackResult, 1)
	path := redirect.Path
	if path == "" {
		path = "/"
	}
	mux := http.NewServeMux()
	mux.HandleFunc(path, f.callbackHandler(state, results))

	server := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() { _ = server.Serve(listener) }()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	show(f.Config.AuthCodeURL(state))

	var res callbackResult
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-results:
	}
	if res.err != nil {
		return nil, res.err
	}
	return f.Exchange(ctx, res.code)
}

func (f *OAuthFlow) callbackHandler(state string, results chan<- callbackResult) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		var res callbackResult
		switch {
		case q.Get("error") != "":
			res.err = fmt.Errorf("authorization denied: %s %s", q.Get("error"), q.Get("error_description"))
		case q.Get("state") != state:
			res.err = errors.New("authorization callback state mismatch")
		case q.Get("code") == "":
			res.err = errors.New("authorization callback has no code")
		default:
			res.code = q.Get("code")
		}

		if res.err != nil {
			http.Error(w, res.err.Error(), http.StatusBadRequest)
		} else {
			_, _ = fmt.Fprintln(w, "Authorization complete. You can close this window.")
		}

		select {
		case results <- res:
		default:
		}
	}
}

// Exchange trades an authorization code for a token.
func (f *OAuthFlow) Exchange(ctx context.Context, code string) (*Token, error) {
	tok, err := f.Config.Exchange(ctx, code)
	if err != nil {
		return nil, &Error{Message: "failed to exchange authorization code", Cause: err}
	}

	out := &Token{
		AccessToken: tok.AccessToken,
		ExpiresAt:   tok.Expiry,
		ObtainedAt:  f.now(),
	}
	if idToken, ok := tok.Extra("id_token").(string); ok {
		out.IDToken = idToken
	}
	return out, nil
}
