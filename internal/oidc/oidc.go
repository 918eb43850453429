package oidc

import (
	"context"
	"errors"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"github.com/wanderlist/wanderlist/internal/models"
	"github.com/wanderlist/wanderlist/pkg/middleware"
)

var (
	ErrNoIDToken     = errors.New("token response has no id_token")
	ErrNonceMismatch = errors.New("id token nonce mismatch")
	ErrMissingEmail  = errors.New("id token has no email claim")
)

// Verifier wraps the OIDC token verifier
type Verifier struct {
	verifier *oidc.IDTokenVerifier
}

// NewVerifier creates a new OIDC verifier for the given issuer and client ID
func NewVerifier(ctx context.Context, issuer, clientID string) (*Verifier, error) {
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to discover OIDC provider: %w", err)
	}
	return &Verifier{verifier: provider.Verifier(&oidc.Config{ClientID: clientID})}, nil
}

// Verify verifies the provided raw ID token using the provided context and returns a middleware.Token
func (v *Verifier) Verify(ctx context.Context, raw string) (middleware.Token, error) {
	idToken, err := v.verifier.Verify(ctx, raw)
	if err != nil {
		return nil, err
	}
	return idToken, nil
}

// Config holds the client registration used for the authorization-code flow.
type Config struct {
	IssuerURL    string
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
}

// Authenticator drives the browser login: redirect, code exchange and ID token checks.
type Authenticator struct {
	*Verifier
	oauth oauth2.Config
}

// NewAuthenticator discovers the provider and prepares the oauth2 client.
func NewAuthenticator(ctx context.Context, cfg Config) (*Authenticator, error) {
	provider, err := oidc.NewProvider(ctx, cfg.IssuerURL)
	if err != nil {
		return nil, fmt.Errorf("failed to discover OIDC provider: %w", err)
	}
	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = []string{oidc.ScopeOpenID, "email", "profile"}
	}
	oc := oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Endpoint:     provider.Endpoint(),
		Scopes:       scopes,
	}
	v := &Verifier{verifier: provider.Verifier(&oidc.Config{ClientID: cfg.ClientID})}
	return newAuthenticator(v, oc), nil
}

func newAuthenticator(v *Verifier, oc oauth2.Config) *Authenticator {
	return &Authenticator{Verifier: v, oauth: oc}
}

// AuthCodeURL is where the browser is sent to log in.
func (a *Authenticator) AuthCodeURL(state, nonce string) string {
	return a.oauth.AuthCodeURL(state, oidc.Nonce(nonce))
}

// Exchange trades the callback code for tokens and returns the verified principal.
func (a *Authenticator) Exchange(ctx context.Context, code, nonce string) (models.Principal, error) {
	tok, err := a.oauth.Exchange(ctx, code)
	if err != nil {
		return models.Principal{}, fmt.Errorf("code exchange: %w", err)
	}
	raw, ok := tok.Extra("id_token").(string)
	if !ok || raw == "" {
		return models.Principal{}, ErrNoIDToken
	}
	idt, err := a.verifier.Verify(ctx, raw)
	if err != nil {
		return models.Principal{}, fmt.Errorf("verify id token: %w", err)
	}
	if idt.Nonce != nonce {
		return models.Principal{}, ErrNonceMismatch
	}
	var claims map[string]interface{}
	if err := idt.Claims(&claims); err != nil {
		return models.Principal{}, fmt.Errorf("parse claims: %w", err)
	}
	p, ok := models.PrincipalFromClaims(claims)
	if !ok {
		return models.Principal{}, ErrMissingEmail
	}
	return p, nil
}
