package auth

import (
	"context"
	"log"
	"net/http"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"

	config "github.com/Jonas-spec/soko/configs"
	"github.com/Jonas-spec/soko/internal/db"
	"github.com/Jonas-spec/soko/internal/models"
)

var (
	provider     *oidc.Provider
	verifier     *oidc.IDTokenVerifier
	oauth2Config *oauth2.Config
)

// InitOIDC wires the optional SSO sign-in path. Returns false when no issuer
// is configured; the routes should then not be registered. SSO accounts are
// always customers; vendors register through the draft flow.
func InitOIDC(cfg config.OIDCConfig) bool {
	if cfg.Issuer == "" {
		return false
	}

	ctx := context.Background()

	var err error
	provider, err = oidc.NewProvider(ctx, cfg.Issuer)
	if err != nil {
		log.Fatalf("OIDC provider init error: %v", err)
	}

	verifier = provider.Verifier(&oidc.Config{ClientID: cfg.ClientID})

	oauth2Config = &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Endpoint:     provider.Endpoint(),
		Scopes:       []string{oidc.ScopeOpenID, "profile", "email", "phone"},
	}

	return true
}

// GET /auth/oidc/login
func OIDCLogin(c *gin.Context) {
	state := "rand" // TODO: generate & store real CSRF-safe state if needed
	url := oauth2Config.AuthCodeURL(state)
	c.Redirect(http.StatusFound, url)
}

// GET /auth/oidc/callback
func OIDCCallback(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "code missing"})
		return
	}

	ctx := c.Request.Context()
	oauth2Token, err := oauth2Config.Exchange(ctx, code)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token exchange failed"})
		return
	}

	rawIDToken, ok := oauth2Token.Extra("id_token").(string)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no id_token in token response"})
		return
	}

	idToken, err := verifier.Verify(ctx, rawIDToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "token verification failed"})
		return
	}

	// Extract claims
	var claims struct {
		Sub   string `json:"sub"`
		Name  string `json:"name"`
		Email string `json:"email"`
		Phone string `json:"phone_number"`
	}
	if err := idToken.Claims(&claims); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "claims parse error"})
		return
	}

	// Upsert customer-role user
	var user models.User
	if err := db.DB.Where("oidc_id = ?", claims.Sub).First(&user).Error; err != nil {
		user = models.User{
			OIDCID: claims.Sub,
			Name:   claims.Name,
			Email:  claims.Email,
			Phone:  claims.Phone,
			Role:   models.RoleCustomer,
		}
		db.DB.Create(&user)
	}

	sess := sessions.Default(c)
	sess.Set("user_id", user.ID)
	_ = sess.Save()

	c.JSON(http.StatusOK, gin.H{"message": "logged in", "user": user})
}
