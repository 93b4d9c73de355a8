package config

import (
	"github.com/kelseyhightower/envconfig"
)

type AppConfig struct {
	Port          string `envconfig:"PORT" default:"8080"`
	SessionSecret string `envconfig:"SESSION_SECRET" default:"change-me"`
	Currency      string `envconfig:"CURRENCY" default:"usd"`
}

type AfricaTalkingConfig struct {
	Username string `envconfig:"AT_USERNAME"`
	APIKey   string `envconfig:"AT_API_KEY"`
	SMSURL   string `envconfig:"AT_SMS_URL" default:"https://api.sandbox.africastalking.com/version1/messaging"` // Sandbox URL
	SenderID string `envconfig:"AT_SENDER_ID" default:"AFRICASTKNG"`                                             // Default sandbox sender ID
}

type EmailConfig struct {
	AWSAccessKeyID     string `envconfig:"AWS_ACCESS_KEY_ID"`
	AWSSecretAccessKey string `envconfig:"AWS_SECRET_ACCESS_KEY"`
	AWSRegion          string `envconfig:"AWS_REGION" default:"us-east-1"`
	SenderEmail        string `envconfig:"AWS_SENDER_ADDRESS"`
}

type StripeConfig struct {
	SecretKey string `envconfig:"STRIPE_SECRET_KEY"`
	ChargeURL string `envconfig:"STRIPE_CHARGE_URL" default:"https://api.stripe.com/v1/charges"`
}

type OIDCConfig struct {
	Issuer       string `envconfig:"OIDC_ISSUER"`
	ClientID     string `envconfig:"OIDC_CLIENT_ID"`
	ClientSecret string `envconfig:"OIDC_CLIENT_SECRET"`
	RedirectURL  string `envconfig:"OIDC_REDIRECT_URL"`
}

func LoadAppConfig() AppConfig {
	var cfg AppConfig
	envconfig.MustProcess("", &cfg)
	return cfg
}

func LoadAfricaTalkingConfig() AfricaTalkingConfig {
	var cfg AfricaTalkingConfig
	envconfig.MustProcess("", &cfg)
	return cfg
}

func LoadEmailConfig() EmailConfig {
	var cfg EmailConfig
	envconfig.MustProcess("", &cfg)
	return cfg
}

func LoadStripeConfig() StripeConfig {
	var cfg StripeConfig
	envconfig.MustProcess("", &cfg)
	return cfg
}

func LoadOIDCConfig() OIDCConfig {
	var cfg OIDCConfig
	envconfig.MustProcess("", &cfg)
	return cfg
}
