package config

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port               string `envconfig:"PORT" default:"8080"`
	Environment        string `envconfig:"ENV" default:"development"`
	DBConnectionString string `envconfig:"DB_CONNECTION_STRING" required:"true"`
	JWTSecret          string `envconfig:"SUPABASE_JWT_SECRET" required:"true"`
	AllowedOrigins     string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:5173"`

	// OpenAI settings. The API key may instead live in Secret Manager; see
	// OpenAIKeySecretName.
	OpenAIAPIKey        string `envconfig:"OPENAI_API_KEY"`
	OpenAIBaseURL       string `envconfig:"OPENAI_BASE_URL" default:"https://api.openai.com/v1"`
	OpenAIModel         string `envconfig:"OPENAI_MODEL" default:"gpt-4o"`
	OpenAIKeySecretName string `envconfig:"OPENAI_KEY_SECRET_NAME" default:"openai-api-key"`

	// Free-tier settings
	FreeCourseLimit int `envconfig:"FREE_COURSE_LIMIT" default:"3"`

	// Temporary course settings (unauthenticated users)
	TempCourseTTLMinutes int `envconfig:"TEMP_COURSE_TTL_MINUTES" default:"60"`

	// Stripe settings
	StripeSecretKey     string `envconfig:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret string `envconfig:"STRIPE_WEBHOOK_SECRET"`
	StripePriceCourse   string `envconfig:"STRIPE_PRICE_COURSE"`
	CheckoutReturnURL   string `envconfig:"CHECKOUT_RETURN_URL" default:"http://localhost:5173"`

	// GCP settings (Pub/Sub events, Secret Manager credentials)
	GCPProjectID      string `envconfig:"GCP_PROJECT_ID"`
	GCPProjectIDLocal string `envconfig:"GCP_PROJECT_ID_LOCAL"`
	EventsTopic       string `envconfig:"EVENTS_TOPIC" default:"course_events"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// GetGCPProjectID returns the project ID for the current environment.
func (c *Config) GetGCPProjectID() string {
	if c.Environment == "development" && c.GCPProjectIDLocal != "" {
		return c.GCPProjectIDLocal
	}
	return c.GCPProjectID
}
