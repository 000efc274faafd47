package service

import (
	"context"
	"fmt"

	"app/internal/config"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// CredentialProvider supplies the OpenAI API key. The key is read fresh on
// every generation call so a rotated key takes effect without a restart. An
// empty key with a nil error means no credential is configured.
type CredentialProvider interface {
	APIKey(ctx context.Context) (string, error)
}

// StaticCredentials serves a fixed key, typically from the environment.
type StaticCredentials struct {
	Key string
}

func (s StaticCredentials) APIKey(ctx context.Context) (string, error) {
	return s.Key, nil
}

// SecretManagerCredentials reads and stores the OpenAI key in Google Secret
// Manager, so managed deployments never carry it in the environment.
type SecretManagerCredentials struct {
	client     *secretmanager.Client
	projectID  string
	secretName string
}

func NewSecretManagerCredentials(ctx context.Context, cfg *config.Config) (*SecretManagerCredentials, error) {
	projectID := cfg.GetGCPProjectID()
	if projectID == "" {
		return nil, fmt.Errorf("GCP Project ID is not set for the current environment")
	}

	var opts []option.ClientOption
	client, err := secretmanager.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Secret Manager client: %w", err)
	}

	return &SecretManagerCredentials{
		client:     client,
		projectID:  projectID,
		secretName: cfg.OpenAIKeySecretName,
	}, nil
}

func (s *SecretManagerCredentials) secretPath() string {
	return fmt.Sprintf("projects/%s/secrets/%s", s.projectID, s.secretName)
}

// APIKey reads the latest secret version. Only a missing secret is reported
// as "no credential configured"; permission or transport failures propagate
// so they are not mistaken for an unset key.
func (s *SecretManagerCredentials) APIKey(ctx context.Context) (string, error) {
	result, err := s.client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: s.secretPath() + "/versions/latest",
	})
	if err != nil {
		if isSecretNotFound(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to access secret version: %w", err)
	}
	return string(result.Payload.Data), nil
}

// isSecretNotFound reports whether err means the secret (or version) does not
// exist, as opposed to a permission or transport failure.
func isSecretNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

// StoreAPIKey creates the secret if needed and adds the key as a new version.
func (s *SecretManagerCredentials) StoreAPIKey(ctx context.Context, apiKey string) error {
	secretExists := true
	_, err := s.client.GetSecret(ctx, &secretmanagerpb.GetSecretRequest{
		Name: s.secretPath(),
	})
	if err != nil {
		secretExists = false
	}

	if !secretExists {
		createReq := &secretmanagerpb.CreateSecretRequest{
			Parent:   fmt.Sprintf("projects/%s", s.projectID),
			SecretId: s.secretName,
			Secret: &secretmanagerpb.Secret{
				Replication: &secretmanagerpb.Replication{
					Replication: &secretmanagerpb.Replication_Automatic_{
						Automatic: &secretmanagerpb.Replication_Automatic{},
					},
				},
			},
		}
		if _, err := s.client.CreateSecret(ctx, createReq); err != nil {
			return fmt.Errorf("failed to create secret: %w", err)
		}
	}

	addVersionReq := &secretmanagerpb.AddSecretVersionRequest{
		Parent: s.secretPath(),
		Payload: &secretmanagerpb.SecretPayload{
			Data: []byte(apiKey),
		},
	}
	if _, err := s.client.AddSecretVersion(ctx, addVersionReq); err != nil {
		return fmt.Errorf("failed to add secret version: %w", err)
	}
	return nil
}

// DeleteAPIKey removes the secret entirely.
func (s *SecretManagerCredentials) DeleteAPIKey(ctx context.Context) error {
	err := s.client.DeleteSecret(ctx, &secretmanagerpb.DeleteSecretRequest{
		Name: s.secretPath(),
	})
	if err != nil {
		return fmt.Errorf("failed to delete secret: %w", err)
	}
	return nil
}

// CredentialStore is implemented by providers that can also persist a key.
type CredentialStore interface {
	CredentialProvider
	StoreAPIKey(ctx context.Context, apiKey string) error
	DeleteAPIKey(ctx context.Context) error
}
