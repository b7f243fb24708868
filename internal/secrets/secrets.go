package secrets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
)

// SecretName is the single Secrets Manager entry holding every
// integration credential as a provider to key map.
const SecretName = "lead-services/integrations"

// ErrProviderNotFound means no credential is stored for the provider.
var ErrProviderNotFound = errors.New("no credential stored for provider")

// SMClient is the slice of the Secrets Manager API the store needs.
type SMClient interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
	CreateSecret(ctx context.Context, params *secretsmanager.CreateSecretInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.CreateSecretOutput, error)
	PutSecretValue(ctx context.Context, params *secretsmanager.PutSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.PutSecretValueOutput, error)
}

// Store keeps third-party integration credentials in Secrets Manager
// so API keys never land in the database.
type Store struct {
	Client SMClient
}

func NewStore(ctx context.Context, region string) (*Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("error loading AWS config: %w", err)
	}
	return &Store{Client: secretsmanager.NewFromConfig(awsCfg)}, nil
}

func NewStoreWithClient(client SMClient) *Store {
	return &Store{Client: client}
}

func (s *Store) load(ctx context.Context) (map[string]string, bool, error) {
	out, err := s.Client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(SecretName),
	})
	if err != nil {
		var notFound *types.ResourceNotFoundException
		if errors.As(err, &notFound) {
			return map[string]string{}, false, nil
		}
		return nil, false, fmt.Errorf("error reading integrations secret: %w", err)
	}

	creds := map[string]string{}
	if out.SecretString != nil && *out.SecretString != "" {
		if err := json.Unmarshal([]byte(*out.SecretString), &creds); err != nil {
			return nil, false, fmt.Errorf("error decoding integrations secret: %w", err)
		}
	}
	return creds, true, nil
}

func (s *Store) save(ctx context.Context, creds map[string]string, exists bool) error {
	raw, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("error encoding integrations secret: %w", err)
	}
	value := string(raw)

	if !exists {
		_, err = s.Client.CreateSecret(ctx, &secretsmanager.CreateSecretInput{
			Name:         aws.String(SecretName),
			SecretString: aws.String(value),
		})
		if err != nil {
			return fmt.Errorf("error creating integrations secret: %w", err)
		}
		return nil
	}

	_, err = s.Client.PutSecretValue(ctx, &secretsmanager.PutSecretValueInput{
		SecretId:     aws.String(SecretName),
		SecretString: aws.String(value),
	})
	if err != nil {
		return fmt.Errorf("error updating integrations secret: %w", err)
	}
	return nil
}

// Put stores or replaces the credential for a provider.
func (s *Store) Put(ctx context.Context, provider, key string) error {
	creds, exists, err := s.load(ctx)
	if err != nil {
		return err
	}
	creds[provider] = key
	return s.save(ctx, creds, exists)
}

// Get returns the credential for a provider.
func (s *Store) Get(ctx context.Context, provider string) (string, error) {
	creds, _, err := s.load(ctx)
	if err != nil {
		return "", err
	}
	key, ok := creds[provider]
	if !ok {
		return "", ErrProviderNotFound
	}
	return key, nil
}

// List returns the providers with stored credentials, never the
// credentials themselves.
func (s *Store) List(ctx context.Context) ([]string, error) {
	creds, _, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	providers := make([]string, 0, len(creds))
	for p := range creds {
		providers = append(providers, p)
	}
	sort.Strings(providers)
	return providers, nil
}

// Delete removes a provider's credential.
func (s *Store) Delete(ctx context.Context, provider string) error {
	creds, exists, err := s.load(ctx)
	if err != nil {
		return err
	}
	if _, ok := creds[provider]; !ok {
		return ErrProviderNotFound
	}
	delete(creds, provider)
	return s.save(ctx, creds, exists)
}
