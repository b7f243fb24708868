package secrets

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockSMClient struct {
	mock.Mock
}

func (m *MockSMClient) GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*secretsmanager.GetSecretValueOutput), args.Error(1)
}

func (m *MockSMClient) CreateSecret(ctx context.Context, params *secretsmanager.CreateSecretInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.CreateSecretOutput, error) {
	args := m.Called(ctx, params)
	return &secretsmanager.CreateSecretOutput{}, args.Error(1)
}

func (m *MockSMClient) PutSecretValue(ctx context.Context, params *secretsmanager.PutSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.PutSecretValueOutput, error) {
	args := m.Called(ctx, params)
	return &secretsmanager.PutSecretValueOutput{}, args.Error(1)
}

func secretValue(s string) *secretsmanager.GetSecretValueOutput {
	return &secretsmanager.GetSecretValueOutput{SecretString: aws.String(s)}
}

func TestPutCreatesSecretWhenMissing(t *testing.T) {
	mockClient := new(MockSMClient)
	mockClient.On("GetSecretValue", mock.Anything, mock.Anything).
		Return(nil, &types.ResourceNotFoundException{})
	mockClient.On("CreateSecret", mock.Anything, mock.MatchedBy(func(in *secretsmanager.CreateSecretInput) bool {
		return *in.Name == SecretName && *in.SecretString == `{"hunter":"key-123"}`
	})).Return(nil, nil)

	store := NewStoreWithClient(mockClient)
	err := store.Put(context.Background(), "hunter", "key-123")

	assert.NoError(t, err, "expected put to succeed")
	mockClient.AssertExpectations(t)
}

func TestPutMergesIntoExistingSecret(t *testing.T) {
	mockClient := new(MockSMClient)
	mockClient.On("GetSecretValue", mock.Anything, mock.Anything).
		Return(secretValue(`{"hunter":"key-123"}`), nil)
	mockClient.On("PutSecretValue", mock.Anything, mock.MatchedBy(func(in *secretsmanager.PutSecretValueInput) bool {
		return *in.SecretString == `{"clearbit":"key-456","hunter":"key-123"}`
	})).Return(nil, nil)

	store := NewStoreWithClient(mockClient)
	err := store.Put(context.Background(), "clearbit", "key-456")

	assert.NoError(t, err)
	mockClient.AssertExpectations(t)
}

func TestGet(t *testing.T) {
	mockClient := new(MockSMClient)
	mockClient.On("GetSecretValue", mock.Anything, mock.Anything).
		Return(secretValue(`{"hunter":"key-123"}`), nil)

	store := NewStoreWithClient(mockClient)

	key, err := store.Get(context.Background(), "hunter")
	assert.NoError(t, err)
	assert.Equal(t, "key-123", key)

	_, err = store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrProviderNotFound)
}

func TestListReturnsProvidersOnly(t *testing.T) {
	mockClient := new(MockSMClient)
	mockClient.On("GetSecretValue", mock.Anything, mock.Anything).
		Return(secretValue(`{"hunter":"key-123","clearbit":"key-456"}`), nil)

	store := NewStoreWithClient(mockClient)
	providers, err := store.List(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, []string{"clearbit", "hunter"}, providers)
}

func TestDelete(t *testing.T) {
	mockClient := new(MockSMClient)
	mockClient.On("GetSecretValue", mock.Anything, mock.Anything).
		Return(secretValue(`{"hunter":"key-123"}`), nil)
	mockClient.On("PutSecretValue", mock.Anything, mock.MatchedBy(func(in *secretsmanager.PutSecretValueInput) bool {
		return *in.SecretString == `{}`
	})).Return(nil, nil)

	store := NewStoreWithClient(mockClient)

	err := store.Delete(context.Background(), "hunter")
	assert.NoError(t, err)
	mockClient.AssertExpectations(t)
}

func TestDeleteUnknownProvider(t *testing.T) {
	mockClient := new(MockSMClient)
	mockClient.On("GetSecretValue", mock.Anything, mock.Anything).
		Return(secretValue(`{}`), nil)

	store := NewStoreWithClient(mockClient)

	err := store.Delete(context.Background(), "hunter")
	assert.ErrorIs(t, err, ErrProviderNotFound)
	mockClient.AssertNotCalled(t, "PutSecretValue")
}
