package outreach

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/leadflowhq/lead-services/internal/appconfig"
)

var testLogger = zerolog.Nop()

type MockSESClient struct {
	mock.Mock
}

func (m *MockSESClient) SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(*sesv2.SendEmailOutput), args.Error(1)
}

func TestEmailSenderSend(t *testing.T) {
	mockClient := new(MockSESClient)
	mockClient.On("SendEmail", mock.Anything, mock.MatchedBy(func(in *sesv2.SendEmailInput) bool {
		return *in.FromEmailAddress == "sales@example.com" &&
			in.Destination.ToAddresses[0] == "lead@example.com"
	})).Return(&sesv2.SendEmailOutput{}, nil)

	sender := NewEmailSenderWithClient(mockClient, appconfig.EmailConfig{
		Sender: "sales@example.com",
	}, &testLogger)

	err := sender.Send(context.Background(), "lead@example.com", "Hello", "Body")
	assert.NoError(t, err, "expected send to succeed")
	mockClient.AssertExpectations(t)
}

func TestEmailSenderTestModeSkipsSES(t *testing.T) {
	mockClient := new(MockSESClient)

	sender := NewEmailSenderWithClient(mockClient, appconfig.EmailConfig{
		Sender:   "sales@example.com",
		TestMode: true,
	}, &testLogger)

	err := sender.Send(context.Background(), "lead@example.com", "Hello", "Body")
	assert.NoError(t, err)
	mockClient.AssertNotCalled(t, "SendEmail")
}

func TestCleanPhone(t *testing.T) {
	assert.Equal(t, "15550001111", CleanPhone("+1 (555) 000-1111"))
	assert.Equal(t, "4915112345678", CleanPhone("+49 151 12345678"))
	assert.Equal(t, "", CleanPhone("n/a"))
}

func TestWhatsAppSend(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]interface{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		raw, _ := io.ReadAll(r.Body)
		json.Unmarshal(raw, &gotBody)
		w.Write([]byte(`{"messages":[{"id":"wamid.test123"}]}`))
	}))
	defer srv.Close()

	sender := NewWhatsAppSender(appconfig.WhatsAppConfig{
		APIURL:        srv.URL,
		APIToken:      "token-abc",
		PhoneNumberID: "12345",
	}, &testLogger)

	id, err := sender.Send(context.Background(), "+1 (555) 000-1111", "hello there")
	assert.NoError(t, err)
	assert.Equal(t, "wamid.test123", id)
	assert.Equal(t, "/12345/messages", gotPath)
	assert.Equal(t, "Bearer token-abc", gotAuth)
	assert.Equal(t, "15550001111", gotBody["to"])
	assert.Equal(t, "whatsapp", gotBody["messaging_product"])
}

func TestWhatsAppSendAPIFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"bad token"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	sender := NewWhatsAppSender(appconfig.WhatsAppConfig{
		APIURL:        srv.URL,
		PhoneNumberID: "12345",
	}, &testLogger)

	_, err := sender.Send(context.Background(), "+15550001111", "hello")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestWhatsAppSendRejectsEmptyPhone(t *testing.T) {
	sender := NewWhatsAppSender(appconfig.WhatsAppConfig{}, &testLogger)

	_, err := sender.Send(context.Background(), "", "hello")
	assert.Error(t, err)
}

func TestWhatsAppTestMode(t *testing.T) {
	sender := NewWhatsAppSender(appconfig.WhatsAppConfig{TestMode: true}, &testLogger)

	id, err := sender.Send(context.Background(), "+15550001111", "hello")
	assert.NoError(t, err)
	assert.Equal(t, "test-15550001111", id)
}

func TestTelegramNotify(t *testing.T) {
	var gotPath string
	var gotBody map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		raw, _ := io.ReadAll(r.Body)
		json.Unmarshal(raw, &gotBody)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	notifier := NewTelegramNotifier(appconfig.TelegramConfig{
		Enabled:  true,
		BotToken: "bot-token",
		ChatID:   "-100200300",
	}, &testLogger)
	notifier.apiBase = srv.URL

	err := notifier.Notify(context.Background(), "daily summary")
	assert.NoError(t, err)
	assert.Equal(t, "/botbot-token/sendMessage", gotPath)
	assert.Equal(t, "-100200300", gotBody["chat_id"])
	assert.Equal(t, "daily summary", gotBody["text"])
}

func TestTelegramDisabledIsNoop(t *testing.T) {
	notifier := NewTelegramNotifier(appconfig.TelegramConfig{Enabled: false}, &testLogger)
	notifier.apiBase = "http://127.0.0.1:1" // unreachable on purpose

	err := notifier.Notify(context.Background(), "ignored")
	assert.NoError(t, err)
}
