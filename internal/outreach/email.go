package outreach

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/rs/zerolog"

	"github.com/leadflowhq/lead-services/internal/appconfig"
)

// SESClient is the slice of the SES API the sender needs. Tests swap
// in a mock.
type SESClient interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// EmailSender delivers outreach email through SES.
type EmailSender struct {
	Client SESClient
	cfg    appconfig.EmailConfig
	log    *zerolog.Logger
}

func NewEmailSender(ctx context.Context, region string, cfg appconfig.EmailConfig, log *zerolog.Logger) (*EmailSender, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("error loading AWS config: %w", err)
	}

	return &EmailSender{
		Client: sesv2.NewFromConfig(awsCfg),
		cfg:    cfg,
		log:    log,
	}, nil
}

// NewEmailSenderWithClient wires a prebuilt client, used in tests.
func NewEmailSenderWithClient(client SESClient, cfg appconfig.EmailConfig, log *zerolog.Logger) *EmailSender {
	return &EmailSender{Client: client, cfg: cfg, log: log}
}

// Send delivers one plain-text email. In test mode the message is
// logged instead of sent.
func (e *EmailSender) Send(ctx context.Context, to, subject, body string) error {
	if e.cfg.TestMode {
		e.log.Info().Str("to", to).Str("subject", subject).Msg("test mode, email not sent")
		return nil
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: &e.cfg.Sender,
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: &subject},
				Body: &types.Body{
					Text: &types.Content{Data: &body},
				},
			},
		},
	}
	if e.cfg.ReplyTo != "" {
		input.ReplyToAddresses = []string{e.cfg.ReplyTo}
	}

	_, err := e.Client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("error sending email to %s: %w", to, err)
	}

	e.log.Info().Str("to", to).Msg("outreach email sent")
	return nil
}
