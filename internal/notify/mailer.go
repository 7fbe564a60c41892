// Package notify sends player notifications.
//
// Mailers:
//   - SES: Amazon SES v2, used when SES_FROM_EMAIL is configured.
//   - Log: writes the message to the log instead of sending it.
package notify

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/rs/zerolog/log"
)

// Mailer delivers a plain-text email.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// sesAPI is the subset of *sesv2.Client the SES mailer calls.
type sesAPI interface {
	SendEmail(ctx context.Context, in *sesv2.SendEmailInput, opts ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SES sends mail through Amazon SES.
type SES struct {
	client sesAPI
	from   string
}

// NewSES loads the default AWS credential chain for region.
func NewSES(ctx context.Context, region, fromEmail, fromName string) (*SES, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	log.Info().Str("from", fromEmail).Str("region", region).Msg("email: SES enabled")
	return newSES(sesv2.NewFromConfig(cfg), fromEmail, fromName), nil
}

func newSES(client sesAPI, fromEmail, fromName string) *SES {
	from := fromEmail
	if fromName != "" {
		from = fmt.Sprintf("%s <%s>", fromName, fromEmail)
	}
	return &SES{client: client, from: from}
}

func (s *SES) Send(ctx context.Context, to, subject, body string) error {
	out, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(s.from),
		Destination:      &types.Destination{ToAddresses: []string{to}},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(subject), Charset: aws.String("UTF-8")},
				Body: &types.Body{
					Text: &types.Content{Data: aws.String(body), Charset: aws.String("UTF-8")},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("send email to %s: %w", to, err)
	}
	log.Debug().Str("to", to).Str("message_id", aws.ToString(out.MessageId)).Msg("email: sent")
	return nil
}

// Log is a Mailer that only logs.
type Log struct{}

func (Log) Send(_ context.Context, to, subject, body string) error {
	log.Info().Str("to", to).Str("subject", subject).Str("body", body).Msg("email: not sent (SES disabled)")
	return nil
}
