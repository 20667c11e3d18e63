package emailclient

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

type sesAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESClient отправляет письма через AWS SES v2.
type SESClient struct {
	api     sesAPI
	timeout time.Duration
}

// NewSESClient создаёт клиент SES. Если ключи не заданы, используется
// стандартная цепочка учётных данных AWS.
func NewSESClient(ctx context.Context, region, accessKey, secretKey string, timeout time.Duration) (*SESClient, error) {
	const op = "emailclient.NewSESClient"

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if accessKey != "" && secretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &SESClient{api: sesv2.NewFromConfig(cfg), timeout: timeout}, nil
}

// Send отправляет письмо с HTML- и текстовой частью.
func (c *SESClient) Send(ctx context.Context, email Email) error {
	const op = "emailclient.SESClient.Send"

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(email.From),
		Destination:      &types.Destination{ToAddresses: []string{email.To}},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(email.Subject), Charset: aws.String("UTF-8")},
				Body: &types.Body{
					Html: &types.Content{Data: aws.String(email.HTMLBody), Charset: aws.String("UTF-8")},
					Text: &types.Content{Data: aws.String(email.TextBody), Charset: aws.String("UTF-8")},
				},
			},
		},
	}

	if _, err := c.api.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
