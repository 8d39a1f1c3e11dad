package sender

import (
	"context"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"github.com/ignite/signature-relay/internal/domain"
	"github.com/ignite/signature-relay/internal/pkg/logger"
)

// SESForwarder delivers messages via AWS SES using the SDK v2.
type SESForwarder struct {
	region string
	client *sesv2.Client
}

// NewSESForwarder creates an SES forwarder. Returns an error when the AWS
// config cannot be assembled; a missing key pair falls through to the
// default credential chain.
func NewSESForwarder(accessKey, secretKey, region string) (*SESForwarder, error) {
	if region == "" {
		region = "us-east-1"
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if accessKey != "" && secretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")))
	}
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return &SESForwarder{region: region, client: sesv2.NewFromConfig(cfg)}, nil
}

// Forward sends the message through SES. All recipients share one send;
// SES reports acceptance for the message as a whole.
func (s *SESForwarder) Forward(ctx context.Context, e *domain.Email) (*domain.ForwardResult, error) {
	if s.client == nil {
		return nil, fmt.Errorf("SES client not initialized")
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(e.From),
		Destination:      &types.Destination{ToAddresses: e.To},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(e.Subject), Charset: aws.String("UTF-8")},
				Body: &types.Body{
					Html: &types.Content{Data: aws.String(e.HTMLBody), Charset: aws.String("UTF-8")},
				},
				Headers: sesHeaders(e.Headers),
			},
		},
	}
	if e.TextBody != "" {
		input.Content.Simple.Body.Text = &types.Content{Data: aws.String(e.TextBody), Charset: aws.String("UTF-8")}
	}

	out, err := s.client.SendEmail(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("ses send: %w", err)
	}

	messageID := e.MessageID
	if out.MessageId != nil {
		messageID = *out.MessageId
	}

	recipients := make([]domain.RecipientStatus, len(e.To))
	for i, addr := range e.To {
		recipients[i] = domain.RecipientStatus{Email: addr, Accepted: true}
	}

	logger.Info("ses accepted message", "message_id", messageID, "recipient_count", len(e.To))
	return &domain.ForwardResult{
		Success:    true,
		StatusCode: http.StatusOK,
		MessageID:  messageID,
		Provider:   "ses",
		Recipients: recipients,
	}, nil
}

func sesHeaders(h map[string]string) []types.MessageHeader {
	if len(h) == 0 {
		return nil
	}
	out := make([]types.MessageHeader, 0, len(h))
	for k, v := range h {
		out = append(out, types.MessageHeader{Name: aws.String(k), Value: aws.String(v)})
	}
	return out
}
