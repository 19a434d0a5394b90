package sqs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"go.uber.org/zap"

	envConfig "github.com/eventlab/commerce-analytics-pipeline/internal/config"
	"github.com/eventlab/commerce-analytics-pipeline/internal/domain"
)

// Client represents an SQS client publishing monitoring reports
type Client struct {
	client *sqs.Client
	config envConfig.SQS
	log    *zap.Logger
}

// NewClient creates a new SQS client
func NewClient(ctx context.Context, SQSConfig envConfig.SQS, log *zap.Logger) (*Client, error) {
	configOpts := []func(*config.LoadOptions) error{
		config.WithRegion(SQSConfig.Region),
	}

	var clientOpts []func(*sqs.Options)

	// Configure for local development with ElasticMQ
	if SQSConfig.Endpoint != "" {
		log.Info("Configuring SQS for local development",
			zap.String("endpoint", SQSConfig.Endpoint))
		configOpts = append(configOpts,
			config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("dummy", "dummy", "")))

		clientOpts = append(clientOpts, func(o *sqs.Options) {
			o.BaseEndpoint = aws.String(SQSConfig.Endpoint)
		})
	}

	cfg, err := config.LoadDefaultConfig(ctx, configOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	sqsClient := sqs.NewFromConfig(cfg, clientOpts...)

	log.Info("SQS client created",
		zap.String("region", SQSConfig.Region),
		zap.String("queue_url", SQSConfig.QueueURL))

	return &Client{
		client: sqsClient,
		config: SQSConfig,
		log:    log,
	}, nil
}

// QueueURL returns the configured queue URL
func (c *Client) QueueURL() string {
	return c.config.QueueURL
}

// PublishReport publishes a monitoring report to SQS. The status and date
// travel as message attributes so consumers can filter without parsing
// the body.
func (c *Client) PublishReport(ctx context.Context, report *domain.MonitoringReport) error {
	bodyJSON, err := json.Marshal(report)
	if err != nil {
		c.log.Error("Failed to marshal report",
			zap.String("date", report.Date),
			zap.Error(err))
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	_, err = c.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(c.config.QueueURL),
		MessageBody: aws.String(string(bodyJSON)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"Status": {
				DataType:    aws.String("String"),
				StringValue: aws.String(report.Status),
			},
			"ReportDate": {
				DataType:    aws.String("String"),
				StringValue: aws.String(report.Date),
			},
		},
	})
	if err != nil {
		c.log.Error("Failed to send report to SQS",
			zap.String("date", report.Date),
			zap.Error(err))
		return fmt.Errorf("failed to send report to SQS: %w", err)
	}

	c.log.Info("Monitoring report published to SQS",
		zap.String("date", report.Date),
		zap.String("status", report.Status))

	return nil
}
