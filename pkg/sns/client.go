package sns

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang-stock-watchlist/pkg/common"
	"golang-stock-watchlist/pkg/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

const (
	protocolEmail       = "email"
	pendingConfirmation = "PendingConfirmation"
	attrFilterPolicy    = "FilterPolicy"
)

// ErrSubscriptionNotFound is returned when an email has no confirmed subscription on the topic.
var ErrSubscriptionNotFound = errors.New("subscription not found or not confirmed")

// API is the subset of the SNS client used here.
type API interface {
	ListSubscriptionsByTopic(ctx context.Context, params *sns.ListSubscriptionsByTopicInput, optFns ...func(*sns.Options)) (*sns.ListSubscriptionsByTopicOutput, error)
	SetSubscriptionAttributes(ctx context.Context, params *sns.SetSubscriptionAttributesInput, optFns ...func(*sns.Options)) (*sns.SetSubscriptionAttributesOutput, error)
	Subscribe(ctx context.Context, params *sns.SubscribeInput, optFns ...func(*sns.Options)) (*sns.SubscribeOutput, error)
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// PolicyClient manages the per-email filter policy of the alert topic.
type PolicyClient interface {
	FindSubscriptionArn(ctx context.Context, email string) (string, error)
	UpdateFilterPolicy(ctx context.Context, email string, tickers []string) error
	Subscribe(ctx context.Context, email string, tickers []string) (string, error)
}

// Publisher publishes ticker alerts to the topic.
type Publisher interface {
	Publish(ctx context.Context, ticker, subject, message string) error
}

// Config holds the client settings.
type Config struct {
	Region              string
	AccessKeyID         string
	SecretAccessKey     string
	TopicARN            string
	MaxRequestPerSecond int
	CacheTTL            time.Duration
}

// Client implements PolicyClient and Publisher on top of SNS.
type Client struct {
	api            API
	topicARN       string
	log            *logger.Logger
	requestLimiter *rate.Limiter
	arnCache       *cache.Cache
}

// FilterPolicy is the JSON document stored on a subscription.
type FilterPolicy struct {
	Ticker []string `json:"ticker"`
}

// NewClient builds an SNS client from static credentials, falling back to the default chain when they are empty.
func NewClient(ctx context.Context, cfg Config, log *logger.Logger) (*Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{}
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	} else {
		opts = append(opts, awsconfig.WithRegion("us-east-1"))
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	return NewClientWithAPI(sns.NewFromConfig(awsCfg), cfg, log), nil
}

// NewClientWithAPI builds a Client around an existing API implementation.
func NewClientWithAPI(api API, cfg Config, log *logger.Logger) *Client {
	perSecond := cfg.MaxRequestPerSecond
	if perSecond <= 0 {
		perSecond = 10
	}
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Client{
		api:            api,
		topicARN:       cfg.TopicARN,
		log:            log,
		requestLimiter: rate.NewLimiter(rate.Limit(perSecond), perSecond),
		arnCache:       cache.New(ttl, 2*ttl),
	}
}

func cacheKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// FindSubscriptionArn returns the subscription ARN for email, "PendingConfirmation", or "" when absent.
func (c *Client) FindSubscriptionArn(ctx context.Context, email string) (string, error) {
	key := cacheKey(email)
	if arn, ok := c.arnCache.Get(key); ok {
		return arn.(string), nil
	}

	var nextToken *string
	for {
		if err := c.requestLimiter.Wait(ctx); err != nil {
			return "", err
		}
		out, err := c.api.ListSubscriptionsByTopic(ctx, &sns.ListSubscriptionsByTopicInput{
			TopicArn:  aws.String(c.topicARN),
			NextToken: nextToken,
		})
		if err != nil {
			return "", fmt.Errorf("failed to list subscriptions: %w", err)
		}

		for _, sub := range out.Subscriptions {
			if aws.ToString(sub.Protocol) != protocolEmail {
				continue
			}
			if !strings.EqualFold(aws.ToString(sub.Endpoint), email) {
				continue
			}
			arn := aws.ToString(sub.SubscriptionArn)
			if arn != "" && arn != pendingConfirmation {
				c.arnCache.SetDefault(key, arn)
			}
			return arn, nil
		}

		if aws.ToString(out.NextToken) == "" {
			return "", nil
		}
		nextToken = out.NextToken
	}
}

// NormalizeTickers sorts and de-duplicates tickers and substitutes the no-match sentinel for an empty list.
func NormalizeTickers(tickers []string) []string {
	seen := make(map[string]struct{}, len(tickers))
	out := make([]string, 0, len(tickers))
	for _, t := range tickers {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	if len(out) == 0 {
		return []string{common.FilterPolicyNoMatch}
	}
	sort.Strings(out)
	return out
}

// MarshalFilterPolicy renders the filter policy document for tickers.
func MarshalFilterPolicy(tickers []string) (string, error) {
	b, err := json.Marshal(FilterPolicy{Ticker: NormalizeTickers(tickers)})
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// UpdateFilterPolicy replaces the filter policy of the confirmed subscription for email.
func (c *Client) UpdateFilterPolicy(ctx context.Context, email string, tickers []string) error {
	policy, err := MarshalFilterPolicy(tickers)
	if err != nil {
		return err
	}

	arn, err := c.FindSubscriptionArn(ctx, email)
	if err != nil {
		return err
	}
	if arn == "" || arn == pendingConfirmation {
		return fmt.Errorf("%w: %s", ErrSubscriptionNotFound, email)
	}

	if err := c.requestLimiter.Wait(ctx); err != nil {
		return err
	}
	_, err = c.api.SetSubscriptionAttributes(ctx, &sns.SetSubscriptionAttributesInput{
		SubscriptionArn: aws.String(arn),
		AttributeName:   aws.String(attrFilterPolicy),
		AttributeValue:  aws.String(policy),
	})
	if err != nil {
		// the cached ARN may be stale (unsubscribed from the email link)
		c.arnCache.Delete(cacheKey(email))
		return fmt.Errorf("failed to set filter policy: %w", err)
	}

	c.log.DebugContext(ctx, "Filter policy updated", logger.StringField("email", email), logger.StringField("policy", policy))
	return nil
}

// Subscribe creates an email subscription with the filter policy for tickers.
// The subscription stays pending until the recipient confirms it.
func (c *Client) Subscribe(ctx context.Context, email string, tickers []string) (string, error) {
	policy, err := MarshalFilterPolicy(tickers)
	if err != nil {
		return "", err
	}
	if err := c.requestLimiter.Wait(ctx); err != nil {
		return "", err
	}
	out, err := c.api.Subscribe(ctx, &sns.SubscribeInput{
		TopicArn:              aws.String(c.topicARN),
		Protocol:              aws.String(protocolEmail),
		Endpoint:              aws.String(email),
		Attributes:            map[string]string{attrFilterPolicy: policy},
		ReturnSubscriptionArn: true,
	})
	if err != nil {
		return "", fmt.Errorf("failed to subscribe %s: %w", email, err)
	}
	return aws.ToString(out.SubscriptionArn), nil
}

// Publish sends an alert carrying the ticker message attribute the filter policies match on.
func (c *Client) Publish(ctx context.Context, ticker, subject, message string) error {
	if err := c.requestLimiter.Wait(ctx); err != nil {
		return err
	}
	_, err := c.api.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(c.topicARN),
		Subject:  aws.String(truncateSubject(subject)),
		Message:  aws.String(message),
		MessageAttributes: map[string]types.MessageAttributeValue{
			common.FilterPolicyAttribute: {
				DataType:    aws.String("String"),
				StringValue: aws.String(ticker),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to publish alert for %s: %w", ticker, err)
	}
	return nil
}

// SNS rejects email subjects longer than 100 characters.
func truncateSubject(subject string) string {
	r := []rune(subject)
	if len(r) <= 100 {
		return subject
	}
	return string(r[:100])
}

var (
	_ PolicyClient = (*Client)(nil)
	_ Publisher    = (*Client)(nil)
)
