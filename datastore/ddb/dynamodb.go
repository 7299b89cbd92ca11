/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/suparena/flatstore/datastore"
	ferrors "github.com/suparena/flatstore/errors"
	"github.com/suparena/flatstore/storagemodels"
)

// Client is the subset of the DynamoDB API used by the gateway.
// *dynamodb.Client satisfies it.
type Client interface {
	GetItem(ctx context.Context, params *sdk.GetItemInput, optFns ...func(*sdk.Options)) (*sdk.GetItemOutput, error)
	PutItem(ctx context.Context, params *sdk.PutItemInput, optFns ...func(*sdk.Options)) (*sdk.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *sdk.UpdateItemInput, optFns ...func(*sdk.Options)) (*sdk.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *sdk.DeleteItemInput, optFns ...func(*sdk.Options)) (*sdk.DeleteItemOutput, error)
	BatchWriteItem(ctx context.Context, params *sdk.BatchWriteItemInput, optFns ...func(*sdk.Options)) (*sdk.BatchWriteItemOutput, error)
	Query(ctx context.Context, params *sdk.QueryInput, optFns ...func(*sdk.Options)) (*sdk.QueryOutput, error)
	Scan(ctx context.Context, params *sdk.ScanInput, optFns ...func(*sdk.Options)) (*sdk.ScanOutput, error)
	CreateTable(ctx context.Context, params *sdk.CreateTableInput, optFns ...func(*sdk.Options)) (*sdk.CreateTableOutput, error)
	DeleteTable(ctx context.Context, params *sdk.DeleteTableInput, optFns ...func(*sdk.Options)) (*sdk.DeleteTableOutput, error)
	DescribeTable(ctx context.Context, params *sdk.DescribeTableInput, optFns ...func(*sdk.Options)) (*sdk.DescribeTableOutput, error)
	ListTables(ctx context.Context, params *sdk.ListTablesInput, optFns ...func(*sdk.Options)) (*sdk.ListTablesOutput, error)
}

// ClientConfig holds what is needed to reach DynamoDB.
type ClientConfig struct {
	Region string
	// AccessKey and SecretKey are optional; without them the default
	// credential chain is used.
	AccessKey string
	SecretKey string
	// Endpoint overrides the service endpoint, e.g. DynamoDB Local.
	Endpoint string
}

// NewDynamoDBClient initializes a DynamoDB client.
func NewDynamoDBClient(ctx context.Context, cc ClientConfig) (*sdk.Client, error) {
	if cc.Region == "" {
		return nil, ferrors.NewConfigurationError("AWS_REGION", "region is required")
	}

	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(cc.Region)}
	if cc.AccessKey != "" || cc.SecretKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cc.AccessKey, cc.SecretKey, ""),
		))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	client := sdk.NewFromConfig(cfg, func(o *sdk.Options) {
		if cc.Endpoint != "" {
			o.BaseEndpoint = aws.String(cc.Endpoint)
		}
	})
	slog.Debug("DynamoDB client initialized", "region", cc.Region, "endpoint", cc.Endpoint)
	return client, nil
}

// Gateway implements datastore.Gateway on top of one DynamoDB table.
type Gateway struct {
	client Client
	schema storagemodels.TableSchema
	logger *slog.Logger

	createIfMissing bool
	createTimeout   time.Duration
	waiterMinDelay  time.Duration
	waiterMaxDelay  time.Duration
	batchRetries    int
	batchBackoff    BackoffFunc

	mu    sync.RWMutex
	state datastore.State
}

var _ datastore.Gateway = (*Gateway)(nil)

// Option configures a Gateway.
type Option func(*Gateway)

// WithLogger sets the logger. Every entry carries the table name.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gateway) {
		g.logger = logger
	}
}

// WithCreateIfMissing controls whether NewGateway creates an absent table.
// It defaults to true.
func WithCreateIfMissing(create bool) Option {
	return func(g *Gateway) {
		g.createIfMissing = create
	}
}

// WithCreateTimeout bounds the wait for a table to become active.
func WithCreateTimeout(d time.Duration) Option {
	return func(g *Gateway) {
		g.createTimeout = d
	}
}

// WithWaiterDelays sets the polling delays used while waiting on table status.
func WithWaiterDelays(minDelay, maxDelay time.Duration) Option {
	return func(g *Gateway) {
		g.waiterMinDelay = minDelay
		g.waiterMaxDelay = maxDelay
	}
}

// WithBatchRetries sets how often unprocessed batch items are resubmitted
// and the backoff between attempts.
func WithBatchRetries(retries int, backoff BackoffFunc) Option {
	return func(g *Gateway) {
		g.batchRetries = retries
		if backoff != nil {
			g.batchBackoff = backoff
		}
	}
}

// NewGateway checks that the table exists, creates it from schema when it
// does not, and waits until the backing store reports it active.
func NewGateway(ctx context.Context, client Client, schema storagemodels.TableSchema, opts ...Option) (*Gateway, error) {
	g := &Gateway{
		client:          client,
		schema:          schema,
		logger:          slog.Default(),
		createIfMissing: true,
		createTimeout:   3 * time.Minute,
		waiterMinDelay:  3 * time.Second,
		waiterMaxDelay:  2 * time.Minute,
		batchRetries:    5,
		batchBackoff:    DefaultBackoff,
		state:           datastore.Uninitialized,
	}
	for _, opt := range opts {
		opt(g)
	}
	g.logger = g.logger.With("table", schema.Name)

	if err := schema.Validate(); err != nil {
		return nil, err
	}
	if _, err := keyAttributeDefinitions(schema); err != nil {
		return nil, err
	}
	if err := g.initialize(ctx); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Gateway) initialize(ctx context.Context) error {
	desc, err := g.describe(ctx)
	if err != nil {
		return err
	}
	if desc != nil {
		g.setState(datastore.Exists)
		g.logger.Info("table exists", "status", string(desc.TableStatus))
		return g.waitActive(ctx)
	}

	if !g.createIfMissing {
		g.logger.Warn("table does not exist and will not be created")
		return nil
	}
	return g.CreateTable(ctx)
}

// Schema returns the table schema.
func (g *Gateway) Schema() storagemodels.TableSchema {
	return g.schema
}

// TableName returns the table name.
func (g *Gateway) TableName() string {
	return g.schema.Name
}

// State returns the lifecycle state.
func (g *Gateway) State() datastore.State {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state
}

func (g *Gateway) setState(s datastore.State) {
	g.mu.Lock()
	g.state = s
	g.mu.Unlock()
}

func (g *Gateway) ready() bool {
	return g.State() == datastore.Ready
}
