/*
Package ddb provides a DynamoDB implementation of the datastore.Gateway interface.

A Gateway is bound to one table. NewGateway describes the table, creates it
from the schema when it is missing and waits until DynamoDB reports it active:

	client, err := ddb.NewDynamoDBClient(ctx, ddb.ClientConfig{
	    Region:   cfg.Region,
	    Endpoint: cfg.Endpoint, // optional, e.g. DynamoDB Local
	})
	gateway, err := ddb.NewGateway(ctx, client, schema, ddb.WithLogger(logger))

Writes:
  - PutOne with idempotent set adds attribute_not_exists conditions on every
    key attribute; ConditionalCheckFailedException becomes a Skipped outcome.
  - PutMany with idempotent set writes item by item. Otherwise it uses
    BatchWriteItem in chunks of 25 and resubmits unprocessed items with
    exponential backoff.

Attribute names produced by the preprocessor contain dots, so every
expression is built with expression.NameNoDotSplit.

Reads follow pagination until it is exhausted. Stream offers the same scan as
a channel with retry and progress reporting:

	results := gateway.Stream(ctx,
	    storagemodels.WithBufferSize(100),
	    storagemodels.WithPageSize(25),
	    storagemodels.WithMaxRetries(3),
	    storagemodels.WithProgressHandler(func(p storagemodels.StreamProgress) {
	        logger.Info("scan progress", "rows", p.RowsDelivered)
	    }),
	)

Failures from DynamoDB are returned as errors.BackingStoreError carrying the
operation, table and API error code.
*/
package ddb
