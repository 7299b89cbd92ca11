/*
Package datastore defines the table gateway contract of the flatstore storage layer.

A Gateway owns one logical table: it checks that the table exists (creating it
from its schema when needed), writes preprocessed items singly or in batches,
and reads rows back by key, by scan or by key-condition query.

	type Gateway interface {
	    PutOne(ctx context.Context, item processor.StorageItem, idempotent bool) (storagemodels.WriteOutcome, error)
	    PutMany(ctx context.Context, items []processor.StorageItem, idempotent bool) ([]processor.StorageItem, storagemodels.WriteCounts, error)
	    GetOne(ctx context.Context, key storagemodels.Key) (storagemodels.Item, error)
	    ScanAll(ctx context.Context) ([]storagemodels.Item, error)
	    CountAll(ctx context.Context) (int64, error)
	    QueryByKey(ctx context.Context, params storagemodels.QueryParams) ([]storagemodels.Item, error)
	    ...
	}

KeyQuery builds QueryByKey parameters from the key schema:

	params, err := datastore.NewKeyQuery(gw.Schema()).
	    WithPartitionKey("UC123").
	    Since(24*time.Hour, time.Now()).
	    Latest().
	    Build()

Implementations:
  - ddb: DynamoDB implementation
  - mock: In-memory implementation for testing

Gateways are constructed explicitly and passed to their users; there is no
process-wide registry of table connections.
*/
package datastore
