/*
Package flatstore persists hierarchical JSON documents as flat, typed rows in
schema-constrained tables.

A document goes through the same steps on every write path:

	RawDocument -> flatten -> FlatRecord -> preprocess -> StorageItem -> Gateway

Flattening joins nested keys with dots. Preprocessing coerces the attributes
the table schema governs to their declared types and stores them under the
table's attribute prefix (the singular, lower-cased table name followed by a
dot, so "Snippets" governs "snippet.*"). Other attributes pass through
unchanged. Gateways accept only items produced by a preprocessor for their
own table.

Basic usage:

	schemas := registry.New()
	snippets, _ := schemas.LoadFile(cfg.SnippetsConfigPath)

	client, _ := ddb.NewDynamoDBClient(ctx, cfg.ClientConfig())
	gw, _ := ddb.NewGateway(ctx, client, snippets)

	store := flatstore.New()
	_ = store.Register(gw)

	res, err := store.AddDocumentAndDerivedRows(ctx, rel, responseDoc, snippetDocs)

Idempotent writes never duplicate a row and never fail because the row is
already there; they report storagemodels.Skipped instead. Batch writes report
counts and only fail when every item failed.
*/
package flatstore
