/*
Package storagemodels defines the data structures shared by the flatstore packages.

Table schemas:

	schema := storagemodels.TableSchema{
	    Name: "Snippets",
	    KeyAttributes: []storagemodels.KeyAttribute{
	        {Name: "snippet.channelId", Role: storagemodels.RolePartition},
	        {Name: "snippet.publishedAt", Role: storagemodels.RoleSort},
	    },
	    AttributeDefinitions: []storagemodels.AttributeDefinition{
	        {Name: "snippet.channelId", Type: storagemodels.TypeString},
	        {Name: "snippet.publishedAt", Type: storagemodels.TypeString},
	    },
	}

Record shapes follow the write path: a RawDocument is flattened into a
FlatRecord, preprocessed into a storage item and read back as an Item.
RawDocument, FlatRecord and Item are distinct types so that a nested document
cannot be passed where a flat one is expected.

Writes report a WriteOutcome for single rows and WriteCounts for batches.

StreamOptions configure streaming scans:

	opts := []StreamOption{
	    WithBufferSize(100),
	    WithPageSize(25),
	    WithMaxRetries(3),
	    WithProgressHandler(progressFunc),
	}
*/
package storagemodels
