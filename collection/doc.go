/*
Package collection indexes, projects, sorts and filters item sets that
were already retrieved from a table.

Everything here is in memory and request scoped. Nothing is persisted.

	rows, _ := gateway.ScanAll(ctx)
	idx := collection.IndexByKey(rows, collection.AttributeKey("response.etag"))
	for _, key := range idx.Keys() {
	    if idx.HasCollision(key) {
	        log.Printf("%s shared by %d rows", key, len(idx.All(key)))
	    }
	}

	recent := collection.SortByAttributes(rows,
	    collection.SortKey{Attribute: "snippet.publishedAt", Direction: collection.Desc})
*/
package collection
