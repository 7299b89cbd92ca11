/*
Package processor prepares flat records for storage.

It holds the three steps between a flattened document and a writable row:

  - Coerce converts a raw value to the declared string, number or boolean type.
  - PrefixResolver derives a table's attribute name prefix ("Snippets" gives
    "snippet.") and maps bare field names to the prefixed names the schema
    declares.
  - Preprocessor applies both to every attribute of a record and returns a
    StorageItem, the only type the gateways accept for writes.

Example:

	pre, err := processor.NewPreprocessor(schema)
	if err != nil {
	    return err
	}
	item := pre.Preprocess(storagemodels.FlatRecord{
	    "channelId":   "UC123",
	    "publishedAt": "2025-02-05T11:35:37Z",
	    "title":       "X",
	})
	// item: snippet.channelId, snippet.publishedAt, title

An attribute that cannot be coerced is dropped and logged; it never aborts the
whole record. The dropped attributes are available through StorageItem.Errors.
*/
package processor
