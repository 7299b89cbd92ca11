/*
Package flatten converts nested documents to flat records keyed by
dot-joined paths and back.

	flat := flatten.Flatten(map[string]any{
	    "pageInfo": map[string]any{"totalResults": 1000000, "resultsPerPage": 5},
	    "kind":     "youtube#searchListResponse",
	})
	// flat: {"kind": ..., "pageInfo.resultsPerPage": 5, "pageInfo.totalResults": 1000000}

	doc := flatten.Unflatten(flat)

WithExpectedKeys makes missing leaves explicit. Every nesting level that holds
at least one leaf value gets a nil entry for each expected key it lacks, so
readers can treat a missing field the same way everywhere:

	flat := flatten.Flatten(thumbnails,
	    flatten.WithParentKey("thumbnails"),
	    flatten.WithExpectedKeys("url", "width", "height"))

Lists are stored as leaf values and are not flattened further.
*/
package flatten
