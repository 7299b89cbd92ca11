/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package youtube

import (
	"time"

	"github.com/go-openapi/strfmt"

	"github.com/suparena/flatstore/flatten"
	"github.com/suparena/flatstore/storagemodels"
)

// ThumbnailKeys are the fields every thumbnail size is stored with, null
// when the API left them out.
var ThumbnailKeys = []string{"url", "width", "height"}

// ThumbnailSizes lists the thumbnail sizes from smallest to largest.
var ThumbnailSizes = []string{"default", "medium", "high", "standard", "maxres"}

// BuildResponseDocument builds the Responses row for one search request and
// its response. Missing fields get empty defaults. The response_id is added
// when the document is stored.
func BuildResponseDocument(request, response storagemodels.RawDocument, received time.Time) storagemodels.RawDocument {
	pageInfo := object(response, "pageInfo")
	return storagemodels.RawDocument{
		"etag":          str(response, "etag"),
		"kind":          str(response, "kind"),
		"nextPageToken": str(response, "nextPageToken"),
		"regionCode":    str(response, "regionCode"),
		"pageInfo": map[string]any{
			"totalResults":   valueOr(pageInfo, "totalResults", 0),
			"resultsPerPage": valueOr(pageInfo, "resultsPerPage", 0),
		},
		"requestSubmittedAt": timestamp(request["requestSubmittedAt"], received),
		"responseReceivedAt": strfmt.DateTime(received.UTC()).String(),
		"queryDetails": map[string]any{
			"part":       str(request, "part"),
			"q":          str(request, "q"),
			"type":       str(request, "type"),
			"maxResults": valueOr(request, "maxResults", ""),
			"query":      str(request, "query"),
		},
	}
}

// BuildSnippetDocuments builds one Snippets row per search result. The
// thumbnails are flattened under "thumbnails" with ThumbnailKeys filled in.
func BuildSnippetDocuments(response storagemodels.RawDocument) []storagemodels.RawDocument {
	results := list(response, "items")
	docs := make([]storagemodels.RawDocument, 0, len(results))
	for _, result := range results {
		snippet := object(result, "snippet")
		doc := storagemodels.RawDocument{
			"videoId":              str(object(result, "id"), "videoId"),
			"publishedAt":          str(snippet, "publishedAt"),
			"channelId":            str(snippet, "channelId"),
			"title":                str(snippet, "title"),
			"description":          str(snippet, "description"),
			"channelTitle":         str(snippet, "channelTitle"),
			"tags":                 valueOr(snippet, "tags", []any{}),
			"liveBroadcastContent": str(snippet, "liveBroadcastContent"),
			"publishTime":          str(snippet, "publishTime"),
		}
		thumbnails := flatten.Flatten(object(snippet, "thumbnails"),
			flatten.WithParentKey("thumbnails"),
			flatten.WithExpectedKeys(ThumbnailKeys...))
		for k, v := range thumbnails {
			doc[k] = v
		}
		docs = append(docs, doc)
	}
	return docs
}

// timestamp normalizes a submitted-at value to the strfmt date-time form,
// falling back to fallback when it is absent and keeping unparseable values.
func timestamp(v any, fallback time.Time) string {
	s, ok := v.(string)
	if !ok || s == "" {
		return strfmt.DateTime(fallback.UTC()).String()
	}
	dt, err := strfmt.ParseDateTime(s)
	if err != nil {
		return s
	}
	return dt.String()
}

func object(m map[string]any, key string) map[string]any {
	switch v := m[key].(type) {
	case map[string]any:
		return v
	case storagemodels.RawDocument:
		return v
	}
	return map[string]any{}
}

func list(m map[string]any, key string) []map[string]any {
	switch v := m[key].(type) {
	case []map[string]any:
		return v
	case []any:
		out := make([]map[string]any, 0, len(v))
		for _, e := range v {
			if obj, ok := e.(map[string]any); ok {
				out = append(out, obj)
			}
		}
		return out
	}
	return nil
}

func str(m map[string]any, key string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}

func valueOr(m map[string]any, key string, fallback any) any {
	if v, ok := m[key]; ok && v != nil {
		return v
	}
	return fallback
}
