/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package youtube

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/suparena/flatstore"
	"github.com/suparena/flatstore/collection"
	"github.com/suparena/flatstore/datastore"
	"github.com/suparena/flatstore/errors"
	"github.com/suparena/flatstore/processor"
	"github.com/suparena/flatstore/storagemodels"
)

const (
	ResponsesTable = "Responses"
	SnippetsTable  = "Snippets"

	// ResponseIDField joins a snippet to the response it came from.
	ResponseIDField = "response_id"
	// QueryField holds the search terms of a request.
	QueryField = "queryDetails.q"
)

// Relation is the parent/child link between the two tables.
var Relation = flatstore.Relation{
	Parent:     ResponsesTable,
	Child:      SnippetsTable,
	IDField:    ResponseIDField,
	ForeignKey: ResponseIDField,
}

// Archive stores search results and answers the navigation queries over
// them.
type Archive struct {
	store  *flatstore.Storage
	logger *slog.Logger
	now    func() time.Time
}

// ArchiveOption configures an Archive
type ArchiveOption func(*Archive)

// WithLogger sets the archive logger
func WithLogger(logger *slog.Logger) ArchiveOption {
	return func(a *Archive) {
		a.logger = logger
	}
}

// WithClock replaces the clock used for received-at timestamps
func WithClock(now func() time.Time) ArchiveOption {
	return func(a *Archive) {
		a.now = now
	}
}

// NewArchive wraps a storage that has both the Responses and the Snippets
// table registered.
func NewArchive(store *flatstore.Storage, opts ...ArchiveOption) (*Archive, error) {
	for _, name := range []string{ResponsesTable, SnippetsTable} {
		if _, err := store.Table(name); err != nil {
			return nil, errors.NewConfigurationError(name, "table is not registered")
		}
	}
	a := &Archive{store: store, logger: slog.Default(), now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// AddQueryRequestAndResponse stores a search request with its response and
// one snippet row per search result.
func (a *Archive) AddQueryRequestAndResponse(ctx context.Context, request, response storagemodels.RawDocument) (flatstore.DerivedRowsResult, error) {
	parent := BuildResponseDocument(request, response, a.now())
	children := BuildSnippetDocuments(response)
	return a.store.AddDocumentAndDerivedRows(ctx, Relation, parent, children)
}

// ListQueries returns every distinct search term, sorted.
func (a *Archive) ListQueries(ctx context.Context) ([]string, error) {
	values, err := a.store.DistinctValues(ctx, ResponsesTable, QueryField)
	if err != nil {
		return nil, err
	}
	queries := collection.Map(values, processor.ToString)
	sort.Strings(queries)
	if len(queries) == 0 {
		a.logger.Warn("no queries found", "table", ResponsesTable)
	}
	return queries, nil
}

// ListResponseIDsWithQuery returns the ids of the responses to query, sorted.
func (a *Archive) ListResponseIDsWithQuery(ctx context.Context, query string) ([]string, error) {
	rows, err := a.store.RowsWithValue(ctx, ResponsesTable, QueryField, query)
	if err != nil {
		return nil, err
	}
	t, err := a.store.Table(ResponsesTable)
	if err != nil {
		return nil, err
	}
	ids := collection.Map(collection.DistinctValues(rows, t.AttributeName(ResponseIDField)), processor.ToString)
	sort.Strings(ids)
	if len(ids) == 0 {
		a.logger.Warn("no responses found for query", "query", query)
	}
	return ids, nil
}

// ListSnippetsWithResponseID returns the snippets stored with the given
// response. An id that is not a valid identifier is a ValidationError.
func (a *Archive) ListSnippetsWithResponseID(ctx context.Context, responseID string) ([]storagemodels.Item, error) {
	rows, err := a.store.RowsJoinedBy(ctx, Relation, responseID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		a.logger.Warn("no snippets found for response", "response_id", responseID)
	}
	return rows, nil
}

// ListRecentChannelSnippets returns the snippets a channel published within
// window, newest first. It queries by key instead of scanning.
func (a *Archive) ListRecentChannelSnippets(ctx context.Context, channelID string, window time.Duration) ([]storagemodels.Item, error) {
	gw, err := a.store.Gateway(SnippetsTable)
	if err != nil {
		return nil, err
	}
	params, err := datastore.NewKeyQuery(gw.Schema()).
		WithPartitionKey(channelID).
		Since(window, a.now()).
		Latest().
		Build()
	if err != nil {
		return nil, err
	}
	return gw.QueryByKey(ctx, params)
}

// Thumbnail is one stored thumbnail size of a snippet.
type Thumbnail struct {
	Size  string
	URL   string
	Width int64
}

// BestThumbnail returns the widest thumbnail of a snippet row that has both
// a URL and a width.
func (a *Archive) BestThumbnail(snippet storagemodels.Item) (Thumbnail, bool) {
	t, err := a.store.Table(SnippetsTable)
	if err != nil {
		return Thumbnail{}, false
	}
	var best Thumbnail
	for _, size := range ThumbnailSizes {
		prefix := "thumbnails." + size + "."
		url := processor.ToString(snippet[t.AttributeName(prefix+"url")])
		raw := snippet[t.AttributeName(prefix+"width")]
		if url == "" || raw == nil {
			continue
		}
		n, err := processor.ToNumber(raw)
		if err != nil {
			continue
		}
		width, _ := n.(int64)
		if width > best.Width {
			best = Thumbnail{Size: size, URL: url, Width: width}
		}
	}
	return best, best.URL != ""
}
