/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"

	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	ferrors "github.com/suparena/flatstore/errors"
	"github.com/suparena/flatstore/processor"
)

// maxBatchSize is the BatchWriteItem request limit.
const maxBatchSize = 25

// BackoffFunc returns the duration to wait before retry attempt n.
type BackoffFunc func(attempt int) time.Duration

// ExponentialBackoff returns a capped exponential backoff with full jitter.
func ExponentialBackoff(base time.Duration, multiplier float64, cap time.Duration) BackoffFunc {
	return func(attempt int) time.Duration {
		backoff := time.Duration(float64(base) * math.Pow(multiplier, float64(attempt)))
		if backoff > cap || backoff <= 0 {
			backoff = cap
		}
		return time.Duration(rand.Int63n(int64(backoff) + 1))
	}
}

// DefaultBackoff is ExponentialBackoff with 50ms base, 2x multiplier, 5s cap.
var DefaultBackoff = ExponentialBackoff(50*time.Millisecond, 2.0, 5*time.Second)

type batchEntry struct {
	item processor.StorageItem
	av   map[string]types.AttributeValue
	id   string
}

// batchWrite writes items through BatchWriteItem and returns the written
// items, the number of failed items and the last failure.
func (g *Gateway) batchWrite(ctx context.Context, items []processor.StorageItem) ([]processor.StorageItem, int, error) {
	var (
		written []processor.StorageItem
		failed  int
		lastErr error
	)

	entries := make([]batchEntry, 0, len(items))
	for _, item := range items {
		av, err := marshalItem(item.Attributes())
		if err != nil {
			failed++
			lastErr = ferrors.NewValidationError("", err.Error())
			g.logger.Error("item could not be marshaled", "error", err)
			continue
		}
		entries = append(entries, batchEntry{item: item, av: av, id: keyID(av, g.schema.KeyNames())})
	}

	for _, chunk := range chunkEntries(entries) {
		w, f, err := g.writeChunk(ctx, chunk)
		written = append(written, w...)
		failed += f
		if err != nil {
			lastErr = err
		}
	}
	return written, failed, lastErr
}

// chunkEntries splits entries into requests of at most maxBatchSize items.
// A request may not hold the same key twice, so a repeated key starts a new
// chunk and the later item overwrites the earlier one.
func chunkEntries(entries []batchEntry) [][]batchEntry {
	var chunks [][]batchEntry
	var current []batchEntry
	seen := make(map[string]bool)
	for _, e := range entries {
		if len(current) == maxBatchSize || seen[e.id] {
			chunks = append(chunks, current)
			current = nil
			seen = make(map[string]bool)
		}
		current = append(current, e)
		seen[e.id] = true
	}
	if len(current) > 0 {
		chunks = append(chunks, current)
	}
	return chunks
}

func (g *Gateway) writeChunk(ctx context.Context, chunk []batchEntry) ([]processor.StorageItem, int, error) {
	requests := make([]types.WriteRequest, len(chunk))
	outstanding := make(map[string]bool, len(chunk))
	for i, e := range chunk {
		requests[i] = types.WriteRequest{PutRequest: &types.PutRequest{Item: e.av}}
		outstanding[e.id] = true
	}

	var chunkErr error
	for attempt := 0; ; attempt++ {
		out, err := g.client.BatchWriteItem(ctx, &sdk.BatchWriteItemInput{
			RequestItems: map[string][]types.WriteRequest{g.schema.Name: requests},
		})
		if err != nil {
			chunkErr = g.storeError("BatchWriteItem", err)
			if !isRetryableError(err) || attempt >= g.batchRetries || !g.sleep(ctx, attempt) {
				break
			}
			continue
		}

		unprocessed := out.UnprocessedItems[g.schema.Name]
		still := make(map[string]bool, len(unprocessed))
		for _, req := range unprocessed {
			if req.PutRequest != nil {
				still[keyID(req.PutRequest.Item, g.schema.KeyNames())] = true
			}
		}
		outstanding = still
		if len(unprocessed) == 0 {
			chunkErr = nil
			break
		}

		chunkErr = &ferrors.BackingStoreError{
			Operation: "BatchWriteItem",
			Table:     g.schema.Name,
			Code:      "UnprocessedItems",
			Retryable: true,
			Cause:     errors.New("items left unprocessed after retries"),
		}
		if attempt >= g.batchRetries || !g.sleep(ctx, attempt) {
			g.logger.Error("batch items left unprocessed", "count", len(unprocessed), "attempts", attempt+1)
			break
		}
		requests = unprocessed
	}

	var written []processor.StorageItem
	for _, e := range chunk {
		if !outstanding[e.id] {
			written = append(written, e.item)
		}
	}
	return written, len(chunk) - len(written), chunkErr
}

// sleep waits for the backoff of attempt. It returns false if ctx ended first.
func (g *Gateway) sleep(ctx context.Context, attempt int) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(g.batchBackoff(attempt)):
		return true
	}
}
