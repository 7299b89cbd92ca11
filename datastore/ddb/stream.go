/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	ferrors "github.com/suparena/flatstore/errors"
	"github.com/suparena/flatstore/storagemodels"
)

// Stream scans the table page by page and delivers rows over a channel. The
// channel is closed when the scan is exhausted, fails or ctx is cancelled.
func (g *Gateway) Stream(ctx context.Context, opts ...storagemodels.StreamOption) <-chan storagemodels.StreamResult {
	options := storagemodels.NewStreamOptions(opts...)
	resultCh := make(chan storagemodels.StreamResult, options.BufferSize)

	if !g.ready() {
		resultCh <- storagemodels.StreamResult{
			Error: ferrors.NewNotFoundError("table", g.schema.Name),
			Meta:  storagemodels.StreamMeta{Timestamp: time.Now()},
		}
		close(resultCh)
		return resultCh
	}

	go g.streamWorker(ctx, options, resultCh)

	return resultCh
}

// streamWorker handles the actual streaming logic
func (g *Gateway) streamWorker(
	ctx context.Context,
	options storagemodels.StreamOptions,
	resultCh chan<- storagemodels.StreamResult,
) {
	defer close(resultCh)

	var itemIndex int64
	var pageNumber int
	startTime := time.Now()
	var errs []error
	var mu sync.Mutex

	reportProgress := func(lastKey map[string]types.AttributeValue) {
		if options.ProgressHandler == nil {
			return
		}
		mu.Lock()
		progress := storagemodels.StreamProgress{
			RowsDelivered:  atomic.LoadInt64(&itemIndex),
			PagesProcessed: pageNumber,
			Errors:         append([]error(nil), errs...),
			StartTime:      startTime,
			Finished:       len(lastKey) == 0,
		}
		mu.Unlock()

		if !progress.Finished {
			if key, err := decodeItem(lastKey); err == nil {
				progress.LastKey = storagemodels.Key(key)
			}
		}
		if elapsed := time.Since(startTime).Seconds(); elapsed > 0 {
			progress.RowsPerSec = float64(progress.RowsDelivered) / elapsed
		}
		options.ProgressHandler(progress)
	}

	input := &dynamodb.ScanInput{
		TableName: aws.String(g.schema.Name),
		Limit:     aws.Int32(options.PageSize),
	}

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		out, err := g.scanWithRetry(ctx, input, options)
		if err != nil {
			meta := storagemodels.StreamMeta{
				Index:      atomic.LoadInt64(&itemIndex),
				PageNumber: pageNumber,
				Timestamp:  time.Now(),
			}
			if options.ErrorHandler == nil || !options.ErrorHandler(err) {
				select {
				case resultCh <- storagemodels.StreamResult{Error: fmt.Errorf("scan failed: %w", err), Meta: meta}:
				case <-ctx.Done():
				}
				return
			}
			// the handler chose to continue; retry the same page
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
			continue
		}

		pageNumber++

		for _, raw := range out.Items {
			result := g.processItem(raw, atomic.LoadInt64(&itemIndex), pageNumber)
			atomic.AddInt64(&itemIndex, 1)

			select {
			case <-ctx.Done():
				return
			case resultCh <- result:
			}

			if result.Error != nil {
				mu.Lock()
				errs = append(errs, result.Error)
				mu.Unlock()
			}
		}

		reportProgress(out.LastEvaluatedKey)

		if len(out.LastEvaluatedKey) == 0 {
			return
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
}

// scanWithRetry executes one scan page, retrying throttling and other
// transient errors with linear backoff.
func (g *Gateway) scanWithRetry(
	ctx context.Context,
	input *dynamodb.ScanInput,
	options storagemodels.StreamOptions,
) (*dynamodb.ScanOutput, error) {
	var lastErr error

	for attempt := 0; attempt <= options.MaxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		out, err := g.client.Scan(ctx, input)
		if err == nil {
			return out, nil
		}
		lastErr = err

		if !isRetryableError(err) {
			return nil, g.storeError("Scan", err)
		}

		if attempt < options.MaxRetries {
			backoff := time.Duration(attempt+1) * options.RetryBackoff
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}
	}

	return nil, g.storeError("Scan", fmt.Errorf("failed after %d retries: %w", options.MaxRetries, lastErr))
}

// processItem decodes a raw row into a stream result. A row that cannot be
// decoded is delivered as an error and the stream continues.
func (g *Gateway) processItem(raw map[string]types.AttributeValue, index int64, pageNumber int) storagemodels.StreamResult {
	meta := storagemodels.StreamMeta{
		Index:      index,
		PageNumber: pageNumber,
		Timestamp:  time.Now(),
	}
	item, err := decodeItem(raw)
	if err != nil {
		return storagemodels.StreamResult{Error: fmt.Errorf("row %d: %w", index, err), Meta: meta}
	}
	return storagemodels.StreamResult{Item: item, Meta: meta}
}
