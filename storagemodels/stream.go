/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

import "time"

// StreamResult carries one row of a streamed scan, or the error that ended
// or interrupted it.
type StreamResult struct {
	Item  Item
	Error error
	Meta  StreamMeta
}

// StreamMeta locates a streamed row.
type StreamMeta struct {
	Index      int64 // 0-based row index across the stream
	PageNumber int   // 1-based page number
	Timestamp  time.Time
}

// StreamProgress is reported after every page and once more when the stream ends.
type StreamProgress struct {
	RowsDelivered  int64
	PagesProcessed int
	// LastKey is the key the next page starts after. It is nil on the final report.
	LastKey    Key
	Errors     []error
	StartTime  time.Time
	RowsPerSec float64
	Finished   bool
}

// StreamOptions configures a streamed scan.
type StreamOptions struct {
	BufferSize      int
	MaxRetries      int
	RetryBackoff    time.Duration
	PageSize        int32
	ProgressHandler func(StreamProgress)
	// ErrorHandler decides whether a failed page is retried (true) or ends
	// the stream (false). Without a handler a failed page ends the stream.
	ErrorHandler func(error) bool
}

// StreamOption configures StreamOptions.
type StreamOption func(*StreamOptions)

// NewStreamOptions applies opts over the defaults: a buffer of 100 rows,
// pages of 100 rows, 3 retries and 1s linear backoff. Values out of range
// fall back to the default.
func NewStreamOptions(opts ...StreamOption) StreamOptions {
	o := StreamOptions{
		BufferSize:   100,
		MaxRetries:   3,
		RetryBackoff: time.Second,
		PageSize:     100,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.BufferSize < 0 {
		o.BufferSize = 100
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.RetryBackoff < 0 {
		o.RetryBackoff = time.Second
	}
	if o.PageSize <= 0 {
		o.PageSize = 100
	}
	return o
}

func WithBufferSize(size int) StreamOption {
	return func(o *StreamOptions) { o.BufferSize = size }
}

func WithMaxRetries(retries int) StreamOption {
	return func(o *StreamOptions) { o.MaxRetries = retries }
}

func WithRetryBackoff(backoff time.Duration) StreamOption {
	return func(o *StreamOptions) { o.RetryBackoff = backoff }
}

func WithPageSize(size int32) StreamOption {
	return func(o *StreamOptions) { o.PageSize = size }
}

func WithProgressHandler(handler func(StreamProgress)) StreamOption {
	return func(o *StreamOptions) { o.ProgressHandler = handler }
}

func WithErrorHandler(handler func(error) bool) StreamOption {
	return func(o *StreamOptions) { o.ErrorHandler = handler }
}
