/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"errors"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"

	ferrors "github.com/suparena/flatstore/errors"
)

// storeError logs err with its operation context and wraps it as a
// BackingStoreError.
func (g *Gateway) storeError(operation string, err error) error {
	bse := &ferrors.BackingStoreError{
		Operation: operation,
		Table:     g.schema.Name,
		Code:      errorCode(err),
		Retryable: isRetryableError(err),
		Cause:     err,
	}
	g.logger.Error("backing store operation failed",
		"operation", operation,
		"code", bse.Code,
		"retryable", bse.Retryable,
		"error", err)
	return bse
}

func errorCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}

func isNotFound(err error) bool {
	var rnf *types.ResourceNotFoundException
	if errors.As(err, &rnf) {
		return true
	}
	return errorCode(err) == "ResourceNotFoundException"
}

func isConditionFailed(err error) bool {
	var cfe *types.ConditionalCheckFailedException
	if errors.As(err, &cfe) {
		return true
	}
	return errorCode(err) == "ConditionalCheckFailedException"
}

// isRetryableError determines if a DynamoDB error is retryable
func isRetryableError(err error) bool {
	var (
		throughput *types.ProvisionedThroughputExceededException
		limit      *types.RequestLimitExceeded
		internal   *types.InternalServerError
	)
	switch {
	case errors.As(err, &throughput), errors.As(err, &limit), errors.As(err, &internal):
		return true
	}

	// Check for AWS SDK retryable errors
	var retryable interface{ RetryableError() bool }
	if errors.As(err, &retryable) {
		return retryable.RetryableError()
	}
	return false
}
