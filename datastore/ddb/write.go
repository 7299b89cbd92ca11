/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	ferrors "github.com/suparena/flatstore/errors"
	"github.com/suparena/flatstore/processor"
	"github.com/suparena/flatstore/storagemodels"
)

// PutOne writes a single item. With idempotent set the write is conditional
// on none of the key attributes existing; a failed condition is logged and
// reported as Skipped.
func (g *Gateway) PutOne(ctx context.Context, item processor.StorageItem, idempotent bool) (storagemodels.WriteOutcome, error) {
	if err := item.CheckWritable(g.schema); err != nil {
		return storagemodels.Written, err
	}
	av, err := marshalItem(item.Attributes())
	if err != nil {
		return storagemodels.Written, ferrors.NewValidationError("", err.Error())
	}

	input := &sdk.PutItemInput{
		TableName: aws.String(g.schema.Name),
		Item:      av,
	}
	if idempotent {
		expr, err := expression.NewBuilder().WithCondition(keyAbsentCondition(g.schema)).Build()
		if err != nil {
			return storagemodels.Written, fmt.Errorf("failed to build condition: %w", err)
		}
		input.ConditionExpression = expr.Condition()
		input.ExpressionAttributeNames = expr.Names()
	}

	if _, err := g.client.PutItem(ctx, input); err != nil {
		if idempotent && isConditionFailed(err) {
			key, _ := item.Key(g.schema)
			skipped := ferrors.NewConditionalWriteSkipped(g.schema.Name, describeKey(key))
			g.logger.Info("idempotent write skipped", "reason", skipped.Error())
			return storagemodels.Skipped, nil
		}
		return storagemodels.Written, g.storeError("PutItem", err)
	}
	return storagemodels.Written, nil
}

// keyAbsentCondition is attribute_not_exists on every key attribute. Names
// are not split on dots because prefixed attribute names contain them.
func keyAbsentCondition(schema storagemodels.TableSchema) expression.ConditionBuilder {
	names := schema.KeyNames()
	cond := expression.AttributeNotExists(expression.NameNoDotSplit(names[0]))
	for _, name := range names[1:] {
		cond = cond.And(expression.AttributeNotExists(expression.NameNoDotSplit(name)))
	}
	return cond
}

// PutMany writes items and returns those that were written. Idempotent
// batches go through PutOne item by item; other batches use BatchWriteItem in
// chunks, which overwrites rows with the same key.
//
// A batch holding an item that was not preprocessed for this table is
// rejected as a whole before any write. Items missing key attributes and
// items the backing store refuses are counted as failed. An error is only
// returned when every item failed.
func (g *Gateway) PutMany(ctx context.Context, items []processor.StorageItem, idempotent bool) ([]processor.StorageItem, storagemodels.WriteCounts, error) {
	counts := storagemodels.WriteCounts{Total: len(items)}
	if len(items) == 0 {
		return nil, counts, nil
	}
	for n, item := range items {
		if !item.Preprocessed() || item.Table() != g.schema.Name {
			return nil, counts, ferrors.NewSchemaViolation(g.schema.Name,
				fmt.Sprintf("batch item %d was not preprocessed for this table", n))
		}
	}

	var (
		written []processor.StorageItem
		lastErr error
	)
	pending := make([]processor.StorageItem, 0, len(items))
	for _, item := range items {
		if err := item.CheckWritable(g.schema); err != nil {
			counts.Failed++
			lastErr = err
			g.logger.Error("item rejected", "error", err)
			continue
		}
		pending = append(pending, item)
	}

	if idempotent {
		for _, item := range pending {
			outcome, err := g.PutOne(ctx, item, true)
			switch {
			case err != nil:
				counts.Failed++
				lastErr = err
			case outcome == storagemodels.Skipped:
				counts.Skipped++
			default:
				counts.Succeeded++
				written = append(written, item)
			}
		}
	} else {
		batchWritten, failed, err := g.batchWrite(ctx, pending)
		if err != nil {
			lastErr = err
		}
		written = batchWritten
		counts.Succeeded += len(batchWritten)
		counts.Failed += failed
	}

	g.logger.Info("batch write finished",
		"idempotent", idempotent,
		"total", counts.Total,
		"succeeded", counts.Succeeded,
		"skipped", counts.Skipped,
		"failed", counts.Failed)

	if counts.AllFailed() {
		return nil, counts, &ferrors.BatchError{Table: g.schema.Name, Total: counts.Total, Failed: counts.Failed, Last: lastErr}
	}
	return written, counts, nil
}

// UpdateOne sets the given attributes on an existing row. Key attributes
// cannot be updated; a missing row yields a NotFoundError.
func (g *Gateway) UpdateOne(ctx context.Context, key storagemodels.Key, updates map[string]any) error {
	if len(updates) == 0 {
		return ferrors.NewValidationError("updates", "no updates provided")
	}
	keyAV, err := marshalKey(g.schema, key)
	if err != nil {
		return err
	}

	fields := make([]string, 0, len(updates))
	for field := range updates {
		if g.schema.IsKey(field) {
			return ferrors.NewValidationError(field, "key attributes cannot be updated")
		}
		fields = append(fields, field)
	}
	sort.Strings(fields)

	var update expression.UpdateBuilder
	for _, field := range fields {
		update = update.Set(expression.NameNoDotSplit(field), expression.Value(updates[field]))
	}
	exists := expression.AttributeExists(expression.NameNoDotSplit(g.schema.PartitionKey()))
	expr, err := expression.NewBuilder().WithUpdate(update).WithCondition(exists).Build()
	if err != nil {
		return fmt.Errorf("failed to build update expression: %w", err)
	}

	_, err = g.client.UpdateItem(ctx, &sdk.UpdateItemInput{
		TableName:                 aws.String(g.schema.Name),
		Key:                       keyAV,
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ReturnValues:              types.ReturnValueNone,
	})
	if err != nil {
		if isConditionFailed(err) {
			return ferrors.NewNotFoundError(g.schema.Name, describeKey(key))
		}
		return g.storeError("UpdateItem", err)
	}
	return nil
}

// DeleteOne removes a row. Deleting an absent row is not an error.
func (g *Gateway) DeleteOne(ctx context.Context, key storagemodels.Key) error {
	keyAV, err := marshalKey(g.schema, key)
	if err != nil {
		return err
	}
	_, err = g.client.DeleteItem(ctx, &sdk.DeleteItemInput{
		TableName: aws.String(g.schema.Name),
		Key:       keyAV,
	})
	if err != nil {
		return g.storeError("DeleteItem", err)
	}
	return nil
}
