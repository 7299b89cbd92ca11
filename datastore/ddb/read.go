/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	ferrors "github.com/suparena/flatstore/errors"
	"github.com/suparena/flatstore/storagemodels"
)

// GetOne retrieves a single row by key.
// It returns nil and no error if no row is found.
func (g *Gateway) GetOne(ctx context.Context, key storagemodels.Key) (storagemodels.Item, error) {
	keyAV, err := marshalKey(g.schema, key)
	if err != nil {
		return nil, err
	}
	out, err := g.client.GetItem(ctx, &sdk.GetItemInput{
		TableName: aws.String(g.schema.Name),
		Key:       keyAV,
	})
	if err != nil {
		return nil, g.storeError("GetItem", err)
	}
	if out.Item == nil {
		return nil, nil
	}
	return decodeItem(out.Item)
}

// ScanAll reads every row, following pagination until it is exhausted.
func (g *Gateway) ScanAll(ctx context.Context) ([]storagemodels.Item, error) {
	return g.ScanWhere(ctx, storagemodels.ScanParams{})
}

// ScanWhere reads every row matching the filter, following pagination.
func (g *Gateway) ScanWhere(ctx context.Context, params storagemodels.ScanParams) ([]storagemodels.Item, error) {
	if !g.ready() {
		return nil, ferrors.NewNotFoundError("table", g.schema.Name)
	}
	input, err := g.scanInput(params)
	if err != nil {
		return nil, err
	}

	var items []storagemodels.Item
	paginator := sdk.NewScanPaginator(g.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, g.storeError("Scan", err)
		}
		decoded, err := decodeItems(page.Items)
		if err != nil {
			return nil, err
		}
		items = append(items, decoded...)
	}
	return items, nil
}

func (g *Gateway) scanInput(params storagemodels.ScanParams) (*sdk.ScanInput, error) {
	input := &sdk.ScanInput{TableName: aws.String(g.schema.Name)}

	names := make(map[string]string, len(params.ExpressionAttributeNames))
	for placeholder, name := range params.ExpressionAttributeNames {
		names[placeholder] = name
	}

	if len(params.ProjectionAttributes) > 0 {
		projection := expression.NamesList(expression.NameNoDotSplit(params.ProjectionAttributes[0]))
		for _, name := range params.ProjectionAttributes[1:] {
			projection = projection.AddNames(expression.NameNoDotSplit(name))
		}
		expr, err := expression.NewBuilder().WithProjection(projection).Build()
		if err != nil {
			return nil, fmt.Errorf("failed to build projection: %w", err)
		}
		input.ProjectionExpression = expr.Projection()
		for placeholder, name := range expr.Names() {
			names[placeholder] = name
		}
	}

	if params.FilterExpression != "" {
		values, err := marshalValues(params.ExpressionAttributeValues)
		if err != nil {
			return nil, ferrors.NewValidationError("ExpressionAttributeValues", err.Error())
		}
		input.FilterExpression = aws.String(params.FilterExpression)
		input.ExpressionAttributeValues = values
	}
	if len(names) > 0 {
		input.ExpressionAttributeNames = names
	}
	return input, nil
}

// CountAll counts rows with a count-only scan, following pagination.
func (g *Gateway) CountAll(ctx context.Context) (int64, error) {
	if !g.ready() {
		return 0, ferrors.NewNotFoundError("table", g.schema.Name)
	}
	var total int64
	paginator := sdk.NewScanPaginator(g.client, &sdk.ScanInput{
		TableName: aws.String(g.schema.Name),
		Select:    types.SelectCount,
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return 0, g.storeError("Scan", err)
		}
		total += int64(page.Count)
	}
	return total, nil
}

// QueryByKey runs a key-condition query and collects every page. When the
// table does not exist it logs a warning and returns no rows.
func (g *Gateway) QueryByKey(ctx context.Context, params storagemodels.QueryParams) ([]storagemodels.Item, error) {
	if !g.ready() {
		exists, err := g.Exists(ctx)
		if err != nil {
			return nil, err
		}
		if !exists || !g.ready() {
			g.logger.Warn("query against a table that does not exist", "condition", params.KeyConditionExpression)
			return []storagemodels.Item{}, nil
		}
	}
	if params.KeyConditionExpression == "" {
		return nil, ferrors.NewValidationError("KeyConditionExpression", "key condition is required")
	}

	values, err := marshalValues(params.ExpressionAttributeValues)
	if err != nil {
		return nil, ferrors.NewValidationError("ExpressionAttributeValues", err.Error())
	}
	input := &sdk.QueryInput{
		TableName:                 aws.String(g.schema.Name),
		KeyConditionExpression:    aws.String(params.KeyConditionExpression),
		ExpressionAttributeValues: values,
		FilterExpression:          params.FilterExpression,
		IndexName:                 params.IndexName,
		Limit:                     params.Limit,
		ScanIndexForward:          params.ScanIndexForward,
	}
	if len(params.ExpressionAttributeNames) > 0 {
		input.ExpressionAttributeNames = params.ExpressionAttributeNames
	}

	items := []storagemodels.Item{}
	paginator := sdk.NewQueryPaginator(g.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, g.storeError("Query", err)
		}
		decoded, err := decodeItems(page.Items)
		if err != nil {
			return nil, err
		}
		items = append(items, decoded...)
	}
	if len(items) == 0 {
		g.logger.Warn("query returned no rows", "condition", params.KeyConditionExpression)
	}
	return items, nil
}
