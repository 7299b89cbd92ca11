/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
)

// fakeClient is an in-memory stand-in for DynamoDB. It understands the
// expressions the gateway produces: attribute_not_exists/attribute_exists
// conditions, equality conjunctions, SET updates and name projections.
type fakeClient struct {
	mu       sync.Mutex
	tables   map[string]*fakeTable
	pageSize int

	calls map[string]int

	putErr          func(item map[string]types.AttributeValue) error
	batchErr        error
	unprocessedOnce int
	unprocessedAll  bool
	scanErrs        []error
	batchSizes      []int
}

type fakeTable struct {
	desc  *types.TableDescription
	keys  []string
	rows  map[string]map[string]types.AttributeValue
	order []string
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		tables:   make(map[string]*fakeTable),
		pageSize: 2,
		calls:    make(map[string]int),
	}
}

var _ Client = (*fakeClient)(nil)

func notFound(name string) error {
	return &types.ResourceNotFoundException{Message: aws.String("table not found: " + name)}
}

func (f *fakeClient) table(name *string) (*fakeTable, error) {
	t, ok := f.tables[aws.ToString(name)]
	if !ok {
		return nil, notFound(aws.ToString(name))
	}
	return t, nil
}

func (t *fakeTable) put(item map[string]types.AttributeValue) {
	id := keyID(item, t.keys)
	if _, ok := t.rows[id]; !ok {
		t.order = append(t.order, id)
	}
	t.rows[id] = item
}

func (t *fakeTable) remove(id string) {
	if _, ok := t.rows[id]; !ok {
		return
	}
	delete(t.rows, id)
	for i, o := range t.order {
		if o == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
}

func (f *fakeClient) DescribeTable(_ context.Context, in *sdk.DescribeTableInput, _ ...func(*sdk.Options)) (*sdk.DescribeTableOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["DescribeTable"]++
	t, err := f.table(in.TableName)
	if err != nil {
		return nil, err
	}
	return &sdk.DescribeTableOutput{Table: t.desc}, nil
}

func (f *fakeClient) CreateTable(_ context.Context, in *sdk.CreateTableInput, _ ...func(*sdk.Options)) (*sdk.CreateTableOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["CreateTable"]++
	name := aws.ToString(in.TableName)
	if _, ok := f.tables[name]; ok {
		return nil, &types.ResourceInUseException{Message: aws.String("table exists: " + name)}
	}

	desc := &types.TableDescription{
		TableName:            in.TableName,
		TableStatus:          types.TableStatusActive,
		AttributeDefinitions: in.AttributeDefinitions,
		KeySchema:            in.KeySchema,
		BillingModeSummary:   &types.BillingModeSummary{BillingMode: in.BillingMode},
	}
	if in.ProvisionedThroughput != nil {
		desc.ProvisionedThroughput = &types.ProvisionedThroughputDescription{
			ReadCapacityUnits:  in.ProvisionedThroughput.ReadCapacityUnits,
			WriteCapacityUnits: in.ProvisionedThroughput.WriteCapacityUnits,
		}
	}
	t := &fakeTable{desc: desc, rows: make(map[string]map[string]types.AttributeValue)}
	for _, role := range []types.KeyType{types.KeyTypeHash, types.KeyTypeRange} {
		for _, el := range in.KeySchema {
			if el.KeyType == role {
				t.keys = append(t.keys, aws.ToString(el.AttributeName))
			}
		}
	}
	f.tables[name] = t
	return &sdk.CreateTableOutput{TableDescription: desc}, nil
}

func (f *fakeClient) DeleteTable(_ context.Context, in *sdk.DeleteTableInput, _ ...func(*sdk.Options)) (*sdk.DeleteTableOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["DeleteTable"]++
	t, err := f.table(in.TableName)
	if err != nil {
		return nil, err
	}
	delete(f.tables, aws.ToString(in.TableName))
	return &sdk.DeleteTableOutput{TableDescription: t.desc}, nil
}

func (f *fakeClient) ListTables(_ context.Context, _ *sdk.ListTablesInput, _ ...func(*sdk.Options)) (*sdk.ListTablesOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["ListTables"]++
	names := make([]string, 0, len(f.tables))
	for name := range f.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return &sdk.ListTablesOutput{TableNames: names}, nil
}

func (f *fakeClient) PutItem(_ context.Context, in *sdk.PutItemInput, _ ...func(*sdk.Options)) (*sdk.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["PutItem"]++
	t, err := f.table(in.TableName)
	if err != nil {
		return nil, err
	}
	if f.putErr != nil {
		if err := f.putErr(in.Item); err != nil {
			return nil, err
		}
	}
	if cond := aws.ToString(in.ConditionExpression); strings.Contains(cond, "attribute_not_exists") {
		if _, exists := t.rows[keyID(in.Item, t.keys)]; exists {
			return nil, &types.ConditionalCheckFailedException{Message: aws.String("The conditional request failed")}
		}
	}
	t.put(in.Item)
	return &sdk.PutItemOutput{}, nil
}

func (f *fakeClient) BatchWriteItem(_ context.Context, in *sdk.BatchWriteItemInput, _ ...func(*sdk.Options)) (*sdk.BatchWriteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["BatchWriteItem"]++
	if f.batchErr != nil {
		return nil, f.batchErr
	}

	unprocessed := make(map[string][]types.WriteRequest)
	for name, requests := range in.RequestItems {
		t, err := f.table(aws.String(name))
		if err != nil {
			return nil, err
		}
		if len(requests) > maxBatchSize {
			return nil, &smithy.GenericAPIError{Code: "ValidationException", Message: "too many items"}
		}
		f.batchSizes = append(f.batchSizes, len(requests))

		seen := make(map[string]bool)
		for _, req := range requests {
			id := keyID(req.PutRequest.Item, t.keys)
			if seen[id] {
				return nil, &smithy.GenericAPIError{Code: "ValidationException", Message: "duplicate keys"}
			}
			seen[id] = true
		}

		hold := 0
		switch {
		case f.unprocessedAll:
			hold = len(requests)
		case f.unprocessedOnce > 0:
			hold = min(f.unprocessedOnce, len(requests))
			f.unprocessedOnce = 0
		}
		for _, req := range requests[:len(requests)-hold] {
			t.put(req.PutRequest.Item)
		}
		if hold > 0 {
			unprocessed[name] = requests[len(requests)-hold:]
		}
	}
	return &sdk.BatchWriteItemOutput{UnprocessedItems: unprocessed}, nil
}

func (f *fakeClient) GetItem(_ context.Context, in *sdk.GetItemInput, _ ...func(*sdk.Options)) (*sdk.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["GetItem"]++
	t, err := f.table(in.TableName)
	if err != nil {
		return nil, err
	}
	return &sdk.GetItemOutput{Item: t.rows[keyID(in.Key, t.keys)]}, nil
}

func (f *fakeClient) DeleteItem(_ context.Context, in *sdk.DeleteItemInput, _ ...func(*sdk.Options)) (*sdk.DeleteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["DeleteItem"]++
	t, err := f.table(in.TableName)
	if err != nil {
		return nil, err
	}
	t.remove(keyID(in.Key, t.keys))
	return &sdk.DeleteItemOutput{}, nil
}

func (f *fakeClient) UpdateItem(_ context.Context, in *sdk.UpdateItemInput, _ ...func(*sdk.Options)) (*sdk.UpdateItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["UpdateItem"]++
	t, err := f.table(in.TableName)
	if err != nil {
		return nil, err
	}
	id := keyID(in.Key, t.keys)
	row, exists := t.rows[id]
	if strings.Contains(aws.ToString(in.ConditionExpression), "attribute_exists") && !exists {
		return nil, &types.ConditionalCheckFailedException{Message: aws.String("The conditional request failed")}
	}
	if !exists {
		row = make(map[string]types.AttributeValue)
		for k, v := range in.Key {
			row[k] = v
		}
	}

	for _, line := range strings.Split(strings.TrimSpace(aws.ToString(in.UpdateExpression)), "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "SET ") {
			return nil, fmt.Errorf("fake: unsupported update %q", line)
		}
		for _, clause := range strings.Split(strings.TrimPrefix(line, "SET "), ",") {
			parts := strings.SplitN(strings.TrimSpace(clause), " = ", 2)
			row[in.ExpressionAttributeNames[parts[0]]] = in.ExpressionAttributeValues[parts[1]]
		}
	}
	t.put(row)
	return &sdk.UpdateItemOutput{}, nil
}

func (f *fakeClient) Scan(_ context.Context, in *sdk.ScanInput, _ ...func(*sdk.Options)) (*sdk.ScanOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["Scan"]++
	if len(f.scanErrs) > 0 {
		err := f.scanErrs[0]
		f.scanErrs = f.scanErrs[1:]
		return nil, err
	}
	t, err := f.table(in.TableName)
	if err != nil {
		return nil, err
	}

	page, last := f.page(t, in.ExclusiveStartKey, in.Limit)
	var items []map[string]types.AttributeValue
	for _, row := range page {
		if in.FilterExpression != nil && !matches(*in.FilterExpression, row, in.ExpressionAttributeNames, in.ExpressionAttributeValues) {
			continue
		}
		items = append(items, project(row, in.ProjectionExpression, in.ExpressionAttributeNames))
	}
	out := &sdk.ScanOutput{Count: int32(len(items)), ScannedCount: int32(len(page)), LastEvaluatedKey: last}
	if in.Select != types.SelectCount {
		out.Items = items
	}
	return out, nil
}

func (f *fakeClient) Query(_ context.Context, in *sdk.QueryInput, _ ...func(*sdk.Options)) (*sdk.QueryOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["Query"]++
	t, err := f.table(in.TableName)
	if err != nil {
		return nil, err
	}

	page, last := f.page(t, in.ExclusiveStartKey, in.Limit)
	var items []map[string]types.AttributeValue
	for _, row := range page {
		if !matches(aws.ToString(in.KeyConditionExpression), row, in.ExpressionAttributeNames, in.ExpressionAttributeValues) {
			continue
		}
		if in.FilterExpression != nil && !matches(*in.FilterExpression, row, in.ExpressionAttributeNames, in.ExpressionAttributeValues) {
			continue
		}
		items = append(items, row)
	}
	return &sdk.QueryOutput{Items: items, Count: int32(len(items)), LastEvaluatedKey: last}, nil
}

// page returns rows after start, at most limit (or the fake page size).
func (f *fakeClient) page(t *fakeTable, start map[string]types.AttributeValue, limit *int32) ([]map[string]types.AttributeValue, map[string]types.AttributeValue) {
	size := f.pageSize
	if limit != nil && int(*limit) < size {
		size = int(*limit)
	}

	from := 0
	if len(start) > 0 {
		startID := keyID(start, t.keys)
		for i, id := range t.order {
			if id == startID {
				from = i + 1
				break
			}
		}
	}

	to := min(from+size, len(t.order))
	rows := make([]map[string]types.AttributeValue, 0, to-from)
	for _, id := range t.order[from:to] {
		rows = append(rows, t.rows[id])
	}

	var last map[string]types.AttributeValue
	if to < len(t.order) && to > from {
		lastRow := t.rows[t.order[to-1]]
		last = make(map[string]types.AttributeValue, len(t.keys))
		for _, k := range t.keys {
			last[k] = lastRow[k]
		}
	}
	return rows, last
}

// matches evaluates a conjunction of "#name = :value" terms.
func matches(expr string, row map[string]types.AttributeValue, names map[string]string, values map[string]types.AttributeValue) bool {
	expr = strings.NewReplacer("(", "", ")", "").Replace(expr)
	for _, term := range strings.Split(expr, " AND ") {
		parts := strings.SplitN(strings.TrimSpace(term), " = ", 2)
		if len(parts) != 2 {
			return false
		}
		name := parts[0]
		if resolved, ok := names[name]; ok {
			name = resolved
		}
		if avString(row[name]) != avString(values[strings.TrimSpace(parts[1])]) {
			return false
		}
	}
	return true
}

func project(row map[string]types.AttributeValue, projection *string, names map[string]string) map[string]types.AttributeValue {
	if projection == nil {
		return row
	}
	out := make(map[string]types.AttributeValue)
	for _, placeholder := range strings.Split(*projection, ",") {
		name := strings.TrimSpace(placeholder)
		if resolved, ok := names[name]; ok {
			name = resolved
		}
		if v, ok := row[name]; ok {
			out[name] = v
		}
	}
	return out
}

func avString(av types.AttributeValue) string {
	switch v := av.(type) {
	case *types.AttributeValueMemberS:
		return "S:" + v.Value
	case *types.AttributeValueMemberN:
		return "N:" + v.Value
	case *types.AttributeValueMemberBOOL:
		return fmt.Sprintf("BOOL:%v", v.Value)
	case nil:
		return "<absent>"
	}
	return fmt.Sprintf("%T", av)
}
