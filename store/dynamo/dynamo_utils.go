package dynamo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"studyhub/store"
)

func newDynamoDBClient(ctx context.Context, devMode bool, dynamodbEndpoint string) (*dynamodb.Client, error) {
	var cfg aws.Config
	var err error

	if devMode {
		// Load config with dummy credentials and region for local/dev
		cfg, err = config.LoadDefaultConfig(ctx,
			config.WithRegion("us-east-1"),
			config.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider("dummy", "dummy", ""),
			),
		)
		if err != nil {
			return nil, err
		}

		// Override endpoint for DynamoDB locally
		return dynamodb.New(dynamodb.Options{
			Credentials:      cfg.Credentials,
			Region:           cfg.Region,
			EndpointResolver: dynamodb.EndpointResolverFromURL(dynamodbEndpoint),
		}), nil
	}

	// Production: default config (uses Task Role and AWS endpoints)
	cfg, err = config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, err
	}

	return dynamodb.NewFromConfig(cfg), nil
}

func getTables(client *dynamodb.Client, ctx context.Context) ([]string, error) {
	output, err := client.ListTables(ctx, &dynamodb.ListTablesInput{})
	if err != nil {
		return nil, err
	}

	return output.TableNames, nil
}

// getItem retrieves an item of type T from DynamoDB by PK and SK
func getItem[T any](dynamoStore *DynamoStudyStore, ctx context.Context, pk string, sk string, consistentRead bool) (T, error) {
	var zero T

	key := map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: pk},
		"SK": &types.AttributeValueMemberS{Value: sk},
	}

	resp, err := dynamoStore.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(dynamoStore.tableName),
		Key:            key,
		ConsistentRead: aws.Bool(consistentRead),
	})
	if err != nil {
		return zero, fmt.Errorf("GetItem failed: %w", err)
	}
	if resp.Item == nil {
		return zero, store.ErrItemNotFound
	}

	var item T
	if err := attributevalue.UnmarshalMap(resp.Item, &item); err != nil {
		return zero, fmt.Errorf("failed to unmarshal item: %w", err)
	}

	return item, nil
}

// ensureItem inserts a struct with PK and SK only if no item with that key exists.
// On key collision the existing item is fetched and returned instead.
func ensureItem[T any](dynamoStore *DynamoStudyStore, ctx context.Context, item T) (T, bool, error) {
	avMap, err := attributevalue.MarshalMap(item)
	if err != nil {
		var zero T
		return zero, false, fmt.Errorf("marshal error: %w", err)
	}

	if _, ok := avMap["PK"]; !ok {
		var zero T
		return zero, false, errors.New("struct missing PK field")
	}
	if _, ok := avMap["SK"]; !ok {
		var zero T
		return zero, false, errors.New("struct missing SK field")
	}

	// Conditional PutItem: insert only if PK+SK does not exist
	_, err = dynamoStore.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(dynamoStore.tableName),
		Item:                avMap,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})

	if err != nil {
		var cce *types.ConditionalCheckFailedException
		if errors.As(err, &cce) {
			// Already exists: fetch it
			key := map[string]types.AttributeValue{
				"PK": avMap["PK"],
				"SK": avMap["SK"],
			}
			getResp, err := dynamoStore.client.GetItem(ctx, &dynamodb.GetItemInput{
				TableName: aws.String(dynamoStore.tableName),
				Key:       key,
			})
			if err != nil {
				var zero T
				return zero, false, fmt.Errorf("failed to fetch existing item: %w", err)
			}
			var existing T
			if err := attributevalue.UnmarshalMap(getResp.Item, &existing); err != nil {
				var zero T
				return zero, false, fmt.Errorf("failed to unmarshal existing item: %w", err)
			}
			return existing, false, nil
		}
		var zero T
		return zero, false, fmt.Errorf("failed to put item: %w", err)
	}

	return item, true, nil // Newly inserted
}

// putItem writes a struct unconditionally (create or replace).
func putItem[T any](dynamoStore *DynamoStudyStore, ctx context.Context, item T) error {
	avMap, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("marshal error: %w", err)
	}

	_, err = dynamoStore.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(dynamoStore.tableName),
		Item:      avMap,
	})
	if err != nil {
		return fmt.Errorf("failed to put item: %w", err)
	}

	return nil
}

// queryAllByPKPrefix returns all items of type T with the given PK whose SK
// starts with skPrefix, ordered by SK. An empty prefix returns the whole partition.
func queryAllByPKPrefix[T any](dynamoStore *DynamoStudyStore, ctx context.Context, pk string, skPrefix string) ([]T, error) {
	var results []T

	keyCond := "PK = :pk"
	exprAttrValues := map[string]types.AttributeValue{
		":pk": &types.AttributeValueMemberS{Value: pk},
	}
	if skPrefix != "" {
		keyCond += " AND begins_with(SK, :prefix)"
		exprAttrValues[":prefix"] = &types.AttributeValueMemberS{Value: skPrefix}
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(dynamoStore.tableName),
		KeyConditionExpression:    aws.String(keyCond),
		ExpressionAttributeValues: exprAttrValues,
	}

	paginator := dynamodb.NewQueryPaginator(dynamoStore.client, input)

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("query failed: %w", err)
		}

		var pageItems []T
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &pageItems); err != nil {
			return nil, fmt.Errorf("failed to unmarshal page items: %w", err)
		}

		results = append(results, pageItems...)
	}

	return results, nil
}

// queryAllByGSI returns all items of type T in a GSI matching the given partition value.
func queryAllByGSI[T any](dynamoStore *DynamoStudyStore, ctx context.Context, indexName string, pkField string, pkValue string) ([]T, error) {
	var results []T

	input := &dynamodb.QueryInput{
		TableName:              aws.String(dynamoStore.tableName),
		IndexName:              aws.String(indexName),
		KeyConditionExpression: aws.String("#pk = :pk"),
		ExpressionAttributeNames: map[string]string{
			"#pk": pkField,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: pkValue},
		},
	}

	paginator := dynamodb.NewQueryPaginator(dynamoStore.client, input)

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("query GSI failed: %w", err)
		}

		var pageItems []T
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &pageItems); err != nil {
			return nil, fmt.Errorf("failed to unmarshal page items: %w", err)
		}

		results = append(results, pageItems...)
	}

	return results, nil
}

// updateItem updates an existing item in DynamoDB.
// Only fields listed in fieldsToUpdate are written; keys are never touched.
// Returns store.ErrItemNotFound if the item does not exist.
func updateItem[T any](
	dynamoStore *DynamoStudyStore,
	ctx context.Context,
	item T,
	fieldsToUpdate []string,
) (T, error) {
	var zero T

	avMap, err := attributevalue.MarshalMap(item)
	if err != nil {
		return zero, fmt.Errorf("marshal error: %w", err)
	}

	pkAttr, ok := avMap["PK"]
	if !ok {
		return zero, errors.New("struct missing PK field")
	}
	skAttr, ok := avMap["SK"]
	if !ok {
		return zero, errors.New("struct missing SK field")
	}

	updateExpr := "SET "
	exprAttrValues := make(map[string]types.AttributeValue)
	exprAttrNames := make(map[string]string)
	first := true

	for _, field := range fieldsToUpdate {
		// Never update keys
		if field == "PK" || field == "SK" {
			continue
		}

		val, ok := avMap[field]
		if !ok {
			continue // field not present on struct
		}

		if !first {
			updateExpr += ", "
		}
		first = false

		updateExpr += fmt.Sprintf("#%s = :%s", field, field)
		exprAttrNames["#"+field] = field
		exprAttrValues[":"+field] = val
	}

	if first {
		return zero, errors.New("no updatable fields given")
	}

	key := map[string]types.AttributeValue{
		"PK": pkAttr,
		"SK": skAttr,
	}

	out, err := dynamoStore.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(dynamoStore.tableName),
		Key:                       key,
		UpdateExpression:          aws.String(updateExpr),
		ExpressionAttributeNames:  exprAttrNames,
		ExpressionAttributeValues: exprAttrValues,
		ConditionExpression:       aws.String("attribute_exists(PK) AND attribute_exists(SK)"),
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		var cce *types.ConditionalCheckFailedException
		if errors.As(err, &cce) {
			return zero, store.ErrItemNotFound
		}
		return zero, fmt.Errorf("update failed: %w", err)
	}

	var updated T
	if err := attributevalue.UnmarshalMap(out.Attributes, &updated); err != nil {
		return zero, fmt.Errorf("failed to unmarshal updated item: %w", err)
	}

	return updated, nil
}

// incrementCounters atomically adds deltas to numeric fields of an existing item.
// Strict mode: fails if the item does not exist (prevents partial records after delete).
func incrementCounters(
	dynamoStore *DynamoStudyStore,
	ctx context.Context,
	pk string,
	sk string,
	deltas map[string]int,
) error {
	if len(deltas) == 0 {
		return nil
	}

	key := map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: pk},
		"SK": &types.AttributeValueMemberS{Value: sk},
	}

	updateExpr := "SET "
	exprAttrNames := make(map[string]string)
	exprAttrValues := map[string]types.AttributeValue{
		":zero": &types.AttributeValueMemberN{Value: "0"},
	}
	first := true
	i := 0
	for field, delta := range deltas {
		if !first {
			updateExpr += ", "
		}
		first = false

		name := "#c" + strconv.Itoa(i)
		val := ":v" + strconv.Itoa(i)
		updateExpr += fmt.Sprintf("%s = if_not_exists(%s, :zero) + %s", name, name, val)
		exprAttrNames[name] = field
		exprAttrValues[val] = &types.AttributeValueMemberN{Value: strconv.Itoa(delta)}
		i++
	}

	_, err := dynamoStore.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(dynamoStore.tableName),
		Key:                       key,
		UpdateExpression:          aws.String(updateExpr),
		ExpressionAttributeNames:  exprAttrNames,
		ExpressionAttributeValues: exprAttrValues,
		ConditionExpression:       aws.String("attribute_exists(PK)"),
	})

	if err != nil {
		var cce *types.ConditionalCheckFailedException
		if errors.As(err, &cce) {
			return store.ErrItemNotFound
		}
		return fmt.Errorf("increment counters failed: %w", err)
	}

	return nil
}

// deleteItem deletes an item by PK and SK.
// Returns store.ErrItemNotFound if no such item exists.
func deleteItem(dynamoStore *DynamoStudyStore, ctx context.Context, pk string, sk string) error {
	key := map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: pk},
		"SK": &types.AttributeValueMemberS{Value: sk},
	}

	_, err := dynamoStore.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(dynamoStore.tableName),
		Key:                 key,
		ConditionExpression: aws.String("attribute_exists(PK) AND attribute_exists(SK)"),
	})

	if err != nil {
		var cce *types.ConditionalCheckFailedException
		if errors.As(err, &cce) {
			return store.ErrItemNotFound
		}
		return fmt.Errorf("delete failed: %w", err)
	}

	return nil
}

// writeBatchRequests handles batch writes (Put or Delete) with retries and backoff.
// Returns once every request is accepted or the context is cancelled.
func writeBatchRequests(dynamoStore *DynamoStudyStore, ctx context.Context, requests []types.WriteRequest) error {
	if len(requests) == 0 {
		return nil
	}

	backoff := 50 * time.Millisecond

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		resp, err := dynamoStore.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: map[string][]types.WriteRequest{
				dynamoStore.tableName: requests,
			},
		})
		if err != nil {
			return fmt.Errorf("BatchWriteItem failed: %w", err)
		}

		unprocessed := resp.UnprocessedItems[dynamoStore.tableName]
		if len(unprocessed) == 0 {
			return nil // all items processed successfully
		}

		// Prepare next retry set
		requests = unprocessed

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		if backoff < time.Second {
			backoff *= 2
		}
	}
}

// batchDeletePKThrottled queries a whole partition page by page and deletes every
// item in it. Query pages are larger for efficiency, but deletion is done in
// 25-item batches with throttling.
func batchDeletePKThrottled(
	dynamoStore *DynamoStudyStore,
	ctx context.Context,
	pk string,
	throttle time.Duration,
) error {
	var lastEvaluatedKey map[string]types.AttributeValue

	const queryPageSize int32 = 200

	for {
		input := &dynamodb.QueryInput{
			TableName:              aws.String(dynamoStore.tableName),
			KeyConditionExpression: aws.String("PK = :pk"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":pk": &types.AttributeValueMemberS{Value: pk},
			},
			ProjectionExpression: aws.String("PK, SK"),
			Limit:                aws.Int32(queryPageSize),
			ExclusiveStartKey:    lastEvaluatedKey,
		}

		resp, err := dynamoStore.client.Query(ctx, input)
		if err != nil {
			return fmt.Errorf("query partition failed: %w", err)
		}

		if len(resp.Items) == 0 {
			return nil
		}

		delRequests := make([]types.WriteRequest, 0, len(resp.Items))
		for _, item := range resp.Items {
			pkAttr, okPK := item["PK"]
			skAttr, okSK := item["SK"]
			if !okPK || !okSK {
				continue
			}
			delRequests = append(delRequests, types.WriteRequest{
				DeleteRequest: &types.DeleteRequest{
					Key: map[string]types.AttributeValue{
						"PK": pkAttr,
						"SK": skAttr,
					},
				},
			})
		}

		// Batch delete in chunks of 25 with throttling
		for i := 0; i < len(delRequests); i += 25 {
			end := i + 25
			if end > len(delRequests) {
				end = len(delRequests)
			}

			startTime := time.Now()

			if err := writeBatchRequests(dynamoStore, ctx, delRequests[i:end]); err != nil {
				return fmt.Errorf("batch delete failed: %w", err)
			}

			// Throttle between batches
			elapsed := time.Since(startTime)
			if elapsed < throttle {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(throttle - elapsed):
				}
			}
		}

		lastEvaluatedKey = resp.LastEvaluatedKey
		if lastEvaluatedKey == nil {
			return nil
		}
	}
}
