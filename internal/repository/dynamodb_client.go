package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"clothcheck-skill/internal/domain"
)

// dynamodbAPI is the minimal DynamoDB interface required by Client.
// Defined here for testability.
type dynamodbAPI interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
}

// Client is the durable store for postal codes and temperature ratings, one
// DynamoDB table for each. Every operation is a single-record call; no
// retries or caching here, failures surface to the caller unmodified.
type Client struct {
	api             dynamodbAPI
	postalCodeTable string
	ratingTable     string
}

func New(api dynamodbAPI, postalCodeTable, ratingTable string) (*Client, error) {
	if api == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	if strings.TrimSpace(postalCodeTable) == "" {
		return nil, errors.New("repository: postal code table name must not be empty")
	}
	if strings.TrimSpace(ratingTable) == "" {
		return nil, errors.New("repository: rating table name must not be empty")
	}
	return &Client{api: api, postalCodeTable: postalCodeTable, ratingTable: ratingTable}, nil
}

// GetPostalCode fetches the user's postal code record. The second return is
// false when no record exists at all, which launch treats differently from
// a record with an empty code.
func (c *Client) GetPostalCode(ctx context.Context, userID string) (domain.PostalCodeRecord, bool, error) {
	out, err := c.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(c.postalCodeTable),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: userID},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return domain.PostalCodeRecord{}, false, fmt.Errorf("repository: GetPostalCode get item: %w", err)
	}
	if out == nil || len(out.Item) == 0 {
		return domain.PostalCodeRecord{}, false, nil
	}

	rec := domain.PostalCodeRecord{UserID: userID}
	rec.PostalCode, _ = strAttr(out.Item, "postalCode") // absent means registration never finished
	if ts, err := timeAttr(out.Item, "timestamp"); err == nil {
		rec.UpdatedAt = ts
	}
	return rec, true, nil
}

// PutPostalCode overwrites the user's postal code record with the validated
// code and the current time.
func (c *Client) PutPostalCode(ctx context.Context, userID, postalCode string) error {
	if userID == "" {
		return errors.New("repository: PutPostalCode: user id is required")
	}
	_, err := c.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(c.postalCodeTable),
		Item: map[string]types.AttributeValue{
			"id":         &types.AttributeValueMemberS{Value: userID},
			"postalCode": &types.AttributeValueMemberS{Value: postalCode},
			"timestamp":  &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339)},
		},
	})
	if err != nil {
		return fmt.Errorf("repository: PutPostalCode: %w", err)
	}
	return nil
}

// GetRating fetches the (user, temperature) row. A row without a result
// attribute decodes as seen-but-unrated.
func (c *Client) GetRating(ctx context.Context, userID string, temperature int) (domain.TemperatureRating, bool, error) {
	out, err := c.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(c.ratingTable),
		Key: map[string]types.AttributeValue{
			"id":          &types.AttributeValueMemberS{Value: userID},
			"temperature": &types.AttributeValueMemberN{Value: strconv.Itoa(temperature)},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return domain.TemperatureRating{}, false, fmt.Errorf("repository: GetRating get item: %w", err)
	}
	if out == nil || len(out.Item) == 0 {
		return domain.TemperatureRating{}, false, nil
	}

	rating := domain.TemperatureRating{UserID: userID, Temperature: temperature}
	if result, ok := strAttr(out.Item, "result"); ok {
		rating.Result, _ = domain.ParseRating(result)
	}
	if ts, err := timeAttr(out.Item, "timestamp"); err == nil {
		rating.RatedAt = ts
	}
	rating.ImageKey, _ = strAttr(out.Item, "image")
	return rating, true, nil
}

// PutRating sets the result and rated-at time on the (user, temperature)
// row. An update expression keeps other attributes, like image, intact.
func (c *Client) PutRating(ctx context.Context, userID string, temperature int, result domain.Rating) error {
	if userID == "" {
		return errors.New("repository: PutRating: user id is required")
	}
	_, err := c.api.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(c.ratingTable),
		Key: map[string]types.AttributeValue{
			"id":          &types.AttributeValueMemberS{Value: userID},
			"temperature": &types.AttributeValueMemberN{Value: strconv.Itoa(temperature)},
		},
		UpdateExpression: aws.String("SET #result = :result, #ts = :ts"),
		ExpressionAttributeNames: map[string]string{
			"#result": "result",
			"#ts":     "timestamp",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":result": &types.AttributeValueMemberS{Value: string(result)},
			":ts":     &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339)},
		},
	})
	if err != nil {
		return fmt.Errorf("repository: PutRating: %w", err)
	}
	return nil
}

func strAttr(item map[string]types.AttributeValue, key string) (string, bool) {
	v, ok := item[key]
	if !ok {
		return "", false
	}
	s, ok := v.(*types.AttributeValueMemberS)
	if !ok {
		return "", false
	}
	return s.Value, true
}

func timeAttr(item map[string]types.AttributeValue, key string) (time.Time, error) {
	raw, ok := strAttr(item, key)
	if !ok {
		return time.Time{}, fmt.Errorf("repository: missing attribute %q", key)
	}
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("repository: parse attribute %q: %w", key, err)
	}
	return ts, nil
}
