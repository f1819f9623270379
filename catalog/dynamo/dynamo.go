// Package dynamo implements catalog.Catalog on Amazon DynamoDB.
//
// Each entry is one item keyed by sequence name. Put uses a conditional
// write so that only a strictly newer version replaces the stored item.
//
// Table schema:
//   - Partition key: seq_name (string)
//
// Create table with:
//
//	aws dynamodb create-table \
//	  --table-name seqbench-catalog \
//	  --attribute-definitions AttributeName=seq_name,AttributeType=S \
//	  --key-schema AttributeName=seq_name,KeyType=HASH \
//	  --billing-mode PAY_PER_REQUEST
package dynamo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/hupe1980/seqbench/catalog"
)

// DDBClient is the interface for DynamoDB operations.
type DDBClient interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

const (
	attrName         = "seq_name"
	attrBlob         = "blob_key"
	attrKind         = "kind"
	attrWidth        = "width"
	attrCount        = "elem_count"
	attrEncodedBytes = "encoded_bytes"
	attrStoredBytes  = "stored_bytes"
	attrCompression  = "compression"
	attrChecksum     = "checksum"
	attrVersion      = "version"
	attrCreatedAt    = "created_at"
)

// Catalog implements catalog.Catalog on a DynamoDB table.
type Catalog struct {
	client    DDBClient
	tableName string
}

var _ catalog.Catalog = (*Catalog)(nil)

// New creates a Catalog using the default AWS configuration chain.
func New(ctx context.Context, tableName string) (*Catalog, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewCatalog(dynamodb.NewFromConfig(cfg), tableName), nil
}

// NewCatalog creates a Catalog from an existing client.
func NewCatalog(client DDBClient, tableName string) *Catalog {
	return &Catalog{client: client, tableName: tableName}
}

func (c *Catalog) key(name string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		attrName: &types.AttributeValueMemberS{Value: name},
	}
}

// Get implements catalog.Catalog.
func (c *Catalog) Get(ctx context.Context, name string) (catalog.Entry, error) {
	resp, err := c.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(c.tableName),
		Key:            c.key(name),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return catalog.Entry{}, fmt.Errorf("failed to get item from DynamoDB: %w", err)
	}
	if len(resp.Item) == 0 {
		return catalog.Entry{}, catalog.ErrNotFound
	}
	return decodeItem(resp.Item)
}

// Put implements catalog.Catalog with a conditional write.
func (c *Catalog) Put(ctx context.Context, e catalog.Entry) error {
	_, err := c.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(c.tableName),
		Item:                encodeItem(e),
		ConditionExpression: aws.String("attribute_not_exists(#name) OR #version < :version"),
		ExpressionAttributeNames: map[string]string{
			"#name":    attrName,
			"#version": attrVersion,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":version": numAttr(e.Version),
		},
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return catalog.ErrConcurrentModification
		}
		return fmt.Errorf("failed to put item to DynamoDB: %w", err)
	}
	return nil
}

// Delete implements catalog.Catalog.
func (c *Catalog) Delete(ctx context.Context, name string) error {
	_, err := c.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(c.tableName),
		Key:       c.key(name),
	})
	if err != nil {
		return fmt.Errorf("failed to delete item from DynamoDB: %w", err)
	}
	return nil
}

type number interface {
	~int | ~int64 | ~uint32 | ~uint64
}

func numAttr[T number](v T) *types.AttributeValueMemberN {
	return &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", v)}
}

func encodeItem(e catalog.Entry) map[string]types.AttributeValue {
	item := map[string]types.AttributeValue{
		attrName:         &types.AttributeValueMemberS{Value: e.Name},
		attrKind:         &types.AttributeValueMemberS{Value: e.Kind},
		attrWidth:        numAttr(e.Width),
		attrCount:        numAttr(e.Count),
		attrEncodedBytes: numAttr(e.EncodedBytes),
		attrStoredBytes:  numAttr(e.StoredBytes),
		attrCompression:  &types.AttributeValueMemberS{Value: e.Compression},
		attrChecksum:     numAttr(e.Checksum),
		attrVersion:      numAttr(e.Version),
		attrCreatedAt:    &types.AttributeValueMemberS{Value: e.CreatedAt.UTC().Format(time.RFC3339Nano)},
	}
	if e.Blob != "" {
		item[attrBlob] = &types.AttributeValueMemberS{Value: e.Blob}
	}
	return item
}

// itemReader decodes attributes and keeps the first error.
type itemReader struct {
	item map[string]types.AttributeValue
	err  error
}

func (r *itemReader) str(name string) string {
	if r.err != nil {
		return ""
	}
	v, ok := r.item[name].(*types.AttributeValueMemberS)
	if !ok {
		r.err = fmt.Errorf("invalid %s attribute in DynamoDB", name)
		return ""
	}
	return v.Value
}

// optStr returns "" for a missing attribute.
func (r *itemReader) optStr(name string) string {
	if _, ok := r.item[name]; !ok {
		return ""
	}
	return r.str(name)
}

func (r *itemReader) num(name string, bitSize int) int64 {
	if r.err != nil {
		return 0
	}
	v, ok := r.item[name].(*types.AttributeValueMemberN)
	if !ok {
		r.err = fmt.Errorf("invalid %s attribute in DynamoDB", name)
		return 0
	}
	n, err := strconv.ParseInt(v.Value, 10, bitSize)
	if err != nil {
		r.err = fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return n
}

func (r *itemReader) unum(name string, bitSize int) uint64 {
	if r.err != nil {
		return 0
	}
	v, ok := r.item[name].(*types.AttributeValueMemberN)
	if !ok {
		r.err = fmt.Errorf("invalid %s attribute in DynamoDB", name)
		return 0
	}
	n, err := strconv.ParseUint(v.Value, 10, bitSize)
	if err != nil {
		r.err = fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return n
}

func decodeItem(item map[string]types.AttributeValue) (catalog.Entry, error) {
	r := &itemReader{item: item}
	e := catalog.Entry{
		Name:         r.str(attrName),
		Blob:         r.optStr(attrBlob),
		Kind:         r.str(attrKind),
		Width:        int(r.num(attrWidth, 0)),
		Count:        r.num(attrCount, 64),
		EncodedBytes: r.num(attrEncodedBytes, 64),
		StoredBytes:  r.num(attrStoredBytes, 64),
		Compression:  r.str(attrCompression),
		Checksum:     uint32(r.unum(attrChecksum, 32)),
		Version:      r.unum(attrVersion, 64),
	}
	created := r.str(attrCreatedAt)
	if r.err != nil {
		return catalog.Entry{}, r.err
	}
	t, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return catalog.Entry{}, fmt.Errorf("failed to parse %s: %w", attrCreatedAt, err)
	}
	e.CreatedAt = t
	return e, nil
}
