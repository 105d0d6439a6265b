package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/key-verify-api/internal/domain"
)

// keyAttr is the partition key of the documents table. It holds the full
// document path, e.g. "tokens/K1".
const keyAttr = "path"

// DocumentRepo stores one document tree node per item.
// PK: path
type DocumentRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewDocumentRepo(client *dynamodb.Client, tableName string) *DocumentRepo {
	return &DocumentRepo{client: client, tableName: tableName}
}

// Get returns the document at path, or nil when no item exists.
func (r *DocumentRepo) Get(ctx context.Context, path string) (domain.Document, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            strKey(keyAttr, path),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("dynamo get %s: %w: %w", path, domain.ErrStoreUnavailable, err)
	}
	if out.Item == nil {
		return nil, nil
	}
	doc, err := fromItem(out.Item)
	if err != nil {
		return nil, fmt.Errorf("dynamo get %s: %v: %w", path, err, domain.ErrMalformedDocument)
	}
	return doc, nil
}

// Patch sets the supplied attributes, creating the item if needed.
// Attributes not named in doc are preserved.
func (r *DocumentRepo) Patch(ctx context.Context, path string, doc domain.Document) error {
	ue, err := buildUpdateExpr(patchFields(doc))
	if err != nil {
		return fmt.Errorf("dynamo patch %s: %w", path, err)
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey(keyAttr, path),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	if err != nil {
		return fmt.Errorf("dynamo patch %s: %w: %w", path, domain.ErrStoreUnavailable, err)
	}
	return nil
}

// patchFields drops the key attribute; DynamoDB rejects SET on key attributes.
func patchFields(doc map[string]any) map[string]interface{} {
	updates := make(map[string]interface{}, len(doc))
	for k, v := range doc {
		if k == keyAttr {
			continue
		}
		updates[k] = v
	}
	return updates
}

func fromItem(item map[string]types.AttributeValue) (domain.Document, error) {
	var doc map[string]any
	if err := attributevalue.UnmarshalMap(item, &doc); err != nil {
		return nil, err
	}
	delete(doc, keyAttr)
	return domain.Document(doc), nil
}
