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
	"github.com/google/uuid"

	"corporate-agent/internal/domain"
)

const (
	pkPrefixChat = "CHAT#"
	skPrefixMsg  = "MSG#"
)

// dynamodbAPI is the minimal DynamoDB interface required by DynamoStore.
type dynamodbAPI interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// DynamoStore appends conversation records to a DynamoDB table keyed by chat.
type DynamoStore struct {
	api       dynamodbAPI
	tableName string
}

// NewDynamoStore creates a DynamoStore writing to tableName.
func NewDynamoStore(api dynamodbAPI, tableName string) (*DynamoStore, error) {
	if api == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("repository: table name must not be empty")
	}
	return &DynamoStore{api: api, tableName: tableName}, nil
}

func chatPK(chatID string) string {
	return pkPrefixChat + chatID
}

// msgSK orders records by time; the uuid suffix keeps same-millisecond
// records from colliding.
func msgSK(ts time.Time) string {
	return skPrefixMsg + ts.UTC().Format(time.RFC3339Nano) + "#" + newID()
}

// AppendConversation writes rec as a new item. It never overwrites.
func (s *DynamoStore) AppendConversation(ctx context.Context, rec domain.ConversationRecord) error {
	if rec.ChatID == "" {
		return errors.New("repository: AppendConversation: chat id is required")
	}
	_, err := s.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.tableName),
		Item:                conversationItem(rec),
		ConditionExpression: aws.String("attribute_not_exists(PK) AND attribute_not_exists(SK)"),
	})
	if err != nil {
		return fmt.Errorf("repository: AppendConversation: %w", err)
	}
	return nil
}

func conversationItem(rec domain.ConversationRecord) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK":        &types.AttributeValueMemberS{Value: chatPK(rec.ChatID)},
		"SK":        &types.AttributeValueMemberS{Value: msgSK(time.UnixMilli(rec.Timestamp))},
		"chat_id":   &types.AttributeValueMemberS{Value: rec.ChatID},
		"message":   &types.AttributeValueMemberS{Value: rec.Message},
		"response":  &types.AttributeValueMemberS{Value: rec.Response},
		"timestamp": &types.AttributeValueMemberN{Value: strconv.FormatInt(rec.Timestamp, 10)},
	}
}

var newID = func() string {
	return uuid.NewString()
}
