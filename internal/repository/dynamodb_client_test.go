package repository

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/require"

	"corporate-agent/internal/domain"
)

type fakeDynamo struct {
	putErr       error
	putCalls     int
	lastPutInput *dynamodb.PutItemInput
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.putCalls++
	f.lastPutInput = in
	return &dynamodb.PutItemOutput{}, f.putErr
}

func mustNewDynamo(t *testing.T, db *fakeDynamo) *DynamoStore {
	t.Helper()
	s, err := NewDynamoStore(db, "conversations")
	require.NoError(t, err)
	return s
}

func sAttr(t *testing.T, item map[string]types.AttributeValue, key string) string {
	t.Helper()
	v, ok := item[key].(*types.AttributeValueMemberS)
	require.True(t, ok, "attribute %q is not a string", key)
	return v.Value
}

func TestNewDynamoStore_Validation(t *testing.T) {
	_, err := NewDynamoStore(nil, "t")
	require.ErrorContains(t, err, "api must not be nil")

	_, err = NewDynamoStore(&fakeDynamo{}, " ")
	require.ErrorContains(t, err, "table name")
}

func TestDynamoAppendConversation_WritesItem(t *testing.T) {
	orig := newID
	newID = func() string { return "fixed-id" }
	t.Cleanup(func() { newID = orig })

	db := &fakeDynamo{}
	s := mustNewDynamo(t, db)

	rec := domain.ConversationRecord{ChatID: "42", Message: "hi", Response: "hello", Timestamp: 1700000000123}
	require.NoError(t, s.AppendConversation(context.Background(), rec))
	require.Equal(t, 1, db.putCalls)

	in := db.lastPutInput
	require.Equal(t, "conversations", *in.TableName)
	require.Contains(t, *in.ConditionExpression, "attribute_not_exists")
	require.Equal(t, "CHAT#42", sAttr(t, in.Item, "PK"))
	sk := sAttr(t, in.Item, "SK")
	require.True(t, strings.HasPrefix(sk, "MSG#2023-11-14T22:13:20.123Z"), sk)
	require.True(t, strings.HasSuffix(sk, "#fixed-id"), sk)
	require.Equal(t, "42", sAttr(t, in.Item, "chat_id"))
	require.Equal(t, "hi", sAttr(t, in.Item, "message"))
	require.Equal(t, "hello", sAttr(t, in.Item, "response"))

	ts, ok := in.Item["timestamp"].(*types.AttributeValueMemberN)
	require.True(t, ok)
	require.Equal(t, "1700000000123", ts.Value)
}

func TestDynamoAppendConversation_PutError(t *testing.T) {
	db := &fakeDynamo{putErr: errors.New("ProvisionedThroughputExceededException")}
	s := mustNewDynamo(t, db)
	err := s.AppendConversation(context.Background(), domain.ConversationRecord{ChatID: "1"})
	require.ErrorContains(t, err, "AppendConversation")
	require.ErrorContains(t, err, "ProvisionedThroughputExceeded")
}

func TestDynamoAppendConversation_RequiresChatID(t *testing.T) {
	db := &fakeDynamo{}
	s := mustNewDynamo(t, db)
	err := s.AppendConversation(context.Background(), domain.ConversationRecord{})
	require.ErrorContains(t, err, "chat id")
	require.Zero(t, db.putCalls)
}
