package distribution

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDDBClient is an in-memory single-table DynamoDB stand-in, enough
// to exercise Lease's conditional put/delete without a real table.
type fakeDDBClient struct {
	mu    sync.Mutex
	items map[string]map[string]types.AttributeValue
}

func newFakeDDBClient() *fakeDDBClient {
	return &fakeDDBClient{items: make(map[string]map[string]types.AttributeValue)}
}

func (f *fakeDDBClient) PutItem(ctx context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	name := in.Item["name"].(*types.AttributeValueMemberS).Value
	existing, exists := f.items[name]

	if in.ConditionExpression != nil {
		switch *in.ConditionExpression {
		case "attribute_not_exists(#n) OR expires_at < :now":
			if exists {
				expires := existing["expires_at"].(*types.AttributeValueMemberN).Value
				now := in.ExpressionAttributeValues[":now"].(*types.AttributeValueMemberN).Value
				if expires >= now {
					return nil, &types.ConditionalCheckFailedException{}
				}
			}
		}
	}

	f.items[name] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDDBClient) GetItem(ctx context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	name := in.Key["name"].(*types.AttributeValueMemberS).Value
	return &dynamodb.GetItemOutput{Item: f.items[name]}, nil
}

func (f *fakeDDBClient) DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	name := in.Key["name"].(*types.AttributeValueMemberS).Value
	existing, exists := f.items[name]
	if in.ConditionExpression != nil && exists {
		owner := existing["owner"].(*types.AttributeValueMemberS).Value
		wantOwner := in.ExpressionAttributeValues[":owner"].(*types.AttributeValueMemberS).Value
		if owner != wantOwner {
			return nil, &types.ConditionalCheckFailedException{}
		}
	}
	delete(f.items, name)
	return &dynamodb.DeleteItemOutput{}, nil
}

func TestLease_AcquireExcludesOtherOwner(t *testing.T) {
	ctx := context.Background()
	client := newFakeDDBClient()

	a := NewLease(client, "leases", "pattern-dataset", "host-a")
	b := NewLease(client, "leases", "pattern-dataset", "host-b")

	ok, err := a.Acquire(ctx, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = b.Acquire(ctx, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLease_AcquireAfterExpiry(t *testing.T) {
	ctx := context.Background()
	client := newFakeDDBClient()

	a := NewLease(client, "leases", "pattern-dataset", "host-a")
	ok, err := a.Acquire(ctx, -time.Second) // already expired
	require.NoError(t, err)
	assert.True(t, ok)

	b := NewLease(client, "leases", "pattern-dataset", "host-b")
	ok, err = b.Acquire(ctx, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLease_ReleaseThenReacquire(t *testing.T) {
	ctx := context.Background()
	client := newFakeDDBClient()

	a := NewLease(client, "leases", "pattern-dataset", "host-a")
	ok, err := a.Acquire(ctx, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, a.Release(ctx))

	b := NewLease(client, "leases", "pattern-dataset", "host-b")
	ok, err = b.Acquire(ctx, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLease_RecordAndReadVersion(t *testing.T) {
	ctx := context.Background()
	client := newFakeDDBClient()

	a := NewLease(client, "leases", "pattern-dataset", "host-a")
	ok, err := a.Acquire(ctx, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, a.RecordVersion(ctx, "etag-123"))

	v, err := a.PublishedVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, "etag-123", v)
}
