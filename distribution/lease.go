package distribution

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// ErrLeaseHeld is returned by Distributor.Refresh when Acquire reports
// that another owner already holds an unexpired lease.
var ErrLeaseHeld = errors.New("distribution: lease held by another owner")

// DDBClient is the subset of the DynamoDB client the Lease needs,
// narrowed so a caller can substitute a fake in tests.
type DDBClient interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// Lease is a DynamoDB-backed mutual-exclusion lock keyed by name, used
// to keep every process in a fleet sharing one distribution bucket from
// downloading the same update concurrently. It also doubles as the
// record of which version is currently published, since the winner
// writes that version alongside its ownership row.
type Lease struct {
	client    DDBClient
	table     string
	name      string
	owner     string
	heldUntil time.Time
}

// NewLease builds a Lease over the row identified by name in table.
// owner should be stable and unique per process (e.g. hostname+pid).
func NewLease(client DDBClient, table, name, owner string) *Lease {
	return &Lease{client: client, table: table, name: name, owner: owner}
}

// Acquire attempts to take the lease for ttl. It succeeds if the row
// doesn't exist, or exists but its recorded expiry has already passed;
// otherwise it returns false with a nil error. A conditional PutItem carries out
// the compare-and-swap since DynamoDB alone has no notion of TTL-aware
// locking.
func (l *Lease) Acquire(ctx context.Context, ttl time.Duration) (bool, error) {
	now := time.Now()
	expiry := now.Add(ttl)

	_, err := l.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(l.table),
		Item: map[string]types.AttributeValue{
			"name":       &types.AttributeValueMemberS{Value: l.name},
			"owner":      &types.AttributeValueMemberS{Value: l.owner},
			"expires_at": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", expiry.Unix())},
		},
		ConditionExpression: aws.String("attribute_not_exists(#n) OR expires_at < :now"),
		ExpressionAttributeNames: map[string]string{
			"#n": "name",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":now": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", now.Unix())},
		},
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return false, nil
		}
		return false, fmt.Errorf("distribution: acquire lease %s: %w", l.name, err)
	}

	l.heldUntil = expiry
	return true, nil
}

// Release drops the lease early. It is a conditional delete guarded on
// ownership so a lease that already expired and was re-acquired by
// another owner is left untouched.
func (l *Lease) Release(ctx context.Context) error {
	_, err := l.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(l.table),
		Key: map[string]types.AttributeValue{
			"name": &types.AttributeValueMemberS{Value: l.name},
		},
		ConditionExpression: aws.String("#o = :owner"),
		ExpressionAttributeNames: map[string]string{
			"#o": "owner",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":owner": &types.AttributeValueMemberS{Value: l.owner},
		},
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return nil
		}
		return fmt.Errorf("distribution: release lease %s: %w", l.name, err)
	}
	return nil
}

// PublishedVersion returns the version token recorded by whichever
// owner last completed a refresh, or "" if none has ever run.
func (l *Lease) PublishedVersion(ctx context.Context) (string, error) {
	out, err := l.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(l.table),
		Key: map[string]types.AttributeValue{
			"name": &types.AttributeValueMemberS{Value: l.name},
		},
	})
	if err != nil {
		return "", fmt.Errorf("distribution: get lease %s: %w", l.name, err)
	}
	if out.Item == nil {
		return "", nil
	}
	v, ok := out.Item["version"].(*types.AttributeValueMemberS)
	if !ok {
		return "", nil
	}
	return v.Value, nil
}

// RecordVersion stamps the version this owner just published onto the
// lease row, best-effort; it does not re-check ownership since it is
// only ever called while the lease is known to be held.
func (l *Lease) RecordVersion(ctx context.Context, version string) error {
	_, err := l.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(l.table),
		Item: map[string]types.AttributeValue{
			"name":       &types.AttributeValueMemberS{Value: l.name},
			"owner":      &types.AttributeValueMemberS{Value: l.owner},
			"version":    &types.AttributeValueMemberS{Value: version},
			"expires_at": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", l.heldUntil.Unix())},
		},
	})
	if err != nil {
		return fmt.Errorf("distribution: record version for lease %s: %w", l.name, err)
	}
	return nil
}
