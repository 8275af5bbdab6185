package dynamo

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-account-api/internal/config"
	"github.com/go-account-api/internal/domain"
)

// AccountRepo stores verified accounts and pending registrations in two tables,
// both keyed by email. Cross-table steps run as DynamoDB transactions.
type AccountRepo struct {
	client       API
	accountTable string
	pendingTable string
}

func NewAccountRepo(client API, tables config.DynamoTables) *AccountRepo {
	return &AccountRepo{client: client, accountTable: tables.Accounts, pendingTable: tables.PendingAccounts}
}

func (r *AccountRepo) GetAccount(ctx context.Context, email string) (*domain.Account, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.accountTable),
		Key:            strKey(fieldEmail, email),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("account not found: %w", domain.ErrNotFound)
	}
	var a domain.Account
	if err := attributevalue.UnmarshalMap(out.Item, &a); err != nil {
		return nil, fmt.Errorf("unmarshal account: %w", err)
	}
	return &a, nil
}

// SaveAccount overwrites an existing account. It never creates one.
func (r *AccountRepo) SaveAccount(ctx context.Context, a *domain.Account) error {
	item, err := attributevalue.MarshalMap(a)
	if err != nil {
		return fmt.Errorf("marshal account: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(r.accountTable),
		Item:                     item,
		ConditionExpression:      aws.String("attribute_exists(#e)"),
		ExpressionAttributeNames: map[string]string{"#e": fieldEmail},
	})
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return fmt.Errorf("account not found: %w", domain.ErrNotFound)
	}
	return err
}

func (r *AccountRepo) GetPending(ctx context.Context, email string) (*domain.PendingAccount, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.pendingTable),
		Key:            strKey(fieldEmail, email),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("pending registration not found: %w", domain.ErrNotFound)
	}
	var p domain.PendingAccount
	if err := attributevalue.UnmarshalMap(out.Item, &p); err != nil {
		return nil, fmt.Errorf("unmarshal pending registration: %w", err)
	}
	return &p, nil
}

// PutPending upserts a pending registration, failing with ErrConflict when an
// account already exists for the email.
func (r *AccountRepo) PutPending(ctx context.Context, p *domain.PendingAccount) error {
	item, err := attributevalue.MarshalMap(p)
	if err != nil {
		return fmt.Errorf("marshal pending registration: %w", err)
	}
	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{ConditionCheck: &types.ConditionCheck{
				TableName:                aws.String(r.accountTable),
				Key:                      strKey(fieldEmail, p.Email),
				ConditionExpression:      aws.String("attribute_not_exists(#e)"),
				ExpressionAttributeNames: map[string]string{"#e": fieldEmail},
			}},
			{Put: &types.Put{
				TableName: aws.String(r.pendingTable),
				Item:      item,
			}},
		},
	})
	if conditionFailed(cancellationReasons(err), 0) {
		return fmt.Errorf("email already registered: %w", domain.ErrConflict)
	}
	return err
}

// Promote creates a and deletes its pending registration in one transaction.
// The delete is conditioned on the pending OTP still being code, so a
// concurrent re-registration on another instance cannot be promoted by a stale code.
func (r *AccountRepo) Promote(ctx context.Context, a *domain.Account, code string) error {
	item, err := attributevalue.MarshalMap(a)
	if err != nil {
		return fmt.Errorf("marshal account: %w", err)
	}
	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Put: &types.Put{
				TableName:                aws.String(r.accountTable),
				Item:                     item,
				ConditionExpression:      aws.String("attribute_not_exists(#e)"),
				ExpressionAttributeNames: map[string]string{"#e": fieldEmail},
			}},
			{Delete: &types.Delete{
				TableName:                           aws.String(r.pendingTable),
				Key:                                 strKey(fieldEmail, a.Email),
				ConditionExpression:                 aws.String("#c = :c"),
				ExpressionAttributeNames:            map[string]string{"#c": fieldOTPCode},
				ExpressionAttributeValues:           map[string]types.AttributeValue{":c": &types.AttributeValueMemberS{Value: code}},
				ReturnValuesOnConditionCheckFailure: types.ReturnValuesOnConditionCheckFailureAllOld,
			}},
		},
	})
	if err == nil {
		return nil
	}
	reasons := cancellationReasons(err)
	switch {
	case conditionFailed(reasons, 0):
		return fmt.Errorf("email already registered: %w", domain.ErrConflict)
	case conditionFailed(reasons, 1) && reasons[1].Item == nil:
		return fmt.Errorf("pending registration not found: %w", domain.ErrNotFound)
	case conditionFailed(reasons, 1):
		return fmt.Errorf("pending registration changed: %w", domain.ErrInvalidOTP)
	}
	return err
}
