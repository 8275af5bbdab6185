package dynamo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-account-api/internal/config"
	"github.com/go-account-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mock ---

type mockAPI struct{ mock.Mock }

func (m *mockAPI) GetItem(ctx context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	args := m.Called(ctx, in)
	if out, _ := args.Get(0).(*dynamodb.GetItemOutput); out != nil {
		return out, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockAPI) PutItem(ctx context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	args := m.Called(ctx, in)
	return &dynamodb.PutItemOutput{}, args.Error(0)
}
func (m *mockAPI) TransactWriteItems(ctx context.Context, in *dynamodb.TransactWriteItemsInput, _ ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error) {
	args := m.Called(ctx, in)
	return &dynamodb.TransactWriteItemsOutput{}, args.Error(0)
}

func newRepo(api *mockAPI) *AccountRepo {
	return NewAccountRepo(api, config.DynamoTables{Accounts: "accounts", PendingAccounts: "pending_accounts"})
}

func canceled(codes ...string) error {
	reasons := make([]types.CancellationReason, len(codes))
	for i, c := range codes {
		reasons[i] = types.CancellationReason{Code: aws.String(c)}
	}
	return &types.TransactionCanceledException{Message: aws.String("cancelled"), CancellationReasons: reasons}
}

// --- GetAccount ---

func TestGetAccount_NotFound(t *testing.T) {
	api := &mockAPI{}
	api.On("GetItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.GetItemInput) bool {
		return *in.TableName == "accounts" && *in.ConsistentRead
	})).Return(&dynamodb.GetItemOutput{}, nil)

	_, err := newRepo(api).GetAccount(context.Background(), "a@b.com")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetAccount_UnmarshalsChallenge(t *testing.T) {
	exp := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	item, err := attributevalue.MarshalMap(domain.Account{
		AccountID: "01J",
		Email:     "a@b.com",
		Verified:  true,
		Challenge: &domain.Challenge{Code: "123456", Purpose: domain.PurposeLogin, ExpiresAt: exp},
	})
	require.NoError(t, err)

	api := &mockAPI{}
	api.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{Item: item}, nil)

	a, err := newRepo(api).GetAccount(context.Background(), "a@b.com")
	require.NoError(t, err)
	require.NotNil(t, a.Challenge)
	assert.Equal(t, "123456", a.Challenge.Code)
	assert.Equal(t, domain.PurposeLogin, a.Challenge.Purpose)
	assert.True(t, exp.Equal(a.Challenge.ExpiresAt))
}

func TestAccountItem_OmitsEmptyChallenge(t *testing.T) {
	item, err := attributevalue.MarshalMap(domain.Account{Email: "a@b.com"})
	require.NoError(t, err)
	_, ok := item["challenge"]
	assert.False(t, ok)
}

// --- SaveAccount ---

func TestSaveAccount_MissingAccount(t *testing.T) {
	api := &mockAPI{}
	api.On("PutItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.PutItemInput) bool {
		return *in.ConditionExpression == "attribute_exists(#e)"
	})).Return(&types.ConditionalCheckFailedException{Message: aws.String("nope")})

	err := newRepo(api).SaveAccount(context.Background(), &domain.Account{Email: "a@b.com"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// --- PutPending ---

func TestPutPending_ChecksAccountTable(t *testing.T) {
	api := &mockAPI{}
	api.On("TransactWriteItems", mock.Anything, mock.MatchedBy(func(in *dynamodb.TransactWriteItemsInput) bool {
		return len(in.TransactItems) == 2 &&
			*in.TransactItems[0].ConditionCheck.TableName == "accounts" &&
			*in.TransactItems[1].Put.TableName == "pending_accounts"
	})).Return(nil)

	err := newRepo(api).PutPending(context.Background(), &domain.PendingAccount{Email: "a@b.com", OTPCode: "123456"})
	require.NoError(t, err)
	api.AssertExpectations(t)
}

func TestPutPending_AccountExists(t *testing.T) {
	api := &mockAPI{}
	api.On("TransactWriteItems", mock.Anything, mock.Anything).Return(canceled(reasonConditionalCheckFailed, "None"))

	err := newRepo(api).PutPending(context.Background(), &domain.PendingAccount{Email: "a@b.com"})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

// --- Promote ---

func TestPromote_ConditionsOnPendingCode(t *testing.T) {
	api := &mockAPI{}
	api.On("TransactWriteItems", mock.Anything, mock.MatchedBy(func(in *dynamodb.TransactWriteItemsInput) bool {
		del := in.TransactItems[1].Delete
		code, _ := del.ExpressionAttributeValues[":c"].(*types.AttributeValueMemberS)
		return *in.TransactItems[0].Put.TableName == "accounts" &&
			*del.TableName == "pending_accounts" &&
			code != nil && code.Value == "123456"
	})).Return(nil)

	err := newRepo(api).Promote(context.Background(), &domain.Account{Email: "a@b.com"}, "123456")
	require.NoError(t, err)
	api.AssertExpectations(t)
}

func TestPromote_ErrorMapping(t *testing.T) {
	changed := canceled("None", reasonConditionalCheckFailed).(*types.TransactionCanceledException)
	changed.CancellationReasons[1].Item = map[string]types.AttributeValue{
		"email": &types.AttributeValueMemberS{Value: "a@b.com"},
	}

	cases := []struct {
		name string
		err  error
		want error
	}{
		{"account exists", canceled(reasonConditionalCheckFailed, "None"), domain.ErrConflict},
		{"pending gone", canceled("None", reasonConditionalCheckFailed), domain.ErrNotFound},
		{"pending code changed", changed, domain.ErrInvalidOTP},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			api := &mockAPI{}
			api.On("TransactWriteItems", mock.Anything, mock.Anything).Return(tc.err)

			err := newRepo(api).Promote(context.Background(), &domain.Account{Email: "a@b.com"}, "123456")
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestPromote_PassesThroughOtherErrors(t *testing.T) {
	boom := errors.New("throttled")
	api := &mockAPI{}
	api.On("TransactWriteItems", mock.Anything, mock.Anything).Return(boom)

	err := newRepo(api).Promote(context.Background(), &domain.Account{Email: "a@b.com"}, "123456")
	assert.ErrorIs(t, err, boom)
}
