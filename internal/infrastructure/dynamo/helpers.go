package dynamo

import (
	"errors"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// strKey builds a DynamoDB primary key map with a single string attribute.
func strKey(name, value string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		name: &types.AttributeValueMemberS{Value: value},
	}
}

// cancellationReasons returns the per-item reasons of a cancelled transaction, or nil
// when err is not a TransactionCanceledException.
func cancellationReasons(err error) []types.CancellationReason {
	var tce *types.TransactionCanceledException
	if !errors.As(err, &tce) {
		return nil
	}
	return tce.CancellationReasons
}

// conditionFailed reports whether the transaction item at idx failed its condition.
func conditionFailed(reasons []types.CancellationReason, idx int) bool {
	if idx >= len(reasons) || reasons[idx].Code == nil {
		return false
	}
	return *reasons[idx].Code == reasonConditionalCheckFailed
}
