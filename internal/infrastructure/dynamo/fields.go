package dynamo

// DynamoDB attribute names used in keys and condition expressions.
// Using constants prevents silent runtime bugs caused by key typos.
const (
	fieldEmail   = "email"
	fieldOTPCode = "otp_code"

	reasonConditionalCheckFailed = "ConditionalCheckFailed"
)
