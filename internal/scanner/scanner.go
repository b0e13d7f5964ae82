package scanner

import (
	"context"
	"errors"
	"fmt"

	"github.com/K0NGR3SS/dailycheck/internal/notifications"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/smithy-go"
	"github.com/rs/zerolog"
)

// EC2API is the read-only slice of the EC2 client the scanners call.
type EC2API interface {
	DescribeInstances(ctx context.Context, params *ec2.DescribeInstancesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error)
	DescribeKeyPairs(ctx context.Context, params *ec2.DescribeKeyPairsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeKeyPairsOutput, error)
}

// IAMAPI is the read-only slice of the IAM client the admin audit calls.
type IAMAPI interface {
	GetAccountAuthorizationDetails(ctx context.Context, params *iam.GetAccountAuthorizationDetailsInput, optFns ...func(*iam.Options)) (*iam.GetAccountAuthorizationDetailsOutput, error)
	ListGroupPolicies(ctx context.Context, params *iam.ListGroupPoliciesInput, optFns ...func(*iam.Options)) (*iam.ListGroupPoliciesOutput, error)
	ListAttachedGroupPolicies(ctx context.Context, params *iam.ListAttachedGroupPoliciesInput, optFns ...func(*iam.Options)) (*iam.ListAttachedGroupPoliciesOutput, error)
}

var (
	ErrAuth      = errors.New("aws authentication failed")
	ErrThrottled = errors.New("aws request throttled")
)

// classify wraps an inventory error so callers can tell auth problems and
// throttling apart with errors.Is.
func classify(op string, err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "AuthFailure", "UnauthorizedOperation", "AccessDenied", "AccessDeniedException",
			"InvalidClientTokenId", "ExpiredToken", "RequestExpired", "UnrecognizedClientException":
			return fmt.Errorf("%s: %w: %w", op, ErrAuth, err)
		case "Throttling", "ThrottlingException", "RequestLimitExceeded", "TooManyRequestsException":
			return fmt.Errorf("%s: %w: %w", op, ErrThrottled, err)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// notify delivers one card. A failed delivery is logged and never fails the scan.
func notify(ctx context.Context, n notifications.Notifier, log zerolog.Logger, card notifications.MessageCard) {
	if err := n.Notify(ctx, card); err != nil {
		log.Warn().Err(err).Str("summary", card.Summary).Msg("notification delivery failed")
	}
}
