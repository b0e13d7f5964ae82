package scanner

import (
	"context"
	"errors"
	"testing"

	"github.com/K0NGR3SS/dailycheck/internal/notifications"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/smithy-go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func instance(id string, state types.InstanceStateName) types.Instance {
	return types.Instance{
		InstanceId: aws.String(id),
		State:      &types.InstanceState{Name: state},
	}
}

func instancesOutput(instances ...types.Instance) *ec2.DescribeInstancesOutput {
	return &ec2.DescribeInstancesOutput{
		Reservations: []types.Reservation{{Instances: instances}},
	}
}

func TestScanInstances_NotifiesNonRunning(t *testing.T) {
	mock := &mockEC2Client{
		DescribeInstancesFunc: func(_ context.Context, _ *ec2.DescribeInstancesInput, _ ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error) {
			return instancesOutput(
				instance("i-1", types.InstanceStateNameRunning),
				instance("i-2", types.InstanceStateNameStopped),
				instance("i-3", types.InstanceStateNameRunning),
				instance("i-4", types.InstanceStateNamePending),
			), nil
		},
	}
	rec := &recordingNotifier{}

	s := NewInstanceScanner(mock, rec, notifications.Cards{}, zerolog.Nop())
	reported, err := s.ScanInstances(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, reported)
	assert.Equal(t, [][]notifications.Fact{
		{{Name: "instance-id", Value: "i-2"}, {Name: "Status", Value: "stopped"}},
		{{Name: "instance-id", Value: "i-4"}, {Name: "Status", Value: "pending"}},
	}, rec.facts())
}

func TestScanInstances_Empty(t *testing.T) {
	rec := &recordingNotifier{}
	s := NewInstanceScanner(&mockEC2Client{}, rec, notifications.Cards{}, zerolog.Nop())

	reported, err := s.ScanInstances(context.Background())

	require.NoError(t, err)
	assert.Zero(t, reported)
	assert.Empty(t, rec.cards)
}

func TestScanInstances_MissingStateIsReported(t *testing.T) {
	mock := &mockEC2Client{
		DescribeInstancesFunc: func(_ context.Context, _ *ec2.DescribeInstancesInput, _ ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error) {
			return instancesOutput(types.Instance{InstanceId: aws.String("i-odd")}), nil
		},
	}
	rec := &recordingNotifier{}

	reported, err := NewInstanceScanner(mock, rec, notifications.Cards{}, zerolog.Nop()).ScanInstances(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, reported)
	assert.Equal(t, "unknown", rec.facts()[0][1].Value)
}

func TestScanInstances_Pagination(t *testing.T) {
	callCount := 0
	mock := &mockEC2Client{
		DescribeInstancesFunc: func(_ context.Context, params *ec2.DescribeInstancesInput, _ ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error) {
			callCount++
			if callCount == 1 {
				out := instancesOutput(instance("i-1", types.InstanceStateNameStopped))
				out.NextToken = aws.String("token")
				return out, nil
			}
			assert.Equal(t, "token", aws.ToString(params.NextToken))
			return instancesOutput(instance("i-2", types.InstanceStateNameTerminated)), nil
		},
	}
	rec := &recordingNotifier{}

	reported, err := NewInstanceScanner(mock, rec, notifications.Cards{}, zerolog.Nop()).ScanInstances(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, callCount)
	assert.Equal(t, 2, reported)
}

func TestScanInstances_InventoryError(t *testing.T) {
	mock := &mockEC2Client{
		DescribeInstancesFunc: func(_ context.Context, _ *ec2.DescribeInstancesInput, _ ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error) {
			return nil, &smithy.GenericAPIError{Code: "UnauthorizedOperation", Message: "not allowed"}
		},
	}
	rec := &recordingNotifier{}

	_, err := NewInstanceScanner(mock, rec, notifications.Cards{}, zerolog.Nop()).ScanInstances(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAuth)
	assert.Empty(t, rec.cards)
}

func TestScanInstances_DeliveryFailureDoesNotFailScan(t *testing.T) {
	mock := &mockEC2Client{
		DescribeInstancesFunc: func(_ context.Context, _ *ec2.DescribeInstancesInput, _ ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error) {
			return instancesOutput(
				instance("i-1", types.InstanceStateNameStopped),
				instance("i-2", types.InstanceStateNameStopping),
			), nil
		},
	}
	rec := &recordingNotifier{err: errors.New("webhook down")}

	reported, err := NewInstanceScanner(mock, rec, notifications.Cards{}, zerolog.Nop()).ScanInstances(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, reported)
	assert.Len(t, rec.cards, 2)
}

func TestScanInstances_Idempotent(t *testing.T) {
	mock := &mockEC2Client{
		DescribeInstancesFunc: func(_ context.Context, _ *ec2.DescribeInstancesInput, _ ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error) {
			return instancesOutput(
				instance("i-1", types.InstanceStateNameStopped),
				instance("i-2", types.InstanceStateNameRunning),
			), nil
		},
	}

	first, second := &recordingNotifier{}, &recordingNotifier{}
	s := NewInstanceScanner(mock, first, notifications.Cards{}, zerolog.Nop())
	_, err := s.ScanInstances(context.Background())
	require.NoError(t, err)

	s.Notifier = second
	_, err = s.ScanInstances(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first.cards, second.cards)
}
