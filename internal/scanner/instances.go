package scanner

import (
	"context"

	"github.com/K0NGR3SS/dailycheck/internal/models"
	"github.com/K0NGR3SS/dailycheck/internal/notifications"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/rs/zerolog"
)

type InstanceScanner struct {
	EC2      EC2API
	Notifier notifications.Notifier
	Cards    notifications.Cards
	Log      zerolog.Logger
}

func NewInstanceScanner(api EC2API, n notifications.Notifier, cards notifications.Cards, logger zerolog.Logger) *InstanceScanner {
	return &InstanceScanner{
		EC2:      api,
		Notifier: n,
		Cards:    cards,
		Log:      logger.With().Str("task", "instances").Logger(),
	}
}

// ListInstances returns every instance in the region, whatever its state.
func (s *InstanceScanner) ListInstances(ctx context.Context) ([]models.InstanceRecord, error) {
	var records []models.InstanceRecord

	paginator := ec2.NewDescribeInstancesPaginator(s.EC2, &ec2.DescribeInstancesInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, classify("describe instances", err)
		}

		for _, reservation := range page.Reservations {
			for _, instance := range reservation.Instances {
				records = append(records, toInstanceRecord(instance))
			}
		}
	}

	return records, nil
}

// ScanInstances notifies once per instance that is not running and returns
// how many were reported.
func (s *InstanceScanner) ScanInstances(ctx context.Context) (int, error) {
	records, err := s.ListInstances(ctx)
	if err != nil {
		return 0, err
	}

	s.Log.Debug().Int("instances", len(records)).Msg("instance inventory listed")

	reported := 0
	for _, r := range records {
		if r.Running() {
			continue
		}
		log := s.Log.With().Str("instance_id", r.ID).Str("state", r.State).Logger()
		log.Info().Msg("instance is not running")
		notify(ctx, s.Notifier, log, s.Cards.InstanceStatus(r.ID, r.State))
		reported++
	}

	return reported, nil
}

func toInstanceRecord(instance types.Instance) models.InstanceRecord {
	state := models.StateUnknown
	if instance.State != nil && instance.State.Name != "" {
		state = string(instance.State.Name)
	}
	return models.InstanceRecord{
		ID:    aws.ToString(instance.InstanceId),
		State: state,
	}
}
