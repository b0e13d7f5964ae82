package scanner

import (
	"context"
	"fmt"

	"github.com/K0NGR3SS/dailycheck/internal/models"
	"github.com/K0NGR3SS/dailycheck/internal/notifications"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/rs/zerolog"
)

type KeyCheckMode string

const (
	// KeyCheckGrouped reports each key name registered more than once.
	KeyCheckGrouped KeyCheckMode = "grouped"
	// KeyCheckLegacy reports every key pair, matching the first version of
	// the daily check whose comparison list was never filled in.
	KeyCheckLegacy KeyCheckMode = "legacy"
)

func ParseKeyCheckMode(s string) (KeyCheckMode, error) {
	switch KeyCheckMode(s) {
	case "", KeyCheckGrouped:
		return KeyCheckGrouped, nil
	case KeyCheckLegacy:
		return KeyCheckLegacy, nil
	}
	return "", fmt.Errorf("invalid key_check_mode: %s", s)
}

type KeyScanner struct {
	EC2      EC2API
	Notifier notifications.Notifier
	Cards    notifications.Cards
	Mode     KeyCheckMode
	Log      zerolog.Logger
}

func NewKeyScanner(api EC2API, n notifications.Notifier, cards notifications.Cards, mode KeyCheckMode, logger zerolog.Logger) *KeyScanner {
	return &KeyScanner{
		EC2:      api,
		Notifier: n,
		Cards:    cards,
		Mode:     mode,
		Log:      logger.With().Str("task", "keypairs").Logger(),
	}
}

func (s *KeyScanner) ListKeyPairs(ctx context.Context) ([]models.KeyPairRecord, error) {
	out, err := s.EC2.DescribeKeyPairs(ctx, &ec2.DescribeKeyPairsInput{})
	if err != nil {
		return nil, classify("describe key pairs", err)
	}

	records := make([]models.KeyPairRecord, 0, len(out.KeyPairs))
	for _, kp := range out.KeyPairs {
		records = append(records, models.KeyPairRecord{
			Name:        aws.ToString(kp.KeyName),
			ID:          aws.ToString(kp.KeyPairId),
			Fingerprint: aws.ToString(kp.KeyFingerprint),
			Created:     kp.CreateTime,
		})
	}
	return records, nil
}

// ScanKeyPairs notifies for every flagged key name, each time with the total
// number of key pairs in the account, and returns how many were reported.
func (s *KeyScanner) ScanKeyPairs(ctx context.Context) (int, error) {
	keys, err := s.ListKeyPairs(ctx)
	if err != nil {
		return 0, err
	}

	var flagged []string
	if s.Mode == KeyCheckLegacy {
		flagged = allKeyNames(keys)
	} else {
		flagged = DuplicateKeyNames(keys)
	}

	s.Log.Debug().Int("key_pairs", len(keys)).Int("flagged", len(flagged)).Str("mode", string(s.Mode)).Msg("key pair inventory listed")

	for _, name := range flagged {
		log := s.Log.With().Str("key_name", name).Logger()
		log.Info().Int("total_keys", len(keys)).Msg("key pair flagged")
		notify(ctx, s.Notifier, log, s.Cards.KeyPair(name, len(keys)))
	}

	return len(flagged), nil
}

// DuplicateKeyNames returns each name that appears more than once, in the
// order it was first seen.
func DuplicateKeyNames(keys []models.KeyPairRecord) []string {
	counts := make(map[string]int, len(keys))
	var order []string
	for _, k := range keys {
		if counts[k.Name] == 0 {
			order = append(order, k.Name)
		}
		counts[k.Name]++
	}

	var dups []string
	for _, name := range order {
		if counts[name] > 1 {
			dups = append(dups, name)
		}
	}
	return dups
}

func allKeyNames(keys []models.KeyPairRecord) []string {
	names := make([]string, 0, len(keys))
	for _, k := range keys {
		names = append(names, k.Name)
	}
	return names
}
