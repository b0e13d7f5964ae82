package scanner

import (
	"context"

	"github.com/K0NGR3SS/dailycheck/internal/models"
	"github.com/K0NGR3SS/dailycheck/internal/notifications"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/iam/types"
	"github.com/rs/zerolog"
)

const AdminPolicyName = "AdministratorAccess"

// AdminAuditor finds IAM users holding AdministratorAccess directly or
// through a group.
type AdminAuditor struct {
	IAM      IAMAPI
	Notifier notifications.Notifier
	Cards    notifications.Cards
	Log      zerolog.Logger
}

func NewAdminAuditor(api IAMAPI, n notifications.Notifier, cards notifications.Cards, logger zerolog.Logger) *AdminAuditor {
	return &AdminAuditor{
		IAM:      api,
		Notifier: n,
		Cards:    cards,
		Log:      logger.With().Str("task", "admins").Logger(),
	}
}

func (a *AdminAuditor) ListUsers(ctx context.Context) ([]models.AdminRecord, error) {
	var records []models.AdminRecord
	groupAdmin := map[string]bool{}

	paginator := iam.NewGetAccountAuthorizationDetailsPaginator(a.IAM, &iam.GetAccountAuthorizationDetailsInput{
		Filter: []types.EntityType{types.EntityTypeUser},
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, classify("get account authorization details", err)
		}

		for _, user := range page.UserDetailList {
			admin, err := a.isUserAdmin(ctx, user, groupAdmin)
			if err != nil {
				return nil, err
			}
			records = append(records, models.AdminRecord{
				User:   aws.ToString(user.UserName),
				Groups: user.GroupList,
				Admin:  admin,
			})
		}
	}

	return records, nil
}

// Audit sends a single card listing the administrators and returns how many
// there are.
func (a *AdminAuditor) Audit(ctx context.Context) (int, error) {
	users, err := a.ListUsers(ctx)
	if err != nil {
		return 0, err
	}

	var admins []string
	for _, u := range users {
		if u.Admin {
			admins = append(admins, u.User)
		}
	}

	a.Log.Info().Int("users", len(users)).Int("admins", len(admins)).Msg("iam audit complete")
	notify(ctx, a.Notifier, a.Log, a.Cards.AdminAudit(len(users), admins))

	return len(admins), nil
}

func (a *AdminAuditor) isUserAdmin(ctx context.Context, user types.UserDetail, groupAdmin map[string]bool) (bool, error) {
	for _, policy := range user.UserPolicyList {
		if aws.ToString(policy.PolicyName) == AdminPolicyName {
			return true, nil
		}
	}
	for _, policy := range user.AttachedManagedPolicies {
		if aws.ToString(policy.PolicyName) == AdminPolicyName {
			return true, nil
		}
	}

	for _, group := range user.GroupList {
		admin, seen := groupAdmin[group]
		if !seen {
			var err error
			admin, err = a.isGroupAdmin(ctx, group)
			if err != nil {
				return false, err
			}
			groupAdmin[group] = admin
		}
		if admin {
			return true, nil
		}
	}

	return false, nil
}

func (a *AdminAuditor) isGroupAdmin(ctx context.Context, group string) (bool, error) {
	inline := iam.NewListGroupPoliciesPaginator(a.IAM, &iam.ListGroupPoliciesInput{GroupName: aws.String(group)})
	for inline.HasMorePages() {
		page, err := inline.NextPage(ctx)
		if err != nil {
			return false, classify("list group policies", err)
		}
		for _, name := range page.PolicyNames {
			if name == AdminPolicyName {
				return true, nil
			}
		}
	}

	attached := iam.NewListAttachedGroupPoliciesPaginator(a.IAM, &iam.ListAttachedGroupPoliciesInput{GroupName: aws.String(group)})
	for attached.HasMorePages() {
		page, err := attached.NextPage(ctx)
		if err != nil {
			return false, classify("list attached group policies", err)
		}
		for _, policy := range page.AttachedPolicies {
			if aws.ToString(policy.PolicyName) == AdminPolicyName {
				return true, nil
			}
		}
	}

	return false, nil
}
