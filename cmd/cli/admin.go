package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/and161185/policydesk/internal/errs"
	"github.com/and161185/policydesk/internal/model"
	"github.com/and161185/policydesk/internal/pages"
	"github.com/and161185/policydesk/internal/service"
)

func adminCmd(a *app) *cobra.Command {
	c := &cobra.Command{
		Use:         "admin",
		Short:       "Review queues and platform records (admin role)",
		Annotations: map[string]string{annAccess: accessAdmin},
	}
	c.AddCommand(
		adminList(a, "users", "List all users", func(ctx context.Context, f service.AdminFacade) (any, [][]string, []string, error) {
			list, err := f.Users(ctx)
			rows := make([][]string, 0, len(list))
			for _, u := range list {
				rows = append(rows, []string{fmt.Sprint(u.ID), u.Name, u.Email, string(u.Role), pages.FormatDateText(u.CreatedAt)})
			}
			return list, rows, []string{"ID", "NAME", "EMAIL", "ROLE", "CREATED"}, err
		}),
		adminList(a, "policies", "List all policies", func(ctx context.Context, f service.AdminFacade) (any, [][]string, []string, error) {
			list, err := f.Policies(ctx)
			return list, policyRows(list)(), policyHeaders, err
		}),
		adminList(a, "claims", "List all claims", func(ctx context.Context, f service.AdminFacade) (any, [][]string, []string, error) {
			list, err := f.Claims(ctx)
			return list, claimRows(list)(), claimHeaders, err
		}),
		adminList(a, "transactions", "List payment transactions", func(ctx context.Context, f service.AdminFacade) (any, [][]string, []string, error) {
			list, err := f.Transactions(ctx)
			return list, transactionRows(list), []string{"ID", "USER", "POLICY", "AMOUNT", "TYPE", "CREATED"}, err
		}),
		adminList(a, "pending-products", "List products awaiting approval", func(ctx context.Context, f service.AdminFacade) (any, [][]string, []string, error) {
			list, err := f.PendingProducts(ctx)
			return list, productRows(list)(), productHeaders, err
		}),
		adminList(a, "pending-policies", "List policies awaiting approval", func(ctx context.Context, f service.AdminFacade) (any, [][]string, []string, error) {
			list, err := f.PendingPolicies(ctx)
			return list, policyRows(list)(), policyHeaders, err
		}),
		adminList(a, "pending-claims", "List claims awaiting approval", func(ctx context.Context, f service.AdminFacade) (any, [][]string, []string, error) {
			list, err := f.PendingClaims(ctx)
			return list, claimRows(list)(), claimHeaders, err
		}),
		adminDecide(a, "approve-product", pages.SubjectProduct),
		adminDecide(a, "approve-policy", pages.SubjectPolicy),
		adminDecide(a, "approve-claim", pages.SubjectClaim),
	)
	return c
}

type adminFetch func(ctx context.Context, f service.AdminFacade) (data any, rows [][]string, headers []string, err error)

func adminList(a *app, use, short string, fetch adminFetch) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f := a.facades().Admin
			if f == nil {
				return errs.ErrForbidden
			}
			ctx, cancel := a.ctx(cmd)
			defer cancel()
			data, rows, headers, err := fetch(ctx, f)
			if err != nil {
				return &noticeError{text: errs.Message(err, "Failed to load "+use)}
			}
			return a.emit(cmd, data, headers, func() [][]string { return rows })
		},
	}
}

func adminDecide(a *app, use string, subj pages.Subject) *cobra.Command {
	var reject bool
	var reason string
	c := &cobra.Command{
		Use:   use + " <id>",
		Short: fmt.Sprintf("Approve or reject (--reject) a pending %s", subj),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctx, cancel := a.ctx(cmd)
			defer cancel()
			d := service.Decision{Approve: !reject, Reason: reason}
			return notify(cmd, a.pages().Review(ctx, subj, id, d))
		},
	}
	c.Flags().BoolVar(&reject, "reject", false, "reject instead of approve")
	c.Flags().StringVar(&reason, "reason", "", "reason shown to the user")
	return c
}

func transactionRows(list []model.Transaction) [][]string {
	rows := make([][]string, 0, len(list))
	for _, t := range list {
		rows = append(rows, []string{fmt.Sprint(t.ID), fmt.Sprint(t.UserID), fmt.Sprint(t.PolicyID),
			pages.Money(t.Amount), t.Type, pages.FormatDateText(t.CreatedAt)})
	}
	return rows
}
