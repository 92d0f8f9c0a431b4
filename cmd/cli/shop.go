package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/and161185/policydesk/internal/model"
	"github.com/and161185/policydesk/internal/pages"
	"github.com/and161185/policydesk/internal/service"
)

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func dashboardCmd(a *app) *cobra.Command {
	return userOnly(&cobra.Command{
		Use:   "dashboard",
		Short: "Summarise your policies and claims",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := a.ctx(cmd)
			defer cancel()
			d, n := a.pages().Dashboard(ctx)
			if n != nil {
				return noticeErr(n)
			}
			return a.emit(cmd, d, []string{"NAME", "POLICIES", "APPROVED", "CLAIMS", "PENDING CLAIMS"}, func() [][]string {
				return [][]string{{d.User.Name, strconv.Itoa(d.Policies), strconv.Itoa(d.Approved),
					strconv.Itoa(d.Claims), strconv.Itoa(d.PendingClaims)}}
			})
		},
	})
}

func productRows(list []model.Product) func() [][]string {
	return func() [][]string {
		rows := make([][]string, 0, len(list))
		for _, p := range list {
			rows = append(rows, []string{fmt.Sprint(p.ID), p.Title, pages.Money(p.Premium),
				pages.Money(p.CoverageAmount), strconv.Itoa(p.Duration), pages.StatusLabel(p.Status)})
		}
		return rows
	}
}

var productHeaders = []string{"ID", "TITLE", "PREMIUM", "COVERAGE", "MONTHS", "STATUS"}

func productsCmd(a *app) *cobra.Command {
	c := userOnly(&cobra.Command{
		Use:   "products",
		Short: "List products on offer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := a.ctx(cmd)
			defer cancel()
			list, n := a.pages().LoadProducts(ctx)
			if n != nil {
				return noticeErr(n)
			}
			return a.emit(cmd, list, productHeaders, productRows(list))
		},
	})
	c.AddCommand(productSubmitCmd(a))
	return c
}

func productSubmitCmd(a *app) *cobra.Command {
	var in service.ProductInput
	c := &cobra.Command{
		Use:   "submit",
		Short: "Propose a new product for admin approval",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := a.ctx(cmd)
			defer cancel()
			p, n := a.pages().SubmitProduct(ctx, in)
			if err := notify(cmd, n); err != nil {
				return err
			}
			if a.asJSON {
				return printJSON(cmd.OutOrStdout(), p)
			}
			return nil
		},
	}
	f := c.Flags()
	f.StringVar(&in.Title, "title", "", "product title")
	f.StringVar(&in.Description, "description", "", "product description")
	f.Float64Var(&in.Premium, "premium", 0, "premium")
	f.Float64Var(&in.CoverageAmount, "coverage", 0, "coverage amount")
	f.IntVar(&in.Duration, "duration", 12, "duration in months")
	return c
}

func buyCmd(a *app) *cobra.Command {
	var end string
	c := userOnly(&cobra.Command{
		Use:   "buy <product-id>",
		Short: "Buy a policy for a product, from today until --end (default one year)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctx, cancel := a.ctx(cmd)
			defer cancel()
			pol, n := a.pages().Purchase(ctx, id, end)
			if err := notify(cmd, n); err != nil {
				return err
			}
			if a.asJSON {
				return printJSON(cmd.OutOrStdout(), pol)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "policy %d\n", pol.ID)
			return nil
		},
	})
	c.Flags().StringVar(&end, "end", "", "end date (YYYY-MM-DD)")
	return c
}

var policyHeaders = []string{"ID", "TITLE", "STATUS", "CLAIM", "PURCHASED", "VALID UNTIL", "ACTION"}

func policyRows(list []model.Policy) func() [][]string {
	return func() [][]string {
		rows := make([][]string, 0, len(list))
		for _, p := range list {
			rows = append(rows, []string{fmt.Sprint(p.ID), pages.PolicyTitle(p), pages.StatusLabel(string(p.Status)),
				pages.StatusLabel(string(p.ClaimStatus)), pages.FormatDateText(p.PurchaseDate),
				pages.FormatDateText(p.ValidUntil), pages.PolicyAction(p)})
		}
		return rows
	}
}

func policiesCmd(a *app) *cobra.Command {
	return userOnly(&cobra.Command{
		Use:   "policies",
		Short: "List your policies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := a.ctx(cmd)
			defer cancel()
			list, n := a.pages().LoadPolicies(ctx)
			if n != nil {
				return noticeErr(n)
			}
			return a.emit(cmd, list, policyHeaders, policyRows(list))
		},
	})
}

func claimCmd(a *app) *cobra.Command {
	var amount float64
	c := userOnly(&cobra.Command{
		Use:   "claim <policy-id>",
		Short: "File a claim against an approved policy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctx, cancel := a.ctx(cmd)
			defer cancel()
			return notify(cmd, a.pages().Claim(ctx, id, amount))
		},
	})
	c.Flags().Float64Var(&amount, "amount", pages.DefaultClaimAmount, "claim amount")
	return c
}

var claimHeaders = []string{"ID", "USER", "PRODUCT", "AMOUNT", "DATE", "STATUS", "REASON"}

func claimRows(list []model.Claim) func() [][]string {
	return func() [][]string {
		rows := make([][]string, 0, len(list))
		for _, c := range list {
			rows = append(rows, []string{fmt.Sprint(c.ID), fmt.Sprint(c.UserID), fmt.Sprint(c.ProductID),
				pages.Money(c.ClaimAmount), pages.FormatDate(c.ClaimDate), pages.StatusLabel(c.Status), c.RejectionReason})
		}
		return rows
	}
}

func claimsCmd(a *app) *cobra.Command {
	return userOnly(&cobra.Command{
		Use:   "claims",
		Short: "List your claims",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := a.ctx(cmd)
			defer cancel()
			list, n := a.pages().LoadClaims(ctx)
			if n != nil {
				return noticeErr(n)
			}
			return a.emit(cmd, list, claimHeaders, claimRows(list))
		},
	})
}
