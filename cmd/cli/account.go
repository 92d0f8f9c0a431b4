package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/and161185/policydesk/internal/errs"
	"github.com/and161185/policydesk/internal/pages"
	"github.com/and161185/policydesk/internal/session"
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the client version",
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "policydesk %s (%s)\n", version, buildDate)
		},
	}
}

func registerCmd(a *app) *cobra.Command {
	var name, email, password string
	c := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := a.ctx(cmd)
			defer cancel()
			if _, err := a.auth().Register(ctx, name, email, password); err != nil {
				return &noticeError{text: errs.Message(err, "Registration failed")}
			}
			return notify(cmd, pages.Notice{Level: pages.LevelSuccess, Text: "Registration successful. Please log in."})
		},
	}
	c.Flags().StringVarP(&name, "name", "n", "", "display name")
	c.Flags().StringVarP(&email, "email", "e", "", "email address")
	c.Flags().StringVarP(&password, "password", "p", "", "password")
	return c
}

func loginCmd(a *app) *cobra.Command {
	var email, password string
	c := &cobra.Command{
		Use:   "login",
		Short: "Sign in and save the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := a.ctx(cmd)
			defer cancel()
			res, err := a.auth().Login(ctx, email, password)
			if err != nil {
				return &noticeError{text: errs.Message(err, "Login failed")}
			}
			who := res.User.Email
			if who == "" {
				who = fmt.Sprintf("user %d", res.User.ID)
			}
			return notify(cmd, pages.Notice{Level: pages.LevelSuccess, Text: "Logged in as " + who})
		},
	}
	c.Flags().StringVarP(&email, "email", "e", "", "email address")
	c.Flags().StringVarP(&password, "password", "p", "", "password")
	return c
}

func logoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.auth().Logout(); err != nil {
				return err
			}
			return notify(cmd, pages.Notice{Level: pages.LevelInfo, Text: "Logged out successfully!"})
		},
	}
}

// whoamiView is the saved session as shown to the user; the token itself is never printed.
type whoamiView struct {
	UserID    int64      `json:"userId"`
	Name      string     `json:"name,omitempty"`
	Email     string     `json:"email,omitempty"`
	Role      string     `json:"role,omitempty"`
	Subject   string     `json:"subject,omitempty"`
	IssuedAt  *time.Time `json:"issuedAt,omitempty"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
	Expired   bool       `json:"expired"`
}

func whoamiCmd(a *app) *cobra.Command {
	return userOnly(&cobra.Command{
		Use:   "whoami",
		Short: "Show the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cur, _ := a.store.Current()
			v := whoamiView{UserID: cur.UserID, Role: string(cur.Role)}
			if cur.User != nil {
				v.Name, v.Email = cur.User.Name, cur.User.Email
			}
			if tc, ok := session.Claims(cur.Token); ok {
				v.Subject = tc.Subject
				if !tc.IssuedAt.IsZero() {
					iat := tc.IssuedAt
					v.IssuedAt = &iat
				}
				if !tc.ExpiresAt.IsZero() {
					exp := tc.ExpiresAt
					v.ExpiresAt = &exp
					v.Expired = a.now().After(exp)
				}
			}
			return a.emit(cmd, v, []string{"USER", "NAME", "EMAIL", "ROLE", "EXPIRES"}, func() [][]string {
				exp := "-"
				if v.ExpiresAt != nil {
					exp = v.ExpiresAt.Format(time.RFC3339)
					if v.Expired {
						exp += " (expired)"
					}
				}
				return [][]string{{fmt.Sprint(v.UserID), v.Name, v.Email, v.Role, exp}}
			})
		},
	})
}

func profileCmd(a *app) *cobra.Command {
	var name, email string
	c := userOnly(&cobra.Command{
		Use:   "profile",
		Short: "Show or update your profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := a.ctx(cmd)
			defer cancel()
			if name == "" && email == "" {
				u, err := a.facades().User.GetUserProfile(ctx)
				if err != nil {
					return &noticeError{text: errs.Message(err, "Failed to load profile")}
				}
				return a.emit(cmd, u, []string{"ID", "NAME", "EMAIL", "ROLE"}, func() [][]string {
					return [][]string{{fmt.Sprint(u.ID), u.Name, u.Email, string(u.Role)}}
				})
			}
			cur, _ := a.store.Current()
			if cur.User != nil {
				if name == "" {
					name = cur.User.Name
				}
				if email == "" {
					email = cur.User.Email
				}
			}
			u, n := a.pages().UpdateProfile(ctx, name, email)
			if n.Failed() {
				return notify(cmd, n)
			}
			if u.Role == "" {
				u.Role = cur.Role
			}
			cur.User = &u
			if err := a.store.Set(cur); err != nil {
				return err
			}
			return notify(cmd, n)
		},
	})
	c.Flags().StringVar(&name, "name", "", "new display name")
	c.Flags().StringVar(&email, "email", "", "new email address")
	return c
}
