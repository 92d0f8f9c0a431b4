package main

import (
	"context"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/and161185/policydesk/internal/apiclient"
	"github.com/and161185/policydesk/internal/config"
	"github.com/and161185/policydesk/internal/errs"
	"github.com/and161185/policydesk/internal/guard"
	"github.com/and161185/policydesk/internal/pages"
	"github.com/and161185/policydesk/internal/service"
	"github.com/and161185/policydesk/internal/session"
)

// annotation keys for the access a command needs
const (
	annAccess   = "access"
	accessUser  = "user"
	accessAdmin = "admin"
)

// app carries global flags and the per-invocation dependencies built from them.
type app struct {
	cfgPath  string
	envFile  string
	apiURL   string
	stateDir string
	timeout  time.Duration
	asJSON   bool
	dev      bool

	cfg   config.Config
	log   *zap.Logger
	store *session.FileStore
	api   *apiclient.Client
	hc    *http.Client
	now   func() time.Time
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "policydesk",
		Short:         "Shop for insurance, manage policies and file claims",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.init(); err != nil {
				return err
			}
			return a.authorize(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgPath, "config", "", "path to YAML config")
	pf.StringVar(&a.envFile, "env-file", ".env", "optional .env file")
	pf.StringVar(&a.apiURL, "api", "", "backend API base URL (overrides config)")
	pf.StringVar(&a.stateDir, "state-dir", "", "directory holding session.json (overrides config)")
	pf.DurationVar(&a.timeout, "timeout", 0, "request deadline (overrides config)")
	pf.BoolVar(&a.asJSON, "json", false, "print data as JSON")
	pf.BoolVar(&a.dev, "dev", false, "development logging")

	root.AddCommand(
		versionCmd(),
		registerCmd(a),
		loginCmd(a),
		logoutCmd(a),
		whoamiCmd(a),
		profileCmd(a),
		dashboardCmd(a),
		productsCmd(a),
		buyCmd(a),
		policiesCmd(a),
		claimCmd(a),
		claimsCmd(a),
		adminCmd(a),
	)
	return root
}

// init resolves configuration and builds the logger, the session file and the API client.
func (a *app) init() error {
	if err := config.LoadEnvFile(a.envFile); err != nil {
		return err
	}
	cfg, err := config.Load(a.cfgPath)
	if err != nil {
		return err
	}
	if a.apiURL != "" {
		cfg.API.BaseURL = a.apiURL
	}
	if a.stateDir != "" {
		cfg.StateDir = a.stateDir
	}
	if a.timeout > 0 {
		cfg.API.Timeout = a.timeout
	}
	if a.dev {
		cfg.Log.Dev = true
	}
	if cfg.StateDir == "" {
		cfg.StateDir = session.DefaultDir()
	}
	a.cfg = cfg

	if a.log == nil {
		// CLI output belongs to the user; logs stay quiet unless asked for
		if cfg.Log.Dev || a.cfgPath != "" {
			if a.log, err = cfg.Log.Build(); err != nil {
				return err
			}
		} else {
			a.log = zap.NewNop()
		}
	}
	if a.hc == nil {
		a.hc = &http.Client{}
	}
	if a.now == nil {
		a.now = time.Now
	}

	a.store = session.NewFile(cfg.StateDir)
	if err := a.store.Load(); err != nil {
		a.log.Warn("session file unreadable, starting signed out", zap.Error(err))
	}
	a.api = apiclient.New(cfg.API.BaseURL, a.store, apiclient.WithHTTPClient(a.hc), apiclient.WithLogger(a.log))
	return nil
}

// authorize applies the route guard to commands annotated with an access level.
func (a *app) authorize(cmd *cobra.Command) error {
	access := ""
	for c := cmd; c != nil; c = c.Parent() {
		if v, ok := c.Annotations[annAccess]; ok {
			access = v
			break
		}
	}
	if access == "" {
		return nil
	}
	if !guard.IsAuthenticated(a.store) {
		return errs.ErrNotAuthenticated
	}
	if access == accessAdmin && a.facades().Admin == nil {
		return errs.ErrForbidden
	}
	return nil
}

func (a *app) ctx(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	if a.cfg.API.Timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, a.cfg.API.Timeout)
}

func (a *app) facades() service.Facades {
	cur, _ := a.store.Current()
	return service.ForSession(cur, a.api)
}

func (a *app) pages() *pages.Pages {
	return pages.New(a.facades(), a.store).WithClock(a.now)
}

func (a *app) auth() *service.AuthServiceImpl {
	return service.NewAuthService(a.api, a.store)
}

func userOnly(c *cobra.Command) *cobra.Command {
	if c.Annotations == nil {
		c.Annotations = map[string]string{}
	}
	c.Annotations[annAccess] = accessUser
	return c
}
