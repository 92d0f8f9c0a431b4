package web

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/and161185/policydesk/internal/errs"
	"github.com/and161185/policydesk/internal/limiter"
	"github.com/and161185/policydesk/internal/pages"
	"github.com/and161185/policydesk/internal/service"
)

func info(text string) pages.Notice    { return pages.Notice{Level: pages.LevelInfo, Text: text} }
func success(text string) pages.Notice { return pages.Notice{Level: pages.LevelSuccess, Text: text} }
func failed(text string) pages.Notice  { return pages.Notice{Level: pages.LevelError, Text: text} }

func pathID(r *http.Request) int64 {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		return 0
	}
	return id
}

func formFloat(r *http.Request, key string, def float64) (float64, bool) {
	v := strings.TrimSpace(r.PostFormValue(key))
	if v == "" {
		return def, true
	}
	f, err := strconv.ParseFloat(v, 64)
	return f, err == nil
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func retryAfter(d time.Duration) string {
	if d < time.Minute {
		return "a minute"
	}
	return d.Round(time.Minute).String()
}

func (s *Server) home(w http.ResponseWriter, r *http.Request) {
	sc := s.scope(w, r)
	s.render(w, sc, http.StatusOK, "home", "Home", nil)
}

func (s *Server) loginForm(w http.ResponseWriter, r *http.Request) {
	sc := s.scope(w, r)
	s.render(w, sc, http.StatusOK, "login", "Login", nil)
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	sc := s.scope(w, r)
	ctx, cancel := s.callCtx(r)
	defer cancel()

	email := r.PostFormValue("email")
	ipHash := limiter.HashIP(clientIP(r))
	allowed, retry, err := s.limiter.Allow(ctx, email, ipHash)
	if err != nil {
		s.log.Warn("login limiter", zap.Error(err))
	} else if !allowed {
		s.redirect(w, r, sc, "/login", failed(fmt.Sprintf("Too many failed attempts. Try again in %s.", retryAfter(retry))))
		return
	}

	auth := service.NewAuthService(sc.api, sc.sess)
	if _, err := auth.Login(ctx, email, r.PostFormValue("password")); err != nil {
		// only answers from the backend count as failed attempts
		if errs.KindOf(err) == errs.KindRequestFailed {
			if blocked, _, lerr := s.limiter.Failure(ctx, email, ipHash); lerr != nil {
				s.log.Warn("login limiter", zap.Error(lerr))
			} else if blocked {
				s.log.Info("login blocked", zap.Binary("ip_hash", ipHash))
			}
		}
		s.redirect(w, r, sc, "/login", failed(errs.Message(err, "Login failed")))
		return
	}
	if err := s.limiter.Success(ctx, email, ipHash); err != nil {
		s.log.Warn("login limiter", zap.Error(err))
	}
	s.redirect(w, r, sc, "/dashboard", success("Login successful"))
}

func (s *Server) registerForm(w http.ResponseWriter, r *http.Request) {
	sc := s.scope(w, r)
	s.render(w, sc, http.StatusOK, "register", "Register", nil)
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	sc := s.scope(w, r)
	ctx, cancel := s.callCtx(r)
	defer cancel()

	auth := service.NewAuthService(sc.api, sc.sess)
	_, err := auth.Register(ctx, r.PostFormValue("name"), r.PostFormValue("email"), r.PostFormValue("password"))
	if err != nil {
		s.redirect(w, r, sc, "/register", failed(errs.Message(err, "Registration failed")))
		return
	}
	s.redirect(w, r, sc, "/login", success("Registration successful. Please log in."))
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	sc := s.scope(w, r)
	if err := service.NewAuthService(sc.api, sc.sess).Logout(); err != nil {
		s.log.Warn("logout", zap.Error(err))
	}
	s.redirect(w, r, sc, "/login", info("Logged out successfully!"))
}

func (s *Server) dashboard(w http.ResponseWriter, r *http.Request) {
	sc := s.scope(w, r)
	ctx, cancel := s.callCtx(r)
	defer cancel()

	d, n := sc.pages.Dashboard(ctx)
	s.render(w, sc, http.StatusOK, "dashboard", "Dashboard", d, n)
}

func (s *Server) updateProfile(w http.ResponseWriter, r *http.Request) {
	sc := s.scope(w, r)
	ctx, cancel := s.callCtx(r)
	defer cancel()

	u, n := sc.pages.UpdateProfile(ctx, r.PostFormValue("name"), r.PostFormValue("email"))
	if !n.Failed() {
		if cur, ok := sc.sess.Current(); ok {
			if u.Role == "" {
				u.Role = cur.Role
			}
			cur.User = &u
			if err := sc.sess.Set(cur); err != nil {
				s.log.Warn("refresh session user", zap.Error(err))
			}
		}
	}
	s.redirect(w, r, sc, "/dashboard", n)
}

func (s *Server) products(w http.ResponseWriter, r *http.Request) {
	sc := s.scope(w, r)
	ctx, cancel := s.callCtx(r)
	defer cancel()

	list, n := sc.pages.LoadProducts(ctx)
	s.render(w, sc, http.StatusOK, "products", "Products", list, n)
}

func (s *Server) submitProduct(w http.ResponseWriter, r *http.Request) {
	sc := s.scope(w, r)
	ctx, cancel := s.callCtx(r)
	defer cancel()

	premium, ok1 := formFloat(r, "premium", 0)
	coverage, ok2 := formFloat(r, "coverage_amount", 0)
	duration, err := strconv.Atoi(strings.TrimSpace(r.PostFormValue("duration")))
	if !ok1 || !ok2 || err != nil {
		s.redirect(w, r, sc, "/products", failed("Premium, coverage and duration must be numbers"))
		return
	}
	_, n := sc.pages.SubmitProduct(ctx, service.ProductInput{
		Title:          r.PostFormValue("title"),
		Description:    r.PostFormValue("description"),
		Premium:        premium,
		CoverageAmount: coverage,
		Duration:       duration,
	})
	s.redirect(w, r, sc, "/products", n)
}

func (s *Server) buy(w http.ResponseWriter, r *http.Request) {
	sc := s.scope(w, r)
	id := pathID(r)
	uid, _ := sc.sess.UserID()
	end := strings.TrimSpace(r.PostFormValue("end_date"))
	n := s.collapse(r, fmt.Sprintf("buy/%d/%d/%s", uid, id, end), func(ctx context.Context) pages.Notice {
		_, n := sc.pages.Purchase(ctx, id, end)
		return n
	})
	if n.Failed() {
		s.redirect(w, r, sc, "/products", n)
		return
	}
	s.redirect(w, r, sc, "/my-policies", n)
}

func (s *Server) policies(w http.ResponseWriter, r *http.Request) {
	sc := s.scope(w, r)
	ctx, cancel := s.callCtx(r)
	defer cancel()

	list, n := sc.pages.LoadPolicies(ctx)
	s.render(w, sc, http.StatusOK, "policies", "My Policies", list, n)
}

func (s *Server) claim(w http.ResponseWriter, r *http.Request) {
	sc := s.scope(w, r)
	amount, ok := formFloat(r, "amount", pages.DefaultClaimAmount)
	if !ok {
		s.redirect(w, r, sc, "/my-policies", failed("Claim amount must be a number"))
		return
	}
	id := pathID(r)
	uid, _ := sc.sess.UserID()
	n := s.collapse(r, fmt.Sprintf("claim/%d/%d", uid, id), func(ctx context.Context) pages.Notice {
		return sc.pages.Claim(ctx, id, amount)
	})
	s.redirect(w, r, sc, "/my-policies", n)
}

func (s *Server) claims(w http.ResponseWriter, r *http.Request) {
	sc := s.scope(w, r)
	ctx, cancel := s.callCtx(r)
	defer cancel()

	list, n := sc.pages.LoadClaims(ctx)
	s.render(w, sc, http.StatusOK, "claims", "My Claims", list, n)
}

func (s *Server) forbidden(w http.ResponseWriter, sc reqScope) {
	s.render(w, sc, http.StatusForbidden, "error", "Forbidden", "Admin access required")
}

func (s *Server) adminQueues(w http.ResponseWriter, r *http.Request) {
	sc := s.scope(w, r)
	if !sc.admin {
		s.forbidden(w, sc)
		return
	}
	ctx, cancel := s.callCtx(r)
	defer cancel()

	q, n := sc.pages.LoadReviewQueues(ctx)
	s.render(w, sc, http.StatusOK, "admin", "Review", q, n)
}

var reviewSubjects = map[string]pages.Subject{
	"products": pages.SubjectProduct,
	"policies": pages.SubjectPolicy,
	"claims":   pages.SubjectClaim,
}

func (s *Server) review(w http.ResponseWriter, r *http.Request) {
	sc := s.scope(w, r)
	if !sc.admin {
		s.forbidden(w, sc)
		return
	}
	ctx, cancel := s.callCtx(r)
	defer cancel()

	subj, ok := reviewSubjects[mux.Vars(r)["subject"]]
	if !ok {
		http.NotFound(w, r)
		return
	}
	var d service.Decision
	switch r.PostFormValue("decision") {
	case "approve":
		d.Approve = true
	case "reject":
		d.Reason = r.PostFormValue("reason")
	default:
		s.redirect(w, r, sc, "/admin", failed("Decision must be approve or reject"))
		return
	}
	s.redirect(w, r, sc, "/admin", sc.pages.Review(ctx, subj, pathID(r), d))
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}
