package api

import (
	"html/template"
	"net/http"

	"github.com/ratheeshkm/tailorhub/pkg/auth"
	"github.com/ratheeshkm/tailorhub/pkg/contextkeys"
	"github.com/ratheeshkm/tailorhub/pkg/observability"
	"github.com/ratheeshkm/tailorhub/pkg/shop"
)

// pageTemplate is the shell for the server-rendered pages. The pages are
// thin: the client-side app fetches everything else from the API.
var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}} | TailorHub</title>
</head>
<body>
<div id="app" data-page="{{.Page}}"></div>
<script src="/static/app.js"></script>
</body>
</html>
`))

type pageData struct {
	Title string
	Page  string
}

func (s *Server) registerPages() {
	s.router.HandleFunc("/", s.page("TailorHub", "landing")).Methods(http.MethodGet)
	s.router.HandleFunc("/login", s.page("Log in", "login")).Methods(http.MethodGet)
	s.router.HandleFunc("/signup", s.page("Sign up", "signup")).Methods(http.MethodGet)
	s.router.HandleFunc("/dashboard", s.Dashboard).Methods(http.MethodGet)
	s.router.HandleFunc("/shop-setup", s.ShopSetup).Methods(http.MethodGet)
	s.router.HandleFunc("/customers", s.page("Customers", "customers")).Methods(http.MethodGet)
	s.router.HandleFunc("/orders", s.page("Orders", "orders")).Methods(http.MethodGet)
}

func (s *Server) page(title, name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.renderPage(w, r, pageData{Title: title, Page: name})
	}
}

// Dashboard routes the account by onboarding state: accounts without a
// shop land on setup, tokens whose account is gone get logged out.
func (s *Server) Dashboard(w http.ResponseWriter, r *http.Request) {
	status, ok := s.onboardingStatus(w, r)
	if !ok {
		return
	}
	switch status {
	case shop.StatusNoAccount:
		s.clearSessionAndRedirect(w, r)
	case shop.StatusNeedsShop:
		http.Redirect(w, r, "/shop-setup", http.StatusFound)
	default:
		s.renderPage(w, r, pageData{Title: "Dashboard", Page: "dashboard"})
	}
}

// ShopSetup is the mirror of Dashboard: accounts that already have a
// shop are sent back.
func (s *Server) ShopSetup(w http.ResponseWriter, r *http.Request) {
	status, ok := s.onboardingStatus(w, r)
	if !ok {
		return
	}
	switch status {
	case shop.StatusNoAccount:
		s.clearSessionAndRedirect(w, r)
	case shop.StatusReady:
		http.Redirect(w, r, "/dashboard", http.StatusFound)
	default:
		s.renderPage(w, r, pageData{Title: "Set up your shop", Page: "shop-setup"})
	}
}

func (s *Server) onboardingStatus(w http.ResponseWriter, r *http.Request) (shop.OnboardingStatus, bool) {
	accountID, ok := contextkeys.AccountID(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusFound)
		return "", false
	}
	status, err := s.deps.ShopService.Status(r.Context(), accountID)
	if err != nil {
		observability.FromContext(r.Context()).WithError(err).Error("onboarding status lookup failed")
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return "", false
	}
	return status, true
}

func (s *Server) clearSessionAndRedirect(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	http.Redirect(w, r, "/login", http.StatusFound)
}

func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, data); err != nil {
		observability.FromContext(r.Context()).WithError(err).Error("page render failed")
	}
}
