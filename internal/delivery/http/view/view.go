package view

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"tour-booking/internal/config"
	domainResource "tour-booking/internal/domain/resource"
	domainTour "tour-booking/internal/domain/tour"
	domainUser "tour-booking/internal/domain/user"
	"tour-booking/internal/logger"
	"tour-booking/internal/middleware"
	"tour-booking/internal/query"
	"tour-booking/internal/usecase/user"
	appErrors "tour-booking/pkg/errors"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/style.css
var staticFS embed.FS

type Page string

const (
	PageOverview Page = "overview"
	PageTour     Page = "tour"
	PageLogin    Page = "login"
	PageAccount  Page = "account"
	PageError    Page = "error"
)

var pages = []Page{PageOverview, PageTour, PageLogin, PageAccount, PageError}

type Tours interface {
	List(ctx context.Context, params url.Values, scope domainResource.Scope) ([]*domainTour.Tour, *query.Descriptor, error)
	GetBySlug(ctx context.Context, slug string) (*domainTour.Tour, error)
}

type Bookings interface {
	MyTours(ctx context.Context, userID uuid.UUID) ([]*domainTour.Tour, error)
}

type Accounts interface {
	Login(ctx context.Context, req *user.LoginRequest) (*user.Session, error)
	VerifyEmail(ctx context.Context, token string) (*user.Session, error)
	UpdateMe(ctx context.Context, userID uuid.UUID, req *user.UpdateMeRequest) (*domainUser.User, error)
}

type pageData struct {
	Title   string
	User    *domainUser.User
	Tours   []*domainTour.Tour
	Tour    *domainTour.Tour
	Alert   string
	Message string
	Email   string
}

// View renders the server side pages.
type View struct {
	tours     Tours
	bookings  Bookings
	accounts  Accounts
	auth      middleware.Authenticator
	templates map[Page]*template.Template
	cookieTTL time.Duration
	secure    bool
}

func New(tours Tours, bookings Bookings, accounts Accounts, auth middleware.Authenticator, cfg *config.Config) (*View, error) {
	funcs := template.FuncMap{
		"firstName": func(name string) string {
			if fields := strings.Fields(name); len(fields) > 0 {
				return fields[0]
			}
			return name
		},
		"firstDate": func(dates []time.Time) string {
			if len(dates) == 0 {
				return ""
			}
			return dates[0].Format("January 2006")
		},
		"price": func(p float64) string {
			return strconv.FormatFloat(p, 'f', -1, 64)
		},
		"paragraphs": func(text string) []string {
			var out []string
			for _, p := range strings.Split(text, "\n") {
				if p = strings.TrimSpace(p); p != "" {
					out = append(out, p)
				}
			}
			return out
		},
	}

	templates := make(map[Page]*template.Template, len(pages))
	for _, page := range pages {
		t, err := template.New(string(page)).Funcs(funcs).ParseFS(templateFS, "templates/base.html", "templates/"+string(page)+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse page %s: %w", page, err)
		}
		templates[page] = t
	}

	return &View{
		tours:     tours,
		bookings:  bookings,
		accounts:  accounts,
		auth:      auth,
		templates: templates,
		cookieTTL: time.Duration(cfg.JWT.CookieExpiresDays) * 24 * time.Hour,
		secure:    cfg.Server.IsProduction(),
	}, nil
}

func (v *View) RegisterRoutes(router gin.IRouter) {
	router.StaticFileFS("/css/style.css", "static/style.css", http.FS(staticFS))

	pages := router.Group("", middleware.OptionalAuthMiddleware(v.auth))
	{
		pages.GET("/", v.Overview)
		pages.GET("/tour/:slug", v.Tour)
		pages.GET("/login", v.LoginForm)
		pages.POST("/login", v.Login)
		pages.GET("/me/:token", v.VerifyEmail)
	}

	private := pages.Group("", v.requireUser)
	{
		private.GET("/me", v.Account)
		private.POST("/submit-user-data", v.UpdateAccount)
		private.GET("/my-tours", v.MyTours)
	}
}

func (v *View) Overview(c *gin.Context) {
	tours, _, err := v.tours.List(c.Request.Context(), url.Values{}, nil)
	if err != nil {
		v.renderError(c, err)
		return
	}

	v.render(c, http.StatusOK, PageOverview, pageData{Title: "All Tours", Tours: tours})
}

func (v *View) Tour(c *gin.Context) {
	t, err := v.tours.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		if appErrors.KindOf(err) == appErrors.KindNotFound {
			err = appErrors.New(appErrors.KindNotFound, "TOUR_NOT_FOUND", "There is no tour with that name.")
		}
		v.renderError(c, err)
		return
	}

	v.render(c, http.StatusOK, PageTour, pageData{Title: t.Name + " Tour", Tour: t})
}

func (v *View) LoginForm(c *gin.Context) {
	v.render(c, http.StatusOK, PageLogin, pageData{Title: "Log into your account"})
}

// Login handles the form post of the login page and redirects home.
func (v *View) Login(c *gin.Context) {
	req := &user.LoginRequest{
		Email:    c.PostForm("email"),
		Password: c.PostForm("password"),
	}

	session, err := v.accounts.Login(c.Request.Context(), req)
	if err != nil {
		kind := appErrors.KindOf(err)
		if !kind.Operational() {
			v.renderError(c, err)
			return
		}
		v.render(c, kind.HTTPStatus(), PageLogin, pageData{
			Title:   "Log into your account",
			Message: appErrors.MessageOf(err),
			Email:   req.Email,
		})
		return
	}

	middleware.SetSessionCookie(c, session.Token, v.cookieTTL, v.secure)
	c.Redirect(http.StatusSeeOther, "/")
}

func (v *View) Account(c *gin.Context) {
	v.render(c, http.StatusOK, PageAccount, pageData{Title: "Your account"})
}

// UpdateAccount handles the settings form of the account page. Blank fields
// are left unchanged.
func (v *View) UpdateAccount(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		v.renderError(c, err)
		return
	}

	req := &user.UpdateMeRequest{
		Name:  formValue(c, "name"),
		Email: formValue(c, "email"),
	}

	updated, err := v.accounts.UpdateMe(c.Request.Context(), userID, req)
	if err != nil {
		kind := appErrors.KindOf(err)
		if !kind.Operational() {
			v.renderError(c, err)
			return
		}
		v.render(c, kind.HTTPStatus(), PageAccount, pageData{
			Title:   "Your account",
			Message: appErrors.MessageOf(err),
		})
		return
	}

	v.render(c, http.StatusOK, PageAccount, pageData{
		Title: "Your account",
		User:  updated,
		Alert: "Your account settings have been updated.",
	})
}

func formValue(c *gin.Context, key string) *string {
	value := strings.TrimSpace(c.PostForm(key))
	if value == "" {
		return nil
	}
	return &value
}

// VerifyEmail is the landing page of the verification link. It confirms the
// address and signs the user in.
func (v *View) VerifyEmail(c *gin.Context) {
	session, err := v.accounts.VerifyEmail(c.Request.Context(), c.Param("token"))
	if err != nil {
		v.renderError(c, err)
		return
	}

	middleware.SetSessionCookie(c, session.Token, v.cookieTTL, v.secure)
	v.render(c, http.StatusOK, PageAccount, pageData{
		Title: "Your account",
		User:  session.User,
		Alert: "Your email address has been verified. Welcome aboard!",
	})
}

func (v *View) MyTours(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		v.renderError(c, err)
		return
	}

	tours, err := v.bookings.MyTours(c.Request.Context(), userID)
	if err != nil {
		v.renderError(c, err)
		return
	}

	v.render(c, http.StatusOK, PageOverview, pageData{Title: "My Tours", Tours: tours})
}

func (v *View) requireUser(c *gin.Context) {
	if _, ok := middleware.CurrentUser(c); !ok {
		v.renderError(c, appErrors.ErrNotLoggedIn)
		c.Abort()
		return
	}
	c.Next()
}

func (v *View) render(c *gin.Context, status int, page Page, data pageData) {
	if data.User == nil {
		data.User, _ = middleware.CurrentUser(c)
	}
	c.Render(status, render.HTML{
		Template: v.templates[page],
		Name:     "base",
		Data:     data,
	})
}

func (v *View) renderError(c *gin.Context, err error) {
	kind := appErrors.KindOf(err)
	message := appErrors.MessageOf(err)
	if !kind.Operational() {
		logger.Error("Page rendering failed",
			zap.Error(err),
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.String("path", c.Request.URL.Path),
		)
		message = "Please try again later."
	}

	v.render(c, kind.HTTPStatus(), PageError, pageData{Title: "Something went wrong!", Message: message})
}
