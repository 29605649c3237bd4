// Package server assembles the web application from its collaborators.
package server

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/globomantics/cms/internal/admin"
	"github.com/globomantics/cms/internal/auth"
	"github.com/globomantics/cms/internal/config"
	"github.com/globomantics/cms/internal/handlers"
	"github.com/globomantics/cms/internal/repository"
	"github.com/globomantics/cms/internal/views"
	"github.com/globomantics/cms/internal/web"
	"github.com/globomantics/cms/middlewares"
	"github.com/globomantics/cms/pkg/authz"
	"github.com/globomantics/cms/pkg/cache"
	"github.com/globomantics/cms/pkg/cookie"
	"github.com/globomantics/cms/pkg/health"
	"github.com/globomantics/cms/pkg/i18n"
	"github.com/globomantics/cms/pkg/job"
	"github.com/globomantics/cms/pkg/logger"
	"github.com/globomantics/cms/pkg/session"
	"github.com/globomantics/cms/pkg/storage"
)

// Deps are the collaborators the routes are built on. Jobs and Health may
// be nil.
type Deps struct {
	Config   *config.Config
	Logger   *slog.Logger
	Store    *repository.Store
	Sessions session.Store
	Storage  storage.Storage
	Pages    cache.Cache[middlewares.CachedPage]
	Jobs     job.Enqueuer
	Health   *health.Checker
}

// NewApp builds the application: every page lives below /{lang}, "/"
// redirects to the visitor's language.
func NewApp(d Deps) (*web.App, error) {
	cfg := d.Config
	log := d.Logger
	if log == nil {
		log = logger.Discard()
	}

	bundle, err := i18n.New(views.Locales(), cfg.Languages...)
	if err != nil {
		return nil, fmt.Errorf("server: load translations: %w", err)
	}
	v, err := views.New(
		views.WithLanguages(bundle.Languages()...),
		views.WithAdminResources(handlers.AdminResources()...),
	)
	if err != nil {
		return nil, fmt.Errorf("server: parse templates: %w", err)
	}
	authorizer, err := newAuthorizer(cfg.PolicyFile)
	if err != nil {
		return nil, err
	}

	accounts := auth.NewService(d.Store.Users)
	registrar := handlers.NewAdmin(v, admin.NewGuard(authorizer, handlers.Principal), handlers.AdminStores{
		Albums: d.Store.Albums,
		Tours:  d.Store.Tours,
		Users:  d.Store.Users,
	})
	errs := handlers.NewErrors(v)

	pages := d.Pages
	if pages == nil {
		pages = cache.NewMemory[middlewares.CachedPage](cache.WithMaxEntries(pageCacheEntries))
	}
	pageCache := middlewares.PageCache(cache.NewLoader(pages), cfg.CacheTTL)

	opts := []web.Option{
		web.WithLogger(log),
		web.WithCookieManager(cookie.New(
			cookie.WithSecret(cfg.SecretKey),
			cookie.WithDomain(cfg.Session.Domain),
			cookie.WithSecure(cfg.Session.Secure),
		)),
		web.WithSession(newSessionManager(cfg.Session, d.Sessions, log)),
		web.WithStorage(d.Storage),
		web.WithMaxBodyBytes(cfg.MaxUploadSize + maxFormOverhead),
		web.WithHTTPMiddleware(middleware.RealIP),
		web.WithMiddleware(
			middlewares.RequestID(),
			middlewares.AccessLog(),
			middlewares.Recover(),
			middlewares.Timeout(cfg.RequestTimeout),
			middlewares.DefaultLanguage(bundle),
			middlewares.CSRF(cfg.SecretKey,
				middlewares.WithCSRFSecure(cfg.Session.Secure),
				middlewares.WithCSRFDomain(cfg.Session.Domain),
			),
			middlewares.CurrentUser(d.Store.Users.FindByID, repository.IsNotFound),
		),
		web.WithStaticFiles("/static/", views.Static()),
		web.WithErrorHandler(errs.Handle),
		web.WithNotFoundHandler(errs.NotFound),
		web.WithMethodNotAllowedHandler(errs.MethodNotAllowed),
		web.WithHandlers(routes(func(r web.Router) {
			r.GET("/", middlewares.RedirectToLanguage(bundle)).Named("main.index")
			r.Route("/{"+middlewares.LangParam+"}", func(r web.Router) {
				r.Use(middlewares.Language(bundle))
				handlers.NewHome(d.Store.Albums, v, pageCache).Routes(r)
				handlers.NewAuth(accounts, v).Routes(r)
				handlers.NewAlbums(d.Store.Albums, v, cfg.MaxUploadSize).Routes(r)
				handlers.NewTours(d.Store.Tours, v).Routes(r)
				registrar.Routes(r)
			})
		})),
	}
	if d.Jobs != nil {
		opts = append(opts, web.WithJobs(d.Jobs))
	}
	if d.Health != nil {
		opts = append(opts, web.WithHealth(d.Health))
	}
	return web.New(opts...), nil
}

const (
	pageCacheEntries = 1000
	// maxFormOverhead leaves room for the text fields next to an upload.
	maxFormOverhead = 1 << 20
)

type routes func(r web.Router)

func (f routes) Routes(r web.Router) { f(r) }

func newAuthorizer(file string) (*authz.Authorizer, error) {
	var policy string
	if file != "" {
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("server: read policy: %w", err)
		}
		policy = string(b)
	}
	return authz.New(policy)
}

func newSessionManager(cfg config.SessionConfig, store session.Store, log *slog.Logger) *web.SessionManager {
	fingerprint := web.FingerprintWarn
	switch cfg.Fingerprint {
	case "disabled":
		fingerprint = web.FingerprintDisabled
	case "reject":
		fingerprint = web.FingerprintReject
	}
	return web.NewSessionManager(store,
		web.WithSessionTTL(cfg.TTL),
		web.WithRememberTTL(cfg.RememberTTL),
		web.WithSessionDomain(cfg.Domain),
		web.WithSessionSecure(cfg.Secure),
		web.WithSessionFingerprint(fingerprint),
		web.WithSessionLogger(log),
	)
}

// Endpoints lists the routes of an app built without live connections.
func Endpoints(cfg *config.Config) ([]web.Endpoint, error) {
	app, err := NewApp(Deps{
		Config:   cfg,
		Store:    repository.New(nil),
		Sessions: session.NewMemoryStore(),
		Storage:  storage.NewMemory(),
	})
	if err != nil {
		return nil, err
	}
	return app.Endpoints(), nil
}
