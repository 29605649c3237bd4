// Package middlewares provides the request pipeline of the site.
//
// # Request ID and logging
//
// RequestID assigns an ID to each request, keeping an upstream
// X-Request-ID when present. Pair it with RequestIDExtractor so every log
// record carries request_id:
//
//	log, _ := logger.New(cfg.Log, os.Stdout, middlewares.RequestIDExtractor())
//	app := web.New(
//	    web.WithLogger(log),
//	    web.WithMiddleware(
//	        middlewares.RequestID(),
//	        middlewares.AccessLog(),
//	        middlewares.Recover(),
//	        middlewares.Timeout(30*time.Second),
//	    ),
//	)
//
// Recover and Timeout return typed errors (*PanicError, *TimeoutError)
// for the app's error handler.
//
// # Languages
//
// Routes live under /{lang}. Language rejects unknown codes with 404 and
// installs the translator; RedirectToLanguage serves "/" with a redirect
// to the best Accept-Language match.
//
// # Forms and sessions
//
// CSRF wraps gorilla/csrf; rejected requests surface as 403 HTTPErrors.
// LoginRequired, AnonymousOnly and CurrentUser gate pages on the session.
//
// # Page cache
//
// PageCache replays rendered GET pages to anonymous visitors from a
// cache.Loader, so concurrent misses render once.
package middlewares
