package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/globomantics/cms/pkg/cookie"
	"github.com/globomantics/cms/pkg/form"
	"github.com/globomantics/cms/pkg/htmx"
	"github.com/globomantics/cms/pkg/i18n"
	"github.com/globomantics/cms/pkg/session"
	"github.com/globomantics/cms/pkg/storage"
	"github.com/globomantics/cms/pkg/validator"
)

// ValidationErrors is a collection of validation errors.
type ValidationErrors = validator.ValidationErrors

// TranslatorKey is the context key used to store the i18n Translator.
type TranslatorKey struct{}

// contextKey carries the *requestContext through the request context so
// middleware and the final handler share one instance.
type contextKey struct{}

// Flash categories used by the templates.
const (
	FlashSuccess = "success"
	FlashInfo    = "info"
	FlashDanger  = "danger"
)

// Errors returned by Context helpers when a collaborator is missing.
var (
	ErrJobsNotConfigured    = errors.New("web: jobs not configured")
	ErrStorageNotConfigured = errors.New("web: storage not configured")
)

// Context provides request/response access and helper methods.
// It also implements context.Context by delegating to the request context.
type Context interface {
	context.Context

	// Request returns the current *http.Request.
	Request() *http.Request

	// Response returns the wrapped http.ResponseWriter.
	Response() http.ResponseWriter

	// ResponseWriter returns the wrapper for hooks and status inspection.
	ResponseWriter() *ResponseWriter

	// Context returns the request's context.Context.
	Context() context.Context

	// SetContext replaces the request context, e.g. to add a deadline.
	SetContext(ctx context.Context)

	// Param returns the URL parameter value by name.
	Param(name string) string

	// ParamInt parses a numeric URL parameter.
	ParamInt(name string) (int64, error)

	// Query returns the query parameter value by name.
	Query(name string) string

	// Form returns the form value by name.
	Form(name string) string

	// FormFile returns the first file for the given form key.
	FormFile(name string) (multipart.File, *multipart.FileHeader, error)

	// Header returns the request header value by name.
	Header(name string) string

	// SetHeader sets a response header.
	SetHeader(name, value string)

	// JSON writes a JSON response with the given status code.
	JSON(code int, v any) error

	// String writes a plain text response with the given status code.
	String(code int, s string) error

	// NoContent writes the status code with an empty body.
	NoContent(code int) error

	// Redirect redirects to url. HTMX requests get HX-Redirect instead.
	Redirect(code int, url string) error

	// Error creates an HTTPError without writing a response.
	Error(code int, message string, opts ...HTTPErrorOption) *HTTPError

	// IsHTMX returns true if the request originated from HTMX.
	IsHTMX() bool

	// Render renders a component with the given status code.
	Render(code int, component Component) error

	// RenderPartial renders partial for HTMX requests and fullPage otherwise.
	RenderPartial(code int, fullPage, partial Component) error

	// Bind parses the request into schema. Validation messages are
	// translated into the current language.
	Bind(schema *form.Schema) (form.Values, ValidationErrors, error)

	// Written returns true if a response has already been written.
	Written() bool

	Logger() *slog.Logger
	LogDebug(msg string, attrs ...any)
	LogInfo(msg string, attrs ...any)
	LogWarn(msg string, attrs ...any)
	LogError(msg string, attrs ...any)

	// Set stores a value in the request context.
	Set(key any, value any)

	// Get retrieves a value from the request context.
	Get(key any) any

	Cookie(name string) (string, error)
	SetCookie(name, value string, maxAge int)
	DeleteCookie(name string)

	// Flash queues a message for the next rendered page.
	Flash(category, message string) error

	// Flashes returns and clears the queued messages.
	Flashes() []cookie.Flash

	// Session returns the current session or nil when there is none.
	Session() (*session.Session, error)

	// UserID returns the authenticated user's id or 0.
	UserID() int64

	// IsAuthenticated returns true if a user is associated with the session.
	IsAuthenticated() bool

	// AuthenticateSession logs userID in, creating the session if needed.
	// remember selects the long session lifetime.
	AuthenticateSession(userID int64, remember bool) error

	// DestroySession removes the session and clears the cookie.
	DestroySession() error

	// Enqueue hands a task to the background queue.
	Enqueue(name string, payload any) error

	// Storage returns the configured object storage.
	Storage() (storage.Storage, error)

	// Translator returns the translator of the current language.
	Translator() *i18n.Translator

	// T translates key into the current language.
	T(key string, values ...map[string]any) string

	// Lang returns the current language code.
	Lang() string

	// FormatDate formats d for the current language.
	FormatDate(d time.Time) string

	// URL prefixes an application path with the current language.
	URL(path string) string
}

// requestContext implements the Context interface.
type requestContext struct {
	request        *http.Request
	responseWriter *ResponseWriter
	app            *App
	session        *session.Session
	flashes        []cookie.Flash
	// pending is a handler error waiting for the enclosing middleware;
	// depth counts the middlewares currently running.
	pending error
	depth   int

	sessionLoaded         bool
	sessionHookRegistered bool
	flashesLoaded         bool
	flashHookRegistered   bool
}

// contextFor returns the Context attached to r, or builds a new one.
func (a *App) contextFor(w http.ResponseWriter, r *http.Request) *requestContext {
	if c, ok := r.Context().Value(contextKey{}).(*requestContext); ok {
		c.request = r
		return c
	}

	rw, ok := w.(*ResponseWriter)
	if !ok {
		rw = NewResponseWriter(w, htmx.IsHTMX(r))
	}
	if a.maxBodyBytes > 0 && r.Body != nil {
		r.Body = http.MaxBytesReader(rw, r.Body, a.maxBodyBytes)
	}
	c := &requestContext{
		responseWriter: rw,
		app:            a,
	}
	c.request = r.WithContext(context.WithValue(r.Context(), contextKey{}, c))
	return c
}

func (c *requestContext) takePending() error {
	err := c.pending
	c.pending = nil
	return err
}

func (c *requestContext) Request() *http.Request {
	return c.request
}

func (c *requestContext) Response() http.ResponseWriter {
	return c.responseWriter
}

func (c *requestContext) ResponseWriter() *ResponseWriter {
	return c.responseWriter
}

func (c *requestContext) Context() context.Context {
	return c.request.Context()
}

func (c *requestContext) SetContext(ctx context.Context) {
	c.request = c.request.WithContext(ctx)
}

func (c *requestContext) Deadline() (time.Time, bool) {
	return c.request.Context().Deadline()
}

func (c *requestContext) Done() <-chan struct{} {
	return c.request.Context().Done()
}

func (c *requestContext) Err() error {
	return c.request.Context().Err()
}

func (c *requestContext) Value(key any) any {
	return c.request.Context().Value(key)
}

func (c *requestContext) Param(name string) string {
	return chi.URLParam(c.request, name)
}

func (c *requestContext) ParamInt(name string) (int64, error) {
	return strconv.ParseInt(c.Param(name), 10, 64)
}

func (c *requestContext) Query(name string) string {
	return c.request.URL.Query().Get(name)
}

func (c *requestContext) Form(name string) string {
	return c.request.FormValue(name)
}

func (c *requestContext) FormFile(name string) (multipart.File, *multipart.FileHeader, error) {
	return c.request.FormFile(name)
}

func (c *requestContext) Header(name string) string {
	return c.request.Header.Get(name)
}

func (c *requestContext) SetHeader(name, value string) {
	c.responseWriter.Header().Set(name, value)
}

func (c *requestContext) JSON(code int, v any) error {
	c.SetHeader("Content-Type", "application/json; charset=utf-8")
	c.responseWriter.WriteHeader(code)
	return json.NewEncoder(c.responseWriter).Encode(v)
}

func (c *requestContext) String(code int, s string) error {
	c.SetHeader("Content-Type", "text/plain; charset=utf-8")
	c.responseWriter.WriteHeader(code)
	_, err := c.responseWriter.Write([]byte(s))
	return err
}

func (c *requestContext) NoContent(code int) error {
	c.responseWriter.WriteHeader(code)
	return nil
}

func (c *requestContext) Redirect(code int, url string) error {
	htmx.Redirect(c.responseWriter, c.request, url, code)
	return nil
}

func (c *requestContext) Error(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(code, message, opts...)
}

func (c *requestContext) IsHTMX() bool {
	return htmx.IsHTMX(c.request)
}

// Render buffers the component so headers set while rendering (flash
// cookie removal) still reach the client and a failed render leaves the
// response untouched.
func (c *requestContext) Render(code int, component Component) error {
	var buf bytes.Buffer
	if err := component.Render(c.request.Context(), &buf); err != nil {
		return fmt.Errorf("web: render: %w", err)
	}
	c.SetHeader("Content-Type", "text/html; charset=utf-8")
	c.responseWriter.WriteHeader(code)
	_, err := buf.WriteTo(c.responseWriter)
	return err
}

func (c *requestContext) RenderPartial(code int, fullPage, partial Component) error {
	if htmx.IsPartial(c.request) {
		return c.Render(code, partial)
	}
	return c.Render(code, fullPage)
}

func (c *requestContext) Bind(schema *form.Schema) (form.Values, ValidationErrors, error) {
	values, verrs, err := schema.Bind(c.request)
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return nil, nil, ErrRequestTooLarge("", WithError(err), WithDetail(fmt.Sprintf("limit is %d bytes", mbe.Limit)))
		}
		return nil, nil, ErrBadRequest("", WithError(err))
	}
	if len(verrs) > 0 {
		if tr := c.Translator(); tr != nil {
			verrs.Translate(tr.Message)
		}
		return values, verrs, nil
	}
	return values, nil, nil
}

func (c *requestContext) Written() bool {
	return c.responseWriter.Written()
}

func (c *requestContext) Logger() *slog.Logger {
	return c.app.logger
}

func (c *requestContext) LogDebug(msg string, attrs ...any) {
	c.app.logger.DebugContext(c.request.Context(), msg, attrs...)
}

func (c *requestContext) LogInfo(msg string, attrs ...any) {
	c.app.logger.InfoContext(c.request.Context(), msg, attrs...)
}

func (c *requestContext) LogWarn(msg string, attrs ...any) {
	c.app.logger.WarnContext(c.request.Context(), msg, attrs...)
}

func (c *requestContext) LogError(msg string, attrs ...any) {
	c.app.logger.ErrorContext(c.request.Context(), msg, attrs...)
}

func (c *requestContext) Set(key, value any) {
	c.SetContext(context.WithValue(c.request.Context(), key, value))
}

func (c *requestContext) Get(key any) any {
	return c.request.Context().Value(key)
}

func (c *requestContext) Cookie(name string) (string, error) {
	return c.app.cookieManager.Get(c.request, name)
}

func (c *requestContext) SetCookie(name, value string, maxAge int) {
	c.app.cookieManager.Set(c.responseWriter, name, value, maxAge)
}

func (c *requestContext) DeleteCookie(name string) {
	c.app.cookieManager.Delete(c.responseWriter, name)
}

// loadFlashes reads the incoming queue once per request.
func (c *requestContext) loadFlashes() {
	if c.flashesLoaded {
		return
	}
	c.flashesLoaded = true
	c.flashes = c.app.cookieManager.Flashes(c.responseWriter, c.request)
}

func (c *requestContext) Flash(category, message string) error {
	c.loadFlashes()
	c.flashes = append(c.flashes, cookie.Flash{Category: category, Message: message})

	if !c.flashHookRegistered {
		c.flashHookRegistered = true
		c.responseWriter.OnBeforeWrite(func() {
			if err := c.app.cookieManager.SetFlashes(c.responseWriter, c.flashes); err != nil {
				c.LogError("failed to save flashes", "error", err)
			}
		})
	}
	return nil
}

func (c *requestContext) Flashes() []cookie.Flash {
	c.loadFlashes()
	out := c.flashes
	c.flashes = nil
	return out
}

// registerSessionHook persists a dirty session right before the response
// header is sent.
func (c *requestContext) registerSessionHook() {
	if c.sessionHookRegistered {
		return
	}
	c.sessionHookRegistered = true
	c.responseWriter.OnBeforeWrite(func() {
		if c.session == nil || !c.session.IsDirty() {
			return
		}
		if err := c.app.sessionManager.Store().Update(c.Context(), c.session); err != nil {
			c.LogError("failed to save session", "error", err)
			return
		}
		c.session.ClearDirty()
	})
}

func (c *requestContext) Session() (*session.Session, error) {
	if c.app.sessionManager == nil {
		return nil, session.ErrNotConfigured
	}
	c.registerSessionHook()
	if c.sessionLoaded {
		return c.session, nil
	}

	sess, err := c.app.sessionManager.Load(c.Context(), c.request)
	if errors.Is(err, session.ErrFingerprintMismatch) {
		c.app.sessionManager.ClearCookie(c.responseWriter)
		sess, err = nil, nil
	}
	if err != nil {
		return nil, err
	}
	c.session = sess
	c.sessionLoaded = true
	return sess, nil
}

func (c *requestContext) UserID() int64 {
	sess, err := c.Session()
	if err != nil || sess == nil {
		return 0
	}
	return sess.UserID
}

func (c *requestContext) IsAuthenticated() bool {
	return c.UserID() != 0
}

func (c *requestContext) AuthenticateSession(userID int64, remember bool) error {
	sm := c.app.sessionManager
	if sm == nil {
		return session.ErrNotConfigured
	}

	sess, err := c.Session()
	if err != nil {
		c.LogWarn("failed to load session", "error", err)
	}
	if sess == nil {
		if sess, err = sm.Create(c.Context(), c.request); err != nil {
			return err
		}
		c.session = sess
		c.sessionLoaded = true
	}

	if err := sm.Authenticate(c.Context(), sess, userID, remember); err != nil {
		return err
	}
	sm.WriteCookie(c.responseWriter, sess)
	return nil
}

func (c *requestContext) DestroySession() error {
	sm := c.app.sessionManager
	if sm == nil {
		return session.ErrNotConfigured
	}

	sess, _ := c.Session()
	if sess != nil {
		if err := sm.Store().Delete(c.Context(), sess.ID); err != nil {
			return err
		}
	}
	sm.ClearCookie(c.responseWriter)
	c.session = nil
	c.sessionLoaded = true
	return nil
}

func (c *requestContext) Enqueue(name string, payload any) error {
	if c.app.jobs == nil {
		return ErrJobsNotConfigured
	}
	return c.app.jobs.Enqueue(c.Context(), name, payload)
}

func (c *requestContext) Storage() (storage.Storage, error) {
	if c.app.storage == nil {
		return nil, ErrStorageNotConfigured
	}
	return c.app.storage, nil
}

func (c *requestContext) Translator() *i18n.Translator {
	if tr, ok := c.Get(TranslatorKey{}).(*i18n.Translator); ok {
		return tr
	}
	return nil
}

func (c *requestContext) T(key string, values ...map[string]any) string {
	if tr := c.Translator(); tr != nil {
		return tr.T(key, values...)
	}
	if len(values) > 0 {
		return i18n.Interpolate(key, values[0])
	}
	return key
}

func (c *requestContext) Lang() string {
	if tr := c.Translator(); tr != nil {
		return tr.Lang()
	}
	return ""
}

func (c *requestContext) FormatDate(d time.Time) string {
	if tr := c.Translator(); tr != nil {
		return tr.FormatDate(d)
	}
	return d.Format(time.DateOnly)
}

func (c *requestContext) URL(path string) string {
	return LangURL(c.Lang(), path)
}

// LangURL joins a language code and an application path.
func LangURL(lang, path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if lang == "" {
		return path
	}
	return "/" + lang + path
}
