package form_test

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/globomantics/cms/pkg/form"
	"github.com/globomantics/cms/pkg/validator"
)

func tourSchema() *form.Schema {
	return form.New("tour",
		form.String("title", "Title", func(v string) []validator.Rule {
			return []validator.Rule{
				validator.RequiredString("title", v).WithMessage("Data is required!"),
				validator.LenBetweenString("title", v, 5, 80).WithMessage("Title must be between 5 and 80 characters long"),
			}
		}),
		form.Integer("seats", "Seats", nil),
		form.Date("start_date", "Start date", func(v time.Time) []validator.Rule {
			return []validator.Rule{validator.RequiredTime("start_date", v)}
		}),
		form.Date("end_date", "End date", nil),
		form.Bool("featured", "Featured"),
		form.Submit("Save"),
		form.CSRFToken(),
	).WithCheck(func(_ context.Context, v form.Values) []validator.Rule {
		return []validator.Rule{
			validator.NotAfter("start_date", v.Time("start_date"), v.Time("end_date"), "end_date").
				WithMessage("Start date needs to be before the end date."),
		}
	})
}

func postForm(values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestSchemaBind(t *testing.T) {
	t.Parallel()

	t.Run("valid submission", func(t *testing.T) {
		t.Parallel()

		values, errs, err := tourSchema().Bind(postForm(url.Values{
			"title":      {"  Summer Tour  "},
			"seats":      {"120"},
			"start_date": {"2024-06-01"},
			"end_date":   {"2024-06-30"},
			"featured":   {"on"},
			"submit":     {"Save"},
		}))
		require.NoError(t, err)
		assert.True(t, errs.IsEmpty())
		assert.Equal(t, "Summer Tour", values.String("title"))
		assert.Equal(t, int64(120), values.Int("seats"))
		assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), values.Time("start_date"))
		assert.True(t, values.Bool("featured"))
		assert.NotContains(t, values, "submit")
		assert.NotContains(t, values, "csrf_token")
	})

	t.Run("first failing rule per field", func(t *testing.T) {
		t.Parallel()

		_, errs, err := tourSchema().Bind(postForm(url.Values{
			"title":      {""},
			"start_date": {"2024-06-01"},
			"end_date":   {"2024-06-30"},
		}))
		require.NoError(t, err)
		assert.Equal(t, []string{"Data is required!"}, errs.Get("title"))
	})

	t.Run("parse errors", func(t *testing.T) {
		t.Parallel()

		_, errs, err := tourSchema().Bind(postForm(url.Values{
			"title":      {"Summer Tour"},
			"seats":      {"many"},
			"start_date": {"01/06/2024"},
		}))
		require.NoError(t, err)
		assert.Equal(t, []string{"Not a valid integer value."}, errs.Get("seats"))
		assert.Equal(t, []string{"Not a valid date value."}, errs.Get("start_date"))
	})

	t.Run("schema check", func(t *testing.T) {
		t.Parallel()

		_, errs, err := tourSchema().Bind(postForm(url.Values{
			"title":      {"Summer Tour"},
			"start_date": {"2024-07-01"},
			"end_date":   {"2024-06-30"},
		}))
		require.NoError(t, err)
		assert.Equal(t, []string{"Start date needs to be before the end date."}, errs.Get("start_date"))
	})
}

func TestSchemaBindMultipart(t *testing.T) {
	t.Parallel()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("title", "Cover"))
	fw, err := mw.CreateFormFile("image", "cover.png")
	require.NoError(t, err)
	_, err = fw.Write([]byte("\x89PNG\r\n\x1a\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	schema := form.New("upload",
		form.String("title", "Title", nil),
		form.File("image", "Image", func(fh *multipart.FileHeader) []validator.Rule {
			return []validator.Rule{validator.Custom("image", fh != nil, "File is required.")}
		}),
	)
	values, errs, err := schema.Bind(req)
	require.NoError(t, err)
	assert.True(t, errs.IsEmpty())
	require.NotNil(t, values.File("image"))
	assert.Equal(t, "cover.png", values.File("image").Filename)
}

func TestSchemaDefinition(t *testing.T) {
	t.Parallel()

	s := tourSchema()
	assert.Equal(t, "tour", s.Name())
	assert.Equal(t, []string{"title", "seats", "start_date", "end_date", "featured", "submit", "csrf_token"}, s.Names())

	f, ok := s.Field("start_date")
	require.True(t, ok)
	assert.Equal(t, "date", f.Kind.InputType())

	assert.Panics(t, func() {
		form.New("dup", form.String("a", "A", nil), form.Text("a", "A", nil))
	})
}

func TestState(t *testing.T) {
	t.Parallel()

	schema := form.New("login",
		form.Email("email", "Email", nil),
		form.Password("password", "Password", nil),
		form.Date("born", "Born", nil),
	)
	st := form.NewState(schema)
	st.Set("email", "jane@example.com")
	st.Set("password", "secret-value")
	st.Set("born", time.Date(1990, 1, 2, 0, 0, 0, 0, time.UTC))

	assert.Equal(t, "jane@example.com", st.Input("email"))
	assert.Empty(t, st.Input("password"))
	assert.Equal(t, "1990-01-02", st.Input("born"))
	assert.Empty(t, st.Input("missing"))

	values, errs := schema.BindValues(context.Background(), url.Values{"email": {" Jane@Example.COM "}})
	assert.True(t, errs.IsEmpty())
	assert.Equal(t, "jane@example.com", values.String("email"))
}
