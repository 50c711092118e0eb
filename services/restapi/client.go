// Package restapi is the client of the platform's REST backend.
// Requests are never retried: errors are returned to the caller to be displayed.
package restapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/amitkumarsingh01/GlobalEdutech-Admin/core"
	"github.com/amitkumarsingh01/GlobalEdutech-Admin/core/resource"
	"github.com/amitkumarsingh01/GlobalEdutech-Admin/core/session"
)

type Client struct {
	baseURL  string
	authPath string
	http     *http.Client
	metrics  *Metrics
}

var (
	_ resource.Backend      = (*Client)(nil)
	_ session.Authenticator = (*Client)(nil)
)

func NewClient(conf *core.Config, metrics *Metrics) *Client {
	return New(conf.Backend.BaseURL, conf.Backend.AuthPath, &http.Client{Timeout: conf.Backend.Timeout}, metrics)
}

// New returns a Client for the backend at baseURL. metrics may be nil.
func New(baseURL, authPath string, hc *http.Client, metrics *Metrics) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		authPath: "/" + strings.TrimLeft(authPath, "/"),
		http:     hc,
		metrics:  metrics,
	}
}

func (c *Client) BaseURL() string { return c.baseURL }

// request describes one backend call.
type request struct {
	label       string // metrics resource label
	op          string // eg. "fetch courses"
	method      string
	path        string
	token       string
	body        io.Reader
	contentType string
}

func (c *Client) do(ctx context.Context, r request) (resource.Body, error) {
	req, err := http.NewRequestWithContext(ctx, r.method, c.baseURL+r.path, r.body)
	if err != nil {
		return nil, errors.Wrap(err, "building request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Encoding", acceptEncoding)
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.observe(r.label, r.method, 0, started)
		return nil, &TransportError{Op: r.op, Err: err}
	}
	c.metrics.observe(r.label, r.method, resp.StatusCode, started)

	raw, err := readBody(resp)
	if err != nil {
		return nil, &TransportError{Op: r.op, Err: err}
	}

	body := make(resource.Body)
	if len(bytes.TrimSpace(raw)) > 0 {
		if jErr := json.Unmarshal(raw, &body); jErr != nil && resp.StatusCode/100 == 2 {
			return nil, errors.Wrap(jErr, fmt.Sprintf("decoding %s %s response", r.method, r.path))
		}
	}
	if resp.StatusCode/100 != 2 {
		return nil, newAPIError(req, resp.StatusCode, body)
	}
	return body, nil
}

func (c *Client) jsonRequest(r request, payload interface{}) (request, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return r, errors.Wrap(err, "encoding payload")
	}
	r.body = bytes.NewReader(b)
	r.contentType = "application/json"
	return r, nil
}

func (c *Client) List(ctx context.Context, def *resource.Definition, token string) (resource.Body, error) {
	key := def.PluralKey
	if def.Singleton {
		key = def.SingularKey
	}
	return c.do(ctx, request{
		label:  def.Name,
		op:     "fetch " + key,
		method: http.MethodGet,
		path:   "/" + def.CollectionPath(),
		token:  token,
	})
}

func (c *Client) Get(ctx context.Context, def *resource.Definition, id, token string) (resource.Body, error) {
	return c.do(ctx, request{
		label:  def.Name,
		op:     "fetch " + def.SingularKey,
		method: http.MethodGet,
		path:   itemPath(def, id),
		token:  token,
	})
}

// Create sends a multipart body when files are attached, JSON otherwise.
func (c *Client) Create(ctx context.Context, def *resource.Definition, payload resource.Payload, files []resource.File, token string) (resource.Body, error) {
	r := request{
		label:  def.Name,
		op:     "create " + def.SingularKey,
		method: http.MethodPost,
		path:   "/" + def.CollectionPath(),
		token:  token,
	}
	var err error
	if len(files) > 0 {
		r.body, r.contentType, err = encodeMultipart(payload, files)
	} else {
		r, err = c.jsonRequest(r, payload)
	}
	if err != nil {
		return nil, err
	}
	return c.do(ctx, r)
}

func (c *Client) Update(ctx context.Context, def *resource.Definition, id string, payload resource.Payload, token string) (resource.Body, error) {
	r, err := c.jsonRequest(request{
		label:  def.Name,
		op:     "update " + def.SingularKey,
		method: http.MethodPut,
		path:   itemPath(def, id),
		token:  token,
	}, payload)
	if err != nil {
		return nil, err
	}
	return c.do(ctx, r)
}

func (c *Client) Delete(ctx context.Context, def *resource.Definition, id, token string) (resource.Body, error) {
	return c.do(ctx, request{
		label:  def.Name,
		op:     "delete " + def.SingularKey,
		method: http.MethodDelete,
		path:   itemPath(def, id),
		token:  token,
	})
}

func (c *Client) Stats(ctx context.Context, token string) (resource.Body, error) {
	return c.do(ctx, request{
		label:  "dashboard",
		op:     "fetch dashboard stats",
		method: http.MethodGet,
		path:   "/dashboard/stats",
		token:  token,
	})
}

func (c *Client) RecentActivity(ctx context.Context, token string) (resource.Body, error) {
	return c.do(ctx, request{
		label:  "dashboard",
		op:     "fetch recent activities",
		method: http.MethodGet,
		path:   "/dashboard/recent-activities",
		token:  token,
	})
}

func (c *Client) Health(ctx context.Context) (resource.Body, error) {
	return c.do(ctx, request{
		label:  "health",
		op:     "check health",
		method: http.MethodGet,
		path:   "/health",
	})
}

// Login verifies the credentials against the backend's auth endpoint.
// Rejected credentials return session.ErrInvalidCredentials.
func (c *Client) Login(ctx context.Context, username, password string) (session.Session, error) {
	r, err := c.jsonRequest(request{
		label:  "auth",
		op:     "log in",
		method: http.MethodPost,
		path:   c.authPath,
	}, map[string]string{"username": username, "password": password})
	if err != nil {
		return session.Session{}, err
	}

	body, err := c.do(ctx, r)
	if err != nil {
		if apiErr, ok := err.(*APIError); ok {
			switch apiErr.StatusCode {
			case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
				return session.Session{}, session.ErrInvalidCredentials
			}
		}
		return session.Session{}, err
	}

	rec := resource.Record(body)
	sess := session.Session{Token: rec.String("token"), UserID: rec.String("user_id")}
	if usr, ok := body.Record("user"); ok {
		if sess.UserID == "" {
			sess.UserID = usr.ID()
		}
		sess.Username = usr.String("username")
		sess.Role = usr.String("role")
	}
	return sess, nil
}

func itemPath(def *resource.Definition, id string) string {
	return "/" + def.CollectionPath() + "/" + id
}

// encodeMultipart writes scalar fields as string parts followed by the file parts.
func encodeMultipart(payload resource.Payload, files []resource.File) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for name, val := range payload {
		if err := w.WriteField(name, formValue(val)); err != nil {
			return nil, "", errors.Wrap(err, "writing multipart field")
		}
	}
	for _, file := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, quoteEscaper.Replace(file.Field), quoteEscaper.Replace(file.Filename)))
		ct := file.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", errors.Wrap(err, "creating multipart file")
		}
		if _, err = io.Copy(part, file.Content); err != nil {
			return nil, "", errors.Wrap(err, fmt.Sprintf("copying %s", file.Filename))
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", errors.Wrap(err, "closing multipart writer")
	}
	return &buf, w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func formValue(val interface{}) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}
