// Package supabase talks to the Supabase auth (GoTrue) admin API.
package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/learnmate/learnmate-backend/internal/config"
	"github.com/learnmate/learnmate-backend/internal/service"
	"github.com/sendgrid/rest"
)

const adminUsersPath = "/auth/v1/admin/users"

// AdminClient provisions and removes auth accounts using the service key.
type AdminClient struct {
	baseURL    string
	serviceKey string
	send       func(ctx context.Context, req rest.Request) (*rest.Response, error)
}

// NewAdminClient creates a new AdminClient.
func NewAdminClient(cfg *config.Config) *AdminClient {
	return &AdminClient{
		baseURL:    cfg.SupabaseURL,
		serviceKey: cfg.SupabaseServiceKey,
		send:       sendWithContext,
	}
}

// sendWithContext issues req on rest.DefaultClient, bound to ctx.
func sendWithContext(ctx context.Context, req rest.Request) (*rest.Response, error) {
	httpReq, err := rest.BuildRequestObject(req)
	if err != nil {
		return nil, err
	}
	res, err := rest.DefaultClient.MakeRequest(httpReq.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	return rest.BuildResponse(res)
}

type createUserBody struct {
	Email        string                 `json:"email"`
	Password     string                 `json:"password"`
	EmailConfirm bool                   `json:"email_confirm"`
	UserMetadata map[string]interface{} `json:"user_metadata,omitempty"`
}

type userResponse struct {
	ID string `json:"id"`
}

type errorResponse struct {
	Code      interface{} `json:"code"`
	ErrorCode string      `json:"error_code"`
	Msg       string      `json:"msg"`
	Message   string      `json:"message"`
}

func (e errorResponse) text() string {
	if e.Msg != "" {
		return e.Msg
	}
	return e.Message
}

func (c *AdminClient) headers() map[string]string {
	return map[string]string{
		"apikey":        c.serviceKey,
		"Authorization": "Bearer " + c.serviceKey,
		"Content-Type":  "application/json",
	}
}

// CreateUser registers a confirmed account and returns its user ID.
func (c *AdminClient) CreateUser(ctx context.Context, email, password string, metadata map[string]interface{}) (uuid.UUID, error) {
	body, err := json.Marshal(createUserBody{
		Email:        email,
		Password:     password,
		EmailConfirm: true,
		UserMetadata: metadata,
	})
	if err != nil {
		return uuid.Nil, err
	}

	resp, err := c.send(ctx, rest.Request{
		Method:  rest.Post,
		BaseURL: c.baseURL + adminUsersPath,
		Headers: c.headers(),
		Body:    body,
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("auth admin request: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return uuid.Nil, apiError(resp)
	}

	var u userResponse
	if err := json.Unmarshal([]byte(resp.Body), &u); err != nil {
		return uuid.Nil, fmt.Errorf("decode auth user: %w", err)
	}
	id, err := uuid.Parse(u.ID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("auth user id %q: %w", u.ID, err)
	}
	return id, nil
}

// DeleteUser removes an account.
func (c *AdminClient) DeleteUser(ctx context.Context, id uuid.UUID) error {
	resp, err := c.send(ctx, rest.Request{
		Method:  rest.Delete,
		BaseURL: c.baseURL + adminUsersPath + "/" + id.String(),
		Headers: c.headers(),
	})
	if err != nil {
		return fmt.Errorf("auth admin request: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest && resp.StatusCode != http.StatusNotFound {
		return apiError(resp)
	}
	return nil
}

// apiError maps a GoTrue error response onto the service taxonomy.
func apiError(resp *rest.Response) error {
	var e errorResponse
	_ = json.Unmarshal([]byte(resp.Body), &e)

	msg := e.text()
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}

	switch {
	case e.ErrorCode == "email_exists" || strings.Contains(strings.ToLower(msg), "already been registered"):
		return fmt.Errorf("%w: email already registered", service.ErrConflict)
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity:
		return fmt.Errorf("%w: %s", service.ErrValidation, msg)
	default:
		return fmt.Errorf("auth admin api: status %d: %s", resp.StatusCode, msg)
	}
}
