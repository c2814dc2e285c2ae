package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/cracksmith/cracksmith/internal/client/models"
)

func pageQuery(page, perPage int) url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(perPage))
	return q
}

func adminUserPath(id int64, action string) string {
	return "/admin/users/" + strconv.FormatInt(id, 10) + "/" + action
}

func (c *HTTPClient) PlatformStats(ctx context.Context) (*models.PlatformStats, error) {
	var resp platformStatsResponse
	if err := c.do(ctx, request{method: http.MethodGet, path: "/admin/stats", auth: true}, &resp); err != nil {
		return nil, err
	}
	return resp.toModel()
}

func (c *HTTPClient) ListUsers(ctx context.Context, in PageRequest) (*models.UserPage, error) {
	var resp userListResponse
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/admin/users",
		query:  pageQuery(in.Page, in.PerPage),
		auth:   true,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.toModel()
}

func (c *HTTPClient) UpgradeUser(ctx context.Context, id int64) (*models.Identity, error) {
	var resp userResponse
	if err := c.do(ctx, request{method: http.MethodPost, path: adminUserPath(id, "upgrade"), auth: true}, &resp); err != nil {
		return nil, err
	}
	return resp.User.toModel()
}

func (c *HTTPClient) GrantAdmin(ctx context.Context, id int64, adminPIN string) (*models.Identity, error) {
	var resp userResponse
	err := c.do(ctx, request{
		method:     http.MethodPost,
		path:       adminUserPath(id, "admin"),
		body:       grantAdminBody{AdminPIN: adminPIN},
		auth:       true,
		pinChecked: true,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.User.toModel()
}

func (c *HTTPClient) ListInstallations(ctx context.Context, in PageRequest) (*models.InstallationPage, error) {
	var resp installationListResponse
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/admin/installations",
		query:  pageQuery(in.Page, in.PerPage),
		auth:   true,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.toModel()
}

func (c *HTTPClient) ListAllJobs(ctx context.Context, in ListJobsRequest) (*models.JobPage, error) {
	q := pageQuery(in.Page, in.PerPage)
	if in.Status != "" {
		q.Set("status", string(in.Status))
	}

	var resp jobListResponse
	if err := c.do(ctx, request{method: http.MethodGet, path: "/admin/jobs", query: q, auth: true}, &resp); err != nil {
		return nil, err
	}
	return resp.toModel()
}

func (c *HTTPClient) Settings(ctx context.Context) (map[string]string, error) {
	var resp settingsResponse
	if err := c.do(ctx, request{method: http.MethodGet, path: "/admin/settings", auth: true}, &resp); err != nil {
		return nil, err
	}
	if resp.Settings == nil {
		return nil, malformed("missing settings")
	}
	return *resp.Settings, nil
}

// UpdateSettings upserts the given keys; keys not mentioned are kept.
func (c *HTTPClient) UpdateSettings(ctx context.Context, settings map[string]string) error {
	return c.do(ctx, request{method: http.MethodPost, path: "/admin/settings", body: settings, auth: true}, nil)
}
