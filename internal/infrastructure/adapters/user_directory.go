// Package adapters implements the external-collaborator interfaces
// (UserDirectory, PostDirectory) as thin HTTP clients.
package adapters

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"

	"github.com/kheina-com/tagsvc/internal/domain/entities"
	"github.com/kheina-com/tagsvc/internal/shared/apperr"
)

// HTTPUserDirectory resolves handles/ids against the external user service
// (`GET /v1/fetch_user/{handle}`).
type HTTPUserDirectory struct {
	baseURL string
	client  *http.Client
	timeout time.Duration
}

func NewHTTPUserDirectory(baseURL string, timeout time.Duration) *HTTPUserDirectory {
	return &HTTPUserDirectory{
		baseURL: baseURL,
		client:  &http.Client{},
		timeout: timeout,
	}
}

func (d *HTTPUserDirectory) FetchUser(ctx context.Context, handle string) (*entities.UserPortable, error) {
	ctx, cancel := withDeadline(ctx, d.timeout)
	defer cancel()
	url := fmt.Sprintf("%s/v1/fetch_user/%s", d.baseURL, handle)
	return d.get(ctx, url)
}

func (d *HTTPUserDirectory) FetchUserByID(ctx context.Context, id uuid.UUID) (*entities.UserPortable, error) {
	ctx, cancel := withDeadline(ctx, d.timeout)
	defer cancel()
	url := fmt.Sprintf("%s/v1/fetch_user_by_id/%s", d.baseURL, id.String())
	return d.get(ctx, url)
}

func (d *HTTPUserDirectory) get(ctx context.Context, url string) (*entities.UserPortable, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, apperr.Internal("failed to build user directory request", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, apperr.Internal("user directory request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, apperr.NotFound("user not found")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apperr.Internal(fmt.Sprintf("user directory returned status %d", resp.StatusCode), nil)
	}

	var portable entities.UserPortable
	if err := sonic.ConfigDefault.NewDecoder(resp.Body).Decode(&portable); err != nil {
		return nil, apperr.Internal("failed to decode user directory response", err)
	}
	return &portable, nil
}

// withDeadline applies the collaborator's 30s default deadline when the
// inbound context carries none.
func withDeadline(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return context.WithTimeout(ctx, timeout)
}
