package adapters

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/bytedance/sonic"

	"github.com/kheina-com/tagsvc/internal/domain/entities"
	"github.com/kheina-com/tagsvc/internal/shared/apperr"
)

// HTTPPostDirectory resolves post records and a caller's recent posts
// against the external post service.
type HTTPPostDirectory struct {
	baseURL string
	client  *http.Client
	timeout time.Duration
}

func NewHTTPPostDirectory(baseURL string, timeout time.Duration) *HTTPPostDirectory {
	return &HTTPPostDirectory{baseURL: baseURL, client: &http.Client{}, timeout: timeout}
}

func (d *HTTPPostDirectory) FetchPost(ctx context.Context, postID entities.PostID) (*entities.InternalPost, error) {
	ctx, cancel := withDeadline(ctx, d.timeout)
	defer cancel()

	url := fmt.Sprintf("%s/post/%s", d.baseURL, postID.String())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, apperr.Internal("failed to build post directory request", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, apperr.Internal("post directory request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, apperr.NotFound(fmt.Sprintf("post %q not found", postID.String()))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apperr.Internal(fmt.Sprintf("post directory returned status %d", resp.StatusCode), nil)
	}

	var post entities.InternalPost
	if err := sonic.ConfigDefault.NewDecoder(resp.Body).Decode(&post); err != nil {
		return nil, apperr.Internal("failed to decode post directory response", err)
	}
	return &post, nil
}

// UserPosts fetches the caller's recent posts, used by FrequentlyUsed.
func (d *HTTPPostDirectory) UserPosts(ctx context.Context, user entities.AuthUser) ([]*entities.InternalPost, error) {
	ctx, cancel := withDeadline(ctx, d.timeout)
	defer cancel()

	body, err := sonic.Marshal(map[string]string{"user_id": user.ID.String()})
	if err != nil {
		return nil, apperr.Internal("failed to encode user_posts request", err)
	}

	url := fmt.Sprintf("%s/user_posts", d.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, apperr.Internal("failed to build user_posts request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, apperr.Internal("user_posts request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperr.Internal(fmt.Sprintf("post directory returned status %d", resp.StatusCode), nil)
	}

	var posts []*entities.InternalPost
	if err := sonic.ConfigDefault.NewDecoder(resp.Body).Decode(&posts); err != nil {
		return nil, apperr.Internal("failed to decode user_posts response", err)
	}
	return posts, nil
}
