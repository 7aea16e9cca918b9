package adapter

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/MKhiriev/go-lst-sync/internal/logger"
	"github.com/MKhiriev/go-lst-sync/internal/utils"
	"github.com/MKhiriev/go-lst-sync/models"
)

type httpACLClient struct {
	client *utils.HTTPClient
	token  string

	logger *logger.Logger
}

// NewACLClient constructs a REST [ACLClient] for the relay at address,
// authenticating every request with the bearer token.
func NewACLClient(address, token string, timeout time.Duration, logger *logger.Logger) (ACLClient, error) {
	baseURL, err := normalizeBaseURL(address)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}

	return &httpACLClient{
		client: utils.NewHTTPClient(baseURL, timeout),
		token:  strings.TrimSpace(token),
		logger: logger,
	}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

func aclPath(docID string) string {
	return "/api/documents/" + url.PathEscape(docID) + "/acl"
}

// GetACL implements [ACLClient].
func (h *httpACLClient) GetACL(ctx context.Context, docID string) ([]models.DocumentPermission, error) {
	var acl []models.DocumentPermission
	resp, err := h.client.R().
		SetContext(ctx).
		SetAuthToken(h.token).
		SetResult(&acl).
		Get(aclPath(docID))
	if err != nil {
		h.logger.Err(err).Str("func", "httpACLClient.GetACL").Str("doc_id", docID).Msg("request failed")
		return nil, fmt.Errorf("%w: %w", models.ErrTransientNetwork, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	return acl, nil
}

// Grant implements [ACLClient].
func (h *httpACLClient) Grant(ctx context.Context, docID, identity string, permission models.Permission) error {
	resp, err := h.client.R().
		SetContext(ctx).
		SetAuthToken(h.token).
		SetBody(models.GrantRequest{Permission: permission}).
		Put(aclPath(docID) + "/" + url.PathEscape(identity))
	if err != nil {
		h.logger.Err(err).Str("func", "httpACLClient.Grant").Str("doc_id", docID).Msg("request failed")
		return fmt.Errorf("%w: %w", models.ErrTransientNetwork, err)
	}

	return mapHTTPError(resp)
}

// Revoke implements [ACLClient].
func (h *httpACLClient) Revoke(ctx context.Context, docID, identity string) error {
	resp, err := h.client.R().
		SetContext(ctx).
		SetAuthToken(h.token).
		Delete(aclPath(docID) + "/" + url.PathEscape(identity))
	if err != nil {
		h.logger.Err(err).Str("func", "httpACLClient.Revoke").Str("doc_id", docID).Msg("request failed")
		return fmt.Errorf("%w: %w", models.ErrTransientNetwork, err)
	}

	return mapHTTPError(resp)
}
