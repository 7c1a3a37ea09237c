package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	apicreds "github.com/opsdeck/opsdeck/api/types/credentials"
	apierrors "github.com/opsdeck/opsdeck/api/types/errors"
	apistacks "github.com/opsdeck/opsdeck/api/types/stacks"
	"github.com/opsdeck/opsdeck/pkg/domain/stack"
	kstrings "github.com/opsdeck/opsdeck/pkg/utils/strings"
)

// fallback shown when the server gives no usable reason.
const genericErrorMessage = "something went wrong"

// ErrCredentialNotStored means the server accepted the submission but
// stored nothing. The caller should fix the key and submit again.
var ErrCredentialNotStored = errors.New("credential not stored")

// Client talks to the deckd API.
type Client struct {
	base   string
	client *http.Client
}

func NewClient(base string, client *http.Client) *Client {
	if client == nil {
		client = http.DefaultClient
	}
	return &Client{base: base, client: client}
}

// StreamURL is where the job-run stream of the scope lives.
func (c *Client) StreamURL(scope stack.Scope) string {
	return fmt.Sprintf(
		"%s/api/projects/%s/clusters/%s/namespaces/%s/jobs/stream/",
		c.base, scope.ProjectID, scope.ClusterID, scope.Namespace,
	)
}

// SubmitCredentials uploads a service-account key.
//
// return: the stored credential id. ErrCredentialNotStored when the server
// answered with an empty id; the submission can be retried.
func (c *Client) SubmitCredentials(ctx context.Context, projectID string, req apicreds.Request) (string, error) {
	url := fmt.Sprintf("%s/api/projects/%s/credentials/", c.base, projectID)

	resp, err := c.postJSON(ctx, url, req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", errors.New(ParseAPIError(body))
	}

	var parsed apicreds.Response
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("broken response: %w", err)
	}
	if parsed.CloudProviderCredentialsID == "" {
		return "", ErrCredentialNotStored
	}
	return parsed.CloudProviderCredentialsID, nil
}

// DetectCredentials asks the server to scan a key without storing it.
func (c *Client) DetectCredentials(ctx context.Context, projectID string, keyData string) (apicreds.Detection, error) {
	url := fmt.Sprintf("%s/api/projects/%s/credentials/detect/", c.base, projectID)

	resp, err := c.postJSON(ctx, url, apicreds.DetectRequest{KeyData: keyData})
	if err != nil {
		return apicreds.Detection{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return apicreds.Detection{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return apicreds.Detection{}, errors.New(ParseAPIError(body))
	}

	var parsed apicreds.Detection
	if err := json.Unmarshal(body, &parsed); err != nil {
		return apicreds.Detection{}, fmt.Errorf("broken response: %w", err)
	}
	return parsed, nil
}

// ListStacks lists the stacks of the scope.
func (c *Client) ListStacks(ctx context.Context, scope stack.Scope) ([]apistacks.Stack, error) {
	url := fmt.Sprintf(
		"%s/api/projects/%s/clusters/%s/namespaces/%s/stacks/",
		c.base, scope.ProjectID, scope.ClusterID, scope.Namespace,
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.New(ParseAPIError(body))
	}

	var parsed []apistacks.Stack
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("broken response: %w", err)
	}
	return parsed, nil
}

// DeleteStack removes a stack by id.
func (c *Client) DeleteStack(ctx context.Context, scope stack.Scope, stackID string) error {
	url := fmt.Sprintf(
		"%s/api/projects/%s/clusters/%s/namespaces/%s/stacks/%s/",
		c.base, scope.ProjectID, scope.ClusterID, scope.Namespace, stackID,
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		return errors.New(ParseAPIError(body))
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, url string, payload interface{}) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.client.Do(req)
}

// ParseAPIError turns an error response body into a displayable message.
//
// The conventional "unknown: " prefix marks reasons that are not
// user-actionable; it is stripped. A body without a usable error field
// yields the generic message.
func ParseAPIError(body []byte) string {
	reason, ok := apierrors.Extract(body)
	if !ok {
		return genericErrorMessage
	}
	if stripped := kstrings.TrimPrefixAll(reason, "unknown: "); stripped != reason {
		if stripped == "" {
			return genericErrorMessage
		}
		return stripped
	}
	return reason
}
