package utils

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	sdk "github.com/bitwarden/sdk-go"
)

const (
	bwsLoginAttempts  = 5
	bwsInitialBackoff = 500 * time.Millisecond
)

// SecretsSource yields the key/value secrets of a named project.
type SecretsSource interface {
	GetSecrets(projectName string) (map[string]string, error)
	Close()
}

// BWSSecretsClient reads secrets from Bitwarden Secrets Manager.
type BWSSecretsClient struct {
	bw    sdk.BitwardenClientInterface
	orgID string
}

// NewBWSSecretsClient authenticates with BWS_ACCESS_TOKEN against the public
// Bitwarden endpoints. Lookups are scoped to BWS_ORGANIZATION_ID.
func NewBWSSecretsClient() (*BWSSecretsClient, error) {
	token := strings.TrimSpace(os.Getenv("BWS_ACCESS_TOKEN"))
	orgID := strings.TrimSpace(os.Getenv("BWS_ORGANIZATION_ID"))
	switch {
	case token == "":
		return nil, errors.New("BWS_ACCESS_TOKEN is not set")
	case orgID == "":
		return nil, errors.New("BWS_ORGANIZATION_ID is not set")
	}

	bw, err := sdk.NewBitwardenClient(nil, nil)
	if err != nil {
		return nil, fmt.Errorf("create bitwarden client: %w", err)
	}
	err = retryRateLimited(bwsLoginAttempts, bwsInitialBackoff, time.Sleep, func() error {
		return bw.AccessTokenLogin(token, nil)
	})
	if err != nil {
		bw.Close()
		return nil, fmt.Errorf("bitwarden login: %w", err)
	}
	return &BWSSecretsClient{bw: bw, orgID: orgID}, nil
}

func (c *BWSSecretsClient) Close() {
	if c != nil && c.bw != nil {
		c.bw.Close()
	}
}

// GetSecrets returns every secret of the project named projectName
// (case-insensitive). A project with no secrets is an error.
func (c *BWSSecretsClient) GetSecrets(projectName string) (map[string]string, error) {
	if strings.TrimSpace(projectName) == "" {
		return nil, errors.New("empty bitwarden project name")
	}

	projects, err := c.bw.Projects().List(c.orgID)
	if err != nil {
		return nil, fmt.Errorf("list bitwarden projects: %w", err)
	}
	projectID := ""
	for _, p := range projects.Data {
		if strings.EqualFold(p.Name, projectName) {
			projectID = p.ID
			break
		}
	}
	if projectID == "" {
		return nil, fmt.Errorf("bitwarden project %q not found", projectName)
	}

	synced, err := c.bw.Secrets().Sync(c.orgID, nil)
	if err != nil {
		return nil, fmt.Errorf("sync bitwarden secrets: %w", err)
	}
	secrets := make(map[string]string)
	for _, s := range synced.Secrets {
		if s.ProjectID != nil && *s.ProjectID == projectID {
			secrets[s.Key] = s.Value
		}
	}
	if len(secrets) == 0 {
		return nil, fmt.Errorf("bitwarden project %q has no secrets", projectName)
	}
	Logger.WithField("project", projectName).Debugf("Loaded %d secrets from Bitwarden", len(secrets))
	return secrets, nil
}

// retryRateLimited calls fn up to attempts times, doubling the pause after
// each rate-limited failure. Any other error is returned at once.
func retryRateLimited(attempts int, backoff time.Duration, sleep func(time.Duration), fn func() error) error {
	var err error
	for i := 1; i <= attempts; i++ {
		if err = fn(); err == nil || !isRateLimited(err) {
			return err
		}
		if i < attempts {
			Logger.WithError(err).Warnf("Bitwarden rate limited, retrying in %s", backoff)
			sleep(backoff)
			backoff *= 2
		}
	}
	return fmt.Errorf("rate limited after %d attempts: %w", attempts, err)
}

// sdk-go does not expose status codes.
func isRateLimited(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "429") || strings.Contains(msg, "Too Many Requests")
}
