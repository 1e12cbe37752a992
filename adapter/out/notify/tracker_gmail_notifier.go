package notify

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"time"

	"tracker_server/pkg/metrics"
	"tracker_server/pkg/resilience"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

type GmailConfig struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	From         string
	Endpoint     string       // optional API base URL override
	HTTPClient   *http.Client // replaces the OAuth client when set
}

// GmailNotifier sends mail as the account that owns the refresh token.
type GmailNotifier struct {
	from string
	svc  *gmail.Service
	cb   *resilience.Breaker
}

// NewGmailNotifier builds the Gmail service once; the token source refreshes
// the access token as needed.
func NewGmailNotifier(ctx context.Context, cfg GmailConfig) (*GmailNotifier, error) {
	config := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Scopes:       []string{gmail.GmailSendScope},
		Endpoint:     google.Endpoint,
	}
	ts := config.TokenSource(context.Background(), &oauth2.Token{RefreshToken: cfg.RefreshToken})

	opts := []option.ClientOption{option.WithTokenSource(ts)}
	if cfg.HTTPClient != nil {
		opts = []option.ClientOption{option.WithHTTPClient(cfg.HTTPClient)}
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}
	svc, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gmail service: %w", err)
	}

	return &GmailNotifier{
		from: cfg.From,
		svc:  svc,
		cb:   resilience.NewBreaker(resilience.DefaultConfig("gmail-api")),
	}, nil
}

func (n *GmailNotifier) Send(ctx context.Context, to, subject, body string) error {
	raw, err := buildMessage(n.from, to, subject, body, time.Now())
	if err != nil {
		return err
	}
	msg := &gmail.Message{Raw: base64.URLEncoding.EncodeToString(raw)}

	start := time.Now()
	err = n.cb.Execute(func() error {
		_, apiErr := n.svc.Users.Messages.Send("me", msg).Context(ctx).Do()
		return classifyGoogleError(apiErr)
	})
	metrics.RecordUpstream("gmail", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("gmail send: %w", err)
	}
	return nil
}

// classifyGoogleError keeps 4xx responses from tripping the breaker.
func classifyGoogleError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case 400, 401, 403, 404:
			return resilience.ClientError(err)
		}
	}
	return err
}
