package gateways

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"

	"github.com/siteage/siteage-platform/internal/config"
	"github.com/siteage/siteage-platform/internal/core/ports"
	client "github.com/siteage/siteage-platform/pkg/http"
)

const resendEndpoint = "https://api.resend.com/emails"

// ResendMailer delivers management links through the Resend API.
type ResendMailer struct {
	apiKey  string
	from    string
	siteURL string
	http    *client.Client
}

// NewResendMailer returns an EmailGateway backed by Resend.
func NewResendMailer(cfg config.Email, siteURL string, httpClient *client.Client) ports.EmailGateway {
	return &ResendMailer{
		apiKey:  cfg.ResendAPIKey,
		from:    cfg.From,
		siteURL: siteURL,
		http:    httpClient,
	}
}

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// SendMagicLink mails the management link for a freshly issued magic key.
func (m *ResendMailer) SendMagicLink(ctx context.Context, email, domainName, magicKey string) error {
	manageURL := fmt.Sprintf("%s/manage/%s?key=%s", m.siteURL, domainName, magicKey)

	payload, err := json.Marshal(resendRequest{
		From:    m.from,
		To:      []string{email},
		Subject: fmt.Sprintf("Management Link for %s - SiteAge.org", domainName),
		HTML:    magicLinkBody(domainName, manageURL, m.siteURL),
	})
	if err != nil {
		return errors.Wrap(err, "resend: marshalling request")
	}

	if _, err := m.http.Post(ctx, resendEndpoint, payload, map[string]string{
		"Authorization": "Bearer " + m.apiKey,
	}); err != nil {
		return errors.Wrap(err, "resend: sending magic link email")
	}
	return nil
}

func magicLinkBody(domainName, manageURL, siteURL string) string {
	return fmt.Sprintf(`
		<h2>Your SiteAge Management Link</h2>
		<p>You have successfully verified ownership of <strong>%s</strong>.</p>
		<p>Use the link below to manage your domain's settings:</p>
		<p><a href="%s">%s</a></p>
		<p>Keep this link safe; it grants access to your domain's management page.</p>
		<p>If you lost this link, you can request a new one at <a href="%s/verify/%s">%s/verify/%s</a>.</p>`,
		domainName, manageURL, manageURL, siteURL, domainName, siteURL, domainName)
}
