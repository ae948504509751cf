package authorize

import (
	_ "embed"
	"fmt"
	"html/template"
	"strings"

	"github.com/intrafind/ihub-apps-sub004/internal/client"
	"github.com/intrafind/ihub-apps-sub004/internal/constants"
	"github.com/intrafind/ihub-apps-sub004/internal/store"
)

//go:embed consent.html
var consentPageSource string

var consentPage = template.Must(template.New("consent").Parse(consentPageSource))

var scopeDescriptions = map[string]string{
	"openid":         "Verify your identity",
	"profile":        "View your basic profile information such as your name",
	"email":          "View your email address",
	"groups":         "View the groups you belong to",
	"offline_access": "Keep access to your data while you are not signed in",
}

type consentScope struct {
	Name        string
	Description string
}

type consentPageData struct {
	Action      string
	ClientName  string
	ClientID    string
	RedirectURI string
	State       string
	Scope       string
	Nonce       string
	CSRFToken   string
	Scopes      []consentScope
}

// renderConsentPage renders the consent screen. It has no side effects; every
// interpolated value goes through html/template escaping.
func renderConsentPage(c *client.Client, scopes []string, csrfToken string,
	req *store.AuthorizationRequest) (string, error) {

	data := consentPageData{
		Action:      constants.PathAuthorizeDecision,
		ClientName:  c.Name,
		ClientID:    req.ClientID,
		RedirectURI: req.RedirectURI,
		State:       req.State,
		Scope:       strings.Join(scopes, " "),
		Nonce:       req.Nonce,
		CSRFToken:   csrfToken,
	}
	if data.ClientName == "" {
		data.ClientName = c.ID
	}
	for _, s := range scopes {
		data.Scopes = append(data.Scopes, consentScope{Name: s, Description: scopeDescriptions[s]})
	}

	var b strings.Builder
	if err := consentPage.Execute(&b, data); err != nil {
		return "", fmt.Errorf("failed to render consent page: %w", err)
	}
	return b.String(), nil
}
