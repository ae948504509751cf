package authorize

import (
	"strings"
	"testing"

	. "github.com/onsi/gomega"

	"github.com/intrafind/ihub-apps-sub004/internal/client"
	"github.com/intrafind/ihub-apps-sub004/internal/store"
)

func TestRenderConsentPage(t *testing.T) {
	g := NewWithT(t)

	c := &client.Client{ID: "app1", Name: "App One"}
	req := &store.AuthorizationRequest{
		ClientID:    "app1",
		RedirectURI: "https://app1.example/cb",
		State:       "xyz",
		Nonce:       "n-1",
	}

	page, err := renderConsentPage(c, []string{"openid", "email", "reports:read"}, "csrf-token", req)

	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(page).To(HavePrefix("<!DOCTYPE html>"))
	g.Expect(page).To(ContainSubstring("<strong>App One</strong> wants to access your account"))
	g.Expect(page).To(ContainSubstring(scopeDescriptions["openid"]))
	g.Expect(page).To(ContainSubstring(scopeDescriptions["email"]))
	g.Expect(page).To(ContainSubstring(`<li><span class="scope">reports:read</span></li>`))
	g.Expect(page).To(ContainSubstring(`action="/api/oauth/authorize/decision"`))
	g.Expect(page).To(ContainSubstring(`name="_csrf" value="csrf-token"`))
	g.Expect(page).To(ContainSubstring(`name="client_id" value="app1"`))
	g.Expect(page).To(ContainSubstring(`name="redirect_uri" value="https://app1.example/cb"`))
	g.Expect(page).To(ContainSubstring(`name="state" value="xyz"`))
	g.Expect(page).To(ContainSubstring(`name="scope" value="openid email reports:read"`))
	g.Expect(page).To(ContainSubstring(`name="nonce" value="n-1"`))
	g.Expect(page).To(ContainSubstring(`name="decision" value="allow"`))
	g.Expect(page).To(ContainSubstring(`name="decision" value="deny"`))
	g.Expect(page).ToNot(ContainSubstring("<script"))
	g.Expect(page).ToNot(ContainSubstring("<link"))
}

func TestRenderConsentPage_Escaping(t *testing.T) {
	g := NewWithT(t)

	c := &client.Client{ID: "evil", Name: `<script>alert("name")</script>`}
	req := &store.AuthorizationRequest{
		ClientID:    "evil",
		RedirectURI: "https://evil.example/cb",
		State:       `"><script>alert(1)</script>`,
		Nonce:       `' onmouseover='x`,
	}

	page, err := renderConsentPage(c, []string{"<img src=x onerror=alert(1)>"}, "csrf", req)

	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(page).ToNot(ContainSubstring("<script>"))
	g.Expect(page).ToNot(ContainSubstring("<img"))
	g.Expect(page).ToNot(ContainSubstring(`"><script>`))
	g.Expect(page).ToNot(ContainSubstring(`' onmouseover='`))
	g.Expect(page).To(ContainSubstring("&lt;script&gt;alert(&#34;name&#34;)&lt;/script&gt;"))
	g.Expect(strings.Count(page, "<form")).To(Equal(1))
}

func TestRenderConsentPage_NameFallback(t *testing.T) {
	g := NewWithT(t)

	page, err := renderConsentPage(&client.Client{ID: "app1"}, []string{"openid"}, "csrf",
		&store.AuthorizationRequest{ClientID: "app1"})

	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(page).To(ContainSubstring("<strong>app1</strong>"))
}
