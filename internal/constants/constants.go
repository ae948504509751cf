package constants

const (
	IHubOAuth = "ihub-oauth"

	ParamClientID            = "client_id"
	ParamCodeChallenge       = "code_challenge"
	ParamCodeChallengeMethod = "code_challenge_method"
	ParamNonce               = "nonce"
	ParamPrompt              = "prompt"
	ParamRedirectURI         = "redirect_uri"
	ParamResponseType        = "response_type"
	ParamScope               = "scope"
	ParamState               = "state"
	ParamCSRF                = "_csrf"
	ParamDecision            = "decision"
	ParamReturnURL           = "returnUrl"

	ParamAuthorizationCode = "code"
	ParamError             = "error"
	ParamErrorDescription  = "error_description"

	DecisionAllow = "allow"
	DecisionDeny  = "deny"

	PromptNone    = "none"
	PromptConsent = "consent"

	AuthorizationServerCodeChallengeMethod = "S256"
	AuthorizationServerGrantType           = "authorization_code"
	AuthorizationServerResponseType        = "code"
	AuthorizationServerDefaultScope        = "openid"

	PathAuthorize         = "/api/oauth/authorize"
	PathAuthorizeDecision = "/api/oauth/authorize/decision"
)

// Error codes returned by the authorization endpoint (RFC 6749 §4.1.2.1, OIDC Core §3.1.2.6).
const (
	ErrInvalidRequest          = "invalid_request"
	ErrInvalidClient           = "invalid_client"
	ErrUnauthorizedClient      = "unauthorized_client"
	ErrUnsupportedResponseType = "unsupported_response_type"
	ErrInvalidScope            = "invalid_scope"
	ErrAccessDenied            = "access_denied"
	ErrLoginRequired           = "login_required"
	ErrConsentRequired         = "consent_required"
	ErrServerError             = "server_error"
)
