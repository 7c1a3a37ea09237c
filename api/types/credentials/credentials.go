package credentials

// Request is the body of the credential submission endpoint.
//
// KeyData is the uploaded service-account key, verbatim. ProjectID may be
// empty; the server then falls back to the project id detected in KeyData.
type Request struct {
	KeyData   string `json:"key_data"`
	ProjectID string `json:"project_id"`
}

// Response carries the stored credential's id.
//
// An empty CloudProviderCredentialsID signals a recoverable failure: the
// submission was accepted but nothing was stored, and the caller may retry.
type Response struct {
	CloudProviderCredentialsID string `json:"cloud_provider_credentials_id"`
}

// DetectRequest is the body of the detection endpoint.
type DetectRequest struct {
	KeyData string `json:"key_data"`
}

// Detection reports whether a project id was found in an uploaded key.
type Detection struct {
	Detected  bool   `json:"detected"`
	ProjectID string `json:"project_id,omitempty"`
	Message   string `json:"message"`
}
