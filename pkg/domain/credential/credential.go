package credential

import (
	"encoding/json"
	"time"
)

// Credential is a stored cloud-provider service account key.
type Credential struct {
	ID        string
	ProjectID string
	KeyData   []byte
	CreatedAt time.Time
}

// Detection is the outcome of scanning an uploaded key for a project id.
type Detection struct {
	Detected  bool
	ProjectID string
	Message   string
}

// DetectProject scans keyData, a service-account key file, for the project
// it belongs to. Any malformed input yields a non-detected result, never an
// error: detection failing is an expected outcome of the onboarding flow.
func DetectProject(keyData []byte) Detection {
	var key struct {
		ProjectID string `json:"project_id"`
	}
	if err := json.Unmarshal(keyData, &key); err != nil {
		return Detection{Message: "key file is not valid JSON"}
	}
	if key.ProjectID == "" {
		return Detection{Message: "no project id found in key file"}
	}
	return Detection{
		Detected:  true,
		ProjectID: key.ProjectID,
		Message:   `detected project id "` + key.ProjectID + `"`,
	}
}
