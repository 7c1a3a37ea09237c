package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
	apicreds "github.com/opsdeck/opsdeck/api/types/credentials"
	apierr "github.com/opsdeck/opsdeck/api/types/errors"
	"github.com/opsdeck/opsdeck/pkg/domain/credential"
	kcreddb "github.com/opsdeck/opsdeck/pkg/domain/credential/db"
)

// CreateCredentialHandler stores an uploaded service-account key.
//
// When the request carries no project id, the key itself is scanned for
// one. A key whose project cannot be resolved is accepted but not stored:
// the response then has an empty cloud_provider_credentials_id and the
// caller is expected to retry with a fixed key.
func CreateCredentialHandler(store kcreddb.Interface) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		req := apicreds.Request{}
		decoder := json.NewDecoder(c.Request().Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&req); err != nil {
			return apierr.NewErrorMessage(
				http.StatusBadRequest,
				"format error",
				apierr.WithAdvice(err.Error()),
				apierr.WithError(err),
			)
		}
		if req.KeyData == "" {
			return apierr.BadRequest("key_data is required", nil)
		}

		projectID := req.ProjectID
		if projectID == "" {
			detection := credential.DetectProject([]byte(req.KeyData))
			if !detection.Detected {
				return c.JSON(http.StatusOK, apicreds.Response{})
			}
			projectID = detection.ProjectID
		}

		cred, err := store.Store(ctx, projectID, []byte(req.KeyData))
		if err != nil {
			return apierr.InternalServerError(err)
		}

		return c.JSON(http.StatusOK, apicreds.Response{
			CloudProviderCredentialsID: cred.ID,
		})
	}
}

// DetectCredentialHandler scans an uploaded key without storing anything.
func DetectCredentialHandler() echo.HandlerFunc {
	return func(c echo.Context) error {
		req := apicreds.DetectRequest{}
		decoder := json.NewDecoder(c.Request().Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&req); err != nil {
			return apierr.NewErrorMessage(
				http.StatusBadRequest,
				"format error",
				apierr.WithAdvice(err.Error()),
				apierr.WithError(err),
			)
		}

		detection := credential.DetectProject([]byte(req.KeyData))
		return c.JSON(http.StatusOK, apicreds.Detection{
			Detected:  detection.Detected,
			ProjectID: detection.ProjectID,
			Message:   detection.Message,
		})
	}
}
