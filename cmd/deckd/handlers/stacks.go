package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	apierr "github.com/opsdeck/opsdeck/api/types/errors"
	apistacks "github.com/opsdeck/opsdeck/api/types/stacks"
	kerr "github.com/opsdeck/opsdeck/pkg/domain/errors"
	"github.com/opsdeck/opsdeck/pkg/domain/stack"
	kstackdb "github.com/opsdeck/opsdeck/pkg/domain/stack/db"
	"github.com/opsdeck/opsdeck/pkg/utils/slices"
)

func scopeFromPath(c echo.Context, projectKey, clusterKey, namespaceKey string) stack.Scope {
	return stack.Scope{
		ProjectID: c.Param(projectKey),
		ClusterID: c.Param(clusterKey),
		Namespace: c.Param(namespaceKey),
	}
}

func ListStacksHandler(dbStack kstackdb.Interface, projectKey, clusterKey, namespaceKey string) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		scope := scopeFromPath(c, projectKey, clusterKey, namespaceKey)

		found, err := dbStack.List(ctx, scope)
		if err != nil {
			return apierr.InternalServerError(err)
		}
		return c.JSON(http.StatusOK, slices.Map(found, apistacks.ComposeStack))
	}
}

func CreateStackHandler(dbStack kstackdb.Interface, projectKey, clusterKey, namespaceKey string) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		scope := scopeFromPath(c, projectKey, clusterKey, namespaceKey)

		req := apistacks.CreateRequest{}
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
		if req.Name == "" {
			return apierr.BadRequest("name is required", nil)
		}

		created, err := dbStack.Create(ctx, scope, req.Name)
		if errors.Is(err, kerr.ErrConflict) {
			return apierr.Conflict("a stack with the same name already exists", apierr.WithError(err))
		} else if err != nil {
			return apierr.InternalServerError(err)
		}

		return c.JSON(http.StatusOK, apistacks.ComposeStack(created))
	}
}

func DeleteStackHandler(dbStack kstackdb.Interface, projectKey, clusterKey, namespaceKey, stackIdKey string) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		scope := scopeFromPath(c, projectKey, clusterKey, namespaceKey)
		stackId := c.Param(stackIdKey)

		if err := dbStack.Delete(ctx, scope, stackId); errors.Is(err, kerr.ErrMissing) {
			return apierr.NotFound()
		} else if err != nil {
			return apierr.InternalServerError(err)
		}

		return c.NoContent(http.StatusNoContent)
	}
}
