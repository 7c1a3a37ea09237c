package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
	apierr "github.com/opsdeck/opsdeck/api/types/errors"
	apijobs "github.com/opsdeck/opsdeck/api/types/jobs"
	"github.com/opsdeck/opsdeck/pkg/domain/jobrun"
	k8sjob "github.com/opsdeck/opsdeck/pkg/domain/jobrun/k8s"
	"github.com/opsdeck/opsdeck/pkg/utils/slices"
)

// StreamJobRunsHandler streams the namespace's job runs as NDJSON.
//
// Each line is one record; the last line is always a terminal signal,
// "finished" after a complete sweep or "errored" when listing failed.
// Consumers must not trust any record until they see "finished".
func StreamJobRunsHandler(source k8sjob.Interface, namespaceKey string) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		namespace := c.Param(namespaceKey)

		records, listErr := source.ListRecords(ctx, namespace)

		resp := c.Response()
		resp.Header().Set("Content-Type", "application/x-ndjson")
		resp.WriteHeader(http.StatusOK)

		enc := json.NewEncoder(resp.Writer)

		if listErr != nil {
			return enc.Encode(apijobs.Signal{
				StreamStatus: apijobs.StreamErrored,
				Error:        listErr.Error(),
			})
		}

		for _, r := range records {
			if err := enc.Encode(apijobs.ComposeDetail(r)); err != nil {
				return err
			}
			resp.Flush()
		}
		return enc.Encode(apijobs.Signal{StreamStatus: apijobs.StreamFinished})
	}
}

// FindJobRunsHandler lists job runs, filtered and ordered by query params.
//
// ?status= takes failed, active, succeeded or all (default all).
// ?sort= takes Newest, Oldest or Alphabetical (default Newest).
func FindJobRunsHandler(source k8sjob.Interface, namespaceKey string) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		namespace := c.Param(namespaceKey)

		filter, err := jobrun.AsStatusFilter(c.QueryParam("status"))
		if err != nil {
			return apierr.BadRequest(`status should be one of: failed, active, succeeded, all`, err)
		}
		order, err := jobrun.AsSortOrder(c.QueryParam("sort"))
		if err != nil {
			return apierr.BadRequest(`sort should be one of: Newest, Oldest, Alphabetical`, err)
		}

		records, err := source.ListRecords(ctx, namespace)
		if err != nil {
			return apierr.InternalServerError(err)
		}

		found := order.Apply(filter.Apply(records))
		return c.JSON(http.StatusOK, slices.Map(found, apijobs.ComposeDetail))
	}
}
