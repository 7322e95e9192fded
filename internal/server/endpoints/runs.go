package endpoints

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/tagsheet/internal/api"
	"github.com/jackzampolin/tagsheet/internal/history"
	"github.com/jackzampolin/tagsheet/internal/svcctx"
)

// ListRunsResponse is the response for listing extraction runs.
type ListRunsResponse struct {
	Runs   []history.Run   `json:"runs"`
	Totals *history.Totals `json:"totals"`
}

// ListRunsEndpoint handles GET /api/runs.
type ListRunsEndpoint struct{}

var _ api.Endpoint = (*ListRunsEndpoint)(nil)

func (e *ListRunsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/runs", e.handler
}

func (e *ListRunsEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		List extraction runs
//	@Description	List recorded extraction runs, newest first
//	@Tags			runs
//	@Produce		json
//	@Param			file	query		string	false	"Only runs for this file name"
//	@Param			after	query		string	false	"Only runs created after this RFC 3339 time"
//	@Param			limit	query		int		false	"Maximum runs to return"
//	@Success		200		{object}	ListRunsResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Failure		503		{object}	ErrorResponse
//	@Router			/api/runs [get]
func (e *ListRunsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	store := svcctx.HistoryFrom(ctx)
	if store == nil {
		writeError(w, http.StatusServiceUnavailable, "run history is disabled")
		return
	}

	q := r.URL.Query()
	filter := history.Filter{FileName: q.Get("file")}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		filter.Limit = n
	}
	if v := q.Get("after"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid after: %v", err))
			return
		}
		filter.After = t
	}

	runs, err := store.List(ctx, filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	totals, err := store.Totals(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if runs == nil {
		runs = []history.Run{}
	}
	writeJSON(w, http.StatusOK, ListRunsResponse{Runs: runs, Totals: totals})
}

func (e *ListRunsEndpoint) Command(getServerURL func() string) *cobra.Command {
	var (
		file  string
		limit int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded extraction runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/runs?limit=" + strconv.Itoa(limit)
			if file != "" {
				path += "&file=" + url.QueryEscape(file)
			}
			client := api.NewClient(getServerURL())
			var resp ListRunsResponse
			if err := client.Get(cmd.Context(), path, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "Filter by file name")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum runs to list")
	return cmd
}

// GetRunEndpoint handles GET /api/runs/{id}.
type GetRunEndpoint struct{}

var _ api.Endpoint = (*GetRunEndpoint)(nil)

func (e *GetRunEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/runs/{id}", e.handler
}

func (e *GetRunEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Get extraction run
//	@Description	Get one recorded extraction run by ID
//	@Tags			runs
//	@Produce		json
//	@Param			id	path		string	true	"Run ID"
//	@Success		200	{object}	history.Run
//	@Failure		404	{object}	ErrorResponse
//	@Failure		503	{object}	ErrorResponse
//	@Router			/api/runs/{id} [get]
func (e *GetRunEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	store := svcctx.HistoryFrom(r.Context())
	if store == nil {
		writeError(w, http.StatusServiceUnavailable, "run history is disabled")
		return
	}

	id := r.PathValue("id")
	run, err := store.Get(r.Context(), id)
	if errors.Is(err, history.ErrNotFound) {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (e *GetRunEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Get an extraction run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var run history.Run
			if err := client.Get(cmd.Context(), "/api/runs/"+url.PathEscape(args[0]), &run); err != nil {
				return err
			}
			return api.Output(run)
		},
	}
}
