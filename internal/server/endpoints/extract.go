package endpoints

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/tagsheet/internal/api"
	"github.com/jackzampolin/tagsheet/internal/pipeline"
	"github.com/jackzampolin/tagsheet/internal/svcctx"
)

// ExtractEndpoint handles POST /api/extract.
type ExtractEndpoint struct {
	MaxUploadBytes int64
}

var _ api.Endpoint = (*ExtractEndpoint)(nil)

func (e *ExtractEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/extract", e.handler
}

func (e *ExtractEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Extract tags
//	@Description	Extract P&ID tags from JSON page text or an uploaded PDF/text document
//	@Tags			extract
//	@Accept			json,mpfd
//	@Produce		json
//	@Param			pages	body		document.PagesInput	false	"Page text (JSON body)"
//	@Param			file	formData	file				false	"Document to extract (multipart body)"
//	@Success		200		{object}	pipeline.Run
//	@Failure		400		{object}	ErrorResponse
//	@Failure		413		{object}	ErrorResponse
//	@Failure		503		{object}	ErrorResponse
//	@Router			/api/extract [post]
func (e *ExtractEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	runner := svcctx.RunnerFrom(r.Context())
	if runner == nil {
		writeError(w, http.StatusServiceUnavailable, "pipeline not initialized")
		return
	}

	req, status, err := readDocument(w, r, e.MaxUploadBytes)
	if err != nil {
		writeError(w, status, err.Error())
		return
	}

	run, err := runner.Extract(r.Context(), req.doc)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (e *ExtractEndpoint) Command(getServerURL func() string) *cobra.Command {
	var summaryOnly bool
	cmd := &cobra.Command{
		Use:   "extract <file>",
		Short: "Extract tags from a document on the server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var run pipeline.Run
			if err := client.PostFile(cmd.Context(), "/api/extract", args[0], nil, &run); err != nil {
				return err
			}
			if summaryOnly {
				return api.Output(map[string]any{
					"id":       run.ID,
					"document": run.Catalogue.Document,
					"summary":  run.Catalogue.Summary,
				})
			}
			return api.Output(run)
		},
	}
	cmd.Flags().BoolVar(&summaryOnly, "summary", false, "Print only the run summary")
	return cmd
}
