package endpoints

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/tagsheet/internal/api"
	"github.com/jackzampolin/tagsheet/internal/config"
	"github.com/jackzampolin/tagsheet/internal/pipeline"
	"github.com/jackzampolin/tagsheet/internal/svcctx"
	"github.com/jackzampolin/tagsheet/internal/tagsheet"
)

// XLSXContentType is the media type of generated workbooks.
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// TagSheetRequest is the JSON body for POST /api/tagsheet. Pages follow
// the same schema as /api/extract; project fields left empty fall back to
// the server configuration.
type TagSheetRequest struct {
	FileName string            `json:"file_name,omitempty"`
	Project  *tagsheet.Project `json:"project,omitempty"`
	Process  *tagsheet.Process `json:"process,omitempty"`
	Author   string            `json:"author,omitempty"`
}

// TagSheetEndpoint handles POST /api/tagsheet.
type TagSheetEndpoint struct {
	MaxUploadBytes int64
}

var _ api.Endpoint = (*TagSheetEndpoint)(nil)

func (e *TagSheetEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/tagsheet", e.handler
}

func (e *TagSheetEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Generate tag sheet
//	@Description	Extract tags and return the tag sheet workbook (.xlsx)
//	@Tags			tagsheet
//	@Accept			json,mpfd
//	@Produce		application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
//	@Param			request			body		TagSheetRequest	false	"Pages plus project details (JSON body)"
//	@Param			file			formData	file			false	"Document (multipart body)"
//	@Param			project			formData	string			false	"Project name"
//	@Param			client			formData	string			false	"Client name"
//	@Param			site			formData	string			false	"Default site code"
//	@Param			unit			formData	string			false	"Default unit code"
//	@Param			process			formData	string			false	"Process name"
//	@Param			process_site	formData	string			false	"Process site code"
//	@Param			process_unit	formData	string			false	"Process unit code"
//	@Param			author			formData	string			false	"Added By"
//	@Success		200				{file}		binary
//	@Failure		400				{object}	ErrorResponse
//	@Failure		500				{object}	ErrorResponse
//	@Failure		503				{object}	ErrorResponse
//	@Router			/api/tagsheet [post]
func (e *TagSheetEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	runner := svcctx.RunnerFrom(ctx)
	if runner == nil {
		writeError(w, http.StatusServiceUnavailable, "pipeline not initialized")
		return
	}

	req, status, err := readDocument(w, r, e.MaxUploadBytes)
	if err != nil {
		writeError(w, status, err.Error())
		return
	}

	var opts TagSheetRequest
	if req.form != nil {
		opts = formOptions(req.form)
	} else if err := json.Unmarshal(req.body, &opts); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}

	cfg := svcctx.ConfigFrom(ctx)
	author := opts.Author
	if author == "" {
		author = cfg.Author
	}

	out, err := runner.Generate(ctx, pipeline.GenerateRequest{
		Document: req.doc,
		Project:  mergeProject(cfg, opts.Project),
		Process:  opts.Process,
		Author:   author,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", XLSXContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": out.Artifact.FileName}))
	w.Header().Set("Content-Length", strconv.Itoa(len(out.Artifact.Bytes)))
	if out.Run != nil {
		w.Header().Set("X-Run-Id", out.Run.ID)
		w.Header().Set("X-Tag-Count", strconv.Itoa(out.Run.Catalogue.Summary.TotalTags))
	}
	w.WriteHeader(http.StatusOK)
	w.Write(out.Artifact.Bytes)
}

// formOptions reads project details from multipart fields.
func formOptions(form map[string][]string) TagSheetRequest {
	get := func(k string) string {
		if v := form[k]; len(v) > 0 {
			return v[0]
		}
		return ""
	}
	opts := TagSheetRequest{
		Project: &tagsheet.Project{
			Name:            get("project"),
			ClientName:      get("client"),
			SiteDefault:     get("site"),
			UnitCodeDefault: get("unit"),
		},
		Author: get("author"),
	}
	if name := get("process"); name != "" {
		opts.Process = &tagsheet.Process{
			Name:     name,
			Site:     get("process_site"),
			UnitCode: get("process_unit"),
		}
	}
	return opts
}

// mergeProject fills empty request fields from configuration.
func mergeProject(cfg *config.Config, p *tagsheet.Project) tagsheet.Project {
	out := cfg.ProjectInfo()
	if p == nil {
		return out
	}
	if p.Name != "" {
		out.Name = p.Name
	}
	if p.ClientName != "" {
		out.ClientName = p.ClientName
	}
	if p.SiteDefault != "" {
		out.SiteDefault = p.SiteDefault
	}
	if p.UnitCodeDefault != "" {
		out.UnitCodeDefault = p.UnitCodeDefault
	}
	return out
}

func (e *TagSheetEndpoint) Command(getServerURL func() string) *cobra.Command {
	var (
		fields = map[string]*string{}
		outDir string
	)
	cmd := &cobra.Command{
		Use:   "tagsheet <file>",
		Short: "Generate a tag sheet workbook on the server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			form := make(map[string]string, len(fields))
			for k, v := range fields {
				form[k] = *v
			}

			client := api.NewClient(getServerURL())
			dl, err := client.DownloadFile(cmd.Context(), "/api/tagsheet", args[0], form)
			if err != nil {
				return err
			}
			name := dl.FileName
			if name == "" {
				name = "TagSheet.xlsx"
			}
			path := filepath.Join(outDir, filepath.Base(name))
			if err := os.WriteFile(path, dl.Data, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", path, err)
			}
			return api.Output(map[string]any{"file": path, "bytes": len(dl.Data)})
		},
	}
	for _, f := range []struct{ name, usage string }{
		{"project", "Project name"},
		{"client", "Client name"},
		{"site", "Default site code"},
		{"unit", "Default unit code"},
		{"process", "Process name"},
		{"process_site", "Process site code"},
		{"process_unit", "Process unit code"},
		{"author", "Added By"},
	} {
		fields[f.name] = cmd.Flags().String(strings.ReplaceAll(f.name, "_", "-"), "", f.usage)
	}
	cmd.Flags().StringVar(&outDir, "dir", ".", "Directory to save the workbook in")
	return cmd
}
