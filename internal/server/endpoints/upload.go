package endpoints

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"

	"github.com/jackzampolin/tagsheet/internal/document"
	"github.com/jackzampolin/tagsheet/internal/tags"
)

const defaultMaxUpload = 64 << 20 // 64MB

// docRequest is a document decoded from a request body.
type docRequest struct {
	doc  *document.Document
	form url.Values // multipart fields; nil for JSON bodies
	body []byte     // raw JSON body; nil for multipart
}

// readDocument accepts either a JSON page payload or a multipart upload
// with the document in field "file". Returns the HTTP status to use on error.
func readDocument(w http.ResponseWriter, r *http.Request, maxBytes int64) (*docRequest, int, error) {
	if maxBytes <= 0 {
		maxBytes = defaultMaxUpload
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		return readMultipart(r)
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, bodyStatus(err), fmt.Errorf("failed to read body: %w", err)
	}
	in, err := document.DecodePagesJSON(body)
	if err != nil {
		return nil, http.StatusBadRequest, err
	}
	name := in.FileName
	if name == "" {
		name = "pages.json"
	}
	return &docRequest{
		doc: &document.Document{
			Source: tags.Source{FileName: name, SizeBytes: int64(len(body))},
			Pages:  in.Pages,
		},
		body: body,
	}, 0, nil
}

func readMultipart(r *http.Request) (*docRequest, int, error) {
	const maxMemory = 32 << 20
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		return nil, bodyStatus(err), fmt.Errorf("failed to parse form: %w", err)
	}
	defer r.MultipartForm.RemoveAll()

	f, fh, err := r.FormFile("file")
	if err != nil {
		return nil, http.StatusBadRequest, errors.New("no file uploaded")
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, http.StatusInternalServerError, fmt.Errorf("failed to read uploaded file: %w", err)
	}
	doc, err := document.Decode(fh.Filename, data, fh.Size)
	if err != nil {
		return nil, http.StatusBadRequest, err
	}
	return &docRequest{doc: doc, form: url.Values(r.MultipartForm.Value)}, 0, nil
}

func bodyStatus(err error) int {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}
