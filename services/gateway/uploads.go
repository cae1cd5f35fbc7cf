package gatewaysvc

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/pkg/errors"

	"github.com/trezcool/ratiba/core"
)

// UploadFile sends a document as multipart form data.
func (gw *HTTPGateway) UploadFile(ctx context.Context, typ, filename string, content io.Reader, notes string) (core.Upload, error) {
	op := "POST /uploads"

	body := new(bytes.Buffer)
	w := multipart.NewWriter(body)
	if err := w.WriteField("type", typ); err != nil {
		return core.Upload{}, errors.Wrapf(err, "%s: writing form", op)
	}
	if notes != "" {
		if err := w.WriteField("notes", notes); err != nil {
			return core.Upload{}, errors.Wrapf(err, "%s: writing form", op)
		}
	}
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return core.Upload{}, errors.Wrapf(err, "%s: writing form", op)
	}
	if _, err = io.Copy(part, content); err != nil {
		return core.Upload{}, errors.Wrapf(err, "%s: copying file", op)
	}
	if err = w.Close(); err != nil {
		return core.Upload{}, errors.Wrapf(err, "%s: closing form", op)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, gw.baseURL+"/uploads", body)
	if err != nil {
		return core.Upload{}, errors.Wrapf(err, "%s: building request", op)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	var up core.Upload
	if err = gw.send(req, op, &up, true); err != nil {
		return core.Upload{}, err
	}
	return up, nil
}

func (gw *HTTPGateway) Uploads(ctx context.Context, typ string) ([]core.Upload, error) {
	params := make(url.Values)
	if typ != "" {
		params.Set("type", typ)
	}

	var ups []core.Upload
	if err := gw.do(ctx, http.MethodGet, queryPath("/uploads", params), nil, &ups, true); err != nil {
		return nil, err
	}
	return ups, nil
}

func (gw *HTTPGateway) DeleteUpload(ctx context.Context, id core.ID) error {
	return gw.do(ctx, http.MethodDelete, "/uploads/"+pathEscape(id), nil, nil, true)
}
