// Package uploads sends planning documents (degree pathways, transcripts,
// current schedules) to the backend for processing.
package uploads

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/ratiba/core"
)

// Document kinds as the student names them, mapped to the backend's upload
// types.
const (
	KindPathway  = "pathway"
	KindPrevious = "previous"
	KindCurrent  = "current"
)

var backendTypes = map[string]string{
	KindPathway:  "pathway-plan",
	KindPrevious: "previous-classes",
	KindCurrent:  "current-semester",
}

var allowedExtensions = map[string]struct{}{
	".pdf":  {},
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".csv":  {},
}

var (
	ErrUnknownKind     = errors.New("unknown document kind")
	ErrUnsupportedFile = errors.New("unsupported file type")
)

type Service struct {
	gw  core.UploadGateway
	log core.Logger
}

func NewService(gw core.UploadGateway, log core.Logger) *Service {
	return &Service{gw: gw, log: log}
}

// BackendType resolves a document kind to the backend's upload type.
func BackendType(kind string) (string, error) {
	typ, ok := backendTypes[strings.ToLower(strings.TrimSpace(kind))]
	if !ok {
		return "", errors.Wrapf(ErrUnknownKind, "%q", kind)
	}
	return typ, nil
}

// Upload sends a document to the backend under the given kind.
func (svc *Service) Upload(ctx context.Context, kind, filename string, content io.Reader, notes string) (core.Upload, error) {
	typ, err := BackendType(kind)
	if err != nil {
		return core.Upload{}, err
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := allowedExtensions[ext]; !ok {
		return core.Upload{}, errors.Wrapf(ErrUnsupportedFile, "%q", ext)
	}

	up, err := svc.gw.UploadFile(ctx, typ, filepath.Base(filename), content, core.CleanString(notes))
	if err != nil {
		return core.Upload{}, errors.Wrapf(err, "uploading %q", filename)
	}
	return up, nil
}

// List returns uploads of one kind, or all kinds when kind is empty.
func (svc *Service) List(ctx context.Context, kind string) ([]core.Upload, error) {
	var typ string
	if kind != "" {
		var err error
		if typ, err = BackendType(kind); err != nil {
			return nil, err
		}
	}
	ups, err := svc.gw.Uploads(ctx, typ)
	if err != nil {
		return nil, errors.Wrap(err, "listing uploads")
	}
	return ups, nil
}

func (svc *Service) Delete(ctx context.Context, id core.ID) error {
	return errors.Wrap(svc.gw.DeleteUpload(ctx, id), "deleting upload")
}
