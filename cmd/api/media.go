package main

import (
	"context"
	"io"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// mediaStore abstracts the image CDN behind the two operations the handlers
// need, so a failed batch can be rolled back and tests can stub the network.
type mediaStore interface {
	Upload(ctx context.Context, r io.Reader, name string) (url, publicID string, err error)
	Destroy(ctx context.Context, publicID string) error
}

type cloudinaryMedia struct {
	cld    *cloudinary.Cloudinary
	folder string
}

func newCloudinaryMedia(cld *cloudinary.Cloudinary, folder string) *cloudinaryMedia {
	return &cloudinaryMedia{cld: cld, folder: folder}
}

func (m *cloudinaryMedia) Upload(ctx context.Context, r io.Reader, name string) (string, string, error) {
	result, err := m.cld.Upload.Upload(ctx, r, uploader.UploadParams{
		Folder:   m.folder,
		PublicID: name,
	})
	if err != nil {
		return "", "", err
	}
	return result.SecureURL, result.PublicID, nil
}

func (m *cloudinaryMedia) Destroy(ctx context.Context, publicID string) error {
	_, err := m.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	return err
}

// removeImages destroys uploaded assets left over from a failed batch. It
// runs off the request path; the request context is about to die with the
// error response.
func (app *application) removeImages(publicIDs []string) {
	if len(publicIDs) == 0 {
		return
	}
	ids := append([]string(nil), publicIDs...)
	app.background(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		for _, id := range ids {
			if err := app.media.Destroy(ctx, id); err != nil {
				app.logger.Errorw("orphaned image cleanup failed", "public_id", id, "error", err)
			}
		}
	})
}
