package handler

import (
	"errors"
	"net/http"
	"os"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-ticket-booking/internal/apperr"
	"github.com/iliyamo/movie-ticket-booking/internal/storage"
)

// Upload stores the multipart "file" under the kind given by the "type"
// form field (images by default).
func (h *AdminHandler) Upload(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return apperr.Validation("No file part in request")
	}
	if fh.Filename == "" {
		return apperr.Validation("No file selected")
	}
	kind := strings.TrimSpace(c.FormValue("type"))
	if kind == "" {
		kind = storage.KindImages
	}
	src, err := fh.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	saved, err := h.Files.Save(kind, fh.Filename, src)
	switch {
	case errors.Is(err, storage.ErrKind):
		return apperr.Validation("Invalid upload type. Use images or videos")
	case errors.Is(err, storage.ErrExtension):
		return apperr.Validation("Invalid file type for %s", kind)
	case err != nil:
		return err
	}
	return ok(c, saved, "File uploaded successfully")
}

// ServeUploads serves files below the upload root. http.ServeContent
// answers Range requests with 206 Partial Content.
func ServeUploads(files *storage.Local) echo.HandlerFunc {
	return func(c echo.Context) error {
		p, err := files.Path(storage.URLPrefix + c.Param("*"))
		if err != nil {
			return apperr.NotFound("File not found")
		}
		f, err := os.Open(p)
		if err != nil {
			return apperr.NotFound("File not found")
		}
		defer f.Close()

		fi, err := f.Stat()
		if err != nil || fi.IsDir() {
			return apperr.NotFound("File not found")
		}
		http.ServeContent(c.Response(), c.Request(), fi.Name(), fi.ModTime(), f)
		return nil
	}
}
