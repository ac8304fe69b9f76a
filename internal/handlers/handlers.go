package handlers

import (
	"encoding/json"
	"mime/multipart"
	"net/http"
	"strings"

	"rentflow/internal/common"
	"rentflow/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// payloadField carries the JSON body of a multipart request that also uploads files.
const payloadField = "payload"

type ListRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

func parseID(c echo.Context, param string) (uuid.UUID, error) {
	return common.ValidateUUID(c.Param(param), param)
}

func isMultipart(c echo.Context) bool {
	return strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm)
}

// bindPayload decodes a plain JSON body, or the payload field of a multipart form.
func bindPayload(c echo.Context, dst any) error {
	if !isMultipart(c) {
		return c.Bind(dst)
	}
	raw := c.FormValue(payloadField)
	if raw == "" {
		return nil
	}
	return json.Unmarshal([]byte(raw), dst)
}

// readUploads opens every file under field. The returned func closes them and is always safe to call.
func readUploads(c echo.Context, field string) ([]services.Upload, func(), error) {
	if !isMultipart(c) {
		return nil, func() {}, nil
	}
	form, err := c.MultipartForm()
	if err != nil {
		return nil, func() {}, echo.NewHTTPError(http.StatusBadRequest, "Invalid multipart form")
	}

	var opened []multipart.File
	closeAll := func() {
		for _, f := range opened {
			f.Close()
		}
	}

	headers := form.File[field]
	uploads := make([]services.Upload, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			closeAll()
			return nil, func() {}, echo.NewHTTPError(http.StatusBadRequest, "Unreadable upload "+fh.Filename)
		}
		opened = append(opened, f)
		uploads = append(uploads, services.Upload{
			Name:        fh.Filename,
			ContentType: fh.Header.Get(echo.HeaderContentType),
			Size:        fh.Size,
			Body:        f,
		})
	}
	return uploads, closeAll, nil
}

func actingUser(c echo.Context) *uuid.UUID {
	if id, ok := common.GetUserIDFromContext(c.Request().Context()); ok {
		return &id
	}
	return nil
}
