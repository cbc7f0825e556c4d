package imports

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/freitasmatheusrn/fleamarket-inventory/internal/user"
	"github.com/freitasmatheusrn/fleamarket-inventory/pkg/rest"
	"github.com/labstack/echo/v4"
)

type Handler struct {
	service Service
	timeout time.Duration
}

// NewHandler takes the outer time ceiling applied to each import run.
func NewHandler(service Service, timeout time.Duration) *Handler {
	return &Handler{service: service, timeout: timeout}
}

// ImportSpreadsheet handles POST /products/import
func (h *Handler) ImportSpreadsheet(c echo.Context) error {
	input, apiErr := h.readInput(c)
	if apiErr != nil {
		return apiErr
	}

	ctx, cancel := h.runContext(c)
	defer cancel()

	result, apiErr := h.service.Import(ctx, input)
	if apiErr != nil {
		return apiErr
	}
	return c.JSON(http.StatusOK, result)
}

// ImportSpreadsheetSSE handles POST /products/import-stream
// Same as ImportSpreadsheet with progress pushed as server-sent events.
func (h *Handler) ImportSpreadsheetSSE(c echo.Context) error {
	input, apiErr := h.readInput(c)
	if apiErr != nil {
		return apiErr
	}

	flusher, ok := c.Response().Writer.(http.Flusher)
	if !ok {
		return rest.NewInternalServerError("ストリーミングに対応していません")
	}

	c.Response().Header().Set("Content-Type", "text/event-stream")
	c.Response().Header().Set("Cache-Control", "no-cache")
	c.Response().Header().Set("Connection", "keep-alive")
	c.Response().Header().Set("X-Accel-Buffering", "no")
	c.Response().WriteHeader(http.StatusOK)

	eventChan := make(chan ImportProgressEvent, 10)
	done := make(chan struct{})

	onProgress := func(event ImportProgressEvent) {
		select {
		case eventChan <- event:
		case <-done:
		}
	}

	ctx, cancel := h.runContext(c)
	go func() {
		defer cancel()
		defer close(eventChan)
		h.service.ImportWithProgress(ctx, input, onProgress)
	}()

	for {
		select {
		case event, ok := <-eventChan:
			if !ok {
				return nil
			}

			data, err := json.Marshal(event)
			if err != nil {
				continue
			}

			fmt.Fprintf(c.Response(), "event: %s\n", event.Type)
			fmt.Fprintf(c.Response(), "data: %s\n\n", data)
			flusher.Flush()

			if event.Type == ImportEventComplete || event.Type == ImportEventFailed {
				close(done)
				return nil
			}

		case <-c.Request().Context().Done():
			close(done)
			return nil
		}
	}
}

// LatestImport handles GET /products/import/latest
func (h *Handler) LatestImport(c echo.Context) error {
	currentUser, err := user.GetCurrentUser(c)
	if err != nil {
		return rest.NewUnauthorizedRequestError(msgLoginRequired)
	}

	result, apiErr := h.service.Latest(c.Request().Context(), currentUser.UserID)
	if apiErr != nil {
		return apiErr
	}
	return c.JSON(http.StatusOK, result)
}

func (h *Handler) readInput(c echo.Context) (ImportInput, *rest.ApiErr) {
	currentUser, err := user.GetCurrentUser(c)
	if err != nil {
		return ImportInput{}, rest.NewUnauthorizedRequestError(msgLoginRequired)
	}

	input := ImportInput{
		UserID:       currentUser.UserID,
		ExcelPath:    c.FormValue("excelPath"),
		ZipPath:      c.FormValue("zipPath"),
		SkipFirstRow: c.FormValue("skipFirstRow") == "true",
	}

	if input.ExcelPath == "" {
		if fh, err := c.FormFile("file"); err == nil {
			data, err := readFormFile(fh)
			if err != nil {
				return ImportInput{}, rest.NewBadRequestError("ファイルを開けませんでした")
			}
			input.Spreadsheet = data
			input.FileName = fh.Filename
		}
	}
	if input.ZipPath == "" {
		if fh, err := c.FormFile("archive"); err == nil {
			data, err := readFormFile(fh)
			if err != nil {
				return ImportInput{}, rest.NewBadRequestError("ZIPファイルを開けませんでした")
			}
			input.Archive = data
		}
	}
	return input, nil
}

func (h *Handler) runContext(c echo.Context) (context.Context, context.CancelFunc) {
	if h.timeout <= 0 {
		return context.WithCancel(c.Request().Context())
	}
	return context.WithTimeout(c.Request().Context(), h.timeout)
}

func readFormFile(fh *multipart.FileHeader) ([]byte, error) {
	src, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()
	return io.ReadAll(src)
}
