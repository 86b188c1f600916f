package server

import (
	"bytes"
	"fmt"
	"time"

	"microblog/internal/featureflags"
	"microblog/internal/models"
	"microblog/internal/spreadsheet"

	"github.com/gofiber/fiber/v2"
)

func (s *Server) uploadLimit() int {
	return s.config.ImportMaxUploadMB * 1024 * 1024
}

// ImportForm handles GET /import
// @Summary Spreadsheet upload form
// @Tags metrics
// @Produce json
// @Success 200 {object} object{form=string,field=string,formats=[]string}
// @Router /import [get]
func (s *Server) ImportForm(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"title":     "Upload a spreadsheet",
		"form":      "import",
		"field":     "file",
		"formats":   []string{string(spreadsheet.FormatXLSX), string(spreadsheet.FormatCSV)},
		"columns":   spreadsheet.MetricColumns(),
		"max_bytes": s.uploadLimit(),
	})
}

// Import handles POST /import
// @Summary Import metrics
// @Description Creates one metric per data row of the uploaded spreadsheet. Either every row is stored or none is.
// @Tags metrics
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "xlsx or csv spreadsheet with the metric header row"
// @Success 201 {object} object{imported=int,redirect=string}
// @Failure 400 {object} models.ErrorResponse
// @Failure 413 {object} models.ErrorResponse
// @Router /import [post]
func (s *Server) Import(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("A spreadsheet must be uploaded in the 'file' field"))
	}
	if fh.Size > int64(s.uploadLimit()) {
		return models.RespondWithError(c, fiber.StatusRequestEntityTooLarge,
			models.NewValidationError(fmt.Sprintf("Spreadsheets are limited to %d MB", s.config.ImportMaxUploadMB)))
	}

	f, err := fh.Open()
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
	}
	defer func() { _ = f.Close() }()

	var creatorID *uint
	if uid, ok := s.sessionUserID(c); ok {
		creatorID = &uid
	}

	n, err := s.importService.Import(c.UserContext(), fh.Filename, f, creatorID)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"imported": n,
		"flash":    fmt.Sprintf("Imported %d metrics.", n),
		"redirect": "/handson_view",
	})
}

// HandsonView handles GET /handson_view
// @Summary Metrics grid
// @Description The registry as a header plus rows. With ?format=xlsx or csv the grid is downloaded as a spreadsheet.
// @Tags metrics
// @Produce json,text/csv,application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param format query string false "xlsx or csv"
// @Success 200 {object} object{columns=[]string,rows=[][]string}
// @Failure 400 {object} models.ErrorResponse
// @Router /handson_view [get]
func (s *Server) HandsonView(c *fiber.Ctx) error {
	ctx := c.UserContext()

	if raw := c.Query("format"); raw != "" {
		uid, _ := s.sessionUserID(c)
		if !s.flags.Enabled(featureflags.SpreadsheetExport, uid) {
			return models.RespondWithError(c, fiber.StatusNotFound,
				models.NewNotFoundError("Export format", raw))
		}
		format, err := spreadsheet.ParseFormat(raw)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError(err.Error()))
		}

		var buf bytes.Buffer
		if err := s.importService.Export(ctx, format, &buf); err != nil {
			return respondError(c, err)
		}
		c.Attachment(fmt.Sprintf("metrics-%s.%s", time.Now().UTC().Format("20060102"), format))
		c.Set(fiber.HeaderContentType, format.ContentType())
		return c.Send(buf.Bytes())
	}

	columns, rows, err := s.importService.Grid(ctx)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"title":   "Metrics",
		"columns": columns,
		"rows":    rows,
	})
}
