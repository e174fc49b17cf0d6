package api

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"miru/internal/booking"
	"miru/internal/metrics"
	"miru/internal/models"
	"miru/internal/pkg/response"
	"miru/internal/report"

	"github.com/gin-gonic/gin"
)

const (
	contentTypePDF  = "application/pdf"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type ReportHandler struct {
	service booking.Service
	now     func() time.Time
}

func NewReportHandler(service booking.Service) *ReportHandler {
	return &ReportHandler{service: service, now: time.Now}
}

// PDF streams the booking report.
func (h *ReportHandler) PDF(c *gin.Context) {
	list, err := h.service.ListForReport(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	now := h.now()
	var buf bytes.Buffer
	if err := report.WritePDF(&buf, report.Aggregate(list, models.DateOf(now)), now); err != nil {
		response.Error(c, err)
		return
	}
	metrics.IncExport("pdf")

	c.Header("Content-Disposition", attachment(report.PDFFilename(now)))
	c.Header("Cache-Control", "no-cache")
	c.Data(http.StatusOK, contentTypePDF, buf.Bytes())
}

// XLSX streams the spreadsheet export in list order.
func (h *ReportHandler) XLSX(c *gin.Context) {
	list, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	var buf bytes.Buffer
	if err := report.WriteXLSX(&buf, list); err != nil {
		response.Error(c, err)
		return
	}
	metrics.IncExport("xlsx")

	c.Header("Content-Disposition", attachment(report.XLSXFilename))
	c.Header("Cache-Control", "no-cache")
	c.Data(http.StatusOK, contentTypeXLSX, buf.Bytes())
}

func attachment(name string) string {
	return fmt.Sprintf(`attachment; filename="%s"`, name)
}
