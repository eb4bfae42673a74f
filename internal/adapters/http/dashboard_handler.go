package http

import (
	"bufio"
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/trude-tech/trude-carwash/internal/events"
	"github.com/trude-tech/trude-carwash/internal/ledger"
	"github.com/trude-tech/trude-carwash/internal/service"
)

// DashboardHandler handles dashboard and report HTTP requests
type DashboardHandler struct {
	reportService *service.ReportService
	eventBus      *events.EventBus
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(reportService *service.ReportService, eventBus *events.EventBus) *DashboardHandler {
	return &DashboardHandler{
		reportService: reportService,
		eventBus:      eventBus,
	}
}

// GetSummary returns the full dashboard payload for a filter
// GET /api/dashboard/summary
func (h *DashboardHandler) GetSummary(c *fiber.Ctx) error {
	spec, err := parseFilterSpec(c)
	if err != nil {
		return errorJSON(c, err)
	}

	data, err := h.reportService.Dashboard(c.Context(), spec)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(data)
}

// GetTrend returns the revenue trend series
// GET /api/dashboard/trend?granularity=day|week
func (h *DashboardHandler) GetTrend(c *fiber.Ctx) error {
	spec, err := parseFilterSpec(c)
	if err != nil {
		return errorJSON(c, err)
	}

	granularity := ledger.Granularity(c.Query("granularity", string(ledger.ByDay)))
	trend, err := h.reportService.Trend(c.Context(), spec, granularity)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(trend)
}

// GetPaymentMethodBreakdown returns revenue grouped by payment method
// GET /api/dashboard/payment-methods
func (h *DashboardHandler) GetPaymentMethodBreakdown(c *fiber.Ctx) error {
	spec, err := parseFilterSpec(c)
	if err != nil {
		return errorJSON(c, err)
	}

	data, err := h.reportService.Dashboard(c.Context(), spec)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(data.PaymentMethods)
}

// GetSourceBreakdown returns revenue grouped by sale source
// GET /api/dashboard/sources
func (h *DashboardHandler) GetSourceBreakdown(c *fiber.Ctx) error {
	spec, err := parseFilterSpec(c)
	if err != nil {
		return errorJSON(c, err)
	}

	data, err := h.reportService.Dashboard(c.Context(), spec)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(data.Sources)
}

// GetReport returns a materialized report, or an export of it when the
// format query parameter asks for one
// GET /api/reports/:kind?format=json|xlsx|pdf
func (h *DashboardHandler) GetReport(c *fiber.Ctx) error {
	spec, err := parseFilterSpec(c)
	if err != nil {
		return errorJSON(c, err)
	}

	kind := service.ReportKind(c.Params("kind"))
	report, err := h.reportService.BuildReport(c.Context(), kind, spec)
	if err != nil {
		return errorJSON(c, err)
	}

	switch c.Query("format", "json") {
	case "json":
		return c.JSON(report)

	case "pdf":
		payload, err := service.ExportPDF(report)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to render PDF",
			})
		}
		filename := fmt.Sprintf("%s-report-%s.pdf", kind, time.Now().Format("2006-01-02"))
		c.Set("Content-Type", "application/pdf")
		c.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		return c.Send(payload)

	case "xlsx":
		payload, err := service.ExportXLSX(report)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to render workbook",
			})
		}
		filename := fmt.Sprintf("%s-report-%s.xlsx", kind, time.Now().Format("2006-01-02"))
		c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		return c.Send(payload)

	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "unsupported format, expected json, pdf or xlsx",
		})
	}
}

// SSEEvents handles Server-Sent Events for real-time updates
// GET /api/dashboard/events
func (h *DashboardHandler) SSEEvents(c *fiber.Ctx) error {
	// Set headers for SSE
	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("Transfer-Encoding", "chunked")

	ctx, cancel := context.WithCancel(c.Context())
	defer cancel()

	// Subscribe to event bus
	subscriberID := uuid.New().String()
	eventChan := h.eventBus.Subscribe(ctx, subscriberID)

	// Send initial connection message
	c.Write([]byte("event: connected\ndata: {\"message\":\"connected\"}\n\n"))

	// Stream events
	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		// Send heartbeat every 30 seconds
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case event, ok := <-eventChan:
				if !ok {
					return
				}

				sseData, err := events.FormatSSE(event)
				if err != nil {
					fmt.Printf("Error formatting SSE: %v\n", err)
					continue
				}

				if _, err := w.Write([]byte(sseData)); err != nil {
					return
				}

				if err := w.Flush(); err != nil {
					return
				}

			case <-ticker.C:
				// Send heartbeat
				if _, err := w.Write([]byte(": heartbeat\n\n")); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					return
				}

			case <-ctx.Done():
				return
			}
		}
	})

	return nil
}
