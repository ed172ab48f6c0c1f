package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/StayBooks/stay_ledger_app/internal/apperrors"
	portssvc "github.com/StayBooks/stay_ledger_app/internal/core/ports/services"
	"github.com/StayBooks/stay_ledger_app/internal/dto"
	"github.com/StayBooks/stay_ledger_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// reportingHandler handles HTTP requests related to financial reports
type reportingHandler struct {
	reportingService portssvc.ReportingSvc
	displayCurrency  string
}

// newReportingHandler creates a new reportingHandler
func newReportingHandler(rs portssvc.ReportingSvc, displayCurrency string) *reportingHandler {
	return &reportingHandler{
		reportingService: rs,
		displayCurrency:  displayCurrency,
	}
}

// registerReportingRoutes registers routes related to financial reports
func registerReportingRoutes(rg *gin.RouterGroup, reportingService portssvc.ReportingSvc, displayCurrency string) {
	h := newReportingHandler(reportingService, displayCurrency)

	reportingGroup := rg.Group("/reports", middleware.RequireCapability(middleware.CapabilityReport))
	{
		reportingGroup.GET("/income-statement", h.getIncomeStatement)
		reportingGroup.GET("/balance-sheet", h.getBalanceSheet)
		reportingGroup.GET("/cash-flow", h.getCashFlow)
		reportingGroup.GET("/trial-balance", h.getTrialBalance)
	}
}

// getIncomeStatement godoc
// @Summary Generate income statement report
// @Description Generates an income statement for a specific period
// @Tags reports
// @Produce json
// @Param fromDate query string false "Start date (YYYY-MM-DD)" default(first day of current month)
// @Param toDate query string false "End date (YYYY-MM-DD)" default(current date)
// @Success 200 {object} dto.IncomeStatementResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 500 {object} map[string]string "Failed to generate report"
// @Security BearerAuth
// @Router /reports/income-statement [get]
func (h *reportingHandler) getIncomeStatement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	from, to, ok := parseReportRange(c)
	if !ok {
		return
	}

	logger = logger.With(
		slog.String("fromDate", from.Format("2006-01-02")),
		slog.String("toDate", to.Format("2006-01-02")),
	)
	logger.Info("Received request to generate income statement report")

	report, err := h.reportingService.IncomeStatement(c.Request.Context(), from, to)
	if err != nil {
		logger.Error("Failed to generate income statement report", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate income statement report"})
		return
	}

	response := dto.ToIncomeStatementResponse(report, from, to, h.displayCurrency)

	logger.Info("Income statement report generated successfully",
		slog.Int("revenue_accounts", len(report.Revenue)),
		slog.Int("expense_accounts", len(report.Expenses)))
	c.JSON(http.StatusOK, response)
}

// getBalanceSheet godoc
// @Summary Generate balance sheet report
// @Description Generates a balance sheet as of a specific date and verifies the accounting equation
// @Tags reports
// @Produce json
// @Param asOf query string false "Report date (YYYY-MM-DD)" default(current date)
// @Success 200 {object} dto.BalanceSheetResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 500 {object} map[string]string "Reconciliation failure or report error"
// @Security BearerAuth
// @Router /reports/balance-sheet [get]
func (h *reportingHandler) getBalanceSheet(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	asOf, ok := parseAsOf(c)
	if !ok {
		return
	}

	logger = logger.With(slog.String("asOf", asOf.Format("2006-01-02")))
	logger.Info("Received request to generate balance sheet report")

	report, err := h.reportingService.BalanceSheet(c.Request.Context(), asOf)
	if err != nil {
		if errors.Is(err, apperrors.ErrReconciliation) {
			logger.Error("Balance sheet reconciliation failed", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to generate balance sheet report", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate balance sheet report"})
		}
		return
	}

	response := dto.ToBalanceSheetResponse(report, asOf, h.displayCurrency)

	logger.Info("Balance sheet report generated successfully",
		slog.Int("asset_accounts", len(report.Assets)),
		slog.Int("liability_accounts", len(report.Liabilities)),
		slog.Int("equity_accounts", len(report.Equity)))
	c.JSON(http.StatusOK, response)
}

// getCashFlow godoc
// @Summary Generate cash flow report
// @Description Generates a direct-method operating cash flow statement for a period
// @Tags reports
// @Produce json
// @Param fromDate query string false "Start date (YYYY-MM-DD)" default(first day of current month)
// @Param toDate query string false "End date (YYYY-MM-DD)" default(current date)
// @Success 200 {object} dto.CashFlowResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 500 {object} map[string]string "Failed to generate report"
// @Security BearerAuth
// @Router /reports/cash-flow [get]
func (h *reportingHandler) getCashFlow(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	from, to, ok := parseReportRange(c)
	if !ok {
		return
	}

	logger = logger.With(
		slog.String("fromDate", from.Format("2006-01-02")),
		slog.String("toDate", to.Format("2006-01-02")),
	)
	logger.Info("Received request to generate cash flow report")

	report, err := h.reportingService.CashFlowStatement(c.Request.Context(), from, to)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Invalid cash flow query", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to generate cash flow report", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate cash flow report"})
		}
		return
	}

	response := dto.ToCashFlowResponse(report, from, to, h.displayCurrency)

	logger.Info("Cash flow report generated successfully",
		slog.Int("inflow_accounts", len(report.Inflows)),
		slog.Int("outflow_accounts", len(report.Outflows)))
	c.JSON(http.StatusOK, response)
}

// getTrialBalance godoc
// @Summary Generate trial balance report
// @Description Generates a trial balance report as of a specific date
// @Tags reports
// @Produce json
// @Param asOf query string false "Report date (YYYY-MM-DD)" default(current date)
// @Success 200 {object} dto.TrialBalanceResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 500 {object} map[string]string "Failed to generate report"
// @Security BearerAuth
// @Router /reports/trial-balance [get]
func (h *reportingHandler) getTrialBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	asOf, ok := parseAsOf(c)
	if !ok {
		return
	}

	logger = logger.With(slog.String("asOf", asOf.Format("2006-01-02")))
	logger.Info("Received request to generate trial balance report")

	trialBalanceRows, err := h.reportingService.TrialBalance(c.Request.Context(), asOf)
	if err != nil {
		logger.Error("Failed to generate trial balance report", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate trial balance report"})
		return
	}

	response := dto.ToTrialBalanceResponse(trialBalanceRows, asOf)

	logger.Info("Trial balance report generated successfully", slog.Int("row_count", len(trialBalanceRows)))
	c.JSON(http.StatusOK, response)
}

// parseReportRange reads fromDate/toDate query params, defaulting to the
// current month-to-date. It writes the error response itself and returns
// ok=false when a date fails to parse or the range is inverted.
func parseReportRange(c *gin.Context) (time.Time, time.Time, bool) {
	now := time.Now()
	firstDayOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	fromStr := c.DefaultQuery("fromDate", firstDayOfMonth.Format("2006-01-02"))
	from, err := time.Parse("2006-01-02", fromStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid fromDate format. Use YYYY-MM-DD"})
		return from, time.Time{}, false
	}

	toStr := c.DefaultQuery("toDate", now.Format("2006-01-02"))
	to, err := time.Parse("2006-01-02", toStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid toDate format. Use YYYY-MM-DD"})
		return from, to, false
	}

	if from.After(to) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "fromDate must be before or equal to toDate"})
		return from, to, false
	}
	return from, to, true
}

// parseAsOf reads the asOf query param, defaulting to today.
func parseAsOf(c *gin.Context) (time.Time, bool) {
	asOfStr := c.DefaultQuery("asOf", time.Now().Format("2006-01-02"))
	asOf, err := time.Parse("2006-01-02", asOfStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format. Use YYYY-MM-DD"})
		return asOf, false
	}
	return asOf, true
}
