package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/markmiedema/nexuscheck-sub005/internal/services"
	"github.com/markmiedema/nexuscheck-sub005/internal/types/api/responses"
)

// NexusHandler exposes the computation engine over HTTP.
type NexusHandler struct {
	common *CommonServices
	nexus  *services.NexusService
}

// NewNexusHandler creates a new nexus handler.
func NewNexusHandler(common *CommonServices, nexus *services.NexusService) *NexusHandler {
	return &NexusHandler{
		common: common,
		nexus:  nexus,
	}
}

// ComputeAnalysis runs the full determination pipeline for an analysis and
// returns the replacement result set.
func (h *NexusHandler) ComputeAnalysis(c *gin.Context) {
	analysisID, err := uuid.Parse(c.Param("analysis_id"))
	if err != nil {
		sendError(c, http.StatusBadRequest, "Invalid analysis ID format", err)
		return
	}

	result, err := h.nexus.ComputeAnalysis(c.Request.Context(), analysisID)
	if err != nil {
		var integrityErr *services.DataIntegrityError
		if errors.As(err, &integrityErr) {
			sendError(c, http.StatusUnprocessableEntity, integrityErr.Error(), err)
			return
		}
		handleDBError(c, err, "Analysis not found")
		return
	}

	sendSuccess(c, http.StatusOK, responses.ComputeResponse{
		Object:     "nexus_computation",
		AnalysisID: analysisID.String(),
		Results:    result.Results,
		Summary:    result.Summary,
	})
}

// GetResults returns the persisted result set from the most recent
// computation run for an analysis.
func (h *NexusHandler) GetResults(c *gin.Context) {
	analysisID, err := uuid.Parse(c.Param("analysis_id"))
	if err != nil {
		sendError(c, http.StatusBadRequest, "Invalid analysis ID format", err)
		return
	}

	result, err := h.nexus.GetResults(c.Request.Context(), analysisID)
	if err != nil {
		handleDBError(c, err, "Analysis not found")
		return
	}

	sendSuccess(c, http.StatusOK, responses.ComputeResponse{
		Object:     "nexus_results",
		AnalysisID: analysisID.String(),
		Results:    result.Results,
		Summary:    result.Summary,
	})
}

// GetJurisdictionRules reports the reference configuration effective for a
// jurisdiction at a given date (today when the as_of query param is absent).
func (h *NexusHandler) GetJurisdictionRules(c *gin.Context) {
	jurisdiction := c.Param("jurisdiction")
	if jurisdiction == "" {
		sendError(c, http.StatusBadRequest, "Jurisdiction is required", nil)
		return
	}

	asOf := time.Now().UTC()
	if asOfStr := c.Query("as_of"); asOfStr != "" {
		parsed, err := time.Parse("2006-01-02", asOfStr)
		if err != nil {
			sendError(c, http.StatusBadRequest, "Invalid as_of date, expected YYYY-MM-DD", err)
			return
		}
		asOf = parsed
	}

	ctx := c.Request.Context()
	queries := h.common.GetDB()

	thresholds, err := queries.ListThresholdRules(ctx)
	if err != nil {
		handleDBError(c, err, "Threshold rules not found")
		return
	}
	marketplace, err := queries.ListMarketplaceRules(ctx)
	if err != nil {
		handleDBError(c, err, "Marketplace rules not found")
		return
	}
	rates, err := queries.ListTaxRateConfigs(ctx)
	if err != nil {
		handleDBError(c, err, "Tax rate configs not found")
		return
	}
	penalties, err := queries.ListPenaltyInterestConfigs(ctx)
	if err != nil {
		handleDBError(c, err, "Penalty interest configs not found")
		return
	}

	snap := services.NewSnapshot(thresholds, marketplace, rates, penalties, nil)

	response := responses.JurisdictionRulesResponse{
		Jurisdiction: jurisdiction,
		AsOf:         asOf.Format("2006-01-02"),
	}
	if rule, ok := snap.ThresholdRule(jurisdiction, asOf); ok {
		response.ThresholdRule = &rule
	}
	if rule, ok := snap.MarketplaceRule(jurisdiction, asOf); ok {
		response.MarketplaceRule = &rule
	}
	if rate, ok := snap.TaxRate(jurisdiction, asOf); ok {
		response.TaxRate = &rate
	}
	if cfg, ok := snap.PenaltyInterestConfig(jurisdiction, asOf); ok {
		response.PenaltyInterest = &cfg
	}

	if response.ThresholdRule == nil && response.MarketplaceRule == nil &&
		response.TaxRate == nil && response.PenaltyInterest == nil {
		sendError(c, http.StatusNotFound, "No configuration found for jurisdiction", nil)
		return
	}

	sendSuccess(c, http.StatusOK, response)
}
