package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"ticker-cache-service/internal/application/dto"
	"ticker-cache-service/internal/application/services"
	"ticker-cache-service/internal/domain/interfaces"
	"ticker-cache-service/internal/infrastructure/logging"
)

// AssetService is the part of the throttled cache the HTTP API needs
type AssetService interface {
	interfaces.AssetReader
	TrackedIDs() []string
	Currency() string
	Canonicalize(id string) string
}

// AssetHandler serves the cached snapshot; reads never call the upstream
type AssetHandler struct {
	cache  AssetService
	policy services.AvailabilityPolicy
	mapper *dto.AssetMapper
}

// NewAssetHandler creates a new instance of the asset handler
func NewAssetHandler(cache AssetService, policy services.AvailabilityPolicy) *AssetHandler {
	return &AssetHandler{
		cache:  cache,
		policy: policy,
		mapper: dto.NewAssetMapper(),
	}
}

// GetAssets godoc
// @Summary List tracked assets
// @Description Returns the requested tracked assets from the last successful snapshot. Never triggers an upstream call.
// @Tags assets
// @Produce json
// @Param ids query string false "Comma separated asset ids (default: every tracked id)" example(BTC,ETH)
// @Success 200 {object} dto.AssetsResponse "Assets from the current snapshot"
// @Failure 400 {object} dto.ErrorResponse "Unknown or empty ids"
// @Router /api/v1/assets [get]
func (h *AssetHandler) GetAssets(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	request, err := dto.NewGetAssetsRequest(r.URL.Query().Get("ids"), h.cache.TrackedIDs(), h.cache.Canonicalize)
	if err != nil {
		writeErrorResponse(ctx, w, http.StatusBadRequest, "INVALID_PARAMETER", err.Error())
		return
	}

	currency := h.cache.Currency()
	lookups := make([]dto.Lookup, 0, len(request.IDs))
	for _, id := range request.IDs {
		lookups = append(lookups, h.lookup(id, currency))
	}

	lastUpdated, _ := h.cache.LastUpdated()
	response := h.mapper.ToAssetsResponse(currency, lastUpdated, lookups)

	logging.Debug(ctx, "Served assets from snapshot", logging.Fields{
		logging.FieldAssetIDs: request.IDs,
		"missing":             response.Missing,
	})
	writeJSONResponse(ctx, w, http.StatusOK, response)
}

// GetAsset godoc
// @Summary Get one asset
// @Description Returns one tracked asset from the last successful snapshot.
// @Tags assets
// @Produce json
// @Param id path string true "Asset id" example(BTC)
// @Success 200 {object} dto.AssetResponse "Asset from the current snapshot"
// @Failure 404 {object} dto.ErrorResponse "Asset not in the snapshot"
// @Router /api/v1/assets/{id} [get]
func (h *AssetHandler) GetAsset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := h.cache.Canonicalize(mux.Vars(r)["id"])

	l := h.lookup(id, h.cache.Currency())
	logging.Ticker().AssetServed(ctx, id, l.Found)
	if !l.Found {
		writeErrorResponse(ctx, w, http.StatusNotFound, "ASSET_NOT_FOUND", "asset "+id+" is not in the current snapshot")
		return
	}

	writeJSONResponse(ctx, w, http.StatusOK, h.mapper.ToAssetResponse(l))
}

// Refresh godoc
// @Summary Request a throttled refresh
// @Description Runs a refresh unless the previous attempt started less than one throttle interval ago. A failed refresh keeps serving the previous snapshot.
// @Tags assets
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} dto.RefreshResponse "Fetched or throttled"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid API key"
// @Failure 502 {object} dto.RefreshResponse "Upstream failure"
// @Router /api/v1/refresh [post]
func (h *AssetHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	outcome, err := h.cache.Refresh(ctx)
	response := h.mapper.ToRefreshResponse(outcome, err, h.cache.Status())

	status := http.StatusOK
	if err != nil {
		status = http.StatusBadGateway
	}
	writeJSONResponse(ctx, w, status, response)
}

// Status godoc
// @Summary Cache status
// @Description Diagnostic view: tracked ids, throttle window, last attempt and last failure.
// @Tags assets
// @Produce json
// @Success 200 {object} dto.StatusResponse
// @Router /api/v1/status [get]
func (h *AssetHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(r.Context(), w, http.StatusOK, h.mapper.ToStatusResponse(h.cache.Status()))
}

func (h *AssetHandler) lookup(id, currency string) dto.Lookup {
	view := h.policy.View(h.cache, id, currency)
	return dto.Lookup{
		ID:          id,
		Record:      view.Record,
		Found:       view.Found,
		Available:   view.Available,
		LastUpdated: view.LastUpdated,
	}
}

