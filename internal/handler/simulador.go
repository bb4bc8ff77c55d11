package handler

import (
	"net/http"

	"posfront/internal/apierror"
	"posfront/internal/broadcast"
	"posfront/internal/cart"
	"posfront/internal/dto"
	"posfront/internal/masterdata"
	"posfront/internal/plans"
	"posfront/internal/selector"
	"posfront/internal/simulator"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

type SimuladorHandler struct {
	idx         *masterdata.Index
	catalog     *plans.Catalog
	pipeline    *simulator.Pipeline
	broadcaster *broadcast.Broadcaster
	cartStore   *cart.Store
	rdb         *redis.Client
}

func NewSimuladorHandler(
	idx *masterdata.Index,
	catalog *plans.Catalog,
	pipeline *simulator.Pipeline,
	broadcaster *broadcast.Broadcaster,
	cartStore *cart.Store,
	rdb *redis.Client,
) *SimuladorHandler {
	return &SimuladorHandler{
		idx:         idx,
		catalog:     catalog,
		pipeline:    pipeline,
		broadcaster: broadcaster,
		cartStore:   cartStore,
		rdb:         rdb,
	}
}

// Reload re-fetches master data from the backend, replacing the index.
func (h *SimuladorHandler) Reload(c *gin.Context) {
	if err := h.idx.Load(c.Request.Context()); err != nil {
		c.JSON(http.StatusBadGateway, apierror.New("No se pudieron cargar los maestros"))
		return
	}
	c.Status(http.StatusNoContent)
}

// Opciones returns the valid option set for every selector dimension given
// the current partial selection.
func (h *SimuladorHandler) Opciones(c *gin.Context) {
	var filter dto.OptionsFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	if !h.idx.Ready() {
		c.JSON(http.StatusServiceUnavailable, apierror.New("Maestros no disponibles todavia"))
		return
	}

	sel := selector.Selection{
		Method:   filter.Method,
		Brand:    filter.Brand,
		Bank:     filter.Bank,
		Acquirer: filter.Acquirer,
	}

	resp := dto.OptionsResponse{
		Methods:   []dto.OptionItem{},
		Brands:    []dto.OptionItem{},
		Banks:     []dto.OptionItem{},
		Acquirers: []dto.OptionItem{},
	}
	for _, method := range selector.MethodsAvailable(h.idx, filter.OnlyCards) {
		resp.Methods = append(resp.Methods, dto.OptionItem{Code: method.Code, Label: method.Name})
	}
	for _, brand := range selector.BrandsAvailable(h.idx, sel) {
		resp.Brands = append(resp.Brands, dto.OptionItem{Code: brand, Label: brand})
	}
	for _, bank := range selector.BanksAvailable(h.idx, sel) {
		resp.Banks = append(resp.Banks, dto.OptionItem{Code: bank.Code, Label: bank.Name})
	}
	for _, acq := range selector.AcquirersAvailable(h.idx, sel) {
		resp.Acquirers = append(resp.Acquirers, dto.OptionItem{Code: acq.Code, Label: acq.Name})
	}
	c.JSON(http.StatusOK, resp)
}

// Planes returns the filtered plan list for a brand.
func (h *SimuladorHandler) Planes(c *gin.Context) {
	var filter dto.PlansFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	if err := validate.Struct(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Marca requerida"))
		return
	}

	list := h.catalog.PlansForBrand(c.Request.Context(), filter.Brand)
	list = plans.FilterForLine(list, selector.Selection{
		Method:   filter.Method,
		Bank:     filter.Bank,
		Acquirer: filter.Acquirer,
	}, filter.Tasa1)
	list = plans.Search(list, filter.Query)

	items := make([]dto.PlanItem, 0, len(list))
	for _, plan := range list {
		items = append(items, dto.PlanItem{
			ID:    plan.ID,
			Code:  plan.Code,
			Name:  plan.Name,
			Label: plans.Label(plan),
			Fees:  plan.Fees,
			Coef:  plan.Coef,
		})
	}
	c.JSON(http.StatusOK, items)
}

// CartAmount drives the simulator cart total, same as an inbound
// set_cart_amount message.
func (h *SimuladorHandler) CartAmount(c *gin.Context) {
	var req dto.CartAmountRequest
	if !bindAndValidate(c, &req) {
		return
	}
	h.pipeline.SetCartAmount(req.Amount)
	c.Status(http.StatusNoContent)
}

// Simular runs a simulation. A response superseded by a newer request
// returns 409 so the client re-reads current state instead of rendering
// stale numbers.
func (h *SimuladorHandler) Simular(c *gin.Context) {
	var req dto.SimulateRequest
	if !bindAndValidate(c, &req) {
		return
	}

	lines := make([]simulator.Line, 0, len(req.Lines))
	for _, line := range req.Lines {
		lines = append(lines, simulator.Line{
			Amount: line.Amount,
			Selection: selector.Selection{
				Method:   line.MethodCode,
				Brand:    line.Brand,
				Bank:     line.BankCode,
				Acquirer: line.AcquirerCode,
			},
			PlanID: line.PlanID,
		})
	}

	result, err := h.pipeline.Run(c.Request.Context(), req.Tasa1, lines)
	if err != nil {
		c.JSON(http.StatusBadGateway, apierror.New("La simulacion fallo"))
		return
	}
	if result == nil {
		c.JSON(http.StatusConflict, apierror.New("Simulacion reemplazada por una mas reciente"))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"result":      result,
		"can_confirm": h.pipeline.CanConfirm(),
	})
}

// Confirmar publishes the selection envelope to every sink and attaches
// the totals to the cart.
func (h *SimuladorHandler) Confirmar(c *gin.Context) {
	if !h.pipeline.CanConfirm() {
		c.JSON(http.StatusConflict, apierror.New("La simulacion no esta confirmable"))
		return
	}
	envelope := h.pipeline.BuildSelectionEnvelope()
	if envelope == nil {
		c.JSON(http.StatusConflict, apierror.New("No hay simulacion aplicada"))
		return
	}

	delivered := h.broadcaster.Publish(c.Request.Context(), envelope)
	totals := envelope.Totals
	h.cartStore.SetSimulatorTotals(&totals)

	c.JSON(http.StatusOK, gin.H{
		"envelope":  envelope,
		"delivered": delivered,
	})
}

// UltimaSeleccion returns the last confirmed envelope, for consumers that
// attach after the confirm happened.
func (h *SimuladorHandler) UltimaSeleccion(c *gin.Context) {
	envelope, err := broadcast.LastStored(c.Request.Context(), h.rdb)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("No se pudo leer la ultima seleccion"))
		return
	}
	if envelope == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, envelope)
}
