package handler

import (
	"net/http"

	"posfront/internal/apierror"
	"posfront/internal/backend"
	"posfront/internal/cart"
	"posfront/internal/dto"
	"posfront/internal/model"
	"posfront/internal/pdf"
	"posfront/internal/syncer"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type CarritoHandler struct {
	store          *cart.Store
	sync           *syncer.Syncer
	client         *backend.Client
	pdfStoragePath string
}

func NewCarritoHandler(store *cart.Store, sync *syncer.Syncer, client *backend.Client, pdfStoragePath string) *CarritoHandler {
	return &CarritoHandler{store: store, sync: sync, client: client, pdfStoragePath: pdfStoragePath}
}

func (h *CarritoHandler) respond(c *gin.Context, status int) {
	snapshot, totals := h.store.Snapshot()
	c.JSON(status, dto.CartResponse{
		Cart:        snapshot,
		Totals:      totals,
		NeedsSync:   h.store.NeedsSync(),
		RemoteError: h.store.RemoteError(),
	})
}

// Obtener returns the current cart and its derived totals.
func (h *CarritoHandler) Obtener(c *gin.Context) {
	h.respond(c, http.StatusOK)
}

// AgregarLinea adds a line to the cart. The quantity snaps to the multiple;
// an omitted quantity means one.
func (h *CarritoHandler) AgregarLinea(c *gin.Context) {
	var req dto.AddLineRequest
	if !bindAndValidate(c, &req) {
		return
	}
	quantity := req.Quantity
	if quantity.Sign() <= 0 {
		quantity = decimal.NewFromInt(1)
	}
	h.store.AddProduct(model.Product{
		ID:       req.ProductID,
		Code:     req.Code,
		Name:     req.Name,
		Price:    req.Price,
		IVA:      req.IVA,
		Unit:     req.Unit,
		Multiple: req.Multiple,
		WeightKg: req.WeightKg,
	}, quantity, nil)
	h.respond(c, http.StatusCreated)
}

// QuitarLinea removes a line by id.
func (h *CarritoHandler) QuitarLinea(c *gin.Context) {
	h.store.RemoveLine(c.Param("id"))
	h.respond(c, http.StatusOK)
}

// CambiarCantidad sets a line quantity.
func (h *CarritoHandler) CambiarCantidad(c *gin.Context) {
	var req dto.UpdateQuantityRequest
	if !bindAndValidate(c, &req) {
		return
	}
	h.store.UpdateQuantity(c.Param("id"), req.Quantity)
	h.respond(c, http.StatusOK)
}

// DescuentoLinea sets or clears a line discount.
func (h *CarritoHandler) DescuentoLinea(c *gin.Context) {
	var req dto.LineDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON invalido: "+err.Error()))
		return
	}
	if req.Discount != nil &&
		req.Discount.Type != model.DiscountPercent && req.Discount.Type != model.DiscountAmount {
		c.JSON(http.StatusBadRequest, apierror.New("Tipo de descuento invalido"))
		return
	}
	h.store.SetLineDiscount(c.Param("id"), req.Discount)
	h.respond(c, http.StatusOK)
}

// DescuentosGlobales sets the cart-level percent and amount discounts.
func (h *CarritoHandler) DescuentosGlobales(c *gin.Context) {
	var req dto.GlobalDiscountsRequest
	if !bindAndValidate(c, &req) {
		return
	}
	h.store.SetGlobalDiscounts(req.Percent, req.Amount)
	h.respond(c, http.StatusOK)
}

// Logistica replaces the logistics block.
func (h *CarritoHandler) Logistica(c *gin.Context) {
	var req dto.LogisticsRequest
	if !bindAndValidate(c, &req) {
		return
	}
	h.store.SetLogistics(model.Logistics{
		Mode:          req.Mode,
		StoreID:       req.StoreID,
		ScheduledDate: req.ScheduledDate,
		Address:       req.Address,
		Cost:          req.Cost,
		Notes:         req.Notes,
	})
	h.respond(c, http.StatusOK)
}

// Cliente attaches a client to the cart.
func (h *CarritoHandler) Cliente(c *gin.Context) {
	var client model.Client
	if err := c.ShouldBindJSON(&client); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON invalido: "+err.Error()))
		return
	}
	h.store.SetClient(&client)
	h.respond(c, http.StatusOK)
}

// QuitarCliente detaches the client.
func (h *CarritoHandler) QuitarCliente(c *gin.Context) {
	h.store.SetClient(nil)
	h.respond(c, http.StatusOK)
}

// Nota replaces the cart note.
func (h *CarritoHandler) Nota(c *gin.Context) {
	var req dto.NoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON invalido: "+err.Error()))
		return
	}
	h.store.SetNote(req.Note)
	h.respond(c, http.StatusOK)
}

// Pagos replaces the payment split list.
func (h *CarritoHandler) Pagos(c *gin.Context) {
	var req dto.PaymentsRequest
	if !bindAndValidate(c, &req) {
		return
	}
	h.store.SetPayments(req.Payments)
	h.respond(c, http.StatusOK)
}

// Vaciar resets the cart.
func (h *CarritoHandler) Vaciar(c *gin.Context) {
	h.store.Reset()
	h.respond(c, http.StatusOK)
}

// Hidratar replaces local state with the remote cart. Legacy snapshots are
// converted and re-persisted on the next sync.
func (h *CarritoHandler) Hidratar(c *gin.Context) {
	raw, err := h.client.FetchUserCart(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, apierror.New("No se pudo obtener el carrito remoto"))
		return
	}
	if !h.store.HydrateRemote(raw) {
		c.JSON(http.StatusBadGateway, apierror.New("Carrito remoto invalido"))
		return
	}
	h.respond(c, http.StatusOK)
}

// Sincronizar forces an immediate remote save, bypassing the debounce.
func (h *CarritoHandler) Sincronizar(c *gin.Context) {
	if err := h.sync.Flush(c.Request.Context()); err != nil {
		c.JSON(http.StatusBadGateway, apierror.New("No se pudo sincronizar el carrito"))
		return
	}
	h.respond(c, http.StatusOK)
}

// Presupuesto renders the quote PDF for the current cart. The cart is
// flushed first so the document reflects saved state.
func (h *CarritoHandler) Presupuesto(c *gin.Context) {
	_ = h.sync.Flush(c.Request.Context())

	snapshot, totals := h.store.Snapshot()
	if len(snapshot.Lines) == 0 {
		c.JSON(http.StatusBadRequest, apierror.New("El carrito esta vacio"))
		return
	}
	file, err := pdf.GenerateQuotePDF(snapshot, totals, h.pdfStoragePath)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("No se pudo generar el presupuesto"))
		return
	}
	c.JSON(http.StatusCreated, dto.QuoteResponse{File: file})
}
