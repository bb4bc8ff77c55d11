package handler

import (
	"net/http"

	"posfront/internal/apierror"
	"posfront/internal/state"

	"github.com/gin-gonic/gin"
)

type EstadoHandler struct {
	store *state.Store
}

func NewEstadoHandler(store *state.Store) *EstadoHandler {
	return &EstadoHandler{store: store}
}

// Filtros returns the persisted product filters segment.
func (h *EstadoHandler) Filtros(c *gin.Context) {
	filters, err := h.store.HydrateFilters(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("No se pudo leer el estado"))
		return
	}
	c.JSON(http.StatusOK, filters)
}

// GuardarFiltros persists the filters segment.
func (h *EstadoHandler) GuardarFiltros(c *gin.Context) {
	var filters state.Filters
	if err := c.ShouldBindJSON(&filters); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON invalido: "+err.Error()))
		return
	}
	if err := h.store.PersistFilters(c.Request.Context(), filters); err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("No se pudo guardar el estado"))
		return
	}
	c.Status(http.StatusNoContent)
}

// UI returns the persisted presentation preferences.
func (h *EstadoHandler) UI(c *gin.Context) {
	ui, err := h.store.HydrateUI(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("No se pudo leer el estado"))
		return
	}
	c.JSON(http.StatusOK, ui)
}

// GuardarUI persists the presentation preferences.
func (h *EstadoHandler) GuardarUI(c *gin.Context) {
	var ui state.UI
	if err := c.ShouldBindJSON(&ui); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON invalido: "+err.Error()))
		return
	}
	if err := h.store.PersistUI(c.Request.Context(), ui); err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("No se pudo guardar el estado"))
		return
	}
	c.Status(http.StatusNoContent)
}
