package handler

import (
	"errors"
	"net/http"

	"posfront/internal/apierror"
	"posfront/internal/backend"
	"posfront/internal/dto"
	"posfront/internal/model"
	"posfront/internal/normalize"

	"github.com/gin-gonic/gin"
)

type ClientesHandler struct {
	client *backend.Client
}

func NewClientesHandler(client *backend.Client) *ClientesHandler {
	return &ClientesHandler{client: client}
}

// Buscar proxies the client search to the backend and normalizes the rows.
func (h *ClientesHandler) Buscar(c *gin.Context) {
	var filter dto.ClienteFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	if err := validate.Struct(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Busqueda demasiado corta"))
		return
	}

	rows, err := h.client.SearchClients(c.Request.Context(), filter.Query)
	if err != nil {
		c.JSON(http.StatusBadGateway, apierror.New("No se pudieron buscar clientes"))
		return
	}
	clients := make([]model.Client, 0, len(rows))
	for _, row := range rows {
		clients = append(clients, normalize.Client(row))
	}
	c.JSON(http.StatusOK, clients)
}

// Crear creates a client through the backend. Per-field backend errors come
// back as a 422 with the field map so the UI can mark inputs; anything else
// is a flat 400.
func (h *ClientesHandler) Crear(c *gin.Context) {
	var req dto.CrearClienteRequest
	if !bindAndValidate(c, &req) {
		return
	}

	payload := map[string]any{
		"nombre":    req.Nombre,
		"documento": req.Documento,
		"email":     req.Email,
		"telefono":  req.Telefono,
		"direccion": req.Direccion,
		"sucursal":  req.Sucursal,
	}
	row, err := h.client.CreateClient(c.Request.Context(), payload)
	if err != nil {
		var fieldErrs *backend.FieldErrors
		if errors.As(err, &fieldErrs) {
			c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fieldErrs.Fields))
			return
		}
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, normalize.Client(row))
}
