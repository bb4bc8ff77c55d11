package handler

import (
	"net/http"
	"net/url"
	"strconv"

	"posfront/internal/apierror"
	"posfront/internal/backend"
	"posfront/internal/dto"
	"posfront/internal/model"
	"posfront/internal/normalize"

	"github.com/gin-gonic/gin"
)

type ProductosHandler struct {
	client *backend.Client
}

func NewProductosHandler(client *backend.Client) *ProductosHandler {
	return &ProductosHandler{client: client}
}

// Listar proxies the catalog search to the backend and normalizes the rows
// into the canonical product shape.
func (h *ProductosHandler) Listar(c *gin.Context) {
	var filter dto.ProductoFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	if err := validate.Struct(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Filtros invalidos"))
		return
	}

	params := url.Values{}
	if filter.Query != "" {
		params.Set("q", filter.Query)
	}
	if filter.Category != "" {
		params.Set("category", filter.Category)
	}
	if filter.StoreID != "" {
		params.Set("store", filter.StoreID)
	}
	params.Set("page", strconv.Itoa(filter.Page))
	params.Set("limit", strconv.Itoa(filter.Limit))

	rows, err := h.client.SearchProducts(c.Request.Context(), params)
	if err != nil {
		c.JSON(http.StatusBadGateway, apierror.New("No se pudieron buscar productos"))
		return
	}
	products := make([]model.Product, 0, len(rows))
	for _, row := range rows {
		products = append(products, normalize.Product(row))
	}
	c.JSON(http.StatusOK, gin.H{
		"data":  products,
		"page":  filter.Page,
		"limit": filter.Limit,
	})
}

// Stock returns per-store availability for one product.
func (h *ProductosHandler) Stock(c *gin.Context) {
	rows, err := h.client.StockByProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadGateway, apierror.New("No se pudo consultar el stock"))
		return
	}
	stock := make([]model.StockRow, 0, len(rows))
	for _, row := range rows {
		stock = append(stock, normalize.StockRow(row))
	}
	c.JSON(http.StatusOK, stock)
}
