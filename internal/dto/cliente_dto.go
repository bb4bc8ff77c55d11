package dto

// ClienteFilter is bound from the query string of GET /v1/clientes.
type ClienteFilter struct {
	Query string `form:"q" validate:"required,min=2"`
}

// CrearClienteRequest mirrors the backend creation contract; unknown extra
// fields are passed through untouched.
type CrearClienteRequest struct {
	Nombre    string `json:"nombre"    validate:"required,min=2"`
	Documento string `json:"documento"`
	Email     string `json:"email"     validate:"omitempty,email"`
	Telefono  string `json:"telefono"`
	Direccion string `json:"direccion"`
	Sucursal  string `json:"sucursal"`
}

// ProductoFilter is bound from the query string of GET /v1/productos.
type ProductoFilter struct {
	Query    string `form:"q"`
	Category string `form:"category"`
	StoreID  string `form:"store"`
	Page     int    `form:"page,default=1"   validate:"min=1"`
	Limit    int    `form:"limit,default=20" validate:"min=1,max=100"`
}
