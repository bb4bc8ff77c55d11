package router

import (
	"time"

	"posfront/internal/backend"
	"posfront/internal/broadcast"
	"posfront/internal/cart"
	"posfront/internal/config"
	"posfront/internal/handler"
	"posfront/internal/infra"
	"posfront/internal/masterdata"
	"posfront/internal/middleware"
	"posfront/internal/plans"
	"posfront/internal/simulator"
	"posfront/internal/state"
	"posfront/internal/syncer"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Deps are the shared components wired at the composition root (cmd/server).
type Deps struct {
	Client      *backend.Client
	Breaker     *infra.CircuitBreaker
	Index       *masterdata.Index
	Catalog     *plans.Catalog
	Pipeline    *simulator.Pipeline
	Broadcaster *broadcast.Broadcaster
	CartStore   *cart.Store
	Syncer      *syncer.Syncer
	StateStore  *state.Store
}

// New wires all dependencies and returns a configured Gin engine.
func New(cfg *config.Config, rdb *redis.Client, deps Deps) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Handlers ─────────────────────────────────────────────────────────────
	simuladorH := handler.NewSimuladorHandler(deps.Index, deps.Catalog, deps.Pipeline, deps.Broadcaster, deps.CartStore, rdb)
	carritoH := handler.NewCarritoHandler(deps.CartStore, deps.Syncer, deps.Client, cfg.PDFStoragePath)
	clientesH := handler.NewClientesHandler(deps.Client)
	productosH := handler.NewProductosHandler(deps.Client)
	estadoH := handler.NewEstadoHandler(deps.StateStore)

	// ── Routes ───────────────────────────────────────────────────────────────

	r.GET("/health", handler.Health(rdb, deps.Index, deps.Breaker))

	v1 := r.Group("/v1")
	{
		sim := v1.Group("/simulador")
		{
			sim.POST("/maestros/reload", simuladorH.Reload)
			sim.GET("/opciones", simuladorH.Opciones)
			sim.GET("/planes", simuladorH.Planes)
			sim.POST("/monto", simuladorH.CartAmount)
			sim.POST("/simular", simuladorH.Simular)
			sim.POST("/confirmar", simuladorH.Confirmar)
			sim.GET("/ultima-seleccion", simuladorH.UltimaSeleccion)
		}

		carrito := v1.Group("/carrito")
		{
			carrito.GET("", carritoH.Obtener)
			carrito.POST("/lineas", carritoH.AgregarLinea)
			carrito.DELETE("/lineas/:id", carritoH.QuitarLinea)
			carrito.PATCH("/lineas/:id/cantidad", carritoH.CambiarCantidad)
			carrito.PATCH("/lineas/:id/descuento", carritoH.DescuentoLinea)
			carrito.PUT("/descuentos", carritoH.DescuentosGlobales)
			carrito.PUT("/logistica", carritoH.Logistica)
			carrito.PUT("/cliente", carritoH.Cliente)
			carrito.DELETE("/cliente", carritoH.QuitarCliente)
			carrito.PUT("/nota", carritoH.Nota)
			carrito.PUT("/pagos", carritoH.Pagos)
			carrito.POST("/vaciar", carritoH.Vaciar)
			carrito.POST("/hidratar", carritoH.Hidratar)
			carrito.POST("/sincronizar", carritoH.Sincronizar)
			carrito.POST("/presupuesto", carritoH.Presupuesto)
		}

		v1.GET("/clientes", clientesH.Buscar)
		v1.POST("/clientes", clientesH.Crear)

		v1.GET("/productos", productosH.Listar)
		v1.GET("/productos/:id/stock", productosH.Stock)

		estado := v1.Group("/estado")
		{
			estado.GET("/filtros", estadoH.Filtros)
			estado.PUT("/filtros", estadoH.GuardarFiltros)
			estado.GET("/ui", estadoH.UI)
			estado.PUT("/ui", estadoH.GuardarUI)
		}
	}

	return r
}
