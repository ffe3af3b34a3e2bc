package httpapi

import (
	"expvar"
	"net/http"
)

// NewRouter registers HTTP routes and returns the handler with middleware.
func NewRouter(app *App) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /sellers", app.createSellerHandler)
	mux.HandleFunc("GET /sellers", app.listSellersHandler)
	mux.HandleFunc("GET /sellers/{id}", app.getSellerHandler)

	mux.HandleFunc("POST /products", app.createProductHandler)
	mux.HandleFunc("GET /products", app.listProductsHandler)
	mux.HandleFunc("GET /products/search", app.searchProductsHandler)
	mux.HandleFunc("GET /products/{id}", app.getProductHandler)
	mux.HandleFunc("PUT /products/{id}", app.updateProductHandler)
	mux.HandleFunc("DELETE /products/{id}", app.deleteProductHandler)

	mux.HandleFunc("POST /clients", app.createClientHandler)
	mux.HandleFunc("GET /clients", app.listClientsHandler)
	mux.HandleFunc("GET /clients/{id}", app.getClientHandler)
	mux.HandleFunc("PUT /clients/{id}", app.updateClientHandler)
	mux.HandleFunc("DELETE /clients/{id}", app.deleteClientHandler)

	mux.HandleFunc("POST /orders", app.createOrderHandler)
	mux.HandleFunc("GET /orders", app.listOrdersHandler)
	mux.HandleFunc("GET /orders/{id}", app.getOrderHandler)
	mux.HandleFunc("PUT /orders/{id}", app.updateOrderHandler)
	mux.HandleFunc("DELETE /orders/{id}", app.deleteOrderHandler)

	mux.HandleFunc("GET /rankings/clients", app.topClientsHandler)
	mux.HandleFunc("GET /rankings/sellers", app.topSellersHandler)

	mux.HandleFunc("GET /healthz", app.healthHandler)
	mux.HandleFunc("GET /debug/metrics", app.metricsHandler)
	mux.Handle("GET /debug/vars", expvar.Handler())
	mux.HandleFunc("GET /openapi.yaml", app.openapiHandler)
	mux.HandleFunc("GET /docs", app.docsHandler)

	return WithRequestID(WithSellerIdentity(WithLogging(mux)))
}
