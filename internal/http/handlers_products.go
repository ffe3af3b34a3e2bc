package httpapi

import (
	"fmt"
	"net/http"

	"github.com/salescrm/order-service/internal/model"
)

type productInput struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Stock int64   `json:"stock"`
}

func (in productInput) validate() string {
	if in.Name == "" {
		return "name is required"
	}
	if in.Price < 0 {
		return "price must be >= 0"
	}
	if in.Stock < 0 {
		return "stock must be >= 0"
	}
	return ""
}

func (a *App) createProductHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireSeller(w, r); !ok {
		return
	}
	var in productInput
	if !decodeJSON(w, r, &in) {
		return
	}
	if msg := in.validate(); msg != "" {
		WriteJSONError(w, http.StatusBadRequest, "validation_error", msg)
		return
	}
	p, err := a.Store.CreateProduct(r.Context(), model.Product{Name: in.Name, Price: in.Price, Stock: in.Stock})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (a *App) getProductHandler(w http.ResponseWriter, r *http.Request) {
	p, err := a.Store.GetProduct(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (a *App) listProductsHandler(w http.ResponseWriter, r *http.Request) {
	out, err := a.Store.ListProducts(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *App) searchProductsHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		WriteJSONError(w, http.StatusBadRequest, "validation_error", "q is required")
		return
	}
	out, err := a.Store.SearchProducts(r.Context(), q)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *App) updateProductHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireSeller(w, r); !ok {
		return
	}
	var in productInput
	if !decodeJSON(w, r, &in) {
		return
	}
	if msg := in.validate(); msg != "" {
		WriteJSONError(w, http.StatusBadRequest, "validation_error", msg)
		return
	}
	p, err := a.Store.UpdateProduct(r.Context(), model.Product{
		ID: r.PathValue("id"), Name: in.Name, Price: in.Price, Stock: in.Stock,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (a *App) deleteProductHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireSeller(w, r); !ok {
		return
	}
	id := r.PathValue("id")
	p, err := a.Store.GetProduct(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if err := a.Store.DeleteProduct(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("product %s was deleted", p.Name),
	})
}
