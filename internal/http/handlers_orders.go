package httpapi

import (
	"net/http"

	"github.com/salescrm/order-service/internal/model"
	"github.com/salescrm/order-service/internal/orders"
)

func (a *App) createOrderHandler(w http.ResponseWriter, r *http.Request) {
	sellerID, ok := requireSeller(w, r)
	if !ok {
		return
	}
	if a.closing {
		WriteJSONError(w, http.StatusServiceUnavailable, "shutting_down", "")
		return
	}
	var in orders.CreateInput
	if !decodeJSON(w, r, &in) {
		return
	}
	order, err := a.Orders.Create(r.Context(), sellerID, in)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

func (a *App) getOrderHandler(w http.ResponseWriter, r *http.Request) {
	sellerID, ok := requireSeller(w, r)
	if !ok {
		return
	}
	order, err := a.Orders.Get(r.Context(), r.PathValue("id"), sellerID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (a *App) listOrdersHandler(w http.ResponseWriter, r *http.Request) {
	sellerID, ok := requireSeller(w, r)
	if !ok {
		return
	}
	var (
		out []model.Order
		err error
	)
	if status := r.URL.Query().Get("status"); status != "" {
		out, err = a.Orders.ListByStatus(r.Context(), sellerID, model.OrderStatus(status))
	} else {
		out, err = a.Orders.ListBySeller(r.Context(), sellerID)
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *App) updateOrderHandler(w http.ResponseWriter, r *http.Request) {
	sellerID, ok := requireSeller(w, r)
	if !ok {
		return
	}
	var in orders.UpdateInput
	if !decodeJSON(w, r, &in) {
		return
	}
	order, err := a.Orders.Update(r.Context(), r.PathValue("id"), sellerID, in)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (a *App) deleteOrderHandler(w http.ResponseWriter, r *http.Request) {
	sellerID, ok := requireSeller(w, r)
	if !ok {
		return
	}
	conf, err := a.Orders.Delete(r.Context(), r.PathValue("id"), sellerID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, conf)
}
