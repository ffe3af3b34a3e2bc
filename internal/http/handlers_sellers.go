package httpapi

import (
	"net/http"

	"github.com/salescrm/order-service/internal/model"
)

type sellerInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (a *App) createSellerHandler(w http.ResponseWriter, r *http.Request) {
	var in sellerInput
	if !decodeJSON(w, r, &in) {
		return
	}
	if in.Name == "" || in.Email == "" {
		WriteJSONError(w, http.StatusBadRequest, "validation_error", "name and email are required")
		return
	}
	s, err := a.Store.CreateSeller(r.Context(), model.Seller{Name: in.Name, Email: in.Email})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, s)
}

func (a *App) getSellerHandler(w http.ResponseWriter, r *http.Request) {
	s, err := a.Store.GetSeller(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (a *App) listSellersHandler(w http.ResponseWriter, r *http.Request) {
	out, err := a.Store.ListSellers(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
