package httpapi

import (
	"fmt"
	"net/http"

	"github.com/salescrm/order-service/internal/authz"
	"github.com/salescrm/order-service/internal/model"
)

type clientInput struct {
	Name    string `json:"name"`
	Company string `json:"company,omitempty"`
	Email   string `json:"email"`
}

func (a *App) createClientHandler(w http.ResponseWriter, r *http.Request) {
	sellerID, ok := requireSeller(w, r)
	if !ok {
		return
	}
	var in clientInput
	if !decodeJSON(w, r, &in) {
		return
	}
	if in.Name == "" || in.Email == "" {
		WriteJSONError(w, http.StatusBadRequest, "validation_error", "name and email are required")
		return
	}
	c, err := a.Store.CreateClient(r.Context(), model.Client{
		Name: in.Name, Company: in.Company, Email: in.Email, SellerID: sellerID,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// ownedClient resolves the client and verifies it belongs to the caller.
func (a *App) ownedClient(w http.ResponseWriter, r *http.Request, sellerID string) (model.Client, bool) {
	c, err := a.Store.GetClient(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return model.Client{}, false
	}
	if err := authz.Authorize(c.SellerID, sellerID); err != nil {
		writeDomainError(w, err)
		return model.Client{}, false
	}
	return c, true
}

func (a *App) getClientHandler(w http.ResponseWriter, r *http.Request) {
	sellerID, ok := requireSeller(w, r)
	if !ok {
		return
	}
	c, ok := a.ownedClient(w, r, sellerID)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (a *App) listClientsHandler(w http.ResponseWriter, r *http.Request) {
	sellerID, ok := requireSeller(w, r)
	if !ok {
		return
	}
	out, err := a.Store.ListClientsBySeller(r.Context(), sellerID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *App) updateClientHandler(w http.ResponseWriter, r *http.Request) {
	sellerID, ok := requireSeller(w, r)
	if !ok {
		return
	}
	c, ok := a.ownedClient(w, r, sellerID)
	if !ok {
		return
	}
	var in clientInput
	if !decodeJSON(w, r, &in) {
		return
	}
	if in.Name == "" || in.Email == "" {
		WriteJSONError(w, http.StatusBadRequest, "validation_error", "name and email are required")
		return
	}
	c.Name, c.Company, c.Email = in.Name, in.Company, in.Email
	upd, err := a.Store.UpdateClient(r.Context(), c)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, upd)
}

func (a *App) deleteClientHandler(w http.ResponseWriter, r *http.Request) {
	sellerID, ok := requireSeller(w, r)
	if !ok {
		return
	}
	c, ok := a.ownedClient(w, r, sellerID)
	if !ok {
		return
	}
	if err := a.Store.DeleteClient(r.Context(), c.ID); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("client %s was deleted", c.Name),
	})
}
