package httpapi

import (
	"net/http"
	"strconv"
)

func limitParam(r *http.Request) int {
	v := r.URL.Query().Get("limit")
	if v == "" {
		return 0 // engine default
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func (a *App) topClientsHandler(w http.ResponseWriter, r *http.Request) {
	out, err := a.Rankings.TopClients(r.Context(), limitParam(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *App) topSellersHandler(w http.ResponseWriter, r *http.Request) {
	out, err := a.Rankings.TopSellers(r.Context(), limitParam(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
