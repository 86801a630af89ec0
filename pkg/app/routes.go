package app

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"
)

func (a *App) routes() {
	a.router.GET("/home", a.homeList)
	a.router.POST("/home", a.homeCreate)
	a.router.DELETE("/home", a.homeDelete)
}

func (a *App) homeList(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, []int{1, 2, 3, 4})
}

func (a *App) homeCreate(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, map[string]any{"res": "post"})
}

// homeDelete echoes the decoded request payload.
func (a *App) homeDelete(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	defer r.Body.Close()
	var payload any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid JSON body: " + err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"res": payload})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
