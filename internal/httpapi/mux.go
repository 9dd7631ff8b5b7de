package httpapi

import "net/http"

func NewMux(store Store, ctrl Controller, bootID string) *http.ServeMux {
	h := &configHandler{store: store, ctrl: ctrl, bootID: bootID}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /setTankName", h.handleSetTankName)
	mux.HandleFunc("POST /setSensorReadInterval", h.handleSetSensorReadInterval)
	mux.HandleFunc("GET /status", h.handleStatus)
	mux.HandleFunc("GET /healthz", h.handleHealthz)
	return mux
}
