package httpapi

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"cloudpico-tankmonitor/internal/device"
	"cloudpico-tankmonitor/internal/settings"
)

// Controller is the control loop as seen from request goroutines.
type Controller interface {
	Submit(c device.Change) bool
	Status() device.Status
}

// Store persists settings across reboots.
type Store interface {
	settings.KV
	Ping() error
}

type configHandler struct {
	store  Store
	ctrl   Controller
	bootID string
}

// handleSetTankName persists the new name, then hands it to the loop.
func (h *configHandler) handleSetTankName(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		WriteText(w, http.StatusBadRequest, "Missing name parameter")
		return
	}
	if err := settings.ValidateTankName(name); err != nil {
		WriteText(w, http.StatusBadRequest, "Invalid name parameter: "+err.Error())
		return
	}

	if err := settings.SaveTankName(h.store, name); err != nil {
		slog.Error("failed to save tank name", "error", err)
		WriteError(w, http.StatusInternalServerError, "failed to save tank name")
		return
	}
	if !h.ctrl.Submit(device.RenameTo(name)) {
		WriteError(w, http.StatusServiceUnavailable, "device busy, change saved and applied after restart")
		return
	}

	WriteText(w, http.StatusOK, "Tank name updated to: "+name)
}

func (h *configHandler) handleSetSensorReadInterval(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimSpace(r.FormValue("interval"))
	if raw == "" {
		WriteText(w, http.StatusBadRequest, "Missing interval parameter")
		return
	}
	interval, err := settings.ParseInterval(raw)
	if err != nil {
		WriteText(w, http.StatusBadRequest, "Invalid interval parameter: "+err.Error())
		return
	}

	if err := settings.SaveSensorReadInterval(h.store, interval); err != nil {
		slog.Error("failed to save sensor read interval", "error", err)
		WriteError(w, http.StatusInternalServerError, "failed to save sensor read interval")
		return
	}
	if !h.ctrl.Submit(device.SetInterval(interval)) {
		WriteError(w, http.StatusServiceUnavailable, "device busy, change saved and applied after restart")
		return
	}

	WriteText(w, http.StatusOK, fmt.Sprintf("Sensor read interval updated to: %d", interval.Milliseconds()))
}

type statusResponse struct {
	BootID               string `json:"boot_id"`
	State                string `json:"state"`
	TankName             string `json:"tank_name"`
	SensorReadIntervalMS int64  `json:"sensor_read_interval_ms"`
	UptimeMS             int64  `json:"uptime_ms"`
	LastSampleMS         int64  `json:"last_sample_ms"`
	SetupDone            bool   `json:"connectivity_setup_done"`
	Cycles               uint64 `json:"cycles"`
	Network              string `json:"network"`
	Broker               string `json:"broker"`
}

func (h *configHandler) handleStatus(w http.ResponseWriter, r *http.Request) {
	st := h.ctrl.Status()
	WriteJSON(w, http.StatusOK, statusResponse{
		BootID:               h.bootID,
		State:                st.State.String(),
		TankName:             st.Identity.Name,
		SensorReadIntervalMS: st.Identity.SampleInterval.Milliseconds(),
		UptimeMS:             st.Timeline.Now.Milliseconds(),
		LastSampleMS:         st.Timeline.LastSample.Milliseconds(),
		SetupDone:            st.SetupDone,
		Cycles:               st.Cycles,
		Network:              st.Network.String(),
		Broker:               st.Broker.String(),
	})
}

func (h *configHandler) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(); err != nil {
		slog.Error("failed to check settings store", "error", err)
		WriteError(w, http.StatusInternalServerError, "failed to check settings store")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
