package catalog

import (
	"net/http"

	"github.com/gorilla/mux"

	"argip-api/internal/middleware"
)

type Handler struct {
	store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

// Routes mounts the catalog endpoints on r, which is normally the /api subrouter.
func (h *Handler) Routes(r *mux.Router) {
	r.HandleFunc("/ranges", h.ListRanges).Methods(http.MethodGet)
	r.HandleFunc("/ranges", h.CreateRange).Methods(http.MethodPost)
	r.HandleFunc("/ranges/{id}", h.GetRange).Methods(http.MethodGet)
	r.HandleFunc("/ranges/{id}", h.UpdateRange).Methods(http.MethodPut)
	r.HandleFunc("/ranges/{id}", h.DeleteRange).Methods(http.MethodDelete)

	r.HandleFunc("/nuts", h.ListNuts).Methods(http.MethodGet)
	r.HandleFunc("/nuts", h.CreateNut).Methods(http.MethodPost)
	r.HandleFunc("/nuts/{id}", h.GetNut).Methods(http.MethodGet)
	r.HandleFunc("/nuts/{id}", h.UpdateNut).Methods(http.MethodPut)
	r.HandleFunc("/nuts/{id}", h.DeleteNut).Methods(http.MethodDelete)

	r.HandleFunc("/screw-lengths", h.ListScrewLengths).Methods(http.MethodGet)
	r.HandleFunc("/screw-lengths", h.CreateScrewLength).Methods(http.MethodPost)
	r.HandleFunc("/screw-lengths/{id}", h.DeleteScrewLength).Methods(http.MethodDelete)
}

func (h *Handler) ListRanges(w http.ResponseWriter, r *http.Request) {
	ranges, err := h.store.ListRanges(r.Context())
	if err != nil {
		middleware.ErrorResponse(w, r, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, ranges)
}

func (h *Handler) GetRange(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		middleware.ErrorResponse(w, r, err)
		return
	}
	rng, err := h.store.GetRange(r.Context(), id)
	if err != nil {
		middleware.ErrorResponse(w, r, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, rng)
}

func (h *Handler) CreateRange(w http.ResponseWriter, r *http.Request) {
	var req RangeRequest
	if err := middleware.DecodeJSON(r, &req); err != nil {
		middleware.ErrorResponse(w, r, err)
		return
	}
	rng, err := h.store.CreateRange(r.Context(), req.Input())
	if err != nil {
		middleware.ErrorResponse(w, r, err)
		return
	}
	middleware.JSONResponse(w, http.StatusCreated, rng)
}

func (h *Handler) UpdateRange(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		middleware.ErrorResponse(w, r, err)
		return
	}
	var req RangeUpdateRequest
	if err := middleware.DecodeJSON(r, &req); err != nil {
		middleware.ErrorResponse(w, r, err)
		return
	}
	rng, err := h.store.UpdateRange(r.Context(), id, req.Patch())
	if err != nil {
		middleware.ErrorResponse(w, r, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, rng)
}

func (h *Handler) DeleteRange(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		middleware.ErrorResponse(w, r, err)
		return
	}
	if err := h.store.DeleteRange(r.Context(), id); err != nil {
		middleware.ErrorResponse(w, r, err)
		return
	}
	middleware.NoContent(w)
}

func (h *Handler) ListNuts(w http.ResponseWriter, r *http.Request) {
	rangeID, err := rangeFilter(r)
	if err != nil {
		middleware.ErrorResponse(w, r, err)
		return
	}
	nuts, err := h.store.ListNuts(r.Context(), rangeID)
	if err != nil {
		middleware.ErrorResponse(w, r, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, nuts)
}

func (h *Handler) GetNut(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		middleware.ErrorResponse(w, r, err)
		return
	}
	nut, err := h.store.GetNut(r.Context(), id)
	if err != nil {
		middleware.ErrorResponse(w, r, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, nut)
}

func (h *Handler) CreateNut(w http.ResponseWriter, r *http.Request) {
	var req NutRequest
	if err := middleware.DecodeJSON(r, &req); err != nil {
		middleware.ErrorResponse(w, r, err)
		return
	}
	in, err := req.Input()
	if err != nil {
		middleware.ErrorResponse(w, r, err)
		return
	}
	nut, err := h.store.CreateNut(r.Context(), in)
	if err != nil {
		middleware.ErrorResponse(w, r, err)
		return
	}
	middleware.JSONResponse(w, http.StatusCreated, nut)
}

func (h *Handler) UpdateNut(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		middleware.ErrorResponse(w, r, err)
		return
	}
	var req NutUpdateRequest
	if err := middleware.DecodeJSON(r, &req); err != nil {
		middleware.ErrorResponse(w, r, err)
		return
	}
	patch, err := req.Patch()
	if err != nil {
		middleware.ErrorResponse(w, r, err)
		return
	}
	nut, err := h.store.UpdateNut(r.Context(), id, patch)
	if err != nil {
		middleware.ErrorResponse(w, r, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, nut)
}

func (h *Handler) DeleteNut(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		middleware.ErrorResponse(w, r, err)
		return
	}
	if err := h.store.DeleteNut(r.Context(), id); err != nil {
		middleware.ErrorResponse(w, r, err)
		return
	}
	middleware.NoContent(w)
}

func (h *Handler) ListScrewLengths(w http.ResponseWriter, r *http.Request) {
	screws, err := h.store.ListScrewLengths(r.Context())
	if err != nil {
		middleware.ErrorResponse(w, r, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, screws)
}

func (h *Handler) CreateScrewLength(w http.ResponseWriter, r *http.Request) {
	var req ScrewLengthRequest
	if err := middleware.DecodeJSON(r, &req); err != nil {
		middleware.ErrorResponse(w, r, err)
		return
	}
	sl, err := h.store.CreateScrewLength(r.Context(), req.Input())
	if err != nil {
		middleware.ErrorResponse(w, r, err)
		return
	}
	middleware.JSONResponse(w, http.StatusCreated, sl)
}

func (h *Handler) DeleteScrewLength(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		middleware.ErrorResponse(w, r, err)
		return
	}
	if err := h.store.DeleteScrewLength(r.Context(), id); err != nil {
		middleware.ErrorResponse(w, r, err)
		return
	}
	middleware.NoContent(w)
}
