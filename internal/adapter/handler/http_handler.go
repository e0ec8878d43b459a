package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/rl1809/seckill/internal/core/domain"
	"github.com/rl1809/seckill/internal/core/service"
)

type HTTPHandler struct {
	seckill *service.SeckillService
}

func NewHTTPHandler(seckill *service.SeckillService) *HTTPHandler {
	return &HTTPHandler{seckill: seckill}
}

type response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

type itemPayload struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Stock     int       `json:"stock"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

type exposurePayload struct {
	Open  bool       `json:"open"`
	Token string     `json:"token,omitempty"`
	Now   *time.Time `json:"now,omitempty"`
	Start *time.Time `json:"start,omitempty"`
	End   *time.Time `json:"end,omitempty"`
}

type executeRequest struct {
	BuyerID string `json:"buyer_id"`
}

type executePayload struct {
	Kind      domain.ResultKind `json:"kind"`
	ItemID    int64             `json:"item_id,omitempty"`
	BuyerID   string            `json:"buyer_id,omitempty"`
	CreatedAt *time.Time        `json:"created_at,omitempty"`
}

// List handles GET /api/seckill/list.
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	offset := queryInt(r, "offset", 0)
	limit := queryInt(r, "limit", 20)

	items, err := h.seckill.ListItems(r.Context(), offset, limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, response{Error: "internal error"})
		return
	}

	payload := make([]itemPayload, 0, len(items))
	for _, item := range items {
		payload = append(payload, toItemPayload(item))
	}
	writeJSON(w, http.StatusOK, response{Success: true, Data: payload})
}

// Detail handles GET /api/seckill/{id}.
func (h *HTTPHandler) Detail(w http.ResponseWriter, r *http.Request) {
	itemID, ok := pathID(w, r)
	if !ok {
		return
	}

	item, err := h.seckill.GetItem(r.Context(), itemID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, response{Error: "internal error"})
		return
	}
	if item == nil {
		writeJSON(w, http.StatusNotFound, response{Error: "item not found"})
		return
	}
	writeJSON(w, http.StatusOK, response{Success: true, Data: toItemPayload(*item)})
}

// Exposer handles POST /api/seckill/{id}/exposer.
func (h *HTTPHandler) Exposer(w http.ResponseWriter, r *http.Request) {
	itemID, ok := pathID(w, r)
	if !ok {
		return
	}

	result, err := h.seckill.ExposeSeckill(r.Context(), itemID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, response{Error: "internal error"})
		return
	}
	if result.NotFound {
		writeJSON(w, http.StatusNotFound, response{Error: "item not found"})
		return
	}

	if result.Open {
		writeJSON(w, http.StatusOK, response{Success: true, Data: exposurePayload{Open: true, Token: result.Token}})
		return
	}
	writeJSON(w, http.StatusOK, response{Success: true, Data: exposurePayload{
		Open:  false,
		Now:   &result.Now,
		Start: &result.Start,
		End:   &result.End,
	}})
}

// Execute handles POST /api/seckill/{id}/execute/{token}.
func (h *HTTPHandler) Execute(w http.ResponseWriter, r *http.Request) {
	itemID, ok := pathID(w, r)
	if !ok {
		return
	}
	token := r.PathValue("token")

	var req executeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.BuyerID == "" {
		writeJSON(w, http.StatusBadRequest, response{Error: "buyer_id is required"})
		return
	}

	result := h.seckill.ExecutePurchase(r.Context(), itemID, req.BuyerID, token)

	payload := executePayload{Kind: result.Kind}
	if result.Record != nil {
		payload.ItemID = result.Record.ItemID
		payload.BuyerID = result.Record.BuyerID
		payload.CreatedAt = &result.Record.CreatedAt
	}

	switch result.Kind {
	case domain.KindSuccess:
		writeJSON(w, http.StatusOK, response{Success: true, Data: payload})
	case domain.KindInvalidToken:
		writeJSON(w, http.StatusForbidden, response{Error: "invalid token", Data: payload})
	case domain.KindClosed:
		writeJSON(w, http.StatusGone, response{Error: "seckill closed", Data: payload})
	case domain.KindRepeated:
		writeJSON(w, http.StatusConflict, response{Error: "repeated purchase", Data: payload})
	default:
		writeJSON(w, http.StatusInternalServerError, response{Error: "internal error", Data: payload})
	}
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func toItemPayload(item domain.Item) itemPayload {
	return itemPayload{
		ID:        item.ID,
		Name:      item.Name,
		Stock:     item.Stock,
		StartTime: item.StartTime,
		EndTime:   item.EndTime,
	}
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, response{Error: "invalid item id"})
		return 0, false
	}
	return id, true
}

func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
