package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/phonescout/phonescout/internal/core"
	"github.com/phonescout/phonescout/internal/store"
)

type APIHandler struct {
	chatService    *core.ChatService
	searchService  *core.SearchService
	llmService     *core.LLMService
	dbStore        *store.SQLiteStore
	maxResults     int
	maxQueryLength int
}

func NewAPIHandler(chat *core.ChatService, search *core.SearchService, llm *core.LLMService, db *store.SQLiteStore, maxResults, maxQueryLength int) *APIHandler {
	return &APIHandler{
		chatService:    chat,
		searchService:  search,
		llmService:     llm,
		dbStore:        db,
		maxResults:     maxResults,
		maxQueryLength: maxQueryLength,
	}
}

type ChatRequest struct {
	Message             string             `json:"message"`
	SessionID           string             `json:"session_id,omitempty"`
	ConversationHistory []core.ChatMessage `json:"conversation_history,omitempty"`
}

func (h *APIHandler) ChatHandler(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		http.Error(w, "Message cannot be empty", http.StatusBadRequest)
		return
	}
	if len(req.Message) > h.maxQueryLength {
		http.Error(w, fmt.Sprintf("Message exceeds maximum length of %d characters", h.maxQueryLength), http.StatusBadRequest)
		return
	}

	resp := h.chatService.HandleChat(r.Context(), req.Message, req.SessionID, req.ConversationHistory)
	json.NewEncoder(w).Encode(resp)
}

func (h *APIHandler) ListProductsHandler(w http.ResponseWriter, r *http.Request) {
	var filters core.SearchFilters
	if brand := r.URL.Query().Get("brand"); brand != "" {
		filters.Brands = []string{brand}
	}
	if minPrice, err := strconv.ParseFloat(r.URL.Query().Get("min_price"), 64); err == nil {
		filters.MinPrice = &minPrice
	}
	if maxPrice, err := strconv.ParseFloat(r.URL.Query().Get("max_price"), 64); err == nil {
		filters.MaxPrice = &maxPrice
	}

	limit := 20
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 && l <= 100 {
		limit = l
	}

	phones, err := h.searchService.Search(filters, limit, "")
	if err != nil {
		log.Printf("Error listing products: %v", err)
		http.Error(w, "Unable to fetch products. Please try again later.", http.StatusInternalServerError)
		return
	}
	if phones == nil {
		phones = []store.Phone{}
	}
	json.NewEncoder(w).Encode(phones)
}

func (h *APIHandler) GetProductHandler(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid product id", http.StatusBadRequest)
		return
	}

	phone, err := h.searchService.GetByID(productID)
	if err != nil {
		log.Printf("Error getting product %d: %v", productID, err)
		http.Error(w, "Unable to fetch product. Please try again later.", http.StatusInternalServerError)
		return
	}
	if phone == nil {
		http.Error(w, "Product not found", http.StatusNotFound)
		return
	}
	json.NewEncoder(w).Encode(phone)
}

type CompareRequest struct {
	ProductIDs []int64 `json:"product_ids"`
	SessionID  string  `json:"session_id,omitempty"`
}

type CompareResponse struct {
	Products []store.Phone `json:"products"`
}

func (h *APIHandler) CompareHandler(w http.ResponseWriter, r *http.Request) {
	var req CompareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	phones, err := h.searchService.Compare(req.ProductIDs, req.SessionID)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrNotEnoughProducts), errors.Is(err, core.ErrTooManyProducts):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, core.ErrProductsNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
		default:
			log.Printf("Error comparing products %v: %v", req.ProductIDs, err)
			http.Error(w, "Unable to compare products. Please try again later.", http.StatusInternalServerError)
		}
		return
	}
	json.NewEncoder(w).Encode(CompareResponse{Products: phones})
}

type HealthResponse struct {
	Status     string            `json:"status"`
	Database   string            `json:"database"`
	LLMCircuit map[string]string `json:"llm_circuit"`
}

// LivenessHandler reports that the process is up, nothing more.
func (h *APIHandler) LivenessHandler(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(map[string]string{"status": "alive"})
}

// ReadinessHandler reports whether the service can take traffic; the database
// must be reachable.
func (h *APIHandler) ReadinessHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.dbStore.Ping(); err != nil {
		log.Printf("Readiness check failed: %v", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]string{"status": "not_ready"})
		return
	}
	json.NewEncoder(w).Encode(map[string]string{"status": "ready"})
}

func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:     "healthy",
		Database:   "ok",
		LLMCircuit: h.llmService.BreakerStates(),
	}
	if err := h.dbStore.Ping(); err != nil {
		resp.Status = "degraded"
		resp.Database = "unreachable"
	}
	for _, state := range resp.LLMCircuit {
		if state != "closed" {
			resp.Status = "degraded"
			break
		}
	}
	json.NewEncoder(w).Encode(resp)
}
