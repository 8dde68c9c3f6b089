package main

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"portfolio-assistant-go/internal/orchestrator"
	"portfolio-assistant-go/internal/store"
)

// APIHandler holds dependencies for the API endpoints.
type APIHandler struct {
	log            *zap.Logger
	engine         *orchestrator.Orchestrator
	trades         *store.TradeStore
	conversations  *store.ConversationStore
	aliases        *store.AliasStore
	defaultAccount string
}

// NewAPIHandler creates a new APIHandler.
func NewAPIHandler(log *zap.Logger, engine *orchestrator.Orchestrator, trades *store.TradeStore, conversations *store.ConversationStore, aliases *store.AliasStore, defaultAccount string) *APIHandler {
	return &APIHandler{
		log:            log,
		engine:         engine,
		trades:         trades,
		conversations:  conversations,
		aliases:        aliases,
		defaultAccount: defaultAccount,
	}
}

// StatusHandler reports service liveness.
func (h *APIHandler) StatusHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

type resolveRequest struct {
	AccountID      string `json:"account_id"`
	ConversationID string `json:"conversation_id"`
	Reply          string `json:"reply"`
	// PriorSymbol is the conversation subject when the caller tracks it;
	// otherwise the engine falls back to the cached subject.
	PriorSymbol string `json:"prior_symbol"`
	// Anchor is the date relative phrases resolve against, as
	// "2006-01-02". Defaults to today.
	Anchor string `json:"anchor"`
}

type resolveResponse struct {
	ConversationID string                `json:"conversation_id"`
	Intent         string                `json:"intent,omitempty"`
	Payload        *orchestrator.Payload `json:"payload,omitempty"`
}

// ResolveHandler accepts one assistant reply, resolves it, persists the
// message and returns the structured card payload, if any.
func (h *APIHandler) ResolveHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Reply == "" {
		http.Error(w, "reply is required", http.StatusBadRequest)
		return
	}

	accountID := req.AccountID
	if accountID == "" {
		accountID = h.defaultAccount
	}

	anchor := time.Now().UTC().Truncate(24 * time.Hour)
	if req.Anchor != "" {
		parsed, err := time.Parse("2006-01-02", req.Anchor)
		if err != nil {
			http.Error(w, "Invalid anchor date", http.StatusBadRequest)
			return
		}
		anchor = parsed
	}

	ctx := r.Context()

	conversationID := req.ConversationID
	if conversationID == "" {
		conv, err := h.conversations.CreateConversation(ctx, accountID, "")
		if err != nil {
			h.log.Error("Failed to create conversation", zap.Error(err))
			http.Error(w, "Failed to create conversation", http.StatusInternalServerError)
			return
		}
		conversationID = conv.ID
	}

	payload, err := h.engine.Respond(ctx, orchestrator.Request{
		AccountID:      accountID,
		ConversationID: conversationID,
		Reply:          req.Reply,
		PriorSymbol:    req.PriorSymbol,
		Anchor:         anchor,
	})
	if err != nil {
		h.log.Error("Failed to resolve reply", zap.Error(err))
		http.Error(w, "Failed to resolve reply", http.StatusInternalServerError)
		return
	}

	var intentTag, payloadJSON string
	if payload != nil {
		intentTag = string(payload.Intent)
		if raw, err := json.Marshal(payload); err == nil {
			payloadJSON = string(raw)
		}
	}
	if _, err := h.conversations.AppendMessage(ctx, conversationID, "assistant", req.Reply, intentTag, payloadJSON); err != nil {
		h.log.Error("Failed to persist message", zap.Error(err))
		http.Error(w, "Failed to persist message", http.StatusInternalServerError)
		return
	}

	writeJSON(w, resolveResponse{
		ConversationID: conversationID,
		Intent:         intentTag,
		Payload:        payload,
	})
}

// TradesHandler returns trade records, most recent first.
func (h *APIHandler) TradesHandler(w http.ResponseWriter, r *http.Request) {
	accountID := r.URL.Query().Get("account")
	if accountID == "" {
		accountID = h.defaultAccount
	}

	trades, err := h.trades.QueryTrades(r.Context(), store.TradeFilter{
		AccountID: accountID,
		Symbol:    r.URL.Query().Get("symbol"),
	})
	if err != nil {
		h.log.Error("Failed to get trades from database", zap.Error(err))
		http.Error(w, "Failed to get trades", http.StatusInternalServerError)
		return
	}
	writeJSON(w, trades)
}

// ConversationsHandler lists an account's conversations, most recently
// active first.
func (h *APIHandler) ConversationsHandler(w http.ResponseWriter, r *http.Request) {
	accountID := r.URL.Query().Get("account")
	if accountID == "" {
		accountID = h.defaultAccount
	}

	conversations, err := h.conversations.ListConversations(r.Context(), accountID)
	if err != nil {
		h.log.Error("Failed to list conversations", zap.Error(err))
		http.Error(w, "Failed to list conversations", http.StatusInternalServerError)
		return
	}
	writeJSON(w, conversations)
}

// MessagesHandler lists one conversation's messages in order.
func (h *APIHandler) MessagesHandler(w http.ResponseWriter, r *http.Request) {
	conversationID := r.URL.Query().Get("conversation")
	if conversationID == "" {
		http.Error(w, "conversation is required", http.StatusBadRequest)
		return
	}

	messages, err := h.conversations.ListMessages(r.Context(), conversationID)
	if err != nil {
		h.log.Error("Failed to list messages", zap.Error(err))
		http.Error(w, "Failed to list messages", http.StatusInternalServerError)
		return
	}
	writeJSON(w, messages)
}

// SymbolsHandler resolves a company-name alias to its ticker.
func (h *APIHandler) SymbolsHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		http.Error(w, "q is required", http.StatusBadRequest)
		return
	}

	symbol, ok := h.aliases.Resolve(r.Context(), query)
	if !ok {
		http.Error(w, "Unknown symbol", http.StatusNotFound)
		return
	}
	writeJSON(w, map[string]string{"query": query, "symbol": symbol})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
