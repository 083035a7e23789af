package webhooks

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/ropeartlab/ropeartlab/internal/api"
	"github.com/ropeartlab/ropeartlab/internal/orders"
)

const (
	// signatureHeader carries the hex HMAC-SHA256 of the raw PIX payload.
	signatureHeader = "X-Pix-Signature"
	maxPayloadBytes = 1 << 20
)

type Handler struct {
	ingestor    *WhatsAppIngestor
	engine      *orders.Engine
	verifyToken string
	pixSecret   string
	logger      *slog.Logger
}

func NewHandler(ingestor *WhatsAppIngestor, engine *orders.Engine, verifyToken, pixSecret string, logger *slog.Logger) *Handler {
	return &Handler{
		ingestor:    ingestor,
		engine:      engine,
		verifyToken: verifyToken,
		pixSecret:   pixSecret,
		logger:      logger,
	}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/webhooks/whatsapp/verify", h.HandleWhatsAppVerify)
	mux.HandleFunc("POST /api/webhooks/whatsapp/messages", h.HandleWhatsAppMessages)
	mux.HandleFunc("POST /api/webhooks/payment/pix", h.HandlePix)
}

// HandleWhatsAppVerify answers Meta's subscription handshake by echoing the
// challenge. The response body is the raw challenge, not the JSON envelope;
// that is what the WhatsApp platform expects.
func (h *Handler) HandleWhatsAppVerify(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	mode := q.Get("hub.mode")
	token := q.Get("hub.verify_token")
	challenge := q.Get("hub.challenge")

	if h.verifyToken == "" || mode != "subscribe" || token != h.verifyToken {
		h.logger.Warn("whatsapp webhook verification rejected", "mode", mode)
		api.ErrorMessage(w, h.logger, http.StatusForbidden, "invalid verify token")
		return
	}

	h.logger.Info("whatsapp webhook verified")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(challenge))
}

func (h *Handler) HandleWhatsAppMessages(w http.ResponseWriter, r *http.Request) {
	var payload whatsAppPayload
	if err := json.NewDecoder(io.LimitReader(r.Body, maxPayloadBytes)).Decode(&payload); err != nil {
		api.ErrorMessage(w, h.logger, http.StatusBadRequest, "invalid payload")
		return
	}
	if len(payload.Entry) == 0 {
		api.ErrorMessage(w, h.logger, http.StatusBadRequest, "invalid payload")
		return
	}

	created := h.ingestor.Ingest(r.Context(), payload)
	api.OK(w, h.logger, map[string]int{"draftsCreated": created})
}

type pixNotification struct {
	OrderID       string `json:"order_id"`
	Status        string `json:"status"`
	Amount        string `json:"amount"`
	TransactionID string `json:"transaction_id"`
}

// HandlePix processes a payment provider callback. The raw body must carry a
// valid HMAC signature; without a configured secret the endpoint refuses to
// operate rather than accept unauthenticated money events.
func (h *Handler) HandlePix(w http.ResponseWriter, r *http.Request) {
	if h.pixSecret == "" {
		api.ErrorMessage(w, h.logger, http.StatusServiceUnavailable, "pix webhook not configured")
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxPayloadBytes))
	if err != nil {
		api.ErrorMessage(w, h.logger, http.StatusBadRequest, "unreadable payload")
		return
	}

	if !h.validSignature(body, r.Header.Get(signatureHeader)) {
		h.logger.Warn("pix webhook signature rejected")
		api.ErrorMessage(w, h.logger, http.StatusUnauthorized, "invalid signature")
		return
	}

	var notification pixNotification
	if err := json.NewDecoder(bytes.NewReader(body)).Decode(&notification); err != nil || notification.OrderID == "" {
		api.ErrorMessage(w, h.logger, http.StatusBadRequest, "invalid payload")
		return
	}

	if notification.Status != "PAID" {
		h.logger.Info("pix notification ignored",
			"order_id", notification.OrderID, "status", notification.Status)
		api.Message(w, h.logger, "notification ignored")
		return
	}

	order, err := h.engine.ApproveWithPayment(r.Context(), notification.OrderID, "pix")
	if err != nil {
		api.Fail(w, h.logger, err)
		return
	}

	h.logger.Info("pix payment approved order",
		"order_id", order.PublicID,
		"order_number", order.Number,
		"transaction_id", notification.TransactionID,
	)
	api.OK(w, h.logger, order)
}

func (h *Handler) validSignature(body []byte, signature string) bool {
	if signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(h.pixSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
