package adaptor

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/marczlle/letterboxd-v2/internal/dto/request"
	"github.com/marczlle/letterboxd-v2/internal/dto/response"
	"github.com/marczlle/letterboxd-v2/internal/usecase"
	"github.com/marczlle/letterboxd-v2/pkg/utils"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type ReservationHandler struct {
	service  usecase.ReservationService
	upgrader websocket.Upgrader

	defaultSession  string
	sendBuffer      int
	writeTimeout    time.Duration
	pingInterval    time.Duration
	maxMessageBytes int64

	log *zap.Logger
}

func NewReservationHandler(service usecase.ReservationService, config *utils.Config, log *zap.Logger) *ReservationHandler {
	return &ReservationHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The seat selector is served by the catalog front end on
			// another origin.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		defaultSession:  config.Reservation.DefaultSession,
		sendBuffer:      config.WS.SendBuffer,
		writeTimeout:    time.Duration(config.WS.WriteTimeoutSeconds) * time.Second,
		pingInterval:    time.Duration(config.WS.PingIntervalSeconds) * time.Second,
		maxMessageBytes: config.WS.MaxMessageBytes,
		log:             log.With(zap.String("handler", "reservation")),
	}
}

// Serve handles GET /ws/reserva. The session is resolved from the query
// string at connect time; the client identifier is assigned here and
// announced in the snapshot.
func (h *ReservationHandler) Serve(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		sessionID = h.defaultSession
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		h.log.Warn("Websocket upgrade failed",
			zap.Error(err),
			zap.String("ip", r.RemoteAddr),
		)
		return
	}

	client := newWSClient(conn, utils.GenerateClientID(), h.sendBuffer, h.writeTimeout, h.pingInterval, h.log)
	go client.writePump()

	if _, err := h.service.Join(sessionID, client); err != nil {
		h.log.Warn("Join rejected",
			zap.Error(err),
			zap.String("session", sessionID),
		)
		client.close()
		return
	}

	h.readLoop(sessionID, client)
}

// readLoop consumes inbound frames until the connection dies, then
// synchronously releases everything the client still holds.
func (h *ReservationHandler) readLoop(sessionID string, c *wsClient) {
	defer func() {
		h.service.Leave(sessionID, c.ID())
		c.close()
	}()

	readTimeout := 2 * h.pingInterval
	c.conn.SetReadLimit(h.maxMessageBytes)
	c.conn.SetReadDeadline(time.Now().Add(readTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(readTimeout))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.log.Debug("Connection closed unexpectedly", zap.Error(err))
			}
			return
		}
		h.dispatch(sessionID, c, data)
	}
}

func (h *ReservationHandler) dispatch(sessionID string, c *wsClient, data []byte) {
	var env request.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		c.Send(errorResult("malformed message", ""))
		return
	}

	switch env.Action {
	case request.ActionLock:
		h.handleLock(sessionID, c, data)
	case request.ActionRelease:
		h.handleRelease(sessionID, c, data)
	case request.ActionConfirmPayment:
		h.handleConfirmPayment(sessionID, c, data)
	default:
		c.Send(errorResult("unknown action", ""))
	}
}

func (h *ReservationHandler) handleLock(sessionID string, c *wsClient, data []byte) {
	var req request.LockSeatRequest
	if err := json.Unmarshal(data, &req); err != nil {
		c.Send(errorResult("malformed message", ""))
		return
	}
	if msg, ok := h.checkRequest(sessionID, c, req.Session, req.ClientID, utils.ValidateStruct(req)); !ok {
		c.Send(errorResult(msg, req.Seat))
		return
	}

	if err := h.service.LockSeat(context.Background(), sessionID, req.Seat, c.ID()); err != nil {
		c.Send(errorResult(errorMessage(err), req.Seat))
		return
	}

	c.Send(&response.ActionResult{
		Status:  response.StatusOK,
		Message: "seat " + req.Seat + " locked",
		Seat:    req.Seat,
	})
}

func (h *ReservationHandler) handleRelease(sessionID string, c *wsClient, data []byte) {
	var req request.ReleaseSeatRequest
	if err := json.Unmarshal(data, &req); err != nil {
		c.Send(errorResult("malformed message", ""))
		return
	}
	if msg, ok := h.checkRequest(sessionID, c, req.Session, req.ClientID, utils.ValidateStruct(req)); !ok {
		c.Send(errorResult(msg, req.Seat))
		return
	}

	if err := h.service.ReleaseSeat(context.Background(), sessionID, req.Seat, c.ID()); err != nil {
		c.Send(errorResult(errorMessage(err), req.Seat))
		return
	}

	c.Send(&response.ActionResult{
		Status:  response.StatusOK,
		Message: "seat " + req.Seat + " released",
		Seat:    req.Seat,
	})
}

func (h *ReservationHandler) handleConfirmPayment(sessionID string, c *wsClient, data []byte) {
	var req request.ConfirmPaymentRequest
	if err := json.Unmarshal(data, &req); err != nil {
		c.Send(errorResult("malformed message", ""))
		return
	}
	if msg, ok := h.checkRequest(sessionID, c, req.Session, req.ClientID, utils.ValidateStruct(req)); !ok {
		c.Send(errorResult(msg, ""))
		return
	}

	result, err := h.service.ConfirmPayment(context.Background(), &req)
	if err != nil {
		c.Send(errorResult(errorMessage(err), ""))
		return
	}

	c.Send(result)
}

// checkRequest enforces the connection binding: the message must name the
// session resolved at connect time and the gateway-assigned client ID, and
// pass shape validation. Returns a unicast error message when it does not.
func (h *ReservationHandler) checkRequest(sessionID string, c *wsClient, reqSession, reqClientID string, validationErrors map[string]string) (string, bool) {
	if len(validationErrors) > 0 {
		return utils.FormatValidationErrors(validationErrors), false
	}
	if reqSession != sessionID {
		return "unknown session", false
	}
	if reqClientID != c.ID() {
		return "client identifier mismatch", false
	}
	return "", true
}

func errorResult(message, seat string) *response.ActionResult {
	return &response.ActionResult{
		Status:  response.StatusError,
		Message: message,
		Seat:    seat,
	}
}

// errorMessage translates usecase sentinels into the wire messages the seat
// selector shows to the user.
func errorMessage(err error) string {
	switch {
	case errors.Is(err, usecase.ErrSeatUnavailable):
		return "seat unavailable"
	case errors.Is(err, usecase.ErrUnknownSeat):
		return "unknown seat"
	case errors.Is(err, usecase.ErrUnknownSession):
		return "unknown session"
	case errors.Is(err, usecase.ErrNotHolder):
		return "seat not held by you"
	default:
		return err.Error()
	}
}
