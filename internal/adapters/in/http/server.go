// Package http contains the inbound echo server: order admission from the
// upstream job feed, processor webhooks, shop and rider event routes, and
// the sender-facing status poll. Handlers translate payloads into commands
// and map the internal error taxonomy onto HTTP status codes without
// leaking internal details.
package http

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strconv"
	"time"

	"giftflow/internal/core/application/usecases/commands"
	"giftflow/internal/core/application/usecases/queries"
	"giftflow/internal/core/domain/model/kernel"
	"giftflow/internal/core/domain/model/order"
	"giftflow/internal/core/domain/services"
	"giftflow/internal/metrics"
	"giftflow/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// webhookSecretHeader carries the shared secret on the server-to-server
// webhook channel. Requests without it never reach a handler.
const webhookSecretHeader = "X-Webhook-Secret"

// Server coordinates between HTTP handlers and application use cases.
type Server struct {
	admitOrderHandler      commands.AdmitOrderCommandHandler
	applyTransitionHandler commands.ApplyTransitionCommandHandler
	recordFiscalHandler    commands.RecordFiscalResultCommandHandler
	rerouteOrderHandler    commands.RerouteOrderCommandHandler
	getOrderStatusHandler  queries.GetOrderStatusQueryHandler
	rerouter               services.Rerouter
	metrics                *metrics.Metrics
	webhookSecret          string
}

// NewServer creates a new HTTP server with the required command and query
// handlers.
func NewServer(
	admitOrderHandler commands.AdmitOrderCommandHandler,
	applyTransitionHandler commands.ApplyTransitionCommandHandler,
	recordFiscalHandler commands.RecordFiscalResultCommandHandler,
	rerouteOrderHandler commands.RerouteOrderCommandHandler,
	getOrderStatusHandler queries.GetOrderStatusQueryHandler,
	rerouter services.Rerouter,
	m *metrics.Metrics,
	webhookSecret string,
) *Server {
	return &Server{
		admitOrderHandler:      admitOrderHandler,
		applyTransitionHandler: applyTransitionHandler,
		recordFiscalHandler:    recordFiscalHandler,
		rerouteOrderHandler:    rerouteOrderHandler,
		getOrderStatusHandler:  getOrderStatusHandler,
		rerouter:               rerouter,
		metrics:                m,
		webhookSecret:          webhookSecret,
	}
}

// RegisterRoutes mounts all routes on the echo instance.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	e.Use(s.requestMetrics)

	e.POST("/api/v1/orders", s.AdmitOrder)
	e.GET("/api/v1/orders/:id", s.GetOrderStatus)
	e.POST("/api/v1/orders/:id/decision", s.ShopDecision)
	e.POST("/api/v1/orders/:id/transition", s.ApplyTransition)
	e.POST("/api/v1/dispatch/pickup-route", s.PlanPickupRoute)

	// Processor webhooks are trusted only over the authenticated
	// server-to-server channel; client-reported success never drives a
	// transition.
	webhooks := e.Group("/webhooks", webhookAuth(s.webhookSecret))
	webhooks.POST("/payment-confirmed", s.PaymentConfirmed)
	webhooks.POST("/settlement-confirmed", s.SettlementConfirmed)
	webhooks.POST("/fiscalization", s.Fiscalization)

	e.GET("/metrics", echo.WrapHandler(s.metrics.Handler()))
}

// webhookAuth rejects webhook requests whose shared secret does not match.
func webhookAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			provided := ctx.Request().Header.Get(webhookSecretHeader)
			if secret == "" ||
				subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
				return ctx.JSON(http.StatusUnauthorized, errorResponse{
					Code:    http.StatusUnauthorized,
					Message: "Unauthorized",
				})
			}
			return next(ctx)
		}
	}
}

// requestMetrics records latency per route.
func (s *Server) requestMetrics(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		start := time.Now()
		err := next(ctx)
		s.metrics.HTTPRequestDuration.WithLabelValues(
			ctx.Path(),
			ctx.Request().Method,
			strconv.Itoa(ctx.Response().Status),
		).Observe(time.Since(start).Seconds())
		return err
	}
}

type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// writeError maps the internal error taxonomy onto HTTP status codes. The
// response carries a generic public message, never the internal error text.
func writeError(ctx echo.Context, err error) error {
	switch {
	case errors.Is(err, errs.ErrObjectNotFound):
		return ctx.JSON(http.StatusNotFound, errorResponse{
			Code:    http.StatusNotFound,
			Message: "Order not found",
		})
	case errors.Is(err, errs.ErrVersionConflict):
		return ctx.JSON(http.StatusConflict, errorResponse{
			Code:    http.StatusConflict,
			Message: "Order was modified concurrently, retry",
		})
	case errors.Is(err, errs.ErrInvalidTransition):
		return ctx.JSON(http.StatusConflict, errorResponse{
			Code:    http.StatusConflict,
			Message: "Transition not allowed from the current status",
		})
	case errors.Is(err, errs.ErrPreconditionFailed):
		return ctx.JSON(http.StatusUnprocessableEntity, errorResponse{
			Code:    http.StatusUnprocessableEntity,
			Message: "Precondition failed",
		})
	case errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsOutOfRange),
		errors.Is(err, errs.ErrMalformedPayload):
		return ctx.JSON(http.StatusBadRequest, errorResponse{
			Code:    http.StatusBadRequest,
			Message: "Invalid request",
		})
	default:
		return ctx.JSON(http.StatusInternalServerError, errorResponse{
			Code:    http.StatusInternalServerError,
			Message: "Internal error",
		})
	}
}

type admitOrderRequest struct {
	IdempotencyKey  string   `json:"idempotency_key"`
	ShopID          string   `json:"shop_id"`
	ProductID       string   `json:"product_id"`
	CategoryID      string   `json:"category_id"`
	Quantity        int      `json:"quantity"`
	ReceiverContact string   `json:"receiver_contact"`
	Recipient       geoPoint `json:"recipient"`
	AutoReroute     bool     `json:"auto_reroute"`
}

type geoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type admitOrderResponse struct {
	OrderID         string `json:"order_id"`
	CollectionToken string `json:"collection_token"`
	Status          string `json:"status"`
}

// AdmitOrder handles POST /api/v1/orders. Replayed idempotency keys return
// the originally admitted order with 200 instead of 201.
func (s *Server) AdmitOrder(ctx echo.Context) error {
	var req admitOrderRequest
	if err := ctx.Bind(&req); err != nil {
		return writeError(ctx, errs.NewMalformedPayloadError(err))
	}

	shopID, err := kernel.UUIDFromString(req.ShopID)
	if err != nil {
		return writeError(ctx, err)
	}
	productID, err := kernel.UUIDFromString(req.ProductID)
	if err != nil {
		return writeError(ctx, err)
	}
	categoryID, err := kernel.UUIDFromString(req.CategoryID)
	if err != nil {
		return writeError(ctx, err)
	}
	recipient, err := kernel.NewGeoPoint(req.Recipient.Latitude, req.Recipient.Longitude)
	if err != nil {
		return writeError(ctx, err)
	}

	cmd, err := commands.NewAdmitOrderCommand(
		req.IdempotencyKey,
		shopID,
		productID,
		categoryID,
		req.Quantity,
		req.ReceiverContact,
		recipient,
		req.AutoReroute,
	)
	if err != nil {
		return writeError(ctx, err)
	}

	result, err := s.admitOrderHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return writeError(ctx, err)
	}

	code := http.StatusCreated
	if result.AlreadyAdmitted {
		code = http.StatusOK
	}
	return ctx.JSON(code, admitOrderResponse{
		OrderID:         result.OrderID.String(),
		CollectionToken: result.CollectionToken,
		Status:          result.Status.String(),
	})
}

type paymentConfirmedRequest struct {
	OrderID         string     `json:"order_id"`
	PaymentRef      string     `json:"payment_ref"`
	EscrowExpiresAt *time.Time `json:"escrow_expires_at,omitempty"`
}

type transitionResponse struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
}

// PaymentConfirmed handles POST /webhooks/payment-confirmed. A missing
// escrow deadline falls back to the default TTL.
func (s *Server) PaymentConfirmed(ctx echo.Context) error {
	var req paymentConfirmedRequest
	if err := ctx.Bind(&req); err != nil {
		return writeError(ctx, errs.NewMalformedPayloadError(err))
	}

	orderID, err := kernel.UUIDFromString(req.OrderID)
	if err != nil {
		return writeError(ctx, err)
	}

	params := commands.TransitionParams{PaymentRef: req.PaymentRef}
	if req.EscrowExpiresAt != nil {
		params.EscrowExpiresAt = *req.EscrowExpiresAt
	}

	return s.applyTransition(ctx, orderID, order.Paid, params)
}

type settlementConfirmedRequest struct {
	OrderID string `json:"order_id"`
}

// SettlementConfirmed handles POST /webhooks/settlement-confirmed.
func (s *Server) SettlementConfirmed(ctx echo.Context) error {
	var req settlementConfirmedRequest
	if err := ctx.Bind(&req); err != nil {
		return writeError(ctx, errs.NewMalformedPayloadError(err))
	}

	orderID, err := kernel.UUIDFromString(req.OrderID)
	if err != nil {
		return writeError(ctx, err)
	}

	return s.applyTransition(ctx, orderID, order.Settled, commands.TransitionParams{})
}

type fiscalizationRequest struct {
	OrderID    string `json:"order_id"`
	FiscalCode string `json:"result_code"`
}

// Fiscalization handles POST /webhooks/fiscalization. It records the fiscal
// result on the delivery evidence; the completion interlock reads it when
// the order attempts to complete.
func (s *Server) Fiscalization(ctx echo.Context) error {
	var req fiscalizationRequest
	if err := ctx.Bind(&req); err != nil {
		return writeError(ctx, errs.NewMalformedPayloadError(err))
	}

	orderID, err := kernel.UUIDFromString(req.OrderID)
	if err != nil {
		return writeError(ctx, err)
	}

	cmd, err := commands.NewRecordFiscalResultCommand(orderID, req.FiscalCode)
	if err != nil {
		return writeError(ctx, err)
	}

	if err := s.recordFiscalHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return writeError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

type shopDecisionRequest struct {
	Decision string `json:"decision"`
	Reason   string `json:"reason,omitempty"`
}

type shopDecisionResponse struct {
	OrderID   string `json:"order_id"`
	Status    string `json:"status"`
	Outcome   string `json:"outcome,omitempty"`
	NewShopID string `json:"new_shop_id,omitempty"`
}

// ShopDecision handles POST /api/v1/orders/:id/decision. Accept moves the
// order into fulfillment; decline records the reason and immediately runs
// the reroute decision, which either hands the order to an alternative shop
// or cancels and refunds it.
func (s *Server) ShopDecision(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return writeError(ctx, err)
	}

	var req shopDecisionRequest
	if err := ctx.Bind(&req); err != nil {
		return writeError(ctx, errs.NewMalformedPayloadError(err))
	}

	switch req.Decision {
	case "accept":
		return s.applyTransition(ctx, orderID, order.Fulfilling, commands.TransitionParams{})

	case "decline":
		cmd, err := commands.NewApplyTransitionCommand(orderID, order.Declined,
			commands.TransitionParams{Reason: req.Reason})
		if err != nil {
			return writeError(ctx, err)
		}

		status, err := s.applyTransitionHandler.Handle(ctx.Request().Context(), cmd)
		if err != nil {
			return writeError(ctx, err)
		}
		s.metrics.TransitionsApplied.WithLabelValues(status.String()).Inc()

		rerouteCmd, err := commands.NewRerouteOrderCommand(orderID)
		if err != nil {
			return writeError(ctx, err)
		}

		result, err := s.rerouteOrderHandler.Handle(ctx.Request().Context(), rerouteCmd)
		if err != nil {
			return writeError(ctx, err)
		}

		response := shopDecisionResponse{
			OrderID: orderID.String(),
			Outcome: string(result.Outcome),
		}
		if result.Outcome == commands.OutcomeRerouted {
			response.Status = order.AltFound.String()
			response.NewShopID = result.NewShopID.String()
		} else {
			response.Status = order.Cancelled.String()
		}
		return ctx.JSON(http.StatusOK, response)

	default:
		return writeError(ctx, errs.NewValueIsInvalidError("decision"))
	}
}

type applyTransitionRequest struct {
	Target         string `json:"target"`
	RiderID        string `json:"rider_id,omitempty"`
	PresentedToken string `json:"presented_token,omitempty"`
	PhotoURI       string `json:"photo_uri,omitempty"`
	Reason         string `json:"reason,omitempty"`
}

// ApplyTransition handles POST /api/v1/orders/:id/transition - rider and
// back-office progress events. The response carries the resulting status,
// which differs from the requested target when a completion attempt is
// redirected to review.
func (s *Server) ApplyTransition(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return writeError(ctx, err)
	}

	var req applyTransitionRequest
	if err := ctx.Bind(&req); err != nil {
		return writeError(ctx, errs.NewMalformedPayloadError(err))
	}

	target, err := order.StatusFromString(req.Target)
	if err != nil {
		return writeError(ctx, err)
	}

	params := commands.TransitionParams{
		PresentedToken: req.PresentedToken,
		PhotoURI:       req.PhotoURI,
		Reason:         req.Reason,
	}
	if req.RiderID != "" {
		riderID, riderErr := kernel.UUIDFromString(req.RiderID)
		if riderErr != nil {
			return writeError(ctx, riderErr)
		}
		params.RiderID = riderID
	}

	return s.applyTransition(ctx, orderID, target, params)
}

// GetOrderStatus handles GET /api/v1/orders/:id - the sender-facing status
// poll.
func (s *Server) GetOrderStatus(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return writeError(ctx, err)
	}

	query, err := queries.NewGetOrderStatusQuery(orderID)
	if err != nil {
		return writeError(ctx, err)
	}

	response, err := s.getOrderStatusHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return writeError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, echo.Map{
		"order_id":          response.ID.String(),
		"status":            response.Status,
		"message":           response.Message,
		"status_changed_at": response.StatusChangedAt,
		"rider_assigned":    response.RiderAssigned,
	})
}

type planPickupRouteRequest struct {
	Rider     geoPoint   `json:"rider"`
	Stops     []geoPoint `json:"stops"`
	Recipient *geoPoint  `json:"recipient,omitempty"`
}

type planPickupRouteResponse struct {
	VisitOrder       []int    `json:"visit_order"`
	EstimatedMinutes *float64 `json:"estimated_minutes,omitempty"`
}

// PlanPickupRoute handles POST /api/v1/dispatch/pickup-route. It orders the
// rider's pending pickup stops and, when the recipient is supplied,
// estimates the final delivery leg from the last stop.
func (s *Server) PlanPickupRoute(ctx echo.Context) error {
	var req planPickupRouteRequest
	if err := ctx.Bind(&req); err != nil {
		return writeError(ctx, errs.NewMalformedPayloadError(err))
	}

	rider, err := kernel.NewGeoPoint(req.Rider.Latitude, req.Rider.Longitude)
	if err != nil {
		return writeError(ctx, err)
	}
	stops := make([]kernel.GeoPoint, 0, len(req.Stops))
	for _, stop := range req.Stops {
		point, err := kernel.NewGeoPoint(stop.Latitude, stop.Longitude)
		if err != nil {
			return writeError(ctx, err)
		}
		stops = append(stops, point)
	}

	visitOrder, err := s.rerouter.OptimizePickupRoute(rider, stops)
	if err != nil {
		return writeError(ctx, err)
	}

	response := planPickupRouteResponse{VisitOrder: visitOrder}
	if req.Recipient != nil && len(visitOrder) > 0 {
		recipient, err := kernel.NewGeoPoint(req.Recipient.Latitude, req.Recipient.Longitude)
		if err != nil {
			return writeError(ctx, err)
		}
		lastStop := stops[visitOrder[len(visitOrder)-1]]
		minutes, err := s.rerouter.EstimateDeliveryMinutes(lastStop, recipient)
		if err != nil {
			return writeError(ctx, err)
		}
		response.EstimatedMinutes = &minutes
	}

	return ctx.JSON(http.StatusOK, response)
}

// applyTransition runs one transition command and writes the outcome.
func (s *Server) applyTransition(
	ctx echo.Context,
	orderID kernel.UUID,
	target order.Status,
	params commands.TransitionParams,
) error {
	cmd, err := commands.NewApplyTransitionCommand(orderID, target, params)
	if err != nil {
		return writeError(ctx, err)
	}

	status, err := s.applyTransitionHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		if errors.Is(err, errs.ErrVersionConflict) {
			s.metrics.VersionConflicts.Inc()
		}
		return writeError(ctx, err)
	}

	s.metrics.TransitionsApplied.WithLabelValues(status.String()).Inc()

	return ctx.JSON(http.StatusOK, transitionResponse{
		OrderID: orderID.String(),
		Status:  status.String(),
	})
}
