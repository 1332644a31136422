package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"skillmatch-backend/internal/delivery/http/middleware"
	"skillmatch-backend/internal/delivery/http/response"
	"skillmatch-backend/internal/domain"
)

type ConnectionHandler struct {
	connectionUC domain.ConnectionUsecase
}

func NewConnectionHandler(r *gin.RouterGroup, connectionUC domain.ConnectionUsecase) {
	handler := &ConnectionHandler{connectionUC: connectionUC}

	connections := r.Group("/connections")
	{
		connections.GET("", handler.List)
		connections.GET("/pending/sent", handler.ListSent)
		connections.GET("/pending/received", handler.ListReceived)
		connections.GET("/status/:userId", handler.Status)
		connections.GET("/suggestions", handler.Suggestions)
		connections.POST("/requests/:userId", handler.SendRequest)
		connections.PUT("/:id/accept", handler.Accept)
		connections.DELETE("/:id", handler.Remove)
	}
}

// SendRequest godoc
// @Summary      Send a connection request
// @Description  Fails with 409 when any edge already exists between the two users
// @Tags         connections
// @Produce      json
// @Param        userId  path      string  true  "Receiver user ID"
// @Success      201     {object}  response.Response{data=domain.Connection}
// @Failure      404     {object}  response.Response
// @Failure      409     {object}  response.Response
// @Router       /connections/requests/{userId} [post]
// @Security     BearerAuth
func (h *ConnectionHandler) SendRequest(c *gin.Context) {
	conn, err := h.connectionUC.SendRequest(c, middleware.CurrentActor(c).UserID, c.Param("userId"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Connection request sent", conn)
}

// Accept godoc
// @Summary      Accept a pending request
// @Description  Only the receiver of a pending request can accept it
// @Tags         connections
// @Produce      json
// @Param        id   path      int  true  "Connection ID"
// @Success      200  {object}  response.Response{data=domain.Connection}
// @Failure      404  {object}  response.Response
// @Router       /connections/{id}/accept [put]
// @Security     BearerAuth
func (h *ConnectionHandler) Accept(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	conn, err := h.connectionUC.AcceptRequest(c, id, middleware.CurrentActor(c).UserID)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Connection accepted", conn)
}

// Remove godoc
// @Summary      Decline, cancel or remove a connection
// @Tags         connections
// @Produce      json
// @Param        id   path      int  true  "Connection ID"
// @Success      200  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /connections/{id} [delete]
// @Security     BearerAuth
func (h *ConnectionHandler) Remove(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	if err := h.connectionUC.RemoveConnection(c, id, middleware.CurrentActor(c).UserID); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Connection removed", nil)
}

// List godoc
// @Summary      List accepted connections
// @Tags         connections
// @Produce      json
// @Success      200  {object}  response.Response{data=[]domain.ConnectionPeer}
// @Router       /connections [get]
// @Security     BearerAuth
func (h *ConnectionHandler) List(c *gin.Context) {
	peers, err := h.connectionUC.ListConnections(c, middleware.CurrentActor(c).UserID)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Connections", peers)
}

// ListSent godoc
// @Summary      List pending requests I sent
// @Tags         connections
// @Produce      json
// @Success      200  {object}  response.Response{data=[]domain.ConnectionPeer}
// @Router       /connections/pending/sent [get]
// @Security     BearerAuth
func (h *ConnectionHandler) ListSent(c *gin.Context) {
	peers, err := h.connectionUC.ListSentPending(c, middleware.CurrentActor(c).UserID)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Sent requests", peers)
}

// ListReceived godoc
// @Summary      List pending requests I received
// @Tags         connections
// @Produce      json
// @Success      200  {object}  response.Response{data=[]domain.ConnectionPeer}
// @Router       /connections/pending/received [get]
// @Security     BearerAuth
func (h *ConnectionHandler) ListReceived(c *gin.Context) {
	peers, err := h.connectionUC.ListReceivedPending(c, middleware.CurrentActor(c).UserID)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Received requests", peers)
}

// Status godoc
// @Summary      Connection status with another user
// @Tags         connections
// @Produce      json
// @Param        userId  path      string  true  "Other user ID"
// @Success      200     {object}  response.Response{data=domain.ConnectionState}
// @Router       /connections/status/{userId} [get]
// @Security     BearerAuth
func (h *ConnectionHandler) Status(c *gin.Context) {
	state, err := h.connectionUC.ConnectionStatus(c, middleware.CurrentActor(c).UserID, c.Param("userId"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Connection status", state)
}

// Suggestions godoc
// @Summary      People you may know
// @Description  Users with no edge to the caller, ranked by shared skills and same role
// @Tags         connections
// @Produce      json
// @Param        limit  query     int  false  "Max results (default 10, max 50)"
// @Success      200    {object}  response.Response{data=[]domain.Suggestion}
// @Router       /connections/suggestions [get]
// @Security     BearerAuth
func (h *ConnectionHandler) Suggestions(c *gin.Context) {
	suggestions, err := h.connectionUC.Suggestions(c, middleware.CurrentActor(c).UserID, queryInt(c, "limit", 0))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Suggestions", suggestions)
}
