package game

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/PankajKumar-11/DrawChain/internal/ws"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Origin allow-listing happens at the router level.
		return true
	},
}

// Handler exposes the websocket entrypoint and the room listing.
type Handler struct {
	gateway *Gateway
	reg     *Registry
	log     zerolog.Logger
}

func NewHandler(reg *Registry, log zerolog.Logger) *Handler {
	return &Handler{
		gateway: &Gateway{reg: reg},
		reg:     reg,
		log:     log,
	}
}

func (h *Handler) Register(r *gin.Engine) {
	r.GET("/ws", h.ServeWS)
	r.GET("/rooms", h.ListRooms)
}

func (h *Handler) ServeWS(ctx *gin.Context) {
	conn, err := upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Str("ip", ctx.ClientIP()).Msg("ws upgrade failed")
		return
	}
	client := ws.NewClient(conn, h.gateway, h.log)
	go client.WritePump()
	go client.ReadPump()
}

func (h *Handler) ListRooms(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, h.reg.Descriptions())
}

// Gateway adapts raw connections onto the registry: join-room binds a
// connection to a room, everything else is routed to the bound room's
// actor. Malformed or unroutable messages are dropped.
type Gateway struct {
	reg *Registry
}

func (g *Gateway) HandleMessage(c *ws.Client, env ws.Envelope) {
	if env.Type != ws.TypeJoinRoom {
		g.reg.Deliver(c.ID(), env)
		return
	}

	var payload JoinRoomPayload
	if err := json.Unmarshal(env.Payload, &payload); err != nil {
		c.Send(ws.NewEnvelope(ws.TypeJoinError, JoinErrorPayload{Error: "malformed join"}))
		return
	}
	if _, err := g.reg.Join(c.ID(), c, payload); err != nil {
		c.Send(ws.NewEnvelope(ws.TypeJoinError, JoinErrorPayload{Error: err.Error()}))
	}
}

func (g *Gateway) HandleDisconnect(c *ws.Client) {
	g.reg.Disconnect(c.ID())
}
