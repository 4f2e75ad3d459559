package server

import (
	"errors"
	"net/http"
	"sort"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"citykiller/internal/engine"
	"citykiller/internal/logs"
	qr "citykiller/internal/qrcode"
	"citykiller/internal/table"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func errorJSON(c *gin.Context, status int, err error) {
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

// statusFor maps engine and registry errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, table.ErrTableNotFound),
		errors.Is(err, engine.ErrCitizenNotFound),
		errors.Is(err, engine.ErrCitizenNotPlaced):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrOutOfBounds),
		errors.Is(err, engine.ErrInvalidAction):
		return http.StatusBadRequest
	case errors.Is(err, engine.ErrDistrictFull),
		errors.Is(err, engine.ErrWrongPhase),
		errors.Is(err, engine.ErrPlacementExhausted):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// lookupTable resolves :id and aborts with 404 when unknown.
func (s *Server) lookupTable(c *gin.Context) (*table.Table, bool) {
	t, err := s.tables.Get(c.Param("id"))
	if err != nil {
		errorJSON(c, statusFor(err), err)
		return nil, false
	}
	return t, true
}

// HandleCreate deals a new table and sends the display to its board page.
func (s *Server) HandleCreate(c *gin.Context) {
	t, _, err := s.createTable()
	if err != nil {
		errorJSON(c, statusFor(err), err)
		return
	}
	c.Redirect(http.StatusSeeOther, qr.BoardURL("", t.ID))
}

// HandleCreateTable is the JSON variant of HandleCreate.
func (s *Server) HandleCreateTable(c *gin.Context) {
	t, events, err := s.createTable()
	if err != nil {
		errorJSON(c, statusFor(err), err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": t.ID, "events": events, "view": t.View()})
}

func (s *Server) HandleListTables(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tables": s.tables.List()})
}

func (s *Server) HandleGetTable(c *gin.Context) {
	t, ok := s.lookupTable(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, t.View())
}

// HandleDeleteTable drops a table and disconnects its viewers.
func (s *Server) HandleDeleteTable(c *gin.Context) {
	t, ok := s.lookupTable(c)
	if !ok {
		return
	}
	s.removeTable(t.ID)
	c.Status(http.StatusNoContent)
}

// HandleAction applies a board edit and pushes the result to connected viewers.
func (s *Server) HandleAction(c *gin.Context) {
	t, ok := s.lookupTable(c)
	if !ok {
		return
	}
	var action engine.Action
	if err := c.ShouldBindJSON(&action); err != nil {
		errorJSON(c, http.StatusBadRequest, err)
		return
	}

	events, view, err := t.Apply(action)
	if err != nil {
		errorJSON(c, statusFor(err), err)
		return
	}
	if events == nil {
		events = []engine.Event{}
	}
	if hub := s.existingHub(t.ID); hub != nil {
		hub.Publish(events, view)
	}
	c.JSON(http.StatusOK, gin.H{"events": events, "view": view})
}

// HandleCitizens lists the table's classified deck, optionally one group.
func (s *Server) HandleCitizens(c *gin.Context) {
	t, ok := s.lookupTable(c)
	if !ok {
		return
	}
	group := engine.Group(c.Query("group"))
	if group != "" && !group.Valid() {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "unknown group " + string(group)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"citizens": t.Citizens(group)})
}

func (s *Server) HandleNeighbors(c *gin.Context) {
	if _, ok := s.lookupTable(c); !ok {
		return
	}
	x, errX := strconv.Atoi(c.Query("x"))
	y, errY := strconv.Atoi(c.Query("y"))
	if errX != nil || errY != nil || !engine.InBounds(x, y) {
		errorJSON(c, http.StatusBadRequest, engine.ErrOutOfBounds)
		return
	}
	c.JSON(http.StatusOK, gin.H{"x": x, "y": y, "neighbors": engine.Neighbors(x, y)})
}

type groupCount struct {
	Group engine.Group `json:"group"`
	Count int          `json:"count"`
	Jobs  []string     `json:"jobs"`
}

// HandleGroups reports how the loaded deck, or one table's deck with
// ?table=, splits into groups.
func (s *Server) HandleGroups(c *gin.Context) {
	var counts map[engine.Group]int
	total := len(s.deck)
	if id := c.Query("table"); id != "" {
		t, err := s.tables.Get(id)
		if err != nil {
			errorJSON(c, statusFor(err), err)
			return
		}
		counts = t.GroupCounts()
		total = 0
		for _, n := range counts {
			total += n
		}
	} else {
		counts = engine.GroupCounts(engine.AssignGroups(s.deck, s.game.Groups))
	}

	out := make([]groupCount, 0, len(engine.AllGroups()))
	for _, g := range engine.AllGroups() {
		jobs := s.game.Groups.Jobs(g)
		if jobs == nil {
			jobs = []string{}
		}
		sort.Strings(jobs)
		out = append(out, groupCount{Group: g, Count: counts[g], Jobs: jobs})
	}
	c.JSON(http.StatusOK, gin.H{"total": total, "groups": out})
}

// HandleQR generates a QR code PNG linking to the table's board.
func (s *Server) HandleQR(c *gin.Context) {
	id := c.Query("table")
	if id == "" {
		c.String(http.StatusBadRequest, "missing table parameter")
		return
	}
	if _, err := s.tables.Get(id); err != nil {
		c.String(http.StatusNotFound, err.Error())
		return
	}
	base := s.cfg.PublicURL
	if base == "" {
		base = "http://" + c.Request.Host
	}
	png, err := qr.Generate(qr.BoardURL(base, id), qr.DefaultSize)
	if err != nil {
		logs.Error("qr generation failed", zap.String("table", id), zap.Error(err))
		c.String(http.StatusInternalServerError, "QR generation failed")
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

func (s *Server) HandleViewerID(c *gin.Context) {
	c.String(http.StatusOK, GenerateViewerID())
}

// HandleWS upgrades a board display or remote to a WebSocket on its table.
func (s *Server) HandleWS(c *gin.Context) {
	id := c.Query("table")
	if id == "" {
		c.String(http.StatusBadRequest, "missing table parameter")
		return
	}
	t, err := s.tables.Get(id)
	if err != nil {
		c.String(http.StatusNotFound, err.Error())
		return
	}
	viewer := c.Query("viewer")
	if viewer == "" {
		viewer = GenerateViewerID()
	}

	hub, err := s.hubFor(t)
	if err != nil {
		c.String(http.StatusNotFound, err.Error())
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logs.Warn("ws upgrade error", zap.String("table", id), zap.Error(err))
		return
	}

	client := NewClient(hub, conn, viewer, rate.NewLimiter(rate.Limit(s.cfg.MessagesPerSecond), s.cfg.Burst))
	select {
	case hub.register <- client:
	case <-hub.quit:
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()
}
