package server_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"citykiller/internal/config"
	"citykiller/internal/engine"
	"citykiller/internal/protocol"
	"citykiller/internal/server"
)

func testDeck(n int) []engine.Citizen {
	jobs := []string{"Judge", "Don", "Nurse", "Bartender", "Actress", "Professor", "Firefighter", "Widow", "Painter"}
	deck := make([]engine.Citizen, n)
	for i := range deck {
		deck[i] = engine.Citizen{
			ID: i + 1, Job: jobs[i%len(jobs)], Sex: engine.SexMale, Age: engine.Age20,
			Size: engine.SizeS, Height: engine.HeightSmall, Color: "green",
		}
	}
	return deck
}

func newServer(t *testing.T, cfg config.ServerConfig) *server.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	static := fstest.MapFS{"board.html": {Data: []byte("<html>board</html>")}}
	placer := engine.NewPlacer(engine.NewRand(42), engine.DefaultPlacementConfig())
	return server.New(cfg, engine.DefaultConfig(), testDeck(9), placer, static)
}

func defaultConfig() config.ServerConfig {
	return config.ServerConfig{PublicURL: "http://board.local", MessagesPerSecond: 100, Burst: 100}
}

func do(t *testing.T, s *server.Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

type created struct {
	ID   string                `json:"id"`
	View engine.PublicViewData `json:"view"`
}

func createTable(t *testing.T, s *server.Server) created {
	t.Helper()
	w := do(t, s, http.MethodPost, "/api/tables", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var out created
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestCreateRedirect(t *testing.T) {
	s := newServer(t, defaultConfig())
	w := do(t, s, http.MethodGet, "/api/create", nil)
	assert.Equal(t, http.StatusSeeOther, w.Code)

	loc := w.Header().Get("Location")
	require.True(t, strings.HasPrefix(loc, "/board.html?table="), loc)
	id := strings.TrimPrefix(loc, "/board.html?table=")
	assert.Equal(t, []string{id}, s.Tables().List())
}

func TestTableLifecycle(t *testing.T) {
	s := newServer(t, defaultConfig())
	tb := createTable(t, s)
	assert.Equal(t, tb.ID, tb.View.ID)
	assert.Equal(t, "playing", tb.View.Status)
	assert.Equal(t, "day", tb.View.Phase)
	assert.Len(t, tb.View.Buildings, 8)
	assert.Len(t, tb.View.Citizens, 9)

	w := do(t, s, http.MethodGet, "/api/tables", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"tables":["`+tb.ID+`"]}`, w.Body.String())

	w = do(t, s, http.MethodGet, "/api/tables/"+tb.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, s, http.MethodGet, "/api/tables/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, s, http.MethodDelete, "/api/tables/"+tb.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = do(t, s, http.MethodGet, "/api/tables/"+tb.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// fullDistrict returns a district at capacity and a placed citizen outside it.
func fullDistrict(t *testing.T, v engine.PublicViewData) (engine.Coord, int) {
	t.Helper()
	for y := range v.Board {
		for x := range v.Board[y] {
			if len(v.Board[y][x].Citizens) < engine.Capacity(x, y) {
				continue
			}
			for _, d := range v.Board {
				for _, other := range d {
					if (other.X != x || other.Y != y) && len(other.Citizens) > 0 {
						return engine.Coord{X: x, Y: y}, other.Citizens[0].CitizenID
					}
				}
			}
		}
	}
	t.Fatal("no full district")
	return engine.Coord{}, 0
}

func freeDistrict(t *testing.T, v engine.PublicViewData) (engine.Coord, int) {
	t.Helper()
	for y := range v.Board {
		for x := range v.Board[y] {
			if len(v.Board[y][x].Citizens) >= engine.Capacity(x, y) {
				continue
			}
			for _, p := range v.Board {
				for _, other := range p {
					if (other.X != x || other.Y != y) && len(other.Citizens) > 0 {
						return engine.Coord{X: x, Y: y}, other.Citizens[0].CitizenID
					}
				}
			}
		}
	}
	t.Fatal("no free district")
	return engine.Coord{}, 0
}

func TestActions(t *testing.T) {
	s := newServer(t, defaultConfig())
	tb := createTable(t, s)
	path := "/api/tables/" + tb.ID + "/actions"

	w := do(t, s, http.MethodPost, path, engine.Action{Type: engine.ActionSelectDistrict, X: 0, Y: 0})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var res struct {
		Events []engine.Event         `json:"events"`
		View   engine.PublicViewData `json:"view"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.Len(t, res.Events, 1)
	assert.Equal(t, engine.EventDistrictSelected, res.Events[0].Type)
	assert.True(t, res.View.Board[1][1].IsHighlighted)
	assert.False(t, res.View.Board[3][3].IsHighlighted)

	full, mover := fullDistrict(t, tb.View)
	w = do(t, s, http.MethodPost, path, engine.Action{Type: engine.ActionMoveCitizen, CitizenID: mover, X: full.X, Y: full.Y})
	assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())

	free, mover := freeDistrict(t, tb.View)
	w = do(t, s, http.MethodPost, path, engine.Action{Type: engine.ActionMoveCitizen, CitizenID: mover, X: free.X, Y: free.Y})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.Len(t, res.Events, 1)
	assert.Equal(t, engine.EventCitizenMoved, res.Events[0].Type)
	assert.Equal(t, 1, res.View.HistorySize)

	tests := []struct {
		name   string
		body   interface{}
		status int
	}{
		{"off board", engine.Action{Type: engine.ActionSelectDistrict, X: 4, Y: 0}, http.StatusBadRequest},
		{"unknown citizen", engine.Action{Type: engine.ActionMoveCitizen, CitizenID: 999, X: 1, Y: 1}, http.StatusNotFound},
		{"unknown type", map[string]string{"type": "fly"}, http.StatusBadRequest},
		{"bad json", "select", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, s, http.MethodPost, path, tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}

	w = do(t, s, http.MethodPost, path, engine.Action{Type: engine.ActionReshuffle})
	require.Equal(t, http.StatusOK, w.Code)
	var reshuffled struct {
		Events []engine.Event         `json:"events"`
		View   engine.PublicViewData `json:"view"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reshuffled))
	assert.Equal(t, engine.EventSetup, reshuffled.Events[0].Type)
	assert.Zero(t, reshuffled.View.HistorySize)
	assert.Nil(t, reshuffled.View.Selected)

	w = do(t, s, http.MethodPost, "/api/tables/missing/actions", engine.Action{Type: engine.ActionReshuffle})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCitizensAndNeighbors(t *testing.T) {
	s := newServer(t, defaultConfig())
	tb := createTable(t, s)
	base := "/api/tables/" + tb.ID

	var res struct {
		Citizens  []engine.Citizen `json:"citizens"`
		Neighbors []engine.Coord   `json:"neighbors"`
	}
	w := do(t, s, http.MethodGet, base+"/citizens", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Len(t, res.Citizens, 9)

	w = do(t, s, http.MethodGet, base+"/citizens?group=medical", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.Len(t, res.Citizens, 1)
	assert.Equal(t, "Nurse", res.Citizens[0].Job)

	w = do(t, s, http.MethodGet, base+"/citizens?group=pirates", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, s, http.MethodGet, base+"/neighbors?x=0&y=0", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, []engine.Coord{{X: 1, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}}, res.Neighbors)

	for _, q := range []string{"x=4&y=0", "x=a&y=0", ""} {
		w = do(t, s, http.MethodGet, base+"/neighbors?"+q, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, q)
	}
}

func TestGroups(t *testing.T) {
	s := newServer(t, defaultConfig())
	w := do(t, s, http.MethodGet, "/api/groups", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var res struct {
		Total  int `json:"total"`
		Groups []struct {
			Group engine.Group `json:"group"`
			Count int          `json:"count"`
		} `json:"groups"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, 9, res.Total)
	require.Len(t, res.Groups, 9)
	sum := 0
	for _, g := range res.Groups {
		sum += g.Count
	}
	assert.Equal(t, 9, sum)
}

func TestQRAndViewerID(t *testing.T) {
	s := newServer(t, defaultConfig())
	tb := createTable(t, s)

	w := do(t, s, http.MethodGet, "/api/qr", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = do(t, s, http.MethodGet, "/api/qr?table=missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = do(t, s, http.MethodGet, "/api/qr?table="+tb.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG")))

	w = do(t, s, http.MethodGet, "/api/viewer-id", nil)
	require.Equal(t, http.StatusOK, w.Code)
	_, err := uuid.Parse(w.Body.String())
	assert.NoError(t, err)
}

func TestStaticFiles(t *testing.T) {
	s := newServer(t, defaultConfig())
	w := do(t, s, http.MethodGet, "/board.html", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "board")
}

func dial(t *testing.T, ts *httptest.Server, tableID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?table=" + tableID + "&viewer=v1"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func read(t *testing.T, conn *websocket.Conn) protocol.Envelope {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var env protocol.Envelope
	require.NoError(t, conn.ReadJSON(&env))
	return env
}

func TestWebSocket(t *testing.T) {
	s := newServer(t, defaultConfig())
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()
	tb := createTable(t, s)

	conn := dial(t, ts, tb.ID)
	env := read(t, conn)
	require.Equal(t, protocol.MsgBoardState, env.Type)
	var state protocol.BoardState
	require.NoError(t, env.Decode(&state))
	assert.Equal(t, tb.ID, state.TableID)
	assert.Equal(t, 1, state.Viewers)

	require.NoError(t, conn.WriteJSON(protocol.MustEnvelope(protocol.MsgSelectDistrict, protocol.ActionMsg{X: 3, Y: 3})))
	env = read(t, conn)
	require.Equal(t, protocol.MsgEvent, env.Type)
	var ev engine.Event
	require.NoError(t, env.Decode(&ev))
	assert.Equal(t, engine.EventDistrictSelected, ev.Type)
	env = read(t, conn)
	require.Equal(t, protocol.MsgBoardState, env.Type)
	require.NoError(t, env.Decode(&state))
	assert.True(t, state.View.Board[3][3].IsHighlighted)

	require.NoError(t, conn.WriteJSON(protocol.MustEnvelope(protocol.MsgSelectDistrict, protocol.ActionMsg{X: 9, Y: 9})))
	env = read(t, conn)
	require.Equal(t, protocol.MsgError, env.Type)
	var msg protocol.ErrorMsg
	require.NoError(t, env.Decode(&msg))
	assert.Equal(t, engine.ErrOutOfBounds.Error(), msg.Message)

	w := do(t, s, http.MethodPost, "/api/tables/"+tb.ID+"/actions", engine.Action{Type: engine.ActionReshuffle})
	require.Equal(t, http.StatusOK, w.Code)
	env = read(t, conn)
	require.Equal(t, protocol.MsgEvent, env.Type)
	require.NoError(t, env.Decode(&ev))
	assert.Equal(t, engine.EventSetup, ev.Type)
}

func TestWebSocketRejects(t *testing.T) {
	s := newServer(t, defaultConfig())
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?table=missing"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	url = "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	_, resp, err = websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestWebSocketRateLimit(t *testing.T) {
	s := newServer(t, config.ServerConfig{MessagesPerSecond: 0.001, Burst: 1})
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()
	tb := createTable(t, s)

	conn := dial(t, ts, tb.ID)
	require.NoError(t, conn.WriteJSON(protocol.Envelope{Type: protocol.MsgRefresh}))
	require.NoError(t, conn.WriteJSON(protocol.Envelope{Type: protocol.MsgRefresh}))

	types := map[string]int{}
	for i := 0; i < 3; i++ {
		types[read(t, conn).Type]++
	}
	assert.Equal(t, map[string]int{protocol.MsgBoardState: 2, protocol.MsgError: 1}, types)
}

func TestDeleteDisconnectsViewers(t *testing.T) {
	s := newServer(t, defaultConfig())
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()
	tb := createTable(t, s)

	conn := dial(t, ts, tb.ID)
	read(t, conn)

	w := do(t, s, http.MethodDelete, "/api/tables/"+tb.ID, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
}

func TestWebSocketCloseAfterRequest(t *testing.T) {
	s := newServer(t, defaultConfig())
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()
	tb := createTable(t, s)

	for i := 0; i < 50; i++ {
		conn := dial(t, ts, tb.ID)
		read(t, conn)
		require.NoError(t, conn.WriteJSON(protocol.Envelope{Type: protocol.MsgRefresh}))
		require.NoError(t, conn.WriteJSON(protocol.MustEnvelope(protocol.MsgSelectDistrict, protocol.ActionMsg{X: 9, Y: 9})))
		conn.Close()
	}

	conn := dial(t, ts, tb.ID)
	env := read(t, conn)
	assert.Equal(t, protocol.MsgBoardState, env.Type)
	w := do(t, s, http.MethodGet, "/api/tables/"+tb.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGroupsForTable(t *testing.T) {
	s := newServer(t, defaultConfig())
	tb := createTable(t, s)

	w := do(t, s, http.MethodGet, "/api/groups?table="+tb.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var res struct {
		Total  int `json:"total"`
		Groups []struct {
			Group engine.Group `json:"group"`
			Count int          `json:"count"`
			Jobs  []string     `json:"jobs"`
		} `json:"groups"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, 9, res.Total)
	require.Len(t, res.Groups, 9)
	assert.Equal(t, engine.GroupGovernment, res.Groups[0].Group)
	assert.Equal(t, 1, res.Groups[0].Count)
	assert.Contains(t, res.Groups[0].Jobs, "Judge")

	w = do(t, s, http.MethodGet, "/api/groups?table=missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
