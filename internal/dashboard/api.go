package dashboard

import (
	"encoding/json"
	"fmt"
	"net/http"

	"tilemaster/internal/state"
)

// onChange translates an app mutation into push messages. Every change
// is followed by a stats refresh so gauges stay current.
func (s *Server) onChange(ev state.ChangeEvent) {
	var typ MessageType
	switch ev.Collection {
	case "tiles":
		typ = MessageTypeStockUpdate
	case "customers":
		typ = MessageTypeCustomerUpdate
	case "employees":
		typ = MessageTypeStaffUpdate
	default:
		if ev.Action == "reset" {
			s.Broadcast(Message{Type: MessageTypeReset})
			s.broadcastStats()
		}
		return
	}

	payload, err := json.Marshal(UpdateData{ID: ev.ID, Action: ev.Action, Name: ev.Name})
	if err != nil {
		return
	}
	s.Broadcast(Message{Type: typ, Data: payload})
	s.broadcastStats()
}

func (s *Server) broadcastStats() {
	payload, err := json.Marshal(statsData(s.app.Stats()))
	if err != nil {
		return
	}
	s.Broadcast(Message{Type: MessageTypeStats, Data: payload})
}

func statsData(st state.Stats) StatsData {
	return StatsData{
		ItemCount:     st.ItemCount,
		UnitCount:     st.UnitCount,
		TotalValue:    st.TotalValue,
		TopCategory:   st.TopCategory,
		LowStockCount: len(st.LowStock),
		CustomerCount: st.CustomerCount,
		StaffCount:    st.StaffCount,
		TotalRevenue:  st.TotalRevenue,
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Printf("Failed to write response: %v", err)
	}
}

func (s *Server) handleStock(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.app.Stock())
}

func (s *Server) handleCustomers(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.app.Customers())
}

// handleStaff serves the roster with credentials blanked. The wire
// format is otherwise identical to the stored records.
func (s *Server) handleStaff(w http.ResponseWriter, r *http.Request) {
	roster := s.app.Staff()
	for i := range roster {
		roster[i].Password = ""
	}
	s.writeJSON(w, roster)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, statsData(s.app.Stats()))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.clientsMu.RLock()
	clientCount := len(s.clients)
	s.clientsMu.RUnlock()

	s.writeJSON(w, map[string]any{
		"status":  "ok",
		"clients": clientCount,
	})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	_, _ = fmt.Fprintf(w, `<!DOCTYPE html>
<html>
<head>
    <title>TileMaster Dashboard</title>
</head>
<body>
    <h1>TileMaster Dashboard</h1>
    <p>WebSocket endpoint: <code>ws://%s/ws</code></p>
    <p>Health check: <a href="/health">/health</a></p>
    <p>JSON: <a href="/api/stock">/api/stock</a>,
       <a href="/api/customers">/api/customers</a>,
       <a href="/api/staff">/api/staff</a>,
       <a href="/api/stats">/api/stats</a></p>
</body>
</html>`, r.Host)
}
