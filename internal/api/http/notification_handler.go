package http

import (
	"net/http"
)

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	unreadOnly := r.URL.Query().Get("unread") == "true"
	notifications, total, unread, err := s.notifs.List(r.Context(), currentUser(r).ID, unreadOnly, page, limit)
	if err != nil {
		respondError(w, r, err)
		return
	}
	pages := total / limit
	if total%limit != 0 {
		pages++
	}
	writeJSON(w, http.StatusOK, response{
		Success: true,
		Data: map[string]any{
			"notifications": notifications,
			"unreadCount":   unread,
		},
		Pagination: &Pagination{Page: page, Limit: limit, Total: total, Pages: pages},
	})
}

func (s *Server) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := s.notifs.MarkAsRead(r.Context(), id, currentUser(r).ID); err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, map[string]string{"message": "Notification marked as read."})
}

func (s *Server) handleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	if err := s.notifs.MarkAllAsRead(r.Context(), currentUser(r).ID); err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, map[string]string{"message": "All notifications marked as read."})
}

func (s *Server) handleDeleteNotification(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := s.notifs.Delete(r.Context(), id, currentUser(r).ID); err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, map[string]string{"message": "Notification deleted."})
}

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	if err := s.hub.ServeWS(w, r, currentUser(r).ID); err != nil {
		respondError(w, r, err)
	}
}
