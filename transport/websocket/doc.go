// Package websocket streams solution replays to browser viewers.
//
// A Hub keeps one set of clients per run ID. Viewers connect with
// ?run=<id> and receive JSON messages of the form
//
//	{"run_id": "...", "event": "frame", "frame": {...}}
//
// where frame is a service.Frame: the step number, the action taken,
// Pacman's position, the pie phase, remaining food and pies, the
// vanished walls and the rendered board. Playback start and finish are
// announced with the playback_started and playback_finished events.
//
// Usage:
//
//	hub := websocket.NewHub(logger)
//	go hub.Run()
//	router.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("run"))
//	})
//
// Clients whose send buffer fills up are dropped.
package websocket
