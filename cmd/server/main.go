package main

import (
	"flag"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"pixelminer/server/auth"
	"pixelminer/server/config"
	"pixelminer/server/srv"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  2048,
	WriteBufferSize: 2048,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

func wsHandler(h *srv.Hub, a *auth.Auth) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Auth is optional on the game socket: a valid token binds the
		// account name, anything else plays as a guest.
		username := ""
		if tok := auth.TokenFromRequest(r); tok != "" {
			if name, err := a.ParseToken(tok); err == nil {
				username = name
			}
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			srv.Log.Warnw("upgrade failed", "err", err)
			return
		}
		if username != "" {
			h.HandleWSAuth(conn, username)
		} else {
			h.HandleWS(conn)
		}
	}
}

func main() {
	var cfgPath string
	flag.StringVar(&cfgPath, "config", "config.yaml", "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		panic(err)
	}
	if err := srv.InitLogger(cfg.LogFile); err != nil {
		panic(err)
	}
	defer srv.SyncLogger()

	a, err := auth.NewAuth(cfg.DataDir, srv.Log)
	if err != nil {
		srv.Log.Fatalw("auth init failed", "err", err)
	}

	hub := srv.NewHub(srv.Options{
		CodeLength:        cfg.CodeLength,
		DefaultMaxPlayers: cfg.DefaultMaxPlayers,
		MaxRoomPlayers:    cfg.MaxRoomPlayers,
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/register", a.HandleRegister)
	mux.HandleFunc("/auth/login", a.HandleLogin)
	mux.HandleFunc("/ws", wsHandler(hub, a))
	mux.HandleFunc("/metrics", hub.HandleMetrics)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("ok")) })

	s := &http.Server{
		Addr:         cfg.Addr,
		Handler:      mux,
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.IdleTimeout) * time.Second,
	}
	srv.Log.Infow("server listening", "addr", cfg.Addr)
	if err := s.ListenAndServe(); err != nil {
		srv.Log.Fatalw("listen failed", "err", err)
	}
}
