// Package proxy bridges a client WebSocket onto the browser engine's CDP
// endpoint so the live session can be inspected with standard DevTools.
package proxy

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/shehryarbajwa/cf-calendar-api/internal/browser"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Server proxies debug connections to the shared browser session.
type Server struct {
	sessions *browser.Manager
	log      *zap.SugaredLogger
}

// NewServer creates a debug proxy over the session manager.
func NewServer(sessions *browser.Manager, log *zap.SugaredLogger) *Server {
	return &Server{
		sessions: sessions,
		log:      log,
	}
}

// HandleDebugConnection upgrades the request and pipes CDP traffic in both
// directions until either side closes. The browser must already be running;
// the proxy never triggers a cold start.
func (s *Server) HandleDebugConnection(w http.ResponseWriter, r *http.Request) {
	controlURL := s.sessions.ControlURL()
	if controlURL == "" {
		http.Error(w, "browser session is not running", http.StatusConflict)
		return
	}

	clientConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warnw("debug upgrade failed", "error", err)
		return
	}
	defer clientConn.Close()

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	chromeConn, _, err := websocket.DefaultDialer.DialContext(ctx, controlURL, nil)
	if err != nil {
		s.log.Warnw("failed to dial browser CDP endpoint", "control_url", controlURL, "error", err)
		clientConn.WriteMessage(websocket.TextMessage, []byte("error connecting to browser"))
		return
	}
	defer chromeConn.Close()

	s.log.Infow("debug client attached", "remote", r.RemoteAddr)

	errChan := make(chan error, 2)
	go func() {
		errChan <- s.proxyMessages(clientConn, chromeConn)
	}()
	go func() {
		errChan <- s.proxyMessages(chromeConn, clientConn)
	}()

	if err := <-errChan; err != nil && err != io.EOF {
		if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
			s.log.Warnw("debug proxy closed with error", "error", err)
		}
	}

	s.log.Infow("debug client detached", "remote", r.RemoteAddr)
}

func (s *Server) proxyMessages(src, dst *websocket.Conn) error {
	for {
		messageType, message, err := src.ReadMessage()
		if err != nil {
			return err
		}
		if err := dst.WriteMessage(messageType, message); err != nil {
			return err
		}
	}
}
