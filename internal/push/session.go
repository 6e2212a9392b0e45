package push

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Session connexion de push d'un utilisateur. Le registre détient la seule
// référence forte; la session ne référence son utilisateur que par valeur.
type Session struct {
	ID     string
	UserID string

	conn *websocket.Conn
	send chan *Event

	closeOnce sync.Once
}

// NewSession crée une session pour une connexion acceptée
func NewSession(id string, userID string, conn *websocket.Conn, sendBuffer int) *Session {
	return &Session{
		ID:     id,
		UserID: userID,
		conn:   conn,
		send:   make(chan *Event, sendBuffer),
	}
}

// emit dépose un événement sur le canal d'envoi de la session, borné par le
// budget donné. Faux si la session est saturée ou fermée; l'appelant passe à
// la session suivante.
func (s *Session) emit(event *Event, timeout time.Duration) (ok bool) {
	defer func() {
		// Canal fermé par une déconnexion concurrente
		if recover() != nil {
			ok = false
		}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case s.send <- event:
		return true
	case <-timer.C:
		return false
	}
}

// closeSend ferme le canal d'envoi, une seule fois quel que soit le nombre de
// déconnexions signalées
func (s *Session) closeSend() {
	s.closeOnce.Do(func() {
		close(s.send)
	})
}
