// Package messaging defines interfaces for real-time communication.
package messaging

// Broadcaster fans session updates out to every connected client of that session.
type Broadcaster interface {
	AddClient(sessionID string) chan []byte
	RemoveClient(ch chan []byte, sessionID string)
	Broadcast(sessionID string, payload any)
}
