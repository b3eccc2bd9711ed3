// Package sse provides Server-Sent Events client management for post change
// notifications.
package sse

import "sync"

// Client subscribes to change events for one topic (a path such as "/blog"
// or a post id), or to every event when Topic is empty.
type Client struct {
	Msg   chan string
	Topic string
}

type Clients struct {
	clients map[*Client]bool
	mu      sync.RWMutex
}

func NewClients() *Clients {
	return &Clients{
		clients: make(map[*Client]bool),
	}
}

func (s *Clients) Add(client *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[client] = true
}

func (s *Clients) Delete(client *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.clients, client)
	close(client.Msg)
}

// Broadcast delivers msg to subscribers of topic. Slow clients are skipped
// rather than blocking the publisher.
func (s *Clients) Broadcast(topic, msg string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for client := range s.clients {
		if client.Topic == "" || client.Topic == topic {
			select {
			case client.Msg <- msg:
			default:
			}
		}
	}
}

func (s *Clients) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}
