package sse

import "testing"

func TestBroadcastTopicFiltering(t *testing.T) {
	clients := NewClients()

	blog := &Client{Msg: make(chan string, 1), Topic: "/blog"}
	dash := &Client{Msg: make(chan string, 1), Topic: "/dashboard"}
	all := &Client{Msg: make(chan string, 1)}
	clients.Add(blog)
	clients.Add(dash)
	clients.Add(all)

	clients.Broadcast("/blog", "updated")

	select {
	case msg := <-blog.Msg:
		if msg != "updated" {
			t.Errorf("blog client got %q", msg)
		}
	default:
		t.Error("blog subscriber did not receive broadcast")
	}

	select {
	case <-dash.Msg:
		t.Error("dashboard subscriber received unrelated broadcast")
	default:
	}

	select {
	case <-all.Msg:
	default:
		t.Error("wildcard subscriber did not receive broadcast")
	}
}

func TestBroadcastSkipsFullClients(t *testing.T) {
	clients := NewClients()
	c := &Client{Msg: make(chan string, 1), Topic: "/blog"}
	clients.Add(c)

	// Fill the buffer; the second broadcast must not block.
	clients.Broadcast("/blog", "first")
	clients.Broadcast("/blog", "second")

	if got := <-c.Msg; got != "first" {
		t.Errorf("got %q, want first", got)
	}
}

func TestDeleteClosesChannel(t *testing.T) {
	clients := NewClients()
	c := &Client{Msg: make(chan string, 1), Topic: "/blog"}
	clients.Add(c)
	clients.Delete(c)

	if _, open := <-c.Msg; open {
		t.Error("channel still open after Delete")
	}
	if clients.Len() != 0 {
		t.Errorf("Len = %d after Delete", clients.Len())
	}
}
