package services

import (
	"context"
	"errors"
	"testing"

	"github.com/campusnet/backend/internal/models"
)

func TestSend(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	a := e.users.add("alice", models.RoleStudent)
	b := e.users.add("bob", models.RoleStudent)
	c := e.users.add("carol", models.RoleStudent)
	e.follows.follow(b.ID, a.ID) // either direction counts

	tests := []struct {
		name    string
		from    uint
		to      uint
		wantErr error
	}{
		{"self", a.ID, a.ID, ErrInvalidState},
		{"unknown recipient", a.ID, 99, ErrNotFound},
		{"not friends", a.ID, c.ID, ErrUnauthorized},
		{"friends", a.ID, b.ID, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.messaging.Send(ctx, tt.from, tt.to, "hey")
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	if len(e.messages.items) != 1 {
		t.Fatalf("expected exactly one stored message, got %d", len(e.messages.items))
	}
	got := e.notifications.forRecipient(b.ID)
	if len(got) != 1 || got[0].Type != models.NotificationMessage || got[0].Preview != "hey" {
		t.Fatalf("expected message notification, got %+v", got)
	}
}

func TestConversations(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	a := e.users.add("alice", models.RoleStudent)
	b := e.users.add("bob", models.RoleStudent)
	c := e.users.add("carol", models.RoleStudent)
	e.follows.follow(a.ID, b.ID)
	e.follows.follow(c.ID, a.ID)

	send := func(from, to uint, text string) {
		t.Helper()
		if _, err := e.messaging.Send(ctx, from, to, text); err != nil {
			t.Fatalf("Send: %v", err)
		}
	}
	send(b.ID, a.ID, "one")
	send(b.ID, a.ID, "two")
	send(c.ID, a.ID, "three")

	convs, err := e.messaging.Conversations(ctx, a.ID)
	if err != nil {
		t.Fatalf("Conversations: %v", err)
	}
	if len(convs) != 2 || convs[0].Peer.ID != c.ID || convs[1].Peer.ID != b.ID {
		t.Fatalf("expected carol then bob, got %+v", convs)
	}
	if convs[1].Unread != 2 || convs[1].LastMessage.Text != "two" {
		t.Fatalf("unexpected bob thread %+v", convs[1])
	}

	if n, err := e.messaging.MarkConversationRead(ctx, a.ID, b.ID); err != nil || n != 2 {
		t.Fatalf("MarkConversationRead: %d, %v", n, err)
	}
	thread, total, err := e.messaging.Conversation(ctx, a.ID, b.ID, models.NewPage(1, 20))
	if err != nil || total != 2 || thread[0].Text != "two" {
		t.Fatalf("Conversation: %+v total=%d err=%v", thread, total, err)
	}
}
