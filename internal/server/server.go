package server

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/pdolan/connectra/internal/stats"
	"github.com/pdolan/connectra/internal/store"
	"github.com/pdolan/connectra/internal/types"
)

// ChatServer owns the connected client set and the room registry, and
// carries every real-time operation: presence, join/leave, typing and
// the message send path.
type ChatServer struct {
	log         *log.Logger
	store       store.Repository
	stats       stats.StatsProvider
	registry    *RoomRegistry
	clients     map[*Client]struct{}
	clientsLock sync.Mutex
}

func NewChatServer(logger *log.Logger, repo store.Repository, statsProvider stats.StatsProvider) (*ChatServer, error) {
	statsProvider.RegisterMetric(stats.ActiveConnections)
	statsProvider.RegisterMetric(stats.ActiveRooms)
	statsProvider.RegisterMetric(stats.MessagesSent)
	statsProvider.RegisterMetric(stats.MentionsSent)

	return &ChatServer{
		log:      logger,
		store:    repo,
		stats:    statsProvider,
		registry: NewRoomRegistry(statsProvider),
		clients:  make(map[*Client]struct{}),
	}, nil
}

// RegisterClient wires a freshly upgraded connection into the server:
// the session joins its personal room, the user is marked online and a
// presence change is broadcast to every connected session.
func (cs *ChatServer) RegisterClient(c *Client) {
	cs.clientsLock.Lock()
	cs.clients[c] = struct{}{}
	cs.clientsLock.Unlock()

	cs.stats.Incr(stats.ActiveConnections)
	cs.registry.Join(c, c.user.Username)

	if err := cs.store.SetOnline(c.user.Username, true); err != nil {
		cs.log.Printf("mark %q online: %v", c.user.Username, err)
	}

	cs.broadcastAll(UserStatusEvent(c.user.Username, true), nil)
}

// DeregisterClient removes a disconnected session from the client set
// and from every room it had joined, marks the user offline and
// broadcasts the presence change. Safe to call more than once.
func (cs *ChatServer) DeregisterClient(c *Client) {
	cs.clientsLock.Lock()
	_, registered := cs.clients[c]
	delete(cs.clients, c)
	cs.clientsLock.Unlock()

	if !registered {
		return
	}

	cs.stats.Decr(stats.ActiveConnections)
	cs.registry.RemoveClient(c)

	if err := cs.store.SetOnline(c.user.Username, false); err != nil {
		cs.log.Printf("mark %q offline: %v", c.user.Username, err)
	}

	cs.broadcastAll(UserStatusEvent(c.user.Username, false), nil)
}

func (cs *ChatServer) JoinChat(c *Client, chatId string) {
	cs.registry.Join(c, chatId)
	c.queueEvent(JoinedChatEvent(chatId))
}

func (cs *ChatServer) LeaveChat(c *Client, chatId string) {
	cs.registry.Leave(c, chatId)
	c.queueEvent(LeftChatEvent(chatId))
}

// Typing relays an ephemeral typing indicator to the chat room,
// excluding the originating session. Nothing is persisted.
func (cs *ChatServer) Typing(c *Client, chatId string, stop bool) {
	cs.broadcastRoom(chatId, TypingEvent(chatId, c.user.Username, stop), c)
}

type SendMessageParams struct {
	Sender     types.User
	ChatId     string
	Content    string
	Attachment *types.Attachment
}

// SendMessage is the send path of the message bus: resolve mentions,
// resolve or lazily create the chat, persist the message, then fan out.
// The store write completes before any event is queued; a persistence
// failure aborts with nothing broadcast.
func (cs *ChatServer) SendMessage(params SendMessageParams) (types.Message, error) {
	users, err := cs.store.ListUsers()
	if err != nil {
		return types.Message{}, fmt.Errorf("list users: %w", err)
	}

	display, mentions := resolveMentions(params.Content, users)

	var attachments []types.Attachment
	if params.Attachment != nil {
		attachments = append(attachments, *params.Attachment)
		if params.Content == "" {
			display = fmt.Sprintf("Shared a %s: %s", params.Attachment.Type, params.Attachment.Filename)
		}
	}

	chat, err := cs.resolveChat(params.ChatId)
	if err != nil {
		return types.Message{}, err
	}

	msg := types.Message{
		Id:          uuid.NewString(),
		UserId:      params.Sender.Id,
		Username:    params.Sender.Username,
		Content:     display,
		RawContent:  params.Content,
		Mentions:    mentions,
		Timestamp:   Now(),
		Type:        "text",
		Attachments: attachments,
	}

	if err := cs.store.AppendMessage(chat.Id, msg); err != nil {
		return types.Message{}, fmt.Errorf("append message: %w", err)
	}

	event := NewMessageEvent(chat.Id, msg)
	if chat.Type == types.ChatTypeDirect {
		// Direct chats deliver to each participant's personal room so
		// recipients hear about the message whichever chat UI is open.
		for _, participant := range chat.Participants {
			cs.broadcastRoom(participant, event, nil)
		}
	} else {
		cs.broadcastRoom(chat.Id, event, nil)
	}
	cs.stats.Incr(stats.MessagesSent)

	for _, mentioned := range mentions {
		if mentioned == params.Sender.Username {
			continue
		}

		cs.broadcastRoom(mentioned, MentionEvent(params.Sender.Username, chat.Id, params.Content, msg.Timestamp), nil)
		cs.stats.Incr(stats.MentionsSent)
	}

	return msg, nil
}

// resolveChat looks the chat up, synthesizing a direct chat on first use
// when the identifier encodes a valid participant pair.
func (cs *ChatServer) resolveChat(chatId string) (types.Chat, error) {
	chat, err := cs.store.GetChat(chatId)
	if err == nil {
		return chat, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return types.Chat{}, fmt.Errorf("get chat: %w", err)
	}

	a, b, ok := store.ParseDirectChatId(chatId)
	if !ok {
		return types.Chat{}, store.ErrNotFound
	}

	return cs.store.EnsureDirectChat(a, b)
}

// broadcastRoom queues the event on every member of the room except
// skip. Events to full buffers are dropped; there is no redelivery.
func (cs *ChatServer) broadcastRoom(room string, event *ServerEvent, skip *Client) {
	for _, c := range cs.registry.Members(room) {
		if c == skip {
			continue
		}
		c.queueEvent(event)
	}
}

func (cs *ChatServer) broadcastAll(event *ServerEvent, skip *Client) {
	cs.clientsLock.Lock()
	defer cs.clientsLock.Unlock()

	for c := range cs.clients {
		if c == skip {
			continue
		}
		c.queueEvent(event)
	}
}

// Shutdown stops every connected client's pumps.
func (cs *ChatServer) Shutdown() {
	cs.clientsLock.Lock()
	clients := make([]*Client, 0, len(cs.clients))
	for c := range cs.clients {
		clients = append(clients, c)
	}
	cs.clientsLock.Unlock()

	for _, c := range clients {
		c.stopClient()
	}
}
