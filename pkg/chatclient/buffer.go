package chatclient

import (
	"time"
)

// Message — сообщение чата в проводном формате сервера.
type Message struct {
	ID           int64     `json:"id"`
	LocationID   string    `json:"locationId"`
	PlayerID     string    `json:"playerId"`
	PlayerName   string    `json:"playerName"`
	PlayerAvatar string    `json:"playerAvatar"`
	Message      string    `json:"message"`
	Timestamp    time.Time `json:"timestamp"`
}

// Participant — участник комнаты в проводном формате.
type Participant struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Avatar   string `json:"avatar"`
}

// Buffer — упорядоченный буфер сообщений одной локации: от старых к новым.
// Дозагрузка истории вставляет страницы в начало, живые события — в конец.
type Buffer struct {
	messages []Message
	known    map[int64]struct{}
}

func NewBuffer() *Buffer {
	return &Buffer{known: make(map[int64]struct{})}
}

// Seed заменяет содержимое первой страницей истории.
func (b *Buffer) Seed(messages []Message) {
	b.messages = b.messages[:0]
	b.known = make(map[int64]struct{}, len(messages))
	for _, m := range messages {
		b.messages = append(b.messages, m)
		b.known[m.ID] = struct{}{}
	}
}

// Append добавляет живое сообщение в конец. Дубликаты игнорируются.
func (b *Buffer) Append(m Message) bool {
	if _, ok := b.known[m.ID]; ok {
		return false
	}
	b.messages = append(b.messages, m)
	b.known[m.ID] = struct{}{}
	return true
}

// Prepend вставляет страницу более старых сообщений перед текущими и
// возвращает число реально вставленных. Контракт прокрутки: позиция
// любого прежнего сообщения сдвигается ровно на это число — вызывающая
// сторона компенсирует смещение, и видимое сообщение остаётся на месте.
func (b *Buffer) Prepend(older []Message) int {
	fresh := make([]Message, 0, len(older))
	for _, m := range older {
		if _, ok := b.known[m.ID]; ok {
			continue
		}
		fresh = append(fresh, m)
		b.known[m.ID] = struct{}{}
	}

	if len(fresh) == 0 {
		return 0
	}

	b.messages = append(fresh, b.messages...)
	return len(fresh)
}

// Oldest возвращает самое старое сообщение буфера.
func (b *Buffer) Oldest() (Message, bool) {
	if len(b.messages) == 0 {
		return Message{}, false
	}
	return b.messages[0], true
}

// Messages возвращает копию содержимого, от старых к новым.
func (b *Buffer) Messages() []Message {
	out := make([]Message, len(b.messages))
	copy(out, b.messages)
	return out
}

// IndexOf возвращает позицию сообщения или -1.
func (b *Buffer) IndexOf(id int64) int {
	for i, m := range b.messages {
		if m.ID == id {
			return i
		}
	}
	return -1
}

func (b *Buffer) Len() int {
	return len(b.messages)
}
