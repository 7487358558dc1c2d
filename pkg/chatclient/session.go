package chatclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// События протокола чата. Зеркалят серверные имена.
const (
	eventJoinLocation       = "join-location"
	eventSendMessage        = "send-message"
	eventNewMessage         = "new-message"
	eventParticipantsUpdate = "participants-update"
	eventRateLimit          = "rate-limit"
)

const (
	defaultInitialPageSize = 100
	defaultPageSize        = 50
	defaultWriteWait       = 10 * time.Second
)

// Identity — игрок, от имени которого открывается сессия.
type Identity struct {
	PlayerID string
	Name     string
	Avatar   string
}

type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type outEnvelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

type joinPayload struct {
	LocationID   string `json:"locationId"`
	PlayerID     string `json:"playerId"`
	PlayerName   string `json:"playerName"`
	PlayerAvatar string `json:"playerAvatar"`
}

type sendPayload struct {
	LocationID   string `json:"locationId"`
	PlayerID     string `json:"playerId"`
	Message      string `json:"message"`
	PlayerName   string `json:"playerName"`
	PlayerAvatar string `json:"playerAvatar"`
}

type rateLimitPayload struct {
	Message string `json:"message"`
}

// Option настраивает клиент.
type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithDialer(d *websocket.Dialer) Option {
	return func(c *Client) { c.dialer = d }
}

// WithPageSizes задаёт размер первой страницы истории и страниц дозагрузки.
func WithPageSizes(initial, older int) Option {
	return func(c *Client) {
		c.initialPageSize = initial
		c.pageSize = older
	}
}

// Client открывает чат-сессии к серверу. Активная сессия всегда
// не более одной: смена игрока или локации закрывает предыдущую.
type Client struct {
	baseURL         string
	http            *http.Client
	dialer          *websocket.Dialer
	initialPageSize int
	pageSize        int

	mu     sync.Mutex
	active *Session
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:         strings.TrimRight(baseURL, "/"),
		http:            http.DefaultClient,
		dialer:          websocket.DefaultDialer,
		initialPageSize: defaultInitialPageSize,
		pageSize:        defaultPageSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Open создаёт сессию чата локации: соединение, вход в комнату и
// первая страница истории. Прежняя сессия, если была, закрывается до
// открытия новой — два живых соединения исключены.
func (c *Client) Open(ctx context.Context, player Identity, locationID string) (*Session, error) {
	c.mu.Lock()
	if c.active != nil {
		c.active.Close()
		c.active = nil
	}
	c.mu.Unlock()

	wsURL, err := c.websocketURL()
	if err != nil {
		return nil, err
	}

	conn, resp, err := c.dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("dial chat: %w", err)
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	s := &Session{
		locationID: locationID,
		player:     player,
		conn:       conn,
		fetch:      c.historyFetcher(locationID),
		pageSize:   c.pageSize,
		buffer:     NewBuffer(),
		notices:    make(chan string, 4),
		done:       make(chan struct{}),
	}

	if err := s.writeJSON(outEnvelope{
		Event: eventJoinLocation,
		Data: joinPayload{
			LocationID:   locationID,
			PlayerID:     player.PlayerID,
			PlayerName:   player.Name,
			PlayerAvatar: player.Avatar,
		},
	}); err != nil {
		conn.Close()
		return nil, fmt.Errorf("join location: %w", err)
	}

	if err := s.hydrate(ctx, c.initialPageSize); err != nil {
		conn.Close()
		return nil, err
	}

	go s.readLoop()

	c.mu.Lock()
	c.active = s
	c.mu.Unlock()

	return s, nil
}

// Close закрывает активную сессию, если она есть.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active != nil {
		c.active.Close()
		c.active = nil
	}
}

func (c *Client) websocketURL() (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("parse server URL: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	u.Path = "/ws/chat"
	return u.String(), nil
}

func (c *Client) historyFetcher(locationID string) historyFunc {
	return func(ctx context.Context, limit int, before *time.Time) ([]Message, error) {
		endpoint := fmt.Sprintf("%s/api/v1/messages/location/%s", c.baseURL, url.PathEscape(locationID))

		query := url.Values{}
		query.Set("limit", strconv.Itoa(limit))
		if before != nil {
			query.Set("before", before.UTC().Format(time.RFC3339Nano))
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+query.Encode(), nil)
		if err != nil {
			return nil, err
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("fetch history: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return nil, fmt.Errorf("fetch history: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		}

		var page []Message
		if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
			return nil, fmt.Errorf("decode history: %w", err)
		}
		return page, nil
	}
}

type historyFunc func(ctx context.Context, limit int, before *time.Time) ([]Message, error)

// Session — открытая комната чата одной локации: буфер сообщений,
// состав участников и дозагрузка истории при прокрутке вверх.
type Session struct {
	locationID string
	player     Identity

	conn    *websocket.Conn
	writeMu sync.Mutex

	fetch    historyFunc
	pageSize int

	mu           sync.Mutex
	buffer       *Buffer
	participants []Participant
	hasMore      bool
	loadingMore  bool

	notices   chan string
	done      chan struct{}
	closeOnce sync.Once
}

// hydrate загружает первую страницу истории. Полная страница означает,
// что выше может быть ещё.
func (s *Session) hydrate(ctx context.Context, limit int) error {
	page, err := s.fetch(ctx, limit, nil)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.buffer.Seed(page)
	s.hasMore = len(page) == limit
	s.mu.Unlock()
	return nil
}

// Send отправляет сообщение в комнату сессии.
func (s *Session) Send(text string) error {
	return s.writeJSON(outEnvelope{
		Event: eventSendMessage,
		Data: sendPayload{
			LocationID:   s.locationID,
			PlayerID:     s.player.PlayerID,
			Message:      text,
			PlayerName:   s.player.Name,
			PlayerAvatar: s.player.Avatar,
		},
	})
}

// LoadMore запрашивает страницу сообщений старше самого старого в буфере
// и вставляет её в начало. Возвращает число вставленных сообщений —
// на столько позиций сдвинулось всё видимое, и вызывающая сторона
// компенсирует прокрутку. Повторный вызов до завершения предыдущего
// не делает ничего.
func (s *Session) LoadMore(ctx context.Context) (int, error) {
	s.mu.Lock()
	if s.loadingMore || !s.hasMore {
		s.mu.Unlock()
		return 0, nil
	}
	s.loadingMore = true
	oldest, ok := s.buffer.Oldest()
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.loadingMore = false
		s.mu.Unlock()
	}()

	var before *time.Time
	if ok {
		t := oldest.Timestamp
		before = &t
	}

	page, err := s.fetch(ctx, s.pageSize, before)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	inserted := s.buffer.Prepend(page)
	if len(page) < s.pageSize {
		// Короткая страница — история исчерпана
		s.hasMore = false
	}
	return inserted, nil
}

// Messages возвращает снимок буфера, от старых к новым.
func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buffer.Messages()
}

// Participants возвращает текущий состав комнаты.
func (s *Session) Participants() []Participant {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Participant, len(s.participants))
	copy(out, s.participants)
	return out
}

// HasMore сообщает, есть ли выше ещё не загруженная история.
func (s *Session) HasMore() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasMore
}

// Notices — канал персональных уведомлений сервера, в том числе о
// превышении лимита сообщений.
func (s *Session) Notices() <-chan string {
	return s.notices
}

// Done закрывается, когда сессия завершена.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Close завершает сессию и закрывает соединение.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		if s.conn != nil {
			s.writeMu.Lock()
			s.conn.SetWriteDeadline(time.Now().Add(time.Second))
			s.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			s.writeMu.Unlock()
			s.conn.Close()
		}
	})
}

func (s *Session) writeJSON(v any) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(defaultWriteWait))
	return s.conn.WriteJSON(v)
}

func (s *Session) readLoop() {
	defer s.Close()
	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			return
		}
		s.handleFrame(raw)
	}
}

// handleFrame разбирает входящий кадр и обновляет состояние сессии.
func (s *Session) handleFrame(raw []byte) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return
	}

	switch env.Event {
	case eventNewMessage:
		var m Message
		if err := json.Unmarshal(env.Data, &m); err != nil {
			return
		}
		// Событие чужой локации не трогает буфер активной комнаты
		if m.LocationID != s.locationID {
			return
		}
		s.mu.Lock()
		s.buffer.Append(m)
		s.mu.Unlock()

	case eventParticipantsUpdate:
		var roster []Participant
		if err := json.Unmarshal(env.Data, &roster); err != nil {
			return
		}
		s.mu.Lock()
		s.participants = roster
		s.mu.Unlock()

	case eventRateLimit:
		var payload rateLimitPayload
		if err := json.Unmarshal(env.Data, &payload); err != nil {
			return
		}
		select {
		case s.notices <- payload.Message:
		default:
			// Переполненный канал уведомлений не блокирует чтение
		}
	}
}
