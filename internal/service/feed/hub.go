// Package feed 负责小组帖子的实时推送
// hub.go
// 核心职责：维护每个小组的在线 WebSocket 连接，并把帖子扇出给它们
package feed

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"church_app_server/internal/dto/respond"
	"church_app_server/pkg/constants"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  2048,
	WriteBufferSize: 2048,
	// 跨域由 cors 中间件和网关处理
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Client 一条已进入小组页面的连接
type Client struct {
	conn    *websocket.Conn
	userId  string
	groupId string
	send    chan []byte
	once    sync.Once
}

func newClient(conn *websocket.Conn, userId, groupId string) *Client {
	return &Client{
		conn:    conn,
		userId:  userId,
		groupId: groupId,
		send:    make(chan []byte, constants.CHANNEL_SIZE),
	}
}

// closeSend 关闭发送通道，写协程随之退出并关闭底层连接
func (c *Client) closeSend() {
	c.once.Do(func() { close(c.send) })
}

// Hub 按小组维护在线连接
type Hub struct {
	mu     sync.RWMutex
	groups map[string]map[*Client]struct{}
}

// NewHub 创建 Hub
func NewHub() *Hub {
	return &Hub{groups: make(map[string]map[*Client]struct{})}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.groups[c.groupId]
	if !ok {
		set = make(map[*Client]struct{})
		h.groups[c.groupId] = set
	}
	set[c] = struct{}{}
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	set, ok := h.groups[c.groupId]
	if ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.groups, c.groupId)
		}
	}
	h.mu.Unlock()
	c.closeSend()
}

// Online 某小组当前在线连接数
func (h *Hub) Online(groupId string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.groups[groupId])
}

// Kick 断开某用户在该小组的全部连接，返回断开数
// 成员被移除或申请被拒绝后调用
func (h *Hub) Kick(userId, groupId string) int {
	var hit []*Client
	h.mu.RLock()
	for c := range h.groups[groupId] {
		if c.userId == userId {
			hit = append(hit, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range hit {
		h.unregister(c)
	}
	return len(hit)
}

// Deliver 把帖子推给该小组的所有在线连接
// 发送缓冲已满的慢连接直接断开，不阻塞其他连接
func (h *Hub) Deliver(post respond.GroupPostView) {
	payload, err := json.Marshal(post)
	if err != nil {
		zap.L().Error("marshal group post", zap.Error(err))
		return
	}

	var slow []*Client
	h.mu.RLock()
	for c := range h.groups[post.GroupId] {
		select {
		case c.send <- payload:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		zap.L().Warn("drop slow feed client", zap.String("user_id", c.userId), zap.String("group_id", c.groupId))
		h.unregister(c)
	}
}

// Serve 升级连接并开始推送，调用方需先确认用户已入群
func (h *Hub) Serve(c *gin.Context, userId, groupId string) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		zap.L().Error("ws upgrade", zap.Error(err))
		return
	}
	client := newClient(conn, userId, groupId)
	h.register(client)
	go h.writePump(client)
	go h.readPump(client)
	zap.L().Info("feed client connected", zap.String("user_id", userId), zap.String("group_id", groupId),
		zap.Int("online", h.Online(groupId)))
}

// readPump 只用于感知断开与心跳，客户端发来的内容被忽略
func (h *Hub) readPump(c *Client) {
	defer h.unregister(c)
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				zap.L().Warn("feed client read", zap.Error(err))
			}
			return
		}
	}
}

func (h *Hub) writePump(c *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				zap.L().Error("feed client write", zap.Error(err))
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Close 断开全部连接
func (h *Hub) Close() {
	h.mu.Lock()
	groups := h.groups
	h.groups = make(map[string]map[*Client]struct{})
	h.mu.Unlock()
	for _, set := range groups {
		for c := range set {
			c.closeSend()
		}
	}
}
