package ws

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// CORS 在 gin 中间件那层已经处理
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Serve GET /ws?token=...  浏览器 websocket 带不了 Authorization 头，
// 所以 token 走 query 参数，authenticate 由 routes 注入（app.ParseToken）。
func Serve(hub *Hub, authenticate func(token string) (string, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}
		userID, err := authenticate(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("ws: upgrade: %v", err)
			return
		}

		client := &Client{UserID: userID, Conn: conn, Send: make(chan []byte, 32)}
		hub.Register(client)

		go client.writePump()
		go client.readPump(hub)
	}
}

func (c *Client) writePump() {
	defer c.Conn.Close()
	for msg := range c.Send {
		if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
	// Send 被 hub 关掉，说明连接被顶掉或踢出
	_ = c.Conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// readPump 只为发现断线，客户端发来的内容一律忽略
func (c *Client) readPump(hub *Hub) {
	defer func() {
		hub.Unregister(c)
		c.Conn.Close()
	}()
	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			return
		}
	}
}
