// Package main provides a simple CLI client for the chat WebSocket endpoint.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/term"

	"github.com/xiaot623/gogo/chatbot/internal/domain"
	"github.com/xiaot623/gogo/chatbot/internal/protocol"
)

// Client is a WebSocket client bound to one chat session.
type Client struct {
	conn      *websocket.Conn
	sessionID string
	model     string
	provider  string
	done      chan struct{}
}

// createSession starts a new session through the REST API.
func createSession(base string) (string, error) {
	resp, err := http.Post(base+"/chat/new", "application/json", nil)
	if err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("create session: status %d", resp.StatusCode)
	}
	var session domain.Session
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return "", fmt.Errorf("decode session: %w", err)
	}
	return session.ID, nil
}

// NewClient connects to the session's WebSocket endpoint.
func NewClient(base, sessionID, model, provider string) (*Client, error) {
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parse addr: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = "/chat/" + url.PathEscape(sessionID) + "/ws"

	conn, resp, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("session %s not found", sessionID)
		}
		return nil, fmt.Errorf("dial: %w", err)
	}

	return &Client{
		conn:      conn,
		sessionID: sessionID,
		model:     model,
		provider:  provider,
		done:      make(chan struct{}),
	}, nil
}

// Close closes the client connection.
func (c *Client) Close() error {
	close(c.done)
	return c.conn.Close()
}

// Send sends one chat message.
func (c *Client) Send(text string) error {
	msg := protocol.ChatMessage{
		BaseMessage: protocol.BaseMessage{
			Type:      protocol.TypeMessage,
			Ts:        time.Now().UnixMilli(),
			SessionID: c.sessionID,
			RequestID: fmt.Sprintf("req_%d", time.Now().UnixNano()),
		},
		Message:  text,
		Model:    c.model,
		Provider: c.provider,
	}
	return c.conn.WriteJSON(msg)
}

// ReadMessages prints replies until the connection closes. Persisted message
// frames are printed only when verbose is set.
func (c *Client) ReadMessages(verbose bool, prompt func()) {
	for {
		select {
		case <-c.done:
			return
		default:
		}

		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				log.Printf("Read error: %v", err)
			}
			return
		}

		var base protocol.BaseMessage
		if err := json.Unmarshal(data, &base); err != nil {
			log.Printf("Unmarshal error: %v", err)
			continue
		}

		switch base.Type {
		case protocol.TypeResponse:
			var msg protocol.ResponseMessage
			json.Unmarshal(data, &msg)
			fmt.Printf("\nbot (%s/%s): %s\n", msg.Provider, msg.Model, msg.Response)
			prompt()
		case protocol.TypeError:
			var msg protocol.ErrorMessage
			json.Unmarshal(data, &msg)
			fmt.Printf("\nerror: %s - %s\n", msg.Code, msg.Message)
			prompt()
		case protocol.TypeMessage:
			if verbose {
				var msg protocol.PersistedMessage
				json.Unmarshal(data, &msg)
				fmt.Printf("\n[%s] %s: %s\n", msg.Message.CreatedAt.Format(time.Kitchen), msg.Message.Sender, msg.Message.Text)
			}
		default:
			fmt.Printf("\n[%s] %s\n", base.Type, string(data))
		}
	}
}

func main() {
	addr := flag.String("addr", "http://localhost:8080", "Chat API base URL")
	sessionID := flag.String("session", "", "Session ID to join (a new session is created when empty)")
	model := flag.String("model", "", "Model name")
	provider := flag.String("provider", "", "Provider variant: completion or chat")
	verbose := flag.Bool("v", false, "Print every persisted message of the session")
	flag.Parse()

	log.SetFlags(log.Ltime)
	base := strings.TrimRight(*addr, "/")

	if *sessionID == "" {
		id, err := createSession(base)
		if err != nil {
			log.Fatalf("Failed to create session: %v", err)
		}
		*sessionID = id
	}

	client, err := NewClient(base, *sessionID, *model, *provider)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer client.Close()

	// Prompts only make sense for a human at a terminal.
	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	prompt := func() {
		if interactive {
			fmt.Print("> ")
		}
	}

	if interactive {
		fmt.Printf("Session: %s\n", *sessionID)
		fmt.Println("Type a message and press Enter to send.")
		fmt.Println("Commands: /quit to exit")
		fmt.Println()
	}

	go client.ReadMessages(*verbose, prompt)

	// Handle Ctrl+C
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	go func() {
		<-interrupt
		fmt.Println("\nInterrupted")
		client.Close()
		os.Exit(0)
	}()

	scanner := bufio.NewScanner(os.Stdin)
	prompt()
	for scanner.Scan() {
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			prompt()
			continue
		}
		if input == "/quit" {
			fmt.Println("Bye!")
			return
		}
		if err := client.Send(input); err != nil {
			log.Printf("Send error: %v", err)
			prompt()
		}
	}

	// Give in-flight replies a moment when input is piped.
	if !interactive {
		time.Sleep(2 * time.Second)
	}
}
