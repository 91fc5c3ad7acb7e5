package controllers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"time"

	"chatline/chatline/sources/psql/dao"
	"chatline/chatline/sources/psql/models"
	"chatline/chatline/utils/logging"
	"chatline/chatline/utils/pathsafe"
	"chatline/chatline/utils/types"
	"chatline/chatline/ws"

	"go.uber.org/zap"
)

// ErrInvalidFileType rejects an attachment whose extension is not on the
// allow-list. Both file ingress paths return it; nothing is persisted.
var ErrInvalidFileType = errors.New("invalid file type")

// Display timestamp, matching what the chat page renders. Ordering is by id,
// never by this string.
const timestampLayout = "03:04 PM"

// MessageStore is the durable, totally ordered chat log.
type MessageStore interface {
	Append(ctx context.Context, msg *models.Message) (int64, error)
	Get(ctx context.Context, id int64) (*models.Message, error)
	MarkSeen(ctx context.Context, id int64) (msg *models.Message, transitioned bool, err error)
	ListAll(ctx context.Context) ([]models.Message, error)
}

// ContentArea stores attachment blobs keyed by sanitized filename.
type ContentArea interface {
	PutAttachment(ctx context.Context, filename string, r io.Reader, size int64, contentType string) error
}

// Broadcaster fans a finalized event out to connected sessions.
type Broadcaster interface {
	Broadcast(event string, payload interface{}, exclude *ws.Client)
}

type MessageController struct {
	store   MessageStore
	files   ContentArea
	hub     Broadcaster
	allowed map[string]bool
}

func NewMessageController(store MessageStore, files ContentArea, hub Broadcaster, allowedExts []string) *MessageController {
	allowed := make(map[string]bool, len(allowedExts))
	for _, ext := range allowedExts {
		allowed[ext] = true
	}
	return &MessageController{store: store, files: files, hub: hub, allowed: allowed}
}

func (c *MessageController) allowedFile(name string) bool {
	ext := pathsafe.Ext(name)
	return ext != "" && c.allowed[ext]
}

// SendText is the text ingress: normalize, persist, broadcast to everyone
// including the sender.
func (c *MessageController) SendText(ctx context.Context, username, text string) (*models.Message, error) {
	if username == "" {
		username = "Unknown"
	}
	msg := &models.Message{
		Username:  username,
		Message:   &text,
		Timestamp: time.Now().Format(timestampLayout),
	}
	if _, err := c.store.Append(ctx, msg); err != nil {
		return nil, err
	}
	c.hub.Broadcast(ws.EventReceiveMessage, msg, nil)
	return msg, nil
}

// IngestUpload is the HTTP multipart ingress. filename arrives raw from the
// form and is sanitized here; the transport has already enforced the body
// size ceiling. On success the blob lands in the content area and the record
// is broadcast.
func (c *MessageController) IngestUpload(ctx context.Context, username, filename, contentType string, r io.Reader, size int64) (*models.Message, error) {
	name := pathsafe.SecureFilename(filename)
	if name == "" || !c.allowedFile(name) {
		return nil, ErrInvalidFileType
	}
	if err := c.files.PutAttachment(ctx, name, r, size, contentType); err != nil {
		return nil, fmt.Errorf("store attachment: %w", err)
	}
	return c.appendAttachment(ctx, username, name)
}

// IngestInlineFile is the channel file ingress: base64 payload, same
// allow-list and content area as the HTTP path.
func (c *MessageController) IngestInlineFile(ctx context.Context, username, filename, fileData string) (*models.Message, error) {
	name := pathsafe.SecureFilename(filename)
	if name == "" || !c.allowedFile(name) {
		return nil, ErrInvalidFileType
	}
	raw, err := base64.StdEncoding.DecodeString(fileData)
	if err != nil {
		return nil, fmt.Errorf("decode file_data: %w", err)
	}
	contentType := mime.TypeByExtension("." + pathsafe.Ext(name))
	if err := c.files.PutAttachment(ctx, name, bytes.NewReader(raw), int64(len(raw)), contentType); err != nil {
		return nil, fmt.Errorf("store attachment: %w", err)
	}
	return c.appendAttachment(ctx, username, name)
}

func (c *MessageController) appendAttachment(ctx context.Context, username, name string) (*models.Message, error) {
	if username == "" {
		username = "Unknown"
	}
	filePath := "/uploads/" + name
	msg := &models.Message{
		Username:  username,
		FilePath:  &filePath,
		Timestamp: time.Now().Format(timestampLayout),
	}
	if _, err := c.store.Append(ctx, msg); err != nil {
		return nil, err
	}
	c.hub.Broadcast(ws.EventReceiveMessage, msg, nil)
	return msg, nil
}

// MarkSeen transitions the record and broadcasts the receipt to everyone.
// An unknown id is absorbed silently; a repeat call leaves state untouched
// and suppresses the repeat broadcast.
func (c *MessageController) MarkSeen(ctx context.Context, id int64) (broadcast bool, err error) {
	msg, transitioned, err := c.store.MarkSeen(ctx, id)
	if err != nil {
		return false, err
	}
	if msg == nil || !transitioned {
		return false, nil
	}
	c.hub.Broadcast(ws.EventMessageSeen, types.MessageSeenPayload{MessageID: msg.ID}, nil)
	return true, nil
}

// History returns the full log, id ascending.
func (c *MessageController) History(ctx context.Context) ([]models.Message, error) {
	return c.store.ListAll(ctx)
}

// ---- channel event handlers (entries in the hub's dispatch table) ----

func (c *MessageController) HandleSendMessage(ctx context.Context, client *ws.Client, data json.RawMessage) {
	var p types.SendMessagePayload
	if err := json.Unmarshal(data, &p); err != nil {
		client.Send(ws.EventError, types.ErrorPayload{Error: "bad payload"})
		return
	}
	if _, err := c.SendText(ctx, p.Username, p.Message); err != nil {
		if errors.Is(err, dao.ErrEmptyMessage) {
			client.Send(ws.EventError, types.ErrorPayload{Error: "empty message"})
			return
		}
		logging.ErrorLogger.Error("text ingress failed",
			zap.String("session_id", client.SessionID), zap.Error(err))
		client.Send(ws.EventError, types.ErrorPayload{Error: "failed to send message"})
	}
}

func (c *MessageController) HandleSendFile(ctx context.Context, client *ws.Client, data json.RawMessage) {
	var p types.SendFilePayload
	if err := json.Unmarshal(data, &p); err != nil {
		client.Send(ws.EventError, types.ErrorPayload{Error: "bad payload"})
		return
	}
	if _, err := c.IngestInlineFile(ctx, p.Username, p.Filename, p.FileData); err != nil {
		if errors.Is(err, ErrInvalidFileType) {
			// Only the sender learns about the rejection; nothing is
			// persisted and nobody else sees anything.
			client.Send(ws.EventError, types.ErrorPayload{Error: "invalid file type"})
			return
		}
		logging.ErrorLogger.Error("inline file ingress failed",
			zap.String("session_id", client.SessionID), zap.Error(err))
		client.Send(ws.EventError, types.ErrorPayload{Error: "failed to store file"})
	}
}

func (c *MessageController) HandleTyping(ctx context.Context, client *ws.Client, data json.RawMessage) {
	c.hub.Broadcast(ws.EventUserTyping, types.UserTypingPayload{Username: client.Username}, client)
}

func (c *MessageController) HandleMarkSeen(ctx context.Context, client *ws.Client, data json.RawMessage) {
	var p types.MarkSeenPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return
	}
	// Lookup misses stay silent by contract; only real store failures are
	// worth a log line.
	if _, err := c.MarkSeen(ctx, p.MessageID); err != nil {
		logging.ErrorLogger.Error("mark_seen failed",
			zap.Int64("message_id", p.MessageID), zap.Error(err))
	}
}

// RegisterEvents installs the controller's handlers in the hub's dispatch
// table.
func (c *MessageController) RegisterEvents(hub *ws.Hub) {
	hub.Handle(ws.EventSendMessage, c.HandleSendMessage)
	hub.Handle(ws.EventSendFile, c.HandleSendFile)
	hub.Handle(ws.EventTyping, c.HandleTyping)
	hub.Handle(ws.EventMarkSeen, c.HandleMarkSeen)
}
