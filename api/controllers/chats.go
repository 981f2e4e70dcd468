package controllers

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/shubhamchhangani/hindu-matrimony/api/responses"
	"github.com/shubhamchhangani/hindu-matrimony/api/validators"
	"github.com/shubhamchhangani/hindu-matrimony/internal/chats"
	pkgerrors "github.com/shubhamchhangani/hindu-matrimony/pkg/errors"
	"github.com/shubhamchhangani/hindu-matrimony/pkg/logger"
	redisclient "github.com/shubhamchhangani/hindu-matrimony/pkg/redis"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 54 * time.Second
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browsers send arbitrary origins; auth happens on the bearer token, not the origin.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ChatOpen finds or creates the one conversation between the caller and another user.
func ChatOpen(svc chats.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "chat service unavailable"))
			return
		}

		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var input chats.OpenChatInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Open(r.Context(), userID, input.UserID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

func ChatsList(svc chats.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "chat service unavailable"))
			return
		}

		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.List(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func ChatMessages(svc chats.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "chat service unavailable"))
			return
		}

		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		chatID, err := parsePathUUID(r, "chatId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		messages, err := svc.ListMessages(r.Context(), chatID, userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, messages)
	}
}

func ChatSendMessage(svc chats.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "chat service unavailable"))
			return
		}

		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		chatID, err := parsePathUUID(r, "chatId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var input chats.SendMessageInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Send(r.Context(), chatID, userID, input.Content)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

// ChatWS upgrades the connection and streams the chat's pub/sub frames to the
// socket. Sends still go through the REST endpoint; the socket is read-only.
func ChatWS(svc chats.Service, rdb *redisclient.Client, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil || rdb == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "chat stream unavailable"))
			return
		}

		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		chatID, err := parsePathUUID(r, "chatId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.EnsureParticipant(r.Context(), chatID, userID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sub, err := rdb.Subscribe(r.Context(), rdb.ChatChannel(chatID.String()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "subscribe chat channel"))
			return
		}

		conn, err := wsUpgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade already wrote its own handshake error response.
			sub.Close()
			logg.Warn(logg.WithField(r.Context(), "error", err.Error()), "chat.ws.upgrade_failed")
			return
		}

		ctx := logg.WithField(r.Context(), "chat_id", chatID.String())
		logg.Info(ctx, "chat.ws.connected")

		done := make(chan struct{})
		go func() {
			// The client never sends application frames; this loop only
			// services pongs and notices the peer going away.
			defer close(done)
			conn.SetReadLimit(512)
			_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
			conn.SetPongHandler(func(string) error {
				return conn.SetReadDeadline(time.Now().Add(wsPongWait))
			})
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		ticker := time.NewTicker(wsPingPeriod)
		defer func() {
			ticker.Stop()
			sub.Close()
			conn.Close()
			logg.Info(ctx, "chat.ws.closed")
		}()

		frames := sub.Channel()
		for {
			select {
			case <-done:
				return
			case <-r.Context().Done():
				return
			case msg, ok := <-frames:
				if !ok {
					_ = conn.WriteControl(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), time.Now().Add(wsWriteWait))
					return
				}
				_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
				if err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
					logg.Warn(logg.WithField(ctx, "error", err.Error()), "chat.ws.write_failed")
					return
				}
			case <-ticker.C:
				_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}
}
