package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"dmchat/internal/app/auth"
	"dmchat/internal/app/message"
	"dmchat/internal/app/store"
	"dmchat/internal/app/user"
	"dmchat/internal/pkg/errs"
	"dmchat/internal/pkg/logx"
	"dmchat/internal/pkg/randx"
	"dmchat/internal/pkg/req"
	"dmchat/internal/pkg/resp"
)

// MaxMessageTextBytes caps the text of one message.
const MaxMessageTextBytes = 5000

// HandleListUsers returns every other user for the conversation sidebar.
func HandleListUsers(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		me, ok := auth.IdentityFromContext(r.Context())
		if !ok {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		users, err := deps.Store.Users().ListExcept(r.Context(), me.ID)
		if err != nil {
			logx.Error(err, "List users failed", "user_id", me.ID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		profiles := make([]user.Profile, 0, len(users))
		for _, u := range users {
			profiles = append(profiles, u.Profile())
		}

		resp.RespondSuccess(w, r, profiles)
	}
}

// HandleGetMessages returns the conversation between the caller and {id}, oldest first.
func HandleGetMessages(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		me, ok := auth.IdentityFromContext(r.Context())
		if !ok {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		otherID := chi.URLParam(r, "id")
		if otherID == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		messages, err := deps.Store.Messages().ListBetween(r.Context(), me.ID, otherID)
		if err != nil {
			logx.Error(err, "List messages failed", "user_id", me.ID, "other_id", otherID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		if messages == nil {
			messages = []message.Message{}
		}

		resp.RespondSuccess(w, r, messages)
	}
}

type SendMessageInput struct {
	Text string `json:"text"`

	// Image is an optional image data URL.
	Image string `json:"image"`
}

// HandleSendMessage persists a message from the caller to {id} and pushes it to
// the recipient's live connection when there is one.
func HandleSendMessage(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		me, ok := auth.IdentityFromContext(r.Context())
		if !ok {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		receiverID := chi.URLParam(r, "id")
		if receiverID == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		var input SendMessageInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		text := strings.TrimSpace(input.Text)
		if text == "" && input.Image == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrMessageEmpty))
			return
		}

		if len(text) > MaxMessageTextBytes {
			resp.RespondError(w, r, errs.NewError(errs.ErrMessageContentTooLong))
			return
		}

		if _, err := deps.Store.Users().FindByID(r.Context(), receiverID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				resp.RespondError(w, r, errs.NewError(errs.ErrUserNotFound))
				return
			}
			logx.Error(err, "Send message: recipient lookup failed", "receiver_id", receiverID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		msg := message.Message{
			ID:         randx.ID(),
			SenderID:   me.ID,
			ReceiverID: receiverID,
			CreatedAt:  time.Now().UTC(),
		}

		if text != "" {
			msg.Text = &text
		}

		if input.Image != "" {
			url, customErr := uploadImage(r.Context(), deps, messageKeyPrefix, me.ID, input.Image)
			if customErr != nil {
				resp.RespondError(w, r, customErr)
				return
			}
			msg.Image = &url
		}

		saved, err := deps.Store.Messages().Create(r.Context(), msg)
		if err != nil {
			logx.Error(err, "Send message: persist failed", "sender_id", me.ID, "receiver_id", receiverID)
			if msg.Image != nil {
				deleteImageAsync(deps, *msg.Image)
			}
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		deps.Dispatcher.Deliver(saved, receiverID)

		resp.RespondCreated(w, r, saved)
	}
}
