package handler

import (
	"net/http"
	"time"

	"dmchat/internal/app/auth"
	"dmchat/internal/pkg/errs"
	"dmchat/internal/pkg/logx"
	"dmchat/internal/pkg/req"
	"dmchat/internal/pkg/resp"
)

type UpdateProfileInput struct {
	// ProfilePic is an image data URL.
	ProfilePic string `json:"profilePic"`
}

// HandleUpdateProfile uploads a new profile picture and stores its URL on the caller.
// The replaced picture is deleted in the background.
func HandleUpdateProfile(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		me, ok := auth.IdentityFromContext(r.Context())
		if !ok {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		var input UpdateProfileInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if input.ProfilePic == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrProfilePicRequired))
			return
		}

		url, customErr := uploadImage(r.Context(), deps, avatarKeyPrefix, me.ID, input.ProfilePic)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		current, err := deps.Store.Users().FindByID(r.Context(), me.ID)
		if err != nil {
			logx.Error(err, "Update profile: user lookup failed", "user_id", me.ID)
			deleteImageAsync(deps, url)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		oldPic := current.ProfilePic
		current.ProfilePic = url
		current.UpdatedAt = time.Now().UTC()

		updated, err := deps.Store.Users().Update(r.Context(), current)
		if err != nil {
			logx.Error(err, "Update profile: store update failed", "user_id", me.ID)
			deleteImageAsync(deps, url)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		if oldPic != url {
			deleteImageAsync(deps, oldPic)
		}

		resp.RespondSuccess(w, r, updated.Profile())
	}
}
