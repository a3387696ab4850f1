package handler

import (
	"context"
	"errors"
	"time"

	"dmchat/internal/app/storage"
	"dmchat/internal/pkg/errs"
	"dmchat/internal/pkg/logx"
	"dmchat/internal/pkg/randx"
)

const (
	avatarKeyPrefix  = "avatars"
	messageKeyPrefix = "messages"

	deleteTimeout = 10 * time.Second
)

// uploadImage decodes a data URL, stores it under prefix/ownerID and returns its public URL.
func uploadImage(ctx context.Context, deps *AppDeps, prefix, ownerID, dataURL string) (string, *errs.CustomError) {
	if deps.Storage == nil {
		return "", errs.NewError(errs.ErrImageUploadDisabled)
	}

	img, err := storage.DecodeDataURL(dataURL)
	if err != nil {
		if errors.Is(err, storage.ErrImageTooLarge) {
			return "", errs.NewError(errs.ErrImageTooLarge)
		}
		return "", errs.NewError(errs.ErrImageInvalid)
	}

	key, err := randx.ObjectKey(prefix, ownerID, img.Ext)
	if err != nil {
		return "", errs.NewError(errs.ErrUnknown, err)
	}

	url, err := deps.Storage.Upload(ctx, key, img.ContentType, img.Data)
	if err != nil {
		logx.Error(err, "Image upload failed", "owner_id", ownerID, "key", key)
		return "", errs.NewError(errs.ErrFileStorageFailed)
	}

	return url, nil
}

// deleteImageAsync removes a previously uploaded image in the background.
// URLs that do not belong to the configured bucket are left alone.
func deleteImageAsync(deps *AppDeps, publicURL string) {
	if deps.Storage == nil || publicURL == "" {
		return
	}

	key, ok := deps.Storage.KeyFromURL(publicURL)
	if !ok {
		return
	}

	go func(k string) {
		ctx, cancel := context.WithTimeout(context.Background(), deleteTimeout)
		defer cancel()

		if err := deps.Storage.Delete(ctx, k); err != nil {
			logx.Warn("Failed to delete replaced image", "key", k, "error", err.Error())
		}
	}(key)
}
