package bot

import (
	"context"
	"errors"
	"os"

	tele "gopkg.in/telebot.v3"

	"github.com/voxpage/voxpage/internal/observe"
)

func (b *Bot) onStart(c tele.Context) error {
	return c.Send(msgWelcome)
}

func (b *Bot) onHelp(c tele.Context) error {
	return c.Send(helpMessage(b.policy.Limit()))
}

func (b *Bot) onDocument(c tele.Context) error {
	doc := c.Message().Document
	return b.stage(c, &doc.File, doc.MIME)
}

// onPhoto handles photo uploads. Telegram re-encodes photos as JPEG, so the
// media type is known without a declared MIME.
func (b *Bot) onPhoto(c tele.Context) error {
	photo := c.Message().Photo
	return b.stage(c, &photo.File, "image/jpeg")
}

// stage validates the upload, downloads it to a scoped temporary file,
// opens a session for the sender, and prompts for the language choice.
// Rejections happen before any download or external call.
func (b *Bot) stage(c tele.Context, file *tele.File, mimeType string) error {
	ctx := context.Background()
	userID := c.Sender().ID
	logger := observe.Logger(ctx).With("user_id", userID)

	if err := b.policy.Check(mimeType, file.FileSize); err != nil {
		logger.Info("upload rejected", "mime", mimeType, "size", file.FileSize, "err", err)
		switch {
		case errors.Is(err, ErrFileTooLarge):
			b.metrics.RecordUploadRejected(ctx, "size")
			return c.Send(fileTooLargeMessage(b.policy.Limit()))
		default:
			b.metrics.RecordUploadRejected(ctx, "media_type")
			return c.Send(msgUnsupportedType)
		}
	}

	staged, err := os.CreateTemp(b.tempDir, "voxpage-upload-*")
	if err != nil {
		logger.Error("create staging file", "err", err)
		return c.Send(msgDownloadFailed)
	}
	stagedPath := staged.Name()
	if err := staged.Close(); err != nil {
		logger.Error("close staging file", "err", err)
		b.discard(stagedPath)
		return c.Send(msgDownloadFailed)
	}

	if err := b.tb.Download(file, stagedPath); err != nil {
		logger.Error("download upload", "err", err)
		b.discard(stagedPath)
		return c.Send(msgDownloadFailed)
	}

	if replaced := b.sessions.Put(userID, stagedPath); replaced != nil {
		// The user re-uploaded before choosing a language; the earlier
		// staged file is obsolete.
		b.discard(replaced.FilePath)
	}
	logger.Info("upload staged", "mime", mimeType, "size", file.FileSize)

	return c.Send(languagePrompt(b.catalog))
}

// onText handles free-text replies: the language choice when a session is
// active, a nudge to send a file otherwise.
func (b *Bot) onText(c tele.Context) error {
	ctx := context.Background()
	userID := c.Sender().ID
	logger := observe.Logger(ctx).With("user_id", userID)

	if _, ok := b.sessions.Get(userID); !ok {
		// No staged file — e.g., the process restarted mid-conversation.
		// Recoverable: ask for the file again.
		return c.Send(msgSendFile)
	}

	sel, ok := b.catalog.Match(c.Text())
	if !ok {
		// Unrecognised selection: stay in the dialogue and re-prompt.
		return c.Send(invalidSelectionPrompt(b.catalog))
	}

	sess, ok := b.sessions.Evict(userID)
	if !ok {
		return c.Send(msgSendFile)
	}
	defer b.discard(sess.FilePath)

	logger.Info("language chosen", "language", sel.Label)
	if err := c.Send(msgProcessing); err != nil {
		logger.Warn("send processing notice", "err", err)
	}

	res, err := b.pipeline.Run(ctx, sess.FilePath, sel)
	if err != nil {
		// Full detail for operators; generic text for the user.
		logger.Error("pipeline run failed", "language", sel.Label, "err", err)
		if sendErr := c.Send(userMessage(err)); sendErr != nil {
			return sendErr
		}
		return c.Send(msgSendFile)
	}
	defer func() {
		if closeErr := res.Close(); closeErr != nil {
			logger.Warn("voice artifact cleanup failed", "err", closeErr)
		}
	}()

	voice := &tele.Voice{File: tele.FromDisk(res.VoicePath)}
	if err := c.Send(voice); err != nil {
		logger.Error("send voice message", "err", err)
		return c.Send(msgProcessingFailed)
	}
	logger.Info("voice message delivered", "language", sel.Label)
	return nil
}

// discard removes a temporary file, logging (but never surfacing) failures.
func (b *Bot) discard(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		observe.Logger(context.Background()).Warn("staged file cleanup failed", "path", path, "err", err)
	}
}
