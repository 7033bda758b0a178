package service

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/noah-isme/school-teachers-api/internal/models"
	appErrors "github.com/noah-isme/school-teachers-api/pkg/errors"
)

// Column widths of the attachments table.
const (
	maxAttachmentNameLength        = 255
	maxAttachmentContentTypeLength = 255
	maxAttachmentExtensionLength   = 32
)

// AttachmentUpload is a file received alongside a save request.
type AttachmentUpload struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Empty reports whether there is nothing to store.
func (u *AttachmentUpload) Empty() bool {
	return u == nil || len(u.Content) == 0
}

func (u *AttachmentUpload) validate() error {
	if n := utf8.RuneCountInString(u.Filename); n > maxAttachmentNameLength {
		return appErrors.Clone(appErrors.ErrInvalidArgument, fmt.Sprintf("amka file name exceeds %d characters", maxAttachmentNameLength))
	}
	if utf8.RuneCountInString(fileExtension(u.Filename)) > maxAttachmentExtensionLength {
		return appErrors.Clone(appErrors.ErrInvalidArgument, fmt.Sprintf("amka file extension exceeds %d characters", maxAttachmentExtensionLength))
	}
	if utf8.RuneCountInString(u.ContentType) > maxAttachmentContentTypeLength {
		return appErrors.Clone(appErrors.ErrInvalidArgument, fmt.Sprintf("amka file content type exceeds %d characters", maxAttachmentContentTypeLength))
	}
	return nil
}

// AttachmentDownload is a stored file ready to be streamed back.
type AttachmentDownload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// fileExtension returns the suffix from the last dot, dot included, or "" when there is none.
func fileExtension(name string) string {
	idx := strings.LastIndex(name, ".")
	if idx < 0 {
		return ""
	}
	return name[idx:]
}

// newAttachment builds metadata for upload with a fresh random storage name.
func newAttachment(upload *AttachmentUpload) *models.Attachment {
	ext := fileExtension(upload.Filename)
	return &models.Attachment{
		Filename:    upload.Filename,
		SavedName:   uuid.NewString() + ext,
		ContentType: upload.ContentType,
		Extension:   ext,
	}
}
