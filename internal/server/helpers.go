package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"strings"
	"time"
	"unicode"

	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/notifications"
	"inkwell/internal/storage"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

const imageField = "imageupload"

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 404 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusNotFound,
			&models.AppError{Code: models.CodeNotFound, Message: "Invalid " + humanizeParam(param)})
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// humanizeParam converts a route param name into a human-readable label.
// Examples: "id" -> "ID", "storyId" -> "story ID".
func humanizeParam(param string) string {
	if param == "id" {
		return "ID"
	}
	if strings.HasSuffix(param, "Id") {
		words := splitCamel(param[:len(param)-2])
		return strings.ToLower(strings.Join(words, " ")) + " ID"
	}
	return param
}

func splitCamel(s string) []string {
	var words []string
	start := 0
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			words = append(words, s[start:i])
			start = i
		}
	}
	words = append(words, s[start:])
	return words
}

// csrfToken is the token form handlers hand back to the client. Empty when
// CSRF protection is disabled.
func csrfToken(c *fiber.Ctx) string {
	token, _ := c.Locals(csrfLocal).(string)
	return token
}

func storyPath(id uint) string {
	return fmt.Sprintf("/stories/%d", id)
}

func userPath(id uint) string {
	return fmt.Sprintf("/users/%d", id)
}

// storyForm is the story create/edit form body.
type storyForm struct {
	Title      string `json:"title" form:"title"`
	Text       string `json:"text" form:"text"`
	CategoryID formID `json:"categoryId" form:"categoryId"`
}

// formID is an id field that JSON clients may send as a number or a string.
// Form posts decode it as a plain string.
type formID string

func (f *formID) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*f = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = formID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = formID(n.String())
	return nil
}

// commentForm is the comment create/edit form body.
type commentForm struct {
	Text string `json:"text" form:"text"`
}

// imageUpload opens the optional image part of a multipart form. The
// returned closer must be called once the upload has been consumed.
func imageUpload(c *fiber.Ctx) (*storage.ImageUpload, func(), error) {
	noop := func() {}
	fh, err := c.FormFile(imageField)
	if err != nil {
		// Missing part or not a multipart body.
		return nil, noop, nil
	}
	return openUpload(fh)
}

func openUpload(fh *multipart.FileHeader) (*storage.ImageUpload, func(), error) {
	f, err := fh.Open()
	if err != nil {
		return nil, func() {}, fmt.Errorf("open upload: %w", err)
	}
	return &storage.ImageUpload{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get(fiber.HeaderContentType),
			Size:        fh.Size,
			Content:     f,
		}, func() {
			_ = f.Close()
		}, nil
}

// publishStoryEvent best-effort publishes story activity. Failures are logged.
func (s *Server) publishStoryEvent(c *fiber.Ctx, ev notifications.Event) {
	if s.notifier == nil {
		return
	}
	ev.At = time.Now().UTC()
	if err := s.notifier.PublishStoryEvent(c.UserContext(), ev); err != nil {
		middleware.Logger.WarnContext(c.UserContext(), "publish story event failed",
			slog.String("type", ev.Type), slog.String("error", err.Error()))
	}
}

// appError writes err with the status its code maps to. Internal errors go
// to the app ErrorHandler so they are logged.
func appError(c *fiber.Ctx, err error) error {
	if code := models.ErrorCode(err); code == "" || code == models.CodeInternal {
		return err
	}
	return models.RespondWithError(c, models.StatusFor(err), err)
}
