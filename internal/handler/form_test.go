package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func newFormFileApp() *fiber.App {
	app := fiber.New(fiber.Config{BodyLimit: 8 * 1024 * 1024})
	app.Post("/upload", func(c *fiber.Ctx) error {
		upload, err := readFormFile(c, "movie")
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).SendString(err.Error())
		}
		if upload == nil {
			return c.JSON(fiber.Map{"size": -1})
		}
		return c.JSON(fiber.Map{"name": upload.Name, "size": len(upload.Data)})
	})
	return app
}

func postFormFile(t *testing.T, app *fiber.App, field, filename string, payload []byte) (string, int) {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if field != "" {
		part, err := mw.CreateFormFile(field, filename)
		if err != nil {
			t.Fatalf("CreateFormFile failed: %v", err)
		}
		if _, err := part.Write(payload); err != nil {
			t.Fatalf("write payload: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}
	raw, _ := io.ReadAll(resp.Body)

	var parsed struct {
		Name string `json:"name"`
		Size int    `json:"size"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		t.Fatalf("unmarshal %q: %v", raw, err)
	}
	return parsed.Name, parsed.Size
}

func TestReadFormFileReadsWholePayload(t *testing.T) {
	app := newFormFileApp()

	// Large enough that a single short Read would drop bytes.
	payload := bytes.Repeat([]byte{0xAB}, 1<<20)
	name, size := postFormFile(t, app, "movie", "feature.mp4", payload)
	if name != "feature.mp4" {
		t.Fatalf("unexpected filename: %q", name)
	}
	if size != len(payload) {
		t.Fatalf("upload truncated: got %d of %d bytes", size, len(payload))
	}
}

func TestReadFormFileMissingIsNil(t *testing.T) {
	app := newFormFileApp()

	if _, size := postFormFile(t, app, "", "", nil); size != -1 {
		t.Fatalf("expected nil upload for a missing file, got size %d", size)
	}
}
