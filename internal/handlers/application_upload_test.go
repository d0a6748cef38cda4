package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestApplyWithResumeFile(t *testing.T) {
	app, _ := newTestApp(t)
	employer := register(t, app, "Acme", "acme@example.com", "employer")
	seeker := register(t, app, "Sam", "sam@example.com", "job_seeker")
	jobID := postJob(t, app, employer, validJobBody())

	var b bytes.Buffer
	w := multipart.NewWriter(&b)
	_ = w.WriteField("jobId", jobID)
	fw, err := w.CreateFormFile("resume", "cv.pdf")
	if err != nil {
		t.Fatal(err)
	}
	_, _ = fw.Write([]byte("%PDF-1.4 test resume"))
	_ = w.Close()

	req := httptest.NewRequest("POST", "/api/v1/application/post", &b)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Cookie", seeker)

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	out := decode(t, resp)
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d: %v", resp.StatusCode, out)
	}

	application := out["application"].(map[string]interface{})
	resume, ok := application["resume"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected resume descriptor, got %v", application["resume"])
	}
	if resume["fileName"].(string) != "cv.pdf" {
		t.Fatalf("unexpected file name: %v", resume["fileName"])
	}
	if url := resume["url"].(string); !strings.HasPrefix(url, "/uploads/resumes/") || !strings.HasSuffix(url, ".pdf") {
		t.Fatalf("unexpected resume url: %s", url)
	}
}

func TestApplyRejectsUnsupportedResumeType(t *testing.T) {
	app, _ := newTestApp(t)
	employer := register(t, app, "Acme", "acme@example.com", "employer")
	seeker := register(t, app, "Sam", "sam@example.com", "job_seeker")
	jobID := postJob(t, app, employer, validJobBody())

	var b bytes.Buffer
	w := multipart.NewWriter(&b)
	_ = w.WriteField("jobId", jobID)
	fw, _ := w.CreateFormFile("resume", "cv.exe")
	_, _ = fw.Write([]byte("MZ"))
	_ = w.Close()

	req := httptest.NewRequest("POST", "/api/v1/application/post", &b)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Cookie", seeker)

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}
