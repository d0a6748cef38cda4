package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/prasetyo-adi/jobportal_be/internal/db"
	"github.com/prasetyo-adi/jobportal_be/internal/middleware"
	"github.com/prasetyo-adi/jobportal_be/internal/realtime"
)

const testSecret = "test-secret"

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("migrating test db: %v", err)
	}
	return gdb
}

// newTestApp wires the same route table as cmd/api, minus redis and ws.
func newTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	gdb := newTestDB(t)

	hub := realtime.NewHub()
	go hub.Run()
	notifier := realtime.NewNotifier(hub, nil)

	authH := &AuthHandler{DB: gdb, JWTSecret: testSecret, Expires: 60}
	jobH := NewJobHandler(gdb, nil)
	appH := NewApplicationHandler(gdb, notifier, t.TempDir(), "")

	app := fiber.New()
	api := app.Group("/api/v1")

	api.Post("/user/register", authH.Register)
	api.Post("/user/login", authH.Login)
	api.Get("/user/logout", authH.Logout)
	api.Get("/job/getall", jobH.GetAll)

	protected := api.Group("/",
		middleware.JWTFromCookie(testSecret),
		middleware.AttachJWTLocals(),
	)

	protected.Get("/user/getuser", authH.Me)

	job := protected.Group("/job")
	job.Post("/post", middleware.RequireRoles("employer"), jobH.Post)
	job.Get("/getmyjobs", middleware.RequireRoles("employer"), jobH.GetMyJobs)
	job.Put("/update/:id", middleware.RequireRoles("employer"), jobH.Update)
	job.Delete("/delete/:id", middleware.RequireRoles("employer"), jobH.Delete)
	job.Post("/apply/:id", middleware.RequireRoles("job_seeker"), appH.QuickApply)
	job.Get("/:id", jobH.GetSingle)

	application := protected.Group("/application")
	application.Post("/post", middleware.RequireRoles("job_seeker"), appH.Post)
	application.Get("/jobseeker/getall", middleware.RequireRoles("job_seeker"), appH.JobseekerGetAll)
	application.Get("/employer/getall", middleware.RequireRoles("employer"), appH.EmployerGetAll)
	application.Get("/job/:jobId", middleware.RequireRoles("employer"), appH.JobApplicants)
	application.Delete("/delete/:id", middleware.RequireRoles("job_seeker"), appH.Delete)
	application.Put("/status/:id", middleware.RequireRoles("employer"), appH.UpdateStatus)

	return app, gdb
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}, cookie string) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if cookie != "" {
		req.Header.Set("Cookie", cookie)
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func decode(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading response body: %v", err)
	}
	var out map[string]interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("decoding response %q: %v", raw, err)
	}
	return out
}

func sessionCookie(t *testing.T, resp *http.Response) string {
	t.Helper()

	for _, ck := range resp.Cookies() {
		if ck.Name == middleware.AuthCookie {
			return ck.Name + "=" + ck.Value
		}
	}
	t.Fatal("no session cookie in response")
	return ""
}

// register creates a user and returns their session cookie.
func register(t *testing.T, app *fiber.App, name, email, role string) string {
	t.Helper()

	resp := doJSON(t, app, "POST", "/api/v1/user/register", map[string]string{
		"name":     name,
		"email":    email,
		"password": "secret123",
		"role":     role,
	}, "")
	if resp.StatusCode != fiber.StatusCreated {
		body := decode(t, resp)
		t.Fatalf("register %s: status %d, body %v", email, resp.StatusCode, body)
	}
	return sessionCookie(t, resp)
}

func validJobBody() map[string]interface{} {
	return map[string]interface{}{
		"title":       "Backend Engineer",
		"description": strings.Repeat("Build and run our Go services. ", 2),
		"category":    "Engineering",
		"country":     "Indonesia",
		"city":        "Jakarta",
		"location":    "Jl. Sudirman No. 1, Jakarta",
		"fixedSalary": 5000,
	}
}

// postJob creates a job and returns its id.
func postJob(t *testing.T, app *fiber.App, cookie string, body map[string]interface{}) string {
	t.Helper()

	resp := doJSON(t, app, "POST", "/api/v1/job/post", body, cookie)
	out := decode(t, resp)
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("posting job: status %d, body %v", resp.StatusCode, out)
	}
	job := out["job"].(map[string]interface{})
	return job["id"].(string)
}

// apply submits a multipart application for jobID with optional extra fields.
func apply(t *testing.T, app *fiber.App, cookie, jobID string, fields map[string]string) *http.Response {
	t.Helper()

	var b bytes.Buffer
	w := multipart.NewWriter(&b)
	if jobID != "" {
		_ = w.WriteField("jobId", jobID)
	}
	for k, v := range fields {
		_ = w.WriteField(k, v)
	}
	_ = w.Close()

	req := httptest.NewRequest("POST", "/api/v1/application/post", &b)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Cookie", cookie)

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("applying to job: %v", err)
	}
	return resp
}
