package ingest

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/gin-gonic/gin"
)

func uploadRouter(t *testing.T, extractor *fakeExtractor) *gin.Engine {
	t.Helper()
	svc, _ := newTestService(t, &fakeRaster{}, extractor)
	h := NewHandler(svc, 2, 1<<20)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	h.RegisterRoutes(r.Group("/api/v1"))
	return r
}

func multipartBody(t *testing.T, name, lastname string, files map[string][]byte) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	if name != "" {
		_ = w.WriteField("name", name)
	}
	if lastname != "" {
		_ = w.WriteField("lastname", lastname)
	}
	for fileName, data := range files {
		hdr := textproto.MIMEHeader{}
		hdr.Set("Content-Disposition", `form-data; name="files"; filename="`+fileName+`"`)
		hdr.Set("Content-Type", "image/png")
		part, err := w.CreatePart(hdr)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		if _, err := part.Write(data); err != nil {
			t.Fatalf("write part: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return buf, w.FormDataContentType()
}

func TestUploadCreatesDocument(t *testing.T) {
	r := uploadRouter(t, &fakeExtractor{text: diplomText()})

	body, contentType := multipartBody(t, "Aida", "Nur", map[string][]byte{
		"diploma.png": []byte("scan bytes"),
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", body)
	req.Header.Set("Content-Type", contentType)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Results []struct {
			FileName string          `json:"fileName"`
			Document json.RawMessage `json:"document"`
			Error    string          `json:"error"`
		} `json:"results"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Results) != 1 || resp.Results[0].Error != "" || len(resp.Results[0].Document) == 0 {
		t.Fatalf("results = %+v", resp.Results)
	}
}

func TestUploadRequiresApplicantFields(t *testing.T) {
	r := uploadRouter(t, &fakeExtractor{text: "x"})

	body, contentType := multipartBody(t, "", "", map[string][]byte{
		"scan.png": []byte("bytes"),
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", body)
	req.Header.Set("Content-Type", contentType)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestUploadRejectsTooManyFiles(t *testing.T) {
	r := uploadRouter(t, &fakeExtractor{text: "x"})

	body, contentType := multipartBody(t, "Aida", "Nur", map[string][]byte{
		"a.png": []byte("1"),
		"b.png": []byte("2"),
		"c.png": []byte("3"),
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", body)
	req.Header.Set("Content-Type", contentType)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want 413", w.Code)
	}
}

func TestUploadReportsPerFileErrors(t *testing.T) {
	r := uploadRouter(t, &fakeExtractor{text: "x"})

	body, contentType := multipartBody(t, "Aida", "Nur", map[string][]byte{
		"empty.png": {},
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", body)
	req.Header.Set("Content-Type", contentType)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422: %s", w.Code, w.Body.String())
	}
	if body := w.Body.String(); !bytes.Contains([]byte(body), []byte("file is empty")) {
		t.Fatalf("body = %s, want per-file error", body)
	}
}
