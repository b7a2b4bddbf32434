package blob

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// s3RoundTripper fakes the small S3 subset the driver touches, so the adapter
// is exercised without network access.
type s3RoundTripper struct{ objects map[string]s3Object }

type s3Object struct {
	body        []byte
	contentType string
}

func (m *s3RoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	parts := strings.SplitN(strings.TrimPrefix(req.URL.Path, "/"), "/", 2)
	key := ""
	if len(parts) == 2 {
		key = parts[1]
	}
	if req.Method == http.MethodGet && strings.Contains(req.URL.RawQuery, "list-type=2") {
		prefix := req.URL.Query().Get("prefix")
		var b strings.Builder
		b.WriteString("<?xml version=\"1.0\"?><ListBucketResult><IsTruncated>false</IsTruncated>")
		for k, obj := range m.objects {
			if prefix != "" && !strings.HasPrefix(k, prefix) {
				continue
			}
			fmt.Fprintf(&b, "<Contents><Key>%s</Key><Size>%d</Size><LastModified>2026-04-01T09:00:00Z</LastModified></Contents>", k, len(obj.body))
		}
		b.WriteString("</ListBucketResult>")
		return xmlResponse(b.String()), nil
	}
	switch req.Method {
	case http.MethodHead:
		obj, ok := m.objects[key]
		if !ok {
			return emptyResponse(404), nil
		}
		resp := emptyResponse(200)
		resp.Header.Set("Content-Length", strconv.Itoa(len(obj.body)))
		resp.Header.Set("Content-Type", obj.contentType)
		resp.Header.Set("ETag", "\"etag123\"")
		resp.Header.Set("Last-Modified", time.Now().UTC().Format(http.TimeFormat))
		return resp, nil
	case http.MethodPut:
		body, _ := io.ReadAll(req.Body)
		if dec, ok := decodeAWSChunked(body); ok {
			body = dec
		}
		m.objects[key] = s3Object{body: body, contentType: req.Header.Get("Content-Type")}
		resp := emptyResponse(200)
		resp.Header.Set("ETag", "\"etag123\"")
		return resp, nil
	case http.MethodGet:
		obj, ok := m.objects[key]
		if !ok {
			return emptyResponse(404), nil
		}
		resp := &http.Response{StatusCode: 200, Body: io.NopCloser(bytes.NewReader(obj.body)), Header: http.Header{}}
		resp.Header.Set("Content-Length", strconv.Itoa(len(obj.body)))
		resp.Header.Set("Content-Type", obj.contentType)
		resp.Header.Set("ETag", "\"etag123\"")
		resp.Header.Set("Last-Modified", time.Now().UTC().Format(http.TimeFormat))
		return resp, nil
	case http.MethodDelete:
		delete(m.objects, key)
		return emptyResponse(204), nil
	}
	return emptyResponse(501), nil
}

func emptyResponse(status int) *http.Response {
	return &http.Response{StatusCode: status, Body: io.NopCloser(bytes.NewReader(nil)), Header: http.Header{}}
}

func xmlResponse(body string) *http.Response {
	return &http.Response{StatusCode: 200, Body: io.NopCloser(strings.NewReader(body)), Header: http.Header{"Content-Type": {"application/xml"}}}
}

// decodeAWSChunked unwraps aws-chunked request bodies produced by streaming
// uploads; non-chunked bodies pass through unchanged.
func decodeAWSChunked(b []byte) ([]byte, bool) {
	s := string(b)
	idx := strings.Index(s, "\r\n")
	if idx <= 0 {
		return nil, false
	}
	sizePart := s[:idx]
	if semi := strings.Index(sizePart, ";"); semi >= 0 {
		sizePart = sizePart[:semi]
	}
	n, err := strconv.ParseInt(sizePart, 16, 64)
	if err != nil || n <= 0 {
		return nil, false
	}
	rest := s[idx+2:]
	if int64(len(rest)) < n {
		return nil, false
	}
	return []byte(rest[:n]), true
}

func newMockS3(t *testing.T) *S3Store {
	t.Helper()
	rt := &s3RoundTripper{objects: make(map[string]s3Object)}
	cfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion("us-east-1"),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("AKIA", "SECRET", "")),
	)
	if err != nil {
		t.Fatalf("cfg: %v", err)
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String("https://mock.s3.local")
		o.HTTPClient = &http.Client{Transport: rt}
		o.UsePathStyle = true
	})
	return &S3Store{client: client, bucket: "test-bucket", presign: s3.NewPresignClient(client)}
}

func TestS3StoreRoundTrip(t *testing.T) {
	store := newMockS3(t)
	ctx := context.Background()

	info, err := store.Put(ctx, "attachments/file.txt", bytes.NewReader([]byte("hello")), PutOptions{ContentType: "text/plain"})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Key != "attachments/file.txt" || info.ContentType != "text/plain" || info.Size != 5 {
		t.Fatalf("unexpected info: %+v", info)
	}
	if _, err := store.Put(ctx, "attachments/file.txt", bytes.NewReader([]byte("ignored")), PutOptions{}); err == nil {
		t.Fatalf("expected duplicate put error")
	}
	_, rc, err := store.Get(ctx, "attachments/file.txt")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	data, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(data) != "hello" {
		t.Fatalf("payload mismatch: %q", string(data))
	}
	list, err := store.List(ctx, "attachments/")
	if err != nil || len(list) != 1 {
		t.Fatalf("list: %v %+v", err, list)
	}
	if url, err := store.PresignURL(ctx, "attachments/file.txt", SignedURLOptions{}); err != nil || url == "" {
		t.Fatalf("presign: %v %q", err, url)
	}
	if ok, err := store.Delete(ctx, "attachments/file.txt"); err != nil || !ok {
		t.Fatalf("delete: %v %v", ok, err)
	}
	if _, err := store.Head(ctx, "attachments/file.txt"); err == nil {
		t.Fatalf("expected head error after delete")
	}
}

func TestS3StoreErrorPaths(t *testing.T) {
	store := newMockS3(t)
	ctx := context.Background()

	if _, _, err := store.Get(ctx, "missing"); err == nil {
		t.Fatalf("expected get error for missing key")
	}
	if _, err := store.PresignURL(ctx, "k", SignedURLOptions{Method: "PUT"}); err == nil {
		t.Fatalf("expected unsupported presign method error")
	}
	if store.Driver() != DriverS3 {
		t.Fatalf("expected DriverS3")
	}
}

func TestNewS3RequiresBucket(t *testing.T) {
	if _, err := NewS3(context.Background(), S3Config{}); err == nil {
		t.Fatalf("expected error for missing bucket")
	}
}

func TestOpenS3FromEnv(t *testing.T) {
	if _, err := OpenS3FromEnv(context.Background()); err == nil {
		t.Fatalf("expected error without bucket env")
	}
	t.Setenv("LIMSCORE_BLOB_S3_BUCKET", "env-bucket")
	t.Setenv("LIMSCORE_BLOB_S3_REGION", "us-east-1")
	t.Setenv("AWS_ACCESS_KEY_ID", "AKIA")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "SECRET")
	if _, err := OpenS3FromEnv(context.Background()); err != nil {
		t.Fatalf("open from env: %v", err)
	}
}
