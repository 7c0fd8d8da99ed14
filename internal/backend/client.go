package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const maxFrameBytes = 32 << 20

// Client talks to the bot server's HTTP API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	// stream has no overall timeout; used for artifact transfers.
	stream *http.Client
}

// NewClient creates a client for cfg.Server. transport may be nil.
func NewClient(cfg Config, transport http.RoundTripper) *Client {
	timeout := cfg.Server.HTTPTimeout
	if timeout <= 0 {
		timeout = DefaultHTTPTimeout
	}
	c := &Client{
		baseURL: strings.TrimRight(cfg.Server.URL, "/"),
		token:   strings.TrimSpace(cfg.Server.Token),
		http:    &http.Client{Timeout: timeout},
		stream:  &http.Client{},
	}
	if transport != nil {
		c.http.Transport = transport
		c.stream.Transport = transport
	}
	return c
}

// BaseURL returns the server base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// --- Profiles ---

// Profiles calls `GET /profiles`.
func (c *Client) Profiles(ctx context.Context) (map[string]Profile, error) {
	var raw map[string]Profile
	if err := c.getJSON(ctx, "list profiles", "/profiles", &raw); err != nil {
		return nil, err
	}
	out := make(map[string]Profile, len(raw))
	for name, p := range raw {
		p.Name = name
		out[name] = p
	}
	return out, nil
}

// CreateProfile calls `POST /profiles`.
func (c *Client) CreateProfile(ctx context.Context, p NewProfile) error {
	return c.sendJSON(ctx, "create profile", http.MethodPost, "/profiles", p, nil)
}

// DeleteProfile calls `DELETE /profiles/{name}`.
func (c *Client) DeleteProfile(ctx context.Context, name string) error {
	return c.sendJSON(ctx, "delete profile", http.MethodDelete, "/profiles/"+url.PathEscape(name), nil, nil)
}

// --- Run state ---

// Status calls `GET /status/{profile}`.
func (c *Client) Status(ctx context.Context, profile string) (Status, error) {
	var s Status
	if err := c.getJSON(ctx, "status", "/status/"+url.PathEscape(profile), &s); err != nil {
		return Status{}, err
	}
	return s, nil
}

// Run calls `POST /run`.
func (c *Client) Run(ctx context.Context, req RunRequest) error {
	return c.sendJSON(ctx, "run", http.MethodPost, "/run", req, nil)
}

// Login calls `POST /login` to start a manual login setup for profile.
func (c *Client) Login(ctx context.Context, profile string) error {
	body := map[string]string{"profile_name": profile}
	return c.sendJSON(ctx, "login", http.MethodPost, "/login", body, nil)
}

// --- Live view ---

// ScreenshotURL returns the cache-busted snapshot URL for profile.
func (c *Client) ScreenshotURL(profile string, token int64) string {
	return fmt.Sprintf("%s/screenshot/%s?t=%d", c.baseURL, url.PathEscape(profile), token)
}

// Screenshot fetches the current frame for profile. token makes every request
// distinct so intermediaries never serve a cached frame.
func (c *Client) Screenshot(ctx context.Context, profile string, token int64) ([]byte, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.ScreenshotURL(profile, token), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Cache-Control", "no-cache")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{Op: "screenshot", Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, readAPIError("screenshot", resp)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFrameBytes))
	if err != nil {
		return nil, &TransportError{Op: "screenshot", Err: err}
	}
	return data, nil
}

// --- Session transfer ---

// ExportSession downloads the session artifact of profile into dir.
func (c *Client) ExportSession(ctx context.Context, profile, dir string) (Export, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.baseURL+"/export_session/"+url.PathEscape(profile), nil)
	if err != nil {
		return Export{}, err
	}
	resp, err := c.stream.Do(req)
	if err != nil {
		return Export{}, &TransportError{Op: "export session", Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Export{}, readAPIError("export session", resp)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Export{}, fmt.Errorf("export session: %w", err)
	}
	name := attachmentName(resp.Header.Get("Content-Disposition"), "insta_session_"+profile+".zip")
	path := filepath.Join(dir, name)

	tmp, err := os.CreateTemp(dir, "."+name+".*")
	if err != nil {
		return Export{}, fmt.Errorf("export session: %w", err)
	}
	n, copyErr := io.Copy(tmp, resp.Body)
	closeErr := tmp.Close()
	if copyErr != nil {
		os.Remove(tmp.Name())
		return Export{}, &TransportError{Op: "export session", Err: copyErr}
	}
	if closeErr != nil {
		os.Remove(tmp.Name())
		return Export{}, fmt.Errorf("export session: %w", closeErr)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return Export{}, fmt.Errorf("export session: %w", err)
	}
	return Export{Profile: profile, Path: path, Bytes: n}, nil
}

// ImportSession uploads the archive at path as the session of profile and
// returns the server message.
func (c *Client) ImportSession(ctx context.Context, profile, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("import session: %w", err)
	}
	defer f.Close()

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		err := writeImportForm(mw, profile, filepath.Base(path), f)
		if err == nil {
			err = mw.Close()
		}
		pw.CloseWithError(err)
	}()

	req, err := c.newRequest(ctx, http.MethodPost, c.baseURL+"/import_session", pr)
	if err != nil {
		pr.Close()
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.stream.Do(req)
	if err != nil {
		return "", &TransportError{Op: "import session", Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", readAPIError("import session", resp)
	}
	var res ImportResult
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil && !errors.Is(err, io.EOF) {
		return "", &TransportError{Op: "import session", Err: fmt.Errorf("decode response: %w", err)}
	}
	return res.Message, nil
}

func writeImportForm(mw *multipart.Writer, profile, filename string, r io.Reader) error {
	if err := mw.WriteField("profile_name", profile); err != nil {
		return err
	}
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return err
	}
	_, err = io.Copy(part, r)
	return err
}

// --- internal ---

func (c *Client) newRequest(ctx context.Context, method, rawURL string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

func (c *Client) getJSON(ctx context.Context, op, path string, out any) error {
	return c.sendJSON(ctx, op, http.MethodGet, path, nil, out)
}

func (c *Client) sendJSON(ctx context.Context, op, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: marshal: %w", op, err)
		}
		body = bytes.NewReader(payload)
	}
	req, err := c.newRequest(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return readAPIError(op, resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func attachmentName(disposition, fallback string) string {
	if disposition == "" {
		return fallback
	}
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil {
		return fallback
	}
	name := filepath.Base(params["filename"])
	if name == "" || name == "." || name == ".." || name == "/" {
		return fallback
	}
	return name
}

// FormatBytes renders a byte count for display.
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return strconv.FormatInt(n, 10) + " B"
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
