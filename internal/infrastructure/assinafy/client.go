package assinafy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"locar-esign/internal/config"
	"locar-esign/internal/domain/entity"
)

const (
	maxBodyLogLength = 500 // Maximum characters to log for a body
)

// Client exposes the provider operations used by the signature lifecycle.
// Every call carries the account bearer token and X-Account-Id header.
type Client interface {
	// Upload sends a local PDF to the provider and returns the provider
	// document id. Fails with a NotFound kind before any network call when
	// the file does not exist.
	Upload(ctx context.Context, filePath string) (string, error)

	// GetStatus returns the provider-side processing status of a document.
	GetStatus(ctx context.Context, documentID string) (entity.DocumentStatus, error)

	// FindSignerByEmail searches the account's signers and returns the one
	// whose email matches case-insensitively, or nil when there is none.
	FindSignerByEmail(ctx context.Context, email string) (*entity.Signer, error)

	// CreateSigner registers a new signer in the provider account.
	CreateSigner(ctx context.Context, fullName, email string) (*entity.Signer, error)

	// RequestSignature creates a virtual-method signature assignment for the
	// document and returns the provider package id. Not idempotent at the
	// provider; callers must not re-issue for a document that already has an
	// active package.
	RequestSignature(ctx context.Context, documentID string, signerIDs []string) (string, error)

	// DownloadCertificated streams the signed PDF to destPath. It reports
	// success as a bool: absence of the file is directly observable, and the
	// scheduled job treats a false as "try again next cycle". No partial
	// file is left behind on failure.
	DownloadCertificated(ctx context.Context, documentID, destPath string) bool
}

// APILogSaver persists outbound call logs off the hot path.
type APILogSaver interface {
	Save(ctx context.Context, log *entity.APILog) error
}

type client struct {
	http        *http.Client
	cfg         *config.AssinafyConfig
	apiLogSaver APILogSaver
	logger      *zap.Logger
}

func NewClient(cfg *config.Config, apiLogSaver APILogSaver, logger *zap.Logger) Client {
	return &client{
		http: &http.Client{
			Timeout: cfg.Assinafy.Timeout,
		},
		cfg:         &cfg.Assinafy,
		apiLogSaver: apiLogSaver,
		logger:      logger,
	}
}

type idResponse struct {
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

type statusResponse struct {
	Data struct {
		Status string `json:"status"`
	} `json:"data"`
}

type signerListResponse struct {
	Data []entity.Signer `json:"data"`
}

type assignmentResponse struct {
	Data struct {
		ID      string `json:"id"`
		Package struct {
			ID string `json:"id"`
		} `json:"package"`
	} `json:"data"`
}

func (c *client) Upload(ctx context.Context, filePath string) (string, error) {
	const op = "upload"

	// Check the file before spending a request on it.
	if _, err := os.Stat(filePath); err != nil {
		c.logger.Error("Contract file not found for upload",
			zap.String("path", filePath),
			zap.Error(err),
		)
		return "", &Error{Kind: KindNotFound, Op: op, Err: err}
	}

	content, err := os.ReadFile(filePath)
	if err != nil {
		return "", &Error{Kind: KindNotFound, Op: op, Err: err}
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filepath.Base(filePath))
	if err != nil {
		return "", &Error{Kind: KindNetwork, Op: op, Err: err}
	}
	if _, err := part.Write(content); err != nil {
		return "", &Error{Kind: KindNetwork, Op: op, Err: err}
	}
	if err := writer.Close(); err != nil {
		return "", &Error{Kind: KindNetwork, Op: op, Err: err}
	}

	path := fmt.Sprintf("/v1/accounts/%s/documents", c.cfg.AccountID)
	bodySummary := fmt.Sprintf("{file: %s (%d bytes)}", filepath.Base(filePath), len(content))

	var response idResponse
	err = c.do(ctx, op, http.MethodPost, path, &buf, writer.FormDataContentType(), bodySummary, &response)
	if err != nil {
		return "", err
	}

	c.logger.Info("Document uploaded to provider",
		zap.String("document_id", response.Data.ID),
		zap.String("file", filepath.Base(filePath)),
	)
	return response.Data.ID, nil
}

func (c *client) GetStatus(ctx context.Context, documentID string) (entity.DocumentStatus, error) {
	const op = "get_status"

	path := fmt.Sprintf("/v1/documents/%s", documentID)

	var response statusResponse
	if err := c.do(ctx, op, http.MethodGet, path, nil, "", "", &response); err != nil {
		return entity.DocumentStatusUnknown, err
	}

	return entity.ParseDocumentStatus(response.Data.Status), nil
}

func (c *client) FindSignerByEmail(ctx context.Context, email string) (*entity.Signer, error) {
	const op = "find_signer"

	path := fmt.Sprintf("/v1/accounts/%s/signers?search=%s", c.cfg.AccountID, url.QueryEscape(email))

	var response signerListResponse
	if err := c.do(ctx, op, http.MethodGet, path, nil, "", "", &response); err != nil {
		return nil, err
	}

	// The search is fuzzy on the provider side; match the exact email,
	// case-insensitively.
	for i := range response.Data {
		if strings.EqualFold(response.Data[i].Email, email) {
			return &response.Data[i], nil
		}
	}
	return nil, nil
}

func (c *client) CreateSigner(ctx context.Context, fullName, email string) (*entity.Signer, error) {
	const op = "create_signer"

	path := fmt.Sprintf("/v1/accounts/%s/signers", c.cfg.AccountID)
	payload := map[string]string{
		"full_name": fullName,
		"email":     email,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &Error{Kind: KindProvider, Op: op, Err: err}
	}

	var response idResponse
	if err := c.do(ctx, op, http.MethodPost, path, bytes.NewReader(body), "application/json", string(body), &response); err != nil {
		return nil, err
	}

	c.logger.Info("Signer created at provider",
		zap.String("signer_id", response.Data.ID),
		zap.String("email", email),
	)
	return &entity.Signer{ID: response.Data.ID, FullName: fullName, Email: email}, nil
}

func (c *client) RequestSignature(ctx context.Context, documentID string, signerIDs []string) (string, error) {
	const op = "request_signature"

	path := fmt.Sprintf("/v1/documents/%s/assignments", documentID)
	payload := map[string]interface{}{
		"method":     "virtual",
		"signer_ids": signerIDs,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", &Error{Kind: KindProvider, Op: op, Err: err}
	}

	var response assignmentResponse
	if err := c.do(ctx, op, http.MethodPost, path, bytes.NewReader(body), "application/json", string(body), &response); err != nil {
		return "", err
	}

	packageID := response.Data.Package.ID
	if packageID == "" {
		packageID = response.Data.ID
	}

	c.logger.Info("Signature requested",
		zap.String("document_id", documentID),
		zap.String("package_id", packageID),
		zap.Int("signers", len(signerIDs)),
	)
	return packageID, nil
}

func (c *client) DownloadCertificated(ctx context.Context, documentID, destPath string) bool {
	path := fmt.Sprintf("/v1/documents/%s/download/certificated", documentID)
	fullURL := c.cfg.BaseURL + path

	if err := os.MkdirAll(filepath.Dir(destPath), 0o775); err != nil {
		c.logger.Error("Failed to create destination directory",
			zap.String("dest", destPath),
			zap.Error(err),
		)
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		c.logger.Error("Failed to create download request", zap.Error(err))
		return false
	}
	c.setHeaders(req)

	startTime := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("Failed to download certificated document",
			zap.String("document_id", documentID),
			zap.Error(err),
		)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		c.logger.Error("Certificated download rejected by provider",
			zap.String("document_id", documentID),
			zap.Int("status_code", resp.StatusCode),
			zap.String("body", truncateString(string(body), maxBodyLogLength)),
		)
		c.saveAPILog(http.MethodGet, fullURL, "", string(body), resp.StatusCode, time.Since(startTime))
		return false
	}

	// Stream to a temp file in the same directory and rename into place so
	// a failed transfer never leaves a partial PDF at destPath.
	tmpPath := destPath + "." + uuid.NewString() + ".tmp"
	tmp, err := os.Create(tmpPath)
	if err != nil {
		c.logger.Error("Failed to create temp file for download",
			zap.String("tmp", tmpPath),
			zap.Error(err),
		)
		return false
	}

	written, err := io.Copy(tmp, resp.Body)
	closeErr := tmp.Close()
	if err != nil || closeErr != nil {
		os.Remove(tmpPath)
		c.logger.Error("Failed to stream certificated document to disk",
			zap.String("document_id", documentID),
			zap.NamedError("copy_error", err),
			zap.NamedError("close_error", closeErr),
		)
		return false
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		c.logger.Error("Failed to move downloaded document into place",
			zap.String("dest", destPath),
			zap.Error(err),
		)
		return false
	}

	c.saveAPILog(http.MethodGet, fullURL, "", fmt.Sprintf("[binary %d bytes]", written), resp.StatusCode, time.Since(startTime))
	c.logger.Info("Certificated document downloaded",
		zap.String("document_id", documentID),
		zap.String("dest", destPath),
		zap.Int64("size_bytes", written),
	)
	return true
}

func (c *client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIToken)
	req.Header.Set("X-Account-Id", c.cfg.AccountID)
	req.Header.Set("Accept", "application/json")
}

// do runs one JSON-result request and classifies the failure modes. bodyLog
// is the loggable form of the request body (a summary for multipart).
func (c *client) do(ctx context.Context, op, method, path string, body io.Reader, contentType, bodyLog string, result interface{}) error {
	fullURL := c.cfg.BaseURL + path

	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return &Error{Kind: KindNetwork, Op: op, Err: err}
	}

	c.setHeaders(req)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	c.logger.Debug("Provider request",
		zap.String("method", method),
		zap.String("url", fullURL),
		zap.String("body", truncateString(bodyLog, maxBodyLogLength)),
	)

	startTime := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("Provider request failed",
			zap.String("op", op),
			zap.String("url", fullURL),
			zap.Error(err),
		)
		return &Error{Kind: KindNetwork, Op: op, Err: err}
	}
	defer resp.Body.Close()

	duration := time.Since(startTime)

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Kind: KindNetwork, Op: op, Err: err}
	}

	c.logger.Debug("Provider response",
		zap.String("op", op),
		zap.Int("status_code", resp.StatusCode),
		zap.Duration("duration", duration),
		zap.String("body", truncateString(string(respBody), maxBodyLogLength)),
	)

	c.saveAPILog(method, fullURL, bodyLog, string(respBody), resp.StatusCode, duration)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Error("Provider returned an error",
			zap.String("op", op),
			zap.Int("status_code", resp.StatusCode),
			zap.String("body", truncateString(string(respBody), maxBodyLogLength)),
		)
		return &Error{Kind: KindProvider, Op: op, Status: resp.StatusCode, Body: string(respBody)}
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return &Error{Kind: KindProvider, Op: op, Status: resp.StatusCode, Body: string(respBody), Err: err}
		}
	}

	return nil
}

// saveAPILog persists the call record asynchronously so the request path
// never blocks on the database.
func (c *client) saveAPILog(method, endpoint, requestBody, responseBody string, statusCode int, duration time.Duration) {
	if c.apiLogSaver == nil {
		return
	}

	if len(requestBody) > 10000 {
		requestBody = requestBody[:10000] + "... [truncated]"
	}
	if len(responseBody) > 10000 {
		responseBody = responseBody[:10000] + "... [truncated]"
	}

	apiLog := &entity.APILog{
		Endpoint:     endpoint,
		Method:       method,
		RequestBody:  requestBody,
		ResponseBody: responseBody,
		StatusCode:   statusCode,
		Duration:     duration.Milliseconds(),
		CreatedAt:    time.Now(),
	}

	go func() {
		if err := c.apiLogSaver.Save(context.Background(), apiLog); err != nil {
			c.logger.Warn("Failed to save API log to database",
				zap.String("endpoint", endpoint),
				zap.Error(err),
			)
		}
	}()
}

func truncateString(s string, maxLength int) string {
	if len(s) <= maxLength {
		return s
	}
	return s[:maxLength] + fmt.Sprintf("... [truncated, total %d chars]", len(s))
}
