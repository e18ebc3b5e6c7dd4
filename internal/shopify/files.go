// internal/shopify/files.go
package shopify

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
)

// StagedUploadTarget is a short-lived upload destination returned by
// the media service, including the form parameters that must accompany
// the transfer.
type StagedUploadTarget struct {
	URL         string            `json:"url"`
	ResourceURL string            `json:"resourceUrl"`
	Parameters  []StagedParameter `json:"parameters"`
}

type StagedParameter struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// File processing statuses as reported by the media service.
const (
	FileStatusUploaded   = "UPLOADED"
	FileStatusProcessing = "PROCESSING"
	FileStatusReady      = "READY"
	FileStatusFailed     = "FAILED"
)

// StagedUploadCreate requests an upload target for the given file.
func (c *Client) StagedUploadCreate(ctx context.Context, filename, mimeType string, size int64) (*StagedUploadTarget, error) {
	var result struct {
		StagedUploadsCreate struct {
			StagedTargets []StagedUploadTarget `json:"stagedTargets"`
			UserErrors    []UserError          `json:"userErrors"`
		} `json:"stagedUploadsCreate"`
	}

	mutation := `mutation stagedUploadsCreate($input: [StagedUploadInput!]!) {
		stagedUploadsCreate(input: $input) {
			stagedTargets {
				url
				resourceUrl
				parameters { name value }
			}
			userErrors { field message code }
		}
	}`
	variables := map[string]interface{}{
		"input": []map[string]interface{}{{
			"filename":   filename,
			"mimeType":   mimeType,
			"fileSize":   strconv.FormatInt(size, 10),
			"resource":   "IMAGE",
			"httpMethod": "POST",
		}},
	}
	if err := c.Execute(ctx, mutation, variables, &result); err != nil {
		return nil, fmt.Errorf("staged upload create failed: %w", err)
	}

	if len(result.StagedUploadsCreate.UserErrors) > 0 {
		ue := result.StagedUploadsCreate.UserErrors[0]
		return nil, fmt.Errorf("staged upload rejected: %s", ue.Message)
	}
	if len(result.StagedUploadsCreate.StagedTargets) == 0 {
		return nil, fmt.Errorf("staged upload returned no target")
	}

	return &result.StagedUploadsCreate.StagedTargets[0], nil
}

// UploadToStagedTarget transfers raw bytes to the staged target with a
// multipart POST carrying the required form parameters first and the
// file part last.
func (c *Client) UploadToStagedTarget(ctx context.Context, target *StagedUploadTarget, filename, mimeType string, data []byte) error {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	for _, param := range target.Parameters {
		if err := writer.WriteField(param.Name, param.Value); err != nil {
			return fmt.Errorf("failed to write upload parameter %s: %w", param.Name, err)
		}
	}

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return fmt.Errorf("failed to create file part: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return fmt.Errorf("failed to write file part: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize upload body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target.URL, &body)
	if err != nil {
		return fmt.Errorf("failed to build upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("upload transfer failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("upload target returned status %d: %s", resp.StatusCode, string(detail))
	}

	return nil
}

// FileCreate registers the uploaded resource as a first-class media
// object and returns its durable id. The asset becomes URL-resolvable
// asynchronously; see GetFileStatus.
func (c *Client) FileCreate(ctx context.Context, resourceURL, altText string) (string, error) {
	var result struct {
		FileCreate struct {
			Files []struct {
				ID string `json:"id"`
			} `json:"files"`
			UserErrors []UserError `json:"userErrors"`
		} `json:"fileCreate"`
	}

	mutation := `mutation fileCreate($files: [FileCreateInput!]!) {
		fileCreate(files: $files) {
			files { id }
			userErrors { field message code }
		}
	}`
	variables := map[string]interface{}{
		"files": []map[string]interface{}{{
			"originalSource": resourceURL,
			"contentType":    "IMAGE",
			"alt":            altText,
		}},
	}
	if err := c.Execute(ctx, mutation, variables, &result); err != nil {
		return "", fmt.Errorf("file create failed: %w", err)
	}

	if len(result.FileCreate.UserErrors) > 0 {
		ue := result.FileCreate.UserErrors[0]
		return "", fmt.Errorf("file create rejected: %s", ue.Message)
	}
	if len(result.FileCreate.Files) == 0 {
		return "", fmt.Errorf("file create returned no file")
	}

	return result.FileCreate.Files[0].ID, nil
}

// GetFileStatus returns the processing status of a media object and its
// resolved URL once the asset is ready. The URL is empty until
// processing completes.
func (c *Client) GetFileStatus(ctx context.Context, fileID string) (status, url string, err error) {
	var result struct {
		Node *struct {
			FileStatus string `json:"fileStatus"`
			Image      *struct {
				URL string `json:"url"`
			} `json:"image"`
		} `json:"node"`
	}

	query := `query fileStatus($id: ID!) {
		node(id: $id) {
			... on MediaImage {
				fileStatus
				image { url }
			}
		}
	}`
	if err := c.Execute(ctx, query, map[string]interface{}{"id": fileID}, &result); err != nil {
		return "", "", fmt.Errorf("file status fetch failed: %w", err)
	}

	if result.Node == nil {
		return "", "", fmt.Errorf("media object %s not found", fileID)
	}

	if result.Node.Image != nil {
		url = result.Node.Image.URL
	}
	return result.Node.FileStatus, url, nil
}
