package segmentation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
)

// Client talks to the remote segmentation inference service over HTTP.
// The service accepts a multipart image upload plus threshold fields
// and answers with a JSON list of predictions.
type Client struct {
	baseURL    string
	modelID    string
	httpClient *http.Client
	logger     *logrus.Logger
}

func NewClient(baseURL, modelID string, timeout time.Duration, logger *logrus.Logger) *Client {
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		modelID: modelID,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

type inferResponse struct {
	Predictions []RawDetection `json:"predictions"`
	Error       string         `json:"error"`
}

// Detect uploads the image and returns the service's raw predictions.
func (c *Client) Detect(ctx context.Context, imageBytes []byte, conf, iou float64) ([]RawDetection, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	fileWriter, err := writer.CreateFormFile("image", "floorplan.jpg")
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := fileWriter.Write(imageBytes); err != nil {
		return nil, fmt.Errorf("failed to write image data: %w", err)
	}

	if err := writer.WriteField("model_id", c.modelID); err != nil {
		return nil, fmt.Errorf("failed to write model_id: %w", err)
	}
	if err := writer.WriteField("confidence", strconv.FormatFloat(conf, 'f', 2, 64)); err != nil {
		return nil, fmt.Errorf("failed to write confidence: %w", err)
	}
	if err := writer.WriteField("iou_threshold", strconv.FormatFloat(iou, 'f', 2, 64)); err != nil {
		return nil, fmt.Errorf("failed to write iou_threshold: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	url := fmt.Sprintf("%s/infer", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, "POST", url, &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	c.logger.Debugf("Sending segmentation request to %s (model %s)", url, c.modelID)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call segmentation service: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read segmentation response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("segmentation service returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var inferResp inferResponse
	if err := json.Unmarshal(respBody, &inferResp); err != nil {
		return nil, fmt.Errorf("failed to parse segmentation response: %w", err)
	}
	if inferResp.Error != "" {
		return nil, fmt.Errorf("segmentation service error: %s", inferResp.Error)
	}

	c.logger.Debugf("Segmentation service returned %d predictions", len(inferResp.Predictions))
	return inferResp.Predictions, nil
}

// CheckHealth pings the service's health endpoint.
func (c *Client) CheckHealth(ctx context.Context) error {
	url := fmt.Sprintf("%s/health", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach segmentation service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("segmentation service returned status %d", resp.StatusCode)
	}
	return nil
}
