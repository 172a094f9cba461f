// simpletex.go - SimpleTex OCR API client (token-auth multipart upload)

package provider

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/sniptex/sniptex_server/configs"
)

// SimpleTexClient calls the SimpleTex recognition API. The API takes a
// multipart image upload authenticated by a "token" header and answers with
// a JSON envelope carrying a boolean status flag.
type SimpleTexClient struct {
	token  string
	client *http.Client
}

// NewSimpleTexClient creates a client for the given token.
func NewSimpleTexClient(token string) *SimpleTexClient {
	return &SimpleTexClient{
		token: token,
		client: &http.Client{
			Timeout: time.Duration(configs.RECOGNIZE_TIMEOUT) * time.Second,
		},
	}
}

// validateModel is the cheapest SimpleTex model; credential probes go
// through it so a validation never burns quota on the standard model.
const validateModel = "latex_ocr_turbo"

// testImagePNG is a fixed 50x50 PNG (white background, black square) used
// for connectivity and credential probes.
const testImagePNG = "iVBORw0KGgoAAAANSUhEUgAAADIAAAAyCAIAAACRXR/mAAAASklEQVR4nO3OsQ3AIBAAsd9/abIAzSkFCNkTeNaV5nRgT6vQKrQKrUKr0CqeaM0/WlpaWlpaWlpaWlpaR2gVWoVWoVVoFVrFpa0PK6QKSH2kFl4AAAAASUVORK5CYII="

// Recognize uploads an image to the given SimpleTex model and returns the
// recognized text and the model's confidence score.
//
// imageBase64 may be a bare base64 payload or a full data URL; any data-URL
// prefix is stripped before decoding. recMode is an optional recognition
// submode ("formula" or "document") supported only by the general model.
func (c *SimpleTexClient) Recognize(ctx context.Context, imageBase64, modelID, recMode string) (string, float64, error) {
	base64Data := imageBase64
	if i := strings.LastIndex(imageBase64, ","); i >= 0 {
		base64Data = imageBase64[i+1:]
	}
	imageBytes, err := base64.StdEncoding.DecodeString(base64Data)
	if err != nil {
		return "", 0, Errorf(KindValidation, "Base64 解码失败: %v", err)
	}

	data, err := c.post(ctx, modelID, imageBytes, recMode)
	if err != nil {
		return "", 0, err
	}

	if status, _ := data["status"].(bool); !status {
		errType, ok := firstStringAt(data, simpletexErrTypePaths)
		if !ok {
			errType = "unknown"
		}
		return "", 0, mapSimpleTexError(errType)
	}

	resObj, _ := data["res"].(map[string]interface{})
	text := extractSimpleTexText(resObj)
	conf, _ := resObj["conf"].(float64)
	return text, conf, nil
}

// ValidateToken reports whether the token is usable. Deliberately lenient:
// only an explicit auth rejection invalidates a token — server errors and
// quota problems still mean the token itself is fine.
func (c *SimpleTexClient) ValidateToken(ctx context.Context) bool {
	resp, err := c.postTestImage(ctx)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return false
	}
	body, _ := io.ReadAll(resp.Body)
	var data map[string]interface{}
	if err := json.Unmarshal(body, &data); err == nil {
		if errType, ok := firstStringAt(data, simpletexErrTypePaths); ok && errType == "req_unauthorized" {
			return false
		}
	}
	return true
}

// Probe performs a full connectivity test with the fixed test image and
// returns a classified error describing what went wrong, or nil when the
// token works.
func (c *SimpleTexClient) Probe(ctx context.Context) error {
	resp, err := c.postTestImage(ctx)
	if err != nil {
		return Errorf(KindNetwork, "网络错误: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return NewError(KindAuth, "Token 无效或已过期")
	}
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var data map[string]interface{}
		if err := json.Unmarshal(body, &data); err == nil {
			if errType, ok := firstStringAt(data, simpletexErrTypePaths); ok {
				switch errType {
				case "req_unauthorized":
					return NewError(KindAuth, "Token 无效或已过期")
				case "resource_no_valid":
					return NewError(KindQuotaExhausted, "无可用资源（额度已用完）")
				}
			}
		}
		return Errorf(KindProvider, "服务器错误 (HTTP %d)", resp.StatusCode)
	}

	var data map[string]interface{}
	if err := json.Unmarshal(body, &data); err != nil {
		return Errorf(KindProvider, "解析响应失败: %v", err)
	}
	if status, _ := data["status"].(bool); !status {
		errType, ok := firstStringAt(data, simpletexErrTypePaths)
		if !ok {
			errType = "未知错误"
		}
		switch errType {
		case "req_unauthorized":
			return NewError(KindAuth, "Token 无效或已过期")
		case "resource_no_valid":
			return NewError(KindQuotaExhausted, "无可用资源（额度已用完）")
		}
		return NewError(KindProvider, errType)
	}
	return nil
}

// post uploads imageBytes to the given model endpoint and decodes the JSON
// envelope, mapping transport and HTTP failures into the taxonomy.
func (c *SimpleTexClient) post(ctx context.Context, modelID string, imageBytes []byte, recMode string) (map[string]interface{}, error) {
	resp, err := c.upload(ctx, modelID, imageBytes, recMode)
	if err != nil {
		return nil, Errorf(KindNetwork, "SimpleTex 请求失败: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, Errorf(KindProvider, "SimpleTex API 错误: %d", resp.StatusCode)
	}

	var data map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, Errorf(KindProvider, "解析响应失败: %v", err)
	}
	return data, nil
}

// postTestImage uploads the fixed test PNG to the validation model.
func (c *SimpleTexClient) postTestImage(ctx context.Context) (*http.Response, error) {
	pngBytes, err := base64.StdEncoding.DecodeString(testImagePNG)
	if err != nil {
		return nil, fmt.Errorf("failed to decode test image: %w", err)
	}
	return c.upload(ctx, validateModel, pngBytes, "")
}

// upload sends the multipart request: a "file" part named image.png plus an
// optional "rec_mode" field.
func (c *SimpleTexClient) upload(ctx context.Context, modelID string, imageBytes []byte, recMode string) (*http.Response, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="image.png"`)
	header.Set("Content-Type", "image/png")
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("failed to create form part: %w", err)
	}
	if _, err := part.Write(imageBytes); err != nil {
		return nil, fmt.Errorf("failed to write image part: %w", err)
	}
	if recMode != "" {
		if err := writer.WriteField("rec_mode", recMode); err != nil {
			return nil, fmt.Errorf("failed to write rec_mode field: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize form: %w", err)
	}

	url := fmt.Sprintf("%s/%s", configs.SIMPLETEX_API_BASE, modelID)
	req, err := http.NewRequestWithContext(ctx, "POST", url, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("token", c.token)

	return c.client.Do(req)
}

// mapSimpleTexError turns a SimpleTex error code into a classified error.
func mapSimpleTexError(errType string) error {
	switch errType {
	case "req_unauthorized":
		return NewError(KindAuth, "SimpleTex Token 无效或已过期")
	case "resource_no_valid":
		return NewError(KindQuotaExhausted, "SimpleTex 额度已用完")
	}
	return Errorf(KindProvider, "SimpleTex 识别失败: %s", errType)
}

// extractSimpleTexText pulls the recognized text out of the result object.
// The API returns one of several shapes depending on model; the first
// matching shape wins:
//   - res.info as a plain string
//   - res.info as an object with markdown/text fields
//   - top-level res.markdown / res.latex
func extractSimpleTexText(resObj map[string]interface{}) string {
	if resObj == nil {
		return ""
	}
	if s, ok := resObj["info"].(string); ok {
		return s
	}
	if info, ok := resObj["info"].(map[string]interface{}); ok {
		if s, ok := info["markdown"].(string); ok {
			return s
		}
		if s, ok := info["text"].(string); ok {
			return s
		}
		raw, _ := json.Marshal(info)
		return string(raw)
	}
	if s, ok := resObj["markdown"].(string); ok {
		return s
	}
	if s, ok := resObj["latex"].(string); ok {
		return s
	}
	return ""
}
