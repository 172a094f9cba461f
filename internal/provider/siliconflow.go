// siliconflow.go - SiliconFlow chat-completion vision API client

package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sniptex/sniptex_server/configs"
)

// SiliconFlowClient calls the SiliconFlow OpenAI-style API with a bearer
// key: chat completions for recognition, /user/info for balance, /models
// for the model list.
type SiliconFlowClient struct {
	apiKey string
	client *http.Client
	probe  *http.Client
}

// NewSiliconFlowClient creates a client for the given API key.
func NewSiliconFlowClient(apiKey string) *SiliconFlowClient {
	return &SiliconFlowClient{
		apiKey: apiKey,
		client: &http.Client{
			Timeout: time.Duration(configs.RECOGNIZE_TIMEOUT) * time.Second,
		},
		probe: &http.Client{
			Timeout: time.Duration(configs.PROBE_TIMEOUT) * time.Second,
		},
	}
}

// Chat completion request/response structures
type sfImageURL struct {
	URL    string `json:"url"`
	Detail string `json:"detail"`
}

type sfContentPart struct {
	Type     string      `json:"type"`
	ImageURL *sfImageURL `json:"image_url,omitempty"`
	Text     string      `json:"text,omitempty"`
}

type sfChatMessage struct {
	Role    string          `json:"role"`
	Content []sfContentPart `json:"content"`
}

type sfChatRequest struct {
	Model     string          `json:"model"`
	Messages  []sfChatMessage `json:"messages"`
	MaxTokens int             `json:"max_tokens"`
}

type sfChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type sfErrorResponse struct {
	Message string `json:"message"`
	Error   struct {
		Message string `json:"message"`
	} `json:"error"`
}

type sfUserInfoResponse struct {
	Data struct {
		ChargeBalance string `json:"chargeBalance"`
		TotalBalance  string `json:"totalBalance"`
		Balance       string `json:"balance"`
	} `json:"data"`
}

type sfModelListResponse struct {
	Data []struct {
		ID string `json:"id"`
	} `json:"data"`
}

// ChatVision sends one vision chat-completion request: the image reference
// plus an instruction prompt, and returns the first choice's message
// content with surrounding whitespace trimmed.
func (c *SiliconFlowClient) ChatVision(ctx context.Context, model, imageURL, prompt string) (string, error) {
	reqBody := sfChatRequest{
		Model: model,
		Messages: []sfChatMessage{{
			Role: "user",
			Content: []sfContentPart{
				{Type: "image_url", ImageURL: &sfImageURL{URL: imageURL, Detail: "high"}},
				{Type: "text", Text: prompt},
			},
		}},
		MaxTokens: 4096,
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", Errorf(KindValidation, "构造请求失败: %v", err)
	}

	url := configs.SILICONFLOW_API_BASE + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return "", Errorf(KindNetwork, "请求失败: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", Errorf(KindNetwork, "请求失败: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", Errorf(KindNetwork, "读取响应失败: %v", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", normalizeChatError(resp.StatusCode, respBody)
	}

	var data sfChatResponse
	if err := json.Unmarshal(respBody, &data); err != nil {
		return "", Errorf(KindProvider, "解析响应失败: %v", err)
	}
	if len(data.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(data.Choices[0].Message.Content), nil
}

// UserInfo fetches the account balance. Returned values are the provider's
// own decimal strings: chargeBalance and totalBalance (older accounts report
// the total under "balance").
func (c *SiliconFlowClient) UserInfo(ctx context.Context) (charge, total string, err error) {
	resp, err := c.getUserInfo(ctx)
	if err != nil {
		return "", "", Errorf(KindNetwork, "网络错误: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", "", Errorf(KindProvider, "HTTP %d", resp.StatusCode)
	}
	var data sfUserInfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", "", Errorf(KindProvider, "解析响应失败: %v", err)
	}

	charge = data.Data.ChargeBalance
	if charge == "" {
		charge = "0"
	}
	total = data.Data.TotalBalance
	if total == "" {
		total = data.Data.Balance
	}
	if total == "" {
		total = "0"
	}
	return charge, total, nil
}

// Probe checks the key and reports the account's total balance on success.
func (c *SiliconFlowClient) Probe(ctx context.Context) (balance string, err error) {
	resp, err := c.getUserInfo(ctx)
	if err != nil {
		return "", Errorf(KindNetwork, "网络错误: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return "", NewError(KindAuth, "API Key 无效")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", Errorf(KindProvider, "HTTP %d", resp.StatusCode)
	}

	var data sfUserInfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", nil
	}
	balance = data.Data.TotalBalance
	if balance == "" {
		balance = data.Data.Balance
	}
	return balance, nil
}

// ValidateKey reports whether the key is accepted by the provider.
func (c *SiliconFlowClient) ValidateKey(ctx context.Context) bool {
	resp, err := c.getUserInfo(ctx)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode <= 299
}

// ListChatModels fetches the ids of all chat-capable models.
func (c *SiliconFlowClient) ListChatModels(ctx context.Context) ([]string, error) {
	url := configs.SILICONFLOW_API_BASE + "/models?sub_type=chat"
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.probe.Do(req)
	if err != nil {
		return nil, Errorf(KindNetwork, "网络错误: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, Errorf(KindProvider, "HTTP %d", resp.StatusCode)
	}
	var data sfModelListResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, Errorf(KindProvider, "解析响应失败: %v", err)
	}

	ids := make([]string, 0, len(data.Data))
	for _, m := range data.Data {
		if m.ID != "" {
			ids = append(ids, m.ID)
		}
	}
	return ids, nil
}

func (c *SiliconFlowClient) getUserInfo(ctx context.Context) (*http.Response, error) {
	url := configs.SILICONFLOW_API_BASE + "/user/info"
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	return c.probe.Do(req)
}

// normalizeChatError turns a non-2xx chat-completion response into a single
// user-facing message. The provider reports the message either at the top
// level or nested under "error"; a known minimum-image-dimension complaint
// is rewritten into actionable guidance.
func normalizeChatError(statusCode int, body []byte) error {
	kind := KindProvider
	if statusCode == http.StatusUnauthorized {
		kind = KindAuth
	}

	var errResp sfErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil {
		msg := errResp.Message
		if msg == "" {
			msg = errResp.Error.Message
		}
		if msg != "" {
			lower := strings.ToLower(msg)
			if strings.Contains(lower, "height") && strings.Contains(lower, "width") &&
				strings.Contains(lower, "must be larger") {
				return NewError(KindValidation, "图片尺寸太小，该模型要求最小 28×28 像素，请使用更大的图片")
			}
			return NewError(kind, msg)
		}
	}
	return Errorf(kind, "API 调用失败: %d", statusCode)
}
