// recognizer.go - Recognition orchestrator: dispatch, verification, reconcile

package recognizer

import (
	"context"
	"strings"

	"github.com/sniptex/sniptex_server/internal/catalog"
	"github.com/sniptex/sniptex_server/internal/common"
	"github.com/sniptex/sniptex_server/internal/provider"
	"github.com/sniptex/sniptex_server/internal/ratelimit"
	"github.com/sniptex/sniptex_server/internal/settings"
	"github.com/sniptex/sniptex_server/internal/usage"
)

// Result is the outcome of one recognition request. Verified and Corrected
// are only populated for formula-mode SiliconFlow results; OriginalText is
// set only when the verification pass replaced the primary transcription.
type Result struct {
	Text         string
	Model        string
	Verified     *bool
	Corrected    *bool
	OriginalText string
}

// Recognizer dispatches recognition requests to the resolved provider and
// runs the formula-mode verification pass.
type Recognizer struct {
	settings *settings.Store
	usage    *usage.Tracker
	limiter  *ratelimit.RateLimiter
}

// New creates a recognizer over the settings store, the usage tracker and
// the outbound rate limiter.
func New(store *settings.Store, tracker *usage.Tracker, limiter *ratelimit.RateLimiter) *Recognizer {
	return &Recognizer{settings: store, usage: tracker, limiter: limiter}
}

// Recognize runs one request end to end: resolve the provider, call it,
// verify formula results, reconcile. Every failure comes back as a
// classified *provider.Error; nothing here panics or retries.
func (r *Recognizer) Recognize(ctx context.Context, image, mode, modelSelector string) (*Result, error) {
	reqCtx := common.NewRequestContext(mode)
	defer reqCtx.Finish()

	token := r.settings.GetString(settings.KeySimpleTexToken)
	resolution := ResolveModel(modelSelector, mode, token != "")
	reqCtx.LogInfo("模型解析: provider=%s model=%q", resolution.Provider, resolution.ModelID)

	if resolution.Provider == ProviderSimpleTex {
		return r.recognizeSimpleTex(ctx, reqCtx, token, image, mode, resolution.ModelID)
	}
	return r.recognizeSiliconFlow(ctx, reqCtx, image, mode, resolution.ModelID)
}

// recognizeSimpleTex runs the single-shot SimpleTex path and books the
// free-tier usage on success.
func (r *Recognizer) recognizeSimpleTex(ctx context.Context, reqCtx *common.RequestContext, token, image, mode, modelID string) (*Result, error) {
	if token == "" {
		return nil, provider.NewError(provider.KindNotConfigured, "SimpleTex Token 未配置")
	}

	// Only the general model understands recognition submodes.
	recMode := ""
	if modelID == catalog.SimpleTexGeneralModel {
		if mode == "formula" {
			recMode = "formula"
		} else {
			recMode = "document"
		}
	}

	client := provider.NewSimpleTexClient(token)
	reqCtx.StartStep("simpletex_recognize")
	text, _, err := client.Recognize(ctx, image, modelID, recMode)
	if err != nil {
		reqCtx.EndStep("failed", err)
		return nil, err
	}
	reqCtx.EndStep("success", nil)

	if err := r.usage.Increment(modelID); err != nil {
		reqCtx.LogInfo("用量记录写入失败: %v", err)
	}

	modelName := modelID
	if m, ok := catalog.SimpleTexModelByID(modelID); ok {
		modelName = m.Name
	}
	return &Result{Text: text, Model: "SimpleTex (" + modelName + ")"}, nil
}

// recognizeSiliconFlow runs the chat-completion path: primary recognition
// plus, for formula mode, the verification pass. Verification failures are
// swallowed — the unverified primary result is always better than no result.
func (r *Recognizer) recognizeSiliconFlow(ctx context.Context, reqCtx *common.RequestContext, image, mode, modelID string) (*Result, error) {
	apiKey := r.settings.GetString(settings.KeySiliconFlowKey)
	if apiKey == "" {
		return nil, provider.NewError(provider.KindNotConfigured, "请先在设置中配置硅基流动 API Key")
	}
	if modelID == "" {
		return nil, provider.NewError(provider.KindNoModelSelected, "未选择模型")
	}

	imageURL := image
	if !strings.HasPrefix(image, "data:") {
		imageURL = "data:image/png;base64," + image
	}

	client := provider.NewSiliconFlowClient(apiKey)

	if err := r.limiter.Wait(ctx); err != nil {
		return nil, provider.Errorf(provider.KindNetwork, "请求失败: %v", err)
	}
	reqCtx.StartStep("siliconflow_recognize")
	primaryText, err := client.ChatVision(ctx, modelID, imageURL, promptForMode(mode))
	if err != nil {
		reqCtx.EndStep("failed", err)
		return nil, err
	}
	reqCtx.EndStep("success", nil)

	if primaryText == "" {
		return &Result{Text: "", Model: modelID, Verified: boolPtr(false)}, nil
	}

	if mode == "formula" {
		if result := r.verifyFormula(ctx, reqCtx, client, modelID, imageURL, primaryText); result != nil {
			return result, nil
		}
		// Verification degraded; surface the primary result unverified.
		return &Result{Text: primaryText, Model: modelID, Verified: boolPtr(false)}, nil
	}

	return &Result{Text: primaryText, Model: modelID}, nil
}

// verifyFormula issues the verification call and reconciles the two
// transcriptions. A nil return means verification could not complete.
func (r *Recognizer) verifyFormula(ctx context.Context, reqCtx *common.RequestContext, client *provider.SiliconFlowClient, modelID, imageURL, primaryText string) *Result {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil
	}
	reqCtx.StartStep("siliconflow_verify")
	secondaryText, err := client.ChatVision(ctx, modelID, imageURL, verifyPrompt(primaryText))
	if err != nil || secondaryText == "" {
		reqCtx.EndStep("skipped", err)
		return nil
	}
	reqCtx.EndStep("success", nil)

	// Whitespace never changes the meaning of a formula.
	verified := collapseWhitespace(primaryText) == collapseWhitespace(secondaryText)
	if verified {
		return &Result{
			Text:      primaryText,
			Model:     modelID,
			Verified:  boolPtr(true),
			Corrected: boolPtr(false),
		}
	}
	reqCtx.LogInfo("校验发现差异，已采用修正结果")
	return &Result{
		Text:         secondaryText,
		Model:        modelID,
		Verified:     boolPtr(false),
		Corrected:    boolPtr(true),
		OriginalText: primaryText,
	}
}

// collapseWhitespace reduces every whitespace run to a single space.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func boolPtr(v bool) *bool {
	return &v
}
