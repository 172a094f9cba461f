// handlers.go - HTTP handlers for the settings, catalog and recognition commands

package api

import (
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sniptex/sniptex_server/internal/catalog"
	"github.com/sniptex/sniptex_server/internal/provider"
	"github.com/sniptex/sniptex_server/internal/recognizer"
	"github.com/sniptex/sniptex_server/internal/settings"
	"github.com/sniptex/sniptex_server/internal/sysopen"
	"github.com/sniptex/sniptex_server/internal/usage"
)

// Handler carries the stores and the recognizer behind the HTTP surface.
type Handler struct {
	Settings   *settings.Store
	Usage      *usage.Tracker
	Recognizer *recognizer.Recognizer
}

// NewHandler wires the command handlers.
func NewHandler(store *settings.Store, tracker *usage.Tracker, rec *recognizer.Recognizer) *Handler {
	return &Handler{Settings: store, Usage: tracker, Recognizer: rec}
}

// --- Response types ---

// SimpleTexModelInfo is one row of the static SimpleTex model table.
type SimpleTexModelInfo struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	FreePerDay int    `json:"free_per_day"`
}

// SettingsResponse reports the stored configuration plus live balance.
type SettingsResponse struct {
	HasKey                bool                 `json:"has_key"`
	HasSimpleTex          bool                 `json:"has_simpletex"`
	SimpleTexModel        string               `json:"simpletex_model"`
	SimpleTexModels       []SimpleTexModelInfo `json:"simpletex_models"`
	SimpleTexUsageByModel map[string]int       `json:"simpletex_usage_by_model"`
	SfBalance             *string              `json:"sf_balance,omitempty"`
	SfChargeBalance       *string              `json:"sf_charge_balance,omitempty"`
	VoucherModels         []string             `json:"voucher_models"`
}

// AvailableModel is one selectable model in the combined catalog.
type AvailableModel struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Provider      string   `json:"provider"`
	Modes         []string `json:"modes"`
	Available     bool     `json:"available"`
	FreePerDay    *int     `json:"free_per_day,omitempty"`
	UsageToday    *int     `json:"usage_today,omitempty"`
	Pricing       *string  `json:"pricing,omitempty"`
	Free          *bool    `json:"free,omitempty"`
	Voucher       *bool    `json:"voucher,omitempty"`
	ChargeBalance *string  `json:"charge_balance,omitempty"`
	TotalBalance  *string  `json:"total_balance,omitempty"`
}

// AvailableModelsResponse is the full catalog plus account balances.
type AvailableModelsResponse struct {
	Models          []AvailableModel `json:"models"`
	SfBalance       *string          `json:"sf_balance,omitempty"`
	SfChargeBalance *string          `json:"sf_charge_balance,omitempty"`
	VoucherBalance  *string          `json:"voucher_balance,omitempty"`
}

// TestResult reports a credential test outcome.
type TestResult struct {
	OK      bool    `json:"ok"`
	Error   *string `json:"error,omitempty"`
	Balance *string `json:"balance,omitempty"`
}

// BalanceResponse reports the SiliconFlow account balances.
type BalanceResponse struct {
	ChargeBalance  *string `json:"charge_balance,omitempty"`
	TotalBalance   *string `json:"total_balance,omitempty"`
	VoucherBalance *string `json:"voucher_balance,omitempty"`
}

// RecognizeResponse is the recognition result returned to the UI.
type RecognizeResponse struct {
	Text         string  `json:"text"`
	Model        string  `json:"model"`
	Verified     *bool   `json:"verified,omitempty"`
	Corrected    *bool   `json:"corrected,omitempty"`
	OriginalText *string `json:"original_text,omitempty"`
}

// --- Handlers ---

// GetSettings handles GET /api/v1/settings.
func (h *Handler) GetSettings(c *gin.Context) {
	stToken := h.Settings.GetString(settings.KeySimpleTexToken)
	sfKey := h.Settings.GetString(settings.KeySiliconFlowKey)
	stModel := h.Settings.GetString(settings.KeySimpleTexModel)
	if stModel == "" {
		stModel = catalog.SimpleTexDefaultModel
	}
	voucherModels := h.Settings.GetStringList(settings.KeyVoucherModels)
	if voucherModels == nil {
		voucherModels = []string{}
	}

	modelInfos := make([]SimpleTexModelInfo, 0, len(catalog.SimpleTexModels))
	usageByModel := make(map[string]int, len(catalog.SimpleTexModels))
	for _, m := range catalog.SimpleTexModels {
		modelInfos = append(modelInfos, SimpleTexModelInfo{ID: m.ID, Name: m.Name, FreePerDay: m.FreePerDay})
		usageByModel[m.ID] = h.Usage.UsageToday(m.ID)
	}

	resp := SettingsResponse{
		HasKey:                sfKey != "",
		HasSimpleTex:          stToken != "",
		SimpleTexModel:        stModel,
		SimpleTexModels:       modelInfos,
		SimpleTexUsageByModel: usageByModel,
		VoucherModels:         voucherModels,
	}

	if sfKey != "" {
		client := provider.NewSiliconFlowClient(sfKey)
		if charge, total, err := client.UserInfo(c.Request.Context()); err == nil {
			resp.SfBalance = &total
			resp.SfChargeBalance = &charge
		}
	}

	c.JSON(http.StatusOK, resp)
}

// SaveSettingsRequest carries the optional settings updates; absent fields
// are left untouched.
type SaveSettingsRequest struct {
	SimpleTexToken    *string `json:"simpletex_token"`
	SiliconFlowKey    *string `json:"siliconflow_key"`
	SimpleTexModel    *string `json:"simpletex_model"`
	VoucherModelsText *string `json:"voucher_models_text"`
}

// SaveSettings handles POST /api/v1/settings. Each supplied credential is
// validated against its provider first; an invalid one is stored as empty
// and reported as a warning instead of aborting the save.
func (h *Handler) SaveSettings(c *gin.Context) {
	var req SaveSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	errors := []string{}

	if req.SimpleTexToken != nil && *req.SimpleTexToken != "" {
		client := provider.NewSimpleTexClient(*req.SimpleTexToken)
		if client.ValidateToken(c.Request.Context()) {
			h.setString(settings.KeySimpleTexToken, *req.SimpleTexToken)
		} else {
			h.setString(settings.KeySimpleTexToken, "")
			errors = append(errors, "SimpleTex Token 无效，已清除")
		}
	}
	if req.SiliconFlowKey != nil && *req.SiliconFlowKey != "" {
		client := provider.NewSiliconFlowClient(*req.SiliconFlowKey)
		if client.ValidateKey(c.Request.Context()) {
			h.setString(settings.KeySiliconFlowKey, *req.SiliconFlowKey)
		} else {
			h.setString(settings.KeySiliconFlowKey, "")
			errors = append(errors, "硅基流动 API Key 无效，已清除")
		}
	}
	if req.SimpleTexModel != nil {
		h.setString(settings.KeySimpleTexModel, *req.SimpleTexModel)
	}
	if req.VoucherModelsText != nil {
		ids := settings.ParseVoucherModels(*req.VoucherModelsText)
		if err := h.Settings.SetStringList(settings.KeyVoucherModels, ids); err != nil {
			log.Printf("failed to persist voucher models: %v", err)
		}
	}

	if len(errors) == 0 {
		c.JSON(http.StatusOK, gin.H{"ok": true})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": false, "errors": errors})
}

func (h *Handler) setString(key, value string) {
	if err := h.Settings.SetString(key, value); err != nil {
		log.Printf("failed to persist setting %s: %v", key, err)
	}
}

// TestSimpleTex handles POST /api/v1/test/simpletex: a connectivity probe
// with a fixed test image, using the supplied token or the stored one.
func (h *Handler) TestSimpleTex(c *gin.Context) {
	var req struct {
		Token string `json:"token"`
	}
	_ = c.ShouldBindJSON(&req) // body is optional

	token := req.Token
	if token == "" {
		token = h.Settings.GetString(settings.KeySimpleTexToken)
	}
	if token == "" {
		c.JSON(http.StatusOK, TestResult{OK: false, Error: strPtr("未填写 Token")})
		return
	}

	client := provider.NewSimpleTexClient(token)
	if err := client.Probe(c.Request.Context()); err != nil {
		c.JSON(http.StatusOK, TestResult{OK: false, Error: strPtr(err.Error())})
		return
	}
	c.JSON(http.StatusOK, TestResult{OK: true})
}

// TestSiliconFlow handles POST /api/v1/test/siliconflow: an authenticated
// info request that also reports the account balance on success.
func (h *Handler) TestSiliconFlow(c *gin.Context) {
	var req struct {
		APIKey string `json:"api_key"`
	}
	_ = c.ShouldBindJSON(&req) // body is optional

	apiKey := req.APIKey
	if apiKey == "" {
		apiKey = h.Settings.GetString(settings.KeySiliconFlowKey)
	}
	if apiKey == "" {
		c.JSON(http.StatusOK, TestResult{OK: false, Error: strPtr("未填写 API Key")})
		return
	}

	client := provider.NewSiliconFlowClient(apiKey)
	balance, err := client.Probe(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusOK, TestResult{OK: false, Error: strPtr(err.Error())})
		return
	}
	result := TestResult{OK: true}
	if balance != "" {
		result.Balance = &balance
	}
	c.JSON(http.StatusOK, result)
}

// GetAvailableModels handles GET /api/v1/models: the static SimpleTex table
// followed by the live SiliconFlow vision catalog, with balances attached.
func (h *Handler) GetAvailableModels(c *gin.Context) {
	stToken := h.Settings.GetString(settings.KeySimpleTexToken)
	sfKey := h.Settings.GetString(settings.KeySiliconFlowKey)
	voucherModels := h.Settings.GetStringList(settings.KeyVoucherModels)
	stValid := stToken != ""
	sfValid := sfKey != ""

	models := []AvailableModel{}

	for _, m := range catalog.SimpleTexModels {
		usageToday := h.Usage.UsageToday(m.ID)
		models = append(models, AvailableModel{
			ID:         "simpletex:" + m.ID,
			Name:       m.Name,
			Provider:   "SimpleTex",
			Modes:      m.CatalogModes(),
			Available:  stValid,
			FreePerDay: intPtr(m.FreePerDay),
			UsageToday: intPtr(usageToday),
			Pricing:    strPtr(fmt.Sprintf("每日免费 %d 次", m.FreePerDay)),
		})
	}

	var chargeBalance, totalBalance *string
	if sfValid {
		client := provider.NewSiliconFlowClient(sfKey)
		if charge, total, err := client.UserInfo(c.Request.Context()); err == nil {
			chargeBalance, totalBalance = &charge, &total
		}

		if ids, err := client.ListChatModels(c.Request.Context()); err == nil {
			pricing := catalog.CachedPricingMap(c.Request.Context())
			for _, m := range catalog.BuildVisionModels(ids, pricing) {
				isVoucher := contains(voucherModels, m.ID)
				models = append(models, AvailableModel{
					ID:            "siliconflow:" + m.ID,
					Name:          m.Name,
					Provider:      "硅基流动",
					Modes:         m.Modes,
					Available:     sfValid,
					Pricing:       strPtr(m.Pricing),
					Free:          boolPtr(m.Free),
					Voucher:       boolPtr(isVoucher),
					ChargeBalance: chargeBalance,
					TotalBalance:  totalBalance,
				})
			}
		}
	}

	resp := AvailableModelsResponse{
		Models:          models,
		SfBalance:       totalBalance,
		SfChargeBalance: chargeBalance,
	}
	if chargeBalance != nil && totalBalance != nil {
		resp.VoucherBalance = strPtr(voucherBalance(*chargeBalance, *totalBalance))
	}
	c.JSON(http.StatusOK, resp)
}

// GetSfBalance handles GET /api/v1/balance.
func (h *Handler) GetSfBalance(c *gin.Context) {
	sfKey := h.Settings.GetString(settings.KeySiliconFlowKey)
	if sfKey == "" {
		c.JSON(http.StatusOK, BalanceResponse{})
		return
	}

	client := provider.NewSiliconFlowClient(sfKey)
	charge, total, err := client.UserInfo(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusOK, BalanceResponse{})
		return
	}
	c.JSON(http.StatusOK, BalanceResponse{
		ChargeBalance:  &charge,
		TotalBalance:   &total,
		VoucherBalance: strPtr(voucherBalance(charge, total)),
	})
}

// RecognizeRequest is one recognition command from the UI.
type RecognizeRequest struct {
	Image   string `json:"image"`
	Mode    string `json:"mode"`
	ModelID string `json:"model_id"`
}

// Recognize handles POST /api/v1/recognize.
func (h *Handler) Recognize(c *gin.Context) {
	var req RecognizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := h.Recognizer.Recognize(c.Request.Context(), req.Image, req.Mode, req.ModelID)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	resp := RecognizeResponse{
		Text:      result.Text,
		Model:     result.Model,
		Verified:  result.Verified,
		Corrected: result.Corrected,
	}
	if result.OriginalText != "" {
		resp.OriginalText = &result.OriginalText
	}
	c.JSON(http.StatusOK, resp)
}

// OpenExternalURL handles POST /api/v1/open-url: delegates to the OS
// default browser.
func (h *Handler) OpenExternalURL(c *gin.Context) {
	var req struct {
		URL string `json:"url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.URL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := sysopen.OpenURL(req.URL); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("无法打开链接: %v", err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// statusForError maps the error taxonomy onto HTTP status codes. The body
// always carries the localized message; a command failure is never fatal.
func statusForError(err error) int {
	switch provider.KindOf(err) {
	case provider.KindNotConfigured, provider.KindValidation, provider.KindNoModelSelected:
		return http.StatusBadRequest
	case provider.KindAuth:
		return http.StatusUnauthorized
	case provider.KindQuotaExhausted:
		return http.StatusTooManyRequests
	default:
		return http.StatusBadGateway
	}
}

// voucherBalance derives the promotional balance: total minus charged,
// formatted to 4 decimals like the provider's own balance strings.
func voucherBalance(charge, total string) string {
	t, err := strconv.ParseFloat(total, 64)
	if err != nil {
		t = 0
	}
	c, err := strconv.ParseFloat(charge, 64)
	if err != nil {
		c = 0
	}
	return fmt.Sprintf("%.4f", t-c)
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}

func strPtr(s string) *string { return &s }
func intPtr(v int) *int       { return &v }
func boolPtr(v bool) *bool    { return &v }
