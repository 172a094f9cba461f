package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sniptex/sniptex_server/configs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func simpletexServer(t *testing.T, handler http.HandlerFunc) *SimpleTexClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	configs.SIMPLETEX_API_BASE = srv.URL
	return NewSimpleTexClient("test-token")
}

func TestSimpleTexRecognizeSuccess(t *testing.T) {
	var gotModel, gotToken, gotRecMode string
	client := simpletexServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotModel = r.URL.Path
		gotToken = r.Header.Get("token")
		require.NoError(t, r.ParseMultipartForm(1<<20))
		gotRecMode = r.FormValue("rec_mode")

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "image.png", header.Filename)

		w.Write([]byte(`{"status":true,"res":{"info":"E=mc^2","conf":0.99}}`))
	})

	text, conf, err := client.Recognize(context.Background(), "aGVsbG8=", "latex_ocr", "")
	require.NoError(t, err)
	assert.Equal(t, "E=mc^2", text)
	assert.Equal(t, 0.99, conf)
	assert.Equal(t, "/latex_ocr", gotModel)
	assert.Equal(t, "test-token", gotToken)
	assert.Empty(t, gotRecMode)
}

func TestSimpleTexRecognizeSendsRecMode(t *testing.T) {
	var gotRecMode string
	client := simpletexServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		gotRecMode = r.FormValue("rec_mode")
		w.Write([]byte(`{"status":true,"res":{"info":"ok"}}`))
	})

	_, _, err := client.Recognize(context.Background(), "aGVsbG8=", "simpletex_ocr", "document")
	require.NoError(t, err)
	assert.Equal(t, "document", gotRecMode)
}

func TestSimpleTexRecognizeStripsDataURLPrefix(t *testing.T) {
	client := simpletexServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":true,"res":{"info":"x"}}`))
	})

	_, _, err := client.Recognize(context.Background(), "data:image/png;base64,aGVsbG8=", "latex_ocr", "")
	assert.NoError(t, err)
}

func TestSimpleTexRecognizeRejectsBadBase64(t *testing.T) {
	client := simpletexServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected for undecodable image")
	})

	_, _, err := client.Recognize(context.Background(), "!!!not-base64!!!", "latex_ocr", "")
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestSimpleTexRecognizeErrorMapping(t *testing.T) {
	cases := []struct {
		name    string
		body    string
		kind    Kind
		message string
	}{
		{
			"auth error from res path",
			`{"status":false,"res":{"errType":"req_unauthorized"}}`,
			KindAuth, "SimpleTex Token 无效或已过期",
		},
		{
			"auth error from err_info path",
			`{"status":false,"err_info":{"err_type":"req_unauthorized"}}`,
			KindAuth, "SimpleTex Token 无效或已过期",
		},
		{
			"auth error from top-level path",
			`{"status":false,"errType":"req_unauthorized"}`,
			KindAuth, "SimpleTex Token 无效或已过期",
		},
		{
			"quota exhausted",
			`{"status":false,"res":{"errType":"resource_no_valid"}}`,
			KindQuotaExhausted, "SimpleTex 额度已用完",
		},
		{
			"unknown code surfaces raw",
			`{"status":false,"res":{"errType":"image_too_large"}}`,
			KindProvider, "SimpleTex 识别失败: image_too_large",
		},
		{
			"missing code",
			`{"status":false}`,
			KindProvider, "SimpleTex 识别失败: unknown",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := simpletexServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tc.body))
			})

			_, _, err := client.Recognize(context.Background(), "aGVsbG8=", "latex_ocr", "")
			require.Error(t, err)
			assert.Equal(t, tc.kind, KindOf(err))
			assert.Equal(t, tc.message, err.Error())
		})
	}
}

func TestSimpleTexResultShapes(t *testing.T) {
	cases := []struct {
		name string
		body string
		text string
	}{
		{"info string", `{"status":true,"res":{"info":"a+b"}}`, "a+b"},
		{"info object markdown", `{"status":true,"res":{"info":{"markdown":"# doc"}}}`, "# doc"},
		{"info object text", `{"status":true,"res":{"info":{"text":"plain"}}}`, "plain"},
		{"top-level markdown", `{"status":true,"res":{"markdown":"md"}}`, "md"},
		{"top-level latex", `{"status":true,"res":{"latex":"\\frac{1}{2}"}}`, `\frac{1}{2}`},
		{"nothing recognized", `{"status":true,"res":{}}`, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := simpletexServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tc.body))
			})

			text, _, err := client.Recognize(context.Background(), "aGVsbG8=", "latex_ocr", "")
			require.NoError(t, err)
			assert.Equal(t, tc.text, text)
		})
	}
}

func TestSimpleTexValidateToken(t *testing.T) {
	t.Run("401 invalidates", func(t *testing.T) {
		client := simpletexServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})
		assert.False(t, client.ValidateToken(context.Background()))
	})

	t.Run("auth code invalidates", func(t *testing.T) {
		client := simpletexServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"status":false,"err_info":{"err_type":"req_unauthorized"}}`))
		})
		assert.False(t, client.ValidateToken(context.Background()))
	})

	t.Run("server errors do not invalidate", func(t *testing.T) {
		client := simpletexServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"status":false,"res":{"errType":"server_error"}}`))
		})
		assert.True(t, client.ValidateToken(context.Background()))
	})

	t.Run("quota exhaustion does not invalidate", func(t *testing.T) {
		client := simpletexServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"status":false,"res":{"errType":"resource_no_valid"}}`))
		})
		assert.True(t, client.ValidateToken(context.Background()))
	})
}

func TestSimpleTexProbe(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		kind    Kind
		message string
	}{
		{"http 401", http.StatusUnauthorized, ``, KindAuth, "Token 无效或已过期"},
		{"http error with quota code", http.StatusForbidden,
			`{"status":false,"res":{"errType":"resource_no_valid"}}`,
			KindQuotaExhausted, "无可用资源（额度已用完）"},
		{"http error without code", http.StatusBadGateway, `oops`,
			KindProvider, "服务器错误 (HTTP 502)"},
		{"envelope auth code", http.StatusOK,
			`{"status":false,"errType":"req_unauthorized"}`,
			KindAuth, "Token 无效或已过期"},
		{"envelope unknown code", http.StatusOK,
			`{"status":false,"res":{"errType":"too_many_req"}}`,
			KindProvider, "too_many_req"},
		{"envelope missing code", http.StatusOK,
			`{"status":false}`,
			KindProvider, "未知错误"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := simpletexServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			})

			err := client.Probe(context.Background())
			require.Error(t, err)
			assert.Equal(t, tc.kind, KindOf(err))
			assert.Equal(t, tc.message, err.Error())
		})
	}

	t.Run("healthy token", func(t *testing.T) {
		client := simpletexServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"status":true,"res":{"info":"x"}}`))
		})
		assert.NoError(t, client.Probe(context.Background()))
	})
}
