package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// ollamaSettings is the one mutable slice of configuration: the
// dashboard can repoint a running server at a different Ollama instance
// without a restart. The enrichment provider reads these through
// getters on every call.
type ollamaSettings struct {
	mu      sync.RWMutex
	baseURL string
	model   string
}

var runtimeOllama ollamaSettings

// InitRuntimeConfig seeds the runtime Ollama settings from the static
// environment config.
func InitRuntimeConfig(baseURL, model string) {
	runtimeOllama.mu.Lock()
	runtimeOllama.baseURL = baseURL
	runtimeOllama.model = model
	runtimeOllama.mu.Unlock()
}

// GetRuntimeOllamaBaseURL returns the base URL currently in effect.
func GetRuntimeOllamaBaseURL() string {
	runtimeOllama.mu.RLock()
	defer runtimeOllama.mu.RUnlock()
	return runtimeOllama.baseURL
}

// GetRuntimeOllamaModel returns the model currently in effect.
func GetRuntimeOllamaModel() string {
	runtimeOllama.mu.RLock()
	defer runtimeOllama.mu.RUnlock()
	return runtimeOllama.model
}

type ollamaSettingsRequest struct {
	OllamaBaseURL string `json:"ollama_base_url" binding:"required"`
	OllamaModel   string `json:"ollama_model"`
}

// GetOllamaSettings handles GET /api/settings/ollama.
func GetOllamaSettings(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"ollama_base_url": GetRuntimeOllamaBaseURL(),
		"ollama_model":    GetRuntimeOllamaModel(),
	})
}

// UpdateOllamaSettings handles PUT /api/settings/ollama. An empty model
// keeps the current one.
func UpdateOllamaSettings(c *gin.Context) {
	var req ollamaSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	runtimeOllama.mu.Lock()
	runtimeOllama.baseURL = req.OllamaBaseURL
	if req.OllamaModel != "" {
		runtimeOllama.model = req.OllamaModel
	}
	runtimeOllama.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{
		"ollama_base_url": GetRuntimeOllamaBaseURL(),
		"ollama_model":    GetRuntimeOllamaModel(),
	})
}

// TestOllamaConnection handles POST /api/settings/ollama/test. It probes
// /api/tags, which any healthy Ollama instance answers, and reports the
// models the instance has pulled so the dashboard can offer a picker.
func TestOllamaConnection(c *gin.Context) {
	var req struct {
		OllamaBaseURL string `json:"ollama_base_url"`
	}
	_ = c.ShouldBindJSON(&req)
	if req.OllamaBaseURL == "" {
		req.OllamaBaseURL = GetRuntimeOllamaBaseURL()
	}

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(req.OllamaBaseURL + "/api/tags")
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"connected": false, "error": err.Error()})
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.JSON(http.StatusServiceUnavailable, gin.H{"connected": false, "status_code": resp.StatusCode})
		return
	}

	var tags struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	models := []string{}
	if err := json.NewDecoder(resp.Body).Decode(&tags); err == nil {
		for _, m := range tags.Models {
			models = append(models, m.Name)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"connected":       true,
		"ollama_base_url": req.OllamaBaseURL,
		"models":          models,
	})
}
