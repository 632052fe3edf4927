package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hyperjump/sentembed/internal/cli"
	"github.com/hyperjump/sentembed/internal/config"
	"go.uber.org/zap"
)

// useMockBackend points the CLI at an absent config file and the mock backend.
func useMockBackend(t *testing.T) string {
	t.Helper()
	t.Setenv(config.EnvBackend, "mock")
	return filepath.Join(t.TempDir(), "missing.yaml")
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 9001\nembedding:\n  model_dir: /m\n"), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(config.EnvHost, "0.0.0.0")

	cfg, used, err := loadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if used != path {
		t.Errorf("used path = %s, want %s", used, path)
	}
	if cfg.Server.Port != 9001 || cfg.Server.Host != "0.0.0.0" || cfg.Embedding.ModelDir != "/m" {
		t.Errorf("config: %+v", cfg.Server)
	}
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, _, err := loadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Embedding.Dimensions != 384 || cfg.Embedding.Backend != "onnx" {
		t.Errorf("defaults not applied: %+v", cfg.Embedding)
	}
}

func TestEmbeddingOptions(t *testing.T) {
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	cfg.Embedding.ModelDir = "/models/minilm"
	opts := embeddingOptions(cfg)
	if opts.ModelPath != "/models/minilm/model.onnx" || opts.TokenizerPath != "/models/minilm/tokenizer.json" {
		t.Errorf("paths: %s %s", opts.ModelPath, opts.TokenizerPath)
	}
	if !opts.Normalize || opts.Dimensions != 384 || opts.MaxTokens != 128 {
		t.Errorf("options: %+v", opts)
	}
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "", "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "sentembed version dev") {
		t.Errorf("output: %q", out)
	}
}

func TestEmbedCmd_JSON(t *testing.T) {
	cfgPath := useMockBackend(t)
	out, err := execute(t, "", "--config", cfgPath, "embed", "-o", "json", "-b", "1", "olá", "mundo")
	if err != nil {
		t.Fatal(err)
	}
	var decoded []cli.EmbeddingOutput
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if len(decoded) != 2 || decoded[0].Text != "olá" || len(decoded[1].Embedding) != 384 {
		t.Errorf("decoded: %d entries", len(decoded))
	}
}

func TestEmbedCmd_Stdin(t *testing.T) {
	cfgPath := useMockBackend(t)
	out, err := execute(t, "first line\n\n  second line  \n", "--config", cfgPath, "embed")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "first line") || !strings.Contains(out, "second line") || !strings.Contains(out, "dims=384") {
		t.Errorf("output:\n%s", out)
	}
}

func TestEmbedCmd_Errors(t *testing.T) {
	cfgPath := useMockBackend(t)
	tests := []struct {
		name string
		args []string
	}{
		{"no input", []string{"embed"}},
		{"bad format", []string{"embed", "-o", "xml", "a"}},
		{"negative batch", []string{"embed", "-b", "-1", "a"}},
		{"blank arg", []string{"embed", "a", " "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := execute(t, "", append([]string{"--config", cfgPath}, tt.args...)...); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestEmbedCmd_MissingModel(t *testing.T) {
	t.Setenv(config.EnvBackend, "onnx")
	t.Setenv(config.EnvModelDir, t.TempDir())
	_, err := execute(t, "", "--config", filepath.Join(t.TempDir(), "missing.yaml"), "embed", "hello")
	if err == nil || !strings.Contains(err.Error(), "embedding dependency missing") {
		t.Errorf("err = %v", err)
	}
}

func TestSimilarCmd(t *testing.T) {
	cfgPath := useMockBackend(t)
	out, err := execute(t, "", "--config", cfgPath, "similar", "-q", "coca cola",
		"--min-similarity", "-1", "-k", "2", "-o", "json", "pepsi", "coca cola", "guaraná")
	if err != nil {
		t.Fatal(err)
	}
	var decoded cli.SimilarOutput
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if len(decoded.Results) != 2 {
		t.Fatalf("results: %+v", decoded.Results)
	}
	if decoded.Results[0].Index != 1 || decoded.Results[0].Text != "coca cola" {
		t.Errorf("identical text should rank first: %+v", decoded.Results[0])
	}
}

func TestSimilarCmd_RequiresQuery(t *testing.T) {
	cfgPath := useMockBackend(t)
	if _, err := execute(t, "", "--config", cfgPath, "similar", "a", "b"); err == nil {
		t.Error("expected error without --query")
	}
}

func TestRunServer(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	port := l.Addr().(*net.TCPAddr).Port
	l.Close()

	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = port
	cfg.Embedding.Backend = "mock"

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runServer(ctx, cfg, zap.NewNop()) }()

	url := "http://" + cfg.Server.Addr() + "/ready"
	var resp *http.Response
	for i := 0; i < 50; i++ {
		resp, err = http.Get(url)
		if err == nil {
			break
		}
		time.Sleep(50 * time.Millisecond)
	}
	if err != nil {
		cancel()
		t.Fatalf("server did not come up: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("/ready after warm-up: got %d, want 200", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("runServer: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
