package app

import (
	"context"
	"testing"

	"github.com/mirrorops/contentmirror/internal/browser"
)

func TestNewRejectsInvalidConfig(t *testing.T) {
	if _, err := New(context.Background(), Config{}); err == nil {
		t.Fatal("New accepted the zero config")
	}
}

func TestNewRendererSelection(t *testing.T) {
	r, err := newRenderer(Config{Renderer: RendererChrome, ChromePath: "/usr/bin/chromium"})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := r.(*browser.Chrome); !ok {
		t.Errorf("renderer = %T, want *browser.Chrome", r)
	}

	r, err = newRenderer(Config{Renderer: RendererRemote, RemoteURL: "http://render:11235"})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := r.(*browser.Remote); !ok {
		t.Errorf("renderer = %T, want *browser.Remote", r)
	}

	if _, err := newRenderer(Config{Renderer: "firefox"}); err == nil {
		t.Error("unknown renderer accepted")
	}
}
