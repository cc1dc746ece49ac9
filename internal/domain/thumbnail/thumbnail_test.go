package thumbnail

import "testing"

func TestImage_Transitions(t *testing.T) {
	img := New("https://cdn.example.com/a.jpg", "")
	if img.Stage() != Primary || img.Src() != "https://cdn.example.com/a.jpg" {
		t.Fatalf("unexpected start: %+v", img)
	}

	img = img.Failed()
	if img.Stage() != Fallback || img.Src() != DefaultFallback {
		t.Fatalf("after first failure: stage=%s src=%s", img.Stage(), img.Src())
	}
	if !img.Optimized() {
		t.Error("fallback stage should still be optimized")
	}

	img = img.Failed()
	if img.Stage() != PlainRender || img.Src() != DefaultFallback {
		t.Fatalf("after second failure: stage=%s src=%s", img.Stage(), img.Src())
	}
	if img.Optimized() {
		t.Error("plain render should not be optimized")
	}

	if again := img.Failed(); again != img {
		t.Error("PlainRender must be terminal")
	}
}

func TestImage_EmptySourceStartsAtFallback(t *testing.T) {
	img := New("", "/static/none.png")
	if img.Src() != "/static/none.png" || img.Stage() != Primary {
		t.Fatalf("unexpected start: %+v", img)
	}

	// The source already is the fallback, so a failure goes straight to plain.
	img = img.Failed()
	if img.Stage() != PlainRender {
		t.Errorf("stage = %s, want plain", img.Stage())
	}
}
